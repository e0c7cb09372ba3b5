package ai

import "testing"

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"health": "good"}`,
			want:  `{"health": "good"}`,
		},
		{
			name:  "fenced object",
			input: "Here is the analysis:\n```json\n{\"health\": \"good\"}\n```\nHope that helps!",
			want:  `{"health": "good"}`,
		},
		{
			name:  "bare array",
			input: `[{"title": "a"}, {"title": "b"}]`,
			want:  `[{"title": "a"}, {"title": "b"}]`,
		},
		{
			name:  "array wrapped in prose",
			input: "Sure! ```json\n[{\"title\": \"a\"}]\n``` Done.",
			want:  `[{"title": "a"}]`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.input)
			if err != nil {
				t.Fatalf("ExtractJSON: %v", err)
			}
			if got != tc.want {
				t.Errorf("ExtractJSON = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractJSONNoPayload(t *testing.T) {
	if _, err := ExtractJSON("I could not produce a plan, sorry."); err == nil {
		t.Error("expected an error for a completion without JSON")
	}
}
