package ai

import (
	"fmt"
	"strings"
)

// ExtractJSON recovers the JSON payload embedded in a completion. Models
// routinely wrap the payload in prose and ```json fences; take the first
// top-level object or array and strip any fencing inside it.
func ExtractJSON(text string) (string, error) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	objStart := strings.Index(cleaned, "{")
	arrStart := strings.Index(cleaned, "[")

	start, closer := objStart, "}"
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closer = arrStart, "]"
	}

	end := strings.LastIndex(cleaned, closer)

	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON payload found in completion")
	}

	return strings.TrimSpace(cleaned[start : end+1]), nil
}
