package notifier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/carenrueda/api-gestion/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      []string
	subject string
}

func (m *fakeMailer) Configured() bool { return true }

func (m *fakeMailer) Send(to []string, subject, htmlBody string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := conn.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return conn
}

func TestDrainOnceDeliversPendingRows(t *testing.T) {
	conn := openTestDB(t)
	mailer := &fakeMailer{}

	Enqueue(conn, KindWelcome, []string{"a@example.com", "b@example.com"}, "Welcome", "<p>hi</p>")
	Enqueue(conn, KindComment, []string{"c@example.com"}, "New comment", "<p>hello</p>")

	dispatcher := NewDispatcher(conn, mailer, 0)
	dispatcher.DrainOnce()

	if len(mailer.sent) != 2 {
		t.Fatalf("sent = %d messages, want 2", len(mailer.sent))
	}
	if len(mailer.sent[0].to) != 2 {
		t.Errorf("first message recipients = %v, want both addresses", mailer.sent[0].to)
	}

	var rows []models.Notification
	if err := conn.Find(&rows).Error; err != nil {
		t.Fatalf("failed to load rows: %v", err)
	}
	for _, row := range rows {
		if row.Status != models.NotificationSent {
			t.Errorf("row %d status = %q, want sent", row.ID, row.Status)
		}
		if row.SentAt == nil {
			t.Errorf("row %d has no sent_at", row.ID)
		}
	}

	// A second drain finds nothing pending.
	dispatcher.DrainOnce()
	if len(mailer.sent) != 2 {
		t.Errorf("redelivered already-sent rows, sent = %d", len(mailer.sent))
	}
}

func TestDrainOnceRecordsFailures(t *testing.T) {
	conn := openTestDB(t)
	mailer := &fakeMailer{err: errors.New("smtp unreachable")}

	Enqueue(conn, KindAssignment, []string{"dev@example.com"}, "Task assigned", "<p>task</p>")

	dispatcher := NewDispatcher(conn, mailer, 0)
	dispatcher.DrainOnce()

	var row models.Notification
	if err := conn.First(&row).Error; err != nil {
		t.Fatalf("failed to load row: %v", err)
	}

	if row.Status != models.NotificationFailed {
		t.Errorf("status = %q, want failed", row.Status)
	}
	if row.Error != "smtp unreachable" {
		t.Errorf("error = %q", row.Error)
	}
	if row.SentAt != nil {
		t.Error("failed row has sent_at set")
	}
}

func TestEnqueueSkipsEmptyRecipientList(t *testing.T) {
	conn := openTestDB(t)

	Enqueue(conn, KindWelcome, nil, "Welcome", "<p>hi</p>")

	var count int64
	conn.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Errorf("rows = %d, want 0", count)
	}
}
