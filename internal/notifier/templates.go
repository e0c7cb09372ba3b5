package notifier

import (
	"fmt"
	"time"
)

func baseTemplate(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>%s</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f4f4f4; }
.container { background: white; padding: 30px; border-radius: 10px; }
.header { text-align: center; border-bottom: 3px solid #007bff; padding-bottom: 20px; margin-bottom: 30px; }
.header h1 { color: #007bff; margin: 0; }
.info { background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 15px 0; }
.footer { text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #666; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>Project Management</h1></div>
<div class="content">%s</div>
<div class="footer"><p>This is an automated message, please do not reply.</p></div>
</div>
</body>
</html>`, title, content)
}

func WelcomeEmail(firstName, lastName, email, role string) (subject, body string) {
	subject = "Welcome to the Project Management System!"
	content := fmt.Sprintf(`<h2>Hi %s %s,</h2>
<p>Your account has been created successfully.</p>
<div class="info"><p><strong>Email:</strong> %s</p><p><strong>Role:</strong> %s</p></div>
<p>You can now sign in and start collaborating.</p>`, firstName, lastName, email, role)
	return subject, baseTemplate(subject, content)
}

func ProjectInvitationEmail(projectName, projectDescription, invitedName, inviterName string) (subject, body string) {
	subject = fmt.Sprintf("Invitation to project: %s", projectName)
	content := fmt.Sprintf(`<h2>Hi %s,</h2>
<p>%s has added you to a project.</p>
<div class="info"><p><strong>Project:</strong> %s</p><p>%s</p></div>`, invitedName, inviterName, projectName, projectDescription)
	return subject, baseTemplate(subject, content)
}

func TaskAssignedEmail(taskTitle, taskDescription, priority string, dueDate *time.Time, assigneeName, assignerName, projectName string) (subject, body string) {
	subject = fmt.Sprintf("New task assigned: %s", taskTitle)

	due := "not set"
	if dueDate != nil {
		due = dueDate.Format("2006-01-02")
	}

	content := fmt.Sprintf(`<h2>Hi %s,</h2>
<p>%s assigned you a task in project <strong>%s</strong>.</p>
<div class="info">
<p><strong>Task:</strong> %s</p>
<p>%s</p>
<p><strong>Priority:</strong> %s</p>
<p><strong>Due:</strong> %s</p>
</div>`, assigneeName, assignerName, projectName, taskTitle, taskDescription, priority, due)
	return subject, baseTemplate(subject, content)
}

func TestEmail(requestedBy string) (subject, body string) {
	subject = "Test email"
	content := fmt.Sprintf(`<h2>Delivery check</h2>
<p>This test message was requested by %s at %s.</p>
<p>If you can read this, outgoing email is configured correctly.</p>`,
		requestedBy, time.Now().Format(time.RFC1123))
	return subject, baseTemplate(subject, content)
}

func NewCommentEmail(projectName, authorName, commentContent string) (subject, body string) {
	subject = fmt.Sprintf("New comment on: %s", projectName)
	content := fmt.Sprintf(`<h2>New comment on %s</h2>
<div class="info"><p><strong>%s</strong> wrote:</p><p>%s</p></div>`, projectName, authorName, commentContent)
	return subject, baseTemplate(subject, content)
}
