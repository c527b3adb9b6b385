// Package mail sends training reminder emails over SMTP. With no SMTP host
// configured the mailer runs in demo mode: every send is logged instead of
// delivered, and reported as successful.
package mail

import (
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"

	"gopkg.in/gomail.v2"
)

// Reminder is the payload of one training reminder email.
type Reminder struct {
	EmployeeEmail string `json:"employee_email"`
	EmployeeName  string `json:"employee_name"`
	CourseTitle   string `json:"course_title"`
	DueDate       string `json:"due_date"`
	CustomMessage string `json:"custom_message,omitempty"`
}

// BulkResult summarizes a bulk reminder send.
type BulkResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// Config holds the SMTP settings. An empty Host enables demo mode.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends reminder emails.
type Mailer struct {
	cfg  Config
	send func(m *gomail.Message) error
}

// New creates a Mailer from SMTP settings.
func New(cfg Config) *Mailer {
	if cfg.From == "" {
		cfg.From = "Training Team <training@localhost>"
	}
	m := &Mailer{cfg: cfg}
	if cfg.Host != "" {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		m.send = func(msg *gomail.Message) error { return d.DialAndSend(msg) }
	}
	return m
}

// DemoMode reports whether sends are logged instead of delivered.
func (m *Mailer) DemoMode() bool { return m.send == nil }

// SendReminder sends a single training reminder.
func (m *Mailer) SendReminder(r Reminder) error {
	if m.send == nil {
		slog.Info("demo email, training reminder",
			"to", r.EmployeeEmail,
			"course", r.CourseTitle,
			"due_date", r.DueDate,
		)
		return nil
	}

	body, err := renderReminder(r)
	if err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", r.EmployeeEmail)
	msg.SetHeader("Subject", "Training Reminder: "+r.CourseTitle)
	msg.SetBody("text/html", body)

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send reminder to %s: %w", r.EmployeeEmail, err)
	}
	return nil
}

// SendBulk sends one reminder per entry, all in parallel. One recipient's
// failure never blocks the others; the result carries the split.
func (m *Mailer) SendBulk(reminders []Reminder) BulkResult {
	res := BulkResult{Total: len(reminders)}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, r := range reminders {
		wg.Add(1)
		go func(r Reminder) {
			defer wg.Done()
			err := m.SendReminder(r)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("bulk reminder failed", "to", r.EmployeeEmail, "error", err)
				res.Failed++
			} else {
				res.Successful++
			}
		}(r)
	}
	wg.Wait()
	return res
}

var reminderTmpl = template.Must(template.New("reminder").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Training Reminder</h2>

  <p>Hi {{.EmployeeName}},</p>

  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #495057;">Course Details</h3>
    <p><strong>Course:</strong> {{.CourseTitle}}</p>
    <p><strong>Due Date:</strong> {{.DueDate}}</p>
  </div>
{{if .CustomMessage}}
  <div style="margin: 20px 0;">
    <h4>Additional Message:</h4>
    <p style="white-space: pre-line;">{{.CustomMessage}}</p>
  </div>
{{end}}
  <p>Please complete this training by the due date. If you have any questions, please don't hesitate to reach out.</p>

  <p>Best regards,<br>Training Team</p>

  <hr style="margin: 30px 0; border: none; border-top: 1px solid #dee2e6;">
  <p style="font-size: 12px; color: #6c757d;">
    This is an automated reminder from your training management system.
  </p>
</div>
`))

func renderReminder(r Reminder) (string, error) {
	var b strings.Builder
	if err := reminderTmpl.Execute(&b, r); err != nil {
		return "", err
	}
	return b.String(), nil
}
