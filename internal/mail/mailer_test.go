package mail

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/gomail.v2"
)

// ----------------------------------------------------------------------------
// Reminder Body Tests
// ----------------------------------------------------------------------------

func TestRenderReminder(t *testing.T) {
	body, err := renderReminder(Reminder{
		EmployeeName: "Ann Brown",
		CourseTitle:  "Safety 101",
		DueDate:      "2025-06-30",
	})
	if err != nil {
		t.Fatalf("renderReminder: %v", err)
	}
	for _, want := range []string{"Hi Ann Brown", "Safety 101", "2025-06-30"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, "Additional Message") {
		t.Error("custom message block rendered without a custom message")
	}
}

func TestRenderReminderCustomMessage(t *testing.T) {
	body, err := renderReminder(Reminder{
		EmployeeName:  "Ann",
		CourseTitle:   "GDPR",
		DueDate:       "2025-03-31",
		CustomMessage: "Mandatory before <audit> week",
	})
	if err != nil {
		t.Fatalf("renderReminder: %v", err)
	}
	if !strings.Contains(body, "Additional Message") {
		t.Error("custom message block missing")
	}
	// html/template escapes user-provided content
	if strings.Contains(body, "<audit>") {
		t.Error("custom message not escaped")
	}
}

// ----------------------------------------------------------------------------
// Send Tests
// ----------------------------------------------------------------------------

func TestSendReminderDemoMode(t *testing.T) {
	m := New(Config{})
	if !m.DemoMode() {
		t.Fatal("no host configured but not in demo mode")
	}
	if err := m.SendReminder(Reminder{EmployeeEmail: "a@b.com", CourseTitle: "x"}); err != nil {
		t.Errorf("demo send returned error: %v", err)
	}
}

func TestSendBulk(t *testing.T) {
	m := New(Config{Host: "smtp.example.com", Port: 587})
	var failFor = "bad@b.com"
	m.send = func(msg *gomail.Message) error {
		if to := msg.GetHeader("To"); len(to) == 1 && to[0] == failFor {
			return errors.New("mailbox unavailable")
		}
		return nil
	}

	res := m.SendBulk([]Reminder{
		{EmployeeEmail: "a@b.com", EmployeeName: "A", CourseTitle: "X", DueDate: "2025-01-01"},
		{EmployeeEmail: failFor, EmployeeName: "B", CourseTitle: "Y", DueDate: "2025-01-01"},
		{EmployeeEmail: "c@d.com", EmployeeName: "C", CourseTitle: "Z", DueDate: "2025-01-01"},
	})

	if res.Total != 3 || res.Successful != 2 || res.Failed != 1 {
		t.Errorf("result = %+v, want 2 ok / 1 failed of 3", res)
	}
}
