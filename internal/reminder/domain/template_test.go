package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestTemplateDefaultsPerReminderNumber(t *testing.T) {
	settings := DefaultSettings(1, 2, policyNow)

	subject1, message1 := settings.Template(1)
	assert.Contains(t, subject1, "due soon")
	assert.Contains(t, message1, "friendly reminder")

	subject2, _ := settings.Template(2)
	assert.Contains(t, subject2, "Second Reminder")

	subject3, message3 := settings.Template(3)
	assert.Contains(t, subject3, "FINAL NOTICE")
	assert.Contains(t, message3, "immediate attention")
}

func TestTemplateFallsBackBeyondConfigured(t *testing.T) {
	settings := DefaultSettings(1, 2, policyNow)

	subject, message := settings.Template(4)
	assert.Equal(t, fallbackSubject, subject)
	assert.Equal(t, fallbackTemplate, message)
}

func TestTemplateConfiguredOverridesDefault(t *testing.T) {
	settings := DefaultSettings(1, 2, policyNow)
	settings.Subjects = datatypes.NewJSONType(map[int]string{1: "Custom subject {invoice_number}"})

	subject, message := settings.Template(1)
	assert.Equal(t, "Custom subject {invoice_number}", subject)
	assert.NotEqual(t, fallbackTemplate, message)
}

func TestRenderTemplate(t *testing.T) {
	vars := map[string]string{
		"invoice_number": "INV-2024-000042",
		"customer_name":  "Acme Corp",
	}

	out, err := RenderTemplate("Dear {customer_name}, invoice {invoice_number} is overdue.", vars)
	require.NoError(t, err)
	assert.Equal(t, "Dear Acme Corp, invoice INV-2024-000042 is overdue.", out)
}

func TestRenderTemplateUnknownPlaceholder(t *testing.T) {
	_, err := RenderTemplate("Hello {nope}", map[string]string{})
	require.ErrorIs(t, err, ErrUnknownPlaceholder)
	assert.Contains(t, err.Error(), "nope")
}

func TestRenderTemplateNoPlaceholders(t *testing.T) {
	out, err := RenderTemplate("Plain text only.", nil)
	require.NoError(t, err)
	assert.Equal(t, "Plain text only.", out)
}

func TestRenderTemplateUnclosedBrace(t *testing.T) {
	out, err := RenderTemplate("Trailing {brace", map[string]string{"brace": "x"})
	require.NoError(t, err)
	assert.Equal(t, "Trailing {brace", out)
}

func TestDefaultTemplatesRender(t *testing.T) {
	vars := map[string]string{
		"invoice_number":  "INV-2024-000001",
		"customer_name":   "Acme Corp",
		"issue_date":      "2024-05-01",
		"due_date":        "2024-05-31",
		"days_overdue":    "7",
		"currency":        "USD",
		"total":           "120.00",
		"reminder_number": "2",
	}

	for number, tmpl := range defaultTemplates() {
		out, err := RenderTemplate(tmpl, vars)
		require.NoError(t, err, "template %d", number)
		assert.True(t, strings.Contains(out, "Acme Corp"), "template %d should address the customer", number)
	}
	for number, subject := range defaultSubjects() {
		out, err := RenderTemplate(subject, vars)
		require.NoError(t, err, "subject %d", number)
		assert.Contains(t, out, "INV-2024-000001")
	}
}

func TestValidateSchedule(t *testing.T) {
	valid := scheduleSettings(3, 7, 14)
	assert.NoError(t, valid.Validate())

	disabled := ReminderSettings{Enabled: false}
	assert.NoError(t, disabled.Validate())

	empty := ReminderSettings{Enabled: true}
	assert.ErrorIs(t, empty.Validate(), ErrInvalidReminderDays)

	unordered := scheduleSettings(7, 3)
	assert.ErrorIs(t, unordered.Validate(), ErrInvalidReminderDays)

	duplicate := scheduleSettings(3, 3)
	assert.ErrorIs(t, duplicate.Validate(), ErrInvalidReminderDays)

	nonPositive := scheduleSettings(0, 3)
	assert.ErrorIs(t, nonPositive.Validate(), ErrInvalidReminderDays)
}
