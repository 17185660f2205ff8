package domain

import (
	"fmt"
	"strings"
)

const (
	fallbackSubject  = "Payment Reminder: Your invoice is overdue"
	fallbackTemplate = "Please pay your overdue invoice {invoice_number} as soon as possible."
)

func defaultSubjects() map[int]string {
	return map[int]string{
		1: "Payment Reminder: Invoice {invoice_number} is due soon",
		2: "Second Reminder: Invoice {invoice_number} is overdue",
		3: "FINAL NOTICE: Invoice {invoice_number} requires immediate payment",
	}
}

func defaultTemplates() map[int]string {
	return map[int]string{
		1: `Dear {customer_name},

This is a friendly reminder that payment for Invoice {invoice_number}
is now {days_overdue} days overdue.

Invoice details:
- Invoice number: {invoice_number}
- Issue date: {issue_date}
- Due date: {due_date}
- Amount due: {currency} {total}

Please make payment at your earliest convenience.

Thank you for your business.
`,
		2: `Dear {customer_name},

We noticed that Invoice {invoice_number} remains unpaid and is now
{days_overdue} days overdue.

Invoice details:
- Invoice number: {invoice_number}
- Issue date: {issue_date}
- Due date: {due_date}
- Amount due: {currency} {total}

Please make payment as soon as possible or contact us if you have any questions.

Thank you for your prompt attention to this matter.
`,
		3: `Dear {customer_name},

FINAL NOTICE: Invoice {invoice_number} is now {days_overdue} days overdue
and requires immediate attention.

Invoice details:
- Invoice number: {invoice_number}
- Issue date: {issue_date}
- Due date: {due_date}
- Amount due: {currency} {total}

Please make payment immediately to avoid any potential late fees or
further action.

If you have already made the payment, please disregard this notice.
`,
	}
}

// Template returns the subject and message template for a reminder sequence
// number, falling back to built-in defaults when none is configured.
func (s ReminderSettings) Template(n int) (subject, message string) {
	subject = fallbackSubject
	message = fallbackTemplate
	if subjects := s.Subjects.Data(); subjects != nil {
		if configured, ok := subjects[n]; ok {
			subject = configured
		}
	}
	if templates := s.Templates.Data(); templates != nil {
		if configured, ok := templates[n]; ok {
			message = configured
		}
	}
	return subject, message
}

// RenderTemplate substitutes `{placeholder}` markers with values from vars.
// A placeholder with no value is an error, never silently dropped.
func RenderTemplate(text string, vars map[string]string) (string, error) {
	var out strings.Builder
	for {
		open := strings.IndexByte(text, '{')
		if open < 0 {
			out.WriteString(text)
			return out.String(), nil
		}
		closing := strings.IndexByte(text[open:], '}')
		if closing < 0 {
			out.WriteString(text)
			return out.String(), nil
		}
		name := text[open+1 : open+closing]
		value, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownPlaceholder, name)
		}
		out.WriteString(text[:open])
		out.WriteString(value)
		text = text[open+closing+1:]
	}
}
