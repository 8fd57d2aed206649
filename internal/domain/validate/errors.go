package validate

import "strings"

// FieldError describes one malformed, missing, or out-of-range field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Message }

// Errors is a non-empty batch of field errors returned in one pass.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := e.Messages()
	return strings.Join(msgs, "; ")
}

// Messages returns the user-facing messages in validation order.
func (e Errors) Messages() []string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return msgs
}
