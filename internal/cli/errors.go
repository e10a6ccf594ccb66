package cli

import (
	"errors"
	"strings"

	"github.com/evcraddock/rentroll/internal/apierr"
)

// ErrorText renders err for the terminal. Validation errors list one field
// per line under the banner.
func ErrorText(err error) string {
	var e *apierr.Error
	if !errors.As(err, &e) || e.Kind != apierr.KindValidation || len(e.Fields) == 0 {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString("validation failed")
	for _, f := range e.Fields {
		b.WriteString("\n  ")
		if f.Path != "" {
			b.WriteString(f.Path)
			b.WriteString(": ")
		}
		b.WriteString(f.Message)
	}
	return b.String()
}
