package loader

import (
	"errors"
	"fmt"
)

var ErrInputFormat = errors.New("input format error")

// InputFormatError reports a malformed input table. It aborts the whole run.
type InputFormatError struct {
	Table  string
	Column string
	Row    int // 1-based data row, 0 if not row related
	Reason string
}

func (e *InputFormatError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: row %d column %s: %s", e.Table, e.Row, e.Column, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("%s: column %s: %s", e.Table, e.Column, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", e.Table, e.Reason)
	}
}

func (e *InputFormatError) Is(target error) bool {
	return target == ErrInputFormat
}
