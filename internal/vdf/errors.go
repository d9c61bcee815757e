package vdf

import "fmt"

// FormatError reports malformed store content. Binary decode errors carry the
// byte offset; text decode errors carry the line number. Either position may
// be zero when not applicable.
type FormatError struct {
	Offset  int
	Line    int
	Message string
}

func (e *FormatError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("vdf: %s (line %d)", e.Message, e.Line)
	case e.Offset > 0:
		return fmt.Sprintf("vdf: %s (offset %d)", e.Message, e.Offset)
	}
	return "vdf: " + e.Message
}

func binaryErr(offset int, format string, args ...any) error {
	return &FormatError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

func textErr(line int, format string, args ...any) error {
	return &FormatError{Line: line, Message: fmt.Sprintf(format, args...)}
}
