package config

import "fmt"

// Error reports a missing or malformed setting. It is returned once, before
// any notification is sent.
type Error struct {
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s %s: %v", e.Field, e.Msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }
