// Package sl contains small helpers for composing slog attributes.
package sl

import "log/slog"

// Err returns a slog.Attr with the key "error" and the error's message,
// so errors log with a consistent field name everywhere.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
