// Package failsoft substitutes placeholders for assets that fail to load.
package failsoft

import "log/slog"

// Err is the log attribute for a failure cause. It carries only the message
// so wrapped errors do not print their stack traces.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Resolve returns inner's value, or logs the failure with the asset kind
// and name and returns placeholder(). The bool reports whether inner
// succeeded.
func Resolve[T any](logger *slog.Logger, kind, name string, inner func() (T, error), placeholder func() T) (T, bool) {
	v, err := inner()
	if err == nil {
		return v, true
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("failed to load "+kind, kind, name, Err(err))
	return placeholder(), false
}
