// Package diag collects per-file failures that a batch job reports but
// does not stop for.
package diag

import (
	"errors"
	"log/slog"
)

// Failure records one file that could not be processed.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return f.Path + ": " + f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Log writes each failure at error level.
func Log(logger *slog.Logger, msg string, failures []Failure) {
	for _, f := range failures {
		logger.Error(msg, "path", f.Path, "err", f.Err)
	}
}

// Join returns the failures as a single error, or nil if there are none.
func Join(failures []Failure) error {
	if len(failures) == 0 {
		return nil
	}
	errs := make([]error, len(failures))
	for i, f := range failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}
