package cli

import "errors"

// ErrUsage marks failures caused by how apigen was invoked rather than
// by the documents it compiled. The entrypoint maps it to exit code 2.
var ErrUsage = errors.New("invalid usage")

// usageError carries a human-readable invocation problem while staying
// matchable through errors.Is(err, ErrUsage).
type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string { return e.msg }

func (e usageError) Is(target error) bool { return target == ErrUsage }
