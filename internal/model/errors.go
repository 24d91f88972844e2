package model

// ErrorKind categorizes compilation failures for clearer handling and
// messaging. Every failure aborts the compilation; nothing is retried.
type ErrorKind string

const (
	ReferenceError   ErrorKind = "ReferenceError"
	UnsupportedError ErrorKind = "UnsupportedError"
	NamingError      ErrorKind = "NamingError"
	OptionalityError ErrorKind = "OptionalityError"
	VersioningError  ErrorKind = "VersioningError"
)

// Error is a structured compilation error carrying the context of the
// operation, path or property that produced it.
type Error struct {
	Kind    ErrorKind
	Message string
	Context string // "get /hello/{user}", "property user", ...
	Cause   error
}

func (e *Error) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// inContext wraps err with a location so the user can find the offending
// part of the document. An *Error keeps its kind; anything else becomes
// the given fallback kind.
func inContext(err error, kind ErrorKind, context string) error {
	if err == nil {
		return nil
	}
	if known, ok := err.(*Error); ok {
		kind = known.Kind
	}
	return &Error{Kind: kind, Message: err.Error(), Context: context, Cause: err}
}
