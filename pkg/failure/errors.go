package failure

type Severity int

// caller control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

type ClassifiedError interface {
	error
	Severity() Severity
}

// Retryable is implemented by errors that know whether repeating the
// failed operation could succeed.
type Retryable interface {
	IsRetryable() bool
}

// IsRetryable reports whether err asks to be retried.
// Errors that do not implement Retryable fall back to their severity.
func IsRetryable(err ClassifiedError) bool {
	if err == nil {
		return false
	}
	if r, ok := err.(Retryable); ok {
		return r.IsRetryable()
	}
	return err.Severity() == SeverityRecoverable
}
