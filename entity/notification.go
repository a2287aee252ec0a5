package entity

// Severity of a user-facing notification
type Severity int8

const (
	SeverityStatus Severity = iota // transient, non-blocking
	SeverityError                  // blocking, must be acknowledged
)

// Notification is a discrete user-facing message
type Notification struct {
	Severity Severity
	Message  string
}

// Status builds a non-blocking notification
func Status(message string) Notification {
	return Notification{Severity: SeverityStatus, Message: message}
}

// Alert builds a blocking notification
func Alert(message string) Notification {
	return Notification{Severity: SeverityError, Message: message}
}
