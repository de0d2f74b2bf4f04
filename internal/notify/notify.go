// Package notify sends best-effort account notifications. Delivery failures
// never fail the operation that triggered them.
package notify

import "log"

type Sender interface {
	SendRegistrationNotice(phone string, username string)
}

// LogSender writes notifications to the process log. Stands in for an SMS
// gateway in development and tests.
type LogSender struct {
	Logger *log.Logger
}

func (s LogSender) SendRegistrationNotice(phone string, username string) {
	if phone == "" {
		return
	}
	s.Logger.Printf("registration notice for %s sent to %s", username, phone)
}

// NoopSender drops every notification.
type NoopSender struct{}

func (NoopSender) SendRegistrationNotice(phone string, username string) {}
