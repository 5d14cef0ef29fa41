package webhook

import "errors"

var (
	// ErrMalformedPayload marks a top-level shape violation. It is fatal
	// for the payload it occurred in and for nothing else.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrDirectionUnresolved marks a message whose conversation partner
	// could not be determined after every fallback. Not transient, not
	// retried; the message is skipped.
	ErrDirectionUnresolved = errors.New("message direction unresolved")
)
