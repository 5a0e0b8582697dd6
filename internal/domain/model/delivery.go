package model

import "fmt"

// FailureReason classifies why a notification could not be delivered.
type FailureReason string

const (
	ReasonEncoding          FailureReason = "encoding-error"
	ReasonConnection        FailureReason = "connection-error"
	ReasonNonSuccessStatus  FailureReason = "non-200-status"
	ReasonMalformedResponse FailureReason = "malformed-response"
	ReasonProxyResolution   FailureReason = "proxy-resolution-error"
)

// DeliveryError is returned for every failed delivery attempt.
type DeliveryError struct {
	Reason FailureReason
	Detail string
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Outcome is the tagged result of a delivery reported back to callers.
type Outcome struct {
	DeliveryID string
	Err        *DeliveryError
}

// OK reports whether the remote side acknowledged the message.
func (o Outcome) OK() bool { return o.Err == nil }

// Reason returns the failure reason, or "" on success.
func (o Outcome) Reason() FailureReason {
	if o.Err == nil {
		return ""
	}
	return o.Err.Reason
}

// Detail returns the human-readable failure detail, or "" on success.
func (o Outcome) Detail() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Detail
}
