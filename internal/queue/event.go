// Package queue defines message payloads exchanged over the message broker.
package queue

// OTP delivery channels.
const (
	ChannelPhone = "phone"
	ChannelEmail = "email"
)

// OTPRequestedEvent is published whenever a verification code is issued.
// The actual SMS/email gateway lives outside this service and consumes
// these messages; in development the bundled consumer appends them to a
// log file instead.
type OTPRequestedEvent struct {
	Channel     string `json:"channel"`   // "phone" or "email"
	Recipient   string `json:"recipient"` // phone number or email address
	Code        string `json:"code"`
	TTLSeconds  int64  `json:"ttl_seconds"`
	RequestedAt string `json:"requested_at"` // RFC 3339 UTC
}
