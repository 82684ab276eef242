package events

import (
	"strings"
	"time"
)

// Event types
const (
	AccountCreated = "account.created"
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"

	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"

	ScreeningRequested = "screening.requested"
	ScreeningCompleted = "screening.completed"
	ScreeningRejected  = "screening.rejected"
)

// Stream names
const (
	AccountEventsStream     = "account.events"
	TransactionEventsStream = "transaction.events"
	ScreeningEventsStream   = "screening.events"
)

// AllStreams lists every stream this service publishes to.
var AllStreams = []string{AccountEventsStream, TransactionEventsStream, ScreeningEventsStream}

// StreamOf returns the stream an event type is published on, or "" if the
// type is unknown.
func StreamOf(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "account."):
		return AccountEventsStream
	case strings.HasPrefix(eventType, "transaction."):
		return TransactionEventsStream
	case strings.HasPrefix(eventType, "screening."):
		return ScreeningEventsStream
	}
	return ""
}

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Account events
type AccountCreatedEvent struct {
	AccountNumber     string `json:"accountNumber"`
	AccountHolderName string `json:"accountHolderName"`
}

type AccountUpdatedEvent struct {
	AccountNumber     string `json:"accountNumber"`
	AccountHolderName string `json:"accountHolderName"`
}

type AccountDeletedEvent struct {
	AccountNumber string `json:"accountNumber"`
}

// Transaction events
type TransactionEvent struct {
	TransactionID string    `json:"transactionId"`
	AccountNumber string    `json:"accountNumber"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

// Screening events. Callback tokens are credentials and never leave the service.
type ScreeningRequestedEvent struct {
	AccountNumber string `json:"accountNumber"`
	Queued        bool   `json:"queued"`
}

type ScreeningCompletedEvent struct {
	AccountNumber          string `json:"accountNumber"`
	IsSecurityCheckSuccess bool   `json:"isSecurityCheckSuccess"`
}

// ScreeningRejectedEvent records a callback that failed verification. The
// account number is the one claimed by the caller.
type ScreeningRejectedEvent struct {
	AccountNumber string `json:"accountNumber"`
	Reason        string `json:"reason"`
}
