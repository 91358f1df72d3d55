// Package models defines messaging event structures for RenoIntake.
package models

// MessageStatus represents the delivery status of an outbound message.
type MessageStatus string

const (
	// MessageStatusSent indicates the message left the service.
	MessageStatusSent MessageStatus = "sent"
	// MessageStatusDelivered indicates the recipient's device acknowledged it.
	MessageStatusDelivered MessageStatus = "delivered"
	// MessageStatusRead indicates the recipient opened it.
	MessageStatusRead MessageStatus = "read"
)

// Receipt records a delivery status change for an outbound message.
type Receipt struct {
	To     string        `json:"to"`
	Status MessageStatus `json:"status"`
	Time   int64         `json:"time"`
}

// Response is an inbound client message from a messaging channel.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}
