package webhook

import "errors"

// Delivery headers on the outbound POST.
const (
	HeaderSignature = "X-Hub-Signature-256"
	HeaderEventType = "X-Event-Type"
)

// Event types produced by the platform modules.
const (
	EventTransactionBlocked = "transaction.blocked"
	EventCallCompleted      = "call.completed"
)

// ErrQueueFull is returned when the delivery queue cannot accept another job.
var ErrQueueFull = errors.New("webhook delivery queue is full")

// DeliveryJob carries everything a worker needs to perform one outbound
// call: the record to update, the destination, the signing secret and the
// canonical payload bytes.
type DeliveryJob struct {
	EventID   uint
	URL       string
	Secret    string
	EventType string
	Payload   []byte
}
