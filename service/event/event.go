package event

import (
	"time"

	"github.com/viant/refresher/internal/clock"
)

// Lifecycle event types published by the engine.
const (
	TypeInitiated = "transaction.initiated"
	TypeDone      = "transaction.done"
	TypeFailed    = "transaction.failed"
)

// Context identifies which transaction an event belongs to.
type Context struct {
	TransactionID string `json:"transactionID"`
	AccountID     string `json:"accountID"`
	EventType     string `json:"eventType"`
	TimeTakenMs   int    `json:"timeTakenMs"`
}

// Event carries a typed payload together with its transaction context.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
