package runner

import (
	"github.com/viant/refresher/model/item"
)

// Job is the unit of work published by the engine façade and consumed by
// the runner's workers. It carries everything the fan-out needs so that no
// further synchronous lookups happen on the background path.
type Job struct {
	TransactionID string            `json:"transactionID"`
	AccountID     string            `json:"accountID"`
	Auth          *item.AccountAuth `json:"auth"`
	Items         []*item.Item      `json:"items"`
}

// Outcome is the payload of transaction lifecycle events.
type Outcome struct {
	TransactionID string `json:"transactionID"`
	AccountID     string `json:"accountID"`
	State         string `json:"state"`
	Reason        string `json:"reason,omitempty"`
	Items         int    `json:"items"`
}
