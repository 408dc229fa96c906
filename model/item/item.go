package item

import "time"

// Item represents a single per-account entry eligible for a remote refresh.
// Items are immutable once listed for a transaction - the refresh pipeline
// only ever reads them.
type Item struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// AccountAuth carries the authentication context resolved for an account
// before fan-out starts. The remote client identifies itself with AuthName.
type AccountAuth struct {
	AccountID string `json:"accountId"`
	AuthName  string `json:"authName"`
	Secret    string `json:"secret,omitempty"`
}

// Response is the remote service's per-item refresh result, applied to local
// storage by the persistence collaborator.
type Response struct {
	ItemID    string         `json:"itemId"`
	Payload   map[string]any `json:"payload,omitempty"`
	FetchedAt time.Time      `json:"fetchedAt"`
}
