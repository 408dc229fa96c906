package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/viant/refresher/internal/clock"
	"github.com/viant/refresher/model/item"
	"github.com/viant/refresher/service/remote"
)

// Client calls the remote update service over HTTP. A 2xx response carries
// the refreshed payload; a response with an error envelope is surfaced as a
// *remote.DomainError so the engine can record its reason code; everything
// else (transport failures, timeouts, unexpected statuses) stays
// unclassified.
type Client struct {
	baseURL string
	client  *http.Client
}

type refreshRequest struct {
	AccountID string `json:"accountId"`
	ItemID    string `json:"itemId"`
	ItemName  string `json:"itemName"`
	AuthName  string `json:"authName"`
}

type refreshResponse struct {
	Payload   map[string]any `json:"payload,omitempty"`
	ErrorCode string         `json:"errorCode,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// New creates an HTTP remote client. When timeout is zero a 30s default
// applies.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Refresh performs one remote refresh call for an item.
func (c *Client) Refresh(ctx context.Context, accountID string, anItem *item.Item, authName string) (*item.Response, error) {
	if anItem == nil {
		return nil, fmt.Errorf("item cannot be nil")
	}
	body, err := json.Marshal(&refreshRequest{
		AccountID: accountID,
		ItemID:    anItem.ID,
		ItemName:  anItem.Name,
		AuthName:  authName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build refresh request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("refresh call failed: %w", err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh response: %w", err)
	}

	var parsed refreshResponse
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("failed to unmarshal refresh response: %w", err)
		}
	}

	if parsed.ErrorCode != "" {
		return nil, remote.NewDomainError(parsed.ErrorCode, parsed.Message)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("refresh call returned status %d", response.StatusCode)
	}

	return &item.Response{
		ItemID:    anItem.ID,
		Payload:   parsed.Payload,
		FetchedAt: clock.Now(),
	}, nil
}

var _ remote.Client = (*Client)(nil)
