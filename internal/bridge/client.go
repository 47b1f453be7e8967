package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Client handles HTTP and WebSocket communication with the gateway
type Client struct {
	baseURL    string
	node       string
	httpClient *http.Client
	wsDialer   *websocket.Dialer
}

// NewClient creates a new client for a compute node identity
func NewClient(baseURL, node string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		node:    node,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		wsDialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Job mirrors the gateway's job record fields a bridge node needs
type Job struct {
	ID        uint64 `json:"id"`
	Requester string `json:"requester"`
	TaskType  uint8  `json:"task_type"`
	InputData []byte `json:"input_data"`
	Fee       uint64 `json:"fee"`
	Status    uint8  `json:"status"`
}

// PendingJobs fetches up to limit pending jobs, oldest first
func (c *Client) PendingJobs(ctx context.Context, limit int) ([]Job, error) {
	endpoint := fmt.Sprintf("%s/api/v1/jobs/pending?limit=%d", c.baseURL, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending jobs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pending jobs request failed: %s", resp.Status)
	}

	var body struct {
		Jobs []Job `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode pending jobs: %w", err)
	}
	return body.Jobs, nil
}

// SubmitResult reports a successful outcome for a job
func (c *Client) SubmitResult(ctx context.Context, jobID uint64, resultData []byte) error {
	endpoint := fmt.Sprintf("%s/api/v1/jobs/%d/result", c.baseURL, jobID)
	return c.post(ctx, endpoint, map[string]interface{}{
		"node":        c.node,
		"result_data": resultData,
	})
}

// MarkJobFailed reports a failed outcome for a job
func (c *Client) MarkJobFailed(ctx context.Context, jobID uint64, reason string) error {
	endpoint := fmt.Sprintf("%s/api/v1/jobs/%d/failure", c.baseURL, jobID)
	return c.post(ctx, endpoint, map[string]interface{}{
		"node":   c.node,
		"reason": reason,
	})
}

// ReportError is returned when the gateway rejects a report. Conflicts mean
// another node reached the job first.
type ReportError struct {
	StatusCode int
	Message    string
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("gateway rejected report (%d): %s", e.StatusCode, e.Message)
}

// Conflict reports whether the rejection was a lost race rather than a fault
func (e *ReportError) Conflict() bool {
	return e.StatusCode == http.StatusConflict
}

func (c *Client) post(ctx context.Context, endpoint string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var parsed struct {
			Error string `json:"error"`
		}
		json.Unmarshal(body, &parsed)
		return &ReportError{StatusCode: resp.StatusCode, Message: parsed.Error}
	}
	return nil
}

// EventMessage is one frame from the gateway's event stream
type EventMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SubscribeEvents opens the gateway's websocket event stream and delivers
// frames on the returned channel until ctx is cancelled or the connection
// drops. The channel is closed on exit.
func (c *Client) SubscribeEvents(ctx context.Context) (<-chan EventMessage, error) {
	wsURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/ws"

	conn, _, err := c.wsDialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect event stream: %w", err)
	}

	events := make(chan EventMessage, 16)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(events)
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			// Frames may carry several newline-separated events
			for _, line := range bytes.Split(data, []byte{'\n'}) {
				if len(line) == 0 {
					continue
				}
				var msg EventMessage
				if err := json.Unmarshal(line, &msg); err != nil {
					continue
				}
				select {
				case events <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
