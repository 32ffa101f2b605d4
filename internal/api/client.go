package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/freenote/freenote/internal/domain"
	"github.com/google/uuid"
)

// ModifyRequest is the body of POST /api/modify-note.
type ModifyRequest struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Gateway is the client's view of the notes server. Every call is a
// suspension point: callers must not assume any state is unchanged when
// it returns.
type Gateway interface {
	// Tree fetches the full note tree.
	Tree(ctx context.Context) (*domain.NoteObject, error)

	// Note fetches one note with its content. A missing note yields
	// ErrNotFound.
	Note(ctx context.Context, id int) (*domain.NoteObject, error)

	// ModifyNote persists a title and content.
	ModifyNote(ctx context.Context, req ModifyRequest) error

	// CreateNoteObject appends a new note or notebook under parent and
	// returns its id when the server reports one.
	CreateNoteObject(ctx context.Context, parent int, kind domain.Kind) (int, error)

	// DeleteNoteObject removes an object and its subtree.
	DeleteNoteObject(ctx context.Context, id int) error
}

// Client implements Gateway over HTTP.
type Client struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

var _ Gateway = (*Client)(nil)

// NewClient creates a Client for the server at cfg.BaseURL.
func NewClient(cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *Client) Tree(ctx context.Context) (*domain.NoteObject, error) {
	return c.tree(ctx, "/api/notes")
}

// TreeOutline fetches the tree with note content stripped, for listings
// that only need titles.
func (c *Client) TreeOutline(ctx context.Context) (*domain.NoteObject, error) {
	return c.tree(ctx, "/api/notes?content=0")
}

func (c *Client) tree(ctx context.Context, path string) (*domain.NoteObject, error) {
	var root *domain.NoteObject
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &root); err != nil {
		return nil, fmt.Errorf("fetching tree: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("fetching tree: empty response")
	}
	return root, nil
}

func (c *Client) Note(ctx context.Context, id int) (*domain.NoteObject, error) {
	var note *domain.NoteObject
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/notes/%d", id), nil, &note); err != nil {
		return nil, fmt.Errorf("fetching note %d: %w", id, err)
	}
	if note == nil {
		return nil, fmt.Errorf("fetching note %d: %w", id, ErrNotFound)
	}
	return note, nil
}

func (c *Client) ModifyNote(ctx context.Context, req ModifyRequest) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/modify-note", req, nil); err != nil {
		return fmt.Errorf("saving note %d: %w", req.ID, err)
	}
	return nil
}

type createRequest struct {
	Parent int         `json:"parent"`
	Type   domain.Kind `json:"type"`
}

type createResponse struct {
	ID int `json:"id"`
}

func (c *Client) CreateNoteObject(ctx context.Context, parent int, kind domain.Kind) (int, error) {
	var resp createResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/new-noteobject", createRequest{Parent: parent, Type: kind}, &resp); err != nil {
		return 0, fmt.Errorf("creating %s under %d: %w", kind, parent, err)
	}
	return resp.ID, nil
}

type deleteRequest struct {
	ID int `json:"id"`
}

func (c *Client) DeleteNoteObject(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/delete-noteobject", deleteRequest{ID: id}, nil); err != nil {
		return fmt.Errorf("deleting %d: %w", id, err)
	}
	return nil
}

// doJSON sends body (if any) and decodes a 2xx response into out (if
// any). Only GETs are retried; a repeated POST could apply twice.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()
	requestID := uuid.NewString()

	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	attempts := 1
	if method == http.MethodGet {
		attempts += c.cfg.MaxRetries
	}

	var (
		lastErr error
		status  int
		tried   int
	)
	for tried < attempts {
		tried++
		status, lastErr = c.attempt(ctx, method, path, data, requestID, out)
		if lastErr == nil {
			break
		}
		// Don't retry on context cancellation/timeout or client errors
		if ctx.Err() != nil || !retryable(lastErr) {
			break
		}
	}

	err := c.finalError(ctx, lastErr, tried)
	c.observer.OnCallComplete(CallEvent{
		RequestID: requestID,
		Method:    method,
		Path:      path,
		Status:    status,
		Attempts:  tried,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *Client) finalError(ctx context.Context, err error, tried int) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctxErr
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if tried > 1 {
		return fmt.Errorf("%w: %w", ErrRetryExhausted, err)
	}
	return err
}

func (c *Client) attempt(ctx context.Context, method, path string, data []byte, requestID string, out any) (int, error) {
	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("X-Freenote-Token", c.cfg.Token)
	}
	if c.cfg.User != "" {
		req.Header.Set("X-Freenote-User", c.cfg.User)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(respBody)),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
