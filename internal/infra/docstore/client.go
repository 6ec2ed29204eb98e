// Package docstore provides a client for the remote per-user document store
// that holds each user's saved queue.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mgrn/tonearm/internal/domain/track"
)

// QueueDocument is the per-user durable record of the play queue.
type QueueDocument struct {
	Queue []track.Ref
	Index int
}

// Empty reports whether the document carries no saved queue.
func (d *QueueDocument) Empty() bool {
	return d == nil || len(d.Queue) == 0
}

// Client is a document store API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessionID  string
}

// Config represents document store client configuration.
type Config struct {
	BaseURL      string
	TokenURL     string // Client-credentials token endpoint; anonymous access when empty
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	SessionID    string // Recorded as updatedBy on every write
}

// wire shapes: the store wraps document values in a "fields" object whose
// numbers arrive as JSON float64.
type document struct {
	Fields map[string]any `json:"fields"`
}

type queueFields struct {
	SavedQueue []string `mapstructure:"savedQueue"`
	SavedIndex int      `mapstructure:"savedIndex"`
}

// New creates a new document store client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("document store base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var httpClient *http.Client
	if cfg.TokenURL != "" {
		if cfg.ClientID == "" || cfg.ClientSecret == "" {
			return nil, errors.New("document store client credentials are required")
		}
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		httpClient = cc.Client(context.Background())
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		sessionID:  cfg.SessionID,
	}, nil
}

// Get reads the user's saved queue document. Returns (nil, nil) when the
// user has no document yet.
func (c *Client) Get(ctx context.Context, userID string) (*QueueDocument, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.documentURL(userID), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "document read failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("document read failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse document")
	}

	// The fields payload is loosely typed; decode weakly so float64 indexes
	// land in the int field.
	var fields queueFields
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &fields,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to build decoder")
	}
	if err := dec.Decode(doc.Fields); err != nil {
		return nil, errors.Wrap(err, "failed to decode document fields")
	}

	return &QueueDocument{
		Queue: track.Refs(fields.SavedQueue),
		Index: fields.SavedIndex,
	}, nil
}

// Set writes the user's queue document. With merge=true only the given
// fields are updated (PATCH); otherwise the document is replaced (PUT).
func (c *Client) Set(ctx context.Context, userID string, doc QueueDocument, merge bool) error {
	if userID == "" {
		return errors.New("user ID is required")
	}

	queue := make([]string, len(doc.Queue))
	for i, ref := range doc.Queue {
		queue[i] = string(ref)
	}
	payload := document{Fields: map[string]any{
		"savedQueue": queue,
		"savedIndex": doc.Index,
		"updatedAt":  time.Now().UTC().Format(time.RFC3339),
	}}
	if c.sessionID != "" {
		payload.Fields["updatedBy"] = c.sessionID
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode document")
	}

	method := http.MethodPut
	if merge {
		method = http.MethodPatch
	}
	req, err := http.NewRequestWithContext(ctx, method, c.documentURL(userID), bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "document write failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf("document write failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) documentURL(userID string) string {
	return c.baseURL + "/users/" + userID + "/player"
}
