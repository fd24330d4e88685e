// Package rpc maps NotebookLM operations onto batchexecute calls.
package rpc

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/jmagar/axon/internal/batchexecute"
)

// RPC endpoint IDs for NotebookLM services
const (
	RPCListRecentlyViewedProjects = "wXbhsf" // ListRecentlyViewedProjects
	RPCCreateProject              = "CCqFvf" // CreateProject
	RPCGetProject                 = "rLM1Ne" // GetProject
	RPCAddSources                 = "izAoDd" // AddSources
)

// DefaultHost is the public NotebookLM frontend.
const DefaultHost = "notebooklm.google.com"

// Call represents a NotebookLM RPC call
type Call struct {
	ID         string        // RPC endpoint ID
	Args       []interface{} // Arguments for the call
	NotebookID string        // Optional notebook ID for context
}

// Config holds the session credentials and endpoint for a Client.
type Config struct {
	AuthToken  string
	Cookies    string
	Host       string // defaults to DefaultHost
	UseHTTP    bool
	MaxRetries int
}

// Client handles NotebookLM RPC communication
type Client struct {
	client *batchexecute.Client
}

// New creates a new NotebookLM RPC client
func New(cfg Config, options ...batchexecute.Option) *Client {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	origin := "https://" + host
	config := batchexecute.Config{
		Host:       host,
		App:        "LabsTailwindUi",
		AuthToken:  cfg.AuthToken,
		Cookies:    cfg.Cookies,
		UseHTTP:    cfg.UseHTTP,
		MaxRetries: cfg.MaxRetries,
		Headers: map[string]string{
			"origin":          origin,
			"referer":         origin + "/",
			"x-same-domain":   "1",
			"accept":          "*/*",
			"accept-language": "en-US,en;q=0.9",
			"cache-control":   "no-cache",
			"pragma":          "no-cache",
		},
		URLParams: map[string]string{
			"bl":    "boq_labs-tailwind-frontend_20241114.01_p0",
			"f.sid": "-7121977511756781186",
			"hl":    "en",
		},
	}
	return &Client{
		client: batchexecute.NewClient(config, options...),
	}
}

// Do executes a NotebookLM RPC call and returns the raw result payload.
func (c *Client) Do(ctx context.Context, call Call) (json.RawMessage, error) {
	sourcePath := "/"
	if call.NotebookID != "" {
		sourcePath = "/notebook/" + call.NotebookID
	}

	resp, err := c.client.Do(ctx, batchexecute.RPC{
		ID:        call.ID,
		Args:      call.Args,
		Index:     "generic",
		URLParams: map[string]string{"source-path": sourcePath},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "execute rpc %s", call.ID)
	}
	return resp.Data, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
