package ingest

import (
	"context"
	"time"

	"github.com/jmagar/axon/internal/api"
)

// NotebookLM is a Session backed by the NotebookLM API client.
type NotebookLM struct {
	Client *api.Client
}

var _ Session = NotebookLM{}

// GetNotebook fetches the notebook with the given id.
func (n NotebookLM) GetNotebook(ctx context.Context, id string) (Notebook, error) {
	p, err := n.Client.GetProject(ctx, id)
	if err != nil {
		return Notebook{}, err
	}
	return Notebook{ID: p.ID, Title: p.Title}, nil
}

// ListNotebooks returns the recently viewed notebooks in listing order.
func (n NotebookLM) ListNotebooks(ctx context.Context) ([]Notebook, error) {
	projects, err := n.Client.ListRecentlyViewedProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Notebook, 0, len(projects))
	for _, p := range projects {
		out = append(out, Notebook{ID: p.ID, Title: p.Title})
	}
	return out, nil
}

// CreateNotebook creates a notebook titled title with the default emoji.
func (n NotebookLM) CreateNotebook(ctx context.Context, title string) (Notebook, error) {
	p, err := n.Client.CreateProject(ctx, title, "")
	if err != nil {
		return Notebook{}, err
	}
	return Notebook{ID: p.ID, Title: p.Title}, nil
}

// AddURL queues url as a source of the notebook.
func (n NotebookLM) AddURL(ctx context.Context, notebookID, url string) (string, error) {
	return n.Client.AddSourceFromURL(ctx, notebookID, url)
}

// WaitForSources blocks until the sources settle or timeout elapses.
func (n NotebookLM) WaitForSources(ctx context.Context, notebookID string, sourceIDs []string, timeout time.Duration) error {
	return n.Client.WaitForSources(ctx, notebookID, sourceIDs, timeout)
}

// Close releases the client's connections.
func (n NotebookLM) Close() error {
	return n.Client.Close()
}

// APIOpener opens NotebookLM sessions with fixed credentials and options.
type APIOpener struct {
	Config  api.Config
	Options []api.Option
}

// Open checks the credentials and returns a session backed by a new client.
func (o APIOpener) Open(ctx context.Context) (Session, error) {
	c, err := api.Open(ctx, o.Config, o.Options...)
	if err != nil {
		return nil, err
	}
	return NotebookLM{Client: c}, nil
}
