package ingest

import (
	"context"
	"time"
)

// Notebook is the identity the resolver hands forward.
type Notebook struct {
	ID    string
	Title string
}

// Service is the notebook service the ingestion core drives. Implementations
// report failures with the error values of package api: ErrNotFound and
// ErrRPC from GetNotebook, ErrSourceRejected and ErrRateLimited from AddURL,
// ErrWaitTimeout from WaitForSources.
type Service interface {
	GetNotebook(ctx context.Context, id string) (Notebook, error)
	ListNotebooks(ctx context.Context) ([]Notebook, error)
	CreateNotebook(ctx context.Context, title string) (Notebook, error)
	// AddURL queues url as a source and returns its id without waiting for processing.
	AddURL(ctx context.Context, notebookID, url string) (string, error)
	WaitForSources(ctx context.Context, notebookID string, sourceIDs []string, timeout time.Duration) error
}

// Session is a Service bound to an authenticated connection.
type Session interface {
	Service
	Close() error
}

// Opener acquires a Session for one run.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Session, error)

func (f OpenerFunc) Open(ctx context.Context) (Session, error) { return f(ctx) }
