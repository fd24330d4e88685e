package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmagar/axon/internal/api"
)

// fakeService is an in-memory Service that records every call.
type fakeService struct {
	mu sync.Mutex

	byID      map[string]Notebook
	getErr    error // returned by GetNotebook for ids not in byID
	listing   []Notebook
	listErr   error
	created   []string
	createErr error

	// addResults maps a URL to the id or error AddURL returns for it;
	// unlisted URLs get "src-<n>".
	addResults map[string]addResult
	addCalls   []string

	waitErr   error
	waitCalls [][]string
	waitTTL   time.Duration

	closed int
	calls  []string
}

type addResult struct {
	id  string
	err error
}

func newFakeService() *fakeService {
	return &fakeService{
		byID:       map[string]Notebook{},
		getErr:     &api.NotFoundError{ResourceType: "notebook"},
		addResults: map[string]addResult{},
	}
}

func (f *fakeService) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeService) GetNotebook(ctx context.Context, id string) (Notebook, error) {
	f.record("get")
	if nb, ok := f.byID[id]; ok {
		return nb, nil
	}
	return Notebook{}, f.getErr
}

func (f *fakeService) ListNotebooks(ctx context.Context) ([]Notebook, error) {
	f.record("list")
	return f.listing, f.listErr
}

func (f *fakeService) CreateNotebook(ctx context.Context, title string) (Notebook, error) {
	f.record("create")
	if f.createErr != nil {
		return Notebook{}, f.createErr
	}
	f.created = append(f.created, title)
	return Notebook{ID: "created-1", Title: title}, nil
}

func (f *fakeService) AddURL(ctx context.Context, notebookID, url string) (string, error) {
	f.record("add")
	f.addCalls = append(f.addCalls, url)
	if r, ok := f.addResults[url]; ok {
		return r.id, r.err
	}
	return fmt.Sprintf("src-%d", len(f.addCalls)), nil
}

func (f *fakeService) WaitForSources(ctx context.Context, notebookID string, ids []string, timeout time.Duration) error {
	f.record("wait")
	f.waitCalls = append(f.waitCalls, ids)
	f.waitTTL = timeout
	return f.waitErr
}

func (f *fakeService) Close() error {
	f.closed++
	return nil
}

func (f *fakeService) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeService) opener() Opener {
	return OpenerFunc(func(context.Context) (Session, error) { return f, nil })
}
