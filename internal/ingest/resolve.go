package ingest

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/jmagar/axon/internal/api"
)

// Resolve maps target to a notebook: first as an id, then as a title
// (case-insensitive, first match in listing order), and finally by creating
// a notebook titled target. Only a not-found or remote-call failure on the id
// lookup moves on to the title search.
func Resolve(ctx context.Context, svc Service, target string) (Notebook, error) {
	nb, err := svc.GetNotebook(ctx, target)
	if err == nil {
		return nb, nil
	}
	if !errors.Is(err, api.ErrNotFound) && !errors.Is(err, api.ErrRPC) {
		return Notebook{}, errors.Wrap(err, "get notebook")
	}

	notebooks, err := svc.ListNotebooks(ctx)
	if err != nil {
		return Notebook{}, errors.Wrap(err, "list notebooks")
	}
	want := strings.ToLower(target)
	for _, nb := range notebooks {
		if strings.ToLower(nb.Title) == want {
			return nb, nil
		}
	}

	nb, err = svc.CreateNotebook(ctx, target)
	if err != nil {
		return Notebook{}, errors.Wrap(err, "create notebook")
	}
	return nb, nil
}
