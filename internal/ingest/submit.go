package ingest

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/jmagar/axon/internal/api"
)

// Failure is a URL the service did not accept.
type Failure struct {
	URL     string
	Message string
}

func (f Failure) String() string {
	return f.URL + ": " + f.Message
}

// SubmitAll queues each URL in order, one call at a time. A failed URL is
// recorded and never stops the ones after it, so len(added)+len(failures)
// always equals len(urls).
func SubmitAll(ctx context.Context, svc Service, notebookID string, urls []string) (added []string, failures []Failure) {
	added = make([]string, 0, len(urls))
	for _, u := range urls {
		id, err := svc.AddURL(ctx, notebookID, u)
		if err != nil {
			failures = append(failures, Failure{URL: u, Message: submissionMessage(err)})
			continue
		}
		added = append(added, id)
	}
	return added, failures
}

func submissionMessage(err error) string {
	if errors.Is(err, api.ErrSourceRejected) || errors.Is(err, api.ErrRateLimited) {
		return err.Error()
	}
	return "Unexpected error: " + err.Error()
}
