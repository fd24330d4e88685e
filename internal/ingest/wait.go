package ingest

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jmagar/axon/internal/api"
)

// DefaultWaitTimeout bounds how long AwaitCompletion waits for processing.
const DefaultWaitTimeout = 120 * time.Second

// AwaitCompletion waits for sourceIDs to finish processing. It reports
// settled=false, with no error, when the timeout elapses first: the sources
// are already added and will finish on their own. With no ids it returns at
// once without calling the service.
func AwaitCompletion(ctx context.Context, svc Service, notebookID string, sourceIDs []string, timeout time.Duration) (settled bool, err error) {
	if len(sourceIDs) == 0 {
		return true, nil
	}
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	err = svc.WaitForSources(ctx, notebookID, sourceIDs, timeout)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, api.ErrWaitTimeout):
		return false, nil
	default:
		return false, errors.Wrap(err, "wait for sources")
	}
}
