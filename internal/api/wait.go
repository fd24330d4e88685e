package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WaitForSource polls the notebook until sourceID settles. It returns the
// ready source, a *SourceProcessingError if the service failed it, or the
// context error. A source not yet listed is treated as still processing.
func (c *Client) WaitForSource(ctx context.Context, projectID, sourceID string) (Source, error) {
	delay := c.poll.initial
	for {
		nb, err := c.GetProject(ctx, projectID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Source{}, ctxErr
			}
			return Source{}, errors.Wrapf(err, "poll source %s", sourceID)
		}
		if src, ok := nb.Source(sourceID); ok {
			if src.Status.Settled() {
				if src.Status == SourceStatusError {
					return src, &SourceProcessingError{SourceID: sourceID, Status: src.Status}
				}
				return src, nil
			}
			c.log.Debug("source pending", zap.String("source_id", sourceID), zap.Stringer("status", src.Status))
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return Source{}, ctx.Err()
		case <-t.C:
		}
		delay = c.poll.next(delay)
	}
}

// WaitForSources waits, in parallel, for every id in sourceIDs to settle.
// If timeout elapses first, or a poll could not be scheduled before it, it
// returns a *SourceTimeoutError naming the ids still pending; cancellation of
// ctx itself is returned as is.
func (c *Client) WaitForSources(ctx context.Context, projectID string, sourceIDs []string, timeout time.Duration) error {
	if len(sourceIDs) == 0 {
		return nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{}, len(sourceIDs))
	)
	for _, id := range sourceIDs {
		pending[id] = struct{}{}
	}

	g, gctx := errgroup.WithContext(waitCtx)
	for _, id := range sourceIDs {
		id := id
		g.Go(func() error {
			if _, err := c.WaitForSource(gctx, projectID, id); err != nil {
				return err
			}
			mu.Lock()
			delete(pending, id)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		c.log.Info("sources ready", zap.Int("count", len(sourceIDs)))
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	// A poll refused because its rate-limit slot falls past the deadline is
	// marked DeadlineExceeded before waitCtx itself expires.
	if errors.Is(err, context.DeadlineExceeded) ||
		(errors.Is(waitCtx.Err(), context.DeadlineExceeded) && errors.Is(err, context.Canceled)) {
		mu.Lock()
		ids := make([]string, 0, len(pending))
		for id := range pending {
			ids = append(ids, id)
		}
		mu.Unlock()
		sort.Strings(ids)
		return &SourceTimeoutError{Pending: ids, Timeout: timeout}
	}
	return errors.Wrap(err, "wait for sources")
}
