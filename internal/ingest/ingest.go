// Package ingest adds a batch of URLs to a NotebookLM notebook: it resolves
// the notebook, queues every URL one at a time, then waits once for all
// queued sources to finish processing.
package ingest

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Orchestrator runs one ingestion request against a freshly opened session.
type Orchestrator struct {
	Opener      Opener
	WaitTimeout time.Duration // DefaultWaitTimeout when zero
	Log         *zap.Logger
}

// Run resolves the notebook, submits the URLs and waits for them. Per-URL
// failures are part of the report; any returned error is fatal to the run,
// including cancellation of ctx at any phase.
// The session is closed before Run returns.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Report, error) {
	log := o.Log
	if log == nil {
		log = zap.NewNop()
	}

	sess, err := o.Opener.Open(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "open session")
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("close session", zap.Error(cerr))
		}
	}()

	nb, err := Resolve(ctx, sess, req.Notebook)
	if err != nil {
		return Report{}, err
	}
	log = log.With(zap.String("notebook_id", nb.ID))
	log.Info("resolved notebook", zap.String("target", req.Notebook), zap.String("title", nb.Title))

	added, failures := SubmitAll(ctx, sess, nb.ID, req.URLs)
	log.Info("submitted sources",
		zap.Int("urls", len(req.URLs)),
		zap.Int("added", len(added)),
		zap.Int("failed", len(failures)))
	for _, f := range failures {
		log.Warn("source not added", zap.String("url", f.URL), zap.String("reason", f.Message))
	}
	if err := ctx.Err(); err != nil {
		return Report{}, errors.Wrap(err, "submit sources")
	}

	start := time.Now()
	settled, err := AwaitCompletion(ctx, sess, nb.ID, added, o.WaitTimeout)
	if err != nil {
		return Report{}, err
	}
	if !settled {
		log.Warn("sources still processing at timeout", zap.Duration("waited", time.Since(start)))
	} else if len(added) > 0 {
		log.Info("sources processed", zap.Duration("waited", time.Since(start)))
	}

	return NewReport(nb, added, failures), nil
}
