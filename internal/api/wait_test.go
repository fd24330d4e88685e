package api

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestWaitForSources(t *testing.T) {
	f := newFake(t)
	var polls int32
	f.handle("rLM1Ne", func([]interface{}) reply {
		n := atomic.AddInt32(&polls, 1)
		s2 := SourceStatusProcessing
		if n >= 3 {
			s2 = SourceStatusReady
		}
		// s3 only shows up in the listing after a few polls.
		srcs := [][]interface{}{
			source("s1", "one", SourceStatusReady),
			source("s2", "two", s2),
		}
		if n >= 4 {
			srcs = append(srcs, source("s3", "three", SourceStatusReady))
		}
		return reply{Data: []interface{}{project("nb", "nb-1", srcs...)}}
	})

	err := f.client().WaitForSources(context.Background(), "nb-1", []string{"s1", "s2", "s3"}, 5*time.Second)
	if err != nil {
		t.Fatalf("WaitForSources() = %v", err)
	}
}

func TestWaitForSourcesEmpty(t *testing.T) {
	f := newFake(t)
	if err := f.client().WaitForSources(context.Background(), "nb-1", nil, time.Second); err != nil {
		t.Fatal(err)
	}
	if n := f.callCount("rLM1Ne"); n != 0 {
		t.Errorf("expected no polls, got %d", n)
	}
}

func TestWaitForSourcesTimeout(t *testing.T) {
	f := newFake(t)
	f.handle("rLM1Ne", func([]interface{}) reply {
		return reply{Data: []interface{}{project("nb", "nb-1",
			source("s1", "one", SourceStatusReady),
			source("s2", "two", SourceStatusProcessing),
			source("s3", "three", SourceStatusPreparing),
		)}}
	})

	err := f.client().WaitForSources(context.Background(), "nb-1", []string{"s1", "s2", "s3"}, 100*time.Millisecond)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected ErrWaitTimeout, got %v", err)
	}
	var te *SourceTimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected *SourceTimeoutError, got %T", err)
	}
	if diff := cmp.Diff([]string{"s2", "s3"}, te.Pending); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestWaitForSourcesRateLimitedTimeout(t *testing.T) {
	f := newFake(t)
	f.handle("rLM1Ne", func([]interface{}) reply {
		return reply{Data: []interface{}{project("nb", "nb-1",
			source("s1", "one", SourceStatusProcessing),
			source("s2", "two", SourceStatusProcessing),
			source("s3", "three", SourceStatusProcessing),
		)}}
	})

	// At one request per second the third poller's first slot lies past
	// the deadline, so the limiter refuses it before the deadline arrives.
	c := f.client(WithRateLimit(1))
	err := c.WaitForSources(context.Background(), "nb-1", []string{"s1", "s2", "s3"}, 1500*time.Millisecond)
	var te *SourceTimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected *SourceTimeoutError, got %T (%v)", err, err)
	}
	if !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("errors.Is(ErrWaitTimeout) = false for %v", err)
	}
	if diff := cmp.Diff([]string{"s1", "s2", "s3"}, te.Pending); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
}

func TestWaitForSourcesProcessingError(t *testing.T) {
	f := newFake(t)
	f.handle("rLM1Ne", func([]interface{}) reply {
		return reply{Data: []interface{}{project("nb", "nb-1",
			source("s1", "one", SourceStatusError),
			source("s2", "two", SourceStatusProcessing),
		)}}
	})

	err := f.client().WaitForSources(context.Background(), "nb-1", []string{"s1", "s2"}, 5*time.Second)
	var pe *SourceProcessingError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *SourceProcessingError, got %v", err)
	}
	if pe.SourceID != "s1" {
		t.Errorf("SourceID = %q", pe.SourceID)
	}
	if errors.Is(err, ErrWaitTimeout) {
		t.Error("processing error must not look like a timeout")
	}
}

func TestWaitForSourcesParentCanceled(t *testing.T) {
	f := newFake(t)
	f.handle("rLM1Ne", func([]interface{}) reply {
		return reply{Data: []interface{}{project("nb", "nb-1", source("s1", "one", SourceStatusProcessing))}}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := f.client().WaitForSources(ctx, "nb-1", []string{"s1"}, time.Minute)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected parent deadline, got %v", err)
	}
	if errors.Is(err, ErrWaitTimeout) {
		t.Error("parent cancellation must not be reported as a wait timeout")
	}
}

func TestPollBackoff(t *testing.T) {
	p := defaultPollBackoff
	d := p.initial
	var got []time.Duration
	for i := 0; i < 8; i++ {
		got = append(got, d)
		d = p.next(d)
	}
	want := []time.Duration{
		1 * time.Second,
		1500 * time.Millisecond,
		2250 * time.Millisecond,
		3375 * time.Millisecond,
		5062500 * time.Microsecond,
		7593750 * time.Microsecond,
		10 * time.Second,
		10 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("backoff curve mismatch (-want +got):\n%s", diff)
	}
}
