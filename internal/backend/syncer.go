package backend

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"taskboard/internal/action"
	"taskboard/internal/state"
	"taskboard/internal/store"
)

const defaultQueueSize = 64

type syncJob struct {
	action  action.Action // nil means replace the whole tree
	next    state.Tree
	version uint64
}

// Syncer applies store changes to a Backend in dispatch order on a single worker goroutine.
// Failed writes are logged and remembered, never retried.
type Syncer struct {
	b       Backend
	log     *slog.Logger
	timeout time.Duration

	mu     sync.Mutex // guards queue sends against Close
	closed bool
	queue  chan syncJob
	done   chan struct{}

	errMu   sync.Mutex
	err     error
	applied uint64
}

type SyncerOptions struct {
	QueueSize int
	// Timeout bounds each backend write. Zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewSyncer(b Backend, opts SyncerOptions) *Syncer {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Syncer{
		b:       b,
		log:     opts.Logger.With("component", "syncer"),
		timeout: opts.Timeout,
		queue:   make(chan syncJob, opts.QueueSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Attach subscribes the syncer to st. The returned function unsubscribes it.
func (s *Syncer) Attach(st *store.Store) (detach func()) {
	return st.Subscribe(s.Listen)
}

// Listen is a store.Listener. Unchanged dispatches are ignored. When the queue is full it
// blocks the dispatching goroutine rather than dropping a write.
func (s *Syncer) Listen(c store.Change) {
	if !c.Changed {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Warn("change after close dropped", "version", c.Version)
		return
	}
	s.queue <- syncJob{action: c.Action, next: c.Next, version: c.Version}
}

func (s *Syncer) run() {
	defer close(s.done)
	for job := range s.queue {
		s.apply(job)
	}
}

func (s *Syncer) apply(job syncJob) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var err error
	if job.action == nil {
		err = s.b.Replace(ctx, job.next)
	} else {
		err = s.b.Apply(ctx, job.action, job.next)
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if err != nil {
		s.err = errors.Join(s.err, err)
		attrs := []any{"version", job.version, "err", err}
		if job.action != nil {
			attrs = append(attrs, "type", string(job.action.Type()), "task", job.action.TaskID())
		}
		s.log.Error("backend write failed", attrs...)
		return
	}
	s.applied++
	s.log.Debug("backend write", "version", job.version)
}

// Err returns every write error seen so far, joined.
func (s *Syncer) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Syncer) Applied() uint64 {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.applied
}

// Close stops accepting changes and waits for queued writes until ctx is done.
func (s *Syncer) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
