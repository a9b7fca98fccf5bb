package store

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/julianstephens/vitrine/internal/constants"
	"github.com/julianstephens/vitrine/internal/logger"
)

// job is one queued remote call. A job with a nil run is a flush barrier.
type job struct {
	ctx     context.Context
	op      string
	id      string
	run     func(ctx context.Context) error
	barrier chan struct{}
}

// queue is a FIFO worker for one remote table. Jobs run one at a time in
// enqueue order, so writes to the same row land in commit order.
type queue struct {
	table   string
	limiter *rate.Limiter

	mu     sync.Mutex
	jobs   []job
	closed bool
	wake   chan struct{}
	done   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

func newQueue(table string, limit rate.Limit) *queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &queue{
		table:  table,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	if limit > 0 {
		q.limiter = rate.NewLimiter(limit, 1)
	}
	go q.loop()
	return q
}

var errQueueClosed = errors.New("remote queue closed")

func (q *queue) push(j job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errQueueClosed
	}
	q.jobs = append(q.jobs, j)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// pop blocks until a job is available. It returns false once the queue is
// closed and empty.
func (q *queue) pop() (job, bool) {
	for {
		q.mu.Lock()
		if len(q.jobs) > 0 {
			j := q.jobs[0]
			q.jobs[0] = job{}
			q.jobs = q.jobs[1:]
			q.mu.Unlock()
			return j, true
		}
		if q.closed {
			q.mu.Unlock()
			return job{}, false
		}
		q.mu.Unlock()
		<-q.wake
	}
}

func (q *queue) loop() {
	defer close(q.done)
	for {
		j, ok := q.pop()
		if !ok {
			return
		}
		if j.barrier != nil {
			close(j.barrier)
			continue
		}
		q.exec(j)
	}
}

func (q *queue) exec(j job) {
	// The job keeps the values of the action context but not its deadline;
	// only closing the queue cancels it.
	ctx, cancel := context.WithCancel(context.WithoutCancel(j.ctx))
	stop := context.AfterFunc(q.ctx, cancel)
	defer stop()
	defer cancel()

	if q.limiter != nil {
		if err := q.limiter.Wait(ctx); err != nil {
			logger.Warn("remote write abandoned", "table", q.table, "op", j.op, "id", j.id, "error", err)
			return
		}
	}
	if err := j.run(ctx); err != nil {
		logger.Error("remote write failed", "table", q.table, "op", j.op, "id", j.id, "error", err)
		return
	}
	logger.Debug("remote write done", "table", q.table, "op", j.op, "id", j.id)
}

// flush waits for every job queued before the call.
func (q *queue) flush(ctx context.Context) error {
	barrier := make(chan struct{})
	if err := q.push(job{barrier: barrier}); err != nil {
		return nil
	}
	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shutdown stops accepting jobs and waits for the queue to drain. When ctx
// ends first the in-flight call is cancelled and the rest is dropped.
func (q *queue) shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}

	select {
	case <-q.done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.mu.Lock()
		dropped := 0
		for _, j := range q.jobs {
			if j.barrier != nil {
				close(j.barrier)
				continue
			}
			dropped++
		}
		q.jobs = nil
		q.mu.Unlock()
		q.cancel()
		<-q.done
		if dropped > 0 {
			logger.Warn("remote writes dropped on shutdown", "table", q.table, "count", dropped)
		}
		return ctx.Err()
	}
}

// mirror owns one queue per remote table.
type mirror struct {
	clients *queue
	cards   *queue
}

func newMirror(limit rate.Limit) *mirror {
	return &mirror{
		clients: newQueue(constants.TableClients, limit),
		cards:   newQueue(constants.TableCards, limit),
	}
}

func (m *mirror) enqueue(ctx context.Context, q *queue, op, id string, run func(context.Context) error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := q.push(job{ctx: ctx, op: op, id: id, run: run}); err != nil {
		logger.Warn("remote write skipped", "table", q.table, "op", op, "id", id, "error", err)
	}
}

func (m *mirror) flush(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, q := range []*queue{m.clients, m.cards} {
		g.Go(func() error { return q.flush(gctx) })
	}
	return g.Wait()
}

func (m *mirror) close(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, q := range []*queue{m.clients, m.cards} {
		g.Go(func() error { return q.shutdown(gctx) })
	}
	return g.Wait()
}
