package pool

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Pool executes named jobs in order of their deadlines, using a fixed number
// of goroutines. A job's function returns the deadline for its next run; a
// zero deadline removes the job from the pool. The watch loop uses a pool of
// one worker so that at most one build is ever in flight.
type Pool struct {
	mu    sync.Mutex
	queue []*job
	reg   map[string]*job
	wait  chan struct{}
}

type job struct {
	name     string
	fn       func(context.Context) time.Time
	deadline time.Time
	rerun    bool
}

func New(workers int) *Pool {
	pool := Pool{reg: make(map[string]*job)}

	for range workers {
		go pool.work()
	}

	return &pool
}

// Add registers a job and schedules its first run immediately.
func (p *Pool) Add(name string, fn func(context.Context) time.Time) {
	p.enqueue(&job{name: name, fn: fn, deadline: time.Now()})
}

// work is the main loop for each worker goroutine.
func (p *Pool) work() {
	for {
		ctx := context.Background()
		p.enqueue(p.dequeue().execute(ctx))
	}
}

// Trigger runs the named job NOW, regardless of its previous deadline. If the
// job is not queued it must be running; in that case it is marked for an
// immediate re-run after the current run finishes.
func (p *Pool) Trigger(name string) error {
	return p.reschedule(name, 0)
}

// TriggerAfter schedules the named job delay from now, pushing out any
// earlier pending deadline. Repeated calls therefore coalesce a burst of
// triggers into a single run, which is the debounce behavior the file
// watcher needs.
func (p *Pool) TriggerAfter(name string, delay time.Duration) error {
	return p.reschedule(name, delay)
}

func (p *Pool) reschedule(name string, delay time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i := slices.IndexFunc(p.queue, func(j *job) bool { return j.name == name }); i != -1 {
		p.queue[i].deadline = time.Now().Add(delay)
		p.sortAndWake()
		return nil
	}
	// if it's not in p.queue, it must be running at the moment
	if j, ok := p.reg[name]; ok {
		j.rerun = true
		return nil
	}

	return fmt.Errorf("no job with name %s", name)
}

// sortAndWake is used in multiple places, but always needs to be run
// within a p.mu lock!
func (p *Pool) sortAndWake() {
	// Maintain the jobs in deadline order.
	slices.SortFunc(p.queue, func(a, b *job) int {
		return a.deadline.Compare(b.deadline)
	})

	// Wake up any waiting goroutine.
	if p.wait != nil {
		close(p.wait)
		p.wait = nil
	}
}

func (p *Pool) enqueue(j *job) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// A trigger that arrived while the job was running is resolved here,
	// under the lock that reschedule takes to set it.
	if j.rerun {
		j.rerun = false
		j.deadline = time.Now()
	}

	if j.deadline.IsZero() {
		// Job requested removal from the pool.
		delete(p.reg, j.name)
		return
	}

	p.reg[j.name] = j
	p.queue = append(p.queue, j)
	p.sortAndWake()
}

func (p *Pool) dequeue() *job {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {

		var j *job
		if len(p.queue) == 0 {
			j = &job{name: "dummy", deadline: time.Now().Add(time.Hour * 24 * 365)} // Default to a far future deadline
		} else {
			j = p.queue[0]
		}

		if j.deadline.After(time.Now()) {
			// Job is not ready yet, wait for it to be executed or another (potentially earlier) job to arrive.

			if p.wait == nil {
				p.wait = make(chan struct{})
			}

			wait := p.wait

			p.mu.Unlock()

			select {
			case <-time.After(time.Until(j.deadline)):
			case <-wait:
			}

			p.mu.Lock()
			continue
		}

		// The first queued job is ready to be executed, remove it from the queue.
		break
	}

	var j *job
	j, p.queue = p.queue[0], p.queue[1:]
	return j
}

func (j *job) execute(ctx context.Context) *job {
	// rerun is owned by the pool lock and must not be touched here; a
	// concurrent reschedule may be setting it while fn runs.
	j.deadline = j.fn(ctx)
	return j
}
