package credentials

import (
	"context"
	"sync"
)

// Pool runs hashing and verification on a fixed set of worker
// goroutines so the deliberately slow bcrypt work never saturates the
// request-handling path. Callers block on a result channel and honor
// context cancellation; an abandoned job has no cleanup obligation
// because persistence only ever happens after hashing completes.
type Pool struct {
	hasher PasswordHasher
	jobs   chan func()
	wg     sync.WaitGroup

	closeOnce sync.Once
}

type hashResult struct {
	hash string
	err  error
}

type compareResult struct {
	match bool
	err   error
}

// NewPool starts workers goroutines servicing a queue of queue pending
// jobs. workers and queue are clamped to at least 1.
func NewPool(hasher PasswordHasher, workers, queue int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = 1
	}

	p := &Pool{
		hasher: hasher,
		jobs:   make(chan func(), queue),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Hash computes a salted hash of plaintext on the pool.
func (p *Pool) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	results := make(chan hashResult, 1)
	job := func() {
		hash, err := p.hasher.Hash(plaintext)
		results <- hashResult{hash: hash, err: err}
	}

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case res := <-results:
		return res.hash, res.err
	case <-ctx.Done():
		// The in-flight computation is abandoned; the buffered result
		// channel lets the worker finish without blocking.
		return "", ctx.Err()
	}
}

// Compare verifies a candidate plaintext against a stored hash on the
// pool. Read-only, no side effects.
func (p *Pool) Compare(ctx context.Context, plaintext, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	results := make(chan compareResult, 1)
	job := func() {
		match, err := p.hasher.Compare(plaintext, hash)
		results <- compareResult{match: match, err: err}
	}

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	select {
	case res := <-results:
		return res.match, res.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Close stops accepting work and waits for in-flight jobs to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
