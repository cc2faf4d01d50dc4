// Package tasks runs work after a response has been sent.
package tasks

import (
	"log"
	"sync"
)

// Task is a unit of deferred work. Its error is logged, never returned to a client.
type Task func() error

// Runner executes tasks on background goroutines and lets the owner wait
// for all of them, typically during shutdown.
type Runner struct {
	wg sync.WaitGroup
}

// NewRunner returns an idle runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Go runs fn on its own goroutine.
func (r *Runner) Go(name string, fn Task) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		run(name, fn)
	}()
}

// Wait waits for all background tasks to complete.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func run(name string, fn Task) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Background task %s panicked: %v", name, rec)
		}
	}()
	if err := fn(); err != nil {
		log.Printf("Background task %s failed: %v", name, err)
	}
}

type queued struct {
	name string
	fn   Task
}

// Queue collects the tasks scheduled while handling one request.
type Queue struct {
	mu    sync.Mutex
	items []queued
}

// Add schedules fn. Tasks run in the order they were added.
func (q *Queue) Add(name string, fn Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, queued{name: name, fn: fn})
}

// Len returns the number of tasks waiting in the queue.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Names returns the names of the queued tasks, in order.
func (q *Queue) Names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	names := make([]string, len(q.items))
	for i, it := range q.items {
		names[i] = it.name
	}
	return names
}

// Flush hands every queued task to r as a single sequential batch and
// empties the queue.
func (q *Queue) Flush(r *Runner) {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	if len(items) == 0 {
		return
	}
	r.Go("batch", func() error {
		for _, it := range items {
			run(it.name, it.fn)
		}
		return nil
	})
}

// Discard drops every queued task without running it.
func (q *Queue) Discard() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
