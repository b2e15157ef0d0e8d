package db

import (
	"database/sql"
	"time"
)

type task struct {
	run  func(*sql.DB) (interface{}, error)
	resp chan result
}

type result struct {
	data interface{}
	err  error
}

// Queue funnels all database work through a single worker goroutine so that
// concurrent dialogue handlers never hit sqlite's single-writer limit. Failed
// tasks are retried a few times with growing delay before the error is
// returned to the caller.
type Queue struct {
	tasks      chan task
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
}

func NewQueue(db *sql.DB) *Queue {
	return newQueue(db, 100*time.Millisecond)
}

// NewQueueForTest uses a minimal retry delay so failing tests don't stall.
func NewQueueForTest(db *sql.DB) *Queue {
	return newQueue(db, time.Millisecond)
}

func newQueue(db *sql.DB, retryDelay time.Duration) *Queue {
	q := &Queue{
		tasks:      make(chan task, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: retryDelay,
	}
	go q.worker()
	return q
}

func (q *Queue) Execute(run func(*sql.DB) (interface{}, error)) (interface{}, error) {
	resp := make(chan result, 1)
	q.tasks <- task{run: run, resp: resp}
	r := <-resp
	return r.data, r.err
}

func (q *Queue) worker() {
	for t := range q.tasks {
		t.resp <- q.runWithRetry(t)
	}
}

func (q *Queue) runWithRetry(t task) result {
	var lastErr error
	for attempt := 0; attempt < q.maxRetry; attempt++ {
		data, err := t.run(q.db)
		if err == nil {
			return result{data: data}
		}
		lastErr = err
		if attempt < q.maxRetry-1 {
			time.Sleep(time.Duration(attempt+1) * q.retryDelay)
		}
	}
	return result{err: lastErr}
}

// Close stops the worker after the queued tasks drain. In-flight writes
// finish before shutdown completes.
func (q *Queue) Close() {
	close(q.tasks)
}

func (q *Queue) DB() *sql.DB {
	return q.db
}
