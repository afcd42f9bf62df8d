// Package notice is the dashboard's transient message channel: success and
// error toasts queued by fire-and-forget actions and drained by the UI.
package notice

import (
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one toast
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Queue is a bounded FIFO; once full the oldest notice is dropped.
type Queue struct {
	mu    sync.Mutex
	items []Notice
	max   int
	now   func() time.Time
}

// NewQueue creates a Queue holding at most max notices
func NewQueue(max int) *Queue {
	if max < 1 {
		max = 1
	}
	return &Queue{max: max, now: time.Now}
}

func (q *Queue) Success(message string) {
	q.Push(LevelSuccess, message)
}

func (q *Queue) Error(message string) {
	q.Push(LevelError, message)
}

// Push appends a notice. Empty messages are ignored.
func (q *Queue) Push(level Level, message string) {
	if message == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.max {
		q.items = q.items[1:]
	}
	q.items = append(q.items, Notice{Level: level, Message: message, At: q.now()})
}

// Drain returns the queued notices oldest first and empties the queue
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		return []Notice{}
	}
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
