// Package notify queues transient user notifications ("toasts").
package notify

import (
	"sync"
	"time"
)

// Kind classifies a toast.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

// Toast is one notification.
type Toast struct {
	Kind    Kind
	Message string
	At      time.Time
}

// Notifier accepts toasts.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Center buffers toasts until the renderer drains them.
type Center struct {
	mu     sync.Mutex
	toasts []Toast
	now    func() time.Time
}

// NewCenter returns an empty Center.
func NewCenter() *Center {
	return &Center{now: time.Now}
}

func (c *Center) Notify(kind Kind, message string) {
	c.mu.Lock()
	c.toasts = append(c.toasts, Toast{Kind: kind, Message: message, At: c.now()})
	c.mu.Unlock()
}

// Drain returns the pending toasts oldest first and empties the queue.
func (c *Center) Drain() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.toasts
	c.toasts = nil
	return out
}
