// Package notify turns domain events into localized user-facing
// notifications and keeps the most recent ones for the dashboard.
package notify

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/queues/circularbuffer"
	"github.com/go-logr/logr"

	"ethicalpulse/dashboard/internal/ext"
)

// Notifier publishes a notification for an event code.
type Notifier interface {
	Notify(code Code, args ...interface{})
}

type Notification struct {
	Code Code      `json:"code"`
	Time time.Time `json:"time"`
	Message
}

// Center is a Notifier that logs every notification and retains the last
// capacity ones.
type Center struct {
	clock ext.Clock
	log   logr.Logger

	mu     sync.Mutex
	recent *circularbuffer.Queue
}

func NewCenter(capacity int, clock ext.Clock, log logr.Logger) *Center {
	if capacity <= 0 {
		capacity = 1
	}
	return &Center{
		clock:  clock,
		log:    log.WithName("notify"),
		recent: circularbuffer.New(capacity),
	}
}

func (c *Center) Notify(code Code, args ...interface{}) {
	n := Notification{Code: code, Time: c.clock.Now(), Message: Lookup(code, args...)}
	if n.Variant == VariantDestructive {
		c.log.Info("Notification", "code", code, "title", n.Title, "description", n.Description, "variant", n.Variant)
	} else {
		c.log.V(1).Info("Notification", "code", code, "title", n.Title, "description", n.Description)
	}

	c.mu.Lock()
	c.recent.Enqueue(n)
	c.mu.Unlock()
}

// Recent returns the retained notifications, newest first.
func (c *Center) Recent() []Notification {
	c.mu.Lock()
	values := c.recent.Values()
	c.mu.Unlock()

	out := make([]Notification, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		out = append(out, values[i].(Notification))
	}
	return out
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) Notify(Code, ...interface{}) {}
