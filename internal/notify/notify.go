// Package notify keeps the short-lived "added to cart" messages per session.
//
// A notification slides in ShowDelay after it is raised, starts sliding out at
// HideDelay and is gone RemoveDelay later. Each one is scheduled on its own;
// a newer notification never cancels or reschedules an older one.
package notify

import (
	"sync"
	"time"
)

const (
	ShowDelay   = 100 * time.Millisecond
	HideDelay   = 3000 * time.Millisecond
	RemoveDelay = 300 * time.Millisecond
)

type Notification struct {
	Message  string    `json:"message"`
	ShowAt   time.Time `json:"show_at"`
	HideAt   time.Time `json:"hide_at"`
	RemoveAt time.Time `json:"remove_at"`
}

func New(msg string, now time.Time) Notification {
	hide := now.Add(HideDelay)
	return Notification{
		Message:  msg,
		ShowAt:   now.Add(ShowDelay),
		HideAt:   hide,
		RemoveAt: hide.Add(RemoveDelay),
	}
}

// Visible reports whether n is on screen (not sliding in or out) at t.
func (n Notification) Visible(t time.Time) bool {
	return !t.Before(n.ShowAt) && t.Before(n.HideAt)
}

// Attached reports whether n still occupies the page at t.
func (n Notification) Attached(t time.Time) bool {
	return t.Before(n.RemoveAt)
}

type Center struct {
	mu  sync.Mutex
	now func() time.Time
	m   map[string][]Notification
}

type Option func(*Center)

func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

func NewCenter(opts ...Option) *Center {
	c := &Center{now: time.Now, m: map[string][]Notification{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Notify raises msg for session and returns the scheduled notification.
func (c *Center) Notify(session, msg string) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := New(msg, now)
	c.m[session] = append(prune(c.m[session], now), n)
	return n
}

// Active returns the notifications still attached for session, oldest first.
func (c *Center) Active(session string) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	ns := prune(c.m[session], now)
	if len(ns) == 0 {
		delete(c.m, session)
		return []Notification{}
	}
	c.m[session] = ns
	return append([]Notification(nil), ns...)
}

// Sweep drops expired notifications for every session.
func (c *Center) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, ns := range c.m {
		ns = prune(ns, now)
		if len(ns) == 0 {
			delete(c.m, k)
			continue
		}
		c.m[k] = ns
	}
}

func prune(ns []Notification, now time.Time) []Notification {
	n := 0
	for _, x := range ns {
		if x.Attached(now) {
			ns[n] = x
			n++
		}
	}
	return ns[:n]
}
