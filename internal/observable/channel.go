// Package observable implements a single-slot, last-value-cached push primitive
// on top of an explicit in-process event channel.
package observable

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Handler receives the payload of a published event.
type Handler func(payload any)

// Token identifies one channel registration.
type Token struct {
	topic string
	id    uint64
}

type handlerEntry struct {
	id      uint64
	h       Handler
	removed atomic.Bool
}

// Channel is an in-process pub/sub bus. All deliveries (published events and
// replays queued with Dispatch) run one at a time in the order they were
// queued. A Publish from inside a handler is queued behind the current
// delivery instead of running nested, so handlers may freely publish,
// subscribe and unsubscribe.
type Channel struct {
	mu          sync.Mutex
	nextID      uint64
	handlers    map[string][]*handlerEntry
	queue       []func()
	dispatching bool
}

// NewChannel returns an empty channel.
func NewChannel() *Channel {
	return &Channel{handlers: make(map[string][]*handlerEntry)}
}

// Subscribe registers h for topic. Handlers of one topic run in registration order.
func (c *Channel) Subscribe(topic string, h Handler) Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.handlers[topic] = append(c.handlers[topic], &handlerEntry{id: c.nextID, h: h})
	return Token{topic: topic, id: c.nextID}
}

// Unsubscribe removes the registration. Unknown or already removed tokens are ignored.
func (c *Channel) Unsubscribe(t Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.handlers[t.topic]
	for i, e := range entries {
		if e.id == t.id {
			e.removed.Store(true)
			entries = slices.Delete(slices.Clone(entries), i, i+1)
			break
		}
	}
	if len(entries) == 0 {
		delete(c.handlers, t.topic)
		return
	}
	c.handlers[t.topic] = entries
}

// Publish delivers payload to the handlers registered for topic at the time of the call.
func (c *Channel) Publish(topic string, payload any) {
	c.mu.Lock()
	entries := c.handlers[topic]
	c.mu.Unlock()
	c.Dispatch(func() {
		for _, e := range entries {
			if !e.removed.Load() {
				e.h(payload)
			}
		}
	})
}

// Dispatch runs fn in channel order. When nothing else is being delivered fn
// runs on the caller's goroutine before Dispatch returns; otherwise it is
// queued and run by the goroutine currently delivering.
func (c *Channel) Dispatch(fn func()) {
	c.mu.Lock()
	c.queue = append(c.queue, fn)
	if c.dispatching {
		c.mu.Unlock()
		return
	}
	c.dispatching = true
	defer func() {
		if r := recover(); r != nil {
			c.mu.Lock()
			c.dispatching = false
			c.queue = nil
			c.mu.Unlock()
			panic(r)
		}
	}()
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		next()
		c.mu.Lock()
	}
	c.dispatching = false
	c.mu.Unlock()
}

// HasSubscribers reports whether topic has at least one handler.
func (c *Channel) HasSubscribers(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[topic]) > 0
}

// Topics returns the topics with handlers whose name starts with prefix, sorted.
func (c *Channel) Topics(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for topic := range c.handlers {
		if strings.HasPrefix(topic, prefix) {
			out = append(out, topic)
		}
	}
	slices.Sort(out)
	return out
}
