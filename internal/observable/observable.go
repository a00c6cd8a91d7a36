package observable

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Tiliavir/owl-time-keeper/internal/logfields"
)

// Listener receives values pushed by an Observable.
type Listener[T any] func(T)

// Producer loads the initial value of an Observable.
type Producer[T any] func(ctx context.Context) (T, error)

// Config binds an Observable to one event of a channel.
type Config struct {
	Event   string
	Channel *Channel
}

// Observable caches the latest value published for its event and pushes it
// to every registered listener. A listener registered after the cache is
// populated immediately receives the cached value.
type Observable[T any] struct {
	cfg    Config
	token  Token
	logger *slog.Logger

	mu      sync.Mutex
	cache   T
	version uint64 // 0 while uncached
	slots   []*slot[T]
	closed  bool

	ready chan struct{}
}

type slot[T any] struct {
	listener  Listener[T]
	sub       *Subscription
	delivered atomic.Uint64
}

// New subscribes to cfg.Event on cfg.Channel. If initial is non-nil it runs
// in the background; its value seeds the cache unless an event arrived
// first. A failing producer leaves the Observable uncached.
func New[T any](ctx context.Context, cfg Config, initial Producer[T]) *Observable[T] {
	o := &Observable[T]{
		cfg:    cfg,
		logger: slog.Default().With(logfields.Event(cfg.Event)),
		ready:  make(chan struct{}),
	}
	o.token = cfg.Channel.Subscribe(cfg.Event, o.handle)
	if initial == nil {
		close(o.ready)
		return o
	}
	go func() {
		defer close(o.ready)
		v, err := initial(ctx)
		if err != nil {
			o.logger.Debug("initial value unavailable, staying uncached", logfields.Error(err))
			return
		}
		// Queued behind a running delivery, if any. Ready must not wait for
		// it: the delivering goroutine may itself be waiting on Ready.
		cfg.Channel.Dispatch(func() { o.seed(v) })
	}()
	return o
}

// Ready is closed once the initial producer has finished, successfully or not.
// Its value is then either cached or queued on the channel ahead of any replay
// requested by a later On.
func (o *Observable[T]) Ready() <-chan struct{} {
	return o.ready
}

// Value returns the cached value, if any.
func (o *Observable[T]) Value() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cache, o.version > 0
}

// On registers l for every subsequent update. If a value is cached, l receives
// it before On returns (or, when called from inside a delivery, right after
// the current delivery).
func (o *Observable[T]) On(l Listener[T]) *Subscription {
	s := &slot[T]{listener: l}
	s.sub = &Subscription{cancel: func() { o.remove(s) }}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		s.sub.detached.Store(true)
		return s.sub
	}
	o.slots = append(o.slots, s)
	o.mu.Unlock()

	o.cfg.Channel.Dispatch(func() {
		o.mu.Lock()
		v, version := o.cache, o.version
		o.mu.Unlock()
		if version > 0 {
			s.deliver(v, version)
		}
	})
	return s.sub
}

// Off removes the listener behind sub. Calling it again is a no-op.
func (o *Observable[T]) Off(sub *Subscription) {
	sub.Unsubscribe()
}

// Close detaches from the channel and drops every listener.
func (o *Observable[T]) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	slots := o.slots
	o.slots = nil
	o.mu.Unlock()

	o.cfg.Channel.Unsubscribe(o.token)
	for _, s := range slots {
		s.sub.detached.Store(true)
	}
}

func (o *Observable[T]) handle(payload any) {
	v, ok := payload.(T)
	if !ok {
		o.logger.Warn("dropping event with unexpected payload type", slog.Any("payload", payload))
		return
	}
	o.update(v)
}

func (o *Observable[T]) update(v T) {
	o.mu.Lock()
	o.version++
	o.cache = v
	version := o.version
	slots := append([]*slot[T](nil), o.slots...)
	o.mu.Unlock()

	for _, s := range slots {
		s.deliver(v, version)
	}
}

func (o *Observable[T]) seed(v T) {
	o.mu.Lock()
	if o.version > 0 {
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()
	o.update(v)
}

func (o *Observable[T]) remove(s *slot[T]) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, cur := range o.slots {
		if cur == s {
			o.slots = append(o.slots[:i:i], o.slots[i+1:]...)
			return
		}
	}
}

// deliver calls the listener unless it was detached or already saw this version.
func (s *slot[T]) deliver(v T, version uint64) {
	if s.sub.detached.Load() || version <= s.delivered.Load() {
		return
	}
	s.delivered.Store(version)
	s.listener(v)
}

// Subscription binds one listener to one Observable.
type Subscription struct {
	cancel   func()
	detached atomic.Bool
}

// NewSubscription returns a Subscription whose first Unsubscribe calls cancel.
// It lets wrappers hand out their own cleanup behind the same type.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe permanently detaches the listener. It is safe to call more than
// once, from any goroutine, and from inside the listener itself.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.detached.CompareAndSwap(false, true) {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// Active reports whether the listener is still attached.
func (s *Subscription) Active() bool {
	return s != nil && !s.detached.Load()
}
