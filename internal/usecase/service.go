// Package usecase is the façade the CLI talks to. It composes the task store,
// the settings repository and the observer channel, and owns the rule for
// switching the active task.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Tiliavir/owl-time-keeper/internal/day"
	"github.com/Tiliavir/owl-time-keeper/internal/logfields"
	"github.com/Tiliavir/owl-time-keeper/internal/metrics"
	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/observable"
	"github.com/Tiliavir/owl-time-keeper/internal/settings"
)

// Channel events published after successful writes.
const (
	EventTasksChanged       = "onTasksChanged"
	EventActiveTaskChanged  = "onActiveTaskChanged"
	EventTimeRecordsChanged = "onTimeRecordsChanged"
)

// Store is the persistence the service needs. *storage.Store implements it.
type Store interface {
	CreateTask(ctx context.Context, name string) (model.Task, error)
	GetTask(ctx context.Context, id string) (model.Task, error)
	FindTaskByName(ctx context.Context, name string) (model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ExistsTask(ctx context.Context, id string) (bool, error)
	RenameTask(ctx context.Context, id, name string) error
	DeleteTask(ctx context.Context, id string) error

	GetActiveTask(ctx context.Context) (*model.ActiveTask, error)
	SetActiveTask(ctx context.Context, task model.Task, startTime int64) error
	ClearActiveTask(ctx context.Context) error
	CommitSwitch(ctx context.Context, rec *model.TimeRecord, next *model.ActiveTask) (*model.TimeRecord, error)

	AddTimeRecord(ctx context.Context, r model.TimeRecord) (model.TimeRecord, error)
	GetTimeRecord(ctx context.Context, id string) (model.TimeRecord, error)
	UpdateTimeRecord(ctx context.Context, r model.TimeRecord) error
	UpdateTaskName(ctx context.Context, taskID, name string) (int64, error)
	DeleteTimeRecord(ctx context.Context, id string) error
	SelectByDay(ctx context.Context, d day.Day) ([]model.TimeRecord, error)
	SelectRange(ctx context.Context, from, to day.Day) ([]model.TimeRecord, error)
	SelectAll(ctx context.Context) ([]model.TimeRecord, error)
}

// Options configures a Service. Store and Settings are required.
type Options struct {
	Store    Store
	Settings *settings.Repository
	// Channel defaults to the settings repository's channel.
	Channel  *observable.Channel
	Clock    func() time.Time
	Recorder metrics.Recorder
}

// Service implements the use cases.
type Service struct {
	store    Store
	settings *settings.Repository
	channel  *observable.Channel
	now      func() time.Time
	recorder metrics.Recorder
	logger   *slog.Logger

	tasks  *observable.Observable[[]model.Task]
	active *observable.Observable[*model.ActiveTask]

	mu   sync.Mutex
	days map[string]*dayObserver
}

// dayObserver is shared by every subscription to one day and closed with
// the last of them.
type dayObserver struct {
	day  day.Day
	obs  *observable.Observable[[]model.TimeRecord]
	refs int
}

// New builds the service and primes the task and active-task observers.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Store == nil || opts.Settings == nil {
		return nil, errors.New("usecase: store and settings are required")
	}
	if opts.Channel == nil {
		opts.Channel = opts.Settings.Channel()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	s := &Service{
		store:    opts.Store,
		settings: opts.Settings,
		channel:  opts.Channel,
		now:      opts.Clock,
		recorder: opts.Recorder,
		logger:   slog.Default(),
		days:     make(map[string]*dayObserver),
	}
	s.tasks = observable.New[[]model.Task](ctx, observable.Config{Event: EventTasksChanged, Channel: s.channel}, s.GetTasks)
	s.active = observable.New[*model.ActiveTask](ctx, observable.Config{Event: EventActiveTaskChanged, Channel: s.channel}, s.GetActiveTask)
	for _, ready := range []<-chan struct{}{s.tasks.Ready(), s.active.Ready()} {
		select {
		case <-ready:
		case <-ctx.Done():
			s.Close()
			return nil, ctx.Err()
		}
	}
	return s, nil
}

// Close detaches every observer owned by the service.
func (s *Service) Close() {
	s.tasks.Close()
	s.active.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, d := range s.days {
		d.obs.Close()
		delete(s.days, key)
	}
}

// Now returns the service clock reading.
func (s *Service) Now() time.Time { return s.now() }

// ObserveTasks registers listener for the task list.
func (s *Service) ObserveTasks(listener observable.Listener[[]model.Task]) *observable.Subscription {
	return s.tasks.On(listener)
}

// ObserveActiveTask registers listener for the active task. A nil value means
// no task is active.
func (s *Service) ObserveActiveTask(listener observable.Listener[*model.ActiveTask]) *observable.Subscription {
	return s.active.On(listener)
}

// ObserveTimeRecords registers listener for the records of d. Outside a
// listener delivery the current records are delivered before it returns;
// from inside one they follow right after the current delivery. The day
// stops being tracked once its last subscription is unsubscribed.
func (s *Service) ObserveTimeRecords(ctx context.Context, d day.Day, listener observable.Listener[[]model.TimeRecord]) (*observable.Subscription, error) {
	topic := recordsTopic(d)
	s.mu.Lock()
	entry, ok := s.days[topic]
	if !ok {
		producer := func(ctx context.Context) ([]model.TimeRecord, error) { return s.store.SelectByDay(ctx, d) }
		entry = &dayObserver{
			day: d,
			obs: observable.New[[]model.TimeRecord](ctx, observable.Config{Event: topic, Channel: s.channel}, producer),
		}
		s.days[topic] = entry
	}
	entry.refs++
	s.mu.Unlock()

	select {
	case <-entry.obs.Ready():
	case <-ctx.Done():
		s.release(topic, entry)
		return nil, ctx.Err()
	}
	inner := entry.obs.On(listener)
	return observable.NewSubscription(func() {
		inner.Unsubscribe()
		s.release(topic, entry)
	}), nil
}

// release drops one reference to entry and closes it with the last one.
func (s *Service) release(topic string, entry *dayObserver) {
	s.mu.Lock()
	entry.refs--
	if entry.refs > 0 || s.days[topic] != entry {
		s.mu.Unlock()
		return
	}
	delete(s.days, topic)
	s.mu.Unlock()
	entry.obs.Close()
}

func recordsTopic(d day.Day) string {
	return EventTimeRecordsChanged + "/" + d.String() + "/" + strconv.Itoa(d.UTCOffset)
}

// track records the outcome of op.
func (s *Service) track(op string, err error) {
	s.recorder.IncOperation(op, metrics.Result(err))
	if err != nil {
		s.logger.Debug("operation failed", slog.String("op", op), logfields.Error(err))
	}
}

func (s *Service) publishTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		s.logger.Warn("could not refresh task observers", logfields.Error(err))
		return
	}
	s.publish(EventTasksChanged, tasks)
}

func (s *Service) publishActive(ctx context.Context) {
	at, err := s.GetActiveTask(ctx)
	if err != nil {
		s.logger.Warn("could not refresh active task observers", logfields.Error(err))
		return
	}
	s.recorder.SetActiveTask(at != nil)
	s.publish(EventActiveTaskChanged, at)
}

// publishRecords refreshes every day that currently has subscriptions.
func (s *Service) publishRecords(ctx context.Context) {
	s.mu.Lock()
	days := make([]day.Day, 0, len(s.days))
	for _, d := range s.days {
		days = append(days, d.day)
	}
	s.mu.Unlock()

	for _, d := range days {
		topic := recordsTopic(d)
		records, err := s.store.SelectByDay(ctx, d)
		if err != nil {
			s.logger.Warn("could not refresh time record observers", logfields.Day(d.String()), logfields.Error(err))
			continue
		}
		s.recorder.IncEvent(EventTimeRecordsChanged)
		s.channel.Publish(topic, records)
	}
}

func (s *Service) publish(event string, payload any) {
	s.recorder.IncEvent(event)
	s.channel.Publish(event, payload)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
