package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Tiliavir/owl-time-keeper/internal/logfields"
	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/storage"
)

// CreateTask fails with storage.ErrTaskAlreadyExists when the name is taken.
func (s *Service) CreateTask(ctx context.Context, name string) (model.Task, error) {
	task, err := s.store.CreateTask(ctx, name)
	s.track("create_task", err)
	if err != nil {
		return model.Task{}, wrap("create task", err)
	}
	s.logger.Info("task created", logfields.TaskID(task.ID), logfields.TaskName(task.Name))
	s.publishTasks(ctx)
	return task, nil
}

// DeleteTask removes the task. Its time records are kept, and an active
// entry for it is reported as no active task from now on.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	err := s.store.DeleteTask(ctx, id)
	s.track("delete_task", err)
	if err != nil {
		return wrap("delete task", err)
	}
	s.logger.Info("task deleted", logfields.TaskID(id))
	s.publishTasks(ctx)
	s.publishActive(ctx)
	return nil
}

func (s *Service) GetTasks(ctx context.Context) ([]model.Task, error) {
	return s.store.ListTasks(ctx)
}

func (s *Service) ExistsTask(ctx context.Context, id string) (bool, error) {
	return s.store.ExistsTask(ctx, id)
}

// FindTask resolves ref as a task id first and then as a task name.
func (s *Service) FindTask(ctx context.Context, ref string) (model.Task, error) {
	task, err := s.store.GetTask(ctx, ref)
	if err == nil {
		return task, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.Task{}, err
	}
	return s.store.FindTaskByName(ctx, ref)
}

// UpdateTaskName renames the task and carries the new name into every time
// record of the task and into the active task snapshot.
func (s *Service) UpdateTaskName(ctx context.Context, id, name string) error {
	err := s.updateTaskName(ctx, id, name)
	s.track("update_task_name", err)
	if err != nil {
		return wrap("rename task", err)
	}
	s.publishTasks(ctx)
	s.publishActive(ctx)
	s.publishRecords(ctx)
	return nil
}

func (s *Service) updateTaskName(ctx context.Context, id, name string) error {
	if err := s.store.RenameTask(ctx, id, name); err != nil {
		return err
	}
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.store.UpdateTaskName(ctx, id, task.Name)
	if err != nil {
		return err
	}
	s.logger.Info("task renamed", logfields.TaskID(id), logfields.TaskName(task.Name), slog.Int64("records", n))

	at, err := s.store.GetActiveTask(ctx)
	if err != nil {
		return err
	}
	if at != nil && at.Task.ID == id {
		return s.store.SetActiveTask(ctx, task, at.StartTime)
	}
	return nil
}

// GetActiveTask returns the active task, or nil when none is active or the
// active task has since been deleted. The returned task carries its current name.
func (s *Service) GetActiveTask(ctx context.Context) (*model.ActiveTask, error) {
	at, err := s.store.GetActiveTask(ctx)
	if err != nil || at == nil {
		return nil, err
	}
	task, err := s.store.GetTask(ctx, at.Task.ID)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug("active task no longer exists", logfields.TaskID(at.Task.ID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	at.Task = task
	return at, nil
}

// SetActiveTask makes task active from now on without recording the
// previously active task. Use SwitchTask for that.
func (s *Service) SetActiveTask(ctx context.Context, task model.Task) error {
	err := s.store.SetActiveTask(ctx, task, s.now().UnixMilli())
	s.track("set_active_task", err)
	if err != nil {
		return wrap("set active task", err)
	}
	s.publishActive(ctx)
	return nil
}

func (s *Service) ClearActiveTask(ctx context.Context) error {
	err := s.store.ClearActiveTask(ctx)
	s.track("clear_active_task", err)
	if err != nil {
		return wrap("clear active task", err)
	}
	s.publishActive(ctx)
	return nil
}

// SwitchTask records the elapsed span of the previously active task, if it
// still exists, and then toggles: selecting the active task again clears it,
// any other task becomes active from now. Both happen in one store
// transaction. It returns the record created, if any.
func (s *Service) SwitchTask(ctx context.Context, task model.Task) (*model.TimeRecord, error) {
	now := s.now().UnixMilli()
	prev, err := s.GetActiveTask(ctx)
	if err != nil {
		s.track("switch_task", err)
		return nil, wrap("switch task", err)
	}

	var next *model.ActiveTask
	if prev == nil || prev.Task.ID != task.ID {
		next = &model.ActiveTask{Task: task, StartTime: now}
	}
	rec, err := s.commit(ctx, prev, next, now)
	s.track("switch_task", err)
	if err != nil {
		return nil, wrap("switch task", err)
	}
	return rec, nil
}

// Stop records the active task up to now and clears it. It returns nil
// when nothing was active.
func (s *Service) Stop(ctx context.Context) (*model.TimeRecord, error) {
	now := s.now().UnixMilli()
	prev, err := s.GetActiveTask(ctx)
	if err != nil {
		s.track("stop", err)
		return nil, wrap("stop", err)
	}

	rec, err := s.commit(ctx, prev, nil, now)
	s.track("stop", err)
	if err != nil {
		return nil, wrap("stop", err)
	}
	return rec, nil
}

// commit stores the span [prev.StartTime, now) of prev together with the
// new active task and notifies observers. Empty or negative spans are skipped.
func (s *Service) commit(ctx context.Context, prev, next *model.ActiveTask, now int64) (*model.TimeRecord, error) {
	var span *model.TimeRecord
	if prev != nil {
		if now > prev.StartTime {
			span = &model.TimeRecord{Task: prev.Task, StartTime: prev.StartTime, EndTime: now}
		} else {
			s.logger.Debug("skipping empty time record", logfields.TaskID(prev.Task.ID))
		}
	}
	rec, err := s.store.CommitSwitch(ctx, span, next)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		s.recorder.ObserveRecordDuration(rec.Duration())
		s.logger.Info("time record added", logfields.RecordID(rec.ID), logfields.TaskName(rec.Task.Name))
		s.publishRecords(ctx)
	}
	s.publishActive(ctx)
	return rec, nil
}
