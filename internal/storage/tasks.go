package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

// CreateTask inserts a task with a fresh id. Names are unique at creation
// time only; RenameTask does not check them.
func (s *Store) CreateTask(ctx context.Context, name string) (model.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Task{}, errors.New("storage: task name is empty")
	}
	task := model.Task{ID: uuid.NewString(), Name: name}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE name = ?`, name).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %q", ErrTaskAlreadyExists, name)
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO tasks (id, name) VALUES (?, ?)`, task.ID, task.Name)
		return err
	})
	if err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

// FindTaskByName returns the first task named name, ordered by id.
func (s *Store) FindTaskByName(ctx context.Context, name string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name FROM tasks WHERE name = ? ORDER BY id LIMIT 1`, name)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

// ListTasks returns every task ordered by model.CompareTask.
func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tasks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(out, model.CompareTask)
	return out, nil
}

func (s *Store) ExistsTask(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// RenameTask changes the task name only. Use UpdateTaskName to carry the new
// name into existing time records.
func (s *Store) RenameTask(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("storage: task name is empty")
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// DeleteTask removes the task. Time records keep their snapshot.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// GetActiveTask returns nil when no task is active.
func (s *Store) GetActiveTask(ctx context.Context) (*model.ActiveTask, error) {
	var at model.ActiveTask
	err := s.db.QueryRowContext(ctx, `SELECT task_id, task_name, start_time FROM active_task WHERE slot = 1`).
		Scan(&at.Task.ID, &at.Task.Name, &at.StartTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

// SetActiveTask replaces the active task.
func (s *Store) SetActiveTask(ctx context.Context, task model.Task, startTime int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO active_task (slot, task_id, task_name, start_time) VALUES (1, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET task_id = excluded.task_id, task_name = excluded.task_name, start_time = excluded.start_time`,
		task.ID, task.Name, startTime)
	return err
}

// CommitSwitch stores rec, when non-nil, and replaces the active task with
// next, clearing it when next is nil, in one transaction. Either both writes
// land or neither does. It returns the stored record.
func (s *Store) CommitSwitch(ctx context.Context, rec *model.TimeRecord, next *model.ActiveTask) (*model.TimeRecord, error) {
	var stored *model.TimeRecord
	if rec != nil {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		r := *rec
		r.ID = uuid.NewString()
		stored = &r
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if stored != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO time_records (`+recordColumns+`)
				VALUES (?, ?, ?, ?, ?)`,
				stored.ID, stored.Task.ID, stored.Task.Name, stored.StartTime, stored.EndTime,
			); err != nil {
				return fmt.Errorf("insert time record: %w", err)
			}
		}
		if next == nil {
			_, err := tx.ExecContext(ctx, `DELETE FROM active_task`)
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO active_task (slot, task_id, task_name, start_time) VALUES (1, ?, ?, ?)
			ON CONFLICT(slot) DO UPDATE SET task_id = excluded.task_id, task_name = excluded.task_name, start_time = excluded.start_time`,
			next.Task.ID, next.Task.Name, next.StartTime)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ClearActiveTask is a no-op when nothing is active.
func (s *Store) ClearActiveTask(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM active_task`)
	return err
}

func scanTask(row scanner) (model.Task, error) {
	var t model.Task
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		return model.Task{}, err
	}
	return t, nil
}
