package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/Tiliavir/owl-time-keeper/internal/day"
	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

const recordColumns = `id, task_id, task_name, start_time, end_time`

// AddTimeRecord stores r under a fresh id and returns the stored record.
func (s *Store) AddTimeRecord(ctx context.Context, r model.TimeRecord) (model.TimeRecord, error) {
	if err := r.Validate(); err != nil {
		return model.TimeRecord{}, err
	}
	r.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Task.ID, r.Task.Name, r.StartTime, r.EndTime,
	)
	if err != nil {
		return model.TimeRecord{}, err
	}
	return r, nil
}

func (s *Store) GetTimeRecord(ctx context.Context, id string) (model.TimeRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM time_records WHERE id = ?`, id)
	r, err := scanTimeRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TimeRecord{}, ErrNotFound
		}
		return model.TimeRecord{}, err
	}
	return r, nil
}

// UpdateTimeRecord replaces the record with r.ID.
func (s *Store) UpdateTimeRecord(ctx context.Context, r model.TimeRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE time_records
		SET task_id = ?, task_name = ?, start_time = ?, end_time = ?
		WHERE id = ?`,
		r.Task.ID, r.Task.Name, r.StartTime, r.EndTime, r.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// UpdateTaskName rewrites the task snapshot of every record of taskID and
// returns the number of records changed.
func (s *Store) UpdateTaskName(ctx context.Context, taskID, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE time_records SET task_name = ? WHERE task_id = ?`, name, taskID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) DeleteTimeRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM time_records WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// SelectByDay returns the records starting in [d.StartOfDayMillis(), d.EndOfDayMillis()).
func (s *Store) SelectByDay(ctx context.Context, d day.Day) ([]model.TimeRecord, error) {
	return s.selectBetween(ctx, d.StartOfDayMillis(), d.EndOfDayMillis())
}

// SelectRange returns the records starting on any day from through to, inclusive.
func (s *Store) SelectRange(ctx context.Context, from, to day.Day) ([]model.TimeRecord, error) {
	return s.selectBetween(ctx, from.StartOfDayMillis(), to.EndOfDayMillis())
}

func (s *Store) SelectAll(ctx context.Context) ([]model.TimeRecord, error) {
	return s.query(ctx, `SELECT `+recordColumns+` FROM time_records ORDER BY start_time, end_time, id`)
}

func (s *Store) selectBetween(ctx context.Context, startMillis, endMillis int64) ([]model.TimeRecord, error) {
	return s.query(ctx, `
		SELECT `+recordColumns+` FROM time_records
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time, end_time, id`, startMillis, endMillis)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]model.TimeRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.TimeRecord, 0)
	for rows.Next() {
		r, scanErr := scanTimeRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanTimeRecord(row scanner) (model.TimeRecord, error) {
	var r model.TimeRecord
	if err := row.Scan(&r.ID, &r.Task.ID, &r.Task.Name, &r.StartTime, &r.EndTime); err != nil {
		return model.TimeRecord{}, err
	}
	return r, nil
}
