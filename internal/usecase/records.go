package usecase

import (
	"context"

	"github.com/Tiliavir/owl-time-keeper/internal/day"
	"github.com/Tiliavir/owl-time-keeper/internal/logfields"
	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

// AddTimeRecord stores r under a fresh id.
func (s *Service) AddTimeRecord(ctx context.Context, r model.TimeRecord) (model.TimeRecord, error) {
	rec, err := s.store.AddTimeRecord(ctx, r)
	s.track("add_time_record", err)
	if err != nil {
		return model.TimeRecord{}, wrap("add time record", err)
	}
	s.publishRecords(ctx)
	return rec, nil
}

func (s *Service) GetTimeRecord(ctx context.Context, id string) (model.TimeRecord, error) {
	return s.store.GetTimeRecord(ctx, id)
}

// UpdateTimeRecord replaces the record with r.ID; storage.ErrNotFound if absent.
func (s *Service) UpdateTimeRecord(ctx context.Context, r model.TimeRecord) error {
	err := s.store.UpdateTimeRecord(ctx, r)
	s.track("update_time_record", err)
	if err != nil {
		return wrap("update time record", err)
	}
	s.logger.Info("time record updated", logfields.RecordID(r.ID))
	s.publishRecords(ctx)
	return nil
}

func (s *Service) DeleteTimeRecord(ctx context.Context, id string) error {
	err := s.store.DeleteTimeRecord(ctx, id)
	s.track("delete_time_record", err)
	if err != nil {
		return wrap("delete time record", err)
	}
	s.logger.Info("time record deleted", logfields.RecordID(id))
	s.publishRecords(ctx)
	return nil
}

func (s *Service) SelectByDay(ctx context.Context, d day.Day) ([]model.TimeRecord, error) {
	return s.store.SelectByDay(ctx, d)
}

func (s *Service) SelectRange(ctx context.Context, from, to day.Day) ([]model.TimeRecord, error) {
	return s.store.SelectRange(ctx, from, to)
}

func (s *Service) SelectAll(ctx context.Context) ([]model.TimeRecord, error) {
	return s.store.SelectAll(ctx)
}
