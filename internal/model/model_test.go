package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

func TestTimeRecordValidate(t *testing.T) {
	tests := []struct {
		start, end int64
		wantErr    bool
	}{
		{0, 1, false},
		{100, 100, true},
		{200, 100, true},
	}
	for _, tt := range tests {
		err := model.TimeRecord{StartTime: tt.start, EndTime: tt.end}.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%d, %d) err = %v, wantErr %v", tt.start, tt.end, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, model.ErrInvalidTimeRange) {
			t.Errorf("Validate(%d, %d) err = %v, want ErrInvalidTimeRange", tt.start, tt.end, err)
		}
	}
}

func TestTimeRecordDuration(t *testing.T) {
	r := model.TimeRecord{StartTime: 1_000, EndTime: 91_000}
	if got := r.Duration(); got != 90*time.Second {
		t.Errorf("Duration = %v, want 1m30s", got)
	}
}

func TestCompareTask(t *testing.T) {
	a := model.Task{ID: "2", Name: "alpha"}
	b := model.Task{ID: "1", Name: "beta"}
	c := model.Task{ID: "3", Name: "alpha"}
	if model.CompareTask(a, b) >= 0 {
		t.Error("alpha should sort before beta")
	}
	if model.CompareTask(a, c) >= 0 {
		t.Error("equal names should fall back to id")
	}
	if model.CompareTask(a, a) != 0 {
		t.Error("task should compare equal to itself")
	}
}

func TestCompareTimeRecord(t *testing.T) {
	a := model.TimeRecord{ID: "a", StartTime: 10, EndTime: 20}
	b := model.TimeRecord{ID: "b", StartTime: 10, EndTime: 30}
	c := model.TimeRecord{ID: "c", StartTime: 5, EndTime: 50}
	if model.CompareTimeRecord(c, a) >= 0 {
		t.Error("earlier start should sort first")
	}
	if model.CompareTimeRecord(a, b) >= 0 {
		t.Error("equal start should compare end")
	}
	if model.CompareTimeRecord(a, a) != 0 {
		t.Error("record should compare equal to itself")
	}
}

func TestStoragePathState(t *testing.T) {
	pending := "/new"
	if got := (model.StoragePath{AbsolutePath: "/old"}).State(); got != model.Settled {
		t.Errorf("State = %v, want settled", got)
	}
	if got := (model.StoragePath{AbsolutePath: "/old", PendingAbsolutePath: &pending}).State(); got != model.Pending {
		t.Errorf("State = %v, want pending", got)
	}
	if err := (model.StoragePath{}).Validate(); err == nil {
		t.Error("expected error for empty absolutePath")
	}
}

func TestMenuBarRestrictionApply(t *testing.T) {
	tests := []struct {
		r     model.MenuBarRestriction
		title string
		want  string
	}{
		{model.MenuBarRestriction{Restricted: false, MaxCharacters: 3}, "writing", "writing"},
		{model.MenuBarRestriction{Restricted: true, MaxCharacters: 3}, "writing", "wri"},
		{model.MenuBarRestriction{Restricted: true, MaxCharacters: 10}, "writing", "writing"},
		{model.MenuBarRestriction{Restricted: true, MaxCharacters: 2}, "日本語", "日本"},
		{model.MenuBarRestriction{Restricted: true, MaxCharacters: 0}, "x", ""},
	}
	for _, tt := range tests {
		if got := tt.r.Apply(tt.title); got != tt.want {
			t.Errorf("%+v.Apply(%q) = %q, want %q", tt.r, tt.title, got, tt.want)
		}
	}
}
