package usecase

import (
	"context"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
	"github.com/Tiliavir/owl-time-keeper/internal/observable"
)

func (s *Service) GetMenuBarRestriction(ctx context.Context) (model.MenuBarRestriction, error) {
	return s.settings.MenuBarRestriction(ctx)
}

func (s *Service) SetMenuBarRestriction(ctx context.Context, r model.MenuBarRestriction) error {
	err := s.settings.SetMenuBarRestriction(ctx, r)
	s.track("set_menu_bar_restriction", err)
	return wrap("set menu bar restriction", err)
}

func (s *Service) ObserveMenuBarRestriction(listener observable.Listener[model.MenuBarRestriction]) *observable.Subscription {
	return s.settings.ObserveMenuBarRestriction(listener)
}

func (s *Service) GetDockIconVisibility(ctx context.Context) (bool, error) {
	return s.settings.IsDockIconVisible(ctx)
}

func (s *Service) SetDockIconVisibility(ctx context.Context, visible bool) error {
	err := s.settings.SetDockIconVisibility(ctx, visible)
	s.track("set_dock_icon_visibility", err)
	return wrap("set dock icon visibility", err)
}

func (s *Service) ObserveDockIconVisibility(listener observable.Listener[bool]) *observable.Subscription {
	return s.settings.ObserveDockIconVisibility(listener)
}

func (s *Service) GetStoragePath(ctx context.Context) (model.StoragePath, error) {
	return s.settings.StoragePath(ctx)
}

// SetStoragePath records a new storage root, copying the data files when
// migrate is set. The running service keeps using the store it was built
// with; the new root takes effect on the next start.
func (s *Service) SetStoragePath(ctx context.Context, path string, migrate bool) error {
	err := s.settings.SetStoragePath(ctx, path, migrate)
	s.track("set_storage_path", err)
	return wrap("set storage path", err)
}

// TrayTitle is the menu-bar text: the active task name under the current
// restriction, or "" when nothing is active.
func (s *Service) TrayTitle(ctx context.Context) (string, error) {
	at, err := s.GetActiveTask(ctx)
	if err != nil || at == nil {
		return "", err
	}
	restriction, err := s.settings.MenuBarRestriction(ctx)
	if err != nil {
		return "", err
	}
	return restriction.Apply(at.Task.Name), nil
}
