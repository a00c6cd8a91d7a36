package model

import (
	"errors"
	"unicode/utf8"
)

// StoragePathState distinguishes a settled storage root from one that is being relocated.
type StoragePathState int

const (
	// Settled means AbsolutePath is authoritative and no migration is in flight.
	Settled StoragePathState = iota
	// Pending means a relocation to PendingAbsolutePath was recorded but not committed.
	// AbsolutePath stays authoritative for reads until the commit.
	Pending
)

func (s StoragePathState) String() string {
	if s == Pending {
		return "pending"
	}
	return "settled"
}

// StoragePath is the root directory of the data files.
type StoragePath struct {
	AbsolutePath        string  `json:"absolutePath"`
	PendingAbsolutePath *string `json:"pendingAbsolutePath"`
}

// State reports whether p is settled or mid-migration.
func (p StoragePath) State() StoragePathState {
	if p.PendingAbsolutePath != nil {
		return Pending
	}
	return Settled
}

// Validate rejects a missing AbsolutePath, which is always corruption.
func (p StoragePath) Validate() error {
	if p.AbsolutePath == "" {
		return errors.New("storage path: absolutePath is empty")
	}
	return nil
}

// MenuBarRestriction limits how much of the active task name the menu bar shows.
type MenuBarRestriction struct {
	Restricted    bool `json:"restricted"`
	MaxCharacters int  `json:"maxCharacters"`
}

// Apply truncates title to MaxCharacters runes when the restriction is on.
func (r MenuBarRestriction) Apply(title string) string {
	if !r.Restricted || r.MaxCharacters < 0 || utf8.RuneCountInString(title) <= r.MaxCharacters {
		return title
	}
	return string([]rune(title)[:r.MaxCharacters])
}

// Settings mirrors the settings file.
type Settings struct {
	StoragePath        StoragePath        `json:"storagePath"`
	MenuBarRestriction MenuBarRestriction `json:"menuBarRestriction"`
	IsDockIconVisible  bool               `json:"isDockIconVisible"`
}
