package settings

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Tiliavir/owl-time-keeper/internal/model"
)

// ValidationError names the first key of the settings file that does not
// match the expected shape.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("settings: key `%s` %s", e.Field, e.Reason)
}

type object map[string]json.RawMessage

// Decode parses a settings file. Every key must be present; only
// storagePath.pendingAbsolutePath may be null.
func Decode(data []byte) (model.Settings, error) {
	var s model.Settings

	root, err := decodeObject(data, "$")
	if err != nil {
		return s, err
	}

	sp, err := root.object("storagePath")
	if err != nil {
		return s, err
	}
	if err := sp.into("storagePath", "absolutePath", &s.StoragePath.AbsolutePath); err != nil {
		return s, err
	}
	if s.StoragePath.AbsolutePath == "" {
		return s, &ValidationError{Field: "storagePath.absolutePath", Reason: "is empty"}
	}
	pending, err := sp.nullable("storagePath", "pendingAbsolutePath")
	if err != nil {
		return s, err
	}
	if pending != nil {
		var p string
		if err := json.Unmarshal(pending, &p); err != nil {
			return s, &ValidationError{Field: "storagePath.pendingAbsolutePath", Reason: "is not a string or null"}
		}
		s.StoragePath.PendingAbsolutePath = &p
	}

	mb, err := root.object("menuBarRestriction")
	if err != nil {
		return s, err
	}
	if err := mb.into("menuBarRestriction", "restricted", &s.MenuBarRestriction.Restricted); err != nil {
		return s, err
	}
	if err := mb.into("menuBarRestriction", "maxCharacters", &s.MenuBarRestriction.MaxCharacters); err != nil {
		return s, err
	}

	if err := root.into("", "isDockIconVisible", &s.IsDockIconVisible); err != nil {
		return s, err
	}
	return s, nil
}

func decodeObject(raw json.RawMessage, field string) (object, error) {
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, &ValidationError{Field: field, Reason: "is not an object"}
	}
	if obj == nil {
		return nil, &ValidationError{Field: field, Reason: "is null"}
	}
	return obj, nil
}

func (o object) object(key string) (object, error) {
	raw, err := o.required("", key)
	if err != nil {
		return nil, err
	}
	return decodeObject(raw, key)
}

// nullable returns nil for an explicit null and fails for a missing key.
func (o object) nullable(parent, key string) (json.RawMessage, error) {
	raw, ok := o[key]
	if !ok {
		return nil, &ValidationError{Field: join(parent, key), Reason: "is missing"}
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	return raw, nil
}

func (o object) required(parent, key string) (json.RawMessage, error) {
	raw, err := o.nullable(parent, key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, &ValidationError{Field: join(parent, key), Reason: "is null"}
	}
	return raw, nil
}

func (o object) into(parent, key string, dst any) error {
	raw, err := o.required(parent, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Field: join(parent, key), Reason: fmt.Sprintf("has invalid type (%T expected)", dst)}
	}
	return nil
}

func join(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}
