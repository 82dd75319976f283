// Package session provides the per-user key/value store that holds game
// interaction state between requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Common errors for session operations.
var (
	ErrEmptyID = errors.New("session id cannot be empty")
)

// Session holds the named values of one user. Values are stored JSON-encoded
// so every backend can persist them the same way.
type Session struct {
	ID        string
	Values    map[string]json.RawMessage
	UpdatedAt time.Time
}

// New creates an empty session.
func New(id string) *Session {
	return &Session{
		ID:     id,
		Values: make(map[string]json.RawMessage),
	}
}

// Get decodes the value stored under key into dst, which must be a non-nil
// pointer. The value is decoded into a fresh copy and assigned only on
// success, so dst is left untouched if the key is absent or cannot be
// decoded into dst.
func (s *Session) Get(key string, dst any) bool {
	raw, ok := s.Values[key]
	if !ok {
		return false
	}
	out := reflect.ValueOf(dst)
	if out.Kind() != reflect.Pointer || out.IsNil() {
		return false
	}
	tmp := reflect.New(out.Elem().Type())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		return false
	}
	out.Elem().Set(tmp.Elem())
	return true
}

// Has reports whether a value is stored under key.
func (s *Session) Has(key string) bool {
	_, ok := s.Values[key]
	return ok
}

// Set encodes v and stores it under key.
func (s *Session) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode session value %q: %w", key, err)
	}
	if s.Values == nil {
		s.Values = make(map[string]json.RawMessage)
	}
	s.Values[key] = raw
	return nil
}

// Forget removes key from the session.
func (s *Session) Forget(key string) {
	delete(s.Values, key)
}

// All returns a copy of every stored value.
func (s *Session) All() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(s.Values))
	for k, v := range s.Values {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Keys returns the stored keys in sorted order.
func (s *Session) Keys() []string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Empty reports whether the session holds no values.
func (s *Session) Empty() bool {
	return len(s.Values) == 0
}

// clone returns a deep copy so stores never share maps with callers.
func (s *Session) clone() *Session {
	return &Session{
		ID:        s.ID,
		Values:    s.All(),
		UpdatedAt: s.UpdatedAt,
	}
}

// Store persists sessions. Load returns a fresh empty session when the id is
// unknown, so callers never need to distinguish "new" from "existing".
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by stores that need explicit expiry of inactive
// sessions.
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int, error)
}
