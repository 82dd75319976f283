package game

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry manages game registration and lookup.
// It provides a thread-safe way to register and retrieve games by name.
type Registry struct {
	games map[string]Command
	mu    sync.RWMutex
}

// NewRegistry creates a new game registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]Command),
	}
}

// Register adds a game to the registry.
// If a game with the same name already exists, it will be replaced.
func (r *Registry) Register(c Command) error {
	if c == nil {
		return fmt.Errorf("cannot register nil game")
	}
	if c.Name() == "" {
		return fmt.Errorf("game name cannot be empty")
	}
	if len(c.Steps()) == 0 {
		return fmt.Errorf("game %q has no steps", c.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[strings.ToLower(c.Name())] = c
	return nil
}

// Get retrieves a game by name, case-insensitively.
// Returns the game and true if found, nil and false otherwise.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.games[strings.ToLower(name)]
	return c, ok
}

// List returns all registered games sorted by name.
// The returned slice is a copy, so modifications won't affect the registry.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]Command, 0, len(r.games))
	for _, c := range r.games {
		games = append(games, c)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Name() < games[j].Name() })
	return games
}

// Names returns all registered game names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.games))
	for name := range r.games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Unregister removes a game from the registry by name.
// Returns true if the game was found and removed, false otherwise.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := r.games[key]; ok {
		delete(r.games, key)
		return true
	}
	return false
}
