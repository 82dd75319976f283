// Package terminal turns lines of user input into game steps. It tracks which
// interactive command owns the session and routes follow-up input to it.
package terminal

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/pkg/lock"
	"github.com/calkeo/calkeo-terminal-sub000/internal/session"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
)

// activeKey stores the name of the command awaiting input.
const activeKey = "terminal.active"

// DefaultLockTimeout bounds how long a request waits for its session.
const DefaultLockTimeout = 5 * time.Second

// Output is the result of one line of input.
type Output struct {
	Lines       []style.Line
	Interactive bool
	// Command is the command that handled the line, empty for built-ins.
	Command string
}

// Terminal dispatches input to registered games.
type Terminal struct {
	registry    *game.Registry
	store       session.Store
	locks       *lock.SessionLock
	lockTimeout time.Duration
	newRand     func() game.Rand
}

// Option configures a Terminal.
type Option func(*Terminal)

// WithLockTimeout sets how long a request waits for a busy session.
func WithLockTimeout(d time.Duration) Option {
	return func(t *Terminal) { t.lockTimeout = d }
}

// WithRand sets the random source factory, called once per request.
func WithRand(f func() game.Rand) Option {
	return func(t *Terminal) { t.newRand = f }
}

// WithLocks shares a lock table between terminals.
func WithLocks(l *lock.SessionLock) Option {
	return func(t *Terminal) { t.locks = l }
}

// New creates a Terminal over registry and store.
func New(registry *game.Registry, store session.Store, opts ...Option) *Terminal {
	t := &Terminal{
		registry:    registry,
		store:       store,
		locks:       lock.NewSessionLock(),
		lockTimeout: DefaultLockTimeout,
		newRand: func() game.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Handle runs one line of input for sessionID. Requests for the same session
// are serialized.
func (t *Terminal) Handle(ctx context.Context, sessionID, line string) (Output, error) {
	if sessionID == "" {
		return Output{}, session.ErrEmptyID
	}

	var out Output
	err := t.locks.WithLock(ctx, sessionID, t.lockTimeout, func() error {
		var err error
		out, err = t.handle(ctx, sessionID, line)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to handle input")
		return Output{}, err
	}
	return out, nil
}

func (t *Terminal) handle(ctx context.Context, sessionID, line string) (Output, error) {
	sess, err := t.store.Load(ctx, sessionID)
	if err != nil {
		return Output{}, fmt.Errorf("load session: %w", err)
	}

	var active string
	sess.Get(activeKey, &active)

	tokens, err := Tokenize(line)
	if err != nil {
		return Output{Lines: []style.Line{game.Error(err.Error())}, Interactive: active != ""}, nil
	}

	var (
		cmd  game.Command
		args []string
		ok   bool
	)
	if active != "" {
		cmd, ok = t.registry.Get(active)
		if !ok {
			log.Warn().Str("session_id", sessionID).Str("command", active).Msg("Active command no longer registered")
			sess.Forget(activeKey)
		}
		args = tokens
	}

	fresh := false
	if !ok {
		if len(tokens) == 0 {
			return t.save(ctx, sess, Output{})
		}
		name := strings.ToLower(tokens[0])
		if name == "help" {
			return t.save(ctx, sess, Output{Lines: t.help()})
		}
		cmd, ok = t.registry.Get(name)
		if !ok {
			return t.save(ctx, sess, Output{Lines: []style.Line{game.Error("command not found: " + tokens[0])}})
		}
		args = tokens[1:]
		fresh = true
	}

	in := game.NewInteraction(ctx, sess, cmd, t.newRand())
	if fresh {
		in.Reset()
	}

	resp, err := game.Execute(cmd, in, args)
	if err != nil {
		return Output{}, err
	}

	if resp.Interactive {
		if err := sess.Set(activeKey, cmd.Name()); err != nil {
			return Output{}, err
		}
	} else {
		sess.Forget(activeKey)
	}

	log.Debug().
		Str("session_id", sessionID).
		Str("command", cmd.Name()).
		Int("step", in.Step()).
		Bool("interactive", resp.Interactive).
		Msg("Input handled")

	return t.save(ctx, sess, Output{Lines: resp.Lines, Interactive: resp.Interactive, Command: cmd.Name()})
}

func (t *Terminal) save(ctx context.Context, sess *session.Session, out Output) (Output, error) {
	if err := t.store.Save(ctx, sess); err != nil {
		return Output{}, fmt.Errorf("save session: %w", err)
	}
	return out, nil
}

func (t *Terminal) help() []style.Line {
	lines := []style.Line{game.Success("Available games:")}
	for _, c := range t.registry.List() {
		lines = append(lines, game.Text(fmt.Sprintf("  %-12s %s", c.Name(), c.Description())))
	}
	lines = append(lines,
		game.Info("Type a game name to start. Type 'quit' during a game to stop."),
	)
	return lines
}
