package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/calkeo/calkeo-terminal-sub000/internal/session"
)

// FirstStep is the step of a game that has not started yet.
const FirstStep = 1

const stepKey = "step"

// Interaction is one game's view of a session: a step number plus the named
// values the game declared in Keys, all stored under "<name>.<key>".
type Interaction struct {
	ctx  context.Context
	sess *session.Session
	ns   string
	keys []string
	rng  Rand
	err  error
}

// NewInteraction binds cmd to sess. A nil rng uses a time-seeded source.
func NewInteraction(ctx context.Context, sess *session.Session, cmd Command, rng Rand) *Interaction {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Interaction{
		ctx:  ctx,
		sess: sess,
		ns:   cmd.Name(),
		keys: cmd.Keys(),
		rng:  rng,
	}
}

func (in *Interaction) key(name string) string {
	return in.ns + "." + name
}

// Context returns the request context.
func (in *Interaction) Context() context.Context {
	return in.ctx
}

// Rand returns the injected random source.
func (in *Interaction) Rand() Rand {
	return in.rng
}

// Step returns the current step, FirstStep when none is stored.
func (in *Interaction) Step() int {
	step := FirstStep
	if !in.sess.Get(in.key(stepKey), &step) || step < FirstStep {
		return FirstStep
	}
	return step
}

// Advance stores the next step.
func (in *Interaction) Advance(step int) {
	in.SetValue(stepKey, step)
}

// Value decodes the stored value for key into dst, which doubles as the
// default: it is left untouched and false is returned when key is absent.
func (in *Interaction) Value(key string, dst any) bool {
	return in.sess.Get(in.key(key), dst)
}

// SetValue stores v under key. The first encoding failure is kept and
// reported by Err.
func (in *Interaction) SetValue(key string, v any) {
	if err := in.sess.Set(in.key(key), v); err != nil && in.err == nil {
		in.err = err
	}
}

// Reset forgets every declared key and the step.
func (in *Interaction) Reset() {
	for _, k := range in.keys {
		in.sess.Forget(in.key(k))
	}
	in.sess.Forget(in.key(stepKey))
}

// Err returns the first error raised while writing values.
func (in *Interaction) Err() error {
	return in.err
}
