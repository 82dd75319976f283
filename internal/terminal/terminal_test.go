package terminal

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calkeo/calkeo-terminal-sub000/internal/game"
	"github.com/calkeo/calkeo-terminal-sub000/internal/game/tictactoe"
	"github.com/calkeo/calkeo-terminal-sub000/internal/session"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"chess", []string{"chess"}},
		{"  e2   e4 ", []string{"e2", "e4"}},
		{`say "hello world"`, []string{"say", "hello world"}},
		{`say 'it is'`, []string{"say", "it is"}},
		{`a "" b`, []string{"a", "", "b"}},
		{`"say \"hi\""`, []string{`say "hi"`}},
		{`pre"fix"ed`, []string{"prefixed"}},
		{`say hello\ world`, []string{"say", "hello world"}},
		{`chess # new game`, []string{"chess"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Tokenize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Tokenize(`say "oops`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)

	_, err = Tokenize(`trailing\`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}

func newTerminal(t *testing.T) (*Terminal, *session.MemoryStore) {
	t.Helper()
	reg := game.NewRegistry()
	require.NoError(t, reg.Register(tictactoe.New(nil)))
	store := session.NewMemoryStore()
	term := New(reg, store, WithRand(func() game.Rand { return rand.New(rand.NewSource(1)) }))
	return term, store
}

func lastText(out Output) string {
	if len(out.Lines) == 0 {
		return ""
	}
	return out.Lines[len(out.Lines)-1].Text
}

func TestHandle_HelpAndUnknown(t *testing.T) {
	term, _ := newTerminal(t)
	ctx := context.Background()

	out, err := term.Handle(ctx, "s1", "help")
	require.NoError(t, err)
	assert.False(t, out.Interactive)
	assert.Contains(t, out.Lines[1].Text, "tictactoe")

	out, err = term.Handle(ctx, "s1", "snake")
	require.NoError(t, err)
	assert.Equal(t, "command not found: snake", lastText(out))
	assert.Equal(t, style.Error, out.Lines[0].Kind)

	out, err = term.Handle(ctx, "s1", "")
	require.NoError(t, err)
	assert.Empty(t, out.Lines)

	_, err = term.Handle(ctx, "", "help")
	assert.ErrorIs(t, err, session.ErrEmptyID)
}

func TestHandle_RoutesToActiveGame(t *testing.T) {
	term, store := newTerminal(t)
	ctx := context.Background()

	out, err := term.Handle(ctx, "s1", "tictactoe")
	require.NoError(t, err)
	assert.True(t, out.Interactive)
	assert.Equal(t, "tictactoe", out.Command)

	// "help" now goes to the game, which rejects it as a difficulty.
	out, err = term.Handle(ctx, "s1", "help")
	require.NoError(t, err)
	assert.True(t, out.Interactive)
	assert.Equal(t, style.Error, out.Lines[len(out.Lines)-1].Kind)

	out, err = term.Handle(ctx, "s1", "easy")
	require.NoError(t, err)
	assert.True(t, out.Interactive)

	sess, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	var active string
	require.True(t, sess.Get(activeKey, &active))
	assert.Equal(t, "tictactoe", active)

	out, err = term.Handle(ctx, "s1", "quit")
	require.NoError(t, err)
	assert.False(t, out.Interactive)
	assert.Equal(t, 0, store.Count(), "quitting clears the session")
}

func TestHandle_ArgumentsOnFirstLine(t *testing.T) {
	term, _ := newTerminal(t)

	out, err := term.Handle(context.Background(), "s1", "tictactoe hard")
	require.NoError(t, err)
	assert.True(t, out.Interactive)
	assert.Equal(t, "Your move (1-9):", lastText(out))
}

func TestHandle_SessionsAreIndependent(t *testing.T) {
	term, _ := newTerminal(t)
	ctx := context.Background()

	_, err := term.Handle(ctx, "a", "tictactoe easy")
	require.NoError(t, err)

	out, err := term.Handle(ctx, "b", "5")
	require.NoError(t, err)
	assert.Equal(t, "command not found: 5", lastText(out))
}

func TestHandle_ConcurrentRequestsSerialize(t *testing.T) {
	term, store := newTerminal(t)
	ctx := context.Background()

	_, err := term.Handle(ctx, "s1", "tictactoe easy")
	require.NoError(t, err)

	// Both goroutines send the same move; exactly one may be accepted.
	var wg sync.WaitGroup
	outs := make([]Output, 2)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := term.Handle(ctx, "s1", "5")
			assert.NoError(t, err)
			outs[i] = out
		}(i)
	}
	wg.Wait()

	rejected := 0
	for _, o := range outs {
		if o.Lines[len(o.Lines)-1].Kind == style.Error {
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)

	sess, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	var board tictactoe.Board
	require.True(t, sess.Get("tictactoe.board", &board))
	assert.Equal(t, tictactoe.Human, board[4])
	assert.Len(t, tictactoe.Available(board), 7)
}

type failingStore struct {
	session.Store
}

func (failingStore) Save(ctx context.Context, s *session.Session) error {
	return errors.New("disk full")
}

func TestHandle_SaveFailure(t *testing.T) {
	reg := game.NewRegistry()
	require.NoError(t, reg.Register(tictactoe.New(nil)))
	term := New(reg, failingStore{Store: session.NewMemoryStore()})

	_, err := term.Handle(context.Background(), "s1", "tictactoe")
	assert.Error(t, err)
}
