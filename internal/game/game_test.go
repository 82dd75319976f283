package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/calkeo/calkeo-terminal-sub000/internal/session"
	"github.com/calkeo/calkeo-terminal-sub000/internal/style"
)

var errBroken = errors.New("dictionary unavailable")

// counter is a minimal game: pick a difficulty, then type numbers until the
// total reaches ten.
type counter struct {
	fail bool
}

func (c *counter) Name() string        { return "counter" }
func (c *counter) Description() string { return "count to ten" }
func (c *counter) Keys() []string      { return []string{"total", "difficulty"} }

func (c *counter) Begin(in *Interaction) (Response, error) {
	return BeginWithDifficulty(in, "Counter")
}

func (c *counter) Steps() map[int]StepFunc {
	return map[int]StepFunc{
		FirstStep:      c.difficulty,
		StepDifficulty: c.difficulty,
		StepPlay:       c.add,
		StepGameOver: func(in *Interaction, args []string) (Response, error) {
			return Rematch(c, in, args)
		},
	}
}

func (c *counter) difficulty(in *Interaction, args []string) (Response, error) {
	return ChooseDifficulty(in, args, "Counter", func(d Difficulty) (Response, error) {
		if c.fail {
			return Response{}, errBroken
		}
		in.SetValue("difficulty", d)
		in.SetValue("total", 0)
		in.Advance(StepPlay)
		return Prompt(Info("Type a number")), nil
	})
}

func (c *counter) add(in *Interaction, args []string) (Response, error) {
	if len(args) != 1 || args[0] != "5" {
		return Prompt(Info("Type a number"), Error("only 5 is accepted")), nil
	}
	total := 0
	in.Value("total", &total)
	total += 5
	in.SetValue("total", total)
	if total >= 10 {
		in.Advance(StepGameOver)
		return Prompt(Success("Done!"), RematchPrompt()), nil
	}
	return Prompt(Value("5")), nil
}

func newTestInteraction(cmd Command) (*Interaction, *session.Session) {
	sess := session.New("test")
	return NewInteraction(context.Background(), sess, cmd, rand.New(rand.NewSource(1))), sess
}

func TestExecute_BeginAdvancesToDifficulty(t *testing.T) {
	cmd := &counter{}
	in, _ := newTestInteraction(cmd)

	resp, err := Execute(cmd, in, nil)
	require.NoError(t, err)
	assert.True(t, resp.Interactive)
	assert.Equal(t, StepDifficulty, in.Step())
	assert.Equal(t, "Counter", resp.Lines[0].Text)
}

func TestExecute_TokensOnFirstStepSelectDifficulty(t *testing.T) {
	cmd := &counter{}
	in, _ := newTestInteraction(cmd)

	resp, err := Execute(cmd, in, []string{"hard"})
	require.NoError(t, err)
	assert.True(t, resp.Interactive)
	assert.Equal(t, StepPlay, in.Step())

	var d Difficulty
	require.True(t, in.Value("difficulty", &d))
	assert.Equal(t, Hard, d)
}

func TestExecute_FullGameAndRematch(t *testing.T) {
	cmd := &counter{}
	in, sess := newTestInteraction(cmd)

	_, err := Execute(cmd, in, []string{"1"})
	require.NoError(t, err)
	_, err = Execute(cmd, in, []string{"5"})
	require.NoError(t, err)
	resp, err := Execute(cmd, in, []string{"5"})
	require.NoError(t, err)
	assert.Equal(t, StepGameOver, in.Step())
	assert.True(t, resp.Interactive)

	resp, err = Execute(cmd, in, []string{"maybe"})
	require.NoError(t, err)
	assert.Equal(t, StepGameOver, in.Step())
	assert.Equal(t, style.Error, resp.Lines[len(resp.Lines)-1].Kind)

	resp, err = Execute(cmd, in, []string{"n"})
	require.NoError(t, err)
	assert.False(t, resp.Interactive)
	assert.True(t, sess.Empty())
}

func TestExecute_RematchYesRestarts(t *testing.T) {
	cmd := &counter{}
	in, _ := newTestInteraction(cmd)
	in.Advance(StepGameOver)
	in.SetValue("total", 10)

	resp, err := Execute(cmd, in, []string{"yes"})
	require.NoError(t, err)
	assert.True(t, resp.Interactive)
	assert.Equal(t, StepDifficulty, in.Step())
	assert.False(t, in.Value("total", new(int)))
}

func TestExecute_InvalidStepLeavesState(t *testing.T) {
	cmd := &counter{}
	in, sess := newTestInteraction(cmd)
	in.Advance(9)
	in.SetValue("total", 3)
	before := sess.All()

	resp, err := Execute(cmd, in, []string{"5"})
	require.NoError(t, err)
	assert.False(t, resp.Interactive)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, style.Error, resp.Lines[0].Kind)
	assert.Contains(t, resp.Lines[0].Text, "Invalid step")
	assert.Equal(t, before, sess.All())
}

func TestExecute_QuitResets(t *testing.T) {
	cmd := &counter{}
	in, sess := newTestInteraction(cmd)
	_, err := Execute(cmd, in, []string{"easy"})
	require.NoError(t, err)

	resp, err := Execute(cmd, in, []string{"quit"})
	require.NoError(t, err)
	assert.False(t, resp.Interactive)
	assert.True(t, sess.Empty())
}

func TestExecute_ResourceFailurePropagates(t *testing.T) {
	cmd := &counter{fail: true}
	in, _ := newTestInteraction(cmd)

	_, err := Execute(cmd, in, []string{"easy"})
	assert.ErrorIs(t, err, errBroken)
}

func TestExecute_EncodingFailurePropagates(t *testing.T) {
	cmd := &counter{}
	in, _ := newTestInteraction(cmd)
	in.SetValue("total", make(chan int))

	_, err := Execute(cmd, in, nil)
	assert.Error(t, err)
}

func TestInteraction_NamespacedKeys(t *testing.T) {
	cmd := &counter{}
	in, sess := newTestInteraction(cmd)

	in.SetValue("total", 4)
	in.Advance(StepPlay)
	require.NoError(t, sess.Set("other.total", 1))

	assert.ElementsMatch(t, []string{"counter.step", "counter.total", "other.total"}, sess.Keys())

	in.Reset()
	assert.Equal(t, FirstStep, in.Step())
	assert.Equal(t, []string{"other.total"}, sess.Keys())
}

func TestInteraction_ValueDefault(t *testing.T) {
	in, _ := newTestInteraction(&counter{})
	total := 42
	assert.False(t, in.Value("total", &total))
	assert.Equal(t, 42, total)
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
		ok   bool
	}{
		{"easy", Easy, true},
		{"E", Easy, true},
		{"2", Medium, true},
		{"Hard", Hard, true},
		{"h", Hard, true},
		{"expert", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDifficulty(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBudget(t *testing.T) {
	b := NewBudget(3)
	assert.True(t, b.Spend())
	assert.True(t, b.Spend())
	assert.True(t, b.Spend())
	assert.False(t, b.Spend())
	assert.True(t, b.Exhausted())
	assert.Equal(t, 3, b.Used())

	assert.False(t, NewBudget(0).Exhausted())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&counter{}))
	assert.Error(t, r.Register(nil))

	c, ok := r.Get("COUNTER")
	assert.True(t, ok)
	assert.Equal(t, "counter", c.Name())
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, []string{"counter"}, r.Names())
	assert.Len(t, r.List(), 1)

	assert.True(t, r.Unregister("counter"))
	assert.False(t, r.Unregister("counter"))
}

// TestInvalidInputNeverChangesStateProperty checks that rejected input at the
// play step leaves every stored value untouched.
func TestInvalidInputNeverChangesStateProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cmd := &counter{}
		in, sess := newTestInteraction(cmd)
		if _, err := Execute(cmd, in, []string{"medium"}); err != nil {
			t.Fatalf("setup: %v", err)
		}
		before := sess.All()

		word := rapid.StringMatching(`[0-4]{1,6}`).Draw(t, "word")
		resp, err := Execute(cmd, in, []string{word})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
		if !resp.Interactive {
			t.Fatalf("invalid input must keep the interaction open")
		}
		after := sess.All()
		if len(after) != len(before) {
			t.Fatalf("state changed: %v -> %v", before, after)
		}
		for k, v := range before {
			if string(after[k]) != string(v) {
				t.Fatalf("key %s changed: %s -> %s", k, v, after[k])
			}
		}
	})
}
