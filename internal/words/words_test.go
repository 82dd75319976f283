package words

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// countingLoader counts loads and serves a fixed list.
type countingLoader struct {
	mu    sync.Mutex
	calls int
	list  []string
	err   error
}

func (c *countingLoader) Load(ctx context.Context, source string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.list, c.err
}

func TestBuild_PartitionsAndNormalizes(t *testing.T) {
	d := Build([]string{"Cat", "dog", "cat", "tiger", "o'neil", "", "  ant "}, ByFirstLetter)

	assert.Equal(t, 4, d.Len())
	assert.Equal(t, []string{"cat"}, d.Words("c"))
	assert.Equal(t, []string{"ant"}, d.Words("a"))
	assert.True(t, d.Contains("TIGER"))
	assert.False(t, d.Contains("o'neil"))

	byLen := Build([]string{"cat", "dog", "tiger"}, ByLength)
	assert.Equal(t, []string{"cat", "dog"}, byLen.Words(LengthKey(3)))
	assert.Equal(t, []string{"tiger"}, byLen.Words("5"))
}

func TestDictionary_RandomRespectsFilter(t *testing.T) {
	d := Build([]string{"tap", "tiger", "tax", "toy"}, ByFirstLetter)
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		w, ok := d.Random(r, []string{"t"}, func(w string) bool { return strings.HasSuffix(w, "x") })
		require.True(t, ok)
		assert.Equal(t, "tax", w)
	}

	_, ok := d.Random(r, []string{"z"}, nil)
	assert.False(t, ok)
}

func TestFileLoader_Embedded(t *testing.T) {
	list, err := FileLoader{}.Load(context.Background(), EmbeddedSource)
	require.NoError(t, err)
	assert.Greater(t, len(list), 500)

	d := Build(list, ByFirstLetter)
	for c := 'a'; c <= 'z'; c++ {
		assert.NotEmpty(t, d.Words(string(c)), "letter %c", c)
	}
}

func TestFileLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("# comment\napple\n\nbanana\n"), 0o644))

	list, err := FileLoader{}.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana"}, list)
}

func TestFileLoader_Missing(t *testing.T) {
	_, err := FileLoader{}.Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, ErrDictionaryUnavailable)
}

func TestSource_CachesPerSourceAndScheme(t *testing.T) {
	loader := &countingLoader{list: []string{"cat", "tiger"}}
	src := NewSource(loader, time.Hour)
	ctx := context.Background()

	d1, err := src.Partition(ctx, "a", ByLength)
	require.NoError(t, err)
	d2, err := src.Partition(ctx, "a", ByLength)
	require.NoError(t, err)
	assert.Same(t, d1, d2)
	assert.Equal(t, 1, loader.calls)

	_, err = src.Partition(ctx, "a", ByFirstLetter)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
	assert.Equal(t, 2, src.Cached())
}

func TestSource_ConcurrentMissBuildsOnce(t *testing.T) {
	loader := &countingLoader{list: []string{"cat"}}
	src := NewSource(loader, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = src.Partition(context.Background(), "shared", ByLength)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loader.calls)
}

func TestSource_ExpiryRebuilds(t *testing.T) {
	loader := &countingLoader{list: []string{"cat"}}
	src := NewSource(loader, 50*time.Millisecond)

	d1, err := src.Partition(context.Background(), "a", ByLength)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Cached())

	time.Sleep(120 * time.Millisecond)

	d2, err := src.Partition(context.Background(), "a", ByLength)
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
	assert.NotSame(t, d1, d2)
}

func TestSource_LoadFailureIsFatal(t *testing.T) {
	loader := &countingLoader{err: errors.New("disk gone")}
	src := NewSource(loader, 0)

	_, err := src.Partition(context.Background(), "a", ByLength)
	assert.Error(t, err)
	assert.Equal(t, 0, src.Cached())

	empty := NewSource(&countingLoader{list: []string{"123"}}, 0)
	_, err = empty.Partition(context.Background(), "a", ByLength)
	assert.ErrorIs(t, err, ErrDictionaryUnavailable)
}

// TestPartitionKeyProperty checks that every word lands in the partition of
// its own key.
func TestPartitionKeyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		list := rapid.SliceOf(rapid.StringMatching(`[a-z]{1,10}`)).Draw(t, "list")
		scheme := Scheme(rapid.IntRange(0, 1).Draw(t, "scheme"))

		d := Build(list, scheme)
		for _, w := range list {
			found := false
			for _, got := range d.Words(scheme.Key(w)) {
				if got == w {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("word %q missing from partition %q", w, scheme.Key(w))
			}
		}
	})
}
