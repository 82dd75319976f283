// Package words loads dictionary files and serves them partitioned by word
// length or leading letter, cached per (source, scheme) pair.
package words

import (
	"bufio"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

// EmbeddedSource names the dictionary bundled into the binary.
const EmbeddedSource = "embedded"

//go:embed dictionary.txt
var embeddedDictionary string

// ErrDictionaryUnavailable is returned when a dictionary source cannot be read.
var ErrDictionaryUnavailable = errors.New("dictionary unavailable")

// Loader reads the raw word list of a dictionary source.
type Loader interface {
	Load(ctx context.Context, source string) ([]string, error)
}

// FileLoader reads newline-delimited word files, or the embedded dictionary
// when the source is EmbeddedSource.
type FileLoader struct{}

// Load returns the words of source.
func (FileLoader) Load(ctx context.Context, source string) ([]string, error) {
	if source == EmbeddedSource {
		return readWords(strings.NewReader(embeddedDictionary))
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDictionaryUnavailable, err)
	}
	defer f.Close()

	list, err := readWords(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDictionaryUnavailable, err)
	}
	return list, nil
}

// readWords scans one word per line, skips blanks and # comments.
func readWords(r io.Reader) ([]string, error) {
	var list []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		list = append(list, line)
	}
	return list, sc.Err()
}

// Scheme is the partition key of a dictionary.
type Scheme int

const (
	ByLength Scheme = iota
	ByFirstLetter
)

// String returns the scheme name.
func (s Scheme) String() string {
	if s == ByFirstLetter {
		return "first_letter"
	}
	return "length"
}

// Key returns the partition key of word under s.
func (s Scheme) Key(word string) string {
	if s == ByFirstLetter {
		return word[:1]
	}
	return strconv.Itoa(len(word))
}

// LengthKey returns the ByLength partition key for n.
func LengthKey(n int) string {
	return strconv.Itoa(n)
}

// Dictionary maps a partition key to its words in source order.
// It is read-only once built.
type Dictionary struct {
	scheme     Scheme
	partitions map[string][]string
	all        map[string]struct{}
}

// Build normalizes list to lowercase alphabetic words and partitions them.
// Duplicates and words with non-letter characters are dropped.
func Build(list []string, scheme Scheme) *Dictionary {
	d := &Dictionary{
		scheme:     scheme,
		partitions: make(map[string][]string),
		all:        make(map[string]struct{}),
	}
	for _, raw := range list {
		w := strings.ToLower(strings.TrimSpace(raw))
		if w == "" || !isAlpha(w) {
			continue
		}
		if _, dup := d.all[w]; dup {
			continue
		}
		d.all[w] = struct{}{}
		k := scheme.Key(w)
		d.partitions[k] = append(d.partitions[k], w)
	}
	return d
}

func isAlpha(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

// Scheme returns the partition scheme.
func (d *Dictionary) Scheme() Scheme {
	return d.scheme
}

// Words returns the partition for key. The slice must not be modified.
func (d *Dictionary) Words(key string) []string {
	return d.partitions[key]
}

// Contains reports whether word is in the dictionary, case-insensitively.
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.all[strings.ToLower(word)]
	return ok
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	return len(d.all)
}

// Rand is the random source used for word selection.
type Rand interface {
	Intn(n int) int
}

// Random picks a uniformly random word from the union of the partitions in
// keys that satisfies keep (nil keeps everything).
func (d *Dictionary) Random(r Rand, keys []string, keep func(string) bool) (string, bool) {
	candidates := d.Filter(keys, keep)
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[r.Intn(len(candidates))], true
}

// Filter returns the words of the partitions in keys that satisfy keep.
func (d *Dictionary) Filter(keys []string, keep func(string) bool) []string {
	var out []string
	for _, k := range keys {
		for _, w := range d.partitions[k] {
			if keep == nil || keep(w) {
				out = append(out, w)
			}
		}
	}
	return out
}

type cacheKey struct {
	source string
	scheme Scheme
}

// DefaultCacheTTL keeps a built dictionary for a day.
const DefaultCacheTTL = 24 * time.Hour

// maxCached bounds the number of (source, scheme) pairs kept at once.
const maxCached = 64

// Source builds dictionaries lazily and shares them across all sessions.
// Entries expire ttl after they were built.
type Source struct {
	loader Loader

	// mu serializes misses so concurrent requests build once.
	mu    sync.Mutex
	cache *expirable.LRU[cacheKey, *Dictionary]
}

// NewSource creates a Source. A ttl <= 0 uses DefaultCacheTTL.
func NewSource(loader Loader, ttl time.Duration) *Source {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	onEvict := func(k cacheKey, d *Dictionary) {
		log.Debug().
			Str("source", k.source).
			Str("scheme", k.scheme.String()).
			Msg("Dictionary evicted")
	}
	return &Source{
		loader: loader,
		cache:  expirable.NewLRU[cacheKey, *Dictionary](maxCached, onEvict, ttl),
	}
}

// Partition returns the dictionary for (source, scheme), building it on the
// first request or after the cached copy expired.
func (s *Source) Partition(ctx context.Context, source string, scheme Scheme) (*Dictionary, error) {
	key := cacheKey{source: source, scheme: scheme}
	if d, ok := s.cache.Get(key); ok {
		return d, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.cache.Get(key); ok {
		return d, nil
	}

	list, err := s.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary %q: %w", source, err)
	}
	dict := Build(list, scheme)
	if dict.Len() == 0 {
		return nil, fmt.Errorf("%w: %q has no usable words", ErrDictionaryUnavailable, source)
	}

	s.cache.Add(key, dict)
	log.Info().
		Str("source", source).
		Str("scheme", scheme.String()).
		Int("words", dict.Len()).
		Msg("Dictionary built")
	return dict, nil
}

// Cached returns the number of live cached dictionaries.
func (s *Source) Cached() int {
	return len(s.cache.Keys())
}
