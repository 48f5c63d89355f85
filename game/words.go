package game

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

//go:embed words.txt
var defaultWords string

// WordList draws distinct random words from an in-memory list.
type WordList struct {
	locker sync.Mutex
	words  []string
	rng    *rand.Rand
}

// NewWordList trims entries and drops blanks and duplicates.
func NewWordList(words []string, rng *rand.Rand) *WordList {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	seen := make(map[string]bool, len(words))
	list := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		list = append(list, w)
	}
	return &WordList{words: list, rng: rng}
}

func DefaultWordList() *WordList {
	words, _ := readWords(strings.NewReader(defaultWords))
	return NewWordList(words, nil)
}

// LoadWordList reads a file where each line is a word.
func LoadWordList(path string) (*WordList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer file.Close()

	words, err := readWords(file)
	if err != nil {
		return nil, fmt.Errorf("error while reading file %s: %w", path, err)
	}
	return NewWordList(words, nil), nil
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	return words, scanner.Err()
}

func (wl *WordList) Len() int {
	return len(wl.words)
}

func (wl *WordList) Words() []string {
	return slices.Clone(wl.words)
}

// Generate returns up to count distinct words.
func (wl *WordList) Generate(count int) []string {
	wl.locker.Lock()
	defer wl.locker.Unlock()

	count = min(count, len(wl.words))
	if count <= 0 {
		return []string{}
	}
	out := make([]string, count)
	for i, j := range wl.rng.Perm(len(wl.words))[:count] {
		out[i] = wl.words[j]
	}
	return out
}

// FallbackWords asks the primary source first and tops up from the fallback
// when it comes back short.
type FallbackWords struct {
	primary  RandomWordsGenerator
	fallback RandomWordsGenerator
	logger   zerolog.Logger
}

func NewFallbackWords(primary, fallback RandomWordsGenerator, logger zerolog.Logger) *FallbackWords {
	return &FallbackWords{primary: primary, fallback: fallback, logger: logger}
}

func (fw *FallbackWords) Generate(count int) []string {
	words := fw.primary.Generate(count)
	if len(words) >= count {
		return words
	}

	fw.logger.Warn().
		Int("wanted", count).
		Int("got", len(words)).
		Msg("word source came back short, using fallback")

	seen := make(map[string]bool, len(words))
	for _, w := range words {
		seen[w] = true
	}
	for _, w := range fw.fallback.Generate(count) {
		if len(words) == count {
			break
		}
		if !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	return words
}
