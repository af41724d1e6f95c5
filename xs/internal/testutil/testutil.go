// Package testutil provides shared test infrastructure for the xs packages:
// reaction-file fixtures from the repository testdata directory, a
// deterministic fetcher serving them, and float assertions.
package testutil

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

// Fixture nuclides available under testdata/.
const (
	Li6 = "Li6" // library layout, temperatures 294 and 600
	Li7 = "Li7" // bare layout keyed "294K", no MT 1
	B10 = "B10" // library layout, temperature 294
)

// FixtureDir returns the repository testdata directory.
// The path is resolved relative to this source file: xs/internal/testutil/ → testdata/.
func FixtureDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata")
}

// FixturePath returns the path of a nuclide's fixture file.
func FixturePath(t *testing.T, nuclide string) string {
	t.Helper()
	return filepath.Join(FixtureDir(t), nuclide+".json")
}

// LoadFixture reads a nuclide's fixture file.
func LoadFixture(t *testing.T, nuclide string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(t, nuclide))
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", nuclide, err)
	}
	return data
}

// ErrMissing is returned by FixtureFetcher for nuclides it has no file for,
// unless Missing is set.
var ErrMissing = errors.New("fixture missing")

// FixtureFetcher serves fixture files regardless of library and counts calls.
// It satisfies library.Fetcher.
type FixtureFetcher struct {
	Files map[string][]byte

	// Missing is returned for unknown nuclides; tests set it to
	// library.ErrNotFound to exercise the permanent-failure path.
	Missing error

	// Fail makes the first Fail calls return a transient error.
	Fail int

	// Block makes every call wait for its context to end.
	Block bool

	// Gate, when non-nil, is received from before serving a file.
	Gate chan struct{}

	mu    sync.Mutex
	calls int
}

// NewFixtureFetcher serves the named fixtures.
func NewFixtureFetcher(t *testing.T, nuclides ...string) *FixtureFetcher {
	t.Helper()
	f := &FixtureFetcher{Files: make(map[string][]byte)}
	for _, n := range nuclides {
		f.Files[n] = LoadFixture(t, n)
	}
	return f
}

var errTransient = errors.New("connection reset")

func (f *FixtureFetcher) Fetch(ctx context.Context, library, nuclide string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n <= f.Fail {
		return nil, errTransient
	}
	data, ok := f.Files[nuclide]
	if !ok {
		if f.Missing != nil {
			return nil, f.Missing
		}
		return nil, ErrMissing
	}
	return data, nil
}

// Calls returns the number of Fetch calls so far.
func (f *FixtureFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
