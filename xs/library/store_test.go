package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4mc/m4mc/xs/internal/testutil"
	"github.com/m4mc/m4mc/xs/source"
	"github.com/m4mc/m4mc/xs/xserr"
)

// testSettings keeps retries fast and the cache inside the test's temp dir.
func testSettings(t *testing.T) Settings {
	t.Helper()
	return Settings{
		CacheDir:      t.TempDir(),
		FetchTimeout:  5 * time.Second,
		FetchAttempts: 3,
		BackoffBase:   time.Millisecond,
	}
}

func libraryStore(t *testing.T, f Fetcher, settings Settings) *Store {
	t.Helper()
	r := source.NewResolver()
	r.SetDefault(source.Library("tendl-21"))
	return NewStore(r, WithFetcher(f), WithSettings(settings))
}

func TestLoad_PathSourceParsedOnce(t *testing.T) {
	r := source.NewResolver()
	r.SetOverride("Li6", source.Path(testutil.FixturePath(t, testutil.Li6)))
	s := NewStore(r, WithSettings(testSettings(t)))

	first, err := s.Load(context.Background(), "Li6", "294")
	require.NoError(t, err)
	second, err := s.Load(context.Background(), "Li6", "294")
	require.NoError(t, err)

	assert.Same(t, first, second)
	st := s.Stats()
	assert.Equal(t, int64(1), st.Parses)
	assert.Equal(t, int64(0), st.Fetches)
	assert.Equal(t, 1, st.Entries)
	assert.Contains(t, first.Source, "path:")
}

func TestLoad_TemperatureSpellingsShareEntry(t *testing.T) {
	r := source.NewResolver()
	r.SetDefault(source.Path(testutil.FixturePath(t, testutil.B10)))
	s := NewStore(r, WithSettings(testSettings(t)))

	a, err := s.Load(context.Background(), "B10", "294")
	require.NoError(t, err)
	b, err := s.Load(context.Background(), "B10", "294K")
	require.NoError(t, err)
	assert.Same(t, a, b)
	c, err := s.Load(context.Background(), "B10", "294.0")
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.Equal(t, int64(1), s.Stats().Parses)
	assert.Equal(t, 1, s.Stats().Entries)
}

func TestTemperatureKey(t *testing.T) {
	assert.Equal(t, "294", temperatureKey("294.0"))
	assert.Equal(t, "294", temperatureKey(" 294K "))
	assert.Equal(t, "293.6", temperatureKey("293.60"))
	assert.Equal(t, "hot", temperatureKey("hot"))
}

func TestLoad_NoSourceIsConfigError(t *testing.T) {
	s := NewStore(nil, WithSettings(testSettings(t)))
	_, err := s.Load(context.Background(), "Li6", "294")
	assert.True(t, errors.Is(err, xserr.ErrConfig))
	assert.Equal(t, 0, s.Stats().Entries)
}

func TestLoad_MissingFileIsDataError(t *testing.T) {
	r := source.NewResolver()
	r.SetDefault(source.Path(filepath.Join(t.TempDir(), "nope.json")))
	s := NewStore(r, WithSettings(testSettings(t)))
	_, err := s.Load(context.Background(), "Li6", "294")
	assert.True(t, errors.Is(err, xserr.ErrData))
}

func TestLoad_ConcurrentCallersShareOneFetch(t *testing.T) {
	f := testutil.NewFixtureFetcher(t, testutil.Li6)
	f.Gate = make(chan struct{})
	s := libraryStore(t, f, testSettings(t))

	const callers = 16
	results := make([]*TableSet, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Load(context.Background(), "Li6", "294")
		}(i)
	}
	// let the callers pile up on the in-flight load
	time.Sleep(20 * time.Millisecond)
	close(f.Gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.Equal(t, 1, f.Calls())
	assert.Equal(t, int64(1), s.Stats().Parses)
}

func TestLoad_DiskCacheLookaside(t *testing.T) {
	settings := testSettings(t)
	path := settings.CachePath("tendl-21", "Li6")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, testutil.LoadFixture(t, testutil.Li6), 0o644))

	f := testutil.NewFixtureFetcher(t)
	s := libraryStore(t, f, settings)

	set, err := s.Load(context.Background(), "Li6", "294")
	require.NoError(t, err)
	assert.Equal(t, "test", set.Library)
	assert.Equal(t, 0, f.Calls())
	assert.Equal(t, int64(1), s.Stats().DiskHits)
}

func TestLoad_FetchPopulatesDiskCache(t *testing.T) {
	settings := testSettings(t)
	f := testutil.NewFixtureFetcher(t, testutil.Li6)
	s := libraryStore(t, f, settings)

	_, err := s.Load(context.Background(), "Li6", "294")
	require.NoError(t, err)
	assert.FileExists(t, settings.CachePath("tendl-21", "Li6"))

	// a second temperature of the same file comes from disk
	_, err = s.Load(context.Background(), "Li6", "600")
	require.NoError(t, err)
	assert.Equal(t, 1, f.Calls())
	assert.Equal(t, int64(2), s.Stats().Parses)

	// a fresh store sharing the cache directory never fetches
	f2 := testutil.NewFixtureFetcher(t)
	s2 := libraryStore(t, f2, settings)
	_, err = s2.Load(context.Background(), "Li6", "294")
	require.NoError(t, err)
	assert.Equal(t, 0, f2.Calls())

	entries, err := os.ReadDir(filepath.Dir(settings.CachePath("tendl-21", "Li6")))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestLoad_RetriesTransientFailures(t *testing.T) {
	f := testutil.NewFixtureFetcher(t, testutil.Li6)
	f.Fail = 2
	s := libraryStore(t, f, testSettings(t))

	_, err := s.Load(context.Background(), "Li6", "294")
	require.NoError(t, err)
	assert.Equal(t, 3, f.Calls())
	assert.Equal(t, int64(3), s.Stats().Fetches)
}

func TestLoad_RetriesExhausted(t *testing.T) {
	settings := testSettings(t)
	settings.FetchAttempts = 2
	f := testutil.NewFixtureFetcher(t, testutil.Li6)
	f.Fail = 10
	s := libraryStore(t, f, settings)

	_, err := s.Load(context.Background(), "Li6", "294")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xserr.ErrData))
	assert.True(t, xserr.IsRetryable(err))
	assert.Equal(t, 2, f.Calls())
	assert.Equal(t, 0, s.Stats().Entries)
	assert.NoFileExists(t, settings.CachePath("tendl-21", "Li6"))

	// the failure is not cached; a later call tries again
	f.Fail = 0
	_, err = s.Load(context.Background(), "Li6", "294")
	require.NoError(t, err)
}

func TestLoad_NotFoundIsPermanent(t *testing.T) {
	f := testutil.NewFixtureFetcher(t)
	f.Missing = ErrNotFound
	s := libraryStore(t, f, testSettings(t))

	_, err := s.Load(context.Background(), "Xx999", "294")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xserr.ErrData))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, xserr.IsRetryable(err))
	assert.Equal(t, 1, f.Calls())
}

func TestLoad_FetchTimeoutIsRetryable(t *testing.T) {
	settings := testSettings(t)
	settings.FetchTimeout = 20 * time.Millisecond
	settings.FetchAttempts = 1
	f := testutil.NewFixtureFetcher(t, testutil.Li6)
	f.Block = true
	s := libraryStore(t, f, settings)

	_, err := s.Load(context.Background(), "Li6", "294")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xserr.ErrData))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, xserr.IsRetryable(err))
	assert.Equal(t, 0, s.Stats().Entries)
}

func TestLoad_ParseFailureNotRetried(t *testing.T) {
	settings := testSettings(t)
	f := testutil.NewFixtureFetcher(t)
	f.Files["Li6"] = []byte(`{"294": `)
	s := libraryStore(t, f, settings)

	_, err := s.Load(context.Background(), "Li6", "294")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xserr.ErrData))
	assert.False(t, xserr.IsRetryable(err))
	assert.Equal(t, 1, f.Calls())
	assert.NoFileExists(t, settings.CachePath("tendl-21", "Li6"))
}

func TestLoad_CallerCancellationLeavesLoadRunning(t *testing.T) {
	f := testutil.NewFixtureFetcher(t, testutil.Li6)
	f.Gate = make(chan struct{})
	s := libraryStore(t, f, testSettings(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Load(ctx, "Li6", "294")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xserr.ErrData))
	assert.True(t, xserr.IsRetryable(err))

	close(f.Gate)
	set, err := s.Load(context.Background(), "Li6", "294")
	require.NoError(t, err)
	assert.NotNil(t, set)
	assert.Equal(t, 1, f.Calls())
}

// Reconfiguring sources does not invalidate entries loaded under the previous
// configuration: they stay cached under their old source identity and are
// served again if the configuration points back.
func TestLoad_ReconfigurationKeepsEarlierEntries(t *testing.T) {
	f := testutil.NewFixtureFetcher(t, testutil.Li6)
	s := libraryStore(t, f, testSettings(t))
	ctx := context.Background()

	fromLibrary, err := s.Load(ctx, "Li6", "294")
	require.NoError(t, err)

	s.Resolver().SetOverride("Li6", source.Path(testutil.FixturePath(t, testutil.Li6)))
	fromPath, err := s.Load(ctx, "Li6", "294")
	require.NoError(t, err)
	assert.NotSame(t, fromLibrary, fromPath)
	assert.Equal(t, 2, s.Stats().Entries)

	s.Resolver().Reset()
	s.Resolver().SetDefault(source.Library("tendl-21"))
	again, err := s.Load(ctx, "Li6", "294")
	require.NoError(t, err)
	assert.Same(t, fromLibrary, again)
	assert.Equal(t, 1, f.Calls())
	assert.Equal(t, int64(2), s.Stats().Parses)
}

func TestLoadFrom_BypassesResolver(t *testing.T) {
	s := NewStore(nil, WithSettings(testSettings(t)))
	set, err := s.LoadFrom(context.Background(), "Li7", source.Path(testutil.FixturePath(t, testutil.Li7)), "294")
	require.NoError(t, err)
	assert.Equal(t, "294K", set.Temperature)
}
