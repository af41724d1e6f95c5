// Package library loads and caches nuclide reaction data.
//
// A Store resolves each nuclide to a data source, reads the reaction file
// from disk or from a remote library (with an on-disk lookaside cache) and
// parses it into a TableSet. Entries are keyed by nuclide, source identity
// and temperature; each key is loaded at most once per Store.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/m4mc/m4mc/xs/source"
	"github.com/m4mc/m4mc/xs/xserr"
)

var tracer = otel.Tracer("github.com/m4mc/m4mc/xs/library")

// Key identifies a cache entry.
type Key struct {
	Nuclide     string
	Source      string
	Temperature string
}

func (k Key) String() string {
	return k.Nuclide + "|" + k.Source + "|" + k.Temperature
}

// Stats counts the work a Store has done.
type Stats struct {
	Fetches  int64 // remote fetch attempts
	DiskHits int64 // lookaside cache reads
	Parses   int64 // reaction files parsed
	Entries  int   // cached table sets
}

// Store is a concurrency-safe cache of parsed reaction data.
type Store struct {
	resolver *source.Resolver
	fetcher  Fetcher
	settings Settings

	mu      sync.RWMutex
	entries map[Key]*TableSet

	loads   singleflight.Group
	fetches singleflight.Group

	fetchCount atomic.Int64
	diskHits   atomic.Int64
	parseCount atomic.Int64
}

// Option configures a Store.
type Option func(*Store)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Store) { s.fetcher = f }
}

// WithSettings replaces the default settings.
func WithSettings(settings Settings) Option {
	return func(s *Store) { s.settings = settings.withDefaults() }
}

// NewStore returns an empty store resolving sources through r. A nil
// resolver gets a fresh, unconfigured one.
func NewStore(r *source.Resolver, opts ...Option) *Store {
	if r == nil {
		r = source.NewResolver()
	}
	s := &Store{
		resolver: r,
		fetcher:  NewHTTPFetcher(),
		settings: DefaultSettings(),
		entries:  make(map[Key]*TableSet),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolver returns the source configuration used by the store.
func (s *Store) Resolver() *source.Resolver { return s.resolver }

// Settings returns the fetch and cache settings.
func (s *Store) Settings() Settings { return s.settings }

// Stats returns a snapshot of the store's counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return Stats{
		Fetches:  s.fetchCount.Load(),
		DiskHits: s.diskHits.Load(),
		Parses:   s.parseCount.Load(),
		Entries:  n,
	}
}

// Load returns the tables of nuclide at temperature from its resolved source.
func (s *Store) Load(ctx context.Context, nuclide, temperature string) (*TableSet, error) {
	src, err := s.resolver.Resolve(nuclide)
	if err != nil {
		return nil, err
	}
	return s.LoadFrom(ctx, nuclide, src, temperature)
}

// temperatureKey folds numeric spellings such as "294", "294.0" and "294K"
// onto one cache key.
func temperatureKey(t string) string {
	n := NormalizeTemperature(t)
	if f, err := strconv.ParseFloat(n, 64); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return n
}

// LoadFrom returns the tables of nuclide at temperature from src, bypassing
// the resolver. Concurrent calls for the same key share one read and parse.
// A caller whose context ends stops waiting; the load itself carries on and
// populates the cache for later callers.
func (s *Store) LoadFrom(ctx context.Context, nuclide string, src source.Descriptor, temperature string) (*TableSet, error) {
	key := Key{Nuclide: nuclide, Source: src.Identity(), Temperature: temperatureKey(temperature)}
	if set, ok := s.get(key); ok {
		return set, nil
	}

	ctx, span := tracer.Start(ctx, "library.Load", trace.WithAttributes(
		attribute.String("nuclide", nuclide),
		attribute.String("source", key.Source),
		attribute.String("temperature", temperature),
	))
	defer span.End()

	flightCtx := context.WithoutCancel(ctx)
	ch := s.loads.DoChan(key.String(), func() (any, error) {
		if set, ok := s.get(key); ok {
			return set, nil
		}
		set, err := s.read(flightCtx, nuclide, src, temperature)
		if err != nil {
			return nil, err
		}
		set.Source = key.Source
		s.mu.Lock()
		s.entries[key] = set
		s.mu.Unlock()
		logrus.Debugf("cached %s at %s from %s (%d reactions)", nuclide, set.Temperature, key.Source, len(set.Tables))
		return set, nil
	})

	select {
	case <-ctx.Done():
		xe := xserr.Wrap(xserr.ErrData, "library.Load", ctx.Err()).WithNuclide(nuclide).WithReaction(0, temperature)
		xe.Retryable = true
		span.RecordError(xe)
		span.SetStatus(codes.Error, "canceled")
		return nil, xe
	case res := <-ch:
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			return nil, res.Err
		}
		span.SetAttributes(attribute.Bool("shared", res.Shared))
		return res.Val.(*TableSet), nil
	}
}

func (s *Store) get(key Key) (*TableSet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.entries[key]
	return set, ok
}

func (s *Store) read(ctx context.Context, nuclide string, src source.Descriptor, temperature string) (*TableSet, error) {
	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case source.KindLibrary:
		data, err = s.remote(ctx, src.Value(), nuclide)
	case source.KindPath:
		data, err = os.ReadFile(src.Value())
		if err != nil {
			err = xserr.Wrap(xserr.ErrData, "library.Load", fmt.Errorf("read %s: %w", src.Value(), err)).
				WithNuclide(nuclide)
		}
	default:
		err = xserr.New(xserr.ErrConfig, "library.Load", "empty data source").WithNuclide(nuclide)
	}
	if err != nil {
		return nil, err
	}

	s.parseCount.Add(1)
	set, err := Parse(data, nuclide, temperature)
	if err != nil {
		return nil, err
	}
	if set.Library == "" && src.Kind() == source.KindLibrary {
		set.Library = src.Value()
	}
	return set, nil
}

// remote returns a library file, preferring the lookaside cache.
func (s *Store) remote(ctx context.Context, lib, nuclide string) ([]byte, error) {
	path := s.settings.CachePath(lib, nuclide)
	if data, err := os.ReadFile(path); err == nil {
		s.diskHits.Add(1)
		logrus.Debugf("using cached %s", path)
		return data, nil
	}

	v, err, _ := s.fetches.Do(lib+"/"+nuclide, func() (any, error) {
		data, err := s.fetch(ctx, lib, nuclide)
		if err != nil {
			return nil, err
		}
		if !json.Valid(data) {
			logrus.Warnf("%s from %s is not valid JSON, not caching", nuclide, lib)
			return data, nil
		}
		if err := writeAtomic(path, data); err != nil {
			logrus.Warnf("could not cache %s: %v", path, err)
		} else {
			logrus.Infof("fetched and cached %s from %s", nuclide, lib)
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// fetch downloads with bounded exponential-backoff retries. Each attempt is
// limited by FetchTimeout.
func (s *Store) fetch(ctx context.Context, lib, nuclide string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.settings.BackoffBase

	attempt := func() ([]byte, error) {
		actx, cancel := context.WithTimeout(ctx, s.settings.FetchTimeout)
		defer cancel()
		s.fetchCount.Add(1)
		data, err := s.fetcher.Fetch(actx, lib, nuclide)
		if err == nil {
			return data, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, backoff.Permanent(err)
		}
		logrus.Warnf("fetch %s from %s failed: %v", nuclide, lib, err)
		return nil, err
	}

	data, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(s.settings.FetchAttempts)))
	if err != nil {
		xe := xserr.Wrap(xserr.ErrData, "library.Fetch", fmt.Errorf("%s from %s: %w", nuclide, lib, err)).
			WithNuclide(nuclide)
		xe.Retryable = !errors.Is(err, ErrNotFound)
		return nil, xe
	}
	return data, nil
}

// writeAtomic writes data next to path and renames it into place so readers
// never see a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
