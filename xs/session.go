package xs

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/m4mc/m4mc/xs/library"
	"github.com/m4mc/m4mc/xs/source"
	"github.com/m4mc/m4mc/xs/table"
)

// DefaultTemperature is the temperature used when none is given.
const DefaultTemperature = "294"

// Session bundles the source configuration, the table store and the
// boundary policy applied to every lookup. Nuclides, elements and materials
// evaluate against a session; the zero value is not usable.
type Session struct {
	store    *library.Store
	boundary table.Boundary
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBoundary sets the out-of-grid policy.
func WithBoundary(b table.Boundary) SessionOption {
	return func(s *Session) { s.boundary = b }
}

// NewSession returns a session over store. A nil store gets a fresh one with
// an empty resolver and default settings.
func NewSession(store *library.Store, opts ...SessionOption) *Session {
	if store == nil {
		store = library.NewStore(nil)
	}
	s := &Session{store: store, boundary: table.Clamp}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sources returns the source resolver.
func (s *Session) Sources() *source.Resolver { return s.store.Resolver() }

// Store returns the table store.
func (s *Session) Store() *library.Store { return s.store }

// Boundary returns the out-of-grid policy.
func (s *Session) Boundary() table.Boundary { return s.boundary }

// Load returns the tables of nuclide at temperature.
func (s *Session) Load(ctx context.Context, nuclide, temperature string) (*library.TableSet, error) {
	if temperature == "" {
		temperature = DefaultTemperature
	}
	return s.store.Load(ctx, nuclide, temperature)
}

var (
	defaultMu      sync.Mutex
	defaultSession *Session
)

// Default returns the process-wide session, creating it on first use from
// M4MC_* environment settings.
func Default() *Session {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultSession == nil {
		settings, err := library.SettingsFromEnv()
		if err != nil {
			logrus.Warnf("ignoring invalid environment settings: %v", err)
			settings = library.DefaultSettings()
		}
		defaultSession = NewSession(library.NewStore(source.NewResolver(), library.WithSettings(settings)))
	}
	return defaultSession
}

// SetDefault replaces the process-wide session.
func SetDefault(s *Session) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultSession = s
}

// ResetDefault drops the process-wide session, including its configuration
// and cached tables. The next Default call builds a fresh one.
func ResetDefault() {
	SetDefault(nil)
}

func orDefault(s *Session) *Session {
	if s == nil {
		return Default()
	}
	return s
}
