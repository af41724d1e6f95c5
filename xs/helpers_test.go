package xs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m4mc/m4mc/xs/internal/testutil"
	"github.com/m4mc/m4mc/xs/library"
	"github.com/m4mc/m4mc/xs/source"
)

// fixtureSession returns a session reading Li6, Li7 and B10 from testdata.
func fixtureSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	r := source.NewResolver()
	for _, n := range []string{testutil.Li6, testutil.Li7, testutil.B10} {
		r.SetOverride(n, source.Path(testutil.FixturePath(t, n)))
	}
	store := library.NewStore(r, library.WithSettings(library.Settings{CacheDir: t.TempDir()}))
	return NewSession(store, opts...)
}

// writeNuclide writes a bare-layout reaction file and points nuclide at it.
func writeNuclide(t *testing.T, s *Session, nuclide, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), nuclide+".json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Sources().SetOverride(nuclide, source.Path(path))
}
