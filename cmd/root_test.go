package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m4mc/m4mc/xs"
	"github.com/m4mc/m4mc/xs/nucdata"
	"github.com/m4mc/m4mc/xs/table"
)

// fixture returns the absolute path of a repository testdata file.
func fixture(t *testing.T, name string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	return p
}

// resetFlags restores every flag variable and clears cobra's changed marks
// so each test invocation starts from defaults.
func resetFlags(t *testing.T) {
	t.Helper()
	logLevel, sourcesPath, defaultSrc = "warn", "", ""
	overrides = nil
	cacheDir = t.TempDir()
	boundaryName, temperature = "", ""
	reactionName, plot = "(n,total)", false
	components, density, densityUnit, materialName = nil, 0, "g/cm3", ""
	energy, seed, samples = 0, 42, 1000

	unmark := func(fs *pflag.FlagSet) { fs.VisitAll(func(f *pflag.Flag) { f.Changed = false }) }
	unmark(rootCmd.PersistentFlags())
	for _, c := range rootCmd.Commands() {
		unmark(c.Flags())
	}
}

// run executes the CLI with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func lithiumOverrides(t *testing.T) []string {
	return []string{
		"--override", "Li6=" + fixture(t, "Li6.json"),
		"--override", "Li7=" + fixture(t, "Li7.json"),
	}
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"micro", "macro", "mfp", "sample"} {
		assert.Contains(t, names, want)
	}
}

func TestNewSession_FlagsOverrideSourcesFile(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "sources.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(
		"default: tendl-21\nboundary: strict\ntemperature: \"600\"\nnuclides:\n  Li6: Li6.json\n"), 0o644))

	// GIVEN only the file
	sourcesPath = cfg
	sess, opts, err := newSession()
	require.NoError(t, err)
	assert.Equal(t, "600", opts.temperature)
	assert.Equal(t, table.Strict, sess.Boundary())
	d, err := sess.Sources().Resolve("Li6")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Li6.json"), d.Value())
	assert.Equal(t, cacheDir, sess.Store().Settings().CacheDir)

	// WHEN flags are also set THEN they win
	temperature, boundaryName = "294", "clamp"
	sess, opts, err = newSession()
	require.NoError(t, err)
	assert.Equal(t, "294", opts.temperature)
	assert.Equal(t, table.Clamp, sess.Boundary())
}

func TestNewSession_Defaults(t *testing.T) {
	resetFlags(t)
	sess, opts, err := newSession()
	require.NoError(t, err)
	assert.Equal(t, xs.DefaultTemperature, opts.temperature)
	assert.Equal(t, table.Clamp, sess.Boundary())
}

func TestNewSession_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		set  func()
	}{
		{"unknown keyword", func() { defaultSrc = "not-a-library" }},
		{"malformed override", func() { overrides = []string{"Li6"} }},
		{"unknown boundary", func() { boundaryName = "wrap" }},
		{"missing sources file", func() { sourcesPath = "/nonexistent/sources.yaml" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			tc.set()
			_, _, err := newSession()
			assert.Error(t, err)
		})
	}
}

func TestParseComponent(t *testing.T) {
	c, err := parseComponent("Li6=0.25")
	require.NoError(t, err)
	assert.Equal(t, component{id: "Li6", fraction: 0.25}, c)

	for _, bad := range []string{"Li6", "=0.5", "Li6=abc"} {
		_, err := parseComponent(bad)
		assert.Error(t, err, bad)
	}
}

func TestMicro_NuclideTable(t *testing.T) {
	args := append([]string{"micro", "Li6"}, lithiumOverrides(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)

	assert.Contains(t, out, "Li6 (n,total) T=294K")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2+4)
	assert.Contains(t, lines[2], "1.010000e+02")
	assert.Contains(t, lines[5], "4.500000e+00")
}

func TestMicro_TemperatureAndReactionFlags(t *testing.T) {
	args := append([]string{"micro", "Li6", "--temperature", "600", "--reaction", "105"}, lithiumOverrides(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "T=600K")
	assert.Contains(t, out, "9.900000e+01")
}

func TestMicro_Element(t *testing.T) {
	args := append([]string{"micro", "Li", "--reaction", "(n,elastic)"}, lithiumOverrides(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Li (n,elastic)")
	// Li6 elastic is 1 b on its grid and Li7 is 2 b on its grid
	assert.Contains(t, out, fmt.Sprintf("%.6e", 0.07589*1+0.92411*2))
}

func TestMicro_MissingReactionFails(t *testing.T) {
	args := append([]string{"micro", "Li6", "--reaction", "(n,fission)"}, lithiumOverrides(t)...)
	_, err := run(t, args...)
	assert.Error(t, err)
}

func TestMicro_Plot(t *testing.T) {
	args := append([]string{"micro", "Li6", "--plot"}, lithiumOverrides(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "log10 over 4 points")
	assert.NotContains(t, out, "energy_eV")
}

func TestRenderPlot_HandlesZeros(t *testing.T) {
	out := renderPlot("threshold", []float64{1, 10, 100}, []float64{0, 0.5, 5})
	assert.Contains(t, out, "threshold")
	assert.NotContains(t, out, "NaN")

	out = renderPlot("empty", []float64{1, 2}, []float64{0, 0})
	assert.Contains(t, out, "empty")
}

func TestMacro_Table(t *testing.T) {
	args := append([]string{"macro", "--add", "Li6=1", "--density", "1", "--name", "lithium6"}, lithiumOverrides(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)

	mass, ok := nucdata.AtomicMass("Li6")
	require.True(t, ok)
	n := xs.Avogadro / mass
	assert.Contains(t, out, "lithium6")
	assert.Contains(t, out, fmt.Sprintf("%.6e", n*101*1e-24))
}

func TestMacro_RequiresConstituents(t *testing.T) {
	_, err := run(t, "macro", "--density", "1")
	assert.Error(t, err)
}

func TestMacro_RejectsUnknownDensityUnit(t *testing.T) {
	args := append([]string{"macro", "--add", "Li6=1", "--density", "1", "--density-unit", "lb/ft3"}, lithiumOverrides(t)...)
	_, err := run(t, args...)
	assert.Error(t, err)
}

func TestMFP_AtEnergy(t *testing.T) {
	args := append([]string{"mfp", "--add", "Li6=1", "--density", "1", "--energy", "10"}, lithiumOverrides(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)

	mass, _ := nucdata.AtomicMass("Li6")
	want := 1 / (xs.Avogadro / mass * 31 * 1e-24)
	assert.Contains(t, out, fmt.Sprintf("%.6e cm", want))
}

func TestMFP_ZeroCrossSectionIsInfinite(t *testing.T) {
	// MT24 is a threshold reaction that is zero below 100 eV
	args := append([]string{"mfp", "--add", "Li6=1", "--density", "1", "--energy", "10", "--reaction", "24"}, lithiumOverrides(t)...)
	out, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "infinite")
}

func TestMFP_RequiresEnergy(t *testing.T) {
	args := append([]string{"mfp", "--add", "Li6=1", "--density", "1"}, lithiumOverrides(t)...)
	_, err := run(t, args...)
	assert.Error(t, err)
}

func TestSample_SameSeedSameOutput(t *testing.T) {
	args := append([]string{"sample", "--add", "Li6=1", "--density", "1", "--energy", "10", "--count", "200", "--seed", "7"}, lithiumOverrides(t)...)
	first, err := run(t, args...)
	require.NoError(t, err)
	second, err := run(t, args...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "collisions: 200")
	assert.Contains(t, first, "Li6")
	// below the MT24 threshold only elastic and (n,t) remain
	assert.Contains(t, first, "(n,elastic)")
	assert.Contains(t, first, "(n,t)")
	assert.NotContains(t, first, "MT24")
}

func TestSample_RejectsZeroCount(t *testing.T) {
	args := append([]string{"sample", "--add", "Li6=1", "--density", "1", "--energy", "10", "--count", "0"}, lithiumOverrides(t)...)
	_, err := run(t, args...)
	assert.Error(t, err)
}

func TestTally_Write(t *testing.T) {
	tl := newTally()
	tl.add(xs.Collision{Distance: 1, Nuclide: "Li7", Reaction: xs.Elastic})
	tl.add(xs.Collision{Distance: 3, Nuclide: "Li6", Reaction: xs.NT})
	var b bytes.Buffer
	tl.write(&b)
	out := b.String()
	assert.Contains(t, out, "collisions: 2")
	assert.Contains(t, out, "mean=2.000000e+00")
	assert.Less(t, strings.Index(out, "Li6"), strings.Index(out, "Li7"))
}
