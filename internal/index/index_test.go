package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testSymbols() []Symbol {
	return []Symbol{
		{
			Name:  "NewSession",
			Kind:  "function",
			File:  "session.go",
			Line:  10,
			Stub:  "func NewSession(id string) *Session",
			Body:  "func NewSession(id string) *Session {\n\treturn &Session{id: id}\n}",
			Calls: []string{"validateID", "missing"},
		},
		{
			Name:     "validateID",
			Kind:     "function",
			File:     "session.go",
			Line:     30,
			Stub:     "func validateID(id string) error",
			Body:     "func validateID(id string) error {\n\treturn nil\n}",
			CalledBy: []string{"NewSession"},
		},
		{
			Name:     "Session",
			Kind:     "struct",
			File:     "session.go",
			Line:     5,
			Stub:     "type Session struct { id string }",
			CalledBy: []string{"NewSession"},
		},
	}
}

func writeJSONIndex(t *testing.T, dir string, f File) {
	t.Helper()
	data, err := json.Marshal(f)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, JSONName), data, 0o644))
}

func TestLoadJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJSONIndex(t, dir, File{Version: 1, Symbols: testSymbols()})

	idx, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())
	require.Equal(t, []string{"NewSession", "validateID", "Session"}, idx.Names())

	stub, ok := idx.Stub("NewSession")
	require.True(t, ok)
	require.Equal(t, "func NewSession(id string) *Session", stub)

	_, ok = idx.Lookup("unknown")
	require.False(t, ok)
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestPackRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJSONIndex(t, dir, File{Version: 1, Symbols: testSymbols()})

	require.NoError(t, Pack(dir))
	require.FileExists(t, filepath.Join(dir, PackedName))

	// Load prefers the packed form; the view must match the JSON one.
	idx, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	body, ok := idx.Body("validateID")
	require.True(t, ok)
	require.Contains(t, body, "return nil")
}

func TestNewDeduplicates(t *testing.T) {
	t.Parallel()

	idx, err := New([]Symbol{
		{Name: "Dup", Stub: "first"},
		{Name: "Dup", Stub: "second"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())

	stub, ok := idx.Stub("Dup")
	require.True(t, ok)
	require.Equal(t, "first", stub)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a, err := New(testSymbols())
	require.NoError(t, err)
	require.NotEmpty(t, a.Fingerprint())

	// Same symbols, same fingerprint.
	b, err := New(testSymbols())
	require.NoError(t, err)
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	// Any content change shifts it.
	changed := testSymbols()
	changed[1].Body = "func validateID(id string) error {\n\treturn errEmptyID\n}"
	c, err := New(changed)
	require.NoError(t, err)
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestFingerprintSurvivesPacking(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJSONIndex(t, dir, File{Version: 1, Symbols: testSymbols()})

	fromJSON, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, Pack(dir))
	fromPacked, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, fromJSON.Fingerprint(), fromPacked.Fingerprint())
}

func TestDependencies(t *testing.T) {
	t.Parallel()

	idx, err := New(testSymbols())
	require.NoError(t, err)

	deps := idx.Dependencies("NewSession")
	// "missing" is not in the index and Session has no body, so only
	// validateID survives.
	require.Len(t, deps, 1)
	require.Equal(t, "validateID", deps[0].Symbol)
	require.Contains(t, deps[0].Body, "func validateID")

	// Second call hits the cache and returns the same view.
	require.Equal(t, deps, idx.Dependencies("NewSession"))

	require.Nil(t, idx.Dependencies("unknown"))
}

func TestDependenciesSelfExcluded(t *testing.T) {
	t.Parallel()

	idx, err := New([]Symbol{
		{Name: "Recurse", Body: "func Recurse() { Recurse() }", Calls: []string{"Recurse"}},
	})
	require.NoError(t, err)
	require.Empty(t, idx.Dependencies("Recurse"))
}
