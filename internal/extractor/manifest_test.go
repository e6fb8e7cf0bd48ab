package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest_BinOrder(t *testing.T) {
	m, err := ParseManifest([]byte(`{
  "name": "@acme/files-mcp",
  "description": "File access",
  "bin": {"zeta": "z.js", "alpha": "a.js", "mid": "m.js"}
}`))
	require.NoError(t, err)

	assert.Equal(t, "@acme/files-mcp", m.Name)
	assert.Equal(t, "File access", m.Description)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Bin)
}

func TestParseManifest_StringBin(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "@acme/files-mcp", "bin": "./dist/index.js"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"files-mcp"}, m.Bin)
}

func TestParseManifest_NoBin(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": 42, "version": "1.0.0"}`))
	require.NoError(t, err)
	assert.Empty(t, m.Name)
	assert.Nil(t, m.Bin)
}

func TestParseManifest_Invalid(t *testing.T) {
	_, err := ParseManifest([]byte(`{"name": `))
	assert.Error(t, err)
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"foo"}`), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "foo", m.Name)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "read manifest")
}

func TestAssembleDocument(t *testing.T) {
	assert.Equal(t, "# Readme", AssembleDocument("# Readme", nil))

	m, err := ParseManifest([]byte(`{"name":"foo","bin":{"foo-cli":"x"}}`))
	require.NoError(t, err)

	want := "# Readme\n\n---\nPackage.json:\n{\n  \"name\": \"foo\",\n  \"bin\": {\n    \"foo-cli\": \"x\"\n  }\n}"
	assert.Equal(t, want, AssembleDocument("# Readme", m))
}

func TestAssembleDocument_EmptyManifest(t *testing.T) {
	m, err := ParseManifest([]byte(" {} \n"))
	require.NoError(t, err)

	assert.Equal(t, "# Readme", AssembleDocument("# Readme", m))
	assert.Empty(t, m.Indented())
}
