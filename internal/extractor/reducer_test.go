package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_NothingRecognized(t *testing.T) {
	out := Reduce(&Result{Values: map[string]string{}}, nil)

	assert.Empty(t, out.ExtractedConfig)
	assert.Equal(t, 0.0, out.ConfidenceScores.Completeness)
	assert.Equal(t, 0.6, out.ConfidenceScores.Overall)
	assert.Equal(t, []string{"README.md"}, out.SourceFiles)
}

func TestReduce_ManifestBackfill(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "foo", "bin": {"foo-cli": "./bin/cli.js"}}`))
	require.NoError(t, err)

	out := Reduce(&Result{}, m)

	assert.Equal(t, ConfigMap{"name": "foo", "command": "foo-cli"}, out.ExtractedConfig)
	assert.Equal(t, 0.6, out.ConfidenceScores.Overall)
	assert.InDelta(t, 2.0/3, out.ConfidenceScores.Completeness, 1e-9)
	assert.Equal(t, []string{"README.md", "package.json"}, out.SourceFiles)
}

func TestReduce_EmptyManifestIsAbsent(t *testing.T) {
	m, err := ParseManifest([]byte(`{}`))
	require.NoError(t, err)

	out := Reduce(&Result{}, m)

	assert.Empty(t, out.ExtractedConfig)
	assert.Equal(t, []string{"README.md"}, out.SourceFiles)
}

func TestReduce_ManifestDoesNotOverrideConcepts(t *testing.T) {
	m, err := ParseManifest([]byte(`{"name": "pkg-name", "description": "from manifest", "bin": {"pkg": "x"}}`))
	require.NoError(t, err)
	res := &Result{Values: map[string]string{
		ConceptServerName:       "Weather Server",
		ConceptExecutionCommand: "npx weather-mcp",
	}}

	out := Reduce(res, m)

	cfg := out.ExtractedConfig.Typed()
	assert.Equal(t, "Weather Server", cfg.Name)
	assert.Equal(t, "from manifest", cfg.Description)
	assert.Equal(t, "npx", cfg.Command)
	assert.Equal(t, []string{"weather-mcp"}, cfg.Args)
	assert.Equal(t, 1.0, out.ConfidenceScores.Completeness)
}

func TestReduce_StructuredWins(t *testing.T) {
	res := &Result{
		Values: map[string]string{
			ConceptServerName:       "ignored",
			ConceptDescription:      "ignored too",
			ConceptExecutionCommand: "python -m ignored",
		},
		Configuration: ConfigMap{"name": "X", "command": "Y"},
	}

	out := Reduce(res, nil)

	assert.Equal(t, ConfigMap{"name": "X", "command": "Y"}, out.ExtractedConfig)
	assert.Equal(t, 0.8, out.ConfidenceScores.Overall)
	assert.InDelta(t, 2.0/3, out.ConfidenceScores.Completeness, 1e-9)
}

func TestReduce_EmptyStructuredFallsBack(t *testing.T) {
	res := &Result{
		Values:        map[string]string{ConceptServerName: "fallback"},
		Configuration: ConfigMap{},
	}

	out := Reduce(res, nil)

	assert.Equal(t, ConfigMap{"name": "fallback"}, out.ExtractedConfig)
	assert.Equal(t, 0.6, out.ConfidenceScores.Overall)
}

func TestReduce_StructuredUnknownTransportDropped(t *testing.T) {
	res := &Result{Configuration: ConfigMap{"name": "X", "transport": "carrier-pigeon"}}

	out := Reduce(res, nil)

	assert.Equal(t, ConfigMap{"name": "X"}, out.ExtractedConfig)

	res = &Result{Configuration: ConfigMap{"name": "X", "transport": "sse"}}
	assert.Equal(t, "sse", Reduce(res, nil).ExtractedConfig["transport"])
}

func TestReduce_StructuredKeptAsWritten(t *testing.T) {
	res := &Result{Configuration: ConfigMap{
		"name":         "X",
		"args":         "--stdio",
		"capabilities": map[string]any{"tools": true},
		"env":          map[string]any{"API_KEY": map[string]any{"description": "key"}},
	}}
	m, err := ParseManifest([]byte(`{"name": "pkg", "description": "from manifest", "bin": {"pkg": "x"}}`))
	require.NoError(t, err)

	out := Reduce(res, m)

	assert.Equal(t, "--stdio", out.ExtractedConfig["args"])
	assert.Equal(t, map[string]any{"tools": true}, out.ExtractedConfig["capabilities"])
	assert.Equal(t, map[string]any{"API_KEY": map[string]any{"description": "key"}}, out.ExtractedConfig["env"])
	assert.NotContains(t, out.ExtractedConfig, "description")
	assert.NotContains(t, out.ExtractedConfig, "command")
	assert.Equal(t, 0.8, out.ConfidenceScores.Overall)
	assert.InDelta(t, 1.0/3, out.ConfidenceScores.Completeness, 1e-9)
}

func TestReduce_FallbackFields(t *testing.T) {
	res := &Result{Values: map[string]string{
		ConceptEnvVariables: "Requires GITHUB_TOKEN.",
		ConceptCapabilities: "Provides resources and prompts",
	}}

	out := Reduce(res, nil)

	cfg := out.ExtractedConfig.Typed()
	require.Contains(t, cfg.Env, "GITHUB_TOKEN")
	require.NotNil(t, cfg.Capabilities)
	assert.Equal(t, Capabilities{Resources: true, Prompts: true}, *cfg.Capabilities)
	assert.Equal(t, 0.0, out.ConfidenceScores.Completeness)
}

func TestReduce_NilResult(t *testing.T) {
	out := Reduce(nil, nil)
	assert.Empty(t, out.ExtractedConfig)
	assert.Equal(t, 0.6, out.ConfidenceScores.Overall)
}

func TestParseEnvVariables(t *testing.T) {
	env := ParseEnvVariables("Set API_KEY and DB_HOST_NAME before running")

	assert.Equal(t, map[string]EnvVar{
		"API_KEY":      {Description: "Environment variable API_KEY", Required: true, Example: ""},
		"DB_HOST_NAME": {Description: "Environment variable DB_HOST_NAME", Required: true, Example: ""},
	}, env)
}

func TestParseEnvVariables_DigitsInNames(t *testing.T) {
	env := ParseEnvVariables("Set OAUTH2_TOKEN, AWS_S3_BUCKET and API_KEY_V2 before running")

	assert.ElementsMatch(t, []string{"OAUTH2_TOKEN", "AWS_S3_BUCKET", "API_KEY_V2"}, mapKeys(env))
}

func mapKeys(env map[string]EnvVar) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	return keys
}

func TestParseEnvVariables_DuplicatesCollapse(t *testing.T) {
	env := ParseEnvVariables("TOKEN is optional. If TOKEN is unset, API_KEY is used.")

	assert.Len(t, env, 2)
	assert.True(t, env["TOKEN"].Required)
	assert.Contains(t, env, "API_KEY")
}

func TestParseEnvVariables_NoMatches(t *testing.T) {
	assert.Empty(t, ParseEnvVariables("no variables mentioned here"))
}

func TestSplitCommand(t *testing.T) {
	command, args, ok := SplitCommand("node server.js --verbose")
	require.True(t, ok)
	assert.Equal(t, "node", command)
	assert.Equal(t, []string{"server.js", "--verbose"}, args)

	command, args, ok = SplitCommand("uvx")
	require.True(t, ok)
	assert.Equal(t, "uvx", command)
	assert.Nil(t, args)

	_, _, ok = SplitCommand("   \t ")
	assert.False(t, ok)
}

func TestParseCapabilities(t *testing.T) {
	tests := []struct {
		text string
		want Capabilities
	}{
		{"Supports tools and logging", Capabilities{Tools: true, Logging: true}},
		{"RESOURCES, PROMPTS", Capabilities{Resources: true, Prompts: true}},
		{"writes a log file", Capabilities{Logging: true}},
		{"nothing relevant", Capabilities{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCapabilities(tt.text))
		})
	}
}

func TestScore_CompletenessSteps(t *testing.T) {
	configs := []ConfigMap{
		{},
		{"name": "a", "description": ""},
		{"name": "a", "description": "b"},
		{"name": "a", "description": "b", "command": "c", "url": "http://x"},
	}
	for i, cfg := range configs {
		s := Score(cfg, false)
		assert.InDelta(t, float64(i)/3, s.Completeness, 1e-9)
		assert.LessOrEqual(t, s.Completeness, 1.0)
	}
	assert.Equal(t, 0.8, Score(ConfigMap{}, true).Overall)
}
