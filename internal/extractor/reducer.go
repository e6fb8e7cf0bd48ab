package extractor

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const (
	structuredConfidence = 0.8
	fallbackConfidence   = 0.6
)

// envVarPattern matches whole upper-case identifiers. Digits may follow the
// leading letter of any group (OAUTH2_TOKEN, AWS_S3_BUCKET).
var envVarPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]*(?:_[A-Z0-9]+)*\b`)

// Scores are heuristic confidence values attached to an Output.
type Scores struct {
	Overall      float64 `json:"overall" yaml:"overall"`
	Completeness float64 `json:"completeness" yaml:"completeness"`
}

// Output is the document the extractor emits.
type Output struct {
	ExtractedConfig  ConfigMap `json:"extracted_config" yaml:"extracted_config"`
	ConfidenceScores Scores    `json:"confidence_scores" yaml:"confidence_scores"`
	SourceFiles      []string  `json:"source_files" yaml:"source_files"`
}

// Reduce turns an extraction result into an Output. A non-empty structured
// configuration is used as written; otherwise the text concepts are parsed
// field by field and gaps are filled from the manifest.
func Reduce(res *Result, m *Manifest) *Output {
	out := &Output{SourceFiles: []string{"README.md"}}
	if m.present() {
		out.SourceFiles = append(out.SourceFiles, "package.json")
	}

	structured := res != nil && len(res.Configuration) > 0
	if structured {
		out.ExtractedConfig = make(ConfigMap, len(res.Configuration))
		for k, v := range res.Configuration {
			out.ExtractedConfig[k] = v
		}
		if v, ok := out.ExtractedConfig["transport"]; ok {
			if t, isString := v.(string); !isString || !Transport(t).Valid() {
				slog.Warn("Dropping unknown transport from structured configuration", "transport", v)
				delete(out.ExtractedConfig, "transport")
			}
		}
	} else {
		cfg := fromConcepts(res)
		if m.present() {
			backfill(&cfg, m)
		}
		out.ExtractedConfig = cfg.ToMap()
	}
	out.ConfidenceScores = Score(out.ExtractedConfig, structured)
	slog.Debug("Reduced extraction result", "structured", structured, "overall", out.ConfidenceScores.Overall, "completeness", out.ConfidenceScores.Completeness)
	return out
}

func fromConcepts(res *Result) ServerConfig {
	var cfg ServerConfig
	if v, ok := res.Value(ConceptServerName); ok {
		cfg.Name = v
	}
	if v, ok := res.Value(ConceptDescription); ok {
		cfg.Description = v
	}
	if v, ok := res.Value(ConceptExecutionCommand); ok {
		if command, args, ok := SplitCommand(v); ok {
			cfg.Command = command
			cfg.Args = args
		}
	}
	if v, ok := res.Value(ConceptEnvVariables); ok {
		if env := ParseEnvVariables(v); len(env) > 0 {
			cfg.Env = env
		}
	}
	if v, ok := res.Value(ConceptCapabilities); ok {
		caps := ParseCapabilities(v)
		cfg.Capabilities = &caps
	}
	return cfg
}

func backfill(cfg *ServerConfig, m *Manifest) {
	if cfg.Name == "" && m.Name != "" {
		cfg.Name = m.Name
	}
	if cfg.Description == "" && m.Description != "" {
		cfg.Description = m.Description
	}
	if cfg.Command == "" && len(m.Bin) > 0 {
		cfg.Command = m.Bin[0]
	}
}

// SplitCommand splits an execution command on whitespace. ok is false when
// the value holds no tokens.
func SplitCommand(value string) (command string, args []string, ok bool) {
	parts := strings.Fields(value)
	if len(parts) == 0 {
		return "", nil, false
	}
	if len(parts) > 1 {
		args = parts[1:]
	}
	return parts[0], args, true
}

// ParseEnvVariables collects upper-case identifiers such as API_KEY from
// free text. Capitalised words like "Set" are not identifiers. Every variable is reported as required.
func ParseEnvVariables(text string) map[string]EnvVar {
	env := make(map[string]EnvVar)
	for _, name := range envVarPattern.FindAllString(text, -1) {
		env[name] = EnvVar{
			Description: fmt.Sprintf("Environment variable %s", name),
			Required:    true,
			Example:     "",
		}
	}
	return env
}

// ParseCapabilities derives capability flags from free text by keyword.
func ParseCapabilities(text string) Capabilities {
	text = strings.ToLower(text)
	return Capabilities{
		Tools:     strings.Contains(text, "tool"),
		Resources: strings.Contains(text, "resource"),
		Prompts:   strings.Contains(text, "prompt"),
		Logging:   strings.Contains(text, "logging") || strings.Contains(text, "log"),
	}
}

// Score computes the confidence values for cfg.
func Score(cfg ConfigMap, structured bool) Scores {
	s := Scores{Overall: fallbackConfidence}
	if structured {
		s.Overall = structuredConfidence
	}
	found := 0
	for _, key := range []string{"name", "description", "command"} {
		if cfg.Has(key) {
			found++
		}
	}
	s.Completeness = float64(found) / 3
	return s
}
