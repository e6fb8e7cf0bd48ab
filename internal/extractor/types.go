package extractor

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Transport is the wire protocol an MCP server speaks.
type Transport string

const (
	TransportStdio          Transport = "stdio"
	TransportSSE            Transport = "sse"
	TransportStreamableHTTP Transport = "streamable-http"
)

// Valid reports whether t is one of the known transports.
func (t Transport) Valid() bool {
	switch t {
	case TransportStdio, TransportSSE, TransportStreamableHTTP:
		return true
	}
	return false
}

// EnvVar describes one environment variable a server reads.
type EnvVar struct {
	Description string `json:"description" yaml:"description" jsonschema:"description=What the variable configures"`
	Required    bool   `json:"required" yaml:"required"`
	Example     string `json:"example" yaml:"example" jsonschema:"description=Example value"`
}

// Installation maps a package manager to the identifier used with it.
type Installation struct {
	NPM    string `json:"npm,omitempty" yaml:"npm,omitempty" jsonschema:"description=NPM package name"`
	Pip    string `json:"pip,omitempty" yaml:"pip,omitempty" jsonschema:"description=Python package name"`
	Docker string `json:"docker,omitempty" yaml:"docker,omitempty" jsonschema:"description=Docker image name"`
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty" jsonschema:"description=Binary download URL"`
}

func (i *Installation) isZero() bool {
	return i == nil || *i == Installation{}
}

// Capabilities are the MCP feature flags a server advertises.
type Capabilities struct {
	Tools     bool `json:"tools" yaml:"tools"`
	Resources bool `json:"resources" yaml:"resources"`
	Prompts   bool `json:"prompts" yaml:"prompts"`
	Logging   bool `json:"logging" yaml:"logging"`
}

// ServerConfig is the configuration extracted for one MCP server. It is both
// the decode target for the model's structured reply and the source of the
// JSON Schema the model is asked to follow. Unset fields are omitted.
type ServerConfig struct {
	Name         string            `json:"name,omitempty" yaml:"name,omitempty" jsonschema:"description=Server name"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty" jsonschema:"description=Server description"`
	Command      string            `json:"command,omitempty" yaml:"command,omitempty" jsonschema:"description=Command to run the server"`
	Args         []string          `json:"args,omitempty" yaml:"args,omitempty" jsonschema:"description=Command line arguments"`
	Env          map[string]EnvVar `json:"env,omitempty" yaml:"env,omitempty" jsonschema:"description=Environment variables required"`
	Installation *Installation     `json:"installation,omitempty" yaml:"installation,omitempty"`
	Capabilities *Capabilities     `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Transport    Transport         `json:"transport,omitempty" yaml:"transport,omitempty" jsonschema:"enum=stdio,enum=sse,enum=streamable-http,description=Transport protocol"`
	URL          string            `json:"url,omitempty" yaml:"url,omitempty" jsonschema:"description=URL for HTTP-based servers"`
}

// configKeys are the top-level keys of ServerConfig in schema order.
var configKeys = []string{"name", "description", "command", "args", "env", "installation", "capabilities", "transport", "url"}

// ToMap renders c as a ConfigMap holding only the set fields.
func (c *ServerConfig) ToMap() ConfigMap {
	m := ConfigMap{}
	if c == nil {
		return m
	}
	if c.Name != "" {
		m["name"] = c.Name
	}
	if c.Description != "" {
		m["description"] = c.Description
	}
	if c.Command != "" {
		m["command"] = c.Command
	}
	if len(c.Args) > 0 {
		m["args"] = c.Args
	}
	if len(c.Env) > 0 {
		m["env"] = c.Env
	}
	if !c.Installation.isZero() {
		m["installation"] = c.Installation
	}
	if c.Capabilities != nil {
		m["capabilities"] = c.Capabilities
	}
	if c.Transport != "" {
		m["transport"] = c.Transport
	}
	if c.URL != "" {
		m["url"] = c.URL
	}
	return m
}

// ConfigMap is an extracted configuration as emitted. Keys are limited to
// the schema's top-level keys; values are kept as the model wrote them.
type ConfigMap map[string]any

// structuredConfig keeps the schema keys of a decoded object, dropping nulls.
func structuredConfig(obj map[string]any) ConfigMap {
	m := ConfigMap{}
	for _, key := range configKeys {
		if v, ok := obj[key]; ok && v != nil {
			m[key] = v
		}
	}
	return m
}

// Typed decodes m into a ServerConfig. Values of the wrong type are left
// at their zero value.
func (m ConfigMap) Typed() ServerConfig {
	var cfg ServerConfig
	b, err := json.Marshal(m)
	if err != nil {
		return cfg
	}
	_ = json.Unmarshal(b, &cfg)
	return cfg
}

// Has reports whether key holds a value other than an empty string.
func (m ConfigMap) Has(key string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return s != ""
	}
	return true
}

// Schema returns the JSON Schema describing ServerConfig.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}
	s := r.Reflect(&ServerConfig{})
	s.Version = ""
	return s
}

// SchemaJSON renders Schema as indented JSON.
func SchemaJSON() (string, error) {
	b, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
