package extractor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Manifest is a package descriptor (package.json) supplementing the README.
// Raw keeps the source bytes so the document sent to the model preserves
// the author's key order.
type Manifest struct {
	Name        string
	Description string
	Bin         []string
	Raw         json.RawMessage

	keys int
}

// ParseManifest decodes a package.json document.
func ParseManifest(data []byte) (*Manifest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	m := &Manifest{
		Name:        stringField(fields["name"]),
		Description: stringField(fields["description"]),
		Raw:         json.RawMessage(bytes.TrimSpace(data)),
		keys:        len(fields),
	}
	bin, err := binCommands(fields["bin"], m.Name)
	if err != nil {
		return nil, err
	}
	m.Bin = bin
	return m, nil
}

// present reports whether m carries any field. An empty object counts as no
// manifest at all.
func (m *Manifest) present() bool {
	return m != nil && m.keys > 0
}

// LoadManifest reads and decodes the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Indented renders the manifest with a two space indent.
func (m *Manifest) Indented() string {
	if !m.present() || len(m.Raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, m.Raw, "", "  "); err != nil {
		return string(m.Raw)
	}
	return buf.String()
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// binCommands lists the executables a manifest declares in document order.
// The string form of "bin" installs one command named after the package.
func binCommands(raw json.RawMessage, pkgName string) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		if pkgName == "" {
			return nil, nil
		}
		if i := strings.LastIndex(pkgName, "/"); i >= 0 {
			pkgName = pkgName[i+1:]
		}
		return []string{pkgName}, nil
	case '{':
		return objectKeys(raw)
	}
	return nil, nil
}

func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode manifest bin: %w", err)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode manifest bin: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("decode manifest bin: non-string key")
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("decode manifest bin: %w", err)
		}
	}
	return keys, nil
}
