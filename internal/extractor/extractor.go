package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

const systemPrompt = `You extract MCP server configuration from project documentation.
Answer ONLY with a JSON object, no markdown formatting, no code fences.`

const extractionTemplate = `Read the document below and extract the following concepts.

Text concepts (answer each with a short plain string, or an empty string when the document does not say):
{{range .concepts}}- "{{.Name}}": {{.Description}}
{{end}}
Structured concept "{{.configuration.Name}}": {{.configuration.Description}}. Answer it with an object matching this JSON Schema, or null when the document does not describe the server:
{{.schema}}

Reply with exactly this shape:
{"concepts": {"<concept name>": "<value>"}, "configuration": <object or null>}

Document:
"""
{{.document}}
"""`

// Extractor submits documents to an LLM and collects the concept values it
// returns.
type Extractor struct {
	llm      llms.Model
	template prompts.PromptTemplate
	callOpts []llms.CallOption
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithCallOptions adds langchaingo call options to every model request.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(e *Extractor) {
		e.callOpts = append(e.callOpts, opts...)
	}
}

// New returns an Extractor backed by llm.
func New(llm llms.Model, opts ...Option) *Extractor {
	e := &Extractor{
		llm: llm,
		template: prompts.NewPromptTemplate(extractionTemplate,
			[]string{"concepts", "configuration", "schema", "document"}),
		callOpts: []llms.CallOption{llms.WithJSONMode()},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Prompt renders the user prompt for doc.
func (e *Extractor) Prompt(doc string) (string, error) {
	schema, err := SchemaJSON()
	if err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return e.template.Format(map[string]any{
		"concepts":      TextConcepts,
		"configuration": ConfigurationConcept,
		"schema":        schema,
		"document":      doc,
	})
}

// Extract runs one extraction over doc.
func (e *Extractor) Extract(ctx context.Context, doc string) (*Result, error) {
	prompt, err := e.Prompt(doc)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	slog.Info("Submitting document for extraction", "bytes", len(doc), "concepts", len(TextConcepts)+1)
	resp, err := e.llm.GenerateContent(ctx, messages, e.callOpts...)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("LLM returned no choices")
	}
	content := resp.Choices[0].Content
	slog.Debug("LLM response", "content", content)
	return ParseReply(content)
}

// ExtractConfiguration assembles the document, extracts it and reduces the
// result.
func (e *Extractor) ExtractConfiguration(ctx context.Context, readme string, m *Manifest) (*Output, error) {
	res, err := e.Extract(ctx, AssembleDocument(readme, m))
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return Reduce(res, m), nil
}

// ParseReply decodes the model's JSON answer into a Result.
func ParseReply(content string) (*Result, error) {
	content = stripJSONCodeFences(content)
	if content == "" {
		return nil, errors.New("LLM returned empty response")
	}
	var reply struct {
		Concepts      map[string]json.RawMessage `json:"concepts"`
		Configuration json.RawMessage            `json:"configuration"`
	}
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return nil, fmt.Errorf("decode LLM response: %w", err)
	}

	res := &Result{Values: make(map[string]string, len(reply.Concepts))}
	for name, raw := range reply.Concepts {
		if v := conceptText(raw); v != "" {
			res.Values[name] = v
		}
	}
	raw := bytes.TrimSpace(reply.Configuration)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			slog.Warn("Ignoring structured configuration that is not an object", "error", err)
		} else {
			res.Configuration = structuredConfig(obj)
		}
	}
	return res, nil
}

// conceptText flattens a concept value to text. Models occasionally answer
// with lists or objects; those are kept as compact JSON.
func conceptText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

// stripJSONCodeFences cuts the outermost JSON object out of content, which
// drops markdown fences and any chatter around them.
func stripJSONCodeFences(content string) string {
	content = strings.TrimSpace(content)
	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first != -1 && last > first {
		return content[first : last+1]
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
