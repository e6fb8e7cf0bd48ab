package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandwichlabs/mcp-config-extract/internal/extractor"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

type model struct {
	list          list.Model
	quitting      bool
	selectedField *field
}

// field is one row of the extracted configuration.
type field struct {
	name    string
	summary string
	detail  string
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(listItem); ok {
				f := item.field
				m.selectedField = &f
			}
			return m, nil
		case "esc":
			m.selectedField = nil
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	if m.selectedField == nil {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.selectedField != nil {
		return selectedFieldView(m.selectedField)
	}
	return m.list.View()
}

func selectedFieldView(f *field) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(f.name))
	s.WriteString("\n\n")
	s.WriteString(f.detail)
	s.WriteString("\n\n")
	s.WriteString(hintStyle.Render("(Press 'esc' to go back, 'q' to quit)"))
	return s.String()
}

// listItem is a wrapper around field to satisfy the list.Item interface.
type listItem struct {
	field
}

func (li listItem) Title() string       { return li.name }
func (li listItem) Description() string { return li.summary }
func (li listItem) FilterValue() string { return li.name }

// fields flattens out into rows, in schema order. Unset fields are skipped.
func fields(out *extractor.Output) []field {
	cfg := out.ExtractedConfig.Typed()
	var rows []field
	add := func(name, summary, detail string) {
		rows = append(rows, field{name: name, summary: summary, detail: detail})
	}
	if cfg.Name != "" {
		add("Name", cfg.Name, cfg.Name)
	}
	if cfg.Description != "" {
		add("Description", firstLine(cfg.Description), cfg.Description)
	}
	if cfg.Command != "" {
		line := strings.TrimSpace(cfg.Command + " " + strings.Join(cfg.Args, " "))
		add("Command", line, fmt.Sprintf("%s %s\n\n%s\n%s", labelStyle.Render("Command:"), cfg.Command,
			labelStyle.Render("Args:"), bulletList(cfg.Args)))
	}
	if len(cfg.Env) > 0 {
		names := make([]string, 0, len(cfg.Env))
		for name := range cfg.Env {
			names = append(names, name)
		}
		sort.Strings(names)
		var detail strings.Builder
		for _, name := range names {
			v := cfg.Env[name]
			fmt.Fprintf(&detail, "%s (required: %t)\n  %s\n", labelStyle.Render(name), v.Required, v.Description)
			if v.Example != "" {
				fmt.Fprintf(&detail, "  example: %s\n", v.Example)
			}
		}
		add("Environment", strings.Join(names, ", "), strings.TrimRight(detail.String(), "\n"))
	}
	if inst := cfg.Installation; inst != nil && *inst != (extractor.Installation{}) {
		var parts []string
		for _, p := range [][2]string{{"npm", inst.NPM}, {"pip", inst.Pip}, {"docker", inst.Docker}, {"binary", inst.Binary}} {
			if p[1] != "" {
				parts = append(parts, p[0]+": "+p[1])
			}
		}
		add("Installation", strings.Join(parts, ", "), strings.Join(parts, "\n"))
	}
	if caps := cfg.Capabilities; caps != nil {
		detail := fmt.Sprintf("tools: %t\nresources: %t\nprompts: %t\nlogging: %t",
			caps.Tools, caps.Resources, caps.Prompts, caps.Logging)
		add("Capabilities", capabilitySummary(caps), detail)
	}
	if cfg.Transport != "" {
		add("Transport", string(cfg.Transport), string(cfg.Transport))
	}
	if cfg.URL != "" {
		add("URL", cfg.URL, cfg.URL)
	}
	scores := out.ConfidenceScores
	add("Confidence", fmt.Sprintf("overall %.2f, completeness %.2f", scores.Overall, scores.Completeness),
		fmt.Sprintf("overall: %.2f\ncompleteness: %.2f\nsources: %s", scores.Overall, scores.Completeness,
			strings.Join(out.SourceFiles, ", ")))
	return rows
}

func capabilitySummary(c *extractor.Capabilities) string {
	var on []string
	for _, p := range []struct {
		name string
		set  bool
	}{{"tools", c.Tools}, {"resources", c.Resources}, {"prompts", c.Prompts}, {"logging", c.Logging}} {
		if p.set {
			on = append(on, p.name)
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ", ")
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "  (none)"
	}
	var s strings.Builder
	for i, item := range items {
		if i > 0 {
			s.WriteString("\n")
		}
		s.WriteString("  - " + item)
	}
	return s.String()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func NewModel(out *extractor.Output) model {
	rows := fields(out)
	items := make([]list.Item, len(rows))
	for i, f := range rows {
		items[i] = listItem{f}
	}

	title := "Extracted Configuration"
	if name, ok := out.ExtractedConfig["name"].(string); ok && name != "" {
		title += ": " + name
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title

	return model{list: l}
}
