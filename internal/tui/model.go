// Package tui is a terminal inspector for stored dataset rows.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"genomecorrupt/internal/domain"
)

// SearchLimit caps the rows loaded per query.
const SearchLimit = 500

// RowSource is the TUI-facing subset of store.Storage.
type RowSource interface {
	Search(ctx context.Context, prefix string, limit int) ([]domain.Row, error)
	Markers(ctx context.Context) ([]string, error)
}

// Model is the Bubble Tea model for the inspector.
type Model struct {
	source   RowSource
	markers  []string
	input    textinput.Model
	viewport viewport.Model
	rows     []domain.Row
	summary  string
	status   string
	cursor   int
	ready    bool
	prefix   string
}

// New creates an inspector showing every stored row.
func New(source RowSource, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "genome> "
	ti.Placeholder = "Genome id prefix, Enter to filter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	m := Model{source: source, input: ti, viewport: vp, summary: summary}
	markers, err := source.Markers(context.Background())
	if err != nil {
		m.status = "Error: " + err.Error()
		return m
	}
	m.markers = markers
	m.search("")
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := rowBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, summary, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentRow())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			m.search(strings.TrimSpace(m.input.Value()))
			m.viewport.SetContent(m.renderCurrentRow())
			return m, nil
		case "down":
			if len(m.rows) > 0 {
				m.cursor = (m.cursor + 1) % len(m.rows)
				m.viewport.SetContent(m.renderCurrentRow())
				return m, nil
			}
		case "up":
			if len(m.rows) > 0 {
				m.cursor = (m.cursor - 1 + len(m.rows)) % len(m.rows)
				m.viewport.SetContent(m.renderCurrentRow())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout and the selected row.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Genome Corruption Inspector")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := rowBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m *Model) search(prefix string) {
	rows, err := m.source.Search(context.Background(), prefix, SearchLimit)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.rows = nil
		return
	}
	m.rows = rows
	m.cursor = 0
	m.prefix = prefix
	if prefix == "" {
		m.status = fmt.Sprintf("%d rows", len(rows))
	} else {
		m.status = fmt.Sprintf("%d rows for %q", len(rows), prefix)
	}
}

func (m Model) renderCurrentRow() string {
	if len(m.rows) == 0 {
		return "No rows."
	}
	r := m.rows[m.cursor]
	title := fmt.Sprintf("Row %d/%d  genome=%s  replicate=%d", m.cursor+1, len(m.rows), r.GenomeID, r.Replicate)
	kept, dropped := m.diff(r)
	var b strings.Builder
	b.WriteString(title + "\n\n")
	b.WriteString("retained: " + strings.Join(r.Retained, " ") + "\n")
	fmt.Fprintf(&b, "kept (%d): %s\n", len(kept), strings.Join(kept, " "))
	fmt.Fprintf(&b, "dropped (%d): %s", len(dropped), droppedStyle.Render(strings.Join(dropped, " ")))
	return b.String()
}

// diff splits the clean half's markers into those the corrupted half kept
// and those it lost.
func (m Model) diff(r domain.Row) (kept, dropped []string) {
	if len(r.Vector) != 2*len(m.markers) {
		return nil, nil
	}
	corrupted, clean := r.Corrupted(), r.Clean()
	for i, name := range m.markers {
		switch {
		case corrupted[i] != 0:
			kept = append(kept, name)
		case clean[i] != 0:
			dropped = append(dropped, name)
		}
	}
	return kept, dropped
}

var (
	rowBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	droppedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)
