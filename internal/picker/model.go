package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Model is the Bubble Tea model for the built-in selector.
type Model struct {
	records []Record
	corpus  []string // sanitized command text, parallel to records

	matched   []int // indices into records, best match first
	selection int   // index into matched

	input  textinput.Model
	width  int
	height int

	choice    *Record
	cancelled bool
}

// NewModel creates a selector over the given records with an optional
// initial query.
func NewModel(records []Record, initialQuery string) Model {
	corpus := make([]string, len(records))
	for i, r := range records {
		corpus[i] = SafeUTF8(StripANSI(r.Line))
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.SetValue(initialQuery)
	ti.Focus()

	m := Model{
		records: records,
		corpus:  corpus,
		input:   ti,
		width:   80,
		height:  24,
	}
	m.refilter()
	return m
}

// Choice returns the selected record after the program finishes.
func (m Model) Choice() (Record, bool) {
	if m.choice == nil {
		return Record{}, false
	}
	return *m.choice, true
}

// Cancelled reports whether the user left without selecting.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC, tea.KeyCtrlG:
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.selection >= 0 && m.selection < len(m.matched) {
				r := m.records[m.matched[m.selection]]
				m.choice = &r
			} else {
				m.cancelled = true
			}
			return m, tea.Quit

		case tea.KeyUp, tea.KeyCtrlP:
			if m.selection > 0 {
				m.selection--
			}
			return m, nil

		case tea.KeyDown, tea.KeyCtrlN:
			if m.selection < len(m.matched)-1 {
				m.selection++
			}
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.refilter()
	}
	return m, cmd
}

// refilter recomputes the matched set for the current query and resets the
// selection to the best match.
func (m *Model) refilter() {
	query := m.input.Value()
	if query == "" {
		m.matched = make([]int, len(m.records))
		for i := range m.records {
			m.matched[i] = i
		}
	} else {
		results := fuzzy.Find(query, m.corpus)
		m.matched = make([]int, len(results))
		for i, r := range results {
			m.matched[i] = r.Index
		}
	}
	m.selection = 0
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewList())
	b.WriteRune('\n')
	b.WriteString(m.input.View())
	b.WriteString("  ")
	b.WriteString(countStyle.Render(m.viewCount()))

	return b.String()
}

func (m Model) viewList() string {
	if len(m.matched) == 0 {
		return dimStyle.Render("No matches")
	}

	var b strings.Builder
	maxItems := m.listHeight()
	for i, idx := range m.matched {
		if i >= maxItems {
			break
		}
		display := m.corpus[idx]
		if m.width > 4 {
			display = Truncate(display, m.width-4)
		}

		if i == m.selection {
			b.WriteString(selectedStyle.Render("> " + display))
		} else {
			b.WriteString(normalStyle.Render("  " + display))
		}
		if i < len(m.matched)-1 && i < maxItems-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m Model) viewCount() string {
	return fmt.Sprintf("%d/%d", len(m.matched), len(m.records))
}

// listHeight returns the number of visible list rows (terminal height minus
// the query line).
func (m Model) listHeight() int {
	h := m.height - 1
	if h < 1 {
		h = 20
	}
	return h
}
