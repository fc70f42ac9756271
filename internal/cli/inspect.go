package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crystal/pkg/layout"
	"github.com/matzehuels/crystal/pkg/pipeline"
	"github.com/matzehuels/crystal/pkg/sink"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var noCache bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [document]",
		Short: "Browse the solved geometry of a document",
		Long: `Browse the solved geometry of a document in an interactive table.

Nodes are listed in tree order with their kind, size and position. Nodes
named by a layout error are marked; select one to read its diagnostics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = []string{pipeline.FormatJSON}
			return c.runInspect(cmd.Context(), args[0], opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float32VarP(&opts.Width, "width", "W", 0, "viewport width")
	cmd.Flags().Float32VarP(&opts.Height, "height", "H", 0, "viewport height")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, opts pipeline.Options, noCache bool) error {
	res, err := c.solve(ctx, input, opts, noCache)
	if err != nil {
		return err
	}

	m := NewNodeTableModel(input, res.Frame)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	return nil
}

// =============================================================================
// NodeTableModel - Interactive geometry browser
// =============================================================================

// NodeTableModel is the bubbletea model for browsing solved nodes.
type NodeTableModel struct {
	Title    string
	Viewport layout.Size
	Nodes    []sink.Node
	Problems map[string][]string // Diagnostics by node id
	Cursor   int
	Height   int
	Offset   int
}

// NewNodeTableModel creates a model over the nodes of f. Overflow errors
// are attached to the overflowing container; out-of-bounds errors to the
// child that escaped.
func NewNodeTableModel(title string, f sink.Frame) NodeTableModel {
	problems := make(map[string][]string)
	for _, err := range f.Errors {
		switch e := err.(type) {
		case *layout.OverflowError:
			problems[e.ID] = append(problems[e.ID], "children overflow this container")
		case *layout.OutOfBoundsError:
			problems[e.ChildID] = append(problems[e.ChildID], fmt.Sprintf("outside the bounds of %q", e.ParentID))
		}
	}
	return NodeTableModel{
		Title:    title,
		Viewport: f.Viewport,
		Nodes:    f.Nodes,
		Problems: problems,
		Height:   15,
	}
}

func (m NodeTableModel) Init() tea.Cmd {
	return nil
}

func (m NodeTableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case "home", "g":
			m.moveTo(0)
		case "end", "G":
			m.moveTo(len(m.Nodes) - 1)
		case "n":
			m.moveTo(m.nextProblem())
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
		m.moveTo(m.Cursor)
	}
	return m, nil
}

// moveTo places the cursor on row i, clamped to the table, and scrolls so
// the cursor stays visible.
func (m *NodeTableModel) moveTo(i int) {
	if len(m.Nodes) == 0 {
		return
	}
	m.Cursor = min(max(i, 0), len(m.Nodes)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// nextProblem returns the index of the next node with diagnostics after
// the cursor, wrapping around, or the cursor if there is none.
func (m NodeTableModel) nextProblem() int {
	for step := 1; step <= len(m.Nodes); step++ {
		i := (m.Cursor + step) % len(m.Nodes)
		if len(m.Problems[m.Nodes[i].ID]) > 0 {
			return i
		}
	}
	return m.Cursor
}

func (m NodeTableModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString(listDimStyle.Render(" @ " + formatSize(m.Viewport)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  n next error  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Nodes))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		status := ""
		if len(m.Problems[n.ID]) > 0 {
			status = iconError
		}
		rows = append(rows, []string{
			cursor,
			strings.Repeat("  ", n.Depth) + n.ID,
			n.Kind,
			formatSize(n.Size),
			fmt.Sprintf("%g, %g", n.Position.X, n.Position.Y),
			status,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "Size", "Position", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Nodes) {
				return lipgloss.NewStyle()
			}
			flagged := len(m.Problems[m.Nodes[idx].ID]) > 0
			switch {
			case idx == m.Cursor && flagged:
				return listErrorStyle.Bold(true)
			case idx == m.Cursor:
				return listSelectedStyle
			case flagged:
				return listErrorStyle
			case col == 2 || col == 4:
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(m.Nodes) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))
		for _, p := range m.Problems[m.Nodes[m.Cursor].ID] {
			b.WriteString("\n  " + listErrorStyle.Render(iconError+" "+p))
		}
	}

	return b.String()
}
