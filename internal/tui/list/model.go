package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item; selected marks the cursor row.
type RenderFunc[T any] func(item T, selected bool) string

// VirtualListModel is a cursor over items with a fixed-height viewport.
type VirtualListModel[T any] struct {
	items      []T
	renderFunc RenderFunc[T]
	selected   int
	offset     int
	height     int
	width      int
}

// NewVirtualListModel returns a list showing height rows of items.
func NewVirtualListModel[T any](items []T, height, width int, renderFunc RenderFunc[T]) *VirtualListModel[T] {
	if height < 1 {
		height = 1
	}
	return &VirtualListModel[T]{
		items:      items,
		renderFunc: renderFunc,
		height:     height,
		width:      width,
	}
}

// Init implements tea.Model.
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update moves the cursor on arrow, page, home/end and j/k keys.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.height = max(1, msg.Height)
		m.width = msg.Width
		m.scroll()
	}
	return m, nil
}

//nolint:exhaustive // Only navigation keys are handled.
func (m *VirtualListModel[T]) handleKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyUp:
		m.SetSelected(m.selected - 1)
	case tea.KeyDown:
		m.SetSelected(m.selected + 1)
	case tea.KeyPgUp:
		m.SetSelected(m.selected - m.height)
	case tea.KeyPgDown:
		m.SetSelected(m.selected + m.height)
	case tea.KeyHome:
		m.SetSelected(0)
	case tea.KeyEnd:
		m.SetSelected(len(m.items) - 1)
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return
		}
		switch msg.Runes[0] {
		case 'j':
			m.SetSelected(m.selected + 1)
		case 'k':
			m.SetSelected(m.selected - 1)
		}
	}
}

// View renders the rows inside the viewport.
func (m *VirtualListModel[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}
	end := min(len(m.items), m.offset+m.height)
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderFunc(m.items[i], i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// ItemCount returns the number of items.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.items)
}

// Selected returns the cursor index.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected moves the cursor, clamped to the item range.
func (m *VirtualListModel[T]) SetSelected(index int) {
	m.selected = max(0, min(index, len(m.items)-1))
	m.scroll()
}

// VisibleFrom returns the first visible index.
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.offset
}

// VisibleTo returns one past the last visible index.
func (m *VirtualListModel[T]) VisibleTo() int {
	return min(len(m.items), m.offset+m.height)
}

func (m *VirtualListModel[T]) scroll() {
	switch {
	case m.selected < m.offset:
		m.offset = m.selected
	case m.selected >= m.offset+m.height:
		m.offset = m.selected - m.height + 1
	}
	m.offset = max(0, min(m.offset, len(m.items)-m.height))
}
