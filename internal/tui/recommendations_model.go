package tui

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/greenops"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	listview "github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/tui/list"
)

// RecommendationSortField is the field the list is ordered by.
type RecommendationSortField int

const (
	// SortByRank keeps the engine's ranking.
	SortByRank RecommendationSortField = iota
	// SortBySavings orders by potential savings, largest first.
	SortBySavings
	// SortByStrategy orders by strategy key.
	SortByStrategy
)

const (
	numRecommendationSortFields = 3

	recSummaryHeight = 8

	recColWidthStrategy    = 26
	recColWidthLevel       = 14
	recColWidthSavings     = 12
	recColWidthDescription = 40
	recColWidthVerdict     = 3
)

func (f RecommendationSortField) String() string {
	switch f {
	case SortBySavings:
		return "savings"
	case SortByStrategy:
		return "strategy"
	default:
		return "rank"
	}
}

// RecommendationsSummary aggregates a recommendation list for the header.
type RecommendationsSummary struct {
	TotalCount      int
	TotalSavings    float64
	CountByLevel    map[string]int
	SavingsByLevel  map[string]float64
	CurrentEmission float64
}

// NewRecommendationsSummary totals recs by change level.
func NewRecommendationsSummary(recs []recommend.Recommendation) *RecommendationsSummary {
	s := &RecommendationsSummary{
		TotalCount:     len(recs),
		CountByLevel:   make(map[string]int),
		SavingsByLevel: make(map[string]float64),
	}
	for _, r := range recs {
		s.TotalSavings += r.PotentialSavings
		s.CountByLevel[r.Level]++
		s.SavingsByLevel[r.Level] += r.PotentialSavings
		s.CurrentEmission = max(s.CurrentEmission, r.CurrentEmissions)
	}
	return s
}

// FeedbackFunc records an accept or reject verdict for rec.
type FeedbackFunc func(ctx context.Context, rec recommend.Recommendation, accepted bool) error

// RecommendationFetcher loads the recommendations to display.
type RecommendationFetcher func(ctx context.Context) ([]recommend.Recommendation, error)

type recommendationsLoadedMsg struct {
	recommendations []recommend.Recommendation
	err             error
}

type feedbackRecordedMsg struct {
	id       string
	accepted bool
	err      error
}

// RecommendationsViewModel is the interactive recommendations browser.
type RecommendationsViewModel struct {
	ctx   context.Context
	state ViewState

	allRecommendations []recommend.Recommendation
	recommendations    []recommend.Recommendation
	verdicts           map[string]bool

	virtualList *listview.VirtualListModel[recommend.Recommendation]
	textInput   textinput.Model

	width      int
	height     int
	sortBy     RecommendationSortField
	showFilter bool

	loading  *LoadingState
	fetchCmd tea.Cmd
	feedback FeedbackFunc

	summary *RecommendationsSummary
	status  string
	err     error
}

// NewRecommendationsViewModel returns a model listing recs.
func NewRecommendationsViewModel(ctx context.Context, recs []recommend.Recommendation) *RecommendationsViewModel {
	m := &RecommendationsViewModel{
		ctx:       ctx,
		state:     ViewStateList,
		verdicts:  make(map[string]bool),
		textInput: newRecTextInput(),
		width:     defaultWidth,
		height:    defaultHeight,
	}
	m.setRecommendations(recs)
	return m
}

// NewRecommendationsViewModelWithLoading returns a model that shows a spinner
// until fetcher returns.
func NewRecommendationsViewModelWithLoading(
	ctx context.Context,
	fetcher RecommendationFetcher,
) *RecommendationsViewModel {
	return &RecommendationsViewModel{
		ctx:       ctx,
		state:     ViewStateLoading,
		verdicts:  make(map[string]bool),
		loading:   NewLoadingState(),
		textInput: newRecTextInput(),
		summary:   NewRecommendationsSummary(nil),
		width:     defaultWidth,
		height:    defaultHeight,
		fetchCmd: func() tea.Msg {
			recs, err := fetcher(ctx)
			return recommendationsLoadedMsg{recommendations: recs, err: err}
		},
	}
}

func newRecTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Filter recommendations..."
	ti.CharLimit = filterInputCharLimit
	ti.Width = filterInputWidth
	return ti
}

// SetFeedbackFunc enables the accept and reject keys.
func (m *RecommendationsViewModel) SetFeedbackFunc(fn FeedbackFunc) {
	m.feedback = fn
}

// State returns the current view state.
func (m *RecommendationsViewModel) State() ViewState {
	return m.state
}

// Status returns the last status line.
func (m *RecommendationsViewModel) Status() string {
	return m.status
}

// Visible returns the filtered and sorted recommendations.
func (m *RecommendationsViewModel) Visible() []recommend.Recommendation {
	return m.recommendations
}

// Init implements tea.Model.
func (m *RecommendationsViewModel) Init() tea.Cmd {
	if m.state == ViewStateLoading {
		return tea.Batch(m.loading.Init(), m.fetchCmd)
	}
	return nil
}

// Update implements tea.Model.
func (m *RecommendationsViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildList()
	case recommendationsLoadedMsg:
		return m.handleLoaded(msg)
	case feedbackRecordedMsg:
		m.handleFeedbackRecorded(msg)
		return m, nil
	}

	if m.showFilter {
		return m.handleFilterInput(msg)
	}

	switch m.state {
	case ViewStateLoading:
		return m, m.loading.Update(msg)
	case ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStateDetail:
		return m.handleDetailUpdate(msg)
	case ViewStateQuitting, ViewStateError:
		return m.handleQuitUpdate(msg)
	default:
		return m, nil
	}
}

func (m *RecommendationsViewModel) handleLoaded(msg recommendationsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.state = ViewStateError
		return m, tea.Quit
	}
	m.state = ViewStateList
	m.setRecommendations(msg.recommendations)
	return m, nil
}

func (m *RecommendationsViewModel) handleFeedbackRecorded(msg feedbackRecordedMsg) {
	if msg.err != nil {
		m.status = "Feedback failed: " + msg.err.Error()
		return
	}
	m.verdicts[msg.id] = msg.accepted
	if msg.accepted {
		m.status = "Marked as accepted"
	} else {
		m.status = "Marked as rejected"
	}
}

func (m *RecommendationsViewModel) handleFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter, keyEsc:
			m.showFilter = false
			m.textInput.Blur()
			m.applyFilter()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *RecommendationsViewModel) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEnter:
			if len(m.recommendations) > 0 {
				m.state = ViewStateDetail
			}
			return m, nil
		case keySlash:
			m.showFilter = true
			m.textInput.Focus()
			return m, textinput.Blink
		case keyS:
			m.cycleSort()
			return m, nil
		case keyAccept:
			return m, m.recordFeedback(true)
		case keyReject:
			return m, m.recordFeedback(false)
		case keyEsc:
			if m.textInput.Value() != "" {
				m.textInput.SetValue("")
				m.applyFilter()
			}
			return m, nil
		}
	}

	if m.virtualList != nil {
		updated, cmd := m.virtualList.Update(msg)
		if vl, ok := updated.(*listview.VirtualListModel[recommend.Recommendation]); ok {
			m.virtualList = vl
		}
		return m, cmd
	}
	return m, nil
}

func (m *RecommendationsViewModel) handleDetailUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyEsc:
			m.state = ViewStateList
		case keyAccept:
			return m, m.recordFeedback(true)
		case keyReject:
			return m, m.recordFeedback(false)
		}
	}
	return m, nil
}

func (m *RecommendationsViewModel) handleQuitUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
	}
	return m, nil
}

// recordFeedback returns a command submitting a verdict for the selected row.
func (m *RecommendationsViewModel) recordFeedback(accepted bool) tea.Cmd {
	rec, ok := m.selected()
	if !ok {
		return nil
	}
	if m.feedback == nil {
		m.status = "Feedback is not available in this view"
		return nil
	}
	fn, ctx := m.feedback, m.ctx
	return func() tea.Msg {
		err := fn(ctx, rec, accepted)
		return feedbackRecordedMsg{id: rec.ID, accepted: accepted, err: err}
	}
}

func (m *RecommendationsViewModel) selected() (recommend.Recommendation, bool) {
	if m.virtualList == nil {
		return recommend.Recommendation{}, false
	}
	i := m.virtualList.Selected()
	if i < 0 || i >= len(m.recommendations) {
		return recommend.Recommendation{}, false
	}
	return m.recommendations[i], true
}

func (m *RecommendationsViewModel) setRecommendations(recs []recommend.Recommendation) {
	m.allRecommendations = recs
	m.applyFilter()
}

func (m *RecommendationsViewModel) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.textInput.Value()))
	m.recommendations = make([]recommend.Recommendation, 0, len(m.allRecommendations))
	for _, r := range m.allRecommendations {
		if query == "" ||
			strings.Contains(strings.ToLower(r.StrategyKey), query) ||
			strings.Contains(strings.ToLower(r.Level), query) ||
			strings.Contains(strings.ToLower(r.Description), query) {
			m.recommendations = append(m.recommendations, r)
		}
	}
	m.summary = NewRecommendationsSummary(m.recommendations)
	m.applySort()
	m.rebuildList()
}

func (m *RecommendationsViewModel) cycleSort() {
	m.sortBy = (m.sortBy + 1) % numRecommendationSortFields
	m.applySort()
	m.rebuildList()
}

func (m *RecommendationsViewModel) applySort() {
	switch m.sortBy {
	case SortBySavings:
		slices.SortStableFunc(m.recommendations, func(a, b recommend.Recommendation) int {
			return cmp.Compare(b.PotentialSavings, a.PotentialSavings)
		})
	case SortByStrategy:
		slices.SortStableFunc(m.recommendations, func(a, b recommend.Recommendation) int {
			return cmp.Compare(a.StrategyKey, b.StrategyKey)
		})
	case SortByRank:
		rank := make(map[string]int, len(m.allRecommendations))
		for i, r := range m.allRecommendations {
			rank[r.ID] = i
		}
		slices.SortStableFunc(m.recommendations, func(a, b recommend.Recommendation) int {
			return cmp.Compare(rank[a.ID], rank[b.ID])
		})
	}
}

func (m *RecommendationsViewModel) rebuildList() {
	height := max(minHeight, m.height-recSummaryHeight-1)
	m.virtualList = listview.NewVirtualListModel(m.recommendations, height, m.width, m.renderRow)
}

func (m *RecommendationsViewModel) renderRow(rec recommend.Recommendation, selected bool) string {
	verdict := ""
	if accepted, ok := m.verdicts[rec.ID]; ok {
		verdict = "✗"
		if accepted {
			verdict = "✓"
		}
	}
	row := fmt.Sprintf("%-*s %-*s  %-*s  %*s  %s",
		recColWidthVerdict, verdict,
		recColWidthStrategy, truncate(rec.StrategyKey, recColWidthStrategy),
		recColWidthLevel, rec.Level,
		recColWidthSavings, greenops.FormatFloat(rec.PotentialSavings, 1),
		truncate(rec.Description, recColWidthDescription),
	)
	if selected {
		return selectedStyle.Render(row)
	}
	return row
}

// View implements tea.Model.
func (m *RecommendationsViewModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return fmt.Sprintf("Error: %v\n", m.err)
	case ViewStateLoading:
		return RenderLoading(m.loading)
	case ViewStateDetail:
		rec, ok := m.selected()
		if !ok {
			return errSelectedOutOfBounds
		}
		return RenderRecommendationDetail(rec, m.width) + m.statusLine()
	case ViewStateList:
		return m.renderListView()
	default:
		return ""
	}
}

func (m *RecommendationsViewModel) renderListView() string {
	header := fmt.Sprintf("%-*s %-*s  %-*s  %*s  %s",
		recColWidthVerdict, "",
		recColWidthStrategy, "Strategy",
		recColWidthLevel, "Level",
		recColWidthSavings, "Savings lbs",
		"Description",
	)
	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)

	body := "No recommendations."
	if len(m.recommendations) > 0 {
		body = m.virtualList.View()
	}

	help := fmt.Sprintf("\n[/] Filter  [s] Sort (%s)  [a] Accept  [r] Reject  [↑↓/jk] Navigate  [Enter] Details  [q] Quit",
		m.sortBy)
	parts := []string{RenderRecommendationsSummaryTUI(m.summary, m.width), headerStyle.Render(header), body}
	if m.showFilter {
		parts = append(parts, "\nFilter: "+m.textInput.View())
	}
	parts = append(parts, help, m.statusLine())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *RecommendationsViewModel) statusLine() string {
	if m.status == "" {
		return ""
	}
	return "\n" + statusStyle.Render(m.status)
}

// RenderRecommendationsSummaryTUI renders the summary header.
func RenderRecommendationsSummaryTUI(summary *RecommendationsSummary, _ int) string {
	if summary == nil {
		return "No recommendations available."
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("RECOMMENDATIONS") + "\n")
	fmt.Fprintf(&sb, "%s %d\n", labelStyle.Render("Total:"), summary.TotalCount)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Potential savings:"), greenops.FormatLbs(summary.TotalSavings, 1))

	levels := make([]string, 0, len(summary.CountByLevel))
	for level := range summary.CountByLevel {
		levels = append(levels, level)
	}
	slices.Sort(levels)
	for _, level := range levels {
		fmt.Fprintf(&sb, "  %s: %d (%s)\n", levelStyle(level).Render(level),
			summary.CountByLevel[level], greenops.FormatLbs(summary.SavingsByLevel[level], 1))
	}
	return sb.String()
}

// RenderRecommendationDetail renders one recommendation in full.
func RenderRecommendationDetail(rec recommend.Recommendation, _ int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("RECOMMENDATION DETAIL") + "\n\n")
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Strategy:   "), rec.StrategyKey)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Level:      "), levelStyle(rec.Level).Render(rec.Level))
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Category:   "), rec.Category)
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Current:    "), greenops.FormatLbs(rec.CurrentEmissions, 1))
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Savings:    "), greenops.FormatLbs(rec.PotentialSavings, 1))
	if eq, err := greenops.ForFootprint(rec.PotentialSavings); err == nil && !eq.IsEmpty {
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("            "), eq.DisplayText)
	}
	fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render("Description:"), rec.Description)
	sb.WriteString("\n[a] Accept  [r] Reject  [Esc] Back  [q] Quit")
	return sb.String()
}

func levelStyle(level string) lipgloss.Style {
	if level == recommend.LevelMajor {
		return majorStyle
	}
	return smallStyle
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
