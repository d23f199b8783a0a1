package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wippyai/pte-bridge/jvm"
	"github.com/wippyai/pte-bridge/pte"
	"github.com/wippyai/pte-bridge/task"
)

const (
	debounce      = 250 * time.Millisecond
	suggestCached = 64
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type tuiState int

const (
	stateSearch tuiState = iota
	stateDepartures
)

// suggestions caches suggestion lists by search text. Evicted lists are
// released.
type suggestions = lru.Cache[string, *jvm.List[*pte.Location]]

type tuiModel struct {
	ctx      context.Context
	provider *pte.Provider
	pool     *task.Pool
	max      int
	cache    *suggestions

	state    tuiState
	input    textinput.Model
	spinner  spinner.Model
	loading  bool
	seq      int
	results  []locationView
	selected int
	station  locationView
	boards   []stationView
	err      error
}

type debounceMsg struct {
	seq int
}

type suggestMsg struct {
	text string
	list *jvm.List[*pte.Location]
	err  error
}

type departuresMsg struct {
	list *jvm.List[*pte.StationDepartures]
	err  error
}

func newTUIModel(ctx context.Context, a *app, cache *suggestions) *tuiModel {
	in := textinput.New()
	in.Placeholder = "station name"
	in.Prompt = "Search: "
	in.Width = 40
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &tuiModel{
		ctx:      ctx,
		provider: a.provider,
		pool:     a.pool,
		max:      a.max,
		cache:    cache,
		input:    in,
		spinner:  sp,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m *tuiModel) suggest(text string) tea.Cmd {
	ctx, provider, pool, max := m.ctx, m.provider, m.pool, m.max
	return func() tea.Msg {
		list, err := provider.SuggestLocationsAsync(ctx, pool, text, pte.LocationsStation, max).Await(ctx)
		return suggestMsg{text: text, list: list, err: err}
	}
}

func (m *tuiModel) departures(id string) tea.Cmd {
	ctx, provider, pool, max := m.ctx, m.provider, m.pool, m.max
	return func() tea.Msg {
		list, err := provider.QueryDeparturesAsync(ctx, pool, id, time.Time{}, max, pte.QueryEquivs).Await(ctx)
		return departuresMsg{list: list, err: err}
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateDepartures {
				return m, tea.Quit
			}

		case "esc":
			if m.state == stateDepartures {
				m.state = stateSearch
				m.boards = nil
				m.err = nil
				m.input.Focus()
				return m, textinput.Blink
			}
			m.input.SetValue("")
			m.results = nil
			return m, nil

		case "up":
			if m.state == stateSearch && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateSearch && m.selected < len(m.results)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			if m.state == stateSearch && m.selected < len(m.results) {
				m.station = m.results[m.selected]
				m.state = stateDepartures
				m.loading = true
				m.err = nil
				m.input.Blur()
				return m, m.departures(m.station.ID)
			}
			if m.state == stateDepartures {
				m.loading = true
				return m, m.departures(m.station.ID)
			}
			return m, nil
		}

	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.results = nil
			return m, nil
		}
		if list, ok := m.cache.Get(text); ok {
			m.show(list)
			return m, nil
		}
		m.loading = true
		return m, m.suggest(text)

	case suggestMsg:
		if msg.err != nil {
			m.loading = false
			if !task.IsDiscarded(msg.err) {
				m.err = msg.err
			}
			return m, nil
		}
		if _, ok := m.cache.Get(msg.text); ok {
			msg.list.Release()
		} else {
			m.cache.Add(msg.text, msg.list)
		}
		if msg.text == strings.TrimSpace(m.input.Value()) {
			m.loading = false
			if list, ok := m.cache.Get(msg.text); ok {
				m.show(list)
			}
		}
		return m, nil

	case departuresMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.boards = m.boards[:0]
		for _, sd := range msg.list.All() {
			m.boards = append(m.boards, viewStation(sd))
		}
		msg.list.Release()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state != stateSearch {
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	m.seq++
	seq := m.seq
	m.err = nil
	return m, tea.Batch(cmd, tea.Tick(debounce, func(time.Time) tea.Msg { return debounceMsg{seq: seq} }))
}

// show copies a cached list into the result rows.
func (m *tuiModel) show(list *jvm.List[*pte.Location]) {
	m.results = viewLocations(list)
	m.err = nil
	if m.selected >= len(m.results) {
		m.selected = 0
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Departures"))
	b.WriteString(" ")
	b.WriteString(m.provider.ID())
	b.WriteString("\n\n")

	switch m.state {
	case stateSearch:
		b.WriteString(m.input.View())
		if m.loading {
			b.WriteString(" " + m.spinner.View())
		}
		b.WriteString("\n\n")
		for i, r := range m.results {
			line := fmt.Sprintf("%s  %s", r.label(), helpStyle.Render(r.Products))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + r.label()))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to search • ↑/↓ select • enter departures • esc clear • ctrl+c quit"))

	case stateDepartures:
		b.WriteString(m.station.label())
		if m.loading {
			b.WriteString(" " + m.spinner.View())
		}
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		for _, board := range m.boards {
			if len(m.boards) > 1 {
				b.WriteString(board.Station.label())
				b.WriteString("\n")
			}
			for _, d := range board.Departures {
				badge := d.Line
				if d.style != nil {
					badge = badgeStyle(d.style).Render(d.Line)
				}
				at := d.Time
				if d.Delay != "" {
					at += " " + errorStyle.Render(d.Delay)
				}
				fmt.Fprintf(&b, "  %-5s %s  %s  %s\n", at, badge, d.Destination, helpStyle.Render(d.Platform))
			}
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("enter refresh • esc back • q quit"))
	}
	return b.String()
}

// tui runs the terminal UI. Update and View run on the calling thread,
// which owns the runtime, and queries go through the pool.
func (a *app) tui(ctx context.Context) error {
	cache, err := lru.NewWithEvict[string, *jvm.List[*pte.Location]](suggestCached,
		func(_ string, list *jvm.List[*pte.Location]) { list.Release() })
	if err != nil {
		return err
	}
	defer cache.Purge()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p := tea.NewProgram(newTUIModel(ctx, a, cache), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
