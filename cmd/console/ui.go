package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xiayeah-xy/love-yumi/pkg/state"
)

// ConsoleUI is the BubbleTea model that runs the UI. It only renders
// committed snapshots and dispatches start/choose events; every game rule
// lives server-side in the turn engine.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config   *ConsoleConfig
	client   *http.Client
	gs       *state.GameState
	viewport viewport.Model
	spinner  spinner.Model
	ready    bool
	width    int
	height   int
	loading  bool
	err      error
	notice   string
}

type adventureMsg struct {
	gs  *state.GameState
	err error
}

type resetMsg struct {
	err error
}

type refreshMsg struct {
	gs  *state.GameState
	err error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	scoreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // light pink
			Bold(true)

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // light grey

	heartStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("211")). // rose
			Italic(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	mapCurrentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true).
			Padding(0, 1)

	mapPassedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")). // green
			Padding(0, 1)

	mapAheadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

var toneCaser = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	vp := viewport.New(80, 24)
	vp.MouseWheelEnabled = true

	return ConsoleUI{
		config:   cfg,
		client:   client,
		spinner:  sp,
		viewport: vp,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.spinner.Tick
}

// startCmd creates a session and runs the opening turn.
func (m ConsoleUI) startCmd() tea.Cmd {
	client, baseURL := m.client, m.config.APIBaseURL
	return func() tea.Msg {
		gs, err := createAdventure(client, baseURL)
		return adventureMsg{gs: gs, err: err}
	}
}

// chooseCmd runs one turn for the numbered option.
func (m ConsoleUI) chooseCmd(idx int) tea.Cmd {
	client, baseURL := m.client, m.config.APIBaseURL
	gs := m.gs
	return func() tea.Msg {
		next, err := chooseOption(client, baseURL, gs.ID, gs.CurrentScene.Options[idx])
		return adventureMsg{gs: next, err: err}
	}
}

// refreshCmd re-reads the committed snapshot. Used when a turn request
// failed without returning state (a raced turn, a dropped connection): the
// server may have committed a turn the UI never saw.
func (m ConsoleUI) refreshCmd() tea.Cmd {
	client, baseURL := m.client, m.config.APIBaseURL
	id := m.gs.ID
	return func() tea.Msg {
		gs, err := getAdventure(client, baseURL, id)
		return refreshMsg{gs: gs, err: err}
	}
}

// resetCmd discards the session, returning the UI to the intro.
func (m ConsoleUI) resetCmd() tea.Cmd {
	client, baseURL := m.client, m.config.APIBaseURL
	id := m.gs.ID
	return func() tea.Msg {
		return resetMsg{err: deleteAdventure(client, baseURL, id)}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		m.ready = true
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.loading {
			m.refreshContent()
		}
		return m, cmd

	case adventureMsg:
		m.loading = false
		m.err = msg.err
		if msg.gs != nil {
			m.gs = msg.gs
		} else if msg.err != nil && m.gs != nil {
			m.refreshContent()
			return m, m.refreshCmd()
		}
		m.refreshContent()
		return m, nil

	case refreshMsg:
		if msg.err == nil && msg.gs != nil {
			m.gs = msg.gs
		}
		m.refreshContent()
		return m, nil

	case resetMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.gs = nil
			m.notice = ""
		}
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "enter":
		// Start is only meaningful on the intro screen; while a turn is
		// in flight all turn-initiating input is ignored.
		if m.loading {
			return m, nil
		}
		if m.gs == nil || !m.gs.Started() {
			m.loading = true
			m.err = nil
			m.notice = ""
			m.refreshContent()
			return m, tea.Batch(m.spinner.Tick, m.startCmd())
		}
		return m, nil

	case "r":
		if m.loading || m.gs == nil {
			return m, nil
		}
		m.loading = true
		m.refreshContent()
		return m, tea.Batch(m.spinner.Tick, m.resetCmd())

	case "c":
		if m.gs != nil && m.gs.CurrentScene != nil && m.gs.CurrentScene.HeartMessage != "" {
			if err := clipboard.WriteAll(m.gs.CurrentScene.HeartMessage); err == nil {
				m.notice = "Heart message copied to clipboard"
			}
			m.refreshContent()
		}
		return m, nil

	default:
		if m.loading || m.gs == nil || m.gs.CurrentScene == nil {
			break
		}
		// Number keys select options
		key := msg.String()
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			idx := int(key[0] - '1')
			if idx < len(m.gs.CurrentScene.Options) {
				m.loading = true
				m.err = nil
				m.notice = ""
				m.refreshContent()
				return m, tea.Batch(m.spinner.Tick, m.chooseCmd(idx))
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ConsoleUI) refreshContent() {
	if !m.ready {
		return
	}
	if m.gs == nil || !m.gs.Started() {
		m.viewport.SetContent(m.renderIntro())
	} else {
		m.viewport.SetContent(m.renderAdventure())
	}
}

func (m *ConsoleUI) renderIntro() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("2026 约定 · LOVE YUMI") + "\n\n")
	content.WriteString("“老婆北，我是你的巴士猫。\n")
	content.WriteString("在这浪漫的 2026 年，\n")
	content.WriteString("你想去哪里书写我们的第一个篇章？”\n\n")

	if m.loading {
		content.WriteString(loadingStyle.Render(m.spinner.View()+" 正在为你勾勒 2026 的风景...") + "\n")
		return content.String()
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
	}
	if m.gs != nil && m.gs.Error != "" {
		content.WriteString(errorStyle.Render(m.gs.Error) + "\n\n")
	}
	content.WriteString(helpStyle.Render("Enter: 踏入 2026 的约定 · q: quit"))
	return content.String()
}

// renderMap draws the six-stop adventure map with the current waypoint
// highlighted and passed waypoints checked off.
func (m *ConsoleUI) renderMap() string {
	parts := make([]string, 0, len(state.Waypoints))
	for i, label := range state.Waypoints {
		pos := i + 1
		switch {
		case pos == m.gs.CurrentMapIndex:
			parts = append(parts, mapCurrentStyle.Render(label))
		case pos < m.gs.CurrentMapIndex:
			parts = append(parts, mapPassedStyle.Render("✓ "+label))
		default:
			parts = append(parts, mapAheadStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *ConsoleUI) renderAdventure() string {
	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("我们的 2026 约定") + "  ")
	content.WriteString(scoreStyle.Render(fmt.Sprintf("契合度：%d%%", m.gs.LoveScore)) + "\n\n")
	content.WriteString(m.renderMap() + "\n\n")

	s := m.gs.CurrentScene
	tone := toneCaser.String(s.Tone)
	content.WriteString(locationStyle.Render("📍 "+s.Location) + helpStyle.Render("  ("+tone+")") + "\n")
	if m.gs.CurrentImageURL != "" {
		content.WriteString(helpStyle.Render("[scene image received]") + "\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", contentWidth)) + "\n\n")

	content.WriteString(storyStyle.Render(wordwrap.String(s.Story, contentWidth)) + "\n\n")

	if s.HeartMessage != "" {
		content.WriteString(heartStyle.Render(wordwrap.String("♥ "+s.HeartMessage, contentWidth)) + "\n\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render(m.spinner.View()+" 正在为你勾勒 2026 的风景...") + "\n")
		return content.String()
	}

	if m.gs.Error != "" {
		content.WriteString(errorStyle.Render(m.gs.Error) + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render(m.err.Error()) + "\n\n")
	}
	if m.notice != "" {
		content.WriteString(helpStyle.Render(m.notice) + "\n\n")
	}

	for i, opt := range s.Options {
		line := fmt.Sprintf("%d. %s", i+1, opt.Text)
		content.WriteString(optionStyle.Render(wordwrap.String(line, contentWidth)) + "\n")
	}
	content.WriteString("\n" + helpStyle.Render("1-9: choose · c: copy heart message · r: reset · q: quit"))
	return content.String()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + helpStyle.Render(fmt.Sprintf(" love-yumi · %s", m.config.APIBaseURL))
}
