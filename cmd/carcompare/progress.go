package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/forzadb/carcompare/internal/display"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	bytesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	pathStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type tickMsg time.Time

type stageMsg struct {
	name    string
	folders int
}

type doneMsg struct{}

// progressModel shows the current stage and the live scan counters while a
// generation runs in the background.
type progressModel struct {
	spinner spinner.Model
	app     *app
	cancel  context.CancelFunc

	stage   string
	folders int
	done    bool
}

func newProgressModel(a *app, cancel context.CancelFunc) progressModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	return progressModel{spinner: s, app: a, cancel: cancel, stage: stageDiscover}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
		}
		return m, nil
	case stageMsg:
		m.stage = msg.name
		m.folders = msg.folders
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	snap := m.app.progress.Snapshot()
	fmt.Fprintf(&b, "%s %s", m.spinner.View(), titleStyle.Render(m.stage))
	if m.folders > 0 {
		fmt.Fprintf(&b, " %s", countStyle.Render(fmt.Sprintf("%d/%d", snap.Folders, m.folders)))
	}
	if m.stage == stageSizes || m.stage == stageListings {
		fmt.Fprintf(&b, "  %s files, %s dirs, %s",
			countStyle.Render(display.FormatNumber(snap.Files)),
			countStyle.Render(display.FormatNumber(snap.Dirs)),
			bytesStyle.Render(display.HumanizeBytes(snap.Bytes)))
	}
	b.WriteString("\n")
	if snap.Current != "" {
		b.WriteString(pathStyle.Render(shortPath(snap.Current, maxPathWidth)) + "\n")
	}
	return b.String()
}

// shortPath swaps the home directory for ~ and keeps the tail of paths
// longer than width.
func shortPath(path string, width int) string {
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(path, home) {
		path = "~" + strings.TrimPrefix(path, home)
	}
	if len(path) > width && width > 3 {
		path = "..." + path[len(path)-(width-3):]
	}
	return path
}

// programWriter routes log lines above the live view so they don't tear it.
type programWriter struct {
	p *tea.Program
}

func (w programWriter) Write(b []byte) (int, error) {
	w.p.Println(strings.TrimRight(string(b), "\n"))
	return len(b), nil
}

// generateWithProgress runs one generation under the progress view. The
// view quits when the generation finishes; quitting it first cancels the
// generation, which is still waited for.
func generateWithProgress(ctx context.Context, a *app, newLogger func(io.Writer) *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(a, cancel), tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	log := newLogger(programWriter{p})

	result := make(chan error, 1)
	go func() {
		err := a.generate(ctx, log, func(stage string, folders int) {
			p.Send(stageMsg{name: stage, folders: folders})
		})
		result <- err
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-result
		return errors.Wrap(err, "progress view")
	}
	return <-result
}
