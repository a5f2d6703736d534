package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/sim"
)

const (
	canvasWidth     = 40
	canvasHeight    = 16
	historyCapacity = 600
)

type series int

const (
	seriesTotal series = iota
	seriesPotential
	seriesKinetic
	seriesTemperature
	numSeries
)

var seriesNames = [numSeries]string{"Total energy", "Potential energy", "Kinetic energy", "Temperature"}

func (s series) value(r md.Report) float64 {
	switch s {
	case seriesPotential:
		return r.PotentialEnergy
	case seriesKinetic:
		return r.KineticEnergy
	case seriesTemperature:
		return r.Temperature
	default:
		return r.TotalEnergy
	}
}

// ReportMsg carries one report from the simulation goroutine.
type ReportMsg md.Report

// FrameMsg carries one frame. Positions are owned by the message.
type FrameMsg md.Frame

// DoneMsg is sent once when the run returns.
type DoneMsg struct {
	Result *sim.Result
	Err    error
}

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Feed is a trajectory reporter that forwards everything to a running
// program. It never fails, so a slow terminal can not stop the run.
type Feed struct {
	sender Sender
}

func NewFeed(s Sender) *Feed {
	return &Feed{sender: s}
}

func (f *Feed) Report(r md.Report) error {
	f.sender.Send(ReportMsg(r))
	return nil
}

func (f *Feed) ReportFrame(fr md.Frame) error {
	fr.Positions = md.CloneVecs(fr.Positions)
	fr.Velocities = nil
	f.sender.Send(FrameMsg(fr))
	return nil
}

// Model holds the dashboard state. It never touches the simulation directly.
type Model struct {
	title     string
	cancel    context.CancelFunc
	theme     Theme
	styles    styles
	canvas    *Canvas
	history   [numSeries][]float64
	selected  series
	last      md.Report
	reports   int
	positions []md.Vec3
	box       [3]md.Vec3
	done      bool
	result    *sim.Result
	err       error
	showHelp  bool
}

// NewModel builds a dashboard. cancel, if not nil, is called when the user
// quits.
func NewModel(title string, cancel context.CancelFunc) Model {
	return Model{
		title:  title,
		cancel: cancel,
		theme:  Themes[0],
		styles: Themes[0].styles(),
		canvas: NewCanvas(canvasWidth, canvasHeight),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update folds simulation messages and key presses into the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "tab":
			m.selected = (m.selected + 1) % numSeries
		case "t":
			m.theme = m.theme.next()
			m.styles = m.theme.styles()
		case "?":
			m.showHelp = !m.showHelp
		}
	case ReportMsg:
		r := md.Report(msg)
		m.last = r
		m.reports++
		for s := series(0); s < numSeries; s++ {
			h := append(m.history[s], s.value(r))
			if len(h) > historyCapacity {
				h = h[len(h)-historyCapacity:]
			}
			m.history[s] = h
		}
	case FrameMsg:
		m.positions = msg.Positions
		m.box = msg.Box
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
	}
	return m, nil
}

// Done reports whether the run has returned.
func (m Model) Done() bool { return m.done }

// History returns the recorded values of the selected series.
func (m Model) History() []float64 { return m.history[m.selected] }

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.failed.Render("FAILED: " + m.err.Error())
	case m.done && m.result != nil && m.result.Stopped:
		return m.styles.done.Render("STOPPED (" + m.result.StopReason + ")")
	case m.done:
		return m.styles.done.Render("DONE")
	default:
		return m.styles.running.Render("RUNNING")
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	m.canvas.DrawParticles(m.positions, m.box)
	canvasView := m.styles.canvas.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(m.styles.header.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if h := m.history[m.selected]; len(h) > 1 {
		chart := asciigraph.Plot(h,
			asciigraph.Height(8),
			asciigraph.Width(36),
			asciigraph.Caption(seriesNames[m.selected]))
		s.WriteString(m.styles.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(m.styles.label.Render(label) + m.styles.value.Render(value) + "\n")
	}
	row("Step", fmt.Sprintf("%d", m.last.Step))
	row("Time", fmt.Sprintf("%.3f ps", m.last.Time))
	row("Potential", fmt.Sprintf("%.4g kJ/mol", m.last.PotentialEnergy))
	row("Kinetic", fmt.Sprintf("%.4g kJ/mol", m.last.KineticEnergy))
	row("Total", fmt.Sprintf("%.4g kJ/mol", m.last.TotalEnergy))
	row("Temperature", fmt.Sprintf("%.2f K", m.last.Temperature))
	row("Particles", fmt.Sprintf("%d", len(m.positions)))
	row("Reports", fmt.Sprintf("%d", m.reports))

	s.WriteString(m.styles.help.Render("TAB:Series T:Theme ?:Help Q:Quit"))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, m.styles.stats.Render(s.String()))

	if m.showHelp {
		help := strings.Join([]string{
			"Tab  cycle plotted series",
			"T    cycle themes (" + strings.Join(ThemeNames(), ", ") + ")",
			"?    toggle this help",
			"Q    quit and cancel the run",
		}, "\n")
		return m.styles.stats.Render(help) + "\n\n" + mainView
	}
	return mainView
}

// Run drives s in the background and shows the dashboard until the user
// quits. Quitting cancels the run at its next report boundary.
func Run(ctx context.Context, s *sim.Simulation, title string, totalSteps, reportInterval int, opts ...tea.ProgramOption) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(title, cancel), opts...)
	s.AddReporter(NewFeed(p))

	var (
		res    *sim.Result
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, runErr = s.Run(ctx, totalSteps, reportInterval)
		p.Send(DoneMsg{Result: res, Err: runErr})
	}()

	_, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return res, err
	}
	return res, runErr
}
