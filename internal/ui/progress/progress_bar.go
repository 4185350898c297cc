package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/reposet/internal/ui/styles"
)

// progressUpdate is sent to update the progress bar
type progressUpdate struct {
	current int
	message string
}

// ProgressBar wraps a Bubbletea progress bar for simple non-interactive use.
// Use this for determinate operations where you know the total count.
type ProgressBar struct {
	out       io.Writer
	program   *tea.Program
	updateCh  chan progressUpdate
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
	total     int
	current   int
	message   string
}

// progressBarModel is the internal Bubbletea model
type progressBarModel struct {
	progress progress.Model
	total    int
	current  int
	message  string
	updateCh chan progressUpdate
}

func (m progressBarModel) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m progressBarModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.updateCh
		if !ok {
			return tea.Quit()
		}
		return update
	}
}

func (m progressBarModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressUpdate:
		m.current = msg.current
		m.message = msg.message
		return m, m.waitForUpdate()
	default:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}
}

func (m progressBarModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s %s",
		m.progress.ViewAs(Fraction(m.current, m.total)),
		styles.MutedStyle.Render(fmt.Sprintf("%d/%d", m.current, m.total)),
		m.message))
}

// Fraction returns current/total clamped to [0, 1]; zero when total is not
// positive.
func Fraction(current, total int) float64 {
	if total <= 0 || current <= 0 {
		return 0
	}
	if current >= total {
		return 1
	}
	return float64(current) / float64(total)
}

// NewProgressBar creates a progress bar drawing on out.
func NewProgressBar(out io.Writer, total int, message string) *ProgressBar {
	return &ProgressBar{
		out:      out,
		updateCh: make(chan progressUpdate, 10),
		done:     make(chan struct{}),
		total:    total,
		message:  message,
	}
}

// Start begins the progress bar display.
func (p *ProgressBar) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isRunning {
		return
	}

	prog := progress.New(
		progress.WithWidth(30),
		progress.WithoutPercentage(),
		progress.WithColors(styles.Primary, styles.Accent),
	)

	model := progressBarModel{
		progress: prog,
		total:    p.total,
		current:  p.current,
		message:  p.message,
		updateCh: p.updateCh,
	}

	p.program = tea.NewProgram(model,
		tea.WithoutSignalHandler(),
		tea.WithInput(nil),
		tea.WithOutput(p.out),
	)
	p.isRunning = true

	go func() {
		_, _ = p.program.Run()
		close(p.done)
	}()
}

// Advance counts one more finished item and shows message.
func (p *ProgressBar) Advance(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	p.message = message
	if !p.isRunning {
		return
	}

	// Drops the update when the channel is full; the next one catches up.
	select {
	case p.updateCh <- progressUpdate{current: p.current, message: message}:
	default:
	}
}

// Stop stops the progress bar and clears the line.
func (p *ProgressBar) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	close(p.updateCh)
	p.mu.Unlock()

	p.program.Quit()

	select {
	case <-p.done:
	case <-time.After(stopTimeout):
	}

	fmt.Fprint(p.out, "\r\033[K")
}

// Total returns the total count for the progress bar.
func (p *ProgressBar) Total() int {
	return p.total
}

// Current returns the number of finished items.
func (p *ProgressBar) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
