// Package progress provides progress indication components.
//
// The spinner covers open-ended work such as scanning a directory tree,
// the progress bar covers batches with a known size such as cloning a
// restore queue. Both draw on stderr so stdout stays clean for piping.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/raphi011/reposet/internal/ui/styles"
)

// stopTimeout bounds how long Stop waits for the program to exit.
const stopTimeout = 500 * time.Millisecond

// messageUpdate is sent to update the spinner message
type messageUpdate string

// Spinner wraps a Bubbletea spinner for simple non-interactive use
type Spinner struct {
	out       io.Writer
	program   *tea.Program
	msgChan   chan string
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
	lastMsg   string
}

// spinnerModel is the internal Bubbletea model
type spinnerModel struct {
	spinner spinner.Model
	message string
	msgChan chan string
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForMessage())
}

func (m spinnerModel) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.msgChan
		if !ok {
			return tea.Quit()
		}
		return messageUpdate(msg)
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messageUpdate:
		m.message = string(msg)
		return m, m.waitForMessage()
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
}

// NewSpinner creates a spinner drawing on out with the given message.
func NewSpinner(out io.Writer, message string) *Spinner {
	return &Spinner{
		out:     out,
		msgChan: make(chan string, 10),
		done:    make(chan struct{}),
		lastMsg: message,
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.PrimaryStyle),
	)

	model := spinnerModel{
		spinner: sp,
		message: s.lastMsg,
		msgChan: s.msgChan,
	}

	// Keyboard input is not needed; a nil input leaves the terminal alone.
	s.program = tea.NewProgram(model,
		tea.WithoutSignalHandler(),
		tea.WithInput(nil),
		tea.WithOutput(s.out),
	)
	s.isRunning = true

	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// UpdateMessage changes the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		s.lastMsg = message
		return
	}

	// Drops the update when the channel is full rather than blocking the scan.
	select {
	case s.msgChan <- message:
	default:
	}
}

// Stop stops the spinner and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	// Closed under the mutex so UpdateMessage never sends on a closed channel.
	close(s.msgChan)
	s.mu.Unlock()

	s.program.Quit()

	select {
	case <-s.done:
	case <-time.After(stopTimeout):
	}

	fmt.Fprint(s.out, "\r\033[K")
}
