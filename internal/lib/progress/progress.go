// Package progress renders a live list of items and their status in the
// terminal.
package progress

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ImSingee/go-ex/mr"
	"github.com/ImSingee/go-ex/pp"
	tea "github.com/charmbracelet/bubbletea"
)

type Status uint8

const (
	StatusPending Status = iota
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusSkipped
)

var gray = pp.GetColor(38, 5, 240)

func (s Status) icon() string {
	switch s {
	case StatusRunning:
		return pp.BlueString(">").GetForStdout()
	case StatusSuccess:
		return pp.GreenString("✓").GetForStdout()
	case StatusFailed:
		return pp.RedString("✗").GetForStdout()
	case StatusSkipped:
		return pp.ColorString(gray, "-").GetForStdout()
	default:
		return "○"
	}
}

// Update changes the status of one item.
type Update struct {
	ID     string
	Status Status
	// Detail is shown next to the item, e.g. the current step.
	Detail string
	Err    error
}

type item struct {
	id     string
	status Status
	detail string
	err    string
}

type Runner struct {
	title  string
	items  []item
	output io.Writer
	input  io.Reader
}

type Option func(*Runner)

func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.output = w }
}

func WithInput(in io.Reader) Option {
	return func(r *Runner) { r.input = in }
}

func New(title string, ids []string, options ...Option) *Runner {
	r := &Runner{
		title: title,
		items: mr.Map(ids, func(id string, _index int) item {
			return item{id: id}
		}),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

var ErrCanceled = fmt.Errorf("canceled")

type workDone struct {
	err error
}

// Run shows the list while work runs. work reports progress through send.
// Pressing ctrl+c cancels the context given to work and Run returns
// ErrCanceled once work has returned.
func (r *Runner) Run(ctx context.Context, work func(ctx context.Context, send func(Update)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var options []tea.ProgramOption
	if r.output != nil {
		options = append(options, tea.WithOutput(r.output))
	}
	if r.input != nil {
		options = append(options, tea.WithInput(r.input))
	}

	p := tea.NewProgram(r.model(), options...)

	result := make(chan error, 1)
	go func() {
		err := work(ctx, func(u Update) { p.Send(u) })
		result <- err
		p.Send(workDone{err: err})
	}()

	final, runErr := p.Run()

	if m, ok := final.(model); ok && m.canceled {
		cancel()
		<-result
		return ErrCanceled
	}

	if runErr != nil {
		cancel()
		<-result
		return runErr
	}
	return <-result
}

type model struct {
	title    string
	items    []item
	index    map[string]int
	done     bool
	canceled bool
}

func (r *Runner) model() model {
	m := model{
		title: r.title,
		items: append([]item(nil), r.items...),
		index: make(map[string]int, len(r.items)),
	}
	for i, it := range m.items {
		m.index[it.id] = i
	}
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			return m, tea.Quit
		}
	case Update:
		i, ok := m.index[msg.ID]
		if !ok {
			// unknown ids are appended
			index := make(map[string]int, len(m.index)+1)
			for k, v := range m.index {
				index[k] = v
			}
			i = len(m.items)
			index[msg.ID] = i
			m.index = index
			m.items = append(append([]item(nil), m.items...), item{id: msg.ID})
		}
		it := m.items[i]
		it.status = msg.Status
		it.detail = msg.Detail
		if msg.Err != nil {
			it.err = msg.Err.Error()
		}
		items := append([]item(nil), m.items...)
		items[i] = it
		m.items = items
	case workDone:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	b := strings.Builder{}

	if m.title != "" {
		b.WriteString(m.title)
		b.WriteString("\n")
	}

	for _, it := range m.items {
		b.WriteString(it.status.icon())
		b.WriteString(" ")
		b.WriteString(it.id)
		if it.detail != "" && it.status == StatusRunning {
			b.WriteString(" ")
			b.WriteString(pp.ColorString(gray, "("+it.detail+")").GetForStdout())
		}
		if it.status == StatusSkipped && it.detail != "" {
			b.WriteString(" (skipped - " + it.detail + ")")
		}
		b.WriteString("\n")

		if it.err != "" {
			b.WriteString("  ERROR: ")
			b.WriteString(strings.TrimSpace(it.err))
			b.WriteString("\n")
		}
	}

	return b.String()
}
