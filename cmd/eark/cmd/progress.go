package cmd

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// how often the progress line is redrawn
const redrawInterval = 250 * time.Millisecond

// max width for rule count: "9999 rules "
var countStyle = lipgloss.NewStyle().
	Width(11).
	Bold(true)

var moduleStyle = lipgloss.NewStyle().
	Width(20).
	Foreground(lipgloss.Color("#999999"))

var stateStyle = lipgloss.NewStyle().
	Width(12).
	Foreground(lipgloss.Color("#999999"))

// Progress is a validator.Listener that shows the number of rules
// evaluated and the current module on a single, redrawn line.
type Progress struct {
	out    io.Writer
	label  string
	rules  atomic.Int64
	module atomic.Pointer[string]
}

func NewProgress(out io.Writer, label string) *Progress {
	return &Progress{out: out, label: label}
}

func (p *Progress) ModuleStarted(module, _ string) {
	p.rules.Add(1)
	p.module.Store(&module)
}

func (p *Progress) ValidationStarted(string)     {}
func (p *Progress) ModuleFinished(string)        {}
func (p *Progress) ValidationFinished(string)    {}
func (p *Progress) Indicators(_, _, _, _, _ int) {}

// Start runs fn, redrawing the progress line until it returns.
func (p *Progress) Start(fn func() error) error {
	result := make(chan error, 1)
	go func() { result <- fn() }()
	ticker := time.NewTicker(redrawInterval)
	defer ticker.Stop()
	for {
		select {
		case err := <-result:
			state := "done"
			if err != nil {
				state = "stopped"
			}
			fmt.Fprintln(p.out, p.line(state))
			return err
		case <-ticker.C:
			fmt.Fprint(p.out, p.line("running...")+"\r")
		}
	}
}

func (p *Progress) line(state string) string {
	module := ""
	if m := p.module.Load(); m != nil {
		module = *m
	}
	return p.label +
		countStyle.Render(fmt.Sprintf("%d rules", p.rules.Load())) +
		moduleStyle.Render(module) +
		stateStyle.Render(state)
}
