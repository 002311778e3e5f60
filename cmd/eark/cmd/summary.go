package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var nameStyle = lipgloss.NewStyle().
	Bold(true).
	PaddingRight(1)

var validStyle = lipgloss.NewStyle().
	Width(9).
	Bold(true).
	Foreground(lipgloss.Color("#04B575"))

var invalidStyle = lipgloss.NewStyle().
	Width(9).
	Bold(true).
	Foreground(lipgloss.Color("#FF5F5F"))

var countsStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#999999"))

// printSummary prints a line for each validated package.
func printSummary(out io.Writer, inputs []*input) {
	for _, in := range inputs {
		fmt.Fprintln(out, summaryLine(in))
	}
}

func summaryLine(in *input) string {
	status := validStyle.Render("VALID")
	if in.report == nil || !in.report.Valid() {
		status = invalidStyle.Render("INVALID")
	}
	line := status + nameStyle.Render(in.path)
	if in.report != nil {
		c := in.report.Counts()
		line += countsStyle.Render(fmt.Sprintf("errors: %d, warnings: %d, notes: %d, passed: %d, skipped: %d",
			c.Errors, c.Warnings, c.Notes, c.Successes, c.Skipped))
	}
	switch {
	case in.err != nil:
		line += countsStyle.Render(fmt.Sprintf(" (%v)", in.err))
	case in.reportFile != "":
		line += countsStyle.Render(" report: " + in.reportFile)
	}
	return line
}
