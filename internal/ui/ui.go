// Package ui prints styled status lines for the command line.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// Out is where status lines go. Results printed to stdout stay pipeable.
var Out io.Writer = os.Stderr

func Header(format string, args ...any) {
	fmt.Fprintln(Out, headerStyle.Render(fmt.Sprintf(format, args...)))
}

func Info(format string, args ...any) {
	fmt.Fprintf(Out, format+"\n", args...)
}

func Success(format string, args ...any) {
	fmt.Fprintln(Out, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...any) {
	fmt.Fprintln(Out, warningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

func Error(format string, args ...any) {
	fmt.Fprintln(Out, errorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Muted renders secondary text such as raw model output.
func Muted(text string) string {
	return mutedStyle.Render(text)
}

// Bold renders text in bold, for method and file names inside messages.
func Bold(text string) string {
	return boldStyle.Render(text)
}
