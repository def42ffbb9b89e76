// Package ui renders user-facing terminal output: styled text, banners and
// prefixed warnings. Results go to stdout; progress and diagnostics to stderr.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

var (
	writer io.Writer = os.Stderr
	input  io.Reader = os.Stdin
)

// SetWriter overrides the stderr writer. nil restores os.Stderr.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	writer = w
}

// Writer returns the stderr writer used for progress output.
func Writer() io.Writer {
	return writer
}

// SetInput overrides the prompt reader. nil restores os.Stdin.
func SetInput(r io.Reader) {
	if r == nil {
		r = os.Stdin
	}
	input = r
}

var (
	stdoutColor = isColorTerminal(os.Stdout)
	stderrColor = isColorTerminal(os.Stderr)
)

func isColorTerminal(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// SetColorEnabled forces color on or off for both streams.
func SetColorEnabled(enabled bool) {
	stdoutColor = enabled
	stderrColor = enabled
}

func style(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// Bold styles s for stdout.
func Bold(s string) string { return style(stdoutColor, "1", s) }

// Dim styles s for stdout.
func Dim(s string) string { return style(stdoutColor, "2", s) }

// Green styles s for stdout.
func Green(s string) string { return style(stdoutColor, "32", s) }

// Red styles s for stdout.
func Red(s string) string { return style(stdoutColor, "31", s) }

// Yellow styles s for stdout.
func Yellow(s string) string { return style(stdoutColor, "33", s) }

// Cyan styles s for stdout.
func Cyan(s string) string { return style(stdoutColor, "36", s) }

// OKTag is a green check mark.
func OKTag() string { return Green("✓") }

// FailTag is a red cross.
func FailTag() string { return Red("✗") }

// WarnTag is a yellow warning sign.
func WarnTag() string { return Yellow("⚠") }

const defaultWidth = 75

// Width returns the terminal width of stdout, or 75 when it is not a terminal.
func Width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// Rule writes a line of "═" as wide as the terminal, capped at 75.
func Rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("═", min(Width(), defaultWidth)))
}

// Banner writes title between two rules.
func Banner(w io.Writer, title string) {
	Rule(w)
	fmt.Fprintln(w, Bold(title))
	Rule(w)
}

// ShortPath replaces a leading home directory in path with "~".
func ShortPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	rest, ok := strings.CutPrefix(path, home)
	if !ok || (rest != "" && !strings.HasPrefix(rest, string(filepath.Separator))) {
		return path
	}
	return "~" + rest
}

// Section writes a bold title with a thin underline.
func Section(w io.Writer, title string) {
	fmt.Fprintln(w, Bold(title))
	fmt.Fprintln(w, Dim(strings.Repeat("─", len([]rune(title)))))
}

// Warn prints a warning to stderr.
func Warn(msg string) {
	fmt.Fprintf(writer, "%s %s\n", style(stderrColor, "33", "Warning:"), msg)
}

// Warnf prints a formatted warning to stderr.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Error prints an error to stderr.
func Error(msg string) {
	fmt.Fprintf(writer, "%s %s\n", style(stderrColor, "31", "Error:"), msg)
}

// Errorf prints a formatted error to stderr.
func Errorf(format string, args ...any) {
	Error(fmt.Sprintf(format, args...))
}

// Info prints an unprefixed line to stderr.
func Info(msg string) {
	fmt.Fprintln(writer, msg)
}

// Infof prints a formatted unprefixed line to stderr.
func Infof(format string, args ...any) {
	fmt.Fprintf(writer, format+"\n", args...)
}

// PromptSecret asks for a secret on stderr. Input is not echoed when stdin is
// a terminal; otherwise one line is read.
func PromptSecret(prompt string) (string, error) {
	fmt.Fprint(writer, prompt+": ")

	if f, ok := input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(writer)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
