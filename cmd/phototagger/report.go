package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"phototagger/internal/services"
	"phototagger/internal/workflow"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const outcomeLabelWidth = 8

// lineReporter prints one line per processed image.
type lineReporter struct {
	mu       sync.Mutex
	out      io.Writer
	root     string
	colorize bool
}

func newLineReporter(out io.Writer, root string, colorize bool) *lineReporter {
	return &lineReporter{out: out, root: root, colorize: colorize}
}

func (r *lineReporter) Report(o workflow.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, renderOutcomeLine(o, r.displayPath(o.Path), r.colorize))
}

func (r *lineReporter) displayPath(path string) string {
	if r.root == "" {
		return path
	}
	rel, err := filepath.Rel(r.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func renderOutcomeLine(o workflow.Outcome, path string, colorize bool) string {
	var detail string
	switch o.Kind {
	case workflow.OutcomeTagged:
		detail = strings.Join(o.Inferred.Strings(), ", ")
	case workflow.OutcomeSkipped:
		detail = "already tagged"
	case workflow.OutcomeNoTags:
		detail = "no reliable tags found"
	case workflow.OutcomeFailed:
		detail = fmt.Sprintf("%s: %v", services.FailureKind(o.Err), o.Err)
	}
	line := fmt.Sprintf("  %-*s %s: %s", outcomeLabelWidth, outcomeLabel(o.Kind), path, detail)
	if colorize {
		if color := outcomeColor(o.Kind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func outcomeLabel(kind workflow.OutcomeKind) string {
	switch kind {
	case workflow.OutcomeTagged:
		return "TAGGED"
	case workflow.OutcomeSkipped:
		return "SKIP"
	case workflow.OutcomeNoTags:
		return "NO TAGS"
	case workflow.OutcomeFailed:
		return "FAILED"
	default:
		return strings.ToUpper(string(kind))
	}
}

func outcomeColor(kind workflow.OutcomeKind) string {
	switch kind {
	case workflow.OutcomeTagged:
		return ansiGreen
	case workflow.OutcomeNoTags:
		return ansiYellow
	case workflow.OutcomeFailed:
		return ansiRed
	case workflow.OutcomeSkipped:
		return ansiBlue
	default:
		return ""
	}
}

func renderSummary(s workflow.Summary) string {
	rows := [][]string{
		{"Tagged", fmt.Sprint(s.Tagged)},
		{"Skipped", fmt.Sprint(s.Skipped)},
		{"No tags", fmt.Sprint(s.NoTags)},
		{"Failed", fmt.Sprint(s.Failed)},
		{"Total", fmt.Sprint(s.Total)},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	}
	return renderTable([]string{"Outcome", "Images"}, rows, []columnAlignment{alignLeft, alignRight})
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
