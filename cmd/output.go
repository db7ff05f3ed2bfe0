package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/ryangerardwilson/gitguru/internal/branch/domain"
	"github.com/ryangerardwilson/gitguru/internal/tree"
)

// Exit codes by error category.
const (
	exitOK            = 0
	exitFailure       = 1
	exitValidation    = 2
	exitPolicy        = 3
	exitOrchestration = 4
	exitConflict      = 5
	exitBatch         = 6
)

// exitCode maps an error to the process exit code of its category.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var batch *domain.BatchError
	if errors.As(err, &batch) {
		return exitBatch
	}
	kind, ok := domain.KindOf(err)
	if !ok {
		return exitFailure
	}
	switch kind.Category() {
	case domain.CategoryValidation:
		return exitValidation
	case domain.CategoryPolicy:
		return exitPolicy
	case domain.CategoryOrchestration:
		return exitOrchestration
	case domain.CategoryConflict:
		return exitConflict
	case domain.CategoryBatch:
		return exitBatch
	default:
		return exitFailure
	}
}

// printer writes styled command output.
type printer struct {
	w       io.Writer
	heading lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

func newPrinter(w io.Writer, color bool) *printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &printer{
		w:       w,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		success: r.NewStyle().Foreground(lipgloss.Color("12")),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		muted:   r.NewStyle().Faint(true),
	}
}

func (p *printer) Heading(s string) {
	fmt.Fprintln(p.w, p.heading.Render(s))
}

func (p *printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) Muted(format string, args ...any) {
	fmt.Fprintln(p.w, p.muted.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) Plain(s string) {
	fmt.Fprint(p.w, s)
}

// Error prints err as "error: <Kind>: <ref>: <detail>". A batch failure gets
// one line per failed item.
func (p *printer) Error(err error) {
	var batch *domain.BatchError
	if errors.As(err, &batch) {
		fmt.Fprintln(p.w, p.failure.Render(fmt.Sprintf("error: %s: %d of %d failed", batch.Op, len(batch.Failures), batch.Total)))
		for _, f := range batch.Failures {
			fmt.Fprintln(p.w, p.failure.Render("  "+f.Err.Error()))
		}
		return
	}
	fmt.Fprintln(p.w, p.failure.Render("error: "+err.Error()))
}

// Tree prints the rendered forest under a heading.
func (p *printer) Tree(title string, f *tree.Forest, hashLength int, current string) {
	if title != "" {
		p.Heading(title)
	}
	p.Plain(tree.Render(f, tree.RenderOptions{HashLength: hashLength}))
	if current != "" {
		p.Muted("Current branch: %s", current)
	} else {
		p.Muted("Current branch: (detached HEAD)")
	}
}
