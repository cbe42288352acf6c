// Package page holds the side effects a storefront page can trigger besides
// rendering: navigating to another page and raising an alert.
package page

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/kickshopping/internal/log"
)

type Navigator interface {
	Navigate(c context.Context, path string)
}

type Alerter interface {
	Alert(c context.Context, message string)
}

type Pager interface {
	Navigator
	Alerter
}

// Console renders navigation and alerts as lines of text, which is how the CLI
// surfaces them.
type Console struct {
	out   io.Writer
	hints map[string]string
	mu    sync.Mutex
}

func NewConsole(out io.Writer, hints map[string]string) *Console {
	return &Console{out: out, hints: hints}
}

func (p *Console) Navigate(c context.Context, path string) {
	zerolog.Ctx(c).Info().Str(log.KeyTag, "Console Navigate").Str(log.KeyPath, path).Msg("navigating")

	p.mu.Lock()
	defer p.mu.Unlock()
	if hint, ok := p.hints[path]; ok {
		fmt.Fprintf(p.out, "-> %s (%s)\n", path, hint)
		return
	}
	fmt.Fprintf(p.out, "-> %s\n", path)
}

func (p *Console) Alert(c context.Context, message string) {
	zerolog.Ctx(c).Warn().Str(log.KeyTag, "Console Alert").Msg(message)

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "! %s\n", message)
}

// Recorder keeps every navigation and alert in memory.
type Recorder struct {
	mu          sync.Mutex
	navigations []string
	alerts      []string
}

func (r *Recorder) Navigate(_ context.Context, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigations = append(r.navigations, path)
}

func (r *Recorder) Alert(_ context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, message)
}

func (r *Recorder) Navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navigations...)
}

func (r *Recorder) Alerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}
