package main

import (
	"fmt"
	"io"
	"sync"

	"trademind/internal/interfaces"
	"trademind/internal/types"
)

// terminalSurface renders chart state as plain text lines. It stands in
// for a charting widget: every callback prints what the widget would
// draw.
type terminalSurface struct {
	mu  sync.Mutex
	out io.Writer
}

var _ interfaces.RenderSurface = (*terminalSurface)(nil)

func newTerminalSurface(out io.Writer) *terminalSurface {
	return &terminalSurface{out: out}
}

func (t *terminalSurface) SetSeries(symbol string, preset types.Preset, candles []types.Candle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(candles) == 0 {
		fmt.Fprintf(t.out, "[%s %s] empty series\n", symbol, preset)
		return
	}
	last := candles[len(candles)-1]
	fmt.Fprintf(t.out, "[%s %s] %d candles, last t=%d close=%.2f\n",
		symbol, preset, len(candles), last.T, last.C)
}

func (t *terminalSurface) UpdateCandle(c types.Candle, appended bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	verb := "update"
	if appended {
		verb = "append"
	}
	fmt.Fprintf(t.out, "live %s t=%d o=%.2f h=%.2f l=%.2f c=%.2f v=%.0f\n",
		verb, c.T, c.O, c.H, c.L, c.C, c.V)
}

func (t *terminalSurface) SetPatternLabel(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if label == "" {
		return
	}
	fmt.Fprintf(t.out, "patterns: %s\n", label)
}

func (t *terminalSurface) SetError(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "error: %s\n", msg)
}

func (t *terminalSurface) SetLoading(loading bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if loading {
		fmt.Fprintln(t.out, "loading...")
	}
}
