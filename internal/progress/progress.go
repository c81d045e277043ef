// Package progress reports sync progress as terminal bars.
package progress

import (
	"io"
	"sync"

	"github.com/gosuri/uiprogress"
)

// Reporter hands out one Task per unit of work being tracked.
type Reporter interface {
	Task(name string, total int) Task
	Stop()
}

// Task is advanced once per finished item.
type Task interface {
	Incr()
}

// Bars renders every task as a uiprogress bar.
type Bars struct {
	mu      sync.Mutex
	p       *uiprogress.Progress
	started bool
	stopped bool
}

// NewBars returns a Reporter that draws to out.
func NewBars(out io.Writer) *Bars {
	p := uiprogress.New()
	p.SetOut(out)
	return &Bars{p: p}
}

func (b *Bars) Task(name string, total int) Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return Nop{}
	}
	if !b.started {
		b.p.Start()
		b.started = true
	}
	// uiprogress divides by Total
	if total < 1 {
		total = 1
	}
	bar := b.p.AddBar(total).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(*uiprogress.Bar) string {
		return name + " "
	})
	return barTask{bar}
}

func (b *Bars) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started && !b.stopped {
		b.p.Stop()
	}
	b.stopped = true
}

type barTask struct {
	bar *uiprogress.Bar
}

func (t barTask) Incr() { t.bar.Incr() }

// Nop discards all progress. Used when stdout is not a terminal.
type Nop struct{}

func (Nop) Task(string, int) Task { return Nop{} }
func (Nop) Stop()                 {}
func (Nop) Incr()                 {}
