package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/m-manu/picstream/entity"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// bars count thousandths of an item
const barTotal = 1000

type itemState int8

const (
	itemPending itemState = iota
	itemDone
	itemFailed
)

// UploadUI shows one progress bar per item of a batch plus an overall bar.
// Without a terminal it prints one line per finished item instead.
type UploadUI struct {
	progress   *mpb.Progress
	isTerminal bool
	out        io.Writer

	mx       sync.Mutex
	bars     []*mpb.Bar
	overall  *mpb.Bar
	states   []itemState
	finished bool
}

// NewUploadUI creates an upload UI on stderr
func NewUploadUI() *UploadUI {
	return newUploadUI(term.IsTerminal(int(os.Stderr.Fd())), os.Stderr)
}

func newUploadUI(isTerminal bool, out io.Writer) *UploadUI {
	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(out),
			mpb.WithRefreshRate(150*time.Millisecond),
			mpb.WithWidth(60),
		)
	}
	return &UploadUI{
		progress:   p,
		isTerminal: isTerminal,
		out:        out,
	}
}

// BatchProgress renders a snapshot of the batch
func (u *UploadUI) BatchProgress(result entity.BatchResult) {
	u.mx.Lock()
	defer u.mx.Unlock()
	if u.finished {
		return
	}
	if u.states == nil {
		u.start(result.Items)
	}
	for i, item := range result.Items {
		if i >= len(u.states) || u.states[i] != itemPending {
			continue
		}
		switch {
		case item.Completed:
			u.states[i] = itemDone
			u.setBar(i, barTotal)
			u.println(fmt.Sprintf("✓ [%d/%d] %s", i+1, len(result.Items), item.Filename))
		case item.Failed():
			u.states[i] = itemFailed
			if u.bars != nil {
				u.bars[i].Abort(false)
			}
			u.println(fmt.Sprintf("✗ [%d/%d] %s: %v", i+1, len(result.Items), item.Filename, item.Err))
		default:
			u.setBar(i, int64(item.Progress*barTotal))
		}
	}
	if u.overall != nil {
		u.overall.SetCurrent(int64(result.Progress * barTotal))
	}
}

func (u *UploadUI) start(items []entity.UploadItem) {
	u.states = make([]itemState, len(items))
	if !u.isTerminal {
		return
	}
	u.bars = make([]*mpb.Bar, len(items))
	for i, item := range items {
		u.bars[i] = u.progress.New(barTotal,
			mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("[%d/%d] %s", i+1, len(items), item.Filename), decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(decor.Percentage(decor.WCSyncSpace)),
			mpb.BarRemoveOnComplete(),
		)
	}
	u.overall = u.progress.New(barTotal,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding("-").Rbound("]"),
		mpb.PrependDecorators(decor.Name("Overall", decor.WCSyncSpaceR)),
		mpb.AppendDecorators(decor.Percentage(decor.WCSyncSpace)),
	)
}

func (u *UploadUI) setBar(i int, current int64) {
	if u.bars != nil {
		u.bars[i].SetCurrent(current)
	}
}

// println writes a line above the bars
func (u *UploadUI) println(line string) {
	_, _ = fmt.Fprintln(u.Writer(), line)
}

// Writer returns an io.Writer that safely prints above the progress bars
func (u *UploadUI) Writer() io.Writer {
	if u.progress != nil {
		return u.progress
	}
	return u.out
}

// Finish stops rendering: bars of items that never finished are dropped. Safe to call more than once.
func (u *UploadUI) Finish() {
	u.mx.Lock()
	if u.finished {
		u.mx.Unlock()
		return
	}
	u.finished = true
	for i, bar := range u.bars {
		if u.states[i] == itemPending {
			bar.Abort(true)
		}
	}
	if u.overall != nil {
		u.overall.SetTotal(-1, true)
	}
	u.mx.Unlock()
	if u.progress != nil {
		u.progress.Wait()
	}
}

// IsTerminal returns whether output is to a terminal
func (u *UploadUI) IsTerminal() bool {
	return u.isTerminal
}
