package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/m-manu/picstream/entity"
	"github.com/stretchr/testify/assert"
)

func TestUploadUI_PlainOutput(t *testing.T) {
	var out bytes.Buffer
	u := newUploadUI(false, &out)
	items := []entity.UploadItem{{Filename: "a.jpg"}, {Filename: "b.jpg"}}
	u.BatchProgress(entity.BatchResult{Items: items})

	items[0].Progress = 0.5
	u.BatchProgress(entity.BatchResult{Items: items, Progress: 0.25})
	assert.Empty(t, out.String())

	items[0].Progress, items[0].Completed = 1, true
	u.BatchProgress(entity.BatchResult{Attempted: 1, Succeeded: 1, Items: items, Progress: 0.5})
	items[1].Err = errors.New("disk full")
	u.BatchProgress(entity.BatchResult{Attempted: 2, Succeeded: 1, Items: items, Progress: 0.5})
	u.BatchProgress(entity.BatchResult{Attempted: 2, Succeeded: 1, Items: items, Progress: 0.5})
	u.Finish()
	u.Finish()

	assert.Equal(t, "✓ [1/2] a.jpg\n✗ [2/2] b.jpg: disk full\n", out.String())
	assert.False(t, u.IsTerminal())
	assert.Equal(t, &out, u.Writer())
}

func TestUploadUI_Bars(t *testing.T) {
	var out bytes.Buffer
	u := newUploadUI(true, &out)
	items := []entity.UploadItem{{Filename: "a.jpg"}, {Filename: "b.mp4"}, {Filename: "c.jpg"}}
	u.BatchProgress(entity.BatchResult{Items: items})
	assert.Len(t, u.bars, 3)

	items[0].Progress, items[0].Completed = 1, true
	items[1].Err = errors.New("gone")
	items[2].Progress = 0.4
	u.BatchProgress(entity.BatchResult{Attempted: 3, Succeeded: 1, Items: items, Progress: 0.47})
	assert.Equal(t, []itemState{itemDone, itemFailed, itemPending}, u.states)

	u.Finish()
	assert.True(t, u.IsTerminal())
	assert.NotSame(t, &out, u.Writer(), "lines go through the bar container")
}
