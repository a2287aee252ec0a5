package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesToOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Infof("uploaded %d files", 3)
	assert.Contains(t, buf.String(), "uploaded 3 files")
}

func TestLoggerSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := NewLogger(&first)
	l.SetOutput(&second)
	l.WithField("share", "Photos").Warnf("reconnecting")
	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "reconnecting")
	assert.Contains(t, second.String(), "Photos")
}

func TestLoggerSetOutputReachesChildren(t *testing.T) {
	var first, second bytes.Buffer
	l := NewLogger(&first)
	child := l.WithField("endpoint", "smb://nas.local:445")
	l.SetOutput(&second)
	child.Warnf("mounted share")
	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "mounted share")
	assert.Same(t, &second, child.Output())

	l.SetOutput(&first)
	child.Warnf("mounted again")
	assert.Contains(t, first.String(), "mounted again")
}

func TestNopLoggerStaysSilent(t *testing.T) {
	var buf bytes.Buffer
	l := NewNopLogger()
	l.SetOutput(&buf)
	l.Errorf("boom")
	assert.Empty(t, buf.String())
}

func TestDebugHiddenUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	SetVerbose(false)
	l.Debugf("hidden")
	assert.Empty(t, buf.String())
	SetVerbose(true)
	defer SetVerbose(false)
	l.Debugf("shown")
	assert.Contains(t, buf.String(), "shown")
}
