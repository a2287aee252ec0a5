package fmte

import (
	"io"
	"os"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var p *message.Printer

var mx sync.Mutex // Shared mutex across stdout and stderr to ensure ordering across

var normalPrint = true

var verbosePrint = false

var out io.Writer = os.Stdout

var errOut io.Writer = os.Stderr

func init() {
	p = message.NewPrinter(language.English)
}

// Off function turns off print functions within fmte package
func Off() {
	normalPrint = false
}

// VerboseOn turns on verbose print functions within fmte package
func VerboseOn() {
	verbosePrint = true
}

// SetOutput redirects normal and verbose output, e.g. above progress bars. nil restores stdout.
// The previous output is returned.
func SetOutput(w io.Writer) io.Writer {
	mx.Lock()
	defer mx.Unlock()
	if w == nil {
		w = os.Stdout
	}
	previous := out
	out = w
	return previous
}

// SetErrOutput redirects error output. nil restores stderr.
func SetErrOutput(w io.Writer) {
	mx.Lock()
	defer mx.Unlock()
	if w == nil {
		w = os.Stderr
	}
	errOut = w
}

// Printf is goroutine-safe fmt.Printf for English
func Printf(format string, a ...any) {
	if !normalPrint {
		return
	}
	mx.Lock()
	_, _ = p.Fprintf(out, format, a...)
	mx.Unlock()
}

// PrintfV is goroutine-safe fmt.Printf for English (Verbose mode)
func PrintfV(format string, a ...any) {
	if normalPrint && verbosePrint {
		mx.Lock()
		_, _ = p.Fprintf(out, format, a...)
		mx.Unlock()
	}
}

// Print is a goroutine-safe fmt.Print for English
func Print(a ...any) {
	if !normalPrint {
		return
	}
	mx.Lock()
	_, _ = p.Fprint(out, a...)
	mx.Unlock()
}

// PrintfErr is goroutine-safe fmt.Printf to StdErr for English
func PrintfErr(format string, a ...any) {
	mx.Lock()
	_, _ = p.Fprintf(errOut, format, a...)
	mx.Unlock()
}
