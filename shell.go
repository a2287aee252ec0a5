package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/m-manu/picstream/fmte"
	"github.com/m-manu/picstream/ui"
)

const shellHelp = `Commands:
  ls                 list the current directory
  cd <dir>           open a directory ("..", "/" and paths work too)
  up                 go to the parent directory
  pwd                print the current directory
  refresh            list the current directory again
  put <files...>     upload photos and videos into the current directory
  help               show this help
  quit               leave
`

var errQuit = errors.New("quit")

// shell runs an interactive browser reading commands from in
func (a *app) shell(ctx context.Context, in io.Reader) error {
	defer a.close()
	if err := a.connect(ctx); err != nil {
		return err
	}
	scanner := bufio.NewScanner(in)
	for {
		fmte.Printf("%s> ", a.browser.Title())
		if !scanner.Scan() {
			fmte.Printf("\n")
			return scanner.Err()
		}
		err := a.execute(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, reported := exitCodeFor(err); !reported {
			fmte.PrintfErr("Error: %v\n", err)
		}
	}
}

func (a *app) execute(ctx context.Context, line string) error {
	args, err := splitArgs(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	command, args := args[0], args[1:]
	switch command {
	case "ls":
		entries, err := a.browser.Listing()
		if err != nil {
			return err
		}
		ui.PrintListing(a.browser.CurrentPath(), entries)
	case "cd":
		if len(args) != 1 {
			return errors.New("usage: cd <dir>")
		}
		return a.changeDirectory(ctx, args[0])
	case "up":
		return a.browser.Ascend(ctx)
	case "pwd":
		fmte.Printf("%s\n", a.browser.CurrentPath())
	case "refresh":
		return a.browser.Refresh(ctx)
	case "put":
		if len(args) == 0 {
			return errors.New("usage: put <files...>")
		}
		_, err := a.upload(ctx, args, "")
		return err
	case "help", "?":
		fmte.Printf("%s", shellHelp)
	case "quit", "exit":
		return errQuit
	default:
		return errors.New("unknown command " + command + ", try help")
	}
	return nil
}

func (a *app) changeDirectory(ctx context.Context, dir string) error {
	if strings.HasPrefix(dir, "/") {
		return a.navigate(ctx, dir)
	}
	for _, name := range strings.Split(dir, "/") {
		var err error
		switch name {
		case "", ".":
			continue
		case "..":
			err = a.browser.Ascend(ctx)
		default:
			err = a.browser.DescendByName(ctx, name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// splitArgs splits a command line on spaces; single or double quotes keep spaces in an argument
func splitArgs(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var quote rune
	inArg := false
	for _, r := range line {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
