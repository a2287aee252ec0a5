package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/fmte"
	"github.com/spf13/cobra"
)

// Constants indicating return codes of this tool, when run from command line
const (
	exitCodeSuccess = iota
	exitCodeInvalidArgs
	exitCodeConfigError
	exitCodeConnectionError
	exitCodeListingError
	exitCodeUploadError
	exitCodeWatchError
	exitCodeExclusionFilesError
	exitCodeInterrupted
)

// exitError carries the exit code for a failure
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCodeFor maps an error to the code the process exits with. reported
// tells whether the user was already told about it.
func exitCodeFor(err error) (code int, reported bool) {
	var (
		configErr  *entity.ConfigurationError
		connErr    *entity.ConnectionError
		listingErr *entity.ListingError
		exitErr    *exitError
	)
	switch {
	case err == nil:
		return exitCodeSuccess, true
	case errors.Is(err, context.Canceled):
		return exitCodeInterrupted, true
	case errors.As(err, &configErr):
		return exitCodeConfigError, true
	case errors.As(err, &connErr):
		return exitCodeConnectionError, true
	case errors.As(err, &listingErr):
		return exitCodeListingError, true
	case errors.Is(err, entity.ErrNoMedia), errors.Is(err, entity.ErrBatchInProgress):
		return exitCodeUploadError, true
	case errors.As(err, &exitErr):
		return exitErr.code, false
	default:
		return exitCodeInvalidArgs, false
	}
}

func handlePanic() {
	err := recover()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Program exited unexpectedly. "+
			"Please report the below error to the author:\n"+
			"%+v\n", err)
		_, _ = fmt.Fprintln(os.Stderr, string(debug.Stack()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "picstream",
		Short: "Browse a remote file share and upload photos and videos into it",
		Long: `picstream connects to an SMB share (or a directory over SFTP), lets you browse it
and uploads local photos and videos into it, showing the progress of every file.

Connection settings are read from --config, ~/.config/picstream/config.yaml or
./picstream.yaml, in that order. The password may also be given through the
` + "PICSTREAM_PASSWORD" + ` environment variable; otherwise it's prompted for.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "ls [path]",
			Short: "List a directory of the share",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				target := "/"
				if len(args) == 1 {
					target = args[0]
				}
				a, err := newAppFromOptions(opts, cmd.Flags())
				if err != nil {
					return err
				}
				return a.list(cmd.Context(), target)
			},
		},
		newUploadCmd(opts),
		&cobra.Command{
			Use:   "shell",
			Short: "Browse the share interactively and upload into the directory being browsed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newAppFromOptions(opts, cmd.Flags())
				if err != nil {
					return err
				}
				return a.shell(cmd.Context(), os.Stdin)
			},
		},
		newWatchCmd(opts),
	)
	return rootCmd
}

func newUploadCmd(opts *options) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "upload [--to path] files...",
		Short: "Upload photos and videos (files, directories or glob patterns)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFromOptions(opts, cmd.Flags())
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.connect(cmd.Context()); err != nil {
				return err
			}
			result, err := a.upload(cmd.Context(), args, target)
			if err != nil {
				return err
			}
			if result.Failed() > 0 {
				return withExitCode(exitCodeUploadError,
					fmt.Errorf("%d of %d files couldn't be uploaded", result.Failed(), result.Attempted))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", "/", "directory of the share to upload into")
	return cmd
}

func newWatchCmd(opts *options) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "watch <dir> [--to path]",
		Short: "Upload photos and videos as they appear in a local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAppFromOptions(opts, cmd.Flags())
			if err != nil {
				return err
			}
			return a.watch(cmd.Context(), args[0], target)
		},
	}
	cmd.Flags().StringVar(&target, "to", "/", "directory of the share to upload into")
	return cmd
}

func main() {
	defer handlePanic()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	code, reported := exitCodeFor(err)
	if !reported {
		fmte.PrintfErr("error: %v\n", err)
	}
	os.Exit(code)
}
