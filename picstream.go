package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	set "github.com/deckarep/golang-set/v2"
	"github.com/m-manu/picstream/browse"
	"github.com/m-manu/picstream/bytesutil"
	"github.com/m-manu/picstream/config"
	"github.com/m-manu/picstream/entity"
	"github.com/m-manu/picstream/fmte"
	"github.com/m-manu/picstream/lib"
	"github.com/m-manu/picstream/logging"
	"github.com/m-manu/picstream/media"
	"github.com/m-manu/picstream/remote"
	"github.com/m-manu/picstream/service"
	"github.com/m-manu/picstream/ui"
	"github.com/m-manu/picstream/watcher"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// options are the flags shared by all commands
type options struct {
	configFile     string
	endpoint       string
	share          string
	username       string
	knownHosts     string
	workers        int
	recursive      bool
	exclusionsFile string
	verbose        bool
}

func (o *options) bind(flags *pflag.FlagSet) {
	flags.StringVarP(&o.configFile, "config", "c", "", "configuration file path")
	flags.StringVarP(&o.endpoint, "endpoint", "e", "", "server address, e.g. smb://nas.local or sftp://user@host:22")
	flags.StringVarP(&o.share, "share", "s", "", "share name (for SFTP: base directory on the server)")
	flags.StringVarP(&o.username, "user", "u", "", "user name")
	flags.StringVar(&o.knownHosts, "known-hosts", "", "known_hosts file to verify SFTP servers with")
	flags.IntVarP(&o.workers, "workers", "w", 1, "files uploaded in parallel, each over its own connection")
	flags.BoolVarP(&o.recursive, "recursive", "r", false, "look for media in subdirectories too")
	flags.StringVar(&o.exclusionsFile, "exclusions", "",
		"path to file containing newline separated list of file/directory names to be skipped")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "verbose output (shows debug messages)")
}

// loadConfig reads the configuration file, then applies flags that were set explicitly
func (o *options) loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, withExitCode(exitCodeConfigError, err)
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = o.endpoint
	}
	if flags.Changed("share") {
		cfg.Share = o.share
	}
	if flags.Changed("user") {
		cfg.Username = o.username
	}
	if flags.Changed("known-hosts") {
		cfg.KnownHosts = o.knownHosts
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("recursive") {
		cfg.Recursive = o.recursive
	}
	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(exitCodeConfigError, fmt.Errorf("invalid configuration: %w", err))
	}
	return cfg, nil
}

func (o *options) exclusions(cfg *config.Config) (set.Set[string], error) {
	excluded := cfg.ExcludedNames()
	if o.exclusionsFile == "" {
		return excluded, nil
	}
	if !lib.IsReadableFile(o.exclusionsFile) {
		return nil, withExitCode(exitCodeExclusionFilesError,
			fmt.Errorf("argument to flag --exclusions should be a file: %s", o.exclusionsFile))
	}
	rawContents, err := os.ReadFile(o.exclusionsFile)
	if err != nil {
		return nil, withExitCode(exitCodeExclusionFilesError,
			fmt.Errorf("argument to flag --exclusions isn't readable: %w", err))
	}
	fromFile, firstFew := lib.LineSeparatedStrToSet(string(rawContents))
	fmte.PrintfV("Skipping %d names from %s (%s etc.)\n", fromFile.Cardinality(), o.exclusionsFile,
		strings.Join(firstFew, ", "))
	return excluded.Union(fromFile), nil
}

// app ties the components behind the commands together
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	console  *ui.Console
	source   *media.LocalSource
	resolver *remote.Resolver
	browser  *browse.Browser
	excluded set.Set[string]
}

func newAppFromOptions(o *options, flags *pflag.FlagSet) (*app, error) {
	logging.SetVerbose(o.verbose)
	if o.verbose {
		fmte.VerboseOn()
	}
	cfg, err := o.loadConfig(flags)
	if err != nil {
		return nil, err
	}
	excluded, err := o.exclusions(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmte.Printf("Password for %s@%s: ", cfg.Username, cfg.Endpoint)
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmte.Printf("\n")
		if err != nil {
			return nil, withExitCode(exitCodeConfigError, fmt.Errorf("couldn't read password: %w", err))
		}
		cfg.Password = string(password)
	}
	return newApp(cfg, excluded, nil, logging.NewDefaultLogger()), nil
}

// newApp wires the components; factory defaults to remote.NewSession when nil
func newApp(cfg *config.Config, excluded set.Set[string], factory remote.Factory, log *logging.Logger) *app {
	console := ui.NewConsole(true)
	source := media.NewLocalSource(log)
	resolver := remote.NewResolver(cfg.Remote(), factory, log)
	orchestrator := service.NewOrchestrator(source, cfg.Workers, log)
	return &app{
		cfg:      cfg,
		log:      log,
		console:  console,
		source:   source,
		resolver: resolver,
		browser:  browse.NewBrowser(resolver, orchestrator, console, log),
		excluded: excluded,
	}
}

func (a *app) connect(ctx context.Context) error {
	return a.browser.Connect(ctx, a.cfg.Remote())
}

func (a *app) close() {
	if err := a.resolver.Close(); err != nil {
		a.log.Debugf("closing connection: %v", err)
	}
}

// list prints a directory of the share. Directories on the way are opened one by one.
func (a *app) list(ctx context.Context, target string) error {
	defer a.close()
	a.console.SetListings(false)
	if err := a.connect(ctx); err != nil {
		return err
	}
	if err := a.navigate(ctx, target); err != nil {
		return err
	}
	entries, err := a.browser.Listing()
	if err != nil {
		return err
	}
	ui.PrintListing(a.browser.CurrentPath(), entries)
	return nil
}

// navigate opens target, starting from the root. target is relative to the root.
func (a *app) navigate(ctx context.Context, target string) error {
	for !a.browser.State().IsRoot() {
		if err := a.browser.Ascend(ctx); err != nil {
			return err
		}
	}
	for _, name := range strings.Split(cleanRemotePath(target), "/") {
		if name == "" {
			continue
		}
		if err := a.browser.DescendByName(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// discover finds the media behind command line arguments
func (a *app) discover(args []string) ([]entity.MediaRef, error) {
	return a.source.Discover(args, media.DiscoverOptions{Recursive: a.cfg.Recursive, Excluded: a.excluded})
}

// upload sends the media found in args to target, "" meaning the directory being browsed
func (a *app) upload(ctx context.Context, args []string, target string) (entity.BatchResult, error) {
	refs, err := a.discover(args)
	if err != nil {
		return entity.BatchResult{}, withExitCode(exitCodeInvalidArgs, err)
	}
	if target != "" {
		target = cleanRemotePath(target)
	}
	fmte.PrintfV("Found %d photos and videos (%s)\n", len(refs), bytesutil.DecimalFormat(totalSize(refs)))
	return a.uploadRefs(ctx, refs, target)
}

func (a *app) uploadRefs(ctx context.Context, refs []entity.MediaRef, target string) (entity.BatchResult, error) {
	progress := ui.NewUploadUI()
	a.console.SetProgress(progress)
	defer a.console.SetProgress(nil)
	defer progress.Finish()
	if progress.IsTerminal() {
		logOutput := a.log.Output()
		a.log.SetOutput(progress.Writer())
		stdout := fmte.SetOutput(progress.Writer())
		defer func() {
			a.log.SetOutput(logOutput)
			fmte.SetOutput(stdout)
		}()
	}
	return a.browser.Upload(ctx, refs, target)
}

// watch uploads media appearing in dirPath until ctx is done
func (a *app) watch(ctx context.Context, dirPath string, target string) error {
	defer a.close()
	if !lib.IsReadableDirectory(dirPath) {
		return withExitCode(exitCodeInvalidArgs, fmt.Errorf("%q is not a readable directory", dirPath))
	}
	if err := a.connect(ctx); err != nil {
		return err
	}
	target = cleanRemotePath(target)
	w, err := watcher.New(dirPath, watcher.Options{
		Recursive: a.cfg.Recursive,
		Excluded:  a.excluded,
		Debounce:  a.cfg.WatchDebounce,
	}, a.log)
	if err != nil {
		return withExitCode(exitCodeWatchError, err)
	}
	fmte.Printf("Watching %s, new photos and videos go to %s. Press Ctrl-C to stop.\n", dirPath, target)
	err = w.Run(ctx, func(ctx context.Context, paths []string) {
		refs, err := a.discover(paths)
		if err != nil {
			a.log.Warnf("%v", err)
			return
		}
		if len(refs) == 0 {
			return
		}
		// failures were already reported; the next batch gets a fresh connection
		_, _ = a.uploadRefs(ctx, refs, target)
	})
	return withExitCode(exitCodeWatchError, err)
}

// cleanRemotePath turns user input into an absolute share path
func cleanRemotePath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	return path.Clean("/" + p)
}

func totalSize(refs []entity.MediaRef) int64 {
	var total int64
	for _, ref := range refs {
		if info, err := os.Stat(ref.Locator); err == nil {
			total += info.Size()
		}
	}
	return total
}
