// Package cmd implements the CLI command structure for taskpad.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskpad/internal/app"
	"github.com/nibzard/taskpad/internal/config"
	"github.com/nibzard/taskpad/internal/feed"
	"github.com/nibzard/taskpad/internal/logging"
	"github.com/nibzard/taskpad/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskpad CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskpad", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}
	cfg := cws.Config

	// No args or a leading flag means the TUI.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "done":
		return doneCommand(ctx, cfg, remainingArgs)
	case "edit":
		return editCommand(ctx, cfg, remainingArgs)
	case "rm":
		return rmCommand(ctx, cfg, remainingArgs)
	case "mv":
		return mvCommand(ctx, cfg, remainingArgs)
	case "remind":
		return remindCommand(ctx, cfg, remainingArgs)
	case "watch":
		return watchCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, cws, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newLogger returns the CLI logger, which writes to stderr.
func newLogger(cfg *config.Config) *log.Logger {
	return logging.New(os.Stderr, logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller))
}

// openApp opens the configured backend and loads the task list.
func openApp(ctx context.Context, cfg *config.Config, opts ...app.Option) (*app.App, error) {
	opts = append([]app.Option{app.WithLogger(newLogger(cfg))}, opts...)
	a, err := app.Open(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening task store: %w", err)
	}
	return a, nil
}

// tuiCommand launches the TUI. The reminder dispatcher runs in the
// background and shows delivered reminders as banners.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// The terminal belongs to the TUI, so logs go to a file.
	fileLogger, err := logging.NewFileLogger(cfg.LogFile, logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller))
	if err != nil {
		return err
	}
	defer fileLogger.Close()

	banners := ui.NewBanners()
	a, err := app.Open(ctx, cfg, app.WithLogger(fileLogger.Logger), app.WithDeliverer(banners))
	if err != nil {
		return fmt.Errorf("opening task store: %w", err)
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		if err := a.Center.Run(ctx); err != nil {
			fileLogger.Error("reminder dispatcher stopped", "err", err)
		}
	}()
	defer func() {
		cancel()
		<-dispatcherDone
	}()

	fileLogger.Info("tui started", "backend", cfg.Backend, "tasks", len(a.Store.Tasks()))
	return ui.RunTUI(ctx, a.Store,
		ui.WithPreferences(a.Preferences),
		ui.WithBanners(banners),
		ui.WithLogger(fileLogger.Logger),
	)
}

// remindCommand runs the reminder dispatcher in the foreground.
func remindCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad remind", flag.ContinueOnError)
	once := fs.Bool("once", false, "Dispatch due reminders once and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if *once {
		a.Center.RequestAuthorization(ctx)
		select {
		case <-a.Center.AuthorizationDone():
		case <-ctx.Done():
			return ctx.Err()
		}
		n, err := a.Center.Dispatch(ctx)
		fmt.Printf("Delivered %d reminder(s).\n", n)
		return err
	}

	pending, err := a.Center.Pending(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Watching %d pending reminder(s). (Ctrl+C to stop)\n", len(pending))
	return a.Center.Run(ctx)
}

// watchCommand prints the change feed until interrupted.
func watchCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad watch", flag.ContinueOnError)
	channel := fs.String("channel", cfg.FeedChannel, "Redis channel to watch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *channel == "" {
		*channel = feed.DefaultChannel
	}

	client, err := app.OpenRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Printf("Watching %s on %s. (Ctrl+C to stop)\n", *channel, cfg.RedisAddr)
	return feed.Subscribe(ctx, client, *channel, newLogger(cfg), func(msg feed.Message) {
		printFeedMessage(os.Stdout, msg)
	})
}

func printFeedMessage(w io.Writer, msg feed.Message) {
	open := 0
	for _, t := range msg.Tasks {
		if !t.IsCompleted {
			open++
		}
	}
	filter := "all"
	if msg.Filter != nil {
		filter = string(*msg.Filter)
	}
	fmt.Fprintf(w, "%d task(s), %d open (filter %s, sort %s)\n", len(msg.Tasks), open, filter, msg.Sort)
}

// tailCommand prints the TUI log file.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad tail", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(cfg.LogFile); errors.Is(err, os.ErrNotExist) {
		fmt.Printf("No log file at %s.\n", cfg.LogFile)
		return nil
	}
	if *follow {
		fmt.Printf("Tailing: %s (Ctrl+C to stop)\n\n", cfg.LogFile)
	}
	return logging.TailLog(ctx, os.Stdout, cfg.LogFile, *n, *follow)
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskpad config", flag.ContinueOnError)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Print(config.ExampleConfig())
		return nil
	}

	if len(cws.Files) == 0 {
		fmt.Println("# no config file found")
	}
	for _, f := range cws.Files {
		fmt.Printf("# read %s\n", f)
	}
	for _, key := range cws.Keys() {
		v, ok := cws.Value(key)
		if !ok {
			continue
		}
		fmt.Printf("%s = %#v  # %s\n", key, v, cws.Source(key))
	}
	for _, key := range cws.Unknown {
		fmt.Printf("# unknown key ignored: %s\n", key)
	}
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskpad version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskpad - a personal task list with reminders")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskpad [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                     Interactive task list (default command)")
	fmt.Fprintln(w, "  add <title...>          Add a task")
	fmt.Fprintln(w, "  ls                      List tasks with their positions")
	fmt.Fprintln(w, "  done <pos>              Toggle a task done")
	fmt.Fprintln(w, "  edit <pos> <title...>   Change a task title")
	fmt.Fprintln(w, "  rm <pos>...             Delete tasks (positions may be comma-separated)")
	fmt.Fprintln(w, "  mv -to <pos> <pos>...   Move tasks before the task at -to")
	fmt.Fprintln(w, "  remind                  Deliver reminders until interrupted")
	fmt.Fprintln(w, "  watch                   Print the Redis change feed")
	fmt.Fprintln(w, "  doctor                  Check config, storage and notifications")
	fmt.Fprintln(w, "  tail                    Print the TUI log file")
	fmt.Fprintln(w, "  config                  Show the effective configuration")
	fmt.Fprintln(w, "  version                 Show version information")
	fmt.Fprintln(w, "  help                    Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "View Options (ls, done, edit, rm, mv):")
	fmt.Fprintln(w, "  -category string")
	fmt.Fprintln(w, "        Only show tasks of this category (home|work|school|personal|shopping)")
	fmt.Fprintln(w, "  -sort string")
	fmt.Fprintln(w, "        Order of the list (created|priority|due|category)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -category string    Category (default personal)")
	fmt.Fprintln(w, "  -priority string    low|medium|high (default medium)")
	fmt.Fprintln(w, "  -due string         YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", HH:MM or +2h/+3d")
	fmt.Fprintln(w, "  -notes string       Free-form notes")
	fmt.Fprintln(w, "  -remind             Send a reminder at the due time")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Positions are 1-based and refer to the list printed by ls with the same view options.")
}
