package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultCommand is the notifier used when none is configured.
const DefaultCommand = "notify-send"

// Deliverer shows a reminder to the user.
type Deliverer interface {
	Deliver(ctx context.Context, req Request) error
}

// Authorizer is implemented by deliverers that can tell up front whether
// delivery is possible.
type Authorizer interface {
	Authorize(ctx context.Context) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, req Request) error

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// LogDeliverer writes reminders to a logger.
type LogDeliverer struct {
	Logger *log.Logger
}

// Deliver logs req at info level.
func (d LogDeliverer) Deliver(_ context.Context, req Request) error {
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Info(req.Title, "task_id", req.ID, "body", req.Body, "fire_at", req.FireAt.Format(time.RFC3339))
	return nil
}

// Result describes one notifier command invocation.
type Result struct {
	Ran      bool
	ExitCode int
	Output   string
	Duration time.Duration
}

// CommandDeliverer runs an external notifier with the title and body as
// its last two arguments.
type CommandDeliverer struct {
	Command string
	Args    []string
	WorkDir string
	Timeout time.Duration
}

// NewCommandDeliverer splits a configured command line such as
// "notify-send -u critical" into the program and its leading arguments.
func NewCommandDeliverer(commandLine string) *CommandDeliverer {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		fields = []string{DefaultCommand}
	}
	return &CommandDeliverer{
		Command: fields[0],
		Args:    fields[1:],
		Timeout: 10 * time.Second,
	}
}

// Authorize succeeds when the command can be found.
func (d *CommandDeliverer) Authorize(context.Context) error {
	if strings.TrimSpace(d.Command) == "" {
		return errors.New("no notifier command configured")
	}
	if _, err := exec.LookPath(d.Command); err != nil {
		return fmt.Errorf("notifier %q: %w", d.Command, err)
	}
	return nil
}

// Deliver runs the command and discards the Result.
func (d *CommandDeliverer) Deliver(ctx context.Context, req Request) error {
	_, err := d.Invoke(ctx, req)
	return err
}

// Invoke runs the notifier command for req.
func (d *CommandDeliverer) Invoke(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(d.Command) == "" {
		return Result{}, nil
	}

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	args := append(append([]string(nil), d.Args...), req.Title, req.Body)
	cmd := exec.CommandContext(ctx, d.Command, args...)
	if d.WorkDir != "" {
		cmd.Dir = d.WorkDir
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	result := Result{
		Ran:      true,
		ExitCode: exitCodeFromError(err),
		Output:   strings.TrimSpace(out.String()),
		Duration: time.Since(start),
	}
	if err != nil {
		if result.Output != "" {
			return result, fmt.Errorf("notifier %s: %w: %s", d.Command, err, result.Output)
		}
		return result, fmt.Errorf("notifier %s: %w", d.Command, err)
	}
	return result, nil
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

type tee []Deliverer

// Tee delivers every reminder to each of ds. It is authorized when at least
// one member is.
func Tee(ds ...Deliverer) Deliverer {
	out := make(tee, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

func (t tee) Deliver(ctx context.Context, req Request) error {
	var errs []error
	for _, d := range t {
		if err := d.Deliver(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) Authorize(ctx context.Context) error {
	if len(t) == 0 {
		return errors.New("no deliverers")
	}
	var errs []error
	for _, d := range t {
		a, ok := d.(Authorizer)
		if !ok {
			return nil
		}
		err := a.Authorize(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
