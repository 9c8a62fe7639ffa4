// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/taskpad/internal/datadir"
	"github.com/nibzard/taskpad/internal/feed"
	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/persistence"
	"github.com/nibzard/taskpad/internal/task"
)

func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
	}()

	runErr := fn()
	_ = w.Close()

	output, readErr := io.ReadAll(r)
	_ = r.Close()
	if readErr != nil {
		t.Fatalf("ReadAll() error = %v", readErr)
	}

	return string(output), runErr
}

// testCLI runs taskpad against a file store in a temp data dir.
type testCLI struct {
	t       *testing.T
	dataDir string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Chdir(t.TempDir())
	return &testCLI{t: t, dataDir: filepath.Join(home, "data")}
}

func (c *testCLI) run(args ...string) (string, error) {
	c.t.Helper()
	global := []string{
		"-backend", "file",
		"-data-dir", c.dataDir,
		"-notify-command", "",
		"-feed-channel", "",
		"-sort", "priority",
		"-log-level", "error",
	}
	return captureStdout(c.t, func() error {
		return Run(context.Background(), append(global, args...))
	})
}

func (c *testCLI) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("Run(%v) error = %v\noutput:\n%s", args, err, out)
	}
	return out
}

// TestRun tests the main Run function.
func TestRun(t *testing.T) {
	t.Run("shows help with --help flag", func(t *testing.T) {
		newTestCLI(t)
		out, err := captureStdout(t, func() error { return Run(context.Background(), []string{"--help"}) })
		if err != nil {
			t.Errorf("expected no error with --help, got %v", err)
		}
		if !strings.Contains(out, "Commands:") || !strings.Contains(out, "-data-dir") {
			t.Errorf("usage missing commands or flags:\n%s", out)
		}
	})

	t.Run("shows version with -v flag", func(t *testing.T) {
		newTestCLI(t)
		out, err := captureStdout(t, func() error { return Run(context.Background(), []string{"-v"}) })
		if err != nil {
			t.Errorf("expected no error with -v, got %v", err)
		}
		if !strings.Contains(out, "taskpad version dev") {
			t.Errorf("version output = %q", out)
		}
	})

	t.Run("shows help with help command", func(t *testing.T) {
		c := newTestCLI(t)
		out := c.mustRun("help")
		if !strings.Contains(out, "Usage:") {
			t.Errorf("help output = %q", out)
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		c := newTestCLI(t)
		_, err := c.run("unknown-command")
		if err == nil || !strings.Contains(err.Error(), "unknown command") {
			t.Errorf("expected 'unknown command' error, got %v", err)
		}
	})

	t.Run("invalid config is reported", func(t *testing.T) {
		newTestCLI(t)
		err := Run(context.Background(), []string{"-backend", "postgres", "ls"})
		if err == nil || !strings.Contains(err.Error(), "loading config") {
			t.Errorf("expected config error, got %v", err)
		}
	})
}

func TestTaskCommands(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun("add", "-category", "shopping", "-priority", "high", "-notes", "2 litres", "Buy", "milk")
	if !strings.Contains(out, `Added "Buy milk"`) {
		t.Errorf("add output = %q", out)
	}
	c.mustRun("add", "-category", "work", "Write report")

	out = c.mustRun("ls")
	if !strings.Contains(out, "1. [ ] Buy milk (shopping, high)") {
		t.Errorf("ls missing first task:\n%s", out)
	}
	if !strings.Contains(out, "2. [ ] Write report (work, medium)") {
		t.Errorf("ls missing second task:\n%s", out)
	}

	out = c.mustRun("ls", "-category", "work", "-v")
	if strings.Contains(out, "Buy milk") || !strings.Contains(out, "1. [ ] Write report") {
		t.Errorf("filtered ls:\n%s", out)
	}
	if !strings.Contains(out, "ID: ") {
		t.Errorf("verbose ls misses the ID:\n%s", out)
	}

	out = c.mustRun("done", "-category", "work", "1")
	if !strings.Contains(out, `Completed "Write report"`) {
		t.Errorf("done output = %q", out)
	}
	if out := c.mustRun("ls"); !strings.Contains(out, "2. [x] Write report") {
		t.Errorf("ls after done:\n%s", out)
	}
	if out := c.mustRun("done", "2"); !strings.Contains(out, `Reopened "Write report"`) {
		t.Errorf("second done output = %q", out)
	}

	c.mustRun("edit", "1", "Buy", "oat", "milk")
	if out := c.mustRun("ls"); !strings.Contains(out, "Buy oat milk") {
		t.Errorf("ls after edit:\n%s", out)
	}

	out = c.mustRun("rm", "1", "2")
	if !strings.Contains(out, "Deleted 2 task(s)") {
		t.Errorf("rm output = %q", out)
	}
	if out := c.mustRun("ls"); !strings.Contains(out, "No tasks found.") {
		t.Errorf("ls after rm:\n%s", out)
	}
}

func TestMoveCommand(t *testing.T) {
	c := newTestCLI(t)
	for _, title := range []string{"a", "b", "c"} {
		c.mustRun("add", title)
	}

	c.mustRun("mv", "-to", "1", "3")
	out := c.mustRun("ls")
	ia, ib, ic := strings.Index(out, "] a"), strings.Index(out, "] b"), strings.Index(out, "] c")
	if !(ic < ia && ia < ib) {
		t.Errorf("want order c a b:\n%s", out)
	}

	c.mustRun("mv", "-to", "4", "1")
	out = c.mustRun("ls")
	ia, ib, ic = strings.Index(out, "] a"), strings.Index(out, "] b"), strings.Index(out, "] c")
	if !(ia < ib && ib < ic) {
		t.Errorf("want order a b c:\n%s", out)
	}

	if _, err := c.run("mv", "-to", "9", "1"); err == nil {
		t.Error("expected error for -to out of range")
	}
}

func TestTaskCommandErrors(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "only")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"add without title", []string{"add"}, "missing task title"},
		{"add bad category", []string{"add", "-category", "garden", "x"}, "invalid category"},
		{"add bad priority", []string{"add", "-priority", "urgent", "x"}, "invalid priority"},
		{"add bad due", []string{"add", "-due", "soon", "x"}, "invalid due date"},
		{"remind without due", []string{"add", "-remind", "x"}, "-due"},
		{"done without position", []string{"done"}, "missing task position"},
		{"done out of range", []string{"done", "2"}, "out of range"},
		{"rm bad position", []string{"rm", "one"}, "invalid position"},
		{"edit without title", []string{"edit", "1"}, "usage"},
		{"ls bad sort", []string{"ls", "-sort", "alpha"}, "invalid sort"},
		{"ls extra args", []string{"ls", "extra"}, "unexpected arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run(tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}

	if out := c.mustRun("ls"); strings.Count(out, "[ ]") != 1 {
		t.Errorf("failed commands changed the list:\n%s", out)
	}
}

func TestAddWithReminderSchedulesIt(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("add", "-due", "+2h", "-remind", "Call mom")

	out := c.mustRun("ls")
	if !strings.Contains(out, "⏰") {
		t.Errorf("reminder marker missing:\n%s", out)
	}

	out, err := c.run("doctor", "-v")
	if err != nil {
		t.Fatalf("doctor error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Pending reminders: 1") || !strings.Contains(out, "Call mom") {
		t.Errorf("doctor output:\n%s", out)
	}
}

func TestDoctorCommand(t *testing.T) {
	t.Run("empty store passes", func(t *testing.T) {
		c := newTestCLI(t)
		out, err := c.run("doctor")
		if err != nil {
			t.Fatalf("doctor error = %v\n%s", err, out)
		}
		if !strings.Contains(out, "No tasks stored yet") || !strings.Contains(out, "All checks passed") {
			t.Errorf("doctor output:\n%s", out)
		}
	})

	t.Run("invalid blob fails", func(t *testing.T) {
		c := newTestCLI(t)
		fs, err := kv.NewFile(datadir.StorePath(c.dataDir))
		if err != nil {
			t.Fatal(err)
		}
		repo := persistence.NewRepository(fs)
		if err := fs.Set(context.Background(), repo.Key(), []byte(`[{"id":"x"}]`)); err != nil {
			t.Fatal(err)
		}
		fs.Close()

		out, err := c.run("doctor")
		if err == nil || !strings.Contains(err.Error(), "doctor checks failed") {
			t.Errorf("expected doctor failure, got %v", err)
		}
		if !strings.Contains(out, "Stored task list is invalid") {
			t.Errorf("doctor output:\n%s", out)
		}
	})

	t.Run("notifications disabled", func(t *testing.T) {
		c := newTestCLI(t)
		out := c.mustRun("-notifications=false", "doctor")
		if !strings.Contains(out, "Disabled in config") {
			t.Errorf("doctor output:\n%s", out)
		}
	})
}

func TestConfigCommand(t *testing.T) {
	c := newTestCLI(t)
	if err := os.WriteFile("taskpad.toml", []byte("log_format = \"json\"\ncolour = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := c.mustRun("config")
	for _, want := range []string{
		`backend = "file"  # flag`,
		`log_format = "json"  # project config`,
		`reminder_poll_seconds = 5  # default`,
		"# read taskpad.toml",
		"# unknown key ignored: colour",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}

	out = c.mustRun("config", "-example")
	if !strings.Contains(out, "reminder_grace_seconds = 60") {
		t.Errorf("example config:\n%s", out)
	}
}

func TestTailCommand(t *testing.T) {
	c := newTestCLI(t)

	out := c.mustRun("tail")
	if !strings.Contains(out, "No log file at") {
		t.Errorf("tail output = %q", out)
	}

	logPath := datadir.LogPath(c.dataDir)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out = c.mustRun("tail", "-n", "2")
	if out != "second\nthird\n" {
		t.Errorf("tail -n 2 = %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := captureStdout(t, versionCommand)
	if err != nil {
		t.Errorf("versionCommand() returned error: %v", err)
	}
	if out != "taskpad version "+Version+"\n" {
		t.Errorf("versionCommand() output = %q", out)
	}
}

func TestParsePositions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		n       int
		want    []int
		wantErr bool
	}{
		{"single", []string{"1"}, 3, []int{0}, false},
		{"several", []string{"3", " 1 "}, 3, []int{2, 0}, false},
		{"comma list", []string{"1,3", "2"}, 3, []int{0, 2, 1}, false},
		{"zero", []string{"0"}, 3, nil, true},
		{"past end", []string{"4"}, 3, nil, true},
		{"not a number", []string{"x"}, 3, nil, true},
		{"none", nil, 3, nil, true},
		{"only commas", []string{","}, 3, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePositions(tt.args, tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePositions() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parsePositions() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parsePositions() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPrintTaskList(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	tasks := []task.Task{
		{ID: "1", Title: "Late", Category: task.CategoryHome, Priority: task.PriorityLow, DueDate: &past, ReminderEnabled: true},
		{ID: "2", Title: "Done late", Category: task.CategoryWork, Priority: task.PriorityHigh, DueDate: &past, IsCompleted: true},
	}

	var buf bytes.Buffer
	printTaskList(&buf, tasks, now, false)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[ ] Late (home, low)") || !strings.HasSuffix(lines[0], "⏰ OVERDUE") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "[x] Done late (work, high)") || strings.Contains(lines[1], "OVERDUE") {
		t.Errorf("line 2 = %q", lines[1])
	}

	buf.Reset()
	printTaskList(&buf, nil, now, false)
	if buf.String() != "No tasks found.\n" {
		t.Errorf("empty list = %q", buf.String())
	}
}

func TestPrintFeedMessage(t *testing.T) {
	work := task.CategoryWork
	msg := feed.Message{
		Tasks:  []task.Task{{ID: "1"}, {ID: "2", IsCompleted: true}},
		Filter: &work,
		Sort:   "due",
	}
	var buf bytes.Buffer
	printFeedMessage(&buf, msg)
	if got := buf.String(); got != "2 task(s), 1 open (filter work, sort due)\n" {
		t.Errorf("printFeedMessage() = %q", got)
	}
}
