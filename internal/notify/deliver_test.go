package notify

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "notifier.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewCommandDeliverer(t *testing.T) {
	d := NewCommandDeliverer("notify-send -u critical")
	if d.Command != "notify-send" {
		t.Errorf("Command = %q", d.Command)
	}
	if strings.Join(d.Args, " ") != "-u critical" {
		t.Errorf("Args = %v", d.Args)
	}

	d = NewCommandDeliverer("   ")
	if d.Command != DefaultCommand || len(d.Args) != 0 {
		t.Errorf("blank command line = %+v", d)
	}
}

func TestCommandDelivererInvoke(t *testing.T) {
	req := Request{ID: "t1", Title: ReminderTitle, Body: "Pay rent"}

	t.Run("passes title and body as arguments", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "args.txt")
		script := writeScript(t, `printf '%s|' "$@" > "`+out+`"`)

		d := &CommandDeliverer{Command: script, Args: []string{"-u", "low"}}
		result, err := d.Invoke(context.Background(), req)
		if err != nil {
			t.Fatalf("Invoke failed: %v", err)
		}
		if !result.Ran || result.ExitCode != 0 {
			t.Errorf("unexpected result %+v", result)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if got := string(data); got != "-u|low|Task Reminder|Pay rent|" {
			t.Errorf("notifier saw %q", got)
		}
	})

	t.Run("non-zero exit is an error", func(t *testing.T) {
		script := writeScript(t, "echo 'no bus' >&2\nexit 42")
		d := &CommandDeliverer{Command: script}
		result, err := d.Invoke(context.Background(), req)
		if err == nil {
			t.Fatal("expected error")
		}
		if result.ExitCode != 42 {
			t.Errorf("ExitCode = %d, want 42", result.ExitCode)
		}
		if !strings.Contains(err.Error(), "no bus") {
			t.Errorf("error should include output: %v", err)
		}
	})

	t.Run("timeout kills the notifier", func(t *testing.T) {
		script := writeScript(t, "exec sleep 5")
		d := &CommandDeliverer{Command: script, Timeout: 50 * time.Millisecond}
		start := time.Now()
		if err := d.Deliver(context.Background(), req); err == nil {
			t.Error("expected timeout error")
		}
		if time.Since(start) > 3*time.Second {
			t.Error("timeout was not applied")
		}
	})

	t.Run("empty command does nothing", func(t *testing.T) {
		result, err := (&CommandDeliverer{}).Invoke(context.Background(), req)
		if err != nil || result.Ran {
			t.Errorf("Invoke = %+v, %v", result, err)
		}
	})
}

func TestCommandDelivererAuthorize(t *testing.T) {
	script := writeScript(t, "exit 0")
	if err := (&CommandDeliverer{Command: script}).Authorize(context.Background()); err != nil {
		t.Errorf("Authorize existing command: %v", err)
	}
	if err := (&CommandDeliverer{Command: "taskpad-no-such-notifier"}).Authorize(context.Background()); err == nil {
		t.Error("expected error for missing command")
	}
	if err := (&CommandDeliverer{}).Authorize(context.Background()); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestTee(t *testing.T) {
	ctx := context.Background()
	a, b := &recorder{}, &recorder{err: errors.New("b failed")}
	d := Tee(a, nil, b)

	err := d.Deliver(ctx, Request{ID: "x"})
	if err == nil || !strings.Contains(err.Error(), "b failed") {
		t.Errorf("Deliver err = %v", err)
	}
	if len(a.delivered()) != 1 || len(b.delivered()) != 1 {
		t.Error("every member should receive the reminder")
	}

	t.Run("authorized when any member is", func(t *testing.T) {
		auth := d.(Authorizer)
		if err := auth.Authorize(ctx); err != nil {
			t.Errorf("Authorize = %v", err)
		}
		denied := Tee(&denyingDeliverer{}).(Authorizer)
		if err := denied.Authorize(ctx); err == nil {
			t.Error("expected denial when every member refuses")
		}
		mixed := Tee(&denyingDeliverer{}, &recorder{}).(Authorizer)
		if err := mixed.Authorize(ctx); err != nil {
			t.Errorf("mixed Authorize = %v", err)
		}
		if err := Tee().(Authorizer).Authorize(ctx); err == nil {
			t.Error("empty tee should not authorize")
		}
	})
}

func TestLogDeliverer(t *testing.T) {
	if err := (LogDeliverer{}).Deliver(context.Background(), Request{ID: "x", Title: ReminderTitle}); err != nil {
		t.Errorf("LogDeliverer.Deliver = %v", err)
	}
}

func TestExitCodeFromError(t *testing.T) {
	if code := exitCodeFromError(nil); code != 0 {
		t.Errorf("nil error: got %d", code)
	}
	if code := exitCodeFromError(&os.PathError{Err: exec.ErrNotFound}); code != -1 {
		t.Errorf("path error: got %d", code)
	}
	if err := exec.Command("sh", "-c", "exit 3").Run(); err != nil {
		if code := exitCodeFromError(err); code != 3 {
			t.Errorf("exit error: got %d", code)
		}
	}
}
