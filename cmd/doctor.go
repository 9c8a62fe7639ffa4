package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nibzard/taskpad/internal/app"
	"github.com/nibzard/taskpad/internal/config"
	"github.com/nibzard/taskpad/internal/datadir"
	"github.com/nibzard/taskpad/internal/kv"
	"github.com/nibzard/taskpad/internal/notify"
	"github.com/nibzard/taskpad/internal/persistence"
	"github.com/nibzard/taskpad/internal/task"
)

// authTimeout bounds the wait for the notifier authorization check.
const authTimeout = 5 * time.Second

// doctorCommand checks the configuration, the storage backend, the stored
// task list and the reminder notifier.
func doctorCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskpad doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Println("taskpad doctor")
	fmt.Println("==============")
	fmt.Println()

	allOK := true

	fmt.Println("Config:")
	if len(cws.Files) == 0 {
		fmt.Println("  ⚠️  No config file found (using defaults)")
	}
	for _, f := range cws.Files {
		fmt.Printf("  ✅ Read %s\n", f)
	}
	for _, key := range cws.Unknown {
		fmt.Printf("  ⚠️  Unknown key ignored: %s\n", key)
	}
	fmt.Printf("  ✅ Backend: %s (%s)\n", cfg.Backend, cws.Source("backend"))
	if *verbose {
		for _, key := range cws.Keys() {
			if v, ok := cws.Value(key); ok {
				fmt.Printf("     %s = %v (%s)\n", key, v, cws.Source(key))
			}
		}
	}
	fmt.Println()

	fmt.Printf("Storage: %s\n", describeBackend(cfg))
	kvStore, err := app.OpenKV(ctx, cfg)
	if err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		fmt.Println()
		fmt.Println("⚠️  Some checks failed. taskpad may not function correctly.")
		return fmt.Errorf("doctor checks failed")
	}
	defer kvStore.Close()
	fmt.Println("  ✅ OK")

	repo := persistence.NewRepository(kvStore)
	data, found, err := repo.Raw(ctx)
	switch {
	case err != nil:
		fmt.Printf("  ❌ Read error: %v\n", err)
		allOK = false
	case !found:
		fmt.Println("  ⚠️  No tasks stored yet")
	default:
		if err := task.Validate(data); err != nil {
			fmt.Println("  ❌ Stored task list is invalid (it will load as empty):")
			var schemaErr *task.SchemaError
			if errors.As(err, &schemaErr) {
				for _, e := range schemaErr.Errors {
					fmt.Printf("     - %v\n", e)
				}
			} else {
				fmt.Printf("     - %v\n", err)
			}
			allOK = false
		} else {
			tasks, _ := task.Decode(data)
			fmt.Printf("  ✅ %d task(s), %d bytes\n", len(tasks), len(data))
		}
	}
	fmt.Println()

	fmt.Println("Reminders:")
	center := notify.NewCenter(kvStore, notifierFor(cfg), notify.WithEnabled(cfg.Notifications))
	if !cfg.Notifications {
		fmt.Println("  ⚠️  Disabled in config")
	} else {
		if cfg.NotifyCommand == "" {
			fmt.Println("  ⚠️  No notify command, reminders are only logged")
		} else {
			cmd := notify.NewCommandDeliverer(cfg.NotifyCommand)
			_ = checkBinary("notify command", cmd.Command, false)
		}
		authCtx, cancel := context.WithTimeout(ctx, authTimeout)
		center.RequestAuthorization(authCtx)
		select {
		case <-center.AuthorizationDone():
		case <-authCtx.Done():
		}
		cancel()
		switch state := center.Authorization(); state {
		case notify.AuthGranted:
			fmt.Println("  ✅ Authorization: granted")
		default:
			fmt.Printf("  ⚠️  Authorization: %s\n", state)
		}
	}
	pending, err := center.Pending(ctx)
	if err != nil {
		fmt.Printf("  ❌ Pending reminders: %v\n", err)
		allOK = false
	} else {
		fmt.Printf("  ✅ Pending reminders: %d\n", len(pending))
		if *verbose {
			for _, r := range pending {
				fmt.Printf("     - %s at %s: %s\n", r.ID, r.FireAt.Local().Format("2006-01-02 15:04"), r.Body)
			}
		}
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. taskpad may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

func describeBackend(cfg *config.Config) string {
	switch cfg.Backend {
	case kv.BackendFile:
		return "file in " + datadir.StorePath(cfg.DataDir)
	case kv.BackendSQLite:
		return "sqlite at " + cfg.SQLitePath
	case kv.BackendRedis:
		return fmt.Sprintf("redis at %s db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	return cfg.Backend
}

// notifierFor returns the deliverer the reminder center would use.
func notifierFor(cfg *config.Config) notify.Deliverer {
	if cfg.NotifyCommand == "" {
		return notify.LogDeliverer{}
	}
	return notify.NewCommandDeliverer(cfg.NotifyCommand)
}

func checkBinary(label, binary string, required bool) bool {
	fmt.Printf("  %s: %s\n", label, binary)
	if strings.TrimSpace(binary) == "" {
		if required {
			fmt.Println("  ❌ Not configured")
			return false
		}
		fmt.Println("  ⚠️  Not configured")
		return true
	}
	if info, err := os.Stat(binary); err == nil {
		if info.IsDir() || !isExecutablePath(binary, info) {
			if required {
				fmt.Println("  ❌ Not executable")
				return false
			}
			fmt.Println("  ⚠️  Not executable")
			return true
		}
		fmt.Println("  ✅ OK")
		return true
	}

	resolved, err := exec.LookPath(binary)
	if err == nil {
		fmt.Printf("  ✅ OK (found in PATH: %s)\n", resolved)
		return true
	}
	if required {
		fmt.Printf("  ❌ Not found: %v\n", err)
		return false
	}
	fmt.Printf("  ⚠️  Not found: %v\n", err)
	return true
}

func isExecutablePath(path string, info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd" || ext == ".com"
	}
	return info.Mode().Perm()&0o111 != 0
}
