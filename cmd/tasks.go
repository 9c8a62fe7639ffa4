package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/taskpad/internal/config"
	"github.com/nibzard/taskpad/internal/store"
	"github.com/nibzard/taskpad/internal/task"
	"github.com/nibzard/taskpad/internal/utils"
)

// viewFlags selects the filtered view that positions refer to.
type viewFlags struct {
	category string
	sort     string
}

func (v *viewFlags) register(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&v.category, "category", "", "Only show tasks of this category (home|work|school|personal|shopping)")
	fs.StringVar(&v.sort, "sort", cfg.Sort, "Order of the list (created|priority|due|category)")
}

// apply sets the store's filter and sort from the flags.
func (v *viewFlags) apply(st *store.Store) error {
	if v.sort != "" {
		opt, err := store.ParseSortOption(v.sort)
		if err != nil {
			return err
		}
		st.SetSortOption(opt)
	}
	if v.category != "" {
		c, err := task.ParseCategory(v.category)
		if err != nil {
			return err
		}
		st.SetCategoryFilter(&c)
	}
	return nil
}

// parsePositions converts 1-based positions to view indexes. Each argument
// may hold a comma-separated list.
func parsePositions(args []string, viewLen int) ([]int, error) {
	var out []int
	for _, arg := range args {
		for _, part := range utils.SplitAndTrim(arg, ",") {
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid position %q", part)
			}
			if n < 1 || n > viewLen {
				return nil, fmt.Errorf("position %d out of range (1-%d)", n, viewLen)
			}
			out = append(out, n-1)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("missing task position")
	}
	return out, nil
}

// addCommand adds a task from flags and the remaining words as title.
func addCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad add", flag.ContinueOnError)
	category := fs.String("category", string(task.DefaultCategory), "Category (home|work|school|personal|shopping)")
	priority := fs.String("priority", task.DefaultPriority.String(), "Priority (low|medium|high)")
	due := fs.String("due", "", "Due date: YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", HH:MM, RFC 3339 or +2h/+3d")
	notes := fs.String("notes", "", "Notes")
	remind := fs.Bool("remind", false, "Send a reminder at the due time")
	if err := fs.Parse(args); err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return fmt.Errorf("missing task title")
	}
	c, err := task.ParseCategory(*category)
	if err != nil {
		return err
	}
	p, err := task.ParsePriority(*priority)
	if err != nil {
		return err
	}
	opts := []store.AddOption{store.WithPriority(p), store.WithReminder(*remind)}
	if *due != "" {
		d, err := utils.ParseDueDate(*due, time.Now())
		if err != nil {
			return err
		}
		opts = append(opts, store.WithDueDate(d))
	} else if *remind {
		return fmt.Errorf("-remind needs a -due date")
	}
	if n := strings.TrimSpace(*notes); n != "" {
		opts = append(opts, store.WithNotes(n))
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	t := a.Store.Add(ctx, title, c, opts...)
	fmt.Printf("Added %q (%s)\n", t.Title, t.ID)
	return nil
}

// lsCommand prints the filtered view with positions.
func lsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad ls", flag.ContinueOnError)
	var view viewFlags
	view.register(fs, cfg)
	verbose := fs.Bool("v", false, "Show notes, IDs and creation times")
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
	if err := view.apply(a.Store); err != nil {
		return err
	}

	printTaskList(os.Stdout, a.Store.FilteredTasks(), time.Now(), *verbose)
	return nil
}

// doneCommand toggles the completion of one task.
func doneCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad done", flag.ContinueOnError)
	var view viewFlags
	view.register(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := view.apply(a.Store); err != nil {
		return err
	}

	positions, err := parsePositions(fs.Args(), len(a.Store.FilteredTasks()))
	if err != nil {
		return err
	}
	t, _ := a.Store.At(positions[0])
	a.Store.Toggle(ctx, t.ID)
	if t.IsCompleted {
		fmt.Printf("Reopened %q\n", t.Title)
	} else {
		fmt.Printf("Completed %q\n", t.Title)
	}
	return nil
}

// editCommand replaces the title of one task.
func editCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad edit", flag.ContinueOnError)
	var view viewFlags
	view.register(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: taskpad edit <pos> <title...>")
	}
	title := strings.TrimSpace(strings.Join(fs.Args()[1:], " "))
	if title == "" {
		return fmt.Errorf("missing task title")
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := view.apply(a.Store); err != nil {
		return err
	}

	positions, err := parsePositions(fs.Args()[:1], len(a.Store.FilteredTasks()))
	if err != nil {
		return err
	}
	t, _ := a.Store.At(positions[0])
	a.Store.UpdateTitle(ctx, t.ID, title)
	fmt.Printf("Renamed %q to %q\n", t.Title, title)
	return nil
}

// rmCommand deletes tasks by position.
func rmCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad rm", flag.ContinueOnError)
	var view viewFlags
	view.register(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := view.apply(a.Store); err != nil {
		return err
	}

	positions, err := parsePositions(fs.Args(), len(a.Store.FilteredTasks()))
	if err != nil {
		return err
	}
	before := len(a.Store.Tasks())
	a.Store.Delete(ctx, positions...)
	fmt.Printf("Deleted %d task(s)\n", before-len(a.Store.Tasks()))
	return nil
}

// mvCommand moves tasks before the task at -to. A -to one past the end
// moves them to the end.
func mvCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskpad mv", flag.ContinueOnError)
	var view viewFlags
	view.register(fs, cfg)
	to := fs.Int("to", 0, "Position to move the tasks before")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := view.apply(a.Store); err != nil {
		return err
	}

	n := len(a.Store.FilteredTasks())
	positions, err := parsePositions(fs.Args(), n)
	if err != nil {
		return err
	}
	if *to < 1 || *to > n+1 {
		return fmt.Errorf("-to %d out of range (1-%d)", *to, n+1)
	}
	a.Store.Move(ctx, positions, *to-1)
	fmt.Printf("Moved %d task(s)\n", len(positions))
	return nil
}

// printTaskList prints tasks with their 1-based positions.
func printTaskList(w io.Writer, tasks []task.Task, now time.Time, verbose bool) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	for i, t := range tasks {
		printTask(w, i+1, t, now, verbose)
	}
}

// printTask prints a single task.
func printTask(w io.Writer, pos int, t task.Task, now time.Time, verbose bool) {
	check := "[ ]"
	if t.IsCompleted {
		check = "[x]"
	}
	line := fmt.Sprintf("%3d. %s %s (%s, %s)", pos, check, t.Title, t.Category, t.Priority)
	if t.DueDate != nil {
		line += " due " + t.DueDate.Local().Format("2006-01-02 15:04")
		if t.ReminderEnabled {
			line += " ⏰"
		}
		if t.IsOverdue(now) {
			line += " OVERDUE"
		}
	}
	fmt.Fprintln(w, line)

	if verbose {
		if t.Notes != "" {
			fmt.Fprintf(w, "       Notes: %s\n", t.Notes)
		}
		fmt.Fprintf(w, "       ID: %s  Created: %s\n", t.ID, t.CreatedAt.Local().Format(time.RFC3339))
	}
}
