// Package cmd implements the CLI command structure for tasktrack.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/tasktrack/tasktrack-go/internal/config"
	"github.com/tasktrack/tasktrack-go/internal/logging"
	"github.com/tasktrack/tasktrack-go/internal/task"
	"github.com/tasktrack/tasktrack-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasktrack CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasktrack", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
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

	logger := logging.NewFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps)

	remainingArgs := fs.Args()
	if len(remainingArgs) == 0 {
		printUsage(fs, os.Stderr)
		return fmt.Errorf("missing command")
	}
	subcommand := remainingArgs[0]
	remainingArgs = remainingArgs[1:]

	store := task.NewStore(cfg.TaskFile)

	switch subcommand {
	case "add":
		return addCommand(store, logger, remainingArgs)
	case "update":
		return updateCommand(store, logger, remainingArgs)
	case "delete":
		return deleteCommand(store, logger, remainingArgs)
	case "mark-in-progress":
		return markCommand(store, logger, task.StatusInProgress, remainingArgs)
	case "mark-done":
		return markCommand(store, logger, task.StatusDone, remainingArgs)
	case "list":
		return listCommand(store, logger, remainingArgs)
	case "init":
		return initCommand(cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
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

// addCommand creates a new task from a description.
func addCommand(store *task.Store, logger *log.Logger, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing task description for 'add' command")
	}
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}

	id, err := store.Add(args[0])
	if err != nil {
		return err
	}

	logger.Debug("task added", "id", id, "file", store.Path)
	fmt.Printf("Task added successfully (ID: %d)\n", id)
	return nil
}

// updateCommand replaces the description of an existing task.
func updateCommand(store *task.Store, logger *log.Logger, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing task ID or description for 'update' command")
	}
	if len(args) > 2 {
		return fmt.Errorf("unexpected arguments: %v", args[2:])
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := store.Update(id, args[1]); err != nil {
		return err
	}

	logger.Debug("task updated", "id", id)
	fmt.Printf("Task %d updated successfully\n", id)
	return nil
}

// deleteCommand removes a task by ID.
func deleteCommand(store *task.Store, logger *log.Logger, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing task ID for 'delete' command")
	}
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := store.Delete(id); err != nil {
		return err
	}

	logger.Debug("task deleted", "id", id)
	fmt.Printf("Task %d deleted successfully\n", id)
	return nil
}

// markCommand sets the status of a task.
func markCommand(store *task.Store, logger *log.Logger, status task.Status, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing task ID for 'mark-%s' command", shortStatus(status))
	}
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := store.SetStatus(id, status); err != nil {
		return err
	}

	logger.Debug("task status changed", "id", id, "status", status)
	fmt.Printf("Task %d marked as '%s' successfully\n", id, status)
	return nil
}

// listCommand prints tasks, optionally filtered by status.
func listCommand(store *task.Store, logger *log.Logger, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}

	var filter task.Status
	if len(args) == 1 {
		parsed, err := task.ParseStatus(args[0])
		if err != nil {
			return err
		}
		filter = parsed
	}

	tasks, err := store.List(filter)
	if err != nil {
		return err
	}
	logger.Debug("tasks loaded", "count", len(tasks), "filter", string(filter))

	if len(tasks) == 0 {
		if filter != "" {
			fmt.Printf("No tasks with status '%s' found.\n", filter)
		} else {
			fmt.Println("No tasks found.")
		}
		return nil
	}

	printTaskTable(os.Stdout, tasks)
	return nil
}

// initCommand creates the task file, schema file, and an example config.
// Existing files are left alone unless -force is given.
func initCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktrack init", flag.ContinueOnError)
	skipConfig := fs.Bool("skip-config", false, "Do not create tasktrack.toml")
	force := fs.Bool("force", false, "Overwrite existing files")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	writeIfMissing := func(path string, data []byte) error {
		if !*force {
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("Skipping %s (already exists)\n", path)
				return nil
			}
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Printf("Created %s\n", path)
		return nil
	}

	if err := writeIfMissing(cfg.TaskFile, []byte("[]\n")); err != nil {
		return err
	}
	if err := writeIfMissing(cfg.SchemaFile, task.SchemaJSON); err != nil {
		return err
	}
	if !*skipConfig {
		configPath := filepath.Join(cfg.WorkDir, "tasktrack.toml")
		if err := writeIfMissing(configPath, []byte(config.ExampleConfig())); err != nil {
			return err
		}
	}

	return nil
}

// doctorCommand checks the config, task file, and schema file.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasktrack doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fmt.Println("Tasktrack Doctor")
	fmt.Println("================")
	fmt.Println()

	allOK := true

	fmt.Printf("Working directory: %s\n", cfg.WorkDir)
	if _, err := os.Stat(cfg.WorkDir); err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	fmt.Printf("Task file: %s\n", cfg.TaskFile)
	info, err := os.Stat(cfg.TaskFile)
	switch {
	case os.IsNotExist(err):
		fmt.Println("  ⚠️  Not found (run 'tasktrack init' or 'tasktrack add')")
	case err != nil:
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	default:
		fmt.Println("  ✅ OK")
		tasks, loadErr := task.NewStore(cfg.TaskFile).Load()
		if loadErr != nil {
			fmt.Printf("  ❌ Load error: %v\n", loadErr)
			allOK = false
			break
		}
		result := task.Validate(tasks, task.ValidationOptions{SchemaPath: cfg.SchemaFile})
		for _, w := range result.Warnings {
			fmt.Printf("  ⚠️  %s\n", w)
		}
		if result.Valid {
			fmt.Println("  ✅ Valid")
		} else {
			fmt.Println("  ❌ Validation failed:")
			for _, e := range result.Errors {
				fmt.Printf("     - %v\n", e)
			}
			allOK = false
		}
		if *verbose {
			fmt.Printf("  Tasks: %d\n", len(tasks))
			for _, t := range tasks {
				fmt.Printf("    - [%s] %d: %s\n", t.Status, t.ID, t.Description)
			}
		}
	}
	fmt.Println()

	fmt.Printf("Schema file: %s\n", cfg.SchemaFile)
	if info, err := os.Stat(cfg.SchemaFile); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (run 'tasktrack init' to create it)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if info.IsDir() {
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// tuiCommand launches the read-only dashboard.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	return ui.RunTUI(ctx, cfg.TaskFile)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("tasktrack version %s\n", Version)
	return nil
}

// parseID parses a task id argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task ID %q: must be a positive number", arg)
	}
	return id, nil
}

func shortStatus(status task.Status) string {
	if status == task.StatusDone {
		return "done"
	}
	return "in-progress"
}

// printTaskTable prints tasks in the tabular listing format.
func printTaskTable(w io.Writer, tasks []task.Task) {
	fmt.Fprintf(w, "\n%-5s %-30s %-12s %-20s\n", "ID", "Description", "Status", "Created")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	for _, t := range tasks {
		description := t.Description
		if runes := []rune(description); len(runes) > 27 {
			description = string(runes[:27]) + "..."
		}
		fmt.Fprintf(w, "%-5d %-30s %-12s %-20s\n",
			t.ID,
			description,
			t.Status,
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Fprintln(w)
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasktrack - A JSON-backed task tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasktrack [options] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add \"description\"            Add a new task")
	fmt.Fprintln(w, "  update <id> \"description\"    Update a task's description")
	fmt.Fprintln(w, "  delete <id>                  Delete a task")
	fmt.Fprintln(w, "  mark-in-progress <id>        Mark a task as in-progress")
	fmt.Fprintln(w, "  mark-done <id>               Mark a task as done")
	fmt.Fprintln(w, "  list [todo|in-progress|done] List tasks, optionally by status")
	fmt.Fprintln(w, "  init                         Create task, schema, and config files")
	fmt.Fprintln(w, "  doctor                       Check config and task file validity")
	fmt.Fprintln(w, "  tui                          Launch the terminal dashboard")
	fmt.Fprintln(w, "  version                      Show version information")
	fmt.Fprintln(w, "  help                         Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
