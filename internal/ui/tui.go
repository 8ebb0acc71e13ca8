// Package ui provides an optional read-only terminal dashboard.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tasktrack/tasktrack-go/internal/task"
)

// RunTUI starts the task dashboard against the given task file. It only
// reads the file; all mutations stay on the CLI surface.
func RunTUI(ctx context.Context, path string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(path)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	path         string
	loadErr      error
	tasks        []task.Task
	filter       task.Status // Filter by status
	showHelp     bool        // Show help screen
	tickInterval time.Duration
}

type tickMsg time.Time

func newTUIModel(path string) *tuiModel {
	return &tuiModel{
		path:         path,
		tickInterval: time.Second,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "1":
			m.filter = task.StatusTodo
			return m, nil
		case "2":
			m.filter = task.StatusInProgress
			return m, nil
		case "3":
			m.filter = task.StatusDone
			return m, nil
		case "0":
			m.filter = ""
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s (0 to clear)\n\n", m.filter)
	}

	if m.loadErr != nil {
		b.WriteString("Error loading task file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	writeOverview(&b, countByStatus(m.tasks))
	writeTasks(&b, task.Filter(m.tasks, m.filter))
	fmt.Fprintf(&b, "Task File\n\n  %s\n\n", m.path)
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	tasks, err := task.NewStore(m.path).Load()
	if err != nil {
		m.loadErr = err
		m.tasks = nil
		return
	}
	m.loadErr = nil
	m.tasks = tasks
}

// countByStatus tallies tasks per status.
func countByStatus(tasks []task.Task) map[task.Status]int {
	counts := map[task.Status]int{
		task.StatusTodo:       0,
		task.StatusInProgress: 0,
		task.StatusDone:       0,
	}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

func writeTitle(b *strings.Builder) {
	title := "Tasktrack"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, counts map[task.Status]int) {
	b.WriteString("Overview\n\n")
	fmt.Fprintf(b, "  Todo: %d  In Progress: %d  Done: %d\n\n",
		counts[task.StatusTodo],
		counts[task.StatusInProgress],
		counts[task.StatusDone],
	)
}

func writeTasks(b *strings.Builder, tasks []task.Task) {
	b.WriteString("Tasks\n\n")
	if len(tasks) == 0 {
		b.WriteString("  No tasks found.\n\n")
		return
	}
	for i := range tasks {
		b.WriteString(formatTask(&tasks[i]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  1            Filter by todo\n")
	b.WriteString("  2            Filter by in-progress\n")
	b.WriteString("  3            Filter by done\n")
	b.WriteString("  0            Clear filter\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	fmt.Fprintf(b, "Press h for help | q to quit | Refreshing every %s\n", interval)
}

func formatTask(t *task.Task) string {
	statusIcon := " "
	switch t.Status {
	case task.StatusInProgress:
		statusIcon = ">"
	case task.StatusDone:
		statusIcon = "x"
	}

	description := t.Description
	if runes := []rune(description); len(runes) > 60 {
		description = string(runes[:57]) + "..."
	}
	return fmt.Sprintf("  %s [%d] %-12s %s", statusIcon, t.ID, t.Status, description)
}

// IsTTY returns true if the writer is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, _ := f.Stat()
	return (info.Mode() & os.ModeCharDevice) != 0
}
