package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points HOME and the working directory at temp dirs so tests
// never pick up the developer's real config files.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{"TASKTRACK_FILE", "TASKTRACK_SCHEMA", "TASKTRACK_LOG_LEVEL", "TASKTRACK_LOG_FORMAT", "TASKTRACK_LOG_TIMESTAMPS"} {
		t.Setenv(key, "")
	}
	chdir(t, work)
	return work
}

// chdir changes the working directory for the duration of the test,
// restoring the original directory in cleanup (t.Chdir needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("Chdir back failed: %v", err)
		}
	})
}

func loadTest(t *testing.T, args ...string) *Config {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, args)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	work := isolate(t)

	cfg := loadTest(t)

	if cfg.TaskFile != filepath.Join(work, DefaultTaskFile) {
		t.Errorf("TaskFile = %q, want default in working dir", cfg.TaskFile)
	}
	if cfg.SchemaFile != filepath.Join(work, DefaultSchemaFile) {
		t.Errorf("SchemaFile = %q, want default in working dir", cfg.SchemaFile)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}
	if cfg.LogTimestamps {
		t.Error("LogTimestamps should default to false")
	}
	if cfg.WorkDir != work {
		t.Errorf("WorkDir = %q, want %q", cfg.WorkDir, work)
	}
}

func TestLoadProjectConfigFile(t *testing.T) {
	work := isolate(t)

	content := "task_file = \"my-tasks.json\"\nlog_level = \"debug\"\n"
	if err := os.WriteFile(filepath.Join(work, "tasktrack.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := loadTest(t)

	if cfg.TaskFile != filepath.Join(work, "my-tasks.json") {
		t.Errorf("TaskFile = %q, want my-tasks.json from project config", cfg.TaskFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	// untouched keys keep their defaults
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, DefaultLogFormat)
	}
}

func TestLoadHiddenProjectConfigFile(t *testing.T) {
	work := isolate(t)

	if err := os.WriteFile(filepath.Join(work, ".tasktrack.toml"), []byte("log_level = \"warn\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := loadTest(t)
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn from .tasktrack.toml", cfg.LogLevel)
	}
}

func TestLoadUserConfigFile(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")

	userDir := filepath.Join(home, ".tasktrack")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(userDir, "tasktrack.toml"), []byte("log_format = \"json\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := loadTest(t)
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json from user config", cfg.LogFormat)
	}
}

func TestProjectOverridesUserConfig(t *testing.T) {
	work := isolate(t)
	home := os.Getenv("HOME")

	userDir := filepath.Join(home, ".tasktrack")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(userDir, "tasktrack.toml"), []byte("log_level = \"error\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(work, "tasktrack.toml"), []byte("log_level = \"debug\"\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := loadTest(t)
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want project config to win", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	work := isolate(t)
	t.Setenv("TASKTRACK_FILE", "env-tasks.json")
	t.Setenv("TASKTRACK_LOG_LEVEL", "debug")
	t.Setenv("TASKTRACK_LOG_TIMESTAMPS", "true")

	cfg := loadTest(t)

	if cfg.TaskFile != filepath.Join(work, "env-tasks.json") {
		t.Errorf("TaskFile = %q, want env override", cfg.TaskFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !cfg.LogTimestamps {
		t.Error("LogTimestamps should be true from env")
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	work := isolate(t)
	t.Setenv("TASKTRACK_FILE", "env-tasks.json")
	t.Setenv("TASKTRACK_LOG_LEVEL", "error")

	cfg := loadTest(t, "-file", "flag-tasks.json", "-log-level", "debug")

	if cfg.TaskFile != filepath.Join(work, "flag-tasks.json") {
		t.Errorf("TaskFile = %q, want flag override", cfg.TaskFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadBadConfigFile(t *testing.T) {
	work := isolate(t)

	if err := os.WriteFile(filepath.Join(work, "tasktrack.toml"), []byte("not valid toml ["), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := Load(fs, nil); err == nil {
		t.Error("Load should fail on invalid TOML")
	}
}

func TestExpandPath(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"tasks.json", "tasks.json"},
		{"~", home},
		{"~/tasks.json", filepath.Join(home, "tasks.json")},
		{"/abs/tasks.json", "/abs/tasks.json"},
	}

	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExpandPathEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("TASK_DIR", "/data/tasks")

	got := expandPath("$TASK_DIR/tasks.json")
	if got != "/data/tasks/tasks.json" {
		t.Errorf("expandPath = %q, want env expansion", got)
	}
}

func TestBoolFromString(t *testing.T) {
	trues := []string{"1", "true", "TRUE", "yes", "on", " true "}
	for _, s := range trues {
		if !boolFromString(s) {
			t.Errorf("boolFromString(%q) = false, want true", s)
		}
	}
	falses := []string{"", "0", "false", "no", "off", "maybe"}
	for _, s := range falses {
		if boolFromString(s) {
			t.Errorf("boolFromString(%q) = true, want false", s)
		}
	}
}

func TestExampleConfigIsDocumented(t *testing.T) {
	example := ExampleConfig()
	for _, key := range []string{"task_file", "schema_file", "log_level", "log_format"} {
		if !strings.Contains(example, key) {
			t.Errorf("example config should mention %s", key)
		}
	}
}
