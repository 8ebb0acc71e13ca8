package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasktrack configuration file
# Values can be overridden by environment variables or CLI flags

# Task file (relative to the working directory)
task_file = "tasks.json"

# Schema file used by 'tasktrack doctor'
schema_file = "tasks.schema.json"

# Log level: debug, info, warn, error
log_level = "info"

# Log format: text, json, logfmt
log_format = "text"

# Show timestamps in log output
log_timestamps = false
`
}
