package task

import _ "embed"

// SchemaJSON is the bundled JSON Schema for the task file. It is written
// out by `tasktrack init` and consumed by `tasktrack doctor`.
//
//go:embed tasks.schema.json
var SchemaJSON []byte
