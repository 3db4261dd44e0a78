package contactd

import "github.com/ecardhq/contactd/pkg/models"

// Command is one of the application's entry operations, produced by Parse
// and dispatched by Main.
type Command interface {
	// Name returns the CLI sub-command this command was parsed from.
	Name() string
}

// RunCommand starts the HTTP server.
type RunCommand struct{}

func (c *RunCommand) Name() string { return "run" }

// MigrateCommand brings both store schemas up to date and exits.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

// IngestCommand parses one uploaded batch file into both stores and exits.
// The server enqueues ingestion in-process; this command exists so a batch
// can also be (re)processed from the command line.
type IngestCommand struct {
	BatchID models.BatchID
}

func (c *IngestCommand) Name() string { return "ingest" }
