package contactd

import (
	"flag"
	"fmt"

	"github.com/ecardhq/contactd/pkg/models"
)

// Parse parses command line arguments into the command to execute. All
// other configuration comes from the environment, see [Config].
func Parse(args []string) (Command, error) {
	flagSet := flag.NewFlagSet("contactd", flag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	remaining := flagSet.Args()
	if len(remaining) == 0 {
		return nil, fmt.Errorf(`subcommand required

Usage: contactd <command>

Commands:
  run                 Start the HTTP server
  migrate             Run schema migrations on both stores
  ingest <batch-id>   Parse one uploaded batch file into both stores

Configuration is read from the environment (POSTGRES_DSN, SURREALDB_URL,
SURREALDB_NS, SURREALDB_DB, SURREALDB_USER, SURREALDB_PASS, PORT,
STORAGE_MODE, S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET,
LOCAL_STORAGE_PATH, LOG_LEVEL)`)
	}

	switch remaining[0] {
	case "run":
		return &RunCommand{}, nil
	case "migrate":
		return &MigrateCommand{}, nil
	case "ingest":
		if len(remaining) < 2 {
			return nil, fmt.Errorf("ingest requires a batch id argument")
		}
		batchID, err := models.ParseBatchID(remaining[1])
		if err != nil {
			return nil, fmt.Errorf("invalid batch id %q: %w", remaining[1], err)
		}
		return &IngestCommand{BatchID: batchID}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s\n\nValid commands: run, migrate, ingest", remaining[0])
	}
}
