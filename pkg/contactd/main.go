package contactd

import (
	"context"
	"fmt"
)

// Main is the application entry point, callable from tests as well as the
// binary. It parses the arguments, wires the application from environment
// configuration and executes the selected command. The context cancels the
// server on shutdown.
func Main(ctx context.Context, args []string) error {
	cmd, err := Parse(args)
	if err != nil {
		return err
	}

	config, err := LoadConfig()
	if err != nil {
		return err
	}

	app, err := New(config)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *RunCommand:
		return app.Run(ctx, c)
	case *MigrateCommand:
		return app.Migrate(ctx)
	case *IngestCommand:
		return app.ingestor.Run(ctx, c.BatchID)
	default:
		return fmt.Errorf("unhandled command %q", cmd.Name())
	}
}
