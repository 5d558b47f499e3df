package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/voltcert/certsync/internal/report"
)

// openStore builds the configured store backend.
func openStore(ctx context.Context) (report.Store, error) {
	if err := cfg.Validate("cli"); err != nil {
		return nil, err
	}

	switch cfg.Store.Driver {
	case "postgres":
		return report.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite":
		return report.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
