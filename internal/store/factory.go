package store

import (
	"context"
	"fmt"

	"joinsync/internal/config"
	"joinsync/internal/store/mongostore"
	"joinsync/internal/store/sqlstore"
)

func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case config.DriverPostgres:
		return sqlstore.OpenPostgres(cfg.DatabaseURL)
	case config.DriverSQLite:
		return sqlstore.OpenSQLite(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}
