package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rss-digest/pkg/config"
)

// Open connects the storage driver named in cfg and prepares its schema or indexes.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("using in-memory store, nothing will be persisted")
		return NewMemoryStore(), nil

	case "postgres":
		client := NewPostgresClient(PostgresConfig{DSN: cfg.Database.DSN, MaxConns: cfg.Database.MaxConns})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		return preparePG(ctx, client.Pool(), logger)

	case "supabase":
		client := NewSupabaseClient(SupabaseConfig{
			DSN:        cfg.Supabase.ConnectionString,
			ProjectURL: cfg.Supabase.URL,
			APIKey:     cfg.Supabase.Key,
			Password:   cfg.Supabase.Password,
			Pool:       PostgresConfig{MaxConns: cfg.Database.MaxConns},
		})
		if err := client.Connect(ctx); err != nil {
			return nil, err
		}
		store, err := preparePG(ctx, client.Pool(), logger)
		if err != nil {
			return nil, err
		}
		return &supabaseStore{PGStore: store, client: client}, nil

	case "mongo":
		client := NewMongoClient(cfg.Database.MongoURI, cfg.Database.MongoDatabase)
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		store := NewMongoStore(client)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, err
		}
		logger.Info("connected to mongo", zap.String("database", cfg.Database.MongoDatabase))
		return store, nil
	}

	return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// supabaseStore adds the REST probe to the Postgres health check.
type supabaseStore struct {
	*PGStore
	client *SupabaseClient
}

func (s *supabaseStore) Ping(ctx context.Context) error {
	if err := s.PGStore.Ping(ctx); err != nil {
		return err
	}
	return s.client.Ping(ctx)
}

func preparePG(ctx context.Context, pool PgxIface, logger *zap.Logger) (*PGStore, error) {
	store := NewPGStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to postgres")
	return store, nil
}
