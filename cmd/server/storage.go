package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
	"github.com/tsiemasilo/tendermanagement/internal/infrastructure/db/memory"
	mongostore "github.com/tsiemasilo/tendermanagement/internal/infrastructure/db/mongo"
	"github.com/tsiemasilo/tendermanagement/internal/infrastructure/db/postgres"
	redisstore "github.com/tsiemasilo/tendermanagement/internal/infrastructure/db/redis"
	"github.com/tsiemasilo/tendermanagement/internal/pkg/config"
)

type storage struct {
	users   ports.UserRepository
	tenders ports.TenderRepository
	pinger  ports.Pinger
	close   func()
}

type sessionBackend struct {
	store  ports.SessionStore
	pinger ports.Pinger
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("postgres connected, migrations applied")
		return &storage{
			users:   postgres.NewUserRepository(db),
			tenders: postgres.NewTenderRepository(db),
			pinger:  postgres.NewPinger(db),
			close: func() {
				if err := db.Close(); err != nil {
					log.Warn().Err(err).Msg("postgres close failed")
				}
			},
		}, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		users := mongostore.NewUserRepository(db)
		tenders := mongostore.NewTenderRepository(db)
		for _, idx := range []interface{ EnsureIndexes(context.Context) error }{users, tenders} {
			if err := idx.EnsureIndexes(ctx); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, err
			}
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
		return &storage{
			users:   users,
			tenders: tenders,
			pinger:  mongostore.NewPinger(client),
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Warn().Err(err).Msg("mongo disconnect failed")
				}
			},
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		tenders := memory.NewTenderRepository()
		return &storage{
			users:   memory.NewUserRepository(),
			tenders: tenders,
			pinger:  tenders,
			close:   func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func openSessions(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*sessionBackend, error) {
	switch cfg.Session.Driver {
	case config.DriverRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			return nil, err
		}
		store := redisstore.NewSessionStore(client)
		return &sessionBackend{
			store:  store,
			pinger: store,
			close: func() {
				if err := client.Close(); err != nil {
					log.Warn().Err(err).Msg("redis close failed")
				}
			},
		}, nil

	case config.DriverMemory:
		store := memory.NewSessionStore()
		return &sessionBackend{store: store, pinger: store, close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown session driver %q", cfg.Session.Driver)
}
