package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bizrecords/internal/config"
	"bizrecords/internal/database"
	"bizrecords/internal/event"
	"bizrecords/internal/repository"
	"bizrecords/internal/service"
)

// Services is the trash domain wired over the configured stores. Both the
// HTTP server and trashctl build it the same way.
type Services struct {
	Trash    *service.TrashService
	Restorer *service.RestorationRouter
	Display  *service.DisplayInfoResolver
	Audit    *service.AuditService
	Registry *service.Registry
	Bus      *event.InMemoryBus

	healthChecks []func(ctx context.Context) error
	closers      []func()
}

func BuildServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{Bus: event.NewBus()}

	var trashStore service.TrashStore
	var auditStore service.AuditStore
	var collections func(name string) service.FlatCollaborator

	if cfg.UsesMemoryStores() {
		slog.Warn("DATABASE_URL not set; trash records and entities are kept in memory")
		trashStore = repository.NewMemoryTrashRepository()
		entities := repository.NewMemoryEntityRepository()
		collections = func(name string) service.FlatCollaborator { return entities.Collection(name) }

		fileAudit, err := repository.NewFileAuditRepository(cfg.AuditLogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audit log: %w", err)
		}
		auditStore = fileAudit
	} else {
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		s.healthChecks = append(s.healthChecks, db.Health)

		if err := db.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		trashStore = repository.NewTrashRepository(db.Pool)
		auditStore = repository.NewAuditRepository(db.Pool)
		entities := repository.NewEntityRepository(db.Pool)
		collections = func(name string) service.FlatCollaborator { return entities.Collection(name) }
		slog.Info("database ready")
	}

	var namespaces service.NamespaceStore
	if cfg.NamespaceDBPath == "" {
		namespaces = repository.NewMemoryNamespaceStore()
	} else {
		store, err := repository.NewSQLiteNamespaceStore(cfg.NamespaceDBPath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open namespace store: %w", err)
		}
		s.closers = append(s.closers, func() { _ = store.Close() })
		namespaces = store
		slog.Info("namespace store ready", "path", store.Path())
	}

	overrides, err := config.LoadDisplayOverrides(cfg.DisplayConfigFile)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Registry = service.NewDefaultRegistry(service.Collaborators{
		Collections: collections,
		Namespaces:  namespaces,
		Notifier:    event.NewBusNotifier(s.Bus),
	})
	s.Trash = service.NewTrashService(trashStore, s.Registry, s.Bus)
	s.Restorer = service.NewRestorationRouter(s.Trash, s.Registry, s.Bus)
	s.Display = service.NewDisplayInfoResolver(s.Registry, overrides)
	s.Audit = service.NewAuditService(auditStore)

	return s, nil
}

func (s *Services) Health(ctx context.Context) error {
	var errs []error
	for _, check := range s.healthChecks {
		errs = append(errs, check(ctx))
	}
	return errors.Join(errs...)
}

// Close releases stores in reverse order of opening.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
