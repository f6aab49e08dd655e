package catalog

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/config"
)

// Module provides the backup run catalog.
var Module = fx.Module("catalog",
	fx.Provide(NewStore),
)

// StoreParams holds dependencies for NewStore.
type StoreParams struct {
	fx.In
	Cfg    *config.Config
	LC     fx.Lifecycle
	Logger *zap.Logger
}

// NewStore opens the catalog at the configured path and closes it on shutdown.
func NewStore(params StoreParams) (*Store, error) {
	store, err := Open(params.Cfg.Catalog.Path, params.Logger)
	if err != nil {
		return nil, err
	}

	params.LC.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}
