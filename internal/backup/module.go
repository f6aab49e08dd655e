package backup

import (
	"github.com/diamondburned/arikawa/v3/session"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/internal/archive"
	"github.com/Raikerian/go-discord-backup/internal/catalog"
	"github.com/Raikerian/go-discord-backup/internal/config"
)

// trackerSize bounds how many recent run summaries are kept in memory.
const trackerSize = 64

// Module provides the backup engine.
var Module = fx.Module("backup",
	fx.Provide(
		newCollector,
		newArchiveStore,
		newTracker,
		newService,
	),
)

func newCollector(ses *session.Session, cfg *config.Config, logger *zap.Logger) *Collector {
	return NewCollector(ses, cfg, logger)
}

func newArchiveStore(cfg *config.Config, logger *zap.Logger) *archive.Store {
	return archive.NewStore(cfg.Backup.Directory, logger)
}

func newTracker() (*Tracker, error) {
	return NewTracker(trackerSize)
}

// ServiceParams holds dependencies for newService.
type ServiceParams struct {
	fx.In
	Collector *Collector
	Store     *archive.Store
	Catalog   *catalog.Store
	Tracker   *Tracker
	Session   *session.Session
	Cfg       *config.Config
	Logger    *zap.Logger
}

func newService(params ServiceParams) *Service {
	return NewService(
		params.Collector,
		params.Store,
		params.Catalog,
		params.Tracker,
		params.Session,
		params.Cfg.Backup.ProgressInterval.Std(),
		params.Logger,
	)
}
