package migrate

import (
	"context"

	"github.com/quintero-labs/shopcore-backend/pkg/config"
	"github.com/quintero-labs/shopcore-backend/pkg/db"
	"github.com/quintero-labs/shopcore-backend/pkg/logger"
)

// MaybeRunDev migrates the schema on startup, in dev only. Production
// deployments run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if cfg == nil || !cfg.App.IsDev() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}

	if logg != nil {
		logg.Info(ctx, "running dev migrations")
	}
	return Up(ctx, sqlDB, DefaultDir)
}
