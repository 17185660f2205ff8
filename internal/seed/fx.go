package seed

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(Run),
)

// Run seeds demo data on startup when SEED_DEMO is set. Runs after the
// migrations, which fx orders through the shared *gorm.DB dependency.
func Run(cfg config.Config, conn *gorm.DB, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
	if !cfg.SeedDemo {
		return nil
	}
	if cfg.DefaultOrgID <= 0 {
		log.Warn("demo seed skipped, DEFAULT_ORG is not set")
		return nil
	}

	if err := EnsureDemoData(conn, node, clk, snowflake.ID(cfg.DefaultOrgID)); err != nil {
		return err
	}
	log.Info("demo data seeded", zap.Int64("org_id", cfg.DefaultOrgID))
	return nil
}
