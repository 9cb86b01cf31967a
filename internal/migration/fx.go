package migration

import (
	"strings"

	"github.com/openimob/rentshare/internal/audit/domain"
	"github.com/openimob/rentshare/internal/config"
	importerdomain "github.com/openimob/rentshare/internal/importer/domain"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	ownergroupdomain "github.com/openimob/rentshare/internal/ownergroup/domain"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	rentdomain "github.com/openimob/rentshare/internal/rent/domain"
	transferdomain "github.com/openimob/rentshare/internal/transfer/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations target postgres. Other drivers
		// (sqlite in tests, mysql) fall back to schema sync.
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}
		return conn.AutoMigrate(
			&propertydomain.Property{},
			&ownerdomain.Owner{},
			&ownergroupdomain.OwnerGroup{},
			&transferdomain.Transfer{},
			&participationdomain.Participation{},
			&participationdomain.ParticipationHistory{},
			&rentdomain.RentRecord{},
			&importerdomain.ImportLog{},
			&domain.AuditLog{},
		)
	}),
)
