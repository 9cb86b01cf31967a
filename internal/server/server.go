package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openimob/rentshare/internal/audit"
	auditdomain "github.com/openimob/rentshare/internal/audit/domain"
	"github.com/openimob/rentshare/internal/authorization"
	"github.com/openimob/rentshare/internal/config"
	"github.com/openimob/rentshare/internal/importer"
	importerdomain "github.com/openimob/rentshare/internal/importer/domain"
	"github.com/openimob/rentshare/internal/observability"
	obsmiddleware "github.com/openimob/rentshare/internal/observability/logger"
	obsmetrics "github.com/openimob/rentshare/internal/observability/metrics"
	obstracing "github.com/openimob/rentshare/internal/observability/tracing"
	"github.com/openimob/rentshare/internal/owner"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	"github.com/openimob/rentshare/internal/ownergroup"
	ownergroupdomain "github.com/openimob/rentshare/internal/ownergroup/domain"
	"github.com/openimob/rentshare/internal/participation"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	"github.com/openimob/rentshare/internal/property"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	"github.com/openimob/rentshare/internal/rent"
	rentdomain "github.com/openimob/rentshare/internal/rent/domain"
	"github.com/openimob/rentshare/internal/transfer"
	transferdomain "github.com/openimob/rentshare/internal/transfer/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	property.Module,
	owner.Module,
	ownergroup.Module,
	transfer.Module,
	participation.Module,
	rent.Module,
	importer.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(IdentityMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine           *gin.Engine
	cfg              config.Config
	db               *gorm.DB
	genID            *snowflake.Node
	authzSvc         authorization.Service
	auditSvc         auditdomain.Service
	propertySvc      propertydomain.Service
	ownerSvc         ownerdomain.Service
	groupSvc         ownergroupdomain.Service
	transferSvc      transferdomain.Service
	participationSvc participationdomain.Service
	rentSvc          rentdomain.Service
	importSvc        importerdomain.Service
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	DB               *gorm.DB
	GenID            *snowflake.Node
	AuthzSvc         authorization.Service
	AuditSvc         auditdomain.Service
	PropertySvc      propertydomain.Service
	OwnerSvc         ownerdomain.Service
	GroupSvc         ownergroupdomain.Service
	TransferSvc      transferdomain.Service
	ParticipationSvc participationdomain.Service
	RentSvc          rentdomain.Service
	ImportSvc        importerdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		db:               p.DB,
		genID:            p.GenID,
		authzSvc:         p.AuthzSvc,
		auditSvc:         p.AuditSvc,
		propertySvc:      p.PropertySvc,
		ownerSvc:         p.OwnerSvc,
		groupSvc:         p.GroupSvc,
		transferSvc:      p.TransferSvc,
		participationSvc: p.ParticipationSvc,
		rentSvc:          p.RentSvc,
		importSvc:        p.ImportSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Properties --------
	api.GET("/properties", s.Authorize(authorization.ObjectProperty, authorization.ActionView), s.ListProperties)
	api.POST("/properties", s.Authorize(authorization.ObjectProperty, authorization.ActionCreate), s.CreateProperty)
	api.GET("/properties/:id", s.Authorize(authorization.ObjectProperty, authorization.ActionView), s.GetProperty)
	api.PUT("/properties/:id", s.Authorize(authorization.ObjectProperty, authorization.ActionUpdate), s.UpdateProperty)
	api.DELETE("/properties/:id", s.Authorize(authorization.ObjectProperty, authorization.ActionDelete), s.DeleteProperty)
	api.GET("/properties/:id/participation-history", s.Authorize(authorization.ObjectParticipation, authorization.ActionView), s.ParticipationHistoryByProperty)

	// -------- Owners --------
	api.GET("/owners", s.Authorize(authorization.ObjectOwner, authorization.ActionView), s.ListOwners)
	api.POST("/owners", s.Authorize(authorization.ObjectOwner, authorization.ActionCreate), s.CreateOwner)
	api.GET("/owners/:id", s.Authorize(authorization.ObjectOwner, authorization.ActionView), s.GetOwner)
	api.PATCH("/owners/:id", s.Authorize(authorization.ObjectOwner, authorization.ActionUpdate), s.UpdateOwner)
	api.DELETE("/owners/:id", s.Authorize(authorization.ObjectOwner, authorization.ActionDelete), s.DeleteOwner)
	api.GET("/owners/:id/stats", s.Authorize(authorization.ObjectOwner, authorization.ActionView), s.OwnerStats)

	// -------- Owner groups --------
	api.GET("/owner-groups", s.Authorize(authorization.ObjectOwnerGroup, authorization.ActionView), s.ListOwnerGroups)
	api.POST("/owner-groups", s.Authorize(authorization.ObjectOwnerGroup, authorization.ActionCreate), s.CreateOwnerGroup)
	api.GET("/owner-groups/:id", s.Authorize(authorization.ObjectOwnerGroup, authorization.ActionView), s.GetOwnerGroup)
	api.PATCH("/owner-groups/:id", s.Authorize(authorization.ObjectOwnerGroup, authorization.ActionUpdate), s.UpdateOwnerGroup)
	api.DELETE("/owner-groups/:id", s.Authorize(authorization.ObjectOwnerGroup, authorization.ActionDelete), s.DeleteOwnerGroup)
	api.GET("/owner-groups/:id/members", s.Authorize(authorization.ObjectOwnerGroup, authorization.ActionView), s.OwnerGroupMembers)
	api.GET("/owner-groups/:id/transfers", s.Authorize(authorization.ObjectTransfer, authorization.ActionView), s.ListTransfersByGroup)

	// -------- Transfers --------
	api.GET("/transfers", s.Authorize(authorization.ObjectTransfer, authorization.ActionView), s.ListTransfers)
	api.POST("/transfers", s.Authorize(authorization.ObjectTransfer, authorization.ActionCreate), s.CreateTransfer)
	api.GET("/transfers/:id", s.Authorize(authorization.ObjectTransfer, authorization.ActionView), s.GetTransfer)
	api.PATCH("/transfers/:id", s.Authorize(authorization.ObjectTransfer, authorization.ActionUpdate), s.UpdateTransfer)
	api.DELETE("/transfers/:id", s.Authorize(authorization.ObjectTransfer, authorization.ActionDelete), s.DeleteTransfer)

	// -------- Participations --------
	api.GET("/participations", s.Authorize(authorization.ObjectParticipation, authorization.ActionView), s.GetParticipations)
	api.POST("/participations", s.Authorize(authorization.ObjectParticipation, authorization.ActionCreate), s.UpsertParticipation)
	api.POST("/participations/replace", s.Authorize(authorization.ObjectParticipation, authorization.ActionParticipationReplace), s.ReplaceParticipationVersion)
	api.POST("/participations/snapshot", s.Authorize(authorization.ObjectParticipation, authorization.ActionParticipationSnapshot), s.SnapshotParticipations)
	api.GET("/participations/versions", s.Authorize(authorization.ObjectParticipation, authorization.ActionView), s.ListParticipationVersions)
	api.GET("/participations/history/:versionId", s.Authorize(authorization.ObjectParticipation, authorization.ActionView), s.ParticipationHistoryByVersion)

	// -------- Rent records --------
	api.GET("/rents", s.Authorize(authorization.ObjectRent, authorization.ActionView), s.ListRentRecords)
	api.POST("/rents", s.Authorize(authorization.ObjectRent, authorization.ActionCreate), s.CreateRentRecord)
	api.GET("/rents/:id", s.Authorize(authorization.ObjectRent, authorization.ActionView), s.GetRentRecord)
	api.PATCH("/rents/:id", s.Authorize(authorization.ObjectRent, authorization.ActionUpdate), s.UpdateRentRecord)
	api.DELETE("/rents/:id", s.Authorize(authorization.ObjectRent, authorization.ActionDelete), s.DeleteRentRecord)
	api.POST("/rents/distribute", s.Authorize(authorization.ObjectRent, authorization.ActionCreate), s.DistributeRent)
	api.POST("/rents/recompute", s.Authorize(authorization.ObjectRent, authorization.ActionRentRecompute), s.RecomputeRents)
	api.POST("/rents/taxes", s.Authorize(authorization.ObjectRent, authorization.ActionView), s.ComputeTaxes)

	// -------- Reports --------
	reports := api.Group("/reports", s.Authorize(authorization.ObjectRent, authorization.ActionView))
	{
		reports.GET("/totals-by-property", s.TotalsByProperty)
		reports.GET("/totals-by-month", s.TotalsByMonth)
		reports.GET("/matrix", s.RentMatrix)
		reports.GET("/years", s.AvailableYears)
		reports.GET("/last-period", s.LastPeriod)
	}

	// -------- Imports --------
	api.POST("/imports", s.Authorize(authorization.ObjectImport, authorization.ActionCreate), s.RunImport)
	api.GET("/imports", s.Authorize(authorization.ObjectImport, authorization.ActionView), s.ListImports)
	api.GET("/imports/:id", s.Authorize(authorization.ObjectImport, authorization.ActionView), s.GetImport)

	// -------- Audit --------
	api.GET("/audit-logs", s.Authorize(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}
