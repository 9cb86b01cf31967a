// Package authorization enforces role-based access over the domain objects.
// Roles are flat (viewer < user < administrator); policies live in the
// database through the casbin gorm adapter so deployments can extend them.
package authorization

import (
	_ "embed"
	"context"
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/openimob/rentshare/internal/authcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectProperty      = "property"
	ObjectOwner         = "owner"
	ObjectOwnerGroup    = "owner_group"
	ObjectParticipation = "participation"
	ObjectRent          = "rent"
	ObjectTransfer      = "transfer"
	ObjectImport        = "import"
	ObjectAuditLog      = "audit_log"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionParticipationSnapshot = "snapshot"
	ActionParticipationReplace  = "replace_version"
	ActionRentRecompute         = "recompute"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Service answers "may this caller perform this action on this object".
type Service interface {
	Authorize(ctx context.Context, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, object, action string) error {
	identity, ok := authcontext.IdentityFromContext(ctx)
	if !ok || strings.TrimSpace(identity.UserID) == "" {
		return ErrUnauthorized
	}
	role := strings.ToLower(strings.TrimSpace(identity.Role))
	if !authcontext.ValidRole(role) {
		return ErrForbidden
	}

	allowed, err := s.enforcer.Enforce("role:"+role, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Warn("access denied",
			zap.String("user_id", identity.UserID),
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func seedPolicies(e *casbin.SyncedEnforcer) error {
	readObjects := []string{
		ObjectProperty, ObjectOwner, ObjectOwnerGroup, ObjectParticipation,
		ObjectRent, ObjectTransfer,
	}
	writeObjects := []string{
		ObjectProperty, ObjectOwner, ObjectParticipation, ObjectRent,
	}

	for _, obj := range readObjects {
		if _, err := e.AddPolicy("role:viewer", obj, ActionView); err != nil {
			return err
		}
	}

	// user inherits viewer and may create/update and take snapshots
	if _, err := e.AddGroupingPolicy("role:user", "role:viewer"); err != nil {
		return err
	}
	for _, obj := range writeObjects {
		if _, err := e.AddPolicy("role:user", obj, ActionCreate); err != nil {
			return err
		}
		if _, err := e.AddPolicy("role:user", obj, ActionUpdate); err != nil {
			return err
		}
	}
	if _, err := e.AddPolicy("role:user", ObjectParticipation, ActionParticipationSnapshot); err != nil {
		return err
	}

	// administrator inherits user and holds the destructive/bulk verbs
	if _, err := e.AddGroupingPolicy("role:administrator", "role:user"); err != nil {
		return err
	}
	adminPolicies := [][2]string{
		{ObjectProperty, ActionDelete},
		{ObjectOwner, ActionDelete},
		{ObjectParticipation, ActionDelete},
		{ObjectRent, ActionDelete},
		{ObjectOwnerGroup, ActionCreate},
		{ObjectOwnerGroup, ActionUpdate},
		{ObjectOwnerGroup, ActionDelete},
		{ObjectTransfer, ActionCreate},
		{ObjectTransfer, ActionUpdate},
		{ObjectTransfer, ActionDelete},
		{ObjectParticipation, ActionParticipationReplace},
		{ObjectRent, ActionRentRecompute},
		{ObjectImport, ActionCreate},
		{ObjectImport, ActionView},
		{ObjectAuditLog, ActionView},
	}
	for _, p := range adminPolicies {
		if _, err := e.AddPolicy("role:administrator", p[0], p[1]); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
