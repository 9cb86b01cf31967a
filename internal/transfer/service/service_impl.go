package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	ownergroupdomain "github.com/openimob/rentshare/internal/ownergroup/domain"
	"github.com/openimob/rentshare/internal/transfer/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Groups ownergroupdomain.Repository
	Owners ownerdomain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	groups ownergroupdomain.Repository
	owners ownerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("transfer.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		groups: p.Groups,
		owners: p.Owners,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTransferRequest) (*domain.Transfer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if !isFinite(req.TotalAmount) {
		return nil, domain.ErrInvalidAmount
	}

	groupID, err := s.requireGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	source, err := s.optionalOwner(ctx, req.SourceOwnerID)
	if err != nil {
		return nil, err
	}
	target, err := s.optionalOwner(ctx, req.TargetOwnerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	startedAt := now
	if strings.TrimSpace(req.StartedAt) != "" {
		startedAt, err = parseDate(req.StartedAt)
		if err != nil {
			return nil, err
		}
	}
	var endedAt *time.Time
	if strings.TrimSpace(req.EndedAt) != "" {
		ended, err := parseDate(req.EndedAt)
		if err != nil {
			return nil, err
		}
		endedAt = &ended
	}

	transfer := domain.Transfer{
		ID:            s.genID.Generate(),
		GroupID:       groupID,
		Name:          name,
		TotalAmount:   decimal.NewFromFloat(req.TotalAmount).Round(2),
		Shares:        marshalShares(req.Shares),
		SourceOwnerID: source,
		TargetOwnerID: target,
		StartedAt:     startedAt,
		EndedAt:       endedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &transfer); err != nil {
		return nil, err
	}

	s.log.Info("transfer created",
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("group_id", groupID.String()),
		zap.String("total_amount", transfer.TotalAmount.String()),
	)
	return &transfer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateTransferRequest) (*domain.Transfer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	transfer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrNotFound
	}

	if req.GroupID != nil {
		groupID, err := s.requireGroup(ctx, *req.GroupID)
		if err != nil {
			return nil, err
		}
		transfer.GroupID = groupID
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		transfer.Name = name
	}
	if req.TotalAmount != nil {
		if !isFinite(*req.TotalAmount) {
			return nil, domain.ErrInvalidAmount
		}
		transfer.TotalAmount = decimal.NewFromFloat(*req.TotalAmount).Round(2)
	}
	if req.Shares != nil {
		transfer.Shares = marshalShares(*req.Shares)
	}
	if req.SourceOwnerID != nil {
		source, err := s.optionalOwner(ctx, *req.SourceOwnerID)
		if err != nil {
			return nil, err
		}
		transfer.SourceOwnerID = source
	}
	if req.TargetOwnerID != nil {
		target, err := s.optionalOwner(ctx, *req.TargetOwnerID)
		if err != nil {
			return nil, err
		}
		transfer.TargetOwnerID = target
	}
	if req.StartedAt != nil {
		startedAt, err := parseDate(*req.StartedAt)
		if err != nil {
			return nil, err
		}
		transfer.StartedAt = startedAt
	}
	if req.EndedAt != nil {
		if strings.TrimSpace(*req.EndedAt) == "" {
			transfer.EndedAt = nil
		} else {
			endedAt, err := parseDate(*req.EndedAt)
			if err != nil {
				return nil, err
			}
			transfer.EndedAt = &endedAt
		}
	}
	transfer.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *Service) Get(ctx context.Context, req domain.GetTransferRequest) (*domain.Transfer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	transfer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrNotFound
	}
	return transfer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListTransfersRequest) (*domain.ListTransfersResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	transfers, total, err := s.repo.List(ctx, s.db, offset, limit)
	if err != nil {
		return nil, err
	}
	return &domain.ListTransfersResponse{Transfers: transfers, Total: total}, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteTransferRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}
	transfer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if transfer == nil {
		return domain.ErrNotFound
	}
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}

	s.log.Info("transfer deleted", zap.String("transfer_id", id.String()))
	return nil
}

func (s *Service) ListByGroup(ctx context.Context, req domain.ListByGroupRequest) ([]domain.Transfer, error) {
	groupID, err := s.requireGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByGroup(ctx, s.db, groupID)
}

func (s *Service) requireGroup(ctx context.Context, value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, ownergroupdomain.ErrNotFound
	}
	group, err := s.groups.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if group == nil {
		return 0, fmt.Errorf("%w: %s", ownergroupdomain.ErrNotFound, id)
	}
	return id, nil
}

// optionalOwner resolves an owner reference that may be blank.
func (s *Service) optionalOwner(ctx context.Context, value string) (*snowflake.ID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrOwnerNotFound, value)
	}
	owner, err := s.owners.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOwnerNotFound, id)
	}
	return &id, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// parseDate accepts RFC 3339 or a bare yyyy-mm-dd.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, value)
}

func marshalShares(shares []domain.Share) []byte {
	if len(shares) == 0 {
		return []byte(`[]`)
	}
	data, err := json.Marshal(shares)
	if err != nil {
		return []byte(`[]`)
	}
	return data
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
