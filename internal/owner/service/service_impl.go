package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/owner/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("owner.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOwnerRequest) (*domain.Owner, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	var (
		document *string
		docType  string
	)
	if strings.TrimSpace(req.Document) != "" {
		digits := domain.NormalizeDocument(req.Document)
		kind, ok := domain.ClassifyDocument(digits)
		if !ok {
			return nil, domain.ErrInvalidDocument
		}
		existing, err := s.repo.FindByDocument(ctx, s.db, digits)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicateDocument
		}
		document = &digits
		docType = kind
	}

	now := time.Now().UTC()
	owner := domain.Owner{
		ID:           s.genID.Generate(),
		Name:         name,
		Surname:      strings.TrimSpace(req.Surname),
		Document:     document,
		DocumentType: docType,
		Address:      strings.TrimSpace(req.Address),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		Bank:         strings.TrimSpace(req.Bank),
		Branch:       strings.TrimSpace(req.Branch),
		Account:      strings.TrimSpace(req.Account),
		AccountType:  strings.TrimSpace(req.AccountType),
		Notes:        req.Notes,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &owner); err != nil {
		return nil, err
	}
	return &owner, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateOwnerRequest) (*domain.Owner, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}

	owner, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		owner.Name = name
	}
	if req.Surname != nil {
		owner.Surname = strings.TrimSpace(*req.Surname)
	}
	if req.Document != nil {
		if strings.TrimSpace(*req.Document) == "" {
			owner.Document = nil
			owner.DocumentType = ""
		} else {
			digits := domain.NormalizeDocument(*req.Document)
			kind, ok := domain.ClassifyDocument(digits)
			if !ok {
				return nil, domain.ErrInvalidDocument
			}
			other, err := s.repo.FindByDocument(ctx, s.db, digits)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != owner.ID {
				return nil, domain.ErrDuplicateDocument
			}
			owner.Document = &digits
			owner.DocumentType = kind
		}
	}
	if req.Address != nil {
		owner.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		owner.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		owner.Email = strings.TrimSpace(*req.Email)
	}
	if req.Bank != nil {
		owner.Bank = strings.TrimSpace(*req.Bank)
	}
	if req.Branch != nil {
		owner.Branch = strings.TrimSpace(*req.Branch)
	}
	if req.Account != nil {
		owner.Account = strings.TrimSpace(*req.Account)
	}
	if req.AccountType != nil {
		owner.AccountType = strings.TrimSpace(*req.AccountType)
	}
	if req.Notes != nil {
		owner.Notes = *req.Notes
	}
	if req.Active != nil {
		owner.Active = *req.Active
	}
	owner.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, owner); err != nil {
		return nil, err
	}
	return owner, nil
}

func (s *Service) Get(ctx context.Context, req domain.GetOwnerRequest) (*domain.Owner, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	owner, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.ErrNotFound
	}
	return owner, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOwnersRequest) (*domain.ListOwnersResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 2000 {
		limit = 100
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	owners, total, err := s.repo.List(ctx, s.db, domain.ListOwnerFilter{
		Search:     strings.TrimSpace(req.Search),
		ActiveOnly: req.ActiveOnly,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return &domain.ListOwnersResponse{Owners: owners, Total: total}, nil
}

// Delete removes an owner. Refused while rent records or active
// participations still reference them; zero-percentage leftovers are purged.
func (s *Service) Delete(ctx context.Context, req domain.DeleteOwnerRequest) (*domain.DeleteOwnerResponse, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var resp domain.DeleteOwnerResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if owner == nil {
			return domain.ErrNotFound
		}

		deps, err := s.repo.FindDependencies(ctx, tx, id)
		if err != nil {
			return err
		}
		if deps.RentRecords > 0 {
			return domain.ErrHasRentRecords
		}
		if deps.Participations > 0 {
			return domain.ErrHasParticipations
		}

		if deps.EmptyParticipations > 0 {
			removed, err := s.repo.PurgeEmptyParticipations(ctx, tx, id)
			if err != nil {
				return err
			}
			resp.EmptyParticipationsRemoved = removed
		}

		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		resp.Deleted = true

		s.log.Info("owner deleted",
			zap.String("owner_id", id.String()),
			zap.Int64("empty_participations_removed", resp.EmptyParticipationsRemoved),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Service) Stats(ctx context.Context, req domain.OwnerStatsRequest) (*domain.OwnerStatsResponse, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	owner, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, domain.ErrNotFound
	}

	stats, err := s.repo.FindStats(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &domain.OwnerStatsResponse{
		OwnerID:        owner.ID.String(),
		Name:           owner.FullName(),
		Properties:     stats.Properties,
		TotalNet:       stats.TotalNet,
		LastPeriodYear: stats.LastPeriodYear,
		LastPeriodMon:  stats.LastPeriodMon,
	}, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
