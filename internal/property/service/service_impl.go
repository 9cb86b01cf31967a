package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/property/domain"
	"github.com/openimob/rentshare/pkg/db/pagination"
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
		log:   p.Log.Named("property.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePropertyRequest) (domain.Property, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Property{}, domain.ErrInvalidName
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Property{}, domain.ErrInvalidAddress
	}

	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return domain.Property{}, err
	}
	if existing != nil {
		return domain.Property{}, domain.ErrDuplicateName
	}

	now := time.Now().UTC()
	property := domain.Property{
		ID:              s.genID.Generate(),
		Name:            name,
		Address:         address,
		Kind:            strings.TrimSpace(req.Kind),
		TotalArea:       req.TotalArea,
		BuiltArea:       req.BuiltArea,
		AssessedValue:   req.AssessedValue,
		MarketValue:     req.MarketValue,
		MonthlyTax:      req.MonthlyTax,
		MonthlyCondoFee: req.MonthlyCondoFee,
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		GarageSpots:     req.GarageSpots,
		Rented:          req.Rented,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &property); err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePropertyRequest) (domain.Property, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Property{}, err
	}

	property, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Property{}, err
	}
	if property == nil {
		return domain.Property{}, domain.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Property{}, domain.ErrInvalidName
	}
	if name != property.Name {
		other, err := s.repo.FindByName(ctx, s.db, name)
		if err != nil {
			return domain.Property{}, err
		}
		if other != nil && other.ID != property.ID {
			return domain.Property{}, domain.ErrDuplicateName
		}
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.Property{}, domain.ErrInvalidAddress
	}

	property.Name = name
	property.Address = address
	property.Kind = strings.TrimSpace(req.Kind)
	property.TotalArea = req.TotalArea
	property.BuiltArea = req.BuiltArea
	property.AssessedValue = req.AssessedValue
	property.MarketValue = req.MarketValue
	property.MonthlyTax = req.MonthlyTax
	property.MonthlyCondoFee = req.MonthlyCondoFee
	property.Bedrooms = req.Bedrooms
	property.Bathrooms = req.Bathrooms
	property.GarageSpots = req.GarageSpots
	property.Rented = req.Rented
	property.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, property); err != nil {
		return domain.Property{}, err
	}
	return *property, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPropertyRequest) (domain.Property, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Property{}, err
	}
	property, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Property{}, err
	}
	if property == nil {
		return domain.Property{}, domain.ErrNotFound
	}
	return *property, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPropertyRequest) ([]domain.Property, error) {
	items, err := s.repo.List(ctx, s.db, domain.ListPropertyFilter{
		Name:   strings.TrimSpace(req.Name),
		Rented: req.Rented,
	}, pagination.Pagination{Offset: req.Offset, Limit: req.Limit})
	if err != nil {
		return nil, err
	}

	properties := make([]domain.Property, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		properties = append(properties, *item)
	}
	return properties, nil
}

// Delete removes a property. Refused while rent records or active
// participations still reference it; zero-percentage leftovers are purged.
func (s *Service) Delete(ctx context.Context, rawID string) (domain.DeletePropertyResponse, error) {
	id, err := s.parseID(rawID)
	if err != nil {
		return domain.DeletePropertyResponse{}, err
	}

	var resp domain.DeletePropertyResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if property == nil {
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

		s.log.Info("property deleted",
			zap.String("property_id", id.String()),
			zap.Int64("empty_participations_removed", resp.EmptyParticipationsRemoved),
		)
		return nil
	})
	if err != nil {
		return domain.DeletePropertyResponse{}, err
	}
	return resp, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
