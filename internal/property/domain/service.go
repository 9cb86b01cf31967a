package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreatePropertyRequest struct {
	Name            string
	Address         string
	Kind            string
	TotalArea       *decimal.Decimal
	BuiltArea       *decimal.Decimal
	AssessedValue   *decimal.Decimal
	MarketValue     *decimal.Decimal
	MonthlyTax      *decimal.Decimal
	MonthlyCondoFee *decimal.Decimal
	Bedrooms        *int
	Bathrooms       *int
	GarageSpots     int
	Rented          bool
}

type UpdatePropertyRequest struct {
	ID string
	CreatePropertyRequest
}

type GetPropertyRequest struct {
	ID string
}

type ListPropertyRequest struct {
	Name   string
	Rented *bool
	Offset int
	Limit  int
}

type DeletePropertyResponse struct {
	Deleted                     bool  `json:"deleted"`
	EmptyParticipationsRemoved int64 `json:"empty_participations_removed"`
}

type Service interface {
	Create(ctx context.Context, req CreatePropertyRequest) (Property, error)
	Update(ctx context.Context, req UpdatePropertyRequest) (Property, error)
	GetByID(ctx context.Context, req GetPropertyRequest) (Property, error)
	List(ctx context.Context, req ListPropertyRequest) ([]Property, error)
	Delete(ctx context.Context, id string) (DeletePropertyResponse, error)
}

var (
	ErrNotFound          = errors.New("property_not_found")
	ErrInvalidID         = errors.New("invalid_property_id")
	ErrInvalidName       = errors.New("invalid_property_name")
	ErrInvalidAddress    = errors.New("invalid_property_address")
	ErrDuplicateName     = errors.New("duplicate_property_name")
	ErrHasRentRecords    = errors.New("property_has_rent_records")
	ErrHasParticipations = errors.New("property_has_active_participations")
)
