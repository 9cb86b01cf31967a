package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("rent_record_not_found")
	ErrPropertyNotFound = errors.New("rent_property_not_found")
	ErrOwnerNotFound    = errors.New("rent_owner_not_found")
	ErrInvalidID        = errors.New("rent_invalid_id")
	ErrInvalidMonth     = errors.New("rent_invalid_month")
	ErrInvalidYear      = errors.New("rent_invalid_year")
	ErrInvalidAmount    = errors.New("rent_invalid_amount")
	ErrDuplicatePeriod  = errors.New("rent_duplicate_period")
	ErrNoParticipations = errors.New("rent_no_participations")
)

type DistributeRequest struct {
	PropertyID string  `json:"property_id" binding:"required"`
	Month      int     `json:"month" binding:"required"`
	Year       int     `json:"year" binding:"required"`
	GrossRent  float64 `json:"gross_rent"`
	TotalFee   float64 `json:"total_fee"`
}

type DistributeResponse struct {
	Records  []RentRecord `json:"records"`
	Warnings []string     `json:"warnings,omitempty"`
}

// RecomputeSummary reports the outcome of a full recomputation run.
type RecomputeSummary struct {
	Total       int      `json:"total"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Errors      []string `json:"errors,omitempty"`
	SuccessRate float64  `json:"success_rate"`
}

type ComputeTaxesRequest struct {
	NetAmount float64 `json:"net_amount"`
}

type ComputeTaxesResponse struct {
	Base                float64 `json:"base"`
	Withheld            float64 `json:"withheld"`
	NetAfterWithholding float64 `json:"net_after_withholding"`
}

type CreateRentRecordRequest struct {
	PropertyID string  `json:"property_id" binding:"required"`
	OwnerID    string  `json:"owner_id" binding:"required"`
	Month      int     `json:"month" binding:"required"`
	Year       int     `json:"year" binding:"required"`
	TotalFee   float64 `json:"total_fee"`
	OwnerFee   float64 `json:"owner_fee"`
	NetAmount  float64 `json:"net_amount"`
}

type UpdateRentRecordRequest struct {
	ID        string   `json:"-"`
	TotalFee  *float64 `json:"total_fee"`
	OwnerFee  *float64 `json:"owner_fee"`
	NetAmount *float64 `json:"net_amount"`
}

type GetRentRecordRequest struct {
	ID string `json:"-"`
}

type ListRentRecordsRequest struct {
	PropertyID string `form:"property_id"`
	OwnerID    string `form:"owner_id"`
	Month      int    `form:"month"`
	Year       int    `form:"year"`
	Offset     int    `form:"offset,default=0"`
	Limit      int    `form:"limit,default=100"`
}

type ListRentRecordsResponse struct {
	Records []RentRecord `json:"records"`
	Total   int64        `json:"total"`
}

type DeleteRentRecordRequest struct {
	ID string `json:"-"`
}

type YearRequest struct {
	Year int `form:"year"`
}

// MatrixRequest selects the matrix period. A zero month sums the
// whole year.
type MatrixRequest struct {
	Month int `form:"month"`
	Year  int `form:"year"`
}

type LastPeriodResponse struct {
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Service is the rent distribution calculator.
type Service interface {
	// Distribute splits a property's gross rent and fee for one month
	// across the owners of the latest ledger version.
	Distribute(ctx context.Context, req DistributeRequest) (*DistributeResponse, error)

	// RecomputeAll re-runs the distribution for every stored period,
	// collecting per-period failures instead of aborting.
	RecomputeAll(ctx context.Context) (*RecomputeSummary, error)

	// ComputeTaxes applies the flat-rate withholding rule to a net
	// amount.
	ComputeTaxes(ctx context.Context, req ComputeTaxesRequest) (*ComputeTaxesResponse, error)

	Create(ctx context.Context, req CreateRentRecordRequest) (*RentRecord, error)
	Update(ctx context.Context, req UpdateRentRecordRequest) (*RentRecord, error)
	Get(ctx context.Context, req GetRentRecordRequest) (*RentRecord, error)
	List(ctx context.Context, req ListRentRecordsRequest) (*ListRentRecordsResponse, error)
	Delete(ctx context.Context, req DeleteRentRecordRequest) error

	TotalsByProperty(ctx context.Context, req YearRequest) ([]PropertyTotal, error)
	TotalsByMonth(ctx context.Context, req YearRequest) ([]MonthTotal, error)
	Matrix(ctx context.Context, req MatrixRequest) ([]MatrixCell, error)
	AvailableYears(ctx context.Context) ([]int, error)
	LastPeriod(ctx context.Context) (*LastPeriodResponse, error)
}
