package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("owner_not_found")
	ErrInvalidID         = errors.New("owner_invalid_id")
	ErrInvalidName       = errors.New("owner_invalid_name")
	ErrInvalidDocument   = errors.New("owner_invalid_document")
	ErrDuplicateDocument = errors.New("owner_duplicate_document")
	ErrHasRentRecords    = errors.New("owner_has_rent_records")
	ErrHasParticipations = errors.New("owner_has_participations")
)

type CreateOwnerRequest struct {
	Name        string `json:"name" binding:"required"`
	Surname     string `json:"surname"`
	Document    string `json:"document"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Bank        string `json:"bank"`
	Branch      string `json:"branch"`
	Account     string `json:"account"`
	AccountType string `json:"account_type"`
	Notes       string `json:"notes"`
}

type UpdateOwnerRequest struct {
	ID          string  `json:"-"`
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	Document    *string `json:"document"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Bank        *string `json:"bank"`
	Branch      *string `json:"branch"`
	Account     *string `json:"account"`
	AccountType *string `json:"account_type"`
	Notes       *string `json:"notes"`
	Active      *bool   `json:"active"`
}

type GetOwnerRequest struct {
	ID string `json:"-"`
}

type ListOwnersRequest struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Offset     int    `form:"offset,default=0"`
	Limit      int    `form:"limit,default=100"`
}

type ListOwnersResponse struct {
	Owners []Owner `json:"owners"`
	Total  int64   `json:"total"`
}

type DeleteOwnerRequest struct {
	ID string `json:"-"`
}

type DeleteOwnerResponse struct {
	Deleted                    bool  `json:"deleted"`
	EmptyParticipationsRemoved int64 `json:"empty_participations_removed"`
}

type OwnerStatsRequest struct {
	ID string `json:"-"`
}

type OwnerStatsResponse struct {
	OwnerID        string  `json:"owner_id"`
	Name           string  `json:"name"`
	Properties     int64   `json:"properties"`
	TotalNet       float64 `json:"total_net"`
	LastPeriodYear int     `json:"last_period_year,omitempty"`
	LastPeriodMon  int     `json:"last_period_month,omitempty"`
}

// Service exposes owner operations.
type Service interface {
	Create(ctx context.Context, req CreateOwnerRequest) (*Owner, error)
	Update(ctx context.Context, req UpdateOwnerRequest) (*Owner, error)
	Get(ctx context.Context, req GetOwnerRequest) (*Owner, error)
	List(ctx context.Context, req ListOwnersRequest) (*ListOwnersResponse, error)
	Delete(ctx context.Context, req DeleteOwnerRequest) (*DeleteOwnerResponse, error)
	Stats(ctx context.Context, req OwnerStatsRequest) (*OwnerStatsResponse, error)
}
