package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("transfer_not_found")
	ErrInvalidID     = errors.New("transfer_invalid_id")
	ErrInvalidName   = errors.New("transfer_invalid_name")
	ErrInvalidDate   = errors.New("transfer_invalid_date")
	ErrInvalidAmount = errors.New("transfer_invalid_amount")
	ErrOwnerNotFound = errors.New("transfer_owner_not_found")
)

// Share is one owner's slice of a transfer.
type Share struct {
	OwnerID string  `json:"owner_id"`
	Amount  float64 `json:"amount"`
}

// Dates arrive as strings and accept RFC 3339 or a bare yyyy-mm-dd.
type CreateTransferRequest struct {
	GroupID       string  `json:"group_id" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	TotalAmount   float64 `json:"total_amount"`
	Shares        []Share `json:"shares"`
	SourceOwnerID string  `json:"source_owner_id"`
	TargetOwnerID string  `json:"target_owner_id"`
	StartedAt     string  `json:"started_at"`
	EndedAt       string  `json:"ended_at"`
}

type UpdateTransferRequest struct {
	ID            string   `json:"-"`
	GroupID       *string  `json:"group_id"`
	Name          *string  `json:"name"`
	TotalAmount   *float64 `json:"total_amount"`
	Shares        *[]Share `json:"shares"`
	SourceOwnerID *string  `json:"source_owner_id"`
	TargetOwnerID *string  `json:"target_owner_id"`
	StartedAt     *string  `json:"started_at"`
	EndedAt       *string  `json:"ended_at"`
}

type GetTransferRequest struct {
	ID string `json:"-"`
}

type ListTransfersRequest struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=100"`
}

type ListTransfersResponse struct {
	Transfers []Transfer `json:"transfers"`
	Total     int64      `json:"total"`
}

type DeleteTransferRequest struct {
	ID string `json:"-"`
}

type ListByGroupRequest struct {
	GroupID string `json:"-"`
}

// Service exposes transfer operations.
type Service interface {
	Create(ctx context.Context, req CreateTransferRequest) (*Transfer, error)
	Update(ctx context.Context, req UpdateTransferRequest) (*Transfer, error)
	Get(ctx context.Context, req GetTransferRequest) (*Transfer, error)
	List(ctx context.Context, req ListTransfersRequest) (*ListTransfersResponse, error)
	Delete(ctx context.Context, req DeleteTransferRequest) error
	ListByGroup(ctx context.Context, req ListByGroupRequest) ([]Transfer, error)
}
