package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("owner_group_not_found")
	ErrInvalidID      = errors.New("owner_group_invalid_id")
	ErrInvalidName    = errors.New("owner_group_invalid_name")
	ErrDuplicateName  = errors.New("owner_group_duplicate_name")
	ErrMemberNotFound = errors.New("owner_group_member_not_found")
)

type CreateGroupRequest struct {
	Name      string   `json:"name" binding:"required"`
	MemberIDs []string `json:"member_ids"`
}

type UpdateGroupRequest struct {
	ID        string    `json:"-"`
	Name      *string   `json:"name"`
	MemberIDs *[]string `json:"member_ids"`
}

type GetGroupRequest struct {
	ID string `json:"-"`
}

type ListGroupsRequest struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=100"`
}

type ListGroupsResponse struct {
	Groups []OwnerGroup `json:"groups"`
	Total  int64        `json:"total"`
}

type DeleteGroupRequest struct {
	ID string `json:"-"`
}

type MembersRequest struct {
	ID string `json:"-"`
}

// Member is an owner resolved from a group's membership list.
type Member struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

type MembersResponse struct {
	Group   string   `json:"group"`
	Members []Member `json:"members"`
}

// Service exposes owner group operations.
type Service interface {
	Create(ctx context.Context, req CreateGroupRequest) (*OwnerGroup, error)
	Update(ctx context.Context, req UpdateGroupRequest) (*OwnerGroup, error)
	Get(ctx context.Context, req GetGroupRequest) (*OwnerGroup, error)
	List(ctx context.Context, req ListGroupsRequest) (*ListGroupsResponse, error)
	Delete(ctx context.Context, req DeleteGroupRequest) error
	Members(ctx context.Context, req MembersRequest) (*MembersResponse, error)
}
