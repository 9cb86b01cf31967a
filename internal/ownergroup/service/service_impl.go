package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	"github.com/openimob/rentshare/internal/ownergroup/domain"
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
	Owners ownerdomain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	owners ownerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("ownergroup.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		owners: p.Owners,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateGroupRequest) (*domain.OwnerGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateName
	}

	memberIDs, err := s.resolveMembers(ctx, req.MemberIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group := domain.OwnerGroup{
		ID:        s.genID.Generate(),
		Name:      name,
		MemberIDs: marshalMembers(memberIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &group); err != nil {
		return nil, err
	}

	s.log.Info("owner group created",
		zap.String("group_id", group.ID.String()),
		zap.String("name", name),
		zap.Int("members", len(memberIDs)),
	)
	return &group, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateGroupRequest) (*domain.OwnerGroup, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	group, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		if name != group.Name {
			other, err := s.repo.FindByName(ctx, s.db, name)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrDuplicateName
			}
		}
		group.Name = name
	}
	if req.MemberIDs != nil {
		memberIDs, err := s.resolveMembers(ctx, *req.MemberIDs)
		if err != nil {
			return nil, err
		}
		group.MemberIDs = marshalMembers(memberIDs)
	}
	group.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Service) Get(ctx context.Context, req domain.GetGroupRequest) (*domain.OwnerGroup, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	group, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrNotFound
	}
	return group, nil
}

func (s *Service) List(ctx context.Context, req domain.ListGroupsRequest) (*domain.ListGroupsResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	groups, total, err := s.repo.List(ctx, s.db, offset, limit)
	if err != nil {
		return nil, err
	}
	return &domain.ListGroupsResponse{Groups: groups, Total: total}, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteGroupRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}
	group, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if group == nil {
		return domain.ErrNotFound
	}
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return err
	}

	s.log.Info("owner group deleted",
		zap.String("group_id", id.String()),
		zap.String("name", group.Name),
	)
	return nil
}

// Members resolves the group's membership list against the owners
// table. Ids that no longer resolve are dropped from the response.
func (s *Service) Members(ctx context.Context, req domain.MembersRequest) (*domain.MembersResponse, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	group, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrNotFound
	}

	ids, err := unmarshalMembers(group.MemberIDs)
	if err != nil {
		return nil, err
	}
	owners, err := s.owners.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(owners))
	for _, owner := range owners {
		members = append(members, domain.Member{
			ID:      owner.ID.String(),
			Name:    owner.Name,
			Surname: owner.Surname,
		})
	}
	return &domain.MembersResponse{Group: group.Name, Members: members}, nil
}

// resolveMembers parses and deduplicates the given owner ids and
// verifies every one exists in a single batch lookup.
func (s *Service) resolveMembers(ctx context.Context, raw []string) ([]snowflake.ID, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	ids := make([]snowflake.ID, 0, len(raw))
	seen := make(map[snowflake.ID]bool, len(raw))
	for _, value := range raw {
		id, err := snowflake.ParseString(strings.TrimSpace(value))
		if err != nil || id == 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, value)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	owners, err := s.owners.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[snowflake.ID]bool, len(owners))
	for _, owner := range owners {
		found[owner.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, id)
		}
	}
	return ids, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func marshalMembers(ids []snowflake.ID) []byte {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	data, err := json.Marshal(values)
	if err != nil {
		return []byte(`[]`)
	}
	return data
}

func unmarshalMembers(data []byte) ([]snowflake.ID, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	ids := make([]snowflake.ID, 0, len(values))
	for _, value := range values {
		id, err := snowflake.ParseString(value)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
