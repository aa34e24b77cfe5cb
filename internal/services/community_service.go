package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rakitcita/platform-service/internal/events"
	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
	"github.com/rakitcita/platform-service/internal/validator"
)

type communityService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewCommunityService(
	repo repositories.Repository,
	eventPublisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
) CommunityService {
	return &communityService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *communityService) Create(ctx context.Context, req *CommunityCreateRequest, actor Actor) (*models.Community, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	community := &models.Community{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   actor.ID,
	}

	// Community row and the creator's admin membership commit together.
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Community().Create(ctx, community); err != nil {
			return err
		}
		membership := &models.Membership{
			UserID:      actor.ID,
			CommunityID: community.ID,
			Role:        models.CommunityAdmin,
		}
		return txRepo.Membership().Create(ctx, membership)
	})
	if err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrCommunityNameTaken
		}
		return nil, fmt.Errorf("failed to create community: %w", err)
	}

	s.logger.Info("community created", "community_id", community.ID, "creator_id", actor.ID)

	s.publishEvent(ctx, events.Event{
		Type: events.EventCommunityCreated,
		Data: map[string]any{"community_id": community.ID, "creator_id": actor.ID},
	})

	return community, nil
}

func (s *communityService) GetByID(ctx context.Context, id string) (*CommunityResponse, error) {
	community, err := s.getCommunity(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Membership().CountMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	return &CommunityResponse{Community: community, MemberCount: count}, nil
}

func (s *communityService) Update(ctx context.Context, id string, req *CommunityUpdateRequest, actor Actor) (*models.Community, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	community, err := s.getManagedCommunity(ctx, id, actor, "update")
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		community.Name = *req.Name
	}
	if req.Description != nil {
		community.Description = req.Description
	}

	if err := s.repo.Community().Update(ctx, community); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrCommunityNameTaken
		}
		return nil, fmt.Errorf("failed to update community: %w", err)
	}

	s.logger.Info("community updated", "community_id", id, "user_id", actor.ID)

	return community, nil
}

func (s *communityService) Delete(ctx context.Context, id string, actor Actor) error {
	if _, err := s.getManagedCommunity(ctx, id, actor, "delete"); err != nil {
		return err
	}

	if err := s.repo.Community().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCommunityNotFound
		}
		return fmt.Errorf("failed to delete community: %w", err)
	}

	s.logger.Info("community deleted", "community_id", id, "user_id", actor.ID)

	return nil
}

func (s *communityService) SetBanner(ctx context.Context, id, bannerURL string, actor Actor) (*models.Community, error) {
	community, err := s.getManagedCommunity(ctx, id, actor, "update_banner")
	if err != nil {
		return nil, err
	}

	community.BannerURL = &bannerURL
	if err := s.repo.Community().Update(ctx, community); err != nil {
		return nil, fmt.Errorf("failed to update banner: %w", err)
	}

	return community, nil
}

func (s *communityService) List(ctx context.Context, req *ListCommunitiesRequest) (*CommunityListResponse, error) {
	pagination := models.NewPagination(req.Page, req.Limit, 0)

	communities, total, err := s.repo.Community().List(ctx, repositories.CommunityFilters{
		Search: req.Search,
		Limit:  pagination.Limit,
		Offset: pagination.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}

	return &CommunityListResponse{
		Communities: communities,
		Pagination:  models.NewPagination(req.Page, req.Limit, total),
	}, nil
}

// ===== MEMBERSHIP =====

func (s *communityService) Join(ctx context.Context, communityID, userID string) (*JoinResponse, error) {
	if _, err := s.getCommunity(ctx, communityID); err != nil {
		return nil, err
	}

	var response *JoinResponse
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		existing, err := txRepo.Membership().Get(ctx, userID, communityID)
		if err == nil {
			response = &JoinResponse{Membership: existing, AlreadyMember: true}
			return nil
		}
		if !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		membership := &models.Membership{
			UserID:      userID,
			CommunityID: communityID,
			Role:        models.CommunityMember,
		}
		if err := txRepo.Membership().Create(ctx, membership); err != nil {
			return err
		}
		response = &JoinResponse{Membership: membership}
		return nil
	})
	if err != nil {
		if repositories.IsDuplicateKeyError(err) {
			existing, getErr := s.repo.Membership().Get(ctx, userID, communityID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load existing membership: %w", getErr)
			}
			return &JoinResponse{Membership: existing, AlreadyMember: true}, nil
		}
		return nil, fmt.Errorf("failed to join community: %w", err)
	}

	if !response.AlreadyMember {
		s.logger.Info("user joined community", "community_id", communityID, "user_id", userID)
		s.publishEvent(ctx, events.Event{
			Type: events.EventCommunityJoined,
			Data: map[string]any{"community_id": communityID, "user_id": userID},
		})
	}

	return response, nil
}

func (s *communityService) Leave(ctx context.Context, communityID, userID string) error {
	if _, err := s.getCommunity(ctx, communityID); err != nil {
		return err
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		membership, err := txRepo.Membership().Get(ctx, userID, communityID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMembershipNotFound
			}
			return fmt.Errorf("failed to get membership: %w", err)
		}

		if membership.Role == models.CommunityAdmin {
			admins, err := txRepo.Membership().CountAdminsForUpdate(ctx, communityID)
			if err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		return txRepo.Membership().Delete(ctx, userID, communityID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user left community", "community_id", communityID, "user_id", userID)

	return nil
}

func (s *communityService) UpdateMemberRole(ctx context.Context, communityID, targetUserID string, role models.CommunityRole, actor Actor) (*models.Membership, error) {
	if !role.Valid() {
		return nil, NewBusinessRuleError("community_role", "role must be one of member, moderator, admin")
	}

	if _, err := s.getCommunity(ctx, communityID); err != nil {
		return nil, err
	}

	var updated *models.Membership
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		actorRole, err := s.membershipRole(ctx, txRepo, actor.ID, communityID)
		if err != nil {
			return err
		}
		if !canChangeMemberRole(actorRole) {
			return NewPermissionError(actor.ID, communityID, "community", "change_member_role", "requires community admin role")
		}

		target, err := txRepo.Membership().Get(ctx, targetUserID, communityID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMembershipNotFound
			}
			return fmt.Errorf("failed to get target membership: %w", err)
		}

		// Demoting an admin may not empty the admin set. The locked count
		// holds until commit, so a concurrent demotion waits here.
		if target.Role == models.CommunityAdmin && role != models.CommunityAdmin {
			admins, err := txRepo.Membership().CountAdminsForUpdate(ctx, communityID)
			if err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		if err := txRepo.Membership().UpdateRole(ctx, targetUserID, communityID, role); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		target.Role = role
		updated = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member role updated",
		"community_id", communityID,
		"target_user_id", targetUserID,
		"new_role", role,
		"actor_id", actor.ID)

	return updated, nil
}

func (s *communityService) RemoveMember(ctx context.Context, communityID, targetUserID string, actor Actor) error {
	community, err := s.getCommunity(ctx, communityID)
	if err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		actorRole, err := s.membershipRole(ctx, txRepo, actor.ID, communityID)
		if err != nil {
			return err
		}

		target, err := txRepo.Membership().Get(ctx, targetUserID, communityID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMembershipNotFound
			}
			return fmt.Errorf("failed to get target membership: %w", err)
		}

		if !canRemoveMember(actor, community, actorRole, target) {
			return NewPermissionError(actor.ID, communityID, "community", "remove_member", "not allowed to remove this member")
		}

		if target.Role == models.CommunityAdmin {
			admins, err := txRepo.Membership().CountAdminsForUpdate(ctx, communityID)
			if err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}

		return txRepo.Membership().Delete(ctx, targetUserID, communityID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("member removed",
		"community_id", communityID,
		"target_user_id", targetUserID,
		"actor_id", actor.ID)

	return nil
}

func (s *communityService) ListMembers(ctx context.Context, communityID string, page, limit int) (*MemberListResponse, error) {
	if _, err := s.getCommunity(ctx, communityID); err != nil {
		return nil, err
	}

	pagination := models.NewPagination(page, limit, 0)

	members, total, err := s.repo.Membership().ListMembers(ctx, communityID, repositories.PageFilters{
		Limit:  pagination.Limit,
		Offset: pagination.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return &MemberListResponse{
		Members:    members,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

func (s *communityService) ListByUser(ctx context.Context, userID string, page, limit int) (*MembershipListResponse, error) {
	pagination := models.NewPagination(page, limit, 0)

	memberships, total, err := s.repo.Membership().ListByUser(ctx, userID, repositories.PageFilters{
		Limit:  pagination.Limit,
		Offset: pagination.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	return &MembershipListResponse{
		Memberships: memberships,
		Pagination:  models.NewPagination(page, limit, total),
	}, nil
}

// ===== HELPERS =====

func (s *communityService) getCommunity(ctx context.Context, id string) (*models.Community, error) {
	community, err := s.repo.Community().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCommunityNotFound
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return community, nil
}

func (s *communityService) getManagedCommunity(ctx context.Context, id string, actor Actor, action string) (*models.Community, error) {
	community, err := s.getCommunity(ctx, id)
	if err != nil {
		return nil, err
	}

	actorRole, err := s.membershipRole(ctx, s.repo, actor.ID, id)
	if err != nil {
		return nil, err
	}

	if !canManageCommunity(actor, community, actorRole) {
		return nil, NewPermissionError(actor.ID, id, "community", action, "requires creator, community admin, or platform admin")
	}

	return community, nil
}

// membershipRole returns the actor's in-community role, or nil when the
// actor is not a member.
func (s *communityService) membershipRole(ctx context.Context, repo repositories.Repository, userID, communityID string) (*models.CommunityRole, error) {
	membership, err := repo.Membership().Get(ctx, userID, communityID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return &membership.Role, nil
}

func (s *communityService) publishEvent(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.Type, "error", err)
	}
}
