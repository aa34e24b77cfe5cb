package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"

	"gorm.io/gorm"

	"github.com/rakitcita/platform-service/internal/events"
	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
	"github.com/rakitcita/platform-service/internal/validator"
)

// ===== IN-MEMORY REPOSITORIES =====

type memCommunityRepo struct {
	communities map[string]*models.Community
}

func (r *memCommunityRepo) Create(ctx context.Context, community *models.Community) error {
	for _, existing := range r.communities {
		if existing.Name == community.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	r.communities[community.ID] = community
	return nil
}

func (r *memCommunityRepo) GetByID(ctx context.Context, id string) (*models.Community, error) {
	community, ok := r.communities[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *community
	return &copied, nil
}

func (r *memCommunityRepo) Update(ctx context.Context, community *models.Community) error {
	if _, ok := r.communities[community.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.communities[community.ID] = community
	return nil
}

func (r *memCommunityRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.communities[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.communities, id)
	return nil
}

func (r *memCommunityRepo) List(ctx context.Context, filters repositories.CommunityFilters) ([]*models.Community, int64, error) {
	out := make([]*models.Community, 0, len(r.communities))
	for _, c := range r.communities {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	return pageSlice(out, filters.Limit, filters.Offset), total, nil
}

type membershipKey struct{ userID, communityID string }

type memMembershipRepo struct {
	memberships map[membershipKey]*models.Membership
}

func (r *memMembershipRepo) Get(ctx context.Context, userID, communityID string) (*models.Membership, error) {
	m, ok := r.memberships[membershipKey{userID, communityID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *memMembershipRepo) Create(ctx context.Context, membership *models.Membership) error {
	key := membershipKey{membership.UserID, membership.CommunityID}
	if _, ok := r.memberships[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.memberships[key] = membership
	return nil
}

func (r *memMembershipRepo) UpdateRole(ctx context.Context, userID, communityID string, role models.CommunityRole) error {
	m, ok := r.memberships[membershipKey{userID, communityID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Role = role
	return nil
}

func (r *memMembershipRepo) Delete(ctx context.Context, userID, communityID string) error {
	key := membershipKey{userID, communityID}
	if _, ok := r.memberships[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.memberships, key)
	return nil
}

func (r *memMembershipRepo) ListMembers(ctx context.Context, communityID string, filters repositories.PageFilters) ([]*models.Membership, int64, error) {
	var out []*models.Membership
	for key, m := range r.memberships {
		if key.communityID == communityID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Role.Rank() < out[j].Role.Rank()
	})
	total := int64(len(out))
	return pageSlice(out, filters.Limit, filters.Offset), total, nil
}

func (r *memMembershipRepo) ListByUser(ctx context.Context, userID string, filters repositories.PageFilters) ([]*models.Membership, int64, error) {
	var out []*models.Membership
	for key, m := range r.memberships {
		if key.userID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommunityID < out[j].CommunityID })
	total := int64(len(out))
	return pageSlice(out, filters.Limit, filters.Offset), total, nil
}

func (r *memMembershipRepo) CountMembers(ctx context.Context, communityID string) (int64, error) {
	var count int64
	for key := range r.memberships {
		if key.communityID == communityID {
			count++
		}
	}
	return count, nil
}

func (r *memMembershipRepo) CountAdmins(ctx context.Context, communityID string) (int64, error) {
	var count int64
	for key, m := range r.memberships {
		if key.communityID == communityID && m.Role == models.CommunityAdmin {
			count++
		}
	}
	return count, nil
}

func (r *memMembershipRepo) CountAdminsForUpdate(ctx context.Context, communityID string) (int64, error) {
	return r.CountAdmins(ctx, communityID)
}

// ===== FIXTURE =====

func newCommunityFixture(t *testing.T) (CommunityService, *memRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := events.NewMockEventPublisher(logger)
	repo := newMemRepository()
	svc := NewCommunityService(repo, publisher, logger, validator.New())
	return svc, repo, publisher
}

// ===== TESTS =====

func TestCommunityService_Create(t *testing.T) {
	svc, repo, _ := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, &CommunityCreateRequest{Name: "Low Vision Devs"}, Actor{ID: "creator", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Creator must come out as the community's first admin.
	membership, err := repo.Membership().Get(ctx, "creator", community.ID)
	if err != nil {
		t.Fatalf("Creator membership missing: %v", err)
	}
	if membership.Role != models.CommunityAdmin {
		t.Errorf("Expected creator role 'admin', got %q", membership.Role)
	}

	t.Run("duplicate name rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &CommunityCreateRequest{Name: "Low Vision Devs"}, Actor{ID: "other", Role: models.RoleUser})
		if !errors.Is(err, ErrCommunityNameTaken) {
			t.Errorf("Expected ErrCommunityNameTaken, got %v", err)
		}
	})
}

func TestCommunityService_Join(t *testing.T) {
	svc, _, publisher := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, &CommunityCreateRequest{Name: "Peer Support"}, Actor{ID: "creator", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("first join", func(t *testing.T) {
		resp, err := svc.Join(ctx, community.ID, "u1")
		if err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		if resp.AlreadyMember {
			t.Error("First join must not report AlreadyMember")
		}
		if resp.Role != models.CommunityMember {
			t.Errorf("Expected role 'member', got %q", resp.Role)
		}
	})

	t.Run("second join is idempotent", func(t *testing.T) {
		publisher.ClearEvents()

		resp, err := svc.Join(ctx, community.ID, "u1")
		if err != nil {
			t.Fatalf("Second join failed: %v", err)
		}
		if !resp.AlreadyMember {
			t.Error("Second join must report AlreadyMember")
		}
		if got := publisher.GetPublishedEvents(); len(got) != 0 {
			t.Errorf("Repeat join must not publish events, got %d", len(got))
		}
	})

	t.Run("unknown community", func(t *testing.T) {
		_, err := svc.Join(ctx, "missing", "u1")
		if !errors.Is(err, ErrCommunityNotFound) {
			t.Errorf("Expected ErrCommunityNotFound, got %v", err)
		}
	})
}

func TestCommunityService_LastAdminInvariant(t *testing.T) {
	svc, _, _ := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, &CommunityCreateRequest{Name: "Admins"}, Actor{ID: "a1", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Join(ctx, community.ID, "m1"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	admin := Actor{ID: "a1", Role: models.RoleUser}

	t.Run("sole admin cannot leave", func(t *testing.T) {
		if err := svc.Leave(ctx, community.ID, "a1"); !errors.Is(err, ErrLastAdmin) {
			t.Errorf("Expected ErrLastAdmin, got %v", err)
		}
	})

	t.Run("sole admin cannot demote self", func(t *testing.T) {
		_, err := svc.UpdateMemberRole(ctx, community.ID, "a1", models.CommunityMember, admin)
		if !errors.Is(err, ErrLastAdmin) {
			t.Errorf("Expected ErrLastAdmin, got %v", err)
		}
	})

	t.Run("promoting a second admin unblocks leaving", func(t *testing.T) {
		if _, err := svc.UpdateMemberRole(ctx, community.ID, "m1", models.CommunityAdmin, admin); err != nil {
			t.Fatalf("Promotion failed: %v", err)
		}
		if err := svc.Leave(ctx, community.ID, "a1"); err != nil {
			t.Errorf("Expected leave to succeed with a second admin, got %v", err)
		}
	})
}

func TestCommunityService_UpdateMemberRole_Authorization(t *testing.T) {
	svc, _, _ := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, &CommunityCreateRequest{Name: "Roles"}, Actor{ID: "a1", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, userID := range []string{"m1", "m2"} {
		if _, err := svc.Join(ctx, community.ID, userID); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
	}

	t.Run("plain member denied", func(t *testing.T) {
		_, err := svc.UpdateMemberRole(ctx, community.ID, "m2", models.CommunityModerator, Actor{ID: "m1", Role: models.RoleUser})
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Errorf("Expected PermissionError, got %v", err)
		}
	})

	t.Run("community admin promotes moderator", func(t *testing.T) {
		membership, err := svc.UpdateMemberRole(ctx, community.ID, "m1", models.CommunityModerator, Actor{ID: "a1", Role: models.RoleUser})
		if err != nil {
			t.Fatalf("UpdateMemberRole failed: %v", err)
		}
		if membership.Role != models.CommunityModerator {
			t.Errorf("Expected role 'moderator', got %q", membership.Role)
		}
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		_, err := svc.UpdateMemberRole(ctx, community.ID, "m1", "owner", Actor{ID: "a1", Role: models.RoleUser})
		var ruleErr *BusinessRuleError
		if !errors.As(err, &ruleErr) {
			t.Errorf("Expected BusinessRuleError, got %v", err)
		}
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := svc.UpdateMemberRole(ctx, community.ID, "stranger", models.CommunityModerator, Actor{ID: "a1", Role: models.RoleUser})
		if !errors.Is(err, ErrMembershipNotFound) {
			t.Errorf("Expected ErrMembershipNotFound, got %v", err)
		}
	})
}

func TestCommunityService_RemoveMember(t *testing.T) {
	svc, _, _ := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, &CommunityCreateRequest{Name: "Removal"}, Actor{ID: "a1", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Join(ctx, community.ID, "m1"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	t.Run("member cannot remove another member", func(t *testing.T) {
		err := svc.RemoveMember(ctx, community.ID, "a1", Actor{ID: "m1", Role: models.RoleUser})
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Errorf("Expected PermissionError, got %v", err)
		}
	})

	t.Run("admin removes member", func(t *testing.T) {
		if err := svc.RemoveMember(ctx, community.ID, "m1", Actor{ID: "a1", Role: models.RoleUser}); err != nil {
			t.Errorf("Expected removal to succeed, got %v", err)
		}
	})

	t.Run("explicit forbidden, not masked as not-found", func(t *testing.T) {
		// Unlike course mutations, community permission failures surface
		// as PermissionError so the handler answers 403.
		if _, err := svc.Join(ctx, community.ID, "m1"); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
		err := svc.RemoveMember(ctx, community.ID, "m1", Actor{ID: "outsider", Role: models.RoleUser})
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Errorf("Expected PermissionError for outsider, got %v", err)
		}
	})
}

func TestCommunityService_Manage(t *testing.T) {
	svc, _, _ := newCommunityFixture(t)
	ctx := context.Background()

	community, err := svc.Create(ctx, &CommunityCreateRequest{Name: "Manage"}, Actor{ID: "creator", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Join(ctx, community.ID, "m1"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	newName := "Managed"

	t.Run("plain member cannot update", func(t *testing.T) {
		_, err := svc.Update(ctx, community.ID, &CommunityUpdateRequest{Name: &newName}, Actor{ID: "m1", Role: models.RoleUser})
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Errorf("Expected PermissionError, got %v", err)
		}
	})

	t.Run("creator updates", func(t *testing.T) {
		updated, err := svc.Update(ctx, community.ID, &CommunityUpdateRequest{Name: &newName}, Actor{ID: "creator", Role: models.RoleUser})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Name != "Managed" {
			t.Errorf("Expected updated name, got %q", updated.Name)
		}
	})

	t.Run("platform admin deletes", func(t *testing.T) {
		if err := svc.Delete(ctx, community.ID, Actor{ID: "root", Role: models.RoleAdmin}); err != nil {
			t.Errorf("Expected admin delete to succeed, got %v", err)
		}
	})
}
