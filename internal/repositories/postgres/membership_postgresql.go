package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
)

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipPostgreSQL(db *gorm.DB) repositories.MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Get(ctx context.Context, userID, communityID string) (*models.Membership, error) {
	var membership models.Membership
	if err := r.db.WithContext(ctx).
		First(&membership, "user_id = ? AND community_id = ?", userID, communityID).Error; err != nil {
		return nil, handleDBError(err, "get membership")
	}
	return &membership, nil
}

func (r *membershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return handleDBError(err, "create membership")
	}
	return nil
}

func (r *membershipRepository) UpdateRole(ctx context.Context, userID, communityID string, role models.CommunityRole) error {
	result := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		Update("role", role)
	if result.Error != nil {
		return handleDBError(result.Error, "update membership role")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update membership role")
	}
	return nil
}

func (r *membershipRepository) Delete(ctx context.Context, userID, communityID string) error {
	result := r.db.WithContext(ctx).
		Delete(&models.Membership{}, "user_id = ? AND community_id = ?", userID, communityID)
	if result.Error != nil {
		return handleDBError(result.Error, "delete membership")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "delete membership")
	}
	return nil
}

func (r *membershipRepository) ListMembers(ctx context.Context, communityID string, filters repositories.PageFilters) ([]*models.Membership, int64, error) {
	var memberships []*models.Membership
	var total int64

	countQuery := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("community_id = ?", communityID)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count community members")
	}

	query := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_communities.community_id = ?", communityID).
		Joins("JOIN users ON users.id = user_communities.user_id").
		Order(memberRankOrder).
		Preload("User")
	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&memberships).Error; err != nil {
		return nil, 0, handleDBError(err, "list community members")
	}

	return memberships, total, nil
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID string, filters repositories.PageFilters) ([]*models.Membership, int64, error) {
	var memberships []*models.Membership
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count user memberships")
	}

	query = applyPagination(
		query.Preload("Community").Order("joined_at DESC"),
		filters.Limit, filters.Offset,
	)
	if err := query.Find(&memberships).Error; err != nil {
		return nil, 0, handleDBError(err, "list user memberships")
	}

	return memberships, total, nil
}

func (r *membershipRepository) CountMembers(ctx context.Context, communityID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count members")
	}
	return count, nil
}

func (r *membershipRepository) CountAdmins(ctx context.Context, communityID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("community_id = ? AND role = ?", communityID, models.CommunityAdmin).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count admins")
	}
	return count, nil
}

func (r *membershipRepository) CountAdminsForUpdate(ctx context.Context, communityID string) (int64, error) {
	// Lock the admin rows, then count them. Count on a locked SELECT is not
	// expressible in one gorm call, so fetch the rows and measure the slice.
	var admins []models.Membership
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("community_id = ? AND role = ?", communityID, models.CommunityAdmin).
		Find(&admins).Error
	if err != nil {
		return 0, handleDBError(err, "count admins for update")
	}
	return int64(len(admins)), nil
}
