package repository

import (
	"context"

	"gorm.io/gorm"

	"microblog/internal/model"
)

// RelationshipRepository defines follow-edge persistence operations.
type RelationshipRepository interface {
	Create(ctx context.Context, rel *model.Relationship) error
	Delete(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Following(ctx context.Context, userID uint) ([]model.User, error)
	Followers(ctx context.Context, userID uint) ([]model.User, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
}

type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new relationship repository.
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

// Create inserts a follow edge. A duplicate edge surfaces as
// gorm.ErrDuplicatedKey via the composite unique index; the caller decides
// whether that is benign.
func (r *relationshipRepository) Create(ctx context.Context, rel *model.Relationship) error {
	return r.db.WithContext(ctx).Create(rel).Error
}

// Delete removes the edge if present. Deleting a missing edge is a no-op.
func (r *relationshipRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&model.Relationship{}).Error
}

func (r *relationshipRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Relationship{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Following returns the users this user follows.
func (r *relationshipRepository) Following(ctx context.Context, userID uint) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN relationships ON relationships.followed_id = users.id").
		Where("relationships.follower_id = ?", userID).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Followers returns the users following this user.
func (r *relationshipRepository) Followers(ctx context.Context, userID uint) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN relationships ON relationships.follower_id = users.id").
		Where("relationships.followed_id = ?", userID).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *relationshipRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Relationship{}).
		Where("follower_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *relationshipRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Relationship{}).
		Where("followed_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
