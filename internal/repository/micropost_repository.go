package repository

import (
	"context"

	"gorm.io/gorm"

	"microblog/internal/model"
)

// feedOrder sorts newest first; the id tie-break keeps posts created in the
// same instant in stable insertion order.
const feedOrder = "created_at DESC, id DESC"

// MicropostRepository defines micropost persistence operations.
type MicropostRepository interface {
	Create(ctx context.Context, post *model.Micropost) error
	FindByID(ctx context.Context, id uint) (*model.Micropost, error)
	Delete(ctx context.Context, id uint) error
	ListByAuthor(ctx context.Context, authorID uint) ([]model.Micropost, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Feed(ctx context.Context, userID uint) ([]model.Micropost, error)
}

type micropostRepository struct {
	db *gorm.DB
}

// NewMicropostRepository creates a new micropost repository.
func NewMicropostRepository(db *gorm.DB) MicropostRepository {
	return &micropostRepository{db: db}
}

func (r *micropostRepository) Create(ctx context.Context, post *model.Micropost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *micropostRepository) FindByID(ctx context.Context, id uint) (*model.Micropost, error) {
	var post model.Micropost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *micropostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Micropost{}, id).Error
}

// ListByAuthor returns the user's own posts, newest first.
func (r *micropostRepository) ListByAuthor(ctx context.Context, authorID uint) ([]model.Micropost, error) {
	var posts []model.Micropost
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order(feedOrder).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *micropostRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Micropost{}).
		Where("author_id = ?", authorID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Feed returns the user's own posts merged with posts of everyone they
// follow, newest first.
func (r *micropostRepository) Feed(ctx context.Context, userID uint) ([]model.Micropost, error) {
	followedIDs := r.db.Model(&model.Relationship{}).
		Select("followed_id").
		Where("follower_id = ?", userID)

	var posts []model.Micropost
	if err := r.db.WithContext(ctx).
		Where("author_id = ? OR author_id IN (?)", userID, followedIDs).
		Order(feedOrder).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
