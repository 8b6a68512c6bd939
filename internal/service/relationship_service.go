package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"gorm.io/gorm"

	"microblog/internal/errors"
	"microblog/internal/model"
	"microblog/internal/repository"
)

// RelationshipService exposes follow-graph operations. Follow and Unfollow
// are idempotent: repeating either leaves the edge set unchanged.
type RelationshipService interface {
	Follow(ctx context.Context, follower *model.User, targetID uint) error
	Unfollow(ctx context.Context, follower *model.User, targetID uint) error
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	Following(ctx context.Context, userID uint) ([]model.User, error)
	Followers(ctx context.Context, userID uint) ([]model.User, error)
	Counts(ctx context.Context, userID uint) (following int64, followers int64, err error)
}

type relationshipService struct {
	relationships repository.RelationshipRepository
	users         repository.UserRepository
}

// NewRelationshipService creates a new relationship service.
func NewRelationshipService(relationships repository.RelationshipRepository, users repository.UserRepository) RelationshipService {
	return &relationshipService{relationships: relationships, users: users}
}

func (s *relationshipService) Follow(ctx context.Context, follower *model.User, targetID uint) error {
	if follower.ID == targetID {
		return errors.ErrSelfFollow
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrUserNotFound
		}
		return err
	}

	rel := &model.Relationship{FollowerID: follower.ID, FollowedID: targetID}
	if err := s.relationships.Create(ctx, rel); err != nil {
		// Concurrent or repeated follow of the same pair hits the composite
		// unique index; the edge already exists, which is what was asked for.
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("create relationship: %w", err)
	}
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, follower *model.User, targetID uint) error {
	return s.relationships.Delete(ctx, follower.ID, targetID)
}

func (s *relationshipService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.relationships.Exists(ctx, followerID, followedID)
}

func (s *relationshipService) Following(ctx context.Context, userID uint) ([]model.User, error) {
	return s.relationships.Following(ctx, userID)
}

func (s *relationshipService) Followers(ctx context.Context, userID uint) ([]model.User, error) {
	return s.relationships.Followers(ctx, userID)
}

func (s *relationshipService) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	following, err := s.relationships.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	followers, err := s.relationships.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return following, followers, nil
}
