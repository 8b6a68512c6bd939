package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"microblog/internal/errors"
	"microblog/internal/model"
	"microblog/internal/repository"
)

// MicropostService exposes post creation, feeds and deletion.
type MicropostService interface {
	AddPost(ctx context.Context, author *model.User, content, picture string) (*model.Micropost, error)
	// FeedFor returns the user's own posts merged with posts of every user
	// they follow, newest first.
	FeedFor(ctx context.Context, userID uint) ([]model.Micropost, error)
	// PostsBy returns only the user's own posts, newest first.
	PostsBy(ctx context.Context, userID uint) ([]model.Micropost, error)
	// RemovePost deletes a post if it exists and the actor owns it.
	RemovePost(ctx context.Context, actor *model.User, postID uint) error
}

type micropostService struct {
	posts repository.MicropostRepository
}

// NewMicropostService creates a new micropost service.
func NewMicropostService(posts repository.MicropostRepository) MicropostService {
	return &micropostService{posts: posts}
}

func (s *micropostService) AddPost(ctx context.Context, author *model.User, content, picture string) (*model.Micropost, error) {
	if errs := contentRules(content); len(errs) > 0 {
		return nil, errs
	}

	post := &model.Micropost{
		Content:  content,
		Picture:  picture,
		AuthorID: author.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create micropost: %w", err)
	}
	return post, nil
}

func (s *micropostService) FeedFor(ctx context.Context, userID uint) ([]model.Micropost, error) {
	return s.posts.Feed(ctx, userID)
}

func (s *micropostService) PostsBy(ctx context.Context, userID uint) ([]model.Micropost, error) {
	return s.posts.ListByAuthor(ctx, userID)
}

// RemovePost deliberately reports a missing post and a post owned by someone
// else identically, so a non-owner cannot enumerate post IDs.
func (s *micropostService) RemovePost(ctx context.Context, actor *model.User, postID uint) error {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrNotFoundOrForbidden
		}
		return err
	}
	if post.AuthorID != actor.ID {
		return errors.ErrNotFoundOrForbidden
	}
	return s.posts.Delete(ctx, postID)
}

func contentRules(content string) errors.ValidationErrors {
	return runRules([]rule{
		{"content", errors.CodeBlank, "can't be blank", func() bool { return strings.TrimSpace(content) != "" }},
		{"content", errors.CodeTooLong, "is too long (maximum is 140 characters)", func() bool { return utf8.RuneCountInString(content) <= model.MaxContentLength }},
	})
}
