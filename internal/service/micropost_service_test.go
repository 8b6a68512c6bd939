package service

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"microblog/internal/errors"
	"microblog/internal/model"
)

func TestMicropostService_AddPost(t *testing.T) {
	author := &model.User{ID: 1, Name: "Example"}

	tests := []struct {
		name     string
		content  string
		wantErr  bool
		wantCode string
	}{
		{name: "valid post", content: "Lorem ipsum"},
		{name: "content at the limit", content: strings.Repeat("a", 140)},
		{name: "multibyte content at the limit", content: strings.Repeat("あ", 140)},
		{name: "multibyte content over the limit", content: strings.Repeat("あ", 141), wantErr: true, wantCode: errors.CodeTooLong},
		{name: "blank content", content: "   ", wantErr: true, wantCode: errors.CodeBlank},
		{name: "content too long", content: strings.Repeat("a", 141), wantErr: true, wantCode: errors.CodeTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockMicropostRepository)
			if !tt.wantErr {
				mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Micropost")).Return(nil)
			}

			svc := NewMicropostService(mockRepo)
			post, err := svc.AddPost(context.Background(), author, tt.content, "")

			if tt.wantErr {
				var verrs errors.ValidationErrors
				assert.True(t, stderrors.As(err, &verrs))
				assert.True(t, verrs.Has("content", tt.wantCode))
				assert.Nil(t, post)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, author.ID, post.AuthorID)
				assert.Equal(t, tt.content, post.Content)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestMicropostService_FeedFor(t *testing.T) {
	now := time.Now()
	newest := model.Micropost{ID: 3, AuthorID: 1, Content: "today", CreatedAt: now}
	older := model.Micropost{ID: 2, AuthorID: 2, Content: "yesterday", CreatedAt: now.Add(-24 * time.Hour)}

	mockRepo := new(MockMicropostRepository)
	mockRepo.On("Feed", mock.Anything, uint(1)).Return([]model.Micropost{newest, older}, nil)

	svc := NewMicropostService(mockRepo)
	posts, err := svc.FeedFor(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, uint(3), posts[0].ID)
	assert.True(t, !posts[0].CreatedAt.Before(posts[1].CreatedAt))
	mockRepo.AssertExpectations(t)
}

func TestMicropostService_PostsBy(t *testing.T) {
	mockRepo := new(MockMicropostRepository)
	mockRepo.On("ListByAuthor", mock.Anything, uint(7)).Return([]model.Micropost{}, nil)

	svc := NewMicropostService(mockRepo)
	posts, err := svc.PostsBy(context.Background(), 7)

	assert.NoError(t, err)
	assert.Empty(t, posts)
	mockRepo.AssertExpectations(t)
}

func TestMicropostService_RemovePost(t *testing.T) {
	owner := &model.User{ID: 1}
	stranger := &model.User{ID: 2}
	post := &model.Micropost{ID: 10, AuthorID: 1, Content: "mine"}

	tests := []struct {
		name      string
		actor     *model.User
		setupMock func(*MockMicropostRepository)
		wantErr   error
	}{
		{
			name:  "owner deletes their post",
			actor: owner,
			setupMock: func(m *MockMicropostRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(post, nil)
				m.On("Delete", mock.Anything, uint(10)).Return(nil)
			},
		},
		{
			name:  "non-owner is refused",
			actor: stranger,
			setupMock: func(m *MockMicropostRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(post, nil)
			},
			wantErr: errors.ErrNotFoundOrForbidden,
		},
		{
			name:  "missing post reads the same as forbidden",
			actor: owner,
			setupMock: func(m *MockMicropostRepository) {
				m.On("FindByID", mock.Anything, uint(10)).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: errors.ErrNotFoundOrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockMicropostRepository)
			tt.setupMock(mockRepo)

			svc := NewMicropostService(mockRepo)
			err := svc.RemovePost(context.Background(), tt.actor, 10)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
