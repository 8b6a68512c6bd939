package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"microblog/internal/auth"
	"microblog/internal/errors"
	"microblog/internal/model"
)

func newUserService(repo *MockUserRepository) UserService {
	return NewUserService(repo, NewUserValidator(repo), nil)
}

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name         string
		userName     string
		email        string
		password     string
		confirmation string
		setupMock    func(*MockUserRepository)
		wantEmail    string
		wantErr      bool
	}{
		{
			name:         "successful registration lower-cases the email",
			userName:     "Example",
			email:        "Foo@exampLE.COM",
			password:     "password",
			confirmation: "password",
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "foo@example.com", uint(0)).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			wantEmail: "foo@example.com",
		},
		{
			name:         "validation failure never reaches the store",
			userName:     "",
			email:        "bad",
			password:     "pw",
			confirmation: "other",
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "bad", uint(0)).Return(false, nil)
			},
			wantErr: true,
		},
		{
			name:         "concurrent duplicate insert maps to taken email",
			userName:     "Example",
			email:        "dup@example.com",
			password:     "password",
			confirmation: "password",
			setupMock: func(m *MockUserRepository) {
				m.On("EmailTaken", mock.Anything, "dup@example.com", uint(0)).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newUserService(mockRepo)
			user, activationToken, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password, tt.confirmation)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, user)
				var verrs errors.ValidationErrors
				assert.True(t, stderrors.As(err, &verrs))
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantEmail, user.Email)
			assert.NotEmpty(t, user.PasswordHash)
			assert.NotEqual(t, tt.password, user.PasswordHash)
			assert.NotEmpty(t, activationToken)
			assert.NotNil(t, user.ActivationHash)
			assert.True(t, auth.TokenMatches(activationToken, *user.ActivationHash))
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
	stored := &model.User{ID: 1, Email: "user@example.com", PasswordHash: string(hashed)}

	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(*MockUserRepository)
		wantErr   error
	}{
		{
			name:     "correct password",
			email:    "user@example.com",
			password: "password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(stored, nil)
			},
		},
		{
			name:     "mixed case email still authenticates",
			email:    "USER@Example.COM",
			password: "password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "user@example.com",
			password: "passw0rd",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(stored, nil)
			},
			wantErr: errors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email yields the same error as wrong password",
			email:    "nobody@example.com",
			password: "password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: errors.ErrInvalidCredentials,
		},
		{
			name:     "missing stored hash",
			email:    "user@example.com",
			password: "password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{ID: 2, Email: "user@example.com"}, nil)
			},
			wantErr: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newUserService(mockRepo)
			user, err := svc.Authenticate(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "user@example.com", user.Email)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_SetPassword(t *testing.T) {
	t.Run("confirmation mismatch", func(t *testing.T) {
		svc := newUserService(new(MockUserRepository))
		err := svc.SetPassword(context.Background(), 1, "newpassword", "different")
		assert.ErrorIs(t, err, errors.ErrConfirmationMismatch)
	})

	t.Run("rehashes and stores", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		user := &model.User{ID: 1, Email: "user@example.com", PasswordHash: "old"}
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
		mockRepo.On("Update", mock.Anything, user).Return(nil)

		svc := newUserService(mockRepo)
		err := svc.SetPassword(context.Background(), 1, "newpassword", "newpassword")
		assert.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newpassword")))
		mockRepo.AssertExpectations(t)
	})
}

func TestUserService_RememberAndForget(t *testing.T) {
	mockRepo := new(MockUserRepository)
	user := &model.User{ID: 1, Email: "user@example.com"}
	mockRepo.On("FindByID", mock.Anything, uint(1)).Return(user, nil)
	mockRepo.On("Update", mock.Anything, user).Return(nil)

	svc := newUserService(mockRepo)

	raw, err := svc.Remember(context.Background(), 1)
	assert.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NotNil(t, user.RememberHash)
	assert.NotEqual(t, raw, *user.RememberHash)

	assert.True(t, svc.AuthenticatedWithToken(user, raw))
	assert.False(t, svc.AuthenticatedWithToken(user, "some-other-token"))

	assert.NoError(t, svc.Forget(context.Background(), 1))
	assert.Nil(t, user.RememberHash)
	assert.False(t, svc.AuthenticatedWithToken(user, raw))
}

func TestUserService_AuthenticatedWithToken_NoDigest(t *testing.T) {
	svc := newUserService(new(MockUserRepository))
	assert.False(t, svc.AuthenticatedWithToken(&model.User{ID: 1}, "anything"))
	assert.False(t, svc.AuthenticatedWithToken(nil, "anything"))
}

func TestUserService_Destroy(t *testing.T) {
	t.Run("cascades posts and edges with the user in one transaction", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		target := &model.User{ID: 5, Email: "victim@example.com"}
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(target, nil)
		mockRepo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("DeleteMicroposts", mock.Anything, uint(5)).Return(nil)
		mockRepo.On("DeleteRelationships", mock.Anything, uint(5)).Return(nil)
		mockRepo.On("Delete", mock.Anything, uint(5)).Return(nil)

		svc := newUserService(mockRepo)
		admin := &model.User{ID: 1, Admin: true}
		assert.NoError(t, svc.Destroy(context.Background(), admin, 5))
		mockRepo.AssertExpectations(t)
	})

	t.Run("self destroy is allowed", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		target := &model.User{ID: 5, Email: "me@example.com"}
		mockRepo.On("FindByID", mock.Anything, uint(5)).Return(target, nil)
		mockRepo.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("DeleteMicroposts", mock.Anything, uint(5)).Return(nil)
		mockRepo.On("DeleteRelationships", mock.Anything, uint(5)).Return(nil)
		mockRepo.On("Delete", mock.Anything, uint(5)).Return(nil)

		svc := newUserService(mockRepo)
		assert.NoError(t, svc.Destroy(context.Background(), target, 5))
		mockRepo.AssertExpectations(t)
	})

	t.Run("non-admin cannot destroy others", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := newUserService(mockRepo)
		actor := &model.User{ID: 2}
		err := svc.Destroy(context.Background(), actor, 5)
		assert.ErrorIs(t, err, errors.ErrForbidden)
		mockRepo.AssertNotCalled(t, "WithTransaction", mock.Anything, mock.Anything)
	})

	t.Run("missing target", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)
		svc := newUserService(mockRepo)
		admin := &model.User{ID: 1, Admin: true}
		assert.ErrorIs(t, svc.Destroy(context.Background(), admin, 9), errors.ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("normalizes the new email", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		user := &model.User{ID: 3, Name: "Old", Email: "old@example.com"}
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(user, nil)
		mockRepo.On("EmailTaken", mock.Anything, "new@example.com", uint(3)).Return(false, nil)
		mockRepo.On("Update", mock.Anything, user).Return(nil)

		svc := newUserService(mockRepo)
		updated, err := svc.UpdateProfile(context.Background(), user, 3, "New Name", "NEW@Example.Com")
		assert.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		assert.Equal(t, "New Name", updated.Name)
	})

	t.Run("non-admin cannot edit others", func(t *testing.T) {
		svc := newUserService(new(MockUserRepository))
		actor := &model.User{ID: 2}
		_, err := svc.UpdateProfile(context.Background(), actor, 3, "X", "x@example.com")
		assert.ErrorIs(t, err, errors.ErrForbidden)
	})
}

func TestUserService_Activate(t *testing.T) {
	digest := auth.DigestToken("raw-token")

	t.Run("matching token activates", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		user := &model.User{ID: 1, Email: "user@example.com", ActivationHash: &digest}
		mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(user, nil)
		mockRepo.On("Update", mock.Anything, user).Return(nil)

		svc := newUserService(mockRepo)
		assert.NoError(t, svc.Activate(context.Background(), "User@Example.com", "raw-token"))
		assert.True(t, user.Activated)
		assert.NotNil(t, user.ActivatedAt)
	})

	t.Run("wrong token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		user := &model.User{ID: 1, Email: "user@example.com", ActivationHash: &digest}
		mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(user, nil)

		svc := newUserService(mockRepo)
		err := svc.Activate(context.Background(), "user@example.com", "bogus")
		assert.ErrorIs(t, err, errors.ErrInvalidActivation)
		assert.False(t, user.Activated)
	})
}
