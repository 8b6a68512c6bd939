package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"microblog/internal/auth"
	"microblog/internal/cache"
	"microblog/internal/errors"
	"microblog/internal/model"
	"microblog/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// UserService exposes user lifecycle and credential operations. Every
// mutating operation takes the acting user explicitly; there is no ambient
// current-user state.
type UserService interface {
	// Register validates, normalizes the email, hashes the password and
	// creates the user. The second return value is the raw activation token.
	Register(ctx context.Context, name, email, password, confirmation string) (*model.User, string, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateProfile(ctx context.Context, actor *model.User, targetID uint, name, email string) (*model.User, error)
	SetPassword(ctx context.Context, userID uint, password, confirmation string) error
	// Authenticate returns a uniform ErrInvalidCredentials for unknown email,
	// missing credential and wrong password alike.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	// Remember issues a persistent-login token; only its digest is stored.
	Remember(ctx context.Context, userID uint) (string, error)
	Forget(ctx context.Context, userID uint) error
	AuthenticatedWithToken(user *model.User, rawToken string) bool
	Activate(ctx context.Context, email, rawToken string) error
	// Destroy removes the user together with their microposts and every
	// follow edge touching them, in one transaction.
	Destroy(ctx context.Context, actor *model.User, targetID uint) error
}

type userService struct {
	users     repository.UserRepository
	validator *UserValidator
	cache     *cache.Client
}

// NewUserService builds a UserService with repository, validator and cache.
func NewUserService(users repository.UserRepository, validator *UserValidator, cache *cache.Client) UserService {
	return &userService{users: users, validator: validator, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) Register(ctx context.Context, name, email, password, confirmation string) (*model.User, string, error) {
	if err := s.validator.ValidateNew(ctx, name, email, password, confirmation); err != nil {
		return nil, "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	activationToken := auth.NewRawToken()
	activationDigest := auth.DigestToken(activationToken)

	user := &model.User{
		Name:           name,
		Email:          NormalizeEmail(email),
		PasswordHash:   string(hashed),
		ActivationHash: &activationDigest,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The unique index closes the check-then-act window; a concurrent
		// insert of the same email surfaces here as the same field error the
		// validator would have reported.
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", errors.ValidationErrors{{Field: "email", Code: errors.CodeTaken, Message: "has already been taken"}}
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	return user, activationToken, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if found, _ := s.cache.GetJSON(ctx, s.cacheKey(id), &cached); found {
		return &cached, nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

func (s *userService) UpdateProfile(ctx context.Context, actor *model.User, targetID uint, name, email string) (*model.User, error) {
	if !actor.Admin && actor.ID != targetID {
		return nil, errors.ErrForbidden
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	if err := s.validator.ValidateProfile(ctx, user.ID, name, email); err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = NormalizeEmail(email)
	if err := s.users.Update(ctx, user); err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ValidationErrors{{Field: "email", Code: errors.CodeTaken, Message: "has already been taken"}}
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return user, nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, password, confirmation string) error {
	if password != confirmation {
		return errors.ErrConfirmationMismatch
	}
	if err := s.validator.ValidatePassword(password, confirmation); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrUserNotFound
		}
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user.PasswordHash = string(hashed)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, errors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *userService) Remember(ctx context.Context, userID uint) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.ErrUserNotFound
		}
		return "", err
	}

	raw := auth.NewRawToken()
	digest := auth.DigestToken(raw)
	user.RememberHash = &digest
	if err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("store remember digest: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return raw, nil
}

func (s *userService) Forget(ctx context.Context, userID uint) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrUserNotFound
		}
		return err
	}

	user.RememberHash = nil
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("clear remember digest: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return nil
}

// AuthenticatedWithToken reports whether a raw remember token matches the
// user's stored digest. A user without a digest never matches.
func (s *userService) AuthenticatedWithToken(user *model.User, rawToken string) bool {
	if user == nil || user.RememberHash == nil {
		return false
	}
	return auth.TokenMatches(rawToken, *user.RememberHash)
}

func (s *userService) Activate(ctx context.Context, email, rawToken string) error {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrInvalidActivation
		}
		return err
	}

	if user.Activated || user.ActivationHash == nil || !auth.TokenMatches(rawToken, *user.ActivationHash) {
		return errors.ErrInvalidActivation
	}

	now := time.Now()
	user.Activated = true
	user.ActivatedAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return nil
}

func (s *userService) Destroy(ctx context.Context, actor *model.User, targetID uint) error {
	if !actor.Admin && actor.ID != targetID {
		return errors.ErrForbidden
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrUserNotFound
		}
		return err
	}

	// Dependent rows and the user row go in one transaction so no reader can
	// observe an orphaned micropost or a dangling follow edge.
	err := s.users.WithTransaction(ctx, func(ctx context.Context, txRepo repository.UserRepository) error {
		if err := txRepo.DeleteMicroposts(ctx, targetID); err != nil {
			return err
		}
		if err := txRepo.DeleteRelationships(ctx, targetID); err != nil {
			return err
		}
		return txRepo.Delete(ctx, targetID)
	})
	if err != nil {
		return fmt.Errorf("destroy user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(targetID))
	return nil
}
