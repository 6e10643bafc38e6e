package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campusconnect/internal/entity"
	"campusconnect/internal/repository"
)

type UserUsecase interface {
	Get(ctx context.Context, userId string) (entity.User, error)
	// EnsureProfile creates a profile on first sign-in.
	EnsureProfile(ctx context.Context, userId, name string) (entity.User, error)
	UpdateProfile(ctx context.Context, userId string, update entity.ProfileUpdate) (entity.User, error)
	SetPresence(ctx context.Context, userId string, online bool) error
	GetOnlineUsers(ctx context.Context, userIds []string) ([]entity.User, error)
}

type userUsecase struct {
	userRepo repository.UserRepository
	profiles *ProfileResolver
}

func NewUserUseCase(userRepo repository.UserRepository, profiles *ProfileResolver) UserUsecase {
	return &userUsecase{
		userRepo: userRepo,
		profiles: profiles,
	}
}

func (u *userUsecase) Get(ctx context.Context, userId string) (entity.User, error) {
	user, err := u.userRepo.Get(ctx, userId)
	if err != nil {
		return entity.User{}, err
	}

	return user, nil
}

func (u *userUsecase) EnsureProfile(ctx context.Context, userId, name string) (entity.User, error) {
	if userId == "" {
		return entity.User{}, fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	err := u.userRepo.EnsureProfile(ctx, entity.User{
		Id:   userId,
		Name: strings.TrimSpace(name),
		Role: entity.RoleStudent,
	})
	if err != nil {
		return entity.User{}, err
	}
	return u.userRepo.Get(ctx, userId)
}

func (u *userUsecase) UpdateProfile(ctx context.Context, userId string, update entity.ProfileUpdate) (entity.User, error) {
	if update.Empty() {
		return entity.User{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return entity.User{}, fmt.Errorf("%w: name cannot be blank", ErrInvalidInput)
	}
	if update.Role != nil && !update.Role.Valid() {
		return entity.User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, *update.Role)
	}

	if err := u.userRepo.Update(ctx, userId, update); err != nil {
		return entity.User{}, err
	}
	u.profiles.Forget(userId)
	return u.userRepo.Get(ctx, userId)
}

func (u *userUsecase) SetPresence(ctx context.Context, userId string, online bool) error {
	return u.userRepo.SetPresence(ctx, userId, online)
}

// GetOnlineUsers returns the profiles among userIds that are marked online.
// Unknown ids are skipped.
func (u *userUsecase) GetOnlineUsers(ctx context.Context, userIds []string) ([]entity.User, error) {
	var out []entity.User
	for _, id := range userIds {
		user, err := u.userRepo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if user.Online {
			out = append(out, user)
		}
	}
	return out, nil
}
