package repository

import (
	"context"
	"errors"

	"campusconnect/internal/entity"
	"campusconnect/pkg/docstore"
)

type UserRepository interface {
	Get(ctx context.Context, userId string) (entity.User, error)
	EnsureProfile(ctx context.Context, user entity.User) error
	Update(ctx context.Context, userId string, update entity.ProfileUpdate) error
	SetPresence(ctx context.Context, userId string, online bool) error
}

type userRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepository{
		store: store,
	}
}

func (r *userRepository) Get(ctx context.Context, userId string) (entity.User, error) {
	doc, err := r.store.Get(ctx, usersCollection, userId)
	if err != nil {
		return entity.User{}, readErr(err)
	}
	return decodeUser(doc), nil
}

// EnsureProfile creates the profile on first sign-in and leaves an existing
// one untouched.
func (r *userRepository) EnsureProfile(ctx context.Context, user entity.User) error {
	_, err := r.store.Get(ctx, usersCollection, user.Id)
	if err == nil {
		return nil
	}
	if !errors.Is(readErr(err), ErrNotFound) {
		return err
	}

	role := user.Role
	if !role.Valid() {
		role = entity.RoleStudent
	}
	fields := map[string]any{
		"name":      user.Name,
		"photoURL":  user.Photo,
		"role":      string(role),
		"online":    false,
		"createdAt": docstore.ServerTimestamp,
		"updatedAt": docstore.ServerTimestamp,
	}
	return writeErr(r.store.Set(ctx, usersCollection, user.Id, fields, docstore.SetOptions{Merge: true}))
}

func (r *userRepository) Update(ctx context.Context, userId string, update entity.ProfileUpdate) error {
	fields := map[string]any{
		"updatedAt": docstore.ServerTimestamp,
	}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Photo != nil {
		fields["photoURL"] = *update.Photo
	}
	if update.Branch != nil {
		fields["branch"] = *update.Branch
	}
	if update.Batch != nil {
		fields["batch"] = *update.Batch
	}
	if update.Bio != nil {
		fields["bio"] = *update.Bio
	}
	if update.Role != nil {
		fields["role"] = string(*update.Role)
	}
	if update.CommunityName != nil {
		fields["community_name"] = *update.CommunityName
	}
	return writeErr(r.store.Set(ctx, usersCollection, userId, fields, docstore.SetOptions{Merge: true}))
}

func (r *userRepository) SetPresence(ctx context.Context, userId string, online bool) error {
	fields := map[string]any{
		"online":   online,
		"lastSeen": docstore.ServerTimestamp,
	}
	return writeErr(r.store.Set(ctx, usersCollection, userId, fields, docstore.SetOptions{Merge: true}))
}

func decodeUser(doc docstore.Document) entity.User {
	online, _ := doc.Fields["online"].(bool)
	return entity.User{
		Id:            doc.Id,
		Name:          firstString(doc, "name", "Name"),
		Photo:         firstString(doc, "photoURL", "photoUrl"),
		Branch:        firstString(doc, "branch", "Branch"),
		Batch:         firstString(doc, "batch", "Batch"),
		Bio:           firstString(doc, "bio", "BIO"),
		Role:          entity.Role(doc.String("role")),
		CommunityName: doc.String("community_name"),
		Online:        online,
		LastSeen:      timeOrZero(doc, "lastSeen"),
		CreatedAt:     timeOrZero(doc, "createdAt"),
		UpdatedAt:     timeOrZero(doc, "updatedAt"),
	}
}
