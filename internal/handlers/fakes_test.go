package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
)

var errDatabaseDown = errors.New("database down")

type fakeUsers struct {
	users map[uuid.UUID]*models.User
	meta  map[uuid.UUID]map[string]string

	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users: make(map[uuid.UUID]*models.User),
		meta:  make(map[uuid.UUID]map[string]string),
	}
}

func (f *fakeUsers) add(u *models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Login, login) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) LoginExists(ctx context.Context, login string) (bool, error) {
	u, _ := f.GetByLogin(ctx, login)
	return u != nil, nil
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if existing, _ := f.GetByEmail(ctx, u.Email); existing != nil {
		return fmt.Errorf("a user with this login or email already exists")
	}
	f.add(u)
	return nil
}

func (f *fakeUsers) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("user %s not found", id)
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) GetMeta(ctx context.Context, id uuid.UUID, key string) (string, error) {
	return f.meta[id][key], nil
}

func (f *fakeUsers) SetMeta(ctx context.Context, id uuid.UUID, key, value string) error {
	if f.meta[id] == nil {
		f.meta[id] = make(map[string]string)
	}
	f.meta[id][key] = value
	return nil
}

func (f *fakeUsers) DeleteMeta(ctx context.Context, id uuid.UUID, key string) error {
	delete(f.meta[id], key)
	return nil
}
