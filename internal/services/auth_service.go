package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"aaf11/internal/domain"
	"aaf11/internal/repos"
	"aaf11/internal/validate"
)

var ErrBadCreds = errors.New("invalid username or password")

const bcryptCost = 12

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(ctx context.Context, sid, username, password string) (*domain.User, error) {
	u, err := s.Users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBadCreds
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, sid)
}

// EnsureUser creates the account or resets its password and role. Used to
// bootstrap the admin from configuration on every start.
func (s *AuthService) EnsureUser(ctx context.Context, username, password, role string) (*domain.User, error) {
	name, ok := validate.Username(username)
	if !ok {
		return nil, fmt.Errorf("username %q: 3-32 letters, digits, dot, dash or underscore", username)
	}
	if !validate.Password(password) {
		return nil, fmt.Errorf("password for %s: 8-72 chars with upper, lower, digit and symbol", name)
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	if err := s.Users.Upsert(ctx, &domain.User{Username: name, Hash: string(h), Role: role}); err != nil {
		return nil, err
	}
	return s.Users.ByUsername(ctx, name)
}
