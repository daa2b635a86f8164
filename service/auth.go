package service

import (
	"context"
	"errors"
	"strings"

	"infraspend/database"
	"infraspend/models"
)

var errBadCredentials = &Error{Kind: KindAuth, Message: "invalid username or password"}

// Login checks a username and password. Unknown users and wrong passwords
// fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	fe := fieldErrors{}
	if username == "" {
		fe.add("username", "is required")
	}
	if password == "" {
		fe.add("password", "is required")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	u, err := s.store.UserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		s.log.InfoContext(ctx, "login failed", "username", username, "reason", "unknown user")
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.verifier.Verify(u.Password, password) {
		s.log.InfoContext(ctx, "login failed", "username", username, "reason", "bad password")
		return nil, errBadCredentials
	}

	s.log.InfoContext(ctx, "login", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// CurrentUser resolves the actor of an authenticated session. A session whose
// user was deleted is no longer valid.
func (s *Service) CurrentUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.store.Users.FindByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, &Error{Kind: KindAuth, Message: "session user no longer exists"}
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
