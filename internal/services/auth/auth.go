// Package auth содержит логику входа, регистрации руководителя и
// самостоятельного изменения профиля.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/password"
	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/storage"
)

// Сообщения об ошибках, которые видит клиент.
const (
	msgInvalidCredentials = "Invalid username or password!"
	msgInvalidRegKey      = "Invalid registration key!"
	msgCEOExists          = "There is already a CEO registered!"
	msgUsernameExists     = "Username already in use!"
	msgPhoneExists        = "Phone number already in use!"
	msgOldPassword        = "Old password is incorrect!"
	msgSamePassword       = "New password cannot be same as old password!"
	msgUserNotFound       = "User not found!"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CEOExists(ctx context.Context) (bool, error)
	FindConflicts(ctx context.Context, excludeID, username, phone string) (usernameTaken, phoneTaken bool, err error)
	UpdateUser(ctx context.Context, id string, p models.UserPatch) error
}

// TokenMaker выпускает токены доступа.
type TokenMaker interface {
	GenerateToken(userID string) (string, error)
}

// Service отвечает за аутентификацию и профиль текущего пользователя.
type Service struct {
	users  UserRepository
	tokens TokenMaker
	regKey string
	log    *slog.Logger
}

// New создает новый экземпляр Service. regKey используется для регистрации руководителя.
func New(log *slog.Logger, users UserRepository, tokens TokenMaker, regKey string) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		regKey: regKey,
		log:    log,
	}
}

// Login проверяет пароль и выпускает токен доступа.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", httperr.BadRequest(msgInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !password.Matches(user.PasswordHash, req.Password) {
		return "", httperr.BadRequest(msgInvalidCredentials)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// SignUpCEO создаёт единственного руководителя, если ключ регистрации верен.
func (s *Service) SignUpCEO(ctx context.Context, req models.SignUpCEORequest) error {
	const op = "services.auth.SignUpCEO"

	if s.regKey == "" || subtle.ConstantTimeCompare([]byte(req.RegKey), []byte(s.regKey)) != 1 {
		return httperr.BadRequest(msgInvalidRegKey)
	}

	exists, err := s.users.CEOExists(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if exists {
		return httperr.BadRequest(msgCEOExists)
	}

	taken, _, err := s.users.FindConflicts(ctx, "", req.Username, "")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		return httperr.BadRequest(msgUsernameExists)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.users.CreateUser(ctx, models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleCEO,
		Status:       models.StatusActive,
	})
	if err != nil {
		return conflict(op, err)
	}

	s.log.Info("ceo registered", slog.String("user_id", id))
	return nil
}

// UpdateMe меняет переданные непустые поля профиля текущего пользователя.
func (s *Service) UpdateMe(ctx context.Context, user *models.User, req models.UpdateMeRequest) error {
	const op = "services.auth.UpdateMe"

	var patch models.UserPatch
	patch.Fullname = models.StringPtr(req.Fullname)
	if req.Username != "" && req.Username != user.Username {
		patch.Username = &req.Username
	}
	if req.Phone != "" && req.Phone != user.Phone {
		patch.Phone = &req.Phone
	}

	if patch.Username != nil || patch.Phone != nil {
		usernameTaken, phoneTaken, err := s.users.FindConflicts(ctx, user.ID,
			derefOrEmpty(patch.Username), derefOrEmpty(patch.Phone))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if usernameTaken {
			return httperr.BadRequest(msgUsernameExists)
		}
		if phoneTaken {
			return httperr.BadRequest(msgPhoneExists)
		}
	}

	if patch.Empty() {
		return nil
	}
	if err := s.users.UpdateUser(ctx, user.ID, patch); err != nil {
		return conflict(op, err)
	}
	return nil
}

// UpdatePassword меняет пароль после проверки текущего.
func (s *Service) UpdatePassword(ctx context.Context, userID string, req models.UpdatePasswordRequest) error {
	const op = "services.auth.UpdatePassword"

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return httperr.NotFound(msgUserNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !password.Matches(user.PasswordHash, req.CurrentPassword) {
		return httperr.BadRequest(msgOldPassword)
	}
	if password.Matches(user.PasswordHash, req.NewPassword) {
		return httperr.BadRequest(msgSamePassword)
	}

	hash, err := password.GetHash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateUser(ctx, userID, models.UserPatch{PasswordHash: &hash}); err != nil {
		return conflict(op, err)
	}
	return nil
}

// conflict превращает нарушения уникальности из базы в ответы 400.
func conflict(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrUsernameExists):
		return httperr.BadRequest(msgUsernameExists)
	case errors.Is(err, storage.ErrPhoneExists):
		return httperr.BadRequest(msgPhoneExists)
	case errors.Is(err, storage.ErrCEOExists):
		return httperr.BadRequest(msgCEOExists)
	case errors.Is(err, storage.ErrNotFound):
		return httperr.NotFound(msgUserNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
