// Package user реализует управление сотрудниками руководителем.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/password"
	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/storage"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	maxPage      = 1_000_000
)

const (
	msgUsernameExists = "Username already in use!"
	msgPhoneExists    = "Phone number already in use!"
	msgCEOExists      = "There is already a CEO registered!"
	msgUserNotFound   = "User not found!"
)

// Repository — хранилище пользователей.
type Repository interface {
	CreateUser(ctx context.Context, u models.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	FindConflicts(ctx context.Context, excludeID, username, phone string) (usernameTaken, phoneTaken bool, err error)
	UpdateUser(ctx context.Context, id string, p models.UserPatch) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error)
}

// Service управляет учётными записями сотрудников.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Service.
func New(log *slog.Logger, repo Repository) *Service {
	return &Service{repo: repo, log: log}
}

// Create заводит нового активного сотрудника.
func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (string, error) {
	const op = "services.user.Create"

	usernameTaken, phoneTaken, err := s.repo.FindConflicts(ctx, "", req.Username, req.Phone)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if usernameTaken {
		return "", httperr.BadRequest(msgUsernameExists)
	}
	if phoneTaken {
		return "", httperr.BadRequest(msgPhoneExists)
	}

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateUser(ctx, models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Fullname:     req.Fullname,
		Phone:        req.Phone,
		Role:         req.Role,
		Section:      req.Section,
		Status:       models.StatusActive,
	})
	if err != nil {
		return "", conflict(op, err)
	}

	s.log.Info("user created", slog.String("user_id", id), slog.String("role", string(req.Role)))
	return id, nil
}

// Update применяет непустые поля. Пароль перехэшируется, только если он
// отличается от текущего.
func (s *Service) Update(ctx context.Context, req models.UpdateUserRequest) error {
	const op = "services.user.Update"

	current, err := s.repo.GetUserByID(ctx, req.ID)
	if err != nil {
		return conflict(op, err)
	}

	patch := models.UserPatch{Fullname: models.StringPtr(req.Fullname)}
	if req.Username != "" && req.Username != current.Username {
		patch.Username = &req.Username
	}
	if req.Phone != "" && req.Phone != current.Phone {
		patch.Phone = &req.Phone
	}
	if req.Role != "" {
		patch.Role = &req.Role
	}
	if req.Section != "" {
		patch.Section = &req.Section
	}
	if req.Status != "" {
		patch.Status = &req.Status
	}

	if patch.Username != nil || patch.Phone != nil {
		var username, phone string
		if patch.Username != nil {
			username = *patch.Username
		}
		if patch.Phone != nil {
			phone = *patch.Phone
		}
		usernameTaken, phoneTaken, err := s.repo.FindConflicts(ctx, current.ID, username, phone)
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

	if req.Password != "" && !password.Matches(current.PasswordHash, req.Password) {
		hash, err := password.GetHash(req.Password)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		patch.PasswordHash = &hash
	}

	if patch.Empty() {
		return nil
	}
	if err := s.repo.UpdateUser(ctx, current.ID, patch); err != nil {
		return conflict(op, err)
	}
	return nil
}

// List возвращает страницу сотрудников и метаданные пагинации.
func (s *Service) List(ctx context.Context, req models.ListUsersRequest) ([]models.User, models.Pagination, error) {
	const op = "services.user.List"

	f := models.UserFilter{
		Search: req.Search,
		Role:   req.Role,
		Page:   atoiOr(req.Page, defaultPage),
		Limit:  atoiOr(req.Limit, defaultLimit),
	}
	if f.Page < 1 {
		f.Page = defaultPage
	}
	if f.Page > maxPage {
		f.Page = maxPage
	}
	if f.Limit < 1 || f.Limit > maxLimit {
		f.Limit = defaultLimit
	}

	users, total, err := s.repo.ListUsers(ctx, f)
	if err != nil {
		return nil, models.Pagination{}, fmt.Errorf("%s: %w", op, err)
	}
	return users, models.NewPagination(total, f.Page, f.Limit), nil
}

// Get возвращает сотрудника по ID.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "services.user.Get"

	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, conflict(op, err)
	}
	return u, nil
}

// Delete удаляет сотрудника.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "services.user.Delete"

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return conflict(op, err)
	}
	s.log.Info("user deleted", slog.String("user_id", id))
	return nil
}

func conflict(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return httperr.NotFound(msgUserNotFound)
	case errors.Is(err, storage.ErrUsernameExists):
		return httperr.BadRequest(msgUsernameExists)
	case errors.Is(err, storage.ErrPhoneExists):
		return httperr.BadRequest(msgPhoneExists)
	case errors.Is(err, storage.ErrCEOExists):
		return httperr.BadRequest(msgCEOExists)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
