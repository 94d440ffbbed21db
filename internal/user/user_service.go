package user

import (
	"context"
	"errors"

	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	GetProfile(ctx context.Context, id string) (UserResponse, error)
	GetAll(ctx context.Context) ([]UserResponse, error)
	Delete(ctx context.Context, id, actorID string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

// Create provisions a user at onboarding. Passwords are stored as bcrypt
// hashes; session/token issuance is handled outside this service.
func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	s.logger.Debug("create user requested",
		zap.String("username", req.Username),
		zap.String("role", req.Role),
	)

	role := req.Role
	if role == "" {
		role = RoleEmployee
	}
	if !IsValidRole(role) {
		return UserResponse{}, usererrors.ErrInvalidRole
	}

	totalDays := DefaultTotalDays
	if req.TotalDays != nil {
		totalDays = *req.TotalDays
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		return UserResponse{}, err
	}

	u := &User{
		ID:           uuid.New(),
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		TotalDays:    totalDays,
		UsedDays:     0,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("create user duplicate", zap.String("username", req.Username))
			return UserResponse{}, usererrors.ErrUserAlreadyExists
		}
		s.logger.Error("create user persist failed", zap.Error(err))
		return UserResponse{}, err
	}

	s.logger.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.String("role", u.Role),
	)
	return mapToResponse(*u), nil
}

func (s *service) GetProfile(ctx context.Context, id string) (UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UserResponse{}, usererrors.ErrInvalidUserID
	}

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

// Delete removes a user record. The balance adjustment log is append-only and
// deliberately survives the user.
func (s *service) Delete(ctx context.Context, id, actorID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return usererrors.ErrInvalidUserID
	}
	if id == actorID {
		return usererrors.ErrCannotDeleteSelf
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete user failed", zap.String("user_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", id), zap.String("actor_id", actorID))
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		TotalDays: u.TotalDays,
		UsedDays:  u.UsedDays,
		Available: u.TotalDays - u.UsedDays,
	}
}
