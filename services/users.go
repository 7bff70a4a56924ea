package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"kyc-hub/models"
)

type UserPage struct {
	Users   []models.User `json:"users"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
}

// UserService backs the admin user listing and role management
type UserService struct {
	users UserStore
	audit *AuditService
	log   *zap.Logger
}

func NewUserService(users UserStore, audit *AuditService, log *zap.Logger) *UserService {
	return &UserService{users: users, audit: audit, log: log}
}

func (s *UserService) List(ctx context.Context, f UserFilter) (*UserPage, error) {
	f.Page, f.PerPage = normalizePage(f.Page, f.PerPage, 20, 100)
	users, total, err := s.users.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return &UserPage{Users: users, Total: total, Page: f.Page, PerPage: f.PerPage}, nil
}

// UpdateRole changes a user's role. Admins cannot change their own role.
func (s *UserService) UpdateRole(ctx context.Context, actor, target primitive.ObjectID, role, ip string) error {
	if role != models.RoleUser && role != models.RoleAdmin {
		return fmt.Errorf("%w: role must be user or admin", ErrInvalidInput)
	}
	if actor == target {
		return fmt.Errorf("%w: cannot change your own role", ErrForbidden)
	}
	if err := s.users.UpdateRole(ctx, target, role); err != nil {
		return err
	}
	s.audit.Record(ctx, actor.Hex(), models.ActionRoleUpdate, map[string]interface{}{
		"target_user": target.Hex(),
		"role":        role,
	}, ip)
	return nil
}

// PurgeUnverified deletes accounts that never completed OTP verification
func (s *UserService) PurgeUnverified(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.users.DeleteUnverifiedBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("purged unverified accounts", zap.Int64("deleted", n))
	}
	return n, nil
}
