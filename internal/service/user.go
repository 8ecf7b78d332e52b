package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/forno/pizza-shop-api/internal/dto"
	"github.com/forno/pizza-shop-api/internal/model"
	"github.com/forno/pizza-shop-api/internal/permission"
	"github.com/forno/pizza-shop-api/internal/repository"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRole      = errors.New("invalid role")
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) List(ctx context.Context, search string) (*dto.UserListResponse, error) {
	users, err := s.userRepo.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	resp := &dto.UserListResponse{Total: len(users)}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}
	return resp, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// hasEmptyRequiredFields reports whether the profile fields an order
// needs are still blank. Admins may fill these in for ordinary users
// but may not overwrite populated ones.
func hasEmptyRequiredFields(u *model.User) bool {
	return u.Phone == "" || u.StreetAddress == "" || u.PostalCode == "" ||
		u.City == "" || u.Country == ""
}

// Update edits target's profile fields, gated by the permission
// evaluator. A user can always edit their own record.
func (s *UserService) Update(ctx context.Context, actorID uuid.UUID, actorRole model.UserRole, targetID uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	isOwnProfile := actorID == targetID
	if !permission.CanEditUserData(actorRole, target.Role, hasEmptyRequiredFields(target), isOwnProfile) {
		return nil, ErrPermissionDenied
	}

	if req.Name != nil {
		target.Name = *req.Name
	}
	if req.Phone != nil {
		target.Phone = *req.Phone
	}
	if req.StreetAddress != nil {
		target.StreetAddress = *req.StreetAddress
	}
	if req.PostalCode != nil {
		target.PostalCode = *req.PostalCode
	}
	if req.City != nil {
		target.City = *req.City
	}
	if req.Country != nil {
		target.Country = *req.Country
	}
	if req.Image != nil {
		target.Image = *req.Image
	}

	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	resp := toUserResponse(target)
	return &resp, nil
}

func (s *UserService) ChangeRole(ctx context.Context, actorRole model.UserRole, targetID uuid.UUID, newRole model.UserRole) error {
	if !newRole.Valid() {
		return ErrInvalidRole
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return ErrUserNotFound
	}
	if !permission.CanChangeUserRole(actorRole, target.Role, newRole) {
		return ErrPermissionDenied
	}
	if err := s.userRepo.UpdateRole(ctx, targetID, newRole); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, actorRole model.UserRole, targetID uuid.UUID) error {
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if target == nil {
		return ErrUserNotFound
	}
	if !permission.CanDeleteUser(actorRole, target.Role) {
		return ErrPermissionDenied
	}
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// CreateSuperAdmin provisions a super admin, promoting the account if
// the email already exists. The call is open until the first super
// admin exists so a fresh deployment can bootstrap itself; after that
// only a super admin may provision another.
func (s *UserService) CreateSuperAdmin(ctx context.Context, actorRole model.UserRole, req dto.CreateSuperAdminRequest) (*dto.UserResponse, error) {
	count, err := s.userRepo.CountByRole(ctx, model.RoleSuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("count super admins: %w", err)
	}
	if count > 0 && actorRole != model.RoleSuperAdmin {
		return nil, ErrPermissionDenied
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		if existing.Role != model.RoleSuperAdmin {
			if err := s.userRepo.UpdateRole(ctx, existing.ID, model.RoleSuperAdmin); err != nil {
				return nil, fmt.Errorf("promote user: %w", err)
			}
			existing.Role = model.RoleSuperAdmin
		}
		resp := toUserResponse(existing)
		return &resp, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     model.RoleSuperAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create super admin: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}
