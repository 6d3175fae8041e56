package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
	"billiard_pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// --- Data Transfer Objects (DTOs) ---

// LoginRequest DTO
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse DTO
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type CreateUserRequest struct {
	Username string      `json:"username" binding:"required,min=3,max=64"`
	Password string      `json:"password" binding:"required,min=8"`
	FullName string      `json:"full_name" binding:"required,max=128"`
	Role     models.Role `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	FullName *string      `json:"full_name" binding:"omitempty,max=128"`
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
	Password *string      `json:"password" binding:"omitempty,min=8"`
}

// --- AuthService Interface ---
type AuthService interface {
	Login(req LoginRequest) (*AuthResponse, error)
	GetCurrentUser(userID int64) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Login checks the password and issues a signed access token.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	if utils.IsEmpty(req.Username) || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetUserByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := utils.GenerateAccessToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	user.PasswordHash = ""
	return &AuthResponse{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) GetCurrentUser(userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	user.PasswordHash = ""
	return user, nil
}

// --- UserService Interface ---
type UserService interface {
	CreateUser(req CreateUserRequest) (*models.User, error)
	GetUsers() ([]models.User, error)
	UpdateUser(userID int64, req UpdateUserRequest) (*models.User, error)
	DeleteUser(userID int64, callerID int64) error
	EnsureAdmin(username, password string) (bool, error)
}

type userService struct {
	userRepo repositories.UserRepository
	db       *sql.DB
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo repositories.UserRepository, db *sql.DB) UserService {
	return &userService{userRepo: userRepo, db: db}
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *userService) CreateUser(req CreateUserRequest) (*models.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, NewValidationError("username", "is required")
	}
	role, ok := models.ParseRole(string(req.Role))
	if !ok {
		return nil, NewValidationError("role", "must be ADMIN, MANAGER or STAFF")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.CreateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) GetUsers() ([]models.User, error) {
	users, err := s.userRepo.GetUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) UpdateUser(userID int64, req UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		role, ok := models.ParseRole(string(*req.Role))
		if !ok {
			return nil, NewValidationError("role", "must be ADMIN, MANAGER or STAFF")
		}
		user.Role = role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	err = withTx(s.db, func(tx *sql.Tx) error {
		if err := s.userRepo.UpdateUser(tx, user); err != nil {
			return fmt.Errorf("failed to update user %d: %w", userID, err)
		}
		if req.Password != nil {
			hash, err := hashPassword(*req.Password)
			if err != nil {
				return err
			}
			if err := s.userRepo.UpdatePassword(tx, userID, hash); err != nil {
				return fmt.Errorf("failed to update password for user %d: %w", userID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) DeleteUser(userID int64, callerID int64) error {
	if userID == callerID {
		return fmt.Errorf("%w: cannot delete your own account", ErrConflict)
	}
	if err := s.userRepo.DeleteUser(s.db, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		if errors.Is(err, repositories.ErrForeignKey) {
			return fmt.Errorf("%w: user has recorded activity, deactivate instead", ErrConflict)
		}
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return nil
}

// EnsureAdmin seeds the first ADMIN account when the users table is empty.
// It reports whether an account was created.
func (s *userService) EnsureAdmin(username, password string) (bool, error) {
	n, err := s.userRepo.CountUsers()
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.CreateUser(CreateUserRequest{
		Username: username,
		Password: password,
		FullName: "Administrator",
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
