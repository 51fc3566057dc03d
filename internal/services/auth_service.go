package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Ankitaa-Mannaa/task-manager/internal/authz"
	"github.com/Ankitaa-Mannaa/task-manager/internal/models"
	"github.com/Ankitaa-Mannaa/task-manager/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMissingFields        = errors.New("name, email, and password are required")
	ErrMissingCredentials   = errors.New("email and password are required")
	ErrEmailTaken           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountDisabled      = errors.New("account is not active")
	ErrRoleChangeForbidden  = errors.New("only admins can change roles")
	ErrInvalidRole          = errors.New("invalid role")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// Actor is the authenticated identity performing a request. The role is
// always freshly loaded from the user table, never taken from the token.
type Actor struct {
	ID   uint64
	Role models.Role
}

// AuthService handles signup, login, and role administration.
type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Name      string
	Email     string
	Password  string
	Role      models.Role
	ManagerID *uint64
}

// Signup creates a new user. The first user ever created becomes admin
// regardless of the requested role; everyone else gets the requested role if
// it is user or manager, and user otherwise.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	role := input.Role
	if !models.ValidRequestedRole(role) {
		role = models.RoleUser
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		ManagerID:    input.ManagerID,
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.CreateWithBootstrapRole(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns a signed bearer token plus the
// user's current role. The token carries only the user id as subject.
func (s *AuthService) Login(input LoginInput) (string, models.Role, error) {
	email := NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return "", "", ErrMissingCredentials
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	if user.Status != models.UserStatusActive {
		return "", "", ErrAccountDisabled
	}

	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.userRepo.RecordLogin(user.ID, now); err != nil {
		return "", "", fmt.Errorf("failed to record login: %w", err)
	}

	return token, user.Role, nil
}

// ChangeRole sets another user's role. Admin-only, and the target role can
// never be admin through this path.
func (s *AuthService) ChangeRole(actor Actor, targetID uint64, role models.Role) error {
	if !authz.CanAssignRole(actor.Role) {
		return ErrRoleChangeForbidden
	}
	if !models.ValidRequestedRole(role) {
		return ErrInvalidRole
	}

	matched, err := s.userRepo.UpdateRole(targetID, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if !matched {
		return ErrUserNotFound
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
