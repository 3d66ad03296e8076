package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"blog-cms/config"
	"blog-cms/models"
	"blog-cms/repositories"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// EnsureAdmin creates the configured administrator if it does not exist yet.
	EnsureAdmin(ctx context.Context, admin config.AdminConfig) error
}

type authService struct {
	userRepo repositories.UserRepository
	jwt      config.JWTConfig
	now      func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, jwtConf config.JWTConfig) AuthService {
	return &authService{userRepo: userRepo, jwt: jwtConf, now: time.Now}
}

var errInvalidCredentials = models.ErrorUnauthorized{Message: "invalid credentials"}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.ErrorConflict{Message: "user already exists"}
	}

	user, err := s.createUser(ctx, username, email, req.Password, models.RoleAuthor)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		var nf models.ErrorNotFound
		if errors.As(err, &nf) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	return s.respond(user)
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *authService) EnsureAdmin(ctx context.Context, admin config.AdminConfig) error {
	if admin.Username == "" {
		return nil
	}
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, admin.Username, admin.Email)
	if err != nil || exists {
		return err
	}
	if admin.Password == "" {
		return models.ErrorBadRequest{Message: "admin.password is required to seed " + admin.Username}
	}
	if _, err := s.createUser(ctx, admin.Username, admin.Email, admin.Password, models.RoleAdmin); err != nil {
		return err
	}
	slog.InfoContext(ctx, "admin account seeded", "username", admin.Username)
	return nil
}

func (s *authService) createUser(ctx context.Context, username, email, password string, role models.UserRole) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := s.now()

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(s.jwt.Expiration).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwt.SecretKey())
}
