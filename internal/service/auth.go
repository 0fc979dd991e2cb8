package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/repository"
	"github.com/stockpile-hq/stockpile/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidToken       = errors.New("invalid token")
)

type RegisterInput struct {
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	OrganizationID *string `json:"organizationId"`
}

type AuthService struct {
	userRepository repository.UserRepository
	emailService   *EmailService
	jwtSecret      string
	jwtExpiry      time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	emailService *EmailService,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		emailService:   emailService,
		jwtSecret:      jwtSecret,
		jwtExpiry:      jwtExpiry,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email, err := validation.NormalizeEmail(in.Email)
	if err != nil {
		return nil, validationError("email", err.Error())
	}

	err = validation.ValidatePassword(in.Password)
	if err != nil {
		return nil, validationError("password", err.Error())
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.New().String(),
		Email:          email,
		PasswordHash:   hash,
		OrganizationID: trimOptional(in.OrganizationID),
		CreatedAt:      time.Now().UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, &Error{Kind: KindValidation, Field: "email", Message: ErrEmailAlreadyExists.Error(), Err: ErrEmailAlreadyExists}
		}
		slog.Error("failed to create user", "error", err)
		return nil, storageError(err)
	}

	err = s.emailService.SendWelcomeEmail(ctx, user.Email)
	if err != nil {
		// Log error but don't fail the request
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	slog.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}
	if user.OrganizationID != nil {
		claims["organization_id"] = *user.OrganizationID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// Principal verifies the token and returns the identity it carries.
func (s *AuthService) Principal(tokenString string) (model.Principal, error) {
	claims, err := s.VerifyJWT(tokenString)
	if err != nil {
		return model.Principal{}, err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return model.Principal{}, ErrInvalidToken
	}

	principal := model.Principal{ID: userID}
	if orgID, ok := claims["organization_id"].(string); ok && orgID != "" {
		principal.OrganizationID = &orgID
	}
	return principal, nil
}
