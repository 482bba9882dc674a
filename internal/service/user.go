package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
	"github.com/aliskhannn/examprep-bot/internal/infra/postgres/repository"
)

type UserService struct {
	repository UserRepository
	auth       AuthAPI
	logger     *zap.Logger
}

func NewUserService(repository UserRepository, auth AuthAPI, logger *zap.Logger) *UserService {
	return &UserService{repository: repository, auth: auth, logger: logger}
}

func (s *UserService) EnsureUser(ctx context.Context, userID, chatID int64) error {
	existing, err := s.repository.GetByID(ctx, userID)
	switch {
	case err == nil:
		if existing.IsActive && existing.ChatID == chatID {
			return nil
		}
	case !errors.Is(err, repository.ErrUserNotFound):
		return err
	}

	// New users and users returning after blocking the bot.
	return s.repository.SaveUser(ctx, entities.NewUser(userID, chatID))
}

// Get returns the stored user.
func (s *UserService) Get(ctx context.Context, userID int64) (*entities.User, error) {
	return s.repository.GetByID(ctx, userID)
}

// LoginEmail signs the user in with email and password.
func (s *UserService) LoginEmail(ctx context.Context, userID int64, email, password string) (*entities.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", entities.ErrValidation)
	}

	res, err := s.auth.LoginEmail(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.applyAuth(ctx, userID, res)
}

// SendOTP requests a one-time code for phone.
func (s *UserService) SendOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("%w: phone is required", entities.ErrValidation)
	}
	if err := s.auth.SendOTP(ctx, phone); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// VerifyOTP completes a phone login.
func (s *UserService) VerifyOTP(ctx context.Context, userID int64, phone, otp string) (*entities.User, error) {
	phone, otp = strings.TrimSpace(phone), strings.TrimSpace(otp)
	if phone == "" || otp == "" {
		return nil, fmt.Errorf("%w: phone and code are required", entities.ErrValidation)
	}

	res, err := s.auth.VerifyOTP(ctx, phone, otp)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	return s.applyAuth(ctx, userID, res)
}

// UpdateProfile completes onboarding on the API and refreshes the stored
// profile flags.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, name, examID string) (*entities.User, error) {
	name, examID = strings.TrimSpace(name), strings.TrimSpace(examID)
	if name == "" || examID == "" {
		return nil, fmt.Errorf("%w: name and exam are required", entities.ErrValidation)
	}

	user, err := s.repository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, entities.ErrUnauthorized
		}
		return nil, err
	}
	if !user.Authenticated() {
		return nil, entities.ErrUnauthorized
	}

	acc, err := s.auth.UpdateProfile(api.ContextWithToken(ctx, user.Token), user.AccountID, name, examID)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	user.Name = firstNonEmpty(acc.Name, name)
	user.IsProfileComplete = acc.IsProfileComplete
	if err := s.repository.UpdateCredentials(ctx, user); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("profile updated",
		zap.Int64("user_id", userID),
		zap.String("target_exam", examID),
		zap.Bool("complete", user.IsProfileComplete),
	)
	return user, nil
}

// Logout forgets the stored credentials.
func (s *UserService) Logout(ctx context.Context, userID int64) error {
	if err := s.repository.ClearCredentials(ctx, userID); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	s.logger.Info("user logged out", zap.Int64("user_id", userID))
	return nil
}

func (s *UserService) applyAuth(ctx context.Context, userID int64, res *api.AuthResult) (*entities.User, error) {
	user, err := s.repository.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		user = entities.NewUser(userID, userID)
		if err := s.repository.SaveUser(ctx, user); err != nil {
			return nil, err
		}
	}

	user.Token = res.Token
	user.AccountID = res.User.ID
	if user.AccountID == "" {
		user.AccountID, _ = AccountIDFromToken(res.Token)
	}
	if user.AccountID == "" {
		return nil, fmt.Errorf("login: no user id in response: %w", entities.ErrUnauthorized)
	}
	user.Name = res.User.Name
	user.IsProfileComplete = res.User.IsProfileComplete

	if err := s.repository.UpdateCredentials(ctx, user); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", userID),
		zap.String("account_id", user.AccountID),
	)
	return user, nil
}

// tokenClaims covers the claim names used for the account id.
type tokenClaims struct {
	UserID   string `json:"userId"`
	LegacyID string `json:"id"`
	jwt.RegisteredClaims
}

// AccountIDFromToken reads the account id from a bearer token without
// verifying its signature; the API verifies it on every call.
func AccountIDFromToken(token string) (string, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	return firstNonEmpty(claims.UserID, claims.LegacyID, claims.Subject), nil
}
