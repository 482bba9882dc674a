package api

import (
	"context"
	"net/http"

	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

// AuthResult is the body returned by the login endpoints.
type AuthResult struct {
	Token   string           `json:"token"`
	User    entities.Account `json:"user"`
	Message string           `json:"message,omitempty"`
}

type loginEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sendOTPRequest struct {
	Phone string `json:"phone"`
}

type verifyOTPRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

// LoginEmail signs in with email and password.
func (c *Client) LoginEmail(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	req := loginEmailRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login-email", "/auth/login-email", nil, req, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, entities.ErrUnauthorized
	}
	return &out, nil
}

// SendOTP requests a one-time code for phone.
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	return c.do(ctx, http.MethodPost, "/auth/send-otp", "/auth/send-otp", nil, sendOTPRequest{Phone: phone}, nil)
}

// VerifyOTP exchanges a one-time code for a session token.
func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*AuthResult, error) {
	var out AuthResult
	req := verifyOTPRequest{Phone: phone, OTP: otp}
	if err := c.do(ctx, http.MethodPost, "/auth/verify-otp", "/auth/verify-otp", nil, req, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, entities.ErrUnauthorized
	}
	return &out, nil
}

type updateProfileRequest struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	TargetExam string `json:"targetExam"`
}

type updateProfileResponse struct {
	User *entities.Account `json:"user"`
}

// UpdateProfile completes onboarding by storing the display name and target exam.
func (c *Client) UpdateProfile(ctx context.Context, accountID, name, targetExam string) (*entities.Account, error) {
	var out updateProfileResponse
	req := updateProfileRequest{UserID: accountID, Name: name, TargetExam: targetExam}
	if err := c.do(ctx, http.MethodPost, "/auth/update-profile", "/auth/update-profile", nil, req, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, entities.ErrNotFound
	}
	if out.User.ID == "" {
		out.User.ID = accountID
	}
	return out.User, nil
}
