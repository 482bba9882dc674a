package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/domain/entities"
)

type fakeAuthAPI struct {
	result  *api.AuthResult
	err     error
	otpFor  string
	profile struct {
		token, accountID, name, exam string
	}
}

func (f *fakeAuthAPI) LoginEmail(context.Context, string, string) (*api.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAuthAPI) SendOTP(_ context.Context, phone string) error {
	f.otpFor = phone
	return f.err
}

func (f *fakeAuthAPI) VerifyOTP(context.Context, string, string) (*api.AuthResult, error) {
	return f.result, f.err
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, accountID, name, exam string) (*entities.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.profile.token = api.TokenFromContext(ctx)
	f.profile.accountID, f.profile.name, f.profile.exam = accountID, name, exam
	return &entities.Account{ID: accountID, Name: name, TargetExam: exam, IsProfileComplete: true}, nil
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestAccountIDFromToken(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"userId claim", jwt.MapClaims{"userId": "u-1", "sub": "other"}, "u-1"},
		{"id claim", jwt.MapClaims{"id": "u-2"}, "u-2"},
		{"sub claim", jwt.MapClaims{"sub": "u-3"}, "u-3"},
		{"no claim", jwt.MapClaims{"role": "student"}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AccountIDFromToken(signedToken(t, tc.claims))
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}

	if _, err := AccountIDFromToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}

func TestUserService_LoginStoresCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	auth := &fakeAuthAPI{result: &api.AuthResult{
		Token: "opaque",
		User:  entities.Account{ID: "acc-9", Name: "Asha", IsProfileComplete: true},
	}}
	svc := NewUserService(repo, auth, zap.NewNop())
	ctx := context.Background()

	if err := svc.EnsureUser(ctx, 5, 50); err != nil {
		t.Fatal(err)
	}
	user, err := svc.LoginEmail(ctx, 5, "asha@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if !user.Authenticated() || user.AccountID != "acc-9" {
		t.Fatalf("user = %+v", user)
	}

	stored, _ := repo.GetByID(ctx, 5)
	if stored.Token != "opaque" || stored.ChatID != 50 {
		t.Fatalf("stored = %+v", stored)
	}

	if err := svc.Logout(ctx, 5); err != nil {
		t.Fatal(err)
	}
	stored, _ = repo.GetByID(ctx, 5)
	if stored.Authenticated() {
		t.Fatal("credentials kept after logout")
	}
}

func TestUserService_LoginFallsBackToTokenClaim(t *testing.T) {
	repo := newFakeUserRepo()
	auth := &fakeAuthAPI{result: &api.AuthResult{Token: signedToken(t, jwt.MapClaims{"sub": "acc-sub"})}}
	svc := NewUserService(repo, auth, zap.NewNop())

	user, err := svc.VerifyOTP(context.Background(), 7, "+911234", "0000")
	if err != nil {
		t.Fatal(err)
	}
	if user.AccountID != "acc-sub" {
		t.Fatalf("account id = %q", user.AccountID)
	}
}

func TestUserService_LoginWithoutAccountIDIsUnauthorized(t *testing.T) {
	auth := &fakeAuthAPI{result: &api.AuthResult{Token: "opaque"}}
	svc := NewUserService(newFakeUserRepo(), auth, zap.NewNop())

	if _, err := svc.LoginEmail(context.Background(), 1, "a@b.c", "pw"); !errors.Is(err, entities.ErrUnauthorized) {
		t.Fatalf("got %v, want ErrUnauthorized", err)
	}
}

func TestUserService_ValidatesInput(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeAuthAPI{}, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.LoginEmail(ctx, 1, " ", "pw"); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("login: %v", err)
	}
	if err := svc.SendOTP(ctx, ""); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("send otp: %v", err)
	}
	if _, err := svc.VerifyOTP(ctx, 1, "+91", ""); !errors.Is(err, entities.ErrValidation) {
		t.Errorf("verify otp: %v", err)
	}
}

func TestUserService_EnsureUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeAuthAPI{}, zap.NewNop())
	ctx := context.Background()

	if err := svc.EnsureUser(ctx, 9, 90); err != nil {
		t.Fatal(err)
	}
	if err := svc.EnsureUser(ctx, 9, 90); err != nil {
		t.Fatal(err)
	}
	if repo.saves != 1 {
		t.Fatalf("saves = %d, want 1", repo.saves)
	}

	repo.users[9].Token = "kept"
	repo.users[9].IsActive = false
	if err := svc.EnsureUser(ctx, 9, 90); err != nil {
		t.Fatal(err)
	}
	if repo.saves != 2 || !repo.users[9].IsActive {
		t.Fatalf("inactive user not reactivated: saves = %d, user = %+v", repo.saves, repo.users[9])
	}
	if repo.users[9].Token != "kept" {
		t.Fatal("credentials lost on reactivation")
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("requires login", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, &fakeAuthAPI{}, zap.NewNop())
		if err := svc.EnsureUser(ctx, 5, 50); err != nil {
			t.Fatal(err)
		}

		_, err := svc.UpdateProfile(ctx, 5, "Asha", "ssc-cgl")
		if !errors.Is(err, entities.ErrUnauthorized) {
			t.Fatalf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), &fakeAuthAPI{}, zap.NewNop())
		_, err := svc.UpdateProfile(ctx, 5, "  ", "ssc-cgl")
		if !errors.Is(err, entities.ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("completes profile", func(t *testing.T) {
		repo := newFakeUserRepo()
		auth := &fakeAuthAPI{result: &api.AuthResult{
			Token: "opaque",
			User:  entities.Account{ID: "acc-9", Name: ""},
		}}
		svc := NewUserService(repo, auth, zap.NewNop())
		if err := svc.EnsureUser(ctx, 5, 50); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.LoginEmail(ctx, 5, "asha@example.com", "pw"); err != nil {
			t.Fatal(err)
		}

		user, err := svc.UpdateProfile(ctx, 5, " Asha ", "ssc-cgl")
		if err != nil {
			t.Fatal(err)
		}
		if !user.IsProfileComplete || user.Name != "Asha" {
			t.Fatalf("user = %+v", user)
		}
		if auth.profile.token != "opaque" || auth.profile.accountID != "acc-9" || auth.profile.exam != "ssc-cgl" {
			t.Fatalf("api call = %+v", auth.profile)
		}

		stored, _ := repo.GetByID(ctx, 5)
		if !stored.IsProfileComplete || stored.Name != "Asha" {
			t.Fatalf("stored = %+v", stored)
		}
	})
}
