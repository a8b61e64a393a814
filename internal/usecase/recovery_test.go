package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/clubciclismoepn/backend/internal/crypto"
	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/usecase"
)

// ---- fakes ----

type fakeTokenRepo struct {
	create      func(ctx context.Context, token *domain.RecoveryToken) (*domain.RecoveryToken, error)
	findByValue func(ctx context.Context, value string) (*domain.RecoveryToken, error)
	consume     func(ctx context.Context, value, newPasswordHash string) error
	deleteStale func(ctx context.Context, now time.Time, limit int) (int, error)
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *domain.RecoveryToken) (*domain.RecoveryToken, error) {
	return r.create(ctx, token)
}

func (r *fakeTokenRepo) FindByValue(ctx context.Context, value string) (*domain.RecoveryToken, error) {
	return r.findByValue(ctx, value)
}

func (r *fakeTokenRepo) Consume(ctx context.Context, value, newPasswordHash string) error {
	return r.consume(ctx, value, newPasswordHash)
}

func (r *fakeTokenRepo) DeleteStale(ctx context.Context, now time.Time, limit int) (int, error) {
	return r.deleteStale(ctx, now, limit)
}

type fakeSender struct {
	sent []sentEmail
	err  error
}

type sentEmail struct {
	to, subject, body string
}

func (s *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}

func newRecovery(users *fakeUserRepo, tokens *fakeTokenRepo, sender *fakeSender) *usecase.RecoveryUsecase {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return usecase.NewRecoveryUsecase(users, tokens, sender, time.UTC, logger)
}

// ---- RequestCode ----

func TestRequestCode_UnknownEmail_NoErrorNoEmail(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	sender := &fakeSender{}
	uc := newRecovery(users, &fakeTokenRepo{}, sender)

	if err := uc.RequestCode(context.Background(), "ghost@b.ec"); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d emails, want 0", len(sender.sent))
	}
}

func TestRequestCode_IssuesSixDigitCodeWithFiveMinuteExpiry(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: "ana@b.ec"}, nil
		},
	}
	var stored *domain.RecoveryToken
	tokens := &fakeTokenRepo{
		create: func(_ context.Context, tok *domain.RecoveryToken) (*domain.RecoveryToken, error) {
			stored = tok
			return tok, nil
		},
	}
	sender := &fakeSender{}
	uc := newRecovery(users, tokens, sender)

	before := time.Now()
	if err := uc.RequestCode(context.Background(), "ana@b.ec"); err != nil {
		t.Fatalf("request code: %v", err)
	}

	if len(stored.Value) != 6 || strings.Trim(stored.Value, "0123456789") != "" {
		t.Errorf("value = %q, want 6 digits", stored.Value)
	}
	ttl := stored.ExpiresAt.Sub(before)
	if ttl < 4*time.Minute+50*time.Second || ttl > 5*time.Minute+10*time.Second {
		t.Errorf("ttl = %s, want ~5m", ttl)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if sender.sent[0].to != "ana@b.ec" {
		t.Errorf("sent to %q, want ana@b.ec", sender.sent[0].to)
	}
	if !strings.Contains(sender.sent[0].body, stored.Value) {
		t.Error("email body does not contain the code")
	}
}

func TestRequestCode_StoreFailure_Propagates(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: "ana@b.ec"}, nil
		},
	}
	tokens := &fakeTokenRepo{
		create: func(_ context.Context, _ *domain.RecoveryToken) (*domain.RecoveryToken, error) {
			return nil, domain.ErrIssueFailed
		},
	}
	sender := &fakeSender{}
	uc := newRecovery(users, tokens, sender)

	err := uc.RequestCode(context.Background(), "ana@b.ec")
	if !errors.Is(err, domain.ErrIssueFailed) {
		t.Errorf("err = %v, want wrapped ErrIssueFailed", err)
	}
	if len(sender.sent) != 0 {
		t.Error("no email should go out when the token was not stored")
	}
}

// ---- CheckCode ----

func TestCheckCode_StatusMapping(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token *domain.RecoveryToken
		err   error
		want  domain.TokenStatus
	}{
		{
			name: "valid just before expiry",
			token: &domain.RecoveryToken{
				UserID: "u1", Value: "123456",
				ExpiresAt: now.Add(time.Second), // T+4:59 of a 5-minute token
			},
			want: domain.TokenValid,
		},
		{
			name: "expired just after expiry",
			token: &domain.RecoveryToken{
				UserID: "u1", Value: "123456",
				ExpiresAt: now.Add(-time.Second), // T+5:01
			},
			want: domain.TokenExpired,
		},
		{
			name: "used token reports expired even inside the window",
			token: &domain.RecoveryToken{
				UserID: "u1", Value: "123456",
				ExpiresAt: now.Add(4 * time.Minute), IsUsed: true,
			},
			want: domain.TokenExpired,
		},
		{
			name: "unknown value",
			err:  domain.ErrTokenInvalid,
			want: domain.TokenUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &fakeTokenRepo{
				findByValue: func(_ context.Context, _ string) (*domain.RecoveryToken, error) {
					return tt.token, tt.err
				},
			}
			uc := newRecovery(&fakeUserRepo{}, tokens, &fakeSender{})

			got, err := uc.CheckCode(context.Background(), "123456")
			if err != nil {
				t.Fatalf("check code: %v", err)
			}
			if got != tt.want {
				t.Errorf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---- ResetPassword ----

func TestResetPassword_WeakPassword_NeverTouchesToken(t *testing.T) {
	tokens := &fakeTokenRepo{
		consume: func(_ context.Context, _, _ string) error {
			t.Error("consume must not be called for a weak password")
			return nil
		},
	}
	uc := newRecovery(&fakeUserRepo{}, tokens, &fakeSender{})

	if err := uc.ResetPassword(context.Background(), "123456", "weak"); !errors.Is(err, domain.ErrWeakPassword) {
		t.Errorf("err = %v, want ErrWeakPassword", err)
	}
}

func TestResetPassword_ConsumesWithHashedSecret(t *testing.T) {
	var gotValue, gotHash string
	tokens := &fakeTokenRepo{
		consume: func(_ context.Context, value, hash string) error {
			gotValue, gotHash = value, hash
			return nil
		},
	}
	uc := newRecovery(&fakeUserRepo{}, tokens, &fakeSender{})

	if err := uc.ResetPassword(context.Background(), "123456", "NuevaClave7"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if gotValue != "123456" {
		t.Errorf("consumed value %q, want 123456", gotValue)
	}
	if !crypto.CheckPassword("NuevaClave7", gotHash) {
		t.Error("consume did not receive a bcrypt hash of the new password")
	}
}

func TestResetPassword_SpentToken_Fails(t *testing.T) {
	tokens := &fakeTokenRepo{
		consume: func(_ context.Context, _, _ string) error {
			return domain.ErrTokenInvalid
		},
	}
	uc := newRecovery(&fakeUserRepo{}, tokens, &fakeSender{})

	if err := uc.ResetPassword(context.Background(), "123456", "NuevaClave7"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("err = %v, want ErrTokenInvalid", err)
	}
}
