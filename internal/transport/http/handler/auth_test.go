package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuth struct {
	register  func(ctx context.Context, email, password string, role domain.Role) (*domain.User, error)
	login     func(ctx context.Context, email, password string) (string, error)
	listUsers func(ctx context.Context) ([]*domain.User, error)
	change    func(ctx context.Context, userID string, role domain.Role) error
}

func (f *fakeAuth) Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	return f.register(ctx, email, password, role)
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (string, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuth) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return f.listUsers(ctx)
}

func (f *fakeAuth) ChangeRole(ctx context.Context, userID string, role domain.Role) error {
	return f.change(ctx, userID, role)
}

type fakeRecovery struct {
	request func(ctx context.Context, email string) error
	check   func(ctx context.Context, value string) (domain.TokenStatus, error)
	reset   func(ctx context.Context, value, newPassword string) error
}

func (f *fakeRecovery) RequestCode(ctx context.Context, email string) error {
	return f.request(ctx, email)
}

func (f *fakeRecovery) CheckCode(ctx context.Context, value string) (domain.TokenStatus, error) {
	return f.check(ctx, value)
}

func (f *fakeRecovery) ResetPassword(ctx context.Context, value, newPassword string) error {
	return f.reset(ctx, value, newPassword)
}

func testRouter(auth authUsecaser, recovery recoveryUsecaser) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := NewAuthHandler(auth, recovery, logger)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/token", h.Token)
	r.POST("/auth/reset_password/send", h.SendResetCode)
	r.POST("/auth/reset_password/verify", h.VerifyResetCode)
	r.POST("/auth/reset_password/reset", h.ResetPassword)
	r.PUT("/auth/users/:id/role", h.UpdateRole)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister_Duplicate(t *testing.T) {
	auth := &fakeAuth{
		register: func(_ context.Context, _, _ string, _ domain.Role) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	r := testRouter(auth, &fakeRecovery{})

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email": "ana@epn.edu.ec", "password": "Secreta99",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "El correo ya está registrado.") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRegister_Created(t *testing.T) {
	auth := &fakeAuth{
		register: func(_ context.Context, email, _ string, role domain.Role) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: email, Role: role, CreatedAt: time.Now()}, nil
		},
	}
	r := testRouter(auth, &fakeRecovery{})

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email": "ana@epn.edu.ec", "password": "Secreta99", "role": "Admin",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var resp userResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Email != "ana@epn.edu.ec" || resp.Role != domain.RoleAdmin {
		t.Errorf("response = %+v", resp)
	}
}

func TestToken_BadCredentials(t *testing.T) {
	auth := &fakeAuth{
		login: func(_ context.Context, _, _ string) (string, error) {
			return "", domain.ErrInvalidCredential
		},
	}
	r := testRouter(auth, &fakeRecovery{})

	w := doJSON(t, r, http.MethodPost, "/auth/token", gin.H{
		"email": "ana@epn.edu.ec", "password": "wrong",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q", got)
	}
}

func TestToken_Success(t *testing.T) {
	auth := &fakeAuth{
		login: func(_ context.Context, email, password string) (string, error) {
			if email != "ana@epn.edu.ec" || password != "Secreta99" {
				t.Errorf("login called with %q/%q", email, password)
			}
			return "signed.jwt.here", nil
		},
	}
	r := testRouter(auth, &fakeRecovery{})

	w := doJSON(t, r, http.MethodPost, "/auth/token", gin.H{
		"email": "ana@epn.edu.ec", "password": "Secreta99",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken != "signed.jwt.here" || resp.TokenType != "bearer" {
		t.Errorf("response = %+v", resp)
	}
}

// The send endpoint must not reveal whether an email exists, so even a
// failing usecase call answers with the generic success message.
func TestSendResetCode_AlwaysGenericSuccess(t *testing.T) {
	for name, requestErr := range map[string]error{
		"ok":      nil,
		"failure": fmt.Errorf("smtp exploded"),
	} {
		t.Run(name, func(t *testing.T) {
			recovery := &fakeRecovery{
				request: func(_ context.Context, _ string) error { return requestErr },
			}
			r := testRouter(&fakeAuth{}, recovery)

			w := doJSON(t, r, http.MethodPost, "/auth/reset_password/send", gin.H{
				"email": "quien@sabe.ec",
			})

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if !strings.Contains(w.Body.String(), "El código fue enviado exitosamente.") {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestVerifyResetCode_StatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   domain.TokenStatus
		wantCode int
	}{
		{"valid", domain.TokenValid, http.StatusOK},
		{"expired", domain.TokenExpired, http.StatusGone},
		{"unknown", domain.TokenUnknown, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recovery := &fakeRecovery{
				check: func(_ context.Context, value string) (domain.TokenStatus, error) {
					if value != "123456" {
						t.Errorf("check called with %q", value)
					}
					return tc.status, nil
				},
			}
			r := testRouter(&fakeAuth{}, recovery)

			w := doJSON(t, r, http.MethodPost, "/auth/reset_password/verify", gin.H{
				"code": "123456",
			})

			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.wantCode, w.Body.String())
			}
		})
	}
}

func TestVerifyResetCode_RejectsMalformedCode(t *testing.T) {
	recovery := &fakeRecovery{
		check: func(_ context.Context, _ string) (domain.TokenStatus, error) {
			t.Fatal("usecase must not be reached for malformed codes")
			return domain.TokenUnknown, nil
		},
	}
	r := testRouter(&fakeAuth{}, recovery)

	for _, code := range []string{"12345", "1234567", "abcdef", ""} {
		w := doJSON(t, r, http.MethodPost, "/auth/reset_password/verify", gin.H{"code": code})
		if w.Code != http.StatusBadRequest {
			t.Errorf("code %q: status = %d, want 400", code, w.Code)
		}
	}
}

func TestResetPassword_ErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid token", domain.ErrTokenInvalid, http.StatusBadRequest},
		{"weak password", domain.ErrWeakPassword, http.StatusBadRequest},
		{"storage failure", errors.New("db down"), http.StatusInternalServerError},
		{"success", nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recovery := &fakeRecovery{
				reset: func(_ context.Context, _, _ string) error { return tc.err },
			}
			r := testRouter(&fakeAuth{}, recovery)

			w := doJSON(t, r, http.MethodPost, "/auth/reset_password/reset", gin.H{
				"code": "123456", "new_password": "NuevaClave1",
			})

			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d: %s", w.Code, tc.wantCode, w.Body.String())
			}
		})
	}
}

func TestUpdateRole_UnknownUser(t *testing.T) {
	auth := &fakeAuth{
		change: func(_ context.Context, userID string, role domain.Role) error {
			if userID != "missing" || role != domain.RoleAdmin {
				t.Errorf("change called with %q/%q", userID, role)
			}
			return domain.ErrUserNotFound
		},
	}
	r := testRouter(auth, &fakeRecovery{})

	w := doJSON(t, r, http.MethodPut, "/auth/users/missing/role", gin.H{"role": "Admin"})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
