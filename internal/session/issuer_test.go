package session_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clubciclismoepn/backend/internal/domain"
	"github.com/clubciclismoepn/backend/internal/session"
)

const testKey = "session-test-secret-32-characters!!"

func TestIssueValidate_RoundTrip(t *testing.T) {
	issuer := session.NewIssuer([]byte(testKey), time.Hour)

	token, err := issuer.Issue("ana@example.com", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "ana@example.com" {
		t.Errorf("subject = %q, want ana@example.com", claims.Subject)
	}
	if claims.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want Admin", claims.Role)
	}
}

func TestValidate_ExpiredToken_Fails(t *testing.T) {
	issuer := session.NewIssuer([]byte(testKey), -time.Minute)

	token, err := issuer.Issue("ana@example.com", domain.RoleNormal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Validate(token); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Errorf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestValidate_WrongKey_Fails(t *testing.T) {
	issuer := session.NewIssuer([]byte(testKey), time.Hour)
	other := session.NewIssuer([]byte("another-32-character-secret-key!!!"), time.Hour)

	token, err := issuer.Issue("ana@example.com", domain.RoleNormal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := other.Validate(token); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Errorf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestValidate_TamperedToken_Fails(t *testing.T) {
	issuer := session.NewIssuer([]byte(testKey), time.Hour)

	token, err := issuer.Issue("ana@example.com", domain.RoleNormal)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + ".eyJzdWIiOiJldmlsIn0." + parts[2]

	if _, err := issuer.Validate(tampered); !errors.Is(err, domain.ErrInvalidCredential) {
		t.Errorf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestValidate_Garbage_Fails(t *testing.T) {
	issuer := session.NewIssuer([]byte(testKey), time.Hour)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Validate(raw); !errors.Is(err, domain.ErrInvalidCredential) {
			t.Errorf("Validate(%q) err = %v, want ErrInvalidCredential", raw, err)
		}
	}
}
