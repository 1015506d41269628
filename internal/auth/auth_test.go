package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/hobbybyrox/hobbyshop/internal/db"
	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/store"
)

func TestSecretMode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, err := New(ctx, database, ModeSecret)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	token, err := a.Issue(&model.User{ID: 1, Username: "admin"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	secret, _ := store.GetSecret(ctx, database, store.SettingAdminSecret)
	if token != secret {
		t.Errorf("expected the admin secret as token, got %q", token)
	}

	if _, err := a.Validate(ctx, token); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if _, err := a.Validate(ctx, token+"x"); !errors.Is(err, model.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
	if _, err := a.Validate(ctx, ""); !errors.Is(err, model.ErrAuth) {
		t.Errorf("expected ErrAuth for empty token, got %v", err)
	}
}

func TestJWTModeRevocation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, err := New(ctx, database, ModeJWT)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	token, err := a.Issue(&model.User{ID: 7, Username: "rox"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	s, err := a.Validate(ctx, token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if s.UserID != 7 || s.Username != "rox" {
		t.Errorf("expected session for rox/7, got %+v", s)
	}

	if err := a.Revoke(ctx, s); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := a.Validate(ctx, token); !errors.Is(err, model.ErrAuth) {
		t.Errorf("expected ErrAuth after revoke, got %v", err)
	}
}

func TestJWTModeRejectsAdminSecret(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	a, _ := New(ctx, database, ModeJWT)
	secret, _ := store.GetSecret(ctx, database, store.SettingAdminSecret)

	if _, err := a.Validate(ctx, secret); !errors.Is(err, model.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeSecret, "secret": ModeSecret, "jwt": ModeJWT} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q): expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseMode("oauth"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
