package auth

import (
	"context"
	"testing"
	"time"
)

func newTestManager(accessTTL, refreshTTL time.Duration) (*Manager, *InMemorySessionStore) {
	store := NewInMemorySessionStore()
	return NewManager("test-secret", accessTTL, refreshTTL, store), store
}

func TestManagerIssueAndVerify(t *testing.T) {
	manager, _ := newTestManager(time.Minute, time.Hour)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	userID, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected subject user-1 got %q", userID)
	}
}

func TestManagerVerifyRejectsGarbage(t *testing.T) {
	manager, _ := newTestManager(time.Minute, time.Hour)

	if _, err := manager.Verify(""); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid token got %v", err)
	}
	if _, err := manager.Verify("not.a.jwt"); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid token got %v", err)
	}

	other := NewManager("other-secret", time.Minute, time.Hour, NewInMemorySessionStore())
	tokens, err := other.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := manager.Verify(tokens.AccessToken); err != ErrInvalidAccessToken {
		t.Fatalf("expected invalid token for wrong secret got %v", err)
	}
}

func TestManagerVerifyRejectsExpired(t *testing.T) {
	manager, _ := newTestManager(-time.Minute, time.Hour)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := manager.Verify(tokens.AccessToken); err != ErrInvalidAccessToken {
		t.Fatalf("expected expired token to be rejected got %v", err)
	}
}

func TestManagerRefreshRotates(t *testing.T) {
	manager, store := newTestManager(time.Minute, time.Hour)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected new refresh token")
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatal("old token should have been removed")
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	manager, _ := newTestManager(time.Minute, time.Millisecond)

	if _, err := manager.Refresh(context.Background(), ""); err != ErrSessionNotFound {
		t.Fatalf("expected session not found got %v", err)
	}

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	time.Sleep(2 * time.Millisecond)

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != ErrRefreshTokenExpired {
		t.Fatalf("expected refresh expired got %v", err)
	}
}

func TestManagerRevokeUser(t *testing.T) {
	manager, store := newTestManager(time.Minute, time.Hour)

	first, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := manager.RevokeUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("revoke user: %v", err)
	}

	if store.Has(first.RefreshToken) || store.Has(second.RefreshToken) {
		t.Fatal("expected all sessions for the user to be removed")
	}
}
