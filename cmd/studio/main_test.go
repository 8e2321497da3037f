package main

import (
	"context"
	"errors"
	"testing"

	"github.com/EmrullahAydogan/video-studio/internal/store"
)

// tokenStore fakes just the config side of the store for auth bootstrap.
type tokenStore struct {
	store.Store
	token  string
	getErr error
	sets   int
}

func (s *tokenStore) GetConfig(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.token, nil
}

func (s *tokenStore) SetConfig(ctx context.Context, key, value string) error {
	s.token = value
	s.sets++
	return nil
}

func TestEnsureAuthToken_KeepsExisting(t *testing.T) {
	st := &tokenStore{token: "existing-token"}

	token, err := ensureAuthToken(st)
	if err != nil {
		t.Fatalf("ensureAuthToken: %v", err)
	}
	if token != "existing-token" {
		t.Fatalf("token = %q, want existing", token)
	}
	if st.sets != 0 {
		t.Fatal("existing token was overwritten")
	}
}

func TestEnsureAuthToken_GeneratesWhenMissing(t *testing.T) {
	st := &tokenStore{}

	token, err := ensureAuthToken(st)
	if err != nil {
		t.Fatalf("ensureAuthToken: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("token length = %d, want 64 hex chars", len(token))
	}
	if st.token != token {
		t.Fatal("generated token not persisted")
	}
}

func TestEnsureAuthToken_ReadErrorDoesNotRegenerate(t *testing.T) {
	st := &tokenStore{token: "still-valid", getErr: errors.New("db locked")}

	_, err := ensureAuthToken(st)
	if err == nil {
		t.Fatal("read failure swallowed")
	}
	if st.sets != 0 {
		t.Fatal("token regenerated on a read failure, invalidating existing clients")
	}
}
