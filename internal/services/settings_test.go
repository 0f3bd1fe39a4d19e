package services

import (
	"context"
	"testing"
)

func TestCredentials_Defaults(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewSettingsService(testLogger(), repo)

	username, password, err := svc.Credentials(context.Background())
	if err != nil {
		t.Fatalf("Credentials failed: %v", err)
	}
	if username != "admin" || password != "password" {
		t.Errorf("expected default credentials, got %q/%q", username, password)
	}
}

func TestSeedCredentials(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewSettingsService(testLogger(), repo)
	ctx := context.Background()

	if err := svc.SeedCredentials(ctx, "boss", "hunter2secret"); err != nil {
		t.Fatalf("SeedCredentials failed: %v", err)
	}

	username, password, err := svc.Credentials(ctx)
	if err != nil {
		t.Fatalf("Credentials failed: %v", err)
	}
	if username != "boss" || password != "hunter2secret" {
		t.Errorf("expected seeded credentials, got %q/%q", username, password)
	}

	// Empty values leave the stored ones alone
	if err := svc.SeedCredentials(ctx, "", ""); err != nil {
		t.Fatalf("SeedCredentials failed: %v", err)
	}
	username, _, _ = svc.Credentials(ctx)
	if username != "boss" {
		t.Errorf("expected username unchanged, got %q", username)
	}
}

func TestUpdateCredentials(t *testing.T) {
	tests := []struct {
		name            string
		currentPassword string
		newUsername     string
		newPassword     string
		wantErr         error
	}{
		{"wrong current password", "nope", "admin", "longenough", ErrPasswordMismatch},
		{"weak new password", "password", "admin", "short", ErrWeakPassword},
		{"empty username", "password", "", "longenough", ErrMissingUsername},
		{"success", "password", "boss", "longenough", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newBackupTestRepo(t)
			svc := NewSettingsService(testLogger(), repo)
			ctx := context.Background()

			err := svc.UpdateCredentials(ctx, tt.currentPassword, tt.newUsername, tt.newPassword)
			if err != tt.wantErr {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			if tt.wantErr == nil {
				username, password, _ := svc.Credentials(ctx)
				if username != tt.newUsername || password != tt.newPassword {
					t.Errorf("expected new credentials stored, got %q/%q", username, password)
				}
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	repo := newBackupTestRepo(t)
	svc := NewSettingsService(testLogger(), repo)
	ctx := context.Background()

	// Unset base URL reads as empty, not an error
	url, err := svc.BaseURL(ctx)
	if err != nil {
		t.Fatalf("BaseURL failed: %v", err)
	}
	if url != "" {
		t.Errorf("expected empty default, got %q", url)
	}

	if err := svc.SetBaseURL(ctx, "http://192.168.1.10:8080"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}
	url, err = svc.BaseURL(ctx)
	if err != nil {
		t.Fatalf("BaseURL failed: %v", err)
	}
	if url != "http://192.168.1.10:8080" {
		t.Errorf("unexpected base URL %q", url)
	}
}
