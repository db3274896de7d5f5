package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// SeedDefaultAdmin creates the bootstrap admin account when the collection is
// empty. The password comes from configuration; when unset, a random one is
// generated and logged exactly once so the operator can log in and change it.
func (s *Store) SeedDefaultAdmin(ctx context.Context, password string) error {
	count, err := s.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting admin users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		b := make([]byte, 12)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
		password = hex.EncodeToString(b)
		slog.Warn("ADMIN_PASSWORD not set, generated a one-time password for user 'admin'. Change it after first login.",
			"password", password)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	user := &models.AdminUser{
		Username: "admin",
		Email:    "admin@mumbai-tech.com",
		Password: string(hash),
		Role:     "superadmin",
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("creating default admin: %w", err)
	}
	slog.Info("Default admin user created", "username", user.Username)
	return nil
}
