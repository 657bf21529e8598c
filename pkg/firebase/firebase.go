// Package firebase builds the ID token verifier used by /auth/firebase-login/.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// ErrNotConfigured means no service account was given. Callers treat it as
// "Firebase login is off" rather than a startup failure.
var ErrNotConfigured = errors.New("firebase credentials not configured")

// NewAuthClient loads the service account at credentialsPath and returns a
// client able to verify Firebase ID tokens.
func NewAuthClient(ctx context.Context, credentialsPath string) (*auth.Client, error) {
	if credentialsPath == "" {
		return nil, ErrNotConfigured
	}
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firebase credentials %s: %w", credentialsPath, err)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	slog.Info("firebase token verifier ready", "credentials", credentialsPath)
	return client, nil
}
