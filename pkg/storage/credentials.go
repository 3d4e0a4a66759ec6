package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// Scopes requested from Google. Write scope is only needed when highlights
// are stored as files.
const (
	ScopeReadOnly  = drive.DriveReadonlyScope
	ScopeReadWrite = drive.DriveScope
)

// LoadGoogleCredentials parses a service-account (or any Google) JSON
// credential blob for the given scope.
func LoadGoogleCredentials(ctx context.Context, blob string, scope string) (*google.Credentials, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, errors.New("google credentials are not configured (set GOOGLE_CREDENTIALS)")
	}
	creds, err := google.CredentialsFromJSON(ctx, []byte(blob), scope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	return creds, nil
}
