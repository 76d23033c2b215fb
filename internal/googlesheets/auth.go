package googlesheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// NewWithJSONKeyFile creates a new client using a service account JSON key
// file. If jsonPath is empty, GOOGLE_APPLICATION_CREDENTIALS is tried.
func NewWithJSONKeyFile(ctx context.Context, config Config, jsonPath string) (*Client, error) {
	if jsonPath == "" {
		jsonPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if jsonPath == "" {
			return nil, fmt.Errorf("no JSON key file path provided and GOOGLE_APPLICATION_CREDENTIALS not set")
		}
	}

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON key file: %w", err)
	}

	return NewWithJSONKeyData(ctx, config, jsonData)
}

// NewWithJSONKeyData creates a new client using service account JSON key data
func NewWithJSONKeyData(ctx context.Context, config Config, jsonData []byte) (*Client, error) {
	creds, err := google.CredentialsFromJSON(ctx, jsonData, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return New(ctx, config, option.WithCredentials(creds))
}

// NewWithServiceAccountKey creates a new client using an email and private key
func NewWithServiceAccountKey(ctx context.Context, config Config, email, privateKey string) (*Client, error) {
	jwtConfig := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	return New(ctx, config, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
}

// NewWithDefaultCredentials creates a new client using Application Default
// Credentials (env var, gcloud auth, or GCE metadata, in that order).
func NewWithDefaultCredentials(ctx context.Context, config Config) (*Client, error) {
	tokenSource, err := google.DefaultTokenSource(ctx, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to get default token source: %w", err)
	}

	return New(ctx, config, option.WithTokenSource(tokenSource))
}
