// Package auth verifies Firebase ID tokens and decides admin capability.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

var (
	// ErrNoToken is returned when the request carries no bearer token.
	ErrNoToken = errors.New("missing bearer token")
	// ErrInvalidToken is returned when the token fails verification.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenVerifier checks an ID token; *fbauth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Identity is the verified caller.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Claims        map[string]any
}

// Authorizer authenticates requests and grants the admin capability either
// through a boolean custom claim or a verified email on the allow-list.
type Authorizer struct {
	verifier    TokenVerifier
	adminClaim  string
	adminEmails []string
}

// NewFirebaseVerifier returns the Firebase Auth client for projectID.
func NewFirebaseVerifier(ctx context.Context, projectID string, opts ...option.ClientOption) (*fbauth.Client, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firebase auth client: %w", err)
	}
	return client, nil
}

func New(verifier TokenVerifier, adminClaim string, adminEmails []string) *Authorizer {
	emails := make([]string, 0, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	return &Authorizer{verifier: verifier, adminClaim: adminClaim, adminEmails: emails}
}

// Authenticate verifies the bearer token on r.
func (a *Authorizer) Authenticate(ctx context.Context, r *http.Request) (Identity, error) {
	raw := bearerToken(r)
	if raw == "" {
		return Identity{}, ErrNoToken
	}
	token, err := a.verifier.VerifyIDToken(ctx, raw)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	id := Identity{UID: token.UID, Claims: token.Claims}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if verified, ok := token.Claims["email_verified"].(bool); ok {
		id.EmailVerified = verified
	}
	return id, nil
}

// IsAdmin reports whether id holds the admin capability.
func (a *Authorizer) IsAdmin(id Identity) bool {
	if a.adminClaim != "" {
		if granted, ok := id.Claims[a.adminClaim].(bool); ok && granted {
			return true
		}
	}
	if id.EmailVerified && id.Email != "" {
		return slices.Contains(a.adminEmails, strings.ToLower(id.Email))
	}
	return false
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
