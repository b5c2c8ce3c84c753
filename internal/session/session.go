// Package session implements the authenticated-session provider of the hub.
// Accounts live in the real-time store under users/<uid>; sessions are HS256
// JWTs with a revocation list in the store, so a logout from one dashboard
// session is visible to all hub instances.
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rajveerk82/MCD-SmartLight/internal/errors"
	"github.com/Rajveerk82/MCD-SmartLight/internal/models"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Provider is the opaque session collaborator the API layer talks to.
type Provider interface {
	Register(ctx context.Context, email, password, displayName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*models.User, error)
	UpdateProfile(ctx context.Context, uid, displayName string) error
	UpdateEmail(ctx context.Context, uid, email string) error
	UpdatePassword(ctx context.Context, uid, password string) error
}

// Claims are the JWT claims minted by the provider.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTProvider is the store-backed Provider implementation.
type JWTProvider struct {
	store  store.Store
	secret []byte
	ttl    time.Duration
}

func NewJWTProvider(st store.Store, secret string, ttl time.Duration) *JWTProvider {
	return &JWTProvider{store: st, secret: []byte(secret), ttl: ttl}
}

// Register creates a new account with a unique email.
func (p *JWTProvider) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return nil, errors.NewValidationError("a valid email address is required", nil)
	}
	if len(password) < 6 {
		return nil, errors.NewValidationError("password must be at least 6 characters", nil)
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, errors.NewValidationError("display name is required", nil)
	}

	if _, err := p.store.ReadOnce(ctx, "userEmails/"+emailKey(email)); err == nil {
		return nil, errors.NewConflictError("an account with this email already exists", nil)
	} else if !stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NewStoreError("failed to check email availability", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		UID:          nuts.NID("usr", 12),
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UnixMilli(),
	}

	if err := p.store.Create(ctx, "users/"+user.UID, user); err != nil {
		return nil, errors.NewStoreError("failed to create account", err)
	}
	if err := p.store.Create(ctx, "userEmails/"+emailKey(email), map[string]string{"uid": user.UID}); err != nil {
		return nil, errors.NewStoreError("failed to index account email", err)
	}

	nuts.L.Infof("[Session] Registered account %s (%s)", user.UID, email)
	pub := user.Public()
	return &pub, nil
}

// Login verifies credentials and mints a session token.
func (p *JWTProvider) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := p.userByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, errors.NewAuthError("invalid email or password", nil)
	}

	now := time.Now()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", nil, errors.NewInternalError("failed to sign session token", err)
	}

	nuts.L.Infof("[Session] Login for %s", user.UID)
	pub := user.Public()
	return token, &pub, nil
}

// Logout revokes the session carried by token. Revoking an already invalid
// token is not an error.
func (p *JWTProvider) Logout(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return nil
	}
	err = p.store.Create(ctx, "revokedSessions/"+claims.ID, map[string]any{
		"uid":       claims.Subject,
		"revokedAt": time.Now().UnixMilli(),
	})
	if err != nil {
		return errors.NewStoreError("failed to revoke session", err)
	}
	return nil
}

// Verify validates a token and resolves the account behind it.
func (p *JWTProvider) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, errors.NewAuthError("invalid token", err)
	}

	if _, err := p.store.ReadOnce(ctx, "revokedSessions/"+claims.ID); err == nil {
		return nil, errors.NewAuthError("session has been revoked", nil)
	} else if !stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NewStoreError("failed to check session revocation", err)
	}

	user, err := p.user(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

func (p *JWTProvider) UpdateProfile(ctx context.Context, uid, displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return errors.NewValidationError("display name is required", nil)
	}
	if err := p.store.Write(ctx, "users/"+uid, map[string]any{"displayName": displayName}); err != nil {
		return errors.NewStoreError("failed to update profile", err)
	}
	return nil
}

func (p *JWTProvider) UpdateEmail(ctx context.Context, uid, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailPattern.MatchString(email) {
		return errors.NewValidationError("a valid email address is required", nil)
	}

	user, err := p.user(ctx, uid)
	if err != nil {
		return err
	}
	if user.Email == email {
		return nil
	}

	if _, err := p.store.ReadOnce(ctx, "userEmails/"+emailKey(email)); err == nil {
		return errors.NewConflictError("an account with this email already exists", nil)
	} else if !stderrors.Is(err, store.ErrNotFound) {
		return errors.NewStoreError("failed to check email availability", err)
	}

	if err := p.store.Create(ctx, "userEmails/"+emailKey(email), map[string]string{"uid": uid}); err != nil {
		return errors.NewStoreError("failed to index new email", err)
	}
	if err := p.store.Write(ctx, "users/"+uid, map[string]any{"email": email}); err != nil {
		return errors.NewStoreError("failed to update email", err)
	}
	if err := p.store.Delete(ctx, "userEmails/"+emailKey(user.Email)); err != nil {
		nuts.L.Warnf("[Session] Stale email index left for %s: %v", user.Email, err)
	}
	return nil
}

func (p *JWTProvider) UpdatePassword(ctx context.Context, uid, password string) error {
	if len(password) < 6 {
		return errors.NewValidationError("password must be at least 6 characters", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}
	if err := p.store.Write(ctx, "users/"+uid, map[string]any{"passwordHash": string(hash)}); err != nil {
		return errors.NewStoreError("failed to update password", err)
	}
	return nil
}

// Helper functions

func (p *JWTProvider) parse(token string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, stderrors.New("invalid session claims")
	}
	return claims, nil
}

func (p *JWTProvider) user(ctx context.Context, uid string) (*models.User, error) {
	raw, err := p.store.ReadOnce(ctx, "users/"+uid)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NewNotFoundError("account not found", err)
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to load account", err)
	}
	user := &models.User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil, errors.NewInternalError("failed to decode account record", err)
	}
	user.UID = uid
	return user, nil
}

func (p *JWTProvider) userByEmail(ctx context.Context, email string) (*models.User, error) {
	raw, err := p.store.ReadOnce(ctx, "userEmails/"+emailKey(email))
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, errors.NewAuthError("invalid email or password", nil)
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to look up account", err)
	}
	var index struct {
		UID string `json:"uid"`
	}
	if err := json.Unmarshal(raw, &index); err != nil || index.UID == "" {
		return nil, errors.NewInternalError("corrupt email index record", err)
	}
	return p.user(ctx, index.UID)
}

// emailKey turns an email address into a store-safe record key; dots are not
// allowed in path segments of the managed store.
func emailKey(email string) string {
	return strings.ReplaceAll(strings.ToLower(email), ".", ",")
}
