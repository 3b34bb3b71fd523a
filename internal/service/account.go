package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"registration-service/internal/models"
	"registration-service/internal/redisclient"
	"registration-service/internal/regerr"
	"registration-service/internal/store"
	"registration-service/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccountProvisioner resolves or creates the paying account holder. It runs
// before the registration transaction so a newly created account stays
// durable even when the registration later fails, and it is idempotent on
// retry (email lookup before create).
type AccountProvisioner struct {
	store  *store.Store
	logger *zap.Logger
}

// NewAccountProvisioner creates a new account provisioner
func NewAccountProvisioner(st *store.Store) *AccountProvisioner {
	return &AccountProvisioner{
		store:  st,
		logger: util.GetLogger(),
	}
}

// ProvisionInput carries the account holder fields of a submission.
type ProvisionInput struct {
	UserID    int64 // non-zero when the caller is authenticated
	Email     string
	FirstName string
	LastName  string
	Mobile    string
	Password  string
}

// Account is the resolved account holder.
type Account struct {
	User    *models.User
	Profile *models.UserProfile
	IsNew   bool
}

// ResolveOrCreateAccount looks up an existing user by email, ensures a
// profile exists, and creates user + profile when absent. Any failure aborts
// the whole submission.
func (ap *AccountProvisioner) ResolveOrCreateAccount(ctx context.Context, in *ProvisionInput) (*Account, error) {
	account, err := ap.resolve(ctx, in)
	if err != nil {
		return nil, regerr.Wrap(regerr.KindDependency, regerr.CodeAccountProvisioningFailed,
			fmt.Errorf("account provisioning failed: %w", err))
	}
	return account, nil
}

func (ap *AccountProvisioner) resolve(ctx context.Context, in *ProvisionInput) (*Account, error) {
	if in.UserID != 0 {
		profile, err := ap.store.GetProfileByUserID(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, fmt.Errorf("no profile for authenticated user %d", in.UserID)
		}
		return &Account{User: &models.User{ID: in.UserID}, Profile: profile}, nil
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	user, err := ap.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user != nil {
		profile, err := ap.store.GetProfileByUserID(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			profile = &models.UserProfile{
				UserID:    user.ID,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Mobile:    in.Mobile,
			}
			if err := ap.store.CreateProfile(ctx, profile); err != nil {
				return nil, err
			}
		}
		return &Account{User: user, Profile: profile}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user = &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         "customer",
	}
	if err := ap.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		UserID:    user.ID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Mobile:    in.Mobile,
	}
	if err := ap.store.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	util.AccountsProvisionedTotal.Inc()
	ap.logger.Info("Account holder created",
		zap.Int64("user_id", user.ID),
		zap.String("email", email))

	return &Account{User: user, Profile: profile, IsNew: true}, nil
}

// SessionClaims are the JWT claims of a registration-issued session.
type SessionClaims struct {
	UserID int64  `json:"userID"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SessionIssuer issues post-commit session credentials for newly created
// account holders.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	redis  *redisclient.Client
	logger *zap.Logger
}

// NewSessionIssuer creates a session issuer
func NewSessionIssuer(secret string, ttl time.Duration, redis *redisclient.Client) *SessionIssuer {
	return &SessionIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		redis:  redis,
		logger: util.GetLogger(),
	}
}

// IssueSession signs a JWT for the user and records it in Redis for
// revocation lookups.
func (si *SessionIssuer) IssueSession(ctx context.Context, user *models.User) (*models.AuthResult, error) {
	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(si.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(si.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	if si.redis != nil {
		if err := si.redis.StoreSession(ctx, user.ID, signed, si.ttl); err != nil {
			si.logger.Warn("Failed to record session in Redis", zap.Error(err))
		}
	}

	return &models.AuthResult{Token: signed, User: user}, nil
}

// ValidateSession parses and verifies a session token.
func (si *SessionIssuer) ValidateSession(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return si.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
