package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/teamboard/internal/config"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-that-is-32-chars-long"

func newTestService(t *testing.T) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	return svc.(*hmacJWTService)
}

func signMap(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, "EMP007", domain.RoleManager)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.EmployeeID)
	assert.Equal(t, domain.RoleManager, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)

	actor := claims.Actor()
	assert.True(t, actor.Has(domain.RoleManager))
	assert.True(t, actor.Is("7"))
}

func TestValidateUpstreamToken(t *testing.T) {
	svc := newTestService(t)

	// The upstream backend issues tokens with a numeric e_id and only exp.
	token := signMap(t, testSecret, jwt.MapClaims{
		"e_id": 12,
		"role": "DEVELOPER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "12", claims.EmployeeID)
	assert.Equal(t, domain.RoleDeveloper, claims.Role)
	assert.True(t, claims.IssuedAt.IsZero())
}

func TestValidateTokenErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "malformed",
			token:   "not.a.token",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "wrong key",
			token:   signMap(t, "another-secret-that-is-also-32-chars!", jwt.MapClaims{"e_id": 1, "role": "ADMIN", "exp": exp}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "expired",
			token:   signMap(t, testSecret, jwt.MapClaims{"e_id": 1, "role": "ADMIN", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantErr: ErrExpiredToken,
		},
		{
			name:    "unknown role",
			token:   signMap(t, testSecret, jwt.MapClaims{"e_id": 1, "role": "OWNER", "exp": exp}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "missing employee",
			token:   signMap(t, testSecret, jwt.MapClaims{"role": "ADMIN", "exp": exp}),
			wantErr: ErrInvalidToken,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(ctx, tc.token)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateTokenClockSkew(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, "1", domain.RoleAdmin)
	require.NoError(t, err)

	svc.timeFunc = func() time.Time { return time.Now().Add(61 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.NoError(t, err, "expiry within the allowed skew is accepted")

	svc.timeFunc = func() time.Time { return time.Now().Add(63 * time.Minute) }
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestBcryptVerifier(t *testing.T) {
	v := NewBcryptVerifier(4)

	hash, err := v.Hash("welcome123")
	require.NoError(t, err)

	assert.NoError(t, v.Compare(hash, "welcome123"))
	assert.ErrorIs(t, v.Compare(hash, "wrong"), ErrPasswordMismatch)
	assert.Error(t, v.Compare("not-a-hash", "welcome123"))
}
