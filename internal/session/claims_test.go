package session_test

import (
	"encoding/base64"
	"testing"

	"github.com/brainink/hub/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return token
}

func TestDecodeClaims(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		claims   jwt.MapClaims
		wantID   int64
		wantUser string
		wantName string
	}{
		{
			name:     "user_id number",
			claims:   jwt.MapClaims{"user_id": 42, "username": "ada", "fname": "Ada", "lname": "Lovelace"},
			wantID:   42,
			wantUser: "ada",
			wantName: "Ada Lovelace",
		},
		{
			name:     "numeric sub string",
			claims:   jwt.MapClaims{"sub": "7", "first_name": "Grace"},
			wantID:   7,
			wantUser: "7",
			wantName: "7",
		},
		{
			name:     "sub is a username and id carries the number",
			claims:   jwt.MapClaims{"sub": "linus", "id": 99},
			wantID:   99,
			wantUser: "linus",
			wantName: "linus",
		},
		{
			name:     "camel case userId",
			claims:   jwt.MapClaims{"userId": "1234", "username": "kim"},
			wantID:   1234,
			wantUser: "kim",
			wantName: "kim",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := session.DecodeClaims(signToken(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, claims.UserID)
			assert.Equal(t, tt.wantUser, claims.Username)
			assert.Equal(t, tt.wantName, claims.DisplayName())
		})
	}
}

func TestDecodeClaims_UnsignedPayload(t *testing.T) {
	t.Parallel()

	// Header without alg, payload with padding-free base64url JSON
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":5,"email":"a@b.c"}`))

	claims, err := session.DecodeClaims(header + "." + payload + ".sig")
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestDecodeClaims_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "empty", token: "", wantErr: session.ErrNoCredential},
		{name: "two segments", token: "abc.def", wantErr: session.ErrInvalidToken},
		{name: "payload not json", token: "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig", wantErr: session.ErrInvalidToken},
		{name: "no user id", token: signToken(t, jwt.MapClaims{"username": "ghost"}), wantErr: session.ErrMissingUserID},
		{name: "zero user id", token: signToken(t, jwt.MapClaims{"user_id": 0}), wantErr: session.ErrMissingUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := session.DecodeClaims(tt.token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
