package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the credential is not a decodable three-part token.
	ErrInvalidToken = errors.New("invalid access token")
	// ErrMissingUserID is returned when the token payload carries no usable user id.
	ErrMissingUserID = errors.New("access token has no user id")
)

// userIDKeys lists payload keys that may carry the user id, in priority order.
var userIDKeys = []string{"user_id", "sub", "id", "userId"}

// Claims is the identity decoded from a bearer credential.
type Claims struct {
	UserID    int64          `json:"user_id"`
	Username  string         `json:"username,omitempty"`
	FirstName string         `json:"fname,omitempty"`
	LastName  string         `json:"lname,omitempty"`
	Email     string         `json:"email,omitempty"`
	Raw       map[string]any `json:"-"`
}

// DisplayName returns "first last" when both are known, otherwise the username.
func (c *Claims) DisplayName() string {
	if c.FirstName != "" && c.LastName != "" {
		return c.FirstName + " " + c.LastName
	}
	return c.Username
}

// parser decodes the payload without verifying the signature. The token is
// issued and verified by the backend; this side only reads identity fields.
var parser = jwt.NewParser(jwt.WithPaddingAllowed(), jwt.WithJSONNumber())

// DecodeClaims extracts the identity claims from a bearer credential.
func DecodeClaims(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoCredential
	}

	mapClaims := jwt.MapClaims{}

	parsed, _, err := parser.ParseUnverified(token, mapClaims)
	if err != nil {
		// An unknown or missing alg header still leaves the payload decoded
		if !errors.Is(err, jwt.ErrTokenUnverifiable) || parsed == nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	userID, ok := extractUserID(mapClaims)
	if !ok {
		return nil, ErrMissingUserID
	}

	return &Claims{
		UserID:    userID,
		Username:  firstString(mapClaims, "username", "sub"),
		FirstName: firstString(mapClaims, "fname", "first_name"),
		LastName:  firstString(mapClaims, "lname", "last_name"),
		Email:     firstString(mapClaims, "email"),
		Raw:       mapClaims,
	}, nil
}

// extractUserID returns the first positive integer found under userIDKeys.
func extractUserID(claims jwt.MapClaims) (int64, bool) {
	for _, key := range userIDKeys {
		value, ok := claims[key]
		if !ok {
			continue
		}

		var (
			id  int64
			err error
		)

		switch v := value.(type) {
		case json.Number:
			id, err = v.Int64()
			if err != nil {
				var f float64
				f, err = v.Float64()
				id = int64(f)
			}
		case float64:
			id = int64(v)
		case string:
			id, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		default:
			continue
		}

		if err == nil && id > 0 {
			return id, true
		}
	}

	return 0, false
}

// firstString returns the first non-empty string value among keys.
func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if s, ok := claims[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
