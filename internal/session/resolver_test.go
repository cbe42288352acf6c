package session

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/page"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed signing token with error: %s", err)
	}
	return s
}

func TestResolverResolve(t *testing.T) {
	withUser := signedToken(t, jwt.MapClaims{"sub": "ana@gmail.com", "user_id": 42})
	withoutUser := signedToken(t, jwt.MapClaims{"sub": "ana@gmail.com"})
	malformed := "x." + base64.RawURLEncoding.EncodeToString([]byte("{not json")) + ".y"

	tests := []struct {
		name                string
		stored              map[string]string
		policy              Policy
		expected            Session
		expectedErr         error
		expectedNavigations []string
	}{
		{
			name:     "given no token and fallback policy should return fallback session",
			policy:   PolicyFallback,
			expected: Session{UserID: 1, Anonymous: true},
		},
		{
			name:                "given no token and require token policy should redirect to login",
			policy:              PolicyRequireToken,
			expected:            Session{UserID: 1, Anonymous: true},
			expectedErr:         errors.ErrLoginRequired,
			expectedNavigations: []string{"/login"},
		},
		{
			name:                "given no token and require user id policy should redirect to login",
			policy:              PolicyRequireUserID,
			expected:            Session{UserID: 1, Anonymous: true},
			expectedErr:         errors.ErrLoginRequired,
			expectedNavigations: []string{"/login"},
		},
		{
			name:     "given token with user id should return user id from payload",
			stored:   map[string]string{"token": withUser, "user_type": "vendedor"},
			policy:   PolicyFallback,
			expected: Session{UserID: 42, UserType: "vendedor", Token: withUser},
		},
		{
			name:     "given token without user id and fallback policy should return fallback",
			stored:   map[string]string{"token": withoutUser},
			policy:   PolicyFallback,
			expected: Session{UserID: 1, Token: withoutUser, Anonymous: true},
		},
		{
			name:     "given token without user id and require token policy should keep token",
			stored:   map[string]string{"token": withoutUser},
			policy:   PolicyRequireToken,
			expected: Session{UserID: 1, Token: withoutUser, Anonymous: true},
		},
		{
			name:                "given token without user id and require user id policy should redirect",
			stored:              map[string]string{"token": withoutUser},
			policy:              PolicyRequireUserID,
			expected:            Session{UserID: 1, Token: withoutUser, Anonymous: true},
			expectedErr:         errors.ErrLoginRequired,
			expectedNavigations: []string{"/login"},
		},
		{
			name:     "given malformed token should return fallback without panic",
			stored:   map[string]string{"token": malformed},
			policy:   PolicyFallback,
			expected: Session{UserID: 1, Token: malformed, Anonymous: true},
		},
		{
			name:     "given garbage token should return fallback without panic",
			stored:   map[string]string{"token": "garbage"},
			policy:   PolicyFallback,
			expected: Session{UserID: 1, Token: "garbage", Anonymous: true},
		},
		{
			name:     "given no token and fixed policy should return fallback session",
			policy:   PolicyFixed,
			expected: Session{UserID: 1, Anonymous: true},
		},
		{
			name:     "given token with user id and fixed policy should ignore token",
			stored:   map[string]string{"token": withUser, "user_type": "vendedor"},
			policy:   PolicyFixed,
			expected: Session{UserID: 1, Anonymous: true},
		},
		{
			name:     "given user type only in payload should use payload user type",
			stored:   map[string]string{"token": signedToken(t, jwt.MapClaims{"user_id": 3, "user_type": "comprador"})},
			policy:   PolicyRequireUserID,
			expected: Session{UserID: 3, UserType: "comprador"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := context.Background()
			store := NewMemoryStore()
			for k, v := range test.stored {
				_ = store.Set(c, k, v)
			}
			navigator := &page.Recorder{}
			resolver := NewResolver(store, navigator, 1)

			actual, err := resolver.Resolve(c, test.policy)

			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			if test.expected.Token == "" && test.stored["token"] != "" && test.policy != PolicyFixed {
				test.expected.Token = test.stored["token"]
			}
			assert.Equal(t, test.expected, actual)
			assert.Equal(t, test.expectedNavigations, navigator.Navigations())
		})
	}
}

func TestResolverRecomputesEveryCall(t *testing.T) {
	c := context.Background()
	store := NewMemoryStore()
	resolver := NewResolver(store, &page.Recorder{}, 1)

	first, err := resolver.Resolve(c, PolicyFallback)
	assert.NoError(t, err)
	assert.Equal(t, 1, first.UserID)

	_ = store.Set(c, "token", signedToken(t, jwt.MapClaims{"user_id": 9}))
	second, err := resolver.Resolve(c, PolicyFallback)
	assert.NoError(t, err)
	assert.Equal(t, 9, second.UserID)
	assert.False(t, second.Anonymous)
}
