package token

import (
	"encoding/base64"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed signing token with error: %s", err)
	}
	return s
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		expectedOk   bool
		expectedID   int
		expectedIDOk bool
	}{
		{
			name:         "given signed token with user_id should return user id",
			token:        signed(t, jwt.MapClaims{"sub": "ana@gmail.com", "user_id": 7, "rol_id": 2}),
			expectedOk:   true,
			expectedID:   7,
			expectedIDOk: true,
		},
		{
			name:         "given token without user_id should return payload without user id",
			token:        signed(t, jwt.MapClaims{"sub": "ana@gmail.com"}),
			expectedOk:   true,
			expectedIDOk: false,
		},
		{
			name:         "given numeric string user_id should return user id",
			token:        "x." + base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":"12"}`)) + ".sig",
			expectedOk:   true,
			expectedID:   12,
			expectedIDOk: true,
		},
		{
			name:         "given padded standard base64 payload should decode",
			token:        "x." + base64.StdEncoding.EncodeToString([]byte(`{"user_id":3}`)) + ".sig",
			expectedOk:   true,
			expectedID:   3,
			expectedIDOk: true,
		},
		{
			name:         "given two segments should decode payload",
			token:        "x." + base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":5}`)),
			expectedOk:   true,
			expectedID:   5,
			expectedIDOk: true,
		},
		{
			name:         "given zero user_id should not return user id",
			token:        "x." + base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":0}`)) + ".sig",
			expectedOk:   true,
			expectedIDOk: false,
		},
		{
			name:         "given fractional user_id should not return user id",
			token:        "x." + base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":1.5}`)) + ".sig",
			expectedOk:   true,
			expectedIDOk: false,
		},
		{name: "given empty token should return no payload", token: ""},
		{name: "given single segment should return no payload", token: "abc"},
		{name: "given empty payload segment should return no payload", token: "a..c"},
		{name: "given invalid base64 should return no payload", token: "a.!!!!.c"},
		{
			name:  "given non json payload should return no payload",
			token: "a." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".c",
		},
		{
			name:  "given json array payload should return no payload",
			token: "a." + base64.RawURLEncoding.EncodeToString([]byte("[1,2]")) + ".c",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				payload, ok := Decode(test.token)
				assert.Equal(t, test.expectedOk, ok)

				id, idOk := payload.UserID()
				assert.Equal(t, test.expectedIDOk, idOk)
				assert.Equal(t, test.expectedID, id)
			})
		})
	}
}

func TestPayloadUserType(t *testing.T) {
	payload, ok := Decode(signed(t, jwt.MapClaims{"user_type": "vendedor", "sub": "ana"}))
	assert.True(t, ok)

	userType, ok := payload.UserType()
	assert.True(t, ok)
	assert.Equal(t, "vendedor", userType)
	assert.Equal(t, "ana", payload.Subject())

	var empty Payload
	_, ok = empty.UserType()
	assert.False(t, ok)
	assert.Equal(t, "", empty.Subject())
}
