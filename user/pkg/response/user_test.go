package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		expected        User
		expectedDisplay string
	}{
		{
			name: "given legacy shape should keep fields",
			body: `{"id":3,"username":"ana@gmail.com","email":"ana@gmail.com","full_name":"Ana Gomez"}`,
			expected: User{
				ID:       3,
				Username: "ana@gmail.com",
				Email:    "ana@gmail.com",
				FullName: "Ana Gomez",
			},
			expectedDisplay: "Ana Gomez",
		},
		{
			name: "given catalog shape should normalize aliases",
			body: `{"usu_id":7,"usu_usuario":"leo@gmail.com","usu_nombre_completo":"Leo Diaz","usu_rol_id":2,"rol_nombre":"vendedor"}`,
			expected: User{
				ID:       7,
				Username: "leo@gmail.com",
				Email:    "leo@gmail.com",
				FullName: "Leo Diaz",
				UserType: "vendedor",
			},
			expectedDisplay: "Leo Diaz",
		},
		{
			name:            "given only seller role id should map to vendedor",
			body:            `{"usu_id":7,"usu_usuario":"leo@gmail.com","usu_rol_id":1}`,
			expected:        User{ID: 7, Username: "leo@gmail.com", Email: "leo@gmail.com", UserType: "vendedor"},
			expectedDisplay: "leo@gmail.com",
		},
		{
			name:            "given other role id should map to comprador",
			body:            `{"usu_id":7,"usu_rol_id":2}`,
			expected:        User{ID: 7, UserType: "comprador"},
			expectedDisplay: "",
		},
		{
			name:            "given tipo_usuario should use it",
			body:            `{"id":1,"username":"x","tipo_usuario":"comprador"}`,
			expected:        User{ID: 1, Username: "x", UserType: "comprador"},
			expectedDisplay: "x",
		},
		{
			name:            "given usu_nombre_completo should win over full_name",
			body:            `{"id":1,"full_name":"B","usu_nombre_completo":"A"}`,
			expected:        User{ID: 1, FullName: "A"},
			expectedDisplay: "A",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			u := User{}
			require.NoError(t, json.Unmarshal([]byte(test.body), &u))
			assert.Equal(t, test.expected, u)
			assert.Equal(t, test.expectedDisplay, u.DisplayName())
		})
	}
}

func TestUserDisplayUserType(t *testing.T) {
	assert.Equal(t, "vendedor", User{UserType: "vendedor"}.DisplayUserType("comprador"))
	assert.Equal(t, "comprador", User{}.DisplayUserType("comprador"))
	assert.Equal(t, "", User{}.DisplayUserType(""))
}

func TestLoginResult(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		expectedSession bool
		expectedCreated bool
	}{
		{
			name:            "given catalog bundle should be a session",
			body:            `{"access_token":"t","token_type":"bearer","user_id":4,"user_type":"vendedor"}`,
			expectedSession: true,
		},
		{
			name: "given token without user id should not be a session",
			body: `{"access_token":"t","token_type":"bearer"}`,
		},
		{
			name:            "given created record should be created",
			body:            `{"id":9,"username":"ana@gmail.com","email":"ana@gmail.com"}`,
			expectedCreated: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := LoginResult{}
			require.NoError(t, json.Unmarshal([]byte(test.body), &r))
			assert.Equal(t, test.expectedSession, r.HasSession())
			assert.Equal(t, test.expectedCreated, r.IsCreatedRecord())
		})
	}
}
