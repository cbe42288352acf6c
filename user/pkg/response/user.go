package response

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/Alturino/kickshopping/internal/constants"
)

const sellerRoleID = 1

// User is the identity in one shape whichever backend sent it. The catalog
// backend uses usu_* and rol_* columns, the legacy one plain names.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

type rawUser struct {
	ID          *int   `json:"id"`
	UsuID       *int   `json:"usu_id"`
	Username    string `json:"username"`
	UsuUsuario  string `json:"usu_usuario"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	UsuNombre   string `json:"usu_nombre_completo"`
	UserType    string `json:"user_type"`
	RolNombre   string `json:"rol_nombre"`
	TipoUsuario string `json:"tipo_usuario"`
	UsuRolID    int    `json:"usu_rol_id"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (u *User) UnmarshalJSON(b []byte) error {
	raw := rawUser{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	user := User{
		Username: firstNonEmpty(raw.Username, raw.UsuUsuario),
		Email:    firstNonEmpty(raw.Email, raw.UsuUsuario),
		FullName: firstNonEmpty(raw.UsuNombre, raw.FullName),
		UserType: firstNonEmpty(raw.UserType, raw.RolNombre, raw.TipoUsuario),
	}
	switch {
	case raw.ID != nil:
		user.ID = *raw.ID
	case raw.UsuID != nil:
		user.ID = *raw.UsuID
	}
	if user.UserType == "" && raw.UsuRolID != 0 {
		user.UserType = constants.UserTypeBuyer
		if raw.UsuRolID == sellerRoleID {
			user.UserType = constants.UserTypeSeller
		}
	}
	*u = user
	return nil
}

// DisplayName is the full name, or the username when there is none.
func (u User) DisplayName() string {
	return firstNonEmpty(u.FullName, u.Username)
}

// DisplayUserType is the user type from the backend, or stored when the backend
// sent none.
func (u User) DisplayUserType(stored string) string {
	return firstNonEmpty(u.UserType, stored)
}

func (u User) MarshalZerologObject(e *zerolog.Event) {
	e.Int("id", u.ID).Str("username", u.Username).Str("user_type", u.UserType)
}

// LoginResult is the token bundle returned by login and by catalog sign up, or
// the created record returned by legacy sign up.
type LoginResult struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	UserID      *int    `json:"user_id"`
	UserType    *string `json:"user_type"`
	ID          *int    `json:"id"`
	Username    string  `json:"username"`
}

func (r LoginResult) HasToken() bool {
	return r.AccessToken != ""
}

func (r LoginResult) HasSession() bool {
	return r.AccessToken != "" && r.UserID != nil && *r.UserID != 0
}

func (r LoginResult) IsCreatedRecord() bool {
	return r.ID != nil && *r.ID != 0
}

func (r LoginResult) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("has_token", r.HasToken())
	if r.UserID != nil {
		e.Int("user_id", *r.UserID)
	}
	if r.UserType != nil {
		e.Str("user_type", *r.UserType)
	}
}
