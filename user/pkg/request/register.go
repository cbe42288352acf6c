package request

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// RegisterRequest is the sign up form. Birthdate is used as typed unless all of
// BirthYear, BirthMonth and BirthDay are set.
type RegisterRequest struct {
	UserType   string `validate:"user_type"    json:"user_type"`
	Email      string `validate:"email_domain" json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Birthdate  string `json:"birthdate"`
	BirthYear  string `json:"-"`
	BirthMonth string `json:"-"`
	BirthDay   string `json:"-"`
}

// ComposedBirthdate returns YYYY-MM-DD with a zero padded month and day when all
// three parts are given, otherwise Birthdate.
func (r RegisterRequest) ComposedBirthdate() string {
	if r.BirthYear == "" || r.BirthMonth == "" || r.BirthDay == "" {
		return r.Birthdate
	}
	return fmt.Sprintf("%s-%s-%s", r.BirthYear, pad(r.BirthMonth), pad(r.BirthDay))
}

func pad(s string) string {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n < 10 && len(s) < 2 {
		return "0" + s
	}
	return s
}

func (r RegisterRequest) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).
		Str("user_type", r.UserType).
		Str("birthdate", r.ComposedBirthdate()).
		Str("password", "***")
}

func (r RegisterRequest) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R RegisterRequest
	return json.Marshal(R(r))
}
