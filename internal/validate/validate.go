// Package validate builds the form validator used before any auth request.
package validate

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	TagEmailDomain = "email_domain"
	TagUserType    = "user_type"
)

type Validator struct {
	validate *validator.Validate
}

// New returns a validator whose email_domain rule accepts only addresses ending
// in emailDomain, and whose user_type rule accepts comprador or vendedor.
func New(emailDomain string) Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterValidation(TagEmailDomain, func(fl validator.FieldLevel) bool {
		return EmailHasDomain(fl.Field().String(), emailDomain)
	})
	validate.RegisterValidation(TagUserType, func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "comprador", "vendedor":
			return true
		default:
			return false
		}
	})
	return Validator{validate: validate}
}

func EmailHasDomain(email string, domain string) bool {
	return domain != "" && len(email) > len(domain) && strings.HasSuffix(email, domain)
}

// FailedTag validates s, skipping the fields named in except, and returns the
// tag of the first failing field in declaration order, or "" when s is valid.
func (v Validator) FailedTag(c context.Context, s any, except ...string) (string, error) {
	var err error
	if len(except) > 0 {
		err = v.validate.StructExceptCtx(c, s, except...)
	} else {
		err = v.validate.StructCtx(c, s)
	}
	if err == nil {
		return "", nil
	}
	var fieldErrs validator.ValidationErrors
	if stdErrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fieldErrs[0].Tag(), nil
	}
	return "", err
}
