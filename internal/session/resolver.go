package session

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/internal/page"
	"github.com/Alturino/kickshopping/internal/token"
)

// Policy decides what a page does when no identity can be derived from the token.
// Pages differ here and the difference is kept on purpose.
type Policy int

const (
	// PolicyFallback uses the fallback user id.
	PolicyFallback Policy = iota
	// PolicyRequireToken redirects to the login page when no token is stored.
	PolicyRequireToken
	// PolicyRequireUserID redirects to the login page when no token is stored or
	// the token carries no user id.
	PolicyRequireUserID
	// PolicyFixed always uses the fallback user id and never reads the token.
	PolicyFixed
)

func (p Policy) String() string {
	switch p {
	case PolicyFallback:
		return "fallback"
	case PolicyRequireToken:
		return "require-token"
	case PolicyRequireUserID:
		return "require-user-id"
	case PolicyFixed:
		return "fixed"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

type Session struct {
	UserID    int    `json:"user_id"`
	UserType  string `json:"user_type,omitempty"`
	Token     string `json:"-"`
	Anonymous bool   `json:"anonymous"`
}

func (s Session) HasToken() bool {
	return s.Token != ""
}

type Resolver struct {
	store          Store
	navigator      page.Navigator
	fallbackUserID int
}

func NewResolver(store Store, navigator page.Navigator, fallbackUserID int) Resolver {
	return Resolver{store: store, navigator: navigator, fallbackUserID: fallbackUserID}
}

func (r Resolver) Store() Store {
	return r.store
}

func (r Resolver) read(c context.Context, key string) string {
	v, err := r.store.Get(c, key)
	if err != nil {
		if !stdErrors.Is(err, errors.ErrStoreKeyNotFound) {
			zerolog.Ctx(c).Warn().Err(err).Str(log.KeyStoreKey, key).Msg("failed reading token store")
		}
		return ""
	}
	return v
}

// Resolve derives the session for the current page load. It is recomputed on every
// call. When the policy demands a login it navigates to the login page and returns
// errors.ErrLoginRequired along with the anonymous session.
func (r Resolver) Resolve(c context.Context, policy Policy) (Session, error) {
	c, span := otel.Tracer.Start(c, "Resolver Resolve")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Resolver Resolve").
		Str(log.KeyPolicy, policy.String()).
		Logger()

	if policy == PolicyFixed {
		logger.Info().Int(log.KeyUserID, r.fallbackUserID).Msg("using fixed user id")
		return Session{UserID: r.fallbackUserID, Anonymous: true}, nil
	}

	anonymous := Session{
		UserID:    r.fallbackUserID,
		UserType:  r.read(c, constants.StoreKeyUserType),
		Anonymous: true,
	}

	logger = logger.With().Str(log.KeyProcess, "reading token").Logger()
	raw := r.read(c, constants.StoreKeyToken)
	if raw == "" {
		logger.Info().Msg("no token stored")
		if policy == PolicyFallback {
			return anonymous, nil
		}
		return anonymous, r.requireLogin(logger.WithContext(c), span)
	}
	anonymous.Token = raw

	logger = logger.With().Str(log.KeyProcess, "decoding token").Logger()
	payload, ok := token.Decode(raw)
	if !ok {
		logger.Info().Msg("token payload unreadable")
	}
	userID, ok := payload.UserID()
	if !ok {
		logger.Info().Msg("token carries no user id")
		if policy == PolicyRequireUserID {
			return anonymous, r.requireLogin(logger.WithContext(c), span)
		}
		return anonymous, nil
	}

	userType := anonymous.UserType
	if userType == "" {
		userType, _ = payload.UserType()
	}
	logger.Info().Int(log.KeyUserID, userID).Str(log.KeyUserType, userType).Msg("resolved session")
	return Session{UserID: userID, UserType: userType, Token: raw}, nil
}

func (r Resolver) requireLogin(c context.Context, span trace.Span) error {
	err := errors.ErrLoginRequired
	otel.RecordError(err, span)
	zerolog.Ctx(c).Info().Str(log.KeyPath, constants.PathLogin).Msg("redirecting to login")
	r.navigator.Navigate(c, constants.PathLogin)
	return err
}
