package viewmodel

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/internal/page"
	"github.com/Alturino/kickshopping/internal/session"
	"github.com/Alturino/kickshopping/user/internal/service"
	"github.com/Alturino/kickshopping/user/pkg/request"
	"github.com/Alturino/kickshopping/user/pkg/response"
)

const (
	MessageSessionExpired = "Sesión expirada. Por favor, inicia sesión de nuevo."
	MessageUserLoadFailed = "No se pudo cargar el usuario"
	MessageUpdateFailed   = "No se pudo actualizar el perfil"
	MessageUpdateNet      = "Error de red"
)

type ProfileState struct {
	UserID    int
	User      *response.User
	UserType  string
	Loading   bool
	Error     string
	Editing   bool
	EditError string
}

// ProfileViewModel holds the profile page state. Like the cart, no lock is held
// across a backend call.
type ProfileViewModel struct {
	service   service.UserService
	resolver  session.Resolver
	navigator page.Navigator

	mu    sync.Mutex
	state ProfileState
}

func NewProfileViewModel(svc service.UserService, resolver session.Resolver, navigator page.Navigator) *ProfileViewModel {
	return &ProfileViewModel{service: svc, resolver: resolver, navigator: navigator}
}

func (vm *ProfileViewModel) State() ProfileState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	state := vm.state
	if vm.state.User != nil {
		user := *vm.state.User
		state.User = &user
	}
	return state
}

// Load fetches the identity. The legacy backend is asked by user id, with the
// fallback id when there is no token. The catalog backend needs the token. A 401
// from either ends the session.
func (vm *ProfileViewModel) Load(c context.Context) error {
	c, span := otel.Tracer.Start(c, "ProfileViewModel Load")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProfileViewModel Load").Logger()

	policy := session.PolicyRequireToken
	if vm.service.Variant() == client.VariantLegacy {
		policy = session.PolicyFallback
	}

	logger = logger.With().Str(log.KeyProcess, "resolving session").Logger()
	logger.Trace().Msg("resolving session")
	sess, err := vm.resolver.Resolve(logger.WithContext(c), policy)
	if err != nil {
		otel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Int(log.KeyUserID, sess.UserID).Logger()
	logger.Trace().Msg("resolved session")

	vm.mu.Lock()
	vm.state.UserID = sess.UserID
	vm.state.Loading = true
	vm.mu.Unlock()
	defer func() {
		vm.mu.Lock()
		vm.state.Loading = false
		vm.mu.Unlock()
	}()

	logger = logger.With().Str(log.KeyProcess, "fetching user").Logger()
	logger.Info().Msg("fetching user")
	user, err := vm.service.Me(logger.WithContext(c), sess.UserID)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		if client.IsUnauthorized(err) {
			vm.expire(logger.WithContext(c))
			return err
		}
		vm.mu.Lock()
		vm.state.Error = MessageUserLoadFailed
		vm.mu.Unlock()
		return err
	}

	vm.mu.Lock()
	vm.state.User = &user
	vm.state.UserType = user.DisplayUserType(sess.UserType)
	vm.state.Error = ""
	vm.mu.Unlock()
	logger.Info().Object(log.KeyUser, user).Msg("fetched user")

	return nil
}

func (vm *ProfileViewModel) expire(c context.Context) {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "expiring session").Logger()
	if err := vm.resolver.Store().Delete(c, constants.StoreKeyToken); err != nil {
		err = fmt.Errorf("failed deleting token with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	}

	vm.mu.Lock()
	vm.state.User = nil
	vm.state.UserType = ""
	vm.state.Editing = false
	vm.state.Error = MessageSessionExpired
	vm.mu.Unlock()

	logger.Info().Str(log.KeyPath, constants.PathLogin).Msg("session expired, redirecting to login")
	vm.navigator.Navigate(c, constants.PathLogin)
}

func (vm *ProfileViewModel) StartEdit() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.Editing = true
	vm.state.EditError = ""
}

func (vm *ProfileViewModel) CancelEdit() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.state.Editing = false
	vm.state.EditError = ""
}

// Save sends the new name and email. On success the returned user replaces the
// shown one and edit mode ends.
func (vm *ProfileViewModel) Save(c context.Context, fullName string, email string) error {
	c, span := otel.Tracer.Start(c, "ProfileViewModel Save")
	defer span.End()

	vm.mu.Lock()
	userID := vm.state.UserID
	vm.mu.Unlock()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProfileViewModel Save").
		Int(log.KeyUserID, userID).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating user").Logger()
	logger.Info().Msg("updating user")
	param := request.UpdateProfileRequest{FullName: fullName, Email: email}
	user, err := vm.service.UpdateMe(logger.WithContext(c), userID, param)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		vm.mu.Lock()
		if client.IsNetwork(err) {
			vm.state.EditError = MessageUpdateNet
		} else {
			vm.state.EditError = MessageUpdateFailed
		}
		vm.mu.Unlock()
		return err
	}

	vm.mu.Lock()
	if user.UserType == "" {
		user.UserType = vm.state.UserType
	}
	vm.state.User = &user
	vm.state.Editing = false
	vm.state.EditError = ""
	vm.mu.Unlock()
	logger.Info().Object(log.KeyUser, user).Msg("updated user")

	return nil
}

// Logout deletes the token and goes to the login page.
func (vm *ProfileViewModel) Logout(c context.Context) error {
	c, span := otel.Tracer.Start(c, "ProfileViewModel Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProfileViewModel Logout").
		Str(log.KeyProcess, "deleting token").
		Logger()

	logger.Info().Msg("deleting token")
	if err := vm.resolver.Store().Delete(c, constants.StoreKeyToken); err != nil {
		err = fmt.Errorf("failed deleting token with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted token")

	vm.mu.Lock()
	vm.state = ProfileState{}
	vm.mu.Unlock()
	vm.navigator.Navigate(c, constants.PathLogin)
	return nil
}
