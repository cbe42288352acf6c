// Package app wires the storefront dependencies for one CLI run.
package app

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/config"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/metric"
	"github.com/Alturino/kickshopping/internal/otel"
	"github.com/Alturino/kickshopping/internal/page"
	"github.com/Alturino/kickshopping/internal/session"
	"github.com/Alturino/kickshopping/internal/validate"
)

// Hints tell the CLI user which command opens the page a view model navigated to.
var Hints = map[string]string{
	constants.PathHome:     "kickshopping products",
	constants.PathLogin:    "kickshopping login",
	constants.PathRegister: "kickshopping register",
	constants.PathCart:     "kickshopping cart",
	constants.PathProfile:  "kickshopping profile",
	constants.PathProduct:  "kickshopping product <id>",
}

// ErrHandled marks a failure the page already showed to the user. The CLI exits
// non-zero without printing it again.
var ErrHandled = stdErrors.New("failure already shown")

type App struct {
	Config    *config.Config
	Store     session.Store
	Client    *client.Client
	Resolver  session.Resolver
	Pager     page.Pager
	Validator validate.Validator
	Metrics   *metric.ClientMetrics
	In        io.Reader
	Out       io.Writer

	shutdowns []otel.ShutdownFunc
}

// New builds the app from cfg. The caller must Close it.
func New(c context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "app New").
		Str(log.KeyVariant, cfg.Application.Variant).
		Logger()

	a := &App{
		Config:    cfg,
		Pager:     page.NewConsole(out, Hints),
		Validator: validate.New(cfg.Application.EmailDomain),
		Metrics:   metric.NewClientMetrics(),
		In:        in,
		Out:       out,
	}

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Debug().Msg("initializing otel sdk")
	shutdowns, err := otel.InitOtelSdk(logger.WithContext(c), constants.AppName, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, stdErrors.Join(err, otel.ShutdownOtel(c, shutdowns))
	}
	a.shutdowns = shutdowns
	logger.Debug().Msg("initialized otel sdk")

	logger = logger.With().
		Str(log.KeyProcess, "initializing token store").
		Str(log.KeyStoreDriver, cfg.Session.Driver).
		Logger()
	logger.Debug().Msg("initializing token store")
	store, err := session.NewStore(logger.WithContext(c), cfg.Session, cfg.Cache)
	if err != nil {
		err = fmt.Errorf("failed initializing token store with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, stdErrors.Join(err, a.Close(c))
	}
	a.Store = store
	a.Resolver = session.NewResolver(store, a.Pager, cfg.Application.FallbackUserID)
	logger.Debug().Msg("initialized token store")

	logger = logger.With().Str(log.KeyProcess, "initializing remote client").Logger()
	logger.Debug().Msg("initializing remote client")
	cl, err := client.New(cfg.Application, store, a.Metrics)
	if err != nil {
		err = fmt.Errorf("failed initializing remote client with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, stdErrors.Join(err, a.Close(c))
	}
	a.Client = cl
	logger.Debug().Msg("initialized remote client")

	return a, nil
}

// Close flushes the client metrics, closes the token store and shuts the otel
// sdk down.
func (a *App) Close(c context.Context) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "App Close").Logger()

	var errs error
	if err := a.Metrics.WriteTextfile(a.Config.Metric.TextfilePath); err != nil {
		err = fmt.Errorf("failed writing metrics textfile with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		errs = stdErrors.Join(errs, err)
	}
	if a.Store != nil {
		if err := session.CloseStore(a.Store); err != nil {
			err = fmt.Errorf("failed closing token store with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			errs = stdErrors.Join(errs, err)
		}
	}
	if err := otel.ShutdownOtel(c, a.shutdowns); err != nil {
		err = fmt.Errorf("failed shutting down otel with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		errs = stdErrors.Join(errs, err)
	}
	return errs
}

type appKey struct{}

func AttachToContext(c context.Context, a *App) context.Context {
	return context.WithValue(c, appKey{}, a)
}

// FromContext returns the app attached by the root command, or nil.
func FromContext(c context.Context) *App {
	a, _ := c.Value(appKey{}).(*App)
	return a
}
