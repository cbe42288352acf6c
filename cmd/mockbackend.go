package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/kickshopping/internal/client"
	"github.com/Alturino/kickshopping/internal/config"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/mockbackend"
	"github.com/Alturino/kickshopping/internal/otel"
)

func price(v float64) *float64 {
	return &v
}

// seedDemo fills the backend with a few products and a buyer and seller account.
func seedDemo(b *mockbackend.Backend) {
	b.AddUser(mockbackend.User{
		Email:    "comprador@gmail.com",
		Password: "comprador",
		FullName: "Cliente Demo",
		UserType: constants.UserTypeBuyer,
	})
	b.AddUser(mockbackend.User{
		Email:    "vendedor@gmail.com",
		Password: "vendedor",
		FullName: "Tienda Demo",
		UserType: constants.UserTypeSeller,
	})
	b.AddProduct(mockbackend.Product{
		Name:        "Air Max 90",
		Description: "Zapatillas urbanas",
		Price:       price(129.99),
		Discount:    10,
	})
	b.AddProduct(mockbackend.Product{
		Name:        "Buzo Oversize",
		Description: "Buzo de algodón",
		Price:       price(59.5),
		ImageURL:    "/buzo.jpeg",
	})
	b.AddProduct(mockbackend.Product{Name: "Gorra Edición Limitada"})
}

func newMockBackendCommand(flags *globalFlags) *cobra.Command {
	var (
		addr   string
		secret string
		cfg    *config.Config
	)
	mockCmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve an in-memory backend with demo data",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, c := bootstrap(cmd, *flags)
			cfg = loaded
			cmd.SetContext(c)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			variant, err := client.ParseVariant(cfg.Application.Variant)
			if err != nil {
				return err
			}
			return serveMockBackend(cmd.Context(), addr, variant, secret, cfg.Otel)
		},
	}
	mockCmd.Flags().StringVar(&addr, "addr", "localhost:8000", "listen address")
	mockCmd.Flags().StringVar(&secret, "secret", "kickshopping-demo", "token signing secret")
	return mockCmd
}

func serveMockBackend(c context.Context, addr string, variant client.Variant, secret string, otelCfg config.Otel) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "mock-backend serve").
		Str(log.KeyVariant, string(variant)).
		Logger()
	c = logger.WithContext(c)

	logger.Info().Str(log.KeyProcess, "InitOtelSdk").Msg("initializing otel sdk")
	shutdownFuncs, err := otel.InitOtelSdk(c, constants.AppName+"-mock-backend", otelCfg)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Str(log.KeyProcess, "InitOtelSdk").Msg("initialized otel sdk")

	backend := mockbackend.New(variant, secret)
	seedDemo(backend)
	server := http.Server{
		Addr:         addr,
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      backend,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str(log.KeyProcess, "Start Server").Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("failed serving with error=%w", err)
			return
		}
		serveErr <- nil
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			logger.Error().Err(err).Str(log.KeyProcess, "Start Server").Msg(err.Error())
		}
	case <-c.Done():
		logger.Info().Str(log.KeyProcess, "Shutdown Server").Msg("received interruption signal shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 5*time.Second)
		defer cancel()
		if err = server.Shutdown(shutdownCtx); err != nil {
			err = fmt.Errorf("failed shutting down server with error=%w", err)
			logger.Error().Err(err).Str(log.KeyProcess, "Shutdown Server").Msg(err.Error())
		}
	}

	logger.Info().Str(log.KeyProcess, "Shutdown Server").Msg("shutting down otel")
	if shutdownErr := otel.ShutdownOtel(context.WithoutCancel(c), shutdownFuncs); shutdownErr != nil {
		shutdownErr = fmt.Errorf("failed shutting down otel with error=%w", shutdownErr)
		logger.Error().Err(shutdownErr).Str(log.KeyProcess, "Shutdown Server").Msg(shutdownErr.Error())
		err = errors.Join(err, shutdownErr)
	}
	logger.Info().Str(log.KeyProcess, "Shutdown Server").Msg("shutdown server")
	return err
}
