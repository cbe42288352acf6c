package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/kickshopping/cart/cmd"
	"github.com/Alturino/kickshopping/internal/app"
	"github.com/Alturino/kickshopping/internal/config"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/log"
	productCmd "github.com/Alturino/kickshopping/product/cmd"
	userCmd "github.com/Alturino/kickshopping/user/cmd"
)

type globalFlags struct {
	configFile string
	variant    string
	baseURL    string
}

// bootstrap loads the config, applies the global flag overrides and returns a
// context carrying the process logger.
func bootstrap(cmd *cobra.Command, flags globalFlags) (*config.Config, context.Context) {
	cfg := config.InitConfig(cmd.Context(), constants.AppName, flags.configFile)
	if cmd.Flags().Changed("variant") {
		cfg.Application.Variant = flags.variant
	}
	if cmd.Flags().Changed("base-url") {
		cfg.Application.BaseURL = flags.baseURL
	}

	logger := log.InitLogger(cfg.Log.Path, cfg.Application.Env).
		With().
		Str(log.KeyAppName, constants.AppName).
		Str(log.KeyTag, "main Start").
		Str(log.KeyVariant, cfg.Application.Variant).
		Logger()
	return cfg, logger.WithContext(cmd.Context())
}

func Start() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		flags  globalFlags
		a      *app.App
		runCtx = c
	)
	rootCmd := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Storefront client for the KICKSHOPPING backend",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, c := bootstrap(cmd, flags)
			logger := zerolog.Ctx(c)

			logger.Debug().Str(log.KeyProcess, "initializing app").Msg("initializing app")
			built, err := app.New(c, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				err = fmt.Errorf("failed initializing app with error=%w", err)
				logger.Error().Err(err).Msg(err.Error())
				return err
			}
			a, runCtx = built, c
			logger.Debug().Str(log.KeyProcess, "initializing app").Msg("initialized app")

			cmd.SetContext(app.AttachToContext(c, a))
			return nil
		},
	}
	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&flags.configFile, "config", "", "config file, default ./env/kickshopping.yaml or ~/.kickshopping/kickshopping.yaml")
	persistent.StringVar(&flags.variant, "variant", "", "backend variant, legacy or catalog")
	persistent.StringVar(&flags.baseURL, "base-url", "", "backend base url")

	rootCmd.AddCommand(
		productCmd.NewProductsCommand(),
		productCmd.NewProductCommand(),
		cartCmd.NewCartCommand(),
		userCmd.NewLoginCommand(),
		userCmd.NewRegisterCommand(),
		userCmd.NewLogoutCommand(),
		userCmd.NewProfileCommand(),
		newMockBackendCommand(&flags),
	)

	err := rootCmd.ExecuteContext(c)
	if a != nil {
		if closeErr := a.Close(context.WithoutCancel(runCtx)); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}
	if err == nil {
		return
	}
	if !errors.Is(err, app.ErrHandled) {
		fmt.Fprintln(os.Stderr, err.Error())
	}
	os.Exit(1)
}
