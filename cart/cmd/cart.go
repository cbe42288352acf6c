package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/kickshopping/cart/internal/service"
	"github.com/Alturino/kickshopping/cart/internal/viewmodel"
	"github.com/Alturino/kickshopping/internal/app"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/log"
	"github.com/Alturino/kickshopping/internal/render"
)

// NewCartCommand builds `cart` and its add, remove and watch subcommands.
func NewCartCommand() *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := newCartViewModel(cmd.Context())
			err := vm.Mount(cmd.Context())
			printCart(cmd.OutOrStdout(), vm.State(), vm.Total())
			return ignoreHandled(err)
		},
	}
	cartCmd.AddCommand(
		&cobra.Command{
			Use:   "add <productId>",
			Short: "Add one unit of a product to the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				productID, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("failed parsing productId=%s with error=%w", args[0], err)
				}
				a := app.FromContext(cmd.Context())
				add := viewmodel.NewAddToCart(service.NewCartService(a.Client), a.Resolver, a.Pager)
				return ignoreHandled(add.AddProduct(cmd.Context(), productID))
			},
		},
		&cobra.Command{
			Use:   "remove <itemId>",
			Short: "Remove an item from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				itemID, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("failed parsing itemId=%s with error=%w", args[0], err)
				}
				vm := newCartViewModel(cmd.Context())
				if err := vm.Mount(cmd.Context()); err != nil {
					printCart(cmd.OutOrStdout(), vm.State(), vm.Total())
					return ignoreHandled(err)
				}
				err = vm.RemoveItem(cmd.Context(), itemID)
				printCart(cmd.OutOrStdout(), vm.State(), vm.Total())
				return ignoreHandled(err)
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Show the cart and reload it every time the process is resumed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return watchCart(cmd.Context(), cmd.OutOrStdout())
			},
		},
	)
	return cartCmd
}

func newCartViewModel(c context.Context) *viewmodel.CartViewModel {
	a := app.FromContext(c)
	return viewmodel.NewCartViewModel(service.NewCartService(a.Client), a.Resolver, a.Pager)
}

// watchCart maps SIGCONT, sent when a stopped job is foregrounded, to the page
// becoming visible again.
func watchCart(c context.Context, out io.Writer) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "cart watch").Logger()

	vm := newCartViewModel(c)
	if err := vm.Mount(c); err != nil {
		logger.Debug().Err(err).Msg("failed mounting cart")
	}
	printCart(out, vm.State(), vm.Total())

	resumed := make(chan os.Signal, 1)
	signal.Notify(resumed, syscall.SIGCONT)
	defer signal.Stop(resumed)

	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped watching cart")
			return nil
		case <-resumed:
			logger.Info().Msg("resumed, reloading cart")
			if err := vm.OnVisibilityChange(c, true); err != nil {
				logger.Debug().Err(err).Msg("failed reloading cart")
			}
			printCart(out, vm.State(), vm.Total())
		}
	}
}

func printCart(out io.Writer, state viewmodel.CartState, total string) {
	table := render.NewTable("Carrito", "ID", "Producto", "Cantidad", "Precio")
	for _, item := range state.Items {
		name, price := "", "-"
		if item.Product != nil {
			name = item.Product.Name
			if item.Product.Price.Valid {
				price = "$" + item.Product.Price.Decimal.StringFixed(2)
			}
		}
		table.AddRow(strconv.Itoa(item.ID), name, strconv.Itoa(item.Quantity), price)
	}
	fmt.Fprint(out, table.String())
	if state.Error != "" {
		fmt.Fprintln(out, render.ErrorStyle.Render(state.Error))
		return
	}
	if len(state.Items) == 0 {
		fmt.Fprintln(out, "Tu carrito está vacío")
	}
	fmt.Fprintln(out, render.Field("Total", "$"+total))
	fmt.Fprintln(out, render.Field("Seguir comprando", app.Hints[constants.PathHome]))
}

// ignoreHandled drops errors the page already surfaced to the user through an
// alert, a navigation or its error state.
func ignoreHandled(err error) error {
	if err == nil {
		return nil
	}
	return app.ErrHandled
}
