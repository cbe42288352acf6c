package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Alturino/kickshopping/internal/app"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/render"
	"github.com/Alturino/kickshopping/product/internal/service"
	"github.com/Alturino/kickshopping/product/internal/viewmodel"
	"github.com/Alturino/kickshopping/product/pkg/response"
)

func NewProductsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.FromContext(cmd.Context())
			vm := viewmodel.NewCatalogViewModel(service.NewProductService(a.Client), a.Store)
			err := vm.Load(cmd.Context())
			printCatalog(cmd.OutOrStdout(), vm.State())
			if err != nil {
				return app.ErrHandled
			}
			return nil
		},
	}
}

func NewProductCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "product [id]",
		Short: "Show one product",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			a := app.FromContext(cmd.Context())
			vm := viewmodel.NewProductViewModel(service.NewProductService(a.Client), a.Store, a.Client.Variant())
			err := vm.Load(cmd.Context(), id)
			printProduct(cmd.OutOrStdout(), vm.State())
			if err != nil {
				return app.ErrHandled
			}
			return nil
		},
	}
}

func price(p response.Product) string {
	if !p.Price.Valid {
		return "-"
	}
	return "$" + p.Price.Decimal.StringFixed(2)
}

func discount(p response.Product) string {
	if !p.HasDiscount() {
		return ""
	}
	return p.Discount.Decimal.String() + "% OFF"
}

func printCatalog(out io.Writer, state viewmodel.CatalogState) {
	if state.Error != "" {
		fmt.Fprintln(out, render.ErrorStyle.Render(state.Error))
		return
	}
	if len(state.Products) == 0 {
		fmt.Fprintln(out, "No hay productos.")
		return
	}
	table := render.NewTable("Productos", "ID", "Nombre", "Precio", "Antes", "Descuento")
	for _, p := range state.Products {
		before := ""
		if original := p.OriginalPrice(); original != "" {
			before = render.StrikeStyle.Render("$" + original)
		}
		table.AddRow(strconv.Itoa(p.ID), p.Name, price(p), before, discount(p))
	}
	fmt.Fprint(out, table.String())
	if state.IsSeller {
		fmt.Fprintln(out, render.Field("Vendedor", "puedes publicar productos"))
	}
}

func printProduct(out io.Writer, state viewmodel.ProductState) {
	if state.Error != "" {
		fmt.Fprintln(out, render.ErrorStyle.Render(state.Error))
		return
	}
	if state.Product == nil {
		fmt.Fprintln(out, "No se encontró el producto.")
		return
	}
	p := *state.Product
	fmt.Fprintln(out, render.TitleStyle.Render(p.Name))
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}
	fmt.Fprintln(out, render.Field("Precio", price(p)))
	if original := p.OriginalPrice(); original != "" {
		fmt.Fprintln(out, render.Field("Antes", render.StrikeStyle.Render("$"+original)))
	}
	if d := discount(p); d != "" {
		fmt.Fprintln(out, render.Field("Descuento", d))
	}
	fmt.Fprintln(out, render.Field("Imagen", p.Image()))
	fmt.Fprintln(out, render.Field("Agregar al carrito", fmt.Sprintf("%s add %d", app.Hints[constants.PathCart], p.ID)))
}
