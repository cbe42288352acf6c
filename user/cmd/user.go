package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alturino/kickshopping/internal/app"
	"github.com/Alturino/kickshopping/internal/constants"
	"github.com/Alturino/kickshopping/internal/render"
	"github.com/Alturino/kickshopping/user/internal/service"
	"github.com/Alturino/kickshopping/user/internal/viewmodel"
	"github.com/Alturino/kickshopping/user/pkg/request"
)

// prompter asks for the values missing from the flags, one line each.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(a *app.App) prompter {
	return prompter{in: bufio.NewScanner(a.In), out: a.Out}
}

func (p prompter) fill(label string, value *string) {
	if *value != "" {
		return
	}
	fmt.Fprintf(p.out, "%s: ", label)
	if p.in.Scan() {
		*value = strings.TrimSpace(p.in.Text())
	}
}

func printForm(out io.Writer, state viewmodel.FormState) {
	if state.Error != "" {
		fmt.Fprintln(out, render.ErrorStyle.Render(state.Error))
	}
	if state.Success != "" {
		fmt.Fprintln(out, render.TitleStyle.Render(state.Success))
		fmt.Fprintln(out, render.Field("Iniciar sesión", app.Hints[constants.PathLogin]))
	}
}

func NewLoginCommand() *cobra.Command {
	param := request.LoginRequest{}
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.FromContext(cmd.Context())
			p := newPrompter(a)
			p.fill("Email", &param.Email)
			p.fill("Contraseña", &param.Password)

			form := viewmodel.NewLoginForm(service.NewUserService(a.Client), a.Validator, a.Store, a.Pager)
			err := form.Submit(cmd.Context(), param)
			printForm(cmd.OutOrStdout(), form.State())
			return ignoreHandled(err)
		},
	}
	loginCmd.Flags().StringVarP(&param.Email, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&param.Password, "password", "p", "", "account password")
	return loginCmd
}

func NewRegisterCommand() *cobra.Command {
	param := request.RegisterRequest{}
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.FromContext(cmd.Context())
			p := newPrompter(a)
			p.fill("Email", &param.Email)
			p.fill("Contraseña", &param.Password)

			form := viewmodel.NewRegisterForm(service.NewUserService(a.Client), a.Validator, a.Store, a.Pager)
			err := form.Submit(cmd.Context(), param)
			printForm(cmd.OutOrStdout(), form.State())
			return ignoreHandled(err)
		},
	}
	flags := registerCmd.Flags()
	flags.StringVarP(&param.Email, "email", "e", "", "account email")
	flags.StringVarP(&param.Password, "password", "p", "", "account password")
	flags.StringVar(&param.UserType, "type", "", "comprador or vendedor")
	flags.StringVar(&param.FirstName, "first-name", "", "first name")
	flags.StringVar(&param.LastName, "last-name", "", "last name")
	flags.StringVar(&param.Phone, "phone", "", "phone number")
	flags.StringVar(&param.Birthdate, "birthdate", "", "birthdate as YYYY-MM-DD")
	flags.StringVar(&param.BirthYear, "birth-year", "", "birth year")
	flags.StringVar(&param.BirthMonth, "birth-month", "", "birth month")
	flags.StringVar(&param.BirthDay, "birth-day", "", "birth day")
	return registerCmd
}

func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newProfileViewModel(cmd.Context()).Logout(cmd.Context())
		},
	}
}

// NewProfileCommand builds `profile` and its edit subcommand.
func NewProfileCommand() *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := newProfileViewModel(cmd.Context())
			err := vm.Load(cmd.Context())
			printProfile(cmd.OutOrStdout(), vm.State())
			return ignoreHandled(err)
		},
	}

	update := request.UpdateProfileRequest{}
	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Change the full name and email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vm := newProfileViewModel(cmd.Context())
			if err := vm.Load(cmd.Context()); err != nil {
				printProfile(cmd.OutOrStdout(), vm.State())
				return ignoreHandled(err)
			}

			vm.StartEdit()
			if current := vm.State().User; current != nil {
				if update.FullName == "" {
					update.FullName = current.FullName
				}
				if update.Email == "" {
					update.Email = current.Email
				}
			}
			err := vm.Save(cmd.Context(), update.FullName, update.Email)
			printProfile(cmd.OutOrStdout(), vm.State())
			return ignoreHandled(err)
		},
	}
	editCmd.Flags().StringVar(&update.FullName, "full-name", "", "new full name")
	editCmd.Flags().StringVar(&update.Email, "email", "", "new email")
	profileCmd.AddCommand(editCmd)

	return profileCmd
}

func newProfileViewModel(c context.Context) *viewmodel.ProfileViewModel {
	a := app.FromContext(c)
	return viewmodel.NewProfileViewModel(service.NewUserService(a.Client), a.Resolver, a.Pager)
}

func printProfile(out io.Writer, state viewmodel.ProfileState) {
	fmt.Fprintln(out, render.TitleStyle.Render("Mi perfil"))
	if state.Error != "" {
		fmt.Fprintln(out, render.ErrorStyle.Render(state.Error))
	}
	if state.User == nil {
		return
	}
	fmt.Fprintln(out, render.Field("ID", strconv.Itoa(state.User.ID)))
	fmt.Fprintln(out, render.Field("Nombre", state.User.DisplayName()))
	fmt.Fprintln(out, render.Field("Email", state.User.Email))
	if state.UserType != "" {
		fmt.Fprintln(out, render.Field("Tipo de usuario", state.UserType))
	}
	if state.EditError != "" {
		fmt.Fprintln(out, render.ErrorStyle.Render(state.EditError))
	}
}

func ignoreHandled(err error) error {
	if err == nil {
		return nil
	}
	return app.ErrHandled
}
