package main

import (
	"context"

	"github.com/spf13/cobra"

	"inkflow/internal/models"
)

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Sign in as an existing user",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (checked only when auth.verify_passwords is set)")
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		if err := a.session.Login(ctx, args[0], password); err != nil {
			return err
		}
		return a.print(a.session.User())
	})
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signup [name] [email]",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(2),
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.RunE = a.runE(func(ctx context.Context, args []string) error {
		if err := a.session.Signup(ctx, args[0], args[1], password); err != nil {
			return err
		}
		return a.print(a.session.User())
	})
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.runE(func(ctx context.Context, _ []string) error {
		return a.session.Logout(ctx)
	})
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.runE(func(context.Context, []string) error {
		u, err := a.currentUser()
		if err != nil {
			return err
		}
		return a.print(u)
	})
	return cmd
}

func (a *app) currentUser() (*models.User, error) {
	u := a.session.User()
	if u == nil {
		return nil, models.ErrNotAuthenticated
	}
	return u, nil
}
