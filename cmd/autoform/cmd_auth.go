package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Google sign-in used to create forms",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google (opens a browser)",
	Long: `Opens the Google consent page and waits for the redirect on the local
callback address. Only a short-lived access token is kept; when it expires
you are asked to consent again.`,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a usable token is stored",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE:  runAuthLogout,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	sess, _, err := openSession(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	fmt.Fprintln(cmd.ErrOrStderr(), "Opening browser for Google sign-in...")
	if err := sess.Authenticate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Signed in"))
	renderKV(cmd.OutOrStdout(), "Expires", sess.Expiry().Local().Format(time.RFC1123))
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	sess, store, err := openSession(cfg)
	if err != nil {
		return err
	}
	pairs := []string{"State", sess.State().String(), "Token file", store.Path()}
	if exp := sess.Expiry(); !exp.IsZero() {
		pairs = append(pairs, "Expires", exp.Local().Format(time.RFC1123))
	}
	renderKV(cmd.OutOrStdout(), pairs...)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	sess, _, err := openSession(cfg)
	if err != nil {
		return err
	}
	if err := sess.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}
