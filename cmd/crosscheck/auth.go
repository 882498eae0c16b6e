package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/crosscheck/internal/cli"
	"github.com/Veraticus/crosscheck/internal/config"
	"github.com/Veraticus/crosscheck/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command opens your browser, waits for the Google redirect on a local
port and stores the token in ~/.config/crosscheck/sheets-token.json. Later
report runs pick the refresh token up from there.

Not needed when sheets.service_account_path is configured.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().Int("port", sheets.DefaultCallbackPort, "local port for the OAuth2 redirect")
	cmd.Flags().Bool("force", false, "ignore any stored token and authenticate again")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")

	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
	}

	port, _ := cmd.Flags().GetInt("port")
	force, _ := cmd.Flags().GetBool("force")
	tokenFile := config.TokenPath()

	oauthConfig := sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackPort: port,
	}

	slog.Info("starting Google Sheets authentication", "token_file", tokenFile)

	var err error
	if force {
		_, err = sheets.AuthenticateOAuth2Interactive(ctx, oauthConfig, slog.Default())
	} else {
		_, err = sheets.GetOrCreateToken(ctx, oauthConfig, slog.Default())
	}
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authentication complete"))
	return nil
}
