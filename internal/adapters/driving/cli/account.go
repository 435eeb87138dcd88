package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	loginEmail string
	loginName  string
)

var errNoAccount = errors.New("account service not configured")

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a local session",
	Long: `Starts a local session so new conversations record who created them.

The session token is stored in the config file and is printed so it can be
used as a bearer token against 'sitenav serve'.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the local session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email address")
	loginCmd.Flags().StringVar(&loginName, "name", "", "display name")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errNoAccount
	}

	email, name := loginEmail, loginName
	if email == "" {
		reader := bufio.NewReader(cmd.InOrStdin())
		cmd.Print("Email: ")
		email = readLine(reader)
		if name == "" {
			cmd.Print("Name (optional): ")
			name = readLine(reader)
		}
	}

	token, err := accountService.Login(cmd.Context(), email, name)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Logged in as %s\n", email)
	cmd.Printf("Token: %s\n", token)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errNoAccount
	}

	if err := accountService.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	cmd.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	if accountService == nil {
		return errNoAccount
	}

	user, err := accountService.Current(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if user == nil {
		cmd.Println("Not logged in")
		return nil
	}

	cmd.Printf("%s <%s>\n", user.DisplayName(), user.Email)
	return nil
}
