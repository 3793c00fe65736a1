package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/w12190/message.ly/cmd/cli/config"
	"github.com/w12190/message.ly/cmd/cli/output"
)

const tokenFileName = ".messagely_token"

// ==========================
// CLI Command Init
// ==========================

// InitUsers registers the users command group on the root command.
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts and authentication",
		Long: `Register, login, or list message.ly users.
Stores the JWT token locally for future commands.`,
	}

	usersCmd.AddCommand(
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		listUsersCmd(),
	)

	rootCmd.AddCommand(usersCmd)
}

// ==========================
// Register
// ==========================
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var username, password, firstName, lastName, phone string
			fmt.Print("Username: ")
			fmt.Scanln(&username)
			fmt.Print("Password: ")
			fmt.Scanln(&password)
			fmt.Print("First name: ")
			fmt.Scanln(&firstName)
			fmt.Print("Last name: ")
			fmt.Scanln(&lastName)
			fmt.Print("Phone: ")
			fmt.Scanln(&phone)

			payload := map[string]string{
				"username":   username,
				"password":   password,
				"first_name": firstName,
				"last_name":  lastName,
				"phone":      phone,
			}
			body, _ := json.Marshal(payload)

			resp, err := http.Post(config.APIURL()+"/auth/register", "application/json", bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusCreated {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			fmt.Println("Account registered! You can now login.")
			return nil
		},
	}
}

// ==========================
// Login
// ==========================
func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Login and store a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var username, password string
			fmt.Print("Username: ")
			fmt.Scanln(&username)
			fmt.Print("Password: ")
			fmt.Scanln(&password)

			payload := map[string]string{
				"username": username,
				"password": password,
			}
			body, _ := json.Marshal(payload)

			resp, err := http.Post(config.APIURL()+"/auth/login", "application/json", bytes.NewBuffer(body))
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return fmt.Errorf("API error: %s", string(b))
			}

			var result map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return err
			}

			token, ok := result["token"]
			if !ok {
				return fmt.Errorf("token not returned by API")
			}

			if err := saveToken(token); err != nil {
				return err
			}

			fmt.Println("Login successful! Session token saved locally.")
			return nil
		},
	}
}

// ==========================
// Logout
// ==========================
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally saved session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := tokenPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("No user logged in.")
				return nil
			}

			if err := os.Remove(path); err != nil {
				return err
			}

			fmt.Println("Logged out successfully.")
			return nil
		},
	}
}

// ==========================
// List
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			req, _ := http.NewRequest("GET", config.APIURL()+"/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out struct {
				Users []struct {
					Username  string `json:"username"`
					FirstName string `json:"first_name"`
					LastName  string `json:"last_name"`
				} `json:"users"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				fmt.Println(err)
				return
			}

			if asJSON {
				b, _ := json.MarshalIndent(out.Users, "", "  ")
				fmt.Println(string(b))
				return
			}

			rows := make([][]interface{}, 0, len(out.Users))
			for _, u := range out.Users {
				rows = append(rows, []interface{}{u.Username, u.FirstName, u.LastName})
			}
			output.RenderTable([]string{"Username", "First Name", "Last Name"}, rows)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON instead of a table")
	return cmd
}

// ==========================
// Token Storage Helpers
// ==========================
func saveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

// ReadToken loads the locally saved session token.
func ReadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}
