package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/service"
)

var (
	userUsername string
	userEmail    string
	userRole     string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "User management commands",
	Long: `Commands for managing tracker accounts.

Accounts are created here rather than over HTTP. A user's role is fixed
at creation.

Examples:
  trackerctl user list
  trackerctl user create --username alice --email alice@example.com --role TESTER`,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		svc := service.NewUserService(repository.NewUserRepository(e.pg.PoolHandle()), nil, e.cfg.Auth.BcryptCost)
		users, err := svc.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		printUsers(cmd.OutOrStdout(), users)
		return nil
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long: `Create a new user. The password is prompted for so it never
lands in shell history.

Roles: ADMIN, TESTER, DEVELOPER`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := parseRole(userRole)
		if err != nil {
			return err
		}
		password, err := promptPassword(cmd.OutOrStdout(), "Enter password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword(cmd.OutOrStdout(), "Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password confirmation: %w", err)
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		svc := service.NewUserService(repository.NewUserRepository(e.pg.PoolHandle()), nil, e.cfg.Auth.BcryptCost)
		user, err := svc.CreateUser(cmd.Context(), service.UserCreateInput{
			Username: userUsername,
			Email:    userEmail,
			Password: password,
			Role:     role,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", user.Role, user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringVar(&userUsername, "username", "", "username for the new user (required)")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "email for the new user")
	userCreateCmd.Flags().StringVar(&userRole, "role", string(domain.RoleTester), "role: ADMIN, TESTER or DEVELOPER")
	_ = userCreateCmd.MarkFlagRequired("username")
}

// parseRole accepts a role name in any case.
func parseRole(value string) (domain.Role, error) {
	role := domain.Role(strings.ToUpper(strings.TrimSpace(value)))
	if !role.Valid() {
		return "", fmt.Errorf("invalid role %q: want ADMIN, TESTER or DEVELOPER", value)
	}
	return role, nil
}

func printUsers(w io.Writer, users []domain.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-20s  %-30s  %-10s  %s\n", "ID", "USERNAME", "EMAIL", "ROLE", "CREATED")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, u := range users {
		fmt.Fprintf(w, "%-36s  %-20s  %-30s  %-10s  %s\n",
			u.ID, u.Username, u.Email, u.Role, u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "\nTotal: %d user(s)\n", len(users))
}

func promptPassword(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
