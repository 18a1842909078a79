package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/geocoder89/siteis/internal/domain/user"
	"github.com/geocoder89/siteis/internal/observability"
	"github.com/geocoder89/siteis/internal/repo/jsonfile"
	"github.com/geocoder89/siteis/internal/security"
	"github.com/spf13/cobra"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and create accounts",
	}
	cmd.AddCommand(newUsersListCmd(opts), newUsersAddCmd(opts))
	return cmd
}

func newUsersListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every registered user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.config()
			repo := jsonfile.NewUsersRepo(cfg.UsersFile, jsonfile.WithLogger(observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.Env)))

			users, err := repo.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read users: %w", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tCREATED")
			for _, u := range users {
				p := u.Public()
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, p.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func newUsersAddCmd(opts *rootOptions) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Long: `Create an account with the same rules as POST /register.

Without --password the password is read from the first line of stdin,
which keeps it out of shell history:

  echo 's3cret' | siteisctl users add --name Ana --email ana@x.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			name, email = strings.TrimSpace(name), strings.TrimSpace(email)
			if name == "" || email == "" || strings.TrimSpace(password) == "" {
				return errors.New("name, email and password are required")
			}

			hash, err := security.HashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			cfg := opts.config()
			repo := jsonfile.NewUsersRepo(cfg.UsersFile, jsonfile.WithLogger(observability.NewLoggerTo(cmd.ErrOrStderr(), cfg.Env)))

			u, err := repo.Create(cmd.Context(), name, email, hash)
			if err != nil {
				if errors.Is(err, user.ErrEmailAlreadyUsed) {
					return fmt.Errorf("%s is already registered", user.NormalizeEmail(email))
				}
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
