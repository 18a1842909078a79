package cli

import (
	"github.com/geocoder89/siteis/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

type rootOptions struct {
	usersFile string
	jwtSecret string
}

// config resolves the environment, with command-line flags taking priority.
func (o *rootOptions) config() config.Config {
	cfg := config.Load()
	if o.usersFile != "" {
		cfg.UsersFile = o.usersFile
	}
	if o.jwtSecret != "" {
		cfg.JWTSecret = o.jwtSecret
	}
	return cfg
}

// NewRootCmd builds the siteisctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "siteisctl",
		Short: "Administer a siteis installation",
		Long: `siteisctl works on the same users file and JWT secret as the server.
Settings come from the environment (and .env), the same way the server
reads them; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	root.SetVersionTemplate("siteisctl version {{.Version}}\n")

	root.PersistentFlags().StringVar(&opts.usersFile, "users-file", "", "Users JSON file (default $USERS_FILE or data/users.json)")
	root.PersistentFlags().StringVar(&opts.jwtSecret, "jwt-secret", "", "Token secret (default $JWT_SECRET)")

	root.AddCommand(newUsersCmd(opts), newTokenCmd(opts))

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
