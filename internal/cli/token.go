package cli

import (
	"fmt"
	"time"

	"github.com/geocoder89/siteis/internal/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect session tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <token>",
		Short: "Check a siteis_token cookie value",
		Long: `Verify a session token against the configured secret and print its
claims. Expired, tampered and malformed tokens print "invalid" and exit
non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()

			claims, err := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL).Verify(args[0])
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "valid")
			fmt.Fprintf(out, "  user id:    %d\n", claims.UserID)
			fmt.Fprintf(out, "  email:      %s\n", claims.Email)
			if claims.IssuedAt != nil {
				fmt.Fprintf(out, "  issued at:  %s\n", claims.IssuedAt.Time.UTC().Format(time.RFC3339))
			}
			fmt.Fprintf(out, "  expires at: %s\n", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
			return nil
		},
	})

	return cmd
}
