package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/config"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a token for a subject without credentials",
	Long: `Issue a token directly, bypassing the directory. The token is registered
in the configured revocation store, so with the redis backend it supersedes
the subject's current session on every server sharing the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetInt64("subject")
		name, _ := cmd.Flags().GetString("name")
		roleName, _ := cmd.Flags().GetString("role")

		role, ok := auth.DefaultRoles().Lookup(roleName)
		if !ok {
			return fmt.Errorf("%w: %q", auth.ErrUnknownRole, roleName)
		}
		if subject <= 0 {
			return fmt.Errorf("--subject must be positive")
		}

		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.openStore(ctx); err != nil {
			return err
		}
		if a.cfg.Store.Backend == config.BackendMemory {
			log.Warn().Msg("memory store: the token is not known to any running server")
		}

		svc, err := a.newService(nil)
		if err != nil {
			return err
		}
		raw, err := svc.Issue(ctx, subject, name, role)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), raw)
		return err
	},
}

func init() {
	rootCmd.AddCommand(issueCmd)

	issueCmd.Flags().Int64("subject", 0, "Subject id")
	issueCmd.Flags().String("name", "", "Subject display name")
	issueCmd.Flags().String("role", "patient", "Role (patient, clinician, caregiver)")
	_ = issueCmd.MarkFlagRequired("subject")
}
