package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonwraymond/sessionauth/auth"
	"github.com/jonwraymond/sessionauth/directory"
)

const PasswordKey = "password"

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Add a user to a directory file",
	Long: `Add a user to the YAML directory file, creating the file if needed.
The password is taken from --password or SESSIONAUTH_PASSWORD and stored as a
pbkdf2-sha256 hash. With --hash-only the hash is printed and no file is touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := viper.GetString(PasswordKey)
		if password == "" {
			return errors.New("a password is required (--password or SESSIONAUTH_PASSWORD)")
		}

		if hashOnly, _ := cmd.Flags().GetBool("hash-only"); hashOnly {
			h, err := directory.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), h)
			return err
		}

		path, _ := cmd.Flags().GetString("file")
		name, _ := cmd.Flags().GetString("name")
		fullName, _ := cmd.Flags().GetString("full-name")
		roleName, _ := cmd.Flags().GetString("role")
		links, _ := cmd.Flags().GetInt64Slice("link")

		role, ok := auth.DefaultRoles().Lookup(roleName)
		if !ok {
			return fmt.Errorf("%w: %q", auth.ErrUnknownRole, roleName)
		}

		dir, err := directory.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			dir, err = directory.NewMemory(directory.File{})
		}
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		rec, err := dir.Add(ctx, name, fullName, role, password)
		if err != nil {
			return err
		}
		for _, other := range links {
			switch role {
			case auth.RolePatient:
				err = dir.Link(ctx, other, rec.ID)
			case auth.RoleClinician:
				err = dir.Link(ctx, rec.ID, other)
			default:
				err = fmt.Errorf("only patients and clinicians can be linked, %s is a %s", name, role)
			}
			if err != nil {
				return err
			}
		}

		if err := dir.Save(path); err != nil {
			return err
		}
		log.Info().Int64("id", rec.ID).Str("name", rec.Name).Str("role", role.String()).Str("file", path).Msg("user added")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(passwdCmd)

	passwdCmd.Flags().String("file", "users.yaml", "Directory file")
	passwdCmd.Flags().String("name", "", "User name")
	passwdCmd.Flags().String("full-name", "", "Full name")
	passwdCmd.Flags().String("role", "patient", "Role (patient, clinician, caregiver)")
	passwdCmd.Flags().Int64Slice("link", nil, "Ids of clinicians serving this patient, or patients served by this clinician")
	passwdCmd.Flags().Bool("hash-only", false, "Print the password hash and exit")
	passwdCmd.Flags().String("password", "", "Password")
	_ = viper.BindPFlag(PasswordKey, passwdCmd.Flags().Lookup("password"))
}
