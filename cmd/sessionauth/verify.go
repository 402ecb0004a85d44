package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/sessionauth/keys"
	"github.com/jonwraymond/sessionauth/token"
)

type verifyOutput struct {
	Issuer    string    `json:"iss"`
	ID        string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	Expired   bool      `json:"expired"`
	App       token.App `json:"app"`
}

var verifyCmd = &cobra.Command{
	Use:   "verify [token]",
	Short: "Verify a token's signature and print its claims",
	Long: `Verify a token's signature and print its claims as JSON. The token is
read from the argument or from stdin. Revocation is not checked.

With --jwks-url the key is fetched from a running server instead of the
configured key files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readToken(cmd, args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var codec *token.Codec
		if url, _ := cmd.Flags().GetString("jwks-url"); url != "" {
			codec = token.NewVerifier(keys.NewJWKSProvider(keys.JWKSConfig{URL: url}))
		} else {
			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			codec = a.codec
		}

		claims, err := codec.Decode(ctx, raw)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(verifyOutput{
			Issuer:    claims.Issuer,
			ID:        claims.ID,
			IssuedAt:  claims.IssuedAt.UTC(),
			ExpiresAt: claims.ExpiresAt.UTC(),
			Expired:   claims.Expired(time.Now()),
			App:       claims.App,
		})
	},
}

func readToken(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", err
		}
		return "", errors.New("no token given")
	}
	return line, nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("jwks-url", "", "Verify against a remote JWKS endpoint")
}
