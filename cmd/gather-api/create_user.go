package main

import (
	"fmt"

	"github.com/dimitrije/gather-api/internal/services"
	"github.com/spf13/cobra"
)

var (
	createUserEmail string
	createUserName  string
	createUserToken bool
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Provision a user account",
	Long: `Provision a user account directly in the database. An existing account
with the same email is left untouched. With --token an access token for the
user is printed as well.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if createUserEmail == "" || createUserName == "" {
			return fmt.Errorf("--email and --name are required")
		}

		cfg, db, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		user, created, err := services.NewUserService(db).Provision(cmd.Context(), createUserEmail, createUserName)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s <%s>\n", user.ID, user.Email)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "user %s <%s> already exists\n", user.ID, user.Email)
		}

		if createUserToken {
			jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessExpiry)
			token, err := jwtService.GenerateAccessToken(user.ID, user.Email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
		}
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserEmail, "email", "", "email address of the new user")
	createUserCmd.Flags().StringVar(&createUserName, "name", "", "display name of the new user")
	createUserCmd.Flags().BoolVar(&createUserToken, "token", false, "print an access token for the new user")
}
