package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bizrecords/internal/middleware"
	"bizrecords/internal/service"
)

var (
	tokenUser string
	tokenRole string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API access token signed with JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch tokenRole {
		case middleware.RoleViewer, middleware.RoleEditor, middleware.RoleAdmin:
		default:
			return fmt.Errorf("unknown role %q", tokenRole)
		}

		token, err := service.NewTokenVerifier(cfg.JWTSecret).IssueToken(tokenUser, tokenUser, tokenRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenUser, "user", "automation", "Subject and username of the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", middleware.RoleEditor, "viewer, editor or admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
}
