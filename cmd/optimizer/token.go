package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/authenticating"
)

var tokenFlags struct {
	subject string
	role    string
	ttl     time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Emite um token de serviço para a API de disparo",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		token, err := authenticating.NewService(cfg).GenerateToken(tokenFlags.subject, tokenFlags.role, tokenFlags.ttl)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrConfig, err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.subject, "subject", "ops", "identificação de quem usa o token")
	tokenCmd.Flags().StringVar(&tokenFlags.role, "role", domain.RoleOperator, "operator ou viewer")
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 30*24*time.Hour, "validade do token")
}
