package main

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/vfg2006/ppc-optimizer/internal/app"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var checkOAuthCmd = &cobra.Command{
	Use:   "check-oauth",
	Short: "Troca o refresh token e lista os perfis acessíveis",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		application, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer application.Close()

		check, err := application.Integrator.CheckOAuth(ctx)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(check, "", "  ")
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(out, '\n'))
		return err
	},
}
