package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vfg2006/ppc-optimizer/internal/app"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/optimizing"
)

var runFlags struct {
	profiles []string
	dryRun   bool
	features []string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Executa uma passada do otimizador",
	Long: `Executa uma passada para cada perfil informado (ou AMAZON_PROFILE_IDS).
Sai com 0 quando as execuções terminam, mesmo com falhas individuais de itens;
1 em erro fatal (credenciais rejeitadas) e 2 em configuração inválida.`,
	RunE: runOptimizer,
}

func init() {
	runCmd.Flags().StringSliceVarP(&runFlags.profiles, "profile", "p", nil, "perfis de anúncios (padrão: AMAZON_PROFILE_IDS)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "avalia e audita sem enviar alterações")
	runCmd.Flags().StringSliceVar(&runFlags.features, "features", nil, "subconjunto de bids,campaigns,keywords,negatives")
}

func runOptimizer(cmd *cobra.Command, args []string) error {
	if _, err := domain.ParseFeatures(runFlags.features); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfig, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	profiles := runFlags.profiles
	if len(profiles) == 0 {
		profiles = cfg.Amazon.ProfileIDs
	}
	if len(profiles) == 0 {
		return fmt.Errorf("%w: informe --profile ou AMAZON_PROFILE_IDS", domain.ErrConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	out := cmd.OutOrStdout()
	var runErr error
	for _, profileID := range profiles {
		run, err := application.Optimizer.Run(ctx, optimizing.RunRequest{
			ProfileID: profileID,
			Trigger:   domain.TriggerManual,
			DryRun:    runFlags.dryRun,
			Features:  runFlags.features,
		})
		if run != nil {
			fmt.Fprintln(out, run.Summary())
		}
		if err != nil {
			if domain.IsFatal(err) {
				// Credenciais rejeitadas valem para todos os perfis.
				return err
			}
			runErr = errors.Join(runErr, err)
		}
		if ctx.Err() != nil {
			break
		}
	}

	return runErr
}
