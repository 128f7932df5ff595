package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/domain"
	"github.com/vfg2006/ppc-optimizer/pkg/log"

	_ "time/tzdata"
)

// Códigos de saída do processo.
const (
	exitOK     = 0
	exitFatal  = 1
	exitConfig = 2
)

var (
	rulesFile string
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:           "optimizer",
	Short:         "Otimizador de campanhas Sponsored Products",
	Long:          `Executa passadas avulsas do otimizador de lances e campanhas, verifica credenciais e mantém o cache local.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Mostra a versão",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "optimizer version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "arquivo YAML de regras (sobrepõe RULES_FILE)")
	rootCmd.AddCommand(runCmd, checkOAuthCmd, cacheCmd, tokenCmd, versionCmd)
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logrus.WithError(err).Error("optimizer: encerrado com erro")
	}
	os.Exit(exitCode(err))
}

// exitCode traduz o erro do comando: configuração inválida sai com 2, demais erros com 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, domain.ErrConfig):
		return exitConfig
	default:
		return exitFatal
	}
}

// loadConfig carrega a configuração e aplica o arquivo de regras da linha de comando.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	log.Setup(cfg.App.LogLevel)

	if rulesFile != "" {
		rules, err := config.LoadRules(rulesFile, cfg.Rules)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}

	return cfg, nil
}
