package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vfg2006/ppc-optimizer/infrastructure/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Comandos do cache local de respostas",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove todas as entradas do cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("erro ao abrir o cache %s: %w", cfg.Cache.Path, err)
		}
		defer c.Close()

		removed, err := c.Purge()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d entradas removidas de %s\n", removed, cfg.Cache.Path)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
}
