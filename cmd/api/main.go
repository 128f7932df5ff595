package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ppc-optimizer/internal/api"
	"github.com/vfg2006/ppc-optimizer/internal/app"
	"github.com/vfg2006/ppc-optimizer/internal/config"
	"github.com/vfg2006/ppc-optimizer/internal/scheduler"
	"github.com/vfg2006/ppc-optimizer/internal/usecases/authenticating"
	"github.com/vfg2006/ppc-optimizer/pkg/log"

	_ "time/tzdata"
)

// Intervalo da renovação automática do token; o token da Amazon vale uma hora.
const tokenRefreshInterval = 45 * time.Minute

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao inicializar a aplicação")
	}
	defer application.Close()

	go application.TokenManager.StartAutoRefresh(ctx, tokenRefreshInterval)

	optimizerSyncService := scheduler.NewOptimizerSyncService(application.Optimizer, cfg)
	if application.RunRepo != nil {
		optimizerSyncService.WithRunRepository(application.RunRepo)
	}

	if err := optimizerSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Fatal("Erro ao iniciar o agendador do otimizador")
	}

	authenticator := authenticating.NewService(cfg)

	server, err := api.New(
		cfg,
		optimizerSyncService,
		application.Integrator,
		authenticator,
		application.Metrics.Handler(),
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}
