package main

import (
	"net/http"

	"orcamentos/internal/config"
	"orcamentos/internal/service/data"
	"orcamentos/internal/service/mail"
	"orcamentos/internal/service/web"
	pkg_config "orcamentos/pkg/config"
	"orcamentos/pkg/masker"
	"orcamentos/pkg/zaplogger"

	"go.uber.org/zap"
)

func main() {
	logger, err := zaplogger.New()
	if err != nil {
		panic(err)
	}

	cfg := config.Config{}
	if err := pkg_config.Load(".env", &cfg); err != nil {
		logger.Fatal("error loading configs", zap.Error(err))
	}

	if err := masker.LogConfigs(logger, &cfg); err != nil {
		logger.Fatal("error logging configs", zap.Error(err))
	}

	mailer := mail.New(cfg.SMTPConfig, logger)
	if !mailer.Configured() {
		logger.Warn("smtp sender not configured, password recovery disabled")
	}

	manager, err := data.New(cfg, mailer, logger)
	if err != nil {
		logger.Fatal("error creating data manager", zap.Error(err))
	}
	if manager.Remote() {
		logger.Info("running against google sheets/drive")
	} else {
		logger.Warn("running against the local fallback store",
			zap.String("data_dir", cfg.LocalConfig.DataDir))
	}

	server := web.NewServer(manager, cfg.ServerConfig.DesignerKey, logger)

	logger.Info("http server listening", zap.String("addr", cfg.ServerConfig.Addr))
	if err := http.ListenAndServe(cfg.ServerConfig.Addr, server.Routes()); err != nil {
		logger.Fatal("error running http server", zap.Error(err))
	}
}
