package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"inpcalc/internal/config"
	"inpcalc/internal/infrastructure"
	"inpcalc/internal/services"
	"inpcalc/pkg/contracts"
)

type commandContext struct {
	configFlag  string
	baseDirFlag string

	configOnce sync.Once
	config     *config.Config
	paths      *config.Paths
	configErr  error

	runtimeOnce sync.Once
	logger      *slog.Logger
	otel        *infrastructure.OTelProviders
	runtimeErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if dir := strings.TrimSpace(c.baseDirFlag); dir != "" {
			cfg.Paths.BaseDir = dir
		}
		paths, err := config.GetPaths(cfg)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.paths = paths
	})
	return c.config, c.configErr
}

// ensureRuntime starts logging and telemetry once per process
func (c *commandContext) ensureRuntime() (*slog.Logger, error) {
	c.runtimeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.runtimeErr = err
			return
		}

		logCfg := cfg.Logging
		logCfg.FilePath = c.paths.LogFile
		logger, err := infrastructure.InitializeLogger(logCfg)
		if err != nil {
			c.runtimeErr = err
			return
		}
		c.logger = logger

		c.otel, err = infrastructure.InitializeOTel(
			infrastructure.OTelConfigFrom(cfg.Telemetry, contracts.Version), logger)
		if err != nil {
			c.runtimeErr = err
		}
	})
	return c.logger, c.runtimeErr
}

// withService runs fn against a calculation service built for this command
func (c *commandContext) withService(cmd *cobra.Command, fn func(*services.CalculationService) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureRuntime()
	if err != nil {
		return err
	}

	svc, err := services.NewCalculationService(cmd.Context(), cfg, services.Options{
		Logger: logger,
		OTel:   c.otel,
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	return fn(svc)
}

func (c *commandContext) shutdown(ctx context.Context) error {
	if c.otel == nil {
		return nil
	}
	err := c.otel.Shutdown(context.WithoutCancel(ctx))
	c.otel = nil
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
