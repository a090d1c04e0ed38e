package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/topstepx-broker/src/broker"
	"github.com/jiaming2012/topstepx-broker/src/logger"
	"github.com/jiaming2012/topstepx-broker/src/utils"
)

var rootCmd = &cobra.Command{
	Use:           "broker",
	Short:         "Operate the TopstepX session broker from the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func loadConfig() (*utils.Config, error) {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setup loads config and opens the shared store. The caller closes the broker.
func setup() (*broker.Broker, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	return broker.New(context.Background(), cfg)
}

func init() {
	rootCmd.AddCommand(loginCmd, validateCmd, accountsCmd, bridgeCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Errorf("Error: %v", err)
		cancel()
		os.Exit(1)
	}
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
