package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/topstepx-broker/src/eventservices"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Stream events from the node bridge to the log until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.NodeBridgeURL == "" {
			return fmt.Errorf("NODE_BRIDGE_URL not set")
		}

		return eventservices.NewBridgeClient(cfg.NodeBridgeURL).Listen(cmd.Context(), func(line string) {
			log.WithField("source", "bridge").Info(line)
		})
	},
}
