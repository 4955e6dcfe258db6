package main

import (
	"log"

	"pagespeed-campaign/internal/bootstrap"
	"pagespeed-campaign/internal/shared/config"
	"pagespeed-campaign/internal/shared/server"
	"pagespeed-campaign/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer telemetry.Sync()

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{"addr": addr, "env": app.Config.Env})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
