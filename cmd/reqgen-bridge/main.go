// Command reqgen-bridge serves the ReqGen API in front of a configured AI
// inference backend, speaking whichever protocol the backend requires.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prajwal-kadam12/ReqGen/backend"
	"github.com/prajwal-kadam12/ReqGen/bridge"
	"github.com/prajwal-kadam12/ReqGen/config"
	"github.com/prajwal-kadam12/ReqGen/logger"
	"github.com/prajwal-kadam12/ReqGen/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging, "reqgen-bridge")

	// Resolved exactly once; every adapter call receives this descriptor.
	desc := backend.Resolve(cfg.Endpoint)
	log.Info().
		Str(logger.FieldEndpoint, desc.BaseURL).
		Str(logger.FieldMode, desc.Mode.String()).
		Msg("backend resolved")

	b := bridge.New(desc,
		bridge.WithLogger(log),
		bridge.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	)

	srv := server.New(b, log)
	if err := srv.Run(cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
