// @title         enscheck API
// @version       0.1.0
// @description   Name hashing and synchronous registration checks against the ENS registry
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"enscheck/internal/modkit/repokit"
	"enscheck/internal/platform/config"
	"enscheck/internal/platform/logger"
	phttp "enscheck/internal/platform/net/http"
	"enscheck/internal/platform/store"

	"enscheck/internal/services/api"
)

func main() {
	opt := logger.FromEnv()
	if opt.Service == "" {
		opt.Service = "enscheck-api"
	}
	logger.Init(opt)

	if err := run(); err != nil {
		logger.Get().Fatal().Err(err).Msg("enscheck-api stopped")
	}
}

func run() error {
	// modules read CORE_RESOLVE_* and CORE_ENS_*; HTTP knobs live under CORE_API_*
	root := config.New()
	l := logger.Get()

	st, err := store.Open(context.Background(), store.FromEnv(root, "enscheck", "api"), store.WithLogger(*l))
	if err != nil {
		return err
	}
	if st.Configured() {
		repokit.MustGuard(context.Background(), st)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := phttp.NewServer(root.Prefix("CORE_API_"))

	opt := api.OptionsFromConfig(root)
	opt.Store, opt.Logger = st, l
	api.Mount(srv.Router(), opt)

	return srv.Run(ctx)
}
