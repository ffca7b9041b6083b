package main

import (
	"net/http"
	"strconv"
	"time"

	config "github.com/drtz/PiThermServer/internal/config/thermserver"
	"github.com/drtz/PiThermServer/internal/obs"
	"github.com/drtz/PiThermServer/internal/services/api"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func buildHTTPServer(cfg *config.Config, l *zap.Logger, srv *api.Server) *http.Server {
	handler := obs.Chain(srv.Routes(),
		obs.RequestID,
		obs.Logging(l),
		obs.Recovery(l),
	)

	return &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.HTTPPort),
		Handler:           otelhttp.NewHandler(handler, "thermserver.http"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}
