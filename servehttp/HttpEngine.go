package servehttp

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// StartHTTPServer serves the handler on SERVICE_PORT (default 8080) and blocks
// until SIGINT or SIGTERM, then drains in-flight requests before returning.
func StartHTTPServer(handler http.Handler) {
	port := os.Getenv("SERVICE_PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Infoln("shutdown signal received, draining requests")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("http server shutdown failed: %v", err)
	}
	logrus.Infoln("http server shutdown complete")
}
