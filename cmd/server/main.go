package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridchat/internal/server"
)

func main() {
	config := server.NewConfigFromEnv()
	server.SetConfig(config)

	if err := server.InitLogger(config.LogFile); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	server.StartSim()

	mux := server.SetupRoutes()
	httpServer := server.CreateServer(config.Port, mux)

	go func() {
		if err := server.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// Graceful exit on Ctrl+C or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("shutting down...")

	if err := server.ShutdownServer(httpServer, 10*time.Second); err != nil {
		server.Log.Warnf("http shutdown: %v", err)
	}
	if err := server.GetSim().Shutdown(5 * time.Second); err != nil {
		server.Log.Warnf("sim shutdown: %v", err)
	}
}
