package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	dbPath := flag.String("db", "stronghold.db", "path to the SQLite database ('' disables accounts and stats)")
	clientDir := flag.String("client", "", "path to client directory (default: ../client)")
	seed := flag.Int64("seed", 0, "fixed map seed for every game (0 derives from the lobby id)")
	flag.Parse()

	initLogger()

	if *clientDir == "" {
		exe, _ := os.Executable()
		*clientDir = filepath.Join(filepath.Dir(exe), "..", "client")
		// Fallback for development
		if _, err := os.Stat(*clientDir); os.IsNotExist(err) {
			*clientDir = "../client"
		}
	}

	var db *DB
	var analytics *Analytics
	if *dbPath != "" {
		var err error
		db, err = OpenDB(*dbPath)
		if err != nil {
			logger.WithError(err).Fatal("open database")
		}
		defer db.Close()
		analytics = NewAnalytics(db)
		defer analytics.Stop()
	}

	config := DefaultGameConfig()
	config.Seed = *seed

	hub := NewHub(db, analytics, config)
	go hub.Run()

	mux := SetupRoutes(hub, *clientDir)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		logger.WithField("addr", *addr).Info("server starting")
		logger.WithField("dir", *clientDir).Info("serving client files")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.WithError(err).Fatal("listen and serve")
		}
	}()

	<-stop
	logger.Info("shutting down")
	server.Close()
}
