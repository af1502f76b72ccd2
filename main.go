package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg := LoadConfig()

	db, err := InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	defer db.Close()

	arts, err := LoadArtifacts(cfg.ArtifactDir)
	if err != nil {
		log.Fatalf("Failed to load model artifacts: %v", err)
	}
	log.Printf("Artifacts loaded: %d covariates, %d trees, imputer k=%d, cutoffs %v",
		len(arts.Covariates), len(arts.Model.Trees), arts.Imputer.K, arts.Cutoffs)

	StartMaintenanceScheduler(cfg, db)

	srv := NewServer(cfg, arts, db)
	go func() {
		log.Printf("Serving on %s", cfg.ListenAddr)
		if err := srv.Serve(); err != nil {
			log.Printf("HTTP server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
