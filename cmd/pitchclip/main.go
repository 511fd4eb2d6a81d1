// Command pitchclip serves the match loading, frame browsing, and clip
// rendering API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/trackside-data/pitchclip/internal/api"
	"github.com/trackside-data/pitchclip/internal/fetch"
	"github.com/trackside-data/pitchclip/internal/render"
	"github.com/trackside-data/pitchclip/internal/store"
	"github.com/trackside-data/pitchclip/internal/units"
	"github.com/trackside-data/pitchclip/internal/version"
)

var (
	listen       = flag.String("listen", ":8080", "Listen address")
	cacheDir     = flag.String("cache-dir", "data/cache", "Directory for downloaded tracking data")
	dbFile       = flag.String("db", "pitchclip.db", "SQLite database path")
	displayUnits = flag.String("units", units.MPS, "Speed units for stats (mps, kph, mph)")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if !units.IsValid(*displayUnits) {
		log.Fatalf("Invalid units %q, want one of: %s", *displayUnits, units.ValidUnitsString())
	}

	db, err := store.Open(*dbFile)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	loader := fetch.NewLoader(nil, nil, *cacheDir)

	server, err := api.NewServer(loader, db, render.DefaultConfig(), *displayUnits)
	if err != nil {
		log.Fatalf("Failed to create API server: %v", err)
	}

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// admin debugging routes: tailsql console over the live database
		if err := db.AttachAdminRoutes(mux); err != nil {
			log.Printf("failed to mount admin routes: %v", err)
		}

		mux.Handle("/api/", server.ServeMux())

		httpServer := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("pitchclip %s listening on %s", version.Version, *listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
