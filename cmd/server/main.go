/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the UoM conversion engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Optionally seed the demo catalog
  4. Build the in-memory configuration snapshot
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: uom.db)
           Use ":memory:" for an in-memory database
  -seed    Load the demo catalog and converters on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/uom.db"

  # Run with an in-memory database and demo data
  ./server -db=":memory:" -seed

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/uom-engine/api"
	"github.com/warp/uom-engine/factory"
	"github.com/warp/uom-engine/store/sqlite"
	"github.com/warp/uom-engine/uom"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "uom.db", "SQLite database path")
	seed := flag.Bool("seed", false, "load demo catalog and converters on startup")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if *seed {
		if err := seedDemoData(ctx, store); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Println("Demo catalog and converters loaded")
	}

	// Initialize handler and warm the configuration snapshot
	handler := api.NewHandler(store)
	if err := handler.Reload(ctx); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedDemoData writes the default catalog and demo converter definitions.
// Existing converters with the same names are left as-is.
func seedDemoData(ctx context.Context, store *sqlite.Store) error {
	for _, u := range uom.DefaultCatalog().Units() {
		rec := sqlite.UnitRecord{
			ID:       string(u.ID),
			Name:     u.Name,
			Category: string(u.Category),
			Factor:   u.Factor,
		}
		if err := store.SaveUnit(ctx, rec); err != nil {
			return err
		}
	}

	for _, def := range []string{factory.FlourToEggsJSON(), factory.PackagingJSON()} {
		var cj factory.ConverterJSON
		if err := json.Unmarshal([]byte(def), &cj); err != nil {
			return err
		}
		if existing, err := store.GetConverter(ctx, cj.Name); err != nil {
			return err
		} else if existing != nil {
			continue
		}
		rec := sqlite.ConverterRecord{
			Name:            cj.Name,
			SourceUnit:      cj.SourceUnit,
			DestinationUnit: cj.DestinationUnit,
			Rounding:        cj.Rounding,
			Description:     cj.Description,
		}
		for _, l := range cj.Lines {
			rec.Lines = append(rec.Lines, sqlite.LineRecord{
				MaxQuantity: l.MaxQuantity,
				Coefficient: l.Coefficient,
				Constant:    l.Constant,
			})
		}
		if err := store.CreateConverter(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
