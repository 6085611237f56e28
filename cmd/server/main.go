/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the area reconciliation service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite run store
  3. Select the geometry backend
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: runs.db)
           Use ":memory:" for an in-memory database
  -geom    Geometry backend: "geos" or "memory" (default: geos).
           The memory backend handles only axis-aligned rectangle
           envelopes; it exists for development without libgeos.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/runs.db"

  # Development without libgeos
  ./server -db=":memory:" -geom=memory

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alkis/sfl-engine/api"
	"github.com/alkis/sfl-engine/geom"
	"github.com/alkis/sfl-engine/geom/geos"
	"github.com/alkis/sfl-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "runs.db", "SQLite database path")
	geomBackend := flag.String("geom", "geos", "geometry backend: geos or memory")
	flag.Parse()

	st, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()

	var provider geom.ProviderCodec
	switch *geomBackend {
	case "geos":
		provider = geos.NewProvider()
	case "memory":
		provider = geom.NewMemory()
	default:
		log.Fatalf("Unknown geometry backend %q (want geos or memory)", *geomBackend)
	}

	handler := api.NewHandler(st, provider)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d (geometry backend: %s)", *port, *geomBackend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
