// Command mockapi serves an in-memory catalog API for local development.
// Generation jobs complete after a configurable number of status queries.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/catalog-console/console/internal/importer"
	"github.com/catalog-console/console/internal/interfaces"
	"github.com/catalog-console/console/internal/logging"
	"github.com/catalog-console/console/internal/mockapi"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Address to listen on")
	polls := flag.Int("polls", 3, "Status queries answered as processing before a job completes")
	seed := flag.String("seed", "", "Comma separated .csv or .json files loaded at startup")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logConfig := logging.DefaultConfig()
	logConfig.Component = "mockapi"
	if *debug {
		logConfig.Level = logging.DebugLevel
	}
	if err := logging.InitGlobalLogger(logConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	logger := logging.GetGlobalLogger()

	server := mockapi.New(mockapi.Options{PollsUntilDone: *polls, Logger: logger})
	if *seed != "" {
		count, err := seedProducts(server, *seed)
		if err != nil {
			logger.Error("Failed to seed products", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("Seeded products", "count", count)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("Mock catalog API listening", "addr", *addr, "polls_until_done", *polls)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func seedProducts(server *mockapi.Server, files string) (int, error) {
	count := 0
	createdAt := time.Now().UTC().Format(time.RFC3339)
	for _, path := range strings.Split(files, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		parsed, err := importer.ParseFile(path)
		if err != nil {
			return count, err
		}
		for _, p := range parsed {
			server.Seed(interfaces.Product{
				ProductName:    p.ProductName,
				Price:          p.Price,
				KeyFeatures:    p.KeyFeatures,
				TechnicalSpecs: p.TechnicalSpecs,
				Description:    p.Description,
				TargetAudience: p.TargetAudience,
				CreatedAt:      createdAt,
			})
			count++
		}
	}
	return count, nil
}
