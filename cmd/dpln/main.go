// Command dpln indexes Dofus dungeon and quest guides and retrieves the
// sections that answer a question.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/dpln-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/dpln-rag/internal/app"
	"github.com/custodia-labs/dpln-rag/internal/core/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	cli.SetSettingsService(settingsService)

	cli.SetServiceFactory(func(ctx context.Context) (*cli.Services, func() error, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, nil, fmt.Errorf("loading settings: %w", err)
		}
		c, err := app.New(ctx, *settings, app.Options{})
		if err != nil {
			return nil, nil, err
		}
		return &cli.Services{
			Retrieval: c.Retrieval,
			Resolver:  c.Resolver,
			Ingest:    c.Ingest,
			Catalog:   c.Catalog,
			Answer:    c.Answer,
			Metrics:   c.Metrics.Handler(),
		}, c.Close, nil
	})

	return cli.Execute(ctx)
}
