// Package cli implements the dpln command line: retrieval, ingestion,
// catalog management, settings and the MCP server.
package cli

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
	"github.com/custodia-labs/dpln-rag/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var verbose bool

// Services holds the driving ports behind the commands.
type Services struct {
	Retrieval driving.RetrievalService
	Resolver  driving.SubjectResolver
	Ingest    driving.IngestService
	Catalog   driving.CatalogService
	Answer    driving.AnswerService

	// Metrics is served at /metrics by `mcp serve --port`.
	Metrics http.Handler
}

// ServiceFactory builds Services on first use. The returned func releases them.
type ServiceFactory func(ctx context.Context) (*Services, func() error, error)

var (
	retrievalService driving.RetrievalService
	resolverService  driving.SubjectResolver
	ingestService    driving.IngestService
	catalogService   driving.CatalogService
	answerService    driving.AnswerService
	metricsHandler   http.Handler
	settingsService  driving.SettingsService

	serviceFactory ServiceFactory
	servicesOnce   sync.Once
	servicesErr    error
	servicesClose  func() error
)

var rootCmd = &cobra.Command{
	Use:   "dpln",
	Short: "Dofus dungeon and quest guide retrieval",
	Long: `dpln indexes dungeon and quest guides and retrieves the sections
that answer a question, optionally scoped to a named dungeon or quest.

Subject names are matched to the known titles with a similarity ratio,
so "manoire de katrepa" finds "Manoir de Katrapat".`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the driving ports directly.
func SetServices(s *Services) {
	retrievalService = s.Retrieval
	resolverService = s.Resolver
	ingestService = s.Ingest
	catalogService = s.Catalog
	answerService = s.Answer
	metricsHandler = s.Metrics
}

// SetServiceFactory defers service construction until a command needs it,
// so commands like version and settings never open a store.
func SetServiceFactory(f ServiceFactory) {
	serviceFactory = f
}

// SetSettingsService sets the settings port.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// ensureServices runs the factory once. Injected services take precedence.
func ensureServices(ctx context.Context) error {
	if retrievalService != nil || serviceFactory == nil {
		return nil
	}
	servicesOnce.Do(func() {
		s, closeFn, err := serviceFactory(ctx)
		if err != nil {
			servicesErr = err
			return
		}
		SetServices(s)
		servicesClose = closeFn
	})
	return servicesErr
}

// Execute runs the root command. It loads .env first so provider API keys
// can come from the environment.
func Execute(ctx context.Context) error {
	_ = godotenv.Load()
	defer logger.Sync()

	err := rootCmd.ExecuteContext(ctx)
	if servicesClose != nil {
		err = errors.Join(err, servicesClose())
	}
	return err
}
