package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
	"github.com/custodia-labs/dpln-rag/internal/core/ports/driving"
)

type mockRetrievalService struct {
	result domain.Result
	err    error

	gotPartition string
	gotQuery     string
	gotSubject   string
}

func (m *mockRetrievalService) Retrieve(_ context.Context, partition, query, subject string) (domain.Result, error) {
	m.gotPartition = partition
	m.gotQuery = query
	m.gotSubject = subject
	return m.result, m.err
}

type mockResolver struct {
	resolution domain.Resolution
	err        error
}

func (m *mockResolver) Resolve(_ context.Context, _ domain.Partition, subject string) (domain.Resolution, error) {
	res := m.resolution
	res.Subject = subject
	return res, m.err
}

type mockIngestService struct {
	stats *domain.IngestStats
	err   error

	gotPartition domain.Partition
	gotPaths     []string
	gotOpts      driving.IngestOptions
}

func (m *mockIngestService) IngestFile(_ context.Context, _ domain.Partition, _ string) (int, error) {
	return 1, nil
}

func (m *mockIngestService) IngestPaths(
	_ context.Context, partition domain.Partition, paths []string, opts driving.IngestOptions,
) (*domain.IngestStats, error) {
	m.gotPartition = partition
	m.gotPaths = paths
	m.gotOpts = opts
	return m.stats, m.err
}

func (m *mockIngestService) Supports(path string) bool {
	return len(path) > 5 && path[len(path)-5:] == ".html"
}

type mockCatalogService struct {
	titles   map[domain.Partition][]string
	statuses []domain.PartitionStatus
	err      error

	imported map[domain.Partition][]string
}

func (m *mockCatalogService) List(_ context.Context, partition domain.Partition) ([]string, error) {
	return m.titles[partition], m.err
}

func (m *mockCatalogService) Import(_ context.Context, titles map[domain.Partition][]string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.imported = titles
	n := 0
	for _, ts := range titles {
		n += len(ts)
	}
	return n, nil
}

func (m *mockCatalogService) Status(_ context.Context) ([]domain.PartitionStatus, error) {
	return m.statuses, m.err
}

type mockAnswerService struct {
	answer string
	err    error

	gotSubject string
}

func (m *mockAnswerService) Answer(_ context.Context, _, _, subject string) (string, error) {
	m.gotSubject = subject
	return m.answer, m.err
}

type mockSettingsService struct {
	settings   domain.AppSettings
	values     map[string]string
	setErr     error
	embedErr   error
	validErr   error
	setHistory [][2]string
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultAppSettings(),
		values:   map[string]string{},
	}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetValue(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	m.setHistory = append(m.setHistory, [2]string{key, value})
	return nil
}

func (m *mockSettingsService) Value(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.model", "retrieval.k", "retrieval.threshold"}
}

func (m *mockSettingsService) Validate() error { return m.validErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embedErr }
func (m *mockSettingsService) ValidateLLMConfig() error { return nil }

// setupTestServices installs s and returns a cleanup that restores the
// package state.
func setupTestServices(t *testing.T, s *Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() {
		SetServices(&Services{})
		settingsService = nil
		serviceFactory = nil
		servicesOnce = sync.Once{}
		servicesErr = nil
		servicesClose = nil
	})
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so that values do not
// leak between tests sharing the package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
