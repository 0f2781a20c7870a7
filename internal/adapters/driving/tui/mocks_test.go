package tui

import (
	"context"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
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

type mockCatalogService struct {
	statuses []domain.PartitionStatus
	err      error
}

func (m *mockCatalogService) List(_ context.Context, _ domain.Partition) ([]string, error) {
	return nil, nil
}

func (m *mockCatalogService) Import(_ context.Context, _ map[domain.Partition][]string) (int, error) {
	return 0, domain.ErrUnsupportedType
}

func (m *mockCatalogService) Status(_ context.Context) ([]domain.PartitionStatus, error) {
	return m.statuses, m.err
}
