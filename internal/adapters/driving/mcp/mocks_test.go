package mcp

import (
	"context"

	"github.com/custodia-labs/dpln-rag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
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

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	titles   map[domain.Partition][]string
	statuses []domain.PartitionStatus
	err      error
}

func (m *mockCatalogService) List(_ context.Context, partition domain.Partition) ([]string, error) {
	return m.titles[partition], m.err
}

func (m *mockCatalogService) Import(_ context.Context, titles map[domain.Partition][]string) (int, error) {
	n := 0
	for _, list := range titles {
		n += len(list)
	}
	return n, m.err
}

func (m *mockCatalogService) Status(_ context.Context) ([]domain.PartitionStatus, error) {
	return m.statuses, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer string
	err    error
}

func (m *mockAnswerService) Answer(_ context.Context, _, _, _ string) (string, error) {
	return m.answer, m.err
}
