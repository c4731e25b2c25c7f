package services_test

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// Mocks

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, req *entities.FetchRequest) *entities.FetchResponse {
	args := m.Called(ctx, req)
	return args.Get(0).(*entities.FetchResponse)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, audit *entities.TriageAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*entities.TriageAudit, error) {
	args := m.Called(ctx, patientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TriageAudit), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Health(ctx context.Context) (*entities.HealthResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HealthResponse), args.Error(1)
}

// blockingDispatcher never answers before its context is cancelled.
type blockingDispatcher struct{}

func (blockingDispatcher) Dispatch(ctx context.Context, req *entities.FetchRequest) *entities.FetchResponse {
	<-ctx.Done()
	return offlineResponse()
}

// assetFetcher serves every shell asset unless it is down.
type assetFetcher struct {
	mu   sync.Mutex
	down bool
}

func (f *assetFetcher) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *assetFetcher) Fetch(ctx context.Context, req *entities.FetchRequest) (*entities.FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errors.New("connection refused")
	}
	return &entities.FetchResponse{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte("asset " + req.Path),
	}, nil
}

func jsonResponse(status int, source entities.ResponseSource, body string) *entities.FetchResponse {
	return &entities.FetchResponse{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   []byte(body),
		Source: source,
	}
}

func offlineResponse() *entities.FetchResponse {
	return jsonResponse(http.StatusServiceUnavailable, entities.SourceOffline, `{"status":"error","message":"offline","offline":true}`)
}
