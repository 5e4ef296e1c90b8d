// Package mocks contém o mock gomock de RecordRepository, no formato do mockgen.
// Mantido à mão: ao mudar a interface, atualize este arquivo.
package mocks

import (
	context "context"
	reflect "reflect"

	repository "github.com/vfg2006/covid-insights/infrastructure/repository"
	domain "github.com/vfg2006/covid-insights/internal/domain"
	gomock "go.uber.org/mock/gomock"
)

// MockRecordRepository is a mock of RecordRepository interface.
type MockRecordRepository struct {
	ctrl     *gomock.Controller
	recorder *MockRecordRepositoryMockRecorder
	isgomock struct{}
}

// MockRecordRepositoryMockRecorder is the mock recorder for MockRecordRepository.
type MockRecordRepositoryMockRecorder struct {
	mock *MockRecordRepository
}

// NewMockRecordRepository creates a new mock instance.
func NewMockRecordRepository(ctrl *gomock.Controller) *MockRecordRepository {
	mock := &MockRecordRepository{ctrl: ctrl}
	mock.recorder = &MockRecordRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRecordRepository) EXPECT() *MockRecordRepositoryMockRecorder {
	return m.recorder
}

// ListRecords mocks base method.
func (m *MockRecordRepository) ListRecords(ctx context.Context, filters repository.RecordFilters) ([]domain.Record, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListRecords", ctx, filters)
	ret0, _ := ret[0].([]domain.Record)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListRecords indicates an expected call of ListRecords.
func (mr *MockRecordRepositoryMockRecorder) ListRecords(ctx, filters any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListRecords", reflect.TypeOf((*MockRecordRepository)(nil).ListRecords), ctx, filters)
}
