// Package mocks contém o mock gomock de OWIDIntegrator, no formato do mockgen.
// Mantido à mão: ao mudar a interface, atualize este arquivo.
package mocks

import (
	context "context"
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockOWIDIntegrator is a mock of OWIDIntegrator interface.
type MockOWIDIntegrator struct {
	ctrl     *gomock.Controller
	recorder *MockOWIDIntegratorMockRecorder
	isgomock struct{}
}

// MockOWIDIntegratorMockRecorder is the mock recorder for MockOWIDIntegrator.
type MockOWIDIntegratorMockRecorder struct {
	mock *MockOWIDIntegrator
}

// NewMockOWIDIntegrator creates a new mock instance.
func NewMockOWIDIntegrator(ctrl *gomock.Controller) *MockOWIDIntegrator {
	mock := &MockOWIDIntegrator{ctrl: ctrl}
	mock.recorder = &MockOWIDIntegratorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockOWIDIntegrator) EXPECT() *MockOWIDIntegratorMockRecorder {
	return m.recorder
}

// FetchCSV mocks base method.
func (m *MockOWIDIntegrator) FetchCSV(ctx context.Context, url string) ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FetchCSV", ctx, url)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FetchCSV indicates an expected call of FetchCSV.
func (mr *MockOWIDIntegratorMockRecorder) FetchCSV(ctx, url any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FetchCSV", reflect.TypeOf((*MockOWIDIntegrator)(nil).FetchCSV), ctx, url)
}

// SaveBackup mocks base method.
func (m *MockOWIDIntegrator) SaveBackup(data []byte, path string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "SaveBackup", data, path)
	ret0, _ := ret[0].(error)
	return ret0
}

// SaveBackup indicates an expected call of SaveBackup.
func (mr *MockOWIDIntegratorMockRecorder) SaveBackup(data, path any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "SaveBackup", reflect.TypeOf((*MockOWIDIntegrator)(nil).SaveBackup), data, path)
}
