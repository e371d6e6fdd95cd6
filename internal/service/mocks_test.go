package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"image-text-reader/internal/domain"
)

type MockLogger struct{}

func (l *MockLogger) Info(msg string, fields ...interface{}) {}

func (l *MockLogger) Error(msg string, err error, fields ...interface{}) {}

func (l *MockLogger) Debug(msg string, fields ...interface{}) {}

func (l *MockLogger) Warn(msg string, fields ...interface{}) {}

type MockMetrics struct {
	mu       sync.Mutex
	attempts int
	outcomes []string
}

func (m *MockMetrics) ObserveAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
}

func (m *MockMetrics) ObserveAnalysis(outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *MockMetrics) ObserveUpload(string) {}

// scriptedModel returns the scripted errors in order, then text.
type scriptedModel struct {
	errs     []string
	text     string
	calls    int
	requests []*domain.ModelRequest
}

func (m *scriptedModel) Generate(ctx context.Context, req *domain.ModelRequest) (string, error) {
	m.calls++
	m.requests = append(m.requests, req)
	if m.calls <= len(m.errs) {
		return "", errors.New(m.errs[m.calls-1])
	}
	return m.text, nil
}

// alwaysFailModel fails every call with msg.
type alwaysFailModel struct {
	msg   string
	calls int
}

func (m *alwaysFailModel) Generate(ctx context.Context, req *domain.ModelRequest) (string, error) {
	m.calls++
	return "", errors.New(m.msg)
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}
