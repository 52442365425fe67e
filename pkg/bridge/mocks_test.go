package bridge

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"
)

// MockAuthorizationProvider is a mock implementation of AuthorizationProvider.
type MockAuthorizationProvider struct {
	mock.Mock
}

func (m *MockAuthorizationProvider) ParseAuthRequest(r *http.Request) (AuthRequest, error) {
	args := m.Called(r)
	return args.Get(0).(AuthRequest), args.Error(1)
}

func (m *MockAuthorizationProvider) CompleteAuthorization(ctx context.Context, c Completion) (Redirect, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(Redirect), args.Error(1)
}

// MockUpstream is a mock implementation of Upstream.
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) AuthCodeURL(state, redirectURI string) string {
	args := m.Called(state, redirectURI)
	return args.String(0)
}

func (m *MockUpstream) Exchange(ctx context.Context, code, redirectURI string) (Token, error) {
	args := m.Called(ctx, code, redirectURI)
	return args.Get(0).(Token), args.Error(1)
}

func (m *MockUpstream) FetchIdentity(ctx context.Context, token Token) (Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(Identity), args.Error(1)
}
