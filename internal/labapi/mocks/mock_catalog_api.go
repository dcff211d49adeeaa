// Package mocks provides testify mocks for labapi interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/lab-catalog/internal/labapi"
)

// MockCatalogAPI is a testify mock implementing labapi.CatalogAPI.
type MockCatalogAPI struct {
	mock.Mock
}

var _ labapi.CatalogAPI = (*MockCatalogAPI)(nil)

// NewMockCatalogAPI creates a MockCatalogAPI that asserts its expectations
// when the test finishes.
func NewMockCatalogAPI(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockCatalogAPI {
	m := &MockCatalogAPI{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// ListTests implements labapi.CatalogAPI.
func (m *MockCatalogAPI) ListTests(ctx context.Context, params labapi.ListParams) ([]labapi.RawTest, error) {
	args := m.Called(ctx, params)
	var out []labapi.RawTest
	if v := args.Get(0); v != nil {
		out = v.([]labapi.RawTest)
	}
	return out, args.Error(1)
}

// ListBundles implements labapi.CatalogAPI.
func (m *MockCatalogAPI) ListBundles(ctx context.Context, params labapi.ListParams) ([]labapi.RawBundle, error) {
	args := m.Called(ctx, params)
	var out []labapi.RawBundle
	if v := args.Get(0); v != nil {
		out = v.([]labapi.RawBundle)
	}
	return out, args.Error(1)
}

// ListAreas implements labapi.CatalogAPI.
func (m *MockCatalogAPI) ListAreas(ctx context.Context) ([]labapi.RawArea, error) {
	args := m.Called(ctx)
	var out []labapi.RawArea
	if v := args.Get(0); v != nil {
		out = v.([]labapi.RawArea)
	}
	return out, args.Error(1)
}

// Search implements labapi.CatalogAPI.
func (m *MockCatalogAPI) Search(ctx context.Context, params labapi.SearchParams) (*labapi.SearchResult, error) {
	args := m.Called(ctx, params)
	var out *labapi.SearchResult
	if v := args.Get(0); v != nil {
		out = v.(*labapi.SearchResult)
	}
	return out, args.Error(1)
}
