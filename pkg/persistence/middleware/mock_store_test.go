package middleware_test

import (
	"context"
	"errors"

	"github.com/aretw0/verdant/pkg/domain"
	"github.com/aretw0/verdant/pkg/ports"
)

// MockStorage is a simple map-based storage for testing middleware.
type MockStorage struct {
	data map[string]string
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		data: make(map[string]string),
	}
}

func (s *MockStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MockStorage) SetItem(ctx context.Context, key, value string) error {
	s.data[key] = value
	return nil
}

func (s *MockStorage) RemoveItem(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

var _ ports.Storage = (*MockStorage)(nil)

// stubRepository returns canned errors for every call.
type stubRepository struct {
	err error
}

func (r stubRepository) List(ctx context.Context) ([]domain.Plant, error) {
	return domain.DefaultPlants(), r.err
}

func (r stubRepository) Create(ctx context.Context, in domain.PlantInput) (domain.Plant, error) {
	if r.err != nil {
		return domain.Plant{}, r.err
	}
	return in.WithID("new"), nil
}

func (r stubRepository) Update(ctx context.Context, id string, plant domain.Plant) (domain.Plant, error) {
	plant.ID = id
	return plant, r.err
}

func (r stubRepository) Delete(ctx context.Context, id string) error {
	if id == "missing" {
		return domain.NotFound(id)
	}
	return r.err
}

func (r stubRepository) Enrich(ctx context.Context, id string) (string, error) {
	if r.err != nil {
		return "", &domain.UpstreamError{Op: "enrich", Err: r.err}
	}
	return "10", nil
}

var errBoom = errors.New("boom")

var _ ports.PlantRepository = stubRepository{}
