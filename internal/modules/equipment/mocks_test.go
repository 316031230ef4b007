package equipment

import (
	"context"

	"gearlog/internal/domain"
	"gearlog/internal/events"
	"gearlog/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockEquipmentStore struct {
	mock.Mock
}

func (m *MockEquipmentStore) ListByOwner(ctx context.Context, ownerID int64, f repository.EquipmentFilters) ([]domain.Equipment, int64, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Equipment), args.Get(1).(int64), args.Error(2)
}

func (m *MockEquipmentStore) GetForOwner(ctx context.Context, ownerID, id int64) (*domain.Equipment, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}

func (m *MockEquipmentStore) Create(ctx context.Context, e *domain.Equipment) error {
	args := m.Called(ctx, e)
	if e != nil {
		e.ID = 101 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockEquipmentStore) Update(ctx context.Context, e *domain.Equipment) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockEquipmentStore) DeleteWithRetailers(ctx context.Context, ownerID, id int64) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type MockRetailerLinkStore struct {
	mock.Mock
}

func (m *MockRetailerLinkStore) ListByOwner(ctx context.Context, ownerID int64, f repository.RetailerLinkFilters) ([]domain.RetailerLink, int64, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.RetailerLink), args.Get(1).(int64), args.Error(2)
}

func (m *MockRetailerLinkStore) GetForOwner(ctx context.Context, ownerID, id int64) (*domain.RetailerLink, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetailerLink), args.Error(1)
}

func (m *MockRetailerLinkStore) GetForEquipment(ctx context.Context, equipmentID, id int64) (*domain.RetailerLink, error) {
	args := m.Called(ctx, equipmentID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RetailerLink), args.Error(1)
}

func (m *MockRetailerLinkStore) CreateForOwner(ctx context.Context, ownerID int64, l *domain.RetailerLink) error {
	args := m.Called(ctx, ownerID, l)
	if l != nil {
		l.ID = 501
	}
	return args.Error(0)
}

func (m *MockRetailerLinkStore) Update(ctx context.Context, l *domain.RetailerLink) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockRetailerLinkStore) Delete(ctx context.Context, l *domain.RetailerLink) error {
	return m.Called(ctx, l).Error(0)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	return m.Called(ctx, e).Error(0)
}
