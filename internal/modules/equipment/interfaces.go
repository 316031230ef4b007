package equipment

import (
	"context"

	"gearlog/internal/domain"
	"gearlog/internal/repository"
)

// EquipmentStore is scoped by owner on every read and write.
type EquipmentStore interface {
	ListByOwner(ctx context.Context, ownerID int64, f repository.EquipmentFilters) ([]domain.Equipment, int64, error)
	GetForOwner(ctx context.Context, ownerID, id int64) (*domain.Equipment, error)
	Create(ctx context.Context, e *domain.Equipment) error
	Update(ctx context.Context, e *domain.Equipment) error
	DeleteWithRetailers(ctx context.Context, ownerID, id int64) error
}

// RetailerLinkStore reaches links through the owner of their equipment.
type RetailerLinkStore interface {
	ListByOwner(ctx context.Context, ownerID int64, f repository.RetailerLinkFilters) ([]domain.RetailerLink, int64, error)
	GetForOwner(ctx context.Context, ownerID, id int64) (*domain.RetailerLink, error)
	GetForEquipment(ctx context.Context, equipmentID, id int64) (*domain.RetailerLink, error)
	CreateForOwner(ctx context.Context, ownerID int64, l *domain.RetailerLink) error
	Update(ctx context.Context, l *domain.RetailerLink) error
	Delete(ctx context.Context, l *domain.RetailerLink) error
}

type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
