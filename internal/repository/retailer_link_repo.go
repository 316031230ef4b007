package repository

import (
	"context"

	"gearlog/internal/domain"

	"gorm.io/gorm"
)

type RetailerLinkFilters struct {
	EquipmentID int64
	RetailerID  string
	Limit       int
	Offset      int
}

type RetailerLinkRepository struct {
	db *gorm.DB
}

func NewRetailerLinkRepository(db *gorm.DB) *RetailerLinkRepository {
	return &RetailerLinkRepository{db: db}
}

// scoped narrows links to those whose parent equipment belongs to ownerID.
func (r *RetailerLinkRepository) scoped(ctx context.Context, ownerID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.RetailerLink{}).
		Joins("JOIN equipment ON equipment.id = retailer_links.equipment_id").
		Where("equipment.user_id = ?", ownerID).
		Session(&gorm.Session{})
}

func (r *RetailerLinkRepository) ListByOwner(
	ctx context.Context,
	ownerID int64,
	f RetailerLinkFilters,
) ([]domain.RetailerLink, int64, error) {

	q := r.scoped(ctx, ownerID)
	if f.EquipmentID > 0 {
		q = q.Where("retailer_links.equipment_id = ?", f.EquipmentID)
	}
	if f.RetailerID != "" {
		q = q.Where("retailer_links.retailer_id = ?", f.RetailerID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var links []domain.RetailerLink
	page := q.Select("retailer_links.*").Order("retailer_links.id ASC")
	if f.Limit > 0 {
		page = page.Limit(f.Limit).Offset(f.Offset)
	}
	if err := page.Find(&links).Error; err != nil {
		return nil, 0, err
	}

	return links, total, nil
}

// GetForOwner fetches a link only if its parent equipment belongs to ownerID.
func (r *RetailerLinkRepository) GetForOwner(ctx context.Context, ownerID, id int64) (*domain.RetailerLink, error) {
	var l domain.RetailerLink
	err := r.scoped(ctx, ownerID).
		Select("retailer_links.*").
		Where("retailer_links.id = ?", id).
		First(&l).Error
	if err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// GetForEquipment fetches link id only if it hangs off equipmentID.
func (r *RetailerLinkRepository) GetForEquipment(ctx context.Context, equipmentID, id int64) (*domain.RetailerLink, error) {
	var l domain.RetailerLink
	err := r.db.WithContext(ctx).
		Where("id = ? AND equipment_id = ?", id, equipmentID).
		First(&l).Error
	if err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *RetailerLinkRepository) CountForEquipment(ctx context.Context, equipmentID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.RetailerLink{}).
		Where("equipment_id = ?", equipmentID).
		Count(&n).Error
	return n, err
}

// Create inserts a link. A parent deleted concurrently surfaces as ErrNotFound.
func (r *RetailerLinkRepository) Create(ctx context.Context, l *domain.RetailerLink) error {
	err := r.db.WithContext(ctx).Create(l).Error
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

// CreateForOwner inserts l in one transaction with a check that its parent
// equipment belongs to ownerID. ErrNotFound means the parent is missing or
// owned by someone else.
func (r *RetailerLinkRepository) CreateForOwner(ctx context.Context, ownerID int64, l *domain.RetailerLink) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Equipment{}).
			Where("id = ? AND user_id = ?", l.EquipmentID, ownerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return tx.Create(l).Error
	})
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

// Update writes the mutable columns; the parent equipment never changes.
func (r *RetailerLinkRepository) Update(ctx context.Context, l *domain.RetailerLink) error {
	return r.db.WithContext(ctx).
		Model(&domain.RetailerLink{ID: l.ID}).
		Where("equipment_id = ?", l.EquipmentID).
		Select("retailer_id", "price", "url", "affiliate_code").
		Updates(l).Error
}

func (r *RetailerLinkRepository) Delete(ctx context.Context, l *domain.RetailerLink) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND equipment_id = ?", l.ID, l.EquipmentID).
		Delete(&domain.RetailerLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
