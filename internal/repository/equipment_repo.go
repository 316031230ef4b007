package repository

import (
	"context"
	"strings"
	"time"

	"gearlog/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EquipmentFilters struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// equipmentColumns are the columns an owner may change after creation.
var equipmentColumns = []string{
	"name", "category", "price", "description", "image",
	"purchase_date", "purchase_location", "link", "updated_at",
}

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) scoped(ctx context.Context, ownerID int64) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("equipment.user_id = ?", ownerID).
		Session(&gorm.Session{})
}

// likeEscaper makes search input match literally. '!' is used as the escape
// character because MySQL treats a backslash in a literal as an escape too.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func withRelations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Owner").
		Preload("Retailers", func(db *gorm.DB) *gorm.DB {
			return db.Order("retailer_links.id ASC")
		})
}

// ListByOwner returns one page of the owner's equipment ordered by id,
// plus the total number of matching rows.
func (r *EquipmentRepository) ListByOwner(
	ctx context.Context,
	ownerID int64,
	f EquipmentFilters,
) ([]domain.Equipment, int64, error) {

	q := r.scoped(ctx, ownerID)

	if f.Category != "" {
		q = q.Where("equipment.category = ?", f.Category).Session(&gorm.Session{})
	}

	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + likeEscaper.Replace(s) + "%"
		q = q.Where(
			"LOWER(equipment.name) LIKE ? ESCAPE '!' OR LOWER(equipment.description) LIKE ? ESCAPE '!' OR LOWER(equipment.category) LIKE ? ESCAPE '!'",
			like, like, like,
		).Session(&gorm.Session{})
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Equipment
	page := withRelations(q).Order("equipment.id ASC")
	if f.Limit > 0 {
		page = page.Limit(f.Limit).Offset(f.Offset)
	}
	if err := page.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// GetForOwner fetches an equipment only if ownerID owns it.
func (r *EquipmentRepository) GetForOwner(ctx context.Context, ownerID, id int64) (*domain.Equipment, error) {
	var e domain.Equipment
	err := withRelations(r.scoped(ctx, ownerID)).
		Where("equipment.id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

// Update writes the mutable columns. The owner column is never written.
func (r *EquipmentRepository) Update(ctx context.Context, e *domain.Equipment) error {
	e.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&domain.Equipment{ID: e.ID}).
		Where("user_id = ?", e.UserID).
		Select(equipmentColumns).
		Omit(clause.Associations).
		Updates(e)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteWithRetailers removes the equipment and all of its retailer links
// in one transaction.
func (r *EquipmentRepository) DeleteWithRetailers(ctx context.Context, ownerID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Equipment{}).
			Where("id = ? AND user_id = ?", id, ownerID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		if err := tx.Where("equipment_id = ?", id).Delete(&domain.RetailerLink{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&domain.Equipment{}).Error
	})
}
