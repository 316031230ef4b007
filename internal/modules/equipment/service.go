package equipment

import (
	"context"
	"errors"
	"strings"
	"time"

	"gearlog/internal/domain"
	"gearlog/internal/events"
	"gearlog/internal/pkg/requestid"
	"gearlog/internal/pkg/validator"
	"gearlog/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

type Service struct {
	equipment EquipmentStore
	links     RetailerLinkStore
	users     UserDirectory
	policy    *Policy
	events    events.Publisher
	log       *zap.Logger
}

func NewService(
	equipment EquipmentStore,
	links RetailerLinkStore,
	users UserDirectory,
	publisher events.Publisher,
	log *zap.Logger,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		equipment: equipment,
		links:     links,
		users:     users,
		policy:    NewPolicy(equipment, links),
		events:    publisher,
		log:       log,
	}
}

// Me returns the caller's own summary.
func (s *Service) Me(ctx context.Context, userID int64) (*OwnerSummary, error) {
	u, err := s.caller(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToOwnerSummary(u), nil
}

func (s *Service) ListEquipment(ctx context.Context, userID int64, q ListQuery) (*EquipmentListResponse, error) {
	if userID <= 0 {
		return nil, ErrAuthenticationRequired
	}

	page, limit := normalizePage(q.Page, q.Limit)
	items, total, err := s.equipment.ListByOwner(ctx, userID, repository.EquipmentFilters{
		Category: strings.TrimSpace(q.Category),
		Search:   q.Search,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return &EquipmentListResponse{
		Equipment:  toEquipmentResponses(items),
		Pagination: newPagination(page, limit, total),
	}, nil
}

// CreateEquipment stores a new item owned by userID. Any owner sent by the
// client never reaches this point.
func (s *Service) CreateEquipment(ctx context.Context, userID int64, req EquipmentRequest) (*EquipmentResponse, error) {
	owner, err := s.caller(ctx, userID)
	if err != nil {
		return nil, err
	}

	if errs := req.Validate(false); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	e := &domain.Equipment{UserID: owner.ID}
	if err := applyEquipment(e, &req); err != nil {
		return nil, err
	}

	if err := s.equipment.Create(ctx, e); err != nil {
		return nil, err
	}
	e.Owner = owner

	s.log.Info("equipment created",
		zap.Int64("equipment_id", e.ID),
		zap.Int64("user_id", userID),
	)

	resp := ToEquipmentResponse(e)
	s.publish(ctx, events.EventTypeEquipmentCreated, userID, resp)
	return &resp, nil
}

func (s *Service) GetEquipment(ctx context.Context, userID, id int64) (*EquipmentResponse, error) {
	e, err := s.authorizeEquipment(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToEquipmentResponse(e)
	return &resp, nil
}

// UpdateEquipment handles PUT (partial=false) and PATCH (partial=true).
// Ownership is resolved before the payload is validated.
func (s *Service) UpdateEquipment(ctx context.Context, userID, id int64, req EquipmentRequest, partial bool) (*EquipmentResponse, error) {
	e, err := s.authorizeEquipment(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if errs := req.Validate(partial); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	if err := applyEquipment(e, &req); err != nil {
		return nil, err
	}

	if err := s.equipment.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}

	resp := ToEquipmentResponse(e)
	s.publish(ctx, events.EventTypeEquipmentUpdated, userID, resp)
	return &resp, nil
}

// DeleteEquipment removes the item together with all its retailer links.
func (s *Service) DeleteEquipment(ctx context.Context, userID, id int64) error {
	e, err := s.authorizeEquipment(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.equipment.DeleteWithRetailers(ctx, userID, e.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEquipmentNotFound
		}
		return err
	}

	s.log.Info("equipment deleted",
		zap.Int64("equipment_id", e.ID),
		zap.Int64("user_id", userID),
		zap.Int("retailer_links", len(e.Retailers)),
	)

	s.publish(ctx, events.EventTypeEquipmentDeleted, userID, map[string]any{"id": e.ID})
	return nil
}

// AddRetailer attaches a new retailer link to owned equipment.
func (s *Service) AddRetailer(ctx context.Context, userID, equipmentID int64, req RetailerLinkRequest) (*RetailerLinkResponse, error) {
	e, err := s.authorizeEquipment(ctx, userID, equipmentID)
	if err != nil {
		return nil, err
	}

	if errs := req.Validate(false); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	l := &domain.RetailerLink{EquipmentID: e.ID}
	if err := applyRetailerLink(l, &req); err != nil {
		return nil, err
	}

	if err := s.links.CreateForOwner(ctx, userID, l); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}

	resp := ToRetailerLinkResponse(l)
	s.publish(ctx, events.EventTypeRetailerLinkCreated, userID, resp)
	return &resp, nil
}

// RemoveRetailer deletes the link named by req.RetailerID, which must hang
// off the given equipment.
func (s *Service) RemoveRetailer(ctx context.Context, userID, equipmentID int64, req RemoveRetailerRequest) error {
	e, err := s.authorizeEquipment(ctx, userID, equipmentID)
	if err != nil {
		return err
	}

	linkID, msg := parseID(req.RetailerID)
	if msg != "" {
		return fieldError("retailer_id", msg)
	}

	l, err := s.links.GetForEquipment(ctx, e.ID, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRetailerLinkNotFound
		}
		return err
	}

	if err := s.links.Delete(ctx, l); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRetailerLinkNotFound
		}
		return err
	}

	s.publish(ctx, events.EventTypeRetailerLinkDeleted, userID, map[string]any{
		"id":           l.ID,
		"equipment_id": l.EquipmentID,
	})
	return nil
}

// Categories returns the suggested category names.
func (s *Service) Categories() []string {
	out := make([]string, len(domain.EquipmentCategories))
	copy(out, domain.EquipmentCategories)
	return out
}

func (s *Service) caller(ctx context.Context, userID int64) (*domain.User, error) {
	if userID <= 0 {
		return nil, ErrAuthenticationRequired
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAuthenticationRequired
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) authorizeEquipment(ctx context.Context, userID, id int64) (*domain.Equipment, error) {
	decision, e, err := s.policy.AuthorizeEquipment(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if decision != Allowed {
		return nil, ErrEquipmentNotFound
	}
	return e, nil
}

// publish never fails the caller; delivery problems are only logged.
func (s *Service) publish(ctx context.Context, eventType string, ownerID int64, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.events.Publish(ctx, events.New(ctx, eventType, ownerID, payload)); err != nil {
		s.log.Warn("failed to publish event",
			zap.String("event_type", eventType),
			zap.Int64("owner_id", ownerID),
			zap.String("request_id", requestid.FromContext(ctx)),
			zap.Error(err),
		)
	}
}

func applyEquipment(e *domain.Equipment, r *EquipmentRequest) error {
	if r.Name != nil {
		e.Name = strings.TrimSpace(*r.Name)
	}
	if r.Category != nil {
		e.Category = strings.TrimSpace(*r.Category)
	}
	if r.Price.Set {
		if r.Price.Blank() {
			e.Price = decimal.NullDecimal{}
		} else {
			d, err := validator.ParseMoney(r.Price.Raw)
			if err != nil {
				return fieldError("price", err.Error())
			}
			e.Price = decimal.NewNullDecimal(d)
		}
	}
	if r.Description != nil {
		e.Description = optional(r.Description)
	}
	if r.Image != nil {
		e.Image = optional(r.Image)
	}
	if r.PurchaseDate != nil {
		if v := optional(r.PurchaseDate); v == nil {
			e.PurchaseDate = nil
		} else {
			d, err := time.Parse(dateLayout, *v)
			if err != nil {
				return fieldError("purchase_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
			}
			e.PurchaseDate = &d
		}
	}
	if r.PurchaseLocation != nil {
		e.PurchaseLocation = optional(r.PurchaseLocation)
	}
	if r.Link != nil {
		e.Link = optional(r.Link)
	}
	return nil
}

func applyRetailerLink(l *domain.RetailerLink, r *RetailerLinkRequest) error {
	if r.RetailerID != nil {
		l.RetailerID = strings.TrimSpace(*r.RetailerID)
	}
	if r.Price.Set {
		d, err := validator.ParseMoney(r.Price.Raw)
		if err != nil {
			return fieldError("price", err.Error())
		}
		l.Price = d
	}
	if r.URL != nil {
		l.URL = strings.TrimSpace(*r.URL)
	}
	if r.AffiliateCode != nil {
		l.AffiliateCode = optional(r.AffiliateCode)
	}
	return nil
}
