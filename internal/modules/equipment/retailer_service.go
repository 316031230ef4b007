package equipment

import (
	"context"
	"errors"
	"strings"

	"gearlog/internal/domain"
	"gearlog/internal/events"
	"gearlog/internal/pkg/validator"
	"gearlog/internal/repository"
)

const equipmentMissingMessage = "Equipment does not exist or is not yours."

func (s *Service) ListRetailerLinks(ctx context.Context, userID int64, q RetailerLinkListQuery) (*RetailerLinkListResponse, error) {
	if userID <= 0 {
		return nil, ErrAuthenticationRequired
	}

	page, limit := normalizePage(q.Page, q.Limit)
	items, total, err := s.links.ListByOwner(ctx, userID, repository.RetailerLinkFilters{
		EquipmentID: q.EquipmentID,
		RetailerID:  strings.TrimSpace(q.RetailerID),
		Limit:       limit,
		Offset:      (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}

	return &RetailerLinkListResponse{
		RetailerLinks: toRetailerLinkResponses(items),
		Pagination:    newPagination(page, limit, total),
	}, nil
}

// CreateRetailerLink is the standalone create. The parent equipment comes
// from the payload and must belong to the caller.
func (s *Service) CreateRetailerLink(ctx context.Context, userID int64, req RetailerLinkRequest) (*RetailerLinkResponse, error) {
	if userID <= 0 {
		return nil, ErrAuthenticationRequired
	}

	errs := validator.FieldErrors{}
	errs.Merge(req.Validate(false))

	equipmentID, msg := parseID(req.EquipmentID)
	if msg != "" {
		errs.Add("equipment_id", msg)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	l := &domain.RetailerLink{EquipmentID: equipmentID}
	if err := applyRetailerLink(l, &req); err != nil {
		return nil, err
	}

	if err := s.links.CreateForOwner(ctx, userID, l); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fieldError("equipment_id", equipmentMissingMessage)
		}
		return nil, err
	}

	resp := ToRetailerLinkResponse(l)
	s.publish(ctx, events.EventTypeRetailerLinkCreated, userID, resp)
	return &resp, nil
}

func (s *Service) GetRetailerLink(ctx context.Context, userID, id int64) (*RetailerLinkResponse, error) {
	l, err := s.authorizeRetailerLink(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToRetailerLinkResponse(l)
	return &resp, nil
}

// UpdateRetailerLink handles PUT and PATCH. The parent equipment of a link
// never changes, so equipment_id in the payload is ignored.
func (s *Service) UpdateRetailerLink(ctx context.Context, userID, id int64, req RetailerLinkRequest, partial bool) (*RetailerLinkResponse, error) {
	l, err := s.authorizeRetailerLink(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if errs := req.Validate(partial); errs != nil {
		return nil, &ValidationError{Fields: errs}
	}

	if err := applyRetailerLink(l, &req); err != nil {
		return nil, err
	}

	if err := s.links.Update(ctx, l); err != nil {
		return nil, err
	}

	resp := ToRetailerLinkResponse(l)
	s.publish(ctx, events.EventTypeRetailerLinkUpdated, userID, resp)
	return &resp, nil
}

func (s *Service) DeleteRetailerLink(ctx context.Context, userID, id int64) error {
	l, err := s.authorizeRetailerLink(ctx, userID, id)
	if err != nil {
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

func (s *Service) authorizeRetailerLink(ctx context.Context, userID, id int64) (*domain.RetailerLink, error) {
	decision, l, err := s.policy.AuthorizeRetailerLink(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if decision != Allowed {
		return nil, ErrRetailerLinkNotFound
	}
	return l, nil
}
