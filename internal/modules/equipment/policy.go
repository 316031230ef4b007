package equipment

import (
	"context"
	"errors"

	"gearlog/internal/domain"
	"gearlog/internal/repository"
)

// Decision is the outcome of an ownership check. Records the caller does
// not own are reported exactly like records that do not exist.
type Decision int

const (
	NotFound Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "not_found"
}

// Policy decides whether a requester may act on a record. Every retrieve
// and mutation goes through it first.
type Policy struct {
	equipment EquipmentStore
	links     RetailerLinkStore
}

func NewPolicy(equipment EquipmentStore, links RetailerLinkStore) *Policy {
	return &Policy{equipment: equipment, links: links}
}

// AuthorizeEquipment returns the record when requesterID owns it.
func (p *Policy) AuthorizeEquipment(ctx context.Context, requesterID, equipmentID int64) (Decision, *domain.Equipment, error) {
	if requesterID <= 0 {
		return NotFound, nil, ErrAuthenticationRequired
	}

	e, err := p.equipment.GetForOwner(ctx, requesterID, equipmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound, nil, nil
	}
	if err != nil {
		return NotFound, nil, err
	}
	if e.UserID != requesterID {
		return NotFound, nil, nil
	}
	return Allowed, e, nil
}

// AuthorizeRetailerLink grants access when requesterID owns the link's
// parent equipment.
func (p *Policy) AuthorizeRetailerLink(ctx context.Context, requesterID, linkID int64) (Decision, *domain.RetailerLink, error) {
	if requesterID <= 0 {
		return NotFound, nil, ErrAuthenticationRequired
	}

	l, err := p.links.GetForOwner(ctx, requesterID, linkID)
	if errors.Is(err, repository.ErrNotFound) {
		return NotFound, nil, nil
	}
	if err != nil {
		return NotFound, nil, err
	}
	return Allowed, l, nil
}
