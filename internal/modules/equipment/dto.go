package equipment

import (
	"encoding/json"
	"strconv"
	"strings"

	"gearlog/internal/pkg/validator"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// EquipmentRequest is the writable subset of Equipment. Owner and
// timestamps are not part of it, so clients cannot set them.
type EquipmentRequest struct {
	Name             *string          `json:"name" validate:"omitempty,max=255"`
	Category         *string          `json:"category" validate:"omitempty,max=100"`
	Price            validator.Amount `json:"price" validate:"omitempty,money"`
	Description      *string          `json:"description"`
	Image            *string          `json:"image" validate:"omitempty,max=200,url"`
	PurchaseDate     *string          `json:"purchase_date" validate:"omitempty,datetime=2006-01-02"`
	PurchaseLocation *string          `json:"purchase_location" validate:"omitempty,max=255"`
	Link             *string          `json:"link" validate:"omitempty,max=200,url"`
}

// Validate checks formats and, unless partial, that required keys exist.
func (r *EquipmentRequest) Validate(partial bool) validator.FieldErrors {
	errs := validator.FieldErrors{}
	errs.Merge(validator.Validate(r))

	requireString(errs, "name", r.Name, partial)
	requireString(errs, "category", r.Category, partial)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// RetailerLinkRequest is used by add_retailer and the retailer-links
// endpoints. EquipmentID is only read by the standalone create.
type RetailerLinkRequest struct {
	EquipmentID   json.RawMessage  `json:"equipment_id"`
	RetailerID    *string          `json:"retailer_id" validate:"omitempty,max=100"`
	Price         validator.Amount `json:"price" validate:"omitempty,money"`
	URL           *string          `json:"url" validate:"omitempty,max=200,url"`
	AffiliateCode *string          `json:"affiliate_code" validate:"omitempty,max=50"`
}

func (r *RetailerLinkRequest) Validate(partial bool) validator.FieldErrors {
	errs := validator.FieldErrors{}
	errs.Merge(validator.Validate(r))

	requireString(errs, "retailer_id", r.RetailerID, partial)
	requireAmount(errs, "price", r.Price, partial)
	requireString(errs, "url", r.URL, partial)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// RemoveRetailerRequest names the link to detach by its id.
type RemoveRetailerRequest struct {
	RetailerID json.RawMessage `json:"retailer_id"`
}

// ListQuery holds pagination and filters for GET /equipment.
type ListQuery struct {
	Page     int
	Limit    int
	Category string
	Search   string
}

// RetailerLinkListQuery holds pagination and filters for GET /retailer-links.
type RetailerLinkListQuery struct {
	Page        int
	Limit       int
	EquipmentID int64
	RetailerID  string
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type EquipmentListResponse struct {
	Equipment  []EquipmentResponse `json:"equipment"`
	Pagination Pagination          `json:"pagination"`
}

type RetailerLinkListResponse struct {
	RetailerLinks []RetailerLinkResponse `json:"retailer_links"`
	Pagination    Pagination             `json:"pagination"`
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func newPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}
}

func requireString(errs validator.FieldErrors, field string, v *string, partial bool) {
	if errs.Has(field) {
		return
	}
	switch {
	case v == nil && !partial:
		errs.Add(field, "This field is required.")
	case v != nil && strings.TrimSpace(*v) == "":
		errs.Add(field, "This field may not be blank.")
	}
}

func requireAmount(errs validator.FieldErrors, field string, a validator.Amount, partial bool) {
	if errs.Has(field) {
		return
	}
	switch {
	case !a.Set && !partial:
		errs.Add(field, "This field is required.")
	case a.Set && a.Null:
		errs.Add(field, "This field may not be null.")
	case a.Set && a.Blank():
		errs.Add(field, "A valid number is required.")
	}
}

// parseID reads an integer id sent either as a JSON number or as a numeric
// string. The returned message is empty on success.
func parseID(raw json.RawMessage) (int64, string) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, "This field is required."
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, "A valid integer is required."
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return 0, "This field is required."
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, "A valid integer is required."
	}
	return id, ""
}

// optional returns nil for a blank string so that "" clears a column.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
