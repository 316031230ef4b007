package equipment

import (
	"time"

	"gearlog/internal/domain"
)

const dateLayout = "2006-01-02"

type OwnerSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RetailerLinkResponse struct {
	ID            int64   `json:"id"`
	EquipmentID   int64   `json:"equipment_id"`
	RetailerID    string  `json:"retailer_id"`
	Price         string  `json:"price"`
	URL           string  `json:"url"`
	AffiliateCode *string `json:"affiliate_code"`
}

type EquipmentResponse struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name"`
	Category         string                 `json:"category"`
	Price            *string                `json:"price"`
	Description      *string                `json:"description"`
	Image            *string                `json:"image"`
	PurchaseDate     *string                `json:"purchase_date"`
	PurchaseLocation *string                `json:"purchase_location"`
	Link             *string                `json:"link"`
	User             *OwnerSummary          `json:"user"`
	Retailers        []RetailerLinkResponse `json:"retailers"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func ToOwnerSummary(u *domain.User) *OwnerSummary {
	if u == nil {
		return nil
	}
	return &OwnerSummary{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func ToRetailerLinkResponse(l *domain.RetailerLink) RetailerLinkResponse {
	return RetailerLinkResponse{
		ID:            l.ID,
		EquipmentID:   l.EquipmentID,
		RetailerID:    l.RetailerID,
		Price:         l.Price.StringFixed(2),
		URL:           l.URL,
		AffiliateCode: l.AffiliateCode,
	}
}

func ToEquipmentResponse(e *domain.Equipment) EquipmentResponse {
	resp := EquipmentResponse{
		ID:               e.ID,
		Name:             e.Name,
		Category:         e.Category,
		Description:      e.Description,
		Image:            e.Image,
		PurchaseLocation: e.PurchaseLocation,
		Link:             e.Link,
		User:             ToOwnerSummary(e.Owner),
		Retailers:        make([]RetailerLinkResponse, 0, len(e.Retailers)),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}

	if e.Price.Valid {
		p := e.Price.Decimal.StringFixed(2)
		resp.Price = &p
	}
	if e.PurchaseDate != nil {
		d := e.PurchaseDate.Format(dateLayout)
		resp.PurchaseDate = &d
	}
	for i := range e.Retailers {
		resp.Retailers = append(resp.Retailers, ToRetailerLinkResponse(&e.Retailers[i]))
	}

	return resp
}

func toEquipmentResponses(items []domain.Equipment) []EquipmentResponse {
	out := make([]EquipmentResponse, 0, len(items))
	for i := range items {
		out = append(out, ToEquipmentResponse(&items[i]))
	}
	return out
}

func toRetailerLinkResponses(items []domain.RetailerLink) []RetailerLinkResponse {
	out := make([]RetailerLinkResponse, 0, len(items))
	for i := range items {
		out = append(out, ToRetailerLinkResponse(&items[i]))
	}
	return out
}
