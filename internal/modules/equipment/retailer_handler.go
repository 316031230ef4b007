package equipment

import (
	"net/http"
	"strconv"

	"gearlog/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ListRetailerLinks handles GET /api/v1/retailer-links
func (h *Handler) ListRetailerLinks(c *gin.Context) {
	q := RetailerLinkListQuery{
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
		RetailerID: c.Query("retailer_id"),
	}
	if raw := c.Query("equipment_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid equipment ID")
			return
		}
		q.EquipmentID = id
	}

	list, err := h.service.ListRetailerLinks(c.Request.Context(), c.GetInt64("user_id"), q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// CreateRetailerLink handles POST /api/v1/retailer-links
func (h *Handler) CreateRetailerLink(c *gin.Context) {
	var req RetailerLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.service.CreateRetailerLink(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"retailer_link": link})
}

// GetRetailerLink handles GET /api/v1/retailer-links/:id
func (h *Handler) GetRetailerLink(c *gin.Context) {
	id, ok := paramID(c, "Invalid retailer link ID")
	if !ok {
		return
	}

	link, err := h.service.GetRetailerLink(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"retailer_link": link})
}

// UpdateRetailerLink handles PUT /api/v1/retailer-links/:id
func (h *Handler) UpdateRetailerLink(c *gin.Context) {
	h.updateRetailerLink(c, false)
}

// PatchRetailerLink handles PATCH /api/v1/retailer-links/:id
func (h *Handler) PatchRetailerLink(c *gin.Context) {
	h.updateRetailerLink(c, true)
}

func (h *Handler) updateRetailerLink(c *gin.Context, partial bool) {
	id, ok := paramID(c, "Invalid retailer link ID")
	if !ok {
		return
	}

	var req RetailerLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.service.UpdateRetailerLink(c.Request.Context(), c.GetInt64("user_id"), id, req, partial)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"retailer_link": link})
}

// DeleteRetailerLink handles DELETE /api/v1/retailer-links/:id
func (h *Handler) DeleteRetailerLink(c *gin.Context) {
	id, ok := paramID(c, "Invalid retailer link ID")
	if !ok {
		return
	}

	if err := h.service.DeleteRetailerLink(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
