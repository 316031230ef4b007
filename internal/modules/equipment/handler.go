package equipment

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"gearlog/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me handles GET /api/v1/me
func (h *Handler) Me(c *gin.Context) {
	me, err := h.service.Me(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": me})
}

// ListEquipment handles GET /api/v1/equipment
func (h *Handler) ListEquipment(c *gin.Context) {
	q := ListQuery{
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	list, err := h.service.ListEquipment(c.Request.Context(), c.GetInt64("user_id"), q)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

// CreateEquipment handles POST /api/v1/equipment
func (h *Handler) CreateEquipment(c *gin.Context) {
	var req EquipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.service.CreateEquipment(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"equipment": e})
}

// GetEquipment handles GET /api/v1/equipment/:id
func (h *Handler) GetEquipment(c *gin.Context) {
	id, ok := paramID(c, "Invalid equipment ID")
	if !ok {
		return
	}

	e, err := h.service.GetEquipment(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

// UpdateEquipment handles PUT /api/v1/equipment/:id
func (h *Handler) UpdateEquipment(c *gin.Context) {
	h.updateEquipment(c, false)
}

// PatchEquipment handles PATCH /api/v1/equipment/:id
func (h *Handler) PatchEquipment(c *gin.Context) {
	h.updateEquipment(c, true)
}

func (h *Handler) updateEquipment(c *gin.Context, partial bool) {
	id, ok := paramID(c, "Invalid equipment ID")
	if !ok {
		return
	}

	var req EquipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.service.UpdateEquipment(c.Request.Context(), c.GetInt64("user_id"), id, req, partial)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": e})
}

// DeleteEquipment handles DELETE /api/v1/equipment/:id
func (h *Handler) DeleteEquipment(c *gin.Context) {
	id, ok := paramID(c, "Invalid equipment ID")
	if !ok {
		return
	}

	if err := h.service.DeleteEquipment(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddRetailer handles POST /api/v1/equipment/:id/add_retailer
func (h *Handler) AddRetailer(c *gin.Context) {
	id, ok := paramID(c, "Invalid equipment ID")
	if !ok {
		return
	}

	var req RetailerLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	link, err := h.service.AddRetailer(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"retailer_link": link})
}

// RemoveRetailer handles DELETE /api/v1/equipment/:id/remove_retailer
func (h *Handler) RemoveRetailer(c *gin.Context) {
	id, ok := paramID(c, "Invalid equipment ID")
	if !ok {
		return
	}

	var req RemoveRetailerRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.RemoveRetailer(c.Request.Context(), c.GetInt64("user_id"), id, req); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Categories handles GET /api/v1/equipment/categories
func (h *Handler) Categories(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"categories": h.service.Categories()})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data", verr.Fields)
	case errors.Is(err, ErrAuthenticationRequired):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, ErrEquipmentNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Equipment not found")
	case errors.Is(err, ErrRetailerLinkNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Retailer link not found")
	default:
		// logged once by middleware.ErrorLogger
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// bindJSON decodes the body into dst. An empty body decodes to the zero
// value so that missing fields are reported by validation instead.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Malformed JSON body")
		return false
	}
	return true
}

func paramID(c *gin.Context, message string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", message)
		return 0, false
	}
	return id, true
}

// queryInt returns 0 for a missing or malformed value; callers apply defaults.
func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
