package equipment

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the owner-scoped endpoints. rg must already run
// the JWT middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)

	equipment := rg.Group("/equipment")
	{
		equipment.GET("", h.ListEquipment)
		equipment.POST("", h.CreateEquipment)
		equipment.GET("/categories", h.Categories)
		equipment.GET("/:id", h.GetEquipment)
		equipment.PUT("/:id", h.UpdateEquipment)
		equipment.PATCH("/:id", h.PatchEquipment)
		equipment.DELETE("/:id", h.DeleteEquipment)
		equipment.POST("/:id/add_retailer", h.AddRetailer)
		equipment.DELETE("/:id/remove_retailer", h.RemoveRetailer)
	}

	links := rg.Group("/retailer-links")
	{
		links.GET("", h.ListRetailerLinks)
		links.POST("", h.CreateRetailerLink)
		links.GET("/:id", h.GetRetailerLink)
		links.PUT("/:id", h.UpdateRetailerLink)
		links.PATCH("/:id", h.PatchRetailerLink)
		links.DELETE("/:id", h.DeleteRetailerLink)
	}
}
