package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacenote-api/filters"
	"spacenote-api/models"
	"spacenote-api/repository"
	"spacenote-api/types"
)

type FiltersHandler struct {
	spacesRepo *repository.SpacesRepository
}

func NewFiltersHandler(spacesRepo *repository.SpacesRepository) *FiltersHandler {
	return &FiltersHandler{spacesRepo: spacesRepo}
}

func (h *FiltersHandler) GetFilters(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(space.Filters))
}

// AddFilter validates a saved filter against the space schema and attaches
// it to the space.
func (h *FiltersHandler) AddFilter(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	var filter models.Filter
	if err := c.ShouldBindJSON(&filter); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if space.GetFilter(filter.ID) != nil {
		c.JSON(http.StatusConflict, types.NewErrorResponse(types.ErrorCodeConflict, "Filter id is already in use: "+filter.ID))
		return
	}
	if err := filters.ValidateFilter(&filter, space); err != nil {
		respondError(c, err)
		return
	}

	if err := h.spacesRepo.AddFilter(c.Request.Context(), space.ID, filter); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(filter))
}

func (h *FiltersHandler) RemoveFilter(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	filterID := c.Param("filterId")
	if space.GetFilter(filterID) == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Filter not found: "+filterID))
		return
	}
	if err := h.spacesRepo.RemoveFilter(c.Request.Context(), space.ID, filterID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Filter removed"}))
}
