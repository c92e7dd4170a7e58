package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacenote-api/fields"
	"spacenote-api/models"
	"spacenote-api/repository"
	"spacenote-api/types"
)

type FieldsHandler struct {
	spacesRepo *repository.SpacesRepository
	usersRepo  *repository.UsersRepository
	notesRepo  *repository.NotesRepository
	registry   *fields.Registry
}

func NewFieldsHandler(spacesRepo *repository.SpacesRepository, usersRepo *repository.UsersRepository, notesRepo *repository.NotesRepository, registry *fields.Registry) *FieldsHandler {
	return &FieldsHandler{spacesRepo: spacesRepo, usersRepo: usersRepo, notesRepo: notesRepo, registry: registry}
}

// AddField validates a field definition and appends it to the space schema.
func (h *FieldsHandler) AddField(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	var field models.SpaceField
	if err := c.ShouldBindJSON(&field); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if space.GetField(field.ID) != nil || models.IsSystemField(field.ID) {
		c.JSON(http.StatusConflict, types.NewErrorResponse(types.ErrorCodeConflict, "Field id is already in use: "+field.ID))
		return
	}

	members, err := h.usersRepo.GetUsersByIDs(c.Request.Context(), space.Members)
	if err != nil {
		respondError(c, err)
		return
	}
	validated, err := h.registry.ValidateDefinition(field, fields.Context{
		Space:         space,
		Members:       members,
		CurrentUserID: c.GetString("userId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.spacesRepo.AddField(c.Request.Context(), space.ID, validated); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(validated))
}

// RemoveField deletes a field from the schema unless existing notes still
// carry values for it.
func (h *FieldsHandler) RemoveField(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	fieldID := c.Param("fieldId")
	if space.GetField(fieldID) == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Field not found: "+fieldID))
		return
	}

	inUse, err := h.notesRepo.FieldInUse(c.Request.Context(), space.ID, fieldID)
	if err != nil {
		respondError(c, err)
		return
	}
	if inUse {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation,
			"Cannot delete field '"+fieldID+"': existing notes still have values for it"))
		return
	}

	if err := h.spacesRepo.RemoveField(c.Request.Context(), space.ID, fieldID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Field removed"}))
}

// GetFieldTypes lists the supported field types and the filter operators
// valid for each.
func (h *FieldsHandler) GetFieldTypes(c *gin.Context) {
	result := make(map[models.FieldType][]models.FilterOperator, len(models.FieldTypeOperators))
	for fieldType := range models.FieldTypeOperators {
		result[fieldType] = models.OperatorsForFieldType(fieldType)
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(result))
}
