package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spacenote-api/models"
	"spacenote-api/pkg/events"
	"spacenote-api/pkg/notify"
	"spacenote-api/repository"
	"spacenote-api/types"
)

type SpacesHandler struct {
	spacesRepo   *repository.SpacesRepository
	usersRepo    *repository.UsersRepository
	notesRepo    *repository.NotesRepository
	commentsRepo *repository.CommentsRepository
	countersRepo *repository.CountersRepository
	notifier     notify.Notifier
}

func NewSpacesHandler(spacesRepo *repository.SpacesRepository, usersRepo *repository.UsersRepository, notesRepo *repository.NotesRepository, commentsRepo *repository.CommentsRepository, countersRepo *repository.CountersRepository) *SpacesHandler {
	return &SpacesHandler{spacesRepo: spacesRepo, usersRepo: usersRepo, notesRepo: notesRepo, commentsRepo: commentsRepo, countersRepo: countersRepo}
}

func (h *SpacesHandler) WithNotifier(n notify.Notifier) *SpacesHandler {
	h.notifier = n
	return h
}

var slugRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// loadMemberSpace fetches the space by slug and verifies the caller is a
// member. On failure the response is already written and nil is returned.
func loadMemberSpace(c *gin.Context, spacesRepo *repository.SpacesRepository) *models.Space {
	space, err := spacesRepo.GetSpaceBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return nil
	}
	if space == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Space not found"))
		return nil
	}
	if !space.HasMember(c.GetString("userId")) {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "Not a member of this space"))
		return nil
	}
	return space
}

func (h *SpacesHandler) CreateSpace(c *gin.Context) {
	var req struct {
		Slug        string `json:"slug" binding:"required"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if !slugRe.MatchString(req.Slug) {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Slug may only contain lowercase letters, digits and hyphens"))
		return
	}

	userID := c.GetString("userId")
	space := &models.Space{
		ID:          uuid.NewString(),
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		Members:     []string{userID},
		Fields:      []models.SpaceField{},
		Filters:     []models.Filter{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.spacesRepo.CreateSpace(c.Request.Context(), space); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(space))
}

func (h *SpacesHandler) GetSpaces(c *gin.Context) {
	spaces, err := h.spacesRepo.GetSpacesForUser(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(spaces))
}

func (h *SpacesHandler) GetSpace(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(space))
}

// GetMembers returns the member profiles of a space.
func (h *SpacesHandler) GetMembers(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	members, err := h.usersRepo.GetUsersByIDs(c.Request.Context(), space.Members)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(members))
}

func (h *SpacesHandler) AddMember(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	user, err := h.usersRepo.GetUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "User not found"))
		return
	}
	if space.HasMember(user.ID) {
		c.JSON(http.StatusConflict, types.NewErrorResponse(types.ErrorCodeConflict, "User is already a member"))
		return
	}
	if err := h.spacesRepo.AddMember(c.Request.Context(), space.ID, user.ID); err != nil {
		respondError(c, err)
		return
	}
	if h.notifier != nil {
		h.notifier.NotifyUser(user.ID, events.MemberAdded{
			Type:    events.TypeMemberAdded,
			SpaceID: space.ID,
			AddedBy: c.GetString("userId"),
		})
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Member added"}))
}

func (h *SpacesHandler) RemoveMember(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	memberID := c.Param("userId")
	if !space.HasMember(memberID) {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "User is not a member"))
		return
	}
	if len(space.Members) == 1 {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Cannot remove the last member of a space"))
		return
	}
	if err := h.spacesRepo.RemoveMember(c.Request.Context(), space.ID, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Member removed"}))
}

// setFieldList is shared by the list-field configuration endpoints: every
// referenced field must exist in the schema or be a system field.
func (h *SpacesHandler) setFieldList(c *gin.Context, apply func(spaceID string, fieldIDs []string) error) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	var req struct {
		Fields []string `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	for _, id := range req.Fields {
		if space.GetField(id) == nil && !models.IsSystemField(id) {
			c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Unknown field: "+id))
			return
		}
	}
	if err := apply(space.ID, req.Fields); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Fields updated"}))
}

func (h *SpacesHandler) SetListFields(c *gin.Context) {
	h.setFieldList(c, func(spaceID string, fieldIDs []string) error {
		return h.spacesRepo.SetListFields(c.Request.Context(), spaceID, fieldIDs)
	})
}

func (h *SpacesHandler) SetHiddenCreateFields(c *gin.Context) {
	h.setFieldList(c, func(spaceID string, fieldIDs []string) error {
		return h.spacesRepo.SetHiddenCreateFields(c.Request.Context(), spaceID, fieldIDs)
	})
}

func (h *SpacesHandler) SetCommentEditableFields(c *gin.Context) {
	h.setFieldList(c, func(spaceID string, fieldIDs []string) error {
		return h.spacesRepo.SetCommentEditableFields(c.Request.Context(), spaceID, fieldIDs)
	})
}

func (h *SpacesHandler) SetTemplates(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	var req models.SpaceTemplates
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	if err := h.spacesRepo.SetTemplates(c.Request.Context(), space.ID, req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Templates updated"}))
}

// DeleteSpace removes the space together with its notes and comments.
func (h *SpacesHandler) DeleteSpace(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	ctx := c.Request.Context()
	noteIDs, err := h.notesRepo.NoteIDsInSpace(ctx, space.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.notesRepo.DeleteNotesInSpace(ctx, space.ID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.commentsRepo.DeleteCommentsInSpace(ctx, space.ID); err != nil {
		respondError(c, err)
		return
	}
	if err := h.countersRepo.DeleteCounters(ctx, append(noteIDs, space.ID)); err != nil {
		respondError(c, err)
		return
	}
	if err := h.spacesRepo.DeleteSpace(ctx, space.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"message": "Space deleted"}))
}
