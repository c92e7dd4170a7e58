package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spacenote-api/fields"
	"spacenote-api/filters"
	"spacenote-api/models"
	"spacenote-api/pkg/events"
	"spacenote-api/pkg/notify"
	"spacenote-api/repository"
	"spacenote-api/types"
)

type NotesHandler struct {
	notesRepo    *repository.NotesRepository
	spacesRepo   *repository.SpacesRepository
	usersRepo    *repository.UsersRepository
	commentsRepo *repository.CommentsRepository
	countersRepo *repository.CountersRepository
	registry     *fields.Registry
	notifier     notify.Notifier
}

func NewNotesHandler(notesRepo *repository.NotesRepository, spacesRepo *repository.SpacesRepository, usersRepo *repository.UsersRepository, commentsRepo *repository.CommentsRepository, countersRepo *repository.CountersRepository, registry *fields.Registry) *NotesHandler {
	return &NotesHandler{
		notesRepo:    notesRepo,
		spacesRepo:   spacesRepo,
		usersRepo:    usersRepo,
		commentsRepo: commentsRepo,
		countersRepo: countersRepo,
		registry:     registry,
	}
}

func (h *NotesHandler) WithNotifier(n notify.Notifier) *NotesHandler {
	h.notifier = n
	return h
}

func (h *NotesHandler) fieldContext(c *gin.Context, space *models.Space) (fields.Context, error) {
	members, err := h.usersRepo.GetUsersByIDs(c.Request.Context(), space.Members)
	if err != nil {
		return fields.Context{}, err
	}
	return fields.Context{
		Space:         space,
		Members:       members,
		CurrentUserID: c.GetString("userId"),
	}, nil
}

func (h *NotesHandler) CreateNote(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	var req struct {
		Fields map[string]string `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	fieldCtx, err := h.fieldContext(c, space)
	if err != nil {
		respondError(c, err)
		return
	}
	parsed, err := h.registry.ParseRawFields(space.Fields, req.Fields, fieldCtx, false)
	if err != nil {
		respondError(c, err)
		return
	}

	number, err := h.countersRepo.NextSeq(c.Request.Context(), space.ID, models.CounterNote)
	if err != nil {
		respondError(c, err)
		return
	}
	note := &models.Note{
		ID:        uuid.NewString(),
		SpaceID:   space.ID,
		Number:    number,
		UserID:    c.GetString("userId"),
		CreatedAt: time.Now().UTC(),
		Fields:    parsed,
	}
	if err := h.notesRepo.CreateNote(c.Request.Context(), note); err != nil {
		respondError(c, err)
		return
	}

	h.notifyMembers(space, note.UserID, events.NoteEvent{
		Type:       events.TypeNoteCreated,
		SpaceID:    space.ID,
		NoteNumber: note.Number,
		UserID:     note.UserID,
	})
	c.JSON(http.StatusCreated, types.NewSuccessResponse(note))
}

func (h *NotesHandler) GetNote(c *gin.Context) {
	_, note := h.loadNote(c)
	if note == nil {
		return
	}
	count, err := h.commentsRepo.CountCommentsForNote(c.Request.Context(), note.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"note":          note,
		"comment_count": count,
	}))
}

// UpdateNote validates and applies a partial update of a note's fields.
func (h *NotesHandler) UpdateNote(c *gin.Context) {
	space, note := h.loadNote(c)
	if note == nil {
		return
	}
	var req struct {
		Fields map[string]string `json:"fields" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	fieldCtx, err := h.fieldContext(c, space)
	if err != nil {
		respondError(c, err)
		return
	}
	parsed, err := h.registry.ParseRawFields(space.Fields, req.Fields, fieldCtx, true)
	if err != nil {
		respondError(c, err)
		return
	}

	editedAt := time.Now().UTC()
	if err := h.notesRepo.UpdateNoteFields(c.Request.Context(), note.ID, parsed, editedAt); err != nil {
		respondError(c, err)
		return
	}
	for id, value := range parsed {
		note.Fields[id] = value
	}
	note.EditedAt = &editedAt

	h.notifyMembers(space, c.GetString("userId"), events.NoteEvent{
		Type:       events.TypeNoteUpdated,
		SpaceID:    space.ID,
		NoteNumber: note.Number,
		UserID:     c.GetString("userId"),
	})
	c.JSON(http.StatusOK, types.NewSuccessResponse(note))
}

// ListNotes runs the saved filter and/or ad-hoc query against the space.
// Query params: filterId (saved filter), q (ad-hoc grammar), page, pageSize.
func (h *NotesHandler) ListNotes(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	userID := c.GetString("userId")

	var conditions []models.FilterCondition
	var sortFields []string
	if filterID := c.Query("filterId"); filterID != "" {
		filter := space.GetFilter(filterID)
		if filter == nil {
			c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Filter not found: "+filterID))
			return
		}
		conditions = filter.Conditions
		sortFields = filter.Sort
	}

	query, err := filters.BuildQuery(conditions, space, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if adhoc := c.Query("q"); adhoc != "" {
		members, err := h.usersRepo.GetUsersByIDs(c.Request.Context(), space.Members)
		if err != nil {
			respondError(c, err)
			return
		}
		adhocConditions, err := filters.ParseAdhocQuery(adhoc, space, members)
		if err != nil {
			respondError(c, err)
			return
		}
		adhocQuery, err := filters.BuildQuery(adhocConditions, space, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		// the base query already carries the space scope
		delete(adhocQuery, "space_id")
		query = filters.MergeQueries(query, adhocQuery)
	}

	p := types.ParsePaginationParams(c)
	notes, total, err := h.notesRepo.ListNotes(c.Request.Context(), query,
		filters.BuildSort(sortFields), int64(p.PageSize), int64(p.Offset))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(p.BuildResponse(notes, int(total))))
}

// loadNote resolves the :number path param within the member-checked space.
func (h *NotesHandler) loadNote(c *gin.Context) (*models.Space, *models.Note) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return nil, nil
	}
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid note number"))
		return nil, nil
	}
	note, err := h.notesRepo.GetNoteByNumber(c.Request.Context(), space.ID, number)
	if err != nil {
		respondError(c, err)
		return nil, nil
	}
	if note == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Note not found"))
		return nil, nil
	}
	return space, note
}

// notifyMembers pushes an event to every member except the actor.
func (h *NotesHandler) notifyMembers(space *models.Space, actorID string, event any) {
	if h.notifier == nil {
		return
	}
	for _, memberID := range space.Members {
		if memberID != actorID {
			h.notifier.NotifyUser(memberID, event)
		}
	}
}
