package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spacenote-api/errs"
	"spacenote-api/fields"
	"spacenote-api/models"
	"spacenote-api/pkg/events"
	"spacenote-api/pkg/notify"
	"spacenote-api/repository"
	"spacenote-api/types"
)

type CommentsHandler struct {
	commentsRepo *repository.CommentsRepository
	notesRepo    *repository.NotesRepository
	spacesRepo   *repository.SpacesRepository
	usersRepo    *repository.UsersRepository
	countersRepo *repository.CountersRepository
	registry     *fields.Registry
	notifier     notify.Notifier
}

func NewCommentsHandler(commentsRepo *repository.CommentsRepository, notesRepo *repository.NotesRepository, spacesRepo *repository.SpacesRepository, usersRepo *repository.UsersRepository, countersRepo *repository.CountersRepository, registry *fields.Registry) *CommentsHandler {
	return &CommentsHandler{
		commentsRepo: commentsRepo,
		notesRepo:    notesRepo,
		spacesRepo:   spacesRepo,
		usersRepo:    usersRepo,
		countersRepo: countersRepo,
		registry:     registry,
	}
}

func (h *CommentsHandler) WithNotifier(n notify.Notifier) *CommentsHandler {
	h.notifier = n
	return h
}

func (h *CommentsHandler) loadNote(c *gin.Context) (*models.Space, *models.Note) {
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

func (h *CommentsHandler) CreateComment(c *gin.Context) {
	space, note := h.loadNote(c)
	if note == nil {
		return
	}
	var req struct {
		Content  string            `json:"content" binding:"required"`
		ParentID string            `json:"parent_id"`
		Fields   map[string]string `json:"fields"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	// a comment may carry note field updates, restricted to the fields the
	// space marks comment-editable
	if len(req.Fields) > 0 {
		if err := h.applyFieldEdits(c, space, note, req.Fields); err != nil {
			respondError(c, err)
			return
		}
	}

	number, err := h.countersRepo.NextSeq(c.Request.Context(), note.ID, models.CounterComment)
	if err != nil {
		respondError(c, err)
		return
	}
	comment := &models.Comment{
		ID:        uuid.NewString(),
		NoteID:    note.ID,
		SpaceID:   space.ID,
		UserID:    c.GetString("userId"),
		Number:    number,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
		ParentID:  req.ParentID,
	}
	if err := h.commentsRepo.CreateComment(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}

	if h.notifier != nil {
		event := events.CommentEvent{
			Type:          events.TypeCommentCreated,
			SpaceID:       space.ID,
			NoteNumber:    note.Number,
			CommentNumber: comment.Number,
			UserID:        comment.UserID,
		}
		for _, memberID := range space.Members {
			if memberID != comment.UserID {
				h.notifier.NotifyUser(memberID, event)
			}
		}
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(comment))
}

// applyFieldEdits validates and applies note field updates carried on a
// comment. Every touched field must be listed in the space's
// comment_editable_fields setting.
func (h *CommentsHandler) applyFieldEdits(c *gin.Context, space *models.Space, note *models.Note, raw map[string]string) error {
	editable := make(map[string]bool, len(space.CommentEditableFields))
	for _, id := range space.CommentEditableFields {
		editable[id] = true
	}
	for id := range raw {
		if !editable[id] {
			return errs.Validationf("Field '%s' is not editable from comments", id)
		}
	}

	members, err := h.usersRepo.GetUsersByIDs(c.Request.Context(), space.Members)
	if err != nil {
		return err
	}
	parsed, err := h.registry.ParseRawFields(space.Fields, raw, fields.Context{
		Space:         space,
		Members:       members,
		CurrentUserID: c.GetString("userId"),
	}, true)
	if err != nil {
		return err
	}
	return h.notesRepo.UpdateNoteFields(c.Request.Context(), note.ID, parsed, time.Now().UTC())
}

func (h *CommentsHandler) ListComments(c *gin.Context) {
	_, note := h.loadNote(c)
	if note == nil {
		return
	}
	p := types.ParsePaginationParams(c)
	comments, total, err := h.commentsRepo.ListComments(c.Request.Context(), note.ID,
		int64(p.PageSize), int64(p.Offset))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(p.BuildResponse(comments, int(total))))
}

// UpdateComment edits a comment's content. Only the author may edit.
func (h *CommentsHandler) UpdateComment(c *gin.Context) {
	_, note := h.loadNote(c)
	if note == nil {
		return
	}
	commentNumber, err := strconv.ParseInt(c.Param("commentNumber"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "Invalid comment number"))
		return
	}
	comment, err := h.commentsRepo.GetCommentByNumber(c.Request.Context(), note.ID, commentNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	if comment == nil {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Comment not found"))
		return
	}
	if comment.UserID != c.GetString("userId") {
		c.JSON(http.StatusForbidden, types.NewErrorResponse(types.ErrorCodeForbidden, "Only the author can edit a comment"))
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}
	editedAt := time.Now().UTC()
	if err := h.commentsRepo.UpdateCommentContent(c.Request.Context(), comment.ID, req.Content, editedAt); err != nil {
		respondError(c, err)
		return
	}
	comment.Content = req.Content
	comment.EditedAt = &editedAt
	c.JSON(http.StatusOK, types.NewSuccessResponse(comment))
}
