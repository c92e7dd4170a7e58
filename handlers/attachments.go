package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"spacenote-api/initializers"
	"spacenote-api/models"
	"spacenote-api/repository"
	"spacenote-api/types"
)

type AttachmentsHandler struct {
	attachmentsRepo *repository.AttachmentsRepository
	spacesRepo      *repository.SpacesRepository
	countersRepo    *repository.CountersRepository
}

func NewAttachmentsHandler(attachmentsRepo *repository.AttachmentsRepository, spacesRepo *repository.SpacesRepository, countersRepo *repository.CountersRepository) *AttachmentsHandler {
	return &AttachmentsHandler{attachmentsRepo: attachmentsRepo, spacesRepo: spacesRepo, countersRepo: countersRepo}
}

// UploadFile stores an uploaded file in object storage and records its
// metadata. The MIME type is detected from content, never trusted from the
// client header.
func (h *AttachmentsHandler) UploadFile(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}

	// Limit request body size before reading multipart data
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, initializers.Conf.MaxSize)

	file, err := c.FormFile("file")
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, types.NewErrorResponse(types.ErrorCodeValidation, "file size exceeds the limit"))
			return
		}
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "file is required"))
		return
	}

	sniff, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "cannot open uploaded file"))
		return
	}
	mt, err := mimetype.DetectReader(sniff)
	_ = sniff.Close()
	if err != nil || mt == nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "failed to detect file type"))
		return
	}
	contentType := strings.Split(mt.String(), ";")[0]

	if err := initializers.CheckFileAllowed(file.Size, contentType); err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, err.Error()))
		return
	}

	number, err := h.countersRepo.NextSeq(c.Request.Context(), space.ID, models.CounterAttachment)
	if err != nil {
		respondError(c, err)
		return
	}

	attachment := &models.Attachment{
		ID:          uuid.NewString(),
		SpaceID:     space.ID,
		UserID:      c.GetString("userId"),
		Number:      number,
		Filename:    file.Filename,
		ContentType: contentType,
		Size:        file.Size,
		ObjectKey:   space.ID + "/" + uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrorCodeValidation, "cannot open uploaded file"))
		return
	}
	defer src.Close()
	_, err = initializers.MinioClient.PutObject(c.Request.Context(), initializers.Conf.Bucket,
		attachment.ObjectKey, src, file.Size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}

	if err := h.attachmentsRepo.CreateAttachment(c.Request.Context(), attachment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(attachment))
}

func (h *AttachmentsHandler) ListAttachments(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	p := types.ParsePaginationParams(c)
	attachments, total, err := h.attachmentsRepo.ListAttachments(c.Request.Context(), space.ID,
		int64(p.PageSize), int64(p.Offset))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(p.BuildResponse(attachments, int(total))))
}

// GetAttachment returns attachment metadata plus a presigned download URL.
func (h *AttachmentsHandler) GetAttachment(c *gin.Context) {
	space := loadMemberSpace(c, h.spacesRepo)
	if space == nil {
		return
	}
	attachment, err := h.attachmentsRepo.GetAttachmentByID(c.Request.Context(), c.Param("attachmentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if attachment == nil || attachment.SpaceID != space.ID {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrorCodeNotFound, "Attachment not found"))
		return
	}

	url, err := initializers.GenerateAttachmentURL(attachment.ObjectKey, attachment.Filename)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.NewErrorResponse(types.ErrorCodeInternal, err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"attachment": attachment,
		"url":        url,
	}))
}
