// infrastructure/gin_handlers.go
package infrastructure

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vitovidale/video-recognition-service/domain"
	"github.com/vitovidale/video-recognition-service/usecase"
)

type VideoHandlers struct {
	UploadVideoUC    *usecase.UploadVideoUseCase
	RecognizeVideoUC *usecase.RecognizeVideoUseCase
	ProcessVideoUC   *usecase.ProcessVideoUseCase
	StatusUC         *usecase.StatusUseCase
	RecognitionJobUC *usecase.RecognitionJobUseCase
	Repo             domain.ResultRepository
	Logger           *zap.Logger
}

type recognizeRequest struct {
	Reference string `json:"reference" binding:"required"`
	Prompt    string `json:"prompt"`
}

func (h *VideoHandlers) UploadVideoHandler(c *gin.Context) {
	file, ok := h.mediaFile(c)
	if !ok {
		return
	}
	outcome, err := h.UploadVideoUC.Execute(c.Request.Context(), usecase.UploadVideoInput{File: file})
	if err != nil {
		c.JSON(statusForKind(outcome.ErrorKind), outcome)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *VideoHandlers) ProcessVideoHandler(c *gin.Context) {
	file, ok := h.mediaFile(c)
	if !ok {
		return
	}
	opts := domain.ProcessOptions{Prompt: c.PostForm("prompt")}
	if raw, set := c.GetPostForm("enable_ai"); set && raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid enable_ai value: %q", raw)})
			return
		}
		opts.EnableAI = &enabled
	}

	result := h.ProcessVideoUC.Execute(c.Request.Context(), file, opts)
	if !result.Success {
		c.JSON(statusForKind(result.ErrorKind), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *VideoHandlers) RecognizeVideoHandler(c *gin.Context) {
	var req recognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	outcome := h.RecognizeVideoUC.Execute(c.Request.Context(), req.Reference, req.Prompt)
	if !outcome.Success {
		c.JSON(statusForKind(outcome.ErrorKind), outcome)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *VideoHandlers) RecognizeAsyncHandler(c *gin.Context) {
	var req recognizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}
	if h.RecognitionJobUC == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": usecase.ErrQueueUnavailable.Error()})
		return
	}
	owner := OwnerFromContext(c.Request.Context())
	job, err := h.RecognitionJobUC.Enqueue(c.Request.Context(), owner, req.Reference, req.Prompt)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, usecase.ErrQueueUnavailable):
			status = http.StatusServiceUnavailable
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
		}
		h.logger().Error("failed to queue recognition job", zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, job)
}

func (h *VideoHandlers) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.StatusUC.Check())
}

func (h *VideoHandlers) FormatsHandler(c *gin.Context) {
	v := h.StatusUC.Validator
	c.JSON(http.StatusOK, gin.H{
		"formats":     v.SupportedFormats,
		"max_size":    v.MaxSize,
		"max_size_mb": v.MaxSizeMB(),
	})
}

func (h *VideoHandlers) HistoryHandler(c *gin.Context) {
	if h.Repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "result history not configured"})
		return
	}
	owner := OwnerFromContext(c.Request.Context())
	records, err := h.Repo.FindByOwner(c.Request.Context(), owner)
	if err != nil {
		h.logger().Error("failed to list video results", zap.String("owner", owner), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list video results"})
		return
	}
	if records == nil {
		records = []domain.ProcessingRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner, "results": records})
}

func (h *VideoHandlers) mediaFile(c *gin.Context) (domain.MediaFile, bool) {
	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to get video file: %v", err)})
		return domain.MediaFile{}, false
	}
	return MediaFileFromHeader(fileHeader), true
}

func (h *VideoHandlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// MediaFileFromHeader adapts an uploaded multipart file.
func MediaFileFromHeader(fh *multipart.FileHeader) domain.MediaFile {
	return domain.MediaFile{
		Name:     fh.Filename,
		Size:     fh.Size,
		MIMEType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNoCapability, domain.KindCapabilityUnavailable:
		return http.StatusServiceUnavailable
	case domain.KindUploadExhausted, domain.KindRecognition:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
