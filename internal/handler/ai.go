package handler

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"question-bank/internal/ai"
	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AIHandler runs document extraction jobs against the model provider
// and records each attempt as an AILog row.
type AIHandler struct {
	DB        *gorm.DB
	Client    *ai.Client
	Storage   *StorageHandler
	RateLimit int
}

func NewAIHandler(db *gorm.DB, client *ai.Client, storage *StorageHandler, rateLimit int) *AIHandler {
	if rateLimit <= 0 {
		rateLimit = 5
	}
	return &AIHandler{DB: db, Client: client, Storage: storage, RateLimit: rateLimit}
}

type extractReq struct {
	FilePath  string `json:"file_path" binding:"required"`
	FileName  string `json:"file_name" binding:"required"`
	FileSize  int64  `json:"file_size"`
	Prompt    string `json:"prompt"`
	IsPrivate bool   `json:"is_private"`
}

// Extract turns a staged document into question suggestions. Rate
// limited per user over the last minute (admins exempt). The provider
// failing degrades to placeholder questions rather than an error; the
// AILog row records what actually happened.
func (h *AIHandler) Extract(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.Role != models.RoleAdmin {
		since := time.Now().Add(-time.Minute)
		var recent int64
		if err := h.DB.Model(&models.AILog{}).
			Where("user_id = ? AND created_at >= ?", user.ID, since).
			Count(&recent).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to evaluate AI quota")
			return
		}
		if recent >= int64(h.RateLimit) {
			util.Error(c, http.StatusTooManyRequests, util.CodeRateLimited, "AI rate limit exceeded, please retry shortly")
			return
		}
	}

	var req extractReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file_path and file_name are required")
		return
	}

	if user.Role == models.RoleUser && !strings.HasPrefix(req.FilePath, user.ID+"/") {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "forbidden")
		return
	}

	data, err := h.Storage.ReadStaged(req.FilePath)
	if err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeUpstreamErr, "unable to read staged file from storage")
		return
	}

	start := time.Now()
	status := models.AIStatusSuccess
	var errMessage string

	questions, err := h.Client.Extract(c.Request.Context(), req.Prompt, req.FileName, data)
	if err != nil {
		status = models.AIStatusFailed
		errMessage = err.Error()
		questions = ai.FallbackQuestions(req.FileName)
	}
	latency := time.Since(start).Milliseconds()

	logEntry := models.AILog{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		FilePath:  req.FilePath,
		Status:    status,
		LatencyMS: latency,
		Metadata: models.JSONMap{
			"fileName": req.FileName,
			"fileSize": req.FileSize,
		},
	}
	if errMessage != "" {
		logEntry.Metadata["error"] = errMessage
	}
	// a failed log write must not lose the extraction result
	_ = h.DB.Create(&logEntry).Error

	base := strings.TrimSuffix(req.FileName, filepath.Ext(req.FileName))
	util.Success(c, util.Response{
		"questions": questions,
		"metadata": gin.H{
			"latency_ms":         latency,
			"suggested_set_name": base + " " + time.Now().Format("2006"),
			"is_private":         req.IsPrivate,
			"job_id":             logEntry.ID,
		},
	})
}

// Status looks one extraction job up by id. Plain users only see their
// own jobs.
func (h *AIHandler) Status(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	jobID := c.Query("job_id")
	if jobID == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "job_id is required")
		return
	}

	var logEntry models.AILog
	if err := h.DB.First(&logEntry, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "job not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load job")
		}
		return
	}

	if user.Role == models.RoleUser && logEntry.UserID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "forbidden")
		return
	}

	util.Success(c, util.Response{
		"job": gin.H{
			"id":         logEntry.ID,
			"status":     logEntry.Status,
			"latency_ms": logEntry.LatencyMS,
			"file_path":  logEntry.FilePath,
			"metadata":   logEntry.Metadata,
			"created_at": logEntry.CreatedAt,
		},
	})
}
