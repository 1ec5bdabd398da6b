package handler

import (
	"net/http"

	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SetHandler covers question-set management: create, list, duplicate,
// merge, share and batch import of extracted questions.
type SetHandler struct {
	DB *gorm.DB
}

func NewSetHandler(db *gorm.DB) *SetHandler {
	return &SetHandler{DB: db}
}

func setJSON(s *models.QuestionSet, questionCount int64) gin.H {
	return gin.H{
		"id":             s.ID,
		"name":           s.Name,
		"tags":           s.Tags,
		"is_private":     s.IsPrivate,
		"creator_id":     s.CreatorID,
		"created_at":     s.CreatedAt,
		"updated_at":     s.UpdatedAt,
		"question_count": questionCount,
	}
}

type createSetReq struct {
	Name      string   `json:"name" binding:"required"`
	IsPrivate *bool    `json:"is_private"`
	Tags      []string `json:"tags"`
}

// Create inserts an empty set owned by the caller.
func (h *SetHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createSetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	isPrivate := true
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}

	set := models.QuestionSet{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Tags:      req.Tags,
		IsPrivate: isPrivate,
		CreatorID: user.ID,
	}
	if err := h.DB.Create(&set).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to create set")
		return
	}

	util.Success(c, util.Response{"set": setJSON(&set, 0)})
}

// List returns sets visible to the caller (public plus own for plain
// users) with their question counts, newest first.
func (h *SetHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	q := h.DB.Model(&models.QuestionSet{}).Order("created_at DESC")
	if user.Role == models.RoleUser {
		q = q.Where("is_private = ? OR creator_id = ?", false, user.ID)
	}

	var sets []models.QuestionSet
	if err := q.Find(&sets).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to fetch question sets")
		return
	}

	items := make([]gin.H, 0, len(sets))
	for i := range sets {
		var count int64
		if err := h.DB.Model(&models.Question{}).
			Where("question_set_id = ?", sets[i].ID).
			Count(&count).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to fetch question sets")
			return
		}
		items = append(items, setJSON(&sets[i], count))
	}

	util.Success(c, util.Response{"items": items})
}

// Duplicate copies a set and all of its questions under the caller's
// ownership. Plain users may only duplicate their own sets.
func (h *SetHandler) Duplicate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	setID := c.Param("id")
	var set models.QuestionSet
	if err := h.DB.First(&set, "id = ?", setID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "question set not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load question set")
		}
		return
	}

	if user.Role == models.RoleUser && set.CreatorID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "you cannot duplicate this set")
		return
	}

	newSet := models.QuestionSet{
		ID:        uuid.New().String(),
		Name:      set.Name + " (Copy)",
		Tags:      set.Tags,
		IsPrivate: set.IsPrivate,
		CreatorID: user.ID,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newSet).Error; err != nil {
			return err
		}

		var questions []models.Question
		if err := tx.Find(&questions, "question_set_id = ?", setID).Error; err != nil {
			return err
		}
		for i := range questions {
			q := questions[i]
			q.ID = uuid.New().String()
			q.CreatorID = user.ID
			q.QuestionSetID = &newSet.ID
			q.IsPrivate = set.IsPrivate
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to duplicate set")
		return
	}

	util.Success(c, util.Response{"set": setJSON(&newSet, 0)})
}

type mergeReq struct {
	TargetSetID string `json:"target_set_id" binding:"required"`
	SourceSetID string `json:"source_set_id" binding:"required"`
}

// Merge reassigns every question of the source set onto the target set.
// Moderator and admin only (route group).
func (h *SetHandler) Merge(c *gin.Context) {
	var req mergeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "target_set_id and source_set_id are required")
		return
	}

	if err := h.DB.Model(&models.Question{}).
		Where("question_set_id = ?", req.SourceSetID).
		Update("question_set_id", req.TargetSetID).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to merge question sets")
		return
	}

	util.Success(c, util.Response{"success": true})
}

type shareReq struct {
	Email string `json:"email" binding:"required"`
}

// Share records a set being shared to an email address; when the
// address belongs to a known profile, the recipient id is resolved.
// Moderator and admin only (route group).
func (h *SetHandler) Share(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	setID := c.Param("id")
	var req shareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email is required")
		return
	}

	var count int64
	if err := h.DB.Model(&models.QuestionSet{}).Where("id = ?", setID).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load question set")
		return
	}
	if count == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "question set not found")
		return
	}

	var recipientID *string
	var target models.User
	err := h.DB.Select("id").First(&target, "email = ?", req.Email).Error
	switch {
	case err == nil:
		recipientID = &target.ID
	case err == gorm.ErrRecordNotFound:
		// share stays pending until the address signs up
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to locate target user")
		return
	}

	share := models.QuestionSetShare{
		ID:              uuid.New().String(),
		QuestionSetID:   setID,
		OwnerID:         user.ID,
		RecipientEmail:  req.Email,
		RecipientUserID: recipientID,
	}
	if err := h.DB.Create(&share).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to share question set")
		return
	}

	util.Success(c, util.Response{
		"share": gin.H{
			"id":                share.ID,
			"question_set_id":   share.QuestionSetID,
			"owner_id":          share.OwnerID,
			"recipient_email":   share.RecipientEmail,
			"recipient_user_id": share.RecipientUserID,
			"created_at":        share.CreatedAt,
		},
	})
}

type batchUploadReq struct {
	Questions []createQuestionReq `json:"questions" binding:"required"`
	Metadata  struct {
		QuestionSetID   string   `json:"question_set_id"`
		QuestionSetName string   `json:"question_set_name"`
		IsPrivate       *bool    `json:"is_private"`
		Tags            []string `json:"tags"`
	} `json:"metadata"`
}

// BatchUpload stores a batch of extracted questions, creating a fresh
// set when none is given. Plain users' imports land as drafts.
func (h *SetHandler) BatchUpload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req batchUploadReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Questions) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "questions array is required")
		return
	}

	isPrivate := true
	if req.Metadata.IsPrivate != nil {
		isPrivate = *req.Metadata.IsPrivate
	}

	status := models.StatusPublished
	if user.Role == models.RoleUser {
		status = models.StatusDraft
	}

	setID := req.Metadata.QuestionSetID
	inserted := 0

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if setID == "" {
			name := req.Metadata.QuestionSetName
			if name == "" {
				name = "Imported set"
			}
			set := models.QuestionSet{
				ID:        uuid.New().String(),
				Name:      name,
				Tags:      req.Metadata.Tags,
				IsPrivate: isPrivate,
				CreatorID: user.ID,
			}
			if err := tx.Create(&set).Error; err != nil {
				return err
			}
			setID = set.ID
		}

		for _, q := range req.Questions {
			difficulty := q.Difficulty
			if difficulty == "" {
				difficulty = "Medium"
			}
			category := q.Category
			if category == "" {
				category = "General"
			}
			question := models.Question{
				ID:            uuid.New().String(),
				CreatorID:     user.ID,
				QuestionSetID: &setID,
				Title:         q.Title,
				Body:          q.Body,
				Explanation:   q.Explanation,
				Answer:        q.Answer,
				Options:       q.Options,
				Tags:          q.Tags,
				Difficulty:    difficulty,
				Category:      category,
				References:    q.References,
				IsPrivate:     isPrivate,
				Status:        status,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to save questions")
		return
	}

	util.Success(c, util.Response{
		"question_set_id": setID,
		"inserted":        inserted,
	})
}
