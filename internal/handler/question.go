package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionHandler covers question CRUD, filtered listing and the
// dashboard stats.
type QuestionHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewQuestionHandler(db *gorm.DB, pageSize int) *QuestionHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &QuestionHandler{DB: db, PageSize: pageSize}
}

type createQuestionReq struct {
	Title         string           `json:"title" binding:"required"`
	Body          string           `json:"body" binding:"required"`
	Explanation   string           `json:"explanation"`
	Answer        string           `json:"answer"`
	Options       []models.Option  `json:"options"`
	Tags          []string         `json:"tags"`
	Difficulty    string           `json:"difficulty"`
	Category      string           `json:"category"`
	References    []string         `json:"references"`
	IsPrivate     *bool            `json:"is_private"`
	QuestionSetID *string          `json:"question_set_id"`
	Status        string           `json:"status"`
}

func questionJSON(q *models.Question) gin.H {
	return gin.H{
		"id":              q.ID,
		"creator_id":      q.CreatorID,
		"question_set_id": q.QuestionSetID,
		"title":           q.Title,
		"body":            q.Body,
		"explanation":     q.Explanation,
		"answer":          q.Answer,
		"options":         q.Options,
		"tags":            q.Tags,
		"difficulty":      q.Difficulty,
		"category":        q.Category,
		"references":      q.References,
		"is_private":      q.IsPrivate,
		"status":          q.Status,
		"created_at":      q.CreatedAt,
		"updated_at":      q.UpdatedAt,
	}
}

// Create inserts a new question. Plain users start in draft; moderators
// and admins publish directly unless they ask otherwise.
func (h *QuestionHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "title and body are required")
		return
	}

	status := req.Status
	if status == "" {
		if user.Role == models.RoleUser {
			status = models.StatusDraft
		} else {
			status = models.StatusPublished
		}
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "Medium"
	}
	category := req.Category
	if category == "" {
		category = "General"
	}
	isPrivate := true
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}

	question := models.Question{
		ID:            uuid.New().String(),
		CreatorID:     user.ID,
		QuestionSetID: req.QuestionSetID,
		Title:         req.Title,
		Body:          req.Body,
		Explanation:   req.Explanation,
		Answer:        req.Answer,
		Options:       req.Options,
		Tags:          req.Tags,
		Difficulty:    difficulty,
		Category:      category,
		References:    req.References,
		IsPrivate:     isPrivate,
		Status:        status,
	}
	if err := h.DB.Create(&question).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to create question")
		return
	}

	util.Success(c, util.Response{"question": questionJSON(&question)})
}

// visibleQuestions applies the role-based visibility rule: plain users
// see public questions plus their own private ones, moderators and
// admins see everything.
func visibleQuestions(db *gorm.DB, user *models.User) *gorm.DB {
	q := db.Model(&models.Question{})
	if user.Role == models.RoleUser {
		q = q.Where("is_private = ? OR creator_id = ?", false, user.ID)
	}
	return q
}

// List returns questions with filters: only_private, difficulty,
// category, tags (comma separated, all must match), search on title.
func (h *QuestionHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.PageSize)))
	if size <= 0 || size > 100 {
		size = h.PageSize
	}
	offset := (page - 1) * size

	base := visibleQuestions(h.DB, user)

	if c.Query("only_private") == "true" {
		base = base.Where("is_private = ?", true)
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		base = base.Where("difficulty = ?", difficulty)
	}
	if category := c.Query("category"); category != "" {
		base = base.Where("category = ?", category)
	}
	if setID := c.Query("set_id"); setID != "" {
		base = base.Where("question_set_id = ?", setID)
	}
	if tagStr := c.Query("tags"); tagStr != "" {
		// tags are stored as a JSON array in a text column; a LIKE per
		// tag keeps this portable across sqlite and postgres
		for _, tag := range strings.Split(tagStr, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				base = base.Where("tags LIKE ?", "%\""+tag+"\"%")
			}
		}
	}
	if search := c.Query("search"); search != "" {
		base = base.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to fetch questions")
		return
	}

	var questions []models.Question
	if err := base.Session(&gorm.Session{}).
		Order("updated_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&questions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to fetch questions")
		return
	}

	items := make([]gin.H, 0, len(questions))
	for i := range questions {
		items = append(items, questionJSON(&questions[i]))
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

type updateQuestionReq struct {
	Payload map[string]interface{} `json:"payload" binding:"required"`
}

// updatableFields is the closed set of columns a payload may touch.
var updatableFields = map[string]bool{
	"title": true, "body": true, "explanation": true, "answer": true,
	"options": true, "tags": true, "difficulty": true, "category": true,
	"references": true, "is_private": true, "status": true, "question_set_id": true,
}

// Update applies a partial payload to one question. Plain users may
// only touch their own.
func (h *QuestionHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	var req updateQuestionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "payload is required")
		return
	}

	var question models.Question
	if err := h.DB.First(&question, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "question not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load question")
		}
		return
	}

	if user.Role == models.RoleUser && question.CreatorID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "you are not allowed to modify this question")
		return
	}

	updates := map[string]interface{}{}
	for key, value := range req.Payload {
		if !updatableFields[key] {
			continue
		}
		switch key {
		case "options", "tags", "references":
			// JSON-valued columns go through the model types so the
			// Valuer serializes them
			b, err := jsonReencode(value)
			if err != nil {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid "+key)
				return
			}
			updates[key] = b
		default:
			updates[key] = value
		}
	}
	updates["updated_at"] = time.Now()

	if err := h.DB.Model(&question).Updates(updates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to update question")
		return
	}

	if err := h.DB.First(&question, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load question")
		return
	}
	util.Success(c, util.Response{"question": questionJSON(&question)})
}

// Delete removes one question. Plain users may only delete their own.
func (h *QuestionHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	id := c.Param("id")
	var question models.Question
	if err := h.DB.Select("id", "creator_id").First(&question, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "question not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load question")
		}
		return
	}

	if user.Role == models.RoleUser && question.CreatorID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "you are not allowed to delete this question")
		return
	}

	if err := h.DB.Delete(&models.Question{}, "id = ?", id).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to delete question")
		return
	}
	util.Success(c, util.Response{"success": true})
}
