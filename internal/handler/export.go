package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams a question set out as JSON, CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

// ExportSet handles GET /sets/:id/export?format=json|csv|xlsx. A
// private set is exportable only by its creator unless the caller is a
// moderator or admin.
func (h *ExportHandler) ExportSet(c *gin.Context) {
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

	if user.Role == models.RoleUser && set.IsPrivate && set.CreatorID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "you are not allowed to export this set")
		return
	}

	var questions []models.Question
	if err := h.DB.Where("question_set_id = ?", setID).
		Order("created_at ASC, id ASC").
		Find(&questions).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load questions")
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "csv":
		h.exportCSV(c, &set, questions)
	case "xlsx":
		h.exportXLSX(c, &set, questions)
	default:
		h.exportJSON(c, &set, questions)
	}
}

func (h *ExportHandler) exportJSON(c *gin.Context, set *models.QuestionSet, questions []models.Question) {
	items := make([]gin.H, 0, len(questions))
	for i := range questions {
		items = append(items, questionJSON(&questions[i]))
	}
	util.Success(c, util.Response{
		"set":       setJSON(set, int64(len(questions))),
		"questions": items,
	})
}

var exportHeader = []string{"Title", "Body", "Answer", "Explanation", "Options", "Difficulty", "Category", "Tags", "Status", "Created"}

func exportRow(q *models.Question) []string {
	options := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		marker := ""
		if opt.IsCorrect {
			marker = " *"
		}
		options = append(options, fmt.Sprintf("%s) %s%s", opt.Label, opt.Value, marker))
	}
	return []string{
		q.Title,
		q.Body,
		q.Answer,
		q.Explanation,
		strings.Join(options, "; "),
		q.Difficulty,
		q.Category,
		strings.Join(q.Tags, ","),
		q.Status,
		q.CreatedAt.Format("2006-01-02"),
	}
}

func (h *ExportHandler) exportCSV(c *gin.Context, set *models.QuestionSet, questions []models.Question) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_%s.csv\"",
		exportFileName(set.Name), time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps detect the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeader)
	for i := range questions {
		writer.Write(exportRow(&questions[i]))
	}
}

func (h *ExportHandler) exportXLSX(c *gin.Context, set *models.QuestionSet, questions []models.Question) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Questions"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for row := range questions {
		for col, value := range exportRow(&questions[row]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s_%s.xlsx\"",
		exportFileName(set.Name), time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to write workbook")
	}
}

// exportFileName keeps set names filesystem and header safe.
func exportFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if name == "" {
		name = "question_set"
	}
	return name
}
