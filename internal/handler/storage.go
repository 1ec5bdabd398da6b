package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"question-bank/internal/config"
	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps staged documents at 20 MiB, matching what the
// extraction endpoint will accept.
const maxUploadBytes = 20 << 20

// StorageHandler stages uploaded documents on local disk and hands out
// expiring, HMAC-signed download URLs so files can be fetched without a
// bearer token.
type StorageHandler struct {
	Dir           string
	SigningSecret string
	URLTTL        time.Duration
}

func NewStorageHandler(cfg config.StorageConfig) *StorageHandler {
	ttl := time.Duration(cfg.URLTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StorageHandler{
		Dir:           cfg.Dir,
		SigningSecret: cfg.SigningSecret,
		URLTTL:        ttl,
	}
}

// Upload accepts one multipart file and stages it under
// <dir>/<userID>/<unix>-<name>. The returned path is what the AI
// extraction endpoint consumes.
func (h *StorageHandler) Upload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file is required")
		return
	}
	if file.Size > maxUploadBytes {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "file too large")
		return
	}

	name := sanitizeFileName(filepath.Base(file.Filename))
	relPath := filepath.Join(user.ID, fmt.Sprintf("%d-%s", time.Now().Unix(), name))
	dst := filepath.Join(h.Dir, relPath)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to create upload dir")
		return
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to save file")
		return
	}

	util.Success(c, util.Response{
		"path":      filepath.ToSlash(relPath),
		"file_name": name,
		"size":      file.Size,
	})
}

type downloadReq struct {
	Path string `json:"path" binding:"required"`
}

// CreateDownloadURL signs a staged path into a short-lived URL. Plain
// users may only reach their own prefix.
func (h *StorageHandler) CreateDownloadURL(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req downloadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "path is required")
		return
	}

	relPath, err := cleanStoragePath(req.Path)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid path")
		return
	}
	if user.Role == models.RoleUser && !strings.HasPrefix(relPath, user.ID+"/") {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "forbidden")
		return
	}

	expires := time.Now().Add(h.URLTTL).Unix()
	sig := util.SignPath(h.SigningSecret, relPath, expires)

	util.Success(c, util.Response{
		"url": fmt.Sprintf("/api/storage/file?path=%s&expires=%d&sig=%s",
			url.QueryEscape(relPath), expires, sig),
		"expires": expires,
	})
}

// ServeFile streams a staged file back. No bearer token: the signature
// over path+expiry is the credential.
func (h *StorageHandler) ServeFile(c *gin.Context) {
	relPath, err := cleanStoragePath(c.Query("path"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid path")
		return
	}

	expires, err := strconv.ParseInt(c.Query("expires"), 10, 64)
	if err != nil || time.Now().Unix() > expires {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "link expired")
		return
	}
	if err := util.VerifyPath(h.SigningSecret, relPath, expires, c.Query("sig")); err != nil {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "invalid signature")
		return
	}

	full := filepath.Join(h.Dir, filepath.FromSlash(relPath))
	if _, err := os.Stat(full); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "file not found")
		return
	}
	c.FileAttachment(full, filepath.Base(full))
}

// ReadStaged loads a staged file for the extraction endpoint. The
// caller has already passed the ownership check.
func (h *StorageHandler) ReadStaged(relPath string) ([]byte, error) {
	cleaned, err := cleanStoragePath(relPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(h.Dir, filepath.FromSlash(cleaned)))
}

// cleanStoragePath normalizes a client-supplied relative path and
// rejects anything that escapes the staging dir.
func cleanStoragePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	cleaned := filepath.ToSlash(filepath.Clean("/" + p))[1:]
	if cleaned == "" || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("path escapes storage dir")
	}
	return cleaned, nil
}

func sanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}
