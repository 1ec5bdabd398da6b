package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser pulls the authenticated profile out of the gin context.
// When it is absent the 401 response has already been written here and
// the handler should just return.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not authenticated")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not authenticated")
		return nil, false
	}
	return user, true
}

// jsonReencode serializes an already-decoded JSON value back to text
// for storage in a JSON text column.
func jsonReencode(value interface{}) (string, error) {
	if value == nil {
		return "null", nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("reencode json: %w", err)
	}
	return string(b), nil
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"display_name": u.DisplayName,
		"role":         u.Role,
		"credits":      u.Credits,
		"created_at":   u.CreatedAt,
	}
}
