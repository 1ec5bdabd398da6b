package middleware

import (
	"net/http"
	"strings"
	"time"

	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware verifies the bearer JWT and puts the current user into
// the gin context. Tokens are issued by the external identity provider;
// this side only verifies the shared-secret signature.
//
// A profile is provisioned on the first authenticated access, with the
// configured starting credits and the default role.
func AuthMiddleware(jwtSecret string, db *gorm.DB, defaultCredits int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) URL query ?token=xxx (downloads and other cases where a
		// custom header is not possible)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) Cookie qb_token
		if tokenStr == "" {
			if cookie, err := c.Cookie("qb_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "missing authorization token")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid session token")
			c.Abort()
			return
		}
		if claims.Subject == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid session token")
			c.Abort()
			return
		}

		user, err := loadOrProvision(db, claims, defaultCredits)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load profile")
			c.Abort()
			return
		}

		c.Set("currentUser", user)
		c.Next()
	}
}

func loadOrProvision(db *gorm.DB, claims *util.Claims, defaultCredits int64) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", claims.Subject).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	displayName := claims.Name
	if displayName == "" {
		displayName = claims.Email
	}
	user = models.User{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: displayName,
		Role:        models.RoleUser,
		Credits:     defaultCredits,
	}
	// FirstOrCreate keeps a concurrent first request from failing on
	// the unique primary key.
	if err := db.Where("id = ?", user.ID).FirstOrCreate(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
