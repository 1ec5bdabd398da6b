package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"question-bank/internal/models"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func authRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", AuthMiddleware(testSecret, db, 50), func(c *gin.Context) {
		v, _ := c.Get("currentUser")
		user := v.(*models.User)
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "role": user.Role, "credits": user.Credits})
	})
	return r
}

func TestAuthProvisionsProfileOnFirstAccess(t *testing.T) {
	db := testDB(t)
	r := authRouter(db)

	token, err := util.GenerateToken(testSecret, "question-bank", "acct-1", "new@example.com", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var user models.User
	if err := db.First(&user, "id = ?", "acct-1").Error; err != nil {
		t.Fatalf("profile not provisioned: %v", err)
	}
	if user.Credits != 50 {
		t.Errorf("starting credits = %d, want 50", user.Credits)
	}
	if user.Role != models.RoleUser {
		t.Errorf("role = %q, want %q", user.Role, models.RoleUser)
	}
	if user.Email != "new@example.com" {
		t.Errorf("email = %q, want new@example.com", user.Email)
	}
}

func TestAuthKeepsExistingProfile(t *testing.T) {
	db := testDB(t)
	db.Create(&models.User{ID: "acct-1", Role: models.RoleAdmin, Credits: 7})
	r := authRouter(db)

	token, _ := util.GenerateToken(testSecret, "question-bank", "acct-1", "", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+token, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var user models.User
	db.First(&user, "id = ?", "acct-1")
	if user.Role != models.RoleAdmin || user.Credits != 7 {
		t.Errorf("profile = %+v, should be untouched", user)
	}
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	db := testDB(t)
	r := authRouter(db)

	// no token at all
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", w.Code)
	}

	// wrong secret
	token, _ := util.GenerateToken("other-secret", "", "acct-1", "", time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad signature status = %d, want 401", w.Code)
	}

	// expired
	token, _ = util.GenerateToken(testSecret, "", "acct-1", "", -time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expired token status = %d, want 401", w.Code)
	}
}
