package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"question-bank/internal/credits"
	"question-bank/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.CreditEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// asUser reloads the profile per request, the way the auth middleware
// does after token verification.
func asUser(db *gorm.DB, id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("currentUser", &user)
		c.Next()
	}
}

func creditsRouter(db *gorm.DB, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCreditsHandler(credits.NewService(credits.NewGormStore(db)), 50)

	r := gin.New()
	api := r.Group("/api", asUser(db, userID))
	api.GET("/credits", h.GetCredits)
	api.POST("/credits/deduct", h.Deduct)
	api.POST("/admin/credits/allocate", h.Allocate)
	api.GET("/admin/credits/ledger", h.Ledger)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func TestDeductEndpoint(t *testing.T) {
	db := testDB(t)
	db.Create(&models.User{ID: "u1", Role: models.RoleUser, Credits: 50})
	r := creditsRouter(db, "u1")

	w := postJSON(t, r, "/api/credits/deduct", gin.H{
		"amount":   5,
		"metadata": gin.H{"fileName": "notes.pdf"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["remaining"].(float64) != 45 {
		t.Errorf("remaining = %v, want 45", data["remaining"])
	}
	if data["unlimited"].(bool) {
		t.Error("unlimited = true for a standard account")
	}

	var count int64
	db.Model(&models.CreditEntry{}).Where("user_id = ?", "u1").Count(&count)
	if count != 1 {
		t.Errorf("ledger entries = %d, want 1", count)
	}
}

func TestDeductEndpointInsufficient(t *testing.T) {
	db := testDB(t)
	db.Create(&models.User{ID: "u1", Role: models.RoleUser, Credits: 3})
	r := creditsRouter(db, "u1")

	w := postJSON(t, r, "/api/credits/deduct", gin.H{"amount": 10})
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", w.Code)
	}

	var user models.User
	db.First(&user, "id = ?", "u1")
	if user.Credits != 3 {
		t.Errorf("credits = %d after denied debit, want 3", user.Credits)
	}
	var count int64
	db.Model(&models.CreditEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("ledger entries = %d after denied debit, want 0", count)
	}
}

func TestDeductEndpointInvalidAmount(t *testing.T) {
	db := testDB(t)
	db.Create(&models.User{ID: "u1", Role: models.RoleUser, Credits: 50})
	r := creditsRouter(db, "u1")

	for _, amount := range []int64{0, -5} {
		w := postJSON(t, r, "/api/credits/deduct", gin.H{"amount": amount})
		if w.Code != http.StatusBadRequest {
			t.Errorf("amount %d: status = %d, want 400", amount, w.Code)
		}
	}
}

func TestDeductEndpointUnlimited(t *testing.T) {
	db := testDB(t)
	db.Create(&models.User{ID: "a1", Role: models.RoleAdmin, Credits: 7})
	r := creditsRouter(db, "a1")

	w := postJSON(t, r, "/api/credits/deduct", gin.H{"amount": 1000})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if !data["unlimited"].(bool) {
		t.Error("unlimited = false for an admin account")
	}

	var user models.User
	db.First(&user, "id = ?", "a1")
	if user.Credits != 7 {
		t.Errorf("credits = %d after unlimited debit, want 7", user.Credits)
	}
}

func TestAllocateAndLedgerEndpoints(t *testing.T) {
	db := testDB(t)
	db.Create(&models.User{ID: "a1", Role: models.RoleAdmin, Credits: 0})
	db.Create(&models.User{ID: "u1", Role: models.RoleUser, Credits: 50})
	r := creditsRouter(db, "a1")

	w := postJSON(t, r, "/api/admin/credits/allocate", gin.H{"user_id": "u1", "amount": 25})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	data := decodeData(t, w)
	if data["credits"].(float64) != 75 {
		t.Errorf("credits = %v, want 75", data["credits"])
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/credits/ledger", nil)
	lw := httptest.NewRecorder()
	r.ServeHTTP(lw, req)
	if lw.Code != http.StatusOK {
		t.Fatalf("ledger status = %d, want 200", lw.Code)
	}
	entries := decodeData(t, lw)["entries"].([]interface{})
	if len(entries) != 1 {
		t.Fatalf("ledger entries = %d, want 1", len(entries))
	}
	entry := entries[0].(map[string]interface{})
	if entry["amount"].(float64) != 25 || entry["reason"].(string) != credits.ReasonAllocation {
		t.Errorf("entry = %v, want amount 25 reason %q", entry, credits.ReasonAllocation)
	}
}

func TestAllocateUnknownAccount(t *testing.T) {
	db := testDB(t)
	db.Create(&models.User{ID: "a1", Role: models.RoleAdmin, Credits: 0})
	r := creditsRouter(db, "a1")

	w := postJSON(t, r, "/api/admin/credits/allocate", gin.H{"user_id": "ghost", "amount": 25})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
