package credits

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"question-bank/internal/models"

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

func seedUser(t *testing.T, db *gorm.DB, id, role string, credits int64) {
	t.Helper()
	user := models.User{ID: id, Email: id + "@example.com", Role: role, Credits: credits}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
}

func TestGormStoreGetAccount(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", models.RoleUser, 50)
	seedUser(t, db, "a1", models.RoleAdmin, 10)
	store := NewGormStore(db)
	ctx := context.Background()

	acct, err := store.GetAccount(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if acct.Balance != 50 || acct.Tier != TierStandard {
		t.Errorf("account = %+v, want balance 50 standard", acct)
	}

	acct, err = store.GetAccount(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if acct.Tier != TierUnlimited {
		t.Errorf("admin tier = %v, want unlimited", acct.Tier)
	}

	if _, err := store.GetAccount(ctx, "ghost"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("missing account error = %v, want ErrAccountNotFound", err)
	}
}

func TestGormStoreUpdateBalanceCAS(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", models.RoleUser, 50)
	store := NewGormStore(db)
	ctx := context.Background()

	if err := store.UpdateBalance(ctx, "u1", 50, 45); err != nil {
		t.Fatalf("UpdateBalance: %v", err)
	}

	// stale expected value must not apply
	if err := store.UpdateBalance(ctx, "u1", 50, 40); !errors.Is(err, ErrStaleBalance) {
		t.Errorf("stale update error = %v, want ErrStaleBalance", err)
	}
	acct, _ := store.GetAccount(ctx, "u1")
	if acct.Balance != 45 {
		t.Errorf("balance = %d after rejected update, want 45", acct.Balance)
	}

	if err := store.UpdateBalance(ctx, "ghost", 5, 4); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("missing account error = %v, want ErrAccountNotFound", err)
	}
}

func TestGormStoreEntries(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", models.RoleUser, 50)
	seedUser(t, db, "u2", models.RoleUser, 50)
	store := NewGormStore(db)
	ctx := context.Background()

	for i, spec := range []struct {
		user   string
		amount int64
	}{
		{"u1", -5}, {"u2", -1}, {"u1", 20},
	} {
		entry := &models.CreditEntry{
			UserID:   spec.user,
			Amount:   spec.amount,
			Reason:   fmt.Sprintf("r%d", i),
			Metadata: models.JSONMap{"seq": i},
		}
		if err := store.AppendEntry(ctx, entry); err != nil {
			t.Fatalf("AppendEntry: %v", err)
		}
		if entry.ID == "" {
			t.Fatal("AppendEntry should assign an id")
		}
	}

	own, err := store.Entries(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(own) != 2 {
		t.Fatalf("u1 entries = %d, want 2", len(own))
	}

	all, err := store.Entries(ctx, "", 2)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("limited entries = %d, want 2", len(all))
	}
}

// TestServiceOverGormStore runs the canonical scenario against the real
// persistence path.
func TestServiceOverGormStore(t *testing.T) {
	db := testDB(t)
	seedUser(t, db, "u1", models.RoleUser, 50)
	svc := NewService(NewGormStore(db))
	ctx := context.Background()

	res, err := svc.Debit(ctx, "u1", 5, "", map[string]interface{}{"job": "j1"})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if res.Remaining != 45 {
		t.Errorf("remaining = %d, want 45", res.Remaining)
	}

	if _, err := svc.Debit(ctx, "u1", 100, "", nil); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("debit 100 error = %v, want ErrInsufficientCredits", err)
	}

	balance, err := svc.Credit(ctx, "u1", 20, "Manual top-up")
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 65 {
		t.Errorf("balance = %d, want 65", balance)
	}

	var user models.User
	if err := db.First(&user, "id = ?", "u1").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Credits != 65 {
		t.Errorf("stored credits = %d, want 65", user.Credits)
	}

	entries, err := svc.Entries(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	var sum int64
	for _, e := range entries {
		sum += e.Amount
	}
	if 50+sum != user.Credits {
		t.Errorf("starting+sum(entries) = %d, balance = %d", 50+sum, user.Credits)
	}
}
