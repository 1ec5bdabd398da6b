package handler

import (
	"errors"
	"net/http"

	"question-bank/internal/credits"
	"question-bank/internal/util"

	"github.com/gin-gonic/gin"
)

// CreditsHandler exposes the credit ledger over HTTP: balance query and
// debit for every user, allocation and the full ledger for admins.
type CreditsHandler struct {
	Service        *credits.Service
	LedgerPageSize int
}

func NewCreditsHandler(service *credits.Service, ledgerPageSize int) *CreditsHandler {
	if ledgerPageSize <= 0 {
		ledgerPageSize = 50
	}
	return &CreditsHandler{Service: service, LedgerPageSize: ledgerPageSize}
}

// GetCredits returns the caller's balance and role.
func (h *CreditsHandler) GetCredits(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{
		"credits": user.Credits,
		"role":    user.Role,
	})
}

type deductReq struct {
	Amount   int64                  `json:"amount"`
	Reason   string                 `json:"reason"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Deduct consumes credits from the caller's own account. 402 on an
// insufficient balance, 400 on a non-positive amount; neither writes
// anything.
func (h *CreditsHandler) Deduct(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req deductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	result, err := h.Service.Debit(c.Request.Context(), user.ID, req.Amount, req.Reason, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, credits.ErrInvalidAmount):
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "amount must be greater than zero")
		case errors.Is(err, credits.ErrInsufficientCredits):
			util.Error(c, http.StatusPaymentRequired, util.CodeInsufficient, "insufficient credits")
		case errors.Is(err, credits.ErrAccountNotFound):
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to deduct credits")
		}
		return
	}

	util.Success(c, util.Response{
		"remaining": result.Remaining,
		"unlimited": result.Unlimited,
	})
}

type allocateReq struct {
	UserID string `json:"user_id" binding:"required"`
	Amount *int64 `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// Allocate grants (or, with a negative amount, corrects) credits on any
// account. Admin only; the route group enforces the role.
func (h *CreditsHandler) Allocate(c *gin.Context) {
	var req allocateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "user_id and amount are required")
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = credits.ReasonAllocation
	}

	balance, err := h.Service.Credit(c.Request.Context(), req.UserID, *req.Amount, reason)
	if err != nil {
		if errors.Is(err, credits.ErrAccountNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "account not found")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to allocate credits")
		return
	}

	util.Success(c, util.Response{"credits": balance})
}

// Ledger lists the most recent entries across all accounts. Admin only.
func (h *CreditsHandler) Ledger(c *gin.Context) {
	entries, err := h.Service.Entries(c.Request.Context(), "", h.LedgerPageSize)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "unable to load ledger")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		items = append(items, gin.H{
			"id":         e.ID,
			"user_id":    e.UserID,
			"amount":     e.Amount,
			"reason":     e.Reason,
			"created_at": e.CreatedAt,
		})
	}
	util.Success(c, util.Response{"entries": items})
}
