package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"finance_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"

	msgTryLoggingIn = "try logging in again"
)

type createExpenseRequest struct {
	Category    string     `json:"category" binding:"required,expensecategory"`
	Title       string     `json:"title" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Type        string     `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Description *string    `json:"description"`
	Currency    *string    `json:"currency"`
	Vendor      *string    `json:"vendor"`
	Date        *time.Time `json:"date"` // overrides the default occurrence timestamp
}

// @Summary      Create an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        body  body  createExpenseRequest  true  "Expense payload"
// @Success      201  {object}  map[string]interface{}  "status, msg, data.expense"
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/expenses [post]
// @Security     BearerAuth
func (h *Handler) createExpense(c *gin.Context) {
	var input createExpenseRequest
	if ok := h.bindJSONOrFieldErrors(c, &input); !ok {
		return
	}

	// Should be unreachable behind the auth gate; kept as a guard.
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "msg": msgTryLoggingIn})
		return
	}

	params := service.CreateExpenseParams{
		Title:       input.Title,
		Amount:      input.Amount,
		Category:    input.Category,
		Type:        input.Type,
		Description: input.Description,
		Currency:    input.Currency,
		Vendor:      input.Vendor,
	}
	if input.Date != nil {
		params.Date = *input.Date
	}

	expense, err := h.services.Expenses.Create(c.Request.Context(), userID, params)
	if err != nil {
		h.logAndInternalError(c, "expense_create_failed", err, "userId", userID)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"msg":    "expense created successfully",
		"data":   gin.H{"expense": expense},
	})
}

// @Summary      List expenses
// @Description  Filter by a named preset (?date=PAST_WEEK|PAST_MONTH|Last_3_months) or an explicit ?start=&end= pair (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'; a date-only end is treated as end-of-day inclusive).
// @Tags         expenses
// @Produce      json
// @Param        date   query  string  false  "Named preset"  Enums(PAST_WEEK,PAST_MONTH,Last_3_months)
// @Param        start  query  string  false  "Start of range"  example(2025-08-01)
// @Param        end    query  string  false  "End of range"    example(2025-08-31)
// @Success      200  {object}  map[string]interface{}  "status, data.expenses"
// @Failure      400  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/expenses [get]
// @Security     BearerAuth
func (h *Handler) listExpenses(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "msg": msgTryLoggingIn})
		return
	}

	filter, errs := parseExpenseFilter(c)
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "errors": errs})
		return
	}

	expenses, err := h.services.Expenses.List(c.Request.Context(), userID, filter)
	if err != nil {
		if errs := filterErrorFields(err); errs != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "errors": errs})
			return
		}
		h.logAndInternalError(c, "expense_list_failed", err, "userId", userID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"expenses": expenses},
	})
}

// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Param        expenseId  path  string  true  "Expense id"
// @Success      200  {object}  map[string]interface{}  "status, data.expense"
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/expenses/{expenseId} [delete]
// @Security     BearerAuth
func (h *Handler) deleteExpense(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "msg": msgTryLoggingIn})
		return
	}

	expenseID := c.Param("expenseId")
	if expenseID == "" {
		c.JSON(http.StatusNotFound, gin.H{"status": "fail", "msg": "please enter a valid expense"})
		return
	}

	expense, err := h.services.Expenses.Delete(c.Request.Context(), userID, expenseID)
	if err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": "fail", "msg": "expense not found"})
			return
		}
		h.logAndInternalError(c, "expense_delete_failed", err, "userId", userID, "expenseId", expenseID)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"expense": expense},
	})
}

// parseExpenseFilter reads ?date= / ?start= / ?end= into a service filter.
// Unparsable dates and unknown presets are field errors; combination rules
// are enforced by the service.
func parseExpenseFilter(c *gin.Context) (service.ExpenseFilter, map[string][]string) {
	var f service.ExpenseFilter
	errs := map[string][]string{}

	if preset := strings.TrimSpace(c.Query("date")); preset != "" {
		switch preset {
		case service.PresetPastWeek, service.PresetPastMonth, service.PresetLast3Months:
			f.Preset = preset
		default:
			errs["date"] = append(errs["date"], "not one of the preset options; use start and end for a custom range")
		}
	}
	if qs := c.Query("start"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			errs["start"] = append(errs["start"], "start date must be a valid date string")
		} else {
			f.Start = t
		}
	}
	if qs := c.Query("end"); qs != "" {
		t, err := parseQueryTime(qs)
		if err != nil {
			errs["end"] = append(errs["end"], "end date must be a valid date string")
		} else {
			// Date-only end means the whole day is included.
			if isDateOnly(qs) {
				t = t.Add(24*time.Hour - time.Nanosecond).UTC()
			}
			f.End = t
		}
	}
	if len(errs) > 0 {
		return service.ExpenseFilter{}, errs
	}
	return f, nil
}

// filterErrorFields maps range-validation errors onto the query fields
// they concern; nil means the error is not a filter problem.
func filterErrorFields(err error) map[string][]string {
	switch {
	case errors.Is(err, service.ErrPresetWithRange):
		return map[string][]string{
			"date":  {err.Error()},
			"start": {err.Error()},
			"end":   {err.Error()},
		}
	case errors.Is(err, service.ErrIncompleteRange), errors.Is(err, service.ErrStartAfterEnd):
		return map[string][]string{
			"start": {err.Error()},
			"end":   {err.Error()},
		}
	default:
		return nil
	}
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format %q", s)
}
