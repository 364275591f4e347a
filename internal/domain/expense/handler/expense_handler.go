// Package handler exposes the expense service over JSON HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/export"
	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/repository"
	"github.com/FACorreiaa/expense-tracker/internal/domain/expense/service"
	"github.com/FACorreiaa/expense-tracker/pkg/httpjson"
	"github.com/FACorreiaa/expense-tracker/pkg/middleware"
	"github.com/FACorreiaa/expense-tracker/pkg/money"
)

// ExpenseService is the subset of service.Service used by the handler
type ExpenseService interface {
	Add(ctx context.Context, ownerID int64, draft service.Draft) (*repository.Expense, error)
	Update(ctx context.Context, id, ownerID int64, draft service.Draft) (bool, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	FindByID(ctx context.Context, id, ownerID int64) (*repository.Expense, error)
	List(ctx context.Context, ownerID int64, params service.ListParams) ([]repository.Expense, error)
	Recent(ctx context.Context, ownerID int64, limit int) ([]repository.Expense, error)
	Dashboard(ctx context.Context, ownerID int64) (*repository.Dashboard, error)
	Categories(ctx context.Context) ([]string, error)
}

// ExpenseHandler serves the /api/expenses, /api/dashboard and /api/categories routes
type ExpenseHandler struct {
	service  ExpenseService
	currency string
	logger   *slog.Logger
}

// NewExpenseHandler constructs a new handler. currency is used for display strings.
func NewExpenseHandler(svc ExpenseService, currency string, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{service: svc, currency: currency, logger: logger}
}

// Register mounts the routes on mux behind auth
func (h *ExpenseHandler) Register(mux *http.ServeMux, auth middleware.Middleware) {
	mux.Handle("GET /api/expenses", auth(http.HandlerFunc(h.list)))
	mux.Handle("POST /api/expenses", auth(http.HandlerFunc(h.create)))
	mux.Handle("GET /api/expenses/recent", auth(http.HandlerFunc(h.recent)))
	mux.Handle("GET /api/expenses/export", auth(http.HandlerFunc(h.export)))
	mux.Handle("GET /api/expenses/{id}", auth(http.HandlerFunc(h.get)))
	mux.Handle("PUT /api/expenses/{id}", auth(http.HandlerFunc(h.update)))
	mux.Handle("DELETE /api/expenses/{id}", auth(http.HandlerFunc(h.delete)))
	mux.Handle("GET /api/dashboard", auth(http.HandlerFunc(h.dashboard)))
	mux.Handle("GET /api/categories", auth(http.HandlerFunc(h.categories)))
}

type draftRequest struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func (d draftRequest) toDraft() service.Draft {
	return service.Draft{Amount: d.Amount, Category: d.Category, Description: d.Description, Date: d.Date}
}

type expenseResponse struct {
	ID          int64     `json:"id"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

type totalResponse struct {
	Key     string `json:"key"`
	Total   string `json:"total"`
	Display string `json:"display"`
}

type dashboardResponse struct {
	Total        string            `json:"total"`
	TotalDisplay string            `json:"total_display"`
	Categories   []totalResponse   `json:"categories"`
	Months       []totalResponse   `json:"months"`
	Recent       []expenseResponse `json:"recent"`
}

func toExpenseResponse(e repository.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Amount:      e.Amount.String(),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.ExpenseDate.Format(service.DateLayout),
		CreatedAt:   e.CreatedAt,
	}
}

func toExpenseResponses(expenses []repository.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

func (h *ExpenseHandler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())

	q := r.URL.Query()
	params, err := service.ParseListParams(q.Get("from"), q.Get("to"), q.Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	expenses, err := h.service.List(r.Context(), ownerID, params)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toExpenseResponses(expenses))
}

func (h *ExpenseHandler) recent(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())

	limit := service.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpjson.FieldError(w, http.StatusBadRequest, "limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	expenses, err := h.service.Recent(r.Context(), ownerID, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toExpenseResponses(expenses))
}

func (h *ExpenseHandler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())

	var req draftRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.service.Add(r.Context(), ownerID, req.toDraft())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toExpenseResponse(*e))
}

func (h *ExpenseHandler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}

	e, err := h.service.FindByID(r.Context(), id, ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if e == nil {
		notFound(w)
		return
	}
	httpjson.Write(w, http.StatusOK, toExpenseResponse(*e))
}

func (h *ExpenseHandler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}

	var req draftRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.Update(r.Context(), id, ownerID, req.toDraft())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !updated {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExpenseHandler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		notFound(w)
		return
	}

	deleted, err := h.service.Delete(r.Context(), id, ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExpenseHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())

	d, err := h.service.Dashboard(r.Context(), ownerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := dashboardResponse{
		Total:        d.Total.String(),
		TotalDisplay: money.Display(d.Total, h.currency),
		Categories:   make([]totalResponse, 0, len(d.Categories)),
		Months:       make([]totalResponse, 0, len(d.Months)),
		Recent:       toExpenseResponses(d.Recent),
	}
	for _, c := range d.Categories {
		resp.Categories = append(resp.Categories, totalResponse{Key: c.Category, Total: c.Total.String(), Display: money.Display(c.Total, h.currency)})
	}
	for _, m := range d.Months {
		resp.Months = append(resp.Months, totalResponse{Key: m.Month, Total: m.Total.String(), Display: money.Display(m.Total, h.currency)})
	}
	httpjson.Write(w, http.StatusOK, resp)
}

func (h *ExpenseHandler) categories(w http.ResponseWriter, r *http.Request) {
	names, err := h.service.Categories(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, names)
}

func (h *ExpenseHandler) export(w http.ResponseWriter, r *http.Request) {
	ownerID, _ := middleware.UserIDFromContext(r.Context())

	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		httpjson.FieldError(w, http.StatusBadRequest, "format", err.Error())
		return
	}
	params, err := service.ParseListParams(q.Get("from"), q.Get("to"), q.Get("category"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	expenses, err := h.service.List(r.Context(), ownerID, params)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// the summary sheet describes exactly the exported rows
	var summary *repository.Dashboard
	if format == export.FormatXLSX {
		summary = repository.Summarize(expenses)
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename("expenses")+`"`)
	if err := export.Write(w, format, expenses, summary); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed", slog.Any("error", err))
	}
}

// fail maps service errors onto status codes. Store failures get a generic
// message; the cause is logged by the service.
func (h *ExpenseHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var v *service.ValidationError
	if errors.As(err, &v) {
		httpjson.FieldError(w, http.StatusBadRequest, v.Field, v.Reason)
		return
	}
	if !errors.Is(err, service.ErrStoreUnavailable) {
		h.logger.ErrorContext(r.Context(), "unexpected handler error", slog.Any("error", err))
	}
	httpjson.Error(w, http.StatusInternalServerError, "internal error")
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func notFound(w http.ResponseWriter) {
	httpjson.Error(w, http.StatusNotFound, "expense not found")
}
