package accounts

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/permissions"
	"github.com/contaflow/contaflow/internal/platform/httpx"
	"github.com/contaflow/contaflow/internal/shared"
	"github.com/contaflow/contaflow/report"
)

// Handler manages account endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	perms     permissions.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, perms permissions.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		perms:     perms,
		validator: validator.New(),
	}
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabAccounts, permissions.CapRead))
		r.Get("/", h.list)
		r.Get("/dashboard", h.dashboard)
		r.Get("/{id}", h.get)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabAccounts, permissions.CapWrite))
		r.Post("/", h.create)
		r.Post("/{id}/report", h.generateReport)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabAccounts, permissions.CapEdit))
		r.Put("/{id}", h.update)
		r.Post("/{id}/pay", h.pay)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.perms.Require(permissions.TabAccounts, permissions.CapDelete))
		r.Delete("/{id}", h.delete)
	})
}

const dayLayout = "2006-01-02"

type attachmentPayload struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

type createRequest struct {
	Name         string        `json:"name" validate:"required,max=120"`
	Kind         string        `json:"kind" validate:"required,oneof=unique installment recurring"`
	TotalValue   money.Amount  `json:"total_value"`
	FeesAndFines *money.Amount `json:"fees_and_fines,omitempty"`
	DueDate      string        `json:"due_date" validate:"required"`

	InstallmentsTotal int    `json:"installments_total,omitempty"`
	RecurrenceEndDate string `json:"recurrence_end_date,omitempty"`

	BillDocument string              `json:"bill_document,omitempty" validate:"omitempty,url"`
	PaymentProof string              `json:"payment_proof,omitempty" validate:"omitempty,url"`
	Custom       []attachmentPayload `json:"custom_attachments,omitempty" validate:"dive"`

	Bill billOptionsPayload `json:"bill_options"`
}

type billOptionsPayload struct {
	ShowFees              bool `json:"show_fees"`
	ShowPayment           bool `json:"show_payment"`
	ShowSubmitter         bool `json:"show_submitter"`
	ShowBillDocument      bool `json:"show_bill_document"`
	ShowPaymentProof      bool `json:"show_payment_proof"`
	ShowCustomAttachments bool `json:"show_custom_attachments"`
}

// createResponse wraps the inserted rows. GenerationError is set when
// the rows were saved but the bill document could not be produced.
type createResponse struct {
	Accounts        []Account `json:"accounts"`
	GenerationError string    `json:"generation_error,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FieldProblem(w, "validation failed", validationFields(err))
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	draft, err := h.toDraft(req, sess.User(), shared.ScopeFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}

	rows, err := h.service.Create(r.Context(), draft, report.BillOptions{
		ShowFees:              req.Bill.ShowFees,
		ShowPayment:           req.Bill.ShowPayment,
		ShowSubmitter:         req.Bill.ShowSubmitter,
		ShowBillDocument:      req.Bill.ShowBillDocument,
		ShowPaymentProof:      req.Bill.ShowPaymentProof,
		ShowCustomAttachments: req.Bill.ShowCustomAttachments,
	})
	if err != nil {
		if len(rows) > 0 {
			// Rows persisted but bill generation failed. They are not
			// retracted; the response must carry the failure so the
			// client can tell this apart from full success.
			h.logger.Error("generate bill", slog.Any("error", err))
			httpx.JSON(w, http.StatusCreated, createResponse{
				Accounts:        rows,
				GenerationError: "accounts were saved, but the bill document could not be generated",
			})
			return
		}
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, createResponse{Accounts: rows})
}

func (h *Handler) toDraft(req createRequest, userID string, scope shared.Scope) (Draft, error) {
	draft := Draft{
		UserID:       userID,
		Scope:        scope,
		Name:         req.Name,
		Kind:         Kind(req.Kind),
		TotalValue:   req.TotalValue,
		FeesAndFines: req.FeesAndFines,
		Fixed: FixedAttachments{
			BillDocument: req.BillDocument,
			PaymentProof: req.PaymentProof,
		},
		InstallmentsTotal: req.InstallmentsTotal,
	}
	var err error
	draft.DueDate, err = time.Parse(dayLayout, req.DueDate)
	if err != nil {
		return Draft{}, shared.Validation("due_date must be YYYY-MM-DD")
	}
	if req.RecurrenceEndDate != "" {
		draft.RecurrenceEndDate, err = time.Parse(dayLayout, req.RecurrenceEndDate)
		if err != nil {
			return Draft{}, shared.Validation("recurrence_end_date must be YYYY-MM-DD")
		}
	}
	for _, a := range req.Custom {
		draft.Custom = append(draft.Custom, Attachment{Name: a.Name, URL: a.URL})
	}
	return draft, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	rows, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if rows == nil {
		rows = []Account{}
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	rows, summary, err := h.service.Dashboard(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if rows == nil {
		rows = []DashboardRow{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rows":    rows,
		"summary": summary,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	acc, err := h.service.Get(r.Context(), shared.ScopeFromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

type updateRequest struct {
	Name         *string       `json:"name,omitempty" validate:"omitempty,max=120"`
	TotalValue   *money.Amount `json:"total_value,omitempty"`
	FeesAndFines *money.Amount `json:"fees_and_fines,omitempty"`
	DueDate      *string       `json:"due_date,omitempty"`

	BillDocument *string              `json:"bill_document,omitempty" validate:"omitempty,url"`
	PaymentProof *string              `json:"payment_proof,omitempty" validate:"omitempty,url"`
	Custom       *[]attachmentPayload `json:"custom_attachments,omitempty" validate:"omitempty,dive"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FieldProblem(w, "validation failed", validationFields(err))
		return
	}

	scope := shared.ScopeFromContext(r.Context())
	input := UpdateInput{
		Name:         req.Name,
		TotalValue:   req.TotalValue,
		FeesAndFines: req.FeesAndFines,
	}
	if req.DueDate != nil {
		due, err := time.Parse(dayLayout, *req.DueDate)
		if err != nil {
			h.respondError(w, shared.Validation("due_date must be YYYY-MM-DD"))
			return
		}
		input.DueDate = &due
	}
	if req.BillDocument != nil || req.PaymentProof != nil {
		acc, err := h.service.Get(r.Context(), scope, id)
		if err != nil {
			h.respondError(w, err)
			return
		}
		fixed := acc.Fixed
		if req.BillDocument != nil {
			fixed.BillDocument = *req.BillDocument
		}
		if req.PaymentProof != nil {
			fixed.PaymentProof = *req.PaymentProof
		}
		input.Fixed = &fixed
	}
	if req.Custom != nil {
		custom := make([]Attachment, 0, len(*req.Custom))
		for _, a := range *req.Custom {
			custom = append(custom, Attachment{Name: a.Name, URL: a.URL})
		}
		input.Custom = &custom
	}

	acc, err := h.service.Update(r.Context(), scope, id, input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

type payRequest struct {
	Date          string `json:"date,omitempty"`
	Method        string `json:"method" validate:"required,max=60"`
	BankReference string `json:"bank_reference,omitempty" validate:"omitempty,max=120"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	var req payRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FieldProblem(w, "validation failed", validationFields(err))
		return
	}

	payment := Payment{Method: req.Method, BankReference: req.BankReference}
	if req.Date != "" {
		payment.Date, err = time.Parse(dayLayout, req.Date)
		if err != nil {
			h.respondError(w, shared.Validation("date must be YYYY-MM-DD"))
			return
		}
	}
	if err := h.service.Pay(r.Context(), shared.ScopeFromContext(r.Context()), id, payment); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) generateReport(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	scope := shared.ScopeFromContext(r.Context())
	if _, err := h.service.Get(r.Context(), scope, id); err != nil {
		h.respondError(w, err)
		return
	}
	url, err := h.service.GenerateFullReport(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"report_url": url})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a UUID")
		return
	}
	cascade := r.URL.Query().Get("cascade") == "group"
	if err := h.service.Delete(r.Context(), shared.ScopeFromContext(r.Context()), id, cascade); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "account not found")
	case errors.Is(err, shared.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
	default:
		h.logger.Error("accounts request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func filterFromQuery(r *http.Request) (ListFilter, error) {
	filter := ListFilter{UserScope: shared.ScopeFromContext(r.Context())}
	q := r.URL.Query()

	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(dayLayout, raw)
		if err != nil {
			return ListFilter{}, shared.Validation("from must be YYYY-MM-DD")
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(dayLayout, raw)
		if err != nil {
			return ListFilter{}, shared.Validation("to must be YYYY-MM-DD")
		}
		filter.To = to
	}
	if raw := q.Get("status"); raw != "" {
		status := Status(raw)
		if status != StatusPending && status != StatusPaid && status != StatusOverdue {
			return ListFilter{}, shared.Validation("status must be pending, paid or overdue")
		}
		filter.Status = status
	}
	return filter, nil
}

func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}
