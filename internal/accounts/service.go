package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/platform/storage"
	"github.com/contaflow/contaflow/internal/shared"
	"github.com/contaflow/contaflow/report"
)

// ErrNotFound indicates the requested account does not exist.
var ErrNotFound = errors.New("accounts: not found")

// ErrEmptyRecurrence marks a recurring draft whose end date precedes
// the first due date, which would expand into nothing.
var ErrEmptyRecurrence = fmt.Errorf("%w: recurrence end date precedes due date", shared.ErrValidation)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	CreateBatch(ctx context.Context, accounts []Account) error
	Get(ctx context.Context, id uuid.UUID) (*Account, error)
	List(ctx context.Context, filter ListFilter) ([]Account, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]Account, error)
	Update(ctx context.Context, acc *Account) error
	MarkPaid(ctx context.Context, id uuid.UUID, payment Payment) error
	SetGeneratedBill(ctx context.Context, ids []uuid.UUID, url string) error
	SetGeneratedReport(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteGroup(ctx context.Context, groupID uuid.UUID) (int64, error)
	SummarizeRange(ctx context.Context, filter ListFilter) (Summary, error)
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)
}

// ProfileSource resolves the submitter profile printed on bills.
type ProfileSource interface {
	Submitter(ctx context.Context, userID string, scope shared.Scope) (report.SubmitterData, error)
}

// ReportEnqueuer schedules background full-report generation.
type ReportEnqueuer interface {
	EnqueueFullReport(ctx context.Context, accountID uuid.UUID) error
}

// ListFilter narrows account listings.
type ListFilter struct {
	UserScope shared.Scope
	From      time.Time
	To        time.Time
	Status    Status
}

// UpdateInput carries the editable fields of a single row. Editing
// never re-expands: changes to one installment or occurrence leave
// its siblings untouched.
type UpdateInput struct {
	Name         *string
	TotalValue   *money.Amount
	FeesAndFines *money.Amount
	DueDate      *time.Time
	Fixed        *FixedAttachments
	Custom       *[]Attachment
}

// Service handles account business logic.
type Service struct {
	repo     RepositoryPort
	store    storage.ObjectStore
	profiles ProfileSource
	reports  ReportEnqueuer
	fetcher  *report.Fetcher
	audit    *shared.AuditLogger
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, store storage.ObjectStore, profiles ProfileSource, reports ReportEnqueuer, fetcher *report.Fetcher, audit *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		profiles: profiles,
		reports:  reports,
		fetcher:  fetcher,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Create expands the draft, persists every generated row, renders the
// custom bill, uploads it and stamps its URL, then schedules the full
// report. Persistence of the expansion is atomic; document generation
// failures after the insert are reported but do not retract rows.
func (s *Service) Create(ctx context.Context, draft Draft, billOpts report.BillOptions) ([]Account, error) {
	rows, err := Expand(draft)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRecurrence
	}

	now := s.now()
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
	}

	if err := s.repo.CreateBatch(ctx, rows); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, draft.UserID, draft.Scope, "account.create", rows[0].ID.String(), map[string]any{
		"kind": string(draft.Kind),
		"rows": len(rows),
	})

	if err := s.generateBill(ctx, rows, billOpts); err != nil {
		// Rows are already persisted; surface the failure without
		// retracting them.
		return rows, err
	}

	if s.reports != nil {
		if err := s.reports.EnqueueFullReport(ctx, rows[0].ID); err != nil {
			s.logger.Warn("enqueue full report", slog.Any("error", err), slog.String("account_id", rows[0].ID.String()))
		}
	}
	return rows, nil
}

func (s *Service) generateBill(ctx context.Context, rows []Account, opts report.BillOptions) error {
	first := rows[0]

	submitter := report.SubmitterData{}
	if s.profiles != nil {
		var err error
		submitter, err = s.profiles.Submitter(ctx, first.UserID, first.Scope)
		if err != nil {
			s.logger.Warn("load submitter profile", slog.Any("error", err), slog.String("user_id", first.UserID))
		}
	}

	artifact, err := report.CustomBill(ctx, s.fetcher, s.logger, report.BillInput{
		Account:         s.toReportAccount(first),
		Submitter:       submitter,
		BillDocumentURL: first.Fixed.BillDocument,
		PaymentProofURL: first.Fixed.PaymentProof,
		Custom:          toAttachmentRefs(first.Custom),
	}, opts)
	if err != nil {
		return err
	}

	objectName := storage.ObjectName(first.UserID, string(first.Scope), first.ID.String(), artifact.Filename)
	url, err := s.store.Put(ctx, objectName, artifact.Bytes, "application/pdf")
	if err != nil {
		return fmt.Errorf("accounts: upload bill: %w", err)
	}

	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	if err := s.repo.SetGeneratedBill(ctx, ids, url); err != nil {
		return err
	}
	for i := range rows {
		rows[i].Fixed.GeneratedBill = url
	}
	return nil
}

// GenerateFullReport renders and uploads the full report for one
// account, including its installment siblings, and stamps the URL.
// Invoked from the background worker and on demand.
func (s *Service) GenerateFullReport(ctx context.Context, id uuid.UUID) (string, error) {
	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", ErrNotFound
	}

	var siblings []report.SiblingRow
	if acc.Kind == KindInstallment && acc.GroupID != nil {
		group, err := s.repo.ListByGroup(ctx, *acc.GroupID)
		if err != nil {
			return "", err
		}
		for _, sib := range group {
			if sib.Installment == nil {
				continue
			}
			siblings = append(siblings, report.SiblingRow{
				Current:     sib.Installment.Current,
				Total:       sib.Installment.Total,
				Value:       sib.TotalValue,
				DueDate:     sib.DueDate.Format("02/01/2006"),
				StatusLabel: statusLabel(sib.Status),
			})
		}
	}

	artifact, err := report.FullReport(ctx, s.fetcher, s.logger, report.ReportInput{
		Account:          s.toReportAccount(*acc),
		Siblings:         siblings,
		BillDocumentURL:  acc.Fixed.BillDocument,
		PaymentProofURL:  acc.Fixed.PaymentProof,
		GeneratedBillURL: acc.Fixed.GeneratedBill,
		Custom:           toAttachmentRefs(acc.Custom),
	})
	if err != nil {
		return "", err
	}

	objectName := storage.ObjectName(acc.UserID, string(acc.Scope), acc.ID.String(), artifact.Filename)
	url, err := s.store.Put(ctx, objectName, artifact.Bytes, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("accounts: upload report: %w", err)
	}
	if err := s.repo.SetGeneratedReport(ctx, id, url); err != nil {
		return "", err
	}
	return url, nil
}

// Get fetches a single account, enforcing the request scope.
func (s *Service) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Account, error) {
	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc == nil || acc.Scope != scope {
		return nil, ErrNotFound
	}
	return acc, nil
}

// List returns accounts matching the filter, ascending by due date.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	return s.repo.List(ctx, filter)
}

// Dashboard loads the grouped display rows and the period summary
// concurrently.
func (s *Service) Dashboard(ctx context.Context, filter ListFilter) ([]DashboardRow, Summary, error) {
	var (
		rows    []Account
		summary Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = s.repo.SummarizeRange(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}
	return BuildDashboard(rows), summary, nil
}

// Update edits one row. The account kind and group membership are
// immutable; sibling rows are never touched.
func (s *Service) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, input UpdateInput) (*Account, error) {
	acc, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
		}
		acc.Name = *input.Name
	}
	if input.TotalValue != nil {
		if !input.TotalValue.IsPositive() {
			return nil, fmt.Errorf("%w: total value must be positive", shared.ErrValidation)
		}
		acc.TotalValue = *input.TotalValue
	}
	if input.FeesAndFines != nil {
		acc.FeesAndFines = input.FeesAndFines
	}
	if input.DueDate != nil {
		if input.DueDate.IsZero() {
			return nil, fmt.Errorf("%w: due date is required", shared.ErrValidation)
		}
		acc.DueDate = *input.DueDate
	}
	if input.Fixed != nil {
		acc.Fixed = *input.Fixed
	}
	if input.Custom != nil {
		acc.Custom = *input.Custom
	}
	acc.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Pay records settlement details on one row and marks it paid.
func (s *Service) Pay(ctx context.Context, scope shared.Scope, id uuid.UUID, payment Payment) error {
	acc, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if acc.Status == StatusPaid {
		return fmt.Errorf("%w: account already paid", shared.ErrValidation)
	}
	if payment.Date.IsZero() {
		payment.Date = s.now()
	}
	if payment.Method == "" {
		return fmt.Errorf("%w: payment method is required", shared.ErrValidation)
	}
	if err := s.repo.MarkPaid(ctx, id, payment); err != nil {
		return err
	}
	s.recordAudit(ctx, acc.UserID, acc.Scope, "account.pay", id.String(), map[string]any{
		"method": payment.Method,
	})
	return nil
}

// Delete removes one row, or the whole installment/recurrence group
// when cascade is set.
func (s *Service) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID, cascade bool) error {
	acc, err := s.Get(ctx, scope, id)
	if err != nil {
		return err
	}

	if cascade {
		if acc.GroupID == nil {
			return fmt.Errorf("%w: account does not belong to a group", shared.ErrValidation)
		}
		deleted, err := s.repo.DeleteGroup(ctx, *acc.GroupID)
		if err != nil {
			return err
		}
		s.recordAudit(ctx, acc.UserID, acc.Scope, "account.delete_group", acc.GroupID.String(), map[string]any{
			"rows": deleted,
		})
		return nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, acc.UserID, acc.Scope, "account.delete", id.String(), nil)
	return nil
}

// OverdueSweep marks pending accounts past their due date overdue.
// Returns the number of rows transitioned.
func (s *Service) OverdueSweep(ctx context.Context) (int64, error) {
	today := s.now().Truncate(24 * time.Hour)
	return s.repo.MarkOverdue(ctx, today)
}

func (s *Service) toReportAccount(acc Account) report.AccountData {
	data := report.AccountData{
		Name:         acc.Name,
		KindLabel:    kindLabel(acc.Kind),
		Value:        acc.TotalValue,
		FeesAndFines: acc.FeesAndFines,
		DueDate:      acc.DueDate,
		StatusLabel:  statusLabel(acc.Status),
	}
	if acc.Installment != nil {
		data.InstallmentCurrent = acc.Installment.Current
		data.InstallmentTotal = acc.Installment.Total
	}
	if acc.Payment != nil {
		data.PaymentDate = acc.Payment.Date
		data.PaymentMethod = acc.Payment.Method
		data.PaymentBankReference = acc.Payment.BankReference
	}
	return data
}

func (s *Service) recordAudit(ctx context.Context, actorID string, scope shared.Scope, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditEvent{
		ActorID:  actorID,
		Scope:    scope,
		Action:   action,
		Entity:   "account",
		EntityID: entityID,
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("record audit event", slog.Any("error", err), slog.String("action", action))
	}
}

func toAttachmentRefs(custom []Attachment) []report.AttachmentRef {
	refs := make([]report.AttachmentRef, 0, len(custom))
	for _, a := range custom {
		refs = append(refs, report.AttachmentRef{Name: a.Name, URL: a.URL})
	}
	return refs
}

func kindLabel(kind Kind) string {
	switch kind {
	case KindInstallment:
		return "Parcelada"
	case KindRecurring:
		return "Recorrente"
	default:
		return "Única"
	}
}

func statusLabel(status Status) string {
	switch status {
	case StatusPaid:
		return "Pago"
	case StatusOverdue:
		return "Vencido"
	default:
		return "Pendente"
	}
}
