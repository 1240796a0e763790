package accounts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/platform/storage"
	"github.com/contaflow/contaflow/internal/shared"
	"github.com/contaflow/contaflow/report"
)

type memoryAccountsRepo struct {
	accounts map[uuid.UUID]Account
}

func newMemoryAccountsRepo() *memoryAccountsRepo {
	return &memoryAccountsRepo{accounts: make(map[uuid.UUID]Account)}
}

func (r *memoryAccountsRepo) CreateBatch(ctx context.Context, accounts []Account) error {
	for _, acc := range accounts {
		r.accounts[acc.ID] = acc
	}
	return nil
}

func (r *memoryAccountsRepo) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

func (r *memoryAccountsRepo) List(ctx context.Context, filter ListFilter) ([]Account, error) {
	var out []Account
	for _, acc := range r.accounts {
		if acc.Scope != filter.UserScope {
			continue
		}
		if !filter.From.IsZero() && acc.DueDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && acc.DueDate.After(filter.To) {
			continue
		}
		if filter.Status != "" && acc.Status != filter.Status {
			continue
		}
		out = append(out, acc)
	}
	return out, nil
}

func (r *memoryAccountsRepo) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]Account, error) {
	var out []Account
	for _, acc := range r.accounts {
		if acc.GroupID != nil && *acc.GroupID == groupID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (r *memoryAccountsRepo) Update(ctx context.Context, acc *Account) error {
	if _, ok := r.accounts[acc.ID]; !ok {
		return ErrNotFound
	}
	r.accounts[acc.ID] = *acc
	return nil
}

func (r *memoryAccountsRepo) MarkPaid(ctx context.Context, id uuid.UUID, payment Payment) error {
	acc, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	acc.Status = StatusPaid
	acc.Payment = &payment
	r.accounts[id] = acc
	return nil
}

func (r *memoryAccountsRepo) SetGeneratedBill(ctx context.Context, ids []uuid.UUID, url string) error {
	for _, id := range ids {
		acc, ok := r.accounts[id]
		if !ok {
			continue
		}
		acc.Fixed.GeneratedBill = url
		r.accounts[id] = acc
	}
	return nil
}

func (r *memoryAccountsRepo) SetGeneratedReport(ctx context.Context, id uuid.UUID, url string) error {
	acc, ok := r.accounts[id]
	if !ok {
		return ErrNotFound
	}
	acc.Fixed.GeneratedReport = url
	r.accounts[id] = acc
	return nil
}

func (r *memoryAccountsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *memoryAccountsRepo) DeleteGroup(ctx context.Context, groupID uuid.UUID) (int64, error) {
	var n int64
	for id, acc := range r.accounts {
		if acc.GroupID != nil && *acc.GroupID == groupID {
			delete(r.accounts, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryAccountsRepo) SummarizeRange(ctx context.Context, filter ListFilter) (Summary, error) {
	rows, _ := r.List(ctx, filter)
	return Summarize(rows), nil
}

func (r *memoryAccountsRepo) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for id, acc := range r.accounts {
		if acc.Status == StatusPending && acc.DueDate.Before(before) {
			acc.Status = StatusOverdue
			r.accounts[id] = acc
			n++
		}
	}
	return n, nil
}

type failingStore struct{}

func (failingStore) Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (failingStore) Delete(ctx context.Context, objectName string) error {
	return nil
}

type fakeProfiles struct{}

func (fakeProfiles) Submitter(ctx context.Context, userID string, scope shared.Scope) (report.SubmitterData, error) {
	return report.SubmitterData{Name: "Maria Silva", Document: "123.456.789-00"}, nil
}

type recordingEnqueuer struct {
	ids []uuid.UUID
}

func (e *recordingEnqueuer) EnqueueFullReport(ctx context.Context, accountID uuid.UUID) error {
	e.ids = append(e.ids, accountID)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryAccountsRepo, *storage.MemoryStore, *recordingEnqueuer) {
	t.Helper()
	repo := newMemoryAccountsRepo()
	store := storage.NewMemoryStore()
	enqueuer := &recordingEnqueuer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, store, fakeProfiles{}, enqueuer, report.NewFetcher(time.Second), nil, logger)
	svc.WithNow(func() time.Time { return day(2026, time.January, 10) })
	return svc, repo, store, enqueuer
}

func TestServiceCreateUniqueGeneratesBill(t *testing.T) {
	svc, repo, store, enqueuer := newTestService(t)

	rows, err := svc.Create(context.Background(), baseDraft(KindUnique), report.BillOptions{ShowSubmitter: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, repo.accounts, 1)

	stored := repo.accounts[rows[0].ID]
	require.NotEmpty(t, stored.Fixed.GeneratedBill)
	require.Equal(t, stored.Fixed.GeneratedBill, rows[0].Fixed.GeneratedBill)

	name := storage.ObjectName("user-1", "personal", rows[0].ID.String(), "boleto.pdf")
	data, ok := store.Object(name)
	require.True(t, ok)
	require.NotEmpty(t, data)

	require.Equal(t, []uuid.UUID{rows[0].ID}, enqueuer.ids)
}

func TestServiceCreateKeepsRowsWhenUploadFails(t *testing.T) {
	repo := newMemoryAccountsRepo()
	enqueuer := &recordingEnqueuer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, failingStore{}, fakeProfiles{}, enqueuer, report.NewFetcher(time.Second), nil, logger)
	svc.WithNow(func() time.Time { return day(2026, time.January, 10) })

	rows, err := svc.Create(context.Background(), baseDraft(KindUnique), report.BillOptions{})
	require.Error(t, err)
	require.Len(t, rows, 1)

	// Rows stay persisted, without a generated bill, and no report is
	// scheduled.
	require.Len(t, repo.accounts, 1)
	require.Empty(t, repo.accounts[rows[0].ID].Fixed.GeneratedBill)
	require.Empty(t, enqueuer.ids)
}

func TestServiceCreateInstallmentStampsEveryRow(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	draft := baseDraft(KindInstallment)
	draft.TotalValue = money.FromCents(120000)
	draft.InstallmentsTotal = 12

	rows, err := svc.Create(context.Background(), draft, report.BillOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 12)

	url := rows[0].Fixed.GeneratedBill
	require.NotEmpty(t, url)
	for _, acc := range repo.accounts {
		require.Equal(t, url, acc.Fixed.GeneratedBill)
	}
}

func TestServiceCreateRejectsEmptyRecurrence(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	draft := baseDraft(KindRecurring)
	draft.RecurrenceEndDate = day(2026, time.January, 1)

	_, err := svc.Create(context.Background(), draft, report.BillOptions{})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.accounts)
}

func TestServiceGetEnforcesScope(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	rows, err := svc.Create(context.Background(), baseDraft(KindUnique), report.BillOptions{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), shared.ScopeHousehold, rows[0].ID)
	require.ErrorIs(t, err, ErrNotFound)

	acc, err := svc.Get(context.Background(), shared.ScopePersonal, rows[0].ID)
	require.NoError(t, err)
	require.Equal(t, rows[0].ID, acc.ID)
}

func TestServiceUpdateSingleRowOnly(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	draft := baseDraft(KindInstallment)
	draft.TotalValue = money.FromCents(30000)
	draft.InstallmentsTotal = 3
	rows, err := svc.Create(context.Background(), draft, report.BillOptions{})
	require.NoError(t, err)

	newValue := money.FromCents(15000)
	updated, err := svc.Update(context.Background(), shared.ScopePersonal, rows[1].ID, UpdateInput{
		TotalValue: &newValue,
	})
	require.NoError(t, err)
	require.Equal(t, int64(15000), updated.TotalValue.Cents())

	// Siblings keep their original split.
	require.Equal(t, int64(10000), repo.accounts[rows[0].ID].TotalValue.Cents())
	require.Equal(t, int64(10000), repo.accounts[rows[2].ID].TotalValue.Cents())
	require.Equal(t, 2, repo.accounts[rows[1].ID].Installment.Current)
}

func TestServicePay(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	rows, err := svc.Create(context.Background(), baseDraft(KindUnique), report.BillOptions{})
	require.NoError(t, err)

	err = svc.Pay(context.Background(), shared.ScopePersonal, rows[0].ID, Payment{Method: "pix"})
	require.NoError(t, err)

	stored := repo.accounts[rows[0].ID]
	require.Equal(t, StatusPaid, stored.Status)
	require.Equal(t, "pix", stored.Payment.Method)
	require.Equal(t, day(2026, time.January, 10), stored.Payment.Date)

	err = svc.Pay(context.Background(), shared.ScopePersonal, rows[0].ID, Payment{Method: "pix"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestServiceDeleteCascade(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	draft := baseDraft(KindInstallment)
	draft.TotalValue = money.FromCents(30000)
	draft.InstallmentsTotal = 3
	rows, err := svc.Create(context.Background(), draft, report.BillOptions{})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), shared.ScopePersonal, rows[0].ID, false)
	require.NoError(t, err)
	require.Len(t, repo.accounts, 2)

	err = svc.Delete(context.Background(), shared.ScopePersonal, rows[1].ID, true)
	require.NoError(t, err)
	require.Empty(t, repo.accounts)
}

func TestServiceDeleteCascadeRequiresGroup(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	rows, err := svc.Create(context.Background(), baseDraft(KindUnique), report.BillOptions{})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), shared.ScopePersonal, rows[0].ID, true)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestServiceGenerateFullReport(t *testing.T) {
	svc, repo, store, _ := newTestService(t)

	draft := baseDraft(KindInstallment)
	draft.TotalValue = money.FromCents(30000)
	draft.InstallmentsTotal = 3
	rows, err := svc.Create(context.Background(), draft, report.BillOptions{})
	require.NoError(t, err)

	url, err := svc.GenerateFullReport(context.Background(), rows[0].ID)
	require.NoError(t, err)
	require.NotEmpty(t, url)
	require.Equal(t, url, repo.accounts[rows[0].ID].Fixed.GeneratedReport)

	name := storage.ObjectName("user-1", "personal", rows[0].ID.String(), "relatorio.pdf")
	data, ok := store.Object(name)
	require.True(t, ok)
	require.NotEmpty(t, data)
}

func TestServiceOverdueSweep(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	past := baseDraft(KindUnique)
	past.DueDate = day(2026, time.January, 5)
	rowsPast, err := svc.Create(context.Background(), past, report.BillOptions{})
	require.NoError(t, err)

	future := baseDraft(KindUnique)
	future.DueDate = day(2026, time.February, 5)
	rowsFuture, err := svc.Create(context.Background(), future, report.BillOptions{})
	require.NoError(t, err)

	n, err := svc.OverdueSweep(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	require.Equal(t, StatusOverdue, repo.accounts[rowsPast[0].ID].Status)
	require.Equal(t, StatusPending, repo.accounts[rowsFuture[0].ID].Status)
}

func TestServiceDashboard(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	draft := baseDraft(KindInstallment)
	draft.TotalValue = money.FromCents(30000)
	draft.InstallmentsTotal = 3
	_, err := svc.Create(context.Background(), draft, report.BillOptions{})
	require.NoError(t, err)

	rows, summary, err := svc.Dashboard(context.Background(), ListFilter{UserScope: shared.ScopePersonal})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].IsGroup)
	require.Len(t, rows[0].Children, 3)
	require.Equal(t, int64(30000), summary.Open.Cents())
	require.True(t, summary.Paid.IsZero())
}
