package accounts

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/permissions"
	"github.com/contaflow/contaflow/internal/platform/storage"
	"github.com/contaflow/contaflow/internal/shared"
	"github.com/contaflow/contaflow/report"
)

const createBody = `{
	"name": "Energia",
	"kind": "unique",
	"total_value": "100.00",
	"due_date": "2026-01-15",
	"bill_options": {}
}`

func newCreateRequest(t *testing.T) *http.Request {
	t.Helper()
	sess := &shared.Session{}
	sess.SetUser("user-1")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	ctx := shared.ContextWithSession(req.Context(), sess)
	ctx = shared.ContextWithScope(ctx, shared.ScopePersonal)
	return req.WithContext(ctx)
}

func newTestHandler(t *testing.T, store storage.ObjectStore) (*Handler, *memoryAccountsRepo) {
	t.Helper()
	repo := newMemoryAccountsRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, store, fakeProfiles{}, nil, report.NewFetcher(time.Second), nil, logger)
	svc.WithNow(func() time.Time { return day(2026, time.January, 10) })
	return NewHandler(logger, svc, permissions.Middleware{}), repo
}

func TestHandlerCreateSuccess(t *testing.T) {
	h, repo := newTestHandler(t, storage.NewMemoryStore())

	rec := httptest.NewRecorder()
	h.create(rec, newCreateRequest(t))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.accounts, 1)

	var resp struct {
		Accounts        []Account `json:"accounts"`
		GenerationError string    `json:"generation_error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Accounts, 1)
	require.Empty(t, resp.GenerationError)
	require.NotEmpty(t, resp.Accounts[0].Fixed.GeneratedBill)
}

func TestHandlerCreateReportsBillFailure(t *testing.T) {
	h, repo := newTestHandler(t, failingStore{})

	rec := httptest.NewRecorder()
	h.create(rec, newCreateRequest(t))

	// Rows were saved, so the response is still a 201, but it must
	// carry the generation failure.
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.accounts, 1)

	var resp struct {
		Accounts        []Account `json:"accounts"`
		GenerationError string    `json:"generation_error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Accounts, 1)
	require.NotEmpty(t, resp.GenerationError)
	require.Empty(t, resp.Accounts[0].Fixed.GeneratedBill)
}
