package accounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/shared"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baseDraft(kind Kind) Draft {
	return Draft{
		UserID:     "user-1",
		Scope:      shared.ScopePersonal,
		Name:       "Energia",
		Kind:       kind,
		TotalValue: money.FromCents(10000),
		DueDate:    day(2026, time.January, 15),
	}
}

func TestExpandUnique(t *testing.T) {
	rows, err := Expand(baseDraft(KindUnique))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, KindUnique, rows[0].Kind)
	require.Nil(t, rows[0].GroupID)
	require.Equal(t, StatusPending, rows[0].Status)
	require.Equal(t, int64(10000), rows[0].TotalValue.Cents())
}

func TestExpandInstallmentTwelveEqual(t *testing.T) {
	draft := baseDraft(KindInstallment)
	draft.TotalValue = money.FromCents(120000)
	draft.InstallmentsTotal = 12

	rows, err := Expand(draft)
	require.NoError(t, err)
	require.Len(t, rows, 12)

	group := rows[0].GroupID
	require.NotNil(t, group)
	for i, row := range rows {
		require.Equal(t, int64(10000), row.TotalValue.Cents())
		require.Equal(t, group, row.GroupID)
		require.Equal(t, i+1, row.Installment.Current)
		require.Equal(t, 12, row.Installment.Total)
		require.Equal(t, day(2026, time.January+time.Month(i), 15), row.DueDate)
	}
}

func TestExpandInstallmentRemainderSpread(t *testing.T) {
	draft := baseDraft(KindInstallment)
	draft.TotalValue = money.FromCents(10000) // R$ 100,00 over 3
	draft.InstallmentsTotal = 3

	rows, err := Expand(draft)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, int64(3334), rows[0].TotalValue.Cents())
	require.Equal(t, int64(3333), rows[1].TotalValue.Cents())
	require.Equal(t, int64(3333), rows[2].TotalValue.Cents())

	sum := money.Sum([]money.Amount{rows[0].TotalValue, rows[1].TotalValue, rows[2].TotalValue})
	require.Equal(t, int64(10000), sum.Cents())
}

func TestExpandInstallmentMonthEndClamped(t *testing.T) {
	draft := baseDraft(KindInstallment)
	draft.TotalValue = money.FromCents(30000)
	draft.InstallmentsTotal = 3
	draft.DueDate = day(2026, time.January, 31)

	rows, err := Expand(draft)
	require.NoError(t, err)
	require.Equal(t, day(2026, time.January, 31), rows[0].DueDate)
	require.Equal(t, day(2026, time.February, 28), rows[1].DueDate)
	require.Equal(t, day(2026, time.March, 31), rows[2].DueDate)
}

func TestExpandRecurringMonthly(t *testing.T) {
	draft := baseDraft(KindRecurring)
	draft.RecurrenceEndDate = day(2026, time.March, 20)

	rows, err := Expand(draft)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, day(2026, time.January, 15), rows[0].DueDate)
	require.Equal(t, day(2026, time.February, 15), rows[1].DueDate)
	require.Equal(t, day(2026, time.March, 15), rows[2].DueDate)
	for _, row := range rows {
		require.Equal(t, int64(10000), row.TotalValue.Cents())
		require.NotNil(t, row.Recurrence)
		require.Equal(t, draft.RecurrenceEndDate, row.Recurrence.EndDate)
	}
}

func TestExpandRecurringEndBeforeStartYieldsNothing(t *testing.T) {
	draft := baseDraft(KindRecurring)
	draft.RecurrenceEndDate = day(2026, time.January, 1)

	rows, err := Expand(draft)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestExpandRejectsCrossKindFields(t *testing.T) {
	unique := baseDraft(KindUnique)
	unique.InstallmentsTotal = 3
	_, err := Expand(unique)
	require.ErrorIs(t, err, shared.ErrValidation)

	installment := baseDraft(KindInstallment)
	installment.InstallmentsTotal = 1
	_, err = Expand(installment)
	require.ErrorIs(t, err, shared.ErrValidation)

	recurring := baseDraft(KindRecurring)
	_, err = Expand(recurring)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestExpandRejectsNonPositiveValue(t *testing.T) {
	draft := baseDraft(KindUnique)
	draft.TotalValue = money.Zero
	_, err := Expand(draft)
	require.ErrorIs(t, err, shared.ErrValidation)
}
