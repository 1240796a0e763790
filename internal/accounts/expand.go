package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/money"
	"github.com/contaflow/contaflow/internal/shared"
)

// Expand turns a submitted draft into the ordered list of concrete
// account rows to persist. Unique drafts yield one row. Installment
// drafts yield InstallmentsTotal rows whose values are an exact
// largest-remainder split of the submitted total, due monthly.
// Recurring drafts yield one row per month from DueDate through
// RecurrenceEndDate inclusive. Sibling rows share a freshly generated
// group ID.
func Expand(draft Draft) ([]Account, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	base := Account{
		UserID:       draft.UserID,
		Scope:        draft.Scope,
		Name:         draft.Name,
		Kind:         draft.Kind,
		TotalValue:   draft.TotalValue,
		FeesAndFines: draft.FeesAndFines,
		DueDate:      draft.DueDate,
		Status:       StatusPending,
		Fixed:        draft.Fixed,
		Custom:       draft.Custom,
	}

	switch draft.Kind {
	case KindUnique:
		one := base
		one.ID = uuid.New()
		return []Account{one}, nil

	case KindInstallment:
		group := uuid.New()
		parts := money.Split(draft.TotalValue, draft.InstallmentsTotal)
		out := make([]Account, draft.InstallmentsTotal)
		for i := range out {
			row := base
			row.ID = uuid.New()
			row.GroupID = &group
			row.TotalValue = parts[i]
			row.DueDate = addMonthsClamped(draft.DueDate, i)
			row.Installment = &InstallmentInfo{Current: i + 1, Total: draft.InstallmentsTotal}
			out[i] = row
		}
		return out, nil

	case KindRecurring:
		group := uuid.New()
		var out []Account
		for i := 0; ; i++ {
			due := addMonthsClamped(draft.DueDate, i)
			if due.After(draft.RecurrenceEndDate) {
				break
			}
			row := base
			row.ID = uuid.New()
			row.GroupID = &group
			row.DueDate = due
			row.Recurrence = &RecurrenceInfo{EndDate: draft.RecurrenceEndDate}
			out = append(out, row)
		}
		return out, nil
	}

	return nil, fmt.Errorf("%w: unknown account kind %q", shared.ErrValidation, draft.Kind)
}

func validateDraft(draft Draft) error {
	if draft.Name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	}
	if !draft.TotalValue.IsPositive() {
		return fmt.Errorf("%w: total value must be positive", shared.ErrValidation)
	}
	if draft.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", shared.ErrValidation)
	}
	switch draft.Kind {
	case KindUnique:
		if draft.InstallmentsTotal != 0 || !draft.RecurrenceEndDate.IsZero() {
			return fmt.Errorf("%w: unique accounts take no installment or recurrence fields", shared.ErrValidation)
		}
	case KindInstallment:
		if draft.InstallmentsTotal < 2 {
			return fmt.Errorf("%w: installments total must be at least 2", shared.ErrValidation)
		}
		if !draft.RecurrenceEndDate.IsZero() {
			return fmt.Errorf("%w: installment accounts take no recurrence end date", shared.ErrValidation)
		}
	case KindRecurring:
		if draft.RecurrenceEndDate.IsZero() {
			return fmt.Errorf("%w: recurrence end date is required", shared.ErrValidation)
		}
		if draft.InstallmentsTotal != 0 {
			return fmt.Errorf("%w: recurring accounts take no installments total", shared.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown account kind %q", shared.ErrValidation, draft.Kind)
	}
	return nil
}

// addMonthsClamped advances d by months whole calendar months,
// clamping to the last day when the target month is shorter
// (Jan 31 + 1 month = Feb 28/29, never Mar 2).
func addMonthsClamped(d time.Time, months int) time.Time {
	if months == 0 {
		return d
	}
	year, month, day := d.Date()
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}
