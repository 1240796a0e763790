package accounts

import (
	"sort"

	"github.com/contaflow/contaflow/internal/money"
)

// BuildDashboard partitions a flat account list into singles and
// installment groups, synthesizing one parent row per group for
// display. Parent value is the sum of sibling values; parent status
// follows the priority overdue > pending > paid. Rows come back
// sorted ascending by due date. Nothing here is persisted.
func BuildDashboard(accounts []Account) []DashboardRow {
	groups := make(map[string][]Account)
	var rows []DashboardRow

	for _, acc := range accounts {
		if acc.Kind == KindInstallment && acc.GroupID != nil {
			key := acc.GroupID.String()
			groups[key] = append(groups[key], acc)
			continue
		}
		rows = append(rows, DashboardRow{Account: acc})
	}

	for _, siblings := range groups {
		sort.Slice(siblings, func(i, j int) bool {
			return siblings[i].DueDate.Before(siblings[j].DueDate)
		})
		rows = append(rows, synthesizeParent(siblings))
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Account.DueDate.Before(rows[j].Account.DueDate)
	})
	return rows
}

func synthesizeParent(siblings []Account) DashboardRow {
	parent := siblings[0]
	parent.Installment = nil

	total := money.Zero
	hasOverdue, hasPending := false, false
	for _, s := range siblings {
		total = total.Add(s.TotalValue)
		switch s.Status {
		case StatusOverdue:
			hasOverdue = true
		case StatusPending:
			hasPending = true
		}
	}
	parent.TotalValue = total
	switch {
	case hasOverdue:
		parent.Status = StatusOverdue
	case hasPending:
		parent.Status = StatusPending
	default:
		parent.Status = StatusPaid
	}
	parent.Payment = nil

	return DashboardRow{Account: parent, IsGroup: true, Children: siblings}
}

// Summarize reduces accounts into paid/open/overdue value totals.
func Summarize(accounts []Account) Summary {
	var sum Summary
	for _, acc := range accounts {
		switch acc.Status {
		case StatusPaid:
			sum.Paid = sum.Paid.Add(acc.TotalValue)
		case StatusOverdue:
			sum.Overdue = sum.Overdue.Add(acc.TotalValue)
		default:
			sum.Open = sum.Open.Add(acc.TotalValue)
		}
	}
	return sum
}
