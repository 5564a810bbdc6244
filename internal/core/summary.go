package core

// BudgetStatus reports how a month's expenses compare to its budget.
type BudgetStatus struct {
	Month          string
	BudgetCents    int64
	SpentCents     int64
	RemainingCents int64
	OverBudget     bool
}

// ComputeBudgetStatus sums the expense transactions falling in the budget's
// month and derives the remaining amount. Income transactions and
// transactions from other months are ignored.
func ComputeBudgetStatus(month string, budget Money, transactions []Transaction) BudgetStatus {
	var spent int64
	for _, t := range transactions {
		if t.Type != Expense {
			continue
		}
		if MonthKey(t.TransactionDate) != month {
			continue
		}
		spent += t.Amount.Cents
	}
	remaining := budget.Cents - spent
	return BudgetStatus{
		Month:          month,
		BudgetCents:    budget.Cents,
		SpentCents:     spent,
		RemainingCents: remaining,
		OverBudget:     remaining < 0,
	}
}
