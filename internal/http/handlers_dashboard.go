package http

import (
	"net/http"

	"maymonee/internal/auth"
	"maymonee/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type categoryRow struct {
	Name     string `json:"name"`
	Budget   int64  `json:"budget"`
	Realized int64  `json:"realized"`
}

type summaryChanges struct {
	Income   core.Change `json:"income"`
	Spending core.Change `json:"spending"`
	Savings  core.Change `json:"savings"`
	Cashflow core.Change `json:"cashflow"`
}

type bucketTotals struct {
	Income   int64 `json:"income"`
	Savings  int64 `json:"savings"`
	Expenses int64 `json:"expenses"`
}

type categoryTable struct {
	Income   []categoryRow `json:"income"`
	Savings  []categoryRow `json:"savings"`
	Expenses []categoryRow `json:"expenses"`
}

type summaryResponse struct {
	Year          int                        `json:"year"`
	Month         int                        `json:"month"`
	Yearly        bool                       `json:"yearly"`
	Current       core.PeriodSummary         `json:"current"`
	Prev          core.PeriodSummary         `json:"previous"`
	Changes       summaryChanges             `json:"changes"`
	Budgeted      bucketTotals               `json:"budgeted"`
	Categories    categoryTable              `json:"categories"`
	TotalBalance  int64                      `json:"totalBalance"`
	AccountTotals map[core.AccountType]int64 `json:"accountTotals"`
	Assets        core.AssetBreakdown        `json:"assets"`
	Trend         []core.TrendPoint          `json:"trend"`
}

// handleSummary runs the aggregation engine over the cached snapshot for the
// requested period. The month query parameter is 1-12.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	defYear, defMonth := currentYearMonth()
	year := queryInt(r, "year", defYear)
	month := queryInt(r, "month", defMonth)
	if month < 1 || month > 12 {
		month = defMonth
	}
	yearly := queryBool(r, "yearly")

	snap, err := s.loadSnapshot(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	period := core.Period{Year: year, Month: month - 1, Yearly: yearly}
	current := snap.Summarize(period)
	previous := snap.PreviousPeriod(period)

	resp := summaryResponse{
		Year:          year,
		Month:         month,
		Yearly:        yearly,
		Current:       current,
		Prev:          previous,
		TotalBalance:  snap.TotalBalance(),
		AccountTotals: snap.AccountTypeTotals(),
		Assets:        snap.AssetTotals(),
	}
	resp.Changes.Income = core.CompareChange(current.Income, previous.Income, core.GoodWhenUp)
	resp.Changes.Spending = core.CompareChange(current.Spending, previous.Spending, core.GoodWhenDown)
	resp.Changes.Savings = core.CompareChange(current.Savings, previous.Savings, core.GoodWhenUp)
	resp.Changes.Cashflow = core.CompareChange(current.Cashflow, previous.Cashflow, core.GoodWhenUp)

	resp.Budgeted.Income = snap.AggregatedBudgetTotal(core.BucketIncome, period)
	resp.Budgeted.Savings = snap.AggregatedBudgetTotal(core.BucketSavings, period)
	resp.Budgeted.Expenses = snap.AggregatedBudgetTotal(core.BucketExpenses, period)

	resp.Categories.Income = categoryRows(snap, snap.Categories.Income, core.BucketIncome, core.Income, period)
	resp.Categories.Expenses = categoryRows(snap, snap.Categories.Expenses, core.BucketExpenses, core.Expense, period)
	for _, name := range snap.Categories.Savings {
		resp.Categories.Savings = append(resp.Categories.Savings, categoryRow{
			Name:   name,
			Budget: snap.BudgetTotal(core.BucketSavings, name, period),
		})
	}

	if yearly {
		resp.Trend = snap.YearlyTrend(year)
	} else {
		resp.Trend = snap.MonthlyTrend(year)
	}

	writeJSON(w, http.StatusOK, resp)
}

func categoryRows(snap *core.Snapshot, names []string, b core.Bucket, t core.TxType, p core.Period) []categoryRow {
	rows := make([]categoryRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, categoryRow{
			Name:     name,
			Budget:   snap.BudgetTotal(b, name, p),
			Realized: snap.CategoryRealization(name, t, p),
		})
	}
	return rows
}
