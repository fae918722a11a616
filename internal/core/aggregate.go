package core

import "strconv"

// Period selects the scope every aggregation runs over: a single calendar
// month (Year + Month, 0-based) or a whole calendar year when Yearly is set.
type Period struct {
	Year   int
	Month  int // 0-11; ignored when Yearly
	Yearly bool
}

// Previous returns the period immediately before p: the prior year in yearly
// view, otherwise the prior month, rolling January back to December of the
// previous year.
func (p Period) Previous() Period {
	if p.Yearly {
		return Period{Year: p.Year - 1, Month: p.Month, Yearly: true}
	}
	if p.Month == 0 {
		return Period{Year: p.Year - 1, Month: 11}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Snapshot is the read-only application state the aggregation engine derives
// from. Mutation handlers are the only writers; the engine never mutates it.
type Snapshot struct {
	Accounts     []Account       `json:"accounts"`
	Transactions []Transaction   `json:"transactions"`
	Assets       []Asset         `json:"assets"`
	Recurring    []RecurringRule `json:"recurring"`
	Categories   Categories      `json:"categories"`
	Budgets      BudgetGrid      `json:"budgets"`
}

// contains reports whether a transaction falls inside the period.
func (p Period) contains(d Date) bool {
	if d.Year() != p.Year {
		return false
	}
	return p.Yearly || d.MonthIndex() == p.Month
}

// BudgetTotal returns the planned amount for one category of a bucket: the
// single cell in monthly view, the category's sum over all twelve months in
// yearly view. Absent cells count as zero.
func (s *Snapshot) BudgetTotal(b Bucket, category string, p Period) int64 {
	if p.Yearly {
		return s.Budgets.CategoryYearTotal(p.Year, b, category)
	}
	return s.Budgets.Amount(p.Year, p.Month, b, category)
}

// AggregatedBudgetTotal sums a whole bucket over the period.
func (s *Snapshot) AggregatedBudgetTotal(b Bucket, p Period) int64 {
	if p.Yearly {
		return s.Budgets.YearTotal(p.Year, b)
	}
	return s.Budgets.MonthTotal(p.Year, p.Month, b)
}

// RealizedTotal sums recorded transactions of one type inside the period.
func (s *Snapshot) RealizedTotal(t TxType, p Period) int64 {
	var total int64
	for _, tx := range s.Transactions {
		if tx.Type == t && p.contains(tx.Date) {
			total += tx.Amount
		}
	}
	return total
}

// CategoryRealization sums recorded transactions of one type and category
// inside the period.
func (s *Snapshot) CategoryRealization(category string, t TxType, p Period) int64 {
	var total int64
	for _, tx := range s.Transactions {
		if tx.Type == t && tx.Category == category && p.contains(tx.Date) {
			total += tx.Amount
		}
	}
	return total
}

// Cashflow is realized income minus realized expenses and budgeted savings.
// Savings is a planning bucket, not a transaction type, so it reduces
// available cashflow by plan rather than by actual outflow.
func (s *Snapshot) Cashflow(p Period) int64 {
	return s.RealizedTotal(Income, p) -
		(s.RealizedTotal(Expense, p) + s.AggregatedBudgetTotal(BucketSavings, p))
}

// PeriodSummary bundles the four headline figures for one period.
type PeriodSummary struct {
	Income   int64 `json:"income"`
	Spending int64 `json:"spending"`
	Savings  int64 `json:"savings"`
	Cashflow int64 `json:"cashflow"`
}

// Summarize computes the headline figures for a period.
func (s *Snapshot) Summarize(p Period) PeriodSummary {
	income := s.RealizedTotal(Income, p)
	spending := s.RealizedTotal(Expense, p)
	savings := s.AggregatedBudgetTotal(BucketSavings, p)
	return PeriodSummary{
		Income:   income,
		Spending: spending,
		Savings:  savings,
		Cashflow: income - (spending + savings),
	}
}

// PreviousPeriod computes the headline figures for the period before p,
// using the same aggregation rules.
func (s *Snapshot) PreviousPeriod(p Period) PeriodSummary {
	return s.Summarize(p.Previous())
}

// Polarity declares which direction of change is a good sign for a metric.
type Polarity int

const (
	// GoodWhenUp marks metrics where an increase is favorable (income,
	// savings, cashflow).
	GoodWhenUp Polarity = iota
	// GoodWhenDown marks metrics where an increase is unfavorable (spending).
	GoodWhenDown
)

// Change is a period-over-period comparison of one metric.
type Change struct {
	Diff       int64   `json:"diff"`
	Percentage float64 `json:"percentage"`
	Favorable  bool    `json:"favorable"`
}

// CompareChange derives the delta, percentage and favorability of a metric
// against its previous-period value. With a zero previous value the
// percentage is 100 for any positive current value, otherwise 0.
func CompareChange(current, previous int64, pol Polarity) Change {
	diff := current - previous
	var pct float64
	switch {
	case previous != 0:
		pct = float64(diff) / float64(previous) * 100
	case current > 0:
		pct = 100
	}
	increased := diff >= 0
	return Change{
		Diff:       diff,
		Percentage: pct,
		Favorable:  increased == (pol == GoodWhenUp),
	}
}

// TotalBalance sums every account balance.
func (s *Snapshot) TotalBalance() int64 {
	var total int64
	for _, a := range s.Accounts {
		total += a.Balance
	}
	return total
}

// AccountTypeTotals breaks the total balance down by account type.
func (s *Snapshot) AccountTypeTotals() map[AccountType]int64 {
	totals := make(map[AccountType]int64, 3)
	for _, a := range s.Accounts {
		totals[a.Type] += a.Balance
	}
	return totals
}

// AssetBreakdown is the derived market-value view of the asset ledger.
type AssetBreakdown struct {
	Total       int64                `json:"total"`
	ByClass     map[AssetClass]int64 `json:"byClass"`
	ByLiquidity map[Liquidity]int64  `json:"byLiquidity"`
}

// AssetTotals aggregates asset values by class and liquidity.
func (s *Snapshot) AssetTotals() AssetBreakdown {
	b := AssetBreakdown{
		ByClass:     make(map[AssetClass]int64),
		ByLiquidity: make(map[Liquidity]int64),
	}
	for _, a := range s.Assets {
		b.Total += a.Value
		b.ByClass[a.Category] += a.Value
		b.ByLiquidity[a.Liquidity] += a.Value
	}
	return b
}

// TrendPoint is one budget-vs-realized sample of the trend series.
type TrendPoint struct {
	Label           string `json:"label"`
	BudgetIncome    int64  `json:"budgetIncome"`
	RealizedIncome  int64  `json:"realizedIncome"`
	BudgetExpense   int64  `json:"budgetExpense"`
	RealizedExpense int64  `json:"realizedExpense"`
}

var monthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// MonthlyTrend returns one point per month of the given year.
func (s *Snapshot) MonthlyTrend(year int) []TrendPoint {
	points := make([]TrendPoint, 0, 12)
	for month := 0; month < 12; month++ {
		p := Period{Year: year, Month: month}
		points = append(points, TrendPoint{
			Label:           monthLabels[month],
			BudgetIncome:    s.Budgets.MonthTotal(year, month, BucketIncome),
			RealizedIncome:  s.RealizedTotal(Income, p),
			BudgetExpense:   s.Budgets.MonthTotal(year, month, BucketExpenses),
			RealizedExpense: s.RealizedTotal(Expense, p),
		})
	}
	return points
}

// YearlyTrend returns one point per year for the five-year window ending at
// endYear.
func (s *Snapshot) YearlyTrend(endYear int) []TrendPoint {
	points := make([]TrendPoint, 0, 5)
	for year := endYear - 4; year <= endYear; year++ {
		p := Period{Year: year, Yearly: true}
		points = append(points, TrendPoint{
			Label:           strconv.Itoa(year),
			BudgetIncome:    s.Budgets.YearTotal(year, BucketIncome),
			RealizedIncome:  s.RealizedTotal(Income, p),
			BudgetExpense:   s.Budgets.YearTotal(year, BucketExpenses),
			RealizedExpense: s.RealizedTotal(Expense, p),
		})
	}
	return points
}
