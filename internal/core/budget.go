package core

// Bucket is one of the three budget classifications.
type Bucket string

const (
	BucketIncome   Bucket = "income"
	BucketSavings  Bucket = "savings"
	BucketExpenses Bucket = "expenses"
)

// Buckets lists every budget bucket in display order.
var Buckets = []Bucket{BucketIncome, BucketSavings, BucketExpenses}

func (b Bucket) Valid() bool {
	switch b {
	case BucketIncome, BucketSavings, BucketExpenses:
		return true
	}
	return false
}

// BudgetGrid is the sparse planned-amount store:
// year → month (0-11) → bucket → category → amount.
// Any path may be absent; reads treat absent as zero and never fail on a
// missing intermediate level. It marshals as the nested JSON object the
// dashboard blob uses.
type BudgetGrid map[int]map[int]map[Bucket]map[string]int64

// Amount returns the planned amount for one cell, 0 when any level is absent.
func (g BudgetGrid) Amount(year, month int, b Bucket, category string) int64 {
	return g[year][month][b][category]
}

// Set writes one cell, creating intermediate levels as needed.
func (g BudgetGrid) Set(year, month int, b Bucket, category string, amount int64) {
	yearData, ok := g[year]
	if !ok {
		yearData = make(map[int]map[Bucket]map[string]int64)
		g[year] = yearData
	}
	monthData, ok := yearData[month]
	if !ok {
		monthData = make(map[Bucket]map[string]int64)
		yearData[month] = monthData
	}
	bucketData, ok := monthData[b]
	if !ok {
		bucketData = make(map[string]int64)
		monthData[b] = bucketData
	}
	bucketData[category] = amount
}

// MonthTotal sums every category of a bucket for one month.
func (g BudgetGrid) MonthTotal(year, month int, b Bucket) int64 {
	var total int64
	for _, v := range g[year][month][b] {
		total += v
	}
	return total
}

// YearTotal sums a bucket across all twelve months of a year.
func (g BudgetGrid) YearTotal(year int, b Bucket) int64 {
	var total int64
	for month := 0; month < 12; month++ {
		total += g.MonthTotal(year, month, b)
	}
	return total
}

// CategoryYearTotal sums a single category of a bucket across a year.
func (g BudgetGrid) CategoryYearTotal(year int, b Bucket, category string) int64 {
	var total int64
	for month := 0; month < 12; month++ {
		total += g.Amount(year, month, b, category)
	}
	return total
}

// Clone returns a deep copy, so snapshots handed to readers cannot alias the
// writer's grid.
func (g BudgetGrid) Clone() BudgetGrid {
	out := make(BudgetGrid, len(g))
	for year, months := range g {
		for month, buckets := range months {
			for bucket, cats := range buckets {
				for cat, amount := range cats {
					out.Set(year, month, bucket, cat, amount)
				}
			}
		}
	}
	return out
}
