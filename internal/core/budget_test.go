package core

import (
	"encoding/json"
	"testing"
)

func TestBudgetGridMissingLevels(t *testing.T) {
	g := BudgetGrid{}

	if got := g.Amount(2024, 3, BucketExpenses, "Makan & Minum"); got != 0 {
		t.Fatalf("empty grid lookup = %d, want 0", got)
	}
	if got := g.MonthTotal(2024, 3, BucketExpenses); got != 0 {
		t.Fatalf("empty grid month total = %d, want 0", got)
	}
	if got := g.YearTotal(2024, BucketSavings); got != 0 {
		t.Fatalf("empty grid year total = %d, want 0", got)
	}
}

func TestBudgetGridSetAndRead(t *testing.T) {
	g := BudgetGrid{}
	g.Set(2025, 0, BucketIncome, "Gaji Bulanan", 7000000)
	g.Set(2025, 0, BucketIncome, "Freelance", 1500000)
	g.Set(2025, 4, BucketIncome, "Gaji Bulanan", 7000000)
	g.Set(2025, 4, BucketSavings, "Dana Darurat", 500000)

	if got := g.Amount(2025, 0, BucketIncome, "Gaji Bulanan"); got != 7000000 {
		t.Fatalf("cell read = %d", got)
	}
	if got := g.MonthTotal(2025, 0, BucketIncome); got != 8500000 {
		t.Fatalf("month total = %d", got)
	}
	if got := g.YearTotal(2025, BucketIncome); got != 15500000 {
		t.Fatalf("year total = %d", got)
	}
	if got := g.CategoryYearTotal(2025, BucketIncome, "Gaji Bulanan"); got != 14000000 {
		t.Fatalf("category year total = %d", got)
	}

	// Overwrite, not accumulate.
	g.Set(2025, 0, BucketIncome, "Freelance", 2000000)
	if got := g.MonthTotal(2025, 0, BucketIncome); got != 9000000 {
		t.Fatalf("month total after overwrite = %d", got)
	}
}

func TestBudgetGridYearEqualsSumOfMonths(t *testing.T) {
	g := BudgetGrid{}
	g.Set(2024, 1, BucketExpenses, "Sewa Rumah", 2500000)
	g.Set(2024, 6, BucketExpenses, "Sewa Rumah", 2500000)
	g.Set(2024, 6, BucketExpenses, "Hiburan", 300000)
	g.Set(2024, 11, BucketExpenses, "Hadiah", 450000)

	var sum int64
	for m := 0; m < 12; m++ {
		sum += g.MonthTotal(2024, m, BucketExpenses)
	}
	if got := g.YearTotal(2024, BucketExpenses); got != sum {
		t.Fatalf("year total %d != sum of month totals %d", got, sum)
	}
}

func TestBudgetGridJSONRoundTrip(t *testing.T) {
	g := BudgetGrid{}
	g.Set(2025, 2, BucketSavings, "Tabungan Umum", 1000000)

	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back BudgetGrid
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := back.Amount(2025, 2, BucketSavings, "Tabungan Umum"); got != 1000000 {
		t.Fatalf("round-trip cell = %d", got)
	}
}

func TestBudgetGridClone(t *testing.T) {
	g := BudgetGrid{}
	g.Set(2025, 0, BucketIncome, "Bonus", 100)

	c := g.Clone()
	c.Set(2025, 0, BucketIncome, "Bonus", 999)

	if got := g.Amount(2025, 0, BucketIncome, "Bonus"); got != 100 {
		t.Fatalf("clone aliases original: %d", got)
	}
}
