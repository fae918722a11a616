package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Date:        NewDate(2024, 3, 7),
		Description: "Makan siang",
		Category:    "Makan & Minum",
		Amount:      25000,
		AccountID:   1,
		Type:        Expense,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = -1 }, ErrInvalidAmount},
		{"empty description", func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidTxType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := valid
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRecurringRuleValidate(t *testing.T) {
	rule := RecurringRule{
		Date:           NewDate(2024, 1, 5),
		Description:    "Kost bulanan",
		Category:       "Sewa Rumah",
		AccountID:      1,
		Amount:         1500000,
		Type:           Expense,
		RecurFrequency: Monthly,
		RecurDates:     []int{5},
		Active:         true,
	}
	if err := rule.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}

	bad := rule
	bad.RecurFrequency = "hourly"
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown frequency accepted")
	}

	bad = rule
	bad.RecurDays = []int{7}
	if err := bad.Validate(); err == nil {
		t.Fatal("weekday 7 accepted")
	}

	bad = rule
	bad.RecurDates = []int{0}
	if err := bad.Validate(); err == nil {
		t.Fatal("day-of-month 0 accepted")
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{Name: "Dompet", Type: Cash}).Validate(); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}
	if err := (Account{Name: "", Type: Cash}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err = %v", err)
	}
	if err := (Account{Name: "X", Type: "Piggy"}).Validate(); !errors.Is(err, ErrInvalidAccountType) {
		t.Fatalf("err = %v", err)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 3, 7)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"2024-03-07"` {
		t.Fatalf("marshal = %s", raw)
	}

	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip = %v", back)
	}
	if back.MonthIndex() != 2 {
		t.Fatalf("month index = %d, want 2", back.MonthIndex())
	}
}

func TestCategoriesAddRemove(t *testing.T) {
	c := DefaultCategories()

	if err := c.Add(BucketExpenses, "Langganan"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := c.Add(BucketExpenses, "langganan"); !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("duplicate check should be case-insensitive, err = %v", err)
	}
	// The same name may exist in another bucket.
	if err := c.Add(BucketIncome, "Langganan"); err != nil {
		t.Fatalf("cross-bucket add failed: %v", err)
	}

	if err := c.Remove(BucketExpenses, "Langganan"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := c.Remove(BucketExpenses, "Langganan"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestAssetRecalc(t *testing.T) {
	a := Asset{Quantity: ParseQuantity("0.5"), CurrentPrice: 1000000}
	a.Recalc()
	if a.Value != 500000 {
		t.Fatalf("value = %d", a.Value)
	}

	a.CurrentPrice = 1200000
	a.Recalc()
	if a.Value != 600000 {
		t.Fatalf("value after price change = %d", a.Value)
	}
}
