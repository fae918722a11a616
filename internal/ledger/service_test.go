package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"maymonee/internal/core"
	"maymonee/internal/ledger"
	"maymonee/internal/memstore"
)

func newTestService() *ledger.Service {
	return ledger.NewService(memstore.New(), nil)
}

func mustAccount(t *testing.T, svc *ledger.Service, userID int64, name string, balance int64) core.Account {
	t.Helper()
	acc, err := svc.CreateAccount(context.Background(), userID, core.Account{
		Name:    name,
		Type:    core.Bank,
		Balance: balance,
	})
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return acc
}

func TestService_AddTransaction(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	acc := mustAccount(t, svc, 1, "Main", 100000)

	tx, err := svc.AddTransaction(ctx, 1, core.Transaction{
		Date:        core.NewDate(2024, 3, 7),
		Description: "Lunch",
		Category:    "Makan & Minum",
		Amount:      25000,
		AccountID:   acc.ID,
		Type:        core.Expense,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if tx.ID == 0 {
		t.Error("AddTransaction() should assign an id")
	}

	got, err := svc.GetAccount(ctx, 1, acc.ID)
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if got.Balance != 75000 {
		t.Errorf("balance after expense = %d, want 75000", got.Balance)
	}
}

func TestService_AddTransaction_InvalidAccount(t *testing.T) {
	svc := newTestService()
	_, err := svc.AddTransaction(context.Background(), 1, core.Transaction{
		Date:        core.NewDate(2024, 3, 7),
		Description: "Lunch",
		Category:    "Makan & Minum",
		Amount:      25000,
		AccountID:   999,
		Type:        core.Expense,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("AddTransaction() error = %v, want ErrNotFound", err)
	}
}

func TestService_UpdateTransaction_SameAccount(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	acc := mustAccount(t, svc, 1, "Main", 100000)

	tx, err := svc.AddTransaction(ctx, 1, core.Transaction{
		Date:        core.NewDate(2024, 3, 7),
		Description: "Lunch",
		Category:    "Makan & Minum",
		Amount:      25000,
		AccountID:   acc.ID,
		Type:        core.Expense,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	tx.Amount = 40000
	if _, err := svc.UpdateTransaction(ctx, 1, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	got, _ := svc.GetAccount(ctx, 1, acc.ID)
	if got.Balance != 60000 {
		t.Errorf("balance after revision = %d, want 60000", got.Balance)
	}
}

func TestService_UpdateTransaction_MoveAccount(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a := mustAccount(t, svc, 1, "A", 100000)
	b := mustAccount(t, svc, 1, "B", 100000)

	tx, err := svc.AddTransaction(ctx, 1, core.Transaction{
		Date:        core.NewDate(2024, 3, 7),
		Description: "Groceries",
		Category:    "Belanja",
		Amount:      30000,
		AccountID:   a.ID,
		Type:        core.Expense,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	tx.AccountID = b.ID
	if _, err := svc.UpdateTransaction(ctx, 1, tx); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	gotA, _ := svc.GetAccount(ctx, 1, a.ID)
	gotB, _ := svc.GetAccount(ctx, 1, b.ID)
	if gotA.Balance != 100000 {
		t.Errorf("source balance = %d, want 100000", gotA.Balance)
	}
	if gotB.Balance != 70000 {
		t.Errorf("target balance = %d, want 70000", gotB.Balance)
	}
}

func TestService_DeleteTransaction(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	acc := mustAccount(t, svc, 1, "Main", 100000)

	tx, err := svc.AddTransaction(ctx, 1, core.Transaction{
		Date:        core.NewDate(2024, 3, 7),
		Description: "Bonus",
		Category:    "Bonus",
		Amount:      50000,
		AccountID:   acc.ID,
		Type:        core.Income,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	if err := svc.DeleteTransaction(ctx, 1, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	got, _ := svc.GetAccount(ctx, 1, acc.ID)
	if got.Balance != 100000 {
		t.Errorf("balance after delete = %d, want 100000", got.Balance)
	}
	if txs, _ := svc.ListTransactions(ctx, 1); len(txs) != 0 {
		t.Errorf("transactions left = %d, want 0", len(txs))
	}
}

func TestService_Transfer(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	from := mustAccount(t, svc, 1, "Dompet Utama", 500000)
	to := mustAccount(t, svc, 1, "Tabungan", 0)

	out, in, err := svc.Transfer(ctx, 1, from.ID, to.ID, 200000, core.NewDate(2024, 3, 7))
	if err != nil {
		t.Fatalf("Transfer() error = %v", err)
	}
	if out.Category != core.CategoryTransferOut || in.Category != core.CategoryTransferIn {
		t.Errorf("transfer categories = %q/%q", out.Category, in.Category)
	}
	if out.Description != "Transfer ke Tabungan" {
		t.Errorf("out description = %q", out.Description)
	}
	if in.Description != "Transfer dari Dompet Utama" {
		t.Errorf("in description = %q", in.Description)
	}

	gotFrom, _ := svc.GetAccount(ctx, 1, from.ID)
	gotTo, _ := svc.GetAccount(ctx, 1, to.ID)
	if gotFrom.Balance != 300000 || gotTo.Balance != 200000 {
		t.Errorf("balances = %d/%d, want 300000/200000", gotFrom.Balance, gotTo.Balance)
	}
}

func TestService_Transfer_Insufficient(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	from := mustAccount(t, svc, 1, "A", 1000)
	to := mustAccount(t, svc, 1, "B", 0)

	_, _, err := svc.Transfer(ctx, 1, from.ID, to.ID, 5000, core.NewDate(2024, 3, 7))
	if !errors.Is(err, core.ErrInsufficientFunds) {
		t.Fatalf("Transfer() error = %v, want ErrInsufficientFunds", err)
	}

	gotFrom, _ := svc.GetAccount(ctx, 1, from.ID)
	if gotFrom.Balance != 1000 {
		t.Errorf("balance after failed transfer = %d, want 1000", gotFrom.Balance)
	}
	if txs, _ := svc.ListTransactions(ctx, 1); len(txs) != 0 {
		t.Errorf("transactions after failed transfer = %d, want 0", len(txs))
	}
}

func TestService_DeleteAccount_InUse(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	acc := mustAccount(t, svc, 1, "Main", 100000)

	if _, err := svc.AddTransaction(ctx, 1, core.Transaction{
		Date:        core.NewDate(2024, 3, 7),
		Description: "Lunch",
		Category:    "Makan & Minum",
		Amount:      25000,
		AccountID:   acc.ID,
		Type:        core.Expense,
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	if err := svc.DeleteAccount(ctx, 1, acc.ID); !errors.Is(err, core.ErrAccountInUse) {
		t.Errorf("DeleteAccount() error = %v, want ErrAccountInUse", err)
	}

	empty := mustAccount(t, svc, 1, "Empty", 0)
	if err := svc.DeleteAccount(ctx, 1, empty.ID); err != nil {
		t.Errorf("DeleteAccount() empty account error = %v", err)
	}
}

func TestService_BuyAsset(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	acc := mustAccount(t, svc, 1, "Main", 10000000)

	order := core.BuyOrder{
		Name:      "BBCA",
		Class:     "Saham",
		Liquidity: core.Liquid,
		Quantity:  decimal.NewFromInt(10),
		Unit:      "lot",
		UnitPrice: 500000,
	}
	asset, tx, err := svc.BuyAsset(ctx, 1, acc.ID, order, core.NewDate(2024, 3, 7))
	if err != nil {
		t.Fatalf("BuyAsset() error = %v", err)
	}
	if asset.Value != 5000000 {
		t.Errorf("asset value = %d, want 5000000", asset.Value)
	}
	if tx.Category != core.CategoryInvestment || tx.Type != core.Expense {
		t.Errorf("buy transaction = %+v", tx)
	}
	if tx.Description != "Investasi: Beli BBCA" {
		t.Errorf("buy description = %q", tx.Description)
	}

	got, _ := svc.GetAccount(ctx, 1, acc.ID)
	if got.Balance != 5000000 {
		t.Errorf("balance after buy = %d, want 5000000", got.Balance)
	}

	t.Run("merge into existing holding", func(t *testing.T) {
		order.Name = "bbca"
		order.Quantity = decimal.NewFromInt(5)
		order.UnitPrice = 520000
		merged, _, err := svc.BuyAsset(ctx, 1, acc.ID, order, core.NewDate(2024, 3, 8))
		if err != nil {
			t.Fatalf("BuyAsset() merge error = %v", err)
		}
		if merged.ID != asset.ID {
			t.Errorf("merge created new asset %d, want %d", merged.ID, asset.ID)
		}
		if !merged.Quantity.Equal(decimal.NewFromInt(15)) {
			t.Errorf("merged quantity = %s, want 15", merged.Quantity)
		}
		if merged.CurrentPrice != 520000 {
			t.Errorf("merged price = %d, want 520000", merged.CurrentPrice)
		}
		if assets, _ := svc.ListAssets(ctx, 1); len(assets) != 1 {
			t.Errorf("assets = %d, want 1", len(assets))
		}
	})
}

func TestService_SellAsset(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	acc := mustAccount(t, svc, 1, "Main", 10000000)

	asset, _, err := svc.BuyAsset(ctx, 1, acc.ID, core.BuyOrder{
		Name:      "Emas Antam",
		Class:     "Emas",
		Liquidity: core.Liquid,
		Quantity:  decimal.NewFromInt(10),
		Unit:      "gram",
		UnitPrice: 100000,
	}, core.NewDate(2024, 3, 7))
	if err != nil {
		t.Fatalf("BuyAsset() error = %v", err)
	}

	tx, err := svc.SellAsset(ctx, 1, asset.ID, acc.ID, decimal.NewFromInt(4), core.NewDate(2024, 4, 1))
	if err != nil {
		t.Fatalf("SellAsset() error = %v", err)
	}
	if tx.Amount != 400000 || tx.Type != core.Income {
		t.Errorf("sell transaction = %+v", tx)
	}
	if tx.Description != "Capital Gain: Jual Emas Antam" {
		t.Errorf("sell description = %q", tx.Description)
	}

	got, _ := svc.GetAccount(ctx, 1, acc.ID)
	if got.Balance != 9400000 {
		t.Errorf("balance after partial sell = %d, want 9400000", got.Balance)
	}

	t.Run("full sell removes holding", func(t *testing.T) {
		if _, err := svc.SellAsset(ctx, 1, asset.ID, acc.ID, decimal.NewFromInt(6), core.NewDate(2024, 4, 2)); err != nil {
			t.Fatalf("SellAsset() error = %v", err)
		}
		if assets, _ := svc.ListAssets(ctx, 1); len(assets) != 0 {
			t.Errorf("assets after full sell = %d, want 0", len(assets))
		}
	})
}

func TestService_UpdateAssetPrice(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	asset, err := svc.AddAsset(ctx, 1, core.Asset{
		Name:         "Reksa Dana Pasar Uang",
		Category:     "Reksa Dana",
		Liquidity:    core.Liquid,
		Quantity:     decimal.NewFromInt(100),
		Unit:         "unit",
		CurrentPrice: 1000,
	})
	if err != nil {
		t.Fatalf("AddAsset() error = %v", err)
	}
	if asset.Value != 100000 {
		t.Errorf("initial value = %d, want 100000", asset.Value)
	}

	updated, err := svc.UpdateAssetPrice(ctx, 1, asset.ID, 1200)
	if err != nil {
		t.Fatalf("UpdateAssetPrice() error = %v", err)
	}
	if updated.Value != 120000 {
		t.Errorf("value after reprice = %d, want 120000", updated.Value)
	}
}

func TestService_BudgetCell(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.SetBudgetCell(ctx, 1, 2024, 2, core.BucketExpenses, "Makan & Minum", 1500000); err != nil {
		t.Fatalf("SetBudgetCell() error = %v", err)
	}

	grid, err := svc.GetBudgets(ctx, 1)
	if err != nil {
		t.Fatalf("GetBudgets() error = %v", err)
	}
	if got := grid.Amount(2024, 2, core.BucketExpenses, "Makan & Minum"); got != 1500000 {
		t.Errorf("budget cell = %d, want 1500000", got)
	}

	t.Run("rejects invalid input", func(t *testing.T) {
		if err := svc.SetBudgetCell(ctx, 1, 2024, 12, core.BucketExpenses, "Makan & Minum", 100); err == nil {
			t.Error("SetBudgetCell() should reject month 12")
		}
		if err := svc.SetBudgetCell(ctx, 1, 2024, 0, core.BucketExpenses, "Makan & Minum", -1); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("SetBudgetCell() negative amount error = %v", err)
		}
	})
}

func TestService_Categories(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cats, err := svc.GetCategories(ctx, 1)
	if err != nil {
		t.Fatalf("GetCategories() error = %v", err)
	}
	if len(cats.Income) == 0 || len(cats.Expenses) == 0 {
		t.Fatal("GetCategories() should fall back to defaults")
	}

	added, err := svc.AddCategory(ctx, 1, core.BucketExpenses, "Langganan")
	if err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}
	if added.Bucket(core.BucketExpenses)[len(added.Expenses)-1] != "Langganan" {
		t.Error("AddCategory() should append to expenses")
	}

	if _, err := svc.AddCategory(ctx, 1, core.BucketExpenses, "langganan"); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Errorf("AddCategory() duplicate error = %v", err)
	}

	removed, err := svc.RemoveCategory(ctx, 1, core.BucketExpenses, "Langganan")
	if err != nil {
		t.Fatalf("RemoveCategory() error = %v", err)
	}
	for _, c := range removed.Expenses {
		if c == "Langganan" {
			t.Error("RemoveCategory() left the category behind")
		}
	}
}

func TestService_Snapshot(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	acc := mustAccount(t, svc, 1, "Main", 100000)

	if _, err := svc.AddTransaction(ctx, 1, core.Transaction{
		Date:        core.NewDate(2024, 3, 7),
		Description: "Gaji",
		Category:    "Gaji Bulanan",
		Amount:      8000000,
		AccountID:   acc.ID,
		Type:        core.Income,
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if _, err := svc.CreateRule(ctx, 1, core.RecurringRule{
		Description:    "Sewa",
		Category:       "Sewa Rumah",
		Amount:         2000000,
		AccountID:      acc.ID,
		Type:           core.Expense,
		RecurFrequency: core.Monthly,
		Date:           core.NewDate(2024, 1, 1),
		Active:         true,
	}); err != nil {
		t.Fatalf("CreateRule() error = %v", err)
	}

	snap, err := svc.Snapshot(ctx, 1)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Accounts) != 1 || len(snap.Transactions) != 1 || len(snap.Recurring) != 1 {
		t.Errorf("snapshot sizes = %d/%d/%d", len(snap.Accounts), len(snap.Transactions), len(snap.Recurring))
	}
	if snap.Categories.IsEmpty() {
		t.Error("snapshot categories should default")
	}

	t.Run("scoped per user", func(t *testing.T) {
		other, err := svc.Snapshot(ctx, 2)
		if err != nil {
			t.Fatalf("Snapshot() error = %v", err)
		}
		if len(other.Accounts) != 0 || len(other.Transactions) != 0 {
			t.Error("snapshot leaked another user's data")
		}
	})
}
