package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestApplyAndReverseTransaction(t *testing.T) {
	acc := Account{ID: 1, Name: "Dompet", Type: Cash, Balance: 100000}

	expense := Transaction{Date: NewDate(2024, 3, 7), Description: "Makan siang", Category: "Makan & Minum", Amount: 25000, AccountID: 1, Type: Expense}
	ApplyTransaction(&acc, expense)
	if acc.Balance != 75000 {
		t.Fatalf("balance after expense = %d, want 75000", acc.Balance)
	}

	income := Transaction{Date: NewDate(2024, 3, 10), Description: "Jual barang", Category: "Lainnya", Amount: 40000, AccountID: 1, Type: Income}
	ApplyTransaction(&acc, income)
	if acc.Balance != 115000 {
		t.Fatalf("balance after income = %d, want 115000", acc.Balance)
	}

	ReverseTransaction(&acc, income)
	ReverseTransaction(&acc, expense)
	if acc.Balance != 100000 {
		t.Fatalf("balance after reversal = %d, want 100000", acc.Balance)
	}
}

func TestBalanceCanGoNegative(t *testing.T) {
	acc := Account{ID: 1, Balance: 10000}
	ApplyTransaction(&acc, Transaction{Amount: 25000, Type: Expense})
	if acc.Balance != -15000 {
		t.Fatalf("expense has no floor, balance = %d", acc.Balance)
	}
}

func TestReviseTransactionSameAccount(t *testing.T) {
	acc := Account{ID: 1, Balance: 100000}
	oldTx := Transaction{Amount: 25000, Type: Expense, AccountID: 1}
	ApplyTransaction(&acc, oldTx)

	newTx := oldTx
	newTx.Amount = 40000
	ReviseTransaction(&acc, &acc, oldTx, newTx)

	// Changing X to Y moves the balance by exactly Y-X in the expense
	// direction, with no double counting.
	if acc.Balance != 60000 {
		t.Fatalf("balance after edit = %d, want 60000", acc.Balance)
	}
}

func TestReviseTransactionAcrossAccounts(t *testing.T) {
	from := Account{ID: 1, Balance: 100000}
	to := Account{ID: 2, Balance: 50000}
	oldTx := Transaction{Amount: 30000, Type: Expense, AccountID: 1}
	ApplyTransaction(&from, oldTx)

	newTx := oldTx
	newTx.AccountID = 2
	ReviseTransaction(&from, &to, oldTx, newTx)

	if from.Balance != 100000 {
		t.Fatalf("original account not restored: %d", from.Balance)
	}
	if to.Balance != 20000 {
		t.Fatalf("new account balance = %d, want 20000", to.Balance)
	}
}

func TestReviseTransactionTypeFlip(t *testing.T) {
	acc := Account{ID: 1, Balance: 100000}
	oldTx := Transaction{Amount: 10000, Type: Expense, AccountID: 1}
	ApplyTransaction(&acc, oldTx)

	newTx := oldTx
	newTx.Type = Income
	ReviseTransaction(&acc, &acc, oldTx, newTx)

	if acc.Balance != 110000 {
		t.Fatalf("balance after type flip = %d, want 110000", acc.Balance)
	}
}

func TestNewTransfer(t *testing.T) {
	from := Account{ID: 1, Name: "Dompet", Type: Cash, Balance: 200000}
	to := Account{ID: 2, Name: "BCA", Type: Bank, Balance: 0}
	on := NewDate(2024, 3, 15)

	out, in, err := NewTransfer(&from, &to, 50000, on)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if from.Balance != 150000 || to.Balance != 50000 {
		t.Fatalf("balances after transfer = %d / %d", from.Balance, to.Balance)
	}
	if out.Category != CategoryTransferOut || out.Type != Expense || out.Amount != 50000 || out.AccountID != 1 {
		t.Fatalf("outgoing leg = %+v", out)
	}
	if in.Category != CategoryTransferIn || in.Type != Income || in.Amount != 50000 || in.AccountID != 2 {
		t.Fatalf("incoming leg = %+v", in)
	}
	if out.Description != "Transfer ke BCA" || in.Description != "Transfer dari Dompet" {
		t.Fatalf("descriptions = %q / %q", out.Description, in.Description)
	}
}

func TestTransferRoundTrip(t *testing.T) {
	a := Account{ID: 1, Name: "A", Balance: 300000}
	b := Account{ID: 2, Name: "B", Balance: 120000}

	if _, _, err := NewTransfer(&a, &b, 80000, NewDate(2024, 1, 1)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := NewTransfer(&b, &a, 80000, NewDate(2024, 1, 2)); err != nil {
		t.Fatal(err)
	}
	if a.Balance != 300000 || b.Balance != 120000 {
		t.Fatalf("round trip did not restore balances: %d / %d", a.Balance, b.Balance)
	}
}

func TestTransferValidation(t *testing.T) {
	cases := []struct {
		name   string
		fromID int64
		toID   int64
		amount int64
		want   error
	}{
		{"non-positive amount", 1, 2, 0, ErrInvalidAmount},
		{"negative amount", 1, 2, -500, ErrInvalidAmount},
		{"self transfer", 1, 1, 1000, ErrSelfTransfer},
		{"insufficient funds", 1, 2, 999999, ErrInsufficientFunds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from := Account{ID: tc.fromID, Balance: 100000}
			to := Account{ID: tc.toID, Balance: 0}
			_, _, err := NewTransfer(&from, &to, tc.amount, NewDate(2024, 1, 1))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			// Failed validation must not touch balances.
			if from.Balance != 100000 || to.Balance != 0 {
				t.Fatalf("balances mutated on failure: %d / %d", from.Balance, to.Balance)
			}
		})
	}
}

func TestBuyAssetNewHolding(t *testing.T) {
	acc := Account{ID: 1, Name: "BCA", Balance: 50000}
	order := BuyOrder{
		Name:      "BBCA",
		Class:     "Saham",
		Liquidity: Liquid,
		Quantity:  decimal.NewFromInt(10),
		Unit:      "lembar",
		UnitPrice: 1000,
	}

	asset, tx, err := BuyAsset(&acc, nil, order, NewDate(2024, 5, 2))
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if acc.Balance != 40000 {
		t.Fatalf("account balance = %d, want 40000", acc.Balance)
	}
	if asset.Value != 10000 || asset.Quantity.String() != "10" {
		t.Fatalf("asset = %+v", asset)
	}
	if tx.Type != Expense || tx.Amount != 10000 || tx.Category != CategoryInvestment {
		t.Fatalf("purchase transaction = %+v", tx)
	}
	if tx.Description != "Investasi: Beli BBCA" {
		t.Fatalf("description = %q", tx.Description)
	}
}

func TestBuyAssetIncrementsExisting(t *testing.T) {
	acc := Account{ID: 1, Balance: 100000}
	existing := Asset{ID: 7, Name: "bbca", Category: "Saham", Quantity: decimal.NewFromInt(5), CurrentPrice: 900}
	existing.Recalc()

	order := BuyOrder{Name: "BBCA", Quantity: decimal.NewFromInt(10), UnitPrice: 1000}
	if !order.MatchesAsset(existing) {
		t.Fatal("name match should be case-insensitive")
	}

	asset, _, err := BuyAsset(&acc, &existing, order, NewDate(2024, 5, 2))
	if err != nil {
		t.Fatal(err)
	}
	if asset.Quantity.String() != "15" {
		t.Fatalf("merged quantity = %s", asset.Quantity)
	}
	// The unit price refreshes to the latest purchase price.
	if asset.CurrentPrice != 1000 || asset.Value != 15000 {
		t.Fatalf("merged asset = %+v", asset)
	}
	if acc.Balance != 90000 {
		t.Fatalf("account balance = %d", acc.Balance)
	}
}

func TestBuyAssetInsufficientFunds(t *testing.T) {
	acc := Account{ID: 1, Balance: 5000}
	order := BuyOrder{Name: "BBCA", Quantity: decimal.NewFromInt(10), UnitPrice: 1000}
	_, _, err := BuyAsset(&acc, nil, order, NewDate(2024, 5, 2))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v", err)
	}
	if acc.Balance != 5000 {
		t.Fatalf("balance mutated on failure: %d", acc.Balance)
	}
}

func TestSellAssetPartial(t *testing.T) {
	acc := Account{ID: 2, Balance: 0}
	asset := Asset{ID: 7, Name: "Emas Antam", Quantity: decimal.RequireFromString("2.5"), CurrentPrice: 1000000}
	asset.Recalc()

	removed, tx, err := SellAsset(&acc, &asset, decimal.NewFromInt(1), NewDate(2024, 6, 1))
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("partial sale should not remove the holding")
	}
	if asset.Quantity.String() != "1.5" {
		t.Fatalf("remaining quantity = %s", asset.Quantity)
	}
	if asset.Value != 1500000 {
		t.Fatalf("value after partial sale = %d, want quantity*price", asset.Value)
	}
	if acc.Balance != 1000000 {
		t.Fatalf("proceeds = %d", acc.Balance)
	}
	if tx.Type != Income || tx.Description != "Capital Gain: Jual Emas Antam" {
		t.Fatalf("sale transaction = %+v", tx)
	}
}

func TestSellAssetFullLiquidation(t *testing.T) {
	acc := Account{ID: 2, Balance: 100}
	asset := Asset{ID: 7, Name: "BBCA", Quantity: decimal.NewFromInt(10), CurrentPrice: 1000}
	asset.Recalc()

	removed, _, err := SellAsset(&acc, &asset, decimal.NewFromInt(10), NewDate(2024, 6, 1))
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("full liquidation should remove the holding")
	}
	if acc.Balance != 10100 {
		t.Fatalf("balance = %d", acc.Balance)
	}
}

func TestSellAssetInvalidQuantity(t *testing.T) {
	for _, qty := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1), decimal.NewFromInt(11)} {
		acc := Account{ID: 2, Balance: 0}
		asset := Asset{ID: 7, Name: "BBCA", Quantity: decimal.NewFromInt(10), CurrentPrice: 1000}
		_, _, err := SellAsset(&acc, &asset, qty, NewDate(2024, 6, 1))
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %s: err = %v", qty, err)
		}
		if acc.Balance != 0 || asset.Quantity.String() != "10" {
			t.Fatalf("qty %s: state mutated on failure", qty)
		}
	}
}
