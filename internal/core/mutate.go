package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// effect is the signed balance impact of a transaction: income credits,
// expense debits. Amounts themselves are always non-negative.
func effect(t TxType, amount int64) int64 {
	if t == Income {
		return amount
	}
	return -amount
}

// ApplyTransaction applies a transaction's balance effect to its account.
func ApplyTransaction(acc *Account, tx Transaction) {
	acc.Balance += effect(tx.Type, tx.Amount)
}

// ReverseTransaction undoes a transaction's balance effect.
func ReverseTransaction(acc *Account, tx Transaction) {
	acc.Balance -= effect(tx.Type, tx.Amount)
}

// ReviseTransaction replays an edit: reverse the original effect on the
// original account, then apply the new effect on the (possibly different)
// new account. The order is fixed even when both accounts are the same
// record, otherwise an unchanged account would double count.
func ReviseTransaction(oldAcc, newAcc *Account, oldTx, newTx Transaction) {
	ReverseTransaction(oldAcc, oldTx)
	ApplyTransaction(newAcc, newTx)
}

// NewTransfer validates and executes a transfer between two accounts. On
// success both balances are adjusted and the paired expense/income
// transactions to append are returned; on failure nothing is touched.
func NewTransfer(from, to *Account, amount int64, on Date) (out, in Transaction, err error) {
	if amount <= 0 {
		return out, in, ErrInvalidAmount
	}
	if from.ID == to.ID {
		return out, in, ErrSelfTransfer
	}
	if from.Balance < amount {
		return out, in, ErrInsufficientFunds
	}

	from.Balance -= amount
	to.Balance += amount

	out = Transaction{
		Date:        on,
		Description: "Transfer ke " + to.Name,
		Category:    CategoryTransferOut,
		Amount:      amount,
		AccountID:   from.ID,
		Type:        Expense,
	}
	in = Transaction{
		Date:        on,
		Description: "Transfer dari " + from.Name,
		Category:    CategoryTransferIn,
		Amount:      amount,
		AccountID:   to.ID,
		Type:        Income,
	}
	return out, in, nil
}

// BuyOrder describes an asset purchase.
type BuyOrder struct {
	Name      string
	Class     AssetClass
	Liquidity Liquidity
	Quantity  decimal.Decimal
	Unit      string
	UnitPrice int64
}

// TotalCost is quantity times unit price, rounded to the integer unit.
func (o BuyOrder) TotalCost() int64 {
	return o.Quantity.Mul(decimal.NewFromInt(o.UnitPrice)).Round(0).IntPart()
}

func (o BuyOrder) Validate() error {
	if strings.TrimSpace(o.Name) == "" {
		return ErrEmptyName
	}
	if !o.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if o.TotalCost() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MatchesAsset reports whether an order targets an existing holding; matching
// is by case-insensitive name.
func (o BuyOrder) MatchesAsset(a Asset) bool {
	return strings.EqualFold(a.Name, o.Name)
}

// BuyAsset validates and executes a purchase: the paying account is debited
// by the total cost, the existing holding is incremented (its unit price
// refreshed) or a new holding is created, and the expense transaction to
// append is returned. existing may be nil when no holding matches the order
// name. On failure nothing is touched.
func BuyAsset(acc *Account, existing *Asset, order BuyOrder, on Date) (Asset, Transaction, error) {
	if err := order.Validate(); err != nil {
		return Asset{}, Transaction{}, err
	}
	cost := order.TotalCost()
	if acc.Balance < cost {
		return Asset{}, Transaction{}, ErrInsufficientFunds
	}

	acc.Balance -= cost

	var asset Asset
	if existing != nil {
		existing.Quantity = existing.Quantity.Add(order.Quantity)
		existing.CurrentPrice = order.UnitPrice
		existing.Recalc()
		asset = *existing
	} else {
		asset = Asset{
			Name:         order.Name,
			Category:     order.Class,
			Liquidity:    order.Liquidity,
			Quantity:     order.Quantity,
			Unit:         order.Unit,
			CurrentPrice: order.UnitPrice,
		}
		asset.Recalc()
	}

	tx := Transaction{
		Date:        on,
		Description: "Investasi: Beli " + order.Name,
		Category:    CategoryInvestment,
		Amount:      cost,
		AccountID:   acc.ID,
		Type:        Expense,
	}
	return asset, tx, nil
}

// SellAsset validates and executes a sale at the asset's current price: the
// holding is decremented (removed entirely when fully liquidated), the target
// account is credited with the proceeds, and the income transaction to append
// is returned. On failure nothing is touched.
func SellAsset(acc *Account, asset *Asset, quantity decimal.Decimal, on Date) (removed bool, tx Transaction, err error) {
	if !quantity.IsPositive() || quantity.GreaterThan(asset.Quantity) {
		return false, tx, ErrInvalidQuantity
	}

	proceeds := quantity.Mul(decimal.NewFromInt(asset.CurrentPrice)).Round(0).IntPart()

	if quantity.Equal(asset.Quantity) {
		removed = true
	} else {
		asset.Quantity = asset.Quantity.Sub(quantity)
		asset.Recalc()
	}
	acc.Balance += proceeds

	tx = Transaction{
		Date:        on,
		Description: "Capital Gain: Jual " + asset.Name,
		Category:    CategoryInvestment,
		Amount:      proceeds,
		AccountID:   acc.ID,
		Type:        Income,
	}
	return removed, tx, nil
}
