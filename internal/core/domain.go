package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Bank    AccountType = "Bank"
	Cash    AccountType = "Cash"
	EWallet AccountType = "E-Wallet"

	Income  TxType = "income"
	Expense TxType = "expense"

	Daily   RecurFrequency = "daily"
	Weekly  RecurFrequency = "weekly"
	Monthly RecurFrequency = "monthly"

	Liquid    Liquidity = "Liquid"
	NonLiquid Liquidity = "Non-Liquid"
)

// Synthetic categories used by the ledger itself; transfers and asset trades
// append regular transactions under these names so the transaction log stays
// the single source of truth for any balance recomputation.
const (
	CategoryTransferOut = "Transfer Keluar"
	CategoryTransferIn  = "Transfer Masuk"
	CategoryInvestment  = "Investasi"
)

// AssetClasses is the fixed set of asset classifications.
var AssetClasses = []AssetClass{
	"Saham", "Obligasi", "Crypto", "Emas", "Property", "Reksa Dana", "Kendaraan", "Lainnya",
}

type (
	AccountType    string
	TxType         string
	RecurFrequency string
	Liquidity      string
	AssetClass     string

	// Date is a calendar date with no time component. It marshals as
	// "YYYY-MM-DD" and always normalizes to UTC midnight.
	Date struct {
		time.Time
	}

	Account struct {
		ID      int64       `json:"id"`
		Name    string      `json:"name"`
		Type    AccountType `json:"type"`
		Balance int64       `json:"balance"`
	}

	Transaction struct {
		ID          int64  `json:"id"`
		Date        Date   `json:"date"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Amount      int64  `json:"amount"`
		AccountID   int64  `json:"accountId"`
		Type        TxType `json:"type"`
	}

	RecurringRule struct {
		ID             int64          `json:"id"`
		Date           Date           `json:"date"`
		Description    string         `json:"description"`
		Category       string         `json:"category"`
		AccountID      int64          `json:"accountId"`
		Amount         int64          `json:"amount"`
		Type           TxType         `json:"type"`
		RecurFrequency RecurFrequency `json:"recurFrequency"`
		RecurDays      []int          `json:"recurDays"`
		RecurDates     []int          `json:"recurDates"`
		Active         bool           `json:"active"`
	}

	Asset struct {
		ID           int64           `json:"id"`
		Name         string          `json:"name"`
		Category     AssetClass      `json:"category"`
		Liquidity    Liquidity       `json:"liquidity"`
		Quantity     decimal.Decimal `json:"quantity"`
		Unit         string          `json:"unit"`
		CurrentPrice int64           `json:"currentPrice"`
		Value        int64           `json:"value"`
	}

	// Categories is the user-editable taxonomy, one name set per bucket.
	Categories struct {
		Income   []string `json:"income"`
		Savings  []string `json:"savings"`
		Expenses []string `json:"expenses"`
	}
)

// ValidationError is a rejected-input error. Transport layers match on the
// type, so every value maps to a client error without enumerating messages.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	ErrInvalidAmount      ValidationError = "invalid amount"
	ErrInvalidQuantity    ValidationError = "invalid quantity"
	ErrInsufficientFunds  ValidationError = "insufficient funds"
	ErrSelfTransfer       ValidationError = "source and destination accounts are the same"
	ErrEmptyDescription   ValidationError = "empty description"
	ErrEmptyCategory      ValidationError = "empty category"
	ErrEmptyName          ValidationError = "empty name"
	ErrInvalidAccountType ValidationError = "invalid account type"
	ErrInvalidTxType      ValidationError = "invalid transaction type"
	ErrCategoryNotFound   ValidationError = "category not found"
	ErrZeroDate           ValidationError = "date cannot be zero"
	ErrDescriptionTooLong ValidationError = "description too long (max 200 characters)"
	ErrMissingAccount     ValidationError = "missing account"
	ErrInvalidFrequency   ValidationError = "invalid recurrence frequency"
	ErrInvalidRecurDay    ValidationError = "invalid weekday in recurrence"
	ErrInvalidRecurDate   ValidationError = "invalid day of month in recurrence"
)

var (
	ErrDuplicateCategory  = errors.New("category already exists")
	ErrAccountInUse       = errors.New("account still has transactions")
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// NewDate builds a Date from year, month (1-12) and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthIndex returns the zero-based month (0=January), the convention the
// budget grid and period selection use.
func (d Date) MonthIndex() int {
	return int(d.Time.Month()) - 1
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t AccountType) Valid() bool {
	switch t {
	case Bank, Cash, EWallet:
		return true
	}
	return false
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidTxType
	}
	if t.AccountID == 0 {
		return ErrMissingAccount
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if r.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !r.Type.Valid() {
		return ErrInvalidTxType
	}
	if r.AccountID == 0 {
		return ErrMissingAccount
	}
	switch r.RecurFrequency {
	case Daily, Weekly, Monthly:
	default:
		return ErrInvalidFrequency
	}
	for _, d := range r.RecurDays {
		if d < 0 || d > 6 {
			return ErrInvalidRecurDay
		}
	}
	for _, d := range r.RecurDates {
		if d < 1 || d > 31 {
			return ErrInvalidRecurDate
		}
	}
	return nil
}

// Recalc restores the Value invariant after any quantity or price change.
func (a *Asset) Recalc() {
	a.Value = a.Quantity.Mul(decimal.NewFromInt(a.CurrentPrice)).Round(0).IntPart()
}

// DefaultCategories is the starter taxonomy for users who have not customized
// theirs yet.
func DefaultCategories() Categories {
	return Categories{
		Income:  []string{"Gaji Bulanan", "Freelance", "Bonus", "Investasi", "Lainnya"},
		Savings: []string{"Tabungan Umum", "Dana Darurat", "Tabungan Pensiun", "Tabungan Pendidikan"},
		Expenses: []string{
			"Sewa Rumah", "Listrik & Air", "Makan & Minum", "Transportasi", "Kesehatan",
			"Belanja", "Hiburan", "Hutang", "Hadiah", "Investasi", "Lainnya",
		},
	}
}

// IsEmpty reports whether no bucket has any category.
func (c Categories) IsEmpty() bool {
	return len(c.Income) == 0 && len(c.Savings) == 0 && len(c.Expenses) == 0
}

// Bucket returns the name list for a budget bucket.
func (c Categories) Bucket(b Bucket) []string {
	switch b {
	case BucketIncome:
		return c.Income
	case BucketSavings:
		return c.Savings
	case BucketExpenses:
		return c.Expenses
	}
	return nil
}

// Add appends a category name to a bucket, rejecting duplicates within that
// bucket (case-insensitive). Deleting a category never rewrites historical
// transactions, so Add is the only operation that needs a uniqueness check.
func (c *Categories) Add(b Bucket, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyCategory
	}
	for _, existing := range c.Bucket(b) {
		if strings.EqualFold(existing, name) {
			return ErrDuplicateCategory
		}
	}
	switch b {
	case BucketIncome:
		c.Income = append(c.Income, name)
	case BucketSavings:
		c.Savings = append(c.Savings, name)
	case BucketExpenses:
		c.Expenses = append(c.Expenses, name)
	default:
		return ErrEmptyCategory
	}
	return nil
}

// Remove deletes a category name from a bucket. Historical transactions
// tagged with it are left untouched.
func (c *Categories) Remove(b Bucket, name string) error {
	list := c.Bucket(b)
	for i, existing := range list {
		if existing == name {
			list = append(list[:i], list[i+1:]...)
			switch b {
			case BucketIncome:
				c.Income = list
			case BucketSavings:
				c.Savings = list
			case BucketExpenses:
				c.Expenses = list
			}
			return nil
		}
	}
	return ErrCategoryNotFound
}
