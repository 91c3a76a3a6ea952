package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annually  Frequency = "annually"
	Variable  Frequency = "variable"
)

const (
	Checking   AccountType = "checking"
	Savings    AccountType = "savings"
	CreditCard AccountType = "credit_card"
	Loan       AccountType = "loan"
	Mortgage   AccountType = "mortgage"
	OtherDebt  AccountType = "other_debt"
)

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

type (
	TransactionType string
	Frequency       string
	AccountType     string
	Status          string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID           int64
		Email        string
		Name         string
		PasswordHash string
	}

	Transaction struct {
		ID          int64
		UserID      int64
		Type        TransactionType
		Amount      Money
		Category    string
		Description string
		Date        Date
	}

	Bill struct {
		ID       int64
		UserID   int64
		Name     string
		Category string
		Target   Money
		DueDay   int
	}

	BillPayment struct {
		ID       int64
		BillID   int64
		Amount   Money
		PaidAt   Date
		MonthKey string // derived YYYY-MM, never supplied by clients
	}

	IncomeSource struct {
		ID        int64
		UserID    int64
		Name      string
		Amount    Money
		Frequency Frequency
	}

	Account struct {
		ID      int64
		UserID  int64
		Name    string
		Type    AccountType
		Balance Money // signed; liabilities carry negative balances
	}

	RetirementAccount struct {
		ID      int64
		UserID  int64
		Name    string
		Kind    string // 401k, IRA, pension...
		Balance Money
	}

	Asset struct {
		ID     int64
		UserID int64
		Name   string
		Kind   string
		Value  Money
	}

	NetWorthSnapshot struct {
		ID         int64
		UserID     int64
		Total      Money
		RecordedAt time.Time
	}

	Property struct {
		ID            int64
		UserID        int64
		Name          string
		Address       string
		PurchasePrice Money
		CurrentValue  Money
	}

	PropertyLoan struct {
		ID             int64
		PropertyID     int64
		Lender         string
		Balance        Money
		RatePercent    float64
		MonthlyPayment Money
	}

	RentalIncome struct {
		ID         int64
		PropertyID int64
		Amount     Money
		ReceivedAt Date
	}

	PropertyExpense struct {
		ID          int64
		PropertyID  int64
		Amount      Money
		Category    string
		Description string
		IncurredAt  Date
	}

	PropertyTenant struct {
		ID         int64
		PropertyID int64
		Name       string
		Rent       Money
		LeaseStart Date
		LeaseEnd   Date
	}

	Opportunity struct {
		ID          int64
		UserID      int64
		Title       string
		Description string
		Amount      Money
		Status      Status
	}

	FinancialTarget struct {
		ID       int64
		UserID   int64
		Name     string
		Target   Money
		Saved    Money
		Deadline Date
		Status   Status
	}

	CreditScore struct {
		ID         int64
		UserID     int64
		Score      int
		Bureau     string
		RecordedAt Date
	}

	Insight struct {
		ID          int64
		UserID      int64
		Provider    string
		Title       string
		Body        string
		GeneratedAt time.Time
	}

	ProviderCredential struct {
		ID         int64
		UserID     int64
		Provider   string
		APIKey     string // decrypted form, never persisted as-is
		LastUsedAt time.Time
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidAccount   = errors.New("invalid account type")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidScore     = errors.New("credit score out of range")
)

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int { return d.Time.Day() }

// Month returns the month as an int (1-12).
func (d Date) Month() int { return int(d.Time.Month()) }

// Year returns the year.
func (d Date) Year() int { return d.Time.Year() }

// MonthKey returns the YYYY-MM key used to bucket monthly aggregates.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year(), d.Month())
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (a AccountType) Valid() bool {
	switch a {
	case Checking, Savings, CreditCard, Loan, Mortgage, OtherDebt:
		return true
	}
	return false
}

// IsLiability reports whether balances of this account type count against
// net worth.
func (a AccountType) IsLiability() bool {
	switch a {
	case CreditCard, Loan, Mortgage, OtherDebt:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusResolved
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Bill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if b.Target.Cents < 0 {
		return ErrInvalidAmount
	}
	if b.DueDay < 1 || b.DueDay > 31 {
		return errors.New("due day must be between 1 and 31")
	}
	return nil
}

func (p BillPayment) Validate() error {
	if p.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return p.PaidAt.Validate()
}

func (s IncomeSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if !s.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccount
	}
	return nil
}

func (r RetirementAccount) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if a.Value.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Property) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.PurchasePrice.Cents < 0 || p.CurrentValue.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (o Opportunity) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return ErrEmptyName
	}
	if o.Status != "" && !o.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (t FinancialTarget) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Target.Cents <= 0 {
		return ErrInvalidAmount
	}
	if t.Status != "" && !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

func (c CreditScore) Validate() error {
	if c.Score < 300 || c.Score > 850 {
		return ErrInvalidScore
	}
	return c.RecordedAt.Validate()
}
