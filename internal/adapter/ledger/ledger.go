package ledger

import (
	"context"
	"errors"
	"time"

	"nftlend-backend/internal/domain/payment"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Account is one balance row of the platform's fungible payment asset.
type Account struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	Address   string    `gorm:"size:40;uniqueIndex:ux_token_accounts_address"`
	Balance   uint64    `gorm:"column:balance;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Account) TableName() string { return "token_accounts" }

// Ledger implements payment.Ledger on top of the token_accounts table. The
// engine address is the account that holds undistributed reward pools.
type Ledger struct {
	db     *gorm.DB
	engine string
}

func NewLedger(db *gorm.DB, engineAddress string) *Ledger {
	return &Ledger{db: db, engine: engineAddress}
}

// WithTx binds the ledger to an open transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger { return &Ledger{db: tx, engine: l.engine} }

func (l *Ledger) Pull(ctx context.Context, from, to string, amount uint64) error {
	return l.transfer(ctx, from, to, amount)
}

func (l *Ledger) PullToSelf(ctx context.Context, from string, amount uint64) error {
	return l.transfer(ctx, from, l.engine, amount)
}

func (l *Ledger) PayOut(ctx context.Context, to string, amount uint64) error {
	return l.transfer(ctx, l.engine, to, amount)
}

func (l *Ledger) transfer(ctx context.Context, from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	var src Account
	res := l.lockedQuery(ctx).
		Where("address = ?", from).
		First(&src)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return payment.ErrNoAccount
		}
		return res.Error
	}
	if src.Balance < amount {
		return payment.ErrInsufficientBalance
	}
	if from == to {
		// a self-transfer moves nothing, but the payer must still hold the funds
		return nil
	}
	src.Balance -= amount
	if err := l.db.WithContext(ctx).Save(&src).Error; err != nil {
		return err
	}
	dst, err := l.getOrCreate(ctx, to)
	if err != nil {
		return err
	}
	dst.Balance += amount
	return l.db.WithContext(ctx).Save(dst).Error
}

// lockedQuery takes a row lock on mysql; sqlite (tests) has no FOR UPDATE.
func (l *Ledger) lockedQuery(ctx context.Context) *gorm.DB {
	q := l.db.WithContext(ctx)
	if l.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (l *Ledger) getOrCreate(ctx context.Context, address string) (*Account, error) {
	var acc Account
	res := l.lockedQuery(ctx).
		Where("address = ?", address).
		First(&acc)
	if res.Error == nil {
		return &acc, nil
	}
	if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, res.Error
	}
	acc = Account{Address: address}
	if err := l.db.WithContext(ctx).Create(&acc).Error; err != nil {
		return nil, err
	}
	return &acc, nil
}

// BalanceOf reads an account balance; missing accounts read as zero.
func (l *Ledger) BalanceOf(ctx context.Context, address string) (uint64, error) {
	var acc Account
	res := l.db.WithContext(ctx).Where("address = ?", address).First(&acc)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, res.Error
	}
	return acc.Balance, nil
}

// Credit mints balance onto an account. Seeding and test fixtures only; the
// engine itself never creates value.
func (l *Ledger) Credit(ctx context.Context, address string, amount uint64) error {
	acc, err := l.getOrCreate(ctx, address)
	if err != nil {
		return err
	}
	acc.Balance += amount
	return l.db.WithContext(ctx).Save(acc).Error
}
