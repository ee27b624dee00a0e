package rewards

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"nftlend-backend/internal/domain/access"
	domain "nftlend-backend/internal/domain/bundle"
	"nftlend-backend/internal/domain/uow"
	"nftlend-backend/internal/testutil/bundlemock"
	"nftlend-backend/internal/testutil/eventmock"
	"nftlend-backend/internal/testutil/gatemock"
	"nftlend-backend/internal/testutil/paymentmock"
	"nftlend-backend/internal/testutil/uowmock"

	"gorm.io/gorm"
)

const (
	adminAddr    = "0000000000000000000000000000000000000001"
	ownerAddr    = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	borrowerAddr = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	strangerAddr = "cccccccccccccccccccccccccccccccccccccccc"
	collection   = "1111111111111111111111111111111111111111"
)

var testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func testGate() *gatemock.Gate {
	return &gatemock.Gate{Owner: adminAddr, Admins: map[string]bool{}}
}

type ledgerCall struct {
	op     string
	addr   string
	amount uint64
}

func recordingLedger(calls *[]ledgerCall) *paymentmock.Ledger {
	return &paymentmock.Ledger{
		PullToSelfFn: func(ctx context.Context, from string, amount uint64) error {
			*calls = append(*calls, ledgerCall{"pull_to_self", from, amount})
			return nil
		},
		PayOutFn: func(ctx context.Context, to string, amount uint64) error {
			*calls = append(*calls, ledgerCall{"pay_out", to, amount})
			return nil
		},
	}
}

func newRewardsUsecase(repo *bundlemock.Repo, led *paymentmock.Ledger, events *eventmock.Repo) *Usecase {
	u := &uowmock.UoW{Repos: uow.Repos{Bundles: repo, Events: events, Ledger: led}}
	uc := NewUsecase(u, testGate())
	uc.SetNowFunc(func() time.Time { return testNow })
	return uc
}

func TestCredit_RejectsNonAdmin(t *testing.T) {
	uc := newRewardsUsecase(&bundlemock.Repo{}, &paymentmock.Ledger{}, &eventmock.Repo{})
	_, err := uc.Credit(context.Background(), CreditInput{
		Caller: strangerAddr, Collection: collection, AssetIDs: []uint64{1}, Amounts: []uint64{10},
	})
	if !errors.Is(err, access.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestCredit_ValidatesBatchShape(t *testing.T) {
	uc := newRewardsUsecase(&bundlemock.Repo{}, &paymentmock.Ledger{}, &eventmock.Repo{})
	ctx := context.Background()

	_, err := uc.Credit(ctx, CreditInput{Caller: adminAddr, Collection: collection})
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("empty: err = %v", err)
	}
	_, err = uc.Credit(ctx, CreditInput{
		Caller: adminAddr, Collection: collection, AssetIDs: []uint64{1, 2}, Amounts: []uint64{10},
	})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("mismatch: err = %v", err)
	}
}

func TestCredit_MissingAssetFailsWholeBatch(t *testing.T) {
	active := &domain.Bundle{ID: 1, Owner: ownerAddr, Borrower: borrowerAddr, IsActive: true}
	repo := &bundlemock.Repo{
		ResolveAssetFn: func(ctx context.Context, c string, id uint64) (*domain.Bundle, error) {
			if id == 404 {
				return nil, gorm.ErrRecordNotFound
			}
			return active, nil
		},
	}
	led := &paymentmock.Ledger{
		PullToSelfFn: func(ctx context.Context, from string, amount uint64) error {
			t.Fatal("no money may move when any asset fails to resolve")
			return nil
		},
	}
	uc := newRewardsUsecase(repo, led, &eventmock.Repo{})

	_, err := uc.Credit(context.Background(), CreditInput{
		Caller: adminAddr, Collection: collection,
		AssetIDs: []uint64{1, 404}, Amounts: []uint64{10, 10},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if active.AccruedRewards != 0 {
		t.Fatalf("accrued = %d, want 0", active.AccruedRewards)
	}
}

func TestCredit_ActiveBundleAccrues(t *testing.T) {
	active := &domain.Bundle{ID: 1, Owner: ownerAddr, Borrower: borrowerAddr, IsActive: true}
	lockedFetches := 0
	repo := &bundlemock.Repo{
		ResolveAssetFn: func(ctx context.Context, c string, id uint64) (*domain.Bundle, error) {
			return active, nil
		},
		GetByIDForUpdateFn: func(ctx context.Context, id uint64) (*domain.Bundle, error) {
			lockedFetches++
			return active, nil
		},
	}
	var calls []ledgerCall
	events := &eventmock.Repo{}
	uc := newRewardsUsecase(repo, recordingLedger(&calls), events)

	// ten assets, all in the same active bundle: amounts accumulate
	assetIDs := make([]uint64, 10)
	amounts := make([]uint64, 10)
	for i := range assetIDs {
		assetIDs[i] = uint64(i + 1)
		amounts[i] = 10
	}
	dto, err := uc.Credit(context.Background(), CreditInput{
		Caller: adminAddr, Collection: collection, AssetIDs: assetIDs, Amounts: amounts,
	})
	if err != nil {
		t.Fatalf("Credit err: %v", err)
	}
	if active.AccruedRewards != 100 {
		t.Fatalf("accrued = %d, want 100", active.AccruedRewards)
	}
	// one row lock for the one distinct bundle in the batch
	if lockedFetches != 1 {
		t.Fatalf("locked fetches = %d, want 1", lockedFetches)
	}
	if dto.Total != 100 || dto.Accrued != 100 || dto.PaidOut != 0 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	// the batch total was pulled once and nobody was paid immediately
	if len(calls) != 1 || calls[0].op != "pull_to_self" || calls[0].amount != 100 {
		t.Fatalf("ledger calls = %+v", calls)
	}
	if types := events.Types(); len(types) != 1 || types[0] != "rewards.credited" {
		t.Fatalf("events = %v", types)
	}
}

func TestCredit_ListedBundlePaysOwnerImmediately(t *testing.T) {
	listed := &domain.Bundle{ID: 2, Owner: ownerAddr}
	repo := &bundlemock.Repo{
		ResolveAssetFn: func(ctx context.Context, c string, id uint64) (*domain.Bundle, error) {
			return listed, nil
		},
		GetByIDForUpdateFn: func(ctx context.Context, id uint64) (*domain.Bundle, error) {
			return listed, nil
		},
		SaveFn: func(ctx context.Context, b *domain.Bundle) error {
			t.Fatal("an un-loaned bundle must never accrue")
			return nil
		},
	}
	var calls []ledgerCall
	uc := newRewardsUsecase(repo, recordingLedger(&calls), &eventmock.Repo{})

	dto, err := uc.Credit(context.Background(), CreditInput{
		Caller: adminAddr, Collection: collection, AssetIDs: []uint64{7}, Amounts: []uint64{42},
	})
	if err != nil {
		t.Fatalf("Credit err: %v", err)
	}
	if listed.AccruedRewards != 0 {
		t.Fatalf("accrued = %d, want 0", listed.AccruedRewards)
	}
	if dto.PaidOut != 42 || dto.Accrued != 0 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	want := []ledgerCall{
		{"pull_to_self", adminAddr, 42},
		{"pay_out", ownerAddr, 42},
	}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("ledger calls = %+v", calls)
	}
}

func TestCredit_AccruesOnFreshlyLockedRow(t *testing.T) {
	// the asset lookup hands back a snapshot from before a concurrent
	// claim zeroed the balance; the accrual must land on the row as it
	// stands under the lock, not on the snapshot
	stale := &domain.Bundle{ID: 1, Owner: ownerAddr, Borrower: borrowerAddr, IsActive: true, AccruedRewards: 100}
	fresh := &domain.Bundle{ID: 1, Owner: ownerAddr, Borrower: borrowerAddr, IsActive: true, AccruedRewards: 0}
	var saved *domain.Bundle
	repo := &bundlemock.Repo{
		ResolveAssetFn: func(ctx context.Context, c string, id uint64) (*domain.Bundle, error) {
			return stale, nil
		},
		GetByIDForUpdateFn: func(ctx context.Context, id uint64) (*domain.Bundle, error) {
			return fresh, nil
		},
		SaveFn: func(ctx context.Context, b *domain.Bundle) error {
			saved = b
			return nil
		},
	}
	var calls []ledgerCall
	uc := newRewardsUsecase(repo, recordingLedger(&calls), &eventmock.Repo{})

	_, err := uc.Credit(context.Background(), CreditInput{
		Caller: adminAddr, Collection: collection, AssetIDs: []uint64{1}, Amounts: []uint64{50},
	})
	if err != nil {
		t.Fatalf("Credit err: %v", err)
	}
	if saved != fresh || fresh.AccruedRewards != 50 {
		t.Fatalf("accrued = %d on %p, want 50 on the locked row", fresh.AccruedRewards, saved)
	}
	if stale.AccruedRewards != 100 {
		t.Fatalf("stale snapshot was mutated: accrued = %d", stale.AccruedRewards)
	}
}

func TestCredit_BatchTotalOverflowRejected(t *testing.T) {
	active := &domain.Bundle{ID: 1, Owner: ownerAddr, Borrower: borrowerAddr, IsActive: true}
	repo := &bundlemock.Repo{
		ResolveAssetFn: func(ctx context.Context, c string, id uint64) (*domain.Bundle, error) {
			return active, nil
		},
	}
	led := &paymentmock.Ledger{
		PullToSelfFn: func(ctx context.Context, from string, amount uint64) error {
			t.Fatal("no money may move on an overflowing batch")
			return nil
		},
	}
	uc := newRewardsUsecase(repo, led, &eventmock.Repo{})

	_, err := uc.Credit(context.Background(), CreditInput{
		Caller: adminAddr, Collection: collection,
		AssetIDs: []uint64{1, 2}, Amounts: []uint64{math.MaxUint64, 1},
	})
	if !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("err = %v, want ErrAmountOverflow", err)
	}
	if active.AccruedRewards != 0 {
		t.Fatalf("accrued = %d, want 0", active.AccruedRewards)
	}
}

func TestCredit_AccruedBalanceOverflowRejected(t *testing.T) {
	active := &domain.Bundle{
		ID: 1, Owner: ownerAddr, Borrower: borrowerAddr, IsActive: true,
		AccruedRewards: math.MaxUint64 - 5,
	}
	repo := &bundlemock.Repo{
		ResolveAssetFn: func(ctx context.Context, c string, id uint64) (*domain.Bundle, error) {
			return active, nil
		},
		GetByIDForUpdateFn: func(ctx context.Context, id uint64) (*domain.Bundle, error) {
			return active, nil
		},
		SaveFn: func(ctx context.Context, b *domain.Bundle) error {
			t.Fatal("an overflowing accrual must not be persisted")
			return nil
		},
	}
	uc := newRewardsUsecase(repo, &paymentmock.Ledger{PullToSelfFn: func(ctx context.Context, from string, amount uint64) error {
		return nil
	}}, &eventmock.Repo{})

	_, err := uc.Credit(context.Background(), CreditInput{
		Caller: adminAddr, Collection: collection, AssetIDs: []uint64{1}, Amounts: []uint64{10},
	})
	if !errors.Is(err, ErrAmountOverflow) {
		t.Fatalf("err = %v, want ErrAmountOverflow", err)
	}
	if active.AccruedRewards != math.MaxUint64-5 {
		t.Fatalf("accrued = %d, want untouched", active.AccruedRewards)
	}
}

func claimableBundle() *domain.Bundle {
	return &domain.Bundle{
		ID:                 3,
		Owner:              ownerAddr,
		Borrower:           borrowerAddr,
		IsActive:           true,
		RewardSharePercent: 13,
		AccruedRewards:     10,
	}
}

func newClaimUsecase(b *domain.Bundle, repo *bundlemock.Repo, led *paymentmock.Ledger, events *eventmock.Repo) *Usecase {
	if repo.GetByIDForUpdateFn == nil {
		repo.GetByIDForUpdateFn = func(ctx context.Context, id uint64) (*domain.Bundle, error) {
			if b == nil || id != b.ID {
				return nil, gorm.ErrRecordNotFound
			}
			return b, nil
		}
	}
	u := &uowmock.UoW{Repos: uow.Repos{Bundles: repo, Events: events, Ledger: led}}
	return NewUsecase(u, testGate())
}

func TestClaim_FloorSplit(t *testing.T) {
	b := claimableBundle()
	zeroedBeforePayout := false
	repo := &bundlemock.Repo{
		SaveFn: func(ctx context.Context, saved *domain.Bundle) error {
			zeroedBeforePayout = saved.AccruedRewards == 0
			return nil
		},
	}
	var calls []ledgerCall
	led := &paymentmock.Ledger{
		PayOutFn: func(ctx context.Context, to string, amount uint64) error {
			if !zeroedBeforePayout {
				t.Fatal("balance must be zeroed before any payout is issued")
			}
			calls = append(calls, ledgerCall{"pay_out", to, amount})
			return nil
		},
	}
	events := &eventmock.Repo{}
	uc := newClaimUsecase(b, repo, led, events)

	dto, err := uc.Claim(context.Background(), 3, borrowerAddr)
	if err != nil {
		t.Fatalf("Claim err: %v", err)
	}
	// floor(10*13/100) = 1 to the borrower, remainder 9 to the owner
	if dto.BorrowerShare != 1 || dto.OwnerShare != 9 || dto.Total != 10 {
		t.Fatalf("split = %+v", dto)
	}
	if b.AccruedRewards != 0 {
		t.Fatalf("accrued = %d after claim", b.AccruedRewards)
	}
	want := []ledgerCall{
		{"pay_out", borrowerAddr, 1},
		{"pay_out", ownerAddr, 9},
	}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Fatalf("ledger calls = %+v", calls)
	}
	if types := events.Types(); len(types) != 1 || types[0] != "rewards.claimed" {
		t.Fatalf("events = %v", types)
	}
}

func TestClaim_EitherPartyMayTrigger(t *testing.T) {
	b := claimableBundle()
	b.AccruedRewards = 100
	b.RewardSharePercent = 30
	var calls []ledgerCall
	uc := newClaimUsecase(b, &bundlemock.Repo{}, recordingLedger(&calls), &eventmock.Repo{})

	// the owner claims; the borrower still receives their share
	dto, err := uc.Claim(context.Background(), 3, ownerAddr)
	if err != nil {
		t.Fatalf("Claim err: %v", err)
	}
	if dto.BorrowerShare != 30 || dto.OwnerShare != 70 {
		t.Fatalf("split = %+v", dto)
	}
}

func TestClaim_ZeroBalanceIsNoOp(t *testing.T) {
	b := claimableBundle()
	b.AccruedRewards = 0
	led := &paymentmock.Ledger{
		PayOutFn: func(ctx context.Context, to string, amount uint64) error {
			t.Fatal("nothing may be transferred on a zero claim")
			return nil
		},
	}
	uc := newClaimUsecase(b, &bundlemock.Repo{}, led, &eventmock.Repo{})

	dto, err := uc.Claim(context.Background(), 3, borrowerAddr)
	if err != nil {
		t.Fatalf("zero claim must succeed, got %v", err)
	}
	if dto.Total != 0 || dto.BorrowerShare != 0 || dto.OwnerShare != 0 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
}

func TestClaim_StrangerRejected(t *testing.T) {
	b := claimableBundle()
	uc := newClaimUsecase(b, &bundlemock.Repo{}, &paymentmock.Ledger{}, &eventmock.Repo{})

	_, err := uc.Claim(context.Background(), 3, strangerAddr)
	if !errors.Is(err, access.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestClaim_ReclaimedBundleIsNotFound(t *testing.T) {
	uc := newClaimUsecase(nil, &bundlemock.Repo{}, &paymentmock.Ledger{}, &eventmock.Repo{})
	_, err := uc.Claim(context.Background(), 3, ownerAddr)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
