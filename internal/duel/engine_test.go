package duel_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"

	"github.com/radieske/duel-wager/internal/duel"
	"github.com/radieske/duel-wager/internal/duel/repo"
	"github.com/radieske/duel-wager/internal/shared/db"
	"github.com/radieske/duel-wager/pkg/contracts/events"
)

const houseID = -1

// fixed sorteia sempre o mesmo valor
type fixed float64

func (f fixed) Float64() float64 { return float64(f) }

type recorder struct {
	mu       sync.Mutex
	placed   []events.BetPlaced
	resolved []events.MatchResolved
	err      error
}

func (r *recorder) PublishBetPlaced(_ context.Context, e events.BetPlaced) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placed = append(r.placed, e)
	return r.err
}

func (r *recorder) PublishMatchResolved(_ context.Context, e events.MatchResolved) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = append(r.resolved, e)
	return r.err
}

func newStore(t *testing.T) (*repo.Store, *duel.Catalog) {
	t.Helper()
	sqlDB, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repo.NewSQLite(sqlDB)
	require.NoError(t, store.Migrate(context.Background(), duel.DefaultItems()))
	catalog, err := duel.NewCatalog(duel.DefaultItems())
	require.NoError(t, err)
	return store, catalog
}

func newEngine(t *testing.T, opts duel.Options) *duel.Engine {
	t.Helper()
	if opts.Store == nil {
		opts.Store, opts.Catalog = newStore(t)
	}
	opts.Log = zaptest.NewLogger(t)
	opts.HouseUserID = houseID
	if opts.StarterBonus == 0 {
		opts.StarterBonus = duel.DefaultStarterBonus
	}
	if opts.CommissionBps == 0 {
		opts.CommissionBps = duel.DefaultCommissionBps
	}
	if opts.Guard == nil {
		opts.Guard = duel.NewMemoryGuard(0, nil)
	}
	if opts.Rand == nil {
		opts.Rand = fixed(0)
	}
	return duel.NewEngine(opts)
}

func stars(t *testing.T, e *duel.Engine, userID int64) int64 {
	t.Helper()
	p, err := e.Profile(context.Background(), userID, "")
	require.NoError(t, err)
	return p.User.Stars
}

func qty(t *testing.T, e *duel.Engine, userID int64, code string) int64 {
	t.Helper()
	q, err := e.Ledger().AdjustInventory(context.Background(), userID, code, 0)
	require.NoError(t, err)
	return q
}

func TestStarsMatchLifecycle(t *testing.T) {
	ctx := context.Background()
	pub := &recorder{}
	e := newEngine(t, duel.Options{Publisher: pub, Rand: fixed(0)})

	m, b1, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(10))
	require.NoError(t, err)
	require.Equal(t, duel.StatusOpen, m.Status)
	require.Equal(t, int64(10), b1.Value)
	require.Equal(t, int64(90), stars(t, e, 1))

	_, m, err = e.PlaceBet(ctx, m.ID, 2, duel.StarsStake(20))
	require.NoError(t, err)
	require.Equal(t, duel.StatusLocked, m.Status)
	require.Equal(t, int64(30), m.Pool)
	require.Equal(t, int64(80), stars(t, e, 2))

	_, _, err = e.PlaceBet(ctx, m.ID, 3, duel.StarsStake(5))
	require.ErrorIs(t, err, duel.ErrMatchNotOpen)
	require.Equal(t, int64(100), stars(t, e, 3))

	s, err := e.Resolve(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), s.WinnerID)
	require.Equal(t, int64(30), s.Pool)
	require.Equal(t, duel.Commission{Kind: duel.CommissionStars, Value: 1}, s.Commission)
	require.Equal(t, int64(29), s.Payout)
	require.Equal(t, duel.StatusResolved, s.Match.Status)
	require.Equal(t, []int64{1, 2}, s.Bettors())
	require.Equal(t, int64(119), stars(t, e, 1))
	require.Equal(t, int64(80), stars(t, e, 2))

	_, err = e.Resolve(ctx, m.ID)
	require.ErrorIs(t, err, duel.ErrAlreadyResolved)
	require.Equal(t, int64(119), stars(t, e, 1))

	v, err := e.Match(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, duel.StatusResolved, v.Match.Status)
	require.Equal(t, int64(1), *v.Match.WinnerID)
	require.NotNil(t, v.Match.ResolvedAt)
	require.Equal(t, int64(29), v.Match.Payout)
	require.Len(t, v.Bets, 2)

	require.Len(t, pub.placed, 2)
	require.Equal(t, "LOCKED", pub.placed[1].MatchStatus)
	require.Len(t, pub.resolved, 1)
	require.Equal(t, int64(29), pub.resolved[0].PayoutStars)
	require.NotEmpty(t, pub.resolved[0].EventID)
}

func TestGiftsMatchTakesCommissionInKind(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{Rand: fixed(0.99)})

	_, err := e.Ledger().AdjustInventory(ctx, 1, "rose", 2)
	require.NoError(t, err)
	_, err = e.Ledger().AdjustInventory(ctx, 2, "BOX", 1)
	require.NoError(t, err)

	stake, err := duel.ParseItems("ROSE:2")
	require.NoError(t, err)
	m, b1, err := e.Challenge(ctx, 1, duel.CurrencyGifts, duel.ItemsStake(stake))
	require.NoError(t, err)
	require.Equal(t, int64(10), b1.Value)
	require.Zero(t, qty(t, e, 1, "ROSE"))

	_, _, err = e.PlaceBet(ctx, m.ID, 2, duel.ItemsStake(duel.Items{{Code: "box", Qty: 1}}))
	require.NoError(t, err)

	s, err := e.Resolve(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), s.WinnerID)
	require.Equal(t, int64(35), s.Pool)
	require.Equal(t, duel.Commission{Kind: duel.CommissionItem, Code: "ROSE", Value: 5}, s.Commission)
	require.Equal(t, int64(30), s.Payout)
	require.Equal(t, int64(130), stars(t, e, 2))
	require.Equal(t, int64(100), stars(t, e, 1))
}

func TestBetPlacementIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{})

	_, err := e.Ledger().AdjustInventory(ctx, 1, "ROSE", 2)
	require.NoError(t, err)

	_, _, err = e.Challenge(ctx, 1, duel.CurrencyGifts, duel.ItemsStake(duel.Items{{Code: "ROSE", Qty: 2}, {Code: "BOX", Qty: 1}}))
	require.ErrorIs(t, err, duel.ErrInsufficientInventory)
	require.Equal(t, int64(2), qty(t, e, 1, "ROSE"))

	_, _, err = e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(101))
	require.ErrorIs(t, err, duel.ErrInsufficientFunds)
	require.Equal(t, int64(100), stars(t, e, 1))

	// nenhuma partida órfã ficou aberta
	_, err = e.Match(ctx, 1)
	require.ErrorIs(t, err, duel.ErrMatchNotFound)
}

func TestInvalidStakes(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{})

	cases := []struct {
		name     string
		currency duel.Currency
		stake    duel.Stake
		also     error
	}{
		{"zero stars", duel.CurrencyStars, duel.StarsStake(0), nil},
		{"negative stars", duel.CurrencyStars, duel.StarsStake(-5), nil},
		{"gifts in stars match", duel.CurrencyStars, duel.ItemsStake(duel.Items{{Code: "ROSE", Qty: 1}}), nil},
		{"stars in gifts match", duel.CurrencyGifts, duel.StarsStake(5), nil},
		{"empty gifts", duel.CurrencyGifts, duel.Stake{}, nil},
		{"zero quantity", duel.CurrencyGifts, duel.ItemsStake(duel.Items{{Code: "ROSE", Qty: 0}}), nil},
		{"unknown gift", duel.CurrencyGifts, duel.ItemsStake(duel.Items{{Code: "DRAGON", Qty: 1}}), duel.ErrUnknownItem},
		{"unknown currency", duel.Currency("COINS"), duel.StarsStake(5), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := e.Challenge(ctx, 1, tc.currency, tc.stake)
			require.ErrorIs(t, err, duel.ErrInvalidStake)
			if tc.also != nil {
				require.ErrorIs(t, err, tc.also)
			}
			require.Equal(t, "invalid_stake", duel.Code(err))
		})
	}
	require.Equal(t, int64(100), stars(t, e, 1))
}

func TestDuplicateBettor(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{})

	m, _, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(10))
	require.NoError(t, err)

	_, _, err = e.PlaceBet(ctx, m.ID, 1, duel.StarsStake(10))
	require.ErrorIs(t, err, duel.ErrDuplicateBettor)
	require.Equal(t, int64(90), stars(t, e, 1))

	v, err := e.Match(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, duel.StatusOpen, v.Match.Status)
	require.Len(t, v.Bets, 1)
}

func TestPlaceBetUnknownMatch(t *testing.T) {
	e := newEngine(t, duel.Options{})
	_, _, err := e.PlaceBet(context.Background(), 404, 1, duel.StarsStake(1))
	require.ErrorIs(t, err, duel.ErrMatchNotFound)
}

func TestResolveNeedsTwoBets(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{})

	m, _, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(10))
	require.NoError(t, err)

	_, err = e.Resolve(ctx, m.ID)
	require.ErrorIs(t, err, duel.ErrInvalidMatchState)
	require.True(t, duel.IsContractViolation(err))

	v, err := e.Match(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, duel.StatusOpen, v.Match.Status)
	require.Equal(t, int64(90), stars(t, e, 1))

	empty, err := e.OpenMatch(ctx, duel.CurrencyStars)
	require.NoError(t, err)
	_, err = e.Resolve(ctx, empty.ID)
	require.ErrorIs(t, err, duel.ErrInvalidMatchState)
}

func TestChallengeIsRateLimited(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	e := newEngine(t, duel.Options{Guard: duel.NewMemoryGuard(duel.DefaultCooldown, clock)})

	_, _, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(10))
	require.NoError(t, err)

	now = now.Add(5 * time.Second)
	_, _, err = e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(10))
	require.ErrorIs(t, err, duel.ErrRateLimited)
	require.Equal(t, "Too often. Wait a few seconds.", duel.Reason(err))
	require.Equal(t, int64(90), stars(t, e, 1))

	now = now.Add(5 * time.Second)
	_, _, err = e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(10))
	require.NoError(t, err)
}

func TestFailedChallengeDoesNotStartCooldown(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	e := newEngine(t, duel.Options{Guard: duel.NewMemoryGuard(duel.DefaultCooldown, clock)})

	cases := []struct {
		name     string
		userID   int64
		currency duel.Currency
		stake    duel.Stake
		err      error
	}{
		{"insufficient funds", 1, duel.CurrencyStars, duel.StarsStake(1000), duel.ErrInsufficientFunds},
		{"zero stake", 2, duel.CurrencyStars, duel.StarsStake(0), duel.ErrInvalidStake},
		{"unknown gift", 3, duel.CurrencyGifts, duel.ItemsStake(duel.Items{{Code: "DRAGON", Qty: 1}}), duel.ErrUnknownItem},
		{"missing gift", 4, duel.CurrencyGifts, duel.ItemsStake(duel.Items{{Code: "ROSE", Qty: 1}}), duel.ErrInsufficientInventory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := e.Challenge(ctx, tc.userID, tc.currency, tc.stake)
			require.ErrorIs(t, err, tc.err)

			now = now.Add(time.Second)
			_, _, err = e.Challenge(ctx, tc.userID, duel.CurrencyStars, duel.StarsStake(10))
			require.NoError(t, err)
			require.Equal(t, int64(90), stars(t, e, tc.userID))

			_, _, err = e.Challenge(ctx, tc.userID, duel.CurrencyStars, duel.StarsStake(10))
			require.ErrorIs(t, err, duel.ErrRateLimited)
		})
	}
}

func TestZeroCommissionIsHonored(t *testing.T) {
	ctx := context.Background()
	store, catalog := newStore(t)
	e := duel.NewEngine(duel.Options{
		Store:         store,
		Catalog:       catalog,
		Guard:         duel.NewMemoryGuard(0, nil),
		Rand:          fixed(0),
		Log:           zaptest.NewLogger(t),
		StarterBonus:  duel.DefaultStarterBonus,
		CommissionBps: 0,
		HouseUserID:   houseID,
	})

	m, _, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(40))
	require.NoError(t, err)
	_, _, err = e.PlaceBet(ctx, m.ID, 2, duel.StarsStake(60))
	require.NoError(t, err)

	s, err := e.Resolve(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, duel.Commission{Kind: duel.CommissionStars}, s.Commission)
	require.Equal(t, int64(100), s.Payout)
	require.Equal(t, int64(160), stars(t, e, 1))
}

func TestConcurrentJoinAcceptsExactlyOneBet(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{})

	m, _, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(10))
	require.NoError(t, err)

	const bettors = 12
	var (
		mu       sync.Mutex
		accepted int
		notOpen  int
	)
	var g errgroup.Group
	for i := 0; i < bettors; i++ {
		uid := int64(100 + i)
		g.Go(func() error {
			_, _, err := e.PlaceBet(ctx, m.ID, uid, duel.StarsStake(10))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, duel.ErrMatchNotOpen):
				notOpen++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 1, accepted)
	require.Equal(t, bettors-1, notOpen)

	v, err := e.Match(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, duel.StatusLocked, v.Match.Status)
	require.Len(t, v.Bets, 2)
	require.Equal(t, int64(20), v.Match.Pool)

	var total int64
	for i := 0; i < bettors; i++ {
		total += stars(t, e, int64(100+i))
	}
	require.Equal(t, int64(bettors*100-10), total)
}

func TestConcurrentResolvePaysOnce(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{Rand: fixed(0)})

	m, _, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(50))
	require.NoError(t, err)
	_, _, err = e.PlaceBet(ctx, m.ID, 2, duel.StarsStake(50))
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		ok, dupe int
	)
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := e.Resolve(ctx, m.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, duel.ErrAlreadyResolved):
				dupe++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 1, ok)
	require.Equal(t, 7, dupe)
	// 100 - 50 + (100 - 5)
	require.Equal(t, int64(145), stars(t, e, 1))
	require.Equal(t, int64(50), stars(t, e, 2))
}

func TestCommissionNeverExceedsPool(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{Rand: duel.NewSource(7)})

	for i := int64(0); i < 20; i++ {
		a, b := 2*i+1000, 2*i+1001
		_, err := e.Ledger().AdjustInventory(ctx, a, "ROSE", 1)
		require.NoError(t, err)
		_, err = e.Ledger().AdjustInventory(ctx, b, "COOKIE", 1+i%3)
		require.NoError(t, err)

		m, _, err := e.Challenge(ctx, a, duel.CurrencyGifts, duel.ItemsStake(duel.Items{{Code: "ROSE", Qty: 1}}))
		require.NoError(t, err)
		_, _, err = e.PlaceBet(ctx, m.ID, b, duel.ItemsStake(duel.Items{{Code: "COOKIE", Qty: 1 + i%3}}))
		require.NoError(t, err)

		s, err := e.Resolve(ctx, m.ID)
		require.NoError(t, err)
		require.Contains(t, []int64{a, b}, s.WinnerID)
		require.LessOrEqual(t, s.Commission.Value, s.Pool)
		require.Equal(t, s.Pool-s.Commission.Value, s.Payout)
	}
}

func TestFightHouseStars(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{Rand: fixed(0)})

	res, err := e.FightHouse(ctx, 1, duel.CurrencyStars, duel.StarsStake(50))
	require.NoError(t, err)
	require.True(t, res.Won)
	require.Equal(t, int64(houseID), res.HouseBet.UserID)
	require.Equal(t, int64(40), res.HouseBet.Stars)
	require.Equal(t, int64(90), res.Pool)
	require.Equal(t, int64(86), res.Payout)
	require.Equal(t, int64(136), stars(t, e, 1))
	require.Equal(t, int64(100), stars(t, e, houseID))
}

func TestFightHouseGifts(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{Rand: fixed(0.99)})

	_, err := e.Ledger().AdjustInventory(ctx, 1, "ROSE", 1)
	require.NoError(t, err)

	res, err := e.FightHouse(ctx, 1, duel.CurrencyGifts, duel.ItemsStake(duel.Items{{Code: "ROSE", Qty: 1}}))
	require.NoError(t, err)
	require.False(t, res.Won)
	require.Equal(t, duel.Items{{Code: "ROSE", Qty: 2}}, res.HouseBet.Items)
	require.Equal(t, int64(15), res.Pool)
	require.Equal(t, duel.Commission{Kind: duel.CommissionItem, Code: "ROSE", Value: 5}, res.Commission)
	require.Zero(t, qty(t, e, 1, "ROSE"))
	require.Equal(t, int64(100), stars(t, e, 1))
}

func TestFightHouseRejectsHouseUser(t *testing.T) {
	e := newEngine(t, duel.Options{})
	_, err := e.FightHouse(context.Background(), houseID, duel.CurrencyStars, duel.StarsStake(1))
	require.ErrorIs(t, err, duel.ErrDuplicateBettor)
}

var errLockFailed = errors.New("lock failed")

// flakyStore falha as próximas failLocks chamadas de LockMatch
type flakyStore struct {
	duel.Store
	mu        sync.Mutex
	failLocks int
}

func (s *flakyStore) InTx(ctx context.Context, fn func(ctx context.Context, tx duel.Tx) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, tx duel.Tx) error {
		return fn(ctx, &flakyTx{Tx: tx, s: s})
	})
}

type flakyTx struct {
	duel.Tx
	s *flakyStore
}

func (t *flakyTx) LockMatch(ctx context.Context, id int64) (duel.Match, error) {
	t.s.mu.Lock()
	fail := t.s.failLocks > 0
	if fail {
		t.s.failLocks--
	}
	t.s.mu.Unlock()
	if fail {
		return duel.Match{}, errLockFailed
	}
	return t.Tx.LockMatch(ctx, id)
}

func TestFailedHouseFightRefundsCaller(t *testing.T) {
	ctx := context.Background()
	store, catalog := newStore(t)
	flaky := &flakyStore{Store: store}
	e := newEngine(t, duel.Options{Store: flaky, Catalog: catalog})

	_, err := e.Ledger().AdjustInventory(ctx, 2, "BOX", 1)
	require.NoError(t, err)

	flaky.failLocks = 1
	_, err = e.FightHouse(ctx, 1, duel.CurrencyStars, duel.StarsStake(30))
	require.ErrorIs(t, err, errLockFailed)
	require.Equal(t, int64(100), stars(t, e, 1))

	v, err := e.Match(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, duel.StatusCanceled, v.Match.Status)
	require.Len(t, v.Bets, 1)

	flaky.failLocks = 1
	_, err = e.FightHouse(ctx, 2, duel.CurrencyGifts, duel.ItemsStake(duel.Items{{Code: "BOX", Qty: 1}}))
	require.ErrorIs(t, err, errLockFailed)
	require.Equal(t, int64(1), qty(t, e, 2, "BOX"))
	require.Zero(t, qty(t, e, houseID, "ROSE"))
}

func TestCancelMatch(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{})

	m, _, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(25))
	require.NoError(t, err)
	require.Equal(t, int64(75), stars(t, e, 1))

	canceled, err := e.CancelMatch(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, duel.StatusCanceled, canceled.Status)
	require.Equal(t, int64(100), stars(t, e, 1))

	_, err = e.CancelMatch(ctx, m.ID)
	require.ErrorIs(t, err, duel.ErrMatchNotOpen)
	_, _, err = e.PlaceBet(ctx, m.ID, 2, duel.StarsStake(10))
	require.ErrorIs(t, err, duel.ErrMatchNotOpen)

	locked, _, err := e.Challenge(ctx, 3, duel.CurrencyStars, duel.StarsStake(10))
	require.NoError(t, err)
	_, _, err = e.PlaceBet(ctx, locked.ID, 4, duel.StarsStake(10))
	require.NoError(t, err)
	_, err = e.CancelMatch(ctx, locked.ID)
	require.ErrorIs(t, err, duel.ErrMatchNotOpen)

	_, err = e.Resolve(ctx, locked.ID)
	require.NoError(t, err)
	_, err = e.CancelMatch(ctx, locked.ID)
	require.ErrorIs(t, err, duel.ErrAlreadyResolved)

	_, err = e.CancelMatch(ctx, 999)
	require.ErrorIs(t, err, duel.ErrMatchNotFound)
}

func TestPublisherFailureDoesNotUndoCommit(t *testing.T) {
	ctx := context.Background()
	pub := &recorder{err: errors.New("broker down")}
	e := newEngine(t, duel.Options{Publisher: pub})

	m, _, err := e.Challenge(ctx, 1, duel.CurrencyStars, duel.StarsStake(10))
	require.NoError(t, err)
	_, _, err = e.PlaceBet(ctx, m.ID, 2, duel.StarsStake(10))
	require.NoError(t, err)
	_, err = e.Resolve(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, pub.resolved, 1)
}

func TestProfileAndLedger(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, duel.Options{})

	u, err := e.EnsureUser(ctx, 9, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(100), u.Stars)
	require.Equal(t, "bob", u.Username)

	bal, err := e.Ledger().Credit(ctx, 9, 25)
	require.NoError(t, err)
	require.Equal(t, int64(125), bal)

	_, err = e.Ledger().Credit(ctx, 9, 0)
	require.ErrorIs(t, err, duel.ErrInvalidAmount)

	_, err = e.Ledger().Debit(ctx, 9, 126)
	require.ErrorIs(t, err, duel.ErrInsufficientFunds)
	bal, err = e.Ledger().Debit(ctx, 9, 125)
	require.NoError(t, err)
	require.Zero(t, bal)

	_, err = e.Ledger().AdjustInventory(ctx, 9, "DRAGON", 1)
	require.ErrorIs(t, err, duel.ErrUnknownItem)
	_, err = e.Ledger().AdjustInventory(ctx, 9, "STAR", -1)
	require.ErrorIs(t, err, duel.ErrInsufficientInventory)
	_, err = e.Ledger().AdjustInventory(ctx, 9, "star", 2)
	require.NoError(t, err)
	_, err = e.Ledger().AdjustInventory(ctx, 9, "ROSE", 1)
	require.NoError(t, err)

	p, err := e.Profile(ctx, 9, "")
	require.NoError(t, err)
	require.Equal(t, "bob", p.User.Username)
	require.Equal(t, []duel.Holding{
		{Item: duel.Item{Code: "ROSE", Title: "Rose", Value: 5}, Qty: 1},
		{Item: duel.Item{Code: "STAR", Title: "Superstar", Value: 100}, Qty: 2},
	}, p.Gifts)
}
