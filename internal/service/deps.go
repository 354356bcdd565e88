package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/catalog"
	"github.com/phrazzld/ecorewards-api/internal/domain"
	"github.com/phrazzld/ecorewards-api/internal/events"
	"github.com/phrazzld/ecorewards-api/internal/platform/logger"
	"github.com/phrazzld/ecorewards-api/internal/platform/userlock"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	DB      *sql.DB
	Stores  store.Stores
	Catalog *catalog.Catalog
	Locks   *userlock.Locker

	// Events receives domain events after commit. Defaults to events.NopEmitter.
	Events events.Emitter
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
	// VerifyLedger re-sums the ledger after every balance change and on
	// balance reads.
	VerifyLedger bool
	Logger       *slog.Logger
}

func (d Deps) validate() error {
	switch {
	case d.DB == nil:
		return fmt.Errorf("%w: db cannot be nil", domain.ErrValidation)
	case d.Catalog == nil:
		return fmt.Errorf("%w: catalog cannot be nil", domain.ErrValidation)
	case d.Locks == nil:
		return fmt.Errorf("%w: locks cannot be nil", domain.ErrValidation)
	case d.Stores.Habits == nil || d.Stores.Ledger == nil || d.Stores.Wallets == nil ||
		d.Stores.Claims == nil || d.Stores.Onboarding == nil || d.Stores.Badges == nil:
		return fmt.Errorf("%w: every store must be set", domain.ErrValidation)
	}
	return nil
}

// core holds what the services share: the per-user mutation scope, the ledger
// bookkeeping and event publication.
type core struct {
	db           *sql.DB
	stores       store.Stores
	catalog      *catalog.Catalog
	locks        *userlock.Locker
	events       events.Emitter
	now          func() time.Time
	verifyLedger bool
	logger       *slog.Logger
}

func newCore(deps Deps, component string) (*core, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Events == nil {
		deps.Events = events.NopEmitter{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &core{
		db:           deps.DB,
		stores:       deps.Stores,
		catalog:      deps.Catalog,
		locks:        deps.Locks,
		events:       deps.Events,
		now:          func() time.Time { return deps.Now().UTC() },
		verifyLedger: deps.VerifyLedger,
		logger:       deps.Logger.With(slog.String("component", component)),
	}, nil
}

// mutate runs fn under the user's lock in a single transaction. fn must only
// use the transaction-bound stores it is given.
func (c *core) mutate(
	ctx context.Context,
	userID uuid.UUID,
	operation string,
	fn func(ctx context.Context, txs store.Stores) error,
) error {
	err := c.locks.WithLock(ctx, userID, func(ctx context.Context) error {
		return store.RunInTransaction(ctx, c.db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(ctx, c.stores.WithTx(tx))
		})
	})
	if err != nil {
		if errors.Is(err, userlock.ErrBusy) {
			return ErrBusy
		}
		c.reportViolation(ctx, userID, err)
		if isSentinel(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return NewServiceError(operation, "transaction failed", err)
	}
	return nil
}

// read runs fn in one transaction without taking the user's lock.
func (c *core) read(ctx context.Context, operation string, fn func(ctx context.Context, txs store.Stores) error) error {
	err := store.RunInTransaction(ctx, c.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, c.stores.WithTx(tx))
	})
	if err != nil {
		if isSentinel(err) {
			return err
		}
		return NewServiceError(operation, "read failed", err)
	}
	return nil
}

// verifiedRead is read for callers that compare the cached balance with the
// ledger sum. Under READ COMMITTED each statement sees a fresh snapshot, so a
// write committing between the two reads would look like corruption; with
// ledger verification on, the read holds the user's lock.
func (c *core) verifiedRead(
	ctx context.Context,
	userID uuid.UUID,
	operation string,
	fn func(ctx context.Context, txs store.Stores) error,
) error {
	if !c.verifyLedger {
		return c.read(ctx, operation, fn)
	}
	err := c.locks.WithLock(ctx, userID, func(ctx context.Context) error {
		return c.read(ctx, operation, fn)
	})
	if errors.Is(err, userlock.ErrBusy) {
		return ErrBusy
	}
	return err
}

// emit publishes an event. Failures to build the event are logged and dropped.
func (c *core) emit(ctx context.Context, eventType events.Type, userID uuid.UUID, payload any) {
	event, err := events.NewEvent(eventType, userID, payload)
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Error("failed to build event",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
		return
	}
	c.events.EmitEvent(ctx, event)
}

// reportViolation logs and publishes a ledger invariant violation found in err.
func (c *core) reportViolation(ctx context.Context, userID uuid.UUID, err error) {
	var v *InvariantViolation
	if !errors.As(err, &v) {
		return
	}
	logger.FromContextOrDefault(ctx, c.logger).Error("ledger invariant violated",
		slog.Bool("alert", true),
		slog.String("user_id", userID.String()),
		slog.String("operation", v.Operation),
		slog.Int64("cached_balance", v.CachedBalance),
		slog.Int64("ledger_sum", v.LedgerSum))
	c.emit(ctx, events.LedgerInvariantViolated, userID, v)
}
