package engine

import (
	"context"
	"log/slog"
)

// Descriptor describes one metered operation. Cost is a conservative upper
// bound so reservation never under-counts.
type Descriptor struct {
	Name         string
	Cost         int
	RequiresAuth bool
}

// Bill lets a call report what the provider actually charged when that
// differs from the estimate (pagination) or when a logical failure was still
// billed. The ledger reflects provider truth, not local optimism.
type Bill struct {
	actual         int
	chargedFailure bool
}

// SetActual overrides the committed cost, e.g. after following extra pages.
func (b *Bill) SetActual(units int) { b.actual = units }

// ChargedDespiteFailure marks that the provider billed the call even though
// it failed logically, so the reservation must commit instead of release.
func (b *Bill) ChargedDespiteFailure() { b.chargedFailure = true }

// Dispatcher is the single choke point every metered operation passes
// through: auth, then reservation, then I/O, then commit or release — in
// that order, so an expired credential never burns a reservation.
type Dispatcher struct {
	ledger  *Ledger
	session *SessionManager
}

// NewDispatcher composes the injected ledger and session manager.
func NewDispatcher(ledger *Ledger, session *SessionManager) *Dispatcher {
	return &Dispatcher{ledger: ledger, session: session}
}

// Ledger exposes the dispatcher's quota ledger for status reporting.
func (d *Dispatcher) Ledger() *Ledger { return d.ledger }

// Session exposes the dispatcher's session manager.
func (d *Dispatcher) Session() *SessionManager { return d.session }

// Invoke runs one metered call. fn receives a valid access token (empty when
// the operation needs none) and a Bill for cost corrections. Bookkeeping is
// always finalized here, even when the caller has stopped waiting on ctx:
// fn runs to completion and the reservation commits or releases accordingly.
func Invoke[T any](ctx context.Context, d *Dispatcher, desc Descriptor, fn func(ctx context.Context, token string, bill *Bill) (T, error)) (T, error) {
	var zero T

	var token string
	if desc.RequiresAuth {
		tok, err := d.session.Token(ctx)
		if err != nil {
			// Aborted before reservation: no quota consumed.
			return zero, err
		}
		token = tok
	}

	res, err := d.ledger.Reserve(desc.Cost)
	if err != nil {
		IncrQuotaDenied()
		slog.Warn("dispatch: quota denied",
			slog.String("op", desc.Name),
			slog.Int("cost", desc.Cost),
		)
		return zero, err
	}

	bill := &Bill{actual: desc.Cost}
	out, err := fn(ctx, token, bill)
	if err != nil {
		if bill.chargedFailure {
			res.Commit(bill.actual)
		} else {
			res.Release()
		}
		return zero, err
	}

	res.Commit(bill.actual)
	return out, nil
}
