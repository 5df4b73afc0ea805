package queue

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultItemsLimit = 100
	maxItemsLimit     = 1000
)

// ItemsOptions selects undelivered items for Items.
type ItemsOptions struct {
	// From is the first sequence to consider; values below read_pos are raised to it.
	From uint64
	// Limit caps the result (default 100, max 1000).
	Limit int
	// Filter is an optional CEL predicate; see compileFilter.
	Filter string
}

// View returns the undelivered item at seq without consuming it.
func (e *Engine) View(_ context.Context, name string, seq uint64) (Item, error) {
	if err := e.ValidateName(name); err != nil {
		return Item{}, err
	}
	pos, err := e.readPosition(name)
	if err != nil {
		return Item{}, err
	}
	if seq < pos.Read || seq >= pos.Write {
		return Item{}, fmt.Errorf("%w: %d not in [%d, %d)", ErrPositionOutOfRange, seq, pos.Read, pos.Write)
	}
	return e.readItem(name, seq)
}

// Items lists undelivered items of name in sequence order. It takes no lock:
// items consumed concurrently may still appear in the result.
func (e *Engine) Items(ctx context.Context, name string, opts ItemsOptions) ([]Item, error) {
	if err := e.ValidateName(name); err != nil {
		return nil, err
	}
	filter, err := compileFilter(opts.Filter)
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultItemsLimit
	}
	if limit > maxItemsLimit {
		limit = maxItemsLimit
	}

	pos, err := e.readPosition(name)
	if err != nil {
		return nil, err
	}
	from := opts.From
	if from < pos.Read {
		from = pos.Read
	}
	if from >= pos.Write {
		return nil, nil
	}

	now := e.opts.Now()
	lower, upper := itemBounds(name, from, pos.Write)
	var (
		out     []Item
		scanErr error
		full    bool
		next    = from
	)
	err = e.store.Scan(lower, upper, func(k, v []byte) bool {
		if err := ctx.Err(); err != nil {
			scanErr = err
			return false
		}
		seq := seqFromItemKey(k)
		if seq != next {
			if scanErr = e.missingItems(name, next, seq); scanErr != nil {
				return false
			}
		}
		next = seq + 1
		ms, payload, ok := decodeItem(v)
		if !ok {
			scanErr = fmt.Errorf("%w: queue %q item %d fails checksum", ErrInconsistentState, name, seq)
			return false
		}
		it := Item{Seq: seq, Payload: payload, EnqueuedAt: time.UnixMilli(ms)}
		if filter.match(it, now) {
			out = append(out, it)
		}
		full = len(out) >= limit
		return !full
	})
	if err != nil {
		return nil, storeErr("scan items", err)
	}
	if scanErr != nil {
		return nil, scanErr
	}
	if !full && next < pos.Write {
		if err := e.missingItems(name, next, pos.Write); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// missingItems reports absent items [from, to) as inconsistent state unless a
// concurrent Dequeue, compaction or Reset has already moved past all of them.
func (e *Engine) missingItems(name string, from, to uint64) error {
	pos, err := e.readPosition(name)
	if err != nil {
		return err
	}
	lo, hi := max(from, pos.Read), min(to, pos.Write)
	if lo >= hi {
		return nil
	}
	return fmt.Errorf("%w: queue %q item %d missing", ErrInconsistentState, name, lo)
}

// ListQueues returns the names of all queues that have persisted state, in
// key order. It seeks queue by queue instead of walking their items.
func (e *Engine) ListQueues(ctx context.Context) ([]string, error) {
	lower, upper := allQueuesBounds()
	var names []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			name  string
			found bool
		)
		err := e.store.Scan(lower, upper, func(k, _ []byte) bool {
			name, _, found = parseKey(k)
			return false
		})
		if err != nil {
			return nil, storeErr("list queues", err)
		}
		if !found {
			return names, nil
		}
		names = append(names, name)
		// Skip past every key of this queue: bump the terminator byte.
		next := queuePrefix(name)
		next[len(next)-1]++
		lower = next
	}
}

// Statuses returns Status for every queue reported by ListQueues.
func (e *Engine) Statuses(ctx context.Context) ([]Status, error) {
	names, err := e.ListQueues(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(names))
	for _, n := range names {
		st, err := e.Status(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
