package queue

import (
	"context"
	"fmt"
)

// CompactQueue deletes items of name that were already delivered
// (seq < read_pos). Deletes are committed in batches of up to batchLimit keys;
// the queue's exclusion is held per batch so concurrent Dequeue and Reset stay
// consistent. Returns how many items were removed.
func (e *Engine) CompactQueue(ctx context.Context, name string, batchLimit int) (int, error) {
	if err := e.ValidateName(name); err != nil {
		return 0, err
	}
	if batchLimit <= 0 {
		batchLimit = 1024
	}
	var (
		total int
		upper uint64
	)
	for {
		n, read, err := e.compactBatch(ctx, name, batchLimit)
		total += n
		if read > upper {
			upper = read
		}
		if err != nil {
			return total, err
		}
		if n < batchLimit {
			break
		}
	}
	if total > 0 {
		lo, hi := itemBounds(name, 0, upper)
		if err := e.store.CompactRange(lo, hi); err != nil {
			return total, storeErr("compact range", err)
		}
	}
	return total, nil
}

func (e *Engine) compactBatch(ctx context.Context, name string, batchLimit int) (int, uint64, error) {
	release, err := e.reg.acquire(ctx, name)
	if err != nil {
		return 0, 0, err
	}
	defer release()

	pos, err := e.readPosition(name)
	if err != nil {
		return 0, 0, err
	}
	if pos.Read == 0 {
		return 0, 0, nil
	}
	lower, upper := itemBounds(name, 0, pos.Read)
	var keys [][]byte
	if err := e.store.Scan(lower, upper, func(k, _ []byte) bool {
		keys = append(keys, append([]byte(nil), k...))
		return len(keys) < batchLimit
	}); err != nil {
		return 0, pos.Read, storeErr("scan consumed", err)
	}
	if len(keys) == 0 {
		return 0, pos.Read, nil
	}

	b := e.store.NewWriteBatch()
	defer b.Close()
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return 0, pos.Read, storeErr("compact", err)
		}
	}
	if err := commit(ctx, b, "compact"); err != nil {
		return 0, pos.Read, fmt.Errorf("compact %q: %w", name, err)
	}
	return len(keys), pos.Read, nil
}
