package netcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
)

const queueKeyPrefix = "rq:"

type QueuedRequest struct {
	Method     string      `json:"method"`
	URL        string      `json:"url"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	Attempts   int         `json:"attempts"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
}

// RetryQueue persists failed write requests and replays them in enqueue order.
// An entry leaves the queue once the backend responds at all; only
// network-level failures keep it queued for the next flush.
type RetryQueue struct {
	db     *badger.DB
	base   http.RoundTripper
	cron   *cron.Cron
	hasJob bool
}

func NewRetryQueue(dir string, base http.RoundTripper) (*RetryQueue, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return newRetryQueue(db, base), nil
}

// NewMemoryRetryQueue keeps the queue in memory only. Used by tests.
func NewMemoryRetryQueue(base http.RoundTripper) (*RetryQueue, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return newRetryQueue(db, base), nil
}

func newRetryQueue(db *badger.DB, base http.RoundTripper) *RetryQueue {
	if base == nil {
		base = http.DefaultTransport
	}

	return &RetryQueue{
		db:   db,
		base: base,
		cron: cron.New(),
	}
}

func (q *RetryQueue) Enqueue(ctx context.Context, req *QueuedRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s%020d", queueKeyPrefix, time.Now().UnixNano())
	return q.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}

func (q *RetryQueue) Len() (int, error) {
	count := 0
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(queueKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}

// Flush replays every queued request in order. Entries answered by the
// backend are removed whatever the status; entries failing at the network
// level stay with their attempt count bumped.
func (q *RetryQueue) Flush(ctx context.Context) error {
	type pending struct {
		key []byte
		req QueuedRequest
	}

	items := []pending{}
	err := q.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(queueKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var queued QueuedRequest
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			err = json.Unmarshal(raw, &queued)
			if err != nil {
				return err
			}
			items = append(items, pending{key: item.KeyCopy(nil), req: queued})
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, item := range items {
		err = ctx.Err()
		if err != nil {
			return err
		}

		done, rerr := q.replay(ctx, &item.req)
		if rerr != nil {
			return rerr
		}

		if done {
			err = q.db.Update(func(txn *badger.Txn) error {
				return txn.Delete(item.key)
			})
		} else {
			item.req.Attempts++
			raw, merr := json.Marshal(&item.req)
			if merr != nil {
				return merr
			}
			err = q.db.Update(func(txn *badger.Txn) error {
				return txn.Set(item.key, raw)
			})
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (q *RetryQueue) replay(ctx context.Context, queued *QueuedRequest) (bool, error) {
	var body *bytes.Reader
	if queued.Body != nil {
		body = bytes.NewReader(queued.Body)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, queued.Method, queued.URL, body)
	if err != nil {
		return false, err
	}
	for key, values := range queued.Header {
		req.Header[key] = values
	}

	res, err := q.base.RoundTrip(req)
	if err != nil {
		logger.Warn().Err(err).Str("url", queued.URL).Int("attempts", queued.Attempts).
			Msg("queued write still unreachable")
		return false, nil
	}
	res.Body.Close()

	return true, nil
}

// StartFlusher schedules Flush on a cron expression, e.g. "@every 1m".
func (q *RetryQueue) StartFlusher(schedule string) error {
	_, err := q.cron.AddFunc(schedule, func() {
		err := q.Flush(context.Background())
		if err != nil {
			logger.Error().Err(err).Msg("retry queue flush failed")
		}
	})
	if err != nil {
		return err
	}

	q.hasJob = true
	q.cron.Start()
	return nil
}

func (q *RetryQueue) Close() error {
	if q.hasJob {
		q.cron.Stop()
	}
	return q.db.Close()
}
