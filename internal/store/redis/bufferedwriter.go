package redis

import (
	"encoding/json"
	"log"
	"sync"

	"renkoconfluence/internal/model"
)

type pendingWrite struct {
	kind string // "snapshot" | "trade"
	data []byte
}

// BufferedStore wraps Store with a circuit breaker. While Redis is
// unreachable, snapshots and trades are buffered in memory instead of lost,
// and replayed once the circuit closes again. Only the latest snapshot is
// worth keeping during an outage, but each trade is buffered since each
// one is a distinct record; once maxBuf writes are pending, the oldest is
// dropped to make room.
type BufferedStore struct {
	store *Store
	cb    *CircuitBreaker

	mu         sync.Mutex
	buffer     []pendingWrite
	maxBuf     int
	OnBuffer   func()
	OnFlush    func(count int)
}

// NewBufferedStore wraps store with cb. maxBufferSize caps how many pending
// writes accumulate during an outage before the oldest is dropped.
func NewBufferedStore(store *Store, cb *CircuitBreaker, maxBufferSize int) *BufferedStore {
	if maxBufferSize <= 0 {
		maxBufferSize = 2000
	}
	bw := &BufferedStore{store: store, cb: cb, maxBuf: maxBufferSize}

	prev := cb.OnStateChange
	cb.OnStateChange = func(from, to State) {
		if prev != nil {
			prev(from, to)
		}
		if to == StateClosed {
			go bw.flush()
		}
	}
	return bw
}

// PublishSnapshot implements model.SnapshotSink.
func (bw *BufferedStore) PublishSnapshot(snap model.SessionSnapshot) error {
	err := bw.cb.Execute(func() error { return bw.store.PublishSnapshot(snap) })
	if err == ErrCircuitOpen {
		data, merr := json.Marshal(snap)
		if merr != nil {
			return merr
		}
		bw.buffer1("snapshot", data)
		return nil
	}
	return err
}

// PublishTrade implements model.TradeSink.
func (bw *BufferedStore) PublishTrade(trade model.ClosedTrade) error {
	err := bw.cb.Execute(func() error { return bw.store.PublishTrade(trade) })
	if err == ErrCircuitOpen {
		data, merr := json.Marshal(trade)
		if merr != nil {
			return merr
		}
		bw.bufferAppend("trade", data)
		return nil
	}
	return err
}

// buffer1 keeps only the most recent snapshot buffered — older ones are
// superseded before they would ever be flushed.
func (bw *BufferedStore) buffer1(kind string, data []byte) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	for i, pw := range bw.buffer {
		if pw.kind == kind {
			bw.buffer[i].data = data
			return
		}
	}
	bw.buffer = append(bw.buffer, pendingWrite{kind: kind, data: data})
	if bw.OnBuffer != nil {
		bw.OnBuffer()
	}
}

func (bw *BufferedStore) bufferAppend(kind string, data []byte) {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if len(bw.buffer) >= bw.maxBuf {
		bw.buffer = bw.buffer[1:]
	}
	bw.buffer = append(bw.buffer, pendingWrite{kind: kind, data: data})
	if bw.OnBuffer != nil {
		bw.OnBuffer()
	}
}

func (bw *BufferedStore) flush() {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return
	}
	toFlush := bw.buffer
	bw.buffer = nil
	bw.mu.Unlock()

	flushed := 0
	for _, pw := range toFlush {
		switch pw.kind {
		case "snapshot":
			var snap model.SessionSnapshot
			if json.Unmarshal(pw.data, &snap) == nil {
				bw.store.PublishSnapshot(snap)
			}
		case "trade":
			var t model.ClosedTrade
			if json.Unmarshal(pw.data, &t) == nil {
				bw.store.PublishTrade(t)
			}
		}
		flushed++
	}
	log.Printf("[redis] flushed %d buffered writes", flushed)
	if bw.OnFlush != nil {
		bw.OnFlush(flushed)
	}
}

// PendingCount returns how many writes are waiting to be flushed.
func (bw *BufferedStore) PendingCount() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}

var (
	_ model.SnapshotSink = (*BufferedStore)(nil)
	_ model.TradeSink    = (*BufferedStore)(nil)
)
