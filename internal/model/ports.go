package model

// Storage/transport port interfaces — these decouple the core from
// concrete adapters (Redis, SQLite, websocket dashboard, notifiers).
// Narrow read/write interfaces so storage concerns don't leak into the
// model package.

// SnapshotSink persists or forwards a SessionSnapshot. Implementations must
// not block the orchestrator — callers treat a slow sink as droppable.
type SnapshotSink interface {
	PublishSnapshot(snap SessionSnapshot) error
}

// TradeSink persists or forwards a ClosedTrade record.
type TradeSink interface {
	PublishTrade(trade ClosedTrade) error
}

// SnapshotStore reads and writes snapshots as raw JSON, keeping storage
// concerns out of the model package and avoid a model->store->model
// import cycle.
type SnapshotStore interface {
	SaveSnapshotJSON(data []byte) error
	ReadLatestSnapshotJSON() ([]byte, error)
}
