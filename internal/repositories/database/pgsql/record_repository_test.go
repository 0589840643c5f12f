package pgsql

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/Joshua-Peter7/reconsys/internal/models"
)

// fakeRecordDB mimics the pool's batch semantics: a batch runs in one implicit
// transaction, so the first failing statement rolls back the whole batch and
// aborts the rest, even though earlier Exec results already reported success.
// Individual Exec calls succeed or fail per row.
type fakeRecordDB struct {
	failFor  map[string]bool
	landed   []string
	batches  int
	rowExecs int
}

type fakeBatchResults struct {
	errs []error
	idx  int
}

func (f *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	err := f.errs[f.idx]
	f.idx++
	return pgconn.CommandTag{}, err
}

func (f *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (f *fakeBatchResults) QueryRow() pgx.Row        { return nil }
func (f *fakeBatchResults) Close() error             { return nil }

func (db *fakeRecordDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	db.batches++

	errs := make([]error, len(b.QueuedQueries))
	aborted := false
	for i, q := range b.QueuedQueries {
		recordID := q.Arguments[0].(string)
		switch {
		case aborted:
			errs[i] = errors.New("pipeline aborted")
		case db.failFor[recordID]:
			errs[i] = errors.New("numeric field overflow")
			aborted = true
		}
	}
	if !aborted {
		for _, q := range b.QueuedQueries {
			db.landed = append(db.landed, q.Arguments[0].(string))
		}
	}
	return &fakeBatchResults{errs: errs}
}

func (db *fakeRecordDB) Exec(_ context.Context, _ string, arguments ...any) (pgconn.CommandTag, error) {
	db.rowExecs++
	recordID := arguments[0].(string)
	if db.failFor[recordID] {
		return pgconn.CommandTag{}, errors.New("numeric field overflow")
	}
	db.landed = append(db.landed, recordID)
	return pgconn.CommandTag{}, nil
}

func testModels(ids ...string) []models.Record {
	chunk := make([]models.Record, len(ids))
	for i, id := range ids {
		chunk[i] = models.Record{RecordID: id}
	}
	return chunk
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInsertRecordChunk_CleanChunkLandsInOneBatch(t *testing.T) {
	db := &fakeRecordDB{failFor: map[string]bool{}}

	inserted, failed := insertRecordChunk(context.Background(), db, discardLogger(), testModels("r1", "r2", "r3"))

	assert.Equal(t, 3, inserted)
	assert.Equal(t, 0, failed)
	assert.Equal(t, []string{"r1", "r2", "r3"}, db.landed)
	assert.Equal(t, 1, db.batches)
	assert.Zero(t, db.rowExecs)
}

// A failing row rolls back the whole batch, including rows whose Exec already
// reported success. The retry must land those rows and count only the bad one
// as failed.
func TestInsertRecordChunk_RolledBackBatchRetriedRowByRow(t *testing.T) {
	db := &fakeRecordDB{failFor: map[string]bool{"r2": true}}

	inserted, failed := insertRecordChunk(context.Background(), db, discardLogger(), testModels("r1", "r2", "r3"))

	assert.Equal(t, 2, inserted)
	assert.Equal(t, 1, failed)
	assert.Equal(t, []string{"r1", "r3"}, db.landed)
	assert.Equal(t, 3, db.rowExecs)
}

func TestInsertRecordChunk_AllRowsBadCountsAllFailed(t *testing.T) {
	db := &fakeRecordDB{failFor: map[string]bool{"r1": true, "r2": true}}

	inserted, failed := insertRecordChunk(context.Background(), db, discardLogger(), testModels("r1", "r2"))

	assert.Zero(t, inserted)
	assert.Equal(t, 2, failed)
	assert.Empty(t, db.landed)
}

func TestInsertRecordChunk_EmptyChunkIsNoOp(t *testing.T) {
	db := &fakeRecordDB{}

	inserted, failed := insertRecordChunk(context.Background(), db, discardLogger(), nil)

	assert.Zero(t, inserted)
	assert.Zero(t, failed)
	assert.Zero(t, db.batches)
}
