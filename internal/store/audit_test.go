package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAudit(t *testing.T) *AuditLog {
	t.Helper()

	audit, err := NewAuditLog(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = audit.Close() })

	require.NoError(t, audit.Migrate(context.Background()))
	return audit
}

func TestAuditRecordAndHistory(t *testing.T) {
	t.Parallel()

	audit := newTestAudit(t)
	ctx := context.Background()

	require.NoError(t, audit.Record(ctx, "P001", "validate", "PASS", 0.91))
	require.NoError(t, audit.Record(ctx, "P001", "enrich", "PASS", 0.84))
	require.NoError(t, audit.Record(ctx, "P001", "qa", "VERIFIED", 0.84))
	require.NoError(t, audit.Record(ctx, "P002", "validate", "FAIL", 0.12))

	history, err := audit.History(ctx, "P001")
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Insertion order is preserved.
	assert.Equal(t, "validate", history[0].Stage)
	assert.Equal(t, "enrich", history[1].Stage)
	assert.Equal(t, "qa", history[2].Stage)
	assert.Equal(t, "VERIFIED", history[2].Status)
	assert.Equal(t, 0.84, history[2].Confidence)

	other, err := audit.History(ctx, "P002")
	require.NoError(t, err)
	assert.Len(t, other, 1)

	none, err := audit.History(ctx, "P999")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAuditMigrateIdempotent(t *testing.T) {
	t.Parallel()

	audit := newTestAudit(t)
	assert.NoError(t, audit.Migrate(context.Background()))
}
