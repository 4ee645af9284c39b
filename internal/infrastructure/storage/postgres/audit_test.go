package postgres

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "stockpulse/internal/core/context"
)

func TestAuditCompression(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)
	defer svc.Close()

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "admin", Scope: "api"})
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "trace-1"})

	t.Run("small change sets stay plain", func(t *testing.T) {
		entry := AuditEntry{Changes: json.RawMessage(`{"note":"x"}`)}
		svc.prepare(ctx, &entry)

		assert.Equal(t, CompressionNone, entry.CompressionAlgo)
		assert.Equal(t, "admin", entry.UserID)
		assert.Equal(t, "trace-1", entry.TraceID)
		assert.NotEqual(t, uuid.Nil, entry.ID)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("large change sets round-trip through zstd", func(t *testing.T) {
		changes, err := json.Marshal(map[string]any{"note": strings.Repeat("serial ", 4000)})
		require.NoError(t, err)

		entry := AuditEntry{Changes: changes}
		svc.prepare(ctx, &entry)
		require.Equal(t, CompressionZstd, entry.CompressionAlgo)
		assert.Nil(t, entry.Changes)
		assert.Less(t, len(entry.ChangesCompressed), len(changes))

		require.NoError(t, svc.restore(&entry))
		assert.JSONEq(t, string(changes), string(entry.Changes))
	})
}
