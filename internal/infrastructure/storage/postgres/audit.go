// Package postgres provides PostgreSQL infrastructure components.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "millerp/internal/core/context"
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
	"millerp/internal/domain"
)

// AuditSchemaSQL creates the audit log table.
const AuditSchemaSQL = `
CREATE TABLE IF NOT EXISTS sys_audit (
    id                 UUID PRIMARY KEY,
    entity_type        TEXT NOT NULL,
    entity_id          UUID NOT NULL,
    action             TEXT NOT NULL,
    user_id            TEXT NOT NULL DEFAULT '',
    username           TEXT NOT NULL DEFAULT '',
    changes            JSONB,
    changes_compressed BYTEA,
    compression_algo   TEXT NOT NULL DEFAULT 'none',
    metadata           JSONB,
    created_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS ix_sys_audit__entity ON sys_audit (entity_type, entity_id, created_at DESC)`

// AuditAction represents the type of audited operation.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionPost   AuditAction = "post"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the change set size above which changes are compressed.
const DefaultCompressThreshold = 10 * 1024

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            AuditAction     `db:"action"`
	UserID            string          `db:"user_id"`
	Username          string          `db:"username"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	Metadata          json.RawMessage `db:"metadata"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService provides audit logging functionality.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditService creates a new audit service.
// A threshold <= 0 selects DefaultCompressThreshold.
func NewAuditService(txManager *TxManager, compressThreshold int) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	if compressThreshold <= 0 {
		compressThreshold = DefaultCompressThreshold
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: compressThreshold,
	}, nil
}

// prepare fills defaults and compresses large change sets.
func (s *AuditService) prepare(ctx context.Context, entry AuditEntry) AuditEntry {
	if user := appctx.GetUser(ctx); user != nil {
		if entry.UserID == "" {
			entry.UserID = user.UserID
		}
		if entry.Username == "" {
			entry.Username = user.Username
		}
	}

	if entry.Metadata == nil {
		if tc := appctx.GetTrace(ctx); tc != nil {
			entry.Metadata, _ = json.Marshal(map[string]string{
				"trace_id":   tc.TraceID,
				"request_id": tc.RequestID,
			})
		}
	}

	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	entry.CompressionAlgo = CompressionNone
	if len(entry.Changes) > s.compressThreshold {
		entry.ChangesCompressed = s.encoder.EncodeAll(entry.Changes, nil)
		entry.Changes = nil
		entry.CompressionAlgo = CompressionZstd
	}
	return entry
}

// Log records an audit entry.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	entry = s.prepare(ctx, entry)

	sql := `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, user_id, username,
			changes, changes_compressed, compression_algo, metadata,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	return s.txManager.Do(ctx, func(q Querier) error {
		_, err := q.Exec(ctx, sql,
			entry.ID, entry.EntityType, entry.EntityID, entry.Action,
			entry.UserID, entry.Username,
			entry.Changes, entry.ChangesCompressed, entry.CompressionAlgo,
			entry.Metadata, entry.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}
		return nil
	})
}

// LogDocument records the full state of doc as the change set.
func (s *AuditService) LogDocument(ctx context.Context, entityType string, action AuditAction, doc entity.Document) error {
	changes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	return s.Log(ctx, AuditEntry{
		EntityType: entityType,
		EntityID:   doc.Base().ID,
		Action:     action,
		Changes:    changes,
	})
}

// GetEntityHistory retrieves audit history for an entity.
func (s *AuditService) GetEntityHistory(
	ctx context.Context,
	entityType string,
	entityID id.ID,
	limit int,
) ([]AuditEntry, error) {
	sql := `
		SELECT id, entity_type, entity_id, action, user_id, username,
			   changes, changes_compressed, compression_algo, metadata,
			   created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	var entries []AuditEntry
	err := s.txManager.Do(ctx, func(q Querier) error {
		rows, err := q.Query(ctx, sql, entityType, entityID, limit)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var e AuditEntry
			err := rows.Scan(
				&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.UserID, &e.Username,
				&e.Changes, &e.ChangesCompressed, &e.CompressionAlgo, &e.Metadata,
				&e.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("scan entry: %w", err)
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if err := s.decompress(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *AuditService) decompress(e *AuditEntry) error {
	if e.CompressionAlgo != CompressionZstd || len(e.ChangesCompressed) == 0 {
		return nil
	}
	decompressed, err := s.decoder.DecodeAll(e.ChangesCompressed, nil)
	if err != nil {
		return fmt.Errorf("decompress changes: %w", err)
	}
	e.Changes = decompressed
	e.ChangesCompressed = nil
	return nil
}

// AuditHook returns a lifecycle hook that records doc after the event.
func AuditHook[T entity.Document](s *AuditService, entityType string, action AuditAction) domain.Hook[T] {
	return func(ctx context.Context, doc T) error {
		return s.LogDocument(ctx, entityType, action, doc)
	}
}
