package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matchcore/internal/domain/enums"
	"github.com/ivankudzin/matchcore/internal/domain/model"
)

const complaintAuditSchema = `
CREATE TABLE IF NOT EXISTS complaint_events (
	id BIGSERIAL PRIMARY KEY,
	context TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	complainant_id TEXT NOT NULL,
	group_id TEXT NOT NULL DEFAULT '',
	inserted BOOLEAN NOT NULL,
	active_count INT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS complaint_events_subject_idx ON complaint_events (subject_id, created_at DESC);
CREATE TABLE IF NOT EXISTS moderation_blocks (
	id BIGSERIAL PRIMARY KEY,
	event_id BIGINT NOT NULL REFERENCES complaint_events (id),
	group_id TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// ComplaintAuditRepo keeps an append-only trail of filed complaints and
// of the automatic blocks they triggered.
type ComplaintAuditRepo struct {
	pool *pgxpool.Pool
}

func NewComplaintAuditRepo(pool *pgxpool.Pool) *ComplaintAuditRepo {
	return &ComplaintAuditRepo{pool: pool}
}

func (r *ComplaintAuditRepo) EnsureSchema(ctx context.Context) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if _, err := r.pool.Exec(ctx, complaintAuditSchema); err != nil {
		return fmt.Errorf("ensure complaint audit schema: %w", err)
	}
	return nil
}

// Record appends the event and, when it triggered a block, the block
// decision in the same transaction.
func (r *ComplaintAuditRepo) Record(ctx context.Context, ev model.ComplaintEvent) error {
	if strings.TrimSpace(ev.SubjectID) == "" || strings.TrimSpace(ev.ComplainantID) == "" {
		return fmt.Errorf("invalid complaint event payload")
	}

	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var eventID int64
		if err := tx.QueryRow(ctx, `
INSERT INTO complaint_events (
	context,
	subject_id,
	complainant_id,
	group_id,
	inserted,
	active_count,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`, string(ev.Context), ev.SubjectID, ev.ComplainantID, ev.GroupID, ev.Inserted, ev.ActiveCount, ev.CreatedAt.UTC()).Scan(&eventID); err != nil {
			return fmt.Errorf("insert complaint event: %w", err)
		}

		if !ev.Blocked {
			return nil
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO moderation_blocks (
	event_id,
	group_id,
	subject_id,
	created_at
) VALUES ($1, $2, $3, $4)
`, eventID, ev.GroupID, ev.SubjectID, ev.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("insert moderation block: %w", err)
		}
		return nil
	})
}

// History lists the newest events filed against a subject.
func (r *ComplaintAuditRepo) History(ctx context.Context, subjectID string, limit int) ([]model.ComplaintEvent, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT
	e.id,
	e.context,
	e.subject_id,
	e.complainant_id,
	e.group_id,
	e.inserted,
	e.active_count,
	EXISTS (SELECT 1 FROM moderation_blocks b WHERE b.event_id = e.id),
	e.created_at
FROM complaint_events e
WHERE e.subject_id = $1
ORDER BY e.created_at DESC, e.id DESC
LIMIT $2
`, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list complaint history: %w", err)
	}
	defer rows.Close()

	items := make([]model.ComplaintEvent, 0, limit)
	for rows.Next() {
		var (
			item model.ComplaintEvent
			kind string
		)
		if err := rows.Scan(
			&item.ID,
			&kind,
			&item.SubjectID,
			&item.ComplainantID,
			&item.GroupID,
			&item.Inserted,
			&item.ActiveCount,
			&item.Blocked,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan complaint event: %w", err)
		}
		item.Context = enums.ComplaintContext(kind)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate complaint history: %w", err)
	}

	return items, nil
}
