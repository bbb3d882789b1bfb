package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ActivityRepository implements port.ActivityRepository backed by PostgreSQL.
type ActivityRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewActivityRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewActivityRepository(exec pgExecutor) *ActivityRepository {
	return &ActivityRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Increment bumps the activity counter for a user within a group, creating
// the row on first activity.
func (r *ActivityRepository) Increment(ctx context.Context, groupID, userID int64) error {
	sql, args, err := r.builder.Insert("squad.activity").
		Columns("group_id", "user_id", "count").
		Values(groupID, userID, 1).
		Suffix("ON CONFLICT (group_id, user_id) DO UPDATE SET count = squad.activity.count + 1, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment activity sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("increment activity: %w", err)
	}
	return nil
}

// Top returns the n most active users in a group, most active first.
func (r *ActivityRepository) Top(ctx context.Context, groupID int64, n int) ([]domain.ActivityRecord, error) {
	if n <= 0 {
		n = 10
	}

	sql, args, err := r.builder.Select("group_id", "user_id", "count").
		From("squad.activity").
		Where(squirrel.Eq{"group_id": groupID}).
		OrderBy("count DESC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top activity sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query top activity: %w", err)
	}
	defer rows.Close()

	var records []domain.ActivityRecord
	for rows.Next() {
		var record domain.ActivityRecord
		if err := rows.Scan(&record.GroupID, &record.UserID, &record.Count); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity rows: %w", err)
	}

	return records, nil
}
