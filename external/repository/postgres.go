package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/foxseedlab/modconsole/internal/channel"
	"github.com/foxseedlab/modconsole/internal/repository"
	"github.com/foxseedlab/modconsole/internal/search"
	"github.com/jackc/pgx/v5/pgxpool"
)

const channelColumns = `kind, url, name, custom_type, cover_image_url, is_frozen, created_at,
	participant_count, member_count, is_supergroup, last_message_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) ListChannels(ctx context.Context, q repository.ListQuery) ([]repository.ChannelRow, error) {
	sql, args, err := buildListQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.ChannelRow
	for rows.Next() {
		var row repository.ChannelRow
		var kind string
		if err := rows.Scan(&kind, &row.URL, &row.Name, &row.CustomType, &row.CoverImageURL, &row.IsFrozen, &row.CreatedAt,
			&row.ParticipantCount, &row.MemberCount, &row.IsSupergroup, &row.LastMessageAt); err != nil {
			return nil, err
		}
		row.Kind = channel.Kind(kind)
		list = append(list, row)
	}
	return list, rows.Err()
}

func (r *PostgresRepository) DeleteChannels(ctx context.Context, kind channel.Kind, urls []string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM channels WHERE kind = $1 AND url = ANY($2)`,
		string(kind), urls)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepository) IsOperatorProvisioned(ctx context.Context, operatorID string, kind channel.Kind) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM operator_provisioning WHERE operator_id = $1 AND kind = $2)`,
		operatorID, string(kind)).Scan(&ok)
	return ok, err
}

// buildListQuery renders q as a keyset-paginated SELECT, newest first.
func buildListQuery(q repository.ListQuery) (string, []any, error) {
	args := []any{string(q.Kind)}
	conds := []string{"kind = $1"}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Query != "" {
		switch q.Option {
		case search.OptionName:
			conds = append(conds, "name ILIKE "+arg("%"+escapeLike(q.Query)+"%"))
		case search.OptionURL:
			conds = append(conds, "url LIKE "+arg(escapeLike(q.Query)+"%"))
		case search.OptionCustomType:
			conds = append(conds, "custom_type = "+arg(q.Query))
		case search.OptionMemberNickname:
			conds = append(conds, "EXISTS (SELECT 1 FROM unnest(member_nicknames) AS nickname WHERE nickname ILIKE "+
				arg("%"+escapeLike(q.Query)+"%")+")")
		default:
			return "", nil, fmt.Errorf("%w: %q", search.ErrUnknownOption, q.Option)
		}
	}
	if q.After != nil {
		createdAt := arg(q.After.CreatedAt)
		url := arg(q.After.URL)
		conds = append(conds, fmt.Sprintf("(created_at, url) < (%s, %s)", createdAt, url))
	}
	limit := arg(q.Limit)

	sql := "SELECT " + channelColumns + " FROM channels WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY created_at DESC, url DESC LIMIT " + limit
	return sql, args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
