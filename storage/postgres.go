package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

var ErrDatabase = errors.New("database-error")

// PostgresRepo serves random words out of the words table.
type PostgresRepo struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
	logger       zerolog.Logger
}

func NewPostgresRepo(ctx context.Context, connString string, queryTimeout time.Duration, logger zerolog.Logger) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapErr(err)
	}
	return &PostgresRepo{pool: pool, queryTimeout: queryTimeout, logger: logger}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func wrapErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (%s)", ErrDatabase, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %w", ErrDatabase, err)
}

// RandomWords fetches up to count distinct random words.
func (pgr *PostgresRepo) RandomWords(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return []string{}, nil
	}

	rows, err := pgr.pool.Query(ctx, `SELECT word FROM words ORDER BY RANDOM() LIMIT $1`, count)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	words := make([]string, 0, count)
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, wrapErr(err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return words, nil
}

// Generate implements the game.RandomWordsGenerator interface. Failures are
// logged and come back as an empty slice so the caller can fall back to
// another source.
func (pgr *PostgresRepo) Generate(count int) []string {
	ctx, cancel := context.WithTimeout(context.Background(), pgr.queryTimeout)
	defer cancel()

	words, err := pgr.RandomWords(ctx, count)
	if err != nil {
		pgr.logger.Error().Err(err).Int("count", count).Msg("random words query failed")
		return []string{}
	}
	return words
}

// AddWords inserts words, skipping the ones already stored. It returns how
// many rows were created.
func (pgr *PostgresRepo) AddWords(ctx context.Context, words []string) (int64, error) {
	tag, err := pgr.pool.Exec(ctx,
		`INSERT INTO words(word) SELECT unnest($1::text[]) ON CONFLICT (word) DO NOTHING`,
		words,
	)
	if err != nil {
		return 0, wrapErr(err)
	}
	return tag.RowsAffected(), nil
}

func (pgr *PostgresRepo) CountWords(ctx context.Context) (int, error) {
	var n int
	if err := pgr.pool.QueryRow(ctx, `SELECT count(*) FROM words`).Scan(&n); err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}
