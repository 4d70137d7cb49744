package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcoot/impostorgame/internal/model"
	"github.com/mcoot/impostorgame/internal/storage"
)

//go:embed schema.sql
var schema string

// uniqueViolation is the PostgreSQL error code for unique_violation
const uniqueViolation = "23505"

// Storage is a Postgres-backed implementation of the storage interface.
// Rooms carry a version column; updates are conditional on it.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and optionally applies the schema
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, unavailable(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable(err)
	}

	s := &Storage{pool: pool}
	if cfg.Migrate {
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewWithPool creates a Postgres storage over an existing pool (for testing)
func NewWithPool(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Migrate creates any missing tables
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping checks the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the pool
func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// unavailable wraps infrastructure failures, leaving cancellation untouched
func unavailable(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}

// constraintError maps unique violations onto domain errors
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return unavailable(err)
	}
	if pgErr.ConstraintName == "ballots_pkey" {
		return model.ErrAlreadyVoted
	}
	return fmt.Errorf("%w: violates %s", model.ErrInvalidState, pgErr.ConstraintName)
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func nullable[T ~string](v T) *string {
	if v == "" {
		return nil
	}
	s := string(v)
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Room operations

const insertRoomSQL = `
INSERT INTO rooms (code, theme, impostor_count, secret_word, status, round_state,
                   current_turn_index, winner, last_eliminated_id, round_generation,
                   version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (code) DO NOTHING`

func (s *Storage) CreateRoom(ctx context.Context, state *model.RoomState) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return unavailable(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	r := state.Room
	tag, err := tx.Exec(ctx, insertRoomSQL,
		r.Code, r.Theme, r.ImpostorCount, r.SecretWord, r.Status, r.RoundState,
		r.CurrentTurnIndex, nullable(r.Winner), nullable(r.LastEliminatedID), r.RoundGeneration,
		r.Version, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return unavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCodeCollision
	}

	if err := writeChildren(ctx, tx, state, 0); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.RoomState, error) {
	return loadState(ctx, s.pool, code)
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, unavailable(err)
	}
	return exists, nil
}

const updateRoomSQL = `
UPDATE rooms
SET secret_word = $3, status = $4, round_state = $5, current_turn_index = $6,
    winner = $7, last_eliminated_id = $8, round_generation = $9,
    version = version + 1, updated_at = $10
WHERE code = $1 AND version = $2`

func (s *Storage) UpdateRoom(ctx context.Context, code model.RoomCode, fn storage.UpdateFunc) (*model.RoomState, error) {
	for range storage.MaxUpdateAttempts {
		state, committed, err := s.tryUpdate(ctx, code, fn)
		if err != nil {
			return nil, err
		}
		if committed {
			return state, nil
		}
	}
	return nil, fmt.Errorf("%w: too many concurrent updates to room %s", model.ErrStoreUnavailable, code)
}

// tryUpdate runs one optimistic attempt. committed is false when another writer won the race.
func (s *Storage) tryUpdate(ctx context.Context, code model.RoomCode, fn storage.UpdateFunc) (*model.RoomState, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, false, unavailable(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	state, err := loadState(ctx, tx, code)
	if err != nil {
		return nil, false, err
	}
	original := state.Clone()

	if err := fn(state); err != nil {
		if errors.Is(err, storage.ErrNoChanges) {
			return original, true, nil
		}
		return nil, false, err
	}

	r := state.Room
	tag, err := tx.Exec(ctx, updateRoomSQL,
		code, original.Room.Version, r.SecretWord, r.Status, r.RoundState, r.CurrentTurnIndex,
		nullable(r.Winner), nullable(r.LastEliminatedID), r.RoundGeneration, r.UpdatedAt)
	if err != nil {
		return nil, false, unavailable(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, false, nil
	}

	if err := writeChildren(ctx, tx, state, len(original.Ballots)); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, unavailable(err)
	}

	state.Room.Version = original.Room.Version + 1
	return state, true, nil
}

const upsertPlayerSQL = `
INSERT INTO players (id, room_code, name, is_host, is_impostor, is_alive, join_order, joined_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET is_host = EXCLUDED.is_host, is_impostor = EXCLUDED.is_impostor, is_alive = EXCLUDED.is_alive`

const insertBallotSQL = `
INSERT INTO ballots (room_code, voter_id, candidate_id, round_generation, cast_at)
VALUES ($1, $2, $3, $4, $5)`

// writeChildren upserts every player and inserts ballots from index newBallots onward.
// Ballots are append-only.
func writeChildren(ctx context.Context, tx pgx.Tx, state *model.RoomState, newBallots int) error {
	batch := &pgx.Batch{}
	for _, p := range state.Players {
		batch.Queue(upsertPlayerSQL,
			p.ID, state.Room.Code, p.Name, p.IsHost, p.IsImpostor, p.IsAlive, p.JoinOrder, p.JoinedAt)
	}
	for _, b := range state.Ballots[newBallots:] {
		batch.Queue(insertBallotSQL, state.Room.Code, b.VoterID, nullable(b.CandidateID), b.Round, b.CastAt)
	}
	if batch.Len() == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	for range batch.Len() {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return constraintError(err)
		}
	}
	if err := results.Close(); err != nil {
		return unavailable(err)
	}
	return nil
}

const selectRoomSQL = `
SELECT code, theme, impostor_count, secret_word, status, round_state, current_turn_index,
       winner, last_eliminated_id, round_generation, version, created_at, updated_at
FROM rooms WHERE code = $1`

const selectPlayersSQL = `
SELECT id, room_code, name, is_host, is_impostor, is_alive, join_order, joined_at
FROM players WHERE room_code = $1 ORDER BY join_order`

const selectBallotsSQL = `
SELECT room_code, voter_id, candidate_id, round_generation, cast_at
FROM ballots WHERE room_code = $1 ORDER BY round_generation, cast_at, voter_id`

func loadState(ctx context.Context, q querier, code model.RoomCode) (*model.RoomState, error) {
	var (
		state          model.RoomState
		winner, lastID *string
	)
	r := &state.Room
	err := q.QueryRow(ctx, selectRoomSQL, code).Scan(
		&r.Code, &r.Theme, &r.ImpostorCount, &r.SecretWord, &r.Status, &r.RoundState,
		&r.CurrentTurnIndex, &winner, &lastID, &r.RoundGeneration, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRoomNotFound
		}
		return nil, unavailable(err)
	}
	r.Winner = model.Winner(deref(winner))
	r.LastEliminatedID = model.PlayerID(deref(lastID))

	rows, err := q.Query(ctx, selectPlayersSQL, code)
	if err != nil {
		return nil, unavailable(err)
	}
	state.Players, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Player, error) {
		var p model.Player
		err := row.Scan(&p.ID, &p.RoomCode, &p.Name, &p.IsHost, &p.IsImpostor, &p.IsAlive, &p.JoinOrder, &p.JoinedAt)
		return p, err
	})
	if err != nil {
		return nil, unavailable(err)
	}

	rows, err = q.Query(ctx, selectBallotsSQL, code)
	if err != nil {
		return nil, unavailable(err)
	}
	state.Ballots, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Ballot, error) {
		var (
			b         model.Ballot
			candidate *string
		)
		err := row.Scan(&b.RoomCode, &b.VoterID, &candidate, &b.Round, &b.CastAt)
		b.CandidateID = model.PlayerID(deref(candidate))
		return b, err
	})
	if err != nil {
		return nil, unavailable(err)
	}
	return &state, nil
}

// Word bank operations

func (s *Storage) SaveCategoryWords(ctx context.Context, category string, words []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return unavailable(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM game_words WHERE category = $1`, category); err != nil {
		return unavailable(err)
	}
	rows := make([][]any, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		rows = append(rows, []any{category, w})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"game_words"}, []string{"category", "word"}, pgx.CopyFromRows(rows)); err != nil {
		return unavailable(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *Storage) GetCategoryWords(ctx context.Context, category string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT word FROM game_words WHERE category = $1 ORDER BY word`, category)
	if err != nil {
		return nil, unavailable(err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, unavailable(err)
	}
	return words, nil
}

func (s *Storage) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT category FROM game_words ORDER BY category`)
	if err != nil {
		return nil, unavailable(err)
	}
	categories, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, unavailable(err)
	}
	return categories, nil
}
