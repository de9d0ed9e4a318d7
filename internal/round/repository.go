package round

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blackjack21/internal/game"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("round not found")

type Repository interface {
	Save(ctx context.Context, r *game.Round) (*game.Round, error)
	Get(ctx context.Context, id string) (*game.Round, error)
	Update(ctx context.Context, r *game.Round) (*game.Round, error)
}

type SQLRepository struct {
	db       *sql.DB
	postgres bool
	now      func() time.Time
}

func NewRepository(db *sql.DB, driver string) *SQLRepository {
	return &SQLRepository{
		db:       db,
		postgres: driver == "postgres",
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Save inserts a new round. The store assigns ID and timestamps.
func (r *SQLRepository) Save(ctx context.Context, rd *game.Round) (*game.Round, error) {
	out := rd.Clone()
	out.ID = uuid.NewString()
	out.CreatedAt = r.now()
	out.UpdatedAt = out.CreatedAt

	player, dealer, err := encodeHands(out)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO rounds (id, deck_id, player_cards, dealer_cards,
			player_points, dealer_points, winner, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), out.ID, out.DeckID, player, dealer,
		out.PlayerPoints, out.DealerPoints, string(out.Winner), out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save round: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*game.Round, error) {
	var (
		rd             game.Round
		player, dealer string
		winner         string
	)

	err := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, deck_id, player_cards, dealer_cards,
			player_points, dealer_points, winner, created_at, updated_at
		FROM rounds WHERE id = ?
	`), id).Scan(
		&rd.ID, &rd.DeckID, &player, &dealer,
		&rd.PlayerPoints, &rd.DealerPoints, &winner, &rd.CreatedAt, &rd.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	if err := json.Unmarshal([]byte(player), &rd.PlayerCards); err != nil {
		return nil, fmt.Errorf("failed to decode player cards: %w", err)
	}
	if err := json.Unmarshal([]byte(dealer), &rd.DealerCards); err != nil {
		return nil, fmt.Errorf("failed to decode dealer cards: %w", err)
	}
	rd.Winner = game.Outcome(winner)

	return &rd, nil
}

// Update overwrites cards, points and winner of an existing round.
func (r *SQLRepository) Update(ctx context.Context, rd *game.Round) (*game.Round, error) {
	out := rd.Clone()
	out.UpdatedAt = r.now()

	player, dealer, err := encodeHands(out)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, r.rebind(`
		UPDATE rounds SET
			player_cards = ?, dealer_cards = ?, player_points = ?,
			dealer_points = ?, winner = ?, updated_at = ?
		WHERE id = ?
	`), player, dealer, out.PlayerPoints, out.DealerPoints,
		string(out.Winner), out.UpdatedAt, out.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update round: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update round: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func encodeHands(rd *game.Round) (string, string, error) {
	player, err := json.Marshal(nonNil(rd.PlayerCards))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode player cards: %w", err)
	}
	dealer, err := json.Marshal(nonNil(rd.DealerCards))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode dealer cards: %w", err)
	}
	return string(player), string(dealer), nil
}

func nonNil(h game.Hand) game.Hand {
	if h == nil {
		return game.Hand{}
	}
	return h
}

// rebind converts ? placeholders to $1, $2... for postgres.
func (r *SQLRepository) rebind(query string) string {
	if !r.postgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

var _ Repository = (*SQLRepository)(nil)
