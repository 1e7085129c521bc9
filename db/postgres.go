package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatgate/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

const pgUniqueViolation = "23505"

// Postgres is the PostgreSQL storage backend.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	pg := &Postgres{pool: pool}
	if err := pg.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pg, nil
}

func (pg *Postgres) Close() error {
	pg.pool.Close()
	return nil
}

func (pg *Postgres) init(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS chat_users (
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (chat_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			text TEXT NOT NULL,
			chat_id BIGINT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			receiver_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_users_user ON chat_users(user_id)`,
	}
	for _, query := range queries {
		if _, err := pg.pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (pg *Postgres) CreateUser(ctx context.Context, username string) (*models.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	u := models.User{Username: username}
	err = pg.pool.QueryRow(ctx,
		"INSERT INTO users (username) VALUES ($1) RETURNING id, created_at", username,
	).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (pg *Postgres) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	var u models.User
	err := pg.pool.QueryRow(ctx,
		"SELECT id, username, created_at, updated_at FROM users WHERE id = $1", id,
	).Scan(&u.ID, &u.Username, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (pg *Postgres) UpdateUsername(ctx context.Context, id models.UserID, username string) error {
	username, err := normalizeUsername(username)
	if err != nil {
		return err
	}
	tag, err := pg.pool.Exec(ctx,
		"UPDATE users SET username = $1, updated_at = now() WHERE id = $2", username, id)
	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (pg *Postgres) GetUserChatIDs(ctx context.Context, userID models.UserID) ([]models.ChatID, error) {
	if _, err := pg.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := pg.pool.Query(ctx,
		"SELECT chat_id FROM chat_users WHERE user_id = $1 ORDER BY chat_id", userID)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	return lo.Map(ids, func(id int64, _ int) models.ChatID { return models.ChatID(id) }), nil
}

func (pg *Postgres) CreateChat(ctx context.Context, participantIDs []models.UserID) (*models.Chat, error) {
	participantIDs = lo.Uniq(participantIDs)
	if len(participantIDs) != models.ChatSize {
		return nil, ErrInvalidParticipants
	}

	participants := make([]models.User, 0, len(participantIDs))
	for _, id := range participantIDs {
		u, err := pg.GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
			}
			return nil, err
		}
		participants = append(participants, *u)
	}

	tx, err := pg.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	chat := models.Chat{Participants: participants}
	if err := tx.QueryRow(ctx,
		"INSERT INTO chats DEFAULT VALUES RETURNING id, created_at",
	).Scan(&chat.ID, &chat.CreatedAt); err != nil {
		return nil, err
	}
	for _, id := range participantIDs {
		if _, err := tx.Exec(ctx,
			"INSERT INTO chat_users (chat_id, user_id) VALUES ($1, $2)", chat.ID, id,
		); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	chat.CreatedAt = chat.CreatedAt.UTC()
	return &chat, nil
}

func (pg *Postgres) GetChatWithParticipants(ctx context.Context, chatID models.ChatID) (*models.Chat, error) {
	var chat models.Chat
	err := pg.pool.QueryRow(ctx,
		"SELECT id, created_at, updated_at FROM chats WHERE id = $1", chatID,
	).Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}

	rows, err := pg.pool.Query(ctx, `
		SELECT u.id, u.username, u.created_at, u.updated_at
		FROM chat_users cu JOIN users u ON u.id = cu.user_id
		WHERE cu.chat_id = $1
		ORDER BY u.id`, chatID)
	if err != nil {
		return nil, err
	}
	chat.Participants, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := row.Scan(&u.ID, &u.Username, &u.CreatedAt, &u.UpdatedAt)
		return u, err
	})
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (pg *Postgres) AddParticipant(ctx context.Context, chatID models.ChatID, userID models.UserID) error {
	chat, err := pg.GetChatWithParticipants(ctx, chatID)
	if err != nil {
		return err
	}
	if lo.Contains(chat.ParticipantIDs(), userID) {
		return nil
	}
	if _, err := pg.GetUser(ctx, userID); err != nil {
		return err
	}

	tag, err := pg.pool.Exec(ctx, `
		INSERT INTO chat_users (chat_id, user_id)
		SELECT $1::bigint, $2::bigint WHERE (SELECT COUNT(*) FROM chat_users WHERE chat_id = $1) < $3
		ON CONFLICT DO NOTHING`, chatID, userID, models.ChatSize)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidParticipants
	}
	_, err = pg.pool.Exec(ctx, "UPDATE chats SET updated_at = now() WHERE id = $1", chatID)
	return err
}

func (pg *Postgres) RemoveParticipant(ctx context.Context, chatID models.ChatID, userID models.UserID) error {
	tag, err := pg.pool.Exec(ctx,
		"DELETE FROM chat_users WHERE chat_id = $1 AND user_id = $2", chatID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	_, err = pg.pool.Exec(ctx, "UPDATE chats SET updated_at = now() WHERE id = $1", chatID)
	return err
}

func (pg *Postgres) CreateMessage(ctx context.Context, chatID models.ChatID, senderID, receiverID models.UserID, text string) (*models.Message, error) {
	m := models.Message{ChatID: chatID, SenderID: senderID, ReceiverID: receiverID, Text: text}
	err := pg.pool.QueryRow(ctx, `
		INSERT INTO messages (text, chat_id, sender_id, receiver_id, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, timestamp`,
		text, chatID, senderID, receiverID, time.Now().UTC(),
	).Scan(&m.ID, &m.Timestamp)
	if err != nil {
		return nil, err
	}
	m.Timestamp = m.Timestamp.UTC()
	return &m, nil
}

func (pg *Postgres) GetChatMessages(ctx context.Context, chatID models.ChatID, limit, offset int) ([]models.Message, error) {
	rows, err := pg.pool.Query(ctx, `
		SELECT id, text, chat_id, sender_id, receiver_id, timestamp
		FROM messages
		WHERE chat_id = $1
		ORDER BY timestamp ASC, id ASC
		LIMIT $2 OFFSET $3`, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Message, error) {
		var m models.Message
		err := row.Scan(&m.ID, &m.Text, &m.ChatID, &m.SenderID, &m.ReceiverID, &m.Timestamp)
		m.Timestamp = m.Timestamp.UTC()
		return m, err
	})
}
