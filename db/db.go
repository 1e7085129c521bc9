package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatgate/models"

	"github.com/mattn/go-sqlite3"
	"github.com/samber/lo"
)

var (
	ErrNoRows              = errors.New("no rows found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidParticipants = errors.New("chat must have exactly 2 participants")
	ErrInvalidUsername     = errors.New("username must not be blank")
)

// normalizeUsername trims surrounding whitespace and rejects blank names.
func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrInvalidUsername
	}
	return username, nil
}

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB is the SQLite storage backend.
type DB struct {
	conn *sql.DB
}

func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chat_users (
			chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (chat_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			chat_id INTEGER NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			sender_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			receiver_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_users_user ON chat_users(user_id)`,
	}

	for _, query := range queries {
		if _, err := db.conn.Exec(query); err != nil {
			return err
		}
	}

	return db.migrate()
}

// migrate adds columns introduced after the first schema version.
func (db *DB) migrate() error {
	for _, table := range []string{"users", "chats"} {
		if db.columnExists(table, "updated_at") {
			continue
		}
		// SQLite doesn't support parameters in ALTER TABLE
		if _, err := db.conn.Exec("ALTER TABLE " + table + " ADD COLUMN updated_at TEXT"); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) columnExists(table, column string) bool {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}

// User methods

func (db *DB) CreateUser(ctx context.Context, username string) (*models.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		"INSERT INTO users (username, created_at) VALUES (?, ?)",
		username, now.Format(timeLayout),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: models.UserID(id), Username: username, CreatedAt: now}, nil
}

func (db *DB) GetUser(ctx context.Context, id models.UserID) (*models.User, error) {
	var (
		u         models.User
		createdAt string
		updatedAt sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, username, created_at, updated_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Username, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUsername renames a user.
func (db *DB) UpdateUsername(ctx context.Context, id models.UserID, username string) error {
	username, err := normalizeUsername(username)
	if err != nil {
		return err
	}
	result, err := db.conn.ExecContext(ctx,
		"UPDATE users SET username = ?, updated_at = ? WHERE id = ?",
		username, time.Now().UTC().Format(timeLayout), id,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrUsernameTaken
		}
		return err
	}
	return expectAffected(result, ErrUserNotFound)
}

// GetUserChatIDs lists the chats the user participates in.
func (db *DB) GetUserChatIDs(ctx context.Context, userID models.UserID) ([]models.ChatID, error) {
	if _, err := db.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT chat_id FROM chat_users WHERE user_id = ? ORDER BY chat_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []models.ChatID
	for rows.Next() {
		var id models.ChatID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Chat methods

// CreateChat creates a two-party chat between existing users.
func (db *DB) CreateChat(ctx context.Context, participantIDs []models.UserID) (*models.Chat, error) {
	participantIDs = lo.Uniq(participantIDs)
	if len(participantIDs) != models.ChatSize {
		return nil, ErrInvalidParticipants
	}

	participants := make([]models.User, 0, len(participantIDs))
	for _, id := range participantIDs {
		u, err := db.GetUser(ctx, id)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
			}
			return nil, err
		}
		participants = append(participants, *u)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, "INSERT INTO chats (created_at) VALUES (?)", now.Format(timeLayout))
	if err != nil {
		return nil, err
	}
	chatID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, id := range participantIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO chat_users (chat_id, user_id) VALUES (?, ?)", chatID, id,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &models.Chat{ID: models.ChatID(chatID), CreatedAt: now, Participants: participants}, nil
}

// GetChatWithParticipants returns ErrNoRows when the chat does not exist.
func (db *DB) GetChatWithParticipants(ctx context.Context, chatID models.ChatID) (*models.Chat, error) {
	var (
		chat      models.Chat
		createdAt string
		updatedAt sql.NullString
	)
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, created_at, updated_at FROM chats WHERE id = ?", chatID,
	).Scan(&chat.ID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRows
	}
	if err != nil {
		return nil, err
	}
	if chat.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, err
	}
	if chat.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT u.id, u.username, u.created_at, u.updated_at
		FROM chat_users cu JOIN users u ON u.id = cu.user_id
		WHERE cu.chat_id = ?
		ORDER BY u.id`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chat.Participants = []models.User{}
	for rows.Next() {
		var (
			u       models.User
			created string
			updated sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Username, &created, &updated); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, err
		}
		if u.UpdatedAt, err = parseNullTime(updated); err != nil {
			return nil, err
		}
		chat.Participants = append(chat.Participants, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &chat, nil
}

// AddParticipant adds userID to a chat that has a free seat. Adding an
// existing participant is a no-op; a full chat yields ErrInvalidParticipants.
func (db *DB) AddParticipant(ctx context.Context, chatID models.ChatID, userID models.UserID) error {
	chat, err := db.GetChatWithParticipants(ctx, chatID)
	if err != nil {
		return err
	}
	if lo.Contains(chat.ParticipantIDs(), userID) {
		return nil
	}
	if _, err := db.GetUser(ctx, userID); err != nil {
		return err
	}

	result, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO chat_users (chat_id, user_id)
		SELECT ?, ? WHERE (SELECT COUNT(*) FROM chat_users WHERE chat_id = ?) < ?`,
		chatID, userID, chatID, models.ChatSize)
	if err != nil {
		return err
	}
	if err := expectAffected(result, ErrInvalidParticipants); err != nil {
		return err
	}
	return db.touchChat(ctx, chatID)
}

func (db *DB) RemoveParticipant(ctx context.Context, chatID models.ChatID, userID models.UserID) error {
	result, err := db.conn.ExecContext(ctx,
		"DELETE FROM chat_users WHERE chat_id = ? AND user_id = ?", chatID, userID)
	if err != nil {
		return err
	}
	if err := expectAffected(result, ErrNoRows); err != nil {
		return err
	}
	return db.touchChat(ctx, chatID)
}

func (db *DB) touchChat(ctx context.Context, chatID models.ChatID) error {
	_, err := db.conn.ExecContext(ctx,
		"UPDATE chats SET updated_at = ? WHERE id = ?", time.Now().UTC().Format(timeLayout), chatID)
	return err
}

// Message methods

func (db *DB) CreateMessage(ctx context.Context, chatID models.ChatID, senderID, receiverID models.UserID, text string) (*models.Message, error) {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		"INSERT INTO messages (text, chat_id, sender_id, receiver_id, timestamp) VALUES (?, ?, ?, ?, ?)",
		text, chatID, senderID, receiverID, now.Format(timeLayout),
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Message{
		ID:         id,
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  now,
	}, nil
}

// GetChatMessages returns a page of a chat's history, oldest first.
func (db *DB) GetChatMessages(ctx context.Context, chatID models.ChatID, limit, offset int) ([]models.Message, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, text, chat_id, sender_id, receiver_id, timestamp
		FROM messages
		WHERE chat_id = ?
		ORDER BY timestamp ASC, id ASC
		LIMIT ? OFFSET ?`, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var (
			m  models.Message
			ts string
		)
		if err := rows.Scan(&m.ID, &m.Text, &m.ChatID, &m.SenderID, &m.ReceiverID, &ts); err != nil {
			return nil, err
		}
		if m.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
