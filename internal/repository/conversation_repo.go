package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/liliang-cn/askweb/internal/domain"
)

// ConversationRepository persists the chat log
type ConversationRepository struct {
	db *DB
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// CreateSession creates a new session
func (r *ConversationRepository) CreateSession(session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO sessions (id, created_at, updated_at)
		VALUES (?, ?, ?)
	`, session.ID, session.CreatedAt, session.UpdatedAt)

	return err
}

// GetSession retrieves a session by ID
func (r *ConversationRepository) GetSession(id string) (*domain.Session, error) {
	session := &domain.Session{}

	err := r.db.QueryRow(`
		SELECT id, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// TouchSession updates a session's updated_at timestamp
func (r *ConversationRepository) TouchSession(id string) error {
	_, err := r.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

// CreateMessage creates a new message
func (r *ConversationRepository) CreateMessage(message *domain.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()

	var metadataJSON string
	if message.Metadata != nil {
		data, _ := json.Marshal(message.Metadata)
		metadataJSON = string(data)
	}

	_, err := r.db.Exec(`
		INSERT INTO messages (id, session_id, role, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.SessionID, message.Role, message.Content,
		metadataJSON, message.CreatedAt)

	return err
}

// GetMessages retrieves all messages for a session
func (r *ConversationRepository) GetMessages(sessionID string) ([]*domain.Message, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, role, content, metadata, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		var metadataJSON sql.NullString

		if err := rows.Scan(&message.ID, &message.SessionID, &message.Role,
			&message.Content, &metadataJSON, &message.CreatedAt); err != nil {
			return nil, err
		}

		if metadataJSON.Valid && metadataJSON.String != "" {
			var md domain.Metadata
			if json.Unmarshal([]byte(metadataJSON.String), &md) == nil {
				message.Metadata = &md
			}
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// CountChats returns the total number of user messages (chats)
func (r *ConversationRepository) CountChats() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE role = 'user'`).Scan(&count)
	return count, err
}
