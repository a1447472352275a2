package database

import (
	"context"
	"errors"
	"fmt"

	"chat-server/internal/chat"
	"chat-server/internal/models"
	"chat-server/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database successfully")
	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() error {
	db.pool.Close()
	return nil
}

// User Repository Implementation
func (db *PostgresDB) CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, name, email, role, created_at`

	user := &models.User{PasswordHash: passwordHash}
	err := db.pool.QueryRow(ctx, query, req.Name, req.Email, passwordHash, req.Role).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", chat.ErrNotFound, email)
		}
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT id, name, email, role, created_at FROM users WHERE id = $1`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", chat.ErrNotFound, id)
		}
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) ListUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, name, email, role, created_at FROM users ORDER BY name`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (db *PostgresDB) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    email = COALESCE(NULLIF($3, ''), email)
		WHERE id = $1
		RETURNING id, name, email, role, created_at`

	user := &models.User{}
	err := db.pool.QueryRow(ctx, query, id, req.Name, req.Email).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", chat.ErrNotFound, id)
		}
		return nil, err
	}

	return user, nil
}

func (db *PostgresDB) DeleteUser(ctx context.Context, id int) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %d", chat.ErrNotFound, id)
	}
	return nil
}

// Channel Repository Implementation
func (db *PostgresDB) CreateChannel(ctx context.Context, name string) (*models.Channel, error) {
	query := `
		INSERT INTO channels (name, created_at) VALUES ($1, NOW())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	channel := &models.Channel{}
	err := db.pool.QueryRow(ctx, query, name).Scan(&channel.ID, &channel.Name, &channel.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return channel, nil
}

func (db *PostgresDB) GetChannelByID(ctx context.Context, id int) (*models.Channel, error) {
	query := `SELECT id, name, created_at FROM channels WHERE id = $1`

	channel := &models.Channel{}
	err := db.pool.QueryRow(ctx, query, id).Scan(&channel.ID, &channel.Name, &channel.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: channel %d", chat.ErrNotFound, id)
		}
		return nil, err
	}

	return channel, nil
}

func (db *PostgresDB) ListChannels(ctx context.Context) ([]*models.Channel, error) {
	return db.scanChannels(ctx, `SELECT id, name, created_at FROM channels ORDER BY name`)
}

func (db *PostgresDB) ListUserChannels(ctx context.Context, userID int) ([]*models.Channel, error) {
	query := `
		SELECT c.id, c.name, c.created_at
		FROM channels c
		JOIN channel_members cm ON c.id = cm.channel_id
		WHERE cm.user_id = $1
		ORDER BY c.name`

	return db.scanChannels(ctx, query, userID)
}

func (db *PostgresDB) scanChannels(ctx context.Context, query string, args ...any) ([]*models.Channel, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []*models.Channel
	for rows.Next() {
		channel := &models.Channel{}
		if err := rows.Scan(&channel.ID, &channel.Name, &channel.CreatedAt); err != nil {
			return nil, err
		}
		channels = append(channels, channel)
	}

	return channels, rows.Err()
}

// Membership Repository Implementation
func (db *PostgresDB) AddMember(ctx context.Context, channelID, userID int) error {
	query := `
		INSERT INTO channel_members (channel_id, user_id, joined_at) VALUES ($1, $2, NOW())
		ON CONFLICT (channel_id, user_id) DO NOTHING`

	_, err := db.pool.Exec(ctx, query, channelID, userID)
	return err
}

func (db *PostgresDB) RemoveMember(ctx context.Context, channelID, userID int) error {
	query := `DELETE FROM channel_members WHERE channel_id = $1 AND user_id = $2`
	_, err := db.pool.Exec(ctx, query, channelID, userID)
	return err
}

func (db *PostgresDB) IsMember(ctx context.Context, channelID, userID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM channel_members WHERE channel_id = $1 AND user_id = $2)`

	var exists bool
	err := db.pool.QueryRow(ctx, query, channelID, userID).Scan(&exists)
	return exists, err
}

func (db *PostgresDB) ListMembers(ctx context.Context, channelID int) ([]*models.Member, error) {
	query := `
		SELECT u.id, u.name, u.email, cm.joined_at
		FROM channel_members cm
		JOIN users u ON cm.user_id = u.id
		WHERE cm.channel_id = $1
		ORDER BY u.name`

	rows, err := db.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		if err := rows.Scan(&member.ID, &member.Name, &member.Email, &member.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// Message Repository Implementation
func (db *PostgresDB) Append(ctx context.Context, channelID, senderID int, content, fileURL, fileType string) (*models.Message, error) {
	query := `
		INSERT INTO messages (channel_id, sender_id, content, file_url, file_type, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NOW())
		RETURNING id, created_at`

	msg := &models.Message{
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
		FileURL:   fileURL,
		FileType:  fileType,
	}
	err := db.pool.QueryRow(ctx, query, channelID, senderID, content, fileURL, fileType).Scan(
		&msg.ID, &msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return msg, nil
}

func (db *PostgresDB) GetMessageByID(ctx context.Context, messageID int64) (*models.Message, error) {
	query := `
		SELECT m.id, m.channel_id, m.sender_id, u.name,
		       COALESCE(m.content, ''), COALESCE(m.file_url, ''), COALESCE(m.file_type, ''),
		       m.created_at
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`

	msg := &models.Message{}
	err := db.pool.QueryRow(ctx, query, messageID).Scan(
		&msg.ID, &msg.ChannelID, &msg.SenderID, &msg.SenderName,
		&msg.Content, &msg.FileURL, &msg.FileType, &msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: message %d", chat.ErrNotFound, messageID)
		}
		return nil, err
	}

	return msg, nil
}

func (db *PostgresDB) ListByChannel(ctx context.Context, channelID int, sinceID int64, limit int) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.channel_id, m.sender_id, u.name,
		       COALESCE(m.content, ''), COALESCE(m.file_url, ''), COALESCE(m.file_type, ''),
		       m.created_at,
		       ARRAY(SELECT mr.user_id FROM message_reads mr WHERE mr.message_id = m.id ORDER BY mr.user_id)
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.channel_id = $1 AND m.id > $2
		ORDER BY m.id ASC
		LIMIT $3`

	rows, err := db.pool.Query(ctx, query, channelID, sinceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		if err := rows.Scan(
			&msg.ID, &msg.ChannelID, &msg.SenderID, &msg.SenderName,
			&msg.Content, &msg.FileURL, &msg.FileType, &msg.CreatedAt, &msg.ReadBy,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (db *PostgresDB) MarkRead(ctx context.Context, messageID int64, userID int) error {
	var exists bool
	err := db.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM messages WHERE id = $1)`, messageID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: message %d", chat.ErrNotFound, messageID)
	}

	query := `
		INSERT INTO message_reads (message_id, user_id, read_at) VALUES ($1, $2, NOW())
		ON CONFLICT (message_id, user_id) DO NOTHING`

	_, err = db.pool.Exec(ctx, query, messageID, userID)
	return err
}

// File Repository Implementation
func (db *PostgresDB) CreateFile(ctx context.Context, file *models.File) (int64, error) {
	query := `
		INSERT INTO files (channel_id, sender_id, stored_name, original_name, mime_type, file_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id`

	var id int64
	err := db.pool.QueryRow(ctx, query,
		file.ChannelID, file.SenderID, file.StoredName, file.OriginalName,
		file.MimeType, file.FileType, file.SizeBytes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create file record: %w", err)
	}

	file.ID = id
	return id, nil
}

func (db *PostgresDB) GetFileByID(ctx context.Context, fileID int64) (*models.File, error) {
	query := `
		SELECT id, channel_id, sender_id, stored_name, original_name, mime_type, file_type, size_bytes, created_at
		FROM files WHERE id = $1`

	file := &models.File{}
	err := db.pool.QueryRow(ctx, query, fileID).Scan(
		&file.ID, &file.ChannelID, &file.SenderID, &file.StoredName, &file.OriginalName,
		&file.MimeType, &file.FileType, &file.SizeBytes, &file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: file %d", chat.ErrNotFound, fileID)
		}
		return nil, err
	}

	return file, nil
}

func (db *PostgresDB) DeleteFile(ctx context.Context, fileID int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, fileID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: file %d", chat.ErrNotFound, fileID)
	}
	return nil
}
