package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/utils"
)

// CommentRepository handles database operations for comments.
type CommentRepository struct {
	pool *pgxpool.Pool
}

// Ensure implementation matches the interface.
var _ ports.CommentRepository = (*CommentRepository)(nil)

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(pool *pgxpool.Pool) ports.CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentSelect = `
SELECT c.id, c.ticket_id, c.author_id, u.full_name, c.author_role, c.body, c.attachment, c.created_at
FROM comments c
JOIN users u ON u.id = c.author_id`

func scanComment(row pgx.CollectableRow) (*domain.Comment, error) {
	var (
		c          domain.Comment
		role       string
		attachment pgtype.Text
	)
	if err := row.Scan(&c.ID, &c.TicketID, &c.AuthorID, &c.AuthorName, &role, &c.Body, &attachment, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.AuthorRole = domain.AuthorRole(role)
	c.Attachment = utils.FromString(attachment)
	return &c, nil
}

// Create persists a new comment to the database.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	const query = `
WITH inserted AS (
    INSERT INTO comments (ticket_id, author_id, author_role, body, attachment, created_at)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING *
)
SELECT c.id, c.ticket_id, c.author_id, u.full_name, c.author_role, c.body, c.attachment, c.created_at
FROM inserted c
JOIN users u ON u.id = c.author_id`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		string(comment.AuthorRole),
		comment.Body,
		utils.ToString(comment.Attachment),
		comment.CreatedAt,
	)
	var created *domain.Comment
	if err == nil {
		created, err = pgx.CollectExactlyOneRow(rows, scanComment)
	}
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}
	return created, nil
}

// ListByTicketID retrieves all comments for a specific ticket, ordered by creation.
func (r *CommentRepository) ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Comment, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx,
		commentSelect+` WHERE c.ticket_id = $1 ORDER BY c.created_at, c.id`, ticketID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanComment)
}
