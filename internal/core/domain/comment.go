package domain

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

const (
	MaxCommentBodyLength    = 5000
	MaxAttachmentNameLength = 255
)

// AuthorRole distinguishes admin replies from requester follow-ups.
type AuthorRole string

const (
	AuthorAdmin     AuthorRole = "admin"
	AuthorRequester AuthorRole = "requester"
)

// Comment is one entry in a ticket's conversation.
type Comment struct {
	ID         int64
	TicketID   int64
	AuthorID   uuid.UUID
	AuthorName string
	AuthorRole AuthorRole
	Body       string
	Attachment string
	CreatedAt  time.Time
}

// CommentParams holds parameters for creating a new comment
type CommentParams struct {
	TicketID   int64
	AuthorID   uuid.UUID
	AuthorName string
	AuthorRole AuthorRole
	Body       string
	Attachment string
}

// Validate validates comment creation parameters. A comment may carry only
// an attachment, but never neither.
func (p *CommentParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.TicketID <= 0 {
		errs.Add("ticketId", "Ticket ID is required")
	}
	if p.AuthorID == uuid.Nil {
		errs.Add("authorId", "Author ID is required")
	}
	if p.AuthorRole != AuthorAdmin && p.AuthorRole != AuthorRequester {
		errs.Add("authorRole", "Author role must be admin or requester")
	}

	body := strings.TrimSpace(p.Body)
	if body == "" && p.Attachment == "" {
		errs.Add("body", "Comment body is required")
	} else if len(body) > MaxCommentBodyLength {
		errs.Add("body", "Comment must be 5000 characters or less")
	}

	if p.Attachment != "" && !IsSafeAttachmentName(p.Attachment) {
		errs.Add("attachment", "Invalid attachment name")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewComment creates a validated comment.
func NewComment(params CommentParams) (*Comment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Comment{
		TicketID:   params.TicketID,
		AuthorID:   params.AuthorID,
		AuthorName: params.AuthorName,
		AuthorRole: params.AuthorRole,
		Body:       strings.TrimSpace(params.Body),
		Attachment: params.Attachment,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// IsSafeAttachmentName accepts bare file names only, so stored references
// can never escape the attachments directory.
func IsSafeAttachmentName(name string) bool {
	if name == "" || len(name) > MaxAttachmentNameLength {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return false
	}
	return path.Base(name) == name
}
