package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

func TestCommentRepository_CreateList(t *testing.T) {
	ctx := context.Background()
	dept := seedDepartment(t, ctx)
	requester := seedUser(t, ctx, domain.RoleEmployee, dept)
	admin := seedUser(t, ctx, domain.RoleDepartmentAdmin, dept)
	ticket := seedTicket(t, ctx, requester, dept, nil)
	repo := NewCommentRepository(testPool)

	first, err := domain.NewComment(domain.CommentParams{
		TicketID:   ticket.ID,
		AuthorID:   requester.ID,
		AuthorRole: domain.AuthorRequester,
		Body:       "Still smoking",
	})
	require.NoError(t, err)
	created, err := repo.Create(ctx, first)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, requester.FullName, created.AuthorName)

	second, err := domain.NewComment(domain.CommentParams{
		TicketID:   ticket.ID,
		AuthorID:   admin.ID,
		AuthorRole: domain.AuthorAdmin,
		Attachment: "photo.png",
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	comments, err := repo.ListByTicketID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Still smoking", comments[0].Body)
	assert.Equal(t, domain.AuthorAdmin, comments[1].AuthorRole)
	assert.Equal(t, "photo.png", comments[1].Attachment)
}

func TestCommentRepository_UnknownTicket(t *testing.T) {
	ctx := context.Background()
	dept := seedDepartment(t, ctx)
	author := seedUser(t, ctx, domain.RoleEmployee, dept)

	comment := &domain.Comment{
		TicketID:   -1,
		AuthorID:   author.ID,
		AuthorRole: domain.AuthorRequester,
		Body:       "hello",
		CreatedAt:  time.Now().UTC(),
	}
	_, err := NewCommentRepository(testPool).Create(ctx, comment)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}
