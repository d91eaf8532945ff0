package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	mw "github.com/lorrc/helpdesk-portal/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-portal/internal/auth"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/mocks"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

type testEnv struct {
	router     stdhttp.Handler
	tokens     *auth.TokenManager
	auth       *mocks.MockAuthService
	authz      *mocks.MockAuthorizationService
	org        *mocks.MockOrganizationService
	tickets    *mocks.MockTicketService
	comments   *mocks.MockCommentService
	events     *mocks.MockEventService
	inventory  *mocks.MockInventoryService
	reports    *mocks.MockReportService
	attachment *mocks.MockAttachmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		tokens:     auth.NewTokenManager("test-secret-key-that-is-long-enough", time.Hour),
		auth:       mocks.NewMockAuthService(),
		authz:      mocks.NewMockAuthorizationService(),
		org:        mocks.NewMockOrganizationService(),
		tickets:    mocks.NewMockTicketService(),
		comments:   mocks.NewMockCommentService(),
		events:     mocks.NewMockEventService(),
		inventory:  mocks.NewMockInventoryService(),
		reports:    mocks.NewMockReportService(),
		attachment: mocks.NewMockAttachmentService(),
	}

	eh := NewErrorHandler(logger)
	commentHandler := NewCommentHandler(env.comments, eh, logger)
	env.router = NewRouter(RouterConfig{
		Tokens:         env.tokens,
		AllowedOrigins: []string{"http://localhost:5173"},
		Logger:         logger,
	}, Handlers{
		Auth:       NewAuthHandler(env.auth, env.tokens, mw.NewRateLimitByKey(0.01, 1), eh, logger),
		Me:         NewMeHandler(env.auth, env.authz, eh, logger),
		Org:        NewOrgHandler(env.org, eh, logger),
		Ticket:     NewTicketHandler(env.tickets, env.comments, env.events, commentHandler, eh, logger),
		Attachment: NewAttachmentHandler(env.attachment, eh, logger),
		Inventory:  NewInventoryHandler(env.inventory, eh, logger),
		Report:     NewReportHandler(env.reports, eh, logger),
		Health:     NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), "test"),
	})

	t.Cleanup(func() {
		env.tickets.AssertExpectations(t)
		env.comments.AssertExpectations(t)
		env.events.AssertExpectations(t)
		env.reports.AssertExpectations(t)
		env.inventory.AssertExpectations(t)
		env.auth.AssertExpectations(t)
	})
	return env
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func (e *testEnv) tokenFor(t *testing.T, role domain.Role) (uuid.UUID, string) {
	t.Helper()
	deptID := uuid.New()
	user := &domain.User{ID: uuid.New(), Role: role}
	if role != domain.RoleSuperAdmin {
		user.DepartmentID = &deptID
	}
	token, err := e.tokens.GenerateToken(user)
	require.NoError(t, err)
	return user.ID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func sampleTicket(id int64, status domain.TicketStatus) *domain.Ticket {
	return &domain.Ticket{
		ID:             id,
		Code:           "TKT-20260101-0001",
		Title:          "Printer jammed",
		Status:         status,
		ToDepartmentID: uuid.New(),
		Requester:      domain.UserInfo{ID: uuid.New(), FullName: "Ann Employee", Email: "ann@example.com"},
		CreatedAt:      time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, stdhttp.MethodGet, "/api/v1/tickets", "", nil)

	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	assert.False(t, decodeError(t, rec).Success)
}

func TestListTickets_PaginatesWithLookahead(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.tokenFor(t, domain.RoleEmployee)

	status := domain.StatusPending
	env.tickets.On("ListTickets", mock.Anything, ports.ListTicketsParams{
		ViewerID: userID,
		Status:   &status,
		Limit:    3,
		Offset:   0,
	}).Return([]*domain.Ticket{
		sampleTicket(3, domain.StatusPending),
		sampleTicket(2, domain.StatusPending),
		sampleTicket(1, domain.StatusPending),
	}, nil)

	rec := env.do(t, stdhttp.MethodGet, "/api/v1/tickets?status=pending&limit=2", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	var resp struct {
		Success    bool               `json:"success"`
		Data       []TicketDTO        `json:"data"`
		Pagination PaginationMetadata `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	assert.True(t, resp.Pagination.HasMore)
	assert.Equal(t, int64(3), resp.Data[0].ID)
}

func TestListTickets_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.tokenFor(t, domain.RoleEmployee)

	rec := env.do(t, stdhttp.MethodGet, "/api/v1/tickets?status=closed", token, nil)

	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Contains(t, resp.Fields, "status")
}

func TestCreateTicket(t *testing.T) {
	t.Run("validation errors use json field names", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.tokenFor(t, domain.RoleEmployee)

		rec := env.do(t, stdhttp.MethodPost, "/api/v1/tickets", token, map[string]any{
			"description":    "no title",
			"toDepartmentId": "not-a-uuid",
		})

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		resp := decodeError(t, rec)
		assert.Contains(t, resp.Fields, "title")
		assert.Contains(t, resp.Fields, "toDepartmentId")
	})

	t.Run("creates ticket with location", func(t *testing.T) {
		env := newTestEnv(t)
		userID, token := env.tokenFor(t, domain.RoleEmployee)
		deptID := uuid.New()
		buildingID := uuid.New()

		env.tickets.On("CreateTicket", mock.Anything, mock.MatchedBy(func(p ports.CreateTicketParams) bool {
			return p.ActorID == userID &&
				p.ToDepartmentID == deptID &&
				p.Priority == domain.PriorityHigh &&
				p.Location != nil && p.Location.BuildingID == buildingID && p.Location.Floor == 2
		})).Return(sampleTicket(7, domain.StatusPending), nil)

		rec := env.do(t, stdhttp.MethodPost, "/api/v1/tickets", token, map[string]any{
			"title":          "Switch down",
			"priority":       "high",
			"toDepartmentId": deptID.String(),
			"location":       map[string]any{"buildingId": buildingID.String(), "floor": 2},
		})

		require.Equal(t, stdhttp.StatusCreated, rec.Code)
		var resp struct {
			Data TicketDTO `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, int64(7), resp.Data.ID)
		assert.Equal(t, "pending", resp.Data.Status)
	})
}

func TestTicketActions_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		method     string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{
			name:       "claim of a claimed ticket is a gate denial",
			path:       "/claim",
			method:     "Claim",
			err:        &domain.DenialError{Action: domain.ActionClaim, Reason: domain.ReasonAlreadyClaimed},
			wantStatus: stdhttp.StatusForbidden,
			wantCode:   "FORBIDDEN",
			wantReason: "AlreadyClaimed",
		},
		{
			name:       "resolve by a non-assignee",
			path:       "/resolve",
			method:     "Resolve",
			err:        &domain.DenialError{Action: domain.ActionChangeStatus, Reason: domain.ReasonNotAssigned},
			wantStatus: stdhttp.StatusForbidden,
			wantCode:   "FORBIDDEN",
			wantReason: "NotAssigned",
		},
		{
			name:       "unclaim outside in_progress",
			path:       "/unclaim",
			method:     "Unclaim",
			err:        apperrors.ErrInvalidStatusTransition,
			wantStatus: stdhttp.StatusConflict,
			wantCode:   "INVALID_STATUS_TRANSITION",
		},
		{
			name:       "missing ticket",
			path:       "/claim",
			method:     "Claim",
			err:        apperrors.ErrTicketNotFound,
			wantStatus: stdhttp.StatusNotFound,
			wantCode:   "TICKET_NOT_FOUND",
		},
		{
			name:       "unexpected failure",
			path:       "/resolve",
			method:     "Resolve",
			err:        errors.New("connection reset"),
			wantStatus: stdhttp.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			userID, token := env.tokenFor(t, domain.RoleDepartmentAdmin)

			env.tickets.On(tt.method, mock.Anything, ports.TicketActionParams{TicketID: 42, ActorID: userID}).
				Return(nil, tt.err)

			rec := env.do(t, stdhttp.MethodPost, "/api/v1/tickets/42"+tt.path, token, nil)

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantReason, resp.Reason)
		})
	}
}

func TestClaimTicket_Success(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.tokenFor(t, domain.RoleDepartmentAdmin)

	claimed := sampleTicket(42, domain.StatusInProgress)
	claimed.AssignedTo = &userID
	env.tickets.On("Claim", mock.Anything, ports.TicketActionParams{TicketID: 42, ActorID: userID}).
		Return(claimed, nil)

	rec := env.do(t, stdhttp.MethodPost, "/api/v1/tickets/42/claim", token, nil)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	var resp struct {
		Data TicketDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "in_progress", resp.Data.Status)
	require.NotNil(t, resp.Data.AssignedTo)
	assert.Equal(t, userID.String(), *resp.Data.AssignedTo)
}

func TestTicketIDMustBePositive(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.tokenFor(t, domain.RoleEmployee)

	rec := env.do(t, stdhttp.MethodGet, "/api/v1/tickets/abc", token, nil)

	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	t.Run("status change", func(t *testing.T) {
		env := newTestEnv(t)
		userID, token := env.tokenFor(t, domain.RoleDepartmentAdmin)

		env.tickets.On("UpdateStatus", mock.Anything, ports.UpdateStatusParams{
			TicketID: 5,
			Status:   domain.StatusResolved,
			ActorID:  userID,
		}).Return(sampleTicket(5, domain.StatusResolved), nil)

		rec := env.do(t, stdhttp.MethodPatch, "/api/v1/tickets/5/status", token, map[string]string{"status": "resolved"})

		assert.Equal(t, stdhttp.StatusOK, rec.Code)
	})

	t.Run("comment without status", func(t *testing.T) {
		env := newTestEnv(t)
		userID, token := env.tokenFor(t, domain.RoleEmployee)

		env.comments.On("CreateComment", mock.Anything, ports.CreateCommentParams{
			TicketID: 5,
			ActorID:  userID,
			Body:     "Still broken",
		}).Return(&domain.Comment{ID: 9, TicketID: 5, AuthorID: userID, Body: "Still broken", CreatedAt: time.Now()}, nil)

		rec := env.do(t, stdhttp.MethodPatch, "/api/v1/tickets/5/status", token, map[string]string{"comment": "Still broken"})

		assert.Equal(t, stdhttp.StatusCreated, rec.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.tokenFor(t, domain.RoleEmployee)

		rec := env.do(t, stdhttp.MethodPatch, "/api/v1/tickets/5/status", token, map[string]string{})

		require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeError(t, rec).Fields, "status")
	})

	t.Run("unknown status", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.tokenFor(t, domain.RoleDepartmentAdmin)

		rec := env.do(t, stdhttp.MethodPatch, "/api/v1/tickets/5/status", token, map[string]string{"status": "closed"})

		assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	})
}

func TestRevokeTicket_PassesReason(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.tokenFor(t, domain.RoleEmployee)

	env.tickets.On("Revoke", mock.Anything, ports.RevokeTicketParams{
		TicketID: 3,
		ActorID:  userID,
		Reason:   "Fixed it myself",
	}).Return(sampleTicket(3, domain.StatusRevoked), nil)

	rec := env.do(t, stdhttp.MethodPost, "/api/v1/tickets/3/revoke", token, map[string]string{"reason": "Fixed it myself"})

	assert.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestListTicketEvents(t *testing.T) {
	t.Run("full page returns a cursor", func(t *testing.T) {
		env := newTestEnv(t)
		userID, token := env.tokenFor(t, domain.RoleEmployee)

		env.events.On("ListTicketEvents", mock.Anything, ports.ListTicketEventsParams{
			TicketID: 8,
			ViewerID: userID,
			AfterID:  10,
			Limit:    2,
		}).Return([]*domain.Event{
			{ID: 11, Version: domain.EventSchemaVersion, Type: domain.EventStatusUpdate, TicketID: 8, Payload: json.RawMessage(`{}`)},
			{ID: 12, Version: domain.EventSchemaVersion, Type: domain.EventNewComment, TicketID: 8, Payload: json.RawMessage(`{}`)},
		}, nil)

		rec := env.do(t, stdhttp.MethodGet, "/api/v1/tickets/8/events?after=10&limit=2", token, nil)
		require.Equal(t, stdhttp.StatusOK, rec.Code)

		var resp struct {
			Data struct {
				Events     []domain.Event `json:"events"`
				NextCursor *int64         `json:"nextCursor"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Len(t, resp.Data.Events, 2)
		require.NotNil(t, resp.Data.NextCursor)
		assert.Equal(t, int64(12), *resp.Data.NextCursor)
	})

	t.Run("limit above maximum", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.tokenFor(t, domain.RoleEmployee)

		rec := env.do(t, stdhttp.MethodGet, "/api/v1/tickets/8/events?limit=500", token, nil)

		assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	})
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.tokenFor(t, domain.RoleEmployee)

	env.comments.On("GetCommentsForTicket", mock.Anything, ports.GetCommentsParams{TicketID: 4, ActorID: userID}).
		Return([]*domain.Comment{}, nil)
	env.comments.On("CreateComment", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrTicketRevoked)

	rec := env.do(t, stdhttp.MethodGet, "/api/v1/tickets/4/comments", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())

	rec = env.do(t, stdhttp.MethodPost, "/api/v1/tickets/4/comments", token, map[string]string{"body": "hello"})
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)
	assert.Equal(t, "TICKET_REVOKED", decodeError(t, rec).Code)
}

func TestReports(t *testing.T) {
	t.Run("employees are rejected at the router", func(t *testing.T) {
		env := newTestEnv(t)
		_, token := env.tokenFor(t, domain.RoleEmployee)

		rec := env.do(t, stdhttp.MethodGet, "/api/v1/reports/tickets", token, nil)

		assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
	})

	t.Run("report summary", func(t *testing.T) {
		env := newTestEnv(t)
		userID, token := env.tokenFor(t, domain.RoleSuperAdmin)

		env.reports.On("GetTicketReport", mock.Anything, userID, 7).Return(&domain.TicketReport{
			Days:         7,
			StatusCounts: []domain.StatusCount{{Status: domain.StatusPending, Count: 4}},
			Volume:       []domain.VolumePoint{{Day: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), CreatedCount: 4}},
			MTTRHours:    1.5,
		}, nil)

		rec := env.do(t, stdhttp.MethodGet, "/api/v1/reports/tickets?days=7", token, nil)
		require.Equal(t, stdhttp.StatusOK, rec.Code)

		var resp struct {
			Data TicketReportDTO `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, 7, resp.Data.Days)
		assert.Equal(t, "2026-03-02", resp.Data.Volume[0].Day)
		assert.Nil(t, resp.Data.DepartmentID)
	})

	t.Run("csv export", func(t *testing.T) {
		env := newTestEnv(t)
		userID, token := env.tokenFor(t, domain.RoleDepartmentAdmin)

		ticket := sampleTicket(1, domain.StatusResolved)
		ticket.Title = "Projector, room 4"
		env.reports.On("ExportTickets", mock.Anything, userID, (*domain.TicketStatus)(nil)).
			Return([]*domain.Ticket{ticket}, nil)

		rec := env.do(t, stdhttp.MethodGet, "/api/v1/reports/tickets.csv", token, nil)
		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

		records, err := csv.NewReader(rec.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, exportHeader, records[0])
		assert.Equal(t, "Projector, room 4", records[1][1])
		assert.Equal(t, "resolved", records[1][2])
	})
}

func TestAssets(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.tokenFor(t, domain.RoleDepartmentAdmin)
	assetID := uuid.New()

	env.inventory.On("UpdateAssetStatus", mock.Anything, userID, assetID, domain.AssetInRepair).
		Return(&domain.Asset{ID: assetID, Name: "Laptop", Tag: "LT-1", Status: domain.AssetInRepair, CreatedAt: time.Now()}, nil)

	rec := env.do(t, stdhttp.MethodPatch, "/api/v1/assets/"+assetID.String()+"/status", token, map[string]string{"status": "in_repair"})
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = env.do(t, stdhttp.MethodPatch, "/api/v1/assets/"+assetID.String()+"/status", token, map[string]string{"status": "lost"})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
}

func TestLogin(t *testing.T) {
	t.Run("first login requires an otp exchange", func(t *testing.T) {
		env := newTestEnv(t)
		user := &domain.User{ID: uuid.New(), Email: "new@example.com", Role: domain.RoleEmployee, IsFirstLogin: true}
		env.auth.On("Login", mock.Anything, "new@example.com", "Temp1234").
			Return(&ports.LoginResult{User: user, RequiresPasswordChange: true}, nil)

		rec := env.do(t, stdhttp.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "new@example.com", "password": "Temp1234",
		})

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		var resp struct {
			Data FirstLoginResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Data.RequiresPasswordChange)
	})

	t.Run("session token is valid", func(t *testing.T) {
		env := newTestEnv(t)
		user := &domain.User{ID: uuid.New(), Email: "ann@example.com", Role: domain.RoleEmployee, IsActive: true}
		env.auth.On("Login", mock.Anything, "ann@example.com", "Secret123").
			Return(&ports.LoginResult{User: user}, nil)

		rec := env.do(t, stdhttp.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ann@example.com", "password": "Secret123",
		})

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		var resp struct {
			Data SessionResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		claims, err := env.tokens.ValidateToken(resp.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, int64(3600), resp.Data.ExpiresIn)
	})

	t.Run("bad credentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.On("Login", mock.Anything, "ann@example.com", "wrong").
			Return(nil, apperrors.ErrInvalidCredentials)

		rec := env.do(t, stdhttp.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": "ann@example.com", "password": "wrong",
		})

		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, rec).Code)
	})
}

func TestResendOTP_ThrottledPerEmail(t *testing.T) {
	env := newTestEnv(t)
	env.auth.On("ResendOTP", mock.Anything, "new@example.com").Return(nil).Once()

	body := map[string]string{"email": "new@example.com"}
	rec := env.do(t, stdhttp.MethodPost, "/api/v1/auth/resend-otp", "", body)
	require.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = env.do(t, stdhttp.MethodPost, "/api/v1/auth/resend-otp", "", map[string]string{"email": "NEW@example.com"})
	assert.Equal(t, stdhttp.StatusTooManyRequests, rec.Code)
}

func TestAttachmentDownload(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.tokenFor(t, domain.RoleEmployee)

	modTime := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	env.attachment.On("Open", mock.Anything, userID, "report.txt").Return(ports.Attachment{
		Name:        "report.txt",
		ContentType: "text/plain; charset=utf-8",
		Size:        5,
		ModTime:     modTime,
		Body:        nopSeekCloser{bytes.NewReader([]byte("hello"))},
	}, nil)
	env.attachment.On("Open", mock.Anything, userID, "missing.txt").
		Return(ports.Attachment{}, apperrors.ErrAttachmentNotFound)

	rec := env.do(t, stdhttp.MethodGet, "/api/v1/attachments/report.txt", token, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = env.do(t, stdhttp.MethodGet, "/api/v1/attachments/missing.txt", token, nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, stdhttp.MethodGet, "/health/live", "", nil)
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	h := NewHealthHandler(pingerFunc(func(context.Context) error { return nil }), "1.0.0").
		WithChecker("redis", pingerFunc(func(context.Context) error { return errors.New("connection refused") }))

	rec = httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(stdhttp.MethodGet, "/health/ready", nil))

	require.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "healthy", resp.Checks["database"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Message)
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://portal.example.com", "*.campus.edu"}

	assert.True(t, originAllowed("portal.example.com", allowed))
	assert.True(t, originAllowed("it.campus.edu", allowed))
	assert.True(t, originAllowed("campus.edu", allowed))
	assert.False(t, originAllowed("evil.com", allowed))
	assert.False(t, originAllowed("portal.example.com.evil.com", allowed))
}
