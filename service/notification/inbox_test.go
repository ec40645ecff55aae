package notificationsvc

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"libraryrental/model"
	"libraryrental/repository/memory"
	"libraryrental/service/svcerr"
)

func seedUser(t *testing.T, store *memory.Store) uuid.UUID {
	t.Helper()
	u := &model.User{Email: uuid.NewString() + "@example.com", Role: model.RoleUser}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u.ID
}

func TestInbox(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uid, other := seedUser(t, store), seedUser(t, store)

	for i := 0; i < 25; i++ {
		require.NoError(t, store.Notifications().Insert(ctx, &model.Notification{UserID: uid, Title: "t", Type: model.NotificationGeneric}))
	}
	require.NoError(t, store.Notifications().Insert(ctx, &model.Notification{UserID: other, Title: "t"}))

	in := NewInbox(store.Notifications())

	p, err := in.List(ctx, uid, 0, 0, false)
	require.NoError(t, err)
	require.Equal(t, 1, p.Page)
	require.Equal(t, DefaultPageSize, p.Limit)
	require.Len(t, p.Items, 20)
	require.EqualValues(t, 25, p.Total)
	require.EqualValues(t, 2, p.TotalPages)
	require.EqualValues(t, 25, p.UnreadCount)

	p, err = in.List(ctx, uid, 2, 20, false)
	require.NoError(t, err)
	require.Len(t, p.Items, 5)

	p, err = in.List(ctx, uid, 1, 500, false)
	require.NoError(t, err)
	require.Equal(t, MaxPageSize, p.Limit)
	require.Len(t, p.Items, 25)

	first := p.Items[0]
	n, err := in.MarkRead(ctx, uid, first.ID)
	require.NoError(t, err)
	require.NotNil(t, n.ReadAt)

	again, err := in.MarkRead(ctx, uid, first.ID)
	require.NoError(t, err)
	require.Equal(t, *n.ReadAt, *again.ReadAt)

	_, err = in.MarkRead(ctx, other, first.ID)
	require.Equal(t, svcerr.NotFound, svcerr.Code(err))

	p, err = in.List(ctx, uid, 1, 50, true)
	require.NoError(t, err)
	require.EqualValues(t, 24, p.Total)
	require.EqualValues(t, 24, p.UnreadCount)

	marked, err := in.MarkAllRead(ctx, uid)
	require.NoError(t, err)
	require.EqualValues(t, 24, marked)

	p, err = in.List(ctx, uid, 1, 50, true)
	require.NoError(t, err)
	require.Empty(t, p.Items)
	require.Zero(t, p.UnreadCount)

	p, err = in.List(ctx, other, 1, 10, false)
	require.NoError(t, err)
	require.EqualValues(t, 1, p.UnreadCount)
}

func TestInbox_Create(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uid := seedUser(t, store)
	in := NewInbox(store.Notifications())

	n, err := in.Create(ctx, model.CreateNotificationReq{
		UserID:  uid,
		Title:   "  Library closed  ",
		Message: "Closed on Monday.",
		Data:    []byte(`{"day":"monday"}`),
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, n.ID)
	require.Equal(t, "Library closed", n.Title)
	require.Equal(t, model.NotificationGeneric, n.Type)

	p, err := in.List(ctx, uid, 1, 10, true)
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	require.JSONEq(t, `{"day":"monday"}`, string(p.Items[0].Data))

	cases := []struct {
		name string
		req  model.CreateNotificationReq
		code svcerr.ErrCode
	}{
		{"missing title", model.CreateNotificationReq{UserID: uid, Message: "m"}, svcerr.InvalidOperation},
		{"long title", model.CreateNotificationReq{UserID: uid, Title: strings.Repeat("x", MaxTitleLength+1), Message: "m"}, svcerr.InvalidOperation},
		{"bad type", model.CreateNotificationReq{UserID: uid, Title: "t", Message: "m", Type: "SPAM"}, svcerr.InvalidOperation},
		{"bad data", model.CreateNotificationReq{UserID: uid, Title: "t", Message: "m", Data: []byte(`{`)}, svcerr.InvalidOperation},
		{"unknown user", model.CreateNotificationReq{UserID: uuid.New(), Title: "t", Message: "m"}, svcerr.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := in.Create(ctx, tc.req)
			require.Equal(t, tc.code, svcerr.Code(err), err)
		})
	}
}
