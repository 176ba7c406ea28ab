package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donatetrack/donatetrack/internal/notification/domain"
)

// memNotificationRepo 内存信箱仓储
type memNotificationRepo struct {
	items  []*domain.Notification
	nextID uint
}

func (r *memNotificationRepo) Save(ctx context.Context, n *domain.Notification) error {
	r.nextID++
	n.ID = r.nextID
	r.items = append(r.items, n)
	return nil
}

func (r *memNotificationRepo) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*domain.Notification, int64, error) {
	var out []*domain.Notification
	for _, n := range r.items {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, recipientID string, id uint) (bool, error) {
	for _, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *memNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) error {
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var n int64
	for _, item := range r.items {
		if item.RecipientID == recipientID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func TestNotificationService_Mailbox(t *testing.T) {
	ctx := context.Background()
	repo := &memNotificationRepo{}
	svc := NewNotificationService(repo, nil)

	require.NoError(t, svc.Notify(ctx, &domain.Notification{
		RecipientID: "USR-N1",
		Type:        domain.TypeDonationReceived,
		Title:       "New donation received",
	}))
	require.NoError(t, svc.Notify(ctx, &domain.Notification{
		RecipientID: "USR-N1",
		Type:        domain.TypeProofUploaded,
		Title:       "New spending proof",
	}))
	require.NoError(t, svc.Notify(ctx, &domain.Notification{
		RecipientID: "USR-other",
		Type:        domain.TypeDonationReceived,
		Title:       "New donation received",
	}))

	result, err := svc.ListMy(ctx, "USR-N1", false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, int64(2), result.Unread)

	// 只能读自己的通知
	err = svc.MarkRead(ctx, "USR-other", result.Notifications[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)

	require.NoError(t, svc.MarkRead(ctx, "USR-N1", result.Notifications[0].ID))
	result, err = svc.ListMy(ctx, "USR-N1", true, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, int64(1), result.Unread)

	require.NoError(t, svc.MarkAllRead(ctx, "USR-N1"))
	result, err = svc.ListMy(ctx, "USR-N1", true, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, result.Unread)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "₹5000", FormatAmount("5000"))
	assert.Equal(t, "₹128.50", FormatAmount("128.50"))
}
