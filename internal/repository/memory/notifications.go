package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/repository"
)

type notificationRepository struct {
	v view
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := copyNotification(*n)
	r.v.write(func(st *state) {
		st.notifications[row.ID] = copyNotification(row)
		st.stamp(row.ID)
	})
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		n  domain.Notification
		ok bool
	)
	r.v.read(func(st *state) { n, ok = st.notifications[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyNotification(n)
	return &out, nil
}

func (r *notificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var exists bool
	r.v.read(func(st *state) { _, exists = st.notifications[n.ID] })
	if !exists {
		return repository.ErrNotFound
	}
	id, isRead, updatedAt := n.ID, n.IsRead, n.UpdatedAt
	r.v.write(func(st *state) {
		current, ok := st.notifications[id]
		if !ok {
			return
		}
		current.IsRead = isRead
		current.UpdatedAt = updatedAt
		st.notifications[id] = current
	})
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, includeRead bool) ([]domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	type ranked struct {
		n   domain.Notification
		seq int64
	}
	var matched []ranked
	r.v.read(func(st *state) {
		for id, n := range st.notifications {
			if n.UserID != userID || (!includeRead && n.IsRead) {
				continue
			}
			matched = append(matched, ranked{n: copyNotification(n), seq: st.seq[id]})
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].n.CreatedAt.Equal(matched[j].n.CreatedAt) {
			return matched[i].n.CreatedAt.After(matched[j].n.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})
	result := make([]domain.Notification, 0, len(matched))
	for _, m := range matched {
		result = append(result, m.n)
	}
	return result, nil
}

func copyNotification(n domain.Notification) domain.Notification {
	n.TicketID = copyPtr(n.TicketID)
	return n
}
