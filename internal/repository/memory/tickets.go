package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/repository"
)

type ticketRepository struct {
	v view
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := copyTicket(*ticket)
	r.v.write(func(st *state) {
		st.tickets[row.ID] = copyTicket(row)
		st.stamp(row.ID)
	})
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var exists bool
	r.v.read(func(st *state) { _, exists = st.tickets[ticket.ID] })
	if !exists {
		return repository.ErrNotFound
	}
	row := copyTicket(*ticket)
	r.v.write(func(st *state) {
		current, ok := st.tickets[row.ID]
		next := copyTicket(row)
		if ok {
			next.RequesterID = current.RequesterID
			next.ReopenDeadline = current.ReopenDeadline
			next.CreatedAt = current.CreatedAt
			next.Title = current.Title
		}
		st.tickets[row.ID] = next
	})
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		ticket domain.Ticket
		ok     bool
	)
	r.v.read(func(st *state) { ticket, ok = st.tickets[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyTicket(ticket)
	return &out, nil
}

func (r *ticketRepository) List(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	type ranked struct {
		ticket domain.Ticket
		seq    int64
	}
	var matched []ranked
	r.v.read(func(st *state) {
		for id, t := range st.tickets {
			if filter.Status != nil && t.Status != *filter.Status {
				continue
			}
			if filter.RequesterID != nil && t.RequesterID != *filter.RequesterID {
				continue
			}
			if filter.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *filter.AssigneeID) {
				continue
			}
			matched = append(matched, ranked{ticket: copyTicket(t), seq: st.seq[id]})
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ticket.CreatedAt.Equal(matched[j].ticket.CreatedAt) {
			return matched[i].ticket.CreatedAt.After(matched[j].ticket.CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	total := int64(len(matched))
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	result := []domain.Ticket{}
	for i := offset; i < len(matched) && i < offset+limit; i++ {
		result = append(result, matched[i].ticket)
	}
	return result, total, nil
}

type historyRepository struct {
	v view
}

func (r *historyRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := *history
	r.v.write(func(st *state) {
		st.history[row.TicketID] = append(st.history[row.TicketID], row)
	})
	return nil
}

// ListByTicket returns newest first; rows appended later win timestamp ties.
func (r *historyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rows []domain.TicketHistory
	r.v.read(func(st *state) {
		rows = append(rows, st.history[ticketID]...)
	})
	result := make([]domain.TicketHistory, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		result = append(result, rows[i])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

type attachmentRepository struct {
	v view
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.TicketAttachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := *attachment
	r.v.write(func(st *state) {
		st.attachments[row.TicketID] = append(st.attachments[row.TicketID], row)
	})
	return nil
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketAttachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := []domain.TicketAttachment{}
	r.v.read(func(st *state) {
		result = append(result, st.attachments[ticketID]...)
	})
	return result, nil
}

type suggestionRepository struct {
	v view
}

func (r *suggestionRepository) Create(ctx context.Context, suggestion *domain.KnowledgeSuggestion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row := *suggestion
	r.v.write(func(st *state) {
		st.suggestions[row.TicketID] = append(st.suggestions[row.TicketID], row)
	})
	return nil
}

func (r *suggestionRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.KnowledgeSuggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := []domain.KnowledgeSuggestion{}
	r.v.read(func(st *state) {
		result = append(result, st.suggestions[ticketID]...)
	})
	return result, nil
}

func copyTicket(t domain.Ticket) domain.Ticket {
	t.AssigneeID = copyPtr(t.AssigneeID)
	t.DueDate = copyPtr(t.DueDate)
	t.ClosedAt = copyPtr(t.ClosedAt)
	t.ReopenDeadline = copyPtr(t.ReopenDeadline)
	return t
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
