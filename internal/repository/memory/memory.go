// Package memory provides an in-process implementation of the repository
// layer. It backs the service tests and the API when no POSTGRES_DSN is set.
package memory

import (
	"context"
	"sync"

	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/repository"
)

type state struct {
	tickets       map[string]domain.Ticket
	history       map[string][]domain.TicketHistory
	attachments   map[string][]domain.TicketAttachment
	suggestions   map[string][]domain.KnowledgeSuggestion
	notifications map[string]domain.Notification
	users         map[string]domain.User
	articles      map[string]domain.KnowledgeBaseArticle

	// insertion order for tickets and notifications
	seq  map[string]int64
	next int64
}

func newState() *state {
	return &state{
		tickets:       make(map[string]domain.Ticket),
		history:       make(map[string][]domain.TicketHistory),
		attachments:   make(map[string][]domain.TicketAttachment),
		suggestions:   make(map[string][]domain.KnowledgeSuggestion),
		notifications: make(map[string]domain.Notification),
		users:         make(map[string]domain.User),
		articles:      make(map[string]domain.KnowledgeBaseArticle),
		seq:           make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	for k, v := range s.history {
		c.history[k] = append([]domain.TicketHistory(nil), v...)
	}
	for k, v := range s.attachments {
		c.attachments[k] = append([]domain.TicketAttachment(nil), v...)
	}
	for k, v := range s.suggestions {
		c.suggestions[k] = append([]domain.KnowledgeSuggestion(nil), v...)
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.articles {
		c.articles[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	c.next = s.next
	return c
}

func (s *state) stamp(id string) {
	if _, ok := s.seq[id]; ok {
		return
	}
	s.next++
	s.seq[id] = s.next
}

// view is what a repository reads and writes through. Transaction views
// record every write in journal so it can be replayed onto the store.
type view struct {
	mu      *sync.RWMutex
	st      *state
	journal *[]func(*state)
}

func (v view) read(fn func(*state)) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	fn(v.st)
}

func (v view) write(op func(*state)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	op(v.st)
	if v.journal != nil {
		*v.journal = append(*v.journal, op)
	}
}

func (v view) repositories() repository.Repositories {
	return repository.Repositories{
		Tickets:       &ticketRepository{v: v},
		History:       &historyRepository{v: v},
		Attachments:   &attachmentRepository{v: v},
		Suggestions:   &suggestionRepository{v: v},
		Notifications: &notificationRepository{v: v},
		Users:         &userRepository{v: v},
		Articles:      &articleRepository{v: v},
	}
}

// Store is a concurrency-safe in-memory database.
type Store struct {
	mu sync.RWMutex
	st *state

	hookMu    sync.Mutex
	commitErr error
	commits   int
}

var _ repository.UnitOfWork = &Store{}

// New returns an empty store.
func New() *Store {
	return &Store{st: newState()}
}

// Repositories returns repositories that read and write the store directly.
func (s *Store) Repositories() repository.Repositories {
	return view{mu: &s.mu, st: s.st}.repositories()
}

// Do stages fn's writes against a snapshot and applies them all at once.
// Concurrent units of work are not serialized: the last commit wins per row.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	var journal []func(*state)
	txView := view{mu: &sync.RWMutex{}, st: snapshot, journal: &journal}
	if err := fn(ctx, txView.repositories()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.hookMu.Lock()
	failure := s.commitErr
	s.commitErr = nil
	s.hookMu.Unlock()
	if failure != nil {
		return failure
	}

	s.mu.Lock()
	for _, op := range journal {
		op(s.st)
	}
	s.mu.Unlock()

	s.hookMu.Lock()
	s.commits++
	s.hookMu.Unlock()
	return nil
}

// FailNextCommit makes the next Do return err instead of committing.
func (s *Store) FailNextCommit(err error) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.commitErr = err
}

// Commits returns the number of units of work applied so far.
func (s *Store) Commits() int {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	return s.commits
}

// PutUser seeds an account.
func (s *Store) PutUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[user.ID] = user
}

// PutArticle seeds a knowledge-base article.
func (s *Store) PutArticle(article domain.KnowledgeBaseArticle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.articles[article.ID] = article
}
