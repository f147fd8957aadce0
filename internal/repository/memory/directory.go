package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/support-ticket-service/internal/domain"
	"github.com/spec-kit/support-ticket-service/internal/repository"
)

type userRepository struct {
	v view
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		user domain.User
		ok   bool
	)
	r.v.read(func(st *state) { user, ok = st.users[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

type articleRepository struct {
	v view
}

func (r *articleRepository) FindPublishedContaining(ctx context.Context, text string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var matched []domain.KnowledgeBaseArticle
	r.v.read(func(st *state) {
		for _, a := range st.articles {
			if !a.IsPublished {
				continue
			}
			if strings.Contains(strings.ToLower(a.Title), text) ||
				strings.Contains(strings.ToLower(a.Content), text) ||
				strings.Contains(strings.ToLower(a.Keywords), text) {
				matched = append(matched, a)
			}
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	ids := []string{}
	for i := 0; i < len(matched) && (limit <= 0 || i < limit); i++ {
		ids = append(ids, matched[i].ID)
	}
	return ids, nil
}
