// Package classifier suggests a category, a priority label and related
// knowledge-base articles for free-text ticket input using fixed keyword rules.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const maxRelatedArticles = 3

// Priority labels produced by the rules. They are parsed into domain
// priorities by the ticket service.
const (
	PriorityCritical = "Crítica"
	PriorityHigh     = "Alta"
	PriorityLow      = "Baixa"
	PriorityMedium   = "Média"
)

// Result is the outcome of one analysis.
type Result struct {
	Category          string
	SuggestedPriority string
	RelatedArticleIDs []string
}

// ArticleFinder looks up published knowledge-base articles.
type ArticleFinder interface {
	FindPublishedContaining(ctx context.Context, text string, limit int) ([]string, error)
}

type rule struct {
	terms []string
	value string
}

// Order matters: the first rule with a matching term wins.
var categoryRules = []rule{
	{terms: []string{"rede", "wi-fi", "vpn"}, value: "Network"},
	{terms: []string{"acesso", "login", "senha"}, value: "Access"},
	{terms: []string{"impressora", "hardware", "equipamento"}, value: "Hardware"},
	{terms: []string{"sistema", "erro", "bug"}, value: "Software"},
}

// "urgent" also catches "urgente".
var priorityRules = []rule{
	{terms: []string{"parado", "impossível trabalhar", "urgent"}, value: PriorityCritical},
	{terms: []string{"intermitente", "lento"}, value: PriorityHigh},
	{terms: []string{"dúvida", "consulta"}, value: PriorityLow},
}

// RuleBased is the keyword-rule classifier.
type RuleBased struct {
	articles ArticleFinder
}

// NewRuleBased constructs the classifier. articles may be nil, in which case
// no related articles are suggested.
func NewRuleBased(articles ArticleFinder) *RuleBased {
	return &RuleBased{articles: articles}
}

// Analyze classifies title, description and keywords. The related-article
// lookup matches the whole lowercased text as one substring, not word by word.
func (c *RuleBased) Analyze(ctx context.Context, title, description string, keywords []string) (Result, error) {
	text := BuildText(title, description, keywords)
	result := Result{
		Category:          Categorize(text),
		SuggestedPriority: InferPriority(text),
		RelatedArticleIDs: []string{},
	}
	if c.articles == nil {
		return result, nil
	}
	ids, err := c.articles.FindPublishedContaining(ctx, text, maxRelatedArticles)
	if err != nil {
		return Result{}, fmt.Errorf("find related articles: %w", err)
	}
	if len(ids) > maxRelatedArticles {
		ids = ids[:maxRelatedArticles]
	}
	result.RelatedArticleIDs = ids
	return result, nil
}

// BuildText joins the inputs with single spaces and lowercases them.
func BuildText(title, description string, keywords []string) string {
	joined := title + " " + description + " " + strings.Join(keywords, " ")
	return strings.ToLower(norm.NFC.String(joined))
}

// Categorize applies the category rules to already-lowercased text.
func Categorize(text string) string {
	return firstMatch(categoryRules, text, "Other")
}

// InferPriority applies the priority rules to already-lowercased text.
func InferPriority(text string) string {
	return firstMatch(priorityRules, text, PriorityMedium)
}

func firstMatch(rules []rule, text, fallback string) string {
	for _, r := range rules {
		for _, term := range r.terms {
			if strings.Contains(text, term) {
				return r.value
			}
		}
	}
	return fallback
}
