package classifier_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/spec-kit/support-ticket-service/internal/classifier"
)

type finderFunc func(ctx context.Context, text string, limit int) ([]string, error)

func (f finderFunc) FindPublishedContaining(ctx context.Context, text string, limit int) ([]string, error) {
	return f(ctx, text, limit)
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{name: "network vpn", text: "vpn caiu", want: "Network"},
		{name: "network wifi", text: "wi-fi sem sinal", want: "Network"},
		{name: "access", text: "esqueci a senha", want: "Access"},
		{name: "hardware", text: "impressora sem toner", want: "Hardware"},
		{name: "software", text: "bug na tela de pedidos", want: "Software"},
		{name: "other", text: "pedido de cadeira nova", want: "Other"},
		{name: "first rule wins", text: "erro de login na vpn", want: "Network"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifier.Categorize(tc.text))
		})
	}
}

func TestInferPriority(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{name: "stopped", text: "faturamento parado", want: classifier.PriorityCritical},
		{name: "cannot work", text: "impossível trabalhar hoje", want: classifier.PriorityCritical},
		{name: "urgente", text: "preciso disso urgente", want: classifier.PriorityCritical},
		{name: "urgent", text: "vpn down, urgent", want: classifier.PriorityCritical},
		{name: "slow", text: "sistema lento", want: classifier.PriorityHigh},
		{name: "question", text: "consulta sobre férias", want: classifier.PriorityLow},
		{name: "default", text: "trocar monitor", want: classifier.PriorityMedium},
		{name: "critical beats low", text: "dúvida: está tudo parado", want: classifier.PriorityCritical},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifier.InferPriority(tc.text))
		})
	}
}

func TestBuildText(t *testing.T) {
	decomposed := norm.NFD.String("Dúvida")
	require.NotEqual(t, "Dúvida", decomposed)

	text := classifier.BuildText(decomposed, "Sobre ACESSO", []string{"Portal", "RH"})
	assert.Equal(t, "dúvida sobre acesso portal rh", text)
}

func TestAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("vpn urgent is critical network", func(t *testing.T) {
		result, err := classifier.NewRuleBased(nil).Analyze(ctx, "VPN down, urgent", "", nil)
		require.NoError(t, err)
		assert.Equal(t, "Network", result.Category)
		assert.Equal(t, classifier.PriorityCritical, result.SuggestedPriority)
		assert.Empty(t, result.RelatedArticleIDs)
	})

	t.Run("question about access is low access", func(t *testing.T) {
		result, err := classifier.NewRuleBased(nil).Analyze(ctx, "Pedido", "dúvida sobre acesso", nil)
		require.NoError(t, err)
		assert.Equal(t, "Access", result.Category)
		assert.Equal(t, classifier.PriorityLow, result.SuggestedPriority)
	})

	t.Run("article lookup receives the whole blob and is capped", func(t *testing.T) {
		var gotText string
		var gotLimit int
		finder := finderFunc(func(_ context.Context, text string, limit int) ([]string, error) {
			gotText, gotLimit = text, limit
			return []string{"a1", "a2", "a3", "a4"}, nil
		})
		result, err := classifier.NewRuleBased(finder).Analyze(ctx, "Impressora", "Sem papel", []string{"Andar 2"})
		require.NoError(t, err)
		assert.Equal(t, "impressora sem papel andar 2", gotText)
		assert.Equal(t, 3, gotLimit)
		assert.Equal(t, []string{"a1", "a2", "a3"}, result.RelatedArticleIDs)
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		boom := errors.New("db down")
		finder := finderFunc(func(context.Context, string, int) ([]string, error) { return nil, boom })
		_, err := classifier.NewRuleBased(finder).Analyze(ctx, "x", "y", nil)
		require.ErrorIs(t, err, boom)
	})
}
