package flow

import (
	"context"
	"strings"

	"github.com/quotana/quotana/internal/model"
)

// Oracle suggests a wizard action for free-form user text. Implementations
// are best effort; the state machine decides whether to accept. An oracle
// error falls back to the keyword router, never aborts the wizard.
type Oracle interface {
	Suggest(ctx context.Context, text string) (Action, string, error)
}

// KeywordRouter is the concrete fallback oracle. It matches accent-folded
// keywords against a fixed vocabulary, checking the most specific intents
// first so "orçamento dos produtos" routes to budget, not products.
type KeywordRouter struct{}

// NewKeywordRouter creates the fallback oracle.
func NewKeywordRouter() *KeywordRouter {
	return &KeywordRouter{}
}

var accentFolder = strings.NewReplacer(
	"á", "a", "à", "a", "ã", "a", "â", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "õ", "o", "ô", "o",
	"ú", "u",
	"ç", "c",
)

func fold(text string) string {
	return accentFolder.Replace(strings.ToLower(text))
}

var intentVocabulary = []struct {
	action   Action
	reason   string
	keywords []string
}{
	{
		action:   ActionQuit,
		reason:   "encerramento solicitado",
		keywords: []string{"sair", "encerrar", "cancelar", "quit", "exit"},
	},
	{
		action:   ActionHelp,
		reason:   "pedido de ajuda",
		keywords: []string{"ajuda", "help", "como funciona", "o que voce faz", "comandos"},
	},
	{
		action:   ActionConfirmBudget,
		reason:   "pedido de orçamento ou cotação",
		keywords: []string{"orcamento", "cotacao", "cotar", "fechar pedido", "confirmar compra"},
	},
	{
		action:   ActionSelectRanking,
		reason:   "comparação de fornecedores por produto",
		keywords: []string{"rankear", "comparar", "melhor preco", "quem vende"},
	},
	{
		action:   ActionSelectProducts,
		reason:   "seleção de produtos",
		keywords: []string{"produto", "produtos", "item", "itens", "lista de compras"},
	},
	{
		action:   ActionSelectSuppliers,
		reason:   "seleção de fornecedores",
		keywords: []string{"fornecedor", "fornecedores", "classificar", "melhores", "avaliar"},
	},
}

// Suggest maps user text to the first intent whose vocabulary matches.
// Unmatched text defaults to supplier selection, the wizard entry point.
func (r *KeywordRouter) Suggest(_ context.Context, text string) (Action, string, error) {
	folded := fold(text)
	for _, intent := range intentVocabulary {
		for _, kw := range intent.keywords {
			if strings.Contains(folded, kw) {
				return intent.action, intent.reason, nil
			}
		}
	}
	return ActionSelectSuppliers, "intenção não reconhecida, iniciando pela seleção de fornecedores", nil
}

// ParseLabelFilter resolves a user-facing filter word to a classification
// label. Besides the labels themselves it accepts common synonyms, e.g.
// "melhores" for the top label. The second return is false for unknown
// filters.
func ParseLabelFilter(filter string) (string, bool) {
	switch fold(strings.TrimSpace(filter)) {
	case "melhores", "otimo", "otimos", "recomendado", "recomendados", "5":
		return model.LabelGreat, true
	case "bom", "bons", "4":
		return model.LabelGood, true
	case "medio", "medios", "regular", "3":
		return model.LabelAverage, true
	case "ruim", "ruins", "piores", "nao recomendado", "1", "2":
		return model.LabelBad, true
	case "":
		return "", false
	}
	for _, label := range []string{model.LabelBad, model.LabelAverage, model.LabelGood, model.LabelGreat} {
		if fold(filter) == fold(label) {
			return label, true
		}
	}
	return "", false
}
