package flow

import (
	"context"
	"testing"

	"github.com/quotana/quotana/internal/model"
)

func TestKeywordRouter_Suggest(t *testing.T) {
	tests := []struct {
		text string
		want Action
	}{
		{text: "quero ver os melhores fornecedores", want: ActionSelectSuppliers},
		{text: "lista de produtos disponíveis", want: ActionSelectProducts},
		{text: "quem vende mais barato?", want: ActionSelectRanking},
		{text: "fazer um orçamento", want: ActionConfirmBudget},
		{text: "fazer um orcamento", want: ActionConfirmBudget},
		{text: "preciso de uma cotação", want: ActionConfirmBudget},
		{text: "orçamento dos produtos", want: ActionConfirmBudget},
		{text: "ajuda", want: ActionHelp},
		{text: "como funciona isso?", want: ActionHelp},
		{text: "sair", want: ActionQuit},
		{text: "bom dia", want: ActionSelectSuppliers},
	}

	router := NewKeywordRouter()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, reason, err := router.Suggest(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Suggest failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Suggest(%q) = %s (%s), want %s", tt.text, got, reason, tt.want)
			}
		})
	}
}

func TestParseLabelFilter(t *testing.T) {
	tests := []struct {
		filter string
		want   string
		ok     bool
	}{
		{filter: "melhores", want: model.LabelGreat, ok: true},
		{filter: "Ótimo", want: model.LabelGreat, ok: true},
		{filter: "bons", want: model.LabelGood, ok: true},
		{filter: "regular", want: model.LabelAverage, ok: true},
		{filter: "piores", want: model.LabelBad, ok: true},
		{filter: "Médio", want: model.LabelAverage, ok: true},
		{filter: model.LabelGreat, want: model.LabelGreat, ok: true},
		{filter: "", ok: false},
		{filter: "inexistente", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseLabelFilter(tt.filter)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLabelFilter(%q) = (%q, %v), want (%q, %v)",
				tt.filter, got, ok, tt.want, tt.ok)
		}
	}
}
