package mailer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/quotana/quotana/internal/model"
)

// quotationTemplate is the plain-text body of a quotation request. Prices
// shown are reference values from purchase history; the supplier is asked
// to quote against them.
var quotationTemplate = template.Must(template.New("quotation").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("R$ %.2f", v) },
}).Parse(`Prezado fornecedor {{.SupplierName}},

Solicitamos cotação para os itens abaixo, com base no histórico de compras:

{{range .Items}}  - Produto {{.ProductCode}} | preço de referência {{money .BasePrice}} | recorrência {{.Recurrence}}
{{end}}
Valor total de referência: {{money .TotalValue}}
{{if .Phone}}
Telefone de contato em cadastro: {{.Phone}}
{{end}}
Favor responder este e-mail com preços e prazos de entrega atualizados.

Atenciosamente,
Equipe de Compras
`))

// RenderQuotation renders the quotation request body for one budget.
func RenderQuotation(budget model.Budget) (string, error) {
	var b strings.Builder
	if err := quotationTemplate.Execute(&b, budget); err != nil {
		return "", fmt.Errorf("failed to render quotation: %w", err)
	}
	return b.String(), nil
}
