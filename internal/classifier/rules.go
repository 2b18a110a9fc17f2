package classifier

import "github.com/marcelohs402015/app-email-attendant-sub001/internal/models"

// DefaultRules is the built-in rule table used to seed an empty category
// store. The heuristic boosts refer to these names.
func DefaultRules() []models.CategoryRule {
	return []models.CategoryRule{
		{
			Name:     "quote",
			Keywords: []string{"orçamento", "orcamento", "cotação", "cotacao", "preço", "preco", "valor", "quote"},
			Patterns: []string{`quanto custa|orçamento`, `\bestimate\b`},
			Color:    "#2563eb",
			Active:   true,
		},
		{
			Name:     "complaint",
			Keywords: []string{"reclamação", "reclamacao", "problema", "defeito", "insatisfeito", "complaint"},
			Patterns: []string{`não (ficou|está|esta) (bom|certo)`, `serviço mal feito`},
			Color:    "#dc2626",
			Active:   true,
		},
		{
			Name:     "service_request",
			Keywords: []string{"conserto", "reparo", "instalação", "instalacao", "manutenção", "manutencao", "vazamento", "elétrica", "eletrica", "pintura"},
			Patterns: []string{`preciso (de um|de uma|consertar|trocar|instalar)`},
			Color:    "#16a34a",
			Active:   true,
		},
		{
			Name:     "appointment",
			Keywords: []string{"agendamento", "horário", "horario", "visita", "remarcar", "appointment"},
			Patterns: []string{`\b\d{1,2}/\d{1,2}\b`, `\b\d{1,2}(h|:\d{2})\b`},
			Color:    "#9333ea",
			Active:   true,
		},
		{
			Name:     "payment",
			Keywords: []string{"pagamento", "fatura", "recibo", "cobrança", "cobranca", "invoice"},
			Patterns: []string{`pagamento (efetuado|realizado|pendente)`},
			Domains:  []string{"pagseguro", "mercadopago", "paypal"},
			Color:    "#ca8a04",
			Active:   true,
		},
	}
}
