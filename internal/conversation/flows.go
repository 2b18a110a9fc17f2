package conversation

import "github.com/marcelohs402015/app-email-attendant-sub001/internal/models"

type FlowType string

const (
	FlowQuotation FlowType = "quotation"
	FlowService   FlowType = "service"
	FlowClient    FlowType = "client"
)

// Rule tags how a step's answer is validated.
type Rule string

const (
	RuleRequired     Rule = "required"
	RuleEmail        Rule = "email"
	RuleNumber       Rule = "number"
	RuleOptional     Rule = "optional"
	RuleConfirmation Rule = "confirmation"
)

type Step struct {
	Field  string
	Label  string
	Prompt string
	Rule   Rule
}

// Flow is a static, ordered list of steps for one resource type. Adding a
// resource type only requires a new entry in flows.
type Flow struct {
	Type     FlowType
	Resource models.ResourceType
	IDPrefix string
	Intent   Intent
	Noun     string
	LeadIn   string
	Steps    []Step
}

var flows = map[FlowType]*Flow{
	FlowQuotation: {
		Type:     FlowQuotation,
		Resource: models.ResourceQuotation,
		IDPrefix: "QUO-",
		Intent:   IntentCreateQuotation,
		Noun:     "Orçamento",
		LeadIn:   "Vamos criar um novo orçamento! Vou precisar de algumas informações.",
		Steps: []Step{
			{Field: "client_name", Label: "Cliente", Prompt: "Qual é o nome do cliente?", Rule: RuleRequired},
			{Field: "client_email", Label: "E-mail", Prompt: "Qual é o e-mail do cliente?", Rule: RuleEmail},
			{Field: "service_description", Label: "Serviço", Prompt: "Descreva o serviço que será orçado.", Rule: RuleRequired},
			{Field: "estimated_value", Label: "Valor estimado (R$)", Prompt: "Qual é o valor estimado do serviço (em R$)?", Rule: RuleNumber},
			{Field: "notes", Label: "Observações", Prompt: "Alguma observação adicional? (opcional)", Rule: RuleOptional},
			{Field: "confirm", Label: "Confirmação", Prompt: "Confirma a criação do orçamento? (sim/não)", Rule: RuleConfirmation},
		},
	},
	FlowService: {
		Type:     FlowService,
		Resource: models.ResourceService,
		IDPrefix: "SRV-",
		Intent:   IntentRegisterService,
		Noun:     "Serviço",
		LeadIn:   "Ótimo, vamos cadastrar um novo serviço no catálogo.",
		Steps: []Step{
			{Field: "name", Label: "Nome", Prompt: "Qual é o nome do serviço?", Rule: RuleRequired},
			{Field: "category", Label: "Categoria", Prompt: "Em qual categoria ele se encaixa? (ex.: elétrica, hidráulica, pintura)", Rule: RuleRequired},
			{Field: "price", Label: "Preço (R$)", Prompt: "Qual é o preço base (em R$)?", Rule: RuleNumber},
			{Field: "duration_hours", Label: "Duração (horas)", Prompt: "Qual é a duração estimada, em horas?", Rule: RuleNumber},
			{Field: "description", Label: "Descrição", Prompt: "Quer adicionar uma descrição? (opcional)", Rule: RuleOptional},
		},
	},
	FlowClient: {
		Type:     FlowClient,
		Resource: models.ResourceClient,
		IDPrefix: "CLI-",
		Intent:   IntentRegisterClient,
		Noun:     "Cliente",
		LeadIn:   "Certo, vamos cadastrar um novo cliente.",
		Steps: []Step{
			{Field: "name", Label: "Nome", Prompt: "Qual é o nome completo do cliente?", Rule: RuleRequired},
			{Field: "email", Label: "E-mail", Prompt: "Qual é o e-mail do cliente?", Rule: RuleEmail},
			{Field: "phone", Label: "Telefone", Prompt: "Qual é o telefone do cliente?", Rule: RuleRequired},
			{Field: "address", Label: "Endereço", Prompt: "Qual é o endereço? (opcional)", Rule: RuleOptional},
		},
	},
}

// FlowFor returns the step table for t.
func FlowFor(t FlowType) (*Flow, bool) {
	f, ok := flows[t]
	return f, ok
}

func flowForIntent(intent Intent) (*Flow, bool) {
	for _, f := range flows {
		if f.Intent == intent {
			return f, true
		}
	}
	return nil, false
}
