package conversation

import "regexp"

type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentCreateQuotation Intent = "create_quotation"
	IntentRegisterService Intent = "register_service"
	IntentRegisterClient  Intent = "register_client"
	IntentHelp            Intent = "help"
	IntentGeneralInquiry  Intent = "general_inquiry"
)

const (
	matchedConfidence = 0.9
	defaultConfidence = 0.5
)

type intentPattern struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// Order matters: the first intent with a matching pattern wins.
var intentPatterns = []intentPattern{
	{
		intent: IntentGreeting,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)^\s*(oi|olá|ola|bom dia|boa tarde|boa noite|hello|hi|hey)([\s!,.?]|$)`),
		},
	},
	{
		intent: IntentCreateQuotation,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(criar|crie|fazer|faça|faca|gerar|novo|nova|quero|preciso)\b.*(orçamento|orcamento|cotação|cotacao)`),
			regexp.MustCompile(`(?i)\b(create|new|make)\b.*\b(quote|quotation)\b`),
		},
	},
	{
		intent: IntentRegisterService,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(cadastrar|cadastre|registrar|adicionar|novo|nova)\b.*(serviço|servico)`),
			regexp.MustCompile(`(?i)\b(register|add|new)\b.*\bservice\b`),
		},
	},
	{
		intent: IntentRegisterClient,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(cadastrar|cadastre|registrar|adicionar|novo|nova)\b.*\bcliente\b`),
			regexp.MustCompile(`(?i)\b(register|add|new)\b.*\b(client|customer)\b`),
		},
	},
	{
		intent: IntentHelp,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(ajuda|socorro|como funciona|comandos|o que (você|voce) (pode|faz))`),
			regexp.MustCompile(`(?i)\b(help|what can you do)\b`),
		},
	},
}

// DetectIntent returns the first intent whose patterns match message, or
// IntentGeneralInquiry with a lower confidence.
func DetectIntent(message string) (Intent, float64) {
	for _, ip := range intentPatterns {
		for _, re := range ip.patterns {
			if re.MatchString(message) {
				return ip.intent, matchedConfidence
			}
		}
	}
	return IntentGeneralInquiry, defaultConfidence
}

var cancelPattern = regexp.MustCompile(`(?i)^\s*(cancelar|cancela|cancel|sair|parar|desistir)\s*[.!]?\s*$`)

func isCancel(message string) bool {
	return cancelPattern.MatchString(message)
}
