package conversation

const (
	defaultTitle = "Nova Conversa"
	errorMessage = "Desculpe, ocorreu um erro ao processar sua mensagem. Por favor, tente novamente."
	brokenFlow   = "Desculpe, perdi o andamento do cadastro. Vamos recomeçar: diga o que você gostaria de fazer."
	cancelled    = "Tudo bem, cancelei a operação em andamento. Posso ajudar com mais alguma coisa?"
)

var responsePools = map[Intent][]string{
	IntentGreeting: {
		"Olá! Sou o assistente virtual. Posso criar orçamentos, cadastrar serviços e clientes. Como posso ajudar?",
		"Oi! Tudo bem? Estou aqui para ajudar com orçamentos, serviços e clientes.",
		"Olá, seja bem-vindo! O que você gostaria de fazer hoje?",
	},
	IntentHelp: {
		"Posso ajudar com:\n• Criar orçamento (\"criar orçamento\")\n• Cadastrar serviço (\"cadastrar serviço\")\n• Cadastrar cliente (\"cadastrar cliente\")\nDurante um cadastro, envie \"cancelar\" para desistir.",
		"Estas são as coisas que sei fazer:\n1. Criar um novo orçamento\n2. Cadastrar um serviço no catálogo\n3. Cadastrar um cliente\nÉ só me dizer qual delas você quer.",
	},
	IntentGeneralInquiry: {
		"Não tenho certeza se entendi. Posso criar orçamentos, cadastrar serviços ou clientes. Qual deles você precisa?",
		"Hmm, ainda não sei responder isso. Experimente pedir \"criar orçamento\" ou \"cadastrar cliente\".",
		"Desculpe, não entendi bem. Digite \"ajuda\" para ver o que posso fazer.",
	},
}

var sessionTitles = map[Intent]string{
	IntentCreateQuotation: "Criação de Orçamento",
	IntentRegisterService: "Cadastro de Serviço",
	IntentRegisterClient:  "Cadastro de Cliente",
	IntentHelp:            "Ajuda",
	IntentGeneralInquiry:  "Consulta Geral",
}

var suggestedActions = []string{"Criar orçamento", "Cadastrar serviço", "Cadastrar cliente"}
