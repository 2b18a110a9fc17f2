package classifier

import (
	"regexp"
	"strings"
)

const heuristicBoost = 3

// heuristic adds heuristicBoost to a fixed category name when any of its
// phrases or its pattern is found in the lowercased content. When the
// category is not part of the active rule set the boost is dropped.
type heuristic struct {
	category string
	phrases  []string
	pattern  *regexp.Regexp
}

var heuristics = []heuristic{
	{
		category: "complaint",
		phrases: []string{
			"não funciona", "nao funciona", "insatisfeito", "insatisfeita",
			"péssimo", "pessimo", "problema com", "reclamar", "decepcionado",
			"not working", "disappointed",
		},
	},
	{
		category: "quote",
		phrases: []string{
			"quanto custa", "qual o valor", "qual o preço", "qual o preco",
			"how much",
		},
		pattern: regexp.MustCompile(`r\$\s*\d|\$\s*\d`),
	},
	{
		category: "appointment",
		phrases: []string{
			"agendar", "marcar um horário", "marcar um horario",
			"disponibilidade", "visita técnica", "visita tecnica",
		},
	},
	{
		category: "payment",
		phrases: []string{
			"boleto", "pix", "comprovante", "nota fiscal",
		},
	},
}

func applyHeuristics(content string, scores map[string]int) {
	for _, h := range heuristics {
		if _, ok := scores[h.category]; !ok {
			continue
		}
		if h.matches(content) {
			scores[h.category] += heuristicBoost
		}
	}
}

func (h heuristic) matches(content string) bool {
	for _, phrase := range h.phrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return h.pattern != nil && h.pattern.MatchString(content)
}
