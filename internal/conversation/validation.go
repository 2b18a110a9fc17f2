package conversation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	affirmativePattern = regexp.MustCompile(`(?i)^\s*(sim|s|yes|y|ok|okay|confirmo|confirmar|confirm|claro|pode)\s*[.!]?\s*$`)
)

func validate(rule Rule, input string) bool {
	trimmed := strings.TrimSpace(input)
	switch rule {
	case RuleOptional:
		return true
	case RuleRequired:
		return trimmed != ""
	case RuleEmail:
		return emailPattern.MatchString(trimmed)
	case RuleNumber:
		return isNumber(trimmed)
	case RuleConfirmation:
		return affirmativePattern.MatchString(trimmed)
	}
	return false
}

// isNumber accepts a comma as the decimal separator.
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validationError(rule Rule) string {
	switch rule {
	case RuleEmail:
		return "❌ E-mail inválido. Informe um endereço no formato nome@dominio.com."
	case RuleNumber:
		return "❌ Valor inválido. Informe apenas números (ex.: 150 ou 150,50)."
	case RuleConfirmation:
		return "❌ Responda \"sim\" para confirmar ou \"cancelar\" para desistir."
	default:
		return "❌ Este campo é obrigatório."
	}
}
