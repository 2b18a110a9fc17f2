package classifier

import (
	"regexp"
	"strings"
	"sync"

	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"go.uber.org/zap"
)

const (
	keywordWeight = 2
	patternWeight = 3
	domainWeight  = 4

	// confidenceScale is the score at which confidence saturates at 1.
	confidenceScale = 10.0

	DefaultUncategorized = "uncategorized"
)

type Classifier interface {
	Classify(email models.Email, rules []models.CategoryRule) models.ClassificationResult
	ClassifyMany(emails []models.Email, rules []models.CategoryRule) []models.ClassificationResult
}

// RuleClassifier scores emails against keyword, pattern and sender-domain
// rules plus a fixed set of heuristic boosts. It holds no per-call state and
// is safe for concurrent use.
type RuleClassifier struct {
	uncategorized string
	logger        *zap.Logger
	metrics       *Metrics

	patterns sync.Map // pattern source -> *regexp.Regexp (nil when invalid)
}

func New(logger *zap.Logger, metrics *Metrics, uncategorized string) *RuleClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if uncategorized == "" {
		uncategorized = DefaultUncategorized
	}
	return &RuleClassifier{
		uncategorized: uncategorized,
		logger:        logger,
		metrics:       metrics,
	}
}

// Classify returns the best-fit active category for email. Ties at the
// maximum score go to the category declared first in rules.
func (c *RuleClassifier) Classify(email models.Email, rules []models.CategoryRule) models.ClassificationResult {
	content := strings.ToLower(email.Subject + " " + email.Body + " " + email.Snippet)
	sender := strings.ToLower(email.From)

	active := make([]models.CategoryRule, 0, len(rules))
	scores := make(map[string]int, len(rules))
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if _, dup := scores[rule.Name]; dup {
			continue
		}
		active = append(active, rule)
		scores[rule.Name] = 0
	}

	for _, rule := range active {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(content, strings.ToLower(keyword)) {
				scores[rule.Name] += keywordWeight
			}
		}
		for _, pattern := range rule.Patterns {
			if re := c.compile(pattern); re != nil && re.MatchString(content) {
				scores[rule.Name] += patternWeight
			}
		}
		for _, domain := range rule.Domains {
			if domain != "" && strings.Contains(sender, strings.ToLower(domain)) {
				scores[rule.Name] += domainWeight
			}
		}
	}

	applyHeuristics(content, scores)

	best, maxScore := "", 0
	for _, rule := range active {
		if s := scores[rule.Name]; s > maxScore {
			best, maxScore = rule.Name, s
		}
	}
	if maxScore == 0 {
		return models.ClassificationResult{
			Category:   c.uncategorized,
			Confidence: 0,
			Scores:     scores,
		}
	}

	confidence := float64(maxScore) / confidenceScale
	if confidence > 1 {
		confidence = 1
	}
	return models.ClassificationResult{
		Category:   best,
		Confidence: confidence,
		Scores:     scores,
	}
}

// ClassifyMany classifies each email independently, preserving input order.
func (c *RuleClassifier) ClassifyMany(emails []models.Email, rules []models.CategoryRule) []models.ClassificationResult {
	results := make([]models.ClassificationResult, len(emails))
	summary := make(map[string]int)
	for i, email := range emails {
		results[i] = c.Classify(email, rules)
		summary[results[i].Category]++
	}

	c.metrics.observe(summary)
	c.logger.Info("Classified emails",
		zap.Int("count", len(emails)),
		zap.Any("summary", summary))

	return results
}

func (c *RuleClassifier) compile(pattern string) *regexp.Regexp {
	if cached, ok := c.patterns.Load(pattern); ok {
		return cached.(*regexp.Regexp)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		c.logger.Warn("Skipping invalid category pattern",
			zap.String("pattern", pattern),
			zap.Error(err))
		re = nil
	}
	c.patterns.Store(pattern, re)
	return re
}
