package models

// CategoryRule is a configurable classification category. Keywords and
// domains are matched as case-insensitive substrings, patterns as
// case-insensitive regular expressions.
type CategoryRule struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Patterns []string `json:"patterns"`
	Domains  []string `json:"domains"`
	Color    string   `json:"color"`
	Active   bool     `json:"active"`
}

// ClassificationResult is computed per call and never persisted by the
// classifier itself.
type ClassificationResult struct {
	Category   string         `json:"category"`
	Confidence float64        `json:"confidence"`
	Scores     map[string]int `json:"scores"`
}
