package engine

import "strings"

// Classifier assigns a task type to a free-text task name.
type Classifier interface {
	Classify(name string) TaskType
}

// KeywordRule maps any of its keywords to Type.
type KeywordRule struct {
	Type     TaskType `yaml:"type"`
	Keywords []string `yaml:"keywords"`
}

// KeywordClassifier matches lowercase substrings; the first matching rule wins.
type KeywordClassifier struct {
	rules []KeywordRule
}

// DefaultKeywordRules returns the stock rules in priority order.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Type: TypeCommunication, Keywords: []string{"call", "email", "meeting", "message", "contact", "speak"}},
		{Type: TypeCreative, Keywords: []string{"write", "design", "create", "draft", "brainstorm"}},
		{Type: TypeDetail, Keywords: []string{"review", "check", "edit", "proofread", "verify"}},
		{Type: TypeAdmin, Keywords: []string{"organise", "file", "sort", "clean", "tidy"}},
		{Type: TypePhysical, Keywords: []string{"walk", "exercise", "stretch", "move"}},
	}
}

// NewKeywordClassifier lowercases and trims the rule keywords.
func NewKeywordClassifier(rules []KeywordRule) *KeywordClassifier {
	normalized := make([]KeywordRule, len(rules))
	for i, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				kws = append(kws, kw)
			}
		}
		normalized[i] = KeywordRule{Type: r.Type, Keywords: kws}
	}
	return &KeywordClassifier{rules: normalized}
}

// Classify returns the type of the first rule with a keyword in name, or TypeGeneral.
func (c *KeywordClassifier) Classify(name string) TaskType {
	lower := strings.ToLower(name)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Type
			}
		}
	}
	return TypeGeneral
}
