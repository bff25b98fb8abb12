// Package engine turns a daily check-in and a pool of pending tasks into a
// realistic task quota, a ranked list bounded by it, and a single next pick.
//
// Everything here is pure: "today" and the current hour are parameters, and
// an *Engine is immutable once built, so it can be shared across goroutines.
package engine

// Engine scores and ranks tasks using a fixed set of tables and a classifier.
type Engine struct {
	tables     Tables
	classifier Classifier
}

// New builds an Engine. A nil classifier selects the keyword classifier.
func New(tables Tables, classifier Classifier) *Engine {
	if classifier == nil {
		classifier = NewKeywordClassifier(DefaultKeywordRules())
	}
	return &Engine{tables: tables, classifier: classifier}
}

// Default returns an Engine with DefaultTables and the keyword classifier.
func Default() *Engine {
	return New(DefaultTables(), nil)
}

// Classify exposes the engine's classifier.
func (e *Engine) Classify(name string) TaskType {
	return e.classifier.Classify(name)
}
