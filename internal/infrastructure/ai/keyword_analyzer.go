package ai

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/jhoicas/climatiza-api/internal/application/dto"
	"github.com/jhoicas/climatiza-api/internal/application/ports"
	"github.com/jhoicas/climatiza-api/internal/domain/entity"
	"github.com/jhoicas/climatiza-api/pkg/textnorm"
)

var _ ports.TextAnalyzer = (*KeywordAnalyzer)(nil)

//go:embed rules.yaml
var defaultRules []byte

type ruleSet struct {
	Default struct {
		Category    string   `yaml:"category"`
		Priority    string   `yaml:"priority"`
		Suggestions []string `yaml:"suggestions"`
	} `yaml:"default"`
	Rules []struct {
		Category    string   `yaml:"category"`
		Priority    string   `yaml:"priority"`
		Keywords    []string `yaml:"keywords"`
		Suggestions []string `yaml:"suggestions"`
	} `yaml:"rules"`
	UrgentKeywords []string `yaml:"urgent_keywords"`
}

type compiledRule struct {
	category    string
	priority    string
	patterns    []*regexp.Regexp
	suggestions []string
}

// KeywordAnalyzer clasifica textos de averías con reglas de expresiones regulares.
type KeywordAnalyzer struct {
	defCategory    string
	defPriority    string
	defSuggestions []string
	rules          []compiledRule
	urgent         []*regexp.Regexp
}

// NewKeywordAnalyzer carga el conjunto de reglas embebido.
func NewKeywordAnalyzer() (*KeywordAnalyzer, error) {
	return LoadKeywordAnalyzer(defaultRules)
}

// LoadKeywordAnalyzer compila un conjunto de reglas en YAML.
func LoadKeywordAnalyzer(data []byte) (*KeywordAnalyzer, error) {
	var rs ruleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("analyzer: leer reglas: %w", err)
	}
	a := &KeywordAnalyzer{
		defCategory:    rs.Default.Category,
		defPriority:    rs.Default.Priority,
		defSuggestions: rs.Default.Suggestions,
	}
	if a.defPriority == "" {
		a.defPriority = entity.PriorityNormal
	}
	for _, r := range rs.Rules {
		if !entity.ValidPriority(r.Priority) {
			return nil, fmt.Errorf("analyzer: prioridad %q inválida en %s", r.Priority, r.Category)
		}
		cr := compiledRule{category: r.Category, priority: r.Priority, suggestions: r.Suggestions}
		for _, kw := range r.Keywords {
			re, err := regexp.Compile(kw)
			if err != nil {
				return nil, fmt.Errorf("analyzer: patrón %q: %w", kw, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		a.rules = append(a.rules, cr)
	}
	for _, kw := range rs.UrgentKeywords {
		re, err := regexp.Compile(kw)
		if err != nil {
			return nil, fmt.Errorf("analyzer: patrón %q: %w", kw, err)
		}
		a.urgent = append(a.urgent, re)
	}
	return a, nil
}

var priorityRank = map[string]int{
	entity.PriorityLow:    0,
	entity.PriorityNormal: 1,
	entity.PriorityHigh:   2,
	entity.PriorityUrgent: 3,
}

// Analyze devuelve la categoría con más coincidencias (empate: la primera regla),
// la prioridad más alta entre las reglas que coinciden y sus sugerencias.
func (a *KeywordAnalyzer) Analyze(text string) dto.AnalysisResult {
	norm := textnorm.Normalize(text)
	res := dto.AnalysisResult{
		Category: a.defCategory,
		Priority: a.defPriority,
		Keywords: []string{},
		Source:   "keywords",
	}

	best, bestHits := -1, 0
	seenSuggestion := map[string]bool{}
	for i, r := range a.rules {
		hits := 0
		for _, re := range r.patterns {
			if m := re.FindString(norm); m != "" {
				hits++
				res.Keywords = appendUnique(res.Keywords, m)
			}
		}
		if hits == 0 {
			continue
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
		if priorityRank[r.priority] > priorityRank[res.Priority] {
			res.Priority = r.priority
		}
		for _, s := range r.suggestions {
			if !seenSuggestion[s] {
				seenSuggestion[s] = true
				res.Suggestions = append(res.Suggestions, s)
			}
		}
	}
	if best >= 0 {
		res.Category = a.rules[best].category
	} else {
		res.Suggestions = append(res.Suggestions, a.defSuggestions...)
	}
	for _, re := range a.urgent {
		if m := re.FindString(norm); m != "" {
			res.Priority = entity.PriorityUrgent
			res.Keywords = appendUnique(res.Keywords, m)
		}
	}
	return res
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
