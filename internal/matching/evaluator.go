// Package matching decides whether a publication is relevant to a
// subscriber. Evaluation is pure: same inputs, same result.
package matching

import (
	"fmt"
	"regexp"
	"strings"

	"MuralNotifier/internal/domain"
	"MuralNotifier/internal/normalize"
)

var wordExpr = regexp.MustCompile(`\w+`)

// Evaluate compares one publication against one subscriber's
// preferences and returns the matched-dimension descriptions in
// evaluation order. Keyword, client-name and lawyer-name dimensions
// record at most one entry each. A decision-type filter, once
// specified, must be satisfied: if none of the subscriber's decision
// types fits the publication, the whole result is a non-match even
// when other dimensions hit.
func Evaluate(pub domain.Publication, prefs domain.SubscriberPreferences) domain.MatchResult {
	names := namePool(pub)
	keywords := keywordPool(pub.BodyText)

	var matched []string

	for _, keyword := range prefs.Keywords {
		if _, ok := keywords[normalize.Fold(keyword)]; ok {
			matched = append(matched, fmt.Sprintf("Keyword: %q", keyword))
			break
		}
	}

	if entry, ok := nameMatch("Client Name", prefs.ClientNames, names); ok {
		matched = append(matched, entry)
	}
	if entry, ok := nameMatch("Lawyer Name", prefs.LawyerNames, names); ok {
		matched = append(matched, entry)
	}

	if len(prefs.DecisionTypes) > 0 {
		entry, ok := decisionTypeMatch(prefs.DecisionTypes, pub.DecisionType)
		if !ok {
			// The filter was specified and unmet; it vetoes everything.
			return domain.MatchResult{}
		}
		matched = append(matched, entry)
	}

	return domain.MatchResult{MatchedFields: matched}
}

// namePool collects every non-empty party and lawyer name, folded.
func namePool(pub domain.Publication) []string {
	var names []string
	for _, party := range pub.Parties {
		if party.Name != nil && *party.Name != "" {
			names = append(names, normalize.Fold(*party.Name))
		}
		for _, lawyer := range party.Lawyers {
			if lawyer.Name != nil && *lawyer.Name != "" {
				names = append(names, normalize.Fold(*lawyer.Name))
			}
		}
	}
	return names
}

// keywordPool tokenizes the body text into a folded word set.
func keywordPool(body string) map[string]struct{} {
	words := wordExpr.FindAllString(normalize.Fold(body), -1)
	pool := make(map[string]struct{}, len(words))
	for _, word := range words {
		pool[word] = struct{}{}
	}
	return pool
}

// nameMatch reports the first preference term that is a substring of
// any pooled name.
func nameMatch(tag string, terms, names []string) (string, bool) {
	for _, term := range terms {
		folded := normalize.Fold(term)
		if folded == "" {
			continue
		}
		for _, name := range names {
			if strings.Contains(name, folded) {
				return fmt.Sprintf("%s: %q", tag, term), true
			}
		}
	}
	return "", false
}

// decisionTypeMatch checks the subscriber's decision types against the
// publication's. An absent publication type fails a specified filter.
func decisionTypeMatch(terms []string, decisionType *string) (string, bool) {
	if decisionType == nil || *decisionType == "" {
		return "", false
	}
	folded := normalize.Fold(*decisionType)
	for _, term := range terms {
		if strings.Contains(folded, normalize.Fold(term)) {
			return fmt.Sprintf("Decision Type: %q", strings.ToUpper(normalize.String(term))), true
		}
	}
	return "", false
}
