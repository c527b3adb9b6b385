package ingest

// classify.go decides which of the three known record shapes a sheet's
// header row matches. The matching is deliberately loose: headers are
// reduced to letter-only tokens and compared by bidirectional substring so
// that partial, plural, or prefixed variants still count.

import "strings"

// Field-token vocabularies for the three schemas. A sheet matches a schema
// when at least matchThreshold of its tokens find a header.
var (
	employeeTokens = []string{"email", "firstname", "lastname", "department", "position"}
	trainingTokens = []string{"employeeemail", "coursetitle", "assigneddate", "duedate"}
	qmsTokens      = []string{"title", "category", "plannedstartdate", "plannedenddate", "responsiblepersonemail"}
)

const matchThreshold = 3

// Classify returns the record type whose vocabulary the headers satisfy.
// Schemas are checked in a fixed order (employees, then training, then QMS)
// so a header set that clears two thresholds always resolves to the
// earlier-checked type. Returns TypeUnknown when no threshold is met.
func Classify(headers []string) RecordType {
	normalized := make([]string, 0, len(headers))
	for _, h := range headers {
		if tok := normalizeHeaderToken(h); tok != "" {
			normalized = append(normalized, tok)
		}
	}

	if matchCount(normalized, employeeTokens) >= matchThreshold {
		return TypeEmployees
	}
	if matchCount(normalized, trainingTokens) >= matchThreshold {
		return TypeTrainingAssignments
	}
	if matchCount(normalized, qmsTokens) >= matchThreshold {
		return TypeQMSUpdates
	}
	return TypeUnknown
}

// matchCount counts vocabulary tokens that have at least one matching
// header. A header matches a token when either contains the other.
func matchCount(headers, tokens []string) int {
	count := 0
	for _, tok := range tokens {
		for _, h := range headers {
			if strings.Contains(h, tok) || strings.Contains(tok, h) {
				count++
				break
			}
		}
	}
	return count
}
