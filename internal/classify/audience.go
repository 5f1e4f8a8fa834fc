// Package classify provides rule-based text analysis: audience detection,
// quote and key-point extraction, and UK/US spelling localization.
//
// All lookup tables are compiled once at package init and never mutated, so
// every function here is safe for concurrent use.
package classify

import (
	"regexp"

	"github.com/jonathan/teamverse/internal/types"
)

// minAudienceScore is the minimum number of distinct indicators needed before
// content is attributed to a single country.
const minAudienceScore = 2

var ukIndicators = compileAll(
	`\bchancellor\b`,
	`\btreasury\b`,
	`\bdowning street\b`,
	`\bnational insurance\b`,
	`\bNHS\b`,
	`\bDWP\b`,
	`\buniversal credit\b`,
	`\bcouncil tax\b`,
	`\bchild benefit\b`,
	`\bHMRC\b`,
	`\bpensions?\s+credit\b`,
	`\bhousing benefit\b`,
	`\bworking tax credit\b`,
	`\bincome support\b`,
	`\bjobseeker'?s? allowance\b`,
	`\battendance allowance\b`,
	`\bPIP\b`, // Personal Independence Payment
	`\bESA\b`, // Employment and Support Allowance
	`\bstate pension\b`,
	`\b£\d`,
)

var usIndicators = compileAll(
	`\bIRS\b`,
	`\bcongress\b`,
	`\bsenate\b`,
	`\bwhite house\b`,
	`\bsocial security\b`,
	`\bSNAP\b`,
	`\bEITC\b`,
	`\bearned income tax credit\b`,
	`\bchild tax credit\b`,
	`\bCTC\b`,
	`\bmedicaid\b`,
	`\bmedicare\b`,
	`\bsection 8\b`,
	`\bSSI\b`,  // Supplemental Security Income
	`\bTANF\b`, // Temporary Assistance for Needy Families
	`\bWIC\b`,  // Women, Infants, and Children
	`\b401\(k\)`,
	`\bForm 1040\b`,
	`\b\$\d`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return compiled
}

// score counts how many patterns match text at least once.
func score(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// Scores returns the number of UK and US indicators present in text.
func Scores(text string) (uk, us int) {
	return score(text, ukIndicators), score(text, usIndicators)
}

// DetectAudience classifies text as UK, US or GLOBAL.
//
// A country wins only with a strict lead and at least two distinct
// indicators; ties and single-indicator leads resolve to GLOBAL.
func DetectAudience(text string) types.Audience {
	uk, us := Scores(text)
	switch {
	case uk > us && uk >= minAudienceScore:
		return types.AudienceUK
	case us > uk && us >= minAudienceScore:
		return types.AudienceUS
	default:
		return types.AudienceGlobal
	}
}
