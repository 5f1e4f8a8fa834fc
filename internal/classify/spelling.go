package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/teamverse/internal/types"
)

// SpellingPair maps a British spelling to its American equivalent.
type SpellingPair struct {
	UK string
	US string
}

// SpellingPairs is the fixed localization table, applied in this order.
var SpellingPairs = []SpellingPair{
	{"colour", "color"},
	{"favour", "favor"},
	{"honour", "honor"},
	{"labour", "labor"},
	{"neighbour", "neighbor"},
	{"organisation", "organization"},
	{"recognise", "recognize"},
	{"realise", "realize"},
	{"analyse", "analyze"},
	{"centre", "center"},
	{"metre", "meter"},
	{"defence", "defense"},
	{"licence", "license"},
	{"programme", "program"},
	{"behaviour", "behavior"},
	{"travelling", "traveling"},
	{"modelling", "modeling"},
}

// spellingRule matches either variant of a pair. The longer variant is tried
// first so "programme" is never read as "program" plus a suffix.
type spellingRule struct {
	pair    SpellingPair
	pattern *regexp.Regexp
}

var spellingRules = compileSpellingRules(SpellingPairs)

func compileSpellingRules(pairs []SpellingPair) []spellingRule {
	rules := make([]spellingRule, len(pairs))
	for i, p := range pairs {
		long, short := p.UK, p.US
		if len(short) > len(long) {
			long, short = short, long
		}
		rules[i] = spellingRule{
			pair:    p,
			pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(long) + `|` + regexp.QuoteMeta(short)),
		}
	}
	return rules
}

// LocalizeSpelling rewrites text to the spelling convention of the audience.
// US rewrites British spellings, UK rewrites American spellings and GLOBAL
// leaves text unchanged. The case pattern of each replaced word is kept.
func LocalizeSpelling(text string, audience types.Audience) string {
	if audience != types.AudienceUK && audience != types.AudienceUS {
		return text
	}
	for _, rule := range spellingRules {
		target := rule.pair.US
		if audience == types.AudienceUK {
			target = rule.pair.UK
		}
		text = rule.pattern.ReplaceAllStringFunc(text, func(match string) string {
			if strings.EqualFold(match, target) {
				return match
			}
			return matchCase(target, match)
		})
	}
	return text
}

// matchCase shapes replacement after original: ALL CAPS, Capitalized, or lowercase.
func matchCase(replacement, original string) string {
	if isAllUpper(original) {
		return strings.ToUpper(replacement)
	}
	if first, _ := utf8.DecodeRuneInString(original); unicode.IsUpper(first) {
		// Casers carry state, so one is built per call.
		return cases.Title(language.English).String(strings.ToLower(replacement))
	}
	return strings.ToLower(replacement)
}

func isAllUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}
