package utils

import "regexp"

var unsafeMarkup = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script\b`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
	regexp.MustCompile(`(?i)javascript\s*:`),
}

// ContainsScriptOrEvent reports whether any value carries a script tag, an
// inline event handler or a javascript: URL.
func ContainsScriptOrEvent(values ...string) bool {
	for _, v := range values {
		for _, re := range unsafeMarkup {
			if re.MatchString(v) {
				return true
			}
		}
	}
	return false
}
