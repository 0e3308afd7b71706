package levenshtein

import "unicode/utf8"

// Ratio returns the edit distance between two strings normalized by
// the length of the longer string, in [0,1]. Identical strings score
// 0; fully distinct strings of equal length score 1. It is used to
// decide whether a token is a partial match for a dictionary key.
func (ctx *Context) Ratio(str1, str2 string) float64 {
	longest := utf8.RuneCountInString(str1)
	if n := utf8.RuneCountInString(str2); n > longest {
		longest = n
	}

	if longest == 0 {
		return 0
	}

	return float64(ctx.Distance(str1, str2)) / float64(longest)
}
