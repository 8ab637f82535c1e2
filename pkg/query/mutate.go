package query

import "strings"

// Insert appends a sort:<value> token to q. The existing tokens are rejoined
// with single spaces, so surrounding and repeated whitespace is dropped.
func Insert(q, value string) string {
	tokens := strings.Fields(q)
	tokens = append(tokens, Marker+value)
	return strings.Join(tokens, " ")
}

// Replace rewrites the value of every sort directive in q. When the old value
// is longer than the new one, the new value is right padded with spaces to
// the old width before the token is trimmed. Stored and bookmarked query
// strings were produced this way and must keep round-tripping.
//
// Every token is followed by a single space in the result, including the
// last. A query without directives is returned unchanged.
func Replace(q, value string) string {
	tokens := strings.Fields(q)
	replaced := false

	for i, tok := range tokens {
		if !strings.Contains(tok, Marker) {
			continue
		}
		cut := strings.Index(tok, ":") + 1
		old := tok[cut:]

		if len(old) > len(value) {
			padded := value + strings.Repeat(" ", len(old)-len(value))
			tokens[i] = strings.TrimSpace(tok[:cut] + padded)
		} else {
			tokens[i] = tok[:cut] + value
		}
		replaced = true
	}

	if !replaced {
		return q
	}

	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok)
		sb.WriteByte(' ')
	}
	return sb.String()
}
