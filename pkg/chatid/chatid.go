package chatid

import "strings"

// Separator joins the two participant ids. Identity provider uids never contain it.
const Separator = "_"

// Derive returns the direct chat id for a pair of users. The result does not
// depend on argument order.
func Derive(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + Separator + b
}

// Participants splits a direct chat id back into its two user ids.
func Participants(chatId string) (string, string, bool) {
	a, b, ok := strings.Cut(chatId, Separator)
	if !ok || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}
