package services

import "strings"

const titleWordLimit = 5

// DeriveTitle builds a conversation title from a user message: messages of
// five words or fewer are returned unchanged, longer ones are cut to their
// first five words followed by "...".
func DeriveTitle(message string) string {
	words := strings.Fields(message)
	if len(words) <= titleWordLimit {
		return message
	}
	return strings.Join(words[:titleWordLimit], " ") + "..."
}
