package utils

import "strings"

// ChatIDSeparator joins the two participant IDs in a chat key.
const ChatIDSeparator = "_"

// DeriveChatID maps an unordered pair of user IDs to one canonical chat key:
// sort the pair, join with the separator. Both participants resolve to the
// same chat without any lookup or negotiation.
func DeriveChatID(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ChatIDSeparator + b
}

// ChatParticipants returns the sorted pair behind a chat key.
func ChatParticipants(chatID string) (string, string, bool) {
	parts := strings.SplitN(chatID, ChatIDSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
