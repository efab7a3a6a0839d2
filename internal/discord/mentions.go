package discord

import (
	"strings"
)

// isSnowflake reports whether s looks like a Discord id.
func isSnowflake(s string) bool {
	if len(s) < 15 || len(s) > 21 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseMention extracts the id from "<" + sigil + id + ">" or a bare id.
// Several sigils may be accepted, e.g. "@!" and "@" for users.
func parseMention(token string, sigils ...string) (string, bool) {
	if isSnowflake(token) {
		return token, true
	}
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return "", false
	}
	inner := token[1 : len(token)-1]
	for _, sigil := range sigils {
		if id, ok := strings.CutPrefix(inner, sigil); ok && isSnowflake(id) {
			return id, true
		}
	}
	return "", false
}

func parseUserMention(token string) (string, bool)    { return parseMention(token, "@!", "@") }
func parseRoleMention(token string) (string, bool)    { return parseMention(token, "@&") }
func parseChannelMention(token string) (string, bool) { return parseMention(token, "#") }

// stripMentionPrefix reports whether content starts with a mention of
// botID and returns that mention as typed.
func stripMentionPrefix(content, botID string) (string, bool) {
	for _, m := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if strings.HasPrefix(content, m) {
			return m, true
		}
	}
	return "", false
}
