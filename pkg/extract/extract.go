// Package extract pulls structured values out of the free-form text the
// Kite MCP server embeds in tool results. The server returns prose, not
// fields, so extraction is marker-based: each function looks for a known
// literal and slices around it. Absence of a marker is a normal outcome,
// reported through the boolean return, never an error.
package extract

import "strings"

// LoginDomain is the literal whose presence identifies a login response.
const LoginDomain = "https://kite.zerodha.com/connect/login"

// urlMarker precedes the login URL when the server labels it.
const urlMarker = "URL: "

// sessionMarker precedes the session id in the post-login callback URL.
const sessionMarker = "session_id="

// LoginURL extracts the Kite login URL from a login tool response. The
// text qualifies only if it contains the login domain literal. When the
// server labels the URL with "URL: " the value runs from the marker to
// the next newline; otherwise the whole text is taken as the URL. The
// result is whitespace-trimmed. Returns false when the text does not
// contain the login domain.
func LoginURL(text string) (string, bool) {
	if !strings.Contains(text, LoginDomain) {
		return "", false
	}
	url := text
	if _, after, found := strings.Cut(text, urlMarker); found {
		url, _, _ = strings.Cut(after, "\n")
	}
	return strings.TrimSpace(url), true
}

// SessionID extracts the session id from a post-login callback URL. The
// value follows the "session_id=" query parameter and runs to the next
// "&" or the end of the string. Returns false when the parameter is
// absent.
func SessionID(callbackURL string) (string, bool) {
	_, after, found := strings.Cut(callbackURL, sessionMarker)
	if !found {
		return "", false
	}
	id, _, _ := strings.Cut(after, "&")
	return id, true
}
