package google

// Scopes are the Gmail OAuth scopes requested during authorization.
//
// The set is fixed: reading, sending, modifying (labels, trash) and
// composing drafts cover every tool the server registers. Requesting the
// full set up front means a credential record never needs re-consent when
// the user moves from read-only to write tools.
var Scopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.compose",
}
