package util

import (
	"net/url"
	"strings"

	urlhelper "github.com/hashicorp/go-getter/helper/url"
)

// RedactedCredentials is the fixed placeholder substituted for credentials
// embedded in URLs. Every URL must pass through RedactURL before it is placed
// into an error message or log line.
const RedactedCredentials = "***"

// RedactURL replaces any credential component embedded in the given URL with a
// fixed placeholder. The operation is idempotent. Strings that do not parse as
// URLs (e.g. scp-style git addresses, which carry no password component) are
// returned unchanged.
func RedactURL(rawURL string) string {
	u, err := urlhelper.Parse(rawURL)
	if err != nil {
		return redactUnparsable(rawURL)
	}

	if u.User == nil {
		return rawURL
	}

	username := u.User.Username()

	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(username, RedactedCredentials)
		return u.String()
	}

	// A bare username is usually an access token, except for ssh-style git
	// addresses where the username is part of the transport, not a secret.
	if username == "git" || u.Scheme == "ssh" || username == RedactedCredentials {
		return rawURL
	}

	u.User = url.User(RedactedCredentials)

	return u.String()
}

// redactUnparsable scrubs the userinfo of a string that looks like a URL with
// a scheme but does not parse. The string still must not leak credentials
// into diagnostics. scp-style addresses (no "://") are left untouched.
func redactUnparsable(raw string) string {
	schemeEnd := strings.Index(raw, "://")
	if schemeEnd == -1 {
		return raw
	}

	rest := raw[schemeEnd+len("://"):]

	at := strings.IndexByte(rest, '@')
	if at == -1 || strings.ContainsAny(rest[:at], "/?#") {
		return raw
	}

	return raw[:schemeEnd+len("://")] + RedactedCredentials + rest[at:]
}
