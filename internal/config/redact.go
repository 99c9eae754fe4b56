package config

import (
	"net/url"
	"regexp"
	"strings"
)

var secretPattern = regexp.MustCompile(`(?i)\b(password|api_key|key|token)=[^\s&]+`)

// RedactURL strips the password from a connection URL and masks secret
// query parameters. Unparseable input is fully redacted.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	if parsed.RawQuery != "" {
		q := parsed.Query()
		for k := range q {
			switch strings.ToLower(k) {
			case "password", "key", "token", "api_key":
				q.Set(k, "redacted")
			}
		}
		parsed.RawQuery = q.Encode()
	}

	return parsed.String()
}

// SanitizeError renders err with every secret replaced by its redacted form.
// Inline key=value secrets are masked as well.
func SanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := RedactURL(secret)
		if redacted == "" || redacted == secret {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return secretPattern.ReplaceAllString(msg, "${1}=redacted")
}
