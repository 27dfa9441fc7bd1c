package database

import (
	"net/url"
	"regexp"
)

var passwordKV = regexp.MustCompile(`password=\S+`)

// RedactURL hides the password of a connection string for logging. Both URL
// and key=value forms are handled.
func RedactURL(conn string) string {
	if u, err := url.Parse(conn); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Redacted()
	}
	return passwordKV.ReplaceAllString(conn, "password=xxxxx")
}
