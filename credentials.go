package davgate

import (
	"encoding/base64"
	"strings"
)

// Credentials carries the name/password pair extracted from an
// Authorization header. It lives for the duration of one request and is
// never persisted.
type Credentials struct {
	Name     string
	Password string
}

const basicPrefix = "Basic "

// ParseBasicAuth extracts Basic credentials from an Authorization header
// value. The scheme token is matched case-sensitively; clients sending
// "basic" have never been observed against this gateway and are rejected.
// The decoded payload is split on the first colon, so passwords may contain
// colons and names may not.
//
// Every malformed input (absent header, wrong scheme, bad base64, missing
// colon) yields ok == false. The function has no side effects and never
// fails loudly.
func ParseBasicAuth(header string) (Credentials, bool) {
	if !strings.HasPrefix(header, basicPrefix) {
		return Credentials{}, false
	}

	payload, err := base64.StdEncoding.DecodeString(header[len(basicPrefix):])
	if err != nil {
		return Credentials{}, false
	}

	name, password, found := strings.Cut(string(payload), ":")
	if !found {
		return Credentials{}, false
	}

	return Credentials{Name: name, Password: password}, true
}
