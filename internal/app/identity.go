package app

import (
	"errors"
	"net/http"
	"strings"
)

var errNoIdentity = errors.New("identity header missing")

// headerIdentity trusts headers set by an authenticating proxy in front of
// the service.
type headerIdentity struct {
	user    string
	context string
}

func (h headerIdentity) ResolveIdentity(r *http.Request) (string, string, error) {
	userID := strings.TrimSpace(r.Header.Get(h.user))
	if userID == "" {
		return "", "", errNoIdentity
	}
	var contextID string
	if h.context != "" {
		contextID = strings.TrimSpace(r.Header.Get(h.context))
	}
	return userID, contextID, nil
}
