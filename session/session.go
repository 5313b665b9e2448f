package session

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	usagePB "github.com/instill-ai/protogen-go/vdp/usage/v1alpha"
)

// contains checks if a string is present in a slice
func contains(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}

var (
	DefaultSessionEdition = "local-ce:dev"
	ValidSessionEditions  = []string{"local-ce", DefaultSessionEdition}
)

// NormSessionEdition normalises a session edition input.
// If it's not valid, then `DefaultSessionEdition` is returned, or else the original edition input is returned.
func NormSessionEdition(edition string) string {

	if valid := contains(ValidSessionEditions, edition); valid {
		return edition
	} else {
		return DefaultSessionEdition
	}
}

// Session is a new type of usagePB.session
type Session usagePB.Session

// Hash converts the session data into a base64 encoded checksum, which is
// the per-report part of the stamp resource
func (s *Session) Hash() (string, error) {
	buf := new(bytes.Buffer)
	err := json.NewEncoder(buf).Encode(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(buf.Bytes())
	return base64.URLEncoding.EncodeToString(sum[:]), nil
}

// Resource is the stamp resource of a report: the session token followed by
// the session hash
func (s *Session) Resource(token string) (string, error) {
	base, err := s.Hash()
	if err != nil {
		return "", err
	}
	return token + base, nil
}

// Expired checks whether the session report is older than window at now
func (s *Session) Expired(now time.Time, window time.Duration) bool {
	if s.ReportTime == nil {
		return true
	}
	return now.Sub(s.ReportTime.AsTime()) > window
}
