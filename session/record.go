package session

import (
	"fmt"
	"strconv"
	"time"
)

// Hash field names.
const (
	fieldRSID               = "rsid"
	fieldUserID             = "userId"
	fieldHashedRefreshToken = "hashedRefreshToken"
	fieldHashedAccessToken  = "hashedAccessToken"
	fieldIV                 = "iv"
	fieldCreatedAt          = "createdAt"
	fieldExpiresAt          = "expiresAt"
	fieldExpiresIn          = "expiresIn"
	fieldIsRevoked          = "isRevoked"
	fieldRevokedAt          = "revokedAt"
	fieldIsLoggedOut        = "isLoggedOut"
	fieldLoggedOutAt        = "loggedOutAt"
)

// Record is one refresh session.
type Record struct {
	RSID   string
	UserID string
	// HashedRefreshToken is the slow hash of the chain's root fingerprint.
	// Child records carry it forward unchanged.
	HashedRefreshToken string
	// HashedAccessToken is the fingerprint of the access token minted with
	// this record.
	HashedAccessToken string
	// IV is the hex-encoded envelope IV. It never leaves the store.
	IV          string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
	IsRevoked   bool
	RevokedAt   time.Time
	IsLoggedOut bool
	LoggedOutAt time.Time

	// TTL is the remaining store lifetime reported by Get. It is not persisted.
	TTL time.Duration
}

// Complete reports whether the record carries every field a refresh,
// archive or logout must check: both fingerprints and the envelope IV.
func (r *Record) Complete() bool {
	return r.HashedRefreshToken != "" && r.HashedAccessToken != "" && r.IV != ""
}

// Patch is a monotonic flag update: non-zero timestamps set the matching
// flag and its timestamp. Flags are never cleared.
type Patch struct {
	RevokedAt   time.Time
	LoggedOutAt time.Time
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.RevokedAt.IsZero() && p.LoggedOutAt.IsZero()
}

func (p Patch) fields() map[string]string {
	out := make(map[string]string, 4)
	if !p.RevokedAt.IsZero() {
		out[fieldIsRevoked] = "true"
		out[fieldRevokedAt] = formatUnix(p.RevokedAt)
	}
	if !p.LoggedOutAt.IsZero() {
		out[fieldIsLoggedOut] = "true"
		out[fieldLoggedOutAt] = formatUnix(p.LoggedOutAt)
	}
	return out
}

func encodeRecord(r *Record) map[string]string {
	return map[string]string{
		fieldRSID:               r.RSID,
		fieldUserID:             r.UserID,
		fieldHashedRefreshToken: r.HashedRefreshToken,
		fieldHashedAccessToken:  r.HashedAccessToken,
		fieldIV:                 r.IV,
		fieldCreatedAt:          formatUnix(r.CreatedAt),
		fieldExpiresAt:          formatUnix(r.ExpiresAt),
		fieldExpiresIn:          strconv.FormatInt(int64(r.ExpiresIn/time.Second), 10),
		fieldIsRevoked:          strconv.FormatBool(r.IsRevoked),
		fieldRevokedAt:          formatUnix(r.RevokedAt),
		fieldIsLoggedOut:        strconv.FormatBool(r.IsLoggedOut),
		fieldLoggedOutAt:        formatUnix(r.LoggedOutAt),
	}
}

func decodeRecord(rsid string, m map[string]string) (*Record, error) {
	r := &Record{
		RSID:               m[fieldRSID],
		UserID:             m[fieldUserID],
		HashedRefreshToken: m[fieldHashedRefreshToken],
		HashedAccessToken:  m[fieldHashedAccessToken],
		IV:                 m[fieldIV],
	}
	if r.RSID == "" {
		r.RSID = rsid
	}

	var err error
	if r.CreatedAt, err = parseUnix(m[fieldCreatedAt]); err != nil {
		return nil, corrupt(fieldCreatedAt, err)
	}
	if r.ExpiresAt, err = parseUnix(m[fieldExpiresAt]); err != nil {
		return nil, corrupt(fieldExpiresAt, err)
	}
	if r.RevokedAt, err = parseUnix(m[fieldRevokedAt]); err != nil {
		return nil, corrupt(fieldRevokedAt, err)
	}
	if r.LoggedOutAt, err = parseUnix(m[fieldLoggedOutAt]); err != nil {
		return nil, corrupt(fieldLoggedOutAt, err)
	}
	if v := m[fieldExpiresIn]; v != "" {
		secs, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return nil, corrupt(fieldExpiresIn, perr)
		}
		r.ExpiresIn = time.Duration(secs) * time.Second
	}
	if r.IsRevoked, err = parseFlag(m[fieldIsRevoked]); err != nil {
		return nil, corrupt(fieldIsRevoked, err)
	}
	if r.IsLoggedOut, err = parseFlag(m[fieldIsLoggedOut]); err != nil {
		return nil, corrupt(fieldIsLoggedOut, err)
	}
	return r, nil
}

func corrupt(field string, err error) error {
	return fmt.Errorf("%w: field %s: %v", ErrCorrupt, field, err)
}

func formatUnix(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func parseUnix(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}

func parseFlag(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
