package decision

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// DefaultTokenBucket is the coarse time bucket decision tokens are
// derived from. A token is valid for the remainder of the bucket it was
// minted in and expires automatically when the bucket rolls over - no
// storage, no revocation list.
const DefaultTokenBucket = 24 * time.Hour

// TokenBucket returns the bucket index for the given instant. Bucket
// granularity is whole seconds; anything shorter falls back to the
// default.
func TokenBucket(now time.Time, bucket time.Duration) int64 {
	if bucket < time.Second {
		bucket = DefaultTokenBucket
	}
	return now.Unix() / int64(bucket/time.Second)
}

// Token derives the stateless decision-link token for an issue: an
// HMAC-SHA256 over the payload kind, issue number, and time bucket.
// Format: base64url(hmac-sha256(secret, "kind:issue:bucket")).
func Token(issueNumber int, kind string, secret []byte, bucket int64) string {
	h := hmac.New(sha256.New, secret)
	fmt.Fprintf(h, "%s:%d:%d", kind, issueNumber, bucket)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// VerifyToken checks a supplied token against the one that would be
// minted right now. Validity is a pure recomputation - if the time
// bucket has advanced since minting, the recomputed value no longer
// matches and the token is expired.
func VerifyToken(token string, issueNumber int, kind string, secret []byte, now time.Time, bucket time.Duration) bool {
	expected := Token(issueNumber, kind, secret, TokenBucket(now, bucket))
	return hmac.Equal([]byte(token), []byte(expected))
}
