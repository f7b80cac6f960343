package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"weatherbot/core"
	"weatherbot/utils"
)

const (
	slackTimestampHeader = "X-Slack-Request-Timestamp"
	slackSignatureHeader = "X-Slack-Signature"

	// maxSlackBodyBytes bounds what is buffered before the signature is checked
	maxSlackBodyBytes = 1 << 20
)

// readSlackBody reads at most maxSlackBodyBytes of the request body.
// On failure it has already written the error response.
func readSlackBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSlackBodyBytes))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.Printf("⚠️ Rejected request body larger than %d bytes", maxBytesErr.Limit)
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		log.Printf("❌ Failed to read request body: %v", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}
	return bodyBytes, true
}

// SignatureVerifier checks that a request body was signed by Slack with the app's signing secret
type SignatureVerifier struct {
	signingSecret string
	maxAge        time.Duration
	now           func() time.Time
}

func NewSignatureVerifier(signingSecret string, maxAge time.Duration) *SignatureVerifier {
	utils.AssertInvariant(signingSecret != "", "signing secret cannot be empty")
	return &SignatureVerifier{
		signingSecret: signingSecret,
		maxAge:        maxAge,
		now:           time.Now,
	}
}

// Verify returns an error wrapping core.ErrVerificationFailed unless the
// signature matches and the timestamp is within maxAge of now, in either direction
func (v *SignatureVerifier) Verify(header http.Header, body []byte) error {
	timestamp := header.Get(slackTimestampHeader)
	signature := header.Get(slackSignatureHeader)

	if timestamp == "" || signature == "" {
		return fmt.Errorf("missing required headers: %w", core.ErrVerificationFailed)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp format %q: %w", timestamp, core.ErrVerificationFailed)
	}

	age := v.now().Sub(time.Unix(ts, 0))
	if age > v.maxAge || age < -v.maxAge {
		return fmt.Errorf("request timestamp outside of %s window: %w", v.maxAge, core.ErrVerificationFailed)
	}

	// v0:timestamp:body
	mac := hmac.New(sha256.New, []byte(v.signingSecret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return fmt.Errorf("signature mismatch: %w", core.ErrVerificationFailed)
	}

	return nil
}

// IsVerified reports whether the request is authentic, logging the reason when it is not
func (v *SignatureVerifier) IsVerified(header http.Header, body []byte) bool {
	if err := v.Verify(header, body); err != nil {
		log.Printf("❌ Slack signature verification failed: %v", err)
		return false
	}
	return true
}
