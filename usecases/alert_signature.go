package usecases

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

const alertSecretBytes = 32

// SignAlertPayload returns the value of the signature header sent with webhook alerts:
// "t=<unix timestamp>,v1=<hex hmac-sha256>". The mac covers "<timestamp>.<payload>" so a
// captured request can not be replayed with a fresh timestamp.
func SignAlertPayload(payload []byte, secret string, timestamp int64) string {
	ts := strconv.FormatInt(timestamp, 10)
	return "t=" + ts + ",v1=" + alertHmac(secret, ts, payload)
}

// VerifyAlertSignature checks a header produced by SignAlertPayload.
func VerifyAlertSignature(payload []byte, secret string, header string) bool {
	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		if v, ok := strings.CutPrefix(part, "t="); ok {
			ts = v
		} else if v, ok := strings.CutPrefix(part, "v1="); ok {
			sig = v
		}
	}
	if ts == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(alertHmac(secret, ts, payload)))
}

func alertHmac(secret, timestamp string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(timestamp))
	h.Write([]byte("."))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateAlertSecret returns a random hex encoded signing secret for a new webhook recipient.
func GenerateAlertSecret() (string, error) {
	b := make([]byte, alertSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate alert secret")
	}
	return hex.EncodeToString(b), nil
}
