package logger

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// signer is the HMAC-SHA256 key for entry signatures. Details are not signed.
type signer []byte

func (s signer) sign(e LogEntry) string {
	mac := hmac.New(sha256.New, s)
	mac.Write([]byte(strings.Join([]string{
		e.Timestamp,
		string(e.Level),
		e.Service,
		e.EventType,
		e.Message,
	}, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s signer) verify(e LogEntry) bool {
	return hmac.Equal([]byte(s.sign(e)), []byte(e.Hmac))
}
