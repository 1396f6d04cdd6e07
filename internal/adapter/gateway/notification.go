package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	domainErrors "github.com/polkiloo/homecare/internal/domain/errors"
)

const StatusPaid = "paid"

// Notification is the webhook body sent by the gateway when a transfer lands.
type Notification struct {
	Reference      string `json:"reference"`
	VirtualAccount string `json:"virtual_account"`
	Amount         int64  `json:"amount"`
	Status         string `json:"status"`
}

// Paid reports whether the notification announces a completed transfer.
func (n Notification) Paid() bool {
	return strings.EqualFold(n.Status, StatusPaid)
}

// Sign returns the hex encoded HMAC-SHA256 of body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseNotification checks the signature over the raw body and decodes it.
// An empty secret rejects every notification.
func ParseNotification(secret string, body []byte, signature string) (Notification, error) {
	if secret == "" {
		return Notification{}, domainErrors.ErrInvalidSignature
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return Notification{}, domainErrors.ErrInvalidSignature
	}
	want, _ := hex.DecodeString(Sign(secret, body))
	if !hmac.Equal(got, want) {
		return Notification{}, domainErrors.ErrInvalidSignature
	}

	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return Notification{}, err
	}
	return n, nil
}
