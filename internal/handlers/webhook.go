package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// identityEvent is the envelope the identity provider posts on user and
// session changes.
type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		UserID         string `json:"user_id"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		ImageURL       string `json:"image_url"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
	} `json:"data"`
}

// IdentityWebhook ingests identity-provider sync events: user.created and
// user.updated upsert the user record, session.created / session.ended flip
// the online flag. The payload is authenticated with the provider's
// webhook signature before anything is read from it.
func IdentityWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if !verifyWebhookSignature(
		Cfg.WebhookSecret,
		c.Get("webhook-id"),
		c.Get("webhook-timestamp"),
		c.Get("webhook-signature"),
		body,
	) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid webhook signature",
		})
	}

	var event identityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid payload",
		})
	}

	switch event.Type {
	case "user.created", "user.updated":
		token := Cfg.IdentityIssuer + "|" + event.Data.ID
		email := ""
		if len(event.Data.EmailAddresses) > 0 {
			email = event.Data.EmailAddresses[0].EmailAddress
		}
		name := displayName(event.Data.FirstName, event.Data.LastName, email)

		if _, err := Users.UpsertByToken(c.Context(), token, email, name, event.Data.ImageURL); err != nil {
			log.Printf("user sync failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Failed to sync user",
			})
		}

	case "session.created", "session.ended":
		token := Cfg.IdentityIssuer + "|" + event.Data.UserID
		online := event.Type == "session.created"
		if err := Users.SetOnline(c.Context(), token, online); err != nil {
			// A session event can arrive before the user sync; nothing to flip yet
			log.Printf("online flag update skipped: %v", err)
		}

	default:
		log.Printf("ignoring identity event type %q", event.Type)
	}

	return c.SendStatus(fiber.StatusOK)
}

// displayName builds the stored name from provider fields, falling back to
// the email local part like the client does.
func displayName(first, last, email string) string {
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "Guest"
}

// verifyWebhookSignature checks the svix-style signature: HMAC-SHA256 over
// "<id>.<timestamp>.<body>" with the base64 secret (after the whsec_
// prefix), matched against the v1 entries of the signature header.
func verifyWebhookSignature(secret, msgID, timestamp, signatureHeader string, body []byte) bool {
	if secret == "" || msgID == "" || timestamp == "" || signatureHeader == "" {
		return false
	}

	// Reject stale timestamps to limit replay
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if diff := time.Since(time.Unix(ts, 0)); diff > 5*time.Minute || diff < -5*time.Minute {
		return false
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID + "." + timestamp + "."))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, part := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(part, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return true
		}
	}
	return false
}
