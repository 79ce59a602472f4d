package gmail

import (
	"encoding/base64"
	"net/mail"
	"time"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"

	"google.golang.org/api/gmail/v1"
)

// ParseMessage maps a raw Gmail message (header list plus either a flat body
// or multipart payload) to a normalized record. It is pure so the extraction
// rules are testable without API access.
func ParseMessage(msg *gmail.Message) *maildomain.ParsedEmail {
	parsed := &maildomain.ParsedEmail{GmailID: msg.Id}
	if msg.Payload == nil {
		return parsed
	}

	parsed.Subject = getHeader(msg.Payload.Headers, "Subject")
	parsed.Sender = getHeader(msg.Payload.Headers, "From")
	parsed.Recipient = getHeader(msg.Payload.Headers, "To")

	if date := getHeader(msg.Payload.Headers, "Date"); date != "" {
		if t, err := mail.ParseDate(date); err == nil {
			parsed.ReceivedAt = t
		}
	}
	if parsed.ReceivedAt.IsZero() {
		parsed.ReceivedAt = internalTime(msg)
	}

	parsed.Body = truncateRunes(extractBody(msg.Payload), maildomain.MaxBodyLength)
	return parsed
}

// getHeader returns the first header whose name matches exactly.
func getHeader(headers []*gmail.MessagePartHeader, name string) string {
	for _, header := range headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

// extractBody prefers a direct body payload and otherwise takes the first
// direct part declared text/plain. Nested multiparts are not descended into.
func extractBody(payload *gmail.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}

	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			return decodeBody(part.Body.Data)
		}
	}
	return ""
}

// decodeBody handles both padded and unpadded base64url, which Gmail mixes.
func decodeBody(data string) string {
	if decoded, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	return ""
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// internalTime converts Gmail's epoch-millis InternalDate; used as a fallback
// when the Date header is missing or unparseable.
func internalTime(msg *gmail.Message) time.Time {
	if msg.InternalDate == 0 {
		return time.Time{}
	}
	return time.Unix(msg.InternalDate/1000, 0)
}
