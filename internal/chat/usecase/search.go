package usecase

import (
	"fmt"
	"regexp"
	"strings"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	mailrepo "github.com/mrxception/MailMind/internal/mail/repository"

	"github.com/rs/zerolog"
)

// ContextBodyLength caps how much of each body is quoted in the model context.
const ContextBodyLength = 1000

// NoRelevantEmails is handed to the model when search returns nothing,
// so it can tell the user instead of hallucinating.
const NoRelevantEmails = "No relevant emails found."

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "will": true,
	"with": true, "can": true, "i": true, "my": true, "when": true,
	"where": true, "what": true, "who": true, "how": true, "do": true,
	"does": true, "did": true,
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// ExtractKeywords reduces a free-form question to its content words:
// lowercased, punctuation stripped, stop words and short tokens dropped,
// duplicates removed while keeping first-seen order.
func ExtractKeywords(query string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(query), " ")

	seen := map[string]bool{}
	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) <= 2 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

// SearchUsecase finds the stored emails most relevant to a question.
type SearchUsecase struct {
	emails mailrepo.EmailRepository
	log    zerolog.Logger
}

func NewSearchUsecase(emails mailrepo.EmailRepository, log zerolog.Logger) *SearchUsecase {
	return &SearchUsecase{
		emails: emails,
		log:    log.With().Str("component", "email-search").Logger(),
	}
}

// Search returns up to limit relevant emails. Questions with no usable
// keywords fall back to the most recent messages. Ranked full-text search
// is the primary path; when it errors or matches nothing, a plain
// containment scan over the same keywords takes over.
func (s *SearchUsecase) Search(userID, query string, limit int) ([]maildomain.Email, error) {
	keywords := ExtractKeywords(query)
	if len(keywords) == 0 {
		return s.emails.FindRecent(userID, limit)
	}

	emails, err := s.emails.SearchRanked(userID, strings.Join(keywords, " "), limit)
	if err != nil {
		s.log.Warn().Err(err).Msg("ranked search failed, falling back to containment scan")
	} else if len(emails) > 0 {
		return emails, nil
	}

	return s.emails.SearchContaining(userID, keywords, limit)
}

// FormatContext renders emails as a plain-text block for the model prompt.
func FormatContext(emails []maildomain.Email) string {
	if len(emails) == 0 {
		return NoRelevantEmails
	}

	blocks := make([]string, 0, len(emails))
	for i, email := range emails {
		subject := email.Subject
		if subject == "" {
			subject = "(No Subject)"
		}

		body := email.Body
		if runes := []rune(body); len(runes) > ContextBodyLength {
			body = string(runes[:ContextBodyLength]) + "..."
		}

		blocks = append(blocks, fmt.Sprintf(
			"\nEmail %d:\nSubject: %s\nFrom: %s\nTo: %s\nDate: %s\nBody: %s\n---",
			i+1, subject, email.Sender, email.Recipient,
			email.ReceivedAt.Format("1/2/2006, 3:04:05 PM"), body,
		))
	}
	return strings.Join(blocks, "\n")
}
