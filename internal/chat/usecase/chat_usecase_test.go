package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	maildomain "github.com/mrxception/MailMind/internal/mail/domain"
	"github.com/mrxception/MailMind/pkg/ai"

	"github.com/rs/zerolog"
)

func newChatUsecase(conns *fakeConnectionRepo, emails *fakeEmailRepo, completer *fakeCompleter) (*ChatUsecase, *fakeSessionRepo, *fakeTurnRepo) {
	sessions := &fakeSessionRepo{}
	turns := &fakeTurnRepo{}
	search := NewSearchUsecase(emails, zerolog.Nop())
	u := NewChatUsecase(conns, search, completer, sessions, turns, zerolog.Nop())
	return u, sessions, turns
}

func connected() *fakeConnectionRepo {
	return &fakeConnectionRepo{conn: &maildomain.GmailConnection{ID: "conn-1", UserID: "user-1"}}
}

func TestHandleTurnRequiresConnection(t *testing.T) {
	u, _, turns := newChatUsecase(&fakeConnectionRepo{}, &fakeEmailRepo{}, &fakeCompleter{})

	_, err := u.HandleTurn(context.Background(), "user-1", "", "any news?")
	if !errors.Is(err, maildomain.ErrNoConnection) {
		t.Fatalf("err = %v, want ErrNoConnection", err)
	}
	if len(turns.turns) != 0 {
		t.Errorf("no turn must be recorded without a connection")
	}
}

func TestHandleTurnSendsContextThenQuestion(t *testing.T) {
	emails := &fakeEmailRepo{ranked: []maildomain.Email{
		{ID: "e1", Subject: "Cashback ready", Sender: "rewards@shop.example", Body: "arrives in 5 days"},
	}}
	completer := &fakeCompleter{response: "Your cashback arrives in 5 days."}
	u, _, _ := newChatUsecase(connected(), emails, completer)

	result, err := u.HandleTurn(context.Background(), "user-1", "", "When can I receive my cashback?")
	if err != nil {
		t.Fatalf("handle turn: %v", err)
	}

	if len(completer.prompts) != 1 {
		t.Fatalf("completions = %d, want 1", len(completer.prompts))
	}
	msgs := completer.prompts[0]
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want context turn plus question turn", len(msgs))
	}
	if msgs[0].Role != ai.RoleUser || msgs[1].Role != ai.RoleUser {
		t.Errorf("both turns must use the user role, got %q/%q", msgs[0].Role, msgs[1].Role)
	}
	if !strings.Contains(msgs[0].Content, "Cashback ready") {
		t.Errorf("first turn must carry the email context")
	}
	if msgs[1].Content != "When can I receive my cashback?" {
		t.Errorf("second turn must be the verbatim question, got %q", msgs[1].Content)
	}
	if result.Response != "Your cashback arrives in 5 days." {
		t.Errorf("response = %q", result.Response)
	}
}

func TestHandleTurnNoMatchesStillAnswers(t *testing.T) {
	completer := &fakeCompleter{response: "I could not find anything about that."}
	u, _, turns := newChatUsecase(connected(), &fakeEmailRepo{}, completer)

	result, err := u.HandleTurn(context.Background(), "user-1", "", "zebra subscription renewal")
	if err != nil {
		t.Fatalf("handle turn: %v", err)
	}
	if !strings.Contains(completer.prompts[0][0].Content, NoRelevantEmails) {
		t.Errorf("context must carry the no-results sentinel")
	}
	if result.EmailsFound != 0 || len(result.Emails) != 0 {
		t.Errorf("result = %+v, want zero referenced emails", result)
	}
	if len(turns.turns) != 1 {
		t.Errorf("the exchange must still be recorded")
	}
}

func TestHandleTurnCreatesSessionLazily(t *testing.T) {
	u, sessions, _ := newChatUsecase(connected(), &fakeEmailRepo{}, &fakeCompleter{response: "ok"})

	result, err := u.HandleTurn(context.Background(), "user-1", "", "Show me recent orders from Amazon")
	if err != nil {
		t.Fatalf("handle turn: %v", err)
	}
	if len(sessions.sessions) != 1 {
		t.Fatalf("sessions created = %d, want 1", len(sessions.sessions))
	}
	// short enough to keep whole, no ellipsis
	if got := sessions.sessions[0].Title; got != "Show me recent orders from Amazon" {
		t.Errorf("title = %q", got)
	}
	if result.SessionID != sessions.sessions[0].ID {
		t.Errorf("result session id = %q, want the created one", result.SessionID)
	}
}

func TestHandleTurnTruncatesLongTitle(t *testing.T) {
	u, sessions, _ := newChatUsecase(connected(), &fakeEmailRepo{}, &fakeCompleter{response: "ok"})

	message := strings.Repeat("q", 80)
	if _, err := u.HandleTurn(context.Background(), "user-1", "", message); err != nil {
		t.Fatalf("handle turn: %v", err)
	}
	want := strings.Repeat("q", 50) + "..."
	if got := sessions.sessions[0].Title; got != want {
		t.Errorf("title = %q, want first 50 runes plus ellipsis", got)
	}
}

func TestHandleTurnReusesSession(t *testing.T) {
	u, sessions, turns := newChatUsecase(connected(), &fakeEmailRepo{}, &fakeCompleter{response: "ok"})

	result, err := u.HandleTurn(context.Background(), "user-1", "session-7", "follow-up question here")
	if err != nil {
		t.Fatalf("handle turn: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Errorf("no new session when one is supplied")
	}
	if len(sessions.touched) != 1 || sessions.touched[0] != "session-7" {
		t.Errorf("touched = %v, want the supplied session", sessions.touched)
	}
	if result.SessionID != "session-7" {
		t.Errorf("session id = %q", result.SessionID)
	}
	if turns.turns[0].SessionID != "session-7" {
		t.Errorf("turn session id = %q", turns.turns[0].SessionID)
	}
}

func TestHandleTurnRecordsEmailIDs(t *testing.T) {
	emails := &fakeEmailRepo{ranked: []maildomain.Email{
		{ID: "e1", Subject: "a", Body: "secret body one"},
		{ID: "e2", Subject: "b", Body: "secret body two"},
	}}
	u, _, turns := newChatUsecase(connected(), emails, &fakeCompleter{response: "ok"})

	result, err := u.HandleTurn(context.Background(), "user-1", "", "order updates please")
	if err != nil {
		t.Fatalf("handle turn: %v", err)
	}

	var ids []string
	if err := json.Unmarshal(turns.turns[0].EmailIDs, &ids); err != nil {
		t.Fatalf("email ids not valid json: %v", err)
	}
	if len(ids) != 2 || ids[0] != "e1" || ids[1] != "e2" {
		t.Errorf("ids = %v, want [e1 e2]", ids)
	}

	if result.EmailsFound != 2 {
		t.Errorf("emailsFound = %d, want 2", result.EmailsFound)
	}
	for _, ref := range result.Emails {
		if strings.Contains(ref.Subject+ref.Sender, "secret body") {
			t.Errorf("metadata must not leak bodies: %+v", ref)
		}
	}
}

func TestHandleTurnCompletionFailureRecordsNothing(t *testing.T) {
	completer := &fakeCompleter{err: ai.ErrCompletion}
	u, sessions, turns := newChatUsecase(connected(), &fakeEmailRepo{}, completer)

	_, err := u.HandleTurn(context.Background(), "user-1", "", "hello there friend")
	if !errors.Is(err, ai.ErrCompletion) {
		t.Fatalf("err = %v, want ErrCompletion", err)
	}
	if len(sessions.sessions) != 0 || len(turns.turns) != 0 {
		t.Errorf("failed completions must not create sessions or turns")
	}
}
