package bot

import (
	"strings"
	"sync"
)

// Dialog states for the add-lead flow. Absence of a session entry means no
// active dialog for that conversation.
const (
	StateAddCompany = "ADD_COMPANY"
	StateAddContact = "ADD_CONTACT"
	StateAddChannel = "ADD_CHANNEL"
	StateAddNote    = "ADD_NOTE"
)

// noteSkipSentinel is the input that stores an empty note.
const noteSkipSentinel = "-"

// LeadFields accumulates the values collected across dialog turns.
type LeadFields struct {
	Company string
	Contact string
	Channel string
	Note    string
}

// session is one conversation's dialog progress.
type session struct {
	state  string
	fields LeadFields
}

// StepResult describes the outcome of feeding one input to a session.
type StepResult struct {
	State    string     // state after the input (empty once Done)
	Reprompt bool       // input was blank; ask for the same field again
	Done     bool       // dialog completed; Fields holds the collected values
	Fields   LeadFields // valid only when Done
}

// SessionStore tracks add-lead dialog progress per conversation. State is
// in-memory only: a restart discards every in-flight dialog. The zero value
// is not usable; create one with NewSessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*session)}
}

// Start begins a fresh dialog for the conversation, discarding any partial
// one, and returns the first state.
func (ss *SessionStore) Start(chatID string) string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[chatID] = &session{state: StateAddCompany}
	return StateAddCompany
}

// Active reports whether the conversation has a dialog in progress.
func (ss *SessionStore) Active(chatID string) bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	_, ok := ss.sessions[chatID]
	return ok
}

// Cancel removes any dialog for the conversation.
func (ss *SessionStore) Cancel(chatID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, chatID)
}

// Advance feeds one text input to the conversation's dialog. The dialog is
// strictly linear: each non-blank input fills the current field and moves to
// the next state; blank input leaves the session untouched. On the final
// step the session is removed and the collected fields are returned, with
// the "-" note sentinel normalized to an empty string. The second return is
// false when no dialog is active.
func (ss *SessionStore) Advance(chatID, text string) (StepResult, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	s, ok := ss.sessions[chatID]
	if !ok {
		return StepResult{}, false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return StepResult{State: s.state, Reprompt: true}, true
	}

	switch s.state {
	case StateAddCompany:
		s.fields.Company = text
		s.state = StateAddContact
	case StateAddContact:
		s.fields.Contact = text
		s.state = StateAddChannel
	case StateAddChannel:
		s.fields.Channel = text
		s.state = StateAddNote
	case StateAddNote:
		if text == noteSkipSentinel {
			s.fields.Note = ""
		} else {
			s.fields.Note = text
		}
		delete(ss.sessions, chatID)
		return StepResult{Done: true, Fields: s.fields}, true
	}

	return StepResult{State: s.state}, true
}

// Len returns the number of conversations with an active dialog.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}
