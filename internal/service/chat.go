package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"ghid/internal/model"
)

const botName = "Asistent AI"

var greetingText = fmt.Sprintf(
	"Salut! Sunt %s, asistentul tău personal. Întreabă-mă despre locațiile din aplicație. De exemplu: \"Unde pot să mănânc o pizza în Timișoara?\"",
	botName,
)

// Errors surfaced to the HTTP boundary
var (
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrSessionBusy    = errors.New("a previous message is still being processed")
	ErrSessionUnknown = errors.New("session not found")
)

// ChatLogger records completed turns for analytics. A nil logger
// disables recording entirely.
type ChatLogger interface {
	LogChatTurn(ctx context.Context, sessionID, query, intent, city string, resultNames []string, tookMs int64) error
}

// session holds one conversation: newest-first history plus the
// remembered intent/city. Only the turn currently resolving mutates it,
// and at most one turn per session is in flight at a time.
type session struct {
	id       string
	mu       sync.Mutex
	messages []model.Message
	convCtx  model.ConversationContext
	inFlight bool
	lastSeen time.Time
}

// ChatService orchestrates one conversation turn: resolve context,
// run the local search, call the response generator, update history.
type ChatService struct {
	resolver  *ContextResolver
	search    *LocalSearch
	responder *Responder
	logger    ChatLogger

	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	done     chan struct{}
}

// NewChatService creates a new chat service. Idle sessions are dropped
// after ttl; conversation state is never persisted across restarts.
func NewChatService(resolver *ContextResolver, search *LocalSearch, responder *Responder, logger ChatLogger, ttl time.Duration) *ChatService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &ChatService{
		resolver:  resolver,
		search:    search,
		responder: responder,
		logger:    logger,
		sessions:  make(map[string]*session),
		ttl:       ttl,
		done:      make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Close stops the session cleanup goroutine
func (s *ChatService) Close() {
	close(s.done)
}

func (s *ChatService) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for id, sess := range s.sessions {
				sess.mu.Lock()
				expired := sess.lastSeen.Before(cutoff) && !sess.inFlight
				sess.mu.Unlock()
				if expired {
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()
		}
	}
}

// getOrCreate returns the session for id, seeding a fresh one with the
// greeting message when it doesn't exist yet.
func (s *ChatService) getOrCreate(id string) *session {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; ok {
		return sess
	}
	sess = &session{
		id:       id,
		messages: []model.Message{greetingMessage()},
		lastSeen: time.Now(),
	}
	s.sessions[id] = sess
	return sess
}

func greetingMessage() model.Message {
	return model.Message{
		ID:        newMessageID(),
		Text:      greetingText,
		Sender:    model.SenderBot,
		Timestamp: time.Now(),
	}
}

var idCounter struct {
	sync.Mutex
	last int64
}

// newMessageID returns a time-derived ID, strictly increasing so two
// messages created in the same nanosecond never collide.
func newMessageID() string {
	idCounter.Lock()
	defer idCounter.Unlock()
	now := time.Now().UnixNano()
	if now <= idCounter.last {
		now = idCounter.last + 1
	}
	idCounter.last = now
	return strconv.FormatInt(now, 10)
}

// Send runs one conversation turn. The user message is appended before
// the generation call starts and a loading placeholder marks the
// pending reply; the placeholder is replaced once the call resolves.
// A second submission while a turn is in flight returns ErrSessionBusy.
func (s *ChatService) Send(ctx context.Context, sessionID, text string) (model.Message, model.ConversationContext, int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, model.ConversationContext{}, 0, ErrEmptyMessage
	}

	start := time.Now()
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	if sess.inFlight {
		sess.mu.Unlock()
		return model.Message{}, model.ConversationContext{}, 0, ErrSessionBusy
	}
	sess.inFlight = true
	sess.lastSeen = time.Now()

	// History and context as they were before this turn
	history := append([]model.Message(nil), sess.messages...)
	convCtx := sess.convCtx

	userMsg := model.Message{
		ID:        newMessageID(),
		Text:      text,
		Sender:    model.SenderUser,
		Timestamp: time.Now(),
	}
	placeholder := model.Message{
		ID:        newMessageID(),
		Sender:    model.SenderBot,
		Timestamp: time.Now(),
		IsLoading: true,
	}
	sess.messages = append([]model.Message{placeholder, userMsg}, sess.messages...)
	sess.mu.Unlock()

	res := s.resolver.Resolve(text, convCtx, history)

	// Remembered state is updated before the search executes, so the
	// next turn sees this turn's resolution even if generation fails.
	sess.mu.Lock()
	sess.convCtx = res.NewContext
	sess.mu.Unlock()

	var candidates []model.Location
	if res.SearchIntent != "" {
		candidates = s.search.FindLocations(res.SearchIntent, res.SearchCity)
	}

	botResp := s.responder.Generate(ctx, res, candidates)

	botMsg := model.Message{
		ID:                   newMessageID(),
		Text:                 botResp.Text,
		Sender:               model.SenderBot,
		Timestamp:            time.Now(),
		RecommendedLocations: botResp.Locations,
	}

	sess.mu.Lock()
	sess.replacePlaceholder(placeholder.ID, botMsg)
	sess.inFlight = false
	sess.lastSeen = time.Now()
	sess.mu.Unlock()

	took := time.Since(start).Milliseconds()

	if s.logger != nil {
		names := make([]string, 0, len(botResp.Locations))
		for _, loc := range botResp.Locations {
			names = append(names, loc.Name)
		}
		go func() {
			_ = s.logger.LogChatTurn(context.Background(), sessionID, text, res.SearchIntent, res.SearchCity, names, took)
		}()
	}

	return botMsg, res.NewContext, took, nil
}

// replacePlaceholder swaps the loading placeholder for the real reply,
// keeping its position in the newest-first history.
func (sess *session) replacePlaceholder(placeholderID string, msg model.Message) {
	for i := range sess.messages {
		if sess.messages[i].ID == placeholderID {
			sess.messages[i] = msg
			return
		}
	}
	// Placeholder already gone (session reset mid-turn): prepend
	sess.messages = append([]model.Message{msg}, sess.messages...)
}

// History returns a copy of the session's messages, newest first
func (s *ChatService) History(sessionID string) ([]model.Message, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionUnknown
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return append([]model.Message(nil), sess.messages...), nil
}

// Context returns the remembered intent/city for a session
func (s *ChatService) Context(sessionID string) (model.ConversationContext, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return model.ConversationContext{}, ErrSessionUnknown
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.convCtx, nil
}

// Reset clears a session back to the greeting message and an empty
// remembered context.
func (s *ChatService) Reset(sessionID string) error {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionUnknown
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.messages = []model.Message{greetingMessage()}
	sess.convCtx = model.ConversationContext{}
	sess.lastSeen = time.Now()
	return nil
}
