package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	nucleus "github.com/HariCharanK/Nucleus"
)

func newSessionID() string {
	return uuid.NewString()
}

// handleChat streams an assistant reply as server-sent events and stores the
// conversation when the stream ends.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req nucleus.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", s.maxBodyBytes))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := nucleus.ValidateChatRequest(req); len(errs) > 0 {
		details := make([]string, len(errs))
		for i, e := range errs {
			details[i] = e.Error()
		}
		writeError(w, http.StatusBadRequest, "invalid chat request", details...)
		return
	}

	if req.SessionID != "" {
		if _, err := uuid.Parse(req.SessionID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid session id")
			return
		}
	}

	if s.assistant == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	session := s.openSession(req.SessionID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stream := &eventStream{w: w, flusher: flusher}
	var reply strings.Builder
	emit := func(e nucleus.ChatEvent) error {
		if e.Type == nucleus.EventText {
			reply.WriteString(e.Text)
		}
		return stream.send(e)
	}

	if err := stream.send(nucleus.ChatEvent{Type: nucleus.EventSession, SessionID: session.ID}); err != nil {
		return
	}

	ctx := r.Context()
	err := s.assistant.Chat(ctx, req.Messages, emit)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		s.logger.Info("chat cancelled by client", "session", session.ID)
	case stream.err != nil:
		s.logger.Info("chat stream closed", "session", session.ID, "error", stream.err)
	default:
		s.logger.Error("chat failed", "session", session.ID, "error", err)
		_ = stream.send(nucleus.ChatEvent{Type: nucleus.EventError, Text: err.Error()})
		_ = stream.send(nucleus.ChatEvent{Type: nucleus.EventDone})
	}

	session.Messages = append([]nucleus.Message(nil), req.Messages...)
	if reply.Len() > 0 {
		session.Messages = append(session.Messages, nucleus.Message{Role: nucleus.RoleAssistant, Content: reply.String()})
	}
	s.saveSession(session)
}

// openSession returns the stored session for id, or a fresh one. A new id is
// generated when id is empty.
func (s *Server) openSession(id string) *nucleus.Session {
	if id == "" {
		return &nucleus.Session{ID: s.newID()}
	}
	if s.sessions != nil {
		session, err := s.sessions.Load(id)
		if err == nil {
			return session
		}
		if !errors.Is(err, nucleus.ErrSessionNotFound) {
			s.logger.Warn("load session", "session", id, "error", err)
		}
	}
	return &nucleus.Session{ID: id}
}

func (s *Server) saveSession(session *nucleus.Session) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Save(session); err != nil {
		s.logger.Error("save session", "session", session.ID, "error", err)
	}
}

// eventStream writes server-sent events. After the first write error every
// send fails with that error.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	err     error
}

func (s *eventStream) send(e nucleus.ChatEvent) error {
	if s.err != nil {
		return s.err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", e.Type, data); err != nil {
		s.err = err
		return err
	}
	s.flusher.Flush()
	return nil
}
