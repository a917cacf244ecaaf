package http

import (
	"errors"
	"net/http"

	nucleus "github.com/HariCharanK/Nucleus"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeJSON(w, http.StatusOK, []nucleus.SessionSummary{})
		return
	}
	summaries, err := s.sessions.List()
	if err != nil {
		s.logger.Error("list sessions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		writeError(w, http.StatusNotFound, nucleus.ErrSessionNotFound.Error())
		return
	}
	session, err := s.sessions.Load(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, nucleus.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, nucleus.ErrSessionNotFound.Error())
			return
		}
		s.logger.Error("load session", "session", r.PathValue("id"), "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}
