package http

import (
	"net/http"

	nucleus "github.com/HariCharanK/Nucleus"
)

// diffResponse is the body of GET /api/diff. Clients fall back to showing
// Diff verbatim when Files is empty but Diff is not.
type diffResponse struct {
	Diff  string             `json:"diff"`
	Stat  string             `json:"stat"`
	Files []nucleus.DiffFile `json:"files"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	if s.source == nil || s.parser == nil {
		writeError(w, http.StatusServiceUnavailable, "diff source is not configured")
		return
	}

	raw, stat, err := nucleus.TakeSnapshot(r.Context(), s.source, s.notesDir)
	if err != nil {
		s.logger.Error("read diff", "dir", s.notesDir, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, diffResponse{
		Diff:  raw,
		Stat:  stat,
		Files: s.parser.Parse(raw).Files,
	})
}
