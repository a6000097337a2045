package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homecast/internal/command"
	"github.com/nerrad567/homecast/internal/executor"
)

// CommandResponse is the body of a successful or partial command.
type CommandResponse struct {
	Status    executor.Status `json:"status"`
	Target    string          `json:"target"`
	Action    string          `json:"action"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed,omitempty"`
}

// handlePathCommand serves /{action}/{target...} and /{action}/{value}/{target...}.
func (s *Server) handlePathCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := command.FromPath(chi.URLParam(r, "action"), pathSegments(chi.URLParam(r, "*")))
	if err != nil {
		s.metrics.commands.WithLabelValues("unknown", "parse_error").Inc()
		writeParseError(w, err)
		return
	}
	s.execute(w, r, cmd)
}

// handleTextCommand serves /command?text=<command text>.
func (s *Server) handleTextCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := command.Parse(r.URL.Query().Get("text"))
	if err != nil {
		s.metrics.commands.WithLabelValues("unknown", "parse_error").Inc()
		writeParseError(w, err)
		return
	}
	s.execute(w, r, cmd)
}

// handleOpenURL serves /open?url=<scheme url>.
func (s *Server) handleOpenURL(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	text, ok := command.FromURL(raw, s.scheme)
	if !ok {
		s.metrics.commands.WithLabelValues("unknown", "parse_error").Inc()
		writeBadRequest(w, "url does not describe a command: "+raw)
		return
	}
	cmd, err := command.Parse(text)
	if err != nil {
		s.metrics.commands.WithLabelValues("unknown", "parse_error").Inc()
		writeParseError(w, err)
		return
	}
	s.execute(w, r, cmd)
}

// execute runs cmd and writes the outcome.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, cmd command.Command) {
	res := s.executor.Execute(cmd.Target, cmd.Action)
	s.metrics.commands.WithLabelValues(string(cmd.Action.Kind), string(res.Status)).Inc()

	if !res.OK() {
		s.logger.Debug("command failed",
			"target", cmd.Target,
			"action", cmd.Action.String(),
			"error", res.Err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeActionError(w, res.Err)
		return
	}

	writeJSON(w, http.StatusOK, CommandResponse{
		Status:    res.Status,
		Target:    cmd.Target,
		Action:    cmd.Action.String(),
		Succeeded: res.Succeeded,
		Failed:    res.Failed,
	})
}

// pathSegments splits a wildcard path and percent-decodes each segment.
// The router hands over the raw path when it holds escapes such as %2F,
// so segments are decoded here; a segment that does not decode is kept.
func pathSegments(rest string) []string {
	if rest == "" {
		return nil
	}
	parts := strings.Split(rest, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if dec, err := url.PathUnescape(p); err == nil {
			p = dec
		}
		out = append(out, p)
	}
	return out
}
