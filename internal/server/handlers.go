package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rnwolfe/streak/internal/history"
	"github.com/rnwolfe/streak/internal/localday"
	"github.com/rnwolfe/streak/internal/tracker"
	"github.com/rnwolfe/streak/internal/version"
)

// ClientLocalLayout is the wall-clock format clients report. An RFC 3339
// value is also accepted; its zone is ignored.
const ClientLocalLayout = "2006-01-02T15:04:05"

type activityRequest struct {
	ClientLocal string `json:"client_local"`
}

type activityResponse struct {
	User    string `json:"user"`
	Verdict string `json:"verdict"`
	Streak  int    `json:"streak"`
}

type streakResponse struct {
	User       string `json:"user"`
	Streak     int    `json:"streak"`
	Longest    int    `json:"longest"`
	Active     bool   `json:"active"`
	BreaksOn   string `json:"breaks_on,omitempty"`
	LastUTC    string `json:"last_utc,omitempty"`
	LastOffset string `json:"last_offset,omitempty"`
}

type intervalJSON struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

func parseClientLocal(s string) (time.Time, error) {
	if t, err := time.Parse(ClientLocalLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// parseOffsetParam undoes query decoding of a leading '+' into a space.
func parseOffsetParam(raw string, at time.Time) (time.Duration, error) {
	if strings.HasPrefix(raw, " ") {
		raw = "+" + strings.TrimLeft(raw, " ")
	}
	return localday.ParseOffsetAt(raw, at)
}

// user resolves the {id} path variable, writing the error response itself
// when it fails.
func (s *Server) user(w http.ResponseWriter, r *http.Request) (history.User, bool) {
	ref := mux.Vars(r)["id"]
	u, err := s.users.FindUser(r.Context(), ref)
	if errors.Is(err, history.ErrUserNotFound) {
		respondWithError(w, http.StatusNotFound, "unknown user")
		return history.User{}, false
	}
	if err != nil {
		s.logger.Error("resolving user", "ref", ref, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return history.User{}, false
	}
	return u, true
}

func (s *Server) recordActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<12)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	clientLocal, err := parseClientLocal(req.ClientLocal)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "client_local must look like "+ClientLocalLayout)
		return
	}

	u, ok := s.user(w, r)
	if !ok {
		return
	}

	res, err := s.tracker.Record(r.Context(), u.ID, clientLocal, s.now())
	if err != nil {
		if tracker.IsTimeTravel(err) {
			s.logger.Error("stored history is inconsistent", "user", u.ID, "error", err)
			respondWithError(w, http.StatusConflict, "stored history is inconsistent")
			return
		}
		s.logger.Error("recording activity", "user", u.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, activityResponse{
		User:    u.ID,
		Verdict: res.Verdict.String(),
		Streak:  res.Streak,
	})
}

func (s *Server) getStreak(w http.ResponseWriter, r *http.Request) {
	now := s.now()

	var basis *localday.Time
	if raw, ok := r.URL.Query()["offset"]; ok && len(raw) > 0 {
		off, err := parseOffsetParam(raw[0], now)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		b := localday.At(now, off)
		basis = &b
	}

	u, ok := s.user(w, r)
	if !ok {
		return
	}

	st, err := s.tracker.Status(r.Context(), u.ID, basis, now)
	if err != nil {
		s.logger.Error("reading streak", "user", u.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := streakResponse{
		User:    u.ID,
		Streak:  st.Streak,
		Longest: st.Longest,
		Active:  st.Active,
	}
	if st.Active {
		resp.BreaksOn = st.BreaksOn.String()
	}
	if !st.LastUTC.IsZero() {
		resp.LastUTC = st.LastUTC.Format(time.RFC3339)
		resp.LastOffset = localday.FormatOffset(st.LastOffset)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) getIntervals(w http.ResponseWriter, r *http.Request) {
	u, ok := s.user(w, r)
	if !ok {
		return
	}

	ivs, err := s.tracker.History(r.Context(), u.ID)
	if err != nil {
		s.logger.Error("reading history", "user", u.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]intervalJSON, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, intervalJSON{
			Begin: formatLocal(iv.Begin),
			End:   formatLocal(iv.End),
			Days:  iv.Length(),
		})
	}
	respondWithJSON(w, http.StatusOK, out)
}

// formatLocal renders t as RFC 3339 in the client's own offset.
func formatLocal(t localday.Time) string {
	zone := time.FixedZone(localday.FormatOffset(t.Offset), int(t.Offset/time.Second))
	return t.UTC.In(zone).Format(time.RFC3339)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.PingContext(ctx); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": version.Short(),
		"engines": s.tracker.Cached(),
	})
}
