package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aqasend/aqasend/apierr"
	"github.com/aqasend/aqasend/authz"
	"github.com/aqasend/aqasend/store"
)

// handleDownload implements GET /api/download/{uuid} (§8, §4.8). The
// download_count increment and the exhausted/expired check happen under
// one entries-write-guard acquisition, so a download that wins the race
// to increment past the budget is the one that gets 404'd, not an
// innocent bystander.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseUUIDParam(r, "uuid")
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	entry, ok := s.db.Get(id)
	if !ok {
		writeError(w, apierr.NotFound("file not found"))
		return
	}

	acc, loggedIn, err := s.authz.CurrentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var providedPassword *string
	if p := r.URL.Query().Get("password"); p != "" {
		providedPassword = &p
	}
	if !authz.CanView(acc, loggedIn, entry, providedPassword) {
		writeError(w, apierr.Auth("not authorized to download this file"))
		return
	}

	now := time.Now()
	var bucket string
	ok = s.db.UpdateInPlace(id, func(e *store.FileEntry) (*store.FileEntry, bool) {
		if e.Exhausted() || e.Expired(now) {
			return nil, false
		}
		bucket = e.DownloadCountType.Bucket()
		e.DownloadCount++
		return e, true
	})
	if !ok {
		writeError(w, apierr.NotFound("file not found"))
		return
	}

	f, err := s.blobs.Open(bucket, id)
	if err != nil {
		s.log.Error("blob missing for a live entry", zap.Error(err))
		writeError(w, apierr.NotFound("file not found"))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf(`filename="%s"`, entry.Filename))
	w.Header().Set("Content-Type", entry.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, *apierr.Error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, apierr.BadRequest("file id is not a valid uuid")
	}
	return id, nil
}
