package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/aqasend/aqasend/apierr"
	"github.com/aqasend/aqasend/authz"
)

// handleDelete implements DELETE /api/delete/{uuid} (§8): the admin, or
// the uploader who owns the entry, may delete it; everyone else gets 401.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseUUIDParam(r, "uuid")
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	acc, loggedIn, err := s.authz.CurrentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, ok := s.db.Get(id)
	if !ok {
		writeError(w, apierr.NotFound("file not found"))
		return
	}

	if !authz.CanDelete(acc, loggedIn, entry) {
		writeError(w, apierr.Auth("not authorized to delete this file"))
		return
	}

	guard, release := s.db.EntriesWriter()
	guard.Delete(id)
	release()

	if err := s.blobs.Delete(entry.DownloadCountType.Bucket(), id); err != nil {
		s.log.Error("failed to delete blob for a deleted entry", zap.Error(err))
	}

	w.WriteHeader(http.StatusNoContent)
}
