package httpapi

import (
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/google/uuid"

	"github.com/aqasend/aqasend/account"
	"github.com/aqasend/aqasend/store"
)

// listProjection is what list.json actually sends: FileEntry's fields
// other than download_count_type, with the password itself collapsed to a
// boolean (§8).
type listProjection struct {
	UUID          uuid.UUID               `json:"uuid"`
	Filename      string                  `json:"filename"`
	ContentType   string                  `json:"content_type"`
	UploaderUUID  *uuid.UUID              `json:"uploader_uuid,omitempty"`
	DownloadCount uint64                  `json:"download_count"`
	Visibility    store.Visibility        `json:"visibility"`
	HasPassword   bool                    `json:"has_password"`
	Lifetime      store.Lifetime          `json:"lifetime"`
	UploadDate    time.Time               `json:"upload_date"`
}

// handleList implements GET /api/list.json (§8). The visibility/owner
// filter happens before the expired/exhausted filter, matching the
// order the governing specification lists them in (§4.8).
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	acc, loggedIn, err := s.authz.CurrentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	onlyMine := r.URL.Query().Get("uploader") == "me"
	now := time.Now()

	view, release := s.db.EntriesReader()
	var out []listProjection
	view.Each(func(id uuid.UUID, e *store.FileEntry) {
		if !visibleTo(e, acc, loggedIn) {
			return
		}
		if e.Exhausted() || e.Expired(now) {
			return
		}
		if onlyMine {
			if !loggedIn || e.UploaderUUID == nil || *e.UploaderUUID != acc.UUID {
				return
			}
		}
		out = append(out, listProjection{
			UUID:          id,
			Filename:      e.Filename,
			ContentType:   e.ContentType,
			UploaderUUID:  e.UploaderUUID,
			DownloadCount: e.DownloadCount,
			Visibility:    e.Visibility,
			HasPassword:   e.HasPassword(),
			Lifetime:      e.Lifetime,
			UploadDate:    e.UploadDate,
		})
	})
	release()

	if out == nil {
		out = []listProjection{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(out, "", "  ")
	_, _ = w.Write(b)
}

// visibleTo implements the "Public ∨ owner" list predicate (§4.8) exactly;
// admins get no blanket read access here, only the delete exception
// elsewhere in the API.
func visibleTo(e *store.FileEntry, acc account.Account, loggedIn bool) bool {
	if e.Visibility == store.Public {
		return true
	}
	if !loggedIn {
		return false
	}
	return e.UploaderUUID != nil && *e.UploaderUUID == acc.UUID
}
