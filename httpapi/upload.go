package httpapi

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/aqasend/aqasend/apierr"
	"github.com/aqasend/aqasend/header"
	mp "github.com/aqasend/aqasend/multipart"
	"github.com/aqasend/aqasend/store"
	"github.com/google/uuid"
)

const uploadReadChunk = 64 * 1024

type uploadedFile struct {
	UUID     uuid.UUID `json:"uuid"`
	Filename string    `json:"filename"`
}

type uploadResponse struct {
	Files []uploadedFile `json:"files"`
}

// handleUpload implements POST /api/upload (§8). Every file part in the
// request is streamed straight to its blob file under a freshly minted
// UUID; nothing is buffered in memory beyond one read chunk at a time.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	boundary, apiErr := boundaryFromContentType(r.Header.Get("Content-Type"))
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	downloadCountHeader, hasDownloadCount := firstValue(r.Header, header.DownloadCount)
	downloadCount, err := header.ParseDownloadCount(downloadCountHeader, hasDownloadCount)
	if err != nil {
		writeError(w, apierr.BadRequest(err.Error()))
		return
	}
	visibilityHeader, hasVisibility := firstValue(r.Header, header.Visibility)
	visibility, err := header.ParseVisibility(visibilityHeader, hasVisibility)
	if err != nil {
		writeError(w, apierr.BadRequest(err.Error()))
		return
	}
	passwordHeader, hasPassword := firstValue(r.Header, header.Password)
	password, err := header.ParsePassword(passwordHeader, hasPassword)
	if err != nil {
		writeError(w, apierr.BadRequest(err.Error()))
		return
	}
	lifetimeHeader, hasLifetime := firstValue(r.Header, header.Lifetime)
	lifetime, err := header.ParseLifetime(lifetimeHeader, hasLifetime)
	if err != nil {
		writeError(w, apierr.BadRequest(err.Error()))
		return
	}

	var uploaderUUID *uuid.UUID
	acc, loggedIn, err := s.authz.CurrentUser(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if loggedIn {
		id := acc.UUID
		uploaderUUID = &id
	}
	if visibility == store.Private && !loggedIn {
		writeError(w, apierr.Auth("private upload requires a logged-in account"))
		return
	}

	cfg := s.cfg.Get()
	reader := mp.New(boundary, cfg.MaxUploadSize)

	var files []uploadedFile
	buf := make([]byte, uploadReadChunk)
	for {
		part, feedErr := nextPart(r.Body, reader, buf)
		if feedErr != nil {
			writeError(w, feedErr)
			return
		}
		if part == nil {
			break
		}

		fileID := uuid.New()
		bucket := downloadCount.Bucket()
		f, err := s.blobs.Create(bucket, fileID)
		if err != nil {
			writeError(w, apierr.Storage(err))
			return
		}

		entry := &store.FileEntry{
			Filename:          part.Filename,
			ContentType:       part.ContentType,
			UploaderUUID:      uploaderUUID,
			DownloadCountType: downloadCount,
			Visibility:        visibility,
			Password:          password,
			Lifetime:          lifetime,
			UploadDate:        time.Now().UTC(),
		}
		s.db.Put(fileID, entry)

		if err := streamPart(reader, r.Body, buf, f); err != nil {
			f.Close()
			writeError(w, err)
			return
		}
		f.Close()

		files = append(files, uploadedFile{UUID: fileID, Filename: part.Filename})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(uploadResponse{Files: files}, "", "  ")
	_, _ = w.Write(b)
}

// firstValue reports a header's value and whether it was present at all,
// distinguishing "absent" from "present but empty" the way the header
// package's defaulting rules need.
func firstValue(h http.Header, key string) (string, bool) {
	vs, ok := h[http.CanonicalHeaderKey(key)]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func boundaryFromContentType(contentType string) (string, *apierr.Error) {
	if contentType == "" {
		return "", apierr.BadRequest("upload requires `multipart/form-data` Content-Type")
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/form-data") {
		return "", apierr.BadRequest("upload requires `multipart/form-data` Content-Type")
	}
	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return "", apierr.BadRequest("multipart/form-data upload must define a boundary")
	}
	return boundary, nil
}

// nextPart drives reader.ReadHeader, pulling more bytes from body as
// needed, until a part's headers are ready, the form is finished (nil,
// nil), or a real parse error occurs.
func nextPart(body io.Reader, reader *mp.Reader, buf []byte) (*mp.Part, *apierr.Error) {
	for {
		part, err := reader.ReadHeader()
		if err == nil {
			return part, nil
		}
		mErr, ok := err.(*mp.Error)
		if !ok || mErr.Kind != mp.KindNotEnoughData {
			return nil, multipartToAPIErr(err)
		}
		more, apiErr := feedMore(body, reader, buf)
		if apiErr != nil {
			return nil, apiErr
		}
		if !more {
			return nil, nil
		}
	}
}

// streamPart drains the current part's body straight into dst, pulling
// more bytes from body as needed.
func streamPart(reader *mp.Reader, body io.Reader, buf []byte, dst io.Writer) *apierr.Error {
	for {
		chunk, done, err := reader.ReadData()
		if err != nil {
			return multipartToAPIErr(err)
		}
		if len(chunk) > 0 {
			if _, werr := dst.Write(chunk); werr != nil {
				return apierr.Storage(werr)
			}
		}
		if done {
			return nil
		}
		if chunk == nil {
			more, apiErr := feedMore(body, reader, buf)
			if apiErr != nil {
				return apiErr
			}
			if !more {
				return apierr.BadRequest("multipart body ended mid-part")
			}
		}
	}
}

// feedMore reads one chunk from body into reader. ok is false only on a
// clean EOF with nothing left to feed; a TooBig cap violation or a read
// error other than EOF is reported through apiErr instead of folding into
// ok=false.
func feedMore(body io.Reader, reader *mp.Reader, buf []byte) (ok bool, apiErr *apierr.Error) {
	n, err := body.Read(buf)
	if n > 0 {
		if feedErr := reader.Feed(buf[:n]); feedErr != nil {
			return false, multipartToAPIErr(feedErr)
		}
	}
	if err == io.EOF {
		return n > 0, nil
	}
	if err != nil {
		return false, apierr.Transport(err)
	}
	return true, nil
}

func multipartToAPIErr(err error) *apierr.Error {
	mErr, ok := err.(*mp.Error)
	if !ok {
		return apierr.Internal(err)
	}
	if mErr.Kind == mp.KindTooBig {
		return apierr.PayloadTooLarge(mErr.Error())
	}
	return apierr.BadRequest(mErr.Error())
}

func writeError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*apierr.Error)
	if !ok {
		apiErr = apierr.Internal(err)
	}
	apierr.WriteResponse(w, apiErr, apierr.ContentTypeJSON)
}
