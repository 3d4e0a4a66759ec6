package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"dialoguehub/internal/util"
)

const streamBufferSize = 32 * 1024

// handleStream serves /api/file/{fileId} and /api/audio/{fileId}.
func (s *Server) handleStream(prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, prefix)
		if id == "" || strings.Contains(id, "/") {
			notFound(w, "not found")
			return
		}
		logger := util.LoggerFromContext(r.Context()).With("file_id", id)

		obj, err := s.app.OpenFile(r.Context(), id)
		if err != nil {
			logger.Error("open file failed", "err", err)
			writeError(w, http.StatusInternalServerError, "error streaming file")
			return
		}
		defer obj.Body.Close()

		contentType := obj.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		if obj.Size >= 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		}
		w.WriteHeader(http.StatusOK)

		if n, err := copyFlushing(w, obj.Body); err != nil {
			// Headers are gone; the client sees a truncated body.
			logger.Warn("stream interrupted", "err", err, "bytes", n)
		}
	}
}

// copyFlushing forwards chunks to the client as soon as they are read.
func copyFlushing(w http.ResponseWriter, src io.Reader) (int64, error) {
	rc := http.NewResponseController(w)
	buf := make([]byte, streamBufferSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			m, err := w.Write(buf[:n])
			written += int64(m)
			if err != nil {
				return written, err
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return written, err
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
