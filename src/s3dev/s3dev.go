// Package s3dev is a tiny local stand-in for S3, for archiving during
// development and in tests.
package s3dev

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"git.handmade.network/hmn/pngscope/src/logging"
)

/*
NewHandler serves just enough of the path-style S3 API for archiving: PUT
of a bucket creates it, PUT of a key stores an object, GET of a key reads it
back. Buckets are directories under targetFolder. Writing into a bucket that
doesn't exist fails with NoSuchBucket, the same as real S3.
*/
func NewHandler(targetFolder string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket, key := bucketKey(r)
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "IncompleteBody", err.Error())
			return
		}
		logging.Debug().
			Str("bucket", bucket).
			Str("key", key).
			Str("method", r.Method).
			Int("len", len(bodyBytes)).
			Msg("local s3 request")

		bucketDir := filepath.Join(targetFolder, bucket)
		switch r.Method {
		case http.MethodPut:
			if key == "" {
				if err := os.MkdirAll(bucketDir, fs.ModePerm); err != nil {
					writeError(w, http.StatusInternalServerError, "InternalError", err.Error())
					return
				}
				w.Header().Set("Location", fmt.Sprintf("/%s", bucket))
				return
			}
			if _, err := os.Stat(bucketDir); errors.Is(err, fs.ErrNotExist) {
				writeError(w, http.StatusNotFound, "NoSuchBucket", "The specified bucket does not exist")
				return
			}
			if err := os.WriteFile(filepath.Join(bucketDir, key), bodyBytes, 0644); err != nil {
				writeError(w, http.StatusInternalServerError, "InternalError", err.Error())
				return
			}
		case http.MethodGet:
			fileBytes, err := os.ReadFile(filepath.Join(bucketDir, key))
			if err != nil {
				writeError(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist")
				return
			}
			w.Write(fileBytes)
		default:
			writeError(w, http.StatusNotImplemented, "NotImplemented", r.Method+" is not implemented")
		}
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, message)
}

// Keys are flattened into one file per object; slashes become tildes.
func bucketKey(r *http.Request) (string, string) {
	slashIdx := strings.IndexByte(r.URL.Path[1:], '/')
	if slashIdx == -1 {
		return r.URL.Path[1:], ""
	} else {
		return r.URL.Path[1 : 1+slashIdx], strings.Replace(r.URL.Path[2+slashIdx:], "/", "~", -1)
	}
}
