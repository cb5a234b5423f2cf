package middleware

import "net/http"

// statusRecorder captures the status code written by a handler, and the
// authenticated user for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
	userID int64
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func annotateUser(w http.ResponseWriter, userID int64) {
	if rec, ok := w.(*statusRecorder); ok {
		rec.userID = userID
	}
}
