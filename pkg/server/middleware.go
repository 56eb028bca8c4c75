package server

import (
	"net/http"
	"time"
)

// statusRecorder captures the status code written by the wrapped handler and
// whether the response header has gone out.
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// headerWritten reports whether w is known to have sent its header already.
func headerWritten(w http.ResponseWriter) bool {
	rw, ok := w.(*statusRecorder)
	return ok && rw.wroteHeader
}

// logging logs every HTTP request once it has been served.
func (p *AnalyzerServer) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		p.Logger.Debugw("HTTP request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start).String(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recovery turns a panic into a 500, unless the response was already sent.
func (p *AnalyzerServer) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		defer func() {
			if err := recover(); err != nil {
				if rw.wroteHeader {
					p.Logger.Errorf("Panic in HTTP handler after status %d was sent: %v", rw.statusCode, err)
					return
				}
				p.Logger.Errorf("Panic in HTTP handler: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(rw, r)
	})
}
