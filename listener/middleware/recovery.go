package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// internalErrorBody matches the error envelope of the configuration API.
const internalErrorBody = `{"error":"internal server error"}`

// recoveryWriter tracks whether the response has started.
type recoveryWriter struct {
	http.ResponseWriter

	written bool
}

func (w *recoveryWriter) WriteHeader(code int) {
	if code >= http.StatusOK {
		w.written = true
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *recoveryWriter) Write(b []byte) (int, error) {
	w.written = true

	return w.ResponseWriter.Write(b) //nolint:wrapcheck
}

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (w *recoveryWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Recovery recovers from panics in downstream handlers, logs the panic with its stack
// and answers 500 with a JSON error body. When the response has already started only
// the log entry is written. http.ErrAbortHandler is re-panicked.
// A nil logger means slog.Default().
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recWriter := &recoveryWriter{ResponseWriter: w, written: false}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				attrs := []slog.Attr{
					slog.String("panic", fmt.Sprintf("%v", rec)),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				}

				if reqID := GetRequestID(r.Context()); reqID != "" {
					attrs = append(attrs, slog.String("request_id", reqID))
				}

				if recWriter.written {
					attrs = append(attrs, slog.Bool("response_already_written", true))
					loggerOrDefault(logger).LogAttrs(r.Context(), slog.LevelError,
						"panic recovered after response was already written", attrs...)

					return
				}

				loggerOrDefault(logger).LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

				recWriter.Header().Set("Content-Type", "application/json")
				recWriter.WriteHeader(http.StatusInternalServerError)
				_, _ = recWriter.Write([]byte(internalErrorBody))
			}()

			next.ServeHTTP(recWriter, r)
		})
	}
}
