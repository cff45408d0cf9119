package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer; nil disables request logs.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// default request log level, read once
var defaultLogLevel = func() LogLevel {
	if v := os.Getenv("MLSERVED_REQUEST_LOG"); v != "" {
		return parseLevel(v)
	}
	return LevelInfo
}()

// SetRequestLogLevel overrides the default per-request log level.
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// RequestLogger logs one line per request once it has been served. Errors
// (status >= 500) are logged from LevelError, everything else from
// LevelInfo.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lvl := requestLogLevel(r)
		if zlog == nil || lvl == LevelOff {
			next.ServeHTTP(w, r)
			return
		}
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)

		var ev *zerolog.Event
		switch {
		case sr.status >= 500:
			ev = zlog.Error()
		case lvl >= LevelInfo:
			ev = zlog.Info()
		default:
			return
		}
		ev = ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", routePatternOrPath(r)).
			Int("status", sr.status).
			Dur("dur", time.Since(start))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			ev = ev.Str("request_id", rid)
		}
		if lvl >= LevelDebug {
			ev = ev.Str("query", r.URL.RawQuery)
		}
		ev.Msg("request")
	})
}
