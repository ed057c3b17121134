package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/GuiArSt/kronus/internal/config"
)

// The gateway only serves GET and POST, so the preflight defaults stay
// narrow. Config can widen them for embedding UIs.
const (
	defaultAllowMethods = "GET, POST, OPTIONS"
	defaultAllowHeaders = "Content-Type, Authorization, X-API-Key"
	defaultMaxAgeSecs   = 3600
)

// CORSMiddleware grants listed browser origins access to the gateway.
// Header values are precomputed once at construction.
type CORSMiddleware struct {
	enabled  bool
	allowAll bool
	origins  map[string]struct{}
	methods  string
	headers  string
	maxAge   string
}

func NewCORSMiddleware(cfg config.CORSConfig) *CORSMiddleware {
	cm := &CORSMiddleware{
		enabled: cfg.Enabled,
		origins: make(map[string]struct{}, len(cfg.AllowedOrigins)),
		methods: defaultAllowMethods,
		headers: defaultAllowHeaders,
		maxAge:  strconv.Itoa(defaultMaxAgeSecs),
	}
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			cm.allowAll = true
		}
		cm.origins[origin] = struct{}{}
	}
	if len(cfg.AllowedMethods) > 0 {
		cm.methods = strings.Join(cfg.AllowedMethods, ", ")
	}
	if len(cfg.AllowedHeaders) > 0 {
		cm.headers = strings.Join(cfg.AllowedHeaders, ", ")
	}
	if cfg.MaxAge > 0 {
		cm.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return cm
}

// Wrap stamps the allow headers for listed origins and answers preflights.
// Preflights from unlisted origins get a bare 204 without allow headers.
func (cm *CORSMiddleware) Wrap(next http.Handler) http.Handler {
	if !cm.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); cm.allows(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", cm.methods)
			h.Set("Access-Control-Allow-Headers", cm.headers)
			h.Set("Access-Control-Max-Age", cm.maxAge)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (cm *CORSMiddleware) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if cm.allowAll {
		return true
	}
	_, ok := cm.origins[origin]
	return ok
}

// limitRequestBody caps request bodies so an oversized chat history fails
// fast instead of buffering unbounded.
func limitRequestBody(maxBytes int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		next.ServeHTTP(w, r)
	})
}
