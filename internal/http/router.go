package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Evaluate http.HandlerFunc
	Live     http.HandlerFunc
	Health   http.HandlerFunc
	Metrics  http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Evaluate != nil {
		mux.Handle("/internal/sessions/evaluate", method(http.MethodPost, routes.Evaluate))
	}
	if routes.Live != nil {
		mux.Handle("/ws/live", method(http.MethodGet, routes.Live))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", routes.Metrics)
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
