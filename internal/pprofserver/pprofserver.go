// Package pprofserver exposes the standard pprof handlers on a loopback-only
// side server, kept off the main listener so profiling is never reachable
// from the outside.
package pprofserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
)

// Handle registers the pprof handlers on mux.
func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

// Launch starts the pprof server on the ipv6 loopback address and the given
// port (":6060" style). It runs in the background and exits the process if
// the listener ever fails.
func Launch(port string, logger *slog.Logger) {
	mux := http.NewServeMux()
	Handle(mux)
	server := &http.Server{
		Addr:    fmt.Sprintf("[::1]%s", port),
		Handler: mux,
	}
	go func() {
		logger.Info("starting pprof server", "addr", server.Addr)
		err := server.ListenAndServe()
		logger.Error(err.Error())
		os.Exit(0)
	}()
}
