package webserver

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
)

// pathVar returns the unescaped value of a Gorilla mux path variable. The router
// works with encoded paths so that IDs may contain slashes.
func pathVar(req *http.Request, name string) (string, bool) {
	val, ok := mux.Vars(req)[name]
	if !ok {
		return "", false
	}

	unescaped, err := url.PathUnescape(val)
	if err != nil {
		return val, true
	}

	return unescaped, true
}
