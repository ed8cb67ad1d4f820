package routehandlers

import (
	"fmt"
	"net/http"

	"github.com/evolvetech/opsdash/webutil"
)

// ServePage returns a handler for one of the dashboard shell pages. The real
// interface is a client-side bundle; these minimal pages exist so the route
// guard has concrete paths to gate.
func ServePage(title string) http.HandlerFunc {
	body := fmt.Sprintf("<!DOCTYPE html><html><head><title>%s</title></head><body><div id=\"root\"></div></body></html>", title)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeHTMLUTF8)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}
