package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	clientdist "github.com/vango-dev/mvu/client/dist"
)

// asset is an embedded file served with a content-hash ETag. Its URL is not
// versioned, so browsers revalidate on every load.
type asset struct {
	body        []byte
	etag        string
	contentType string
}

func newAsset(body []byte, contentType string) *asset {
	return &asset{
		body:        body,
		etag:        strconv.Quote(strconv.FormatUint(xxhash.Sum64(body), 36)),
		contentType: contentType,
	}
}

var thinClient = newAsset(clientdist.MvuJS, "application/javascript; charset=utf-8")

func (a *asset) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(a.body) == 0 {
		http.Error(w, "asset not available", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("ETag", a.etag)
	h.Set("Content-Type", a.contentType)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "public, max-age=0, must-revalidate")

	if etagMatches(r.Header.Get("If-None-Match"), a.etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	h.Set("Content-Length", strconv.Itoa(len(a.body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(a.body)
	}
}

// etagMatches applies the weak comparison of If-None-Match: a listed tag
// matches with or without its W/ prefix, and "*" matches anything.
func etagMatches(header, etag string) bool {
	if etag == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
