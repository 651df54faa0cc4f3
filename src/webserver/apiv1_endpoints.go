package webserver

import "net/http"

// The following are URL Path endpoints for certain API calls.
const (
	APIv1EndpointArtwork     = "/v1/artwork/{entityID}/{rendition}"
	APIv1EndpointFetchEntity = "/v1/artwork/{entityID}"
	APIv1EndpointProcessAll  = "/v1/artwork"
)

// APIv1Methods defines on which HTTP methods APIv1 endpoints will respond to.
// It is an uri_path => list of HTTP methods map.
var APIv1Methods = map[string][]string{
	APIv1EndpointArtwork:     {http.MethodGet, http.MethodHead},
	APIv1EndpointFetchEntity: {http.MethodPost},
	APIv1EndpointProcessAll:  {http.MethodPost},
}
