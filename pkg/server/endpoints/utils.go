package endpoints

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/tablegate/tablegate/pkg/identity"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// requireIdentity pulls the authenticated identity from the request context.
// Writes a 401 and returns false if the middleware didn't run.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, ok := identity.Get(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return id, true
}

// requireSuperAdmin gates grant administration and tenant mutations.
// Writes a 403 and returns false for everyone else.
func requireSuperAdmin(w http.ResponseWriter, r *http.Request) (*identity.Identity, bool) {
	id, ok := requireIdentity(w, r)
	if !ok {
		return nil, false
	}
	if !id.IsSuperAdmin() {
		respondWithError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}
	return id, true
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
