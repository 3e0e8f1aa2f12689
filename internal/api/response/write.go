package response

import (
	"encoding/json"
	"net/http"
)

// ContentTypeJSON is sent with every JSON body
const ContentTypeJSON = "application/json; charset=utf-8"

// JSON writes data as a JSON response. Names are written as-is, so member
// lists keep characters like "&" unescaped for the launchers reading them.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// Document writes a published launcher document. Launchers must always see the
// latest upload, so intermediaries are told not to cache it.
func Document(w http.ResponseWriter, doc any) {
	w.Header().Set("Cache-Control", "no-store")
	JSON(w, http.StatusOK, doc)
}
