package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// ClientCookie identifies a browser across page loads. Persisted section
// states are scoped to it.
const ClientCookie = "ngfw_client"

type clientKey struct{}

// clientID makes sure every request carries a client id, issuing a cookie on
// first contact.
func clientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(ClientCookie); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     ClientCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey{}, id)))
	})
}

func clientFrom(r *http.Request) string {
	id, _ := r.Context().Value(clientKey{}).(string)
	return id
}
