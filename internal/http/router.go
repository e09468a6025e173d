package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Reservations *ReservationHandler
	Directory    *DirectoryHandler
	Users        *UserHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Directory != nil {
		mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Directory.ListRooms(w, r)
		})
		mux.HandleFunc("/study-groups", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Directory.ListStudyGroups(w, r)
		})
	}

	mux.HandleFunc("/rooms/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/rooms/")
		parts := strings.SplitN(rest, "/", 3)

		switch {
		case len(parts) == 1 && parts[0] != "":
			// /rooms/{roomID}
			if cfg.Directory == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithRoomID(r.Context(), parts[0]))
			cfg.Directory.GetRoom(w, r)
		case len(parts) == 2 && parts[1] == "reservations":
			// /rooms/{roomID}/reservations
			if cfg.Reservations == nil {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithRoomID(r.Context(), parts[0]))
			cfg.Reservations.List(w, r)
		case len(parts) == 3 && parts[1] == "reservations" && parts[2] != "":
			// /rooms/{roomID}/reservations/{reservationID}
			if cfg.Reservations == nil {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithRoomID(r.Context(), parts[0])
			ctx = ContextWithReservationID(ctx, parts[2])
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Reservations.Get(w, r)
			case http.MethodPut:
				cfg.Reservations.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		default:
			http.NotFound(w, r)
		}
	})

	if cfg.Reservations != nil {
		mux.HandleFunc("/study-groups/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/study-groups/")
			parts := strings.Split(rest, "/")
			// /study-groups/{groupID}/rooms/{roomID}/reservations
			if len(parts) != 4 || parts[1] != "rooms" || parts[3] != "reservations" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			ctx := ContextWithGroupID(r.Context(), parts[0])
			ctx = ContextWithRoomID(ctx, parts[2])
			cfg.Reservations.Create(w, r.WithContext(ctx))
		})

		mux.HandleFunc("/reservations/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/reservations/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			r = r.WithContext(ContextWithReservationID(r.Context(), id))
			cfg.Reservations.Delete(w, r)
		})
	}

	if cfg.Users != nil {
		mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Users.SignUp(w, r)
		})
		mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/users/")
			parts := strings.SplitN(rest, "/", 2)

			switch {
			case len(parts) == 1 && parts[0] != "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				r = r.WithContext(ContextWithUserID(r.Context(), parts[0]))
				cfg.Users.Get(w, r)
			case len(parts) == 2 && parts[1] == "reservations":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				r = r.WithContext(ContextWithUserID(r.Context(), parts[0]))
				cfg.Users.ListReservations(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
