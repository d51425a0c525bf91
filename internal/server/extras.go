package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"momentum/internal/model"
	"momentum/internal/service"
)

// The auxiliary entities share one CRUD shape over the document store.

func (s *Server) docRoutes() {
	registerDocRoutes(s, "/api/filters", s.filters,
		func(f *model.SavedFilter, id string, now time.Time) {
			f.ID = id
			if f.CreatedAt.IsZero() {
				f.CreatedAt = now
			}
		},
		func(f model.SavedFilter) error { return f.Validate() },
	)
	registerDocRoutes(s, "/api/custom-fields", s.fields,
		func(d *model.CustomFieldDefinition, id string, now time.Time) {
			d.ID = id
			if d.CreatedAt.IsZero() {
				d.CreatedAt = now
			}
		},
		func(d model.CustomFieldDefinition) error { return d.Validate() },
	)
	registerDocRoutes(s, "/api/boards", s.boards,
		func(b *model.StickyBoard, id string, now time.Time) {
			b.ID = id
			if b.CreatedAt.IsZero() {
				b.CreatedAt = now
			}
		},
		func(b model.StickyBoard) error { return b.Validate() },
	)
	registerDocRoutes(s, "/api/sticky-notes", s.sticky,
		func(n *model.StickyNote, id string, now time.Time) {
			n.ID = id
			if n.CreatedAt.IsZero() {
				n.CreatedAt = now
			}
		},
		func(n model.StickyNote) error { return n.Validate() },
	)
	registerDocRoutes(s, "/api/quick-links", s.links,
		func(l *model.QuickLink, id string, now time.Time) {
			l.ID = id
			if l.CreatedAt.IsZero() {
				l.CreatedAt = now
			}
		},
		func(l model.QuickLink) error { return l.Validate() },
	)
}

func registerDocRoutes[T any](s *Server, prefix string, store *service.DocStore[T], stamp func(*T, string, time.Time), validate func(T) error) {
	s.mux.HandleFunc("GET "+prefix, func(w http.ResponseWriter, r *http.Request) {
		items, err := store.List(r.Context())
		if err != nil {
			s.respondErr(w, err)
			return
		}
		s.respond(w, http.StatusOK, items)
	})
	s.mux.HandleFunc("POST "+prefix, func(w http.ResponseWriter, r *http.Request) {
		var v T
		if !s.decode(w, r, &v) {
			return
		}
		stamp(&v, uuid.NewString(), time.Now())
		if err := validate(v); err != nil {
			s.respondErr(w, err)
			return
		}
		id := docID(&v)
		if err := store.Save(r.Context(), id, v); err != nil {
			s.respondErr(w, err)
			return
		}
		s.respond(w, http.StatusCreated, v)
	})
	s.mux.HandleFunc("GET "+prefix+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		v, err := store.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			s.respondErr(w, err)
			return
		}
		s.respond(w, http.StatusOK, v)
	})
	s.mux.HandleFunc("PUT "+prefix+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		var v T
		if !s.decode(w, r, &v) {
			return
		}
		id := r.PathValue("id")
		if _, err := store.Get(r.Context(), id); err != nil {
			s.respondErr(w, err)
			return
		}
		stamp(&v, id, time.Now())
		if err := validate(v); err != nil {
			s.respondErr(w, err)
			return
		}
		if err := store.Save(r.Context(), id, v); err != nil {
			s.respondErr(w, err)
			return
		}
		s.respond(w, http.StatusOK, v)
	})
	s.mux.HandleFunc("DELETE "+prefix+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(r.Context(), r.PathValue("id")); err != nil {
			s.respondErr(w, err)
			return
		}
		s.respond(w, http.StatusNoContent, nil)
	})
}

// docID pulls the ID the stamp function just assigned.
func docID[T any](v *T) string {
	switch t := any(v).(type) {
	case *model.SavedFilter:
		return t.ID
	case *model.CustomFieldDefinition:
		return t.ID
	case *model.StickyBoard:
		return t.ID
	case *model.StickyNote:
		return t.ID
	case *model.QuickLink:
		return t.ID
	default:
		return ""
	}
}
