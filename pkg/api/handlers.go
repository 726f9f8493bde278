package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/errors"
	mhio "github.com/matzehuels/modhouse/pkg/io"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// CreateRequest is the body of POST /houses.
type CreateRequest struct {
	mhio.HouseType
	Clip []string `json:"clip,omitempty"`
}

// ClipRequest is the body of PUT /houses/{id}/clip.
type ClipRequest struct {
	Planes []string `json:"planes"`
}

// HandlesRequest is the body of PUT /houses/{id}/handles.
type HandlesRequest struct {
	Visible bool `json:"visible"`
}

// StretchRequest is the body of the stretch routes. Side is read by start,
// Delta by progress.
type StretchRequest struct {
	Side  string  `json:"side,omitempty"`
	Delta float64 `json:"delta,omitempty"`
}

// HouseResponse is returned by every route that touches one house.
type HouseResponse struct {
	House *mhio.Snapshot      `json:"house"`
	Swaps []stretch.SwapEvent `json:"swaps,omitempty"`
}

// ListResponse is the body of GET /houses.
type ListResponse struct {
	Houses []string `json:"houses"`
}

func (s *Server) createHouse(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.HouseType.Validate(); err != nil {
		writeError(w, err)
		return
	}
	clip, err := cut.ParseSettings(req.Clip)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := s.Create(r.Context(), req.HouseType, clip)
	if err != nil {
		writeError(w, err)
		return
	}
	s.withHouse(w, r, id, http.StatusCreated, func(*entry) error { return nil })
}

func (s *Server) listHouses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse{Houses: s.IDs()})
}

func (s *Server) getHouse(w http.ResponseWriter, r *http.Request) {
	s.withHouse(w, r, chi.URLParam(r, "id"), http.StatusOK, func(*entry) error { return nil })
}

func (s *Server) deleteHouse(w http.ResponseWriter, r *http.Request) {
	if err := s.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setClip(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	settings, err := cut.ParseSettings(req.Planes)
	if err != nil {
		writeError(w, err)
		return
	}
	s.withHouse(w, r, chi.URLParam(r, "id"), http.StatusOK, func(e *entry) error {
		return e.house.SetClip(settings)
	})
}

func (s *Server) setHandles(w http.ResponseWriter, r *http.Request) {
	var req HandlesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s.withHouse(w, r, chi.URLParam(r, "id"), http.StatusOK, func(e *entry) error {
		if req.Visible {
			e.house.ShowHandles()
		} else {
			e.house.HideHandles()
		}
		return nil
	})
}

func (s *Server) stretch(w http.ResponseWriter, r *http.Request) {
	axis, err := stretch.ParseAxis(chi.URLParam(r, "axis"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req StretchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	action := chi.URLParam(r, "action")
	s.withHouse(w, r, chi.URLParam(r, "id"), http.StatusOK, func(e *entry) error {
		eng, err := e.house.Engine(axis)
		if err != nil {
			return err
		}
		switch action {
		case "start":
			side, err := stretch.ParseSide(req.Side)
			if err != nil {
				return err
			}
			return eng.GestureStart(side)
		case "progress":
			return eng.GestureProgress(req.Delta)
		case "end":
			return eng.GestureEnd(r.Context())
		default:
			return errors.New(errors.ErrCodeNotFound, "unknown stretch action %q", action)
		}
	})
}

// withHouse runs fn under the house lock and writes the resulting snapshot
// together with the swap events fn produced.
func (s *Server) withHouse(w http.ResponseWriter, r *http.Request, id string, status int, fn func(*entry) error) {
	e, err := s.lookup(id)
	if err != nil {
		writeError(w, err)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.house == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "house %s not found", id))
		return
	}

	err = fn(e)
	swaps := e.drain()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, HouseResponse{House: e.house.Snapshot(), Swaps: swaps})
}

// decode reads an optional JSON body into v. Empty bodies leave v zero.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}
