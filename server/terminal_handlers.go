package server

import (
	// Go Internal Packages
	"net/http"

	// Local Packages
	models "pdv-bridge/models"
)

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	req, err := decode[models.AuthRequest](r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.processor.Authenticate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := decode[models.ValidateRequest](r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.processor.Validate(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	req, err := decode[models.SendRequest](r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.processor.Send(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	req, err := decode[models.CancelRequest](r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.processor.Cancel(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
