package server

import (
	// Go Internal Packages
	"net/http"

	// Local Packages
	errs "pdv-bridge/errors"
	models "pdv-bridge/models"
	transform "pdv-bridge/services/transform"
)

func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.configs.Active(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if cfg == nil {
		// An unconfigured system answers with an empty default profile.
		cfg = &models.Configuration{Name: "default", GatewayCurrency: "643", Active: true}
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpsertConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := decode[models.Configuration](r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.configs.Upsert(r.Context(), &cfg); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	if err := s.gateway.TestConnection(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "gateway connection successful"})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := s.txns.ListRecent(r.Context(), 100)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.logs.ListRecent(r.Context(), 200)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListMappings(w http.ResponseWriter, r *http.Request) {
	scope := models.EntityScope(r.URL.Query().Get("scope"))
	rules, err := s.mappings.List(r.Context(), scope)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleActiveMappings(w http.ResponseWriter, r *http.Request) {
	scope := models.EntityScope(r.PathValue("scope"))
	rules, err := s.mappings.Active(r.Context(), scope)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	rule, err := s.mappings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rule == nil {
		s.writeError(w, errs.E(errs.NotFound, "field mapping not found", nil))
		return
	}
	s.writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	rule, err := decode[models.FieldMapping](r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rule.TargetField == "" {
		s.writeError(w, errs.EmptyParamErr("targetField"))
		return
	}
	if err := s.mappings.Create(r.Context(), &rule); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleUpdateMapping(w http.ResponseWriter, r *http.Request) {
	rule, err := decode[models.FieldMapping](r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.mappings.Update(r.Context(), r.PathValue("id"), &rule); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	if err := s.mappings.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type transformPreviewRequest struct {
	Products    []map[string]any `json:"products"`
	Transaction map[string]any   `json:"transaction"`
}

// handleTransformPreview applies the configured rules to a sample payload
// without touching the gateway, so administrators can inspect mapping
// output before going live.
func (s *Server) handleTransformPreview(w http.ResponseWriter, r *http.Request) {
	req, err := decode[transformPreviewRequest](r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	productRules, err := s.mappings.Active(r.Context(), models.ScopeProduct)
	if err != nil {
		s.writeError(w, err)
		return
	}
	txnRules, err := s.mappings.Active(r.Context(), models.ScopeTransaction)
	if err != nil {
		s.writeError(w, err)
		return
	}

	products := make([]map[string]string, len(req.Products))
	for i, product := range req.Products {
		products[i] = transform.Apply(product, productRules)
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"products":    products,
		"transaction": transform.Apply(req.Transaction, txnRules),
	})
}

func (s *Server) handleGetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.notifications.GetSettings(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpsertNotificationSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := decode[models.NotificationSettings](r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.notifications.UpsertSettings(r.Context(), &settings); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleNotificationHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.notifications.ListHistory(r.Context(), 100)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}
