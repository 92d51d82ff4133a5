// Package server exposes the terminal-facing integration API and the
// administrative endpoints over HTTP.
package server

import (
	// Go Internal Packages
	"context"
	"encoding/json"
	"net/http"

	// Local Packages
	errs "pdv-bridge/errors"
	models "pdv-bridge/models"

	// External Packages
	"go.uber.org/zap"
)

type SalesProcessor interface {
	Authenticate(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	Validate(ctx context.Context, req models.ValidateRequest) (*models.ValidateResponse, error)
	Send(ctx context.Context, req models.SendRequest) (*models.SendResponse, error)
	Cancel(ctx context.Context, req models.CancelRequest) (*models.CancelResponse, error)
}

type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

type ConfigStore interface {
	Active(ctx context.Context) (*models.Configuration, error)
	Upsert(ctx context.Context, cfg *models.Configuration) error
}

type MappingStore interface {
	Active(ctx context.Context, scope models.EntityScope) ([]models.FieldMapping, error)
	List(ctx context.Context, scope models.EntityScope) ([]models.FieldMapping, error)
	Get(ctx context.Context, id string) (*models.FieldMapping, error)
	Create(ctx context.Context, rule *models.FieldMapping) error
	Update(ctx context.Context, id string, rule *models.FieldMapping) error
	Delete(ctx context.Context, id string) error
}

type TxStore interface {
	ListRecent(ctx context.Context, limit int64) ([]models.Transaction, error)
}

type LogStore interface {
	ListRecent(ctx context.Context, limit int64) ([]models.IntegrationLog, error)
}

type NotificationStore interface {
	GetSettings(ctx context.Context) (*models.NotificationSettings, error)
	UpsertSettings(ctx context.Context, settings *models.NotificationSettings) error
	ListHistory(ctx context.Context, limit int64) ([]models.NotificationHistory, error)
}

type Server struct {
	processor     SalesProcessor
	gateway       ConnectionTester
	configs       ConfigStore
	mappings      MappingStore
	txns          TxStore
	logs          LogStore
	notifications NotificationStore
	logger        *zap.Logger
}

func NewServer(processor SalesProcessor, gateway ConnectionTester, configs ConfigStore, mappings MappingStore,
	txns TxStore, logs LogStore, notifications NotificationStore, logger *zap.Logger) *Server {
	return &Server{
		processor:     processor,
		gateway:       gateway,
		configs:       configs,
		mappings:      mappings,
		txns:          txns,
		logs:          logs,
		notifications: notifications,
		logger:        logger,
	}
}

// Router wires every route. The terminal endpoints are the integration
// surface; the rest back the admin dashboard.
func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()

	// Terminal (PDV) integration surface
	mux.HandleFunc("POST /api/terminal/auth", s.handleAuth)
	mux.HandleFunc("POST /api/terminal/sale/validate", s.handleValidate)
	mux.HandleFunc("POST /api/terminal/sale/send", s.handleSend)
	mux.HandleFunc("POST /api/terminal/sale/cancel", s.handleCancel)

	// Administration
	mux.HandleFunc("GET /api/configuration", s.handleGetConfiguration)
	mux.HandleFunc("POST /api/configuration", s.handleUpsertConfiguration)
	mux.HandleFunc("POST /api/configuration/test", s.handleTestConnection)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/logs", s.handleListLogs)
	mux.HandleFunc("GET /api/field-mappings", s.handleListMappings)
	mux.HandleFunc("POST /api/field-mappings", s.handleCreateMapping)
	mux.HandleFunc("GET /api/field-mappings/active/{scope}", s.handleActiveMappings)
	mux.HandleFunc("GET /api/field-mappings/{id}", s.handleGetMapping)
	mux.HandleFunc("PUT /api/field-mappings/{id}", s.handleUpdateMapping)
	mux.HandleFunc("DELETE /api/field-mappings/{id}", s.handleDeleteMapping)
	mux.HandleFunc("POST /api/transform/preview", s.handleTransformPreview)
	mux.HandleFunc("GET /api/notifications/settings", s.handleGetNotificationSettings)
	mux.HandleFunc("POST /api/notifications/settings", s.handleUpsertNotificationSettings)
	mux.HandleFunc("GET /api/notifications/history", s.handleNotificationHistory)

	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.Invalid:
		status = http.StatusBadRequest
	case errs.Unauthorized:
		status = http.StatusUnauthorized
	case errs.NotFound:
		status = http.StatusNotFound
	case errs.Conflict:
		status = http.StatusConflict
	case errs.Unprocessable:
		status = http.StatusUnprocessableEntity
	case errs.Unavailable:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode[T any](r *http.Request) (T, error) {
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return payload, errs.InvalidBodyErr(err)
	}
	return payload, nil
}
