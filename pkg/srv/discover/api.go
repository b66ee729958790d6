/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// go-advatek discover API
//
// RESTful APIs to list Advatek pixel controllers found on the network.
// The swagger document is served at /swagger.json and rendered at /docs.
package discover

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-advatek/pkg/config"
	"jinr.ru/greenlab/go-advatek/pkg/discover"
	"jinr.ru/greenlab/go-advatek/pkg/log"
	"jinr.ru/greenlab/go-advatek/pkg/metrics"
	"jinr.ru/greenlab/go-advatek/pkg/srv/discover/ifc"
)

//go:embed swagger.json
var swaggerJSON []byte

const shutdownTimeout = 5 * time.Second

// Status is the body of every response that does not carry devices
type Status struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

type ApiServer struct {
	*config.ApiConfig
	*mux.Router
	discover ifc.DiscoverServer
	metrics  *metrics.Metrics
	doc      *loads.Document
}

var _ ifc.ApiServer = &ApiServer{}

func NewApiServer(cfg *config.ApiConfig, discover ifc.DiscoverServer, m *metrics.Metrics) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.Address, cfg.Port)

	doc, err := loads.Analyzed(json.RawMessage(swaggerJSON), "")
	if err != nil {
		return nil, fmt.Errorf("loading swagger document: %w", err)
	}

	s := &ApiServer{
		ApiConfig: cfg,
		discover:  discover,
		metrics:   m,
		doc:       doc,
	}
	s.configureRouter()
	return s, nil
}

// Handler returns the router wrapped with access logging, panic recovery and the docs page
func (s *ApiServer) Handler() http.Handler {
	docs := middleware.Redoc(middleware.RedocOpts{
		BasePath: "/",
		Path:     "docs",
		SpecURL:  "/swagger.json",
		Title:    s.doc.Spec().Info.Title,
	}, s.Router)
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(log.StdLogger()), handlers.PrintRecoveryStack(true))
	return recovery(handlers.LoggingHandler(log.Writer(), docs))
}

// Run serves the API until the context is done
func (s *ApiServer) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.Address, fmt.Sprintf("%d", s.Port))
	log.Info("Starting API server: address: %s", addr)
	httpServer := &http.Server{
		Handler:  s.Handler(),
		Addr:     addr,
		ErrorLog: log.StdLogger(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error while shutting down API server: %s", err)
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/devices", s.handleDevices()).Methods("GET")
	subRouter.HandleFunc("/devices/{mac}", s.handleDevice()).Methods("GET")
	subRouter.HandleFunc("/devices/{mac}", s.handleDeleteDevice()).Methods("DELETE")
	subRouter.HandleFunc("/poll", s.handlePoll()).Methods("POST")
	s.Router.HandleFunc("/swagger.json", s.handleSwagger()).Methods("GET")
	if s.metrics != nil {
		s.Router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

func writeStatus(w http.ResponseWriter, code int, err error) {
	status := Status{Code: code}
	if err != nil {
		status.Message = err.Error()
	}
	writeJSON(w, code, status)
}

func errorCode(err error) int {
	var notFound discover.ErrDeviceNotFound
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// normalizeMac accepts any MAC notation net.ParseMAC does and returns the stored form
func normalizeMac(mac string) (string, error) {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return "", err
	}
	return hw.String(), nil
}

func (s *ApiServer) handleDevices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling devices request")
		devices, err := s.discover.GetAllDevices()
		if err != nil {
			writeStatus(w, http.StatusBadGateway, err)
			return
		}
		writeJSON(w, http.StatusOK, devices)
	}
}

func (s *ApiServer) handleDevice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling device request: device: %s", vars["mac"])
		mac, err := normalizeMac(vars["mac"])
		if err != nil {
			writeStatus(w, http.StatusBadRequest, err)
			return
		}
		device, err := s.discover.GetDevice(mac)
		if err != nil {
			writeStatus(w, errorCode(err), err)
			return
		}
		writeJSON(w, http.StatusOK, device)
	}
}

func (s *ApiServer) handleDeleteDevice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling delete device request: device: %s", vars["mac"])
		mac, err := normalizeMac(vars["mac"])
		if err != nil {
			writeStatus(w, http.StatusBadRequest, err)
			return
		}
		if err := s.discover.DeleteDevice(mac); err != nil {
			writeStatus(w, errorCode(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *ApiServer) handlePoll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling poll request")
		err := s.discover.TriggerPoll()
		switch {
		case errors.As(err, &ErrRateLimited{}):
			writeStatus(w, http.StatusTooManyRequests, err)
		case err != nil:
			writeStatus(w, http.StatusBadGateway, err)
		default:
			writeStatus(w, http.StatusAccepted, nil)
		}
	}
}

func (s *ApiServer) handleSwagger() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(s.doc.Raw())
	}
}
