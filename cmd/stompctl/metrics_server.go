// Copyright 2019-2021 VMware, Inc.
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vmware/stomp-transport-go/log"
	"github.com/vmware/stomp-transport-go/metrics"
)

func newMetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	router := mux.NewRouter()

	// for container orchestration layers like k8s
	router.Path("/health").Name("health").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	router.Path("/metrics").Name("metrics").Methods(http.MethodGet).Handler(
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))

	return handlers.RecoveryHandler()(handlers.CompressHandler(router))
}

// startMetricsServer serves the client metrics on addr until the server is shut down.
func startMetricsServer(addr string) (*http.Server, error) {
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return nil, err
	}
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:      newMetricsHandler(registry),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Log.Errorf("metrics server stopped: %v", err)
		}
	}()
	log.Log.Infof("serving metrics on http://%s/metrics", l.Addr())
	return srv, nil
}
