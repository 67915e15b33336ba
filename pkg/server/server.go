/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/arielsmarin/straty-backend-stable/pkg/config"
	"github.com/arielsmarin/straty-backend-stable/pkg/handlers"
	commonklog "github.com/arielsmarin/straty-backend-stable/pkg/klog"
	"github.com/arielsmarin/straty-backend-stable/pkg/options"
)

type Server struct {
	opts       *options.Options
	httpServer *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
	isInited   bool
}

// NewServer creates and returns a new Server instance.
func NewServer() (*Server, error) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	s := &Server{
		opts:   &options.Options{},
		ctx:    ctx,
		cancel: cancel,
	}
	if err := s.init(); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// init performs the initial setup of the server including flag parsing,
// logging initialization and configuration loading.
func (s *Server) init() error {
	gin.SetMode(gin.ReleaseMode)
	var err error
	if err = s.opts.InitFlags(); err != nil {
		klog.ErrorS(err, "failed to parse flags")
		return err
	}
	if err = s.initLogs(); err != nil {
		klog.ErrorS(err, "failed to init logs")
		return err
	}
	if err = s.initConfig(); err != nil {
		klog.ErrorS(err, "failed to init config")
		return err
	}
	s.isInited = true
	return nil
}

// Start begins the server operation by starting the HTTP server in a
// separate goroutine. It waits for a signal to stop and then calls Stop
// to shut down services.
func (s *Server) Start() {
	if !s.isInited {
		klog.Errorf("please init the server first")
		return
	}
	gin.EnableJsonDecoderDisallowUnknownFields()

	klog.Infof("starting panoconfig360 backend")
	go func() {
		if err := s.startHttpServer(); err != nil && err != http.ErrServerClosed {
			klog.ErrorS(err, "failed to start http-server")
			os.Exit(-1)
		}
	}()

	<-s.ctx.Done()
	s.Stop()
}

// Stop gracefully shuts down the HTTP server and flushes logs.
func (s *Server) Stop() {
	defer s.cancel()
	klog.Info("shutting down http server...")
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			klog.ErrorS(err, "failed to shutdown httpserver")
		}
	}
	klog.Info("backend is stopped")
	klog.Flush()
}

// initLogs initializes the logging system with the specified log file path and size.
func (s *Server) initLogs() error {
	return commonklog.Init(s.opts.LogfilePath, s.opts.LogFileSize)
}

// initConfig loads the server configuration from the specified config file path.
func (s *Server) initConfig() error {
	fullPath, err := filepath.Abs(s.opts.Config)
	if err != nil {
		return err
	}
	if err = config.LoadConfig(fullPath); err != nil {
		return fmt.Errorf("config path: %s, err: %v", fullPath, err)
	}
	return nil
}

// startHttpServer initializes and starts the HTTP server. It sets up the
// HTTP handlers, configures the server address based on the configured
// port, and starts listening for HTTP requests.
func (s *Server) startHttpServer() error {
	if config.GetServerPort() <= 0 {
		return fmt.Errorf("the server port is not defined")
	}
	handler, err := handlers.InitHttpHandlers(s.ctx)
	if err != nil {
		return err
	}
	addr := fmt.Sprintf(":%d", config.GetServerPort())
	s.httpServer = &http.Server{Addr: addr, Handler: handler}
	klog.Infof("http-server listen port: %d", config.GetServerPort())
	return s.httpServer.ListenAndServe()
}
