// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package inspector

import (
	"context"
	gosql "database/sql"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/pingcap/schema-inspector/pkg/catalog"
	"github.com/pingcap/schema-inspector/pkg/util"
	"github.com/pingcap/schema-inspector/pkg/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soheilhy/cmux"
	"github.com/unrolled/render"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	serviceName = "schema-inspector"

	pingRetryCount      = 10
	pingRetryInterval   = 200 * time.Millisecond
	gracefulStopTimeout = 10 * time.Second
	poolWaitLogInterval = time.Minute
)

// Store the function in a variable so that we can mock it when testing
var openCatalog = catalog.Open

// Server serves the tools over HTTP and the health service over gRPC on one port.
type Server struct {
	cfg *Config

	catalog    *catalog.Client
	inspector  *Inspector
	dispatcher *Dispatcher

	gs      *grpc.Server
	health  *health.Server
	httpSrv *http.Server
	rd      *render.Render

	metrics        *util.MetricClient
	pool           *poolCollector
	poolRegistered bool
	poolLog        *util.Log
	poolStats      func() gosql.DBStats
	// pool wait count seen by the last request
	lastWaitCount int64

	mu  sync.Mutex
	lis net.Listener

	ctx      context.Context
	cancel   context.CancelFunc
	isClosed int32
}

// NewServer opens the catalog pool and prepares the listeners' handlers.
// Nothing is served until Run.
func NewServer(cfg *Config) (*Server, error) {
	cat, err := openCatalog(cfg.DSN,
		catalog.MaxOpenConns(cfg.MaxOpenConns),
		catalog.MaxIdleConns(cfg.MaxIdleConns),
		catalog.ConnMaxLifetime(cfg.connMaxLifetime),
		catalog.Metrics(queryHistogramVec),
	)
	if err != nil {
		return nil, errors.Trace(err)
	}

	s := &Server{
		cfg:       cfg,
		catalog:   cat,
		rd:        render.New(render.Options{IndentJSON: true}),
		pool:      newPoolCollector(cat.Stats),
		poolLog:   util.NewLog(),
		poolStats: cat.Stats,
		health:    health.NewServer(),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.inspector = NewInspector(cat, cfg.queryTimeout)
	s.dispatcher = NewDispatcher(s.inspector)
	s.poolLog.Add("pool", poolWaitLogInterval)

	if err := Registry.Register(s.pool); err != nil {
		log.Warn("register pool collector failed", zap.Error(err))
	} else {
		s.poolRegistered = true
	}

	// the listener terminates tls for both gRPC and HTTP, so grpc gets no creds
	s.gs = grpc.NewServer()
	healthpb.RegisterHealthServer(s.gs, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_NOT_SERVING)

	s.httpSrv = &http.Server{Handler: s.Handler()}

	if cfg.MetricsAddr != "" && cfg.MetricsInterval != 0 {
		s.metrics = util.NewMetricClient(cfg.MetricsAddr, cfg.MetricsJob,
			time.Duration(cfg.MetricsInterval)*time.Second,
			map[string]string{"instance": cfg.MetricsInstance}, Registry)
	}

	return s, nil
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/tools", s.ListTools).Methods("GET")
	router.HandleFunc("/tools/call", s.CallTool).Methods("POST")
	router.HandleFunc("/tables", s.Tables).Methods("GET")
	router.HandleFunc("/tables/{name}/schema", s.TableSchema).Methods("GET")
	router.HandleFunc("/status", s.Status).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.rd.JSON(w, http.StatusNotFound, util.NotFoundResponsef("route %s %s", r.Method, r.URL.Path))
	})
	return router
}

// Run serves until Close is called or one of the listeners fails.
func (s *Server) Run() error {
	lis, err := util.Listen("tcp", s.cfg.ListenAddr, s.cfg.tls)
	if err != nil {
		return errors.Trace(err)
	}
	if s.cfg.MaxConnections > 0 {
		lis = netutil.LimitListener(lis, s.cfg.MaxConnections)
	}
	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()
	if atomic.LoadInt32(&s.isClosed) == 1 {
		lis.Close()
		return nil
	}

	// grpc and http will use the same tcp connection
	m := cmux.New(lis)
	// sets a timeout for the read of matchers
	m.SetReadTimeout(time.Second * 10)
	// grpc-go clients wait for the server SETTINGS frame before sending headers
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.HTTP1Fast())

	eg, ctx := errgroup.WithContext(s.ctx)
	eg.Go(func() error {
		return ignoreClosed(s.gs.Serve(grpcL))
	})
	eg.Go(func() error {
		return ignoreClosed(s.httpSrv.Serve(httpL))
	})
	eg.Go(func() error {
		return ignoreClosed(m.Serve())
	})
	eg.Go(func() error {
		s.markServing(ctx)
		return nil
	})
	if s.metrics != nil {
		eg.Go(func() error {
			log.Info("start metricClient")
			s.metrics.Start(ctx)
			log.Info("startMetrics exit")
			return nil
		})
	}
	// a failing listener stops the others
	eg.Go(func() error {
		<-ctx.Done()
		s.Close()
		return nil
	})

	log.Info("start to server request", zap.String("addr", lis.Addr().String()),
		zap.String("max-request-size", util.HumanizeBytes(s.cfg.maxRequestSize)))
	return errors.Trace(eg.Wait())
}

// Addr returns the address being served, nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	return s.lis.Addr()
}

func (s *Server) markServing(ctx context.Context) {
	err := util.RetryContext(ctx, pingRetryCount, pingRetryInterval, 2, s.catalog.Ping)
	if err != nil {
		log.Error("database is unreachable, health stays NOT_SERVING", zap.Error(err))
		return
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	log.Info("database is reachable", zap.String("dialect", s.catalog.Dialect().Name))
}

func ignoreClosed(err error) error {
	if err == nil || err == http.ErrServerClosed || err == grpc.ErrServerStopped ||
		err == cmux.ErrListenerClosed || err == cmux.ErrServerClosed {
		return nil
	}
	if strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}
	return err
}

// ServerInfo is the answer of the tool discovery endpoint.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Tools   []Tool `json:"tools"`
}

// ListTools exposes the tool descriptors to HTTP handler.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	s.rd.JSON(w, http.StatusOK, &ServerInfo{
		Name:    serviceName,
		Version: version.ReleaseVersion,
		Tools:   s.dispatcher.Tools(),
	})
}

// CallTool runs the tool named in the request body. Tool failures are
// reported inside the result with status 200.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.maxRequestSize))
	var call ToolCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		s.rd.JSON(w, http.StatusBadRequest, util.WrongParameterResponsef("invalid tool call: %v", err))
		return
	}

	res := s.dispatcher.Call(r.Context(), call)
	s.checkPoolWait()
	s.rd.JSON(w, http.StatusOK, res)
}

// Tables lists the tables.
func (s *Server) Tables(w http.ResponseWriter, r *http.Request) {
	names, err := s.inspector.ListTables(r.Context())
	s.checkPoolWait()
	if err != nil {
		s.rd.JSON(w, http.StatusInternalServerError, util.ErrResponsef("Database error: %v", err))
		return
	}
	s.rd.JSON(w, http.StatusOK, util.SuccessResponse("list tables success", names))
}

// TableSchema returns the schema of one table.
func (s *Server) TableSchema(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	ts, err := s.inspector.GetSchema(r.Context(), name)
	s.checkPoolWait()
	if err != nil {
		s.rd.JSON(w, http.StatusInternalServerError, util.ErrResponsef("Error getting schema for table %s: %v", name, err))
		return
	}
	s.rd.JSON(w, http.StatusOK, util.SuccessResponse("get schema success", ts))
}

// PoolStatus is the state of the connection pool.
type PoolStatus struct {
	MaxOpenConnections int    `json:"max_open_connections"`
	OpenConnections    int    `json:"open_connections"`
	InUse              int    `json:"in_use"`
	Idle               int    `json:"idle"`
	WaitCount          int64  `json:"wait_count"`
	WaitDuration       string `json:"wait_duration"`
}

// HTTPStatus is the answer of the status endpoint.
type HTTPStatus struct {
	Version version.Info `json:"version"`
	Dialect string       `json:"dialect"`
	Pool    PoolStatus   `json:"pool"`
}

// Status exposes the build and pool status to HTTP handler.
func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	st := s.poolStats()
	s.rd.JSON(w, http.StatusOK, &HTTPStatus{
		Version: version.GetInfo(),
		Dialect: s.catalog.Dialect().Name,
		Pool: PoolStatus{
			MaxOpenConnections: st.MaxOpenConnections,
			OpenConnections:    st.OpenConnections,
			InUse:              st.InUse,
			Idle:               st.Idle,
			WaitCount:          st.WaitCount,
			WaitDuration:       st.WaitDuration.String(),
		},
	})
}

// checkPoolWait warns, at most once per interval, when requests had to
// wait for a pooled connection.
func (s *Server) checkPoolWait() {
	st := s.poolStats()
	last := atomic.SwapInt64(&s.lastWaitCount, st.WaitCount)
	if st.WaitCount <= last {
		return
	}
	s.poolLog.Print("pool", func() {
		log.Warn("requests are waiting for database connections, consider raising max-open-conns",
			zap.Int("max-open-conns", st.MaxOpenConnections),
			zap.Int64("wait-count", st.WaitCount),
			zap.Duration("wait-duration", st.WaitDuration))
	})
}

// Close gracefully releases resource of server
func (s *Server) Close() {
	log.Info("begin to close schema-inspector server")
	if !atomic.CompareAndSwapInt32(&s.isClosed, 0, 1) {
		log.Debug("server had closed")
		return
	}

	s.cancel()
	s.health.Shutdown()

	// stop the gRPC server
	util.WaitUntilTimeout("grpc_server.GracefulStop", func() {
		s.gs.GracefulStop()
		log.Info("grpc is stopped")
	}, gracefulStopTimeout)
	s.gs.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), gracefulStopTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		log.Error("shutdown http server failed", zap.Error(err))
	}

	s.mu.Lock()
	if s.lis != nil {
		if err := s.lis.Close(); err != nil && ignoreClosed(err) != nil {
			log.Error("close listener failed", zap.Error(err))
		}
	}
	s.mu.Unlock()

	if s.poolRegistered {
		Registry.Unregister(s.pool)
	}
	if err := s.catalog.Close(); err != nil {
		log.Error("close catalog pool failed", zap.Error(err))
	}
	log.Info("catalog pool is closed")
}
