package web

import (
	"context"
	"net"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/creatorsim/pkg/config"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/web/middleware"
)

// Server Gin HTTP 服务，实现 Start/Stop 以便随应用启停
type Server struct {
	engine *gin.Engine
	config *Config
	logger logger.Logger
	server *http.Server
	addr   net.Addr
}

// ServerOption Server 选项
type ServerOption func(*serverOptions)

type serverOptions struct {
	access logger.Logger
}

// WithAccessLogger 访问日志单独输出
func WithAccessLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) {
		o.access = l
	}
}

// NewServer 创建 Web 服务并挂载基础中间件
func NewServer(cfg *Config, l logger.Logger, opts ...ServerOption) *Server {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		merged = DefaultConfig()
	}
	if l == nil {
		l = logger.Default()
	}

	o := serverOptions{access: l.Named("web.access")}
	for _, opt := range opts {
		opt(&o)
	}

	gin.SetMode(merged.Mode)
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(o.access))
	engine.Use(middleware.Recovery(l.Named("web.recovery")))
	engine.Use(middleware.CORS(merged.AllowOrigins))

	return &Server{
		engine: engine,
		config: merged,
		logger: l.Named("web.server"),
	}
}

// Router 返回 Gin 引擎，用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler 返回 http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr 实际监听地址，Start 之前为 nil
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Start 监听端口并在后台提供服务
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", s.config.Addr)
	}
	s.addr = ln.Addr()
	s.server = &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		var err error
		if s.config.EnableTLS {
			s.logger.Info("starting https server", "addr", s.addr.String())
			err = s.server.ServeTLS(ln, s.config.CertFile, s.config.KeyFile)
		} else {
			s.logger.Info("starting http server", "addr", s.addr.String())
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// Stop 优雅关闭，最长等待 ShutdownTimeout
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	s.logger.Info("http server exited")
	return nil
}
