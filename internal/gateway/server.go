// Package gateway is the public HTTP surface: provider webhooks for
// inbound calls and texts, plus the media stream websocket that carries
// call audio into a session.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Landonswork/lando-backend-call-routing/internal/config"
	"github.com/Landonswork/lando-backend-call-routing/internal/engine"
	"github.com/Landonswork/lando-backend-call-routing/internal/hours"
	"github.com/Landonswork/lando-backend-call-routing/internal/logging"
	"github.com/Landonswork/lando-backend-call-routing/internal/records"
	"github.com/Landonswork/lando-backend-call-routing/internal/recovery"
	"github.com/Landonswork/lando-backend-call-routing/internal/session"
	"github.com/Landonswork/lando-backend-call-routing/internal/telephony"
	"github.com/Landonswork/lando-backend-call-routing/internal/tools"
	"github.com/Landonswork/lando-backend-call-routing/internal/version"
)

// Deps are the shared collaborators behind the gateway. All sessions
// created by the server draw from this one set.
type Deps struct {
	Dialer   *engine.Dialer
	Twilio   *telephony.Client
	Records  records.Service
	Recovery *recovery.Coordinator
	Hours    *hours.Window
}

// Server is the webhook HTTP + media websocket server.
type Server struct {
	cfg     config.Config
	deps    Deps
	log     *logging.Logger
	version string

	activeCalls atomic.Int64
	startedAt   time.Time
	httpServer  *http.Server
	upgrader    websocket.Upgrader
}

// New creates a gateway server.
func New(cfg config.Config, deps Deps, log *logging.Logger) *Server {
	return &Server{
		cfg:     cfg,
		deps:    deps,
		log:     log.Sub("gateway"),
		version: version.Version,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The media socket is opened by the provider, not a browser.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// resolveBindAddr computes the listen address from config.
func resolveBindAddr(cfg config.GatewayConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan", "auto", "":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	default:
		return fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	}
}

// MediaStreamURL derives the externally reachable websocket URL the
// provider connects its media stream to.
func MediaStreamURL(publicURL string) string {
	u := strings.TrimSuffix(publicURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/twilio/media"
}

// Start begins listening. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := resolveBindAddr(s.cfg.Gateway)

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     withMiddleware(mux, s.log),
		ReadTimeout: 30 * time.Second,
		// No write timeout: media websockets stay open for the length
		// of a phone call.
		IdleTimeout: 120 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.startedAt = time.Now()
	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("publicUrl", s.cfg.Gateway.PublicURL).
		Msg("gateway server ready")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the server's listen address, or empty string if not started.
func (s *Server) Addr() string {
	if s.httpServer != nil {
		return s.httpServer.Addr
	}
	return ""
}

// ActiveCalls returns the number of media sessions currently running.
func (s *Server) ActiveCalls() int64 {
	return s.activeCalls.Load()
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /twilio/voice", s.handleVoiceWebhook)
	mux.HandleFunc("POST /twilio/sms", s.handleSMSWebhook)
	mux.HandleFunc("GET /twilio/media", s.handleMedia)

	mux.HandleFunc("/", handleNotFound)
}

// handleMedia upgrades the provider's media stream connection and runs a
// call session on it. One session per socket; the handler blocks for the
// call's duration.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("media websocket upgrade failed")
		return
	}
	conn.SetReadLimit(1 << 20)

	s.activeCalls.Add(1)
	defer s.activeCalls.Add(-1)

	mgr := session.New(conn, s.sessionDeps())
	mgr.Run(r.Context())
}

// sessionDeps builds the per-call factories a session manager needs from
// the server's shared collaborators.
func (s *Server) sessionDeps() session.Deps {
	return session.Deps{
		Dial: func(ctx context.Context, prompt string, decls []engine.FunctionDecl) (session.EngineSession, error) {
			es, err := s.deps.Dialer.Open(ctx, prompt, decls)
			if err != nil {
				return nil, err
			}
			return es, nil
		},
		NewDispatcher: s.newDispatcher,
		BuildPrompt:   s.buildPrompt,
		Recovery:      s.deps.Recovery,
		Log:           s.log,
	}
}

// newDispatcher assembles the tool set for one call. RouteToTechnician
// binds the session's call SID so a transfer targets the live call.
func (s *Server) newDispatcher(info session.CallInfo) *tools.Dispatcher {
	reg := tools.NewRegistry()
	reg.Register(&tools.CreateWorkOrder{Records: s.deps.Records})
	reg.Register(&tools.SendSMS{Messenger: s.deps.Twilio, From: s.cfg.Twilio.MainNumber})
	reg.Register(tools.ZipForAddress{})
	reg.Register(&tools.LookupWorkOrder{Records: s.deps.Records})
	reg.Register(&tools.RouteToTechnician{
		Redirector:  s.deps.Twilio,
		Destination: s.cfg.Twilio.TechForward,
		CallSID:     info.CallSID,
	})
	return tools.NewDispatcher(reg, s.log)
}

// buildPrompt assembles the system prompt for one call from the dialed
// line and the business-hours clock.
func (s *Server) buildPrompt(info session.CallInfo) string {
	spec := session.PromptSpec{
		Persona: s.cfg.Engine.Persona,
		Line:    session.LineMain,
		Hours:   session.HoursClosed,
		Resume:  info.Resume,
	}
	for _, line := range s.cfg.Twilio.TechLines {
		if line == info.DialedNumber {
			spec.Line = session.LineTechnician
			break
		}
	}
	if s.deps.Hours != nil && s.deps.Hours.Contains(time.Now()) {
		spec.Hours = session.HoursOpen
	}
	return session.BuildPrompt(spec)
}
