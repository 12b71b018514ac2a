package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// ListenAndServe serves HTTP/1.1 on the configured address, with TLS when a
// certificate is configured, and HTTP/3 on http3_addr when set. It returns
// when ctx is done or a listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serve := s.config.Serve

	var tlsCfg *tls.Config
	if serve.TLSCert != "" {
		cfg, err := LoadTLSConfig(s.config.Resolve(serve.TLSCert), s.config.Resolve(serve.TLSKey))
		if err != nil {
			return err
		}
		tlsCfg = cfg
	}

	var handler http.Handler = s
	var h3 *HTTP3Server
	if serve.HTTP3Addr != "" {
		if tlsCfg == nil {
			return errors.New("http3_addr requires tls_cert and tls_key")
		}
		h3 = NewHTTP3Server(serve.HTTP3Addr, tlsCfg, s)
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = h3.SetAltSvc(w.Header())
			s.ServeHTTP(w, r)
		})
	}

	ln, err := net.Listen("tcp", serve.Addr)
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Handler:           handler,
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if h3 != nil {
		addr, err := h3.Start()
		if err != nil {
			_ = ln.Close()
			return err
		}
		s.logger.Info("listening on %s (http/3)", addr)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening on %s (http/1.1, tls=%t)", ln.Addr(), tlsCfg != nil)
		var err error
		if tlsCfg != nil {
			err = httpSrv.ServeTLS(ln, "", "")
		} else {
			err = httpSrv.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if h3 != nil {
			_ = h3.Stop()
		}
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
