// package server serves the analyzer service and provides the overall
// functionality.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/open-sauced/pizza/analyzer/pkg/github"
	"github.com/open-sauced/pizza/analyzer/pkg/insights"
	"github.com/open-sauced/pizza/analyzer/pkg/notify"
	"github.com/open-sauced/pizza/analyzer/pkg/validator"
)

const (
	// MethodNotAllowedMessage is the body of every non-GET response.
	MethodNotAllowedMessage = "Metoda zahteva nije podržana."

	// failurePrefix precedes the error message in 500 responses.
	failurePrefix = "Došlo je do greške: "

	defaultShutdownTimeout = 10 * time.Second
)

// ErrMethodNotSupported is signaled to observers when a request used a
// method other than GET.
var ErrMethodNotSupported = errors.New(MethodNotAllowedMessage)

// RepoSearcher is the upstream API used while serving a request.
type RepoSearcher interface {
	SearchRepositoriesByLanguage(ctx context.Context, language string) ([]*github.SearchItem, error)
	CountCommitsByAuthor(ctx context.Context, fullName, author string) int
}

// AnalyzerServer provides a leveled logger for use during serving requests,
// the upstream searcher and the registry of observers notified about every
// request.
type AnalyzerServer struct {
	Logger    *zap.SugaredLogger
	Searcher  RepoSearcher
	Observers *notify.Registry

	// ShutdownTimeout bounds how long in-flight requests may take to finish
	// once the server is asked to stop.
	ShutdownTimeout time.Duration
}

// NewAnalyzerServer returns an AnalyzerServer which uses the provided
// searcher for upstream calls and notifies the observers of the registry.
func NewAnalyzerServer(searcher RepoSearcher, observers *notify.Registry, logger *zap.SugaredLogger) *AnalyzerServer {
	if observers == nil {
		observers = notify.NewRegistry()
	}

	return &AnalyzerServer{
		Logger:          logger,
		Searcher:        searcher,
		Observers:       observers,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Handler returns the routes of the server wrapped in its middleware.
func (p *AnalyzerServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", p.pingHandler)
	mux.HandleFunc("/", p.handleRequest)

	return p.recovery(p.logging(mux))
}

// Run listens on the provided address and serves until ctx is cancelled.
func (p *AnalyzerServer) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	return p.Serve(ctx, listener)
}

// Serve accepts connections on the listener, one at a time, handing each to
// its own goroutine. When ctx is cancelled the server stops accepting and
// waits up to ShutdownTimeout for in-flight requests.
func (p *AnalyzerServer) Serve(ctx context.Context, listener net.Listener) error {
	//nolint:errcheck
	defer p.Logger.Sync()

	httpServer := &http.Server{
		Handler:           p.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p.Logger.Infof("Starting server on %s", listener.Addr())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		p.Logger.Infof("Shutting down server on %s", listener.Addr())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), p.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not shut down server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (p *AnalyzerServer) pingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		p.Logger.Errorf("Could not connect to /ping endpoint: %v", err.Error())
	}
}

func (p *AnalyzerServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	logger := p.Logger.With("request_id", uuid.NewString())
	logger.Infof("Received request: %s %s", r.Method, r.URL.RequestURI())

	stream := p.Observers.NewStream()

	if r.Method != http.MethodGet {
		logger.Errorf("Received request with invalid method: %s", r.Method)
		writeText(w, http.StatusMethodNotAllowed, MethodNotAllowedMessage)
		stream.Error(ErrMethodNotSupported)
		return
	}

	language := r.URL.Query().Get("language")

	v := validator.New()
	validator.ValidateLanguage(v, language)
	if !v.Valid() {
		logger.Errorf("Received request with invalid input: %s", v.Error())
		writeText(w, http.StatusBadRequest, v.Errors["language"])
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			p.fail(w, stream, logger, fmt.Errorf("panic while processing request: %v", rec))
		}
	}()

	repos, err := p.processLanguage(r.Context(), logger, stream, language)
	if err != nil {
		p.fail(w, stream, logger, err)
		return
	}

	body, err := json.Marshal(repos)
	if err != nil {
		p.fail(w, stream, logger, fmt.Errorf("could not encode repositories: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Errorf("Could not write response: %v", err)
		stream.Error(fmt.Errorf("could not write response: %w", err))
		return
	}

	logger.Infof("Finished processing %d repositories for language: %s", len(repos), language)
	stream.Complete()
}

// processLanguage searches the repositories of a language and pushes the
// commit count of every repository owner to the stream, in search order.
func (p *AnalyzerServer) processLanguage(ctx context.Context, logger *zap.SugaredLogger, stream *notify.Stream, language string) ([]*github.SearchItem, error) {
	logger.Infof("Searching repositories for language: %s", language)
	repos, err := p.Searcher.SearchRepositoriesByLanguage(ctx, language)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Found %d repositories for language: %s", len(repos), language)
	for _, repo := range repos {
		if repo == nil {
			logger.Warnf("Search returned an empty repository. Skipping")
			continue
		}

		author := repo.GetOwner().GetLogin()
		if author == "" {
			logger.Warnf("Repository %s has no valid owner. Skipping", repo.GetFullName())
			continue
		}

		count := p.Searcher.CountCommitsByAuthor(ctx, repo.GetFullName(), author)
		logger.Debugf("Author %s has %d commits in %s", author, count, repo.GetFullName())

		stream.Next(insights.AuthorCommits{
			Author:      author,
			CommitCount: count,
		})
	}

	if repos == nil {
		repos = []*github.SearchItem{}
	}
	return repos, nil
}

func (p *AnalyzerServer) fail(w http.ResponseWriter, stream *notify.Stream, logger *zap.SugaredLogger, err error) {
	logger.Errorf("Could not process request: %v", err)
	if headerWritten(w) {
		logger.Errorf("Response already sent, could not report failure to client")
	} else {
		writeText(w, http.StatusInternalServerError, failurePrefix+err.Error())
	}
	stream.Error(err)
}

// writeText writes body verbatim, without the trailing newline http.Error adds.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	//nolint:errcheck
	w.Write([]byte(body))
}
