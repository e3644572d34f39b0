package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"interaction-lab/contract"
	"interaction-lab/domain"
	"interaction-lab/errors"
	"interaction-lab/runtime"
	"io"
	"log/slog"
	"net/http"
)

const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// IEngine is what the endpoint needs from the dispatch engine.
type IEngine interface {
	Handle(ctx context.Context, in *domain.Interaction) *runtime.Outcome
}

// InteractionServer is the webhook the platform posts interactions to.
// Each request goes through verify, decode, handle and write. The continuation of a
// deferred handler is launched only once the acknowledgment has been written.
type InteractionServer struct {
	log      *slog.Logger
	engine   IEngine
	verifier contract.ISignatureVerifier
	maxBytes int64
}

func NewInteractionServer(log *slog.Logger, engine IEngine, verifier contract.ISignatureVerifier, maxBytes int64) *InteractionServer {
	return &InteractionServer{
		log:      log,
		engine:   engine,
		verifier: verifier,
		maxBytes: maxBytes,
	}
}

// Routes mounts the endpoint on path.
func (s *InteractionServer) Routes(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, s)
	return mux
}

func (s *InteractionServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "could not read request", http.StatusBadRequest)
		return
	}

	if !s.verifier.Verify(body, r.Header.Get(HeaderSignature), r.Header.Get(HeaderTimestamp)) {
		s.log.Debug("Rejected request", "error", errors.ErrInvalidSignature, "remote", r.RemoteAddr)
		http.Error(w, errors.ErrInvalidSignature.Error(), http.StatusUnauthorized)
		return
	}

	var in domain.Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		s.log.Warn("Could not decode interaction", "error", err)
		http.Error(w, fmt.Sprintf("%v: %v", errors.ErrMalformedInteraction, err), http.StatusBadRequest)
		return
	}

	outcome := s.engine.Handle(r.Context(), &in)

	payload, err := json.Marshal(outcome.Response)
	if err != nil {
		outcome.Abandon(err)
		s.log.Error("Could not encode response", "interaction_id", in.ID, "error", err)
		http.Error(w, "could not encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		outcome.Abandon(err)
		s.log.Warn("Could not write response", "interaction_id", in.ID, "error", err)
		return
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	outcome.Launch()
}
