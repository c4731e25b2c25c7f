package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/repositories"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
	"github.com/medassist/offline-triage/internal/triage"
	apperrors "github.com/medassist/offline-triage/pkg/errors"
)

// DiagnosePath is the remote diagnosis endpoint.
const DiagnosePath = "/api/diagnose"

// Fallback reasons recorded on triage.fallback.count.
const (
	FallbackTimeout = "timeout"
	FallbackOffline = "offline"
	FallbackCache   = "cache"
	FallbackLocal   = "local"
)

// RequestDispatcher answers outbound requests with a caching strategy.
type RequestDispatcher interface {
	Dispatch(ctx context.Context, req *entities.FetchRequest) *entities.FetchResponse
}

// TriageServiceOptions configures a TriageService.
type TriageServiceOptions struct {
	// Timeout bounds the network attempt before the rule engine takes over.
	// Zero waits for the dispatcher.
	Timeout time.Duration
	Metrics *observability.Metrics
	Now     func() time.Time
}

// TriageService produces diagnoses, preferring the remote model and falling
// back to the local rule engine.
type TriageService struct {
	dispatcher RequestDispatcher
	engine     *triage.Engine
	localizer  *triage.Localizer
	audits     repositories.TriageAuditRepository
	timeout    time.Duration
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewTriageService creates a new triage service. audits may be nil.
func NewTriageService(
	dispatcher RequestDispatcher,
	engine *triage.Engine,
	localizer *triage.Localizer,
	audits repositories.TriageAuditRepository,
	opts TriageServiceOptions,
) *TriageService {
	s := &TriageService{
		dispatcher: dispatcher,
		engine:     engine,
		localizer:  localizer,
		audits:     audits,
		timeout:    opts.Timeout,
		metrics:    opts.Metrics,
		now:        opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Diagnose forwards body to the remote model through the dispatcher. A
// network answer is relayed unchanged. When the network fails or the timeout
// elapses, the rule engine answers instead; a cached remote diagnosis for the
// same input is attached only as cached_determination.
func (s *TriageService) Diagnose(ctx context.Context, body []byte, header http.Header) (*Result, error) {
	input, err := decodeInput(body)
	if err != nil {
		return nil, err
	}

	req := &entities.FetchRequest{
		Method: http.MethodPost,
		Path:   DiagnosePath,
		Header: header,
		Body:   body,
	}

	resp, timedOut := s.dispatch(ctx, req)
	logger := observability.LoggerFromContext(ctx)

	switch {
	case timedOut:
		logger.Warn().Dur("timeout", s.timeout).Msg("Diagnosis timed out, using rule engine")
		return s.fallback(ctx, input, nil, FallbackTimeout)
	case resp.Source == entities.SourceNetwork:
		return relay(resp), nil
	case resp.Source == entities.SourceCache:
		return s.fallback(ctx, input, cachedDiagnosis(ctx, resp.Body), FallbackCache)
	default:
		return s.fallback(ctx, input, nil, FallbackOffline)
	}
}

// LocalTriage runs the rule engine without contacting the backend.
func (s *TriageService) LocalTriage(ctx context.Context, input entities.DiagnosisInput) (*entities.DiagnosisResponse, error) {
	return s.determine(ctx, input, nil, FallbackLocal), nil
}

// dispatch races the dispatcher against the configured timeout.
func (s *TriageService) dispatch(ctx context.Context, req *entities.FetchRequest) (*entities.FetchResponse, bool) {
	if s.timeout <= 0 {
		return s.dispatcher.Dispatch(ctx, req), false
	}

	dctx, cancel := context.WithCancel(ctx)
	done := make(chan *entities.FetchResponse, 1)
	go func() {
		done <- s.dispatcher.Dispatch(dctx, req)
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case resp := <-done:
		cancel()
		return resp, false
	case <-timer.C:
		cancel()
		return nil, true
	case <-ctx.Done():
		cancel()
		return nil, true
	}
}

func (s *TriageService) fallback(ctx context.Context, input entities.DiagnosisInput, cached *entities.DiagnosisRecord, reason string) (*Result, error) {
	out := s.determine(ctx, input, cached, reason)
	result, err := jsonResult(http.StatusOK, entities.SourceFallback, out)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode diagnosis", err)
	}
	return result, nil
}

func (s *TriageService) determine(ctx context.Context, input entities.DiagnosisInput, cached *entities.DiagnosisRecord, reason string) *entities.DiagnosisResponse {
	evaluation := s.engine.Evaluate(input)
	record := s.localizer.Localize(evaluation.Record, input.Language)
	record.Source = entities.SourceRuleEngine
	record.Offline = true

	observability.RecordFallback(ctx, s.metrics, reason)
	observability.LoggerFromContext(ctx).Info().
		Str("reason", reason).
		Strs("rules", evaluation.Fired).
		Str("diagnosis", record.PrimaryDiagnosis).
		Bool("referral", record.ReferralNeeded).
		Msg("Rule engine determination")

	s.audit(ctx, input, record)

	return &entities.DiagnosisResponse{
		Status:                "success",
		Diagnosis:             &record,
		DrugInteractions:      []any{},
		DosageRecommendations: []any{},
		Offline:               true,
		CachedDetermination:   cached,
	}
}

// audit records an offline determination. Failures are logged only.
func (s *TriageService) audit(ctx context.Context, input entities.DiagnosisInput, record entities.DiagnosisRecord) {
	if s.audits == nil {
		return
	}
	entry := &entities.TriageAudit{
		ID:               uuid.NewString(),
		PatientID:        input.PatientID,
		Symptoms:         input.SymptomsText,
		Language:         s.localizer.Resolve(input.Language),
		PrimaryDiagnosis: record.PrimaryDiagnosis,
		ConfidenceScore:  record.ConfidenceScore,
		ReferralNeeded:   record.ReferralNeeded,
		Source:           record.Source,
		Record:           record,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("patient_id", input.PatientID).
			Msg("Failed to audit offline determination")
	}
}

func decodeInput(body []byte) (entities.DiagnosisInput, error) {
	var input entities.DiagnosisInput
	if len(body) == 0 {
		return input, apperrors.NewValidationError("request body is required")
	}
	if err := json.Unmarshal(body, &input); err != nil {
		return input, apperrors.NewValidationError("invalid request body")
	}
	return input, nil
}

// cachedDiagnosis extracts the diagnosis from a stored remote response.
func cachedDiagnosis(ctx context.Context, body []byte) *entities.DiagnosisRecord {
	var stored entities.DiagnosisResponse
	if err := json.Unmarshal(body, &stored); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Ignoring undecodable cached diagnosis")
		return nil
	}
	if stored.Diagnosis == nil {
		return nil
	}
	record := stored.Diagnosis.Clone()
	if record.Source == "" {
		record.Source = entities.SourceRemoteModel
	}
	return &record
}
