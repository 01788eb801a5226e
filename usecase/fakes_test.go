package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/vitovidale/video-recognition-service/domain"
)

type fakeResolver struct {
	mu           sync.Mutex
	capabilities map[domain.CapabilityName]any
	unreachable  map[domain.CapabilityName]error
	lookups      map[domain.CapabilityName]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		capabilities: map[domain.CapabilityName]any{},
		unreachable:  map[domain.CapabilityName]error{},
		lookups:      map[domain.CapabilityName]int{},
	}
}

func (r *fakeResolver) with(name domain.CapabilityName, c any) *fakeResolver {
	r.capabilities[name] = c
	return r
}

func (r *fakeResolver) Resolve(name domain.CapabilityName) domain.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups[name]++
	if err, ok := r.unreachable[name]; ok {
		return domain.Resolution{Name: name, Status: domain.StatusUnreachable, Err: err, FirstUnreachable: r.lookups[name] == 1}
	}
	if c, ok := r.capabilities[name]; ok {
		return domain.Resolution{Name: name, Status: domain.StatusAvailable, Capability: c}
	}
	return domain.Resolution{Name: name, Status: domain.StatusAbsent}
}

type fakeNativeSaver struct {
	mu      sync.Mutex
	formats []string
	ref     string
	err     error
	panics  bool
	calls   int
	owners  []string
	prefix  []string
}

func (s *fakeNativeSaver) Supports(ext string) bool {
	for _, f := range s.formats {
		if f == ext {
			return true
		}
	}
	return false
}

func (s *fakeNativeSaver) SaveBase64(_ context.Context, segment, owner, prefix, ext string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.owners = append(s.owners, owner)
	s.prefix = append(s.prefix, prefix)
	if s.panics {
		panic("host isolation boundary")
	}
	if s.err != nil {
		return "", s.err
	}
	return s.ref, nil
}

type fakeUploader struct {
	mu    sync.Mutex
	ref   string
	err   error
	calls int
	names []string
	data  []string
}

func (u *fakeUploader) Upload(_ context.Context, name, segment string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	u.names = append(u.names, name)
	u.data = append(u.data, segment)
	if u.err != nil {
		return "", u.err
	}
	return u.ref, nil
}

type fakeRecognizer struct {
	mu       sync.Mutex
	response string
	err      error
	panics   bool
	requests []domain.RecognitionRequest
}

func (r *fakeRecognizer) Recognize(_ context.Context, req domain.RecognitionRequest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.panics {
		panic("generate threw")
	}
	return r.response, r.err
}

type fakeHasher struct{ sum string }

func (h fakeHasher) Hash([]byte) string { return h.sum }

type fakeInferrer struct{ ext string }

func (i fakeInferrer) InferExtension(string) string { return i.ext }

type fakeOwner struct{ label string }

func (o fakeOwner) OwnerLabel(context.Context) string { return o.label }

type fakeRepo struct {
	mu      sync.Mutex
	records []domain.ProcessingRecord
	err     error
}

func (r *fakeRepo) Save(_ context.Context, rec *domain.ProcessingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	rec.ID = len(r.records) + 1
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeRepo) FindByOwner(_ context.Context, owner string) ([]domain.ProcessingRecord, error) {
	var out []domain.ProcessingRecord
	for _, rec := range r.records {
		if rec.Owner == owner {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.VideoProcessedEvent
	err    error
}

func (p *fakePublisher) PublishVideoProcessed(_ context.Context, e domain.VideoProcessedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type fakeQueue struct {
	jobs []domain.RecognitionJob
	err  error
}

func (q *fakeQueue) PublishRecognitionJob(_ context.Context, job domain.RecognitionJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) ConsumeRecognitionJobs(ctx context.Context, handler func(context.Context, domain.RecognitionJob) error) error {
	for _, job := range q.jobs {
		if err := handler(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

type countingMetrics struct {
	mu          sync.Mutex
	attempts    map[domain.StrategyKind][]bool
	uploads     []domain.UploadOutcome
	recognition []domain.RecognitionOutcome
}

func (m *countingMetrics) ObserveUploadAttempt(s domain.StrategyKind, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempts == nil {
		m.attempts = map[domain.StrategyKind][]bool{}
	}
	m.attempts[s] = append(m.attempts[s], ok)
}

func (m *countingMetrics) ObserveUpload(o domain.UploadOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, o)
}

func (m *countingMetrics) ObserveRecognition(o domain.RecognitionOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recognition = append(m.recognition, o)
}

func (m *countingMetrics) ObserveResolution(domain.Resolution) {}

// videoFile builds an in-memory MediaFile whose Open counts calls.
func videoFile(name, mimeType string, data []byte) (domain.MediaFile, *int) {
	opens := 0
	return domain.MediaFile{
		Name:     name,
		Size:     int64(len(data)),
		MIMEType: mimeType,
		Open: func() (io.ReadCloser, error) {
			opens++
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}, &opens
}

func failingFile(name string) domain.MediaFile {
	return domain.MediaFile{
		Name:     name,
		Size:     10,
		MIMEType: "video/mp4",
		Open: func() (io.ReadCloser, error) {
			return nil, errors.New("permission denied")
		},
	}
}

func newUploadUseCase(resolver domain.CapabilityResolver, metrics domain.PipelineMetrics) *UploadVideoUseCase {
	validator := NewValidator(nil, 0)
	return &UploadVideoUseCase{
		Validator: validator,
		Encoder:   &Encoder{MaxBytes: validator.MaxSize},
		Resolver:  resolver,
		Executor:  &UploadExecutor{Metrics: metrics},
		Names:     NewNameGenerator(),
		Metrics:   metrics,
	}
}
