package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	// ReplayedHeader marks a response served from the idempotency cache.
	ReplayedHeader = "Idempotent-Replayed"

	maxSweepInterval = time.Hour
)

type IdempotencyStore interface {
	Get(key string) (*CachedResponse, bool)
	// Reserve claims key for a request with the given body fingerprint. When
	// the key is already held it returns the existing entry and false; that
	// entry is Pending while its first request is still running.
	Reserve(key, fingerprint string) (*CachedResponse, bool)
	Set(key string, response *CachedResponse)
	// Release drops a reservation whose request did not succeed.
	Release(key string)
	Stop()
}

// CachedResponse is a completed 2xx response plus the fingerprint of the
// request body that produced it. A reservation is a CachedResponse with no
// status yet.
type CachedResponse struct {
	StatusCode  int
	Headers     http.Header
	Body        []byte
	Fingerprint string
	CreatedAt   time.Time
}

func (c *CachedResponse) Pending() bool {
	return c.StatusCode == 0
}

type InMemoryIdempotencyStore struct {
	mu       sync.RWMutex
	entries  map[string]*CachedResponse
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		entries: make(map[string]*CachedResponse),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go s.sweep(min(ttl, maxSweepInterval))
	return s
}

func (s *InMemoryIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || entry.Pending() || s.expired(entry) {
		return nil, false
	}
	return entry, true
}

func (s *InMemoryIdempotencyStore) Reserve(key, fingerprint string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok && (entry.Pending() || !s.expired(entry)) {
		return entry, false
	}
	s.entries[key] = &CachedResponse{Fingerprint: fingerprint, CreatedAt: s.now()}
	return nil, true
}

func (s *InMemoryIdempotencyStore) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok && entry.Pending() {
		delete(s.entries, key)
	}
}

func (s *InMemoryIdempotencyStore) Set(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	response.CreatedAt = s.now()
	s.entries[key] = response
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *InMemoryIdempotencyStore) expired(entry *CachedResponse) bool {
	return s.now().Sub(entry.CreatedAt) > s.ttl
}

func (s *InMemoryIdempotencyStore) sweep(interval time.Duration) {
	if interval <= 0 {
		interval = maxSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			for key, entry := range s.entries {
				if !entry.Pending() && s.expired(entry) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}

// Idempotency replays the stored response when a POST or DELETE repeats an
// Idempotency-Key on the same route. Reusing a key with a different body is
// rejected with IDEMPOTENCY_KEY_REUSED, and a repeat that arrives while the
// first request is still running gets IDEMPOTENCY_KEY_IN_FLIGHT. The key is
// held from the start of the first request; only 2xx responses keep it.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyKeyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := r.Header.Get(headerName)
			if clientKey == "" || !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := readBody(r)
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge))
					return
				}
				httputil.WriteError(w, apperrors.InvalidInput("Could not read request body"))
				return
			}
			key := r.Method + " " + r.URL.Path + " " + clientKey
			fingerprint := fingerprintOf(body)

			existing, reserved := store.Reserve(key, fingerprint)
			if !reserved {
				switch {
				case existing.Fingerprint != fingerprint:
					httputil.WriteError(w, apperrors.IdempotencyKeyReused())
				case existing.Pending():
					httputil.WriteError(w, apperrors.IdempotencyKeyInFlight())
				default:
					replay(w, existing)
				}
				return
			}

			completed := false
			defer func() {
				if !completed {
					store.Release(key)
				}
			}()

			tee := &teeWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(tee, r)

			if tee.status >= 200 && tee.status < 300 {
				store.Set(key, &CachedResponse{
					StatusCode:  tee.status,
					Headers:     w.Header().Clone(),
					Body:        tee.body.Bytes(),
					Fingerprint: fingerprint,
				})
				completed = true
			}
		})
	}
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodDelete
}

// readBody drains the request body and puts an identical reader back.
func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func fingerprintOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	dst := w.Header()
	for key, values := range cached.Headers {
		dst[key] = values
	}
	dst.Set(ReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

type teeWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (t *teeWriter) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *teeWriter) Write(b []byte) (int, error) {
	t.body.Write(b)
	return t.ResponseWriter.Write(b)
}
