package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GlebRadaev/loanportal/pkg/auth"
	"github.com/GlebRadaev/loanportal/pkg/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderKey = "Idempotency-Key"

	lockTTL      = 60 * time.Second
	storeTimeout = 2 * time.Second
	maxKeyLength = 128
)

type entry struct {
	InProgress bool   `json:"in_progress"`
	Code       int    `json:"code"`
	Body       []byte `json:"body"`
	BodySHA256 string `json:"body_sha256"`
}

type recorder struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Middleware replays the stored response of a finished request carrying the
// same Idempotency-Key and body. Requests without the header pass through.
// Must run after auth.AuthMiddleware so keys are scoped to the caller.
// A nil *Store passes every request through.
func (s *Store) Middleware(next http.Handler) http.Handler {
	if s == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		reqKey := strings.TrimSpace(r.Header.Get(HeaderKey))
		if reqKey == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(reqKey) > maxKeyLength {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid Idempotency-Key")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		hash := bodyHash(body)

		userID, _ := r.Context().Value(auth.UserIDKey).(int)
		key := buildKey(r.Method, r.URL.Path, userID, reqKey)

		ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
		defer cancel()

		ok, err := s.lock(ctx, key, hash)
		if err != nil {
			zap.L().Error("can't acquire idempotency lock", zap.Error(err))
			utils.RespondWithError(w, http.StatusServiceUnavailable, "Idempotency store unavailable")
			return
		}
		if !ok {
			cur, err := s.load(ctx, key)
			if err != nil {
				zap.L().Error("can't load idempotency entry", zap.String("key", key), zap.Error(err))
			}
			if cur.BodySHA256 != "" && cur.BodySHA256 != hash {
				utils.RespondWithError(w, http.StatusConflict, "Idempotency-Key reused with different body")
				return
			}
			if !cur.InProgress && cur.Code != 0 {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(cur.Code)
				_, _ = w.Write(cur.Body)
				return
			}
			utils.RespondWithError(w, http.StatusConflict, "Request is already in progress")
			return
		}

		rec := &recorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		final := entry{Code: rec.code, Body: rec.buf.Bytes(), BodySHA256: hash}
		if rec.code >= http.StatusInternalServerError {
			// let the client retry after a server failure
			s.release(key)
			return
		}
		if err := s.save(key, final); err != nil {
			zap.L().Error("can't save idempotency entry", zap.String("key", key), zap.Error(err))
		}
	})
}

func (s *Store) lock(ctx context.Context, key, hash string) (bool, error) {
	payload, _ := json.Marshal(entry{InProgress: true, BodySHA256: hash})
	return s.rdb.SetNX(ctx, key, payload, lockTTL).Result()
}

func (s *Store) load(ctx context.Context, key string) (entry, error) {
	var e entry
	v, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return e, err
	}
	_ = json.Unmarshal(v, &e)
	return e, nil
}

func (s *Store) save(key string, e entry) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	payload, _ := json.Marshal(e)
	return s.rdb.Set(ctx, key, payload, s.ttl).Err()
}

func (s *Store) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		zap.L().Error("can't release idempotency lock", zap.String("key", key), zap.Error(err))
	}
}

func bodyHash(b []byte) string {
	s := sha256.Sum256(b)
	return hex.EncodeToString(s[:])
}

func buildKey(method, path string, userID int, reqKey string) string {
	return "idemp:" + strings.ToLower(method) + ":" + path + ":" + strconv.Itoa(userID) + ":" + reqKey
}
