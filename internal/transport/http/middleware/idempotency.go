package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"shopledger/internal/platform/querier"
)

const IdempotencyHeader = "Idempotency-Key"

// ClaimTimeout is how long a claim may stay unfinished before another request with the
// same body may take it over.
const ClaimTimeout = 5 * time.Minute

var (
	ErrIdempotencyConflict   = errors.New("idempotency key was used with a different request")
	ErrIdempotencyInProgress = errors.New("a request with this idempotency key is still in progress")
)

// IdempotencyKey scopes a client key to one shop, user and endpoint. Hash fingerprints the request body.
type IdempotencyKey struct {
	ShopID   string
	UserID   string
	Endpoint string
	Key      string
	Hash     string
}

// KeyFromRequest reads the Idempotency-Key header. ok is false when the client sent none.
func KeyFromRequest(r *http.Request, shopID, userID, endpoint string, body []byte) (IdempotencyKey, bool) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	if key == "" {
		return IdempotencyKey{}, false
	}
	return IdempotencyKey{ShopID: shopID, UserID: userID, Endpoint: endpoint, Key: key, Hash: RequestHash(body)}, true
}

// RequestHash fingerprints a JSON body. Insignificant whitespace does not change the result.
func RequestHash(payload []byte) string {
	var compact bytes.Buffer
	if err := json.Compact(&compact, payload); err == nil {
		payload = compact.Bytes()
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type IdempotencyStore struct {
	db querier.Querier
}

func NewIdempotencyStore(db querier.Querier) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// Claim reserves k for the calling request before any work is done. When the key was
// already completed with the same body the stored response is returned with replay set.
// A key held by a request that has not finished yields ErrIdempotencyInProgress.
func (s *IdempotencyStore) Claim(ctx context.Context, k IdempotencyKey) (json.RawMessage, bool, error) {
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (shop_id, user_id, endpoint, key, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5, NULL)
    ON CONFLICT (shop_id, user_id, key, endpoint)
    DO UPDATE SET created_at = now()
    WHERE idempotency_keys.response_json IS NULL
      AND idempotency_keys.request_hash = EXCLUDED.request_hash
      AND idempotency_keys.created_at < now() - make_interval(secs => $6)
  `, k.ShopID, k.UserID, k.Endpoint, k.Key, k.Hash, ClaimTimeout.Seconds())
	if err != nil {
		return nil, false, err
	}
	if tag.RowsAffected() == 1 {
		return nil, false, nil
	}

	var hash string
	var response []byte
	err = s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE shop_id = $1 AND user_id = $2 AND endpoint = $3 AND key = $4
  `, k.ShopID, k.UserID, k.Endpoint, k.Key).Scan(&hash, &response)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// The holder abandoned the key between the two statements.
		return nil, false, ErrIdempotencyInProgress
	case err != nil:
		return nil, false, err
	case hash != k.Hash:
		return nil, false, ErrIdempotencyConflict
	case response == nil:
		return nil, false, ErrIdempotencyInProgress
	}
	return json.RawMessage(response), true, nil
}

// Complete stores the response for a key claimed by this request.
func (s *IdempotencyStore) Complete(ctx context.Context, k IdempotencyKey, response json.RawMessage) error {
	_, err := s.db.Exec(ctx, `
    UPDATE idempotency_keys
    SET response_json = $6
    WHERE shop_id = $1 AND user_id = $2 AND endpoint = $3 AND key = $4
      AND request_hash = $5 AND response_json IS NULL
  `, k.ShopID, k.UserID, k.Endpoint, k.Key, k.Hash, response)
	return err
}

// Abandon releases a claim whose request failed so the client can retry with the same key.
func (s *IdempotencyStore) Abandon(ctx context.Context, k IdempotencyKey) error {
	_, err := s.db.Exec(ctx, `
    DELETE FROM idempotency_keys
    WHERE shop_id = $1 AND user_id = $2 AND endpoint = $3 AND key = $4
      AND request_hash = $5 AND response_json IS NULL
  `, k.ShopID, k.UserID, k.Endpoint, k.Key, k.Hash)
	return err
}
