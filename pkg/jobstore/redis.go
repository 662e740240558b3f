package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis-backed job store.
type RedisConfig struct {
	// Addr is the Redis host:port (required).
	Addr string

	// Username and Password are optional auth credentials.
	Username string
	Password string

	// DB selects the Redis database number. Default: 0.
	DB int

	// KeyPrefix namespaces all job hashes. Default: "sheetglot:job:".
	KeyPrefix string
}

// RedisStore implements Store on a Redis hash per job.
//
// The completed-batch counter lives in its own hash field and is bumped with
// HINCRBY, which Redis executes atomically, so concurrent Map units can never
// lose an increment.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

var _ Store = (*RedisStore)(nil)

// Hash field names. Part of the persisted contract.
const (
	fieldJobID       = "jobId"
	fieldDocumentKey = "documentKey"
	fieldSourceLang  = "sourceLanguage"
	fieldTargetLang  = "targetLanguage"
	fieldStatus      = "status"
	fieldProgress    = "progress"
	fieldStats       = "stats"
	fieldOutputKey   = "outputKey"
	fieldDownloadURL = "downloadUrl"
	fieldError       = "error"
	fieldCreatedAt   = "createdAt"
	fieldCompletedAt = "completedAt"
	fieldCompleted   = "completedBatches"
)

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "sheetglot:job:"
	}

	// UniversalClient works with both standalone and cluster Redis.
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr},
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: prefix}, nil
}

func (s *RedisStore) key(jobID string) string {
	return s.keyPrefix + jobID
}

// Create persists a new record.
func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	if rec == nil || rec.JobID == "" {
		return fmt.Errorf("job record requires a jobId")
	}
	status := rec.Status
	if status == "" {
		status = StatusPending
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	fields := map[string]any{
		fieldJobID:       rec.JobID,
		fieldDocumentKey: rec.DocumentKey,
		fieldSourceLang:  rec.SourceLanguage,
		fieldTargetLang:  rec.TargetLanguage,
		fieldStatus:      string(status),
		fieldCreatedAt:   createdAt.Format(time.RFC3339Nano),
	}
	if err := s.client.HSet(ctx, s.key(rec.JobID), fields).Err(); err != nil {
		return fmt.Errorf("create job %s: %w", rec.JobID, err)
	}
	return nil
}

// Get returns the record for jobID.
func (s *RedisStore) Get(ctx context.Context, jobID string) (*Record, error) {
	raw, err := s.client.HGetAll(ctx, s.key(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}

	rec := &Record{
		JobID:          raw[fieldJobID],
		DocumentKey:    raw[fieldDocumentKey],
		SourceLanguage: raw[fieldSourceLang],
		TargetLanguage: raw[fieldTargetLang],
		Status:         Status(raw[fieldStatus]),
		OutputKey:      raw[fieldOutputKey],
		DownloadURL:    raw[fieldDownloadURL],
		Error:          raw[fieldError],
	}

	if v := raw[fieldCreatedAt]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			rec.CreatedAt = t
		}
	}
	if v := raw[fieldCompletedAt]; v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			rec.CompletedAt = &t
		}
	}
	if v := raw[fieldProgress]; v != "" {
		var p Progress
		if err := json.Unmarshal([]byte(v), &p); err == nil {
			rec.Progress = &p
		}
	}
	if v := raw[fieldStats]; v != "" {
		var st Stats
		if err := json.Unmarshal([]byte(v), &st); err == nil {
			rec.Stats = &st
		}
	}

	return rec, nil
}

// SetStatus transitions the job's status, enforcing lifecycle order.
//
// The read-check-write is not atomic, but status moves are driven by a single
// coordinator per job; the contended counter uses HINCRBY instead.
func (s *RedisStore) SetStatus(ctx context.Context, jobID string, status Status) error {
	current, err := s.currentStatus(ctx, jobID)
	if err != nil {
		return err
	}
	if !current.CanTransition(status) {
		return transitionError(jobID, current, status)
	}
	if err := s.client.HSet(ctx, s.key(jobID), fieldStatus, string(status)).Err(); err != nil {
		return fmt.Errorf("set status for job %s: %w", jobID, err)
	}
	return nil
}

// SetProgress replaces the job's progress snapshot.
func (s *RedisStore) SetProgress(ctx context.Context, jobID string, p Progress) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := s.client.HSet(ctx, s.key(jobID), fieldProgress, string(b)).Err(); err != nil {
		return fmt.Errorf("set progress for job %s: %w", jobID, err)
	}
	return nil
}

// SetStats replaces the job's aggregate stats.
func (s *RedisStore) SetStats(ctx context.Context, jobID string, stats Stats) error {
	b, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	if err := s.client.HSet(ctx, s.key(jobID), fieldStats, string(b)).Err(); err != nil {
		return fmt.Errorf("set stats for job %s: %w", jobID, err)
	}
	return nil
}

// IncrementCompleted atomically bumps the completed-batch counter via HINCRBY.
func (s *RedisStore) IncrementCompleted(ctx context.Context, jobID string) (int, error) {
	n, err := s.client.HIncrBy(ctx, s.key(jobID), fieldCompleted, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("increment completed for job %s: %w", jobID, err)
	}
	return int(n), nil
}

// Complete finalizes the job as COMPLETED with its output reference.
func (s *RedisStore) Complete(ctx context.Context, jobID, outputKey, downloadURL string, stats Stats) error {
	current, err := s.currentStatus(ctx, jobID)
	if err != nil {
		return err
	}
	if !current.CanTransition(StatusCompleted) {
		return transitionError(jobID, current, StatusCompleted)
	}

	b, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	fields := map[string]any{
		fieldStatus:      string(StatusCompleted),
		fieldOutputKey:   outputKey,
		fieldDownloadURL: downloadURL,
		fieldStats:       string(b),
		fieldCompletedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.client.HSet(ctx, s.key(jobID), fields).Err(); err != nil {
		return fmt.Errorf("complete job %s: %w", jobID, err)
	}
	return nil
}

// Fail finalizes the job as FAILED carrying the captured error message.
func (s *RedisStore) Fail(ctx context.Context, jobID, message string) error {
	current, err := s.currentStatus(ctx, jobID)
	if err != nil {
		return err
	}
	if !current.CanTransition(StatusFailed) {
		return transitionError(jobID, current, StatusFailed)
	}

	fields := map[string]any{
		fieldStatus:      string(StatusFailed),
		fieldError:       message,
		fieldCompletedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.client.HSet(ctx, s.key(jobID), fields).Err(); err != nil {
		return fmt.Errorf("fail job %s: %w", jobID, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) currentStatus(ctx context.Context, jobID string) (Status, error) {
	v, err := s.client.HGet(ctx, s.key(jobID), fieldStatus).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("job %s: %w", jobID, ErrNotFound)
		}
		return "", fmt.Errorf("get status for job %s: %w", jobID, err)
	}
	return Status(v), nil
}
