package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/veridia/fraudlens/internal/models"
)

// AssessmentCache is a Redis read-through cache in front of the assessment
// store, plus a lightweight feature-set existence flag for batch pre-flight
// checks. Cache failures degrade to misses; the database stays the source
// of truth.
type AssessmentCache struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
}

// NewAssessmentCache creates a new assessment cache with the given TTL.
func NewAssessmentCache(redisClient *redis.Client, ttl time.Duration) *AssessmentCache {
	return &AssessmentCache{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "assessment:",
	}
}

// GetAssessment returns the cached assessment for a statement, or ok=false
// on a miss or any cache error.
func (c *AssessmentCache) GetAssessment(ctx context.Context, statementID uuid.UUID) (*models.RiskAssessment, bool) {
	data, err := c.redis.Get(ctx, c.assessmentKey(statementID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logrus.WithError(err).Warn("assessment cache read failed")
		return nil, false
	}

	var assessment models.RiskAssessment
	if err := json.Unmarshal([]byte(data), &assessment); err != nil {
		logrus.WithError(err).Warn("assessment cache entry corrupt, dropping")
		c.redis.Del(ctx, c.assessmentKey(statementID))
		return nil, false
	}
	return &assessment, true
}

// SetAssessment caches an assessment. Failures are logged and ignored.
func (c *AssessmentCache) SetAssessment(ctx context.Context, assessment *models.RiskAssessment) {
	data, err := json.Marshal(assessment)
	if err != nil {
		logrus.WithError(err).Warn("failed to serialize assessment for cache")
		return
	}
	if err := c.redis.Set(ctx, c.assessmentKey(assessment.StatementID), data, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("assessment cache write failed")
	}
}

// SetFeatureSetExists records the feature-set existence flag for a
// statement so bulk pre-flight checks can skip the database.
func (c *AssessmentCache) SetFeatureSetExists(ctx context.Context, statementID uuid.UUID, exists bool) {
	if err := c.redis.Set(ctx, c.featureKey(statementID), exists, c.ttl).Err(); err != nil {
		logrus.WithError(err).Warn("feature-set flag cache write failed")
	}
}

// FeatureSetExists returns the cached existence flag. ok=false means the
// flag is not cached and the caller must ask the store.
func (c *AssessmentCache) FeatureSetExists(ctx context.Context, statementID uuid.UUID) (exists, ok bool) {
	val, err := c.redis.Get(ctx, c.featureKey(statementID)).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		logrus.WithError(err).Warn("feature-set flag cache read failed")
		return false, false
	}
	return val == "1" || val == "true", true
}

// InvalidateStatement drops every cached artifact for a statement. Called
// at the start of each recompute.
func (c *AssessmentCache) InvalidateStatement(ctx context.Context, statementID uuid.UUID) {
	if err := c.redis.Del(ctx, c.assessmentKey(statementID), c.featureKey(statementID)).Err(); err != nil {
		logrus.WithError(err).Warn("cache invalidation failed")
	}
}

func (c *AssessmentCache) assessmentKey(statementID uuid.UUID) string {
	return fmt.Sprintf("%slatest:%s", c.prefix, statementID)
}

func (c *AssessmentCache) featureKey(statementID uuid.UUID) string {
	return fmt.Sprintf("%sfeatures:%s", c.prefix, statementID)
}
