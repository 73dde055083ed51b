package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/models"
	"fjacquet/budget-analytics/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "budget-analytics:rules"

func tag(v string) *string { return &v }

func sampleRules() []models.Rule {
	return []models.Rule{
		{ID: "R1", Name: "Marketing", Status: models.RuleStatusConfirmed, Priority: 1, AnalyticalAccountID: "CC-MKT", PartnerTagID: tag("marketing")},
		{ID: "R2", Name: "Draft", Status: models.RuleStatusDraft, AnalyticalAccountID: "CC-X", ProductID: tag("X")},
	}
}

func newCached(t *testing.T, inner store.RuleSource) (*CachedSource, *miniredis.Miniredis, *logging.MockLogger) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := logging.NewMockLogger()
	return NewCachedSource(client, inner, testKey, time.Minute, logger), mr, logger
}

func TestCachedSource_MissThenHit(t *testing.T) {
	inner := &store.MockRuleSource{Rules: sampleRules()}
	cached, mr, _ := newCached(t, inner)
	ctx := context.Background()

	first, err := cached.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleRules(), first)
	assert.True(t, mr.Exists(testKey))

	second, err := cached.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.CallCount())
}

func TestCachedSource_TTLExpiry(t *testing.T) {
	inner := &store.MockRuleSource{Rules: sampleRules()}
	cached, mr, _ := newCached(t, inner)
	ctx := context.Background()

	_, err := cached.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(testKey))

	mr.FastForward(2 * time.Minute)

	_, err = cached.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.CallCount())
}

func TestCachedSource_Invalidate(t *testing.T) {
	inner := &store.MockRuleSource{Rules: sampleRules()}
	cached, mr, _ := newCached(t, inner)
	ctx := context.Background()

	_, err := cached.ListRules(ctx)
	require.NoError(t, err)
	require.NoError(t, cached.Invalidate(ctx))
	assert.False(t, mr.Exists(testKey))

	_, err = cached.ListRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.CallCount())
}

func TestCachedSource_RedisDownFallsBack(t *testing.T) {
	inner := &store.MockRuleSource{Rules: sampleRules()}
	cached, mr, logger := newCached(t, inner)
	mr.Close()

	rules, err := cached.ListRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleRules(), rules)
	assert.True(t, logger.HasEntry("WARN", "Rule cache read failed, using source"))
}

func TestCachedSource_CorruptSnapshotIsReplaced(t *testing.T) {
	inner := &store.MockRuleSource{Rules: sampleRules()}
	cached, mr, logger := newCached(t, inner)
	require.NoError(t, mr.Set(testKey, "{not json"))

	rules, err := cached.ListRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.True(t, logger.HasEntry("WARN", "Rule cache read failed, using source"))

	stored, err := mr.Get(testKey)
	require.NoError(t, err)
	assert.Contains(t, stored, `"CONFIRMED"`)
}

func TestCachedSource_InnerErrorIsReturned(t *testing.T) {
	inner := &store.MockRuleSource{Err: errors.New("db down")}
	cached, mr, _ := newCached(t, inner)

	_, err := cached.ListRules(context.Background())
	assert.Error(t, err)
	assert.False(t, mr.Exists(testKey))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
