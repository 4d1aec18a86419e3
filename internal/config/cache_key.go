package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LearnerSessionKey returns the cache key for a learner's login session.
func (r *CacheKeyStruct) LearnerSessionKey(learnerID int) string {
	return fmt.Sprintf("login:%d", learnerID)
}

// TestPayloadKey returns the cache key for a published test's delivery payload.
func (r *CacheKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

// TestAnswerKeyKey returns the cache key for a test's correct-choice map.
func (r *CacheKeyStruct) TestAnswerKeyKey(testID string) string {
	return fmt.Sprintf("test:%s:key", testID)
}

// AttemptMetaKey returns the cache key for an attempt's cursor and flags.
func (r *CacheKeyStruct) AttemptMetaKey(sessionToken string) string {
	return fmt.Sprintf("attempt:%s:meta", sessionToken)
}

// AttemptAnswersKey returns the cache key for an attempt's answer map.
func (r *CacheKeyStruct) AttemptAnswersKey(sessionToken string) string {
	return fmt.Sprintf("attempt:%s:answers", sessionToken)
}

// TestMonitorChannel returns the Redis PubSub channel name for live attempt
// progress events on a test.
func (r *CacheKeyStruct) TestMonitorChannel(testID string) string {
	return fmt.Sprintf("test:%s:monitor", testID)
}

var CacheKey = NewCacheKeyStruct()
