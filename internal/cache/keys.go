package cache

import "fmt"

// ForecastKey is the cache key of a user's memoized forecast.
func ForecastKey(userID int64) string {
	return fmt.Sprintf("forecast:%d", userID)
}

// HealthScoreKey is the cache key of a user's memoized health score.
func HealthScoreKey(userID int64) string {
	return fmt.Sprintf("health_score:%d", userID)
}

// ActionsKey is the cache key of a user's memoized ranked actions.
func ActionsKey(userID int64) string {
	return fmt.Sprintf("actions:%d", userID)
}
