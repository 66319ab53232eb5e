package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	ApplicationKeyPrefix  = "application:%d"
	ApplicationListPrefix = "user:%d:applications"
	InsightsKeyPrefix     = "user:%d:insights"
	ResumeKeyPrefix       = "resume:%d"
)

const (
	UserTTL            = 5 * time.Minute
	ApplicationTTL     = 10 * time.Minute
	ApplicationListTTL = 2 * time.Minute
	InsightsTTL        = 2 * time.Minute
	ResumeTTL          = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ApplicationKey(appID uint) string {
	return fmt.Sprintf(ApplicationKeyPrefix, appID)
}

func ApplicationListKey(userID uint) string {
	return fmt.Sprintf(ApplicationListPrefix, userID)
}

func InsightsKey(userID uint) string {
	return fmt.Sprintf(InsightsKeyPrefix, userID)
}

func ResumeKey(resumeID uint) string {
	return fmt.Sprintf(ResumeKeyPrefix, resumeID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateApplications clears every derived view of a user's board. Any
// write to an application changes the list, the per-item entry and insights.
func InvalidateApplications(ctx context.Context, userID uint, appIDs ...uint) {
	Invalidate(ctx, ApplicationListKey(userID))
	Invalidate(ctx, InsightsKey(userID))
	for _, id := range appIDs {
		Invalidate(ctx, ApplicationKey(id))
	}
}

func InvalidateResume(ctx context.Context, resumeID uint) {
	Invalidate(ctx, ResumeKey(resumeID))
}
