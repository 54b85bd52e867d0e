package gateway

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Stats is the payload of the stats endpoint. The daily fields are only
// present when Redis is configured.
type Stats struct {
	Online     int    `json:"online"`
	Peak       int    `json:"peak"`
	Date       string `json:"date"`
	TodayMax   *int64 `json:"today_max,omitempty"`
	TodayTotal *int64 `json:"today_total,omitempty"`
}

func (h *Hub) updateDailyOnlineStats(currentOnline int) {
	if h.rc == nil || currentOnline < 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	dateKey := shortDateKey(h.clock.Now())

	maxOnline, err := h.rc.HGetInt(ctx, redisKeyMaxOnlineCount, dateKey)
	if err != nil {
		h.logger.Warn("gateway get max online failed", zap.Error(err))
	}
	if int64(currentOnline) > maxOnline {
		if err := h.rc.HSet(ctx, redisKeyMaxOnlineCount, dateKey, currentOnline); err != nil {
			h.logger.Warn("gateway set max online failed", zap.Error(err))
		}
	}

	if _, err := h.rc.HIncrBy(ctx, redisKeyMaxOnlineCountTotal, dateKey, 1); err != nil {
		h.logger.Warn("gateway incr online total failed", zap.Error(err))
	}
}

// Stats reports live counts plus today's Redis counters when available.
func (h *Hub) Stats(ctx context.Context) Stats {
	dateKey := shortDateKey(h.clock.Now())
	out := Stats{
		Online: h.ClientCount(),
		Peak:   h.PeakCount(),
		Date:   dateKey,
	}
	if h.rc == nil {
		return out
	}

	if v, err := h.rc.HGetInt(ctx, redisKeyMaxOnlineCount, dateKey); err == nil {
		out.TodayMax = &v
	} else {
		h.logger.Warn("gateway read max online failed", zap.Error(err))
	}
	if v, err := h.rc.HGetInt(ctx, redisKeyMaxOnlineCountTotal, dateKey); err == nil {
		out.TodayTotal = &v
	} else {
		h.logger.Warn("gateway read online total failed", zap.Error(err))
	}
	return out
}

func shortDateKey(t time.Time) string {
	return t.Format("1-2-06")
}
