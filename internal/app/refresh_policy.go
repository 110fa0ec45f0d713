package app

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// RefreshPolicy decides whether a refresh of the given scope is necessary.
// RecordRefresh is called after a refresh of the scope succeeds.
type RefreshPolicy interface {
	ShouldRefresh(scope string) bool
	RecordRefresh(scope string)
}

type alwaysRefreshPolicy struct{}

func (alwaysRefreshPolicy) ShouldRefresh(scope string) bool {
	return true
}

func (alwaysRefreshPolicy) RecordRefresh(scope string) {
}

// NewAlwaysRefreshPolicy refreshes unconditionally. This is the default.
func NewAlwaysRefreshPolicy() RefreshPolicy {
	return alwaysRefreshPolicy{}
}

type intervalRefreshPolicy struct {
	refreshedAt *ttlcache.Cache[string, time.Time]
}

func (p *intervalRefreshPolicy) ShouldRefresh(scope string) bool {
	return p.refreshedAt.Get(scope) == nil
}

func (p *intervalRefreshPolicy) RecordRefresh(scope string) {
	p.refreshedAt.Set(scope, time.Now(), ttlcache.DefaultTTL)
}

// NewIntervalRefreshPolicy skips refreshes of a scope that was successfully
// refreshed within the given interval.
func NewIntervalRefreshPolicy(interval time.Duration) (RefreshPolicy, func()) {
	refreshedAt := ttlcache.New[string, time.Time](
		ttlcache.WithTTL[string, time.Time](interval),
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)
	go refreshedAt.Start()

	return &intervalRefreshPolicy{refreshedAt: refreshedAt}, refreshedAt.Stop
}
