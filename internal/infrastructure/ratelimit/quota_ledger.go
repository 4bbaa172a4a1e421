// Package ratelimit provides the send quota ledger.
package ratelimit

import (
	"sort"
	"sync"
	"time"

	"github.com/turtacn/smsgw/internal/domain/models"
	"github.com/turtacn/smsgw/internal/domain/service"
)

const (
	hourWindow = time.Hour
	dayWindow  = 24 * time.Hour
)

var _ service.QuotaLedger = (*QuotaLedger)(nil)

// Clock returns the current time. Tests substitute a fake one to simulate rollover.
type Clock func() time.Time

// window is a fixed-length counting window that restarts lazily.
type window struct {
	count  int
	start  time.Time
	length time.Duration
	limit  int
}

// roll resets the window when it has expired. Must be called with lock held.
func (w *window) roll(now time.Time) {
	if now.Sub(w.start) >= w.length {
		w.count = 0
		w.start = now
	}
}

func (w *window) usage() models.WindowUsage {
	return models.WindowUsage{Count: w.count, Limit: w.limit, WindowStart: w.start}
}

type callerWindows struct {
	hourly window
	daily  window
}

// QuotaLedger enforces global and per-caller hourly and daily ceilings.
// A single mutex covers every window so that check and increment are one atomic step.
type QuotaLedger struct {
	mu       sync.Mutex
	clock    Clock
	observer service.UsageObserver

	// publishMu orders observer calls. It is never held together with mu while the
	// observer runs.
	publishMu sync.Mutex

	hourly  window
	daily   window
	callers map[string]*callerWindows
	limits  []models.CallerLimit
}

// Option configures a QuotaLedger.
type Option func(*QuotaLedger)

// WithClock replaces time.Now.
func WithClock(clock Clock) Option {
	return func(l *QuotaLedger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// WithObserver publishes counter values after each admission.
func WithObserver(observer service.UsageObserver) Option {
	return func(l *QuotaLedger) {
		l.observer = observer
	}
}

// NewQuotaLedger creates a ledger with the given global ceilings and caller limits.
// If a caller name appears more than once the last entry wins.
func NewQuotaLedger(hourly, daily int, limits []models.CallerLimit, opts ...Option) *QuotaLedger {
	l := &QuotaLedger{
		clock:   time.Now,
		callers: make(map[string]*callerWindows, len(limits)),
	}
	for _, opt := range opts {
		opt(l)
	}

	now := l.clock()
	l.hourly = window{start: now, length: hourWindow, limit: hourly}
	l.daily = window{start: now, length: dayWindow, limit: daily}

	byName := make(map[string]models.CallerLimit, len(limits))
	for _, limit := range limits {
		byName[limit.Name] = limit
	}
	for name, limit := range byName {
		l.callers[name] = &callerWindows{
			hourly: window{start: now, length: hourWindow, limit: limit.Hourly},
			daily:  window{start: now, length: dayWindow, limit: limit.Daily},
		}
		l.limits = append(l.limits, limit)
	}
	sort.Slice(l.limits, func(i, j int) bool { return l.limits[i].Name < l.limits[j].Name })

	return l
}

type admission struct {
	hourly, daily             int
	caller                    string
	callerHourly, callerDaily int
	callerCounted             bool
}

// CheckAndIncrement admits one send for caller or returns a *models.QuotaExceededError
// naming the first window that is full. Windows are tested global hourly, global daily,
// caller hourly, caller daily; nothing is counted unless all pass.
func (l *QuotaLedger) CheckAndIncrement(caller string) error {
	adm, err := l.admit(caller)
	if err != nil {
		return err
	}
	if l.observer != nil {
		l.publish(adm)
	}
	return nil
}

// publish hands the current counters to the observer. The counters are read again
// under publishMu, so the last value published is never older than the last admission.
func (l *QuotaLedger) publish(adm admission) {
	l.publishMu.Lock()
	defer l.publishMu.Unlock()

	adm = l.current(adm)
	l.observer.ObserveGlobalUsage(adm.hourly, adm.daily)
	if adm.callerCounted {
		l.observer.ObserveCallerUsage(adm.caller, adm.callerHourly, adm.callerDaily)
	}
}

func (l *QuotaLedger) current(adm admission) admission {
	l.mu.Lock()
	defer l.mu.Unlock()

	adm.hourly = l.hourly.count
	adm.daily = l.daily.count
	if adm.callerCounted {
		cw := l.callers[adm.caller]
		adm.callerHourly = cw.hourly.count
		adm.callerDaily = cw.daily.count
	}
	return adm
}

func (l *QuotaLedger) admit(caller string) (admission, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()

	l.hourly.roll(now)
	if l.hourly.count >= l.hourly.limit {
		return admission{}, &models.QuotaExceededError{Scope: models.QuotaScopeGlobal, Period: models.QuotaPeriodHourly, Ceiling: l.hourly.limit}
	}
	l.daily.roll(now)
	if l.daily.count >= l.daily.limit {
		return admission{}, &models.QuotaExceededError{Scope: models.QuotaScopeGlobal, Period: models.QuotaPeriodDaily, Ceiling: l.daily.limit}
	}

	var cw *callerWindows
	if caller != "" {
		cw = l.callers[caller]
	}
	if cw != nil {
		cw.hourly.roll(now)
		if cw.hourly.count >= cw.hourly.limit {
			return admission{}, &models.QuotaExceededError{Scope: models.QuotaScopeCaller, Caller: caller, Period: models.QuotaPeriodHourly, Ceiling: cw.hourly.limit}
		}
		cw.daily.roll(now)
		if cw.daily.count >= cw.daily.limit {
			return admission{}, &models.QuotaExceededError{Scope: models.QuotaScopeCaller, Caller: caller, Period: models.QuotaPeriodDaily, Ceiling: cw.daily.limit}
		}
	}

	l.hourly.count++
	l.daily.count++
	adm := admission{hourly: l.hourly.count, daily: l.daily.count}
	if cw != nil {
		cw.hourly.count++
		cw.daily.count++
		adm.caller = caller
		adm.callerHourly = cw.hourly.count
		adm.callerDaily = cw.daily.count
		adm.callerCounted = true
	}
	return adm, nil
}

// Status returns the global windows. Expired windows are rolled, nothing is counted.
func (l *QuotaLedger) Status() models.QuotaStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	l.hourly.roll(now)
	l.daily.roll(now)
	return models.QuotaStatus{Hourly: l.hourly.usage(), Daily: l.daily.usage()}
}

// CallerStatus returns the windows of every configured caller, sorted by name.
func (l *QuotaLedger) CallerStatus() []models.CallerQuotaStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	out := make([]models.CallerQuotaStatus, 0, len(l.limits))
	for _, limit := range l.limits {
		cw := l.callers[limit.Name]
		cw.hourly.roll(now)
		cw.daily.roll(now)
		out = append(out, models.CallerQuotaStatus{
			Name:        limit.Name,
			QuotaStatus: models.QuotaStatus{Hourly: cw.hourly.usage(), Daily: cw.daily.usage()},
		})
	}
	return out
}

// Limits returns the configured caller limits, sorted by name.
func (l *QuotaLedger) Limits() []models.CallerLimit {
	out := make([]models.CallerLimit, len(l.limits))
	copy(out, l.limits)
	return out
}
