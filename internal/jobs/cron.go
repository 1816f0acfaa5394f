package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"handyghana/internal/domain"
)

const reminderLead = 24 * time.Hour

type Renewer interface {
	RenewDue(ctx context.Context) (int, error)
}

type BookingLister interface {
	ListConfirmedBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

type NotificationCreator interface {
	Create(ctx context.Context, userID int64, t domain.NotificationType, title, body string, data map[string]any) error
}

// Deduper remembers which reminders were already sent so overlapping
// runs (or multiple instances sharing Redis) do not repeat them.
type Deduper interface {
	FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type RedisDeduper struct {
	client *redis.Client
}

func NewRedisDeduper(addr string) *RedisDeduper {
	return &RedisDeduper{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return d.client.SetNX(ctx, "jobs:"+key, 1, ttl).Result()
}

type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]time.Time)}
}

func (d *MemoryDeduper) FirstSeen(_ context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if exp, ok := d.seen[key]; ok && exp.After(now) {
		return false, nil
	}
	d.seen[key] = now.Add(ttl)
	return true, nil
}

func DeduperFromConfig(redisAddr string) Deduper {
	if redisAddr == "" {
		return NewMemoryDeduper()
	}
	return NewRedisDeduper(redisAddr)
}

// Scheduler runs the recurring background work: subscription renewals
// every hour and booking reminders every ten minutes.
type Scheduler struct {
	cron     *cron.Cron
	subs     Renewer
	bookings BookingLister
	notifs   NotificationCreator
	dedup    Deduper
	loggerf  func(format string, args ...interface{})
}

func NewScheduler(subs Renewer, bookings BookingLister, notifs NotificationCreator, dedup Deduper, loggerf func(format string, args ...interface{})) *Scheduler {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Scheduler{
		cron:     cron.New(),
		subs:     subs,
		bookings: bookings,
		notifs:   notifs,
		dedup:    dedup,
		loggerf:  loggerf,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.renewSubscriptions); err != nil {
		return fmt.Errorf("schedule renewals: %w", err)
	}
	if _, err := s.cron.AddFunc("@every 10m", s.sendBookingReminders); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) renewSubscriptions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.subs.RenewDue(ctx)
	if err != nil {
		s.loggerf("jobs: renew subscriptions: %v", err)
		return
	}
	if n > 0 {
		s.loggerf("jobs: renewed %d subscriptions", n)
	}
}

// sendBookingReminders notifies customers about confirmed bookings
// starting roughly a day from now. The scan window is wider than the
// run interval, so the deduper decides what actually goes out.
func (s *Scheduler) sendBookingReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	from := now.Add(reminderLead - 15*time.Minute)
	to := now.Add(reminderLead + 15*time.Minute)

	list, err := s.bookings.ListConfirmedBetween(ctx, from, to)
	if err != nil {
		s.loggerf("jobs: list upcoming bookings: %v", err)
		return
	}

	for i := range list {
		b := &list[i]
		key := fmt.Sprintf("reminder:booking:%d", b.ID)
		first, err := s.dedup.FirstSeen(ctx, key, 48*time.Hour)
		if err != nil {
			s.loggerf("jobs: dedup check for booking %d: %v", b.ID, err)
			continue
		}
		if !first {
			continue
		}

		body := fmt.Sprintf("Your booking on %s is coming up tomorrow.", b.ScheduledAt.Format("Mon, 2 Jan at 15:04"))
		if err := s.notifs.Create(ctx, b.UserID, domain.NotifBookingReminder, "Booking reminder", body, map[string]any{"booking_id": b.ID}); err != nil {
			s.loggerf("jobs: reminder for booking %d: %v", b.ID, err)
		}
	}
}
