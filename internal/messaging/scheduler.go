package messaging

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/flynn-ai/deskpilot/internal/errors"
)

// WhatsAppSender is the part of the messenger a scheduled job needs.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, phone, message string) (string, error)
}

// Job is a pending one-shot WhatsApp message.
type Job struct {
	ID      cron.EntryID
	Phone   string
	Message string
	At      time.Time
}

// Scheduler runs one-shot WhatsApp sends on a cron with second resolution.
// Each entry removes itself after firing.
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	sender  WhatsAppSender
	pending map[cron.EntryID]Job
	now     func() time.Time
	logger  *zap.Logger
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(sender WhatsAppSender, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		sender:  sender,
		pending: make(map[cron.EntryID]Job),
		now:     time.Now,
		logger:  logger.Named("scheduler"),
	}
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running sends to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// ScheduleWhatsApp queues message for phone at the given time.
func (s *Scheduler) ScheduleWhatsApp(_ context.Context, phone, message string, at time.Time) (string, error) {
	at = at.Local()
	if !at.After(s.now()) {
		return "", errors.NewBuilder(errors.CodeUnsupported, "Scheduled time must be in the future").User().Build()
	}

	spec := fmt.Sprintf("%d %d %d %d %d *", at.Second(), at.Minute(), at.Hour(), at.Day(), int(at.Month()))

	s.mu.Lock()
	defer s.mu.Unlock()

	var id cron.EntryID
	id, err := s.cron.AddFunc(spec, func() { s.fire(id) })
	if err != nil {
		return "", errors.BackendFailure(err, "failed to schedule message")
	}
	s.pending[id] = Job{ID: id, Phone: phone, Message: message, At: at}

	s.logger.Info("scheduled whatsapp message", zap.String("phone", phone), zap.Time("at", at))
	return fmt.Sprintf("WhatsApp message to %s scheduled for %s", phone, at.Format("15:04")), nil
}

// Pending returns the queued jobs ordered by time.
func (s *Scheduler) Pending() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.pending))
	for _, j := range s.pending {
		jobs = append(jobs, j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].At.Before(jobs[k].At) })
	return jobs
}

// Cancel drops a pending job.
func (s *Scheduler) Cancel(id cron.EntryID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	s.cron.Remove(id)
	return true
}

func (s *Scheduler) fire(id cron.EntryID) {
	s.mu.Lock()
	job, ok := s.pending[id]
	delete(s.pending, id)
	s.cron.Remove(id)
	s.mu.Unlock()

	if !ok {
		return
	}

	status, err := s.sender.SendWhatsApp(context.Background(), job.Phone, job.Message)
	if err != nil {
		s.logger.Error("scheduled whatsapp message failed", zap.String("phone", job.Phone), zap.Error(err))
		return
	}
	s.logger.Info("scheduled whatsapp message sent", zap.String("phone", job.Phone), zap.String("status", status))
}

var clockRegex = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)

// NextOccurrence resolves a wall-clock time such as "5pm", "7:30 am" or
// "17:45" to its next occurrence after now.
func NextOccurrence(clock string, now time.Time) (time.Time, error) {
	m := clockRegex.FindStringSubmatch(strings.ToLower(strings.TrimSpace(clock)))
	if m == nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q", clock)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	switch m[3] {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return time.Time{}, fmt.Errorf("unrecognized time %q", clock)
		}
		hour %= 12
		if m[3] == "pm" {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("unrecognized time %q", clock)
	}

	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, nil
}
