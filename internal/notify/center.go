package notify

import (
	"context"
	"sync"
	"time"

	"emberfront/internal/config"
	"emberfront/internal/device"
	"emberfront/internal/events"
	"emberfront/internal/models"
	console "emberfront/internal/utils/logger"
)

var log = console.New("notify")

// Center is the display surface: one visible slot plus a FIFO backlog.
// Dismissing the visible notification promotes the backlog head into the
// slot.
type Center struct {
	mu      sync.Mutex
	current *Notification
	backlog []Notification
	bus     *events.EventBus
}

func NewCenter(bus *events.EventBus) *Center {
	return &Center{bus: bus}
}

// Push shows the notification if the slot is free, otherwise queues it.
// Duplicates by type are dropped; an advisory re-derived from the same state
// should not stack up.
func (c *Center) Push(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.Type == n.Type {
		return
	}
	for _, queued := range c.backlog {
		if queued.Type == n.Type {
			return
		}
	}

	if c.current == nil {
		c.current = &n
		c.bus.Emit(events.TopicNotificationShown, n)
		return
	}
	c.backlog = append(c.backlog, n)
}

// Current returns the visible notification, nil when the slot is empty.
func (c *Center) Current() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Dismiss clears the slot and promotes the backlog head. Returns the
// notification that was dismissed, nil if the slot was already empty.
func (c *Center) Dismiss() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	dismissed := c.current
	c.current = nil

	if len(c.backlog) > 0 {
		next := c.backlog[0]
		c.backlog = c.backlog[1:]
		c.current = &next
		c.bus.Emit(events.TopicNotificationShown, next)
	}
	return dismissed
}

// Pending returns the backlog size, for the status endpoint.
func (c *Center) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.backlog)
}

// Service owns one Center per device and the persisted last-seen marker.
type Service struct {
	mu      sync.Mutex
	centers map[string]*Center

	devices *device.Store
	cfg     config.NotifyConfig
	bus     *events.EventBus
}

func NewService(devices *device.Store, cfg config.NotifyConfig, bus *events.EventBus) *Service {
	return &Service{
		centers: make(map[string]*Center),
		devices: devices,
		cfg:     cfg,
		bus:     bus,
	}
}

// CenterFor returns the device's center, creating it on first sight.
func (s *Service) CenterFor(deviceID string) *Center {
	s.mu.Lock()
	defer s.mu.Unlock()

	center, ok := s.centers[deviceID]
	if !ok {
		center = NewCenter(s.bus)
		s.centers[deviceID] = center
	}
	return center
}

// Refresh re-derives advisories from the identity state and feeds them into
// the device's center.
func (s *Service) Refresh(ctx context.Context, deviceID string, identity *models.Identity) {
	lastSeen, err := s.devices.LastSeenVersion(ctx, deviceID)
	if err != nil {
		log.Warn("failed to read last seen version: %v", err)
	}

	center := s.CenterFor(deviceID)
	for _, n := range Evaluate(identity, s.cfg, time.Now(), lastSeen) {
		center.Push(n)
	}
}

// Dismiss closes the visible notification. Dismissing an update notice
// records the version marker so the same version never re-enters.
func (s *Service) Dismiss(ctx context.Context, deviceID string) *Notification {
	dismissed := s.CenterFor(deviceID).Dismiss()
	if dismissed != nil && dismissed.Type == TypeUpdateAvailable {
		if err := s.devices.SetLastSeenVersion(ctx, deviceID, s.cfg.AppVersion); err != nil {
			log.Warn("failed to persist last seen version: %v", err)
		}
	}
	return dismissed
}
