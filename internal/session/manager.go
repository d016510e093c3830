package session

import (
	"sync"
	"time"

	"emberfront/internal/device"
	"emberfront/internal/events"
	"emberfront/internal/shopapi"
)

// Manager hands out the per-device store pair. Each device gets its own
// isolated upstream client, so one device's cookie session can never bleed
// into another's.
type Manager struct {
	mu      sync.RWMutex
	bundles map[string]*Bundle

	api          *shopapi.Client
	devices      *device.Store
	bus          *events.EventBus
	loginTimeout time.Duration
}

type Bundle struct {
	Store *Store
	Admin *AdminStore
}

func NewManager(api *shopapi.Client, devices *device.Store, bus *events.EventBus, loginTimeout time.Duration) *Manager {
	return &Manager{
		bundles:      make(map[string]*Bundle),
		api:          api,
		devices:      devices,
		bus:          bus,
		loginTimeout: loginTimeout,
	}
}

// For returns the store pair for a device, creating it on first sight.
func (m *Manager) For(deviceID string) *Bundle {
	m.mu.RLock()
	bundle, ok := m.bundles[deviceID]
	m.mu.RUnlock()
	if ok {
		return bundle
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if bundle, ok = m.bundles[deviceID]; ok {
		return bundle
	}

	api := m.api.Isolated()
	bundle = &Bundle{
		Store: NewStore(api, m.devices, deviceID, m.bus, m.loginTimeout),
		Admin: NewAdminStore(api, m.devices, deviceID, m.bus, m.loginTimeout),
	}
	m.bundles[deviceID] = bundle
	return bundle
}
