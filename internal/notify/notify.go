package notify

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"emberfront/internal/config"
	"emberfront/internal/models"
)

type Type string

const (
	TypePaymentOverdue  Type = "PAYMENT_OVERDUE"
	TypePaymentDueSoon  Type = "PAYMENT_DUE_SOON"
	TypeUpdateAvailable Type = "UPDATE_AVAILABLE"
	TypeMaintenance     Type = "MAINTENANCE"
)

// IsValidType checks if a given notification type is valid
func IsValidType(t Type) bool {
	switch t {
	case TypePaymentOverdue, TypePaymentDueSoon, TypeUpdateAvailable, TypeMaintenance:
		return true
	}
	return false
}

// Notification is ephemeral UI advice. Nothing here persists beyond the
// display cycle except the last-seen version marker for update notices.
type Notification struct {
	ID       string    `json:"id"`
	Type     Type      `json:"type"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Deadline time.Time `json:"deadline,omitempty"`
	Actions  []string  `json:"actions,omitempty"`
}

// maintenanceNotice is how far ahead the maintenance banner starts showing.
const maintenanceNotice = 7 * 24 * time.Hour

// Evaluate is a pure function of identity state: given who is signed in,
// the clock and the last update version they dismissed, it produces zero or
// more advisories with deterministic thresholds. Not authorization-critical;
// purely advisory.
func Evaluate(identity *models.Identity, cfg config.NotifyConfig, now time.Time, lastSeen string) []Notification {
	var out []Notification

	if identity != nil && identity.Business != nil && !identity.Business.NextPaymentDue.IsZero() {
		due := identity.Business.NextPaymentDue
		days := daysUntil(now, due)

		switch {
		case days <= 0:
			out = append(out, Notification{
				ID:       uuid.New().String(),
				Type:     TypePaymentOverdue,
				Title:    "Payment Overdue",
				Message:  fmt.Sprintf("The subscription payment for %s is overdue. Service may be suspended.", identity.Business.Name),
				Deadline: due,
				Actions:  []string{"pay_now", "contact_support"},
			})
		case days <= cfg.DueSoonDays:
			out = append(out, Notification{
				ID:       uuid.New().String(),
				Type:     TypePaymentDueSoon,
				Title:    "Payment Due Soon",
				Message:  fmt.Sprintf("The subscription payment for %s is due in %d day(s).", identity.Business.Name, days),
				Deadline: due,
				Actions:  []string{"pay_now", "remind_later"},
			})
		}
	}

	if cfg.AppVersion != "" && lastSeen != cfg.AppVersion {
		out = append(out, Notification{
			ID:      uuid.New().String(),
			Type:    TypeUpdateAvailable,
			Title:   "Update Available",
			Message: fmt.Sprintf("Version %s is available.", cfg.AppVersion),
			Actions: []string{"refresh", "dismiss"},
		})
	}

	if !cfg.MaintenanceStart.IsZero() && now.Before(cfg.MaintenanceEnd) && now.After(cfg.MaintenanceStart.Add(-maintenanceNotice)) {
		out = append(out, Notification{
			ID:       uuid.New().String(),
			Type:     TypeMaintenance,
			Title:    "Scheduled Maintenance",
			Message:  fmt.Sprintf("Maintenance is scheduled from %s to %s.", cfg.MaintenanceStart.Format(time.RFC1123), cfg.MaintenanceEnd.Format(time.RFC1123)),
			Deadline: cfg.MaintenanceStart,
			Actions:  []string{"dismiss"},
		})
	}

	return out
}

// daysUntil counts whole days from now to due, rounding partial days up so
// "due tomorrow morning" reads as 1, not 0. Zero or negative means overdue.
func daysUntil(now, due time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}
