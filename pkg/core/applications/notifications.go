package applications

import "fmt"

// Priority of a notification
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification tells a guard their application has been decided
type Notification struct {
	Title    string
	Message  string
	Priority Priority
}

// GenerateNotification returns the notification for app moving from previous to its
// current status. Returns nil when the status is unchanged or is not APPROVED,
// REJECTED or EXPIRED.
func GenerateNotification(app Application, previous Status) *Notification {
	if app.Status == previous {
		return nil
	}

	shift := describeShift(app)

	switch app.Status {
	case StatusApproved:
		return &Notification{
			Title:    "Shift application approved",
			Message:  fmt.Sprintf("Your application for %s has been approved.", shift),
			Priority: PriorityHigh,
		}
	case StatusRejected:
		message := fmt.Sprintf("Your application for %s was not successful.", shift)
		if app.RejectionReason != "" {
			message = fmt.Sprintf("%s Reason: %s", message, app.RejectionReason)
		}
		return &Notification{
			Title:    "Shift application declined",
			Message:  message,
			Priority: PriorityNormal,
		}
	case StatusExpired:
		return &Notification{
			Title:    "Shift application expired",
			Message:  fmt.Sprintf("Your application for %s expired before it was reviewed.", shift),
			Priority: PriorityLow,
		}
	default:
		return nil
	}
}

func describeShift(app Application) string {
	s := app.ShiftDetails
	if s.Date == "" {
		return "shift " + app.ShiftID
	}

	site := s.SiteName
	if site == "" {
		site = s.SiteID
	}
	if site == "" {
		return fmt.Sprintf("the shift on %s %s-%s", s.Date, s.StartTime, s.EndTime)
	}
	return fmt.Sprintf("the shift at %s on %s %s-%s", site, s.Date, s.StartTime, s.EndTime)
}
