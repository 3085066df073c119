package model

// ShiftStatus is a stage in the shift lifecycle
type ShiftStatus string

const (
	StatusDraft      ShiftStatus = "draft"
	StatusPublished  ShiftStatus = "published"
	StatusAssigned   ShiftStatus = "assigned"
	StatusUnassigned ShiftStatus = "unassigned"
	StatusOffered    ShiftStatus = "offered"
	StatusAccepted   ShiftStatus = "accepted"
	StatusRejected   ShiftStatus = "rejected"
	StatusConfirmed  ShiftStatus = "confirmed"
	StatusActive     ShiftStatus = "active"
	StatusCompleted  ShiftStatus = "completed"
	StatusNoShow     ShiftStatus = "no_show"
	StatusCancelled  ShiftStatus = "cancelled"
	StatusLocked     ShiftStatus = "locked"
	StatusArchived   ShiftStatus = "archived"
)

// AllShiftStatuses lists every status in lifecycle order
var AllShiftStatuses = []ShiftStatus{
	StatusDraft, StatusPublished, StatusAssigned, StatusUnassigned, StatusOffered,
	StatusAccepted, StatusRejected, StatusConfirmed, StatusActive, StatusCompleted,
	StatusNoShow, StatusCancelled, StatusLocked, StatusArchived,
}

// IsValid returns true if s is a known status
func (s ShiftStatus) IsValid() bool {
	for _, status := range AllShiftStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsProtected returns true for statuses that bulk operations leave alone by default
func (s ShiftStatus) IsProtected() bool {
	return s == StatusCompleted || s == StatusLocked
}

// ShiftEvent is something that happens to a shift and may move its status
type ShiftEvent string

const (
	EventPublish  ShiftEvent = "publish"
	EventAssign   ShiftEvent = "assign"
	EventUnassign ShiftEvent = "unassign"
	EventOffer    ShiftEvent = "offer"
	EventAccept   ShiftEvent = "accept"
	EventReject   ShiftEvent = "reject"
	EventConfirm  ShiftEvent = "confirm"
	EventStart    ShiftEvent = "start"
	EventComplete ShiftEvent = "complete"
	EventNoShow   ShiftEvent = "no_show"
	EventCancel   ShiftEvent = "cancel"
	EventLock     ShiftEvent = "lock"
	EventArchive  ShiftEvent = "archive"
)

// transitions maps current status -> event -> next status.
// Anything not listed is an illegal transition.
var transitions = map[ShiftStatus]map[ShiftEvent]ShiftStatus{
	StatusDraft: {
		EventPublish: StatusPublished,
		EventAssign:  StatusAssigned,
		EventCancel:  StatusCancelled,
	},
	StatusPublished: {
		EventAssign:   StatusAssigned,
		EventUnassign: StatusUnassigned,
		EventOffer:    StatusOffered,
		EventCancel:   StatusCancelled,
		EventLock:     StatusLocked,
	},
	StatusUnassigned: {
		EventAssign: StatusAssigned,
		EventOffer:  StatusOffered,
		EventCancel: StatusCancelled,
		EventLock:   StatusLocked,
	},
	StatusOffered: {
		EventAssign:   StatusAssigned,
		EventAccept:   StatusAccepted,
		EventReject:   StatusRejected,
		EventUnassign: StatusUnassigned,
		EventCancel:   StatusCancelled,
	},
	StatusAssigned: {
		EventAccept:   StatusAccepted,
		EventReject:   StatusRejected,
		EventConfirm:  StatusConfirmed,
		EventUnassign: StatusUnassigned,
		EventNoShow:   StatusNoShow,
		EventCancel:   StatusCancelled,
		EventLock:     StatusLocked,
	},
	StatusRejected: {
		EventAssign:   StatusAssigned,
		EventOffer:    StatusOffered,
		EventUnassign: StatusUnassigned,
		EventCancel:   StatusCancelled,
	},
	StatusAccepted: {
		EventConfirm:  StatusConfirmed,
		EventUnassign: StatusUnassigned,
		EventNoShow:   StatusNoShow,
		EventCancel:   StatusCancelled,
		EventLock:     StatusLocked,
	},
	StatusConfirmed: {
		EventStart:    StatusActive,
		EventUnassign: StatusUnassigned,
		EventNoShow:   StatusNoShow,
		EventCancel:   StatusCancelled,
		EventLock:     StatusLocked,
	},
	StatusActive: {
		EventComplete: StatusCompleted,
		EventNoShow:   StatusNoShow,
		EventCancel:   StatusCancelled,
	},
	StatusCompleted: {
		EventLock:    StatusLocked,
		EventArchive: StatusArchived,
	},
	StatusNoShow: {
		EventLock:    StatusLocked,
		EventArchive: StatusArchived,
	},
	StatusCancelled: {
		EventArchive: StatusArchived,
	},
	StatusLocked: {
		EventArchive: StatusArchived,
	},
	StatusArchived: {},
}

// Transition returns the status reached by applying event to current.
// Returns an *InvalidTransitionError if the lifecycle does not allow it.
func Transition(current ShiftStatus, event ShiftEvent) (ShiftStatus, error) {
	next, ok := transitions[current][event]
	if !ok {
		return current, &InvalidTransitionError{From: current, Event: event}
	}
	return next, nil
}

// CanTransition reports whether event is legal from current
func CanTransition(current ShiftStatus, event ShiftEvent) bool {
	_, ok := transitions[current][event]
	return ok
}
