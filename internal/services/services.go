package services

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"redweb-backend/internal/auth"
	"redweb-backend/internal/database"
	"redweb-backend/internal/models"
)

// Services bundles every resource service over one Store.
type Services struct {
	Auth          *AuthService
	BloodRequests *BloodRequestService
	Drives        *DriveService
	Notifications *NotificationService
	Messages      *MessageService
	Donations     *DonationService
	Reconciler    *Reconciler
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for timestamps and statistics.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// collections holds the typed collections shared by the services.
type collections struct {
	users         *database.Collection[models.User]
	requests      *database.Collection[models.BloodRequest]
	drives        *database.Collection[models.DonationDrive]
	notifications *database.Collection[models.Notification]
	messages      *database.Collection[models.Message]
	history       *database.Collection[models.DonationRecord]

	// counters serializes the donation saga (history append, then user
	// counters) against the reconciler.
	counters sync.Mutex
}

func New(store *database.Store, tokens *auth.Manager, logger *zap.Logger, opts ...Option) *Services {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &collections{
		users:         database.NewCollection[models.User](store, database.Users),
		requests:      database.NewCollection[models.BloodRequest](store, database.BloodRequests),
		drives:        database.NewCollection[models.DonationDrive](store, database.DonationDrives),
		notifications: database.NewCollection[models.Notification](store, database.Notifications),
		messages:      database.NewCollection[models.Message](store, database.Messages),
		history:       database.NewCollection[models.DonationRecord](store, database.DonationHistory),
	}

	notifications := &NotificationService{c: c, log: logger.Named("notifications"), now: o.now}
	reconciler := &Reconciler{c: c, log: logger.Named("reconcile")}

	return &Services{
		Auth:          &AuthService{c: c, tokens: tokens, log: logger.Named("auth"), now: o.now},
		BloodRequests: &BloodRequestService{c: c, notify: notifications, log: logger.Named("blood_requests"), now: o.now},
		Drives:        &DriveService{c: c, notify: notifications, log: logger.Named("drives"), now: o.now},
		Notifications: notifications,
		Messages:      &MessageService{c: c, log: logger.Named("messages"), now: o.now},
		Donations:     &DonationService{c: c, log: logger.Named("donations"), now: o.now},
		Reconciler:    reconciler,
	}
}

// errNothingChanged aborts an Update whose callback made no changes.
var errNothingChanged = errors.New("nothing changed")

func isNothingChanged(err error) bool {
	return errors.Is(err, errNothingChanged)
}
