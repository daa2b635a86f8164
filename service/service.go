package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"infraspend/database"
	"infraspend/models"
)

// Service is the application facade. Every use case checks the Policy first,
// runs its mutation in one transaction and fires notifications after commit.
type Service struct {
	store     *database.Store
	verifier  CredentialVerifier
	policy    Policy
	lifecycle Lifecycle
	budget    BudgetAggregator
	notifier  Notifier
	blobs     BlobStore
	log       *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithVerifier replaces the default bcrypt verifier.
func WithVerifier(v CredentialVerifier) Option {
	return func(s *Service) { s.verifier = v }
}

// WithNotifier sets who is told about reviewed expenditures.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithBlobStore sets where attachment bytes are kept.
func WithBlobStore(b BlobStore) Option {
	return func(s *Service) { s.blobs = b }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds the facade over store.
func New(store *database.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		verifier: NewBcryptVerifier(0),
		notifier: Notifiers(nil),
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "service")
	return s
}

// Policy exposes the authorization rules, for callers that need to pre-check.
func (s *Service) Policy() Policy {
	return s.policy
}

// storeErr maps store lookups to the facade's error taxonomy.
func storeErr(err error, what string) error {
	if errors.Is(err, database.ErrNotFound) {
		return notFound(what)
	}
	return err
}

func (s *Service) findUser(ctx context.Context, store *database.Store, id uint) (*models.User, error) {
	u, err := store.Users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return u, nil
}

func (s *Service) findProject(ctx context.Context, store *database.Store, id uint) (*models.Project, error) {
	p, err := store.Projects.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "project")
	}
	return p, nil
}

func (s *Service) findExpenditure(ctx context.Context, store *database.Store, id uint) (*models.Expenditure, error) {
	e, err := store.Expenditures.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "expenditure")
	}
	return e, nil
}
