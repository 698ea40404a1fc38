package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/auth"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/challenge"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/events"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/notification"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/repository"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/storage"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts []domain.Account
	seq      int
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return &repository.DuplicateError{Constraint: repository.AccountsEmailConstraint}
		}
		if strings.EqualFold(existing.Username, account.Username) {
			return &repository.DuplicateError{Constraint: repository.AccountsUsernameConstraint}
		}
	}
	r.seq++
	account.ID = fmt.Sprintf("acc-%d", r.seq)
	account.CreatedAt = time.Unix(int64(r.seq), 0)
	account.UpdatedAt = account.CreatedAt
	r.accounts = append(r.accounts, *account)
	return nil
}

func (r *fakeAccountRepo) List(context.Context) ([]domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Account(nil), r.accounts...), nil
}

func (r *fakeAccountRepo) ListByStatus(_ context.Context, status domain.AccountStatus) ([]domain.Account, error) {
	return r.filter(func(a domain.Account) bool { return a.Status == status }), nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	return r.first(func(a domain.Account) bool { return a.Username == username })
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return r.first(func(a domain.Account) bool { return a.Email == email })
}

func (r *fakeAccountRepo) GetByEmailFold(_ context.Context, email string) (*domain.Account, error) {
	return r.first(func(a domain.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (r *fakeAccountRepo) GetByIdentifier(_ context.Context, identifier string) (*domain.Account, error) {
	return r.first(func(a domain.Account) bool {
		return strings.EqualFold(a.Email, identifier) || strings.EqualFold(a.Username, identifier)
	})
}

func (r *fakeAccountRepo) EmailExists(_ context.Context, email string) (bool, error) {
	return len(r.filter(func(a domain.Account) bool { return a.Email == email })) > 0, nil
}

func (r *fakeAccountRepo) UsernameExistsFold(_ context.Context, username string) (bool, error) {
	return len(r.filter(func(a domain.Account) bool { return strings.EqualFold(a.Username, username) })) > 0, nil
}

func (r *fakeAccountRepo) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) error {
	return r.update(id, func(a *domain.Account) { a.Status = status })
}

func (r *fakeAccountRepo) UpdatePassword(_ context.Context, id, hash string) error {
	return r.update(id, func(a *domain.Account) { a.PasswordHash = hash })
}

func (r *fakeAccountRepo) filter(keep func(domain.Account) bool) []domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Account
	for _, a := range r.accounts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r *fakeAccountRepo) first(match func(domain.Account) bool) (*domain.Account, error) {
	found := r.filter(match)
	if len(found) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &found[0], nil
}

func (r *fakeAccountRepo) update(id string, apply func(*domain.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		if r.accounts[i].ID == id {
			apply(&r.accounts[i])
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	creates int

	// createErrs are returned by successive Create calls before falling
	// through to the normal insert.
	createErrs []error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return err
	}
	if _, ok := r.tickets[ticket.TicketID]; ok {
		return &repository.DuplicateError{Constraint: "tickets_pkey"}
	}
	r.tickets[ticket.TicketID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Exists(_ context.Context, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tickets[ticketID]
	return ok, nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, ticketID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r *fakeTicketRepo) UpdateFeedback(_ context.Context, ticketID string, rating int, feedback string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Rating = &rating
	t.RatingFeedback = &feedback
	r.tickets[ticketID] = t
	return nil
}

type fakeBlobStore struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
	err     error
}

func (b *fakeBlobStore) Upload(_ context.Context, name string, _ []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	b.uploads = append(b.uploads, name)
	return fmt.Sprintf("https://files.test/%d-%s", len(b.uploads), name), nil
}

func (b *fakeBlobStore) Delete(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, url)
	return nil
}

var _ storage.BlobStore = (*fakeBlobStore)(nil)

type recordingMailer struct {
	mu   sync.Mutex
	sent []notification.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg notification.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []notification.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.Message(nil), m.sent...)
}

var testRenderer = notification.Renderer{
	WorkerSender:  "Waste Reporting & Redressal System",
	CitizenSender: "Smart Waste Report Management App",
	AdminContact:  "admin@city.gov",
	OtpValidity:   10,
}

type identityFixture struct {
	svc      *IdentityService
	accounts *fakeAccountRepo
	blobs    *fakeBlobStore
	mailer   *recordingMailer
	store    *challenge.MemoryStore
	hasher   *auth.PasswordHasher
}

func newIdentityFixture() *identityFixture {
	f := &identityFixture{
		accounts: &fakeAccountRepo{},
		blobs:    &fakeBlobStore{},
		mailer:   &recordingMailer{},
		store:    challenge.NewMemoryStore(),
		hasher:   auth.NewPasswordHasher(bcrypt.MinCost),
	}
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, testRenderer, f.mailer, zap.NewNop()).RegisterHandlers()

	f.svc = NewIdentityService(IdentityDependencies{
		AccountRepo:      f.accounts,
		RegistrationOtps: challenge.New(f.store, challenge.PurposeRegistration, time.Minute),
		ResetOtps:        challenge.New(f.store, challenge.PurposePasswordReset, time.Minute),
		Blobs:            f.blobs,
		Passwords:        f.hasher,
		Dispatcher:       dispatcher,
	})
	return f
}

// seed inserts an account directly with a hashed password.
func (f *identityFixture) seed(username, email, password, region string, status domain.AccountStatus) domain.Account {
	hash, err := f.hasher.Hash(password)
	if err != nil {
		panic(err)
	}
	account := domain.Account{
		Name:         strings.ToUpper(username[:1]) + username[1:],
		Email:        email,
		Region:       region,
		Username:     username,
		PasswordHash: hash,
		Status:       status,
	}
	if err := f.accounts.Create(context.Background(), &account); err != nil {
		panic(err)
	}
	return account
}

// storedCode reads the live code for address without consuming it.
func (f *identityFixture) storedCode(purpose, address string) string {
	code, err := f.store.Get(context.Background(), "otp:"+purpose+":"+address)
	if err != nil {
		return ""
	}
	return code
}
