package service

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/events"
	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/repository"
	apperrors "github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/pkg/util/errorutil"
)

var ticketIDPattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

type ticketFixture struct {
	svc     *TicketService
	tickets *fakeTicketRepo
	blobs   *fakeBlobStore
	mailer  *recordingMailer
}

func newTicketFixture(deps TicketDependencies) *ticketFixture {
	f := &ticketFixture{
		tickets: newFakeTicketRepo(),
		blobs:   &fakeBlobStore{},
		mailer:  &recordingMailer{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	NewNotificationService(dispatcher, testRenderer, f.mailer, zap.NewNop()).RegisterHandlers()

	deps.TicketRepo = f.tickets
	deps.Blobs = f.blobs
	deps.Dispatcher = dispatcher
	f.svc = NewTicketService(deps)
	return f
}

func validReport() TicketReport {
	return TicketReport{
		ReporterName:  "Citizen",
		ReporterEmail: "citizen@x.com",
		ReporterPhone: "9000000000",
		Region:        "North",
		Latitude:      "22.5726",
		Longitude:     "88.3639",
		Description:   "Overflowing bin near the market",
		Image:         Upload{Name: "bin.jpg", Data: []byte{0xFF, 0xD8, 0xFF}},
	}
}

func TestRaiseIssue(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 3, 5, 20, 45, 7, 0, time.UTC)
	f := newTicketFixture(TicketDependencies{Clock: func() time.Time { return fixed }})

	ticket, msg, err := f.svc.RaiseIssue(ctx, validReport())
	require.NoError(t, err)
	assert.Regexp(t, ticketIDPattern, ticket.TicketID)
	assert.Equal(t, "Issue raised successfully. Ticket ID: "+ticket.TicketID, msg)

	stored, err := f.svc.GetTicket(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Equal(t, "06/03/2024 02:15:07", domain.FormatTimestamp(stored.CreatedAt))
	assert.Equal(t, "https://files.test/1-bin.jpg", stored.ImageURL)
	assert.Nil(t, stored.Rating)

	sent := f.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "citizen@x.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, ticket.TicketID)
	assert.Contains(t, sent[0].Body, "Region: North")
}

func TestRaiseIssueValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*TicketReport)
		message string
	}{
		{"no image bytes", func(r *TicketReport) { r.Image.Data = nil }, "Invalid request. Image data missing."},
		{"no image name", func(r *TicketReport) { r.Image.Name = "" }, "Invalid request. Image data missing."},
		{"empty description", func(r *TicketReport) { r.Description = "" }, "Invalid description (max 300 characters)."},
		{"301 characters", func(r *TicketReport) { r.Description = strings.Repeat("a", 301) }, "Invalid description (max 300 characters)."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTicketFixture(TicketDependencies{})
			report := validReport()
			tc.mutate(&report)

			_, _, err := f.svc.RaiseIssue(ctx, report)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
			assert.EqualError(t, err, tc.message)
			assert.Zero(t, f.tickets.creates)
			assert.Empty(t, f.blobs.uploads)
			assert.Empty(t, f.mailer.messages())
		})
	}
}

func TestRaiseIssueDescriptionCountsCharacters(t *testing.T) {
	f := newTicketFixture(TicketDependencies{})
	report := validReport()
	report.Description = strings.Repeat("ব", 300)

	_, _, err := f.svc.RaiseIssue(context.Background(), report)
	require.NoError(t, err)
}

func TestRaiseIssueIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(TicketDependencies{})

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		ticket, _, err := f.svc.RaiseIssue(ctx, validReport())
		require.NoError(t, err)
		_, dup := seen[ticket.TicketID]
		require.False(t, dup, ticket.TicketID)
		seen[ticket.TicketID] = struct{}{}
	}
}

func TestRaiseIssueResamplesTakenID(t *testing.T) {
	ctx := context.Background()
	// rand.Int masks each byte to six bits; 0x00 draws 'A' and 0x01 draws 'B'.
	entropy := bytes.NewReader(append(bytes.Repeat([]byte{0x00}, 8), bytes.Repeat([]byte{0x01}, 8)...))
	f := newTicketFixture(TicketDependencies{Entropy: entropy})
	f.tickets.tickets["AAAAAAAA"] = domain.Ticket{TicketID: "AAAAAAAA", Status: domain.TicketStatusOpen}

	ticket, _, err := f.svc.RaiseIssue(ctx, validReport())
	require.NoError(t, err)
	assert.Equal(t, "BBBBBBBB", ticket.TicketID)
}

func TestRaiseIssueRetriesInsertConflict(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(TicketDependencies{})
	f.tickets.createErrs = []error{&repository.DuplicateError{Constraint: "tickets_pkey"}}

	ticket, _, err := f.svc.RaiseIssue(ctx, validReport())
	require.NoError(t, err)
	assert.Equal(t, 2, f.tickets.creates)
	assert.Len(t, f.blobs.uploads, 1)

	_, err = f.svc.GetTicket(ctx, ticket.TicketID)
	require.NoError(t, err)
}

func TestRaiseIssueGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newTicketFixture(TicketDependencies{})
	for i := 0; i < maxTicketInsertAttempt; i++ {
		f.tickets.createErrs = append(f.tickets.createErrs, &repository.DuplicateError{Constraint: "tickets_pkey"})
	}

	_, _, err := f.svc.RaiseIssue(context.Background(), validReport())
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Equal(t, maxTicketInsertAttempt, f.tickets.creates)
	assert.Empty(t, f.mailer.messages())
}

func TestRaiseIssueAdapterFailure(t *testing.T) {
	outage := errors.New("connection reset")
	f := newTicketFixture(TicketDependencies{})
	f.tickets.createErrs = []error{outage}

	_, _, err := f.svc.RaiseIssue(context.Background(), validReport())
	assert.ErrorIs(t, err, outage)
	assert.Empty(t, f.mailer.messages())
	assert.Equal(t, []string{"https://files.test/1-bin.jpg"}, f.blobs.deleted)
}

// gatedBlobStore parks uploads named "slow.jpg" until release is closed.
type gatedBlobStore struct {
	fakeBlobStore
	entered chan struct{}
	release chan struct{}
}

func (b *gatedBlobStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	if name == "slow.jpg" {
		close(b.entered)
		<-b.release
	}
	return b.fakeBlobStore.Upload(ctx, name, data)
}

func TestRaiseIssueUploadsOutsideIDAllocation(t *testing.T) {
	ctx := context.Background()
	blobs := &gatedBlobStore{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewTicketService(TicketDependencies{TicketRepo: newFakeTicketRepo(), Blobs: blobs})

	slow := validReport()
	slow.Image.Name = "slow.jpg"
	slowDone := make(chan error, 1)
	go func() {
		_, _, err := svc.RaiseIssue(ctx, slow)
		slowDone <- err
	}()
	<-blobs.entered

	fastDone := make(chan error, 1)
	go func() {
		_, _, err := svc.RaiseIssue(ctx, validReport())
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ticket blocked behind another report's upload")
	}

	close(blobs.release)
	require.NoError(t, <-slowDone)
}

func TestRaiseIssueSurvivesMailFailure(t *testing.T) {
	f := newTicketFixture(TicketDependencies{})
	f.mailer.err = errors.New("smtp down")

	ticket, _, err := f.svc.RaiseIssue(context.Background(), validReport())
	require.NoError(t, err)
	_, err = f.svc.GetTicket(context.Background(), ticket.TicketID)
	require.NoError(t, err)
}

func TestGetTicket(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(TicketDependencies{})
	f.tickets.tickets["AB12CD34"] = domain.Ticket{TicketID: "AB12CD34", Status: domain.TicketStatusCompleted}

	ticket, err := f.svc.GetTicket(ctx, "  AB12CD34 ")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCompleted, ticket.Status)

	_, err = f.svc.GetTicket(ctx, "ab12cd34")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.EqualError(t, err, "Ticket ID not found.")

	_, err = f.svc.GetTicket(ctx, "   ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.EqualError(t, err, "No Ticket ID provided.")
}

func TestSubmitFeedbackLastWriteWins(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(TicketDependencies{})
	f.tickets.tickets["AB12CD34"] = domain.Ticket{TicketID: "AB12CD34", Status: domain.TicketStatusOpen}

	msg, err := f.svc.SubmitFeedback(ctx, "AB12CD34", 2, "slow")
	require.NoError(t, err)
	assert.Equal(t, "Thank you for your valuable feedback!", msg)

	_, err = f.svc.SubmitFeedback(ctx, "AB12CD34", 5, "fixed")
	require.NoError(t, err)

	ticket, err := f.svc.GetTicket(ctx, "AB12CD34")
	require.NoError(t, err)
	require.NotNil(t, ticket.Rating)
	assert.Equal(t, 5, *ticket.Rating)
	assert.Equal(t, "fixed", *ticket.RatingFeedback)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestSubmitFeedbackFailures(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(TicketDependencies{})

	_, err := f.svc.SubmitFeedback(ctx, "", 4, "ok")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.EqualError(t, err, "Error: Invalid Ticket ID.")

	_, err = f.svc.SubmitFeedback(ctx, "NOPE0000", 4, "ok")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.EqualError(t, err, "Error: Ticket not found.")
}
