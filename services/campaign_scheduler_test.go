package services

import (
	"errors"
	"testing"
	"time"

	"crmaize-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCampaignStore struct {
	campaigns map[uuid.UUID]*models.Campaign
	schedules []models.CampaignSchedule
	logs      []uuid.UUID

	statusUpdates []string
	sentCounts    []int
	scheduledAt   *time.Time
	sentAt        *time.Time
	deactivated   []uuid.UUID

	due      []models.Campaign
	upcoming []models.Campaign
}

func newFakeCampaignStore(campaigns ...*models.Campaign) *fakeCampaignStore {
	s := &fakeCampaignStore{campaigns: map[uuid.UUID]*models.Campaign{}}
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
	return s
}

func (f *fakeCampaignStore) GetByID(id uuid.UUID) (*models.Campaign, error) {
	return f.campaigns[id], nil
}

func (f *fakeCampaignStore) UpdateStatus(id uuid.UUID, status string) error {
	f.statusUpdates = append(f.statusUpdates, status)
	if c, ok := f.campaigns[id]; ok {
		c.Status = status
	}
	return nil
}

func (f *fakeCampaignStore) UpdateScheduledAt(id uuid.UUID, at time.Time) error {
	f.scheduledAt = &at
	return nil
}

func (f *fakeCampaignStore) UpdateSentAt(id uuid.UUID, at time.Time) error {
	f.sentAt = &at
	return nil
}

func (f *fakeCampaignStore) AddSentCount(id uuid.UUID, n int) error {
	f.sentCounts = append(f.sentCounts, n)
	if c, ok := f.campaigns[id]; ok {
		c.SentCount += n
	}
	return nil
}

func (f *fakeCampaignStore) CreateSchedule(schedule *models.CampaignSchedule) error {
	f.schedules = append(f.schedules, *schedule)
	return nil
}

func (f *fakeCampaignStore) DeactivateSchedules(campaignID uuid.UUID) error {
	f.deactivated = append(f.deactivated, campaignID)
	return nil
}

func (f *fakeCampaignStore) DueScheduled(now time.Time) ([]models.Campaign, error) {
	return f.due, nil
}

func (f *fakeCampaignStore) UpcomingScheduled(now time.Time) ([]models.Campaign, error) {
	return f.upcoming, nil
}

func (f *fakeCampaignStore) LogSend(campaignID, customerID uuid.UUID, at time.Time) error {
	f.logs = append(f.logs, customerID)
	return nil
}

type fakeCustomerStore struct {
	all       []models.Customer
	bySegment map[string][]models.Customer
}

func (f *fakeCustomerStore) All() ([]models.Customer, error) {
	return f.all, nil
}

func (f *fakeCustomerStore) BySegment(segment string) ([]models.Customer, error) {
	return f.bySegment[segment], nil
}

// fakeMailer fails delivery for emails in rejected (transport says no) and
// errors for emails in broken (delivery blew up).
type fakeMailer struct {
	configured bool
	rejected   map[string]bool
	broken     map[string]bool
	sent       []string
}

func (f *fakeMailer) IsConfigured() bool { return f.configured }

func (f *fakeMailer) SendCampaignEmail(to, subject, body string, customer models.Customer) (bool, error) {
	if f.broken[to] {
		return false, errors.New("connection refused")
	}
	if f.rejected[to] {
		return false, nil
	}
	f.sent = append(f.sent, to)
	return true, nil
}

func newTestScheduler(campaigns *fakeCampaignStore, customers *fakeCustomerStore, mailer *fakeMailer) *CampaignScheduler {
	s := NewCampaignScheduler(campaigns, customers, mailer)
	s.now = func() time.Time { return testNow }
	return s
}

func testCampaign(status string) *models.Campaign {
	return &models.Campaign{
		ID:            uuid.New(),
		Name:          "Winback June",
		Type:          models.CampaignTypeEmail,
		TargetSegment: models.TargetAll,
		SubjectLine:   "We miss you",
		EmailContent:  "Come back soon",
		Status:        status,
	}
}

func testCustomers(emails ...string) []models.Customer {
	customers := make([]models.Customer, 0, len(emails))
	for _, email := range emails {
		customers = append(customers, models.Customer{ID: uuid.New(), Email: email})
	}
	return customers
}

func TestSendCampaignNow(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusDraft)
	store := newFakeCampaignStore(campaign)
	customers := &fakeCustomerStore{all: testCustomers("a@x.com", "b@x.com", "c@x.com")}
	mailer := &fakeMailer{configured: true, rejected: map[string]bool{"b@x.com": true}}

	s := newTestScheduler(store, customers, mailer)
	result, err := s.SendCampaignNow(campaign.ID)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.SentCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, "Campaign completed. Sent: 2, Failed: 1", result.Message)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Failed to send to: b@x.com", result.Errors[0])

	assert.Equal(t, models.CampaignStatusSent, campaign.Status)
	assert.Equal(t, []int{2}, store.sentCounts)
	require.NotNil(t, store.sentAt)
	assert.Equal(t, testNow, *store.sentAt)
	assert.Len(t, store.logs, 2)
}

func TestSendCampaignNowTransportError(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusDraft)
	store := newFakeCampaignStore(campaign)
	customers := &fakeCustomerStore{all: testCustomers("a@x.com", "b@x.com")}
	mailer := &fakeMailer{configured: true, broken: map[string]bool{"a@x.com": true}}

	s := newTestScheduler(store, customers, mailer)
	result, err := s.SendCampaignNow(campaign.ID)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SentCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Error sending to a@x.com: connection refused", result.Errors[0])
}

func TestSendCampaignNowNotFound(t *testing.T) {
	store := newFakeCampaignStore()
	s := newTestScheduler(store, &fakeCustomerStore{}, &fakeMailer{configured: true})

	result, err := s.SendCampaignNow(uuid.New())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Campaign not found", result.Message)
	assert.Empty(t, store.statusUpdates)
}

func TestSendCampaignNowUnconfiguredMailer(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusDraft)
	store := newFakeCampaignStore(campaign)

	s := newTestScheduler(store, &fakeCustomerStore{all: testCustomers("a@x.com")}, &fakeMailer{configured: false})
	result, err := s.SendCampaignNow(campaign.ID)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Email service not configured", result.Message)

	// State is untouched so the campaign stays sendable.
	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)
	assert.Empty(t, store.statusUpdates)
	assert.Empty(t, store.sentCounts)
	assert.Nil(t, store.sentAt)
}

func TestSendCampaignTargetsSegment(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusDraft)
	campaign.TargetSegment = models.SegmentAtRisk
	store := newFakeCampaignStore(campaign)
	customers := &fakeCustomerStore{
		all: testCustomers("everyone@x.com"),
		bySegment: map[string][]models.Customer{
			models.SegmentAtRisk: testCustomers("risky@x.com"),
		},
	}
	mailer := &fakeMailer{configured: true}

	s := newTestScheduler(store, customers, mailer)
	result, err := s.SendCampaignNow(campaign.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, result.SentCount)
	assert.Equal(t, []string{"risky@x.com"}, mailer.sent)
}

func TestSendCampaignEmptyTargetSendsNothing(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusDraft)
	campaign.TargetSegment = ""
	store := newFakeCampaignStore(campaign)
	mailer := &fakeMailer{configured: true}

	s := newTestScheduler(store, &fakeCustomerStore{all: testCustomers("a@x.com")}, mailer)
	result, err := s.SendCampaignNow(campaign.ID)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.SentCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Empty(t, mailer.sent)
	// Dispatch still completes, so the campaign transitions to sent.
	assert.Equal(t, models.CampaignStatusSent, campaign.Status)
	assert.Empty(t, store.sentCounts)
}

func TestValidateSchedule(t *testing.T) {
	s := newTestScheduler(newFakeCampaignStore(), &fakeCustomerStore{}, &fakeMailer{})

	assert.Empty(t, s.ValidateSchedule(models.ScheduleTypeImmediate, nil))

	future := testNow.Add(time.Hour)
	assert.Empty(t, s.ValidateSchedule(models.ScheduleTypeScheduled, &future))

	errs := s.ValidateSchedule(models.ScheduleTypeScheduled, nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "Scheduled date/time is required for scheduled campaigns", errs[0])

	past := testNow.Add(-time.Minute)
	errs = s.ValidateSchedule(models.ScheduleTypeScheduled, &past)
	require.Len(t, errs, 1)
	assert.Equal(t, "Scheduled date/time must be in the future", errs[0])

	// Exactly now is not in the future.
	at := testNow
	errs = s.ValidateSchedule(models.ScheduleTypeScheduled, &at)
	assert.Len(t, errs, 1)
}

func TestScheduleCampaign(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusDraft)
	store := newFakeCampaignStore(campaign)
	s := newTestScheduler(store, &fakeCustomerStore{}, &fakeMailer{})

	future := testNow.Add(2 * time.Hour)
	ok, err := s.ScheduleCampaign(campaign.ID, models.ScheduleTypeScheduled, &future, "")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.CampaignStatusScheduled, campaign.Status)
	require.NotNil(t, store.scheduledAt)
	assert.Equal(t, future, *store.scheduledAt)

	require.Len(t, store.schedules, 1)
	schedule := store.schedules[0]
	assert.Equal(t, campaign.ID, schedule.CampaignID)
	assert.Equal(t, models.ScheduleTypeScheduled, schedule.ScheduleType)
	assert.Equal(t, "UTC", schedule.Timezone)
	assert.True(t, schedule.IsActive)
}

func TestScheduleCampaignNotFound(t *testing.T) {
	s := newTestScheduler(newFakeCampaignStore(), &fakeCustomerStore{}, &fakeMailer{})

	ok, err := s.ScheduleCampaign(uuid.New(), models.ScheduleTypeImmediate, nil, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduleCampaignRejectsPastTime(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusDraft)
	store := newFakeCampaignStore(campaign)
	s := newTestScheduler(store, &fakeCustomerStore{}, &fakeMailer{})

	past := testNow.Add(-time.Hour)
	ok, err := s.ScheduleCampaign(campaign.ID, models.ScheduleTypeScheduled, &past, "UTC")

	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.CampaignStatusDraft, campaign.Status)
	assert.Empty(t, store.schedules)
}

func TestProcessScheduledCampaigns(t *testing.T) {
	first := testCampaign(models.CampaignStatusScheduled)
	second := testCampaign(models.CampaignStatusScheduled)
	store := newFakeCampaignStore(first, second)
	store.due = []models.Campaign{*first, *second}

	customers := &fakeCustomerStore{all: testCustomers("a@x.com")}
	mailer := &fakeMailer{configured: true}
	s := newTestScheduler(store, customers, mailer)

	results, err := s.ProcessScheduledCampaigns()
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, r := range results {
		assert.True(t, r.Result.Success, "campaign %d", i)
		assert.Equal(t, 1, r.Result.SentCount)
	}
	assert.Equal(t, models.CampaignStatusSent, first.Status)
	assert.Equal(t, models.CampaignStatusSent, second.Status)
}

func TestProcessScheduledCampaignsNothingDue(t *testing.T) {
	store := newFakeCampaignStore()
	s := newTestScheduler(store, &fakeCustomerStore{}, &fakeMailer{configured: true})

	results, err := s.ProcessScheduledCampaigns()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcessScheduledCampaignsUnconfiguredMailer(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusScheduled)
	store := newFakeCampaignStore(campaign)
	store.due = []models.Campaign{*campaign}

	s := newTestScheduler(store, &fakeCustomerStore{}, &fakeMailer{configured: false})
	results, err := s.ProcessScheduledCampaigns()

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Result.Success)
	assert.Equal(t, "Email service not configured", results[0].Result.Message)
	// Campaign stays scheduled and will be retried next tick.
	assert.Equal(t, models.CampaignStatusScheduled, campaign.Status)
}

func TestCancelScheduledCampaign(t *testing.T) {
	campaign := testCampaign(models.CampaignStatusScheduled)
	store := newFakeCampaignStore(campaign)
	s := newTestScheduler(store, &fakeCustomerStore{}, &fakeMailer{})

	ok, err := s.CancelScheduledCampaign(campaign.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.CampaignStatusCancelled, campaign.Status)
	assert.Equal(t, []uuid.UUID{campaign.ID}, store.deactivated)
}

func TestCancelOnlyAllowedFromScheduled(t *testing.T) {
	for _, status := range []string{
		models.CampaignStatusDraft,
		models.CampaignStatusSent,
		models.CampaignStatusCancelled,
	} {
		campaign := testCampaign(status)
		store := newFakeCampaignStore(campaign)
		s := newTestScheduler(store, &fakeCustomerStore{}, &fakeMailer{})

		ok, err := s.CancelScheduledCampaign(campaign.ID)
		require.NoError(t, err)
		assert.False(t, ok, "cancel should be rejected from %s", status)
		assert.Equal(t, status, campaign.Status)
		assert.Empty(t, store.deactivated)
	}
}

func TestCancelMissingCampaign(t *testing.T) {
	s := newTestScheduler(newFakeCampaignStore(), &fakeCustomerStore{}, &fakeMailer{})

	ok, err := s.CancelScheduledCampaign(uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetUpcomingScheduledCampaigns(t *testing.T) {
	store := newFakeCampaignStore()
	store.upcoming = []models.Campaign{*testCampaign(models.CampaignStatusScheduled)}
	s := newTestScheduler(store, &fakeCustomerStore{}, &fakeMailer{})

	upcoming, err := s.GetUpcomingScheduledCampaigns()
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
}
