// services/campaign_scheduler.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"crmaize-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// CampaignStore is the slice of campaign storage the scheduler needs.
// GetByID returns (nil, nil) when the campaign does not exist.
type CampaignStore interface {
	GetByID(id uuid.UUID) (*models.Campaign, error)
	UpdateStatus(id uuid.UUID, status string) error
	UpdateScheduledAt(id uuid.UUID, at time.Time) error
	UpdateSentAt(id uuid.UUID, at time.Time) error
	AddSentCount(id uuid.UUID, n int) error
	CreateSchedule(schedule *models.CampaignSchedule) error
	DeactivateSchedules(campaignID uuid.UUID) error
	DueScheduled(now time.Time) ([]models.Campaign, error)
	UpcomingScheduled(now time.Time) ([]models.Campaign, error)
	LogSend(campaignID, customerID uuid.UUID, at time.Time) error
}

type CustomerStore interface {
	All() ([]models.Customer, error)
	BySegment(segment string) ([]models.Customer, error)
}

// Mailer is the outbound transport capability. SendCampaignEmail returns false
// when the transport rejects the message and an error when delivery itself
// blows up; the dispatch loop accounts for both without aborting.
type Mailer interface {
	IsConfigured() bool
	SendCampaignEmail(to, subject, body string, customer models.Customer) (bool, error)
}

// DispatchResult summarizes one campaign dispatch.
type DispatchResult struct {
	Success     bool     `json:"success"`
	SentCount   int      `json:"sent_count"`
	FailedCount int      `json:"failed_count"`
	Message     string   `json:"message"`
	Errors      []string `json:"errors,omitempty"`
}

// TickResult is one entry of a scheduler tick, one per due campaign.
type TickResult struct {
	CampaignID   uuid.UUID       `json:"campaign_id"`
	CampaignName string          `json:"campaign_name"`
	Result       *DispatchResult `json:"result"`
}

// CampaignScheduler drives the campaign state machine: scheduling, the polling
// tick that dispatches due campaigns, cancellation, and the interactive
// send-now path.
type CampaignScheduler struct {
	campaigns CampaignStore
	customers CustomerStore
	mailer    Mailer
	now       func() time.Time
}

func NewCampaignScheduler(campaigns CampaignStore, customers CustomerStore, mailer Mailer) *CampaignScheduler {
	return &CampaignScheduler{
		campaigns: campaigns,
		customers: customers,
		mailer:    mailer,
		now:       time.Now,
	}
}

// ValidateSchedule checks a schedule request without touching state. An empty
// slice means the request is valid.
func (s *CampaignScheduler) ValidateSchedule(scheduleType string, scheduledAt *time.Time) []string {
	var errs []string

	if scheduleType == models.ScheduleTypeScheduled && scheduledAt == nil {
		errs = append(errs, "Scheduled date/time is required for scheduled campaigns")
	}

	if scheduledAt != nil && !scheduledAt.After(s.now()) {
		errs = append(errs, "Scheduled date/time must be in the future")
	}

	return errs
}

// ScheduleCampaign moves a campaign into the scheduled state and records an
// active schedule row. Returns false when the campaign does not exist;
// validation failures return an error and leave all state untouched.
func (s *CampaignScheduler) ScheduleCampaign(campaignID uuid.UUID, scheduleType string, scheduledAt *time.Time, timezone string) (bool, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		return false, err
	}
	if campaign == nil {
		return false, nil
	}

	if errs := s.ValidateSchedule(scheduleType, scheduledAt); len(errs) > 0 {
		return false, fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	if timezone == "" {
		timezone = "UTC"
	}

	if err := s.campaigns.UpdateStatus(campaignID, models.CampaignStatusScheduled); err != nil {
		return false, err
	}
	if scheduledAt != nil {
		if err := s.campaigns.UpdateScheduledAt(campaignID, *scheduledAt); err != nil {
			return false, err
		}
	}

	schedule := models.CampaignSchedule{
		CampaignID:   campaignID,
		ScheduleType: scheduleType,
		ScheduledAt:  scheduledAt,
		Timezone:     timezone,
		IsActive:     true,
	}
	if err := s.campaigns.CreateSchedule(&schedule); err != nil {
		return false, err
	}

	return true, nil
}

// ProcessScheduledCampaigns is the scheduler tick: it dispatches every
// scheduled campaign whose active schedule is due. A campaign that dispatches
// leaves the scheduled state, so repeated ticks will not pick it up again. A
// per-campaign failure (e.g. unconfigured transport) is reported in that
// campaign's entry and does not fail the tick; the campaign stays scheduled
// and due for the next run.
func (s *CampaignScheduler) ProcessScheduledCampaigns() ([]TickResult, error) {
	due, err := s.campaigns.DueScheduled(s.now().UTC())
	if err != nil {
		return nil, err
	}

	results := make([]TickResult, 0, len(due))
	for _, campaign := range due {
		result, err := s.sendCampaign(campaign.ID)
		if err != nil {
			return results, err
		}
		results = append(results, TickResult{
			CampaignID:   campaign.ID,
			CampaignName: campaign.Name,
			Result:       result,
		})
	}

	return results, nil
}

// SendCampaignNow is the interactive dispatch path. It shares the dispatch
// loop with the scheduler tick and moves the campaign straight to sent.
func (s *CampaignScheduler) SendCampaignNow(campaignID uuid.UUID) (*DispatchResult, error) {
	return s.sendCampaign(campaignID)
}

// sendCampaign runs the dispatch loop for one campaign: resolve the target
// list, attempt delivery per recipient with partial-failure accounting, then
// record the sent transition. "Sent" means dispatch ran to completion, not
// that every recipient succeeded.
func (s *CampaignScheduler) sendCampaign(campaignID uuid.UUID) (*DispatchResult, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return &DispatchResult{Success: false, Message: "Campaign not found"}, nil
	}

	if !s.mailer.IsConfigured() {
		return &DispatchResult{Success: false, Message: "Email service not configured"}, nil
	}

	customers, err := s.targetCustomers(campaign.TargetSegment)
	if err != nil {
		return nil, err
	}

	sentCount := 0
	failedCount := 0
	var sendErrors []string

	for _, customer := range customers {
		ok, err := s.mailer.SendCampaignEmail(customer.Email, campaign.SubjectLine, campaign.EmailContent, customer)
		if err != nil {
			failedCount++
			sendErrors = append(sendErrors, fmt.Sprintf("Error sending to %s: %v", customer.Email, err))
			continue
		}
		if !ok {
			failedCount++
			sendErrors = append(sendErrors, "Failed to send to: "+customer.Email)
			continue
		}

		sentCount++
		if err := s.campaigns.LogSend(campaign.ID, customer.ID, s.now()); err != nil {
			log.Printf("Failed to log campaign send for customer %s: %v", customer.ID, err)
		}
	}

	if err := s.campaigns.UpdateStatus(campaign.ID, models.CampaignStatusSent); err != nil {
		return nil, err
	}
	if err := s.campaigns.UpdateSentAt(campaign.ID, s.now()); err != nil {
		return nil, err
	}
	if sentCount > 0 {
		if err := s.campaigns.AddSentCount(campaign.ID, sentCount); err != nil {
			return nil, err
		}
	}

	return &DispatchResult{
		Success:     true,
		SentCount:   sentCount,
		FailedCount: failedCount,
		Message:     fmt.Sprintf("Campaign completed. Sent: %d, Failed: %d", sentCount, failedCount),
		Errors:      sendErrors,
	}, nil
}

// targetCustomers resolves a campaign's recipient list. An empty target means
// no recipients; "all" means every customer.
func (s *CampaignScheduler) targetCustomers(targetSegment string) ([]models.Customer, error) {
	switch targetSegment {
	case "":
		return nil, nil
	case models.TargetAll:
		return s.customers.All()
	default:
		return s.customers.BySegment(targetSegment)
	}
}

// CancelScheduledCampaign cancels a campaign. Only valid from the scheduled
// state; the schedule row is deactivated but kept for audit.
func (s *CampaignScheduler) CancelScheduledCampaign(campaignID uuid.UUID) (bool, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		return false, err
	}
	if campaign == nil || campaign.Status != models.CampaignStatusScheduled {
		return false, nil
	}

	if err := s.campaigns.UpdateStatus(campaignID, models.CampaignStatusCancelled); err != nil {
		return false, err
	}
	if err := s.campaigns.DeactivateSchedules(campaignID); err != nil {
		return false, err
	}

	return true, nil
}

// GetUpcomingScheduledCampaigns lists still-future scheduled campaigns with
// their active schedules, soonest first. Read-only, for operator visibility.
func (s *CampaignScheduler) GetUpcomingScheduledCampaigns() ([]models.Campaign, error) {
	return s.campaigns.UpcomingScheduled(s.now().UTC())
}

// StartScheduler runs the tick on a cron interval in-process. The tick can
// also be triggered externally (CLI or HTTP); both paths share
// ProcessScheduledCampaigns.
func (s *CampaignScheduler) StartScheduler() *cron.Cron {
	spec := os.Getenv("SCHEDULER_CRON")
	if spec == "" {
		spec = "*/5 * * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		results, err := s.ProcessScheduledCampaigns()
		if err != nil {
			log.Printf("Scheduled campaign processing failed: %v", err)
			return
		}
		for _, r := range results {
			log.Printf("Dispatched campaign %q (%s): %s", r.CampaignName, r.CampaignID, r.Result.Message)
		}
	}); err != nil {
		log.Printf("Invalid SCHEDULER_CRON %q: %v", spec, err)
		return c
	}

	c.Start()
	log.Println("Campaign scheduler started")
	return c
}
