// services/ai_service.go
package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"crmaize-backend/models"
	"crmaize-backend/utils"
)

// neverOrderedDays is the recency sentinel for customers without any order.
const neverOrderedDays = 999

const defaultDiscountPercent = 15

// AIService computes churn risk and segments from customer records and
// generates campaign copy (subject lines, bodies, discounts, A/B variants).
// Scoring is deterministic apart from the clock; content generation draws from
// the injected random source so outreach varies between campaigns.
type AIService struct {
	rng *rand.Rand
	now func() time.Time
}

func NewAIService() *AIService {
	return &AIService{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

// NewAIServiceWith pins the random source and clock; used by tests and by
// callers that need reproducible suggestions.
func NewAIServiceWith(rng *rand.Rand, now func() time.Time) *AIService {
	return &AIService{rng: rng, now: now}
}

// DaysSinceLastOrder measures purchase recency in whole days. Customers with
// no recorded order get the sentinel value.
func (s *AIService) DaysSinceLastOrder(customer models.Customer) int {
	if customer.LastOrderDate == nil {
		return neverOrderedDays
	}
	return utils.DaysBetween(*customer.LastOrderDate, s.now())
}

// CalculateChurnRisk scores disengagement likelihood in [0,1]. Recency,
// frequency and spend each contribute additively; within a dimension the first
// matching band wins.
func (s *AIService) CalculateChurnRisk(customer models.Customer) float64 {
	days := s.DaysSinceLastOrder(customer)

	risk := 0.0

	// Time since last order (higher weight)
	if days > 180 {
		risk += 0.4
	} else if days > 90 {
		risk += 0.3
	} else if days > 30 {
		risk += 0.1
	}

	// Order frequency
	if customer.OrderCount <= 1 {
		risk += 0.2
	} else if customer.OrderCount <= 3 {
		risk += 0.1
	}

	// Spending pattern
	if customer.TotalSpent < 50 {
		risk += 0.2
	} else if customer.TotalSpent < 200 {
		risk += 0.1
	}

	if risk > 1.0 {
		risk = 1.0
	}
	return risk
}

// DetermineSegment assigns one of the five segment labels. The rules form an
// ordered decision list and the first match wins, so a customer who qualifies
// as both high_value and at_risk lands in high_value.
func (s *AIService) DetermineSegment(customer models.Customer) string {
	days := s.DaysSinceLastOrder(customer)

	if customer.TotalSpent > 1000 && customer.OrderCount > 5 {
		return models.SegmentHighValue
	}

	if days > 90 && customer.TotalSpent > 100 {
		return models.SegmentAtRisk
	}

	if customer.OrderCount > 3 && days < 30 {
		return models.SegmentLoyal
	}

	if customer.OrderCount <= 1 && days < 60 {
		return models.SegmentNew
	}

	return models.SegmentInactive
}

// SegmentCustomers buckets customers by segment. Every segment key is present
// in the result even when its bucket is empty.
func (s *AIService) SegmentCustomers(customers []models.Customer) map[string][]models.Customer {
	segments := make(map[string][]models.Customer, len(models.AllSegments))
	for _, segment := range models.AllSegments {
		segments[segment] = []models.Customer{}
	}

	for _, customer := range customers {
		segment := s.DetermineSegment(customer)
		segments[segment] = append(segments[segment], customer)
	}

	return segments
}

var emailSubjectTemplates = []string{
	"Hey %s, we miss you!",
	"%s, here's something special for you",
	"Don't miss out, %s!",
	"Exclusive offer for %s",
}

var discountSubjectTemplates = []string{
	"%s, your exclusive discount awaits!",
	"Special savings just for %s",
	"%s, don't miss these deals!",
	"Limited time offer for %s",
}

var emailContentTemplates = []string{
	"Dear {{customer_name}},\n\nWe hope this email finds you well! We wanted to reach out with some exciting news and updates.\n\nBest regards,\nThe Team",
	"Hi {{customer_name}},\n\nThank you for being part of our community. We have something special just for you!\n\nWarm regards,\nYour Friends",
	"Hello {{customer_name}},\n\nWe appreciate your continued support. Here's what's new and exciting for you!\n\nCheers,\nThe Team",
}

var discountContentTemplates = []string{
	"Dear {{customer_name}},\n\nAs a valued {{customer_segment}} customer, we're offering you an exclusive {{discount_percent}}% discount on your next purchase!\n\nUse code: SAVE{{discount_percent}}\n\nBest regards,\nThe Team",
	"Hi {{customer_name}},\n\nSpecial offer just for you! Enjoy {{discount_percent}}% off your next order.\n\nPromo code: SPECIAL{{discount_percent}}\n\nWarm regards,\nYour Friends",
	"Hello {{customer_name}},\n\nWe've got a fantastic deal for our {{customer_segment}} customers: {{discount_percent}}% off!\n\nCode: DEAL{{discount_percent}}\n\nCheers,\nThe Team",
}

// Unknown campaign types fall back to the plain email templates.
func subjectTemplatesFor(campaignType string) []string {
	switch campaignType {
	case models.CampaignTypeDiscount:
		return discountSubjectTemplates
	default:
		return emailSubjectTemplates
	}
}

func contentTemplatesFor(campaignType string) []string {
	switch campaignType {
	case models.CampaignTypeDiscount:
		return discountContentTemplates
	default:
		return emailContentTemplates
	}
}

// GenerateSubjectLine picks a random subject template for the campaign type
// and fills in the customer's first name.
func (s *AIService) GenerateSubjectLine(campaignType string, customer models.Customer) string {
	templates := subjectTemplatesFor(campaignType)
	return s.subjectLineAt(campaignType, customer, s.rng.Intn(len(templates)))
}

func (s *AIService) subjectLineAt(campaignType string, customer models.Customer, index int) string {
	templates := subjectTemplatesFor(campaignType)
	firstName := customer.FirstName
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf(templates[index%len(templates)], firstName)
}

// SuggestDiscount proposes a percentage in [5,30]. Riskier customers get
// deeper discounts, big spenders a mid-range one.
func (s *AIService) SuggestDiscount(customer models.Customer) int {
	churnRisk := s.CalculateChurnRisk(customer)

	switch {
	case churnRisk > 0.7:
		return s.randBetween(20, 30)
	case churnRisk > 0.5:
		return s.randBetween(15, 25)
	case customer.TotalSpent > 500:
		return s.randBetween(10, 20)
	default:
		return s.randBetween(5, 15)
	}
}

// randBetween returns a uniform integer in [min,max].
func (s *AIService) randBetween(min, max int) int {
	return min + s.rng.Intn(max-min+1)
}

// GenerateCouponCode builds a probabilistically unique code from a fixed
// prefix, the current unix timestamp and a random 4-digit suffix. Collisions
// are accepted.
func (s *AIService) GenerateCouponCode() string {
	return "CRMAIZE" + strconv.FormatInt(s.now().Unix(), 10) + strconv.Itoa(s.randBetween(1000, 9999))
}

// GenerateABTestVariants produces count variants for a campaign. Variant 0 is
// the control; subject and body cycle deterministically through the template
// lists by variant index.
func (s *AIService) GenerateABTestVariants(campaignType string, customer models.Customer, count int) []models.CampaignVariant {
	variants := make([]models.CampaignVariant, 0, count)

	for i := 0; i < count; i++ {
		name := "Control"
		if i > 0 {
			name = fmt.Sprintf("Variant %d", i+1)
		}

		variant := models.CampaignVariant{
			VariantName:  name,
			SubjectLine:  s.subjectLineAt(campaignType, customer, i),
			EmailContent: s.GenerateEmailContent(campaignType, customer, i),
			IsControl:    i == 0,
		}
		if campaignType == models.CampaignTypeDiscount {
			discount := s.SuggestDiscount(customer)
			variant.DiscountPercent = &discount
		}

		variants = append(variants, variant)
	}

	return variants
}

// GenerateEmailContent renders the body template selected by campaign type and
// variant index, substituting customer placeholders.
func (s *AIService) GenerateEmailContent(campaignType string, customer models.Customer, variantIndex int) string {
	templates := contentTemplatesFor(campaignType)
	template := templates[variantIndex%len(templates)]

	customerName := customer.FirstName
	if customerName == "" {
		customerName = "Valued Customer"
	}
	segment := customer.Segment
	if segment == "" {
		segment = models.SegmentLoyal
	}

	replacer := strings.NewReplacer(
		"{{customer_name}}", customerName,
		"{{customer_segment}}", segment,
		"{{discount_percent}}", strconv.Itoa(defaultDiscountPercent),
	)
	return replacer.Replace(template)
}

// SuggestOptimalSendTime recommends a send timestamp based on the customer's
// stored segment: at-risk customers are contacted immediately, high-value ones
// mid-morning, everyone else in the evening.
func (s *AIService) SuggestOptimalSendTime(customer models.Customer) string {
	now := s.now()

	switch customer.Segment {
	case models.SegmentAtRisk:
		return now.Format("2006-01-02 15:04:05")
	case models.SegmentHighValue:
		at := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, now.Location())
		return at.Format("2006-01-02 15:04:05")
	default:
		at := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, now.Location())
		return at.Format("2006-01-02 15:04:05")
	}
}
