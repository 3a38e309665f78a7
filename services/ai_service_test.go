package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"crmaize-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestAIService() *AIService {
	return NewAIServiceWith(rand.New(rand.NewSource(1)), func() time.Time { return testNow })
}

func daysAgo(n int) *time.Time {
	t := testNow.AddDate(0, 0, -n)
	return &t
}

func TestDaysSinceLastOrder(t *testing.T) {
	s := newTestAIService()

	assert.Equal(t, 999, s.DaysSinceLastOrder(models.Customer{}))
	assert.Equal(t, 0, s.DaysSinceLastOrder(models.Customer{LastOrderDate: daysAgo(0)}))
	assert.Equal(t, 45, s.DaysSinceLastOrder(models.Customer{LastOrderDate: daysAgo(45)}))
}

func TestCalculateChurnRisk(t *testing.T) {
	s := newTestAIService()

	tests := []struct {
		name     string
		customer models.Customer
		want     float64
	}{
		{
			name:     "never ordered, nothing spent",
			customer: models.Customer{},
			want:     0.8,
		},
		{
			name: "recent frequent big spender",
			customer: models.Customer{
				TotalSpent:    1500,
				OrderCount:    10,
				LastOrderDate: daysAgo(5),
			},
			want: 0.0,
		},
		{
			name: "moderately lapsed mid spender",
			customer: models.Customer{
				TotalSpent:    50,
				OrderCount:    2,
				LastOrderDate: daysAgo(100),
			},
			want: 0.5,
		},
		{
			name: "worst band in every dimension",
			customer: models.Customer{
				TotalSpent:    10,
				OrderCount:    1,
				LastOrderDate: daysAgo(400),
			},
			want: 0.8,
		},
		{
			name: "exactly 30 days is still recent",
			customer: models.Customer{
				TotalSpent:    300,
				OrderCount:    5,
				LastOrderDate: daysAgo(30),
			},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.CalculateChurnRisk(tt.customer), 1e-9)
		})
	}
}

func TestCalculateChurnRiskStaysInRange(t *testing.T) {
	s := newTestAIService()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		customer := models.Customer{
			TotalSpent: rng.Float64() * 3000,
			OrderCount: rng.Intn(25),
		}
		if rng.Intn(4) > 0 {
			customer.LastOrderDate = daysAgo(rng.Intn(500))
		}

		risk := s.CalculateChurnRisk(customer)
		assert.GreaterOrEqual(t, risk, 0.0)
		assert.LessOrEqual(t, risk, 1.0)
	}
}

func TestDetermineSegment(t *testing.T) {
	s := newTestAIService()

	tests := []struct {
		name     string
		customer models.Customer
		want     string
	}{
		{
			name:     "high value wins over at risk",
			customer: models.Customer{TotalSpent: 2000, OrderCount: 8, LastOrderDate: daysAgo(120)},
			want:     models.SegmentHighValue,
		},
		{
			name:     "at risk",
			customer: models.Customer{TotalSpent: 250, OrderCount: 3, LastOrderDate: daysAgo(120)},
			want:     models.SegmentAtRisk,
		},
		{
			name:     "loyal",
			customer: models.Customer{TotalSpent: 400, OrderCount: 6, LastOrderDate: daysAgo(10)},
			want:     models.SegmentLoyal,
		},
		{
			name:     "new",
			customer: models.Customer{TotalSpent: 30, OrderCount: 1, LastOrderDate: daysAgo(10)},
			want:     models.SegmentNew,
		},
		{
			name:     "never ordered is inactive, not new",
			customer: models.Customer{},
			want:     models.SegmentInactive,
		},
		{
			name:     "moderately lapsed mid spender is inactive",
			customer: models.Customer{TotalSpent: 50, OrderCount: 2, LastOrderDate: daysAgo(100)},
			want:     models.SegmentInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.DetermineSegment(tt.customer))
		})
	}
}

func TestSegmentCustomers(t *testing.T) {
	s := newTestAIService()

	customers := []models.Customer{
		{TotalSpent: 2000, OrderCount: 8, LastOrderDate: daysAgo(5)},
		{TotalSpent: 250, OrderCount: 3, LastOrderDate: daysAgo(120)},
		{TotalSpent: 30, OrderCount: 1, LastOrderDate: daysAgo(10)},
		{},
	}

	segments := s.SegmentCustomers(customers)

	require.Len(t, segments, len(models.AllSegments))
	for _, segment := range models.AllSegments {
		_, ok := segments[segment]
		assert.True(t, ok, "missing segment key %s", segment)
	}

	total := 0
	for _, bucket := range segments {
		total += len(bucket)
	}
	assert.Equal(t, len(customers), total)

	assert.Len(t, segments[models.SegmentHighValue], 1)
	assert.Len(t, segments[models.SegmentAtRisk], 1)
	assert.Len(t, segments[models.SegmentNew], 1)
	assert.Len(t, segments[models.SegmentInactive], 1)
	assert.Empty(t, segments[models.SegmentLoyal])
}

func TestSegmentCustomersEmptyInput(t *testing.T) {
	s := newTestAIService()

	segments := s.SegmentCustomers(nil)
	require.Len(t, segments, len(models.AllSegments))
	for segment, bucket := range segments {
		assert.Empty(t, bucket, "segment %s should be empty", segment)
	}
}

func TestGenerateSubjectLine(t *testing.T) {
	s := newTestAIService()
	customer := models.Customer{FirstName: "Alice"}

	subject := s.GenerateSubjectLine(models.CampaignTypeEmail, customer)
	assert.Contains(t, subject, "Alice")

	subject = s.GenerateSubjectLine(models.CampaignTypeDiscount, models.Customer{})
	assert.Contains(t, subject, "there")
}

func TestGenerateSubjectLineUnknownTypeFallsBack(t *testing.T) {
	s := newTestAIService()

	subject := s.GenerateSubjectLine("push", models.Customer{FirstName: "Bob"})
	assert.Contains(t, subject, "Bob")

	found := false
	for _, tmpl := range emailSubjectTemplates {
		if subject == fmt.Sprintf(tmpl, "Bob") {
			found = true
		}
	}
	assert.True(t, found, "unknown type should use the email templates")
}

func TestSuggestDiscount(t *testing.T) {
	s := newTestAIService()

	tests := []struct {
		name     string
		customer models.Customer
		min, max int
	}{
		{
			name:     "high churn risk",
			customer: models.Customer{},
			min:      20, max: 30,
		},
		{
			name:     "medium churn risk",
			customer: models.Customer{TotalSpent: 50, OrderCount: 1, LastOrderDate: daysAgo(100)},
			min:      15, max: 25,
		},
		{
			name:     "big spender",
			customer: models.Customer{TotalSpent: 800, OrderCount: 10, LastOrderDate: daysAgo(5)},
			min:      10, max: 20,
		},
		{
			name:     "default",
			customer: models.Customer{TotalSpent: 300, OrderCount: 10, LastOrderDate: daysAgo(5)},
			min:      5, max: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				d := s.SuggestDiscount(tt.customer)
				assert.GreaterOrEqual(t, d, tt.min)
				assert.LessOrEqual(t, d, tt.max)
			}
		})
	}
}

func TestGenerateCouponCode(t *testing.T) {
	s := newTestAIService()

	code := s.GenerateCouponCode()
	prefix := "CRMAIZE" + strconv.FormatInt(testNow.Unix(), 10)
	assert.True(t, strings.HasPrefix(code, prefix))
	assert.Len(t, code, len(prefix)+4)
}

func TestGenerateABTestVariants(t *testing.T) {
	s := newTestAIService()
	customer := models.Customer{FirstName: "Alice", Segment: models.SegmentHighValue}

	variants := s.GenerateABTestVariants(models.CampaignTypeDiscount, customer, 3)
	require.Len(t, variants, 3)

	assert.Equal(t, "Control", variants[0].VariantName)
	assert.True(t, variants[0].IsControl)
	assert.Equal(t, "Variant 2", variants[1].VariantName)
	assert.False(t, variants[1].IsControl)
	assert.Equal(t, "Variant 3", variants[2].VariantName)

	for _, v := range variants {
		assert.Contains(t, v.SubjectLine, "Alice")
		assert.Contains(t, v.EmailContent, "Alice")
		require.NotNil(t, v.DiscountPercent)
		assert.GreaterOrEqual(t, *v.DiscountPercent, 5)
		assert.LessOrEqual(t, *v.DiscountPercent, 30)
	}

	// Subjects cycle deterministically by index, so the first variants differ.
	assert.NotEqual(t, variants[0].SubjectLine, variants[1].SubjectLine)
}

func TestGenerateABTestVariantsEmailTypeHasNoDiscount(t *testing.T) {
	s := newTestAIService()

	variants := s.GenerateABTestVariants(models.CampaignTypeEmail, models.Customer{}, 2)
	require.Len(t, variants, 2)
	for _, v := range variants {
		assert.Nil(t, v.DiscountPercent)
	}
}

func TestGenerateEmailContent(t *testing.T) {
	s := newTestAIService()

	content := s.GenerateEmailContent(models.CampaignTypeDiscount, models.Customer{
		FirstName: "Alice",
		Segment:   models.SegmentHighValue,
	}, 0)
	assert.Contains(t, content, "Alice")
	assert.Contains(t, content, models.SegmentHighValue)
	assert.Contains(t, content, "15%")
	assert.NotContains(t, content, "{{")

	// Anonymous customer falls back to friendly defaults.
	content = s.GenerateEmailContent(models.CampaignTypeDiscount, models.Customer{}, 2)
	assert.Contains(t, content, "Valued Customer")
	assert.Contains(t, content, models.SegmentLoyal)
	assert.NotContains(t, content, "{{")
}

func TestGenerateEmailContentWrapsVariantIndex(t *testing.T) {
	s := newTestAIService()
	customer := models.Customer{FirstName: "Alice"}

	first := s.GenerateEmailContent(models.CampaignTypeEmail, customer, 0)
	wrapped := s.GenerateEmailContent(models.CampaignTypeEmail, customer, len(emailContentTemplates))
	assert.Equal(t, first, wrapped)
}

func TestSuggestOptimalSendTime(t *testing.T) {
	s := newTestAIService()

	atRisk := s.SuggestOptimalSendTime(models.Customer{Segment: models.SegmentAtRisk})
	assert.Equal(t, "2025-06-15 12:00:00", atRisk)

	highValue := s.SuggestOptimalSendTime(models.Customer{Segment: models.SegmentHighValue})
	assert.Equal(t, "2025-06-15 10:00:00", highValue)

	other := s.SuggestOptimalSendTime(models.Customer{Segment: models.SegmentNew})
	assert.Equal(t, "2025-06-15 18:00:00", other)

	unset := s.SuggestOptimalSendTime(models.Customer{})
	assert.Equal(t, "2025-06-15 18:00:00", unset)
}
