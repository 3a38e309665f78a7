package controllers

import (
	"testing"
	"time"

	"crmaize-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCustomerExportRow(t *testing.T) {
	last := time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)
	customer := models.Customer{
		ID:            uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		FirstName:     "Jane",
		LastName:      "Doe",
		Email:         "jane@example.com",
		TotalSpent:    150.5,
		OrderCount:    3,
		LastOrderDate: &last,
		Segment:       models.SegmentLoyal,
		ChurnRisk:     0.1,
	}
	customer.CreatedAt = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	row := customerExportRow(customer)
	assert.Equal(t, []string{
		"11111111-2222-3333-4444-555555555555",
		"Jane",
		"Doe",
		"jane@example.com",
		"150.50",
		"3",
		"2024-11-02",
		"loyal",
		"0.10",
		"2024-01-15 08:00:00",
	}, row)
	assert.Len(t, row, len(customerExportHeader))
}

func TestCustomerExportRowEmptyDate(t *testing.T) {
	row := customerExportRow(models.Customer{Email: "a@x.com"})
	assert.Equal(t, "", row[6])
}
