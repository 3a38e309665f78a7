package controllers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"crmaize-backend/models"
	"crmaize-backend/repository"
	"crmaize-backend/services"
	"crmaize-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var customerExportHeader = []string{
	"ID", "First_Name", "Last_Name", "Email", "Total_Spent", "Order_Count",
	"Last_Order_Date", "Segment", "Churn_Risk", "Created_At",
}

var campaignExportHeader = []string{
	"ID", "Name", "Type", "Subject_Line", "Email_Content", "Target_Segment",
	"Discount_Percent", "Status", "Scheduled_At", "Sent_At", "Created_At",
}

// ImportExportController moves customer and campaign data in and out as
// CSV or XLSX.
type ImportExportController struct {
	customers *repository.CustomerRepository
	campaigns *repository.CampaignRepository
	ai        *services.AIService
}

func NewImportExportController(
	customers *repository.CustomerRepository,
	campaigns *repository.CampaignRepository,
	ai *services.AIService,
) *ImportExportController {
	return &ImportExportController{customers: customers, campaigns: campaigns, ai: ai}
}

// ImportResult reports per-row outcomes of a CSV import.
type ImportResult struct {
	Success int      `json:"success"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

func customerExportRow(customer models.Customer) []string {
	return []string{
		customer.ID.String(),
		customer.FirstName,
		customer.LastName,
		customer.Email,
		fmt.Sprintf("%.2f", customer.TotalSpent),
		strconv.Itoa(customer.OrderCount),
		utils.FormatDate(customer.LastOrderDate),
		customer.Segment,
		fmt.Sprintf("%.2f", customer.ChurnRisk),
		customer.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ExportCustomersCSV streams all customers as a CSV download.
func (ic *ImportExportController) ExportCustomersCSV(c *gin.Context) {
	customers, err := ic.customers.All()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(customerExportHeader)
	for _, customer := range customers {
		w.Write(customerExportRow(customer))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="customers.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportCustomersXLSX streams all customers as a spreadsheet download.
func (ic *ImportExportController) ExportCustomersXLSX(c *gin.Context) {
	customers, err := ic.customers.All()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, name := range customerExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	for row, customer := range customers {
		for col, value := range customerExportRow(customer) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="customers.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportCampaignsCSV streams all campaigns as a CSV download.
func (ic *ImportExportController) ExportCampaignsCSV(c *gin.Context) {
	campaigns, err := ic.campaigns.All()
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve campaigns")
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(campaignExportHeader)
	for _, campaign := range campaigns {
		discount := ""
		if campaign.DiscountPercent != nil {
			discount = strconv.Itoa(*campaign.DiscountPercent)
		}
		scheduledAt := ""
		if campaign.ScheduledAt != nil {
			scheduledAt = campaign.ScheduledAt.Format("2006-01-02 15:04:05")
		}
		sentAt := ""
		if campaign.SentAt != nil {
			sentAt = campaign.SentAt.Format("2006-01-02 15:04:05")
		}
		w.Write([]string{
			campaign.ID.String(),
			campaign.Name,
			campaign.Type,
			campaign.SubjectLine,
			campaign.EmailContent,
			campaign.TargetSegment,
			discount,
			campaign.Status,
			scheduledAt,
			sentAt,
			campaign.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build export")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="campaigns.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// CustomerTemplate serves a header-only CSV showing the import format.
func (ic *ImportExportController) CustomerTemplate(c *gin.Context) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Email", "First_Name", "Last_Name", "Total_Spent", "Order_Count", "Last_Order_Date"})
	w.Write([]string{"jane@example.com", "Jane", "Doe", "150.00", "3", "2024-11-02"})
	w.Flush()

	c.Header("Content-Disposition", `attachment; filename="customer_import_template.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ImportCustomers ingests a customer CSV. Rows with a known email are
// skipped, malformed rows are reported per line, and imported customers get
// an initial scoring snapshot.
func (ic *ImportExportController) ImportCustomers(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "CSV file upload required (field 'file')")
		return
	}
	defer file.Close()

	result, err := ic.importCustomerRows(file)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ic *ImportExportController) importCustomerRows(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	if _, ok := index["Email"]; !ok {
		return nil, fmt.Errorf("CSV is missing the Email column")
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	result := &ImportResult{Errors: []string{}}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: invalid CSV row", line))
			continue
		}
		if len(record) != len(header) {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: invalid number of columns", line))
			continue
		}

		email := field(record, "Email")
		if email == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: Email is required", line))
			continue
		}
		if !utils.ValidateEmail(email) {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: invalid email address", line))
			continue
		}

		existing, err := ic.customers.ByEmail(email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		customer := models.Customer{
			Email:     email,
			FirstName: field(record, "First_Name"),
			LastName:  field(record, "Last_Name"),
		}
		if raw := field(record, "Total_Spent"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
				customer.TotalSpent = v
			}
		}
		if raw := field(record, "Order_Count"); raw != "" {
			if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
				customer.OrderCount = v
			}
		}
		if raw := field(record, "Last_Order_Date"); raw != "" {
			if t, err := utils.ParseDate(raw); err == nil {
				customer.LastOrderDate = &t
			}
		}

		customer.ChurnRisk = ic.ai.CalculateChurnRisk(customer)
		customer.Segment = ic.ai.DetermineSegment(customer)

		if err := ic.customers.Create(&customer); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: failed to create customer", line))
			continue
		}
		result.Success++
	}

	return result, nil
}
