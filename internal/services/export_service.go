package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

// ExportService renders XLSX exports for catalog, order and commission data
type ExportService struct {
	products   *repository.ProductsRepository
	orders     repository.OrderRepository
	commission repository.CommissionRepository
	logger     *logrus.Entry
}

func NewExportService(products *repository.ProductsRepository, orders repository.OrderRepository, commission repository.CommissionRepository, logger *logrus.Logger) *ExportService {
	return &ExportService{
		products:   products,
		orders:     orders,
		commission: commission,
		logger:     logger.WithField("service", "exports"),
	}
}

// ExportProducts writes a supplier's (or the whole marketplace's) catalog to
// an XLSX workbook.
func (s *ExportService) ExportProducts(supplierID *uuid.UUID) (*bytes.Buffer, string, error) {
	req := &models.SearchProductsRequest{Page: 1, Limit: 10000}
	if supplierID != nil {
		sid := supplierID.String()
		req.SupplierID = &sid
	}
	products, _, err := s.products.GetProducts(req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Products"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"SKU", "Name", "Brand", "Status", "Price", "Currency", "Quantity", "Inventory", "Rating", "Reviews", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	f.SetCellStyle(sheet, "A1", "K1", headerStyle)

	for rowIdx, p := range products {
		row := rowIdx + 2
		values := []interface{}{
			p.SKU,
			p.Name,
			deref(p.Brand),
			string(p.Status),
			p.Price,
			deref(p.CurrencyCode),
			p.Quantity,
			"",
			0.0,
			0,
			p.CreatedAt.Format("2006-01-02"),
		}
		if p.InventoryStatus != nil {
			values[7] = string(*p.InventoryStatus)
		}
		if p.AverageRating != nil {
			values[8] = *p.AverageRating
		}
		if p.ReviewCount != nil {
			values[9] = *p.ReviewCount
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "B", 24)
	f.SetColWidth(sheet, "C", "K", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("writing workbook: %w", err)
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().Format("20060102-150405"))
	return buf, filename, nil
}

// ExportOrders writes filtered orders with per-item commission detail
func (s *ExportService) ExportOrders(filters repository.OrderFilters) (*bytes.Buffer, string, error) {
	orders, _, err := s.orders.GetOrders(filters, 1, 10000)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Order #", "Date", "Status", "Payment", "Customer", "Subtotal", "Shipping", "Total", "Commission", "Currency"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	f.SetCellStyle(sheet, "A1", "J1", headerStyle)

	for rowIdx, o := range orders {
		row := rowIdx + 2
		customerEmail := ""
		if o.Customer != nil {
			customerEmail = o.Customer.Email
		}
		values := []interface{}{
			o.OrderNumber,
			o.CreatedAt.Format("2006-01-02 15:04"),
			string(o.Status),
			string(o.PaymentStatus),
			customerEmail,
			o.Subtotal,
			o.ShippingCost,
			o.Total,
			o.CommissionTotal,
			o.Currency,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	// Second sheet with line items
	itemsSheet := "Items"
	f.NewSheet(itemsSheet)
	itemHeaders := []string{"Order #", "Product", "SKU", "Supplier ID", "Qty", "Unit Price", "Total", "Commission Rate", "Commission"}
	for i, h := range itemHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(itemsSheet, cell, h)
	}
	f.SetCellStyle(itemsSheet, "A1", "I1", headerStyle)

	itemRow := 2
	for _, o := range orders {
		for _, item := range o.Items {
			values := []interface{}{
				o.OrderNumber,
				item.ProductName,
				item.SKU,
				item.SupplierID.String(),
				item.Quantity,
				item.UnitPrice,
				item.TotalPrice,
				item.CommissionRate,
				item.CommissionAmount,
			}
			for colIdx, v := range values {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, itemRow)
				f.SetCellValue(itemsSheet, cell, v)
			}
			itemRow++
		}
	}

	f.SetColWidth(sheet, "A", "E", 20)
	f.SetColWidth(itemsSheet, "A", "D", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("writing workbook: %w", err)
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	return buf, filename, nil
}

// ExportCommission writes the commission ledger to an XLSX workbook
func (s *ExportService) ExportCommission(filters repository.CommissionRecordFilters) (*bytes.Buffer, string, error) {
	records, _, err := s.commission.GetRecords(filters, 1, 10000)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Commission"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Order ID", "Supplier ID", "Category ID", "Scope", "Rate %", "Base Amount", "Commission", "Status", "Settled"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	f.SetCellStyle(sheet, "A1", "J1", headerStyle)

	for rowIdx, r := range records {
		row := rowIdx + 2
		settled := ""
		if r.SettledAt != nil {
			settled = r.SettledAt.Format("2006-01-02")
		}
		values := []interface{}{
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.OrderID.String(),
			r.SupplierID.String(),
			r.CategoryID.String(),
			string(r.Scope),
			r.Rate,
			r.BaseAmount,
			r.CommissionAmount,
			string(r.Status),
			settled,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "B", "D", 36)
	f.SetColWidth(sheet, "E", "J", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("writing workbook: %w", err)
	}

	filename := fmt.Sprintf("commission-%s.xlsx", time.Now().Format("20060102-150405"))
	return buf, filename, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
