package services

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

// ReceiptService renders PDF receipts for paid orders
type ReceiptService struct {
	orders repository.OrderRepository
	logger *logrus.Entry
}

func NewReceiptService(orders repository.OrderRepository, logger *logrus.Logger) *ReceiptService {
	return &ReceiptService{
		orders: orders,
		logger: logger.WithField("service", "receipts"),
	}
}

// Generate renders the PDF receipt for an order. The receipt number is
// derived from the order number and persisted on first generation.
func (s *ReceiptService) Generate(order *models.Order) ([]byte, string, error) {
	receiptNumber := order.ReceiptNumber
	if receiptNumber == "" {
		receiptNumber = fmt.Sprintf("RCPT-%s", order.OrderNumber)
		now := time.Now()
		if err := s.orders.UpdateOrder(order.ID, map[string]interface{}{
			"receipt_number":       receiptNumber,
			"receipt_generated_at": now,
		}); err != nil {
			s.logger.WithError(err).Warn("Failed to persist receipt number")
		}
	}

	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	s.addHeader(m, receiptNumber)
	s.addOrderDetails(m, order)
	s.addAddresses(m, order)
	s.addItemsTable(m, order)
	s.addTotals(m, order)
	s.addFooter(m)

	doc, err := m.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), receiptNumber, nil
}

func (s *ReceiptService) addHeader(m core.Maroto, receiptNumber string) {
	m.AddRow(30,
		col.New(6).Add(
			text.New("Gastro Compare", props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New("Commercial kitchen equipment marketplace", props.Text{
				Size:  9,
				Top:   8,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New("RECEIPT", props.Text{
				Size:  20,
				Style: fontstyle.Bold,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("# %s", receiptNumber), props.Text{
				Size:  10,
				Top:   8,
				Align: align.Right,
			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func (s *ReceiptService) addOrderDetails(m core.Maroto, order *models.Order) {
	m.AddRow(20,
		col.New(6).Add(
			text.New(fmt.Sprintf("Order #: %s", order.OrderNumber), props.Text{
				Size:  10,
				Align: align.Left,
			}),
			text.New(fmt.Sprintf("Date: %s", order.CreatedAt.Format("Jan 02, 2006")), props.Text{
				Size:  10,
				Top:   5,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("Status: %s", order.Status), props.Text{
				Size:  10,
				Align: align.Right,
			}),
			text.New(fmt.Sprintf("Payment: %s", order.PaymentStatus), props.Text{
				Size:  10,
				Top:   5,
				Align: align.Right,
			}),
		),
	)
}

func (s *ReceiptService) addAddresses(m core.Maroto, order *models.Order) {
	var customerName, customerEmail string
	if order.Customer != nil {
		customerName = fmt.Sprintf("%s %s", order.Customer.FirstName, order.Customer.LastName)
		customerEmail = order.Customer.Email
	}

	var shippingAddr string
	if order.Shipping != nil {
		shippingAddr = fmt.Sprintf("%s, %s %s, %s",
			order.Shipping.Street, order.Shipping.PostalCode, order.Shipping.City, order.Shipping.Country)
	}

	m.AddRow(30,
		col.New(6).Add(
			text.New("BILL TO:", props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(customerName, props.Text{
				Size:  9,
				Top:   6,
				Align: align.Left,
			}),
			text.New(customerEmail, props.Text{
				Size:  9,
				Top:   11,
				Align: align.Left,
			}),
		),
		col.New(6).Add(
			text.New("SHIP TO:", props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Left,
			}),
			text.New(shippingAddr, props.Text{
				Size:  9,
				Top:   6,
				Align: align.Left,

			}),
		),
	)
	m.AddRow(5, line.NewCol(12))
}

func (s *ReceiptService) addItemsTable(m core.Maroto, order *models.Order) {
	m.AddRow(8,
		text.NewCol(5, "Item", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, "SKU", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(1, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Unit", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	rows := make([]core.Row, 0, len(order.Items))
	for _, item := range order.Items {
		rows = append(rows, row.New(7).Add(
			text.NewCol(5, item.ProductName, props.Text{Size: 8}),
			text.NewCol(2, item.SKU, props.Text{Size: 8}),
			text.NewCol(1, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", item.UnitPrice), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", item.TotalPrice), props.Text{Size: 8, Align: align.Right}),
		))
	}
	m.AddRows(rows...)
	m.AddRow(4, line.NewCol(12))
}

func (s *ReceiptService) addTotals(m core.Maroto, order *models.Order) {
	addTotalRow := func(label, value string, bold bool) {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		m.AddRow(6,
			col.New(8),
			text.NewCol(2, label, props.Text{Size: 9, Style: style, Align: align.Right}),
			text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}

	addTotalRow("Subtotal:", fmt.Sprintf("%.2f %s", order.Subtotal, order.Currency), false)
	if order.ShippingCost > 0 {
		addTotalRow("Shipping:", fmt.Sprintf("%.2f %s", order.ShippingCost, order.Currency), false)
	}
	if order.DiscountAmount > 0 {
		addTotalRow("Discount:", fmt.Sprintf("-%.2f %s", order.DiscountAmount, order.Currency), false)
	}
	addTotalRow("TOTAL:", fmt.Sprintf("%.2f %s", order.Total, order.Currency), true)
}

func (s *ReceiptService) addFooter(m core.Maroto) {
	m.AddRow(15,
		col.New(12).Add(
			text.New("Thank you for your purchase.", props.Text{
				Size:  9,
				Top:   8,
				Align: align.Center,
			}),
		),
	)
}
