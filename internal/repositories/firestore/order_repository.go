package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/cleanpress/api/internal/domain"
	pfirestore "github.com/cleanpress/api/internal/platform/firestore"
	"github.com/cleanpress/api/internal/repositories"
)

const orderCollection = "orders"

type orderLineDocument struct {
	ProductID      string `firestore:"productId"`
	ProductName    string `firestore:"productName"`
	Barcode        string `firestore:"barcode"`
	Service        string `firestore:"service"`
	Quantity       int    `firestore:"quantity"`
	Rate           string `firestore:"rate"`
	DiscountPct    string `firestore:"discountPct"`
	Subtotal       string `firestore:"subtotal"`
	DiscountAmount string `firestore:"discountAmount"`
}

type orderDocument struct {
	CustomerID     string              `firestore:"customerId"`
	CustomerName   string              `firestore:"customerName"`
	Lines          []orderLineDocument `firestore:"lines"`
	Subtotal       string              `firestore:"subtotal"`
	Discount       string              `firestore:"discount"`
	TaxRatePct     string              `firestore:"taxRatePct"`
	Tax            string              `firestore:"tax"`
	Total          string              `firestore:"total"`
	PaymentMethod  string              `firestore:"paymentMethod"`
	PaymentRef     string              `firestore:"paymentRef,omitempty"`
	Status         string              `firestore:"status"`
	PaymentStatus  string              `firestore:"paymentStatus,omitempty"`
	DeliveryStatus string              `firestore:"deliveryStatus,omitempty"`
	Notes          string              `firestore:"notes,omitempty"`
	CreatedAt      time.Time           `firestore:"createdAt"`
	UpdatedAt      time.Time           `firestore:"updatedAt"`
}

// OrderRepository persists order headers with embedded lines in Firestore.
// Lines live inside the order document, so the header and its lines always
// write atomically.
type OrderRepository struct {
	base *pfirestore.BaseRepository[orderDocument]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		base: pfirestore.NewBaseRepository[orderDocument](provider, orderCollection, nil),
	}, nil
}

func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	return r.base.Set(ctx, order.ID, toOrderDocument(order))
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.base.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return fromOrderDocument(doc.ID, doc.Data)
}

func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		if customerID := strings.TrimSpace(filter.CustomerID); customerID != "" {
			q = q.Where("customerId", "==", customerID)
		}
		if len(filter.Status) > 0 {
			statuses := make([]string, 0, len(filter.Status))
			for _, status := range filter.Status {
				statuses = append(statuses, string(status))
			}
			q = q.Where("status", "in", statuses)
		}
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		order, err := fromOrderDocument(doc.ID, doc.Data)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return r.base.Update(ctx, orderID, []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	return r.base.Update(ctx, orderID, []firestore.Update{
		{Path: "paymentStatus", Value: string(status)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
}

func (r *OrderRepository) UpdateDeliveryStatus(ctx context.Context, orderID string, status domain.DeliveryStatus) error {
	return r.base.Update(ctx, orderID, []firestore.Update{
		{Path: "deliveryStatus", Value: string(status)},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
}

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	return r.base.DeleteAll(ctx)
}

func toOrderDocument(order domain.Order) orderDocument {
	lines := make([]orderLineDocument, 0, len(order.Lines))
	for _, line := range order.Lines {
		lines = append(lines, orderLineDocument{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Barcode:        line.Barcode,
			Service:        string(line.Service),
			Quantity:       line.Quantity,
			Rate:           moneyString(line.Rate),
			DiscountPct:    moneyString(line.DiscountPct),
			Subtotal:       moneyString(line.Subtotal),
			DiscountAmount: moneyString(line.DiscountAmount),
		})
	}

	return orderDocument{
		CustomerID:     order.CustomerID,
		CustomerName:   order.CustomerName,
		Lines:          lines,
		Subtotal:       moneyString(order.Subtotal),
		Discount:       moneyString(order.Discount),
		TaxRatePct:     moneyString(order.TaxRatePct),
		Tax:            moneyString(order.Tax),
		Total:          moneyString(order.Total),
		PaymentMethod:  string(order.PaymentMethod),
		PaymentRef:     order.PaymentRef,
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		DeliveryStatus: string(order.DeliveryStatus),
		Notes:          order.Notes,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}

func fromOrderDocument(id string, doc orderDocument) (domain.Order, error) {
	lines := make([]domain.OrderLine, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		rate, err := parseMoney("line rate", line.Rate)
		if err != nil {
			return domain.Order{}, err
		}
		discountPct, err := parseMoney("line discountPct", line.DiscountPct)
		if err != nil {
			return domain.Order{}, err
		}
		subtotal, err := parseMoney("line subtotal", line.Subtotal)
		if err != nil {
			return domain.Order{}, err
		}
		discountAmount, err := parseMoney("line discountAmount", line.DiscountAmount)
		if err != nil {
			return domain.Order{}, err
		}
		lines = append(lines, domain.OrderLine{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Barcode:        line.Barcode,
			Service:        domain.ServiceVariant(line.Service),
			Quantity:       line.Quantity,
			Rate:           rate,
			DiscountPct:    discountPct,
			Subtotal:       subtotal,
			DiscountAmount: discountAmount,
		})
	}

	subtotal, err := parseMoney("subtotal", doc.Subtotal)
	if err != nil {
		return domain.Order{}, err
	}
	discount, err := parseMoney("discount", doc.Discount)
	if err != nil {
		return domain.Order{}, err
	}
	taxRate, err := parseMoney("taxRatePct", doc.TaxRatePct)
	if err != nil {
		return domain.Order{}, err
	}
	tax, err := parseMoney("tax", doc.Tax)
	if err != nil {
		return domain.Order{}, err
	}
	total, err := parseMoney("total", doc.Total)
	if err != nil {
		return domain.Order{}, err
	}

	return domain.Order{
		ID:             id,
		CustomerID:     doc.CustomerID,
		CustomerName:   doc.CustomerName,
		Lines:          lines,
		Subtotal:       subtotal,
		Discount:       discount,
		TaxRatePct:     taxRate,
		Tax:            tax,
		Total:          total,
		PaymentMethod:  domain.PaymentMethod(doc.PaymentMethod),
		PaymentRef:     doc.PaymentRef,
		Status:         domain.OrderStatus(doc.Status),
		PaymentStatus:  domain.PaymentStatus(doc.PaymentStatus),
		DeliveryStatus: domain.DeliveryStatus(doc.DeliveryStatus),
		Notes:          doc.Notes,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)
