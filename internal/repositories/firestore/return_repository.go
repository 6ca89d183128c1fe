package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/cleanpress/api/internal/domain"
	pfirestore "github.com/cleanpress/api/internal/platform/firestore"
	"github.com/cleanpress/api/internal/repositories"
)

const (
	returnCollection     = "returns"
	returnItemCollection = "return_items"
)

type returnDocument struct {
	OrderID      string    `firestore:"orderId"`
	Reason       string    `firestore:"reason,omitempty"`
	RefundAmount string    `firestore:"refundAmount"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type returnItemDocument struct {
	ReturnID     string `firestore:"returnId"`
	ProductID    string `firestore:"productId"`
	ProductName  string `firestore:"productName"`
	Barcode      string `firestore:"barcode"`
	Service      string `firestore:"service"`
	Quantity     int    `firestore:"quantity"`
	Rate         string `firestore:"rate"`
	RefundAmount string `firestore:"refundAmount"`
}

// ReturnRepository records refunds in Firestore. Items live in their own
// collection keyed by returnId so the ledger mirrors a relational join.
type ReturnRepository struct {
	returns   *pfirestore.BaseRepository[returnDocument]
	items     *pfirestore.BaseRepository[returnItemDocument]
	orders    *pfirestore.BaseRepository[orderDocument]
	customers *pfirestore.BaseRepository[customerDocument]
}

// NewReturnRepository constructs a Firestore-backed return repository.
func NewReturnRepository(provider *pfirestore.Provider) (*ReturnRepository, error) {
	if provider == nil {
		return nil, errors.New("return repository requires firestore provider")
	}
	return &ReturnRepository{
		returns:   pfirestore.NewBaseRepository[returnDocument](provider, returnCollection, nil),
		items:     pfirestore.NewBaseRepository[returnItemDocument](provider, returnItemCollection, nil),
		orders:    pfirestore.NewBaseRepository[orderDocument](provider, orderCollection, nil),
		customers: pfirestore.NewBaseRepository[customerDocument](provider, customerCollection, nil),
	}, nil
}

func (r *ReturnRepository) Insert(ctx context.Context, ret domain.Return) error {
	return r.returns.Set(ctx, ret.ID, returnDocument{
		OrderID:      ret.OrderID,
		Reason:       ret.Reason,
		RefundAmount: moneyString(ret.RefundAmount),
		CreatedAt:    ret.CreatedAt,
	})
}

func (r *ReturnRepository) InsertItems(ctx context.Context, items []domain.ReturnItem) error {
	for _, item := range items {
		err := r.items.Set(ctx, item.ID, returnItemDocument{
			ReturnID:     item.ReturnID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Barcode:      item.Barcode,
			Service:      string(item.Service),
			Quantity:     item.Quantity,
			Rate:         moneyString(item.Rate),
			RefundAmount: moneyString(item.RefundAmount),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ListJoined returns the refund ledger newest first, each entry joined with
// its items plus order total and customer contact for display.
func (r *ReturnRepository) ListJoined(ctx context.Context) ([]domain.ReturnRecord, error) {
	returnDocs, err := r.returns.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	if len(returnDocs) == 0 {
		return []domain.ReturnRecord{}, nil
	}

	itemDocs, err := r.items.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	itemsByReturn := make(map[string][]domain.ReturnItem, len(returnDocs))
	for _, doc := range itemDocs {
		item, err := fromReturnItemDocument(doc.ID, doc.Data)
		if err != nil {
			return nil, err
		}
		itemsByReturn[item.ReturnID] = append(itemsByReturn[item.ReturnID], item)
	}

	records := make([]domain.ReturnRecord, 0, len(returnDocs))
	for _, doc := range returnDocs {
		refund, err := parseMoney("refundAmount", doc.Data.RefundAmount)
		if err != nil {
			return nil, err
		}
		record := domain.ReturnRecord{
			Return: domain.Return{
				ID:           doc.ID,
				OrderID:      doc.Data.OrderID,
				Reason:       doc.Data.Reason,
				RefundAmount: refund,
				Items:        itemsByReturn[doc.ID],
				CreatedAt:    doc.Data.CreatedAt,
			},
		}

		if err := r.attachOrderContext(ctx, &record); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *ReturnRepository) DeleteAll(ctx context.Context) error {
	if err := r.items.DeleteAll(ctx); err != nil {
		return err
	}
	return r.returns.DeleteAll(ctx)
}

// attachOrderContext fills in order total and customer contact. A missing
// order leaves the ledger entry intact; returns outlive cleared orders.
func (r *ReturnRepository) attachOrderContext(ctx context.Context, record *domain.ReturnRecord) error {
	orderDoc, err := r.orders.Get(ctx, record.OrderID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	total, err := parseMoney("total", orderDoc.Data.Total)
	if err != nil {
		return err
	}
	record.OrderTotal = total
	record.CustomerName = orderDoc.Data.CustomerName

	if orderDoc.Data.CustomerID != "" {
		customerDoc, err := r.customers.Get(ctx, orderDoc.Data.CustomerID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		record.CustomerPhone = customerDoc.Data.Phone
	}
	return nil
}

func fromReturnItemDocument(id string, doc returnItemDocument) (domain.ReturnItem, error) {
	rate, err := parseMoney("item rate", doc.Rate)
	if err != nil {
		return domain.ReturnItem{}, err
	}
	refund, err := parseMoney("item refundAmount", doc.RefundAmount)
	if err != nil {
		return domain.ReturnItem{}, err
	}
	return domain.ReturnItem{
		ID:           id,
		ReturnID:     doc.ReturnID,
		ProductID:    doc.ProductID,
		ProductName:  doc.ProductName,
		Barcode:      doc.Barcode,
		Service:      domain.ServiceVariant(doc.Service),
		Quantity:     doc.Quantity,
		Rate:         rate,
		RefundAmount: refund,
	}, nil
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

var _ repositories.ReturnRepository = (*ReturnRepository)(nil)
