package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCartStaler is a mock implementation of CartStaler
type MockCartStaler struct {
	mock.Mock
}

var _ CartStaler = (*MockCartStaler)(nil)

func (m *MockCartStaler) MarkItemsStaleByProduct(productID uuid.UUID, reason string) (int64, error) {
	args := m.Called(productID, reason)
	return args.Get(0).(int64), args.Error(1)
}

func newTestSubscriber(carts CartStaler) *ProductSubscriber {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewProductSubscriber(nil, carts, logger)
}

func intPtr(v int) *int { return &v }

func TestProcess_StockEvents(t *testing.T) {
	productID := uuid.New()

	tests := []struct {
		name     string
		quantity *int
		flags    bool
	}{
		{"sale leaving stock does not flag carts", intPtr(7), false},
		{"stock drop to zero flags carts", intPtr(0), true},
		{"restock does not flag carts", intPtr(120), false},
		{"missing quantity is ignored", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staler := new(MockCartStaler)
			if tt.flags {
				staler.On("MarkItemsStaleByProduct", productID, "out of stock").Return(int64(2), nil)
			}
			sub := newTestSubscriber(staler)

			err := sub.process(ProductEvent{
				EventType: SubjectProductStock,
				ProductID: productID.String(),
				Quantity:  tt.quantity,
			})

			assert.NoError(t, err)
			if tt.flags {
				staler.AssertExpectations(t)
			} else {
				staler.AssertNotCalled(t, "MarkItemsStaleByProduct", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProcess_PriceChangeFlagsCarts(t *testing.T) {
	productID := uuid.New()
	staler := new(MockCartStaler)
	staler.On("MarkItemsStaleByProduct", productID, "price changed").Return(int64(3), nil)
	sub := newTestSubscriber(staler)

	err := sub.process(ProductEvent{
		EventType: SubjectProductPriceSet,
		ProductID: productID.String(),
		Price:     "129.90",
		OldPrice:  "149.90",
	})

	assert.NoError(t, err)
	staler.AssertExpectations(t)
}

func TestProcess_DeletionFlagsCarts(t *testing.T) {
	productID := uuid.New()
	staler := new(MockCartStaler)
	staler.On("MarkItemsStaleByProduct", productID, "product removed").Return(int64(1), nil)
	sub := newTestSubscriber(staler)

	err := sub.process(ProductEvent{
		EventType: SubjectProductDeleted,
		ProductID: productID.String(),
	})

	assert.NoError(t, err)
	staler.AssertExpectations(t)
}

func TestProcess_UnknownEventIgnored(t *testing.T) {
	staler := new(MockCartStaler)
	sub := newTestSubscriber(staler)

	err := sub.process(ProductEvent{
		EventType: "product.viewed",
		ProductID: uuid.New().String(),
	})

	assert.NoError(t, err)
	staler.AssertNotCalled(t, "MarkItemsStaleByProduct", mock.Anything, mock.Anything)
}

func TestProcess_InvalidProductID(t *testing.T) {
	staler := new(MockCartStaler)
	sub := newTestSubscriber(staler)

	err := sub.process(ProductEvent{
		EventType: SubjectProductDeleted,
		ProductID: "not-a-uuid",
	})

	assert.Error(t, err)
}
