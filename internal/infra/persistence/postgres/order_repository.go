package postgres

import (
	"cmp"
	"context"
	"slices"
	"time"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// orderRepository implements repository.OrderRepository.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order and its items in one statement batch.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConflict.WrapMessage("payment session already bound to an order")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("order references unknown user")
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt
	for i := range order.Items {
		order.Items[i].ID = orderM.Items[i].ID
		order.Items[i].OrderID = orderM.ID
	}

	return nil
}

// FindByID retrieves an order with its items.
func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return repo.findOne(repo.db.WithContext(ctx), "id = ?", id)
}

// FindByGatewayOrderID reads from the primary so a payment confirmed right after
// checkout never misses an order that has not reached a replica yet.
func (repo *orderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error) {
	return repo.findOne(repo.db.WithContext(ctx).Clauses(dbresolver.Write), "gateway_order_id = ?", gatewayOrderID)
}

func (repo *orderRepository) findOne(db *gorm.DB, query string, arg any) (*entity.Order, error) {
	var orderM model.OrderModel
	err := db.Preload("Items", itemsInCartOrder).Where(query, arg).First(&orderM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrOrderNotFound)
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return toOrderDomain(&orderM), nil
}

// ListByUser returns the user's orders newest first.
func (repo *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	var rows []model.OrderModel
	err := repo.db.WithContext(ctx).
		Preload("Items", itemsInCartOrder).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user orders")
	}

	return toOrderDomains(rows), nil
}

// List returns orders for the back office, newest first.
func (repo *orderRepository) List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	query := repo.db.WithContext(ctx).Preload("Items", itemsInCartOrder)
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var rows []model.OrderModel
	if err := query.Order("created_at DESC").Limit(normalizeLimit(filter.Limit)).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return toOrderDomains(rows), nil
}

// MarkPaid is a conditional update on status so concurrent confirmations of the
// same order collapse into one.
func (repo *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID, confirmation repository.PaymentConfirmation) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ? AND status = ?", id, string(entity.OrderStatusPending)).
		Updates(map[string]any{
			"status":            string(entity.OrderStatusPaid),
			"payment_id":        confirmation.PaymentID,
			"payment_signature": confirmation.Signature,
			"paid_at":           confirmation.PaidAt,
			"updated_at":        confirmation.PaidAt,
		})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to mark order paid")
	}

	return result.RowsAffected == 1, nil
}

// TransitionStatus is a compare-and-set on status.
func (repo *orderRepository) TransitionStatus(ctx context.Context, id uuid.UUID, expected, next entity.OrderStatus, at time.Time) (bool, error) {
	updates := map[string]any{
		"status":     string(next),
		"updated_at": at,
	}
	if next == entity.OrderStatusDelivered {
		updates["delivered_at"] = at
	}

	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(updates)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to update order status")
	}

	return result.RowsAffected == 1, nil
}

// RateItem only writes items that carry no rating yet.
func (repo *orderRepository) RateItem(ctx context.Context, orderID, itemID uuid.UUID, rating int, at time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderItemModel{}).
		Where("id = ? AND order_id = ? AND rating IS NULL", itemID, orderID).
		Updates(map[string]any{
			"rating":   rating,
			"rated_at": at,
		})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return false, domainerrors.ErrValidationFailed.WrapMessage("rating must be between 1 and 5")
		}

		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to rate order item")
	}

	return result.RowsAffected == 1, nil
}

// ListProductRatings returns every recorded rating for a product.
func (repo *orderRepository) ListProductRatings(ctx context.Context, productID uuid.UUID) ([]int, error) {
	var ratings []int
	err := repo.db.WithContext(ctx).
		Model(&model.OrderItemModel{}).
		Where("product_id = ? AND rating IS NOT NULL", productID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list product ratings")
	}

	return ratings, nil
}

// Count returns the number of orders.
func (repo *orderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.db.WithContext(ctx).Model(&model.OrderModel{}).Count(&n).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}

	return n, nil
}

// CountByStatus returns one row per status that has orders.
func (repo *orderRepository) CountByStatus(ctx context.Context) ([]entity.OrderStatusCount, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to count orders by status")
	}

	counts := make([]entity.OrderStatusCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, entity.OrderStatusCount{Status: entity.OrderStatus(row.Status), Count: row.Count})
	}

	return counts, nil
}

// SumRevenue totals the orders in statuses.
func (repo *orderRepository) SumRevenue(ctx context.Context, statuses []entity.OrderStatus) (entity.Money, error) {
	if len(statuses) == 0 {
		return 0, nil
	}

	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}

	var total int64
	err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status IN ?", names).
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum revenue")
	}

	return entity.Money(total), nil
}

// --- Mapper Functions ---

// itemsInCartOrder returns line items in the order the buyer placed them.
func itemsInCartOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order("position ASC")
}

func toOrderDomains(rows []model.OrderModel) []*entity.Order {
	orders := make([]*entity.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, toOrderDomain(&rows[i]))
	}

	return orders
}

func toOrderDomain(data *model.OrderModel) *entity.Order {
	addr := data.ShippingAddress.Data()
	order := &entity.Order{
		ID:             data.ID,
		UserID:         data.UserID,
		Subtotal:       entity.Money(data.Subtotal),
		Tax:            entity.Money(data.Tax),
		TotalAmount:    entity.Money(data.TotalAmount),
		Currency:       data.Currency,
		GatewayOrderID: data.GatewayOrderID,
		ShippingAddress: entity.ShippingAddress{
			Name:       addr.Name,
			Email:      addr.Email,
			Phone:      addr.Phone,
			Street:     addr.Street,
			City:       addr.City,
			State:      addr.State,
			PostalCode: addr.PostalCode,
		},
		Status:      entity.OrderStatus(data.Status),
		PaidAt:      data.PaidAt,
		DeliveredAt: data.DeliveredAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
	if data.PaymentID != nil {
		order.PaymentID = *data.PaymentID
	}
	if data.PaymentSignature != nil {
		order.PaymentSignature = *data.PaymentSignature
	}

	items := slices.Clone(data.Items)
	slices.SortStableFunc(items, func(a, b model.OrderItemModel) int { return cmp.Compare(a.Position, b.Position) })

	order.Items = make([]entity.OrderItem, 0, len(items))
	for _, item := range items {
		order.Items = append(order.Items, entity.OrderItem{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   entity.Money(item.UnitPrice),
			Variant:     item.Variant,
			Rating:      item.Rating,
			RatedAt:     item.RatedAt,
		})
	}

	return order
}

func fromOrderDomain(data *entity.Order) *model.OrderModel {
	orderM := &model.OrderModel{
		ID:             data.ID,
		UserID:         data.UserID,
		Subtotal:       data.Subtotal.Int64(),
		Tax:            data.Tax.Int64(),
		TotalAmount:    data.TotalAmount.Int64(),
		Currency:       data.Currency,
		GatewayOrderID: data.GatewayOrderID,
		ShippingAddress: datatypes.NewJSONType(model.ShippingAddressJSON{
			Name:       data.ShippingAddress.Name,
			Email:      data.ShippingAddress.Email,
			Phone:      data.ShippingAddress.Phone,
			Street:     data.ShippingAddress.Street,
			City:       data.ShippingAddress.City,
			State:      data.ShippingAddress.State,
			PostalCode: data.ShippingAddress.PostalCode,
		}),
		Status:      string(data.Status),
		PaidAt:      data.PaidAt,
		DeliveredAt: data.DeliveredAt,
	}
	if data.PaymentID != "" {
		orderM.PaymentID = &data.PaymentID
	}
	if data.PaymentSignature != "" {
		orderM.PaymentSignature = &data.PaymentSignature
	}

	orderM.Items = make([]model.OrderItemModel, 0, len(data.Items))
	for i, item := range data.Items {
		orderM.Items = append(orderM.Items, model.OrderItemModel{
			ID:          item.ID,
			OrderID:     item.OrderID,
			Position:    i,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Int64(),
			Variant:     item.Variant,
			Rating:      item.Rating,
			RatedAt:     item.RatedAt,
		})
	}

	return orderM
}
