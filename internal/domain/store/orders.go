package store

import (
	"context"
	"sort"

	"github.com/your-org/solar-storefront/internal/domain/order"
	"github.com/your-org/solar-storefront/internal/pkg/events"
)

// ListOrders returns all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if _, err := s.load(ctx, KeyOrders, &orders); err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Date.After(orders[j].Date) })
	return orders, nil
}

// GetOrder returns an order by id
func (s *Store) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// AddOrder appends an order to the order list
func (s *Store) AddOrder(ctx context.Context, o order.Order) error {
	var orders []order.Order
	if _, err := s.load(ctx, KeyOrders, &orders); err != nil {
		return err
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = s.Now()
	}
	orders = append(orders, o)

	if err := s.save(ctx, KeyOrders, orders); err != nil {
		return err
	}
	s.publish(ctx, events.OrdersChanged)
	return nil
}

// UpdateOrderStatus sets the status of an order. Any known status may be set
// from any other; transitions are not constrained.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	if _, ok := order.ParseStatus(string(status)); !ok {
		return nil, ErrInvalidStatus
	}

	var orders []order.Order
	if _, err := s.load(ctx, KeyOrders, &orders); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID != id {
			continue
		}
		orders[i].Status = status
		orders[i].UpdatedAt = s.Now()
		if err := s.save(ctx, KeyOrders, orders); err != nil {
			return nil, err
		}
		s.publish(ctx, events.OrdersChanged)
		updated := orders[i]
		return &updated, nil
	}
	return nil, ErrOrderNotFound
}
