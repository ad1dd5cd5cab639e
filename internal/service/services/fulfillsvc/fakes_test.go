package fulfillsvc_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ordent/fulfillment/internal/apperror"
	"github.com/ordent/fulfillment/internal/dal/interfaces/ilineitemrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/iorderrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/ioutboxrepo"
	"github.com/ordent/fulfillment/internal/dal/interfaces/istockrepo"
	"github.com/ordent/fulfillment/internal/service/models/lineitem"
	"github.com/ordent/fulfillment/internal/service/models/order"
	"github.com/ordent/fulfillment/internal/service/models/outbox"
	"github.com/ordent/fulfillment/internal/service/services/fulfillsvc"
)

// storeState is the shared in-memory datastore behind the fake unit of work.
type storeState struct {
	orders     map[int64]order.Order
	items      map[int64][]lineitem.LineItem
	stock      map[int64]int
	outbox     []outbox.Message
	nextOrder  int64
	nextItem   int64
	failCommit bool
}

func newStoreState() *storeState {
	return &storeState{
		orders:    make(map[int64]order.Order),
		items:     make(map[int64][]lineitem.LineItem),
		stock:     make(map[int64]int),
		nextOrder: 1,
		nextItem:  1,
	}
}

func (s *storeState) clone() *storeState {
	c := &storeState{
		orders:     make(map[int64]order.Order, len(s.orders)),
		items:      make(map[int64][]lineitem.LineItem, len(s.items)),
		stock:      make(map[int64]int, len(s.stock)),
		outbox:     append([]outbox.Message(nil), s.outbox...),
		nextOrder:  s.nextOrder,
		nextItem:   s.nextItem,
		failCommit: s.failCommit,
	}
	for id, o := range s.orders {
		c.orders[id] = o
	}
	for id, items := range s.items {
		c.items[id] = append([]lineitem.LineItem(nil), items...)
	}
	for id, qty := range s.stock {
		c.stock[id] = qty
	}

	return c
}

// fakeUOW mirrors the Postgres unit of work: reads before Begin hit the
// committed state, everything after Begin runs on a staging copy that only
// lands on Commit.
type fakeUOW struct {
	committed *storeState
	staging   *storeState
	began     bool
}

func newFakeUOW(state *storeState) *fakeUOW {
	return &fakeUOW{committed: state}
}

func (u *fakeUOW) cur() *storeState {
	if u.began {
		return u.staging
	}

	return u.committed
}

func (u *fakeUOW) Begin(context.Context) error {
	u.staging = u.committed.clone()
	u.began = true

	return nil
}

func (u *fakeUOW) Commit(context.Context) error {
	if !u.began {
		return nil
	}
	if u.staging.failCommit {
		return fmt.Errorf("commit failed")
	}

	*u.committed = *u.staging
	u.began = false

	return nil
}

func (u *fakeUOW) Rollback(context.Context) error {
	u.staging = nil
	u.began = false

	return nil
}

func (u *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return &fakeOrderRepo{uow: u}
}

func (u *fakeUOW) LineItemRepository() ilineitemrepo.ILineItemRepository {
	return &fakeLineItemRepo{uow: u}
}

func (u *fakeUOW) StockRepository() istockrepo.IStockRepository {
	return &fakeStockRepo{uow: u}
}

func (u *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return &fakeOutboxRepo{uow: u}
}

var _ fulfillsvc.UnitOfWork = (*fakeUOW)(nil)

type fakeOrderRepo struct {
	uow *fakeUOW
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id int64) (*order.Order, error) {
	o, ok := r.uow.cur().orders[id]
	if !ok {
		return nil, nil
	}
	o.LineItems = []lineitem.LineItem{}

	return &o, nil
}

func (r *fakeOrderRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.uow.cur().orders[id]

	return ok, nil
}

func (r *fakeOrderRepo) Insert(_ context.Context, o order.Order) (*order.Order, error) {
	s := r.uow.cur()
	o.ID = s.nextOrder
	s.nextOrder++
	o.LineItems = []lineitem.LineItem{}
	s.orders[o.ID] = o

	return &o, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, id int64, fields order.Fields) (*order.Order, error) {
	s := r.uow.cur()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d missing", id)
	}
	o.Name = fields.Name
	o.Description = fields.Description
	o.Date = fields.Date
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	o.LineItems = []lineitem.LineItem{}

	return &o, nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id int64) error {
	delete(r.uow.cur().orders, id)

	return nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

func (r *fakeOrderRepo) Search(_ context.Context, filter *order.SearchOrdersModel) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.uow.cur().orders {
		if !sameDate(o.Date, filter.Date) {
			continue
		}
		if filter.Description != "" &&
			!strings.Contains(strings.ToLower(o.Description), strings.ToLower(filter.Description)) {
			continue
		}
		if filter.Ids != nil {
			found := false
			for _, id := range filter.Ids {
				if id == o.ID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		o.LineItems = []lineitem.LineItem{}
		result = append(result, o)
	}

	return result, nil
}

type fakeLineItemRepo struct {
	uow *fakeUOW
}

func (r *fakeLineItemRepo) BulkInsert(_ context.Context, items []lineitem.LineItem) ([]lineitem.LineItem, error) {
	s := r.uow.cur()
	result := make([]lineitem.LineItem, 0, len(items))
	for _, item := range items {
		item.ID = s.nextItem
		s.nextItem++
		s.items[item.OrderID] = append(s.items[item.OrderID], item)
		result = append(result, item)
	}

	return result, nil
}

func (r *fakeLineItemRepo) DeleteByOrder(_ context.Context, orderID int64) error {
	delete(r.uow.cur().items, orderID)

	return nil
}

func (r *fakeLineItemRepo) QueryByOrderIDs(_ context.Context, orderIDs []int64) ([]lineitem.LineItem, error) {
	var result []lineitem.LineItem
	for _, id := range orderIDs {
		result = append(result, r.uow.cur().items[id]...)
	}

	return result, nil
}

type fakeStockRepo struct {
	uow *fakeUOW
}

func (r *fakeStockRepo) Decrement(_ context.Context, productID int64, qty int) error {
	s := r.uow.cur()
	stock, ok := s.stock[productID]
	if !ok {
		return apperror.NewNotFound(fmt.Sprintf("product %d not found", productID))
	}
	if stock < qty {
		return apperror.NewInsufficientStock(productID)
	}
	s.stock[productID] = stock - qty

	return nil
}

func (r *fakeStockRepo) Increment(_ context.Context, productID int64, qty int) error {
	s := r.uow.cur()
	if _, ok := s.stock[productID]; !ok {
		return apperror.NewNotFound(fmt.Sprintf("product %d not found", productID))
	}
	s.stock[productID] += qty

	return nil
}

func (r *fakeStockRepo) CheckAvailability(_ context.Context, productID int64, qty int) (bool, error) {
	stock, ok := r.uow.cur().stock[productID]
	if !ok {
		return false, apperror.NewNotFound(fmt.Sprintf("product %d not found", productID))
	}

	return stock >= qty, nil
}

func (r *fakeStockRepo) Exists(_ context.Context, productID int64) (bool, error) {
	_, ok := r.uow.cur().stock[productID]

	return ok, nil
}

type fakeOutboxRepo struct {
	uow *fakeUOW
}

func (r *fakeOutboxRepo) Insert(_ context.Context, msg outbox.Message) error {
	s := r.uow.cur()
	s.outbox = append(s.outbox, msg)

	return nil
}

func (r *fakeOutboxRepo) GetPendingMessages(context.Context, int) ([]outbox.Message, error) {
	return append([]outbox.Message(nil), r.uow.cur().outbox...), nil
}

func (r *fakeOutboxRepo) UpdateRetry(context.Context, int64, int, string, time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) Delete(context.Context, int64) error {
	return nil
}

// fakeIndex is a canned search index: every query returns the configured ids.
type fakeIndex struct {
	ids []int64
	err error
}

func (i *fakeIndex) Search(context.Context, string) ([]int64, error) {
	if i.err != nil {
		return nil, i.err
	}

	return i.ids, nil
}
