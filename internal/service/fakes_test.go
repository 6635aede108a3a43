package service

import (
	"context"
	"sort"

	"github.com/CCDD2022/mall-system/internal/dao"
	"github.com/CCDD2022/mall-system/internal/model"

	"gorm.io/gorm"
)

// 内存实现的store桩，行为对齐dao层：查不到返回gorm.ErrRecordNotFound，
// 事务方法整体成功或整体无副作用

var (
	_ ProductReader        = (*fakeProductStore)(nil)
	_ VendorProductCounter = (*fakeProductStore)(nil)
	_ CartStore            = (*fakeCartStore)(nil)
	_ CartReader           = (*fakeCartStore)(nil)
	_ OrderStore           = (*fakeOrderStore)(nil)
	_ PurchaseChecker      = (*fakeOrderStore)(nil)
	_ ReviewStore          = (*fakeReviewStore)(nil)
	_ WishlistStore        = (*fakeWishlistStore)(nil)
	_ AuthStore            = (*fakeAuthStore)(nil)
	_ UserStore            = (*fakeUserStore)(nil)
)

type fakeProductStore struct {
	products map[int64]*model.Product
}

func newFakeProductStore(products ...*model.Product) *fakeProductStore {
	f := &fakeProductStore{products: make(map[int64]*model.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductStore) GetProductByID(_ context.Context, id int64) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeProductStore) CountActiveByVendor(_ context.Context, vendorID int64) (int64, error) {
	var count int64
	for _, p := range f.products {
		if p.VendorID == vendorID && p.IsActive {
			count++
		}
	}
	return count, nil
}

type fakeCartStore struct {
	products *fakeProductStore
	items    []*model.CartItem
	nextID   int64
}

func newFakeCartStore(products *fakeProductStore) *fakeCartStore {
	return &fakeCartStore{products: products}
}

func (f *fakeCartStore) addLine(userID, productID, quantity int64) *model.CartItem {
	f.nextID++
	item := &model.CartItem{
		ID:        f.nextID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	f.items = append(f.items, item)
	return item
}

func (f *fakeCartStore) GetCartItems(_ context.Context, userID int64) ([]*model.CartItem, error) {
	var out []*model.CartItem
	for _, item := range f.items {
		if item.UserID == userID {
			item.Product = f.products.products[item.ProductID]
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeCartStore) GetCartItem(_ context.Context, userID, itemID int64) (*model.CartItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ID == itemID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartStore) GetCartItemByProduct(_ context.Context, userID, productID int64) (*model.CartItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCartStore) CreateCartItem(_ context.Context, item *model.CartItem) error {
	f.nextID++
	item.ID = f.nextID
	f.items = append(f.items, item)
	return nil
}

func (f *fakeCartStore) UpdateQuantity(_ context.Context, itemID, quantity int64) error {
	for _, item := range f.items {
		if item.ID == itemID {
			item.Quantity = quantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCartStore) DeleteCartItem(_ context.Context, userID, itemID int64) (int64, error) {
	for i, item := range f.items {
		if item.UserID == userID && item.ID == itemID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeCartStore) ClearCart(_ context.Context, userID int64) error {
	kept := f.items[:0]
	for _, item := range f.items {
		if item.UserID != userID {
			kept = append(kept, item)
		}
	}
	f.items = kept
	return nil
}

type fakeOrderStore struct {
	products *fakeProductStore
	cart     *fakeCartStore
	orders   map[int64]*model.Order
	nextID   int64

	// 指定商品在提交事务内强制触发库存竞争
	conflictProductID int64
}

func newFakeOrderStore(products *fakeProductStore, cart *fakeCartStore) *fakeOrderStore {
	return &fakeOrderStore{
		products: products,
		cart:     cart,
		orders:   make(map[int64]*model.Order),
	}
}

func (f *fakeOrderStore) CreateOrderTx(ctx context.Context, addr *model.Address, order *model.Order, items []*model.OrderItem, payment *model.Payment) error {
	// 预演扣减，失败则不留任何副作用
	decremented := make(map[int64]int64)
	for _, item := range items {
		p := f.products.products[item.ProductID]
		if p == nil || p.Stock < item.Quantity || item.ProductID == f.conflictProductID {
			for id, qty := range decremented {
				f.products.products[id].Stock += qty
			}
			pid := item.ProductID
			return &dao.StockConflictError{ProductID: pid}
		}
		p.Stock -= item.Quantity
		decremented[item.ProductID] += item.Quantity
	}

	f.nextID++
	addr.ID = f.nextID
	f.nextID++
	order.ID = f.nextID
	order.ShippingAddressID = addr.ID
	order.BillingAddressID = addr.ID
	order.ShippingAddress = addr
	order.BillingAddress = addr

	for _, item := range items {
		f.nextID++
		item.ID = f.nextID
		item.OrderID = order.ID
		item.Product = f.products.products[item.ProductID]
		order.Items = append(order.Items, *item)
	}

	f.nextID++
	payment.ID = f.nextID
	payment.OrderID = order.ID
	order.Payment = payment

	f.orders[order.ID] = order
	return f.cart.ClearCart(ctx, order.UserID)
}

func (f *fakeOrderStore) GetOrderByID(_ context.Context, orderID int64) (*model.Order, error) {
	ord, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ord, nil
}

func (f *fakeOrderStore) GetUserOrders(_ context.Context, userID int64, page, limit int, status model.OrderStatus) ([]*model.Order, int64, error) {
	var out []*model.Order
	for _, ord := range f.orders {
		if ord.UserID != userID {
			continue
		}
		if status != "" && ord.Status != status {
			continue
		}
		out = append(out, ord)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeOrderStore) UpdateOrderStatusTx(_ context.Context, order *model.Order, to model.OrderStatus, notes string) error {
	stored, ok := f.orders[order.ID]
	if !ok || stored.Status != order.Status {
		return dao.ErrOrderStatusChanged
	}
	stored.Status = to
	if notes != "" {
		stored.Notes = notes
	}

	switch to {
	case model.OrderStatusCancelled, model.OrderStatusRefunded:
		for _, item := range stored.Items {
			f.products.products[item.ProductID].Stock += item.Quantity
		}
		if stored.Payment != nil {
			stored.Payment.Status = model.PaymentStatusRefunded
		}
	case model.OrderStatusDelivered:
		if stored.Payment != nil && stored.Payment.Status != model.PaymentStatusRefunded {
			stored.Payment.Status = model.PaymentStatusCompleted
		}
	}
	return nil
}

func (f *fakeOrderStore) ConfirmPaymentTx(_ context.Context, orderID int64, transactionID string) error {
	stored, ok := f.orders[orderID]
	if !ok || stored.Payment == nil || stored.Payment.Status != model.PaymentStatusPending {
		return dao.ErrOrderStatusChanged
	}
	if stored.Status != model.OrderStatusPending {
		return dao.ErrOrderStatusChanged
	}
	stored.Payment.Status = model.PaymentStatusCompleted
	stored.Payment.TransactionID = transactionID
	stored.Status = model.OrderStatusConfirmed
	return nil
}

func (f *fakeOrderStore) VendorOwnsOrder(_ context.Context, orderID, vendorID int64) (bool, error) {
	ord, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, item := range ord.Items {
		if p := f.products.products[item.ProductID]; p != nil && p.VendorID == vendorID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrderStore) GetVendorOrders(ctx context.Context, vendorID int64, page, limit int, status model.OrderStatus) ([]*model.Order, int64, error) {
	var out []*model.Order
	for _, ord := range f.orders {
		owns, _ := f.VendorOwnsOrder(ctx, ord.ID, vendorID)
		if !owns {
			continue
		}
		if status != "" && ord.Status != status {
			continue
		}
		out = append(out, ord)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeOrderStore) GetVendorStats(ctx context.Context, vendorID int64) (*dao.VendorStats, error) {
	stats := &dao.VendorStats{StatusCounts: make(map[model.OrderStatus]int64)}
	for _, ord := range f.orders {
		owns, _ := f.VendorOwnsOrder(ctx, ord.ID, vendorID)
		if !owns {
			continue
		}
		stats.OrderCount++
		stats.StatusCounts[ord.Status]++
		if ord.Status.RevenueCounted() {
			stats.RevenueCents += ord.TotalCents
		}
	}
	return stats, nil
}

func (f *fakeOrderStore) HasDeliveredItem(_ context.Context, userID, productID int64) (bool, error) {
	for _, ord := range f.orders {
		if ord.UserID != userID || ord.Status != model.OrderStatusDelivered {
			continue
		}
		for _, item := range ord.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeReviewStore struct {
	reviews map[int64]*model.Review
	nextID  int64
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[int64]*model.Review)}
}

func (f *fakeReviewStore) GetReviewByUserProduct(_ context.Context, userID, productID int64) (*model.Review, error) {
	for _, r := range f.reviews {
		if r.UserID == userID && r.ProductID == productID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReviewStore) GetReviewByID(_ context.Context, id int64) (*model.Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeReviewStore) CreateReviewTx(_ context.Context, review *model.Review) error {
	f.nextID++
	review.ID = f.nextID
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeReviewStore) DeleteReviewTx(_ context.Context, review *model.Review) error {
	delete(f.reviews, review.ID)
	return nil
}

func (f *fakeReviewStore) ListByProduct(_ context.Context, productID int64, page, limit int) ([]*model.Review, int64, error) {
	var out []*model.Review
	for _, r := range f.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

type fakeWishlistStore struct {
	cart   *fakeCartStore
	items  []*model.WishlistItem
	nextID int64
}

func newFakeWishlistStore(cart *fakeCartStore) *fakeWishlistStore {
	return &fakeWishlistStore{cart: cart}
}

func (f *fakeWishlistStore) GetItems(_ context.Context, userID int64) ([]*model.WishlistItem, error) {
	var out []*model.WishlistItem
	for _, item := range f.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeWishlistStore) GetItem(_ context.Context, userID, productID int64) (*model.WishlistItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWishlistStore) CreateItem(_ context.Context, item *model.WishlistItem) error {
	f.nextID++
	item.ID = f.nextID
	f.items = append(f.items, item)
	return nil
}

func (f *fakeWishlistStore) DeleteItem(_ context.Context, userID, productID int64) (int64, error) {
	for i, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeWishlistStore) MoveToCartTx(ctx context.Context, userID, productID int64) error {
	if err := f.cart.CreateCartItem(ctx, &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
	}); err != nil {
		return err
	}
	_, err := f.DeleteItem(ctx, userID, productID)
	return err
}

type fakeAuthStore struct {
	users  map[string]*model.User
	nextID int64
}

func newFakeAuthStore() *fakeAuthStore {
	return &fakeAuthStore{users: make(map[string]*model.User)}
}

func (f *fakeAuthStore) CreateUser(_ context.Context, user *model.User) error {
	f.nextID++
	user.ID = f.nextID
	f.users[user.Username] = user
	return nil
}

func (f *fakeAuthStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeAuthStore) UserExists(_ context.Context, username string) (bool, error) {
	_, ok := f.users[username]
	return ok, nil
}

type fakeUserStore struct {
	users map[int64]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	f := &fakeUserStore{users: make(map[int64]*model.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, userID int64, updates map[string]interface{}) error {
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["email"]; ok {
		u.Email = v.(string)
	}
	if v, ok := updates["phone"]; ok {
		u.Phone = v.(string)
	}
	return nil
}

func (f *fakeUserStore) UpdateUserPassword(_ context.Context, userID int64, newPasswordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = newPasswordHash
	return nil
}
