package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gitshopapp/storefront/internal/db"
	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/paypal"
	"github.com/gitshopapp/storefront/internal/stripe"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSession struct {
	orderID int64
}

func (s *fakeSession) OrderID() int64 { return s.orderID }

func (s *fakeSession) BindOrder(_ context.Context, orderID int64) error {
	s.orderID = orderID
	return nil
}

type fakeOrderStore struct {
	mu         sync.Mutex
	nextID     int64
	nextItemID int64
	orders     map[int64]*models.Order
	items      map[int64]*models.OrderItem
	catalog    *fakeCatalogStore
	writes     int
}

func newFakeOrderStore(catalog *fakeCatalogStore) *fakeOrderStore {
	return &fakeOrderStore{
		orders:  map[int64]*models.Order{},
		items:   map[int64]*models.OrderItem{},
		catalog: catalog,
	}
}

func (s *fakeOrderStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.writes++
	order.ID = s.nextID
	order.StartDate = time.Now()
	stored := *order
	stored.Items = nil
	s.orders[order.ID] = &stored
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *order
	out.Items = []*models.OrderItem{}
	return &out, nil
}

func (s *fakeOrderStore) GetOpen(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Ordered {
		return nil, db.ErrNotFound
	}
	return order, nil
}

func (s *fakeOrderStore) update(id int64, fn func(o *models.Order)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return db.ErrNotFound
	}
	s.writes++
	fn(order)
	return nil
}

func (s *fakeOrderStore) AttachUser(_ context.Context, orderID, userID int64) error {
	return s.update(orderID, func(o *models.Order) { o.UserID = userID })
}

func (s *fakeOrderStore) SetAddresses(_ context.Context, orderID, billingAddressID, shippingAddressID int64) error {
	return s.update(orderID, func(o *models.Order) {
		o.BillingAddressID = billingAddressID
		o.ShippingAddressID = shippingAddressID
	})
}

func (s *fakeOrderStore) MarkOrdered(_ context.Context, orderID int64, orderedAt time.Time) error {
	return s.update(orderID, func(o *models.Order) {
		o.Ordered = true
		o.OrderedDate = orderedAt
	})
}

func (s *fakeOrderStore) ListOrdered(_ context.Context, limit, offset int) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ordered []*models.Order
	for _, o := range s.orders {
		if o.Ordered {
			out := *o
			ordered = append(ordered, &out)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].OrderedDate.Equal(ordered[j].OrderedDate) {
			return ordered[i].ID > ordered[j].ID
		}
		return ordered[i].OrderedDate.After(ordered[j].OrderedDate)
	})
	if offset >= len(ordered) {
		return []*models.Order{}, nil
	}
	ordered = ordered[offset:]
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

func (s *fakeOrderStore) CountOrdered(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, o := range s.orders {
		if o.Ordered {
			count++
		}
	}
	return count, nil
}

func (s *fakeOrderStore) withProduct(item *models.OrderItem) *models.OrderItem {
	out := *item
	if s.catalog != nil {
		if p, ok := s.catalog.byID(item.ProductID); ok {
			out.Product = p
		}
	}
	return &out
}

func (s *fakeOrderStore) ListItems(_ context.Context, orderID int64) ([]*models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := []*models.OrderItem{}
	for _, item := range s.items {
		if item.OrderID == orderID {
			items = append(items, s.withProduct(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *fakeOrderStore) GetItem(_ context.Context, itemID int64) (*models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return s.withProduct(item), nil
}

func (s *fakeOrderStore) FindItem(_ context.Context, orderID, productID, colourID, sizeID int64) (*models.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.OrderItem
	for _, item := range s.items {
		if item.OrderID == orderID && item.ProductID == productID && item.ColourID == colourID && item.SizeID == sizeID {
			if found == nil || item.ID < found.ID {
				found = item
			}
		}
	}
	if found == nil {
		return nil, db.ErrNotFound
	}
	return s.withProduct(found), nil
}

func (s *fakeOrderStore) CreateItem(_ context.Context, item *models.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextItemID++
	s.writes++
	item.ID = s.nextItemID
	stored := *item
	s.items[item.ID] = &stored
	return nil
}

func (s *fakeOrderStore) UpdateItemQuantity(_ context.Context, itemID int64, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %d", quantity)
	}
	item, ok := s.items[itemID]
	if !ok {
		return db.ErrNotFound
	}
	s.writes++
	item.Quantity = quantity
	return nil
}

func (s *fakeOrderStore) DeleteItem(_ context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[itemID]; !ok {
		return db.ErrNotFound
	}
	s.writes++
	delete(s.items, itemID)
	return nil
}

func (s *fakeOrderStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type fakeCatalogStore struct {
	mu         sync.Mutex
	nextID     int64
	products   map[int64]*models.Product
	categories []models.Category
	named      map[string]int64
}

func newFakeCatalogStore(products ...*models.Product) *fakeCatalogStore {
	s := &fakeCatalogStore{products: map[int64]*models.Product{}, named: map[string]int64{}}
	for _, p := range products {
		if p.ID > s.nextID {
			s.nextID = p.ID
		}
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeCatalogStore) byID(id int64) (*models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *fakeCatalogStore) ListProducts(_ context.Context, category string, limit, offset int) ([]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Product
	for _, p := range s.products {
		if category != "" && !inCategory(p, category) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []*models.Product{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func inCategory(p *models.Product, name string) bool {
	if p.PrimaryCategory != nil && p.PrimaryCategory.Name == name {
		return true
	}
	for _, c := range p.SecondaryCategories {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (s *fakeCatalogStore) CountProducts(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products), nil
}

func (s *fakeCatalogStore) ListCategories(_ context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *fakeCatalogStore) GetProductBySlug(_ context.Context, slug string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *fakeCatalogStore) GetProductByID(_ context.Context, id int64) (*models.Product, error) {
	p, ok := s.byID(id)
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *fakeCatalogStore) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCatalogStore) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	product.ID = s.nextID
	stored := *product
	s.products[product.ID] = &stored
	return nil
}

func (s *fakeCatalogStore) UpdateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return db.ErrNotFound
	}
	stored := *product
	s.products[product.ID] = &stored
	return nil
}

func (s *fakeCatalogStore) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return db.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *fakeCatalogStore) ensure(kind, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := kind + ":" + name
	if id, ok := s.named[key]; ok {
		return id
	}
	id := int64(len(s.named) + 100)
	s.named[key] = id
	return id
}

func (s *fakeCatalogStore) EnsureCategory(_ context.Context, name string) (models.Category, error) {
	return models.Category{ID: s.ensure("category", name), Name: name}, nil
}

func (s *fakeCatalogStore) EnsureColour(_ context.Context, name string) (models.Variation, error) {
	return models.Variation{ID: s.ensure("colour", name), Name: name}, nil
}

func (s *fakeCatalogStore) EnsureSize(_ context.Context, name string) (models.Variation, error) {
	return models.Variation{ID: s.ensure("size", name), Name: name}, nil
}

type fakeAddressStore struct {
	mu        sync.Mutex
	nextID    int64
	addresses map[int64]*models.Address
}

func newFakeAddressStore(addresses ...*models.Address) *fakeAddressStore {
	s := &fakeAddressStore{addresses: map[int64]*models.Address{}}
	for _, a := range addresses {
		if a.ID > s.nextID {
			s.nextID = a.ID
		}
		s.addresses[a.ID] = a
	}
	return s
}

func (s *fakeAddressStore) Create(_ context.Context, address *models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	address.ID = s.nextID
	stored := *address
	s.addresses[address.ID] = &stored
	return nil
}

func (s *fakeAddressStore) GetByID(_ context.Context, id int64) (*models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (s *fakeAddressStore) ListForUser(_ context.Context, userID int64, addressType models.AddressType) ([]*models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Address{}
	for _, a := range s.addresses {
		if a.UserID == userID && a.AddressType == addressType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeAddressStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.addresses)
}

type fakePaymentStore struct {
	mu             sync.Mutex
	nextID         int64
	payments       []*models.Payment
	stripePayments []*models.StripePayment
}

func (s *fakePaymentStore) CreatePayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if payment.ProviderReference != "" && s.referenceUsed(payment.PaymentMethod, payment.ProviderReference) {
		return db.ErrDuplicate
	}
	s.nextID++
	payment.ID = s.nextID
	payment.Timestamp = time.Now()
	stored := *payment
	s.payments = append(s.payments, &stored)
	return nil
}

func (s *fakePaymentStore) PaymentReferenceUsed(_ context.Context, method, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.referenceUsed(method, reference), nil
}

func (s *fakePaymentStore) referenceUsed(method, reference string) bool {
	for _, p := range s.payments {
		if p.PaymentMethod == method && p.ProviderReference == reference {
			return true
		}
	}
	return false
}

func (s *fakePaymentStore) ListPayments(_ context.Context, orderID int64) ([]*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Payment{}
	for _, p := range s.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) UpsertStripePayment(_ context.Context, orderID int64) (*models.StripePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.stripePayments {
		if p.OrderID == orderID {
			out := *p
			return &out, nil
		}
	}
	s.nextID++
	p := &models.StripePayment{ID: s.nextID, OrderID: orderID, Timestamp: time.Now()}
	s.stripePayments = append(s.stripePayments, p)
	out := *p
	return &out, nil
}

func (s *fakePaymentStore) UpdateStripePayment(_ context.Context, payment *models.StripePayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.stripePayments {
		if p.ID == payment.ID {
			p.PaymentIntentID = payment.PaymentIntentID
			p.Amount = payment.Amount
			p.Successful = payment.Successful
			return nil
		}
	}
	return db.ErrNotFound
}

func (s *fakePaymentStore) GetStripePaymentByIntentID(_ context.Context, intentID string) (*models.StripePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.stripePayments {
		if p.PaymentIntentID == intentID {
			out := *p
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *fakePaymentStore) ListStripePayments(_ context.Context, orderID int64) ([]*models.StripePayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.StripePayment{}
	for _, p := range s.stripePayments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePaymentStore) MarkStripePaymentSuccessful(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.stripePayments {
		if p.ID == id {
			p.Successful = true
			return nil
		}
	}
	return db.ErrNotFound
}

type fakeCustomerStore struct {
	mu        sync.Mutex
	customers map[int64]*models.Customer
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{customers: map[int64]*models.Customer{}}
}

func (s *fakeCustomerStore) GetOrCreate(_ context.Context, userID int64, email string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[userID]
	if !ok {
		c = &models.Customer{UserID: userID}
		s.customers[userID] = c
	}
	if email != "" {
		c.Email = email
	}
	out := *c
	return &out, nil
}

func (s *fakeCustomerStore) SetStripeCustomerID(_ context.Context, userID int64, stripeCustomerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[userID]
	if !ok {
		return db.ErrNotFound
	}
	c.StripeCustomerID = stripeCustomerID
	return nil
}

type fakeGateway struct {
	mu        sync.Mutex
	customers int
	intents   []stripe.IntentParams
	cards     []stripe.SavedCard
	chargeErr error
}

func (g *fakeGateway) CreateCustomer(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customers++
	return fmt.Sprintf("cus_%d", g.customers), nil
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, params stripe.IntentParams) (*stripe.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if params.PaymentMethodID != "" && g.chargeErr != nil {
		return nil, g.chargeErr
	}
	g.intents = append(g.intents, params)
	id := fmt.Sprintf("pi_%d", len(g.intents))
	status := "requires_payment_method"
	if params.PaymentMethodID != "" {
		status = "succeeded"
	}
	return &stripe.Intent{ID: id, ClientSecret: id + "_secret", Status: status, AmountCents: params.AmountCents}, nil
}

func (g *fakeGateway) ListCards(_ context.Context, _ string) ([]stripe.SavedCard, error) {
	return g.cards, nil
}

type fakeVerifier struct {
	err   error
	calls int
}

func (v *fakeVerifier) Verify(_ context.Context, _ *paypal.Confirmation) error {
	v.calls++
	return v.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	placed []int64
	err    error
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, order *models.Order, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order.ID)
	return n.err
}

func testProduct() *models.Product {
	return &models.Product{
		ID:         1,
		Title:      "Linen Shirt",
		Slug:       "linen-shirt",
		PriceCents: 250,
		Stock:      5,
		Active:     true,
		Colours:    []models.Variation{{ID: 10, Name: "Red"}, {ID: 11, Name: "Blue"}},
		Sizes:      []models.Variation{{ID: 20, Name: "M"}, {ID: 21, Name: "L"}},
	}
}
