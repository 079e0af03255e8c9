package impl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/config"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			MaxActiveSessions: 3,
			OTPTTL:            10 * time.Minute,
			OTPMaxAttempts:    5,
			MaxFailedLogins:   5,
			LockoutDuration:   15 * time.Minute,
		},
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength:        8,
			RequireUppercase: true,
			RequireLowercase: true,
			RequireNumbers:   true,
		},
		Admin: &config.AdminConfig{Emails: []string{"owner@example.com"}},
		Order: &config.OrderConfig{Currency: "INR", TaxBasisPoints: entity.DefaultTaxBasisPoints},
		Mail:  &config.MailConfig{Timeout: time.Second},
	}
}

// memStore is an in-memory stand-in for the database. Every repository and the
// transaction manager share one store; transactions do not roll back.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*entity.User
	auths    []*entity.Authentication
	tokens   map[uuid.UUID]*entity.RefreshToken
	products map[uuid.UUID]*entity.Product
	orders   map[uuid.UUID]*entity.Order
	contacts map[uuid.UUID]*entity.Contact
	heroes   map[uuid.UUID]*entity.HeroImage
	pending  map[string]*entity.PendingRegistration

	createOrderErr   error
	createProductErr error
	deleteContactErr error
	markPaidCalls    int
	tokenSeq         int
	// ratingTrace records product locks and rating reads in call order.
	ratingTrace []string
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uuid.UUID]*entity.User{},
		tokens:   map[uuid.UUID]*entity.RefreshToken{},
		products: map[uuid.UUID]*entity.Product{},
		orders:   map[uuid.UUID]*entity.Order{},
		contacts: map[uuid.UUID]*entity.Contact{},
		heroes:   map[uuid.UUID]*entity.HeroImage{},
		pending:  map[string]*entity.PendingRegistration{},
	}
}

func (s *memStore) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(s)
}

func (s *memStore) NewUserRepository() repository.UserRepository { return &memUserRepo{s} }

func (s *memStore) NewAuthRepository() repository.AuthRepository { return &memAuthRepo{s} }

func (s *memStore) NewRefreshTokenRepository() repository.RefreshTokenRepository {
	return &memRefreshTokenRepo{s}
}

func (s *memStore) NewProductRepository() repository.ProductRepository { return &memProductRepo{s} }

func (s *memStore) NewOrderRepository() repository.OrderRepository { return &memOrderRepo{s} }

// --- users ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrUserNotFound)
	}
	c := *u

	return &c, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u

			return &c, nil
		}
	}

	return nil, errors.WithStack(domainerrors.ErrUserNotFound)
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return errors.WithStack(domainerrors.ErrUserAlreadyExists)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	c := *user
	r.s.users[user.ID] = &c

	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return errors.WithStack(domainerrors.ErrUserNotFound)
	}
	c := *user
	r.s.users[user.ID] = &c

	return nil
}

func (r *memUserRepo) RecordFailedLogin(_ context.Context, id uuid.UUID, now time.Time, threshold int, lockout time.Duration) (*time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrUserNotFound)
	}
	if !u.RegisterFailedLogin(now, threshold, lockout) {
		return nil, nil
	}
	until := *u.LockedUntil

	return &until, nil
}

func (r *memUserRepo) List(_ context.Context, limit int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return int64(len(r.s.users)), nil
}

// --- credentials ---

type memAuthRepo struct{ s *memStore }

func (r *memAuthRepo) CreateAuthentication(_ context.Context, auth *entity.Authentication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	auth.ID = uuid.New()
	c := *auth
	r.s.auths = append(r.s.auths, &c)

	return nil
}

func (r *memAuthRepo) FindAuthentication(_ context.Context, provider entity.ProviderType, providerUserID string) (*entity.Authentication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.auths {
		if a.Provider == provider && a.ProviderUserID == providerUserID {
			c := *a

			return &c, nil
		}
	}

	return nil, errors.WithStack(repository.ErrAuthNotFound)
}

func (r *memAuthRepo) FindAuthenticationByUser(_ context.Context, userID uuid.UUID, provider entity.ProviderType) (*entity.Authentication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.auths {
		if a.UserID == userID && a.Provider == provider {
			c := *a

			return &c, nil
		}
	}

	return nil, errors.WithStack(repository.ErrAuthNotFound)
}

func (r *memAuthRepo) UpdatePasswordHash(_ context.Context, authID uuid.UUID, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.auths {
		if a.ID == authID {
			a.PasswordHash = passwordHash

			return nil
		}
	}

	return errors.WithStack(repository.ErrAuthNotFound)
}

// --- sessions ---

type memRefreshTokenRepo struct{ s *memStore }

func (r *memRefreshTokenRepo) CreateRefreshToken(_ context.Context, token *entity.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	// Strictly increasing creation times keep eviction order deterministic.
	r.s.tokenSeq++
	token.CreatedAt = time.Now().Add(time.Duration(r.s.tokenSeq) * time.Millisecond)
	c := *token
	r.s.tokens[token.ID] = &c

	return nil
}

func (r *memRefreshTokenRepo) FindRefreshTokenByHash(_ context.Context, tokenHash string) (*entity.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, t := range r.s.tokens {
		if t.TokenHash == tokenHash {
			c := *t

			return &c, nil
		}
	}

	return nil, errors.WithStack(repository.ErrRefreshTokenNotFound)
}

func (r *memRefreshTokenRepo) FindRefreshTokenByID(_ context.Context, id uuid.UUID) (*entity.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[id]
	if !ok {
		return nil, errors.WithStack(repository.ErrRefreshTokenNotFound)
	}
	c := *t

	return &c, nil
}

func (r *memRefreshTokenRepo) FindRefreshTokensByUserID(_ context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.userTokens(userID), nil
}

// userTokens returns copies newest first. Callers hold the lock.
func (r *memRefreshTokenRepo) userTokens(userID uuid.UUID) []*entity.RefreshToken {
	var out []*entity.RefreshToken
	for _, t := range r.s.tokens {
		if t.UserID == userID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out
}

func (r *memRefreshTokenRepo) TouchRefreshToken(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[id]
	if !ok {
		return errors.WithStack(repository.ErrRefreshTokenNotFound)
	}
	now := time.Now()
	t.LastUsedAt = &now

	return nil
}

func (r *memRefreshTokenRepo) DeleteRefreshToken(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.tokens, id)

	return nil
}

func (r *memRefreshTokenRepo) DeleteRefreshTokenByHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.tokens {
		if t.TokenHash == tokenHash {
			delete(r.s.tokens, id)
		}
	}

	return nil
}

func (r *memRefreshTokenRepo) DeleteRefreshTokensByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, t := range r.s.tokens {
		if t.UserID == userID {
			delete(r.s.tokens, id)
		}
	}

	return nil
}

func (r *memRefreshTokenRepo) DeleteOldestRefreshTokens(_ context.Context, userID uuid.UUID, keep int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tokens := r.userTokens(userID)
	for i := keep; i < len(tokens); i++ {
		delete(r.s.tokens, tokens[i].ID)
	}

	return nil
}

func (r *memRefreshTokenRepo) CountActiveSessionsByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return len(r.userTokens(userID)), nil
}

// --- catalog ---

type memProductRepo struct{ s *memStore }

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	c.AdditionalImages = slices.Clone(p.AdditionalImages)
	if p.Video != nil {
		v := *p.Video
		c.Video = &v
	}

	return &c
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrProductNotFound)
	}

	return cloneProduct(p), nil
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[uuid.UUID]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = cloneProduct(p)
		}
	}

	return out, nil
}

func (r *memProductRepo) List(_ context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Product
	for _, p := range r.s.products {
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		if filter.InStock != nil && p.InStock != *filter.InStock {
			continue
		}
		out = append(out, cloneProduct(p))
	}

	return out, nil
}

func (r *memProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.createProductErr != nil {
		return r.s.createProductErr
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.s.products[product.ID] = cloneProduct(product)

	return nil
}

func (r *memProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[product.ID]; !ok {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}
	r.s.products[product.ID] = cloneProduct(product)

	return nil
}

func (r *memProductRepo) LockForUpdate(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}
	r.s.ratingTrace = append(r.s.ratingTrace, "lock:"+id.String())

	return nil
}

func (r *memProductRepo) UpdateRating(_ context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}
	p.Rating = rating
	p.ReviewCount = reviewCount

	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}
	delete(r.s.products, id)

	return nil
}

func (r *memProductRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return int64(len(r.s.products)), nil
}

// --- orders ---

type memOrderRepo struct{ s *memStore }

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = make([]entity.OrderItem, len(o.Items))
	for i, item := range o.Items {
		c.Items[i] = item
		if item.Rating != nil {
			rating := *item.Rating
			c.Items[i].Rating = &rating
		}
	}

	return &c
}

func (r *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.createOrderErr != nil {
		return r.s.createOrderErr
	}
	for _, o := range r.s.orders {
		if o.GatewayOrderID == order.GatewayOrderID {
			return errors.WithStack(domainerrors.ErrConflict)
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.s.orders[order.ID] = cloneOrder(order)

	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrOrderNotFound)
	}

	return cloneOrder(o), nil
}

func (r *memOrderRepo) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.GatewayOrderID == gatewayOrderID {
			return cloneOrder(o), nil
		}
	}

	return nil, errors.WithStack(domainerrors.ErrOrderNotFound)
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}

	return out, nil
}

func (r *memOrderRepo) List(_ context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Order
	for _, o := range r.s.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (r *memOrderRepo) MarkPaid(_ context.Context, id uuid.UUID, confirmation repository.PaymentConfirmation) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.markPaidCalls++
	o, ok := r.s.orders[id]
	if !ok || o.Status != entity.OrderStatusPending {
		return false, nil
	}
	o.Status = entity.OrderStatusPaid
	o.PaymentID = confirmation.PaymentID
	o.PaymentSignature = confirmation.Signature
	paidAt := confirmation.PaidAt
	o.PaidAt = &paidAt

	return true, nil
}

func (r *memOrderRepo) TransitionStatus(_ context.Context, id uuid.UUID, expected, next entity.OrderStatus, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok || o.Status != expected {
		return false, nil
	}
	o.Status = next
	if next == entity.OrderStatusDelivered {
		o.DeliveredAt = &at
	}

	return true, nil
}

func (r *memOrderRepo) RateItem(_ context.Context, orderID, itemID uuid.UUID, rating int, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[orderID]
	if !ok {
		return false, nil
	}
	item := o.FindItem(itemID)
	if item == nil || item.Rating != nil {
		return false, nil
	}
	item.Rating = &rating
	item.RatedAt = &at

	return true, nil
}

func (r *memOrderRepo) ListProductRatings(_ context.Context, productID uuid.UUID) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.ratingTrace = append(r.s.ratingTrace, "ratings:"+productID.String())

	var out []int
	for _, o := range r.s.orders {
		for _, item := range o.Items {
			if item.ProductID == productID && item.Rating != nil {
				out = append(out, *item.Rating)
			}
		}
	}

	return out, nil
}

func (r *memOrderRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return int64(len(r.s.orders)), nil
}

func (r *memOrderRepo) CountByStatus(_ context.Context) ([]entity.OrderStatusCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[entity.OrderStatus]int64{}
	for _, o := range r.s.orders {
		counts[o.Status]++
	}
	out := make([]entity.OrderStatusCount, 0, len(counts))
	for status, n := range counts {
		out = append(out, entity.OrderStatusCount{Status: status, Count: n})
	}

	return out, nil
}

func (r *memOrderRepo) SumRevenue(_ context.Context, statuses []entity.OrderStatus) (entity.Money, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var sum entity.Money
	for _, o := range r.s.orders {
		if slices.Contains(statuses, o.Status) {
			sum += o.TotalAmount
		}
	}

	return sum, nil
}

// --- contacts ---

type memContactRepo struct{ s *memStore }

func (r *memContactRepo) Create(_ context.Context, contact *entity.Contact) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *contact
	c.Images = slices.Clone(contact.Images)
	r.s.contacts[contact.ID] = &c

	return nil
}

func (r *memContactRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrContactNotFound)
	}
	cp := *c
	cp.Images = slices.Clone(c.Images)

	return &cp, nil
}

func (r *memContactRepo) List(_ context.Context, status *entity.ContactStatus) ([]*entity.Contact, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Contact
	for _, c := range r.s.contacts {
		if status != nil && c.Status != *status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}

	return out, nil
}

func (r *memContactRepo) UpdateStatus(_ context.Context, id uuid.UUID, expected, next entity.ContactStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.contacts[id]
	if !ok || c.Status != expected {
		return false, nil
	}
	c.Status = next

	return true, nil
}

func (r *memContactRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.deleteContactErr != nil {
		return r.s.deleteContactErr
	}
	delete(r.s.contacts, id)

	return nil
}

func (r *memContactRepo) CountByStatus(_ context.Context, status entity.ContactStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, c := range r.s.contacts {
		if c.Status == status {
			n++
		}
	}

	return n, nil
}

// --- hero images ---

type memHeroRepo struct{ s *memStore }

func (r *memHeroRepo) Create(_ context.Context, hero *entity.HeroImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *hero
	r.s.heroes[hero.ID] = &c

	return nil
}

func (r *memHeroRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.HeroImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.heroes[id]
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrHeroImageNotFound)
	}
	c := *h

	return &c, nil
}

func (r *memHeroRepo) List(_ context.Context) ([]*entity.HeroImage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*entity.HeroImage, 0, len(r.s.heroes))
	for _, h := range r.s.heroes {
		c := *h
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })

	return out, nil
}

func (r *memHeroRepo) Update(_ context.Context, hero *entity.HeroImage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.heroes[hero.ID]; !ok {
		return errors.WithStack(domainerrors.ErrHeroImageNotFound)
	}
	c := *hero
	r.s.heroes[hero.ID] = &c

	return nil
}

func (r *memHeroRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.heroes, id)

	return nil
}

// --- pending registrations ---

type memPendingStore struct{ s *memStore }

func (p *memPendingStore) Put(_ context.Context, pending *entity.PendingRegistration, _ time.Duration) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	c := *pending
	c.Attempts = 0
	p.s.pending[strings.ToLower(pending.Email)] = &c

	return nil
}

func (p *memPendingStore) Get(_ context.Context, email string) (*entity.PendingRegistration, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	pending, ok := p.s.pending[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	c := *pending

	return &c, nil
}

func (p *memPendingStore) IncrementAttempts(_ context.Context, email string) (int, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	pending, ok := p.s.pending[strings.ToLower(email)]
	if !ok {
		return 0, nil
	}
	pending.Attempts++

	return pending.Attempts, nil
}

func (p *memPendingStore) Delete(_ context.Context, email string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	delete(p.s.pending, strings.ToLower(email))

	return nil
}

// --- services ---

// fakeHasher marks hashes with a prefix so tests can read them back.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Check(password, hash string) bool { return hash == "hashed:"+password }

// fakeTokenService issues opaque numbered tokens and remembers their claims.
type fakeTokenService struct {
	mu     sync.Mutex
	n      int
	claims map[string]*service.Claims
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{claims: map[string]*service.Claims{}}
}

func (f *fakeTokenService) GenerateTokens(userID uuid.UUID, roles []string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.n++
	access := fmt.Sprintf("access-%d", f.n)
	refresh := fmt.Sprintf("refresh-%d", f.n)
	f.claims[access] = &service.Claims{UserID: userID, Roles: roles, Type: service.TokenTypeAccess}
	f.claims[refresh] = &service.Claims{UserID: userID, Type: service.TokenTypeRefresh}

	return access, refresh, nil
}

func (f *fakeTokenService) ValidateToken(token string) (*service.Claims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	claims, ok := f.claims[token]
	if !ok {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (f *fakeTokenService) HashToken(token string) string { return "sha:" + token }

func (f *fakeTokenService) GetRefreshTokenDuration() time.Duration { return 24 * time.Hour }

type mockGateway struct{ mock.Mock }

func (m *mockGateway) CreateSession(ctx context.Context, req service.SessionRequest) (*service.PaymentSession, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*service.PaymentSession)

	return session, args.Error(1)
}

func (m *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}

func (m *mockGateway) PublicKeyID() string { return "rzp_test_key" }

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, template service.MailTemplate, recipient string, data map[string]any) error {
	return m.Called(ctx, template, recipient, data).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishOrderEvent(ctx context.Context, event *service.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

type mockOAuth struct{ mock.Mock }

func (m *mockOAuth) VerifyIDToken(ctx context.Context, idToken string) (*service.OAuthUser, error) {
	args := m.Called(ctx, idToken)
	user, _ := args.Get(0).(*service.OAuthUser)

	return user, args.Error(1)
}

func (m *mockOAuth) GetProvider() entity.ProviderType { return entity.ProviderTypeGoogle }

// fakeStorage keeps uploads in memory and can be told to fail.
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string]entity.MediaFile
	failOn    string
	deleteErr error
	deleted   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]entity.MediaFile{}}
}

func (f *fakeStorage) Upload(_ context.Context, folder string, file entity.MediaFile, _ entity.MediaKind) (entity.MediaRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn != "" && file.Filename == f.failOn {
		return entity.MediaRef{}, errors.WithStack(domainerrors.ErrInvalidMedia)
	}
	id := folder + "/" + uuid.NewString() + "-" + file.Filename
	f.objects[id] = file

	return entity.MediaRef{ID: id, URL: "https://cdn.example.com/" + id}, nil
}

func (f *fakeStorage) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, id)
	f.deleted = append(f.deleted, id)

	return nil
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.objects)
}
