package handler

import (
	"time"

	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
)

// Amounts are rendered as decimal strings in major units, e.g. "2360.00".

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	IsVerified  bool       `json:"is_verified"`
	Roles       []string   `json:"roles"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toUserResponse(user *entity.User, roles entity.Roles) *UserResponse {
	if user == nil {
		return nil
	}

	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Phone:       user.Phone,
		IsVerified:  user.IsVerified,
		Roles:       roles.ToStrings(),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// AuthResponse is returned by every flow that opens a session.
type AuthResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user"`
	IsNewUser    bool          `json:"is_new_user,omitempty"`
}

func toAuthResponse(out *usecase.LoginOutput) *AuthResponse {
	return &AuthResponse{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		User:         toUserResponse(out.User, out.Roles),
		IsNewUser:    out.IsNewUser,
	}
}

// SessionResponse describes one signed-in device.
type SessionResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserAgent  string     `json:"user_agent"`
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

func toSessionResponses(sessions []*usecase.SessionInfo) []*SessionResponse {
	out := make([]*SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, &SessionResponse{
			ID:         s.ID,
			UserAgent:  s.UserAgent,
			IPAddress:  s.IPAddress,
			CreatedAt:  s.CreatedAt,
			LastUsedAt: s.LastUsedAt,
			ExpiresAt:  s.ExpiresAt,
		})
	}

	return out
}

// ProductResponse is a catalog entry.
type ProductResponse struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Price            string            `json:"price"`
	DiscountPrice    *string           `json:"discount_price,omitempty"`
	EffectivePrice   string            `json:"effective_price"`
	Image            entity.MediaRef   `json:"image"`
	AdditionalImages []entity.MediaRef `json:"additional_images"`
	Video            *entity.MediaRef  `json:"video,omitempty"`
	Category         entity.Category   `json:"category"`
	InStock          bool              `json:"in_stock"`
	Rating           float64           `json:"rating"`
	ReviewCount      int               `json:"review_count"`
	Featured         bool              `json:"featured"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func toProductResponse(p *entity.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		Price:            p.Price.String(),
		EffectivePrice:   p.EffectivePrice().String(),
		Image:            p.Image,
		AdditionalImages: p.AdditionalImages,
		Video:            p.Video,
		Category:         p.Category,
		InStock:          p.InStock,
		Rating:           p.Rating,
		ReviewCount:      p.ReviewCount,
		Featured:         p.Featured,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if resp.AdditionalImages == nil {
		resp.AdditionalImages = []entity.MediaRef{}
	}
	if p.DiscountPrice != nil {
		discount := p.DiscountPrice.String()
		resp.DiscountPrice = &discount
	}

	return resp
}

func toProductResponses(products []*entity.Product) []*ProductResponse {
	out := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}

	return out
}

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   string     `json:"unit_price"`
	LineTotal   string     `json:"line_total"`
	Variant     string     `json:"variant,omitempty"`
	Rating      *int       `json:"rating,omitempty"`
	RatedAt     *time.Time `json:"rated_at,omitempty"`
}

// OrderResponse is an order with its priced lines.
type OrderResponse struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"user_id"`
	Items           []*OrderItemResponse   `json:"items"`
	Subtotal        string                 `json:"subtotal"`
	Tax             string                 `json:"tax"`
	TotalAmount     string                 `json:"total_amount"`
	Currency        string                 `json:"currency"`
	GatewayOrderID  string                 `json:"gateway_order_id"`
	PaymentID       string                 `json:"payment_id,omitempty"`
	ShippingAddress entity.ShippingAddress `json:"shipping_address"`
	Status          entity.OrderStatus     `json:"status"`
	PaidAt          *time.Time             `json:"paid_at,omitempty"`
	DeliveredAt     *time.Time             `json:"delivered_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func toOrderResponse(o *entity.Order) *OrderResponse {
	items := make([]*OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, &OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.String(),
			LineTotal:   item.LineTotal().String(),
			Variant:     item.Variant,
			Rating:      item.Rating,
			RatedAt:     item.RatedAt,
		})
	}

	return &OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Subtotal:        o.Subtotal.String(),
		Tax:             o.Tax.String(),
		TotalAmount:     o.TotalAmount.String(),
		Currency:        o.Currency,
		GatewayOrderID:  o.GatewayOrderID,
		PaymentID:       o.PaymentID,
		ShippingAddress: o.ShippingAddress,
		Status:          o.Status,
		PaidAt:          o.PaidAt,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderResponses(orders []*entity.Order) []*OrderResponse {
	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}

	return out
}

// CheckoutResponse carries what the client needs to open the payment widget.
// AmountSubunits is the integer amount the gateway was asked to collect.
type CheckoutResponse struct {
	GatewayOrderID string         `json:"gateway_order_id"`
	AmountSubunits int64          `json:"amount_subunits"`
	Amount         string         `json:"amount"`
	Currency       string         `json:"currency"`
	KeyID          string         `json:"key_id"`
	Order          *OrderResponse `json:"order"`
}

func toCheckoutResponse(out *usecase.CreateOrderOutput) *CheckoutResponse {
	return &CheckoutResponse{
		GatewayOrderID: out.GatewayOrderID,
		AmountSubunits: out.Amount.Int64(),
		Amount:         out.Amount.String(),
		Currency:       out.Currency,
		KeyID:          out.KeyID,
		Order:          toOrderResponse(out.Order),
	}
}

// ContactResponse is a contact-form message.
type ContactResponse struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Email     string                `json:"email"`
	Subject   entity.ContactSubject `json:"subject"`
	Message   string                `json:"message"`
	Images    []entity.MediaRef     `json:"images"`
	Status    entity.ContactStatus  `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

func toContactResponse(c *entity.Contact) *ContactResponse {
	images := c.Images
	if images == nil {
		images = []entity.MediaRef{}
	}

	return &ContactResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Subject:   c.Subject,
		Message:   c.Message,
		Images:    images,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}

// HeroImageResponse is one carousel slide.
type HeroImageResponse struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Subtitle     string          `json:"subtitle,omitempty"`
	Category     string          `json:"category,omitempty"`
	Image        entity.MediaRef `json:"image"`
	Link         string          `json:"link,omitempty"`
	DisplayOrder int             `json:"display_order"`
}

func toHeroImageResponse(h *entity.HeroImage) *HeroImageResponse {
	return &HeroImageResponse{
		ID:           h.ID,
		Title:        h.Title,
		Subtitle:     h.Subtitle,
		Category:     h.Category,
		Image:        h.Image,
		Link:         h.Link,
		DisplayOrder: h.DisplayOrder,
	}
}

// DashboardResponse summarises the store.
type DashboardResponse struct {
	TotalUsers     int64                        `json:"total_users"`
	TotalProducts  int64                        `json:"total_products"`
	TotalOrders    int64                        `json:"total_orders"`
	OrdersByStatus map[entity.OrderStatus]int64 `json:"orders_by_status"`
	Revenue        string                       `json:"revenue"`
	NewContacts    int64                        `json:"new_contacts"`
	RecentOrders   []*OrderResponse             `json:"recent_orders"`
}

func toDashboardResponse(d *usecase.DashboardOutput) *DashboardResponse {
	return &DashboardResponse{
		TotalUsers:     d.TotalUsers,
		TotalProducts:  d.TotalProducts,
		TotalOrders:    d.TotalOrders,
		OrdersByStatus: d.OrdersByStatus,
		Revenue:        d.Revenue.String(),
		NewContacts:    d.NewContacts,
		RecentOrders:   toOrderResponses(d.RecentOrders),
	}
}
