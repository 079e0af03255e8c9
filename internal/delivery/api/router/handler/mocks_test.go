package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	apimiddleware "storefront/internal/delivery/api/middleware"
	"storefront/internal/delivery/api/response"
	"storefront/internal/delivery/api/validator"
	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/errors"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrderUsecase struct {
	mock.Mock
}

func (m *mockOrderUsecase) CreateOrder(ctx context.Context, userID uuid.UUID, input *usecase.CreateOrderInput) (*usecase.CreateOrderOutput, error) {
	args := m.Called(ctx, userID, input)
	out, _ := args.Get(0).(*usecase.CreateOrderOutput)

	return out, args.Error(1)
}

func (m *mockOrderUsecase) VerifyPayment(ctx context.Context, userID uuid.UUID, input *usecase.VerifyPaymentInput) (*entity.Order, error) {
	args := m.Called(ctx, userID, input)
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUsecase) ListOrders(ctx context.Context, userID uuid.UUID) ([]*entity.Order, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUsecase) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, userID, orderID)
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUsecase) RateItem(ctx context.Context, userID, orderID uuid.UUID, input *usecase.RateItemInput) (*entity.Order, error) {
	args := m.Called(ctx, userID, orderID, input)
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

func (m *mockOrderUsecase) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next entity.OrderStatus) (*entity.Order, error) {
	args := m.Called(ctx, orderID, next)
	out, _ := args.Get(0).(*entity.Order)

	return out, args.Error(1)
}

type mockProductUsecase struct {
	mock.Mock
}

func (m *mockProductUsecase) ListProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*entity.Product)

	return out, args.Error(1)
}

func (m *mockProductUsecase) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*entity.Product)

	return out, args.Error(1)
}

func (m *mockProductUsecase) CreateProduct(ctx context.Context, input *usecase.ProductInput, media *usecase.ProductMedia) (*entity.Product, error) {
	args := m.Called(ctx, input, media)
	out, _ := args.Get(0).(*entity.Product)

	return out, args.Error(1)
}

func (m *mockProductUsecase) UpdateProduct(ctx context.Context, id uuid.UUID, input *usecase.ProductInput, media *usecase.ProductMedia) (*entity.Product, error) {
	args := m.Called(ctx, id, input, media)
	out, _ := args.Get(0).(*entity.Product)

	return out, args.Error(1)
}

func (m *mockProductUsecase) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockContactUsecase struct {
	mock.Mock
}

func (m *mockContactUsecase) Submit(ctx context.Context, input *usecase.ContactInput, images []entity.MediaFile) (*entity.Contact, error) {
	args := m.Called(ctx, input, images)
	out, _ := args.Get(0).(*entity.Contact)

	return out, args.Error(1)
}

func (m *mockContactUsecase) List(ctx context.Context, status *entity.ContactStatus) ([]*entity.Contact, error) {
	args := m.Called(ctx, status)
	out, _ := args.Get(0).([]*entity.Contact)

	return out, args.Error(1)
}

func (m *mockContactUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ContactStatus) (*entity.Contact, error) {
	args := m.Called(ctx, id, status)
	out, _ := args.Get(0).(*entity.Contact)

	return out, args.Error(1)
}

type mockUserUsecase struct {
	mock.Mock
}

func (m *mockUserUsecase) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.RegisterOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) VerifyEmail(ctx context.Context, input usecase.VerifyEmailInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.LoginOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) ResendVerification(ctx context.Context, email string) (*usecase.RegisterOutput, error) {
	args := m.Called(ctx, email)
	out, _ := args.Get(0).(*usecase.RegisterOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.LoginOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) GoogleLogin(ctx context.Context, input usecase.GoogleLoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*usecase.LoginOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) RefreshToken(ctx context.Context, refreshToken string) (*usecase.RefreshTokenOutput, error) {
	args := m.Called(ctx, refreshToken)
	out, _ := args.Get(0).(*usecase.RefreshTokenOutput)

	return out, args.Error(1)
}

func (m *mockUserUsecase) Logout(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}

type stubMediaReader struct {
	objects map[string]string
}

func (s *stubMediaReader) Open(_ context.Context, id string) (io.ReadCloser, string, error) {
	body, ok := s.objects[id]
	if !ok {
		return nil, "", errors.WithStack(domainerrors.ErrNotFound)
	}

	return io.NopCloser(strings.NewReader(body)), "image/png", nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(slog.Default()).HandleHTTPError

	return e
}

// withUser stands in for the auth middleware.
func withUser(userID uuid.UUID, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			deliverycontext.SetPrincipal(c, userID, roles)

			return next(c)
		}
	}
}

func serveJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *response.ErrorInfo {
	t.Helper()

	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)

	return body.Error
}

type mockAdminUsecase struct {
	mock.Mock
}

func (m *mockAdminUsecase) Dashboard(ctx context.Context) (*usecase.DashboardOutput, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*usecase.DashboardOutput)

	return out, args.Error(1)
}

func (m *mockAdminUsecase) ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]*entity.Order)

	return out, args.Error(1)
}

func (m *mockAdminUsecase) ListUsers(ctx context.Context, limit int) ([]*usecase.UserSummary, error) {
	args := m.Called(ctx, limit)
	out, _ := args.Get(0).([]*usecase.UserSummary)

	return out, args.Error(1)
}

type mockProfileUsecase struct {
	mock.Mock
}

func (m *mockProfileUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.ProfileOutput, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).(*usecase.ProfileOutput)

	return out, args.Error(1)
}

func (m *mockProfileUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*usecase.ProfileOutput, error) {
	args := m.Called(ctx, userID, input)
	out, _ := args.Get(0).(*usecase.ProfileOutput)

	return out, args.Error(1)
}

func (m *mockProfileUsecase) ChangePassword(ctx context.Context, userID uuid.UUID, input *usecase.ChangePasswordInput) error {
	return m.Called(ctx, userID, input).Error(0)
}

type mockSessionUsecase struct {
	mock.Mock
}

func (m *mockSessionUsecase) GetActiveSessions(ctx context.Context, userID uuid.UUID) ([]*usecase.SessionInfo, error) {
	args := m.Called(ctx, userID)
	out, _ := args.Get(0).([]*usecase.SessionInfo)

	return out, args.Error(1)
}

func (m *mockSessionUsecase) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	return m.Called(ctx, userID, sessionID).Error(0)
}

func (m *mockSessionUsecase) RevokeAllSessions(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockHeroUsecase struct {
	mock.Mock
}

func (m *mockHeroUsecase) List(ctx context.Context) ([]*entity.HeroImage, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]*entity.HeroImage)

	return out, args.Error(1)
}

func (m *mockHeroUsecase) Create(ctx context.Context, input *usecase.HeroImageInput, image *entity.MediaFile) (*entity.HeroImage, error) {
	args := m.Called(ctx, input, image)
	out, _ := args.Get(0).(*entity.HeroImage)

	return out, args.Error(1)
}

func (m *mockHeroUsecase) Update(ctx context.Context, id uuid.UUID, input *usecase.HeroImageInput, image *entity.MediaFile) (*entity.HeroImage, error) {
	args := m.Called(ctx, id, input, image)
	out, _ := args.Get(0).(*entity.HeroImage)

	return out, args.Error(1)
}

func (m *mockHeroUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
