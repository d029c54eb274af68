package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mercadolocal/marketplace-service/internals/core/apperr"
	"github.com/mercadolocal/marketplace-service/internals/core/models"
	"github.com/mercadolocal/marketplace-service/internals/core/models/responses"
	"github.com/mercadolocal/marketplace-service/internals/core/repository"
	"github.com/mercadolocal/marketplace-service/internals/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Stubs embed the interface so only the methods a test touches need a body.

type stubUsers struct {
	userService
	registered services.RegisterInput
	err        error
	fcmToken   string
}

func (s *stubUsers) Register(_ context.Context, in services.RegisterInput) (*responses.AuthResponse, error) {
	s.registered = in
	if s.err != nil {
		return nil, s.err
	}
	return &responses.AuthResponse{Token: "jwt", User: models.User{ID: uuid.New(), Name: in.Name, Email: in.Email}}, nil
}

func (s *stubUsers) UpdateFCMToken(_ context.Context, _ uuid.UUID, token string) error {
	s.fcmToken = token
	return s.err
}

func TestRegister(t *testing.T) {
	users := &stubUsers{}
	h := NewUserHandler(users, testLog)
	r := newEngine()
	r.POST("/auth/register", h.Register)

	w := doJSON(r, "POST", "/auth/register", map[string]string{"name": "Ana", "email": "ana@example.com", "password": "secreto"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ana@example.com", users.registered.Email)
	assert.Contains(t, w.Body.String(), `"token":"jwt"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"duplicate email", apperr.ErrEmailTaken, http.StatusConflict, "El correo ya está registrado"},
		{"database failure", errors.New("connection refused"), http.StatusInternalServerError, "Error al registrar usuario"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUserHandler(&stubUsers{err: tt.err}, testLog)
			r := newEngine()
			r.POST("/auth/register", h.Register)

			w := doJSON(r, "POST", "/auth/register", map[string]string{"name": "Ana", "email": "ana@example.com", "password": "secreto"})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, errorMessage(t, w))
		})
	}
}

func TestRegisterMalformedBody(t *testing.T) {
	h := NewUserHandler(&stubUsers{}, testLog)
	r := newEngine()
	r.POST("/auth/register", h.Register)

	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Datos de la solicitud inválidos", errorMessage(t, w))
}

func TestUpdateFCMToken(t *testing.T) {
	users := &stubUsers{}
	h := NewUserHandler(users, testLog)
	r := newEngine()
	r.PUT("/users/me/fcm-token", asUser(uuid.New()), h.UpdateFCMToken)

	w := doJSON(r, "PUT", "/users/me/fcm-token", map[string]string{"token": "device-1"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "device-1", users.fcmToken)
}

type stubVendors struct {
	vendorService
	qr []byte
}

func (s *stubVendors) Get(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	return nil, apperr.ErrVendorNotFound
}

func (s *stubVendors) StorefrontQR(context.Context, uuid.UUID) ([]byte, error) {
	return s.qr, nil
}

type stubCheckout struct{ err error }

func (s stubCheckout) Checkout(context.Context, uuid.UUID, uuid.UUID) (responses.CheckoutResponse, error) {
	return responses.CheckoutResponse{}, s.err
}

func TestVendorRoutes(t *testing.T) {
	h := NewVendorHandler(&stubVendors{qr: []byte("\x89PNG")}, stubCheckout{err: apperr.ErrPaymentsDisabled}, testLog)
	r := newEngine()
	r.GET("/vendors/:id", h.Get)
	r.GET("/vendors/:id/qr", h.QR)
	r.POST("/vendors/:id/feature/checkout", asUser(uuid.New()), h.FeatureCheckout)

	w := doJSON(r, "GET", "/vendors/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Negocio no encontrado", errorMessage(t, w))

	w = doJSON(r, "GET", "/vendors/"+uuid.NewString()+"/qr", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = doJSON(r, "POST", "/vendors/"+uuid.NewString()+"/feature/checkout", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Los pagos no están configurados", errorMessage(t, w))
}

type stubProducts struct {
	productService
	viewer *uuid.UUID
	filter repository.ProductFilter
}

func (s *stubProducts) Search(_ context.Context, viewer *uuid.UUID, filter repository.ProductFilter) (responses.Page[models.Product], error) {
	s.viewer, s.filter = viewer, filter
	return responses.NewPage[models.Product](nil, 0, filter.Page, filter.Limit), nil
}

func TestProductListFilters(t *testing.T) {
	products := &stubProducts{}
	h := NewProductHandler(products, testLog)
	userID, vendorID := uuid.New(), uuid.New()
	r := newEngine()
	r.GET("/products", asUser(userID), h.List)

	w := doJSON(r, "GET", "/products?q=pan&category=comida&vendor_id="+vendorID.String()+"&limit=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"total":0,"page":1,"limit":5}`, w.Body.String())
	require.NotNil(t, products.viewer)
	assert.Equal(t, userID, *products.viewer)
	assert.Equal(t, "pan", products.filter.Query)
	assert.Equal(t, "comida", products.filter.Category)
	require.NotNil(t, products.filter.VendorID)
	assert.Equal(t, vendorID, *products.filter.VendorID)

	w = doJSON(r, "GET", "/products?vendor_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubChats struct {
	chatService
	before *time.Time
	limit  int
}

func (s *stubChats) Messages(_ context.Context, _, _ uuid.UUID, before *time.Time, limit int) ([]models.Message, error) {
	s.before, s.limit = before, limit
	return []models.Message{}, nil
}

func (s *stubChats) Send(_ context.Context, userID, conversationID uuid.UUID, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperr.ErrEmptyMessage
	}
	return &models.Message{ID: uuid.New(), ConversationID: conversationID, SenderID: userID, Content: content}, nil
}

type rejectAll struct{}

func (rejectAll) Authenticate(string) (uuid.UUID, error) { return uuid.Nil, errors.New("bad token") }

func TestChatMessages(t *testing.T) {
	chats := &stubChats{}
	h := NewChatHandler(chats, rejectAll{}, nil, testLog)
	r := newEngine()
	r.GET("/chat/conversations/:id/messages", asUser(uuid.New()), h.Messages)
	r.POST("/chat/conversations/:id/messages", asUser(uuid.New()), h.Send)

	path := "/chat/conversations/" + uuid.NewString() + "/messages"

	w := doJSON(r, "GET", path+"?before=2024-05-01T10:00:00Z&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, chats.before)
	assert.Equal(t, 2024, chats.before.Year())
	assert.Equal(t, 10, chats.limit)

	w = doJSON(r, "GET", path+"?before=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "POST", path, map[string]string{"content": "hola"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, "POST", path, map[string]string{"content": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El mensaje no puede estar vacío", errorMessage(t, w))
}

func TestChatSocketRequiresToken(t *testing.T) {
	h := NewChatHandler(&stubChats{}, rejectAll{}, nil, testLog)
	r := newEngine()
	r.GET("/chat/ws", h.Socket)

	w := doJSON(r, "GET", "/chat/ws?token=garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type stubCoupons struct {
	couponService
	code string
}

func (s *stubCoupons) Redeem(_ context.Context, userID uuid.UUID, code string) (*models.CouponRedemption, error) {
	s.code = code
	if code == "VIEJO" {
		return nil, apperr.ErrCouponExpired
	}
	return &models.CouponRedemption{ID: uuid.New(), UserID: userID}, nil
}

func TestCouponRedeem(t *testing.T) {
	coupons := &stubCoupons{}
	h := NewCouponHandler(coupons, testLog)
	r := newEngine()
	r.POST("/coupons/:code/redeem", asUser(uuid.New()), h.Redeem)

	w := doJSON(r, "POST", "/coupons/PROMO10/redeem", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "PROMO10", coupons.code)

	w = doJSON(r, "POST", "/coupons/VIEJO/redeem", nil)
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, "El cupón ha expirado", errorMessage(t, w))
}

type stubNotifications struct {
	notificationService
	updated int64
}

func (s *stubNotifications) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return s.updated, nil
}

func (s *stubNotifications) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	return apperr.ErrNotificationNotFound
}

func TestNotificationRoutes(t *testing.T) {
	h := NewNotificationHandler(&stubNotifications{updated: 4}, testLog)
	r := newEngine()
	r.PUT("/notifications/read-all", asUser(uuid.New()), h.MarkAllRead)
	r.PUT("/notifications/:id/read", asUser(uuid.New()), h.MarkRead)

	w := doJSON(r, "PUT", "/notifications/read-all", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"updated":4}`, w.Body.String())

	w = doJSON(r, "PUT", "/notifications/"+uuid.NewString()+"/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Notificación no encontrada", errorMessage(t, w))
}

type stubMedia struct {
	contentType string
	folder      string
	data        []byte
}

func (s *stubMedia) UploadImage(_ context.Context, file io.Reader, _ int64, contentType, folder string) (responses.UploadResult, error) {
	s.contentType, s.folder = contentType, folder
	s.data, _ = io.ReadAll(file)
	return responses.UploadResult{URL: "https://res.cloudinary.com/x.jpg", PublicID: "mercado/" + folder + "/x"}, nil
}

func multipartImage(t *testing.T, field string) (*bytes.Buffer, string) {
	t.Helper()
	return multipartFile(t, field, []byte("jpeg-bytes"))
}

func multipartFile(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="foto.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	media := &stubMedia{}
	h := NewUploadHandler(media, testLog)
	r := newEngine()
	r.POST("/uploads/image", asUser(uuid.New()), h.Image)

	body, contentType := multipartImage(t, "image")
	req := httptest.NewRequest("POST", "/uploads/image?folder=vendors", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "image/jpeg", media.contentType)
	assert.Equal(t, "vendors", media.folder)
	assert.Equal(t, "jpeg-bytes", string(media.data))

	body, contentType = multipartImage(t, "file")
	req = httptest.NewRequest("POST", "/uploads/image", body)
	req.Header.Set("Content-Type", contentType)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "La imagen es obligatoria", errorMessage(t, w))
}

func TestUploadImageTooLarge(t *testing.T) {
	media := &stubMedia{}
	h := NewUploadHandler(media, testLog)
	r := newEngine()
	r.POST("/uploads/image", asUser(uuid.New()), h.Image)

	body, contentType := multipartFile(t, "image", bytes.Repeat([]byte{0xff}, services.MaxImageBytes+2<<20))
	req := httptest.NewRequest("POST", "/uploads/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "La imagen no puede superar 5 MB", errorMessage(t, w))
	assert.Nil(t, media.data)
}

type stubWebhook struct {
	payload   []byte
	signature string
	err       error
}

func (s *stubWebhook) HandleWebhook(_ context.Context, payload []byte, signature string) error {
	s.payload, s.signature = payload, signature
	return s.err
}

func TestPaymentWebhook(t *testing.T) {
	hook := &stubWebhook{}
	h := NewPaymentHandler(hook, testLog)
	r := newEngine()
	r.POST("/payments/webhook", h.Webhook)

	req := httptest.NewRequest("POST", "/payments/webhook", bytes.NewBufferString(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"type":"checkout.session.completed"}`, string(hook.payload))
	assert.Equal(t, "t=1,v1=abc", hook.signature)

	hook.err = apperr.ErrInvalidSignature
	w = doJSON(r, "POST", "/payments/webhook", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Firma inválida", errorMessage(t, w))
}
