package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/Kariqs/tableside/backend"
	"github.com/Kariqs/tableside/backend/backendtest"
	"github.com/Kariqs/tableside/cart"
	"github.com/Kariqs/tableside/checkout"
	"github.com/Kariqs/tableside/controllers"
	"github.com/Kariqs/tableside/menu"
	"github.com/Kariqs/tableside/middlewares"
	"github.com/Kariqs/tableside/models"
	"github.com/Kariqs/tableside/payment"
	"github.com/Kariqs/tableside/repository"
	"github.com/Kariqs/tableside/routes"
	"github.com/Kariqs/tableside/session"
	"github.com/Kariqs/tableside/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	browserA  = "8a0d7f6e-2c1b-4f7a-9a59-3b1f2d6c9e01"
	browserB  = "5b3c1e2d-7f4a-4c8b-8d2e-1a9f0c7b6d02"
	jwtSecret = "controller-test-secret"
)

// fakeVerifier answers with conf. Amount and currency default to what the
// last checkout asked the browser to pay.
type fakeVerifier struct {
	mu       sync.Mutex
	conf     payment.Confirmation
	err      error
	amount   int64
	currency string
}

func (f *fakeVerifier) Verify(_ context.Context, intentID string) (payment.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return payment.Confirmation{}, f.err
	}
	c := f.conf
	c.IntentID = intentID
	if c.Amount == 0 && c.Currency == "" {
		c.Amount, c.Currency = f.amount, f.currency
	}
	return c, nil
}

func (f *fakeVerifier) expect(total decimal.Decimal, currency string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amount, f.currency = payment.MinorUnits(total, currency), currency
}

func (f *fakeVerifier) set(conf payment.Confirmation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conf, f.err = conf, err
}

type fakeUploader struct {
	folder, filename, contentType string
	body                          []byte
}

func (f *fakeUploader) Upload(_ context.Context, folder, filename, contentType string, body io.Reader) (string, error) {
	f.folder, f.filename, f.contentType = folder, filename, contentType
	f.body, _ = io.ReadAll(body)
	return "https://cdn.tableside.test/" + folder + "/" + filename, nil
}

type harness struct {
	t        *testing.T
	router   *gin.Engine
	srv      *backendtest.Server
	verifier *fakeVerifier
	uploader *fakeUploader
	ledger   *repository.CheckoutAttemptRepository
	carts    *cart.Service
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	kv := store.NewRedisStore(client, "test")

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.CheckoutAttempt{}))

	srv := backendtest.NewServer(t)
	api := backend.New(srv.URL, 5*time.Second)

	h := &harness{
		t:        t,
		srv:      srv,
		verifier: &fakeVerifier{conf: payment.Confirmation{Status: "succeeded", Succeeded: true}},
		uploader: &fakeUploader{},
		ledger:   repository.NewCheckoutAttemptRepository(db),
		carts:    cart.NewService(kv, 24*time.Hour),
	}

	c := controllers.New(controllers.Options{
		Backend:   api,
		Menu:      menu.NewService(api, menu.Settings{FailureThreshold: 100}),
		Sessions:  session.NewBinder(kv, time.Hour, api),
		Carts:     h.carts,
		Attempts:  checkout.NewAttemptStore(kv, time.Hour),
		Verifier:  h.verifier,
		Ledger:    h.ledger,
		Uploader:  h.uploader,
		JWTSecret: []byte(jwtSecret),
	})

	h.router = gin.New()
	routes.Register(h.router, c, false, []byte(jwtSecret))
	return h
}

type request struct {
	method  string
	path    string
	body    any
	browser string
	admin   string
}

func (h *harness) do(r request) *httptest.ResponseRecorder {
	h.t.Helper()
	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		require.NoError(h.t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(r.method, r.path, body)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.browser != "" {
		req.AddCookie(&http.Cookie{Name: middlewares.BrowserCookie, Value: r.browser})
	}
	if r.admin != "" {
		req.AddCookie(&http.Cookie{Name: middlewares.AdminCookie, Value: r.admin})
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) get(path, browser string) *httptest.ResponseRecorder {
	return h.do(request{method: http.MethodGet, path: path, browser: browser})
}

func (h *harness) post(path, browser string, body any) *httptest.ResponseRecorder {
	return h.do(request{method: http.MethodPost, path: path, browser: browser, body: body})
}

func (h *harness) bind(browser string) {
	h.t.Helper()
	w := h.get("/t/enc-table-1", browser)
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
}

func (h *harness) add(browser string, dishID int, size string, qty int) *httptest.ResponseRecorder {
	return h.post("/cart/items", browser, gin.H{"dish_id": dishID, "size": size, "quantity": qty})
}

func (h *harness) loginAdmin() string {
	h.t.Helper()
	w := h.post("/admin/login", "", models.LoginData{Email: backendtest.AdminEmail, Password: backendtest.AdminPassword})
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	for _, ck := range w.Result().Cookies() {
		if ck.Name == middlewares.AdminCookie {
			return ck.Value
		}
	}
	h.t.Fatal("admin cookie not set")
	return ""
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var errProcessorDown = errors.New("processor timeout")

func multipartImage(t *testing.T, filename, contentType, folder string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder", folder))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
