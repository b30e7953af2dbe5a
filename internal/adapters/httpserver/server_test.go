package httpserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/cosmetica/internal/adapters/repo/postgres"
	"github.com/phenrril/cosmetica/internal/adapters/storage/localfs"
	"github.com/phenrril/cosmetica/internal/adapters/token"
	"github.com/phenrril/cosmetica/internal/usecase"
)

const adminEmail = "admin@shop.test"

type harness struct {
	t       *testing.T
	handler http.Handler
	uploads string
	sqlDB   *sql.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), postgres.NewGormConfig(logger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.Migrate(db))

	dir := t.TempDir()
	st := localfs.New(dir)
	signer := token.NewSigner("test-secret", time.Hour)
	catRepo := postgres.NewCategoryRepo(db)
	prodRepo := postgres.NewProductRepo(db)
	products := &usecase.ProductUC{Products: prodRepo, Categories: catRepo, Storage: st}

	h := New(Deps{
		Categories: &usecase.CategoryUC{Categories: catRepo, Storage: st},
		Products:   products,
		Cart:       &usecase.CartUC{Cart: postgres.NewCartRepo(db), Products: prodRepo},
		Wishlist:   &usecase.WishlistUC{Wishlist: postgres.NewWishlistRepo(db), Products: prodRepo},
		Users: &usecase.UserUC{
			Users:       postgres.NewUserRepo(db),
			Storage:     st,
			Tokens:      signer,
			AdminEmails: map[string]bool{adminEmail: true},
		},
		CatalogIO:  &usecase.CatalogIO{Products: products, Categories: catRepo},
		Tokens:     signer,
		UploadsDir: dir,
		Health:     func(ctx context.Context) error { return sqlDB.PingContext(ctx) },
	})
	return &harness{t: t, handler: h, uploads: dir, sqlDB: sqlDB}
}

type form struct {
	fields map[string]string
	file   string
	name   string
	data   []byte
}

func (f form) encode(t *testing.T) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range f.fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if f.file != "" {
		fw, err := mw.CreateFormFile(f.file, f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func (h *harness) do(method, path, tok string, body io.Reader, contentType string, hdr ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) json(method, path, tok string, v any) *httptest.ResponseRecorder {
	h.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(h.t, err)
		body = bytes.NewReader(b)
	}
	return h.do(method, path, tok, body, "application/json")
}

func (h *harness) form(method, path, tok string, f form) *httptest.ResponseRecorder {
	h.t.Helper()
	body, ct := f.encode(h.t)
	return h.do(method, path, tok, body, ct)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	var l []any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &l), rec.Body.String())
	return l
}

// signUp registers and logs in, returning the token and user id.
func (h *harness) signUp(email string) (string, string) {
	h.t.Helper()
	rec := h.form(http.MethodPost, "/api/UserModel/add-Usermodel", "", form{fields: map[string]string{
		"fullname": "Test User",
		"email":    email,
		"password": "secret123",
	}})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.json(http.MethodPost, "/api/UserModel/Usermodel", "", map[string]string{"email": email, "password": "secret123"})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	m := decode(h.t, rec)
	user := m["user"].(map[string]any)
	return m["token"].(string), user["id"].(string)
}

var png = []byte("\x89PNG\r\n\x1a\nfake")

func (h *harness) category(tok, name, status string) string {
	h.t.Helper()
	rec := h.form(http.MethodPost, "/api/CategoryModel/add-category", tok, form{
		fields: map[string]string{"categoryName": name, "categoryStatus": status},
		file:   "categoryImage", name: "cat.png", data: png,
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(h.t, rec)["category"].(map[string]any)["_id"].(string)
}

func (h *harness) product(tok, name, price, discount, categoryID string) string {
	h.t.Helper()
	rec := h.form(http.MethodPost, "/api/ProductModel/add", tok, form{fields: map[string]string{
		"name":     name,
		"price":    price,
		"stock":    "10",
		"discount": discount,
		"category": categoryID,
	}})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(h.t, rec)["product"].(map[string]any)["_id"].(string)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestAuthGuards(t *testing.T) {
	h := newHarness(t)
	userTok, userID := h.signUp("jane@shop.test")

	rec := h.do(http.MethodGet, "/api/CartModel/"+userID, "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(http.MethodGet, "/api/CartModel/"+userID, "garbage", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.form(http.MethodPost, "/api/CategoryModel/add-category", userTok, form{fields: map[string]string{"categoryName": "Skin"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, otherID := h.signUp("john@shop.test")
	rec = h.do(http.MethodGet, "/api/CartModel/"+otherID, userTok, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(http.MethodGet, "/api/CartModel/not-a-uuid", userTok, nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)
	h.signUp("jane@shop.test")

	rec := h.json(http.MethodPost, "/api/UserModel/Usermodel", "", map[string]string{"email": "jane@shop.test", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", decode(t, rec)["error"])

	rec = h.json(http.MethodPost, "/api/UserModel/Usermodel", "", map[string]string{"email": "jane@shop.test"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "password is required", decode(t, rec)["error"])

	rec = h.form(http.MethodPost, "/api/UserModel/add-Usermodel", "", form{fields: map[string]string{"email": "JANE@shop.test", "password": "secret123"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.signUp(adminEmail)
	skin := h.category(admin, "Skin", "active")
	hidden := h.category(admin, "Hidden", "Inactive")

	rec := h.form(http.MethodPost, "/api/CategoryModel/add-category", admin, form{
		fields: map[string]string{"categoryName": "Skin", "categoryStatus": "Active"},
		file:   "categoryImage", name: "dup.png", data: png,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	serum := h.product(admin, "Serum", "40", "25", skin)
	h.product(admin, "Toner", "12.50", "0", skin)

	rec = h.form(http.MethodPost, "/api/ProductModel/add", admin, form{fields: map[string]string{
		"name": "Ghost", "price": "1", "stock": "1", "category": hidden,
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid or inactive category", decode(t, rec)["error"])

	rec = h.form(http.MethodPost, "/api/ProductModel/add", admin, form{fields: map[string]string{"name": "NoPrice", "category": skin}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodGet, "/api/ProductModel/"+serum, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode(t, rec)
	assert.Equal(t, 40.0, p["price"])
	assert.Equal(t, 30.0, p["effectivePrice"])
	assert.Equal(t, "Skin", p["category"].(map[string]any)["categoryName"])
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rec = h.do(http.MethodGet, "/api/ProductModel/"+serum, "", nil, "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = h.do(http.MethodGet, "/api/ProductModel/not-an-id", "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodGet, "/api/ProductModel/catalog?sort=price-low&search=skin", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	assert.Equal(t, 2.0, page["total"])
	list := page["products"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "Toner", list[0].(map[string]any)["name"])

	rec = h.form(http.MethodPut, "/api/ProductModel/"+serum, admin, form{fields: map[string]string{"stock": "3"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)["product"].(map[string]any)
	assert.Equal(t, 3.0, updated["stock"])
	assert.Equal(t, "Serum", updated["name"])

	rec = h.do(http.MethodGet, "/api/ProductModel/", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 2)

	rec = h.do(http.MethodDelete, "/api/ProductModel/"+serum, admin, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(http.MethodGet, "/api/ProductModel/"+serum, "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryImageIsServed(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.signUp(adminEmail)
	id := h.category(admin, "Skin", "Active")

	rec := h.do(http.MethodGet, "/api/CategoryModel/categories/"+id, "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	file := decode(t, rec)["categoryImage"].(string)
	require.FileExists(t, filepath.Join(h.uploads, "category_images", file))

	rec = h.do(http.MethodGet, "/uploads/category_images/"+file, "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, png, rec.Body.Bytes())

	rec = h.do(http.MethodGet, "/uploads/secrets/"+file, "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodDelete, "/api/CategoryModel/delete-category/"+id, admin, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := os.Stat(filepath.Join(h.uploads, "category_images", file))
	assert.True(t, os.IsNotExist(err))
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.signUp(adminEmail)
	skin := h.category(admin, "Skin", "Active")
	serum := h.product(admin, "Serum", "20", "0", skin)
	tok, userID := h.signUp("jane@shop.test")

	rec := h.json(http.MethodPost, "/api/CartModel/add", tok, map[string]string{"userId": userID, "productId": serum})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lineID := decode(t, rec)["_id"].(string)

	rec = h.json(http.MethodPost, "/api/CartModel/add", tok, map[string]string{"productId": serum})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	line := decode(t, rec)
	assert.Equal(t, lineID, line["_id"])
	assert.Equal(t, 2.0, line["quantity"])

	rec = h.json(http.MethodPost, "/api/CartModel/add", tok, map[string]string{"productId": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.json(http.MethodPut, "/api/CartModel/update/"+lineID, tok, map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.json(http.MethodPut, "/api/CartModel/update/"+lineID, tok, map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/CartModel/"+userID+"/summary", tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode(t, rec)
	assert.Equal(t, 60.0, sum["subtotal"])
	assert.Equal(t, 4.8, sum["tax"])
	assert.Equal(t, 0.0, sum["shipping"])
	assert.Equal(t, 64.8, sum["total"])

	other, _ := h.signUp("john@shop.test")
	rec = h.do(http.MethodDelete, "/api/CartModel/remove/"+lineID, other, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(http.MethodPost, "/api/CartModel/move-to-wishlist/"+lineID, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, "/api/CartModel/"+userID, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeList(t, rec))

	rec = h.do(http.MethodGet, "/api/WishlistModel/"+userID, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	wl := decode(t, rec)
	assert.Equal(t, true, wl["success"])
	assert.Len(t, wl["data"], 1)

	rec = h.json(http.MethodPost, "/api/CartModel/add", tok, map[string]string{"productId": serum})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = h.do(http.MethodDelete, "/api/CartModel/clear/"+userID, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode(t, rec)["deletedCount"])
}

func TestWishlistFlow(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.signUp(adminEmail)
	skin := h.category(admin, "Skin", "Active")
	serum := h.product(admin, "Serum", "20", "0", skin)
	toner := h.product(admin, "Toner", "10", "0", skin)
	tok, userID := h.signUp("jane@shop.test")

	rec := h.json(http.MethodPost, "/api/WishlistModel/add", tok, map[string]string{"userId": userID, "productId": serum})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	serumEntry := decode(t, rec)["data"].(map[string]any)["_id"].(string)

	rec = h.json(http.MethodPost, "/api/WishlistModel/add", tok, map[string]string{"userId": userID, "productId": serum})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	dup := decode(t, rec)
	assert.Equal(t, false, dup["success"])
	assert.Equal(t, "Item already in wishlist", dup["message"])

	rec = h.json(http.MethodPost, "/api/WishlistModel/add", tok, map[string]string{"productId": toner})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.json(http.MethodPost, "/api/WishlistModel/move-selected/"+userID, tok, map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.json(http.MethodPost, "/api/WishlistModel/move-selected/"+userID, tok, map[string]any{"ids": []string{serumEntry}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, 1.0, moved["moved"])
	assert.Len(t, moved["cart"], 1)

	rec = h.do(http.MethodPost, "/api/WishlistModel/move-all/"+userID, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved = decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, 1.0, moved["moved"])
	assert.Len(t, moved["cart"], 2)

	rec = h.do(http.MethodGet, "/api/WishlistModel/"+userID, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["data"])

	rec = h.do(http.MethodDelete, "/api/WishlistModel/"+serumEntry, tok, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])

	rec = h.do(http.MethodDelete, "/api/WishlistModel/clear/"+userID, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec)["deletedCount"])
}

func TestProfileAndPassword(t *testing.T) {
	h := newHarness(t)
	tok, userID := h.signUp("jane@shop.test")

	rec := h.form(http.MethodPut, "/api/UserModel/"+userID, tok, form{fields: map[string]string{"mobile": "555-0100"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "555-0100", decode(t, rec)["user"].(map[string]any)["mobile"])

	rec = h.json(http.MethodPut, "/api/UserModel/change-password/"+userID, tok, map[string]string{"oldPassword": "bad", "newPassword": "another1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.json(http.MethodPut, "/api/UserModel/change-password/"+userID, tok, map[string]string{"oldPassword": "secret123", "newPassword": "another1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.json(http.MethodPost, "/api/UserModel/Usermodel", "", map[string]string{"email": "jane@shop.test", "password": "another1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(http.MethodGet, "/api/UserModel/user-details/"+userID, tok, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jane@shop.test", decode(t, rec)["user"].(map[string]any)["email"])
}

func TestGoogleLoginNotConfigured(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/api/UserModel/google/login", "", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCatalogPageBeyondRange(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.signUp(adminEmail)
	skin := h.category(admin, "Skin", "Active")
	h.product(admin, "Serum", "20", "0", skin)

	for _, page := range []string{"768614336404564652", "99999999999999999999999"} {
		rec := h.do(http.MethodGet, "/api/ProductModel/catalog?page="+page, "", nil, "")
		require.Equal(t, http.StatusOK, rec.Code, page)
		res := decode(t, rec)
		assert.Empty(t, res["products"], page)
		assert.Equal(t, 1.0, res["total"], page)
	}
}

func TestBodyIDsAcceptAnyCase(t *testing.T) {
	h := newHarness(t)
	admin, _ := h.signUp(adminEmail)
	skin := h.category(admin, "Skin", "Active")
	serum := h.product(admin, "Serum", "20", "0", skin)
	tok, userID := h.signUp("jane@shop.test")

	rec := h.json(http.MethodPost, "/api/CartModel/add", tok, map[string]string{
		"userId":    strings.ToUpper(userID),
		"productId": strings.ToUpper(serum),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, serum, decode(t, rec)["productRef"])

	rec = h.json(http.MethodPost, "/api/WishlistModel/add", tok, map[string]string{"productId": strings.ToUpper(serum)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode(t, rec)["data"].(map[string]any)["_id"].(string)

	rec = h.json(http.MethodPost, "/api/WishlistModel/move-selected/"+userID, tok, map[string]any{"ids": []string{strings.ToUpper(entry)}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, decode(t, rec)["data"].(map[string]any)["moved"])

	rec = h.json(http.MethodPost, "/api/WishlistModel/move-selected/"+userID, tok, map[string]any{"ids": []string{"not-an-id"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ids must be a valid id", decode(t, rec)["error"])
}

func TestServerErrorsLogRequestID(t *testing.T) {
	h := newHarness(t)
	tok, userID := h.signUp("jane@shop.test")

	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	require.NoError(t, h.sqlDB.Close())
	for _, path := range []string{"/api/WishlistModel/" + userID, "/api/CartModel/" + userID} {
		buf.Reset()
		rec := h.do(http.MethodGet, path, tok, nil, "")
		require.Equal(t, http.StatusInternalServerError, rec.Code, path)

		var failure map[string]any
		for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			if entry["message"] != "http" {
				failure = entry
			}
		}
		require.NotNil(t, failure, path)
		assert.NotEmpty(t, failure["request_id"], path)
		assert.Equal(t, path, failure["path"])
	}
}
