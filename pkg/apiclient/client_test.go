package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/localstore"
)

type fakeAPI struct {
	productGets atomic.Int32
	userGets    atomic.Int32
	srv         *httptest.Server
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "Secret1!" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid Credentials", "error": "Bad Request"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "session-1", Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Login Successfully!",
			"user":    map[string]string{"_id": "u1", "name": "alice", "email": in["email"], "role": "admin"},
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, map[string]string{"message": "Logout Successfully!"})
	})
	mux.HandleFunc("GET /api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("token")
		if err != nil || c.Value == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized, no token", "error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]string{"_id": "u1", "name": "alice", "role": "admin"}})
	})
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		f.productGets.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"message":     "Successfully Fetched All Products",
			"allProducts": []map[string]any{{"_id": "p1", "title": "Shirt", "price": 10}},
		})
	})
	mux.HandleFunc("GET /api/products/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"total": 1, "page": 1, "size": 10,
			"products": []map[string]any{{"_id": "p1", "title": r.URL.Query().Get("q")}},
		})
	})
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found", "error": "Not Found"})
	})
	mux.HandleFunc("POST /api/products/addproduct", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		in["_id"] = "p2"
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Created New Product Successfully!", "newProduct": in})
	})
	mux.HandleFunc("PATCH /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		in["_id"] = r.PathValue("id")
		writeJSON(w, http.StatusOK, map[string]any{"message": "Product Updated", "product": in})
	})
	mux.HandleFunc("GET /api/users", func(w http.ResponseWriter, r *http.Request) {
		f.userGets.Add(1)
		writeJSON(w, http.StatusOK, []map[string]string{{"_id": "u1", "role": "admin"}, {"_id": "u2", "role": "customer"}})
	})
	mux.HandleFunc("DELETE /api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "u1" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Cannot delete admin user", "error": "Bad Request"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "User removed"})
	})
	mux.HandleFunc("GET /api/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func TestClient_QueryIsCachedUntilMutation(t *testing.T) {
	f := newFakeAPI(t)
	c, err := New(f.srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	for range 3 {
		items, err := c.Products(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Shirt", items[0].Title)
	}
	assert.EqualValues(t, 1, f.productGets.Load())

	p, err := c.CreateProduct(ctx, ProductInput{Title: "Hat hat", Price: 3})
	require.NoError(t, err)
	assert.Equal(t, "p2", p.ID)

	_, err = c.Products(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.productGets.Load())
}

func TestClient_MutationOnlyInvalidatesItsTag(t *testing.T) {
	f := newFakeAPI(t)
	c, err := New(f.srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Products(ctx)
	require.NoError(t, err)
	_, err = c.Users(ctx)
	require.NoError(t, err)

	require.NoError(t, c.DeleteUser(ctx, "u2"))

	_, err = c.Products(ctx)
	require.NoError(t, err)
	_, err = c.Users(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.productGets.Load())
	assert.EqualValues(t, 2, f.userGets.Load())
}

func TestClient_FailedMutationKeepsCache(t *testing.T) {
	f := newFakeAPI(t)
	c, err := New(f.srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Users(ctx)
	require.NoError(t, err)

	err = c.DeleteUser(ctx, "u1")
	require.Error(t, err)
	assert.Equal(t, "Cannot delete admin user", Display(err))
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))

	_, err = c.Users(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.userGets.Load())
}

func TestClient_LoginSendsCookieAndInvalidatesAll(t *testing.T) {
	f := newFakeAPI(t)
	c, err := New(f.srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Profile(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))

	_, err = c.Products(ctx)
	require.NoError(t, err)

	u, err := c.Login(ctx, "alice@x.io", "Secret1!")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	me, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Name)

	_, err = c.Products(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.productGets.Load())

	require.NoError(t, c.Logout(ctx))
	_, err = c.Profile(ctx)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestClient_LoginFailure(t *testing.T) {
	f := newFakeAPI(t)
	c, err := New(f.srv.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "alice@x.io", "wrong")
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "Invalid Credentials", ae.Display())
	assert.Equal(t, "Bad Request", ae.Detail)
}

func TestClient_SessionSurvivesRestart(t *testing.T) {
	f := newFakeAPI(t)
	mem := localstore.NewMemory()
	ctx := context.Background()

	c, err := New(f.srv.URL, WithCookieStorage(mem))
	require.NoError(t, err)
	_, err = c.Login(ctx, "alice@x.io", "Secret1!")
	require.NoError(t, err)

	again, err := New(f.srv.URL, WithCookieStorage(mem))
	require.NoError(t, err)
	_, err = again.Profile(ctx)
	require.NoError(t, err)

	require.NoError(t, again.Logout(ctx))
	_, ok, err := mem.GetItem(cookieStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_ProductNotFound(t *testing.T) {
	f := newFakeAPI(t)
	c, err := New(f.srv.URL)
	require.NoError(t, err)

	_, err = c.Product(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
	assert.Equal(t, "Product not found", Display(err))
}

func TestClient_SearchAndPatch(t *testing.T) {
	f := newFakeAPI(t)
	c, err := New(f.srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := c.SearchProducts(ctx, "red shirt", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Products, 1)
	assert.Equal(t, "red shirt", res.Products[0].Title)

	price := 0.0
	p, err := c.UpdateProduct(ctx, "p1", ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Zero(t, p.Price)
}

func TestClient_NonEnvelopeError(t *testing.T) {
	f := newFakeAPI(t)
	c, err := New(f.srv.URL)
	require.NoError(t, err)

	_, err = c.do(context.Background(), http.MethodGet, "/api/broken", nil)
	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadGateway, ae.Status)
	assert.Equal(t, "Something went wrong", ae.Display())
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8080")
	assert.Error(t, err)
	_, err = New("/api")
	assert.Error(t, err)
}

func TestErrorDisplay(t *testing.T) {
	assert.Equal(t, "msg", (&Error{Message: "msg", Detail: "det"}).Display())
	assert.Equal(t, "det", (&Error{Detail: "det"}).Display())
	assert.Equal(t, "Something went wrong", (&Error{}).Display())
	assert.Equal(t, "", Display(nil))
	assert.Equal(t, "boom", Display(errors.New("boom")))
}
