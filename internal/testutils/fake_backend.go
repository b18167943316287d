// Package testutils runs an in-memory imitation of the storefront backend
// for tests. It keeps Django's session and CSRF behaviour: mutating requests
// need a matching X-CSRFToken header, and the token rotates on login and logout.
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SessionCookie = "sessionid"
	CSRFCookie    = "csrftoken"
)

type RecordedRequest struct {
	Method      string
	Path        string
	Query       url.Values
	CSRF        string
	ContentType string
}

type fakeUser struct {
	user     models.User
	password string
}

type FakeBackend struct {
	Server *httptest.Server

	mu         sync.Mutex
	csrfToken  string
	csrfHits   int
	requests   []RecordedRequest
	users      map[string]*fakeUser
	sessions   map[string]int64
	categories []models.Category
	products   []models.Product
	carts      map[int64]*models.Cart
	orders     map[int64][]*models.Order
	nextID     int64

	failCSRF  bool
	paginate  bool
	failPaths map[string]bool
	delays    map[string]time.Duration
}

func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{
		csrfToken: uuid.NewString(),
		users:     map[string]*fakeUser{},
		sessions:  map[string]int64{},
		carts:     map[int64]*models.Cart{},
		orders:    map[int64][]*models.Order{},
		nextID:    100,
		failPaths: map[string]bool{},
		delays:    map[string]time.Duration{},
	}

	f.seed()

	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)

	return f
}

func (f *FakeBackend) URL() string {
	return f.Server.URL
}

func (f *FakeBackend) seed() {
	f.users["alice"] = &fakeUser{
		user:     models.User{ID: 1, Username: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Doe"},
		password: "wonderland",
	}
	f.users["admin"] = &fakeUser{
		user:     models.User{ID: 2, Username: "admin", Email: "admin@example.com", IsStaff: true, IsSuperuser: true},
		password: "s3cret",
	}

	f.categories = []models.Category{
		{ID: 1, Name: "Rings", Slug: "rings", ProductCount: 2},
		{ID: 2, Name: "Mugs", Slug: "mugs", ProductCount: 1},
	}

	active := true
	f.products = []models.Product{
		{ID: 10, Slug: "gold-ring", Name: "Gold Ring", Description: "<p>Shiny <b>gold</b></p>", Price: decimal.RequireFromString("200000.00"), DiscountPercentage: 10, Image: "/media/products/ring.jpg", Category: 1, CategoryName: "Rings", UzumLink: "https://uzum.uz/ring", IsFeatured: true, IsActive: &active},
		{ID: 11, Slug: "silver-ring", Name: "Silver Ring", Description: "Plain silver", Price: decimal.RequireFromString("90000.00"), Image: "/media/products/silver.jpg", Category: 1, CategoryName: "Rings", UzumLink: "https://uzum.uz/silver", IsActive: &active},
		{ID: 12, Slug: "cat-mug", Name: "Cat Mug", Description: "A mug with a cat", Price: decimal.RequireFromString("45000.00"), DiscountPercentage: 20, Image: "/media/products/mug.jpg", Category: 2, CategoryName: "Mugs", UzumLink: "https://uzum.uz/mug", IsFeatured: true, IsActive: &active},
	}
}

// SetFailCSRF makes the token endpoint answer 500 while fail is true.
func (f *FakeBackend) SetFailCSRF(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failCSRF = fail
}

// SetPaginate wraps list responses in {"count":..,"results":[..]}.
func (f *FakeBackend) SetPaginate(paginate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.paginate = paginate
}

// FailPath makes method+path answer 500.
func (f *FakeBackend) FailPath(method, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failPaths[method+" "+path] = true
}

// DelaySearch holds back product listings for the given search term.
func (f *FakeBackend) DelaySearch(search string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.delays[search] = d
}

// CSRFHits is how many times the token endpoint was called.
func (f *FakeBackend) CSRFHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.csrfHits
}

func (f *FakeBackend) CSRFToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.csrfToken
}

// Requests returns every request except token fetches.
func (f *FakeBackend) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]RecordedRequest(nil), f.requests...)
}

// RequestsTo filters Requests by path.
func (f *FakeBackend) RequestsTo(path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}

	return out
}

// SetOrderStatus moves an order server side, as staff would.
func (f *FakeBackend) SetOrderStatus(orderID int64, status models.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, orders := range f.orders {
		for _, o := range orders {
			if o.ID == orderID {
				o.Status = status
			}
		}
	}
}

func (f *FakeBackend) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products/auth/csrf/{$}", f.handleCSRF)
	mux.HandleFunc("GET /api/products/auth/check/{$}", f.handleCheck(false))
	mux.HandleFunc("GET /api/products/auth/admin/check/{$}", f.handleCheck(true))
	mux.HandleFunc("POST /api/products/auth/login/{$}", f.guard(f.handleLogin(false)))
	mux.HandleFunc("POST /api/products/auth/admin/login/{$}", f.guard(f.handleLogin(true)))
	mux.HandleFunc("POST /api/products/auth/register/{$}", f.guard(f.handleRegister))
	mux.HandleFunc("POST /api/products/auth/logout/{$}", f.guard(f.handleLogout))
	mux.HandleFunc("PUT /api/products/auth/profile/{$}", f.guard(f.authed(f.handleProfile)))

	mux.HandleFunc("GET /api/products/categories/{$}", f.record(f.handleCategories))
	mux.HandleFunc("GET /api/products/{$}", f.record(f.handleProducts))
	mux.HandleFunc("GET /api/products/featured/{$}", f.record(f.handleFeatured))
	mux.HandleFunc("GET /api/products/{slug}/{$}", f.record(f.handleProduct))

	mux.HandleFunc("GET /api/products/cart/{$}", f.record(f.authed(f.handleCart)))
	mux.HandleFunc("POST /api/products/cart/add/{$}", f.guard(f.authed(f.handleCartAdd)))
	mux.HandleFunc("PUT /api/products/cart/items/{id}/update/{$}", f.guard(f.authed(f.handleCartUpdate)))
	mux.HandleFunc("DELETE /api/products/cart/items/{id}/remove/{$}", f.guard(f.authed(f.handleCartRemove)))
	mux.HandleFunc("DELETE /api/products/cart/clear/{$}", f.guard(f.authed(f.handleCartClear)))

	mux.HandleFunc("GET /api/products/orders/{$}", f.record(f.authed(f.handleOrders)))
	mux.HandleFunc("POST /api/products/orders/create/{$}", f.guard(f.authed(f.handleOrderCreate)))
	mux.HandleFunc("GET /api/products/orders/{id}/{$}", f.record(f.authed(f.handleOrder)))
	mux.HandleFunc("POST /api/products/orders/{id}/cancel/{$}", f.guard(f.authed(f.handleOrderCancel)))

	mux.HandleFunc("GET /api/products/admin/products/{$}", f.record(f.staff(f.handleAdminList)))
	mux.HandleFunc("POST /api/products/admin/products/create/{$}", f.guard(f.staff(f.handleAdminCreate)))
	mux.HandleFunc("PATCH /api/products/admin/products/{id}/update/{$}", f.guard(f.staff(f.handleAdminUpdate)))
	mux.HandleFunc("DELETE /api/products/admin/products/{id}/delete/{$}", f.guard(f.staff(f.handleAdminDelete)))

	mux.HandleFunc("POST /api/contact/{$}", f.guard(f.handleContact))

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *FakeBackend) recordRequest(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, RecordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		CSRF:        r.Header.Get("X-CSRFToken"),
		ContentType: r.Header.Get("Content-Type"),
	})
}

func (f *FakeBackend) record(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.recordRequest(r)

		f.mu.Lock()
		fail := f.failPaths[r.Method+" "+r.URL.Path]
		f.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Server error"})
			return
		}

		next(w, r)
	}
}

// guard records the request and enforces the CSRF check.
func (f *FakeBackend) guard(next http.HandlerFunc) http.HandlerFunc {
	return f.record(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		token := f.csrfToken
		f.mu.Unlock()

		if r.Header.Get("X-CSRFToken") != token {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "CSRF Failed: CSRF token missing or incorrect."})
			return
		}

		next(w, r)
	})
}

func (f *FakeBackend) currentUser(r *http.Request) *models.User {
	ck, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.sessions[ck.Value]
	if !ok {
		return nil
	}

	for _, u := range f.users {
		if u.user.ID == id {
			user := u.user
			return &user
		}
	}

	return nil
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

func (f *FakeBackend) authed(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := f.currentUser(r)
		if user == nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}

		next(w, r, user)
	}
}

func (f *FakeBackend) staff(next authedHandler) http.HandlerFunc {
	return f.authed(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		if !user.IsStaff {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "You do not have permission to perform this action."})
			return
		}

		next(w, r, user)
	})
}

func (f *FakeBackend) rotateCSRF(w http.ResponseWriter) {
	f.mu.Lock()
	f.csrfToken = uuid.NewString()
	token := f.csrfToken
	f.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: CSRFCookie, Value: token, Path: "/"})
}

func (f *FakeBackend) handleCSRF(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	f.csrfHits++
	fail := f.failCSRF
	token := f.csrfToken
	f.mu.Unlock()

	if fail {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Server error"})
		return
	}

	time.Sleep(20 * time.Millisecond)

	http.SetCookie(w, &http.Cookie{Name: CSRFCookie, Value: token, Path: "/"})
	writeJSON(w, http.StatusOK, models.CSRFResponse{CSRFToken: token})
}

func (f *FakeBackend) handleCheck(staffOnly bool) http.HandlerFunc {
	return f.record(func(w http.ResponseWriter, r *http.Request) {
		user := f.currentUser(r)
		if user == nil || (staffOnly && !user.IsStaff) {
			writeJSON(w, http.StatusOK, models.SessionCheckResponse{Authenticated: false})
			return
		}

		writeJSON(w, http.StatusOK, models.SessionCheckResponse{Authenticated: true, User: user})
	})
}

func (f *FakeBackend) startSession(w http.ResponseWriter, userID int64) {
	sid := uuid.NewString()

	f.mu.Lock()
	f.sessions[sid] = userID
	f.mu.Unlock()

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sid, Path: "/", HttpOnly: true})
	f.rotateCSRF(w)
}

func (f *FakeBackend) handleLogin(staffOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password are required"})
			return
		}

		f.mu.Lock()
		u, ok := f.users[req.Username]
		f.mu.Unlock()

		if !ok || u.password != req.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
			return
		}

		if staffOnly && !u.user.IsStaff {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "You do not have admin rights"})
			return
		}

		f.startSession(w, u.user.ID)
		writeJSON(w, http.StatusOK, models.AuthResponse{User: &u.user, Message: "Logged in"})
	}
}

func (f *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed request"})
		return
	}

	fields := map[string][]string{}

	f.mu.Lock()
	_, taken := f.users[req.Username]
	f.mu.Unlock()

	if taken {
		fields["username"] = []string{"A user with that username already exists."}
	}

	if req.Password2 != "" && req.Password != req.Password2 {
		fields["password"] = []string{"Passwords do not match."}
	}

	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	f.mu.Lock()
	f.nextID++
	u := &fakeUser{
		user:     models.User{ID: f.nextID, Username: req.Username, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName},
		password: req.Password,
	}
	f.users[req.Username] = u
	f.mu.Unlock()

	f.startSession(w, u.user.ID)
	writeJSON(w, http.StatusCreated, models.AuthResponse{User: &u.user, Message: "Registered"})
}

func (f *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if ck, err := r.Cookie(SessionCookie); err == nil {
		f.mu.Lock()
		delete(f.sessions, ck.Value)
		f.mu.Unlock()
	}

	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	f.rotateCSRF(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (f *FakeBackend) handleProfile(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed request"})
		return
	}

	if req.Email != "" && !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"email": {"Enter a valid email address."}})
		return
	}

	f.mu.Lock()
	u := f.users[user.Username]
	if req.Email != "" {
		u.user.Email = req.Email
	}

	if req.FirstName != "" {
		u.user.FirstName = req.FirstName
	}

	if req.LastName != "" {
		u.user.LastName = req.LastName
	}

	updated := u.user
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, models.AuthResponse{User: &updated, Message: "Profile updated"})
}

func (f *FakeBackend) writeList(w http.ResponseWriter, items any, count int) {
	f.mu.Lock()
	paginate := f.paginate
	f.mu.Unlock()

	if paginate {
		writeJSON(w, http.StatusOK, map[string]any{"count": count, "next": nil, "previous": nil, "results": items})
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (f *FakeBackend) handleCategories(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	cats := append([]models.Category(nil), f.categories...)
	f.mu.Unlock()

	f.writeList(w, cats, len(cats))
}

func (f *FakeBackend) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f.mu.Lock()
	delay := f.delays[q.Get("search")]
	categories := append([]models.Category(nil), f.categories...)
	all := append([]models.Product(nil), f.products...)
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	catID := int64(-1)
	if slug := q.Get("category"); slug != "" {
		for _, c := range categories {
			if c.Slug == slug {
				catID = c.ID
			}
		}
	}

	out := make([]models.Product, 0, len(all))
	for _, p := range all {
		if p.IsActive != nil && !*p.IsActive {
			continue
		}

		if q.Get("category") != "" && p.Category != catID {
			continue
		}

		if s := strings.ToLower(q.Get("search")); s != "" &&
			!strings.Contains(strings.ToLower(p.Name), s) && !strings.Contains(strings.ToLower(p.Description), s) {
			continue
		}

		if v := q.Get("min_price"); v != "" && p.Price.LessThan(decimal.RequireFromString(v)) {
			continue
		}

		if v := q.Get("max_price"); v != "" && p.Price.GreaterThan(decimal.RequireFromString(v)) {
			continue
		}

		out = append(out, p)
	}

	switch q.Get("ordering") {
	case "price":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case "-price":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case "name":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	case "-name":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	}

	f.writeList(w, out, len(out))
}

func (f *FakeBackend) handleFeatured(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Product{}
	for _, p := range f.products {
		if p.IsFeatured {
			out = append(out, p)
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (f *FakeBackend) handleProduct(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.products {
		if p.Slug != slug {
			continue
		}

		detail := p
		for _, other := range f.products {
			if other.Category == p.Category && other.ID != p.ID {
				detail.SimilarProducts = append(detail.SimilarProducts, other)
			}
		}

		writeJSON(w, http.StatusOK, detail)

		return
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (f *FakeBackend) cartFor(userID int64) *models.Cart {
	cart, ok := f.carts[userID]
	if !ok {
		f.nextID++
		cart = &models.Cart{ID: f.nextID, Items: []models.CartItem{}}
		f.carts[userID] = cart
	}

	return cart
}

func recompute(cart *models.Cart) {
	cart.TotalItems = 0
	cart.TotalPrice = decimal.Zero

	for i := range cart.Items {
		item := &cart.Items[i]
		item.Subtotal = item.DiscountedPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		cart.TotalItems += item.Quantity
		cart.TotalPrice = cart.TotalPrice.Add(item.Subtotal)
	}
}

func (f *FakeBackend) handleCart(w http.ResponseWriter, _ *http.Request, user *models.User) {
	f.mu.Lock()
	cart := *f.cartFor(user.ID)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, cart)
}

func (f *FakeBackend) handleCartAdd(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"quantity": {"Ensure this value is greater than or equal to 1."}})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var product *models.Product
	for i := range f.products {
		if f.products[i].ID == req.ProductID {
			product = &f.products[i]
		}
	}

	if product == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	cart := f.cartFor(user.ID)

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == product.ID {
			cart.Items[i].Quantity = min(cart.Items[i].Quantity+req.Quantity, models.MaxCartQuantity)
			found = true
		}
	}

	if !found {
		f.nextID++
		cart.Items = append(cart.Items, models.CartItem{
			ID:              f.nextID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductImage:    product.Image,
			ProductPrice:    product.Price,
			ProductDiscount: product.DiscountPercentage,
			DiscountedPrice: product.DiscountedPrice(),
			Quantity:        min(req.Quantity, models.MaxCartQuantity),
		})
	}

	recompute(cart)
	writeJSON(w, http.StatusCreated, models.CartResponse{Message: "Added to cart", Cart: cart})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func (f *FakeBackend) handleCartUpdate(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Quantity is required"})
		return
	}

	if *req.Quantity < 1 || *req.Quantity > 99 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Quantity must be between 1 and 99"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cart := f.cartFor(user.ID)
	id := pathID(r)

	for i := range cart.Items {
		if cart.Items[i].ID == id {
			cart.Items[i].Quantity = *req.Quantity
			recompute(cart)
			writeJSON(w, http.StatusOK, models.CartResponse{Message: "Cart updated", Cart: cart})

			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (f *FakeBackend) handleCartRemove(w http.ResponseWriter, r *http.Request, user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart := f.cartFor(user.ID)
	id := pathID(r)

	for i := range cart.Items {
		if cart.Items[i].ID == id {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			recompute(cart)
			writeJSON(w, http.StatusOK, models.CartResponse{Message: "Removed from cart", Cart: cart})

			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (f *FakeBackend) handleCartClear(w http.ResponseWriter, _ *http.Request, user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cart := f.cartFor(user.ID)
	cart.Items = []models.CartItem{}
	recompute(cart)

	writeJSON(w, http.StatusOK, models.CartResponse{Message: "Cart cleared", Cart: cart})
}

func (f *FakeBackend) handleOrders(w http.ResponseWriter, _ *http.Request, user *models.User) {
	f.mu.Lock()
	orders := make([]models.Order, 0, len(f.orders[user.ID]))
	for i := len(f.orders[user.ID]) - 1; i >= 0; i-- {
		orders = append(orders, *f.orders[user.ID][i])
	}
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, orders)
}

func (f *FakeBackend) findOrder(userID, orderID int64) *models.Order {
	for _, o := range f.orders[userID] {
		if o.ID == orderID {
			return o
		}
	}

	return nil
}

func (f *FakeBackend) handleOrder(w http.ResponseWriter, r *http.Request, user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if o := f.findOrder(user.ID, pathID(r)); o != nil {
		writeJSON(w, http.StatusOK, o)
		return
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (f *FakeBackend) handleOrderCreate(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed request"})
		return
	}

	fields := map[string][]string{}
	for name, v := range map[string]string{"full_name": req.FullName, "phone": req.Phone, "email": req.Email, "address": req.Address, "city": req.City} {
		if strings.TrimSpace(v) == "" {
			fields[name] = []string{"This field is required."}
		}
	}

	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cart := f.cartFor(user.ID)
	if len(cart.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Your cart is empty"})
		return
	}

	f.nextID++
	order := &models.Order{
		ID:            f.nextID,
		Status:        models.OrderStatusPending,
		StatusDisplay: "Pending",
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Notes:         req.Notes,
		TotalPrice:    cart.TotalPrice,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}

	for _, item := range cart.Items {
		f.nextID++
		order.Items = append(order.Items, models.OrderItem{
			ID:          f.nextID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.DiscountedPrice,
			Subtotal:    item.Subtotal,
		})
	}

	f.orders[user.ID] = append(f.orders[user.ID], order)
	cart.Items = []models.CartItem{}
	recompute(cart)

	writeJSON(w, http.StatusCreated, models.OrderResponse{Message: "Order created", Order: order})
}

func (f *FakeBackend) handleOrderCancel(w http.ResponseWriter, r *http.Request, user *models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o := f.findOrder(user.ID, pathID(r))
	if o == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	if o.Status != models.OrderStatusPending {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Only pending orders can be cancelled"})
		return
	}

	o.Status = models.OrderStatusCancelled
	o.StatusDisplay = "Cancelled"

	writeJSON(w, http.StatusOK, models.OrderResponse{Message: "Order cancelled", Order: o})
}

func (f *FakeBackend) handleAdminList(w http.ResponseWriter, _ *http.Request, _ *models.User) {
	f.mu.Lock()
	all := append([]models.Product(nil), f.products...)
	f.mu.Unlock()

	f.writeList(w, all, len(all))
}

func (f *FakeBackend) productFromForm(r *http.Request, p *models.Product) map[string][]string {
	fields := map[string][]string{}

	if v := r.FormValue("name"); v != "" {
		p.Name = v
		p.Slug = strings.ReplaceAll(strings.ToLower(v), " ", "-")
	}

	if v := r.FormValue("description"); v != "" {
		p.Description = v
	}

	if v := r.FormValue("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil || !price.IsPositive() {
			fields["price"] = []string{"Price must be positive"}
		} else {
			p.Price = price
		}
	}

	if v := r.FormValue("discount_percentage"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 || d > 100 {
			fields["discount_percentage"] = []string{"Discount must be between 0 and 100"}
		} else {
			p.DiscountPercentage = d
		}
	}

	if v := r.FormValue("category"); v != "" {
		p.Category, _ = strconv.ParseInt(v, 10, 64)
	}

	if v := r.FormValue("uzum_link"); v != "" {
		p.UzumLink = v
	}

	if v := r.FormValue("is_featured"); v != "" {
		p.IsFeatured = v == "true"
	}

	if v := r.FormValue("is_active"); v != "" {
		active := v == "true"
		p.IsActive = &active
	}

	if r.MultipartForm != nil {
		for field, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}

			name := "/media/products/" + headers[0].Filename
			switch field {
			case "image":
				p.Image = name
			case "image_2":
				p.Image2 = &name
			case "image_3":
				p.Image3 = &name
			}
		}
	}

	return fields
}

func (f *FakeBackend) handleAdminCreate(w http.ResponseWriter, r *http.Request, _ *models.User) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Expected multipart form data"})
		return
	}

	var p models.Product
	if fields := f.productFromForm(r, &p); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	if p.Image == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"image": {"No file was submitted."}})
		return
	}

	f.mu.Lock()
	f.nextID++
	p.ID = f.nextID
	f.products = append(f.products, p)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, p)
}

func (f *FakeBackend) handleAdminUpdate(w http.ResponseWriter, r *http.Request, _ *models.User) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Expected multipart form data"})
		return
	}

	id := pathID(r)

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.products {
		if f.products[i].ID != id {
			continue
		}

		updated := f.products[i]
		if fields := f.productFromForm(r, &updated); len(fields) > 0 {
			writeJSON(w, http.StatusBadRequest, fields)
			return
		}

		f.products[i] = updated
		writeJSON(w, http.StatusOK, updated)

		return
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (f *FakeBackend) handleAdminDelete(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id := pathID(r)

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.products {
		if f.products[i].ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			w.WriteHeader(http.StatusNoContent)

			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func (f *FakeBackend) handleContact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed request"})
		return
	}

	if req.Phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"phone": {"This field is required."}})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Message sent!",
		"data":    map[string]any{"id": 1, "name": req.Name, "phone": req.Phone},
	})
}

// MustJSON marshals v or panics; handy for canned responses.
func MustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal %T: %v", v, err))
	}

	return string(data)
}
