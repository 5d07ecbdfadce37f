// Package backendtest runs an in-memory restaurant backend for tests.
package backendtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/Kariqs/tableside/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	AdminEmail    = "manager@tableside.test"
	AdminPassword = "s3cret"
	adminCookie   = "admin-session"
)

// Faults switches failure modes on. FailLineAt is 1-based; zero disables it.
type Faults struct {
	FailCreateCart      bool
	MalformedCreateCart bool
	FailLineAt          int
	FailPaymentIntent   bool
	EmptySecret         bool
	OpaqueSecret        bool
	FailOrder           bool
	FailCatalog         bool
	MalformedDishes     bool
	RejectTokens        []string
}

type CartItem struct {
	DishID   models.ID
	Quantity int
}

type PaymentIntent struct {
	IntentID string
	CartID   string
	Currency string
}

type Server struct {
	*httptest.Server

	mu         sync.Mutex
	faults     Faults
	dishes     []models.Dish
	categories []models.Category
	tables     []models.Table
	orders     []models.Order
	carts      map[string][]CartItem
	cartTables map[string]string
	intents    []PaymentIntent
	placed     []models.OrderRequest
	calls      []string
	nextID     int
}

func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		carts:      make(map[string][]CartItem),
		cartTables: make(map[string]string),
		nextID:     100,
	}
	s.seed()

	r := gin.New()
	r.Use(s.record)
	s.routes(r)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) seed() {
	available := true
	s.categories = []models.Category{
		{CategoryID: "1", Name: "Pizza", Description: "Stone baked"},
		{CategoryID: "2", Name: "Drinks"},
	}
	s.dishes = []models.Dish{
		{
			DishID: "11", Name: "Margherita", CategoryID: "1", IsAvailable: &available,
			Prices: []models.DishPrice{
				{Size: "small", Price: decimal.NewFromInt(80)},
				{Size: "medium", Price: decimal.NewFromInt(100)},
				{Size: "large", Price: decimal.NewFromInt(130)},
			},
		},
		{
			DishID: "12", Name: "Diavola", CategoryID: "1",
			Prices: []models.DishPrice{{Size: "medium", Price: decimal.NewFromInt(120)}},
		},
		{
			DishID: "21", Name: "Lemonade", CategoryID: "2",
			Prices: []models.DishPrice{{Size: "regular", Price: decimal.RequireFromString("2.50")}},
		},
	}
	s.tables = []models.Table{{TableID: "1", Name: "T1", QRCode: "data:image/png;base64,AAAA"}}
	s.orders = []models.Order{
		{OrderID: "1", OrderTime: "2026-10-16T12:00:00Z", TableNo: "1", Status: models.OrderStatusPending, TotalPrice: decimal.NewFromInt(200),
			Items: []models.OrderItem{{DishName: "Margherita", Quantity: 2}}},
	}
}

func (s *Server) SetFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

// Calls returns "METHOD path" for every request seen so far.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount counts requests whose "METHOD path" starts with prefix.
func (s *Server) CallCount(prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) CartItems(handle string) []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CartItem(nil), s.carts[handle]...)
}

func (s *Server) CartHandles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.carts))
	for h := range s.carts {
		out = append(out, h)
	}
	return out
}

func (s *Server) PaymentIntents() []PaymentIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PaymentIntent(nil), s.intents...)
}

func (s *Server) PlacedOrders() []models.OrderRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OrderRequest(nil), s.placed...)
}

func (s *Server) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order(nil), s.orders...)
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.calls = append(s.calls, c.Request.Method+" "+c.Request.URL.Path)
	s.mu.Unlock()
	c.Next()
}

func (s *Server) id() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func (s *Server) requireAdmin(c *gin.Context) {
	ck, err := c.Cookie("token")
	if err != nil || ck != adminCookie {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.Next()
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/category", s.listCategories)
	r.GET("/category/:id", s.getCategory)
	r.GET("/dish", s.listDishes)
	r.GET("/dish/:id", s.getDish)
	r.GET("/dish/category/:id", s.dishesByCategory)
	r.GET("/table", s.listTables)

	r.POST("/carts/table/:token", s.createCart)
	r.GET("/carts/table/:token", s.validateToken)
	r.POST("/cart-items", s.addCartItem)
	r.POST("/payments/create-payment-intent", s.createIntent)
	r.POST("/order", s.placeOrder)

	r.POST("/user/login", s.login)
	r.POST("/user/logout", s.logout)
	r.GET("/auth/me", s.me)

	admin := r.Group("/", s.requireAdmin)
	{
		admin.POST("/dish", s.createDish)
		admin.PATCH("/dish/:id", s.updateDish)
		admin.DELETE("/dish/:id", s.deleteDish)
		admin.POST("/dish/toggle-availability/:id", s.toggleDish)
		admin.POST("/category", s.createCategory)
		admin.PATCH("/category/:id", s.updateCategory)
		admin.DELETE("/category/:id", s.deleteCategory)
		admin.POST("/table", s.createTable)
		admin.PATCH("/table/:id", s.updateTable)
		admin.DELETE("/table/:id", s.deleteTable)
		admin.GET("/order", s.listOrders)
		admin.GET("/order/:id", s.getOrder)
		admin.PATCH("/order/state/:id", s.updateOrderState)
		admin.GET("/order/dailycompletedorderscount/count", s.completedCount)
		admin.GET("/order/pendingcount/count", s.pendingCount)
		admin.GET("/order/dailyincome/income", s.dailyIncome)
		admin.GET("/order/weeklyincome/byDays", s.weeklyIncome)
	}
}

func (s *Server) catalogFault(c *gin.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.faults.FailCatalog {
		fail(c, http.StatusServiceUnavailable, "catalog unavailable")
		return true
	}
	return false
}

func (s *Server) listCategories(c *gin.Context) {
	if s.catalogFault(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.categories)
}

func (s *Server) getCategory(c *gin.Context) {
	if s.catalogFault(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cat := range s.categories {
		if cat.CategoryID.String() == c.Param("id") {
			c.JSON(http.StatusOK, cat)
			return
		}
	}
	fail(c, http.StatusNotFound, "Category not found")
}

func (s *Server) listDishes(c *gin.Context) {
	if s.catalogFault(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.faults.MalformedDishes {
		c.JSON(http.StatusOK, []gin.H{{"dish_id": 1, "dish_name": "No prices"}})
		return
	}
	c.JSON(http.StatusOK, s.dishes)
}

func (s *Server) getDish(c *gin.Context) {
	if s.catalogFault(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dishes {
		if d.DishID.String() == c.Param("id") {
			c.JSON(http.StatusOK, d)
			return
		}
	}
	fail(c, http.StatusNotFound, "Dish not found")
}

func (s *Server) dishesByCategory(c *gin.Context) {
	if s.catalogFault(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Dish{}
	for _, d := range s.dishes {
		if d.CategoryID.String() == c.Param("id") {
			out = append(out, d)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listTables(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.tables)
}

func (s *Server) rejected(token string) bool {
	for _, t := range s.faults.RejectTokens {
		if t == token {
			return true
		}
	}
	return false
}

func (s *Server) createCart(c *gin.Context) {
	var body struct {
		CartStatus string `json:"cart_status"`
		IsActive   bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.CartStatus != "active" || !body.IsActive {
		fail(c, http.StatusBadRequest, "invalid cart payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	token := c.Param("token")
	switch {
	case s.faults.FailCreateCart:
		fail(c, http.StatusInternalServerError, "could not create cart")
		return
	case s.rejected(token):
		fail(c, http.StatusNotFound, "Table not found")
		return
	case s.faults.MalformedCreateCart:
		c.JSON(http.StatusCreated, gin.H{"cart": "ok"})
		return
	}
	handle := "enc-cart-" + s.id()
	s.carts[handle] = []CartItem{}
	s.cartTables[handle] = token
	c.JSON(http.StatusCreated, gin.H{"encryptedCartId": handle})
}

func (s *Server) validateToken(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejected(c.Param("token")) {
		fail(c, http.StatusNotFound, "Table not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (s *Server) addCartItem(c *gin.Context) {
	var body struct {
		CartID    string    `json:"cart_id"`
		Quantity  int       `json:"quantity"`
		DishID    models.ID `json:"dish_id"`
		IsDeleted bool      `json:"is_deleted"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid cart item")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.carts[body.CartID]
	if !ok {
		fail(c, http.StatusNotFound, "Cart not found")
		return
	}
	if s.faults.FailLineAt > 0 && len(items)+1 == s.faults.FailLineAt {
		fail(c, http.StatusInternalServerError, "could not add item")
		return
	}
	s.carts[body.CartID] = append(items, CartItem{DishID: body.DishID, Quantity: body.Quantity})
	c.JSON(http.StatusCreated, gin.H{"message": "Item added"})
}

func (s *Server) createIntent(c *gin.Context) {
	var body struct {
		CartID   string `json:"cartId"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid payment payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.faults.FailPaymentIntent {
		fail(c, http.StatusBadGateway, "payment provider unavailable")
		return
	}
	if _, ok := s.carts[body.CartID]; !ok {
		fail(c, http.StatusNotFound, "Cart not found")
		return
	}
	intentID := "pi_" + s.id()
	s.intents = append(s.intents, PaymentIntent{IntentID: intentID, CartID: body.CartID, Currency: body.Currency})
	switch {
	case s.faults.EmptySecret:
		c.JSON(http.StatusOK, gin.H{"clientSecret": ""})
	case s.faults.OpaqueSecret:
		c.JSON(http.StatusOK, gin.H{"clientSecret": "opaque-" + intentID})
	default:
		c.JSON(http.StatusOK, gin.H{"clientSecret": intentID + "_secret_test"})
	}
}

func (s *Server) placeOrder(c *gin.Context) {
	var body models.OrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid order payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.faults.FailOrder {
		fail(c, http.StatusInternalServerError, "order could not be saved")
		return
	}
	items, ok := s.carts[body.CartID]
	if !ok {
		fail(c, http.StatusNotFound, "Cart not found")
		return
	}
	s.placed = append(s.placed, body)

	id := s.id()
	order := models.Order{OrderID: models.ID(id), OrderTime: "2026-10-16T12:30:00Z", TableNo: models.ID(s.cartTables[body.CartID]),
		Status: models.OrderStatusPending, TotalPrice: body.TotalPrice}
	for _, it := range items {
		order.Items = append(order.Items, models.OrderItem{DishName: s.dishName(it.DishID), Quantity: it.Quantity})
	}
	s.orders = append(s.orders, order)
	n, _ := strconv.Atoi(id)
	c.JSON(http.StatusCreated, gin.H{"order_id": n, "order_status": order.Status})
}

func (s *Server) dishName(id models.ID) string {
	for _, d := range s.dishes {
		if d.DishID == id {
			return d.Name
		}
	}
	return ""
}

func (s *Server) login(c *gin.Context) {
	var body models.LoginData
	if err := c.ShouldBindJSON(&body); err != nil || body.Email != AdminEmail || body.Password != AdminPassword {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	c.SetCookie("token", adminCookie, 3600, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) me(c *gin.Context) {
	ck, err := c.Cookie("token")
	if err != nil || ck != adminCookie {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": gin.H{
		"user_id": 1, "user_name": "Manager", "user_email": AdminEmail, "user_role": models.RoleAdmin,
	}})
}

func (s *Server) createDish(c *gin.Context) {
	var in models.DishInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := models.Dish{DishID: models.ID(s.id()), Name: in.Name, Description: in.Description, ImageURL: in.ImageURL, CategoryID: in.CategoryID, Prices: in.Prices}
	s.dishes = append(s.dishes, d)
	c.JSON(http.StatusCreated, d)
}

func (s *Server) updateDish(c *gin.Context) {
	var in models.DishInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.dishes {
		if d.DishID.String() == c.Param("id") {
			s.dishes[i].Name, s.dishes[i].Description, s.dishes[i].ImageURL = in.Name, in.Description, in.ImageURL
			s.dishes[i].CategoryID, s.dishes[i].Prices = in.CategoryID, in.Prices
			c.JSON(http.StatusOK, s.dishes[i])
			return
		}
	}
	fail(c, http.StatusNotFound, "Dish not found")
}

func (s *Server) deleteDish(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.dishes {
		if d.DishID.String() == c.Param("id") {
			s.dishes = append(s.dishes[:i], s.dishes[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Dish deleted"})
			return
		}
	}
	fail(c, http.StatusNotFound, "Dish not found")
}

func (s *Server) toggleDish(c *gin.Context) {
	var body struct {
		IsAvailable *bool `json:"isAvailable"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.IsAvailable == nil {
		fail(c, http.StatusBadRequest, "isAvailable is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.dishes {
		if d.DishID.String() == c.Param("id") {
			v := *body.IsAvailable
			s.dishes[i].IsAvailable = &v
			c.JSON(http.StatusOK, gin.H{"message": "Availability updated"})
			return
		}
	}
	fail(c, http.StatusNotFound, "Dish not found")
}

func (s *Server) createCategory(c *gin.Context) {
	var in models.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := models.Category{CategoryID: models.ID(s.id()), Name: in.Name, Description: in.Description, ImageURL: in.ImageURL}
	s.categories = append(s.categories, cat)
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) updateCategory(c *gin.Context) {
	var in models.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cat := range s.categories {
		if cat.CategoryID.String() == c.Param("id") {
			s.categories[i].Name, s.categories[i].Description, s.categories[i].ImageURL = in.Name, in.Description, in.ImageURL
			c.JSON(http.StatusOK, s.categories[i])
			return
		}
	}
	fail(c, http.StatusNotFound, "Category not found")
}

func (s *Server) deleteCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cat := range s.categories {
		if cat.CategoryID.String() == c.Param("id") {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
			return
		}
	}
	fail(c, http.StatusNotFound, "Category not found")
}

func (s *Server) createTable(c *gin.Context) {
	var in models.TableInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	t := models.Table{TableID: models.ID(id), Name: in.Name, QRCode: fmt.Sprintf("data:image/png;base64,QR%s", id)}
	s.tables = append(s.tables, t)
	c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTable(c *gin.Context) {
	var in models.TableInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tables {
		if t.TableID.String() == c.Param("id") {
			s.tables[i].Name = in.Name
			c.JSON(http.StatusOK, s.tables[i])
			return
		}
	}
	fail(c, http.StatusNotFound, "Table not found")
}

func (s *Server) deleteTable(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tables {
		if t.TableID.String() == c.Param("id") {
			s.tables = append(s.tables[:i], s.tables[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Table deleted"})
			return
		}
	}
	fail(c, http.StatusNotFound, "Table not found")
}

func (s *Server) listOrders(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.orders)
}

func (s *Server) getOrder(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderID.String() == c.Param("id") {
			c.JSON(http.StatusOK, o)
			return
		}
	}
	fail(c, http.StatusNotFound, "Order not found")
}

func (s *Server) updateOrderState(c *gin.Context) {
	var body struct {
		Status string `json:"order_status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Status == "" {
		fail(c, http.StatusBadRequest, "order_status is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.orders {
		if o.OrderID.String() == c.Param("id") {
			s.orders[i].Status = body.Status
			c.JSON(http.StatusOK, gin.H{"message": "Order updated"})
			return
		}
	}
	fail(c, http.StatusNotFound, "Order not found")
}

func (s *Server) completedCount(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.orders {
		if o.Status == models.OrderStatusComplete {
			n++
		}
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) pendingCount(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.orders {
		if o.Status == models.OrderStatusPending {
			n++
		}
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) dailyIncome(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, o := range s.orders {
		if o.Status == models.OrderStatusComplete {
			total = total.Add(o.TotalPrice)
		}
	}
	f, _ := total.Float64()
	c.JSON(http.StatusOK, f)
}

func (s *Server) weeklyIncome(c *gin.Context) {
	c.JSON(http.StatusOK, []gin.H{
		{"day": "Mon", "income": 1200},
		{"day": "Tue", "income": 950.5},
	})
}
