// Package backendtest is an in-process stand-in for the pet shop backend.
// It implements the slice of the REST contract the client depends on, with
// in-memory state, so package tests can drive the real client over a real
// HTTP listener.
package backendtest

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Customer mirrors the backend's customer row. The password is stored in
// the clear; this is test infrastructure, not an auth system.
type Customer struct {
	CustomerID int     `json:"customer_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	ContactNo  *string `json:"contact_no,omitempty"`
	PetType    *string `json:"pet_type,omitempty"`
	Password   string  `json:"-"`
}

type Product struct {
	ProductID     int     `json:"product_id"`
	ProductName   string  `json:"product_name"`
	ProductType   string  `json:"product_type"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
	Rating        float64 `json:"rating"`
}

type CartItem struct {
	CartItemID int `json:"cart_item_id"`
	CustomerID int `json:"customer_id"`
	ProductID  int `json:"product_id"`
	Quantity   int `json:"quantity"`
}

type OrderItem struct {
	OrderItemID int     `json:"order_item_id"`
	ProductID   int     `json:"product_id"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	SubTotal    float64 `json:"sub_total"`
}

type Payment struct {
	PaymentID     int        `json:"payment_id"`
	OrderID       int        `json:"order_id"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

type Order struct {
	OrderID        int         `json:"order_id"`
	CustomerID     int         `json:"customer_id"`
	OrderDate      time.Time   `json:"order_date"`
	TotalAmount    float64     `json:"total_amount"`
	PaymentStatus  string      `json:"payment_status"`
	DeliveryStatus string      `json:"delivery_status"`
	Items          []OrderItem `json:"items"`
	Payment        *Payment    `json:"payment,omitempty"`
}

type TrackingEvent struct {
	Status    string    `json:"status"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Review struct {
	ReviewID   int       `json:"review_id"`
	CustomerID int       `json:"customer_id"`
	ProductID  int       `json:"product_id"`
	Rating     float64   `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Backend holds the fake's mutable state.
type Backend struct {
	mu       sync.Mutex
	secret   []byte
	requests int

	customers map[int]*Customer
	products  map[int]*Product
	cart      map[int]*CartItem
	orders    map[int]*Order
	tracking  map[int][]TrackingEvent
	reviews   map[int][]Review

	nextCustomerID int
	nextProductID  int
	nextCartItemID int
	nextOrderID    int
	nextReviewID   int
}

func New() *Backend {
	return &Backend{
		secret:         []byte("backendtest-secret"),
		customers:      make(map[int]*Customer),
		products:       make(map[int]*Product),
		cart:           make(map[int]*CartItem),
		orders:         make(map[int]*Order),
		tracking:       make(map[int][]TrackingEvent),
		reviews:        make(map[int][]Review),
		nextCustomerID: 1,
		nextProductID:  1,
		nextCartItemID: 1,
		nextOrderID:    1,
		nextReviewID:   1,
	}
}

// Requests reports how many HTTP requests the fake has served. Tests use it
// to prove that client-side validation rejected without a network call.
func (b *Backend) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

// AddCustomer seeds a customer and returns its id.
func (b *Backend) AddCustomer(name, email, password string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextCustomerID
	b.nextCustomerID++
	b.customers[id] = &Customer{CustomerID: id, Name: name, Email: email, Password: password}
	return id
}

// AddProduct seeds a catalog entry and returns its id.
func (b *Backend) AddProduct(name, productType string, price float64, stock int, rating float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextProductID
	b.nextProductID++
	b.products[id] = &Product{
		ProductID:     id,
		ProductName:   name,
		ProductType:   productType,
		Price:         price,
		StockQuantity: stock,
		Rating:        rating,
	}
	return id
}

// RemoveProduct deletes a product, leaving any cart lines pointing at it
// dangling (the catalog-miss case the client must tolerate).
func (b *Backend) RemoveProduct(productID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.products, productID)
}

// AddCartItem seeds a raw cart line directly, bypassing the API.
func (b *Backend) AddCartItem(customerID, productID, quantity int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextCartItemID
	b.nextCartItemID++
	b.cart[id] = &CartItem{CartItemID: id, CustomerID: customerID, ProductID: productID, Quantity: quantity}
	return id
}

// TokenFor signs a valid bearer token for the given customer, the same way
// the login endpoint does.
func (b *Backend) TokenFor(customerID int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.signToken(customerID)
}

func (b *Backend) signToken(customerID int) string {
	claims := jwt.MapClaims{
		"sub": strconv.Itoa(customerID),
		"exp": time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(b.secret)
	if err != nil {
		panic(fmt.Sprintf("backendtest: sign token: %v", err))
	}
	return signed
}

// App assembles the fiber application serving the fake contract.
func (b *Backend) App() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(func(c *fiber.Ctx) error {
		b.mu.Lock()
		b.requests++
		b.mu.Unlock()
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Online Pet Shop backend is running"})
	})

	app.Post("/customers/register", b.register)
	app.Post("/customers/login", b.login)
	app.Get("/customers/me", jwtware.New(jwtware.Config{
		SigningKey: b.secret,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return detail(c, fiber.StatusUnauthorized, "Invalid or expired token")
		},
	}), b.getMe)

	app.Get("/products", b.listProducts)
	app.Get("/products/:id", b.getProduct)

	app.Post("/cart/add", b.addToCart)
	app.Get("/cart/:customerID", b.getCart)
	app.Put("/cart/item/:id", b.updateCartItem)
	app.Delete("/cart/item/:id", b.removeCartItem)
	app.Delete("/cart/clear/:customerID", b.clearCart)

	app.Post("/orders/checkout", b.checkout)
	app.Get("/orders/customer/:customerID", b.listCustomerOrders)
	app.Get("/orders/:orderID/tracking", b.listTracking)

	app.Post("/reviews", b.createReview)
	app.Get("/reviews/product/:productID", b.listProductReviews)

	return app
}

func detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"detail": message})
}
