package backendtest

import (
	"net/http/httptest"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/golang-jwt/jwt/v4"
)

// Server exposes the fiber app over a real HTTP listener so the client under
// test talks to it the way it talks to the real backend.
func (b *Backend) Server() *httptest.Server {
	return httptest.NewServer(adaptor.FiberApp(b.App()))
}

type registerPayload struct {
	Name      string  `json:"name"`
	ContactNo *string `json:"contact_no"`
	Email     string  `json:"email"`
	PetType   *string `json:"pet_type"`
	Password  string  `json:"password"`
}

func (b *Backend) register(c *fiber.Ctx) error {
	payload := new(registerPayload)
	if err := c.BodyParser(payload); err != nil {
		return detail(c, fiber.StatusBadRequest, err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.customers {
		if existing.Email == payload.Email {
			return detail(c, fiber.StatusBadRequest, "Email already registered")
		}
	}
	id := b.nextCustomerID
	b.nextCustomerID++
	created := &Customer{
		CustomerID: id,
		Name:       payload.Name,
		Email:      payload.Email,
		ContactNo:  payload.ContactNo,
		PetType:    payload.PetType,
		Password:   payload.Password,
	}
	b.customers[id] = created
	return c.Status(fiber.StatusCreated).JSON(created)
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b *Backend) login(c *fiber.Ctx) error {
	payload := new(loginPayload)
	if err := c.BodyParser(payload); err != nil {
		return detail(c, fiber.StatusBadRequest, err.Error())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, customer := range b.customers {
		if customer.Email == payload.Email && customer.Password == payload.Password {
			return c.JSON(fiber.Map{
				"access_token": b.signToken(customer.CustomerID),
				"token_type":   "bearer",
				"customer":     customer,
			})
		}
	}
	return detail(c, fiber.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) getMe(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return detail(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return detail(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}
	sub, _ := claims["sub"].(string)
	customerID, err := strconv.Atoi(sub)
	if err != nil {
		return detail(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	customer, found := b.customers[customerID]
	if !found {
		return detail(c, fiber.StatusNotFound, "Customer not found")
	}
	return c.JSON(customer)
}

func (b *Backend) listProducts(c *fiber.Ctx) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Product, 0, len(b.products))
	for _, p := range b.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return c.JSON(out)
}

func (b *Backend) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid product id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, found := b.products[id]
	if !found {
		return detail(c, fiber.StatusNotFound, "Product not found")
	}
	return c.JSON(p)
}

type cartAddPayload struct {
	CustomerID int `json:"customer_id"`
	ProductID  int `json:"product_id"`
	Quantity   int `json:"quantity"`
}

func (b *Backend) addToCart(c *fiber.Ctx) error {
	payload := new(cartAddPayload)
	if err := c.BodyParser(payload); err != nil {
		return detail(c, fiber.StatusBadRequest, err.Error())
	}
	if payload.Quantity < 1 {
		return detail(c, fiber.StatusBadRequest, "Quantity must be at least 1")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.customers[payload.CustomerID]; !found {
		return detail(c, fiber.StatusNotFound, "Customer or product not found")
	}
	if _, found := b.products[payload.ProductID]; !found {
		return detail(c, fiber.StatusNotFound, "Customer or product not found")
	}

	// An existing line for the same product is incremented, not duplicated.
	for _, item := range b.cart {
		if item.CustomerID == payload.CustomerID && item.ProductID == payload.ProductID {
			item.Quantity += payload.Quantity
			return c.Status(fiber.StatusCreated).JSON(item)
		}
	}

	id := b.nextCartItemID
	b.nextCartItemID++
	item := &CartItem{
		CartItemID: id,
		CustomerID: payload.CustomerID,
		ProductID:  payload.ProductID,
		Quantity:   payload.Quantity,
	}
	b.cart[id] = item
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (b *Backend) getCart(c *fiber.Ctx) error {
	customerID, err := strconv.Atoi(c.Params("customerID"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid customer id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*CartItem, 0)
	for _, item := range b.cart {
		if item.CustomerID == customerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CartItemID < out[j].CartItemID })
	return c.JSON(out)
}

type cartUpdatePayload struct {
	Quantity int `json:"quantity"`
}

func (b *Backend) updateCartItem(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid cart item id")
	}
	payload := new(cartUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return detail(c, fiber.StatusBadRequest, err.Error())
	}
	if payload.Quantity < 1 {
		return detail(c, fiber.StatusBadRequest, "Quantity must be at least 1")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	item, found := b.cart[id]
	if !found {
		return detail(c, fiber.StatusNotFound, "Cart item not found")
	}
	item.Quantity = payload.Quantity
	return c.JSON(item)
}

func (b *Backend) removeCartItem(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid cart item id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.cart[id]; !found {
		return detail(c, fiber.StatusNotFound, "Cart item not found")
	}
	delete(b.cart, id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (b *Backend) clearCart(c *fiber.Ctx) error {
	customerID, err := strconv.Atoi(c.Params("customerID"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid customer id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	deleted := 0
	for id, item := range b.cart {
		if item.CustomerID == customerID {
			delete(b.cart, id)
			deleted++
		}
	}
	return c.JSON(fiber.Map{"deleted_items": deleted})
}

type checkoutPayload struct {
	CustomerID    int    `json:"customer_id"`
	PaymentMethod string `json:"payment_method"`
}

func (b *Backend) checkout(c *fiber.Ctx) error {
	payload := new(checkoutPayload)
	if err := c.BodyParser(payload); err != nil {
		return detail(c, fiber.StatusBadRequest, err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.customers[payload.CustomerID]; !found {
		return detail(c, fiber.StatusBadRequest, "Checkout failed. Verify customer, cart items, and available stock.")
	}

	lines := make([]*CartItem, 0)
	for _, item := range b.cart {
		if item.CustomerID == payload.CustomerID {
			lines = append(lines, item)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].CartItemID < lines[j].CartItemID })
	if len(lines) == 0 {
		return detail(c, fiber.StatusBadRequest, "Checkout failed. Verify customer, cart items, and available stock.")
	}
	for _, line := range lines {
		product, found := b.products[line.ProductID]
		if !found || product.StockQuantity < line.Quantity {
			return detail(c, fiber.StatusBadRequest, "Checkout failed. Verify customer, cart items, and available stock.")
		}
	}

	orderID := b.nextOrderID
	b.nextOrderID++
	placed := &Order{
		OrderID:        orderID,
		CustomerID:     payload.CustomerID,
		OrderDate:      time.Now().UTC(),
		PaymentStatus:  "RECEIPT_GENERATED",
		DeliveryStatus: "PLACED",
	}
	for i, line := range lines {
		product := b.products[line.ProductID]
		subTotal := product.Price * float64(line.Quantity)
		placed.Items = append(placed.Items, OrderItem{
			OrderItemID: i + 1,
			ProductID:   line.ProductID,
			Price:       product.Price,
			Quantity:    line.Quantity,
			SubTotal:    subTotal,
		})
		placed.TotalAmount += subTotal
		product.StockQuantity -= line.Quantity
		delete(b.cart, line.CartItemID)
	}
	placed.Payment = &Payment{
		PaymentID:     orderID,
		OrderID:       orderID,
		PaymentMethod: payload.PaymentMethod,
		Status:        "RECEIPT_GENERATED",
	}
	b.orders[orderID] = placed
	b.tracking[orderID] = []TrackingEvent{{Status: "PLACED", CreatedAt: placed.OrderDate}}

	return c.Status(fiber.StatusCreated).JSON(placed)
}

func (b *Backend) listCustomerOrders(c *fiber.Ctx) error {
	customerID, err := strconv.Atoi(c.Params("customerID"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid customer id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Order, 0)
	for _, placed := range b.orders {
		if placed.CustomerID == customerID {
			out = append(out, placed)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return c.JSON(out)
}

func (b *Backend) listTracking(c *fiber.Ctx) error {
	orderID, err := strconv.Atoi(c.Params("orderID"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid order id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.orders[orderID]; !found {
		return detail(c, fiber.StatusNotFound, "Order not found")
	}
	return c.JSON(b.tracking[orderID])
}

type reviewPayload struct {
	CustomerID int     `json:"customer_id"`
	ProductID  int     `json:"product_id"`
	Rating     float64 `json:"rating"`
	Comment    *string `json:"comment"`
}

func (b *Backend) createReview(c *fiber.Ctx) error {
	payload := new(reviewPayload)
	if err := c.BodyParser(payload); err != nil {
		return detail(c, fiber.StatusBadRequest, err.Error())
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		return detail(c, fiber.StatusBadRequest, "Rating must be between 1 and 5")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.products[payload.ProductID]; !found {
		return detail(c, fiber.StatusNotFound, "Product not found")
	}
	id := b.nextReviewID
	b.nextReviewID++
	created := Review{
		ReviewID:   id,
		CustomerID: payload.CustomerID,
		ProductID:  payload.ProductID,
		Rating:     payload.Rating,
		Comment:    payload.Comment,
		CreatedAt:  time.Now().UTC(),
	}
	b.reviews[payload.ProductID] = append(b.reviews[payload.ProductID], created)
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (b *Backend) listProductReviews(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productID"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid product id")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	reviews := b.reviews[productID]
	if reviews == nil {
		reviews = []Review{}
	}
	return c.JSON(reviews)
}
