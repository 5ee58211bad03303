package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wichananm65/pet-shop-client/internal/catalog"
	"github.com/wichananm65/pet-shop-client/internal/session"
	"github.com/wichananm65/pet-shop-client/internal/storage"
)

func formatINR(v float64) string {
	return fmt.Sprintf("INR %.0f", v)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		message, err := app.gw.Health(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backend connected: %s\n", message)
		return nil
	},
}

var setBaseURLCmd = &cobra.Command{
	Use:   "set-base-url <url>",
	Short: "Persist a backend base URL override",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := strings.TrimRight(strings.TrimSpace(args[0]), "/")
		if value == "" {
			return errors.New("base URL must not be empty")
		}
		return app.store.Set(storage.BaseURLKey, value)
	},
}

var (
	registerName    string
	registerContact string
	registerPetType string
)

var registerCmd = &cobra.Command{
	Use:   "register <email> <password>",
	Short: "Create a customer account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := session.RegisterRequest{
			Name:     registerName,
			Email:    args[0],
			Password: args[1],
		}
		if registerContact != "" {
			req.ContactNo = &registerContact
		}
		if registerPetType != "" {
			req.PetType = &registerPetType
		}
		created, err := app.session.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered customer #%d (%s)\n", created.CustomerID, created.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in and persist the session token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		me, err := app.session.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (customer #%d)\n", me.Name, me.CustomerID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.session.Logout()
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		me, err := app.session.ResolveIdentity(cmd.Context())
		if err != nil {
			return err
		}
		if me == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (customer #%d)\n", me.Name, me.Email, me.CustomerID)
		return nil
	},
}

var (
	browseCategory string
	browseQuery    string
	browseSort     string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog with filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := app.catalog.Load(cmd.Context())
		if err != nil {
			return err
		}
		visible := catalog.Visible(products, catalog.FilterState{
			Category: browseCategory,
			Query:    browseQuery,
			Sort:     catalog.Sort(browseSort),
		})
		if len(visible) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No products match.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tPRICE\tRATING\tSTOCK")
		for _, p := range visible {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.1f\t%d\n",
				p.ProductID, p.ProductName, p.ProductType, formatINR(p.Price), p.Rating, p.StockQuantity)
		}
		return w.Flush()
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show a product with its reviews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		p, err := app.catalog.Get(cmd.Context(), productID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n%s • Rating %.1f • Stock %d\nPrice: %s\n",
			p.ProductName, p.ProductType, p.Rating, p.StockQuantity, formatINR(p.Price))

		reviews, err := app.reviews.ForProduct(cmd.Context(), productID)
		if err != nil {
			return err
		}
		if len(reviews) == 0 {
			fmt.Fprintln(out, "No reviews yet.")
			return nil
		}
		for _, r := range reviews {
			comment := ""
			if r.Comment != nil {
				comment = " - " + *r.Comment
			}
			fmt.Fprintf(out, "  %.0f/5%s\n", r.Rating, comment)
		}
		return nil
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or mutate the cart",
	RunE:  showCart,
}

var cartAddQty int

var cartAddCmd = &cobra.Command{
	Use:   "add <productID>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		if err := app.cart.AddItem(cmd.Context(), productID, cartAddQty); err != nil {
			if errors.Is(err, session.ErrLoginRequired) {
				return errors.New("login required: run `shopctl login` first")
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Added to cart.")
		return showCart(cmd, nil)
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <cartItemID> <quantity>",
	Short: "Set the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cartItemID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid cart item id %q", args[0])
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		if err := app.cart.UpdateQuantity(cmd.Context(), cartItemID, quantity); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cart updated.")
		return showCart(cmd, nil)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <cartItemID>",
	Short: "Remove a cart line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cartItemID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid cart item id %q", args[0])
		}
		if err := app.cart.RemoveItem(cmd.Context(), cartItemID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Item removed.")
		return showCart(cmd, nil)
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		me, err := app.session.RequireIdentity(cmd.Context())
		if err != nil {
			return err
		}
		if err := app.cart.ClearCart(cmd.Context(), me.CustomerID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
		return nil
	},
}

func showCart(cmd *cobra.Command, _ []string) error {
	me, err := app.session.RequireIdentity(cmd.Context())
	if err != nil {
		if errors.Is(err, session.ErrLoginRequired) {
			return errors.New("login required to view cart")
		}
		return err
	}
	items, total, err := app.cart.LoadCart(cmd.Context(), me.CustomerID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "Cart is empty.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tPRODUCT\tQTY\tEACH\tSUBTOTAL")
	for _, line := range items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			line.CartItemID, line.ProductName, line.Quantity, formatINR(line.UnitPrice), formatINR(line.Subtotal))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Total: %s (%d items)\n", formatINR(total), app.cart.BadgeCount())
	return nil
}

var checkoutMethod string

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order from the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		placed, err := app.orders.Checkout(cmd.Context(), checkoutMethod)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Order confirmed.\nOrder ID: %d\nTotal: %s\nStatus: %s\nPayment: %s\n",
			placed.OrderID, formatINR(placed.TotalAmount), placed.DeliveryStatus, placed.PaymentStatus)
		return nil
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := app.orders.History(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(orders) == 0 {
			fmt.Fprintln(out, "No orders yet.")
			return nil
		}
		for _, o := range orders {
			fmt.Fprintf(out, "Order #%d  %s  %s  delivery=%s payment=%s\n",
				o.OrderID, o.OrderDate.Local().Format("2006-01-02 15:04"),
				formatINR(o.TotalAmount), o.DeliveryStatus, o.PaymentStatus)
		}
		return nil
	},
}

var trackingCmd = &cobra.Command{
	Use:   "tracking <orderID>",
	Short: "Show tracking events for an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orderID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid order id %q", args[0])
		}
		events, err := app.orders.Tracking(cmd.Context(), orderID)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No tracking events.")
			return nil
		}
		for _, ev := range events {
			note := ""
			if ev.Note != nil {
				note = " (" + *ev.Note + ")"
			}
			fmt.Fprintf(out, "%s - %s%s\n", ev.CreatedAt.Local().Format("2006-01-02 15:04"), ev.Status, note)
		}
		return nil
	},
}

var (
	reviewRating  float64
	reviewComment string
)

var reviewCmd = &cobra.Command{
	Use:   "review <productID>",
	Short: "Submit a product review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		if _, err := app.reviews.Submit(cmd.Context(), productID, reviewRating, reviewComment); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Review submitted.")
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "customer name")
	registerCmd.Flags().StringVar(&registerContact, "contact", "", "contact number")
	registerCmd.Flags().StringVar(&registerPetType, "pet-type", "", "pet type")
	_ = registerCmd.MarkFlagRequired("name")

	browseCmd.Flags().StringVar(&browseCategory, "category", catalog.CategoryAll, "category filter")
	browseCmd.Flags().StringVar(&browseQuery, "query", "", "search text")
	browseCmd.Flags().StringVar(&browseSort, "sort", string(catalog.SortFeatured),
		"sort mode: featured, price_asc, price_desc, rating_desc")

	cartAddCmd.Flags().IntVar(&cartAddQty, "qty", 1, "quantity to add")
	cartCmd.AddCommand(cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd)

	checkoutCmd.Flags().StringVar(&checkoutMethod, "method", "COD", "payment method")

	reviewCmd.Flags().Float64Var(&reviewRating, "rating", 5, "rating 1-5")
	reviewCmd.Flags().StringVar(&reviewComment, "comment", "", "review comment")
}
