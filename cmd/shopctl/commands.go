package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// Conflict policies for checkout.
const (
	onConflictFail   = "fail"
	onConflictResume = "resume"
	onConflictCancel = "cancel"
)

func runLogin(ctx context.Context, s *shell, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	u, err := s.client.Profile(ctx)
	if err != nil {
		return err
	}
	role := "customer"
	if u.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(s.out, "logged in as %s <%s> (%s)\n", u.Username, u.Email, role)
	return nil
}

func runProducts(ctx context.Context, s *shell, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	products, err := s.client.ListProducts(ctx)
	if err != nil {
		return err
	}
	tw := table(s.out)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK\tCATEGORY")
	for _, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), p.StockQuantity, category)
	}
	return tw.Flush()
}

func runCart(ctx context.Context, s *shell, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	cart, err := s.coord.RefreshCart(ctx)
	if err != nil {
		return err
	}
	return printCart(s.out, cart)
}

func runAdd(ctx context.Context, s *shell, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	productID, qty, err := idAndQuantity(args)
	if err != nil {
		return err
	}
	cart, err := s.coord.AddToCart(ctx, productID, qty)
	if err != nil {
		return err
	}
	return printCart(s.out, cart)
}

func runSet(ctx context.Context, s *shell, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	itemID, qty, err := idAndQuantity(args)
	if err != nil {
		return err
	}
	cart, err := s.coord.UpdateQuantity(ctx, itemID, qty)
	if err != nil {
		return err
	}
	return printCart(s.out, cart)
}

func runAddresses(ctx context.Context, s *shell, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	addrs, err := s.client.ListAddresses(ctx)
	if err != nil {
		return err
	}
	tw := table(s.out)
	fmt.Fprintln(tw, "ID\tTYPE\tADDRESS\tDEFAULT")
	for _, a := range addrs {
		def := ""
		if a.IsDefault {
			def = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.AddressType, a.FullAddress(), def)
	}
	return tw.Flush()
}

func runCheckout(ctx context.Context, s *shell, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	method := fs.String("method", storesdk.PaymentUPI, "payment method (upi or bank_transfer)")
	onConflict := fs.String("on-conflict", onConflictFail, "what to do with an order already awaiting payment: fail, resume or cancel")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	addressID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("address id: %w", err)
	}

	res, err := s.coord.CreateOrder(ctx, addressID, *method)
	if err != nil {
		return err
	}
	if res.Created != nil {
		return printCreated(s.out, res.Created)
	}

	pending := res.Conflict.ExistingOrderNumber
	fmt.Fprintf(s.out, "order %s is still awaiting payment: %s\n", pending, res.Conflict.Reason)

	switch *onConflict {
	case onConflictResume:
		o, err := s.coord.ResumePendingOrder(ctx, pending)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "resumed %s\n", o.OrderNumber)
		return printOrder(s.out, o)

	case onConflictCancel:
		res, err := s.coord.CancelAndRetry(ctx, pending, addressID, *method)
		if err != nil {
			return err
		}
		if res.Conflict != nil {
			return fmt.Errorf("order %s still blocks checkout", res.Conflict.ExistingOrderNumber)
		}
		fmt.Fprintf(s.out, "cancelled %s\n", pending)
		return printCreated(s.out, res.Created)
	}

	return fmt.Errorf("pay or cancel %s first, or rerun with -on-conflict=resume|cancel", pending)
}

func runPay(ctx context.Context, s *shell, args []string) error {
	fs := flag.NewFlagSet("pay", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	paidAt := fs.String("paid-at", "", "when the transfer was made (RFC3339)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 3 {
		return errUsage
	}
	number, utr, path := fs.Arg(0), fs.Arg(1), fs.Arg(2)

	shot, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	proof := storesdk.PaymentProof{
		ReferenceID: utr,
		Screenshot:  shot,
		Filename:    filepath.Base(path),
	}
	if *paidAt != "" {
		if proof.PaidAt, err = time.Parse(time.RFC3339, *paidAt); err != nil {
			return fmt.Errorf("paid-at: %w", err)
		}
	}
	if err := proof.Check(); err != nil {
		return err
	}

	o, err := s.coord.ResumePendingOrder(ctx, number)
	if err != nil {
		return err
	}
	if !o.AwaitingPayment() {
		return fmt.Errorf("order %s is %s", o.OrderNumber, o.StatusDisplay)
	}

	if err := s.coord.SubmitPaymentProof(ctx, o.OrderNumber, proof); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "payment proof for %s submitted, awaiting review\n", o.OrderNumber)
	return nil
}

func runOrders(ctx context.Context, s *shell, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	orders, err := s.client.ListOrders(ctx)
	if err != nil {
		return err
	}
	tw := table(s.out)
	fmt.Fprintln(tw, "ORDER\tSTATUS\tTOTAL\tPLACED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", o.OrderNumber, o.StatusDisplay, o.TotalAmount.StringFixed(2), o.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runStatus(ctx context.Context, s *shell, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	st, err := s.client.GetOrderStatus(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %s (updated %s)\n", st.OrderNumber, st.StatusDisplay, st.LastUpdated.Local().Format(time.DateTime))
	return nil
}

func idAndQuantity(args []string) (int64, int, error) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("id: %w", err)
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("quantity: %w", err)
	}
	return id, qty, nil
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printCart(w io.Writer, cart *storesdk.Cart) error {
	if cart == nil || len(cart.Items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return nil
	}
	tw := table(w)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tPRICE\tTOTAL")
	for _, it := range cart.Items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", it.ID, it.ProductName, it.Quantity, it.ProductPrice.StringFixed(2), it.TotalPrice.StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t%d\t\t%s\n", cart.TotalItems, cart.TotalPrice.StringFixed(2))
	return tw.Flush()
}

func printCreated(w io.Writer, created *storesdk.OrderCreated) error {
	fmt.Fprintf(w, "created %s\n", created.Order.OrderNumber)
	return printOrder(w, &created.Order)
}

func printOrder(w io.Writer, o *storesdk.Order) error {
	tw := table(w)
	fmt.Fprintf(tw, "order\t%s\n", o.OrderNumber)
	fmt.Fprintf(tw, "status\t%s\n", o.StatusDisplay)
	fmt.Fprintf(tw, "total\t%s\n", o.TotalAmount.StringFixed(2))
	fmt.Fprintf(tw, "ship to\t%s\n", o.ShippingAddress)
	if o.Payment != nil {
		fmt.Fprintf(tw, "payment\t%s (%s)\n", o.Payment.PaymentMethod, o.Payment.Status)
	}
	for _, it := range o.Items {
		fmt.Fprintf(tw, "  %dx\t%s\n", it.Quantity, it.ProductName)
	}
	return tw.Flush()
}
