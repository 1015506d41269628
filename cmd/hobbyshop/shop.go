package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hobbybyrox/hobbyshop/internal/cart"
	"github.com/hobbybyrox/hobbyshop/internal/config"
	"github.com/hobbybyrox/hobbyshop/internal/content"
	"github.com/hobbybyrox/hobbyshop/internal/db"
	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/storefront"
)

func shopUsage() {
	fmt.Fprintln(os.Stdout, `Usage: hobbyshop shop <command> [flags]

Commands:
  refresh                       fetch the published documents
  catalog [-category name]      list products from the local copy
  banners                       list banner images
  gallery                       list gallery images
  cart                          show the cart
  add -name <product> [-price]  add one of a product to the cart
  remove -name <product>        remove a cart line
  clear                         empty the cart
  prune                         drop cart lines no longer in the catalog
  order [-via whatsapp|email]   print the order text or a prefilled link

Common flags: -state <path>, -data <url>, -c <config>`)
}

func runShop(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		shopUsage()
		return errors.New("missing shop command")
	}
	name := args[0]

	fs := flag.NewFlagSet("shop "+name, flag.ContinueOnError)
	configFlag(fs)
	fs.StringVar(&cfg.StatePath, "state", cfg.StatePath, "local state database")
	fs.StringVar(&cfg.DataURL, "data", cfg.DataURL, "site serving the published documents")

	var category, product, via, to string
	var price float64
	switch name {
	case "catalog":
		fs.StringVar(&category, "category", storefront.CategoryAll, "")
	case "add":
		fs.StringVar(&product, "name", "", "")
		fs.Float64Var(&price, "price", 0, "unit price (default: catalog price)")
	case "remove":
		fs.StringVar(&product, "name", "", "")
	case "order":
		fs.StringVar(&via, "via", "", "whatsapp or email (default: plain text)")
		fs.StringVar(&to, "to", "", "number or address (default: from config)")
	case "refresh", "banners", "gallery", "cart", "clear", "prune":
	default:
		shopUsage()
		return fmt.Errorf("unknown shop command: %s", name)
	}
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := db.OpenWithSchema(cfg.StatePath)
	if err != nil {
		return err
	}
	defer database.Close()

	cache := storefront.New(database, content.NewReader(cfg.DataURL, nil), slog.Default())
	basket, err := cart.Open(ctx, database)
	if err != nil {
		return err
	}

	switch name {
	case "refresh":
		report := cache.Refresh(ctx)
		for _, d := range report.Documents {
			line := fmt.Sprintf("%-12s %s", d.Name, d.Result.Status)
			if d.Result.Usable() {
				line += "  " + d.Result.Value.Format("2006-01-02 15:04:05")
			}
			if d.Result.Reason != nil {
				line += "  (" + d.Result.Reason.Error() + ")"
			}
			fmt.Println(line)
		}
		return nil

	case "catalog":
		res := cache.Catalog(ctx)
		if !res.Usable() {
			return fmt.Errorf("catalog unavailable: %w", res.Reason)
		}
		staleNotice(res.Status, res.Reason)
		for _, l := range storefront.FilterByCategory(res.Value, category) {
			fmt.Printf("%s  %-30s €%.2f  %s\n", l.ID, l.Product.Name, l.Product.Price, l.Product.CoverImage())
		}
		return nil

	case "banners", "gallery":
		res := cache.Banners(ctx)
		if name == "gallery" {
			res = cache.Gallery(ctx)
		}
		if !res.Usable() {
			return fmt.Errorf("%s unavailable: %w", name, res.Reason)
		}
		staleNotice(res.Status, res.Reason)
		for _, ref := range res.Value {
			fmt.Println(ref)
		}
		return nil

	case "cart":
		catalog := cache.Catalog(ctx).Value
		for _, v := range basket.LineViews(catalog) {
			fmt.Printf("%-30s x%d  €%.2f  %s\n", v.Name, v.Quantity, v.Subtotal(), v.Thumbnail)
		}
		fmt.Printf("Items: %d  Total: €%.2f\n", basket.Count(), basket.Total())
		return nil

	case "add":
		if price == 0 {
			res := cache.Catalog(ctx)
			if !res.Usable() {
				return fmt.Errorf("no price given and catalog unavailable: %w", res.Reason)
			}
			_, p, ok := res.Value.FindByName(product)
			if !ok {
				return model.Invalid("product %q not in catalog", product)
			}
			price = p.Price
		}
		if err := basket.AddLine(ctx, product, price); err != nil {
			return err
		}
		fmt.Printf("%s in cart: %d\n", product, basket.QuantityOf(product))
		return nil

	case "remove":
		return basket.RemoveLine(ctx, product)

	case "clear":
		return basket.Clear(ctx)

	case "prune":
		res := cache.Catalog(ctx)
		if !res.Usable() {
			return fmt.Errorf("catalog unavailable: %w", res.Reason)
		}
		dropped, err := basket.Prune(ctx, res.Value)
		if err != nil {
			return err
		}
		for _, n := range dropped {
			fmt.Printf("removed %s (no longer sold)\n", n)
		}
		return nil

	case "order":
		var link string
		switch via {
		case "":
			text := basket.ToOrderText()
			if text == "" {
				return cart.ErrEmptyCart
			}
			fmt.Println(text)
			return nil
		case "whatsapp":
			link, err = basket.WhatsAppURL(orDefault(to, cfg.WhatsApp))
		case "email":
			link, err = basket.MailtoURL(orDefault(to, cfg.Email), "")
		default:
			return model.Invalid("unknown order channel %q", via)
		}
		if err != nil {
			return err
		}
		fmt.Println(link)
		return nil
	}
	return nil
}

func staleNotice(status model.Status, reason error) {
	if status == model.StatusDegraded {
		fmt.Fprintf(os.Stderr, "note: showing cached data (%v)\n", reason)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
