package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hobbybyrox/hobbyshop/internal/admin"
	"github.com/hobbybyrox/hobbyshop/internal/backup"
	"github.com/hobbybyrox/hobbyshop/internal/config"
	"github.com/hobbybyrox/hobbyshop/internal/db"
	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/relay"
	"github.com/hobbybyrox/hobbyshop/internal/store"
	"github.com/hobbybyrox/hobbyshop/internal/upload"
)

// adminSession is what every admin command works against.
type adminSession struct {
	cfg   *config.Config
	db    *sql.DB
	relay *relay.Client
	ctl   *admin.Controller
}

type adminCommand struct {
	summary string
	flags   func(fs *flag.FlagSet) func(ctx context.Context, s *adminSession) error
}

var adminCommands = map[string]adminCommand{
	"login":          {"log in to the sync server", adminLogin},
	"logout":         {"forget the stored token", adminLogout},
	"list":           {"show products, banners and gallery", adminList},
	"add-product":    {"add a product", adminAddProduct},
	"edit-product":   {"change fields of a product", adminEditProduct},
	"delete-product": {"delete a product", adminDeleteProduct},
	"add-banner":     {"append a banner image", adminAddBanner},
	"remove-banner":  {"remove a banner by index", adminRemoveBanner},
	"add-gallery":    {"append gallery images", adminAddGallery},
	"move-gallery":   {"move a gallery image up or down", adminMoveGallery},
	"delete-gallery": {"delete a gallery image by index", adminDeleteGallery},
	"retry-uploads":  {"re-upload images kept as local previews", adminRetryUploads},
	"export":         {"write the state document to a file or s3://bucket/key", adminExport},
	"import":         {"replace the state from a file or s3://bucket/key", adminImport},
	"publish":        {"publish the durable state through the sync server", adminPublish},
}

func adminUsage() {
	names := make([]string, 0, len(adminCommands))
	for name := range adminCommands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stdout, "Usage: hobbyshop admin <command> [flags]")
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, "Commands:")
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "  %-15s %s\n", name, adminCommands[name].summary)
	}
	fmt.Fprintln(os.Stdout)
	fmt.Fprintln(os.Stdout, "Common flags: -state <path>, -relay <url>, -c <config>")
}

func runAdmin(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		adminUsage()
		return errors.New("missing admin command")
	}
	cmd, ok := adminCommands[args[0]]
	if !ok {
		adminUsage()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}

	fs := flag.NewFlagSet("admin "+args[0], flag.ContinueOnError)
	configFlag(fs)
	fs.StringVar(&cfg.StatePath, "state", cfg.StatePath, "local state database")
	fs.StringVar(&cfg.RelayURL, "relay", cfg.RelayURL, "sync server URL")
	run := cmd.flags(fs)
	if err := parseFlags(fs, args[1:]); err != nil {
		return err
	}

	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	s, err := openAdminSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.db.Close()
	return run(ctx, s)
}

func openAdminSession(ctx context.Context, cfg *config.Config) (*adminSession, error) {
	database, err := db.OpenWithSchema(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	token, _, err := store.GetSetting(ctx, database, store.SettingAdminToken)
	if err != nil {
		database.Close()
		return nil, err
	}
	client := relay.New(cfg.RelayURL, token)

	var host upload.Host
	if cfg.Cloudinary.URL != "" {
		c, err := upload.NewCloudinary(cfg.Cloudinary.URL, cfg.Cloudinary.Folder, cfg.Cloudinary.Preset)
		if err != nil {
			database.Close()
			return nil, err
		}
		host = c
	}

	ctl, err := admin.New(ctx, database, admin.Options{
		Uploads:   upload.NewService(host, slog.Default()),
		Publisher: client,
		Logger:    slog.Default(),
	})
	if err != nil {
		database.Close()
		return nil, err
	}
	return &adminSession{cfg: cfg, db: database, relay: client, ctl: ctl}, nil
}

// imageSource reads "@path" as a file to upload; anything else is a URL.
func imageSource(arg string) (admin.ImageSource, error) {
	path, isFile := strings.CutPrefix(arg, "@")
	if !isFile {
		return admin.FromURL(arg), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return admin.ImageSource{}, fmt.Errorf("reading image: %w", err)
	}
	return admin.FromAsset(filepath.Base(path), data), nil
}

func imageSources(args []string) ([]admin.ImageSource, error) {
	out := make([]admin.ImageSource, 0, len(args))
	for _, a := range args {
		src, err := imageSource(a)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func reportUploads(results []model.Result[string]) {
	for _, r := range results {
		if r.Status == model.StatusDegraded {
			fmt.Printf("warning: upload failed, kept a local preview that will not be published (%v)\n", r.Reason)
			fmt.Println("         run \"hobbyshop admin retry-uploads\" when the image host is reachable")
		}
	}
}

func adminLogin(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var username, password string
	fs.StringVar(&username, "user", "admin", "")
	fs.StringVar(&username, "u", "admin", "")
	fs.StringVar(&password, "password", os.Getenv("HOBBYSHOP_PASSWORD"), "")
	fs.StringVar(&password, "p", os.Getenv("HOBBYSHOP_PASSWORD"), "")
	return func(ctx context.Context, s *adminSession) error {
		token, err := s.relay.Login(ctx, username, password)
		if err != nil {
			return err
		}
		if err := store.SetSetting(ctx, s.db, store.SettingAdminToken, token); err != nil {
			return err
		}
		fmt.Println("Logged in.")
		return nil
	}
}

func adminLogout(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	return func(ctx context.Context, s *adminSession) error {
		if err := s.relay.Logout(ctx); err != nil {
			slog.Warn("server logout failed, forgetting token anyway", "error", err)
		}
		if err := store.DeleteSetting(ctx, s.db, store.SettingAdminToken); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}
}

func adminList(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	return func(ctx context.Context, s *adminSession) error {
		state := s.ctl.State()
		pending := map[string]bool{}
		for _, p := range s.ctl.Unpublishable() {
			pending[p.Ref] = true
		}
		mark := func(ref string) string {
			if pending[ref] {
				return "[not published] " + shorten(ref)
			}
			return ref
		}

		fmt.Printf("Products (%d):\n", len(state.Products))
		for _, id := range state.Products.IDs() {
			p := state.Products[id]
			fmt.Printf("  %s  %s  €%.2f  %s\n", id, p.Name, p.Price, p.Category)
			for _, img := range p.Images {
				fmt.Printf("      %s\n", mark(img))
			}
		}
		fmt.Printf("Banners (%d):\n", len(state.HeroSlides))
		for i, b := range state.HeroSlides {
			fmt.Printf("  %d  %s\n", i, mark(b))
		}
		fmt.Printf("Gallery (%d):\n", len(state.InspirationItems))
		for i, g := range state.InspirationItems {
			fmt.Printf("  %d  %s\n", i, mark(string(g)))
		}
		return nil
	}
}

func shorten(ref string) string {
	if len(ref) > 40 {
		return ref[:40] + "..."
	}
	return ref
}

func adminAddProduct(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var in admin.ProductInput
	var images stringList
	fs.StringVar(&in.Name, "name", "", "")
	fs.StringVar(&in.Description, "desc", "", "")
	fs.Float64Var(&in.Price, "price", 0, "")
	fs.StringVar(&in.Category, "category", "", "")
	fs.StringVar(&in.Extra, "extra", "", "")
	fs.Var(&images, "image", "image URL or @file (repeatable)")
	return func(ctx context.Context, s *adminSession) error {
		srcs, err := imageSources(images)
		if err != nil {
			return err
		}
		in.Images = srcs
		ch, err := s.ctl.AddProduct(ctx, in)
		if err != nil {
			return err
		}
		reportUploads(ch.Uploads)
		fmt.Printf("Product added: %s\n", ch.ID)
		return nil
	}
}

func adminEditProduct(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var id, name, desc, category, extra string
	var price float64
	var images stringList
	fs.StringVar(&id, "id", "", "")
	fs.StringVar(&name, "name", "", "")
	fs.StringVar(&desc, "desc", "", "")
	fs.Float64Var(&price, "price", 0, "")
	fs.StringVar(&category, "category", "", "")
	fs.StringVar(&extra, "extra", "", "")
	fs.Var(&images, "image", "replacement image URL or @file (repeatable)")
	return func(ctx context.Context, s *adminSession) error {
		var e admin.ProductEdit
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				e.Name = &name
			case "desc":
				e.Description = &desc
			case "price":
				e.Price = &price
			case "category":
				e.Category = &category
			case "extra":
				e.Extra = &extra
			}
		})
		if len(images) > 0 {
			srcs, err := imageSources(images)
			if err != nil {
				return err
			}
			e.Images = srcs
		}
		ch, err := s.ctl.EditProduct(ctx, id, e)
		if err != nil {
			return err
		}
		reportUploads(ch.Uploads)
		fmt.Printf("Product updated: %s\n", id)
		return nil
	}
}

func adminDeleteProduct(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var id string
	fs.StringVar(&id, "id", "", "")
	return func(ctx context.Context, s *adminSession) error {
		if err := s.ctl.DeleteProduct(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Product deleted: %s\n", id)
		return nil
	}
}

func adminAddBanner(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var image string
	fs.StringVar(&image, "image", "", "image URL or @file")
	return func(ctx context.Context, s *adminSession) error {
		src, err := imageSource(image)
		if err != nil {
			return err
		}
		res, err := s.ctl.AddBanner(ctx, src)
		if err != nil {
			return err
		}
		reportUploads([]model.Result[string]{res})
		fmt.Println("Banner added.")
		return nil
	}
}

func adminRemoveBanner(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var index int
	fs.IntVar(&index, "index", -1, "")
	return func(ctx context.Context, s *adminSession) error {
		if err := s.ctl.RemoveBanner(ctx, index); err != nil {
			return err
		}
		fmt.Println("Banner removed.")
		return nil
	}
}

func adminAddGallery(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var images stringList
	fs.Var(&images, "image", "image URL or @file (repeatable)")
	return func(ctx context.Context, s *adminSession) error {
		srcs, err := imageSources(images)
		if err != nil {
			return err
		}
		results, err := s.ctl.AddGalleryItems(ctx, srcs)
		if err != nil {
			return err
		}
		reportUploads(results)
		fmt.Printf("Gallery images added: %d\n", len(results))
		return nil
	}
}

func adminMoveGallery(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var index int
	var dir string
	fs.IntVar(&index, "index", -1, "")
	fs.StringVar(&dir, "dir", "up", "up or down")
	return func(ctx context.Context, s *adminSession) error {
		var d admin.Direction
		switch dir {
		case "up":
			d = admin.Up
		case "down":
			d = admin.Down
		default:
			return fmt.Errorf("unknown direction %q", dir)
		}
		return s.ctl.ReorderGalleryItem(ctx, index, d)
	}
}

func adminDeleteGallery(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var index int
	fs.IntVar(&index, "index", -1, "")
	return func(ctx context.Context, s *adminSession) error {
		if err := s.ctl.DeleteGalleryItem(ctx, index); err != nil {
			return err
		}
		fmt.Println("Gallery image deleted.")
		return nil
	}
}

func adminRetryUploads(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	return func(ctx context.Context, s *adminSession) error {
		fixed, remaining, err := s.ctl.RetryUploads(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded: %d, still unpublishable: %d\n", fixed, remaining)
		return nil
	}
}

func adminExport(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var target string
	fs.StringVar(&target, "o", "", "file or s3://bucket/key (default: stdout)")
	return func(ctx context.Context, s *adminSession) error {
		doc, err := s.ctl.ExportState()
		if err != nil {
			return err
		}
		if target == "" {
			_, err := os.Stdout.Write(doc)
			return err
		}
		sink, err := backup.Open(ctx, target, s.cfg.S3)
		if err != nil {
			return err
		}
		if err := sink.Write(ctx, doc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "State exported to %s\n", sink)
		return nil
	}
}

func adminImport(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	var source string
	fs.StringVar(&source, "i", "", "file or s3://bucket/key")
	return func(ctx context.Context, s *adminSession) error {
		sink, err := backup.Open(ctx, source, s.cfg.S3)
		if err != nil {
			return err
		}
		doc, err := sink.Read(ctx)
		if err != nil {
			return err
		}
		if err := s.ctl.ImportState(ctx, doc); err != nil {
			return err
		}
		fmt.Printf("State imported from %s\n", sink)
		return nil
	}
}

func adminPublish(fs *flag.FlagSet) func(context.Context, *adminSession) error {
	return func(ctx context.Context, s *adminSession) error {
		if n := len(s.ctl.Unpublishable()); n > 0 {
			fmt.Printf("warning: %d image(s) are local previews and will be left out\n", n)
		}
		rev, err := s.ctl.Publish(ctx)
		if errors.Is(err, model.ErrAuth) {
			if derr := store.DeleteSetting(ctx, s.db, store.SettingAdminToken); derr != nil {
				slog.Error("forgetting token", "error", derr)
			}
			return fmt.Errorf("%w; log in again with \"hobbyshop admin login\"", err)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Published. Commit: %s\n", rev.Short())
		return nil
	}
}
