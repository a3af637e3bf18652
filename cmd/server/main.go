package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/savethebee/honeyweb/internal/config"
	"github.com/savethebee/honeyweb/internal/email"
	"github.com/savethebee/honeyweb/internal/handlers"
	"github.com/savethebee/honeyweb/internal/hub"
	"github.com/savethebee/honeyweb/internal/jobs"
	"github.com/savethebee/honeyweb/internal/metrics"
	"github.com/savethebee/honeyweb/internal/service"
	"github.com/savethebee/honeyweb/internal/store"
	"github.com/savethebee/honeyweb/web"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	handlerOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	if cfg.IsProduction() {
		handlerOpts.Level = slog.LevelInfo
		logHandler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))

	// 2. Init DB
	db, err := store.NewStore(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// A production instance keeps serving so /health can report the outage.
	if err := db.MigrateWithRetry(context.Background(), cfg.MigrationAttempts, cfg.MigrationDelay); err != nil {
		if !cfg.IsProduction() {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Error("Migrations failed, continuing without them", "error", err)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(web.Templates()); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 5. Services
	sender, err := email.NewSender(cfg)
	if err != nil {
		slog.Error("Failed to configure mail transport", "error", err)
		os.Exit(1)
	}
	notifier, err := email.NewNotifier(sender, cfg.AdminEmail, cfg.BaseURL)
	if err != nil {
		slog.Error("Failed to load email templates", "error", err)
		os.Exit(1)
	}

	cartHub := hub.New("cart")
	orderHub := hub.New("order")

	users := &service.UserService{Store: db, Policy: service.PolicyFromConfig(cfg)}
	catalog := &service.CatalogService{Store: db}
	beekeepers := &service.BeekeeperService{Store: db}
	posts := &service.PostService{Store: db}
	carts := &service.CartService{Store: db, Hub: cartHub}
	orders := &service.OrderService{Store: db, Notifier: notifier, Orders: orderHub, Carts: cartHub}
	fortunes := &service.FortuneService{Store: db}
	health := &service.HealthService{Store: db}
	newsletter := &service.NewsletterService{
		Store:    db,
		Notifier: notifier,
		Secret:   cfg.NewsletterSecret,
		BaseURL:  cfg.BaseURL,
	}

	uploads, err := handlers.NewUploader(cfg.UploadDir)
	if err != nil {
		slog.Error("Failed to prepare upload directory", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	scheduler := jobs.NewScheduler(db, jobs.DefaultFortuneRetention)
	if err := scheduler.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// 6. Setup Handlers
	base := &handlers.Base{SessionStore: sessionStore, Templates: templates}

	homeHandler := &handlers.HomeHandler{
		Base:     base,
		Catalog:  catalog,
		Posts:    posts,
		Orders:   orders,
		Fortunes: fortunes,
		Notifier: notifier,
	}
	userHandler := &handlers.UserHandler{Base: base, Users: users, Uploads: uploads}
	newsletterHandler := &handlers.NewsletterHandler{Base: base, Newsletter: newsletter}
	cartHandler := &handlers.CartHandler{Base: base, Carts: carts, Orders: orders, Users: users}
	catalogHandler := &handlers.CatalogHandler{Base: base, Catalog: catalog, Beekeepers: beekeepers, Uploads: uploads}
	beekeeperHandler := &handlers.BeekeeperHandler{Base: base, Beekeepers: beekeepers, Uploads: uploads}
	postHandler := &handlers.PostHandler{Base: base, Posts: posts}
	healthHandler := &handlers.HealthHandler{Health: health}
	adminHandler := &handlers.AdminHandler{
		Base:       base,
		Store:      db,
		Orders:     orders,
		Catalog:    catalog,
		Posts:      posts,
		Users:      users,
		Newsletter: newsletter,
		Uploads:    uploads,
	}

	limiterCtx, stopLimiter := context.WithCancel(context.Background())
	defer stopLimiter()
	rateLimiter := handlers.NewRateLimiter(limiterCtx, 10*time.Second, 5)

	mux := http.NewServeMux()

	// Static Files
	staticFiles := web.Static()
	if cfg.StaticDir != "" {
		// Serve assets from disk while editing them.
		staticFiles = os.DirFS(cfg.StaticDir)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static", http.FileServerFS(staticFiles)))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads", http.FileServer(http.Dir(cfg.UploadDir))))
	mux.Handle("GET /metrics", metrics.Handler())

	// Home
	mux.HandleFunc("GET /{$}", homeHandler.Index)
	mux.HandleFunc("GET /Home/Index", homeHandler.Index)
	mux.HandleFunc("GET /Home/Contact", homeHandler.Contact)
	mux.HandleFunc("POST /Home/SendEmail", rateLimiter.Middleware(homeHandler.SendEmail))
	mux.HandleFunc("GET /Home/GetOrderFormData", homeHandler.GetOrderFormData)
	mux.HandleFunc("POST /Home/PlaceOrderFromHomepage", rateLimiter.Middleware(homeHandler.PlaceOrderFromHomepage))
	mux.HandleFunc("GET /Home/Fortune", homeHandler.Fortune)
	mux.HandleFunc("GET /Home/Error", homeHandler.Error)

	// Catalog
	mux.HandleFunc("GET /Honey/All", catalogHandler.AllHoneys)
	mux.HandleFunc("GET /Honey/Details/{id}", catalogHandler.HoneyDetails)
	mux.HandleFunc("GET /Honey/Add", base.RequireUser(catalogHandler.AddHoneyGet))
	mux.HandleFunc("POST /Honey/Add", base.RequireUser(catalogHandler.AddHoneyPost))
	mux.HandleFunc("GET /Honey/Edit/{id}", base.RequireUser(catalogHandler.EditHoneyGet))
	mux.HandleFunc("POST /Honey/Edit/{id}", base.RequireUser(catalogHandler.EditHoneyPost))
	mux.HandleFunc("POST /Honey/Delete/{id}", base.RequireUser(catalogHandler.DeleteHoney))
	mux.HandleFunc("GET /Propolis/All", catalogHandler.AllPropolises)
	mux.HandleFunc("GET /Propolis/Details/{id}", catalogHandler.PropolisDetails)
	mux.HandleFunc("GET /Propolis/Add", base.RequireUser(catalogHandler.AddPropolisGet))
	mux.HandleFunc("POST /Propolis/Add", base.RequireUser(catalogHandler.AddPropolisPost))
	mux.HandleFunc("GET /Propolis/Edit/{id}", base.RequireUser(catalogHandler.EditPropolisGet))
	mux.HandleFunc("POST /Propolis/Edit/{id}", base.RequireUser(catalogHandler.EditPropolisPost))
	mux.HandleFunc("POST /Propolis/Delete/{id}", base.RequireUser(catalogHandler.DeletePropolis))
	mux.HandleFunc("GET /BeePollen/All", catalogHandler.AllBeePollens)
	mux.HandleFunc("GET /BeePollen/Add", base.RequireUser(catalogHandler.AddBeePollenGet))
	mux.HandleFunc("POST /BeePollen/Add", base.RequireUser(catalogHandler.AddBeePollenPost))
	mux.HandleFunc("POST /BeePollen/Delete/{id}", base.RequireAdmin(catalogHandler.DeleteBeePollen))

	// Beekeepers
	mux.HandleFunc("GET /Beekeeper/Become", base.RequireUser(beekeeperHandler.BecomeGet))
	mux.HandleFunc("POST /Beekeeper/Become", base.RequireUser(beekeeperHandler.BecomePost))
	mux.HandleFunc("GET /Beekeeper/Profile/{id}", beekeeperHandler.Profile)
	mux.HandleFunc("GET /Beekeeper/All", beekeeperHandler.All)
	mux.HandleFunc("GET /Beekeeper/Map", beekeeperHandler.Map)

	// Accounts and newsletter
	mux.HandleFunc("GET /User/Register", userHandler.RegisterGet)
	mux.HandleFunc("POST /User/Register", rateLimiter.Middleware(userHandler.RegisterPost))
	mux.HandleFunc("GET /User/Login", userHandler.LoginGet)
	mux.HandleFunc("POST /User/Login", rateLimiter.Middleware(userHandler.LoginPost))
	mux.HandleFunc("GET /User/Logout", userHandler.Logout)
	mux.HandleFunc("POST /User/SubscribeNewsletter", newsletterHandler.Subscribe)
	mux.HandleFunc("POST /User/UnsubscribeNewsletter", newsletterHandler.Unsubscribe)
	mux.HandleFunc("GET /User/Unsubscribe", newsletterHandler.UnsubscribeLink)

	// Cart and orders
	mux.HandleFunc("GET /User/Cart", base.RequireUser(cartHandler.Cart))
	mux.HandleFunc("POST /User/AddToCart", base.RequireUser(cartHandler.AddToCart))
	mux.HandleFunc("POST /User/RemoveFromCart", base.RequireUser(cartHandler.RemoveFromCart))
	mux.HandleFunc("POST /User/ClearCart", base.RequireUser(cartHandler.ClearCart))
	mux.HandleFunc("POST /User/UpdateCartItem", base.RequireUser(cartHandler.UpdateCartItem))
	mux.HandleFunc("POST /User/PlaceOrder", base.RequireUser(rateLimiter.Middleware(cartHandler.PlaceOrder)))
	mux.HandleFunc("GET /User/Orders", base.RequireUser(cartHandler.UserOrders))
	mux.HandleFunc("GET /User/Orders/{id}/receipt", base.RequireUser(cartHandler.Receipt))

	// Blog
	mux.HandleFunc("GET /Post/All", postHandler.All)
	mux.HandleFunc("GET /Post/Details/{id}", postHandler.Details)
	mux.HandleFunc("POST /Post/Comment/{id}", base.RequireUser(postHandler.AddComment))
	mux.HandleFunc("POST /Post/Comment/{id}/Delete", base.RequireUser(postHandler.DeleteComment))

	// Admin
	mux.HandleFunc("GET /Admin", base.RequireAdmin(adminHandler.Dashboard))
	mux.HandleFunc("GET /Admin/Orders", base.RequireAdmin(adminHandler.ListOrders))
	mux.HandleFunc("POST /Admin/Orders/Status", base.RequireAdmin(adminHandler.UpdateOrderStatus))
	mux.HandleFunc("GET /Admin/Orders/Export", base.RequireAdmin(adminHandler.ExportOrders))
	mux.HandleFunc("GET /Admin/Orders/{id}/receipt", base.RequireAdmin(adminHandler.OrderReceipt))
	mux.HandleFunc("GET /Admin/Honeys", base.RequireAdmin(adminHandler.ListHoneys))
	mux.HandleFunc("POST /Admin/Honeys/Toggle", base.RequireAdmin(adminHandler.ToggleHoney))
	mux.HandleFunc("GET /Admin/Posts", base.RequireAdmin(adminHandler.ListPosts))
	mux.HandleFunc("POST /Admin/Posts", base.RequireAdmin(adminHandler.CreatePost))
	mux.HandleFunc("POST /Admin/Posts/Delete", base.RequireAdmin(adminHandler.DeletePost))
	mux.HandleFunc("GET /Admin/Subscribers", base.RequireAdmin(adminHandler.ListSubscribers))
	mux.HandleFunc("POST /Admin/Newsletter", base.RequireAdmin(adminHandler.SendNewsletter))
	mux.HandleFunc("GET /Admin/Users", base.RequireAdmin(adminHandler.ListUsers))

	// Health
	mux.HandleFunc("GET /ping", healthHandler.Ping)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.HealthStatus)
	mux.HandleFunc("GET /Health/DatabaseStatus", healthHandler.DatabaseStatus)

	// Live updates
	mux.HandleFunc("GET /cartHub", cartHub.ServeWS(base.Identify))
	mux.HandleFunc("GET /orderHub", orderHub.ServeWS(base.IdentifyAdmin))

	// Anything else lands on the not-found page.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/Home/Error?statusCode=404", http.StatusSeeOther)
	})

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Metrics -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		metrics.InstrumentHandler(
			handlers.SecurityHeadersMiddleware(
				CSRF(mux),
			),
		),
	)
	if cfg.TrustProxyHeaders {
		handler = handlers.ProxyHeadersMiddleware(handler)
	}

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "driver", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	cartHub.Close()
	orderHub.Close()
	scheduler.Stop(ctx)
	if err := notifier.Wait(ctx); err != nil {
		slog.Warn("Pending emails were not delivered", "error", err)
	}

	slog.Info("Server exited gracefully.")
}
