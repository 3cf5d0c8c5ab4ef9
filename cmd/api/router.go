package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/cresol/hub-api/internal/authz"
	"github.com/cresol/hub-api/internal/config"
	"github.com/cresol/hub-api/internal/domain/audit"
	"github.com/cresol/hub-api/internal/domain/banner"
	"github.com/cresol/hub-api/internal/domain/collection"
	"github.com/cresol/hub-api/internal/domain/content"
	"github.com/cresol/hub-api/internal/domain/feed"
	"github.com/cresol/hub-api/internal/domain/gallery"
	"github.com/cresol/hub-api/internal/domain/indicator"
	"github.com/cresol/hub-api/internal/domain/notification"
	"github.com/cresol/hub-api/internal/domain/profile"
	"github.com/cresol/hub-api/internal/domain/reference"
	"github.com/cresol/hub-api/internal/domain/sector"
	"github.com/cresol/hub-api/internal/domain/systemlink"
	"github.com/cresol/hub-api/internal/domain/upload"
	"github.com/cresol/hub-api/internal/domain/user"
	"github.com/cresol/hub-api/internal/domain/video"
	"github.com/cresol/hub-api/internal/middleware"
	"github.com/cresol/hub-api/internal/pkg/cache"
	"github.com/cresol/hub-api/internal/pkg/imaging"
	"github.com/cresol/hub-api/internal/pkg/jwt"
	"github.com/cresol/hub-api/internal/pkg/realtime"
	pkgresponse "github.com/cresol/hub-api/internal/pkg/response"
	"github.com/cresol/hub-api/internal/pkg/retry"
	"github.com/cresol/hub-api/internal/pkg/storage"
	"github.com/cresol/hub-api/internal/pkg/supabase"
	"github.com/cresol/hub-api/internal/pkg/youtube"
)

// app holds everything the router needs. Building it has no side effects;
// background work is started by main.
type app struct {
	cfg   *config.Config
	auth  *middleware.Authenticator
	hub   *realtime.Hub
	files http.Handler

	scopes       *authz.Scopes
	cleaner      *storage.Cleaner
	notifCleanup *notification.CleanupJob

	profileHandler      *profile.Handler
	userHandler         *user.Handler
	sectorHandler       *sector.Handler
	sectorContent       *content.Handler
	subsectorContent    *content.Handler
	galleryHandler      *gallery.Handler
	bannerHandler       *banner.Handler
	videoHandler        *video.Handler
	videoUpload         http.HandlerFunc
	collectionHandler   *collection.Handler
	indicatorHandler    *indicator.Handler
	systemLinkHandler   *systemlink.Handler
	referenceHandler    *reference.Handler
	notificationHandler *notification.Handler
	feedHandler         *feed.Handler
	auditHandler        *audit.Handler
}

// newApp wires repositories, services and handlers. rdb may be nil.
func newApp(cfg *config.Config, db *sqlx.DB, rdb *redis.Client, store storage.ObjectStore) *app {
	a := &app{cfg: cfg}

	// ---------- Infrastructure ----------
	var queue storage.OrphanQueue = storage.NewMemoryQueue()
	if rdb != nil {
		queue = storage.NewRedisQueue(rdb)
	}
	a.cleaner = storage.NewCleaner(store, queue)
	readCache := cache.New(rdb, cfg.CacheTTL)
	a.hub = realtime.NewHub(rdb)

	var thumbs youtube.Resolver = youtube.Static{}
	if cfg.ProbeYouTubeThumbnails {
		thumbs = youtube.NewProber(&http.Client{Timeout: 5 * time.Second}, retry.Default)
	}

	authClient := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, 10*time.Second)

	// ---------- Repositories ----------
	profileRepo := profile.NewRepository(db)
	auditRepo := audit.NewRepository(db)
	sectorRepo := sector.NewRepository(db)
	sectorContentRepo := content.NewRepository(db, content.SectorScope)
	subsectorContentRepo := content.NewRepository(db, content.SubsectorScope)
	galleryRepo := gallery.NewRepository(db)
	bannerRepo := banner.NewRepository(db)
	videoRepo := video.NewRepository(db)
	collectionRepo := collection.NewRepository(db)
	indicatorRepo := indicator.NewRepository(db)
	systemLinkRepo := systemlink.NewRepository(db)
	referenceRepo := reference.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	feedRepo := feed.NewRepository(db)

	// ---------- Services ----------
	a.scopes = authz.NewScopes(sectorRepo)
	profileSvc := profile.NewService(profileRepo)
	auditSvc := audit.NewService(auditRepo)
	uploadSvc := upload.NewService(a.cleaner, imaging.NewProcessor(imaging.DefaultConfig()))

	sectorSvc := sector.NewService(sectorRepo, a.scopes, a.cleaner, auditSvc, a.hub)
	sectorContentSvc := content.NewService(content.SectorScope, sectorContentRepo, a.scopes, a.cleaner, a.hub, thumbs).WithCache(readCache)
	subsectorContentSvc := content.NewService(content.SubsectorScope, subsectorContentRepo, a.scopes, a.cleaner, a.hub, thumbs).WithCache(readCache)
	gallerySvc := gallery.NewService(galleryRepo, a.scopes, uploadSvc, a.cleaner, readCache, a.hub)
	bannerSvc := banner.NewService(bannerRepo, uploadSvc, a.cleaner, readCache, a.hub)
	videoSvc := video.NewService(videoRepo, a.cleaner, readCache, a.hub, thumbs)
	collectionSvc := collection.NewService(collectionRepo, readCache, a.hub)
	indicatorSvc := indicator.NewService(indicatorRepo, readCache, a.hub)
	systemLinkSvc := systemlink.NewService(systemLinkRepo, readCache, a.hub)
	referenceSvc := reference.NewService(referenceRepo, readCache, a.hub)
	userSvc := user.NewService(profileRepo, authClient, auditSvc)
	notificationSvc := notification.NewService(notificationRepo, notification.NewWSPublisher(a.hub), auditSvc)
	a.notifCleanup = notification.NewCleanupJob(notificationRepo, cfg.NotificationRetentionDays)
	feedSvc := feed.NewService(feedRepo, feed.Sources{
		Banners:     bannerSvc,
		Videos:      videoSvc,
		Gallery:     gallerySvc,
		Indicators:  indicatorSvc,
		SystemLinks: systemLinkSvc,
	}, readCache)

	// ---------- Auth ----------
	var verifier middleware.TokenVerifier
	if cfg.RemoteAuth() {
		verifier = middleware.NewRemoteVerifier(authClient)
	} else {
		verifier = middleware.NewJWTVerifier(jwt.NewService(cfg.SupabaseJWTSecret))
	}
	a.auth = middleware.NewAuthenticator(verifier, profileSvc, cfg.AuthCookieName)

	// ---------- Handlers ----------
	a.profileHandler = profile.NewHandler(profileSvc)
	a.userHandler = user.NewHandler(userSvc)
	a.sectorHandler = sector.NewHandler(sectorSvc)
	a.sectorContent = content.NewHandler(sectorContentSvc)
	a.subsectorContent = content.NewHandler(subsectorContentSvc)
	a.galleryHandler = gallery.NewHandler(gallerySvc)
	a.bannerHandler = banner.NewHandler(bannerSvc)
	a.videoHandler = video.NewHandler(videoSvc)
	a.videoUpload = upload.NewHandler(uploadSvc).Upload(upload.Request{Bucket: storage.BucketVideos, Prefix: "videos"})
	a.collectionHandler = collection.NewHandler(collectionSvc)
	a.indicatorHandler = indicator.NewHandler(indicatorSvc)
	a.systemLinkHandler = systemlink.NewHandler(systemLinkSvc)
	a.referenceHandler = reference.NewHandler(referenceSvc)
	a.notificationHandler = notification.NewHandler(notificationSvc)
	a.feedHandler = feed.NewHandler(feedSvc)
	a.auditHandler = audit.NewHandler(auditSvc)

	if local, ok := store.(*storage.LocalStore); ok {
		a.files = http.StripPrefix("/files", http.FileServer(http.Dir(local.BasePath())))
	}
	return a
}

func (a *app) router() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(a.cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{"status": "ok"})
	})

	// Locally stored uploads; S3 serves its own public URLs.
	if a.files != nil {
		r.Handle("/files/*", a.files)
	}

	r.With(a.auth.Middleware).Handle("/ws", realtime.NewHandler(a.hub, a.cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(a.auth.Middleware)

			r.Mount("/me", a.profileHandler.Routes())
			r.Mount("/feed", a.feedHandler.Routes())
			r.Mount("/banners", a.bannerHandler.Routes())
			r.Mount("/gallery", a.galleryHandler.Routes())
			r.Mount("/videos", a.videoHandler.Routes())
			r.Mount("/collections", a.collectionHandler.Routes())
			r.Mount("/indicators", a.indicatorHandler.Routes())
			r.Mount("/system-links", a.systemLinkHandler.Routes())
			r.Mount("/notifications", a.notificationHandler.Routes())
			a.referenceHandler.Routes(r)

			r.Mount("/sectors", a.sectorHandler.Routes(a.sectorContent.PublicRoutes()))
			r.Mount("/subsectors", a.sectorHandler.SubsectorRoutes(
				a.subsectorContent.PublicRoutes(),
				a.galleryHandler.SubsectorRoutes(),
			))
		})

		r.Route("/admin", func(r chi.Router) {
			// The admin token may arrive in the body for this one route.
			r.Method(http.MethodPost, "/create-user", a.userHandler.CreateUserRoute(a.auth.WithBodyToken("adminToken")))

			r.Group(func(r chi.Router) {
				r.Use(a.auth.Middleware)
				r.Use(authz.RequireStaff)

				r.Mount("/sectors", a.sectorHandler.AdminRoutes(a.sectorContent.AdminRoutes(a.scopes)))
				r.Mount("/subsectors", a.sectorHandler.AdminSubsectorRoutes(a.scopes,
					a.subsectorContent.AdminRoutes(a.scopes),
					a.galleryHandler.SubsectorAdminRoutes(a.scopes),
				))
				r.Mount("/banners", a.bannerHandler.AdminRoutes())
				r.Mount("/gallery", a.galleryHandler.AdminRoutes())
				r.Mount("/videos", a.videoHandler.AdminRoutes(a.videoUpload))
				r.Mount("/indicators", a.indicatorHandler.AdminRoutes())
				r.Mount("/system-links", a.systemLinkHandler.AdminRoutes())
				a.referenceHandler.AdminRoutes(r)

				r.Mount("/users", a.userHandler.Routes())
				r.Method(http.MethodPost, "/update-user-role", a.userHandler.UpdateRoleRoute())
				r.Mount("/notification-groups", a.notificationHandler.GroupRoutes())
				r.Mount("/notifications", a.notificationHandler.AdminRoutes())
				r.With(authz.Require(authz.Audit, authz.Read)).Mount("/audit", a.auditHandler.Routes())
			})
		})
	})

	return r
}
