// Package server assembles the gin engine: middleware, public routes and the
// role-guarded route groups of every feature package.
package server

import (
	"database/sql"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "library-backend/internal/docs"
	"library-backend/internal/library/catalog"
	"library-backend/internal/library/circulation"
	"library-backend/internal/library/dashboard"
	"library-backend/internal/library/members"
	"library-backend/internal/platform/auth"
	"library-backend/internal/platform/config"
	"library-backend/internal/platform/httpx"
	"library-backend/internal/platform/observability"
)

// New builds the HTTP handler. conn is shared by every service.
func New(cfg *config.Config, log *logrus.Logger, conn *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		observability.RequestLogger(log),
		observability.Metrics(),
		httpx.ExposeErrors(!cfg.IsRelease()),
	)
	_ = r.SetTrustedProxies(nil)

	// CORS（開発中のみ必要）
	if !cfg.IsRelease() && len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", observability.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", observability.RequestIDHeader},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(observability.Handler()))
	if !cfg.IsRelease() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	accounts := auth.NewStore(conn)
	sessions := auth.NewSessionManager([]byte(cfg.Session.Secret), cfg.Session.Lifetime)
	authSvc := auth.NewService(accounts, sessions)
	auth.RegisterRoutes(r, authSvc,
		auth.CookieOptions{Name: cfg.Session.CookieName, Secure: cfg.IsRelease()},
		auth.NewLoginLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst),
	)

	catalogSvc := catalog.NewService(conn)
	circSvc := circulation.NewService(conn)
	memberSvc := members.NewService(conn, accounts)
	dashSvc := dashboard.NewService(conn)

	session := auth.RequireSession(sessions, cfg.Session.CookieName)
	guard := func(prefix string, roles ...auth.Role) *gin.RouterGroup {
		return r.Group(prefix, session, auth.RequireRole(roles...), auth.NoStore())
	}

	// ===== スタッフ (admin / employee) =====
	staff := guard("", auth.Staff...)
	catalog.RegisterStaffRoutes(staff, catalogSvc)
	members.RegisterStaffRoutes(staff, memberSvc)
	circulation.RegisterStaffReservationRoutes(staff, circSvc)
	circulation.RegisterIssueRoutes(staff.Group("/admin"), circSvc)
	circulation.RegisterIssueRoutes(staff.Group("/employee"), circSvc)

	// ===== ダッシュボード（ロールごとに1つ） =====
	dashboard.RegisterRoutes(guard("/admin", auth.RoleAdmin), dashSvc)
	dashboard.RegisterRoutes(guard("/employee", auth.RoleEmployee), dashSvc)

	// ===== 会員 =====
	member := guard("/member", auth.RoleMember)
	dashboard.RegisterRoutes(member, dashSvc)
	catalog.RegisterMemberRoutes(member, catalogSvc)
	circulation.RegisterMemberRoutes(member, circSvc)
	members.RegisterMemberRoutes(member, memberSvc)

	return r
}
