package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/faktura/internal/observability/metrics"
	"github.com/smallbiznis/faktura/internal/ratelimit"
	referencedomain "github.com/smallbiznis/faktura/internal/reference/domain"
	reminderdomain "github.com/smallbiznis/faktura/internal/reminder/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(obsmetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger) *gin.Engine {
	return NewEngine(log)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
	reminderSvc   reminderdomain.Service
	referenceRepo referencedomain.Repository
	limiter       *ratelimit.APILimiter
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	CustomerSvc customerdomain.Service
	InvoiceSvc  invoicedomain.Service
	ReminderSvc   reminderdomain.Service
	ReferenceRepo referencedomain.Repository `optional:"true"`
	Limiter       *ratelimit.APILimiter      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		customerSvc: p.CustomerSvc,
		invoiceSvc:  p.InvoiceSvc,
		reminderSvc:   p.ReminderSvc,
		referenceRepo: p.ReferenceRepo,
		limiter:       p.Limiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.OrgContext())
	api.Use(s.RateLimit())

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PATCH("/invoices/:id", s.UpdateInvoice)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.POST("/invoices/:id/send", s.SendInvoice)
	api.POST("/invoices/:id/pay", s.MarkInvoicePaid)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)
	api.GET("/invoices/:id/pdf", s.RenderInvoicePDF)
	api.POST("/invoices/check-overdue", s.CheckOverdueInvoices)

	// -------- Reminders --------
	api.GET("/reminders/settings", s.GetReminderSettings)
	api.PUT("/reminders/settings", s.UpdateReminderSettings)
	api.POST("/reminders/run", s.RunReminders)

	// -------- Reference data --------
	if s.referenceRepo != nil {
		api.GET("/reference/currencies", s.ListCurrencies)
		api.GET("/reference/countries", s.ListCountries)
	}
}
