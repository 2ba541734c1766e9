package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallfirma/fibua/internal/client"
	clientdomain "github.com/smallfirma/fibua/internal/client/domain"
	"github.com/smallfirma/fibua/internal/config"
	"github.com/smallfirma/fibua/internal/docnumber"
	"github.com/smallfirma/fibua/internal/export"
	"github.com/smallfirma/fibua/internal/invoice"
	invoicedomain "github.com/smallfirma/fibua/internal/invoice/domain"
	obslogger "github.com/smallfirma/fibua/internal/observability/logger"
	"github.com/smallfirma/fibua/internal/organization"
	organizationdomain "github.com/smallfirma/fibua/internal/organization/domain"
	"github.com/smallfirma/fibua/internal/product"
	productdomain "github.com/smallfirma/fibua/internal/product/domain"
	"github.com/smallfirma/fibua/internal/supplier"
	supplierdomain "github.com/smallfirma/fibua/internal/supplier/domain"
	"github.com/smallfirma/fibua/internal/tax"
	"github.com/smallfirma/fibua/internal/tenancy"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	tenancy.Module,
	tax.Module,
	organization.Module,
	client.Module,
	supplier.Module,
	product.Module,
	invoice.Module,
	docnumber.Module,
	export.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
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
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	organizationSvc organizationdomain.Service
	clientSvc       clientdomain.Service
	supplierSvc     supplierdomain.Service
	productSvc      productdomain.Service
	invoiceSvc      invoicedomain.Service
	exportSvc       *export.Service
	taxEngine       *tax.Engine
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	OrganizationSvc organizationdomain.Service
	ClientSvc       clientdomain.Service
	SupplierSvc     supplierdomain.Service
	ProductSvc      productdomain.Service
	InvoiceSvc      invoicedomain.Service
	ExportSvc       *export.Service
	TaxEngine       *tax.Engine
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		organizationSvc: p.OrganizationSvc,
		clientSvc:       p.ClientSvc,
		supplierSvc:     p.SupplierSvc,
		productSvc:      p.ProductSvc,
		invoiceSvc:      p.InvoiceSvc,
		exportSvc:       p.ExportSvc,
		taxEngine:       p.TaxEngine,
	}
	s.RegisterAPIRoutes()
	return s
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/v1")

	// Organization management is not tenant-scoped; everything else is.
	api.POST("/organizations", s.CreateOrganization)
	api.GET("/organizations", s.ListOrganizations)
	api.GET("/organizations/:id", s.GetOrganization)

	scoped := api.Group("", OrgContext())

	scoped.POST("/clients", s.CreateClient)
	scoped.GET("/clients", s.ListClients)
	scoped.GET("/clients/:id", s.GetClient)
	scoped.PUT("/clients/:id", s.UpdateClient)
	scoped.DELETE("/clients/:id", s.DeleteClient)
	scoped.POST("/clients/check-duplicates", s.CheckClientDuplicates)

	scoped.POST("/suppliers", s.CreateSupplier)
	scoped.GET("/suppliers", s.ListSuppliers)
	scoped.GET("/suppliers/:id", s.GetSupplier)
	scoped.PUT("/suppliers/:id", s.UpdateSupplier)
	scoped.DELETE("/suppliers/:id", s.DeleteSupplier)

	scoped.POST("/products", s.CreateProduct)
	scoped.GET("/products", s.ListProducts)
	scoped.GET("/products/:id", s.GetProduct)
	scoped.PUT("/products/:id", s.UpdateProduct)
	scoped.DELETE("/products/:id", s.DeleteProduct)

	scoped.POST("/invoices", s.CreateInvoice)
	scoped.GET("/invoices", s.ListInvoices)
	scoped.GET("/invoices/:id", s.GetInvoice)
	scoped.DELETE("/invoices/:id", s.DeleteInvoice)
	scoped.POST("/invoices/:id/finalize", s.FinalizeInvoice)
	scoped.POST("/invoices/:id/delivery-note", s.CreateDeliveryNote)
	scoped.POST("/invoices/:id/pay", s.MarkInvoicePaid)
	scoped.POST("/invoices/:id/cancel", s.CancelInvoice)
	scoped.GET("/invoices/:id/logs", s.ListInvoiceLogs)
	scoped.POST("/invoices/preview-tax", s.PreviewInvoiceTax)

	scoped.GET("/export/bookkeeping", s.RunBookkeepingExport)
}
