package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/apiclient"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

type serdes struct {
	clientSearch schema.Serde
	orderPlaced  schema.Serde
}

type coreService struct {
	session  *service.Session
	cart     *service.Cart
	feed     *service.Feed
	checkout *service.Checkout
	accounts *service.Accounts
	catalog  *service.Catalog
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	store      port.ClosableStateStore
	gateway    *apiclient.Client
	serdes     serdes
	producer   port.ClosableEventsProducer
	clientID   string
	service    coreService
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStateStore()
	app.initGateway()
	app.initSerdes()
	app.initOutboundAdapters()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStateStore() {
	const op = "App.initStateStore"
	state := app.cfg.State

	var (
		store port.ClosableStateStore
		err   error
	)
	switch state.Driver {
	case config.DriverMemory:
		store = storage.NewMemoryStore()
	case config.DriverFile:
		store, err = storage.NewFileStore(state.FilePath)
	case config.DriverRedis:
		store, err = storage.NewRedisStore(app.ctx, state.RedisAddr, state.Profile)
	case config.DriverPostgres:
		store, err = storage.NewSQLStore(app.ctx, state.SQLDSN, state.Profile)
	default:
		err = fmt.Errorf("unknown state driver %q", state.Driver)
	}
	if err != nil {
		app.fallDown(op, err)
	}

	clientID, err := service.ClientID(app.ctx, store)
	if err != nil {
		app.fallDown(op, err)
	}

	app.store = store
	app.clientID = clientID
}

func (app *App) initGateway() {
	const op = "App.initGateway"
	api := app.cfg.API

	gw, err := apiclient.New(
		api.BaseURL,
		apiclient.TimeoutOpt(api.Timeout),
		apiclient.BreakerOpt(api.Breaker.MaxFailures, api.Breaker.OpenTimeout),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.gateway = gw
}

func (app *App) initSerdes() {
	const op = "App.initSerdes"
	if !app.cfg.EventsEnabled() {
		return
	}

	ctx := app.ctx
	topic := app.cfg.Broker.Topics.ClientEvents

	identifier, err := schema.NewRegistryIdentifier(app.cfg.Broker.SchemaRegistryURLs)
	if err != nil {
		app.fallDown(op, err)
	}

	clientSearchSerde, err := schema.NewSerdeClientSearchV1(
		ctx,
		schema.SubjectOpt(schema.TopicRecordSubject(topic, schema.ClientSearchV1Avro())),
		schema.SchemaIdentifierOpt(identifier),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	orderPlacedSerde, err := schema.NewSerdeOrderPlacedV1(
		ctx,
		schema.SubjectOpt(schema.TopicRecordSubject(topic, schema.OrderPlacedV1Avro())),
		schema.SchemaIdentifierOpt(identifier),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	app.serdes.clientSearch = clientSearchSerde
	app.serdes.orderPlaced = orderPlacedSerde
}

func (app *App) initOutboundAdapters() {
	const op = "App.initOutboundAdapters"

	if !app.cfg.EventsEnabled() {
		slog.Info("no seed brokers configured, client events are not published")
		app.producer = kafka.NopProducer{}
		return
	}

	broker := app.cfg.Broker
	extra := []kgo.Opt{kgo.RecordDeliveryTimeout(broker.DeliveryTimeout)}
	if broker.TLS.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(
			broker.TLS.CAFile, broker.TLS.CertFile, broker.TLS.KeyFile,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		extra = append(extra, kgo.DialTLSConfig(tlsCfg))
	}

	eventsProducer, err := kafka.NewEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx, broker.SeedBrokers, broker.Topics.ClientEvents, extra...,
		),
		kafka.SearchEncoderOpt(app.serdes.clientSearch),
		kafka.OrderEncoderOpt(app.serdes.orderPlaced),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.producer = eventsProducer
}

func (app *App) initCoreService() {
	const op = "App.initCoreService"
	ctx := app.ctx
	gw := app.gateway

	session := service.NewSession(
		gw, app.store,
		service.RefreshTimeoutOpt(app.cfg.API.RefreshTimeout),
		service.SessionExpiredOpt(func() {
			slog.Warn("session expired, login is required")
		}),
	)
	if err := session.Rehydrate(ctx); err != nil {
		app.fallDown(op, err)
	}

	cart := service.NewCart(app.store)
	if err := cart.Load(ctx); err != nil {
		app.fallDown(op, err)
	}

	eventTimeout := service.EventTimeoutOpt(app.cfg.Broker.DeliveryTimeout)
	feed := service.NewFeed(gw, session, app.producer, app.clientID, eventTimeout)
	checkout := service.NewCheckout(
		cart, gw, gw, session, app.producer, app.clientID, eventTimeout,
	)

	app.service = coreService{
		session:  session,
		cart:     cart,
		feed:     feed,
		checkout: checkout,
		accounts: service.NewAccounts(gw, gw, session),
		catalog:  service.NewCatalog(gw, session),
	}
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	mux := http.NewServeMux()
	httphandler.RegisterSession(mux, app.service.session)
	httphandler.RegisterCart(mux, app.service.cart, app.service.catalog)
	httphandler.RegisterCatalog(mux, app.service.catalog)
	httphandler.RegisterFeed(mux, app.service.feed)
	httphandler.RegisterCheckout(mux, app.service.checkout)
	httphandler.RegisterAccount(mux, app.service.accounts)

	handler := httphandler.AllowMediaTypes(
		httphandler.MediaTypeJSON, httphandler.MediaTypeMultipart,
	)(mux)
	app.httpServer = httphandler.NewHTTPServer(
		addr, handler, app.cfg.HTTPHandlerTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running", "client_id", app.clientID)
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.producer.Close()
	app.store.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
