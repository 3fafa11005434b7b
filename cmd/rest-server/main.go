package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	esv7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/tasktrail/tasktrail-api/cmd/internal"
	internaldomain "github.com/tasktrail/tasktrail-api/internal"
	"github.com/tasktrail/tasktrail-api/internal/elasticsearch"
	"github.com/tasktrail/tasktrail-api/internal/envvar"
	"github.com/tasktrail/tasktrail-api/internal/kafka"
	"github.com/tasktrail/tasktrail-api/internal/memcached"
	"github.com/tasktrail/tasktrail-api/internal/postgresql"
	"github.com/tasktrail/tasktrail-api/internal/rabbitmq"
	"github.com/tasktrail/tasktrail-api/internal/redis"
	"github.com/tasktrail/tasktrail-api/internal/rest"
	"github.com/tasktrail/tasktrail-api/internal/service"
)

func main() {
	var env, address string

	flag.StringVar(&env, "env", "", "Environment Variables filename")
	flag.StringVar(&address, "address", ":9234", "HTTP Server Address")
	flag.Parse()

	errC, err := run(env, address)
	if err != nil {
		log.Fatalf("Couldn't run: %s", err)
	}

	if err := <-errC; err != nil {
		log.Fatalf("Error while running: %s", err)
	}
}

func run(env, address string) (<-chan error, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "zap.NewProduction")
	}

	if err := envvar.Load(env); err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "envvar.Load")
	}

	vault, err := internal.NewVaultProvider()
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewVaultProvider")
	}

	conf := envvar.New(vault)

	dsn, err := internal.PostgreSQLDSN(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.PostgreSQLDSN")
	}

	if err := postgresql.RunMigrations(dsn); err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "postgresql.RunMigrations")
	}

	pool, err := internal.NewPostgreSQL(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewPostgreSQL")
	}

	es, err := internal.NewElasticSearch(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewElasticSearch")
	}

	msgBroker, closeBroker, err := newMessageBroker(conf)
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "newMessageBroker")
	}

	promExporter, err := internal.NewOTExporter(conf, "tasktrail-rest-server")
	if err != nil {
		return nil, internaldomain.WrapErrorf(err, internaldomain.ErrorCodeUnknown, "internal.NewOTExporter")
	}

	logging := func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info(r.Method,
				zap.Time("time", time.Now()),
				zap.String("url", r.URL.String()),
			)

			h.ServeHTTP(w, r)
		})
	}

	srv, err := newServer(serverConfig{
		Address:       address,
		Conf:          conf,
		DB:            pool,
		ElasticSearch: es,
		MessageBroker: msgBroker,
		Metrics:       promExporter,
		Middlewares:   []func(next http.Handler) http.Handler{otelchi.Middleware("tasktrail-rest-server"), logging},
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("newServer %w", err)
	}

	errC := make(chan error, 1)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		defer func() {
			_ = logger.Sync()
			pool.Close()
			closeBroker()
			stop()
			cancel()
			close(errC)
		}()

		srv.SetKeepAlivesEnabled(false)

		if err := srv.Shutdown(ctxTimeout); err != nil {
			errC <- err
		}

		logger.Info("Shutdown completed")
	}()

	go func() {
		logger.Info("Listening and serving", zap.String("address", address))

		// "ListenAndServe always returns a non-nil error. After Shutdown or
		// Close, the returned error is ErrServerClosed."
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errC <- err
		}
	}()

	return errC, nil
}

// newMessageBroker selects the events publisher using the MESSAGE_BROKER
// environment variable, defaulting to RabbitMQ.
func newMessageBroker(conf *envvar.Configuration) (service.TaskMessageBrokerRepository, func(), error) {
	broker, err := conf.Get("MESSAGE_BROKER")
	if err != nil {
		broker = "rabbitmq"
	}

	switch broker {
	case "rabbitmq", "":
		rmq, err := internal.NewRabbitMQ(conf)
		if err != nil {
			return nil, nil, fmt.Errorf("internal.NewRabbitMQ %w", err)
		}

		return rabbitmq.NewTask(rmq.Channel), rmq.Close, nil
	case "kafka":
		producer, err := internal.NewKafkaProducer(conf)
		if err != nil {
			return nil, nil, fmt.Errorf("internal.NewKafkaProducer %w", err)
		}

		closer := func() {
			producer.Producer.Flush(5000)
			producer.Producer.Close()
		}

		return kafka.NewTask(producer.Producer, producer.Topic), closer, nil
	case "redis":
		rdb, err := internal.NewRedis(conf)
		if err != nil {
			return nil, nil, fmt.Errorf("internal.NewRedis %w", err)
		}

		closer := func() {
			_ = rdb.Close()
		}

		return redis.NewTask(rdb), closer, nil
	}

	return nil, nil, fmt.Errorf("unsupported message broker %q", broker)
}

type serverConfig struct {
	Address       string
	Conf          *envvar.Configuration
	DB            *pgxpool.Pool
	ElasticSearch *esv7.Client
	MessageBroker service.TaskMessageBrokerRepository
	Metrics       http.Handler
	Middlewares   []func(next http.Handler) http.Handler
	Logger        *zap.Logger
}

func newServer(conf serverConfig) (*http.Server, error) {
	router := chi.NewRouter()
	router.Use(render.SetContentType(render.ContentTypeJSON))

	for _, mw := range conf.Middlewares {
		router.Use(mw)
	}

	pgTask := postgresql.NewTask(conf.DB)
	pgLabel := postgresql.NewLabel(conf.DB)

	var (
		taskRepo  service.TaskRepository  = pgTask
		labelRepo service.LabelRepository = pgLabel
	)

	// Decorating the datastores is opt-in. Both go together: cached tasks
	// embed their labels, so label mutations must invalidate them.
	if host, _ := conf.Conf.Get("MEMCACHED_HOST"); host != "" {
		client, err := internal.NewMemcached(conf.Conf)
		if err != nil {
			return nil, fmt.Errorf("internal.NewMemcached %w", err)
		}

		taskRepo = memcached.NewTask(client, pgTask, conf.Logger)
		labelRepo = memcached.NewLabel(client, pgLabel, pgTask, conf.Logger)
	}

	search := elasticsearch.NewTask(conf.ElasticSearch)

	taskSvc := service.NewTask(conf.Logger, taskRepo, search, conf.MessageBroker)
	labelSvc := service.NewLabel(conf.Logger, labelRepo, pgTask)

	rest.RegisterOpenAPI(router)
	rest.RegisterHealth(router)
	rest.NewTaskHandler(taskSvc).Register(router)
	rest.NewLabelHandler(labelSvc).Register(router)

	router.Handle("/metrics", conf.Metrics)

	lmt := tollbooth.NewLimiter(3, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Second})
	lmtmw := tollbooth.LimitHandler(lmt, router)

	return &http.Server{
		Handler:           lmtmw,
		Addr:              conf.Address,
		ReadTimeout:       1 * time.Second,
		ReadHeaderTimeout: 1 * time.Second,
		WriteTimeout:      1 * time.Second,
		IdleTimeout:       1 * time.Second,
	}, nil
}
