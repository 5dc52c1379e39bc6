package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloudops-dev/cloudops/pkg/api"
	"github.com/cloudops-dev/cloudops/pkg/audit"
	"github.com/cloudops-dev/cloudops/pkg/storage"
	"github.com/cloudops-dev/cloudops/pkg/system"
	"github.com/cloudops-dev/cloudops/pkg/telemetry"
	"github.com/cloudops-dev/cloudops/pkg/version"
)

type serveOptions struct {
	listen        string
	redisAddr     string
	redisPassword string
	redisDB       int
	sessionTTL    time.Duration
	assetsDir     string
	debug         bool
	secureCookie  bool

	otelExporter     string
	otelEndpoint     string
	otelInsecure     bool
	otelSamplingRate float64

	auditKafkaBrokers       []string
	auditKafkaTopic         string
	auditKafkaTLS           bool
	auditKafkaSASLMechanism string
	auditKafkaUsername      string
	auditKafkaPassword      string
	auditWebhookURL         string
}

// EnvAuditKafkaPassword holds the SASL password so it stays out of the process list.
const EnvAuditKafkaPassword = "CLOUDOPS_AUDIT_KAFKA_PASSWORD"

func NewServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console in a browser with server-side sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg, err := rt.AuthConfig()
			if err != nil {
				return err
			}
			// the server logs requests at info, so it does not follow the CLI's warn default
			log, err := system.NewLogger(opts.debug || rt.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			slog := log.Sugar()

			if err := cfg.Validate(); err != nil {
				slog.Warnw("Login is not configured, /login will report the missing values", "error", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, shutdownTracing, err := telemetry.Init(ctx, telemetry.Options{
				Enabled:        opts.otelExporter != "",
				ServiceName:    telemetry.DefaultServiceName,
				ServiceVersion: version.Version,
				Exporter:       opts.otelExporter,
				Endpoint:       opts.otelEndpoint,
				Insecure:       opts.otelInsecure,
				SamplingRate:   opts.otelSamplingRate,
				Logger:         slog,
			})
			if err != nil {
				return err
			}
			defer func() {
				// ctx is already cancelled once the server stopped
				if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
					slog.Warnw("Failed to flush traces", "error", err)
				}
			}()

			serverCfg := api.ServerConfig{
				Auth:         cfg,
				Log:          log,
				Debug:        opts.debug,
				AssetsDir:    opts.assetsDir,
				SessionTTL:   opts.sessionTTL,
				SecureCookie: opts.secureCookie,
				HTTPClient:   rt.httpClient,
			}
			if rt.cfg != nil {
				serverCfg.VerifierLength = rt.cfg.Settings.VerifierLength
			}
			if opts.redisAddr != "" {
				client, err := storage.DialRedis(ctx, opts.redisAddr, opts.redisPassword, opts.redisDB)
				if err != nil {
					return err
				}
				defer func() { _ = client.Close() }()
				serverCfg.Sessions = storage.NewRedis(client, storage.DefaultRedisPrefix, opts.sessionTTL)
				slog.Infow("Using redis session storage", "address", opts.redisAddr)
			}

			opts.auditKafkaPassword = os.Getenv(EnvAuditKafkaPassword)
			sink, err := buildAuditSink(opts, log)
			if err != nil {
				return err
			}
			serverCfg.Audit = sink

			server := api.NewServer(serverCfg)
			defer server.Close()

			_, _ = fmt.Fprintf(rt.Writer(), "Serving CloudOps console on http://%s\n", opts.listen)
			return server.Run(ctx, opts.listen)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", api.DefaultListenAddress, "Address to listen on")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Redis address for shared session storage (default in-memory)")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", api.DefaultSessionTTL, "Idle lifetime of a visitor session")
	cmd.Flags().StringVar(&opts.assetsDir, "assets-dir", "", "Directory served under /assets")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Debug logging and permissive CORS")
	cmd.Flags().BoolVar(&opts.secureCookie, "secure-cookie", false, "Mark the session cookie Secure (use behind TLS)")
	cmd.Flags().StringVar(&opts.otelExporter, "otel-exporter", "", "Trace exporter: otlp, stdout or none (tracing is off when empty)")
	cmd.Flags().StringVar(&opts.otelEndpoint, "otel-endpoint", "", "OTLP/HTTP collector endpoint")
	cmd.Flags().BoolVar(&opts.otelInsecure, "otel-insecure", false, "Use plain HTTP for the OTLP collector")
	cmd.Flags().Float64Var(&opts.otelSamplingRate, "otel-sampling-rate", 1.0, "Fraction of requests to trace")
	cmd.Flags().StringSliceVar(&opts.auditKafkaBrokers, "audit-kafka-brokers", nil, "Kafka brokers receiving audit events")
	cmd.Flags().StringVar(&opts.auditKafkaTopic, "audit-kafka-topic", audit.DefaultKafkaTopic, "Kafka topic for audit events")
	cmd.Flags().BoolVar(&opts.auditKafkaTLS, "audit-kafka-tls", false, "Connect to the audit Kafka brokers over TLS")
	cmd.Flags().StringVar(&opts.auditKafkaSASLMechanism, "audit-kafka-sasl-mechanism", "",
		"SASL mechanism for the audit Kafka brokers: PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512 (password from "+EnvAuditKafkaPassword+")")
	cmd.Flags().StringVar(&opts.auditKafkaUsername, "audit-kafka-username", "", "SASL username for the audit Kafka brokers")
	cmd.Flags().StringVar(&opts.auditWebhookURL, "audit-webhook-url", "", "URL receiving audit events as JSON POSTs")
	return cmd
}

// buildAuditSink always logs audit events and fans out to Kafka and a webhook
// when configured. Remote sinks are queued so a slow broker never stalls a login.
func buildAuditSink(opts serveOptions, log *zap.Logger) (audit.Sink, error) {
	sinks := []audit.Sink{audit.NewLogSink(log)}
	queued := audit.DefaultQueuedSinkConfig()
	if len(opts.auditKafkaBrokers) > 0 {
		mechanism := strings.ToUpper(opts.auditKafkaSASLMechanism)
		if mechanism != "" && opts.auditKafkaUsername == "" {
			return nil, fmt.Errorf("--audit-kafka-username is required with --audit-kafka-sasl-mechanism %s", mechanism)
		}
		kafkaSink, err := audit.NewKafkaSink(audit.KafkaSinkConfig{
			Brokers:       opts.auditKafkaBrokers,
			Topic:         opts.auditKafkaTopic,
			TLS:           opts.auditKafkaTLS,
			SASLMechanism: mechanism,
			Username:      opts.auditKafkaUsername,
			Password:      opts.auditKafkaPassword,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("invalid audit kafka settings: %w", err)
		}
		sinks = append(sinks, audit.NewQueuedSink(kafkaSink, queued, log))
	}
	if opts.auditWebhookURL != "" {
		webhook, err := audit.NewWebhookSink(audit.WebhookSinkConfig{URL: opts.auditWebhookURL})
		if err != nil {
			return nil, fmt.Errorf("invalid audit webhook settings: %w", err)
		}
		sinks = append(sinks, audit.NewQueuedSink(webhook, queued, log))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return audit.NewMultiSink(sinks, log), nil
}
