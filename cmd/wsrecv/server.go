package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/wsrecv/internal/config"
	"github.com/muurk/wsrecv/internal/logging"
	"github.com/muurk/wsrecv/internal/protocol"
	"github.com/muurk/wsrecv/internal/server"
	"github.com/muurk/wsrecv/internal/ui"
)

// Server command flags
var (
	configPath     string
	host           string
	port           int
	origins        []string
	logLevel       string
	analysisDir    string
	maxMessageSize int
	idleTimeout    time.Duration
	advertise      bool
	quiet          bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the WebSocket server",
	Long: `Start the WebSocket server and print every message received.

Settings are read from the config file (see 'wsrecv config init'), then from
SERVER_PORT and WSRECV_ALLOWED_ORIGINS, and finally from the flags below.
Only flags given on the command line override earlier values.

To capture messages for analysis, use --analysis-dir to name an existing
directory. One JSON Lines file is written per day.`,
	Example: `  # Listen on the default port 8080
  wsrecv server

  # Accept a different page origin
  wsrecv server --origin http://localhost:3000 --origin https://app.example

  # Debug logging with message capture
  wsrecv server --log-level debug --analysis-dir ./captures

  # Advertise over mDNS so 'wsrecv discover' can find it
  wsrecv server --advertise`,
	RunE: runServer,
}

func init() {
	f := serverCmd.Flags()
	f.StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	f.StringVar(&host, "host", "", "Listen host (empty = all interfaces)")
	f.IntVar(&port, "port", 8080, "Listen port")
	f.StringArrayVar(&origins, "origin", nil, "Allowed Origin header value (repeatable)")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.StringVar(&analysisDir, "analysis-dir", "", "Directory to write message captures (disabled if not specified)")
	f.IntVar(&maxMessageSize, "max-message-size", 0, "Largest accepted message in bytes (0 = unlimited)")
	f.DurationVar(&idleTimeout, "idle-timeout", 0, "Close connections idle for this long (0 = never)")
	f.BoolVar(&advertise, "advertise", false, "Advertise the server over mDNS")
	f.BoolVarP(&quiet, "quiet", "q", false, "Do not print received messages")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadServerConfig(cmd)
	if err != nil {
		return err
	}

	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer logging.Sync()

	if ui.IsTerminal() {
		fmt.Fprintln(cmd.OutOrStdout(), serverBanner(cfg).Render())
	}

	var opts []server.Option
	if !quiet {
		out := cmd.OutOrStdout()
		opts = append(opts, server.WithMessageHandler(func(remoteAddr string, msg protocol.Message) {
			fmt.Fprintln(out, formatMessage(remoteAddr, msg))
		}))
	}

	srv, err := server.New(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// loadServerConfig layers file, environment and explicitly set flags
func loadServerConfig(cmd *cobra.Command) (*config.ServerConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Host = host
	}
	if f.Changed("port") {
		cfg.Port = port
	}
	if f.Changed("origin") {
		cfg.AllowedOrigins = origins
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("analysis-dir") {
		cfg.AnalysisDir = analysisDir
	}
	if f.Changed("max-message-size") {
		cfg.MaxMessageSize = maxMessageSize
	}
	if f.Changed("idle-timeout") {
		cfg.IdleTimeout = idleTimeout
	}
	if f.Changed("advertise") {
		cfg.Advertise = advertise
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Debug("Resolved server configuration",
		zap.String("addr", cfg.Addr()),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
	)
	return cfg, nil
}

func serverBanner(cfg *config.ServerConfig) *ui.Banner {
	b := ui.NewBanner("WebSocket Server", "wsrecv server").
		Add("Listen", cfg.Addr()).
		Add("Origins", strings.Join(cfg.AllowedOrigins, ", ")).
		Add("Log level", cfg.LogLevel).
		Add("Captures", cfg.AnalysisDir)
	if cfg.MaxMessageSize > 0 {
		b.Add("Max message", strconv.Itoa(cfg.MaxMessageSize)+" bytes")
	}
	if cfg.IdleTimeout > 0 {
		b.Add("Idle timeout", cfg.IdleTimeout.String())
	}
	if cfg.Advertise {
		b.Add("mDNS", cfg.InstanceName)
	}
	return b
}

// formatMessage renders one received message as a single output line
func formatMessage(remoteAddr string, msg protocol.Message) string {
	name := protocol.OpcodeName(msg.Opcode)
	if msg.IsText() {
		return fmt.Sprintf("%s %s: %s", remoteAddr, name, msg.Payload)
	}
	return fmt.Sprintf("%s %s: %d bytes %x", remoteAddr, name, len(msg.Payload), msg.Payload)
}
