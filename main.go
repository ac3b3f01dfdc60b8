// Command pathviz starts the pathfinding visualizer.
//
// It supports three modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "solve" runs one algorithm headless against a layout file and prints the result
//
// Flags control host/port, the layouts directory, debug logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/pathviz/api"
	"github.com/wricardo/pathviz/transport/mcp"
	"github.com/wricardo/pathviz/transport/websocket"
	"github.com/wricardo/pathviz/visualizer/config"
	"github.com/wricardo/pathviz/visualizer/engine"
	"github.com/wricardo/pathviz/visualizer/render"
	"github.com/wricardo/pathviz/visualizer/service"
	"github.com/wricardo/pathviz/visualizer/session"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Pathfinding Visualizer"
)

// Session retention
const (
	sessionCleanupInterval = 1 * time.Hour
	sessionMaxAge          = 24 * time.Hour
)

// newCommand builds the command tree. Flags declared on the root are visible
// to every subcommand.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "pathviz",
		Usage:   "Visualize A*, Dijkstra, BFS and DFS on an editable grid",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "layouts-dir",
				Value:   "layouts",
				Usage:   "Directory containing grid layouts",
				Sources: cli.EnvVars("LAYOUTS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  runServerCommand,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					log.Printf("Starting %s v%s (mode: stdio-mcp)", AppName, Version)
					hub := websocket.NewHub()
					go hub.Run()

					svc, err := initializeServices(ctx, cmd.String("layouts-dir"), hub)
					if err != nil {
						return fmt.Errorf("failed to initialize services: %w", err)
					}
					return runStdioMCPWithInternalServer(svc, hub)
				},
			},
			{
				Name:      "solve",
				Usage:     "Run one algorithm on a layout file and print the grid",
				ArgsUsage: "<layout-file>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"a"},
						Value:   string(engine.AStar),
						Usage:   "a*, dijkstra, bfs or dfs",
					},
					&cli.StringFlag{
						Name:  "png",
						Usage: "Also write the finished grid as a PNG to this file",
					},
					&cli.IntFlag{
						Name:  "cell",
						Value: render.DefaultCellSize,
						Usage: "PNG cell size in pixels",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return cli.Exit("solve requires exactly one layout file", 2)
					}
					_, err := solve(ctx, os.Stdout, cmd.Args().First(), cmd.String("algorithm"), cmd.String("png"), cmd.Int("cell"))
					return err
				},
			},
		},
	}
}

// main loads the environment, then runs the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	hub := websocket.NewHub()
	go hub.Run()

	svc, err := initializeServices(ctx, cmd.String("layouts-dir"), hub)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	runHTTPServer(svc, hub, serverOptions{
		host:        cmd.String("host"),
		port:        cmd.Int("port"),
		ngrok:       cmd.Bool("ngrok"),
		ngrokAuth:   cmd.String("ngrok-auth"),
		ngrokDomain: cmd.String("ngrok-domain"),
	})
	return nil
}

// serverOptions carries the resolved flag values for the HTTP server
type serverOptions struct {
	host        string
	port        int
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the API at the root and the MCP endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(svc service.VisualizerService, hub *websocket.Hub, opts serverOptions) {
	apiServer := api.NewServer(svc, hub)

	addr := fmt.Sprintf("%s:%d", opts.host, opts.port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	// WriteTimeout stays at zero: waited runs and websocket streams outlive any fixed deadline
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     mainRouter,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter, opts)
		}()
	}

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, handler http.Handler, opts serverOptions) {
	if opts.ngrokAuth == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Printf("Using custom ngrok domain: %s", opts.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)
	log.Printf("  Visualizer UI (ngrok): %s/", ngrokURL)

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// initializeServices wires the session and layout managers into the visualizer
// service. A nil hub disables live updates. It also starts a background
// cleanup routine that prunes stale sessions until ctx is done.
func initializeServices(ctx context.Context, layoutsDir string, hub *websocket.Hub) (service.VisualizerService, error) {
	layoutManager, err := config.NewManager(layoutsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout manager: %w", err)
	}

	sessionManager := session.NewManager()

	var opts []service.Option
	if hub != nil {
		opts = append(opts, service.WithPublisher(hub))
	}
	svc := service.NewVisualizerService(sessionManager, layoutManager, opts...)

	go sessionManager.RunCleanup(ctx, sessionCleanupInterval, sessionMaxAge)

	return svc, nil
}

// solve runs one algorithm headless on a layout file, prints a summary and the
// finished grid to w, and optionally writes the grid as a PNG.
func solve(ctx context.Context, w io.Writer, layoutPath, algorithmName, pngPath string, cellSize int) (*engine.Result, error) {
	algorithm, err := engine.ParseAlgorithm(algorithmName)
	if err != nil {
		return nil, err
	}

	layout, err := config.ReadLayoutFile(layoutPath)
	if err != nil {
		return nil, err
	}

	board, start, end, err := engine.NewBoardFromLayout(layout)
	if err != nil {
		return nil, err
	}

	result, err := engine.New(board, start, end).Run(ctx, algorithm)
	if err != nil {
		return nil, err
	}

	if result.Found {
		fmt.Fprintf(w, "[RUN] %s on %q: path length %d, visited %d, %s\n",
			algorithm, layout.Name, result.PathLength(), len(result.Visited), result.Duration.Round(time.Microsecond))
	} else {
		fmt.Fprintf(w, "[RUN] %s on %q: no path, visited %d, %s\n",
			algorithm, layout.Name, len(result.Visited), result.Duration.Round(time.Microsecond))
	}

	rows := board.Render(start, end)
	for _, row := range rows {
		fmt.Fprintln(w, row)
	}

	if pngPath != "" {
		f, err := os.Create(pngPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", pngPath, err)
		}
		defer f.Close()
		if err := render.PNG(f, rows, cellSize); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", pngPath, err)
		}
		fmt.Fprintf(w, "Wrote %s\n", pngPath)
	}

	return result, nil
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at http://localhost:8080; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(svc service.VisualizerService, hub *websocket.Hub) error {
	var baseURL string

	externalURL := "http://localhost:8080"
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := fmt.Sprintf("127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port)
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		httpServer := &http.Server{
			Handler: api.NewServer(svc, hub),
		}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)

	if baseURL == externalURL {
		log.Println("MCP stdio server ready (using external HTTP server)")
	} else {
		log.Println("MCP stdio server ready (using internal HTTP server)")
	}

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
