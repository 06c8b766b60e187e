package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sinh-x/google-classroom-mcp/internal/auth"
	"github.com/sinh-x/google-classroom-mcp/internal/tools"
)

// Version is set at build time
var Version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "classroom-mcp",
		Short: "MCP server for read-only Google Classroom access",
		Long: `classroom-mcp serves Google Classroom courses, announcements, assignments,
submissions, materials and Drive file content to MCP clients over stdio.

Run "classroom-mcp auth" once to authorize access before starting the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context())
		},
	}
	root.SetErr(stderr)

	root.AddCommand(
		newRunCmd(),
		newAuthCmd(stderr),
		newVersionCmd(),
	)
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the MCP server on stdio (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context())
		},
	}
}

func newAuthCmd(stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Classroom and Drive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAuth(cmd.Context(), stderr)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", tools.ServerName, Version)
		},
	}
}

// runServer serves MCP on stdio until the client disconnects or a signal arrives
func runServer(ctx context.Context) error {
	root, err := NewCompositionRoot(ctx, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if err := root.Cleanup(); err != nil {
			root.Logger.Error("Failed to cleanup resources", zap.Error(err))
		}
	}()

	if root.HTTPServer != nil {
		go func() {
			if err := root.HTTPServer.Start(root.Config.HTTP.Addr); err != nil {
				root.Logger.Error("HTTP server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := root.HTTPServer.Stop(shutdownCtx); err != nil {
				root.Logger.Error("HTTP server forced to shutdown", zap.Error(err))
			}
		}()
	}

	root.Logger.Info("Starting MCP server on stdio", zap.String("version", Version))
	if err := tools.ServeStdio(ctx, root.MCPServer); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	root.Logger.Info("Server exited")
	return nil
}

// runAuth runs the browser consent flow and stores the resulting token
func runAuth(ctx context.Context, stderr io.Writer) error {
	root := &CompositionRoot{}
	if err := root.initBase(); err != nil {
		return err
	}
	defer func() { _ = root.Logger.Sync() }()

	oauthConfig, err := auth.LoadOAuthConfig(root.Config.Google.CredentialsFile)
	if err != nil {
		return err
	}

	store := auth.NewFileTokenStore(root.Config.Google.TokenFile)
	addr := fmt.Sprintf("127.0.0.1:%d", root.Config.Google.RedirectPort)
	flow := auth.NewFlow(oauthConfig, store, addr, root.Logger)

	if _, err := flow.Run(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Fprintf(stderr, "Authentication successful. Token saved to %s\n", root.Config.Google.TokenFile)
	return nil
}
