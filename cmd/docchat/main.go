// Command docchat is a terminal client for the chat service. It keeps the
// uploaded documents and the transcript in the configured state backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"doc-chat/internal/app"
	"doc-chat/internal/chatclient"
	"doc-chat/internal/config"
	"doc-chat/internal/watcher"
	"doc-chat/internal/workspace"
)

const usage = `usage: docchat <command> [args]

commands:
  upload FILE...   add plain-text documents
  ask QUESTION     ask about the uploaded documents
  docs             list uploaded documents
  history          print the chat transcript
  watch DIR        upload .txt files as they appear in DIR
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel))

	if err := run(ctx, cfg, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "docchat:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	store, closer, err := app.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	client, err := chatclient.New(cfg.ChatURL)
	if err != nil {
		return err
	}
	ws, err := workspace.New(store, client, workspace.WithBootstrap(app.Bootstrap(cfg)))
	if err != nil {
		return err
	}
	if err := ws.Load(ctx); err != nil {
		// The transcript already carries the error message.
		slog.ErrorContext(ctx, "failed to load initial data", "err", err)
	}

	switch cmd {
	case "upload":
		return upload(ctx, ws, rest, out)
	case "ask":
		return ask(ctx, ws, rest, out)
	case "docs":
		return listDocuments(ws, out)
	case "history":
		return printHistory(ws, out)
	case "watch":
		if len(rest) != 1 {
			return errUsage
		}
		w, err := watcher.New(ws, slog.Default())
		if err != nil {
			return err
		}
		return w.Run(ctx, rest[0])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func upload(ctx context.Context, ws *workspace.Workspace, paths []string, out io.Writer) error {
	if len(paths) == 0 {
		return errUsage
	}
	var failed []string
	for _, path := range paths {
		res := <-workspace.ReadFileAsync(ctx, path)
		if res.Err != nil {
			if errors.Is(res.Err, workspace.ErrUnsupportedFile) {
				fmt.Fprintf(out, "skipped %s: please upload a .txt file\n", path)
			} else {
				fmt.Fprintf(out, "skipped %s: %v\n", path, res.Err)
			}
			failed = append(failed, path)
			continue
		}
		if err := ws.AddDocument(ctx, res.Document); err != nil {
			return err
		}
		fmt.Fprintf(out, "uploaded %s (%d chars)\n", res.Document.Name, len([]rune(res.Document.Content)))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files not uploaded", len(failed), len(paths))
	}
	return nil
}

func ask(ctx context.Context, ws *workspace.Workspace, words []string, out io.Writer) error {
	reply, err := ws.Ask(ctx, strings.Join(words, " "))
	if errors.Is(err, workspace.ErrEmptyQuestion) {
		return errUsage
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, reply.Content)
	return nil
}

func listDocuments(ws *workspace.Workspace, out io.Writer) error {
	docs := ws.Snapshot().Documents
	if len(docs) == 0 {
		fmt.Fprintln(out, "no documents uploaded")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(out, "%s\t%s\t%d chars\n", d.ID, d.Name, len([]rune(d.Content)))
	}
	return nil
}

func printHistory(ws *workspace.Workspace, out io.Writer) error {
	for _, m := range ws.Snapshot().ChatHistory {
		fmt.Fprintf(out, "[%s] %s\n", m.Role, m.Content)
	}
	return nil
}
