// Command meshctl asks the mesh coordinator questions from the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/xiaot623/gogo/mesh/internal/domain"
)

func main() {
	addr := flag.String("addr", envOr("COORDINATOR_URL", "http://localhost:8000"), "Coordinator base URL")
	attempts := flag.Int("retries", 20, "Attempts per question before giving up")
	delay := flag.Duration("retry-delay", 3*time.Second, "Delay between attempts")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-request timeout")
	flag.Parse()

	log.SetFlags(log.Ltime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := NewClient(*addr, *timeout, *attempts, *delay)

	// One-shot mode
	if flag.NArg() > 0 {
		printResult(os.Stdout, client.Ask(ctx, strings.Join(flag.Args(), " ")))
		return
	}

	fmt.Printf("Asking %s\n", *addr)
	fmt.Println("Type a question and press Enter. Commands: /quit to exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() || ctx.Err() != nil {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/quit" {
			fmt.Println("Bye!")
			return
		}

		printResult(os.Stdout, client.Ask(ctx, input))
	}
}

func printResult(w io.Writer, result domain.AggregateResult) {
	if result.Error != "" {
		color.New(color.FgRed).Fprintf(w, "Error: %s\n", result.Error)
		return
	}
	if len(result.AgentResponses) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No agent answered.")
		return
	}

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	for _, r := range result.AgentResponses {
		cyan.Fprintf(w, "[%s]", r.From)
		if r.Tool != "" {
			fmt.Fprintf(w, " (%s)", r.Tool)
		}
		fmt.Fprintln(w)
		green.Fprintf(w, "  %s\n", r.Answer)
		for _, hit := range r.SourceHits {
			fmt.Fprintf(w, "    - %s\n", hit)
		}
	}
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
