package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shelocks/ssdb"
	"github.com/shelocks/ssdb/proto"
)

func main() {
	host := flag.String("host", "127.0.0.1", "server host")
	port := flag.Int("port", 8888, "server port")
	timeout := flag.Duration("timeout", 5*time.Second, "read timeout")
	flag.Parse()

	client, err := ssdb.NewClient(ssdb.Config{
		Host:        *host,
		Port:        *port,
		ReadTimeout: *timeout,
	})
	if err != nil {
		fmt.Printf("Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Printf("SSDB CLI - %s:%d\n", *host, *port)
	fmt.Println("Commands: get, set, del, incr, exists, scan, hget, hset, hscan, zget, zset, zscan, qpush, qpop, ping, info, stats, quit")
	fmt.Println("Anything else is sent raw and printed as a list.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(parts) == 0 {
			continue
		}

		ctx := context.Background()

		switch strings.ToLower(parts[0]) {
		case "get":
			if len(parts) != 2 {
				fmt.Println("Usage: get <key>")
				continue
			}
			handleGet(ctx, client, parts[1])

		case "set":
			if len(parts) != 3 {
				fmt.Println("Usage: set <key> <value>")
				continue
			}
			report(client.Set(ctx, parts[1], parts[2]))

		case "del":
			if len(parts) != 2 {
				fmt.Println("Usage: del <key>")
				continue
			}
			report(client.Del(ctx, parts[1]))

		case "incr":
			if len(parts) != 3 {
				fmt.Println("Usage: incr <key> <delta>")
				continue
			}
			delta, err := strconv.ParseInt(parts[2], 10, 64)
			if err != nil {
				fmt.Printf("Invalid delta: %v\n", err)
				continue
			}
			value, err := client.Incr(ctx, parts[1], delta)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println(value)

		case "exists":
			if len(parts) != 2 {
				fmt.Println("Usage: exists <key>")
				continue
			}
			found, err := client.Exists(ctx, parts[1])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Println(found)

		case "scan":
			if len(parts) != 4 {
				fmt.Println("Usage: scan <start> <end> <limit>")
				continue
			}
			limit, err := strconv.Atoi(parts[3])
			if err != nil {
				fmt.Printf("Invalid limit: %v\n", err)
				continue
			}
			pairs, err := client.Scan(ctx, rangeBound(parts[1]), rangeBound(parts[2]), limit)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			for _, p := range pairs {
				fmt.Printf("  %s = %s\n", p.Key, p.Value)
			}
			fmt.Printf("(%d pairs)\n", len(pairs))

		case "hget":
			if len(parts) != 3 {
				fmt.Println("Usage: hget <name> <key>")
				continue
			}
			value, found, err := client.HGet(ctx, parts[1], parts[2])
			printScalar(value, found, err)

		case "hset":
			if len(parts) != 4 {
				fmt.Println("Usage: hset <name> <key> <value>")
				continue
			}
			report(client.HSet(ctx, parts[1], parts[2], parts[3]))

		case "hscan":
			if len(parts) != 5 {
				fmt.Println("Usage: hscan <name> <start> <end> <limit>")
				continue
			}
			limit, err := strconv.Atoi(parts[4])
			if err != nil {
				fmt.Printf("Invalid limit: %v\n", err)
				continue
			}
			pairs, err := client.HScan(ctx, parts[1], rangeBound(parts[2]), rangeBound(parts[3]), limit)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			for _, p := range pairs {
				fmt.Printf("  %s = %s\n", p.Key, p.Value)
			}
			fmt.Printf("(%d pairs)\n", len(pairs))

		case "zget":
			if len(parts) != 3 {
				fmt.Println("Usage: zget <name> <key>")
				continue
			}
			score, found, err := client.ZGet(ctx, parts[1], parts[2])
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if !found {
				fmt.Println("(not found)")
				continue
			}
			fmt.Println(score)

		case "zset":
			if len(parts) != 4 {
				fmt.Println("Usage: zset <name> <key> <score>")
				continue
			}
			score, err := strconv.ParseInt(parts[3], 10, 64)
			if err != nil {
				fmt.Printf("Invalid score: %v\n", err)
				continue
			}
			report(client.ZSet(ctx, parts[1], parts[2], score))

		case "zscan":
			if len(parts) != 3 {
				fmt.Println("Usage: zscan <name> <limit>")
				continue
			}
			limit, err := strconv.Atoi(parts[2])
			if err != nil {
				fmt.Printf("Invalid limit: %v\n", err)
				continue
			}
			entries, err := client.ZScan(ctx, parts[1], "", "", "", limit)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			for _, e := range entries {
				fmt.Printf("  %s = %d\n", e.Key, e.Score)
			}
			fmt.Printf("(%d members)\n", len(entries))

		case "qpush":
			if len(parts) < 3 {
				fmt.Println("Usage: qpush <name> <value> [value ...]")
				continue
			}
			size, err := client.QPushBack(ctx, parts[1], parts[2:]...)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			fmt.Printf("OK (size %d)\n", size)

		case "qpop":
			if len(parts) != 2 {
				fmt.Println("Usage: qpop <name>")
				continue
			}
			value, found, err := client.QPopFront(ctx, parts[1])
			printScalar(value, found, err)

		case "ping":
			start := time.Now()
			if err := client.Ping(ctx); err != nil {
				fmt.Printf("Ping failed: %v\n", err)
				continue
			}
			fmt.Printf("PONG (%v)\n", time.Since(start))

		case "info":
			fields, err := client.Info(ctx)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			for _, f := range fields {
				fmt.Println(f)
			}

		case "stats":
			stats := client.Stats()
			fmt.Printf("Gets: %d (hits %d)\n", stats.Gets, stats.GetHits)
			fmt.Printf("Sets: %d  Deletes: %d  Incrs: %d  Scans: %d\n", stats.Sets, stats.Deletes, stats.Incrs, stats.Scans)
			fmt.Printf("Errors: %d\n", stats.Errors)
			pool := client.PoolStats()
			fmt.Printf("Pool: total %d, idle %d, active %d, created %d, destroyed %d\n",
				pool.TotalConns, pool.IdleConns, pool.ActiveConns, pool.CreatedConns, pool.DestroyedConns)

		case "quit", "exit":
			return

		default:
			handleRaw(ctx, client, parts)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Printf("Error reading input: %v\n", err)
	}
}

func handleGet(ctx context.Context, client *ssdb.Client, key string) {
	start := time.Now()
	value, found, err := client.Get(ctx, key)
	duration := time.Since(start)

	if err != nil {
		fmt.Printf("Error: %v (took %v)\n", err, duration)
		return
	}
	if !found {
		fmt.Printf("(not found) (took %v)\n", duration)
		return
	}
	fmt.Printf("%s (took %v)\n", value, duration)
}

func handleRaw(ctx context.Context, client *ssdb.Client, parts []string) {
	args := make([]any, len(parts)-1)
	for i, p := range parts[1:] {
		args[i] = p
	}

	result, err := client.Do(ctx, proto.ShapeList, parts[0], args...)
	if err != nil {
		var serverErr *proto.ServerError
		if errors.As(err, &serverErr) {
			fmt.Printf("Server: %s %s\n", serverErr.Status, serverErr.Message)
			return
		}
		fmt.Printf("Error: %v\n", err)
		return
	}

	if !result.Found {
		fmt.Println("(not found)")
		return
	}
	for _, f := range result.List {
		fmt.Println(f)
	}
	fmt.Printf("(%d fields)\n", len(result.List))
}

func printScalar(value string, found bool, err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if !found {
		fmt.Println("(not found)")
		return
	}
	fmt.Println(value)
}

func report(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

// rangeBound maps the CLI convention "-" to the server's empty-string
// unbounded marker so ranges are typeable.
func rangeBound(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
