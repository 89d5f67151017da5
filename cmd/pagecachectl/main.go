// Command pagecachectl is a small operator tool over disk.Manager and
// bufferpool.Pool: it is a local demonstration of the two packages'
// public surface, not a network protocol (spec.md explicitly places a
// wire protocol out of the core's scope). Grounded on the teacher's
// cmd/server/main.go, trimmed of the SQL/TCP layer it doesn't need.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/relaydb/pagecache/bufferpool"
	"github.com/relaydb/pagecache/config"
	"github.com/relaydb/pagecache/disk"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "pagecache.yaml", "path to pagecache yaml config")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: pagecachectl -config <file> <alloc|stat|dump> [args...]")
		os.Exit(2)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	dm, err := disk.Open(cfg.Heap.File)
	if err != nil {
		slog.Error("open heap file", "file", cfg.Heap.File, "error", err)
		os.Exit(1)
	}
	defer dm.Close()

	pool, err := bufferpool.NewBufferPoolManager(dm, cfg.Pool.Size)
	if err != nil {
		slog.Error("build buffer pool", "error", err)
		os.Exit(1)
	}

	var cmdErr error
	switch cmd := args[0]; cmd {
	case "alloc":
		cmdErr = runAlloc(pool)
	case "stat":
		cmdErr = runStat(pool)
	case "dump":
		cmdErr = runDump(pool, args[1:])
	default:
		cmdErr = fmt.Errorf("unknown subcommand %q", cmd)
	}

	if cmdErr != nil {
		slog.Error("pagecachectl", "error", cmdErr)
		os.Exit(1)
	}
}

// runAlloc creates a new, zeroed page and reports its id.
func runAlloc(pool *bufferpool.Pool) error {
	h, err := pool.CreatePage()
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	defer h.Release()

	fmt.Printf("allocated page %d\n", h.PageID())
	return pool.FlushAll()
}

// runStat prints a snapshot of the pool's occupancy counters.
func runStat(pool *bufferpool.Pool) error {
	s := pool.Stats()
	fmt.Printf("frames:  %d total, %d bound, %d pinned, %d dirty\n",
		s.TotalFrames, s.BoundFrames, s.PinnedFrames, s.DirtyFrames)
	fmt.Printf("access:  %d hits, %d misses\n", s.Hits, s.Misses)
	return nil
}

// runDump fetches a page and hex-dumps its first 256 bytes.
func runDump(pool *bufferpool.Pool, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dump <page-id>")
	}

	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid page id %q: %w", args[0], err)
	}

	h, err := pool.FetchPage(disk.PageID(id))
	if err != nil {
		return fmt.Errorf("fetch page %d: %w", id, err)
	}
	defer h.Release()

	const preview = 256
	fmt.Print(hex.Dump(h.Page()[:preview]))
	return nil
}
