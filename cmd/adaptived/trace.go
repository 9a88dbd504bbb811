package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lysgoup/adaptived/engine"
)

// replayTrace drives the engine from a page lifecycle trace, one event
// per line:
//
//	add <inode> <offset> [dirty]
//	access <inode> <offset>
//	evict <budget>
//
// Lines starting with '#' and blank lines are skipped. Pages are keyed by
// (inode, offset); "evict" issues one eviction request with the given
// victim budget and immediately reports the victims back as evicted.
func replayTrace(ctx context.Context, eng *engine.Engine, path string, log zerolog.Logger) error {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open trace: %w", err)
		}
		defer f.Close()
		r = f
	}

	var (
		nextID engine.PageID
		live   = make(map[[2]uint64]engine.PageInfo)
		byID   = make(map[engine.PageID][2]uint64)
		lineNo int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "add":
			ino, off, err := parsePagePos(fields)
			if err != nil {
				return fmt.Errorf("trace line %d: %w", lineNo, err)
			}
			key := [2]uint64{ino, off}
			if _, ok := live[key]; ok {
				continue // already resident
			}
			nextID++
			p := engine.PageInfo{
				PageID:     nextID,
				Ino:        ino,
				Off:        off,
				IsUptodate: true,
				IsRecent:   true,
				IsDirty:    len(fields) > 3 && fields[3] == "dirty",
			}
			live[key] = p
			byID[p.PageID] = key
			eng.OnAdded(p)
		case "access":
			ino, off, err := parsePagePos(fields)
			if err != nil {
				return fmt.Errorf("trace line %d: %w", lineNo, err)
			}
			if p, ok := live[[2]uint64{ino, off}]; ok {
				eng.OnAccessed(p)
			}
		case "evict":
			if len(fields) != 2 {
				return fmt.Errorf("trace line %d: evict wants a budget", lineNo)
			}
			budget, err := strconv.Atoi(fields[1])
			if err != nil {
				return fmt.Errorf("trace line %d: %w", lineNo, err)
			}
			batch := &engine.EvictBatch{Budget: budget}
			eng.OnEvictRequest(batch)
			for _, v := range batch.Victims {
				eng.OnEvicted(v)
				key := byID[v.ID()]
				delete(live, key)
				delete(byID, v.ID())
			}
		default:
			return fmt.Errorf("trace line %d: unknown op %q", lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read trace: %w", err)
	}

	snap := eng.Snapshot()
	log.Info().
		Uint64("accesses", snap.TotalAccesses).
		Uint64("hit_rate", snap.HitRate).
		Uint64("switches", snap.Switches).
		Stringer("policy", snap.Policy).
		Msg("trace replay complete")
	return nil
}

func parsePagePos(fields []string) (ino, off uint64, err error) {
	if len(fields) < 3 {
		return 0, 0, fmt.Errorf("%s wants inode and offset", fields[0])
	}
	if ino, err = strconv.ParseUint(fields[1], 10, 64); err != nil {
		return 0, 0, err
	}
	if off, err = strconv.ParseUint(fields[2], 10, 64); err != nil {
		return 0, 0, err
	}
	return ino, off, nil
}
