package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	synchub "romhub/internal/sync"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	raw := flag.Bool("raw", false, "print JSON lines as received")
	flag.Parse()

	for {
		if err := run(*addr, *raw); err != nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func run(addr string, raw bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync-client] connected to %s", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()
		if raw {
			fmt.Println(string(line))
			continue
		}
		fmt.Println(describe(line))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

// describe renders import events as one summary line; anything else is
// printed as received.
func describe(line []byte) string {
	var ev synchub.ImportEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return string(line)
	}

	at := ev.At.Local().Format(time.TimeOnly)
	switch ev.Type {
	case synchub.EventImportCompleted:
		return fmt.Sprintf("%s ✅ %s (%s): %d games, %d releases, %d roms [%s]",
			at, ev.Source, ev.Console, ev.Games, ev.Releases, ev.Roms, ev.RunID)
	case synchub.EventImportFailed:
		return fmt.Sprintf("%s ❌ %s: %s [%s]", at, ev.Source, ev.Error, ev.RunID)
	default:
		return string(line)
	}
}
