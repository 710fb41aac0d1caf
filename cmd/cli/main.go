package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"romhub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type consoleListResponse struct {
	Items []models.Console `json:"items"`
}

func main() {
	global := flag.NewFlagSet("romhub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	rest := []string{}
	if len(args) > 1 {
		sub = args[1]
		rest = args[2:]
	}

	// Imports of large DATs take a while.
	client := &http.Client{Timeout: 5 * time.Minute}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "consoles":
		handleConsoles(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "games":
		handleGames(ctx, client, *baseURL, sub, rest)
	case "import":
		handleImport(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "settings":
		handleSettings(ctx, client, *baseURL, *tokenPath, sub, rest)
	case "watch":
		handleWatch(*baseURL, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		password := fs.String("password", os.Getenv("ROMHUB_ADMIN_PASSWORD"), "admin password")
		_ = fs.Parse(args)

		if *password == "" {
			log.Fatal("password is required")
		}

		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/token", "", map[string]string{"password": *password}, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Printf("✅ logged in until %s\n", resp.ExpiresAt)
	case "logout":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("✅ logged out")
	default:
		log.Fatal("usage: romhub auth <login|logout>")
	}
}

func handleConsoles(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "list":
		var resp consoleListResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/consoles", "", nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		for _, c := range resp.Items {
			mark := " "
			if c.InLibrary {
				mark = "*"
			}
			fmt.Printf("%s %3d  %-6s %s (%s)\n", mark, c.ID, c.Abbreviation, c.Name, c.Manufacturer)
		}
	case "games":
		fs := flag.NewFlagSet("consoles games", flag.ExitOnError)
		id := fs.Int64("id", 0, "console id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("console id is required")
		}

		var resp models.ConsoleWithGames
		if err := doJSON(ctx, client, http.MethodGet, fmt.Sprintf("%s/consoles/%d/games", baseURL, *id), "", nil, &resp); err != nil {
			log.Fatalf("games failed: %v", err)
		}
		printJSON(resp)
	case "library":
		fs := flag.NewFlagSet("consoles library", flag.ExitOnError)
		id := fs.Int64("id", 0, "console id")
		in := fs.Bool("in", true, "mark the console as part of the library")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("console id is required")
		}

		var resp map[string]any
		endpoint := fmt.Sprintf("%s/consoles/%d/library", baseURL, *id)
		if err := doJSON(ctx, client, http.MethodPut, endpoint, mustToken(tokenPath), map[string]bool{"in_library": *in}, &resp); err != nil {
			log.Fatalf("library failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: romhub consoles <list|games|library>")
	}
}

func handleGames(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "show":
		fs := flag.NewFlagSet("games show", flag.ExitOnError)
		id := fs.Int64("id", 0, "game id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("game id is required")
		}

		var resp models.GameWithReleases
		if err := doJSON(ctx, client, http.MethodGet, fmt.Sprintf("%s/games/%d", baseURL, *id), "", nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: romhub games show")
	}
}

func handleImport(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "path":
		// The path is resolved on the server host.
		fs := flag.NewFlagSet("import path", flag.ExitOnError)
		path := fs.String("dat", "", "DAT path on the server")
		_ = fs.Parse(args)
		if *path == "" {
			log.Fatal("dat path is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/imports", token, map[string]string{"path": *path}, &resp); err != nil {
			log.Fatalf("import failed: %v", err)
		}
		printJSON(resp)
	case "upload":
		fs := flag.NewFlagSet("import upload", flag.ExitOnError)
		path := fs.String("dat", "", "local DAT file")
		_ = fs.Parse(args)
		if *path == "" {
			log.Fatal("dat file is required")
		}

		f, err := os.Open(*path)
		if err != nil {
			log.Fatalf("open dat: %v", err)
		}
		defer f.Close()

		endpoint := baseURL + "/imports/upload?source=" + url.QueryEscape(filepath.Base(*path))
		var resp map[string]any
		if err := doRequest(ctx, client, http.MethodPost, endpoint, token, "application/xml", f, &resp); err != nil {
			log.Fatalf("upload failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: romhub import <path|upload>")
	}
}

func handleSettings(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "show":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/settings", "", nil, &resp); err != nil {
			log.Fatalf("settings failed: %v", err)
		}
		printJSON(resp)
	case "rom-path":
		fs := flag.NewFlagSet("settings rom-path", flag.ExitOnError)
		abbr := fs.String("console", "", "console abbreviation")
		dir := fs.String("dir", "", "ROM directory")
		_ = fs.Parse(args)
		if *abbr == "" {
			log.Fatal("console is required")
		}

		var resp map[string]any
		endpoint := baseURL + "/settings/rom-paths/" + url.PathEscape(*abbr)
		if err := doJSON(ctx, client, http.MethodPut, endpoint, mustToken(tokenPath), map[string]string{"path": *dir}, &resp); err != nil {
			log.Fatalf("rom-path failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: romhub settings <show|rom-path>")
	}
}

func handleWatch(baseURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
	_ = fs.Parse(args)

	endpoint := *wsURL
	if endpoint == "" {
		var err error
		endpoint, err = websocketURL(baseURL, "/ws")
		if err != nil {
			log.Fatalf("ws url: %v", err)
		}
	}
	if err := runWebSocket(endpoint); err != nil {
		log.Fatalf("watch failed: %v", err)
	}
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Print(string(msg))
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
		contentType = "application/json"
	}
	return doRequest(ctx, client, method, endpoint, token, contentType, body, out)
}

func doRequest(ctx context.Context, client *http.Client, method, endpoint, token, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.romhub-token.json"
	}
	return filepath.Join(home, ".romhub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("romhub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|logout")
	fmt.Println("  consoles list|games|library")
	fmt.Println("  games show")
	fmt.Println("  import path|upload")
	fmt.Println("  settings show|rom-path")
	fmt.Println("  watch")
}
