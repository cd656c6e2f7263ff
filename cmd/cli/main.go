package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
)

var serverURL = envOr("QUOTEVAULT_URL", "http://localhost:3000")

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "quote":
		handleQuote(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 || args[0] != "register" {
		fmt.Println("Usage: quotevault auth register -name <name> -email <email> -key <registration key>")
		return
	}

	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	key := fs.String("key", "", "registration key")
	fs.Parse(args[1:])

	body := map[string]string{"full_name": *name, "email": *email, "password": *key}
	var result struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := post("/auth", "", body, &result); err != nil {
		fatal(err)
	}

	if err := saveToken(result.Token); err != nil {
		fatal(err)
	}
	fmt.Printf("token saved, expires %s\n", result.ExpiresAt)
}

func handleQuote(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: quotevault quote <list|get|random|create|update|delete>")
		return
	}

	switch args[0] {
	case "list":
		listQuotes(args[1:])
	case "get":
		getQuote(args[1:])
	case "random":
		randomQuote()
	case "create":
		createQuote(args[1:])
	case "update":
		updateQuote(args[1:])
	case "delete":
		deleteQuote(args[1:])
	default:
		fmt.Printf("unknown quote command: %s\n", args[0])
	}
}

type quoteRow struct {
	ID     int64    `json:"id"`
	Quote  string   `json:"quote"`
	Source string   `json:"source"`
	Tags   []string `json:"tags"`
}

func listQuotes(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	quote := fs.String("quote", "", "substring of quote text")
	source := fs.String("source", "", "substring of source")
	tag := fs.String("tag", "", "substring of a tag name")
	fs.Parse(args)

	params := []string{}
	if *quote != "" {
		params = append(params, "quote="+*quote)
	}
	if *source != "" {
		params = append(params, "source="+*source)
	}
	if *tag != "" {
		params = append(params, "tag="+*tag)
	}
	path := "/api/v1/quotes"
	if len(params) > 0 {
		path += "?" + strings.Join(params, "&")
	}

	var quotes []quoteRow
	if err := get(path, &quotes); err != nil {
		fatal(err)
	}
	printQuotes(quotes)
}

func getQuote(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: quotevault quote get <id>")
		return
	}
	var q quoteRow
	if err := get("/api/v1/quotes/"+args[0], &q); err != nil {
		fatal(err)
	}
	printQuotes([]quoteRow{q})
}

func randomQuote() {
	var q quoteRow
	if err := get("/api/v1/quotes/random", &q); err != nil {
		fatal(err)
	}
	fmt.Printf("%q\n    -- %s [%s]\n", q.Quote, q.Source, strings.Join(q.Tags, ", "))
}

func createQuote(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	quote := fs.String("quote", "", "quote text")
	source := fs.String("source", "", "source attribution")
	tags := fs.String("tags", "", "comma-separated tags")
	fs.Parse(args)

	body := map[string]any{"quote": *quote, "source": *source, "tags": splitCSV(*tags)}
	var q quoteRow
	if err := post("/api/v1/quotes", loadToken(), body, &q); err != nil {
		fatal(err)
	}
	fmt.Printf("created quote %d\n", q.ID)
}

func updateQuote(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: quotevault quote update <id> [-quote ...] [-source ...] [-tags ...]")
		return
	}
	id := args[0]

	fs := flag.NewFlagSet("update", flag.ExitOnError)
	quote := fs.String("quote", "", "new quote text")
	source := fs.String("source", "", "new source attribution")
	tags := fs.String("tags", "", "comma-separated replacement tags")
	fs.Parse(args[1:])

	// Only flags that were set make it into the request; the server
	// keeps prior values for omitted fields.
	body := map[string]any{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "quote":
			body["quote"] = *quote
		case "source":
			body["source"] = *source
		case "tags":
			body["tags"] = splitCSV(*tags)
		}
	})

	var q quoteRow
	if err := request(http.MethodPut, "/api/v1/quotes/"+id, loadToken(), body, &q); err != nil {
		fatal(err)
	}
	fmt.Printf("updated quote %d\n", q.ID)
}

func deleteQuote(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: quotevault quote delete <id>")
		return
	}
	if err := request(http.MethodDelete, "/api/v1/quotes/"+args[0], loadToken(), nil, nil); err != nil {
		fatal(err)
	}
	fmt.Println("deleted")
}

func printQuotes(quotes []quoteRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tQUOTE\tSOURCE\tTAGS")
	for _, q := range quotes {
		text := q.Quote
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", q.ID, text, q.Source, strings.Join(q.Tags, ","))
	}
	w.Flush()
}

func get(path string, out any) error {
	return request(http.MethodGet, path, "", nil, out)
}

func post(path, token string, body, out any) error {
	return request(http.MethodPost, path, token, body, out)
}

func request(method, path, token string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, serverURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func tokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quotevault-token"
	}
	return filepath.Join(home, ".quotevault", "token")
}

func saveToken(token string) error {
	path := tokenPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

func loadToken() string {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func splitCSV(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println(`quotevault - quote catalog client

Usage:
  quotevault auth register -name <name> -email <email> -key <registration key>
  quotevault quote list [-quote s] [-source s] [-tag s]
  quotevault quote get <id>
  quotevault quote random
  quotevault quote create -quote <text> -source <source> [-tags a,b]
  quotevault quote update <id> [-quote text] [-source source] [-tags a,b]
  quotevault quote delete <id>

Environment:
  QUOTEVAULT_URL  server base URL (default http://localhost:3000)`)
}
