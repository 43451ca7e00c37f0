package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/generative-ai-go/genai"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/chegemaina/askdata/config"
	"github.com/chegemaina/askdata/importer"
	"github.com/chegemaina/askdata/migrations"
	"github.com/chegemaina/askdata/nlquery"
	"github.com/chegemaina/askdata/server"
)

func main() {
	serve := flag.Bool("serve", false, "run the HTTP API instead of the interactive prompt")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	if err := migrations.InitSchema(db); err != nil {
		log.Printf("Warning: Error initializing schema: %v", err)
	}

	var gen nlquery.TextGenerator
	keys := nlquery.NewKeyManager()
	if keys.HasKeys() {
		client, err := genai.NewClient(context.Background(), option.WithAPIKey(keys.GetNextKey()))
		if err != nil {
			log.Printf("Warning: Gemini client unavailable, fallback disabled: %v", err)
		} else {
			defer client.Close()
			gen = nlquery.NewGeminiGenerator(client, cfg.Gemini.Model)
		}
	} else {
		color.Yellow("No GEMINI_API_KEY set; unmatched questions will not fall back to generation")
	}

	engine := nlquery.NewNLQueryEngine(db, gen)

	if *serve {
		logger, err := zap.NewProduction()
		if err != nil {
			log.Fatal(err)
		}
		defer logger.Sync()

		srv := server.New(engine, cfg.Server.APIKey, logger)
		color.Green("Serving askdata API on port %s", cfg.Server.Port)
		log.Fatal(srv.ListenAndServe(cfg.Server.Port))
	}

	for {
		displayMenu()
		choice := readLine("")

		switch choice {
		case "1":
			askQuestion(engine)
		case "2":
			showSchema(db)
		case "3":
			handleImport(db)
		case "4":
			color.Green("Goodbye!")
			return
		default:
			color.Red("Invalid choice. Please try again.")
		}
	}
}

func displayMenu() {
	color.Cyan("\n=== askdata ===")
	fmt.Println("1. Ask a question")
	fmt.Println("2. View database schema")
	fmt.Println("3. Import seed data")
	fmt.Println("4. Exit")
	fmt.Print("\nEnter your choice (1-4): ")
}

func readLine(prompt string) string {
	if prompt != "" {
		fmt.Print(prompt)
	}
	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

func askQuestion(engine *nlquery.NLQueryEngine) {
	question := readLine("Ask a question about your data: ")
	if question == "" {
		return
	}

	answer, err := engine.Answer(context.Background(), question)
	if err != nil {
		if errors.Is(err, nlquery.ErrNoGenerator) {
			color.Yellow("No SQL could be derived for that question.")
			return
		}
		color.Red("Error: %v", err)
		return
	}

	switch {
	case answer.Rule != "":
		color.Cyan("\nMatched rule %s:", answer.Rule)
	case answer.Defaulted:
		color.Yellow("\nNo rule matched and generation failed; using the default query:")
	default:
		color.Cyan("\nGenerated query:")
	}
	fmt.Printf("%s\n\n", answer.Query)

	engine.DisplayResults(answer)
}

func showSchema(db *sql.DB) {
	schema, err := nlquery.DescribeSchema(context.Background(), db)
	if err != nil {
		color.Red("Error: %v", err)
		return
	}
	fmt.Println(schema.String())
}

func handleImport(db *sql.DB) {
	table := readLine("Table to import (users/products/orders): ")
	file := readLine("CSV file path: ")

	var cfg importer.ImportConfig
	switch table {
	case "users":
		cfg = importer.UsersConfig(file)
	case "products":
		cfg = importer.ProductsConfig(file)
	case "orders":
		cfg = importer.OrdersConfig(file)
	default:
		color.Red("Unknown table %q", table)
		return
	}

	result, err := importer.ImportCSV(context.Background(), db, cfg)
	if err != nil {
		color.Red("Import failed: %v", err)
		return
	}
	color.Green("Imported %d rows into %s (%d skipped)", result.Imported, table, result.Failed)
}
