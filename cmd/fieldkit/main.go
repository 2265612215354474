package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	fieldkit "github.com/goliatone/go-fieldkit"
	"github.com/goliatone/go-fieldkit/internal/storage"
	"github.com/goliatone/go-fieldkit/pkg/testsupport"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

const (
	modePresent = "present"
	modeStore   = "store"
	modeSave    = "save"
	modeForm    = "form"
)

var (
	errUsage      = errors.New("usage")
	moduleBuilder = buildModule
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		log.Fatalf("fieldkit: %v", err)
	}
}

type options struct {
	schemas   []string
	ctype     string
	document  string
	bodyField string
	fixtures  string
	mode      string
	view      bool
	language  string
	languages []string
	database  string
	logLevel  string
	logFormat string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("fieldkit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemas := fs.String("schemas", "schemas", "Comma separated schema files or directories (YAML or JSON)")
	ctype := fs.String("ctype", "", "Content type of the document")
	documentPath := fs.String("document", "-", "Document file (YAML, JSON or Markdown with front matter); - reads stdin")
	bodyField := fs.String("body-field", "body", "Field receiving the body of Markdown documents")
	fixtures := fs.String("fixtures", "", "Optional fixture file mapping content types to documents")
	mode := fs.String("mode", modePresent, "Pass to run: present, store, save or form")
	view := fs.Bool("view", false, "Present in view mode instead of edit mode")
	language := fs.String("language", "", "Language of the render context (defaults to the first configured language)")
	languages := fs.String("languages", "en", "Comma separated configured languages; the first is the default")
	database := fs.String("db", "", "SQLite database file; empty keeps documents in memory")
	logLevel := fs.String("log-level", "", "Enable go-logger output at the given level")
	logFormat := fs.String("log-format", "console", "go-logger format: json, console or pretty")

	if err := fs.Parse(args); err != nil {
		return options{}, errUsage
	}

	opts := options{
		schemas:   splitList(*schemas),
		ctype:     strings.TrimSpace(*ctype),
		document:  strings.TrimSpace(*documentPath),
		bodyField: strings.TrimSpace(*bodyField),
		fixtures:  strings.TrimSpace(*fixtures),
		mode:      strings.ToLower(strings.TrimSpace(*mode)),
		view:      *view,
		language:  strings.TrimSpace(*language),
		languages: splitList(*languages),
		database:  strings.TrimSpace(*database),
		logLevel:  strings.TrimSpace(*logLevel),
		logFormat: strings.TrimSpace(*logFormat),
	}
	if opts.ctype == "" {
		fmt.Fprintln(stderr, "fieldkit: -ctype is required")
		return options{}, errUsage
	}
	switch opts.mode {
	case modePresent, modeStore, modeSave, modeForm:
	default:
		fmt.Fprintf(stderr, "fieldkit: unknown mode %q\n", opts.mode)
		return options{}, errUsage
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	module, closeFn, err := moduleBuilder(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := module.Compile(ctx, opts.ctype); err != nil {
		return err
	}
	if opts.fixtures != "" {
		if err := seedFixtures(ctx, module, opts.fixtures); err != nil {
			return err
		}
	}

	doc, err := readDocument(opts.document, opts.bodyField, stdin)
	if err != nil {
		return err
	}

	switch opts.mode {
	case modeForm:
		out, err := module.RenderForm(ctx, opts.ctype, doc, opts.language)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(stdout, "%s\n%s\n", out.Markup, out.ScriptsHTML())
		return err
	case modeStore:
		result, err := module.StoreDocument(ctx, opts.ctype, doc, opts.language)
		if err != nil {
			return err
		}
		return writeResult(stdout, result)
	case modeSave:
		result, err := module.Save(ctx, opts.ctype, doc, opts.language)
		if err != nil {
			return err
		}
		return writeResult(stdout, result)
	default:
		mode := fieldkit.ModeEdit
		if opts.view {
			mode = fieldkit.ModeView
		}
		result, err := module.Present(ctx, opts.ctype, doc, mode, opts.language)
		if err != nil {
			return err
		}
		return writeResult(stdout, result)
	}
}

func buildModule(opts options) (*fieldkit.Module, func(), error) {
	loader, err := fieldkit.LoadSchemas(opts.schemas...)
	if err != nil {
		return nil, nil, fmt.Errorf("load schemas: %w", err)
	}

	cfg := fieldkit.DefaultConfig()
	if len(opts.languages) > 0 {
		cfg.Languages = opts.languages
		cfg.DefaultLanguage = opts.languages[0]
	}
	if opts.logLevel != "" {
		cfg.Features.Logger = true
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Level = opts.logLevel
		cfg.Logging.Format = opts.logFormat
	}

	diOpts := []fieldkit.Option{fieldkit.WithSchemaLoader(loader)}
	closeFn := func() {}
	if opts.database != "" {
		sqlDB, err := sql.Open("sqlite3", opts.database)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		closeFn = func() { _ = sqlDB.Close() }
		db, err := storage.NewBunDB(sqlDB, "sqlite")
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		cfg.Storage.Provider = "bun"
		cfg.Storage.Dialect = "sqlite"
		diOpts = append(diOpts, fieldkit.WithBunDB(db))
	}

	module, err := fieldkit.New(cfg, diOpts...)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("initialise fieldkit module: %w", err)
	}
	return module, closeFn, nil
}

func seedFixtures(ctx context.Context, module *fieldkit.Module, path string) error {
	docs, err := testsupport.LoadDocuments(path)
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	return docs.Seed(ctx, module.DocumentStore())
}

func readDocument(path, bodyField string, stdin io.Reader) (map[string]any, error) {
	var (
		raw []byte
		err error
	)
	if path == "" || path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc := map[string]any{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return doc, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		body, err := frontmatter.Parse(bytes.NewReader(raw), &doc)
		if err != nil {
			return nil, fmt.Errorf("parse frontmatter: %w", err)
		}
		if bodyField != "" {
			doc[bodyField] = string(bytes.TrimSpace(body))
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

func writeResult(w io.Writer, result fieldkit.Result) error {
	payload := map[string]any{"document": result.Document}
	if len(result.Created) > 0 {
		payload["created"] = result.Created
	}
	if len(result.FieldErrors) > 0 {
		fieldErrors := make(map[string]string, len(result.FieldErrors))
		for key, err := range result.FieldErrors {
			fieldErrors[key] = err.Error()
		}
		payload["field_errors"] = fieldErrors
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
