// Command varnorm translates variant notations, computes
// content-addressed identifiers, and manages a local sequence
// repository.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/seqvarlab/varnorm/core/dataproxy"
	"github.com/seqvarlab/varnorm/core/digest"
	"github.com/seqvarlab/varnorm/core/models"
	"github.com/seqvarlab/varnorm/core/seqstore"
	"github.com/seqvarlab/varnorm/core/translate"
	"github.com/seqvarlab/varnorm/internal/api"
	"github.com/seqvarlab/varnorm/internal/fasta"
	"github.com/seqvarlab/varnorm/internal/logging"
	"github.com/seqvarlab/varnorm/internal/ncbi"
)

const version = "0.1.0"

// CLI defines the command-line interface for varnorm.
var CLI struct {
	// Global flags
	RepoDir   string `name:"repo" help:"Sequence repository directory" default:"./seqrepo" type:"path"`
	DBPath    string `name:"db" help:"SQLite sequence database (overrides --repo)" type:"path"`
	RefgetURL string `name:"refget-url" help:"Remote refget service base URL (overrides --repo and --db)"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"json" enum:"json,text"`

	Translate TranslateGroup `cmd:"" help:"Translate variant notations"`
	Digest    DigestCmd      `cmd:"" help:"Compute a truncated SHA-512 digest"`
	Repo      RepoGroup      `cmd:"" help:"Sequence repository operations"`
	Serve     ServeCmd       `cmd:"" help:"Start REST API server"`
	Version   VersionCmd     `cmd:"" help:"Print version information"`
}

// TranslateGroup contains notation translation operations.
type TranslateGroup struct {
	From FromCmd `cmd:"" help:"Parse a variant expression into a canonical allele"`
	To   ToCmd   `cmd:"" help:"Render a canonical allele in a target notation"`
}

// RepoGroup contains sequence repository operations.
type RepoGroup struct {
	Add      RepoAddCmd      `cmd:"" help:"Ingest FASTA sequences into the repository"`
	Info     RepoInfoCmd     `cmd:"" help:"Show metadata for a sequence"`
	Annotate RepoAnnotateCmd `cmd:"" help:"Fetch NCBI metadata and register aliases"`
}

// openProxy opens the selected sequence backend behind a caching
// proxy: a remote refget service, a SQLite database, or the on-disk
// repository.
func openProxy() (dataproxy.SequenceDataProxy, error) {
	var inner dataproxy.SequenceDataProxy
	switch {
	case CLI.RefgetURL != "":
		inner = dataproxy.NewRESTProxy(CLI.RefgetURL, nil)
	case CLI.DBPath != "":
		p, err := dataproxy.OpenSQLiteProxy(CLI.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sequence database %s: %w", CLI.DBPath, err)
		}
		inner = p
	default:
		store, err := seqstore.New(CLI.RepoDir)
		if err != nil {
			return nil, fmt.Errorf("open repository %s: %w", CLI.RepoDir, err)
		}
		inner = dataproxy.NewStoreProxy(store)
	}
	return dataproxy.NewCachingProxy(inner, dataproxy.DefaultCacheSize), nil
}

func openStore() (*seqstore.Store, error) {
	store, err := seqstore.New(CLI.RepoDir)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", CLI.RepoDir, err)
	}
	return store, nil
}

// FromCmd parses a variant expression into a canonical allele.
type FromCmd struct {
	Expression  string `arg:"" help:"Variant expression (HGVS, SPDI, gnomAD, or Beacon)"`
	Format      string `help:"Input notation (hgvs, spdi, gnomad, beacon); inferred when empty"`
	Assembly    string `help:"Assembly for bare chromosome names" default:"GRCh38"`
	NoNormalize bool   `name:"no-normalize" help:"Skip normalization"`
	NoValidate  bool   `name:"no-validate" help:"Skip reference sequence validation"`
}

func (c *FromCmd) Run() error {
	proxy, err := openProxy()
	if err != nil {
		return err
	}
	tr := translate.New(proxy, translate.WithAssemblyName(c.Assembly))

	opts := []translate.Option{}
	if c.NoNormalize {
		opts = append(opts, translate.WithNormalize(false))
	}
	if c.NoValidate {
		opts = append(opts, translate.WithValidation(false))
	}

	allele, err := tr.TranslateFrom(context.Background(), c.Expression, c.Format, opts...)
	if err != nil {
		return err
	}

	return printJSON(allele)
}

// ToCmd renders a canonical allele in a target notation.
type ToCmd struct {
	Format   string `arg:"" help:"Target notation (hgvs, spdi, gnomad, beacon)"`
	File     string `help:"Allele JSON file (defaults to stdin)" type:"existingfile"`
	Assembly string `help:"Assembly for bare chromosome names" default:"GRCh38"`
}

func (c *ToCmd) Run() error {
	data, err := readInput(c.File)
	if err != nil {
		return err
	}

	var allele models.Allele
	if err := json.Unmarshal(data, &allele); err != nil {
		return fmt.Errorf("parse allele JSON: %w", err)
	}

	proxy, err := openProxy()
	if err != nil {
		return err
	}
	tr := translate.New(proxy, translate.WithAssemblyName(c.Assembly))

	exprs, err := tr.TranslateTo(context.Background(), &allele, c.Format)
	if err != nil {
		return err
	}

	for _, expr := range exprs {
		fmt.Println(expr)
	}
	return nil
}

// DigestCmd computes the truncated SHA-512 digest of its input.
type DigestCmd struct {
	Input  string `arg:"" optional:"" help:"Input string ('-' or empty reads stdin)"`
	Refget bool   `help:"Print as a refget SQ. accession"`
}

func (c *DigestCmd) Run() error {
	var data []byte
	if c.Input == "" || c.Input == "-" {
		stdin, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		data = stdin
	} else {
		data = []byte(c.Input)
	}

	dgst := digest.SHA512t24u(data)
	if c.Refget {
		fmt.Println("SQ." + dgst)
	} else {
		fmt.Println(dgst)
	}
	return nil
}

// RepoAddCmd ingests FASTA sequences into the repository.
type RepoAddCmd struct {
	Path string `arg:"" help:"FASTA file (optionally gzip- or xz-compressed)" type:"existingfile"`
}

func (c *RepoAddCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	results, err := fasta.IngestStore(store, c.Path)
	if err != nil {
		return err
	}

	for _, res := range results {
		fmt.Printf("%s\t%s\t%d\n", res.Name, res.Accession, res.Length)
	}
	return nil
}

// RepoInfoCmd shows metadata for a sequence.
type RepoInfoCmd struct {
	ID string `arg:"" help:"Accession or alias"`
}

func (c *RepoInfoCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	acc := c.ID
	if !store.Exists(acc) {
		resolved, err := store.Resolve(acc)
		if err != nil {
			return err
		}
		acc = resolved
	}

	meta, err := store.Metadata(acc)
	if err != nil {
		return err
	}

	fmt.Printf("accession: %s\n", acc)
	fmt.Printf("length:    %d\n", meta.Length)
	for _, alias := range meta.Aliases {
		fmt.Printf("alias:     %s\n", alias)
	}
	return nil
}

// RepoAnnotateCmd fetches NCBI esummary metadata for accessions and
// registers the derived aliases in the repository.
type RepoAnnotateCmd struct {
	Accessions []string      `arg:"" help:"RefSeq accessions to annotate"`
	BaseURL    string        `name:"base-url" help:"E-utilities base URL (for testing)"`
	Timeout    time.Duration `help:"Request timeout" default:"30s"`
}

func (c *RepoAnnotateCmd) Run() error {
	store, err := openStore()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	client := ncbi.NewClient(c.BaseURL)
	summaries, err := client.FetchSummaries(ctx, c.Accessions...)
	if err != nil {
		return err
	}

	for _, s := range summaries {
		acc, err := store.Resolve("refseq:" + s.AccessionVersion)
		if err != nil {
			logging.Warn("accession not in repository, skipping",
				"accession", s.AccessionVersion)
			continue
		}
		seq, err := store.Get(acc)
		if err != nil {
			return err
		}
		if s.Length > 0 && s.Length != len(seq) {
			logging.Warn("length mismatch between repository and NCBI",
				"accession", s.AccessionVersion,
				"repository", len(seq),
				"ncbi", s.Length)
		}
		if _, err := store.Put(seq, s.Aliases()...); err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", s.AccessionVersion, s.Title)
	}
	return nil
}

// ServeCmd starts the REST API server.
type ServeCmd struct {
	Port           int      `help:"HTTP server port" default:"8081"`
	Assembly       string   `help:"Assembly for bare chromosome names" default:"GRCh38"`
	CacheSize      int      `name:"cache-size" help:"Sequence slice cache entries" default:"512"`
	RateLimit      int      `name:"rate-limit" help:"Requests per minute (0 = disabled)"`
	APIKey         string   `name:"api-key" help:"Require this API key on requests" env:"VARNORM_API_KEY"`
	TLSCert        string   `name:"tls-cert" help:"TLS certificate file" type:"path"`
	TLSKey         string   `name:"tls-key" help:"TLS private key file" type:"path"`
	AllowedOrigins []string `name:"allowed-origins" help:"CORS allowed origins (empty = allow all)"`
}

func (c *ServeCmd) Run() error {
	api.Version = version
	cfg := api.Config{
		Port:              c.Port,
		RepoDir:           CLI.RepoDir,
		DBPath:            CLI.DBPath,
		RefgetURL:         CLI.RefgetURL,
		CacheSize:         c.CacheSize,
		AssemblyName:      c.Assembly,
		RateLimitRequests: c.RateLimit,
		AllowedOrigins:    c.AllowedOrigins,
		Auth: api.AuthConfig{
			Enabled: c.APIKey != "",
			APIKey:  c.APIKey,
		},
		TLS: api.TLSConfig{
			Enabled:  c.TLSCert != "" || c.TLSKey != "",
			CertFile: c.TLSCert,
			KeyFile:  c.TLSKey,
		},
	}
	return api.Start(cfg)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("varnorm version %s\n", version)
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func initLogging() {
	level := logging.LevelInfo
	switch CLI.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	format := logging.FormatJSON
	if CLI.LogFormat == "text" {
		format = logging.FormatText
	}
	logging.InitLogger(level, format)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("varnorm"),
		kong.Description("Variant notation translation and content-addressed identifiers"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	initLogging()
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
