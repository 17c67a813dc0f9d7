// Package cli executes one invocation end to end: it resolves the positional
// argument into a pre-defined query or a literal API path, fetches through
// the cached session, shapes the records, and renders the result.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/oauth2"

	"tmc/internal/api"
	"tmc/internal/cache"
	"tmc/internal/config"
	"tmc/internal/pdq"
	"tmc/internal/query"
	"tmc/internal/render"
	"tmc/internal/transform"
	"tmc/pkg/logging"
)

// Options carries the collaborators a Runner is built from. Unset fields fall
// back to production defaults so tests inject only what they fake.
type Options struct {
	Config *config.Config
	Flags  *CommandFlags
	// Doer performs HTTP requests. Nil builds the default client, which
	// injects the configured bearer token unless an Authorization header
	// flag overrides it.
	Doer api.Doer
	// Out receives the rendered result. Nil means stdout.
	Out io.Writer
	// ErrOut receives progress and notices. Nil means stderr.
	ErrOut io.Writer
	// DumpDir receives pre-defined query dump files. Empty means the system
	// temp directory.
	DumpDir string
}

// Runner runs queries against the configured API. One Runner serves one
// invocation; requests execute one at a time through a shared cache session.
type Runner struct {
	cfg      *config.Config
	flags    *CommandFlags
	registry *pdq.Registry
	session  *query.Session
	out      io.Writer
	errOut   io.Writer
	dumpDir  string
}

// NewRunner wires the client, cache store, and query registry from the
// options. Config-file queries register over the built-ins here, so an
// invalid definition fails before any request goes out.
func NewRunner(opts Options) (*Runner, error) {
	cfg := opts.Config
	flags := opts.Flags
	if flags == nil {
		flags = &CommandFlags{}
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.ErrOut
	if errOut == nil {
		errOut = os.Stderr
	}

	extra, err := ParseHTTPHeaders(flags.HTTPHeaders)
	if err != nil {
		return nil, err
	}

	doer := opts.Doer
	if doer == nil {
		doer = newDoer(cfg, extra)
	}
	client := api.NewClient(cfg.APIBaseURL(), doer, extra)

	var store cache.Store = cache.Nop{}
	if !cfg.NoCache {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		store = cache.NewDisk(dir, cfg.Cache.TTL())
	}

	registry := pdq.NewRegistry()
	for _, def := range cfg.PDQs {
		p, err := def.Compile()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	dumpDir := opts.DumpDir
	if dumpDir == "" {
		dumpDir = os.TempDir()
	}

	return &Runner{
		cfg:      cfg,
		flags:    flags,
		registry: registry,
		session:  query.NewSession(client, store, cfg.Pagination.Defaults()),
		out:      out,
		errOut:   errOut,
		dumpDir:  dumpDir,
	}, nil
}

// newDoer builds the default HTTP client. It injects the configured bearer
// token unless the caller supplied their own Authorization header, in which
// case the plain client lets that header through untouched.
func newDoer(cfg *config.Config, extra map[string]string) api.Doer {
	for k := range extra {
		if http.CanonicalHeaderKey(k) == "Authorization" {
			return http.DefaultClient
		}
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	return oauth2.NewClient(context.Background(), src)
}

// Run executes one query. The argument is the pdqs pseudo-query, a registered
// pre-defined query name, or a literal API path. An argument without a slash
// cannot be a path, so an unregistered one is a missing query name.
func (r *Runner) Run(ctx context.Context, arg string) error {
	switch {
	case arg == "pdqs":
		return r.listPDQs()
	case r.registry.Contains(arg):
		return r.runPDQ(ctx, arg)
	case !strings.Contains(arg, "/"):
		return &pdq.NotFoundError{Name: arg}
	default:
		return r.runPath(ctx, arg)
	}
}

// listPDQs renders the registered query names as a one-column table.
func (r *Runner) listPDQs() error {
	tw := render.NewTableWriter(r.out, []render.Column{{Path: "name"}})
	for _, name := range r.registry.Names() {
		tw.Append(map[string]any{"name": name})
	}
	tw.Render()
	return nil
}

// runPDQ executes a pre-defined query, renders its table, and dumps the raw
// joined records beside it.
func (r *Runner) runPDQ(ctx context.Context, name string) error {
	p, err := r.registry.Resolve(name)
	if err != nil {
		return err
	}

	stop := r.startSpinner(fmt.Sprintf(" Running %s...", name))
	records, err := pdq.Execute(ctx, r.session, p, r.flags.Limit)
	stop()
	if err != nil {
		return err
	}

	columns := make([]render.Column, 0, len(p.Headers))
	for _, h := range p.Headers {
		columns = append(columns, render.Column{Path: h})
	}
	if len(columns) == 0 {
		columns = render.AutoColumns(records)
	}
	tw := render.NewTableWriter(r.out, columns)
	for _, record := range records {
		tw.Append(record)
	}
	tw.Render()

	r.dump(name, records)
	return nil
}

// runPath fetches a literal API path. With --headers the records render as a
// table, otherwise the response pretty-prints as JSON.
func (r *Runner) runPath(ctx context.Context, arg string) error {
	req, err := parsePathArg(arg)
	if err != nil {
		return err
	}
	if r.flags.Headers != "" {
		return r.runTable(ctx, req)
	}
	return r.runJSON(ctx, req)
}

// runTable fetches the path as a paginated collection and renders the columns
// named by --headers. Without --paginate the records field defaults to the
// path's last segment, the API's list-response convention.
func (r *Runner) runTable(ctx context.Context, req api.Request) error {
	if r.flags.Transform != "" {
		logging.Debug("cli", "--transform is ignored when --headers is set")
	}
	items := r.flags.Paginate
	if items == "" {
		items = lastSegment(req.Path)
	}

	stop := r.startSpinner(" Fetching " + req.Path + "...")
	records, err := r.session.Fetch(ctx, req, query.Pagination{Items: items}, r.flags.Limit)
	stop()
	if err != nil {
		return err
	}

	columns := headerColumns(r.flags.Headers)
	if len(columns) == 0 {
		columns = render.AutoColumns(records)
	}
	tw := render.NewTableWriter(r.out, columns)
	for _, record := range records {
		tw.Append(record)
	}
	tw.Render()
	return nil
}

// runJSON fetches the path and pretty-prints the response. With --paginate
// the accumulated records print as a list, otherwise the body comes back
// as-is. A --transform expression reshapes the value first.
func (r *Runner) runJSON(ctx context.Context, req api.Request) error {
	expr := transform.Parse(r.flags.Transform)

	stop := r.startSpinner(" Fetching " + req.Path + "...")
	var value any
	var err error
	if r.flags.Paginate != "" {
		var records []any
		records, err = r.session.Fetch(ctx, req, query.Pagination{Items: r.flags.Paginate}, r.flags.Limit)
		value = records
	} else {
		value, err = r.session.FetchValue(ctx, req)
	}
	stop()
	if err != nil {
		return err
	}

	value, err = transform.Apply(value, expr)
	if err != nil {
		return err
	}
	return render.JSON(r.out, value)
}

// dump writes the raw records of a pre-defined query next to the rendered
// table so follow-up inspection needs no refetch. An empty result leaves no
// file behind. A failed dump is a warning, not a failed run.
func (r *Runner) dump(name string, records []any) {
	if len(records) == 0 {
		return
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logging.Warn("cli", "encoding dump for %s: %v", name, err)
		return
	}
	path := filepath.Join(r.dumpDir, name+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		logging.Warn("cli", "writing dump %s: %v", path, err)
		return
	}
	fmt.Fprintln(r.errOut, text.FgGreen.Sprintf("written %s", path))
}

// startSpinner shows fetch progress on stderr. It stays off in quiet and
// debug runs and when stderr is not a terminal, keeping piped output clean.
// The returned func stops it.
func (r *Runner) startSpinner(suffix string) func() {
	if r.flags.Quiet || r.cfg.Debug {
		return func() {}
	}
	f, ok := r.errOut.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(r.errOut))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

// parsePathArg splits an API path argument into its path and query parts, so
// parameters typed into the argument merge with the ones pagination adds.
func parsePathArg(arg string) (api.Request, error) {
	path, rawQuery, _ := strings.Cut(arg, "?")
	req := api.NewRequest(path)
	if rawQuery == "" {
		return req, nil
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return api.Request{}, &UsageError{Message: fmt.Sprintf("invalid query string in %q: %v", arg, err)}
	}
	for key := range values {
		req = req.WithParam(key, values.Get(key))
	}
	return req, nil
}

// headerColumns parses the --headers list. Labels shorten to the last path
// segment so deep paths stay readable in the header row.
func headerColumns(raw string) []render.Column {
	var columns []render.Column
	for _, path := range strings.Split(raw, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		columns = append(columns, render.Column{Path: path, Label: lastDotSegment(path)})
	}
	return columns
}

func lastDotSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func lastSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
