package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/TFMV/cohortviz/ingest"
	"github.com/TFMV/cohortviz/models"
	"github.com/TFMV/cohortviz/render"
	"github.com/TFMV/cohortviz/search"
)

// Config holds the server settings.
type Config struct {
	Addr       string
	RosterPath string // local roster file to load, and watch when Watch is set
	RosterURL  string // remote roster to fetch once at startup
	Layout     string
	Watch      bool

	// Tune, when set, is applied to every graph before it goes live:
	// the initial roster, uploads, and watch reloads alike.
	Tune func(*models.Graph)
}

// tickInterval drives the single simulation loop, roughly 30 frames/second.
const tickInterval = 33 * time.Millisecond

// Server hosts the live cohort graph: one HTTP surface, one WebSocket hub,
// and a single tick loop advancing the simulation.
type Server struct {
	config Config
	state  *State
	hub    *Hub
	http   *http.Server
}

// New loads the roster and wires up the server. A roster that cannot be
// fetched or parsed is fatal; there is no retry.
func New(config Config) (*Server, error) {
	graph, err := loadInitialGraph(config)
	if err != nil {
		return nil, err
	}
	if config.Tune != nil {
		config.Tune(graph)
	}

	state, err := NewState(graph, config.Layout)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: config,
		state:  state,
		hub:    NewHub(state),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/visualize", s.handleVisualize)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/api/graph", s.handleAPIGraph)
	mux.HandleFunc("/api/search", s.handleAPISearch)
	mux.HandleFunc("/ws", s.hub.HandleWS)

	s.http = &http.Server{
		Addr:         config.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Handler exposes the HTTP surface, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// loadInitialGraph resolves the roster source: a remote URL wins over a
// local path, and with neither set the bundled sample roster serves.
func loadInitialGraph(config Config) (*models.Graph, error) {
	switch {
	case config.RosterURL != "":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		data, err := ingest.FetchRoster(ctx, config.RosterURL)
		if err != nil {
			return nil, err
		}
		records, err := ingest.DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("decoding remote roster: %w", err)
		}
		return ingest.BuildGraph("Remote Roster", records, ingest.DefaultPalette())

	case config.RosterPath != "":
		return ingest.LoadFile(config.RosterPath)

	default:
		return ingest.SampleGraph()
	}
}

// Start runs the server until the context is canceled or a signal arrives,
// then shuts down cleanly.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("serving cohort graph on %s", s.config.Addr)
		err := s.http.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return s.tickLoop(ctx)
	})

	if s.config.Watch && s.config.RosterPath != "" {
		g.Go(func() error {
			return s.watchRoster(ctx, s.config.RosterPath)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// tickLoop is the one goroutine that advances the simulation. Handlers and
// the hub only ever mutate state through State's mutex, so layout stepping
// stays single-threaded.
func (s *Server) tickLoop(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			wasResting := s.state.AtRest()
			positions := s.state.Step()
			// A settled simulation produces identical frames; skip them.
			// Drags wake the layout, so pin motion always broadcasts.
			if wasResting && s.state.AtRest() {
				continue
			}
			if s.hub.ClientCount() > 0 {
				s.hub.BroadcastPositions(positions)
			}
		}
	}
}

// handleIndex serves the interactive page for the live graph.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	graph := s.state.Snapshot()

	options := render.NewDefaultOptions("html")
	options.Width = graph.Width
	options.Height = graph.Height
	options.LiveEndpoint = "/ws"

	output, err := (&render.HTMLRenderer{}).Render(graph, options)
	if err != nil {
		http.Error(w, "Error rendering page: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.Write(output)
}

// handleVisualize renders a static snapshot of the live graph in the
// requested format.
func (s *Server) handleVisualize(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}

	renderer, err := render.GetRenderer(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	graph := s.state.Snapshot()

	options := render.NewDefaultOptions(format)
	options.Width = graph.Width
	options.Height = graph.Height
	if v := r.URL.Query().Get("width"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			options.Width = float64(n)
		}
	}
	if v := r.URL.Query().Get("height"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			options.Height = float64(n)
		}
	}

	output, err := renderer.Render(graph, options)
	if err != nil {
		http.Error(w, "Error generating visualization: "+err.Error(), http.StatusInternalServerError)
		return
	}

	switch strings.ToLower(format) {
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	case "html":
		w.Header().Set("Content-Type", "text/html")
	case "json":
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write(output)
}

// handleUpload swaps the live roster for an uploaded file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form, capped at 10 MB
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Error parsing form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("rosterFile")
	if err != nil {
		http.Error(w, "Error retrieving file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error reading file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	format := strings.TrimPrefix(filepath.Ext(handler.Filename), ".")
	processor, err := ingest.GetProcessor(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	graph, err := processor.ProcessData(data)
	if err != nil {
		http.Error(w, "Error processing roster: "+err.Error(), http.StatusBadRequest)
		return
	}
	graph.Name = handler.Filename
	if s.config.Tune != nil {
		s.config.Tune(graph)
	}

	if err := s.state.Swap(graph); err != nil {
		http.Error(w, "Error installing roster: "+err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("roster uploaded: %s (%d contributors)", handler.Filename, len(graph.Contributors))
	s.hub.BroadcastReload()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleAPIGraph returns the current graph as JSON.
func (s *Server) handleAPIGraph(w http.ResponseWriter, r *http.Request) {
	graph := s.state.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(graph)
}

type searchHit struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type searchResponse struct {
	Query     string      `json:"query"`
	Filtering bool        `json:"filtering"`
	Best      string      `json:"best"`
	Hits      []searchHit `json:"hits"`
}

// handleAPISearch scores the roster against the q parameter. Hits are
// ranked by score, roster order breaking ties.
func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	graph := s.state.Snapshot()

	result := search.Apply(graph.Contributors, query)

	resp := searchResponse{
		Query:     query,
		Filtering: result.Filtering,
		Best:      result.Best,
		Hits:      []searchHit{},
	}
	if result.Filtering {
		matched := graph.FilterContributors(func(c *models.Contributor) bool {
			return result.Matched[c.Slug]
		})
		for _, c := range matched {
			resp.Hits = append(resp.Hits, searchHit{Slug: c.Slug, Name: c.Name, Score: result.Scores[c.Slug]})
		}
		sort.SliceStable(resp.Hits, func(i, j int) bool {
			return resp.Hits[i].Score > resp.Hits[j].Score
		})
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(resp)
}
