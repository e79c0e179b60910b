package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opentiming/finishline/internal/archive"
	"github.com/opentiming/finishline/internal/autosave"
	"github.com/opentiming/finishline/internal/config"
	"github.com/opentiming/finishline/internal/export"
	"github.com/opentiming/finishline/internal/race"
	"github.com/opentiming/finishline/internal/rosterwatch"
	"github.com/opentiming/finishline/internal/sessionstore"
	"github.com/opentiming/finishline/tui"
	"github.com/opentiming/finishline/web/api"
)

var (
	runSession    string
	runNew        string
	runCategories []string
	runWeb        bool
	exportSession string
)

func init() {
	// run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the timing console",
		RunE:  runRun,
	}
	runCmd.Flags().StringVar(&runSession, "session", "", "session file to load (default: most recent)")
	runCmd.Flags().StringVar(&runNew, "new", "", "start a new session with this name")
	runCmd.Flags().StringArrayVar(&runCategories, "category", nil,
		"add a category as NAME:CSV_PATH[:ID_COLUMN] (repeatable)")
	runCmd.Flags().BoolVar(&runWeb, "web", false, "serve live results over HTTP")
	rootCmd.AddCommand(runCmd)

	// export command
	exportCmd := &cobra.Command{
		Use:   "export [PATH]",
		Short: "Export results to a spreadsheet",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&exportSession, "session", "", "session file to export (default: most recent)")
	rootCmd.AddCommand(exportCmd)

	// sessions command
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions",
		RunE:  runSessions,
	}
	rootCmd.AddCommand(sessionsCmd)

	// archive command
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Work with the results archive",
	}
	archiveCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List archived sessions",
		RunE:  runArchiveList,
	})
	archiveCmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show archived results for a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveShow,
	})
	archiveCmd.AddCommand(&cobra.Command{
		Use:   "add SESSION_FILE",
		Short: "Archive a saved session file",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchiveAdd,
	})
	rootCmd.AddCommand(archiveCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

// loadSession resolves which session file to open: an explicit path,
// the most recently saved one, or a fresh session when none exist.
func loadSession(store *sessionstore.Store, explicit string) (*race.Session, error) {
	path := explicit
	if path == "" {
		latest, err := store.Latest()
		if err != nil {
			return nil, err
		}
		path = latest
	}
	if path == "" {
		return race.NewSession(), nil
	}
	return store.Load(path)
}

// parseCategorySpec splits NAME:CSV_PATH[:ID_COLUMN]. The ID column
// defaults to A.
func parseCategorySpec(spec string) (name, csvPath, idColumn string, err error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("bad category spec %q, want NAME:CSV_PATH[:ID_COLUMN]", spec)
	}
	name, csvPath, idColumn = parts[0], parts[1], "A"
	if len(parts) == 3 && parts[2] != "" {
		idColumn = parts[2]
	}
	return name, csvPath, idColumn, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := sessionstore.New(cfg.General.DataDir)

	var session *race.Session
	if runNew != "" {
		session = race.NewSession()
		session.Name = runNew
	} else {
		session, err = loadSession(store, runSession)
		if err != nil {
			return err
		}
	}

	for _, spec := range runCategories {
		name, csvPath, idColumn, err := parseCategorySpec(spec)
		if err != nil {
			return err
		}
		category, err := race.LoadCategory(name, csvPath, idColumn)
		if err != nil {
			return fmt.Errorf("loading category %s: %w", name, err)
		}
		session.AddCategory(category)
	}

	recorder := race.NewRecorder(session)

	saveFn := func() (string, error) {
		var path string
		var saveErr error
		recorder.Update(func(s *race.Session) {
			path, saveErr = store.Save(s)
		})
		return path, saveErr
	}
	exportFn := func(path string) error {
		var exportErr error
		recorder.View(func(s *race.Session) {
			exportErr = export.Session(s, path)
		})
		return exportErr
	}

	saver, err := autosave.New(cfg.General.AutosaveSchedule, func() error {
		_, err := saveFn()
		return err
	})
	if err != nil {
		return fmt.Errorf("bad autosave schedule %q: %w", cfg.General.AutosaveSchedule, err)
	}

	watcher, err := rosterwatch.New(func(paths []string) {
		for _, p := range paths {
			log.Printf("roster file changed after load: %s", p)
		}
	})
	if err != nil {
		return err
	}
	recorder.View(func(s *race.Session) {
		for _, c := range s.Categories {
			if c.CSVPath == "" {
				continue
			}
			if err := watcher.AddFile(c.CSVPath); err != nil {
				log.Printf("cannot watch %s: %v", c.CSVPath, err)
			}
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if runWeb || cfg.Web.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
		srv := api.NewServer(recorder, addr)
		recorder.SetEntryListener(srv.BroadcastEntry)
		g.Go(func() error { return srv.Serve(ctx) })
	}

	saver.Start()
	watcher.Start(ctx)

	model := tui.NewModel(tui.Options{
		Recorder:    recorder,
		Save:        saveFn,
		Export:      exportFn,
		RecentCount: cfg.Display.RecentEntries,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, runErr := p.Run()

	saver.Stop()
	watcher.Stop()
	cancel()
	if err := g.Wait(); err != nil {
		log.Printf("results server: %v", err)
	}
	if runErr != nil {
		return runErr
	}

	path, err := saveFn()
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Printf("Session saved to %s\n", path)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := sessionstore.New(cfg.General.DataDir)

	session, err := loadSession(store, exportSession)
	if err != nil {
		return err
	}
	if session.EntryCount() == 0 {
		return fmt.Errorf("no finish entries to export")
	}

	path := export.DefaultFilename()
	if len(args) == 1 {
		path = args[0]
	}
	if err := export.Session(session, path); err != nil {
		return err
	}
	fmt.Printf("Exported %d entries to %s\n", session.EntryCount(), path)
	return nil
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := sessionstore.New(cfg.General.DataDir)

	paths, err := store.List()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("No saved sessions")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORIES\tENTRIES\tLAST SAVED\tPATH")
	for _, path := range paths {
		s, err := store.Load(path)
		if err != nil {
			fmt.Fprintf(w, "-\t-\t-\t-\t%s (unreadable: %v)\n", path, err)
			continue
		}
		lastSaved := "-"
		if !s.LastSaved.IsZero() {
			lastSaved = s.LastSaved.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			s.Name, len(s.Categories), s.EntryCount(), lastSaved, path)
	}
	return w.Flush()
}

func openArchive(cfg *config.Config) (*archive.Store, error) {
	return archive.New(cfg.General.ArchivePath)
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions, err := store.ListSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("Archive is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORIES\tENTRIES\tARCHIVED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\n",
			s.ID, s.Name, s.CategoryCount, s.EntryCount,
			s.ArchivedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runArchiveShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad session id %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.SessionResults(id)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No results for that session")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tRANK\tID\tNAME\tTEAM\tTIME")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\t%s\n",
			r.Category, r.Rank, r.ParticipantID, r.FirstName, r.LastName,
			r.Team, r.ElapsedTime)
	}
	return w.Flush()
}

func runArchiveAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sessions := sessionstore.New(cfg.General.DataDir)

	session, err := sessions.Load(args[0])
	if err != nil {
		return err
	}

	store, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.ArchiveSession(session)
	if err != nil {
		return err
	}
	fmt.Printf("Archived %q as session %d\n", session.Name, id)
	return nil
}
