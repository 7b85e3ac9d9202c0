package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"warden.ai/internal/persistence/bans"
	"warden.ai/internal/persistence/ledger"
	persistlog "warden.ai/internal/persistence/log"
	"warden.ai/internal/sim/catalogs"
	"warden.ai/internal/sim/session"
	"warden.ai/internal/sim/tuning"
	"warden.ai/internal/transport/ws"
	"warden.ai/internal/warden"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to warden.yaml (default: <configs>/warden.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[warden] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "warden.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		// Names only feed user-facing messages; numeric fallbacks suffice.
		logger.Printf("load catalogs: %v; using numeric item names", err)
		cats = nil
	}

	store, err := ledger.OpenSQLite(tune.LedgerDBPath, logger)
	if err != nil {
		logger.Fatalf("open ledger: %v", err)
	}
	defer store.Close()

	banStore, err := bans.OpenSQLite(tune.BansDBPath)
	if err != nil {
		logger.Fatalf("open ban store: %v", err)
	}
	defer banStore.Close()

	audit := persistlog.NewSweepAuditLogger(*dataDir)
	defer audit.Close()

	reg := session.NewRegistry()

	resolver := func(name, token string) *session.Account {
		id, uuid, ok, err := banStore.LookupUser(name)
		if err != nil {
			logger.Printf("account lookup %q: %v", name, err)
			return nil
		}
		if !ok {
			return nil
		}
		return &session.Account{ID: id, Username: name, UUID: uuid}
	}

	srv := ws.NewServer(reg, resolver, tune.InventorySlots, logger)
	srv.SetDropHandler(warden.NewRecorder(store, srv, logger))

	sweeper := warden.NewSweeper(warden.SweeperConfig{
		Directory: reg,
		Ledger:    store,
		Policy:    warden.NewPolicy(tune.IllegalItems, tune.MaxStackLimit),
		Enforcer:  warden.NewEnforcer(banStore, srv, tune.BanReason, tune.BanOrigin, logger),
		Sink:      srv,
		Catalogs:  cats,
		Audit:     audit,
		Logger:    logger,
		Interval:  time.Duration(tune.ScanIntervalMs) * time.Millisecond,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("sweeper: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s (scan every %dms, max stack %d, %d illegal item kinds)",
		*addr, tune.ScanIntervalMs, tune.MaxStackLimit, len(tune.IllegalItems))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}
}
