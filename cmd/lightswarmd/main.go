// Command lightswarmd wires the lighting middleware's components into a
// running process: it loads configuration and an inventory seed, opens
// the transport (real serial port or in-memory simulator), starts the
// simulator and audit log as observers, and serves a minimal status
// endpoint. Request validation, the HTTP API surface proper, and the
// admin dashboard are external collaborators' concern; this binary only
// proves the core wiring works end to end.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/kohnman/lightswarm/internal/animation"
	"github.com/kohnman/lightswarm/internal/apperr"
	"github.com/kohnman/lightswarm/internal/auditlog"
	"github.com/kohnman/lightswarm/internal/codec"
	"github.com/kohnman/lightswarm/internal/config"
	"github.com/kohnman/lightswarm/internal/inventory"
	"github.com/kohnman/lightswarm/internal/obslog"
	"github.com/kohnman/lightswarm/internal/resolver"
	"github.com/kohnman/lightswarm/internal/session"
	"github.com/kohnman/lightswarm/internal/simulator"
	"github.com/kohnman/lightswarm/internal/transport"
)

func main() {
	var (
		configPath    = pflag.StringP("config", "c", "", "path to a YAML configuration overlay")
		inventoryPath = pflag.StringP("inventory", "i", "", "path to a YAML inventory seed file")
		listenAddr    = pflag.StringP("listen", "l", ":8080", "address for the status HTTP endpoint")
		comPort       = pflag.String("com-port", "", "override the configured serial device path")
		simulate      = pflag.Bool("simulate", false, "force simulation mode regardless of configuration")
		help          = pflag.Bool("help", false, "display help text")
	)
	pflag.Parse()
	if *help {
		pflag.Usage()
		return
	}

	log := obslog.New("lightswarmd")

	cfg := config.New()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Error("loading configuration", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *comPort != "" {
		cfg.Set(config.KeyComPort, *comPort)
	}
	if *simulate {
		cfg.Set(config.KeySimulationMode, "true")
	}

	store := inventory.NewMemStore()
	if *inventoryPath != "" {
		loaded, err := inventory.LoadYAML(*inventoryPath)
		if err != nil {
			log.Error("loading inventory", "err", err)
			os.Exit(1)
		}
		store = loaded
	}

	audit, err := auditlog.New(1000, "lightswarm-%Y-%m-%d.log")
	if err != nil {
		log.Error("constructing audit log", "err", err)
		os.Exit(1)
	}
	sim := simulator.New()

	opener, simulated := buildOpener(cfg)
	tr := transport.New(opener, simulated, transport.WithLog(log))
	tr.AddObserver(sim)
	tr.AddObserver(transport.ObserverFunc(func(frame []byte, liveSimulated bool) {
		audit.RecordCommand(auditlog.CommandEntry{
			Timestamp: time.Now(),
			Source:    "transport",
			Success:   true,
		})
		_ = liveSimulated
		_ = frame
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := tr.Open(ctx); err != nil {
		log.Error("opening transport", "err", err)
		os.Exit(1)
	}

	res := resolver.New(store, cfg)
	eng := animation.New(store, log)
	ctrl := session.New(store, cfg, eng, defaultSequences(), log)

	srv := &http.Server{Addr: *listenAddr, Handler: newRouter(tr, sim, audit, res, ctrl)}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return tr.Run(gctx) })
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		log.Error("lightswarmd exited with error", "err", err)
		os.Exit(1)
	}
}

// buildOpener returns the transport.Opener appropriate to the
// configuration: a real serial device, or the in-memory simulated sink.
func buildOpener(cfg *config.Config) (transport.Opener, bool) {
	if cfg.SimulationMode() {
		return func() (transport.Device, error) {
			return transport.NewSimDevice(), nil
		}, true
	}
	return func() (transport.Device, error) {
		return transport.OpenSerialDevice(cfg.ComPort(), cfg.BaudRate())
	}, false
}

// defaultSequences are the built-in named animation sequences available
// to logout's ambient trigger and any manual admin invocation; a real
// deployment would load a sequence library from configuration, so one
// representative wave sequence is wired here as the config's default
// ambient_sequence_id target.
func defaultSequences() map[string]animation.Sequence {
	return map[string]animation.Sequence{
		"wave": {
			ID:              "wave",
			Kind:            animation.KindWave,
			WaveUp:          true,
			WaveColor:       [3]int{0, 80, 160},
			WaveFadeMs:      800,
			InterFloorDelay: 150 * time.Millisecond,
			HoldDuration:    2 * time.Second,
			WaveLoop:        true,
		},
	}
}

type statusResponse struct {
	TransportState string `json:"transport_state"`
	SessionState   string `json:"session_state"`
	QueueDepth     int    `json:"queue_depth"`
	ReconnectTry   int    `json:"reconnect_attempt"`
	FixtureCount   int    `json:"fixture_count"`
	CommandLog     int    `json:"command_log_entries"`
}

type lightRequest struct {
	EntityID  string `json:"entity_id"`
	State     string `json:"state"`
	Intensity *int   `json:"intensity"`
	FadeMs    *int   `json:"fade_ms"`
}

type rawFrameRequest struct {
	AddressHi byte   `json:"address_hi"`
	AddressLo byte   `json:"address_lo"`
	Opcode    byte   `json:"opcode"`
	Payload   []byte `json:"payload"`
}

// newRouter wires the independently-testable slice of the HTTP surface
// this binary proves: query_status, send_raw_frame, one light-apartment
// entry point, and session login/logout. Everything here is a thin
// adapter over the core packages — request parsing, auth, and the full
// REST surface are an external collaborator's responsibility.
func newRouter(tr *transport.Transport, sim *simulator.Simulator, audit *auditlog.Log, res *resolver.Resolver, ctrl *session.Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			TransportState: tr.State().String(),
			SessionState:   ctrl.State().String(),
			QueueDepth:     tr.QueueDepth(),
			ReconnectTry:   tr.ReconnectAttempt(),
			FixtureCount:   len(sim.All()),
			CommandLog:     audit.Commands.Len(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	mux.HandleFunc("/light", func(w http.ResponseWriter, r *http.Request) {
		var req lightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err := res.LightApartment(r.Context(), tr, req.EntityID, inventory.State(req.State), resolver.Overrides{
			Intensity: req.Intensity,
			FadeMs:    req.FadeMs,
		})
		writeOutcome(w, audit, "resolver", req.EntityID, err)
	})

	mux.HandleFunc("/raw", func(w http.ResponseWriter, r *http.Request) {
		var req rawFrameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		addr := codecAddressFrom(req.AddressHi, req.AddressLo)
		packet := codecPacket(addr, req.Opcode, req.Payload)
		err := tr.Enqueue(r.Context(), packet)
		writeOutcome(w, audit, "raw", addr.String(), err)
	})

	mux.HandleFunc("/session/login", func(w http.ResponseWriter, r *http.Request) {
		err := ctrl.Login(r.Context(), tr)
		audit.RecordSession(auditlog.SessionEntry{Timestamp: time.Now(), Event: "login"})
		writeOutcome(w, audit, "session", "login", err)
	})

	mux.HandleFunc("/session/logout", func(w http.ResponseWriter, r *http.Request) {
		err := ctrl.Logout(r.Context(), tr)
		audit.RecordSession(auditlog.SessionEntry{Timestamp: time.Now(), Event: "logout"})
		writeOutcome(w, audit, "session", "logout", err)
	})

	return mux
}

func writeOutcome(w http.ResponseWriter, audit *auditlog.Log, source, target string, err error) {
	audit.RecordCommand(auditlog.CommandEntry{
		Timestamp: time.Now(),
		Source:    source,
		Target:    target,
		Success:   err == nil,
		Error:     errString(err),
	})
	if err != nil {
		http.Error(w, err.Error(), httpStatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// httpStatusFor maps apperr.Kind to an HTTP status. A full mapping
// (including request validation errors that never reach the core) is an
// external collaborator's concern; this is only enough to make /light,
// /raw, and /session/* independently exercisable.
func httpStatusFor(err error) int {
	kind, ok := apperr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.NoAddresses, apperr.BadState, apperr.BadRange:
		return http.StatusUnprocessableEntity
	case apperr.TransportClosed, apperr.TransportIo:
		return http.StatusServiceUnavailable
	case apperr.DecodeBadChecksum, apperr.DecodeTruncated:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func codecAddressFrom(hi, lo byte) codec.Address { return codec.UnpackAddress(hi, lo) }

func codecPacket(addr codec.Address, opcode byte, payload []byte) []byte {
	return codec.Packet(addr, codec.Opcode(opcode), payload...)
}
