package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"jobsifter/internal/challenge"
	"jobsifter/internal/classify"
	"jobsifter/internal/config"
	"jobsifter/internal/crawl"
	"jobsifter/internal/crawl/util"
	"jobsifter/internal/render"
	"jobsifter/internal/run"
	"jobsifter/internal/secrets"
	"jobsifter/internal/store"
)

func main() {
	log, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if len(os.Args) > 1 && os.Args[1] == "set-secret" {
		if err := setSecret(os.Args[2:], os.Stdin, os.Stderr); err != nil {
			log.Errorw("set-secret failed", "err", err)
			os.Exit(1)
		}
		return
	}

	if err := realMain(log); err != nil {
		log.Errorw("run aborted", "err", err)
		os.Exit(1)
	}
}

// setSecret stores a credential in the OS keychain so unattended runs can
// resolve it without env injection.
func setSecret(args []string, in io.Reader, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: jobsifter set-secret solver|classifier")
	}
	var account string
	switch args[0] {
	case "solver":
		account = secrets.SolverKeyAccount
	case "classifier":
		account = secrets.ClassifierTokenAccount
	default:
		return errors.Newf("unknown secret %q (want solver or classifier)", args[0])
	}

	fmt.Fprintf(out, "value for %s: ", account)
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		return errors.New("no value read from stdin")
	}
	if err := secrets.Set(account, strings.TrimSpace(sc.Text())); err != nil {
		return err
	}
	fmt.Fprintln(out, "stored")
	return nil
}

func newLogger() (*zap.SugaredLogger, error) {
	var l *zap.Logger
	var err error
	if os.Getenv("JOBSIFTER_LOG_JSON") != "" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func realMain(log *zap.SugaredLogger) error {
	// Data dir: env if provided (cron units pass one), else local folder.
	dataDir := os.Getenv("JOBSIFTER_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		return errors.Wrap(err, "config bootstrap")
	}
	cfg, err := config.Load(userCfgPath)
	if err != nil {
		return errors.Wrapf(err, "config load (%s)", userCfgPath)
	}
	config.OverlayEnv(&cfg)

	cfg, val := config.NormalizeAndValidate(cfg)
	for _, w := range val.Warnings {
		log.Warnw("config", "warning", w)
	}
	if !val.OK() {
		return errors.Newf("invalid config: %s", strings.Join(val.Errors, "; "))
	}

	solverKey, err := secrets.SolverKey()
	if err != nil {
		return err
	}

	rules, err := classify.RulesFromConfig(cfg)
	if err != nil {
		return errors.Wrap(err, "category rules")
	}

	var delegate classify.Delegate = classify.RuleDelegate{Rules: rules}
	if cfg.Classifier.Endpoint != "" {
		token, err := secrets.ClassifierToken()
		if err != nil {
			return err
		}
		delegate = classify.NewHTTPDelegate(cfg.Classifier.Endpoint, token,
			time.Duration(cfg.Timeouts.ClassifierSeconds)*time.Second)
	}

	// Manual login needs a visible browser regardless of the headless flag.
	session, err := render.NewRodSession(render.RodOptions{
		Headless:  cfg.Source.Headless && !cfg.Source.ManualLogin,
		UserAgent: cfg.Source.UserAgent,
	}, log.Named("render"))
	if err != nil {
		return errors.Wrap(err, "open session")
	}

	limiter := util.NewHostLimiter(cfg.Source.RequestsPerSecond, cfg.Source.Burst)

	gate := challenge.NewGate(session,
		challenge.NewHTTPSolver(cfg.Challenge.SolverURL, solverKey,
			time.Duration(cfg.Timeouts.SolveSeconds)*time.Second),
		challenge.GateConfig{
			Marker:       cfg.Challenge.Marker,
			Callback:     cfg.Challenge.Callback,
			Grace:        time.Duration(cfg.Timeouts.ChallengeGraceSeconds) * time.Second,
			SolveTimeout: time.Duration(cfg.Timeouts.SolveSeconds) * time.Second,
		}, log.Named("challenge"))

	crawler := crawl.New(session, crawl.Config{
		Selectors: crawl.Selectors{
			Listing:    cfg.Selectors.Listing,
			Title:      cfg.Selectors.Title,
			Employer:   cfg.Selectors.Employer,
			Location:   cfg.Selectors.Location,
			Summary:    cfg.Selectors.Summary,
			DetailLink: cfg.Selectors.DetailLink,
			NextPage:   cfg.Selectors.NextPage,
		},
		IDParam:         cfg.Source.IDParam,
		ContentTimeout:  time.Duration(cfg.Timeouts.ContentSeconds) * time.Second,
		MaxPages:        cfg.Source.MaxPages,
		AuthRedirectAny: cfg.Filters.AuthRedirectAny,
	}, limiter, log.Named("crawl"))

	enricher := classify.NewDetailFetcher(session, classify.DetailConfig{
		BodySelector:     cfg.Selectors.DetailBody,
		SkillTagSelector: cfg.Selectors.SkillTag,
		Timeout:          time.Duration(cfg.Timeouts.DetailSeconds) * time.Second,
	}, rules, limiter, log.Named("classify"))

	pipeline := classify.NewPipeline(rules, enricher, delegate, log.Named("classify"))

	workbook := cfg.Store.Workbook
	if !filepath.IsAbs(workbook) {
		workbook = filepath.Join(dataDir, workbook)
	}
	sink := store.NewWorkbook(workbook, cfg.Store.Sheet, log.Named("store"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run.Run(ctx, run.Deps{
		Session:     session,
		Gate:        gate,
		Crawler:     crawler,
		Pipeline:    pipeline,
		Sink:        sink,
		StartURL:    cfg.Source.StartURL,
		ManualLogin: cfg.Source.ManualLogin,
		Stdin:       os.Stdin,
		Log:         log.Named("run"),
	})
}
